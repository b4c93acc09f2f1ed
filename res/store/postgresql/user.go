package postgresql

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"unicode/utf8"

	"limpeja-api/res/store"

	"gorm.io/gorm"
)

type userStore struct {
	*storeImpl
}

func NewUserStore(rootStore *storeImpl) *userStore {
	return &userStore{storeImpl: rootStore}
}

func validDisplayName(displayName string) error {
	if !utf8.ValidString(displayName) {
		return fmt.Errorf("invalid user display name string (%s)", displayName)
	}

	displayNameLength := utf8.RuneCountInString(displayName)
	if displayNameLength == 0 {
		return fmt.Errorf("invalid user display name string (empty)")
	} else if displayNameLength > 50 {
		return fmt.Errorf("invalid user display name length (%d > 50)", displayNameLength)
	}
	return nil
}

func validRole(role store.UserRole) error {
	if role != store.UserRoleClient && role != store.UserRoleCleaner && role != store.UserRoleAdmin {
		return fmt.Errorf("invalid user role (%s)", role)
	}
	return nil
}

// MUTATIONS

func (uStore *userStore) Create(
	ctx context.Context,
	ID string,
	displayName string,
	email string,
	role store.UserRole,
	passwordHash *string,
	googleIdentity *string,
) (*store.User, error) {
	newUser := &store.User{ID: ID}

	if err := validRole(role); err != nil {
		return nil, err
	}
	newUser.Role = role

	if err := validDisplayName(displayName); err != nil {
		return nil, err
	}
	newUser.DisplayName = displayName

	// Email validation

	if utf8.ValidString(email) {
		if emailAddr, err := mail.ParseAddress(email); err == nil {
			newUser.Email = emailAddr.Address
		} else {
			return nil, fmt.Errorf("invalid user email address")
		}
	} else {
		return nil, fmt.Errorf("invalid user email address string")
	}

	// At least one sign-in method is required

	if passwordHash == nil && googleIdentity == nil {
		return nil, fmt.Errorf("user requires a password or a google identity")
	}
	if passwordHash != nil && *passwordHash != "" {
		newUser.PasswordHash = passwordHash
	}
	if googleIdentity != nil {
		if !utf8.ValidString(*googleIdentity) || *googleIdentity == "" {
			return nil, fmt.Errorf("invalid user google identity")
		}
		newUser.GoogleIdentity = googleIdentity
	}

	result := uStore.db.WithContext(ctx).Create(newUser)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, store.ErrUniqueViolation
		}
		return nil, result.Error
	} else if result.RowsAffected != 1 {
		return nil, fmt.Errorf("failed to create user (id: %s)", ID)
	}

	return newUser, nil
}

func (uStore *userStore) Update(ctx context.Context, userID string, displayName *string, role *store.UserRole) (*store.User, error) {
	updates := make(map[string]interface{})

	if displayName != nil {
		if err := validDisplayName(*displayName); err != nil {
			return nil, err
		}
		updates["display_name"] = *displayName
	}

	if role != nil {
		if err := validRole(*role); err != nil {
			return nil, err
		}
		updates["role"] = *role
	}

	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	result := uStore.db.WithContext(ctx).Model(&store.User{}).
		Where("id = ?", userID).
		Updates(updates)

	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("user not found (id: %s)", userID)
	}

	var user store.User
	if err := uStore.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch updated user: %w", err)
	}

	return &user, nil
}

func (uStore *userStore) Delete(ctx context.Context, userID string) error {
	// Auth sessions cascade via the FK constraint.
	result := uStore.db.WithContext(ctx).Delete(&store.User{ID: userID})
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("user not found (id: %s)", userID)
	}
	return nil
}

// QUERIES

func (uStore *userStore) Get(ctx context.Context, id string) (*store.User, error) {
	var user store.User
	result := uStore.db.WithContext(ctx).Where("id = ?", id).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

func (uStore *userStore) GetByGoogleIdentity(ctx context.Context, googleIdentity string) (*store.User, error) {
	var user store.User
	result := uStore.db.WithContext(ctx).Where("google_identity = ?", googleIdentity).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

func (uStore *userStore) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	var user store.User
	result := uStore.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

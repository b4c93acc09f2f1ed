package store

import "time"

type UserRole string

const (
	UserRoleClient  UserRole = "CLIENT"  // Regular customer (default sign-up)
	UserRoleCleaner UserRole = "CLEANER" // Cleaning professional (sign-up from "work with us" flow)
	UserRoleAdmin   UserRole = "ADMIN"   // Platform administrator (set via env var)
)

type User struct {
	ID          string   `gorm:"primaryKey;size:50;unique"`
	DisplayName string   `gorm:"size:50;not null"`
	Role        UserRole `gorm:"size:50;not null;default:'CLIENT'"`

	// Sign-in methods: password, Google, or both.
	PasswordHash   *string `gorm:"size:256"`
	GoogleIdentity *string `gorm:"size:256;unique"`
	Email          string  `gorm:"size:256;not null;uniqueIndex:idx_user_email"`

	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;not null"`
}

// IsAdmin checks if the user has platform admin privileges
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// IsCleaner checks if the user is a cleaning professional
func (u *User) IsCleaner() bool {
	return u.Role == UserRoleCleaner
}

// IsClient checks if the user is a basic client
func (u *User) IsClient() bool {
	return u.Role == UserRoleClient
}

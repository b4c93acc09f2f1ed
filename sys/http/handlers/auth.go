package handlers

import (
	"context"
	"fmt"
	"net/http"
	netmail "net/mail"
	"strings"
	"time"

	"limpeja-api/res/auth"
	"limpeja-api/res/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
	"go.uber.org/zap"
)

const userDisplayNamePlaceholderDefault = "Usuário"

type authResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       string `json:"userId"`
	Role         string `json:"role"`
}

type registerRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	// "work with us" sign-ups register as cleaners
	AsCleaner bool `json:"asCleaner"`
}

// Register creates a user with email/password credentials. Cleaner sign-ups
// also get an empty cleaner profile so the ledger exists from day one.
func (hb *HandlerBundle) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados de cadastro inválidos"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := netmail.ParseAddress(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Endereço de e-mail inválido"})
		return
	}

	passwordHash, err := hb.Auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A senha deve ter entre 8 e 72 caracteres"})
		return
	}

	role := store.UserRoleClient
	if req.AsCleaner {
		role = store.UserRoleCleaner
	}

	ctx := c.Request.Context()
	userID := fmt.Sprintf("user_%s", xid.New().String())
	user, err := hb.Store.Users().Create(ctx, userID, req.DisplayName, email, role, &passwordHash, nil)
	if err != nil {
		hb.renderError(c, err)
		return
	}

	if req.AsCleaner {
		profile := &store.CleanerProfile{
			ID:       fmt.Sprintf("cleaner_%s", xid.New().String()),
			UserID:   user.ID,
			IsActive: true,
		}
		if err := hb.Store.CleanerProfiles().Create(ctx, profile); err != nil {
			hb.renderError(c, err)
			return
		}
	}

	hb.onUserRegistered(ctx, user)

	result, err := hb.openSession(ctx, user)
	if err != nil {
		hb.Logger.Error("error creating auth session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar sessão"})
		return
	}
	c.JSON(http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates email/password credentials.
func (hb *HandlerBundle) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados de login inválidos"})
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := hb.Store.Users().GetByEmail(ctx, email)
	if err != nil || user == nil || user.PasswordHash == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "E-mail ou senha incorretos"})
		return
	}

	if err := hb.Auth.VerifyPassword(*user.PasswordHash, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "E-mail ou senha incorretos"})
		return
	}

	result, err := hb.openSession(ctx, user)
	if err != nil {
		hb.Logger.Error("error creating auth session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar sessão"})
		return
	}
	c.JSON(http.StatusOK, result)
}

type googleAuthRequest struct {
	Code string `json:"code" binding:"required"`
}

// AuthWithGoogle exchanges a Google OAuth2 code, registering the user on
// first sign-in.
func (hb *HandlerBundle) AuthWithGoogle(c *gin.Context) {
	var req googleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Código de autorização ausente"})
		return
	}

	ctx := c.Request.Context()
	userMetadata, err := hb.Auth.AuthorizationWithGoogle(ctx, req.Code)
	if err != nil || userMetadata == nil {
		hb.Logger.Debug("error authorizing google access code", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Código de autorização inválido"})
		return
	}

	user, err := hb.Store.Users().GetByGoogleIdentity(ctx, userMetadata.Identifier)
	if err != nil || user == nil { // first sign-in, register
		userID := fmt.Sprintf("user_%s", xid.New().String())
		userName := userDisplayNamePlaceholderDefault
		if userMetadata.DisplayName != nil && len(*userMetadata.DisplayName) > 0 {
			userName = *userMetadata.DisplayName
		}

		user, err = hb.Store.Users().Create(ctx, userID, userName, userMetadata.Email, store.UserRoleClient, nil, &userMetadata.Identifier)
		if err != nil {
			hb.renderError(c, err)
			return
		}
		hb.onUserRegistered(ctx, user)
	}

	result, err := hb.openSession(ctx, user)
	if err != nil {
		hb.Logger.Error("error creating auth session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar sessão"})
		return
	}
	c.JSON(http.StatusOK, result)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh rotates a refresh token into a new session.
func (hb *HandlerBundle) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Refresh token ausente"})
		return
	}

	ctx := c.Request.Context()

	var claims auth.RefreshTokenClaims
	if err := hb.Auth.ValidateToken(req.RefreshToken, &claims); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expirado ou malformado"})
		return
	}

	user, err := hb.Store.Users().Get(ctx, claims.UserID)
	if err != nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expirado ou malformado"})
		return
	}

	if err := hb.Store.AuthSessions().DeleteExpired(ctx, time.Now().Add(-auth.RefreshTokenLifespanInHours*time.Hour)); err != nil {
		hb.Logger.Error("error removing expired refresh sessions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar sessão"})
		return
	}

	currentSession, err := hb.Store.AuthSessions().Get(ctx, claims.RefreshTokenValue)
	if err != nil || currentSession == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expirado ou malformado"})
		return
	}

	// Single-use: the old session is replaced by the one openSession creates.
	if err := hb.Store.AuthSessions().Delete(ctx, []string{currentSession.ID}); err != nil {
		hb.Logger.Error("error deleting rotated refresh session", zap.Error(err))
	}

	result, err := hb.openSession(ctx, user)
	if err != nil {
		hb.Logger.Error("error creating auth session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar sessão"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// openSession stores a new refresh session and wraps both tokens in JWTs.
func (hb *HandlerBundle) openSession(ctx context.Context, user *store.User) (*authResult, error) {
	refreshTokenValue := fmt.Sprintf("auth_refresh_tok:%s", xid.New().String())

	refreshSession, err := hb.Store.AuthSessions().Create(ctx, refreshTokenValue, user.ID)
	if err != nil {
		return nil, err
	}

	refreshToken, err := hb.Auth.GenerateRefreshToken(user.ID, refreshSession.ID)
	if err != nil {
		return nil, err
	}

	accessToken, err := hb.Auth.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &authResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
		Role:         string(user.Role),
	}, nil
}

// onUserRegistered fires the signup side effects. Failures are logged and
// never block the registration itself.
func (hb *HandlerBundle) onUserRegistered(ctx context.Context, user *store.User) {
	if hb.Mail != nil {
		if err := hb.Mail.RegisterUser(ctx, user.ID, user.Email, user.DisplayName); err != nil {
			hb.Logger.Warn("failed to register user with mail service", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	if hb.Notification != nil {
		if err := hb.Notification.NotifyNewUserSignup(ctx, user.Email, user.DisplayName, user.ID); err != nil {
			hb.Logger.Warn("failed to send signup notification", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
}

package handlers

import (
	"errors"
	"net/http"

	"limpeja-api/res/auth"
	"limpeja-api/res/mail"
	"limpeja-api/res/notification"
	"limpeja-api/res/settlement"
	"limpeja-api/res/storage"
	"limpeja-api/res/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HandlerBundle carries the shared dependencies of every HTTP handler.
type HandlerBundle struct {
	Store        store.Store
	Auth         auth.Auth
	Notification notification.NotificationService
	Mail         mail.MailService
	Storage      *storage.GCSService
	Logger       *zap.Logger
}

func NewHandlerBundle(
	storeImpl store.Store,
	authImpl auth.Auth,
	notificationService notification.NotificationService,
	mailService mail.MailService,
	storageService *storage.GCSService,
	logger *zap.Logger,
) *HandlerBundle {
	return &HandlerBundle{
		Store:        storeImpl,
		Auth:         authImpl,
		Notification: notificationService,
		Mail:         mailService,
		Storage:      storageService,
		Logger:       logger,
	}
}

// renderError maps domain errors to HTTP status codes. Unrecognized errors
// are logged and hidden behind a generic 500 so internals never leak.
func (hb *HandlerBundle) renderError(c *gin.Context, err error) {
	var validationErr *settlement.ValidationError
	var policyErr *settlement.PolicyViolationError
	var insufficientErr *settlement.InsufficientBalanceError
	var conflictErr *settlement.ConflictError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Reason})
	case errors.As(err, &policyErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": policyErr.Reason})
	case errors.As(err, &insufficientErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Saldo insuficiente para este saque"})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Reason})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Registro não encontrado"})
	case errors.Is(err, store.ErrUniqueViolation):
		c.JSON(http.StatusConflict, gin.H{"error": "Registro já existe"})
	case errors.Is(err, store.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
	default:
		hb.Logger.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
	}
}

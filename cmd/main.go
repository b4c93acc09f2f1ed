package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"limpeja-api/res/auth"
	"limpeja-api/res/mail/sidemail"
	"limpeja-api/res/notification/slack"
	"limpeja-api/res/storage"
	"limpeja-api/res/store"
	"limpeja-api/res/store/postgresql"
	limpejahttp "limpeja-api/sys/http"
	"limpeja-api/sys/http/handlers"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file in development
	if err := godotenv.Load(); err != nil {
		fmt.Println("Note: .env file not found, using system environment variables")
	}

	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	logger := newLogger(environment)
	defer logger.Sync()

	port := readRequiredEnvVar(logger, "PORT")
	dbURL := readRequiredEnvVar(logger, "DATABASE_POSTGRES_URL")
	jwtSecret := readRequiredEnvVar(logger, "JWT_SECRET")

	storeInstance, err := postgresql.Connect(dbURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := storeInstance.Migrate(); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Bootstrap platform admin if ADMIN_EMAIL is set
	if adminEmail := os.Getenv("ADMIN_EMAIL"); adminEmail != "" {
		if err := bootstrapAdmin(storeInstance, adminEmail); err != nil {
			logger.Warn("failed to bootstrap admin", zap.String("email", adminEmail), zap.Error(err))
		} else {
			logger.Info("checked/updated platform admin", zap.String("email", adminEmail))
		}
	}

	authInstance := auth.New(
		jwtSecret,
		os.Getenv("GOOGLE_CLIENT_ID"),
		os.Getenv("GOOGLE_CLIENT_SECRET"),
		os.Getenv("GOOGLE_REDIRECT_URL"),
	)

	notificationService := slack.New(os.Getenv("SLACK_WEBHOOK_URL"), 10*time.Second, logger)
	mailService := sidemail.New(
		os.Getenv("SIDEMAIL_API_KEY"),
		envOrDefault("SIDEMAIL_API_URL", "https://api.sidemail.io/v1"),
		os.Getenv("SIDEMAIL_SIGNUPS_GROUP_ID"),
		envOrDefault("MAIL_FROM_ADDRESS", "contato@limpeja.com.br"),
		10*time.Second,
		logger,
	)

	var storageService *storage.GCSService
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		storageService, err = storage.NewGCSService(
			context.Background(),
			bucket,
			os.Getenv("GCS_PROJECT_ID"),
			os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		)
		if err != nil {
			logger.Fatal("failed to create storage client", zap.Error(err))
		}
		defer storageService.Close()
	} else {
		logger.Warn("GCS_BUCKET not set, receipt uploads disabled")
	}

	hb := handlers.NewHandlerBundle(storeInstance, authInstance, notificationService, mailService, storageService, logger)

	router := limpejahttp.NewRouter(limpejahttp.RouterConfig{
		Environment:    environment,
		AllowedOrigins: splitOrigins(os.Getenv("FRONTEND_URLS")),
	}, hb, storeInstance, authInstance, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", zap.String("port", port), zap.String("environment", environment))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}

func newLogger(environment string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func readRequiredEnvVar(logger *zap.Logger, name string) string {
	val, ok := os.LookupEnv(name)
	if !ok {
		logger.Fatal("env variable not set", zap.String("name", name))
	}
	return val
}

func envOrDefault(name, fallback string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return fallback
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func bootstrapAdmin(storeInstance store.Store, email string) error {
	ctx := context.Background()

	user, err := storeInstance.Users().GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user with email %s: %w", email, err)
	}

	if user.Role == store.UserRoleAdmin {
		return nil
	}

	adminRole := store.UserRoleAdmin
	if _, err := storeInstance.Users().Update(ctx, user.ID, nil, &adminRole); err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	return nil
}

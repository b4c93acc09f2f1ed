package http

import (
	"net/http"
	"time"

	"limpeja-api/res/auth"
	"limpeja-api/res/store"
	"limpeja-api/sys/http/handlers"
	"limpeja-api/sys/http/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig carries the environment-driven knobs of the HTTP surface.
type RouterConfig struct {
	Environment    string
	AllowedOrigins []string
}

// NewRouter wires middleware and all route groups onto a gin engine.
func NewRouter(cfg RouterConfig, hb *handlers.HandlerBundle, storeImpl store.Store, authImpl auth.Auth, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.Environment == "production" {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))

	r.Use(middleware.RateLimitMiddleware(logger))
	r.Use(middleware.AuthMiddleware(logger, storeImpl, authImpl))

	registerHealthRoute(r)
	registerAuthRoutes(r, hb)
	registerPricingRoutes(r, hb)
	registerBookingRoutes(r, hb)
	registerCleanerRoutes(r, hb)
	registerAdminRoutes(r, hb)

	return r
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func registerAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.Register)
		api.POST("/login", hb.Login)
		api.POST("/google", hb.AuthWithGoogle)
		api.POST("/refresh", hb.Refresh)
	}
}

func registerPricingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/pricing")
	{
		// Public: the booking form quotes on every change.
		api.POST("/quote", hb.Quote)
		api.GET("/settings", hb.GetSettings)
	}
}

func registerBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	api.Use(middleware.RequireUser())
	{
		api.POST("", hb.CreateBooking)
		api.GET("/mine", hb.MyBookings)
		api.GET("/assigned", hb.AssignedBookings)
		api.POST("/:id/confirm", hb.ConfirmBooking)
		api.POST("/:id/complete", hb.CompleteBooking)
		api.POST("/:id/cancel", hb.CancelBooking)
		api.POST("/:id/rate", hb.RateBooking)
	}

	// Active cleaner directory for the booking form.
	r.GET("/api/cleaners", hb.ListCleaners)
}

func registerCleanerRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/cleaner")
	api.Use(middleware.RequireRole(store.UserRoleCleaner))
	{
		api.GET("/profile", hb.MyCleanerProfile)
		api.PATCH("/profile", hb.UpdateMyCleanerProfile)
		api.GET("/balance", hb.MyBalance)
		api.GET("/rewards", hb.MyRewards)
		api.GET("/withdrawals", hb.MyWithdrawals)
		api.POST("/withdrawals", hb.CreateWithdrawal)
	}
}

func registerAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/admin")
	api.Use(middleware.RequireRole(store.UserRoleAdmin))
	{
		api.PATCH("/settings", hb.UpdateSettings)
		api.GET("/bookings", hb.ListBookings)
		api.GET("/withdrawals", hb.ListWithdrawals)
		api.POST("/withdrawals/:id/approve", hb.ApproveWithdrawal)
		api.POST("/withdrawals/:id/reject", hb.RejectWithdrawal)
		api.POST("/withdrawals/:id/paid", hb.MarkWithdrawalPaid)
		api.GET("/rewards", hb.ListRewards)
		api.POST("/rewards/:id/paid", hb.MarkRewardPaid)
		api.GET("/cleaners", hb.ListAllCleaners)
		api.PATCH("/cleaners/:id/active", hb.SetCleanerActive)
	}
}

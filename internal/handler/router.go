package handler

import (
	"net/http"
	"time"

	"github.com/Baaaki/exercise-catalog/internal/database"
	"github.com/Baaaki/exercise-catalog/internal/middleware"
	"github.com/Baaaki/exercise-catalog/internal/service"
	"github.com/Baaaki/exercise-catalog/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RouterConfig carries everything the HTTP layer needs
type RouterConfig struct {
	DB                 *gorm.DB
	AuthService        *service.AuthService
	ExerciseService    *service.ExerciseService
	InteractionService *service.InteractionService

	AllowedOrigins []string
	IsProduction   bool

	// RateLimiter guards register and login; nil disables it
	RateLimiter *middleware.RateLimiter
}

// NewRouter wires middleware and routes
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(cfg.IsProduction))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authHandler := NewAuthHandler(cfg.AuthService)
	exerciseHandler := NewExerciseHandler(cfg.ExerciseService)
	interactionHandler := NewInteractionHandler(cfg.InteractionService)

	router.GET("/health", healthCheck(cfg.DB))

	// Public routes
	users := router.Group("/users")
	{
		users.POST("/register", withLimit(cfg.RateLimiter, "auth", authHandler.Register)...)
		users.POST("/login", withLimit(cfg.RateLimiter, "auth", authHandler.Login)...)
		users.POST("/refresh-token", authHandler.Refresh)
	}
	router.GET("/public-exercises", exerciseHandler.ListPublic)

	// Protected routes (require access token)
	requireAuth := middleware.AuthMiddleware(cfg.AuthService)

	me := router.Group("/users", requireAuth)
	{
		me.GET("/me", authHandler.Me)
		me.GET("/collections", interactionHandler.Collections)
	}

	exercises := router.Group("/exercises", requireAuth)
	{
		exercises.POST("", exerciseHandler.Create)
		exercises.GET("", exerciseHandler.List)
		exercises.GET("/:id", exerciseHandler.Get)
		exercises.PUT("/:id", exerciseHandler.Update)
		exercises.DELETE("/:id", exerciseHandler.Delete)

		exercises.POST("/:id/favorite", interactionHandler.Favorite)
		exercises.DELETE("/:id/favorite", interactionHandler.Unfavorite)
		exercises.POST("/:id/save", interactionHandler.Save)
		exercises.DELETE("/:id/save", interactionHandler.Unsave)
		exercises.POST("/:id/rate", interactionHandler.Rate)
		exercises.GET("/:id/favorites", interactionHandler.Favoriters)
		exercises.GET("/:id/saves", interactionHandler.Savers)
	}

	return router
}

// withLimit builds a fresh handler chain, prefixed by the limiter for scope when one is set
func withLimit(limiter *middleware.RateLimiter, scope string, handler gin.HandlerFunc) []gin.HandlerFunc {
	if limiter == nil {
		return []gin.HandlerFunc{handler}
	}
	return []gin.HandlerFunc{limiter.Middleware(scope), handler}
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := database.Ping(db); err != nil {
			logger.Log.Error("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Baaaki/exercise-catalog/internal/config"
	"github.com/Baaaki/exercise-catalog/internal/database"
	"github.com/Baaaki/exercise-catalog/internal/handler"
	"github.com/Baaaki/exercise-catalog/internal/middleware"
	"github.com/Baaaki/exercise-catalog/internal/repository"
	"github.com/Baaaki/exercise-catalog/internal/service"
	"github.com/Baaaki/exercise-catalog/internal/utils"
	"github.com/Baaaki/exercise-catalog/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Log.Error("Failed to close database", zap.Error(err))
		}
	}()

	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Rate limiting needs Redis; without REDIS_URL the auth routes are unlimited
	var rateLimiter *middleware.RateLimiter
	if cfg.RedisURL != "" {
		redisClient, err := middleware.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Log.Fatal("Failed to connect Redis", zap.Error(err))
		}
		defer redisClient.Close()

		rateLimiter = middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
			MaxRequests: cfg.RateLimitMaxRequests,
			Window:      cfg.RateLimitWindow,
		})
		logger.Log.Info("Rate limiter enabled",
			zap.Int("max_requests", cfg.RateLimitMaxRequests),
			zap.Duration("window", cfg.RateLimitWindow),
		)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	exerciseRepo := repository.NewExerciseRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)

	// Initialize services
	hasher := utils.NewPasswordHasher(cfg.BcryptCost)
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := service.NewAuthService(userRepo, hasher, tokens)
	exerciseService := service.NewExerciseService(exerciseRepo)
	interactionService := service.NewInteractionService(exerciseRepo, interactionRepo)

	router := handler.NewRouter(handler.RouterConfig{
		DB:                 db,
		AuthService:        authService,
		ExerciseService:    exerciseService,
		InteractionService: interactionService,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		IsProduction:       cfg.IsProduction(),
		RateLimiter:        rateLimiter,
	})

	srv := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Log.Info("Server starting",
			zap.String("addr", cfg.ServerPort),
			zap.String("environment", cfg.Environment),
			zap.String("db_driver", cfg.DBDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Graceful shutdown failed", zap.Error(err))
	}
}

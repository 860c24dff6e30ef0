package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/natefinch/lumberjack"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wweverma1/pocket-ninja-backend/internal/cache"
	"github.com/wweverma1/pocket-ninja-backend/internal/catalog"
	"github.com/wweverma1/pocket-ninja-backend/internal/config"
	"github.com/wweverma1/pocket-ninja-backend/internal/database"
	"github.com/wweverma1/pocket-ninja-backend/internal/handler"
	"github.com/wweverma1/pocket-ninja-backend/internal/middleware"
	"github.com/wweverma1/pocket-ninja-backend/internal/repository"
	"github.com/wweverma1/pocket-ninja-backend/internal/service"
	"github.com/wweverma1/pocket-ninja-backend/internal/worker"
	"github.com/wweverma1/pocket-ninja-backend/pkg/gemini"
)

// main is the application entrypoint for the Pocket Ninja API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg)
	log.Info().Str("env", cfg.Env).Msg("starting pocket ninja api")

	// 3. Connect database
	connectCtx, connectCancel := context.WithTimeout(context.Background(), time.Minute)
	db, err := database.Connect(connectCtx, &cfg.DB)
	connectCancel()
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 4. Initialize repositories
	productRepo := repository.NewProductRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	userRepo := repository.NewUserRepository(db)

	// 5. Initialize catalog engine
	catalogCache := catalog.NewCache(productRepo, cache.NewCatalogGeneration(redisClient))
	reconciler := catalog.NewReconciler(productRepo, catalogCache, cfg.Catalog.MatchThreshold)

	// 6. Initialize services
	statsSvc := service.NewStatsService(userRepo, storeRepo, cfg.Upload.PenaltyPoints)
	rewardWorker := worker.NewRewardWorker(statsSvc, cfg.Worker.RewardQueueSize, cfg.Worker.RewardTimeout)

	var textCheck service.TextChecker
	if cfg.AWS.TextCheckEnabled {
		svc, err := service.NewTextCheckService(context.Background(), cfg.AWS.Region)
		if err != nil {
			log.Warn().Err(err).Msg("Text check initialization failed - pre-check will be disabled")
		} else {
			textCheck = svc
		}
	}

	var archive service.ImageArchive
	if cfg.S3.Bucket != "" {
		a, err := service.NewReceiptArchive(context.Background(), &cfg.S3)
		if err != nil {
			log.Warn().Err(err).Msg("S3 archive initialization failed - receipt images will not be kept")
		} else {
			archive = a
		}
	}

	geminiClient, err := gemini.NewClient(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL, cfg.Gemini.Timeout)
	if err != nil {
		log.Error().Err(err).Msg("gemini client initialization failed")
		fmt.Fprintf(os.Stderr, "gemini client initialization failed: %v\n", err)
		os.Exit(1)
	}
	uploadGuard := cache.NewUploadGuard(redisClient, cfg.Upload.BadUploadLimit, cfg.Upload.BadUploadWindow)

	receiptSvc := service.NewReceiptService(
		receiptRepo, storeRepo, uploadGuard, geminiClient, textCheck, archive,
		reconciler, rewardWorker, cfg.Catalog.TargetCity,
	)
	leaderboardSvc := service.NewLeaderboardService(userRepo)
	profileSvc := service.NewProfileService(userRepo)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health: handler.NewHealthHandler(map[string]handler.PingFunc{
			"database": db.PingContext,
			"redis":    redisClient.Ping,
		}),
		Product:     handler.NewProductHandler(receiptSvc, cfg.Upload.MaxBytes),
		Receipt:     handler.NewReceiptHandler(receiptSvc),
		Leaderboard: handler.NewLeaderboardHandler(leaderboardSvc),
		User:        handler.NewUserHandler(profileSvc),
	}

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	jwtMw := middleware.NewJWTMiddleware(cfg.JWTSecret, userRepo)
	uploadLimiter := middleware.NewUploadRateLimiter(cfg.Upload.RatePerMinute)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw, uploadLimiter)

	// 9. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 10. Start workers
	go rewardWorker.Start(ctx)
	go uploadLimiter.Cleanup(ctx.Done())

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Shutdown HTTP server with timeout, then stop workers
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	cancel()
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health      *handler.HealthHandler
	Product     *handler.ProductHandler
	Receipt     *handler.ReceiptHandler
	Leaderboard *handler.LeaderboardHandler
	User        *handler.UserHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, uploadLimiter *middleware.UploadRateLimiter) {
	router.GET("/", handler.Home)
	router.GET("/v1/health", handlers.Health.GetHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	product := router.Group("/product")
	product.Use(jwtMiddleware.Required())
	{
		product.PUT("/details", uploadLimiter.Handle(), handlers.Product.UpdateDetails)
		product.GET("/details", handlers.Product.GetDetails)
	}

	router.GET("/receipts", jwtMiddleware.Required(), handlers.Receipt.List)

	user := router.Group("/user")
	user.Use(jwtMiddleware.Required())
	{
		user.GET("", handlers.User.GetProfile)
		user.GET("/receipt", handlers.Receipt.List)
	}

	router.GET("/leaderboard", jwtMiddleware.Optional(), handlers.Leaderboard.Get)
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// setupLogger configures the global logger: JSON on stdout, plus a rotated
// file when LOG_FILE is set. LOG_LEVEL overrides the per-environment level.
func setupLogger(cfg *config.Config) {
	level := zerolog.DebugLevel
	if cfg.Env == "production" {
		level = zerolog.InfoLevel
	}
	if cfg.LogLevel != "" {
		if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			level = lvl
		}
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFile == "" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}

	file := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(os.Stdout, file)).With().Timestamp().Logger()
}

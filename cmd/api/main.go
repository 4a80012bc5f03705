package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"nutriguide/onboarding-backend/internal/assistant"
	"nutriguide/onboarding-backend/internal/auth"
	"nutriguide/onboarding-backend/internal/config"
	"nutriguide/onboarding-backend/internal/middleware"
	"nutriguide/onboarding-backend/internal/nutrition"
	"nutriguide/onboarding-backend/internal/onboarding"
	"nutriguide/onboarding-backend/internal/referral"
	"nutriguide/onboarding-backend/internal/settings"
)

func newLogger(level string) *zap.Logger {
	if level == "debug" {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	zcfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		zcfg.Level = lvl
	}
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewExample()
	}
	return logger
}

func main() {
	cfg, cfgErr := config.LoadConfig("config.json")
	if cfgErr != nil {
		cfg = config.Default()
	}

	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	if cfgErr != nil {
		logger.Fatal("Invalid configuration", zap.Error(cfgErr))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Postgres: answers via gorm, referral codes via sqlx
	dbURL := cfg.Database.GetDatabaseURL()
	gormDB, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(&onboarding.Answers{}); err != nil {
		logger.Fatal("Failed to migrate onboarding answers", zap.Error(err))
	}

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime.Duration)

	// Mongo: users, profiles and assistant usage
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal("Failed to connect to mongo", zap.Error(err))
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()
	if err := mongoClient.Ping(ctx, nil); err != nil {
		logger.Fatal("Mongo is unreachable", zap.Error(err))
	}
	mongoDB := mongoClient.Database(cfg.Mongo.Database)
	if err := auth.EnsureIndexes(ctx, mongoDB); err != nil {
		logger.Fatal("Failed to create user indexes", zap.Error(err))
	}

	// Onboarding
	answersRepo := onboarding.NewAnswersRepository(gormDB)
	onboardingService := onboarding.NewService(onboarding.DefaultFlow, answersRepo, logger)
	onboardingHandler := onboarding.NewHandler(onboardingService, logger)

	// Auth
	tokens := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL.Duration)
	authService := auth.NewService(auth.NewRepository(mongoDB), tokens, logger)
	authHandler := auth.NewHandler(authService, logger)
	requireAuth := auth.RequireAuth(tokens)

	// Settings
	settingsService := settings.NewService(settings.NewRepository(mongoDB), onboardingService, logger)
	settingsHandler := settings.NewHandler(settingsService, logger)
	authService.SetAccountHook(settingsService)

	// Referral
	referralHandler := referral.NewHandler(referral.NewService(referral.NewRepository(db), logger))

	// Assistant
	var counter assistant.UsageCounter
	switch cfg.Assistant.CounterBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("Redis is unreachable", zap.Error(err))
		}
		counter = assistant.NewRedisUsageCounter(rdb, "")
	default:
		counter = assistant.NewMongoUsageCounter(mongoDB)
	}

	chatClient := assistant.NewOpenAIChatClient(assistant.OpenAIConfig{
		BaseURL:    cfg.Assistant.BaseURL,
		APIKey:     cfg.Assistant.APIKey,
		Model:      cfg.Assistant.Model,
		MaxTokens:  cfg.Assistant.MaxTokens,
		Timeout:    cfg.Assistant.Timeout.Duration,
		MaxRetries: cfg.Assistant.MaxRetries,
	})
	assistantService := assistant.NewService(chatClient, counter, assistant.Config{
		DailyLimit:     cfg.Assistant.DailyLimit,
		MaxAnswerChars: cfg.Assistant.MaxAnswerChars,
	}, logger)
	assistantHandler := assistant.NewHandler(assistantService, logger)

	janitor := assistant.NewJanitor(counter, cfg.Assistant.RetentionDays, logger)
	if err := janitor.Start(cfg.Assistant.JanitorSpec); err != nil {
		logger.Fatal("Failed to start usage janitor", zap.Error(err))
	}
	defer janitor.Stop()

	// Setup Router
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics := middleware.NewMetrics("nutriguide")
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger)
	stopCleanup := make(chan struct{})
	limiter.StartCleanup(10*time.Minute, stopCleanup)
	defer close(stopCleanup)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger), metrics.Handler(), middleware.CORS())

	userKey := func(c *gin.Context) string {
		if id, ok := auth.UserIDFrom(c); ok {
			return id.String()
		}
		return ""
	}

	api := router.Group("/api/v1")
	public := api.Group("", limiter.Handler(nil))
	{
		auth.RegisterRoutes(public, authHandler, tokens)
		onboardingHandler.RegisterRoutes(public)
		nutrition.NewHandler(logger).RegisterRoutes(public)
		referralHandler.RegisterRoutes(public, requireAuth)
	}
	protected := api.Group("", requireAuth, limiter.Handler(userKey))
	{
		settingsHandler.RegisterRoutes(protected.Group("/settings"))
		assistantHandler.RegisterRoutes(protected)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Exposition()))

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		IdleTimeout:  cfg.Server.IdleTimeout.Duration,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", srv.Addr))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

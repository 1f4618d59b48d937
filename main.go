// File: homeserve/main.go
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"homeserve/config"
	"homeserve/database"
	"homeserve/database/repository"
	"homeserve/database/repository/memory"
	"homeserve/handlers"
	"homeserve/routes"
	"homeserve/services/scheduling"
	"homeserve/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		zap.NewExample().Sugar().Fatalf("main: %v", err)
	}
	logger, err := utils.InitializeLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		zap.NewExample().Sugar().Fatalf("main: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.JWTSecret == "" {
		logger.Fatal("main: JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// storage.
	var (
		repo        scheduling.Repository
		mongoClient *mongo.Client
	)
	switch cfg.StorageBackend {
	case "mongo":
		db, err := database.InitDB(cfg.DatabaseURL, cfg.DatabaseName, logger)
		if err != nil {
			logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
		}
		mongoClient = database.MongoClient
		mongoRepo := repository.NewMongoRepository(db)
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			logger.Fatal("main: failed to create indexes", zap.Error(err))
		}
		repo = mongoRepo
	default:
		logger.Warn("main: using the in-memory store; data is lost on restart")
		repo = memory.NewStore()
	}

	// booking lock.
	var (
		locker      scheduling.Locker
		redisClient *redis.Client
	)
	switch cfg.LockBackend {
	case "redis":
		redisClient, err = utils.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisLockDB)
		if err != nil {
			logger.Fatal("main: failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		locker = utils.NewRedisLocker(redisClient, cfg.LockTTL(), logger)
	default:
		locker = scheduling.NewKeyedMutex()
	}

	svc := scheduling.NewService(repo, locker, logger.Named("scheduling"), cfg.Scheduling())

	var health *utils.HealthMonitor
	if redisClient != nil || mongoClient != nil {
		// A nil *redis.Client must not become a non-nil interface.
		var pinger redis.Cmdable
		if redisClient != nil {
			pinger = redisClient
		}
		health = utils.NewHealthMonitor(pinger, mongoClient)
		health.Start(ctx, 60*time.Second)
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxyList()); err != nil {
		logger.Fatal("main: invalid TRUSTED_PROXIES", zap.Error(err))
	}
	routes.RegisterRoutes(router, routes.Bundle{
		Scheduling:        handlers.NewSchedulingHandler(svc, logger),
		Tokens:            utils.NewTokenIssuer(cfg.JWTSecret),
		Health:            health,
		Logger:            logger,
		MaxRequestsPerMin: cfg.MaxRequestsPerMin,
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if mongoClient != nil {
		if err := database.CloseDB(shutdownCtx); err != nil {
			logger.Warn("main: failed to close MongoDB", zap.Error(err))
		}
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/silverhyuk/david-remittance-service/internal/api"
	"github.com/silverhyuk/david-remittance-service/internal/config"
	"github.com/silverhyuk/david-remittance-service/internal/lock"
	"github.com/silverhyuk/david-remittance-service/internal/mongodb"
	"github.com/silverhyuk/david-remittance-service/internal/redis"
	"github.com/silverhyuk/david-remittance-service/internal/service"
	"github.com/silverhyuk/david-remittance-service/internal/store"
	"github.com/silverhyuk/david-remittance-service/pkg/log"
	"github.com/silverhyuk/david-remittance-service/pkg/zap"
)

const startupTimeout = 15 * time.Second

func main() {
	cfg := config.Load()

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.LevelInfo
	}

	logger, err := zap.New(level, cfg.IsDevelopment())
	if err != nil {
		os.Stderr.WriteString("failed to build logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	redisConn, err := redis.NewConnection(redis.Config{
		Address:  cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Logger:   logger,
	})
	if err != nil {
		logger.Log(ctx, log.LevelError, "invalid redis configuration", log.Err(err))
		os.Exit(1)
	}

	locks, err := lock.NewManager(ctx, redisConn, logger)
	if err != nil {
		logger.Log(ctx, log.LevelError, "failed to initialize lock manager", log.Err(err))
		os.Exit(1)
	}

	mongoClient, err := mongodb.NewClient(ctx, mongodb.Config{
		URI:      cfg.MongoURI,
		Database: cfg.MongoDatabase,
		Logger:   logger,
	})
	if err != nil {
		logger.Log(ctx, log.LevelError, "failed to connect to mongo", log.Err(err))
		os.Exit(1)
	}

	accountStore, err := store.NewMongoAccountStore(ctx, mongoClient)
	if err != nil {
		logger.Log(ctx, log.LevelError, "failed to initialize account store", log.Err(err))
		os.Exit(1)
	}

	transactionStore, err := store.NewMongoTransactionStore(ctx, mongoClient)
	if err != nil {
		logger.Log(ctx, log.LevelError, "failed to initialize transaction store", log.Err(err))
		os.Exit(1)
	}

	accountService := service.NewAccountService(accountStore, locks, logger)
	transactionService := service.NewTransactionService(transactionStore, accountStore, locks, logger)

	validate := validator.New()

	app := fiber.New(fiber.Config{
		AppName:               "remittance-service",
		DisableStartupMessage: !cfg.IsDevelopment(),
	})
	app.Use(cors.New())

	api.RegisterRoutes(app,
		api.NewAccountHandler(accountService, validate, logger),
		api.NewTransactionHandler(transactionService, validate, logger),
	)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Log(context.Background(), log.LevelError, "server stopped", log.Err(err))
		}
	}()

	logger.Log(ctx, log.LevelInfo, "remittance service started", log.String("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Log(shutdownCtx, log.LevelInfo, "shutting down")

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Log(shutdownCtx, log.LevelError, "server shutdown failed", log.Err(err))
	}

	if err := mongoClient.Close(shutdownCtx); err != nil {
		logger.Log(shutdownCtx, log.LevelError, "mongo shutdown failed", log.Err(err))
	}

	if err := redisConn.Close(); err != nil {
		logger.Log(shutdownCtx, log.LevelError, "redis shutdown failed", log.Err(err))
	}

	if err := logger.Sync(shutdownCtx); err != nil && shutdownCtx.Err() == nil {
		os.Stderr.WriteString("failed to flush logs: " + err.Error() + "\n")
	}
}

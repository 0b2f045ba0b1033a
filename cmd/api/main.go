package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"alessacloud/internal/api"
	"alessacloud/internal/config"
	"alessacloud/internal/database"
	"alessacloud/internal/events"
	"alessacloud/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	metrics := observability.New(cfg.Metrics)

	logger, err := observability.NewLogger(cfg.Logging, metrics)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Shutdown()

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	if cfg.App.Env == config.EnvLocal {
		if err := database.CreateSchema(db); err != nil {
			logger.Fatal("Failed to create database schema", err)
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetRedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("Redis unavailable, continuing without it", err)
			redisClient = nil
		}
		defer func() {
			if redisClient != nil {
				redisClient.Close()
			}
		}()
	}

	// The redis broker makes order events visible across horizontally
	// scaled instances; the in-memory broker is for single-instance runs.
	var broker events.Broker
	if cfg.Events.Backend == "redis" && redisClient != nil {
		broker = events.NewRedisBroker(redisClient, cfg.Events.ChannelPrefix, metrics)
	} else {
		broker = events.NewMemoryBroker(metrics)
	}
	defer broker.Close()

	router, err := api.NewRouter(cfg, logger, metrics, db, redisClient, broker)
	if err != nil {
		logger.Fatal("Failed to build router", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router.Engine,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", err)
		}
	}()

	logger.Info("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	// In-flight streams and requests get a grace period to drain.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", err)
	}
}

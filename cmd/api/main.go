package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmetkoprulu/rtqb/common/cache"
	"github.com/ahmetkoprulu/rtqb/common/data"
	"github.com/ahmetkoprulu/rtqb/common/mq"
	"github.com/ahmetkoprulu/rtqb/common/utils"
	"github.com/ahmetkoprulu/rtqb/internal/api"
	"github.com/ahmetkoprulu/rtqb/internal/config"
	"github.com/ahmetkoprulu/rtqb/internal/effects"
)

func main() {
	cfg := config.LoadEnvironment()

	if cfg.ElasticUrl != "" {
		utils.InitElasticLogger(cfg.ElasticUrl, cfg.ServiceName)
	} else {
		utils.InitLogger()
	}
	defer utils.Logger.Sync()

	utils.SetJWTSecret(cfg.JWTSecret)
	err := data.LoadPostgres(cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		log.Fatalf("Failed to load Postgres: %v\n", err)
	}

	db, err := data.NewPgDbContext()
	if err != nil {
		utils.Logger.Fatal("Failed to connect to database", utils.Logger.String("error", err.Error()))
	}
	defer db.Close()

	if err := config.LoadGameConfig(db); err != nil {
		utils.Logger.Warn("Failed to load game config, using defaults", utils.Logger.String("error", err.Error()))
	}

	var sessions cache.Cache
	if cfg.CacheURL != "" {
		redis, err := cache.NewRedisCache(cfg.CacheURL, 0)
		if err != nil {
			utils.Logger.Fatal("Failed to connect to redis", utils.Logger.String("error", err.Error()))
		}
		sessions = redis
	} else {
		sessions = cache.NewMemoryCache()
	}
	defer sessions.Close()

	var publisher *mq.GameEventPublisher
	if cfg.MqURL != "" {
		provider, err := mq.NewRabbitmqMqProvider(cfg.MqURL)
		if err != nil {
			utils.Logger.Fatal("Failed to connect to rabbitmq", utils.Logger.String("error", err.Error()))
		}
		defer provider.Disconnect()

		publisher, err = mq.NewGameEventPublisher(provider)
		if err != nil {
			utils.Logger.Fatal("Failed to create event publisher", utils.Logger.String("error", err.Error()))
		}
	}

	effectManager := effects.NewManager()
	effectCtx, cancelEffects := context.WithCancel(context.Background())
	defer cancelEffects()
	go effectManager.Run(effectCtx)

	server := api.NewServer(db, sessions, publisher, effectManager)
	go func() {
		addr := fmt.Sprintf(":%s", cfg.ServerPort)
		if err := server.Start(addr); err != nil {
			utils.Logger.Fatal("Failed to start server", utils.Logger.String("error", err.Error()))
		}
	}()

	utils.Logger.Info("Server started successfully", utils.Logger.String("port", cfg.ServerPort))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		utils.Logger.Fatal("Server forced to shutdown", utils.Logger.String("error", err.Error()))
	}

	utils.Logger.Info("Server exited gracefully")
}

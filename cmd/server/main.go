package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/oggyb/matchmaker/internal/app"
	"github.com/oggyb/matchmaker/internal/cache"
	"github.com/oggyb/matchmaker/internal/config"
	"github.com/oggyb/matchmaker/internal/db"
	"github.com/oggyb/matchmaker/internal/logger"
	"github.com/oggyb/matchmaker/internal/push"
	"github.com/oggyb/matchmaker/internal/server"
	"github.com/oggyb/matchmaker/internal/service/conversation"
	"github.com/oggyb/matchmaker/internal/service/match"
	"github.com/oggyb/matchmaker/internal/service/notification"
	"github.com/oggyb/matchmaker/internal/service/recovery"
)

const (
	healthInterval  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	defer redisCache.Close()

	// Push fan-out; without a broker events are dropped
	var notifier push.Notifier = push.Nop{}
	if cfg.AMQP.URL != "" {
		rabbit, err := push.NewRabbitNotifier(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Error("failed to connect to rabbitmq", "err", err)
			os.Exit(1)
		}
		defer rabbit.Close()
		notifier = rabbit
	} else {
		log.Warn("AMQP_URL not set, push notifications are disabled")
	}
	dispatcher := push.NewDispatcher(notifier, log)

	appCtx := app.New(cfg, database, redisCache, log, dispatcher)

	if cfg.App.ENV == "development" && os.Getenv("SEED_ON_START") == "true" {
		if err := db.SeedDemoData(database, log, 40); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	registrars := []server.Registrar{
		match.NewRegistrar(appCtx),
		conversation.NewRegistrar(appCtx),
		notification.NewRegistrar(appCtx),
		recovery.NewRegistrar(appCtx, nil),
	}
	httpApp := server.NewHTTPServer(cfg, log, registrars...)
	grpcServer := server.NewGRPCServer(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go grpcServer.WatchHealth(ctx, appCtx, healthInterval)

	errCh := make(chan error, 2)
	go func() {
		log.Info("starting gRPC server", "addr", cfg.GRPC.Host+":"+cfg.GRPC.Port)
		if err := grpcServer.Serve(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- err
		}
	}()
	go func() {
		log.Info("starting HTTP server", "addr", cfg.HTTP.Host+":"+cfg.HTTP.Port)
		if err := server.StartHTTPServer(httpApp, cfg); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		log.Error("server failed", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
	grpcServer.Stop()
	dispatcher.Wait()

	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("bye")
}

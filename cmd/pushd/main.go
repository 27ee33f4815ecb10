// Package main wires together the push service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yhkim-dev/newsroom-push/internal/api"
	"github.com/yhkim-dev/newsroom-push/internal/clock/system"
	"github.com/yhkim-dev/newsroom-push/internal/config"
	"github.com/yhkim-dev/newsroom-push/internal/dispatcher"
	"github.com/yhkim-dev/newsroom-push/internal/logging"
	"github.com/yhkim-dev/newsroom-push/internal/notify"
	"github.com/yhkim-dev/newsroom-push/internal/push/webpush"
	"github.com/yhkim-dev/newsroom-push/internal/runner"
	"github.com/yhkim-dev/newsroom-push/internal/scheduler"
	memoryStorage "github.com/yhkim-dev/newsroom-push/internal/storage/memory"
	"github.com/yhkim-dev/newsroom-push/internal/storage/postgres"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var newsStore notify.NewsStore
	var subscriberStore notify.SubscriberStore
	switch cfg.DB.Provider {
	case "postgres":
		pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
			DSN:      cfg.DB.DSN,
			MaxConns: cfg.DB.MaxConns,
			MinConns: cfg.DB.MinConns,
		})
		if err != nil {
			logger.Fatal("postgres init failed", zap.Error(err))
		}
		defer pool.Close()
		newsStore = postgres.NewNewsStore(pool)
		subscriberStore = postgres.NewSubscriberStore(pool, logger.Named("store"))
	case "memory":
		logger.Warn("using in-memory stores; data will not survive restart")
		newsStore = memoryStorage.NewNewsStore()
		subscriberStore = memoryStorage.NewSubscriberStore()
	default:
		logger.Fatal("unknown db provider", zap.String("provider", cfg.DB.Provider))
	}

	var pusher notify.Pusher
	webPusher, err := webpush.New(webpush.Config{
		VAPIDPublicKey:  cfg.Push.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.Push.VAPIDPrivateKey,
		Subscriber:      cfg.Push.Subscriber,
		TTL:             time.Duration(cfg.Push.TTLSeconds) * time.Second,
		Timeout:         time.Duration(cfg.Push.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		// A nil pusher makes every delivery report a config failure
		// instead of crashing the trigger surface.
		logger.Warn("web push disabled", zap.Error(err))
	} else {
		pusher = webPusher
	}

	clock := system.New()
	dispatch := dispatcher.New(pusher, subscriberStore, cfg.Push.Concurrency, logger.Named("dispatcher"))
	mediaCache := notify.NewMediaNameCache(256, time.Hour, clock)
	run := runner.New(
		newsStore,
		subscriberStore,
		dispatch,
		mediaCache,
		clock,
		runner.Config{Window: cfg.Window()},
		logger.Named("runner"),
	)

	apiServer := api.NewServer(run, subscriberStore, cfg, logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if interval := cfg.PollInterval(); interval > 0 {
		tick := scheduler.New(run, interval, logger.Named("scheduler"))
		go tick.Run(ctx)
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

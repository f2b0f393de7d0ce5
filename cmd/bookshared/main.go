// Command bookshared runs the campus book marketplace API server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"bookshare/internal/app"
	"bookshare/internal/config"
	"bookshare/internal/ratelimit"
	"bookshare/internal/server"
	"bookshare/internal/util"
	"bookshare/pkg/queue"
	"bookshare/pkg/storage"
	"bookshare/pkg/store"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		util.InitLogger("info").Error("load config", "error", err)
		os.Exit(1)
	}
	logger := util.InitLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store.Store
	if cfg.DatabaseURL != "" {
		gs, err := store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		st = gs
		logger.Info("using postgres store")
	} else {
		st = store.NewMemoryStore()
		logger.Warn("no database_url configured, using in-memory store")
	}

	var revoker store.TokenRevoker
	if cfg.Redis.Addr != "" {
		revoker = store.NewRedisTokenRevoker(cfg.Redis.Addr, cfg.Redis.Password)
	} else {
		revoker = store.NewMemoryTokenRevoker()
	}
	sessions, err := store.NewJWTSessionStore(cfg.Session.Secret, cfg.Session.TTL, revoker)
	if err != nil {
		return err
	}

	var objects storage.ObjectStore
	if cfg.Storage.Endpoint != "" {
		objects, err = storage.NewMinioStore(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.UseSSL)
		if err != nil {
			return err
		}
		logger.Info("material storage enabled", "bucket", cfg.Storage.Bucket)
	} else {
		logger.Warn("no storage endpoint configured, material uploads disabled")
	}

	var notifyQueue *queue.RedisNotifyQueue
	if cfg.Queue.Enabled {
		notifyQueue, err = queue.NewRedisNotifyQueue(queue.RedisNotifyQueueConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			Stream:   cfg.Queue.Stream,
			Group:    cfg.Queue.Group,
		})
		if err != nil {
			return err
		}
	}

	var limiter server.AuthLimiter
	if cfg.RateLimit.AuthPerMinute > 0 && cfg.Redis.Addr != "" {
		limiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.Redis.Addr, cfg.Redis.Password, "", cfg.RateLimit.AuthPerMinute, time.Minute)
		if err != nil {
			return err
		}
	}

	var publisher app.NotifyPublisher
	if notifyQueue != nil {
		publisher = notifyQueue
	}
	application := app.New(st, sessions, publisher, objects, nil)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(server.Options{App: application, Limiter: limiter, TrustProxy: cfg.TrustProxy}).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	if notifyQueue != nil {
		notifyQueue.Start(gctx, 2, func(ctx context.Context, e queue.Event) error {
			// delivery hook: push/email integrations consume from here
			logger.Info("notification delivered", "notification_id", e.NotificationID, "user_id", e.UserID)
			return nil
		})
	}
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/social-discovery/config"
	"github.com/ErlanBelekov/social-discovery/internal/authclient"
	"github.com/ErlanBelekov/social-discovery/internal/authstate"
	"github.com/ErlanBelekov/social-discovery/internal/health"
	"github.com/ErlanBelekov/social-discovery/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/social-discovery/internal/infrastructure/redis"
	ctxlog "github.com/ErlanBelekov/social-discovery/internal/log"
	"github.com/ErlanBelekov/social-discovery/internal/metrics"
	"github.com/ErlanBelekov/social-discovery/internal/scheduler"
	httptransport "github.com/ErlanBelekov/social-discovery/internal/transport/http"
	"github.com/ErlanBelekov/social-discovery/internal/transport/http/handler"
	"github.com/ErlanBelekov/social-discovery/internal/transport/http/middleware"
	"github.com/ErlanBelekov/social-discovery/internal/view"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

// sessionStorage is what every storage driver provides.
type sessionStorage interface {
	authclient.Storage
	health.Pinger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	storage, closeStorage, err := newSessionStorage(ctx, cfg)
	if err != nil {
		stop()
		log.Fatalf("session storage: %v", err)
	}
	defer closeStorage()
	logger.Info("session storage ready", "driver", cfg.SessionStorage)

	// Auth
	api := authclient.NewAPI(cfg.SupabaseURL, cfg.SupabaseAnonKey, &http.Client{})
	var clientOpts []authclient.Option
	if cfg.SupabaseJWTSecret != "" {
		clientOpts = append(clientOpts, authclient.WithJWTSecret(cfg.SupabaseJWTSecret))
	}
	registry := authstate.NewRegistry(
		authstate.NewClientFactory(api, storage, logger, clientOpts...),
		cfg.ClientIdleTTL,
		logger,
	)
	defer registry.CloseAll()

	limiter := middleware.NewRateLimiter(cfg.SignInRatePerMin, logger)

	// Housekeeping
	sweeper, err := scheduler.NewSweeper(cfg.SweepSchedule, logger)
	if err != nil {
		stop()
		log.Fatalf("sweeper: %v", err)
	}
	sweeper.Add("instances", registry)
	sweeper.Add("rate_limiter", limiter)
	go sweeper.Start(ctx)

	renderer, err := view.NewRenderer()
	if err != nil {
		stop()
		log.Fatalf("templates: %v", err)
	}

	metrics.Register()
	checker := health.NewChecker(map[string]health.Pinger{
		"auth_service":    api,
		"session_storage": storage,
	}, logger, prometheus.DefaultRegisterer)

	eventsHandler := handler.NewEventsHandler(logger)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(
			logger,
			renderer,
			registry,
			limiter,
			cfg.CookieSecure,
			handler.NewPageHandler(logger),
			handler.NewAuthHandler(logger),
			eventsHandler,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	// Event streams never go idle on their own.
	srv.RegisterOnShutdown(eventsHandler.Close)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newSessionStorage(ctx context.Context, cfg *config.Config) (sessionStorage, func(), error) {
	switch cfg.SessionStorage {
	case config.StorageRedis:
		client, err := redis.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return redis.NewSessionStorage(client), func() { _ = client.Close() }, nil

	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		storage := postgres.NewSessionStorage(pool)
		if err := storage.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return storage, pool.Close, nil

	case config.StorageMemory:
		return authclient.NewMemoryStorage(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown session storage %q", cfg.SessionStorage)
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}

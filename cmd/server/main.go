// Command server runs the hub event stream API.
//
// main wires high-level dependencies and keeps the server lifecycle small;
// business logic lives in the internal service packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hubgate/internal/hub/eventid"
	"hubgate/internal/hub/handler"
	"hubgate/internal/hub/service"
	"hubgate/internal/hub/store"
	"hubgate/internal/platform/config"
	"hubgate/internal/platform/httpserver"
	"hubgate/internal/platform/logger"
	"hubgate/internal/platform/metrics"
	"hubgate/internal/platform/middleware"
	platformredis "hubgate/internal/platform/redis"
	"hubgate/internal/ratelimit"
	"hubgate/internal/token"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	m := metrics.New()

	ids := eventid.NewMonotonic()

	var eventStore store.EventStore
	if cfg.PostgresDSN != "" {
		pool, err := store.Connect(context.Background(), cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		eventStore = store.NewPostgresStore(pool, ids)
		log.Info("using postgres event store")
	} else {
		eventStore = store.NewMemoryStore(ids)
		log.Warn("using in-memory event store; events will not survive restarts")
	}

	var counterStore ratelimit.CounterStore
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		counterStore = ratelimit.NewRedisStore(redisClient.Client)
		log.Info("using redis rate limit counters")
	} else {
		counterStore = ratelimit.NewInMemoryStore()
	}
	limiter := ratelimit.NewLimiter(counterStore, cfg.RateLimit, cfg.RateLimitWindow)

	tokens := token.NewJWTService(cfg.TokenSigningKey, cfg.TokenIssuer)
	svc := service.New(eventStore, log, m)
	hub := handler.New(svc, log, cfg, tokens, ratelimit.Middleware(limiter, log, m))

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.ClientMetadata)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Latency(m))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())
	hub.Register(router)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting hub server", "addr", cfg.Addr, "env", cfg.Env, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

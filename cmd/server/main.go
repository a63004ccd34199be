package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"tausepro/internal/apiclient"
	"tausepro/internal/auth/metrics"
	"tausepro/internal/console"
	"tausepro/internal/paywall"
	"tausepro/internal/persist"
	"tausepro/internal/platform/config"
	"tausepro/internal/platform/health"
	"tausepro/internal/platform/httpserver"
	"tausepro/internal/platform/logger"
	"tausepro/internal/platform/redis"
	"tausepro/internal/platform/tracer"
	httptransport "tausepro/internal/transport/http"
	"tausepro/pkg/platform/circuit"
	"tausepro/pkg/platform/middleware/request"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Console behaviour lives in internal packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing tausepro console",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"api_base_url", cfg.API.BaseURL,
	)

	proxies, err := cfg.ParsedTrustedProxies()
	if err != nil {
		return err
	}

	var tr tracer.Tracer = tracer.NewNoop()
	if cfg.Tracing.Enabled {
		tr = tracer.NewOTel()
	}

	healthHandler := health.New(cfg.Environment)
	store, rdb, err := sessionStore(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close() //nolint:errcheck // process is exiting
		healthHandler.RegisterCheck("redis", rdb.Health)
	}

	breaker := circuit.New("tausepro-api",
		circuit.WithFailureThreshold(cfg.API.FailureThreshold),
		circuit.WithCooldown(cfg.API.Cooldown),
	)
	healthHandler.RegisterCheck("api", func(context.Context) error {
		if breaker.State() == circuit.StateOpen {
			return errors.New("api circuit open")
		}
		return nil
	})

	registry := console.NewRegistry(
		apiclient.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout, Breaker: breaker},
		store,
		console.WithLogger(log),
		console.WithMetrics(metrics.New()),
		console.WithTracer(tr),
		console.WithIdleTTL(cfg.SessionIdleTTL),
	)

	worker, err := paywall.NewWorker(registry,
		paywall.WithInterval(cfg.Paywall.RefreshInterval),
		paywall.WithWorkerLogger(log),
	)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.NewHandler(log), httptransport.Config{
		Bundles:        registry,
		Health:         healthHandler,
		Metrics:        request.NewMetrics(),
		Cookie:         httptransport.CookieConfig{Secure: cfg.SecureCookies, MaxAge: int(cfg.Redis.SessionTTL / time.Second)},
		RequestTimeout: cfg.RequestTimeout,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		TrustedProxies: proxies,
	}, log)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		registry.Start()
		return nil
	})
	g.Go(func() error {
		if err := worker.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if rdb != nil {
		g.Go(func() error {
			rdb.RunPoolStats(gctx, 30*time.Second, log)
			return nil
		})
	}
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		registry.Stop()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// sessionStore picks redis when configured and process memory otherwise.
func sessionStore(ctx context.Context, cfg config.RedisConfig, log *slog.Logger) (persist.Store, *redis.Client, error) {
	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if rdb == nil {
		log.Warn("no redis configured, console sessions are kept in memory")
		return persist.NewMemory(), nil, nil
	}
	log.Info("console sessions persisted in redis", "prefix", cfg.KeyPrefix)
	return persist.NewRedis(rdb, cfg.KeyPrefix, cfg.SessionTTL), rdb, nil
}

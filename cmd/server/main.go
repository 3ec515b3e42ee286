package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"carebridge/internal/audit/outbox"
	consentmetrics "carebridge/internal/consent/metrics"
	"carebridge/internal/consent/workers/expiry"
	"carebridge/internal/platform/config"
	"carebridge/internal/platform/health"
	"carebridge/internal/platform/logger"
	"carebridge/pkg/platform/middleware/ratelimit"
	"carebridge/pkg/platform/middleware/request"
)

const shutdownTimeout = 10 * time.Second

// main loads configuration and hands off to run so deferred cleanup executes
// before the process exits.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	log.Info("initializing carebridge",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"postgres", cfg.Database.URL != "",
		"redis", cfg.Redis.URL != "",
		"kafka", cfg.Kafka.Brokers != "",
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := consentmetrics.New(reg)
	healthHandler := health.New(cfg.Environment)

	infra, err := openInfra(ctx, cfg, log, reg, healthHandler)
	if err != nil {
		return err
	}
	defer infra.Close()

	app, err := buildConsent(cfg, log, infra, reg, metrics)
	if err != nil {
		return err
	}
	defer app.publisher.Close()

	worker, err := expiry.New(app.service,
		expiry.WithInterval(cfg.Consent.SweepInterval),
		expiry.WithLogger(log),
	)
	if err != nil {
		return err
	}

	limiter := ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	router := newRouter(routerDeps{
		cfg:         cfg,
		log:         log,
		consent:     app.service,
		sweeper:     worker,
		auditTrail:  app.publisher,
		limiter:     limiter,
		health:      healthHandler,
		registry:    reg,
		httpMetrics: request.NewMetrics(reg),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := worker.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		limiter.Run(gctx, time.Minute)
		return nil
	})
	if app.relay != nil {
		g.Go(func() error {
			if err := app.relay.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			pruneOutbox(gctx, app.relay, cfg.Kafka.OutboxRetention, log)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// pruneOutbox deletes relayed audit rows older than retention once an hour.
func pruneOutbox(ctx context.Context, relay *outbox.Relay, retention time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := relay.Prune(ctx, retention)
			if err != nil {
				log.Warn("failed to prune audit outbox", "error", err)
				continue
			}
			if n > 0 {
				log.Info("pruned audit outbox", "deleted", n)
			}
		}
	}
}

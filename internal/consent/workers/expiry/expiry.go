// Package expiry drives the consent expiry sweep on a fixed interval.
package expiry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"carebridge/pkg/platform/clock"
)

// Sweeper closes out consent requests whose expiry has passed.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// Worker runs Sweep periodically.
type Worker struct {
	sweeper  Sweeper
	clock    clock.Clock
	interval time.Duration
	logger   *slog.Logger
}

type Option func(*Worker)

// WithInterval overrides the sweep interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithClock(clk clock.Clock) Option {
	return func(w *Worker) {
		if clk != nil {
			w.clock = clk
		}
	}
}

// New constructs a Worker. The default interval is one minute.
func New(sweeper Sweeper, opts ...Option) (*Worker, error) {
	if sweeper == nil {
		return nil, errors.New("sweeper is required")
	}
	w := &Worker{
		sweeper:  sweeper,
		clock:    clock.System{},
		interval: time.Minute,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Start sweeps every interval until ctx is cancelled. A failed run is
// logged and the next tick tries again.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "consent expiry worker started", "interval", w.interval)
	for {
		select {
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.ErrorContext(ctx, "consent expiry sweep failed", "error", err)
			}
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "consent expiry worker stopped")
			return ctx.Err()
		}
	}
}

// RunOnce performs one sweep at the current clock time and returns how many
// requests it expired. The count is valid even when err is non-nil.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	n, err := w.sweeper.Sweep(ctx, w.clock.Now())
	if n > 0 {
		w.logger.InfoContext(ctx, "consent expiry sweep completed", "expired", n)
	}
	return n, err
}

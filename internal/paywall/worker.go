package paywall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	dErrors "tausepro/pkg/domain-errors"
)

// Source lists the paywall stores of visitors currently signed in.
type Source interface {
	AuthenticatedStores() []*Store
}

// RunResult summarizes one sweep.
type RunResult struct {
	Refreshed int
	Failed    int
}

// Worker periodically refreshes usage for every signed-in console visitor.
type Worker struct {
	source   Source
	interval time.Duration
	maxTries uint
	backoff  func() backoff.BackOff
	logger   *slog.Logger
}

type WorkerOption func(*Worker)

// WithInterval overrides the refresh interval when greater than zero.
func WithInterval(interval time.Duration) WorkerOption {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithRetry sets the attempts per store and the backoff between them.
func WithRetry(maxTries uint, b func() backoff.BackOff) WorkerOption {
	return func(w *Worker) {
		if maxTries > 0 {
			w.maxTries = maxTries
		}
		if b != nil {
			w.backoff = b
		}
	}
}

func NewWorker(source Source, opts ...WorkerOption) (*Worker, error) {
	if source == nil {
		return nil, fmt.Errorf("source is required")
	}
	w := &Worker{
		source:   source,
		interval: 5 * time.Minute,
		maxTries: 3,
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			return b
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Start runs a sweep every interval until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := w.RunOnce(ctx)
			if err != nil {
				w.logger.WarnContext(ctx, "usage refresh sweep had failures",
					"refreshed", res.Refreshed,
					"failed", res.Failed,
					"error", err,
				)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce refreshes every signed-in store. Transient API failures are
// retried with backoff; anything else fails that store for this sweep.
func (w *Worker) RunOnce(ctx context.Context) (RunResult, error) {
	start := time.Now()
	defer func() { workerRunDuration.Observe(time.Since(start).Seconds()) }()

	var res RunResult
	var errs []error
	for _, store := range w.source.AuthenticatedStores() {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		_, err := backoff.Retry(ctx, func() (struct{}, error) {
			err := store.RefreshUsage(ctx)
			if err != nil && !transient(err) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		},
			backoff.WithBackOff(w.backoff()),
			backoff.WithMaxTries(w.maxTries),
		)
		if err != nil {
			res.Failed++
			errs = append(errs, err)
			continue
		}
		res.Refreshed++
	}

	if len(errs) > 0 {
		return res, errors.Join(errs...)
	}
	return res, nil
}

func transient(err error) bool {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeUnavailable, dErrors.CodeTimeout, dErrors.CodeRateLimited:
		return true
	default:
		return false
	}
}

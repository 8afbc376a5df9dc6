package scheduler

import (
	"context"
	"log"
	"time"

	apperrors "hdpay/internal/shared_kernel/errors"
)

// Cycle runs one pass of a periodic job and returns a key=value summary.
type Cycle func(ctx context.Context, now time.Time) (string, *apperrors.AppError)

type Settings struct {
	Enabled      bool
	Interval     time.Duration
	InitialDelay time.Duration
}

type Worker struct {
	name     string
	settings Settings
	cycle    Cycle
	now      func() time.Time
	logger   *log.Logger
}

func NewWorker(name string, settings Settings, cycle Cycle, logger *log.Logger) *Worker {
	return &Worker{
		name:     name,
		settings: settings,
		cycle:    cycle,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

func (w *Worker) Name() string {
	if w == nil {
		return ""
	}
	return w.name
}

func (w *Worker) Enabled() bool {
	return w != nil && w.settings.Enabled && w.cycle != nil && w.settings.Interval > 0
}

// Start blocks until ctx is done. The first cycle runs after the initial
// delay, then once per interval. Cycles never overlap.
func (w *Worker) Start(ctx context.Context) {
	if !w.Enabled() {
		return
	}

	w.logf(
		"worker started name=%s interval=%s initial_delay=%s",
		w.name,
		w.settings.Interval,
		w.settings.InitialDelay,
	)

	if w.settings.InitialDelay > 0 {
		timer := time.NewTimer(w.settings.InitialDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			w.logf("worker stopped name=%s", w.name)
			return
		case <-timer.C:
		}
	}

	w.RunOnce(ctx)
	ticker := time.NewTicker(w.settings.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logf("worker stopped name=%s", w.name)
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single cycle and logs its summary line.
func (w *Worker) RunOnce(ctx context.Context) (string, *apperrors.AppError) {
	startedAt := w.now()
	summary, appErr := w.cycle(ctx, startedAt)
	if appErr != nil {
		w.logf(
			"worker cycle failed name=%s code=%s message=%s details=%v",
			w.name,
			appErr.Code,
			appErr.Message,
			appErr.Details,
		)
		return "", appErr
	}

	w.logf(
		"worker cycle completed name=%s %s latency_ms=%d",
		w.name,
		summary,
		time.Since(startedAt).Milliseconds(),
	)
	return summary, nil
}

func (w *Worker) logf(format string, args ...any) {
	if w.logger == nil {
		return
	}
	w.logger.Printf(format, args...)
}

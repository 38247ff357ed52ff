package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Syncer refreshes the mirror.
type Syncer interface {
	Sync(ctx context.Context) (SyncStats, error)
}

// WorkerConfig holds configuration for the sync worker.
type WorkerConfig struct {
	// Interval between periodic syncs. Zero disables them; triggered syncs
	// still run.
	Interval time.Duration
}

// Worker refreshes the catalog mirror from the provider, periodically and
// on demand through Trigger.
type Worker struct {
	syncer  Syncer
	c       WorkerConfig
	trigger chan struct{}
	ctx     context.Context
	stop    context.CancelFunc
	done    chan struct{}
}

// NewWorker creates a sync worker.
func NewWorker(syncer Syncer, c WorkerConfig) *Worker {
	return &Worker{syncer: syncer, c: c, trigger: make(chan struct{}, 1)}
}

// Trigger requests a sync without waiting for it. Requests arriving while
// one is pending are merged.
func (w *Worker) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Start runs until Stop. With a positive interval it syncs immediately and
// then once per interval.
func (w *Worker) Start(ctx context.Context) error {
	if w.ctx != nil && w.stop != nil {
		return fmt.Errorf("catalog sync worker already started")
	}
	w.ctx, w.stop = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.run(w.ctx)
	return nil
}

// Stop cancels the worker and waits for an in-flight sync to return.
func (w *Worker) Stop() error {
	if w.stop == nil {
		return fmt.Errorf("catalog sync worker already stopped or not started")
	}
	w.stop()
	w.stop = nil
	<-w.done
	return nil
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	var tick <-chan time.Time
	if w.c.Interval > 0 {
		ticker := time.NewTicker(w.c.Interval)
		defer ticker.Stop()
		tick = ticker.C
		w.syncOnce(ctx)
	}

	for {
		select {
		case <-tick:
			w.syncOnce(ctx)
		case <-w.trigger:
			w.syncOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *Worker) syncOnce(ctx context.Context) {
	stats, err := w.syncer.Sync(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Default().ErrorContext(ctx, "catalog_sync_failed", slog.String("error", err.Error()))
		return
	}
	slog.Default().InfoContext(ctx, "catalog_synced",
		slog.Int("products", stats.Products),
		slog.Int("prices", stats.Prices),
		slog.Int64("deactivated_products", stats.DeactivatedProducts),
		slog.Int64("deactivated_prices", stats.DeactivatedPrices),
	)
}

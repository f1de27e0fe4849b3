package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RollupStore is the aggregation surface the rollup worker needs.
type RollupStore interface {
	UnrolledDates(ctx context.Context) ([]string, error)
	RollupDay(ctx context.Context, dateISO string) error
}

// RollupWorker periodically folds unprocessed food-log entries into
// per-day nutrition records, which the statistics layer reads.
type RollupWorker struct {
	store    RollupStore
	interval time.Duration
}

func NewRollupWorker(store RollupStore, interval time.Duration) *RollupWorker {
	return &RollupWorker{store: store, interval: interval}
}

// RunOnce rolls up every day that has unprocessed entries and returns how
// many days were recomputed. A failing day is logged and skipped so one
// bad date cannot block the rest.
func (w *RollupWorker) RunOnce(ctx context.Context) (int, error) {
	dates, err := w.store.UnrolledDates(ctx)
	if err != nil {
		return 0, fmt.Errorf("list unrolled dates: %w", err)
	}
	if len(dates) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Rolling up daily records", "days", len(dates))

	processed := 0
	for _, date := range dates {
		if err := w.store.RollupDay(ctx, date); err != nil {
			slog.ErrorContext(ctx, "Failed to roll up day",
				"date", date, "error", err)
			continue
		}
		processed++
	}

	slog.InfoContext(ctx, "Rollup complete",
		"processed", processed,
		"total_checked", len(dates))
	return processed, nil
}

// Run executes an immediate rollup, then repeats on the configured
// interval until the context is cancelled.
func (w *RollupWorker) Run(ctx context.Context) error {
	if _, err := w.RunOnce(ctx); err != nil {
		slog.ErrorContext(ctx, "Initial rollup failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "Scheduled rollup failed", "error", err)
			}
		}
	}
}

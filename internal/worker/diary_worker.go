package worker

import (
	"context"
	"fmt"
	"log/slog"

	"nutritrack/internal/amqp"
	"nutritrack/internal/core"
	"nutritrack/internal/log"
	"nutritrack/internal/sheets"
)

// SyncStore is the food-log surface the diary worker needs from storage.
type SyncStore interface {
	GetFoodLogEntry(ctx context.Context, id int64) (core.FoodLogEntry, error)
	PendingSyncEntries(ctx context.Context, limit int) ([]core.FoodLogEntry, error)
	MarkSynced(ctx context.Context, id int64) error
}

// DiarySyncWorker exports food-log entries to the diary spreadsheet. It is
// driven by AMQP messages, with a startup catch-up pass as backup in case
// messages were lost while the worker was down.
type DiarySyncWorker struct {
	store     SyncStore
	diary     sheets.DiaryWriter
	batchSize int
}

func NewDiarySyncWorker(store SyncStore, diary sheets.DiaryWriter, batchSize int) *DiarySyncWorker {
	return &DiarySyncWorker{
		store:     store,
		diary:     diary,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single food-log sync message from AMQP.
func (w *DiarySyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.FoodLogSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", log.FieldEntryID, msg.EntryID)

	entry, err := w.store.GetFoodLogEntry(ctx, msg.EntryID)
	if err != nil {
		return fmt.Errorf("get food log entry from storage: %w", err)
	}

	if err := w.syncEntry(ctx, entry); err != nil {
		return fmt.Errorf("sync entry to diary: %w", err)
	}
	return nil
}

// ProcessPendingEntries syncs entries the AMQP path missed. This is a
// backup mechanism, not the primary delivery path.
func (w *DiarySyncWorker) ProcessPendingEntries(ctx context.Context) error {
	pending, err := w.store.PendingSyncEntries(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending entries: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))

	for _, entry := range pending {
		if err := w.syncEntry(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to sync entry",
				log.FieldEntryID, entry.ID, log.FieldError, err)
			continue
		}
	}
	return nil
}

// StartupSyncCheck recovers entries left unsynced by missed messages or
// worker downtime. It works through a larger batch than the steady-state
// backup pass.
func (w *DiarySyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.store.PendingSyncEntries(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending entries for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending entries found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending entries on startup, processing...",
		"count", len(pending))

	synced := 0
	failed := 0
	for _, entry := range pending {
		if err := w.syncEntry(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to sync entry during startup",
				log.FieldEntryID, entry.ID, log.FieldError, err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return nil
}

func (w *DiarySyncWorker) syncEntry(ctx context.Context, entry core.FoodLogEntry) error {
	ref, err := w.diary.AppendEntry(ctx, entry)
	if err != nil {
		return fmt.Errorf("append to diary: %w", err)
	}

	if err := w.store.MarkSynced(ctx, entry.ID); err != nil {
		// The row is in the spreadsheet; a re-sync would only duplicate it.
		slog.ErrorContext(ctx, "Failed to mark as synced",
			log.FieldEntryID, entry.ID, log.FieldError, err)
	}

	slog.InfoContext(ctx, "Successfully synced entry",
		log.FieldEntryID, entry.ID,
		log.FieldSheetsRef, ref,
		log.FieldProductName, entry.Name)
	return nil
}

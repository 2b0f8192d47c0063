package worker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/kv"
	"expensetracker/internal/log"
	"expensetracker/internal/sheets"
	"expensetracker/internal/store"
)

// MirrorWorker keeps a sheets.Mirror in step with the record blob stored in
// a shared backend. It never trusts message payloads: every sync re-reads
// the blob, so duplicates and reordering are harmless.
type MirrorWorker struct {
	kv     kv.Store
	key    string
	mirror sheets.Mirror
	logger *log.Logger

	mu         sync.Mutex
	lastDigest string
	syncs      int
}

func NewMirrorWorker(backend kv.Store, key string, mirror sheets.Mirror, logger *log.Logger) *MirrorWorker {
	if key == "" {
		key = store.DefaultKey
	}
	return &MirrorWorker{
		kv:     backend,
		key:    key,
		mirror: mirror,
		logger: log.OrDefault(logger).WithComponent(log.ComponentWorker),
	}
}

// HandleChange processes one change message. Messages for other keys are
// acknowledged without work.
func (w *MirrorWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	if msg.Key != w.key {
		w.logger.DebugContext(ctx, "Ignoring change for another key", log.FieldKey, msg.Key)
		return nil
	}
	w.logger.DebugContext(ctx, "Processing change message",
		"message_id", msg.ID,
		log.FieldOperation, msg.Op,
		log.FieldExpenseID, msg.ExpenseID,
		log.FieldVersion, msg.Version)
	return w.Sync(ctx)
}

// Sync mirrors the current blob unless it is identical to the one mirrored
// last. Unreadable blobs are reported as errors so the message is retried.
func (w *MirrorWorker) Sync(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	blob, ok, err := w.kv.Get(ctx, w.key)
	if err != nil {
		return fmt.Errorf("read %s: %w", w.key, err)
	}
	if !ok {
		blob = "[]"
	}

	sum := sha256.Sum256([]byte(blob))
	digest := hex.EncodeToString(sum[:])
	if digest == w.lastDigest {
		w.logger.DebugContext(ctx, "Mirror already up to date", log.FieldKey, w.key)
		return nil
	}

	records, dropped, err := store.Decode(blob)
	if err != nil {
		return fmt.Errorf("decode %s: %w", w.key, err)
	}
	for _, d := range dropped {
		w.logger.WarnContext(ctx, "Skipping invalid record", log.FieldError, d)
	}

	if err := w.mirror.Mirror(ctx, records); err != nil {
		return fmt.Errorf("mirror expenses: %w", err)
	}
	w.lastDigest = digest
	w.syncs++

	w.logger.InfoContext(ctx, "Mirror updated",
		log.FieldOperation, log.OpSync,
		log.FieldCount, len(records))
	return nil
}

// RunPeriodic calls Sync every interval until ctx is done. It is the
// fallback for messages lost while the worker was down.
func (w *MirrorWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Sync(ctx); err != nil {
				w.logger.Failure(ctx, "Periodic sync failed", log.OpSync, err)
			}
		}
	}
}

// Syncs reports how many times the mirror was actually rewritten.
func (w *MirrorWorker) Syncs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.syncs
}

package service

import (
	"context"
	"time"

	"bitwise74/vidshare/apperr"
	"bitwise74/vidshare/model"
	"bitwise74/vidshare/store"

	"go.uber.org/zap"
)

// FinalizeEvent is the object store's notification that an uploaded object
// reached durable state. Delivery is at-least-once: duplicates and stale
// events are expected and must no-op.
type FinalizeEvent struct {
	Key       string
	SizeBytes int64
	ETag      string
}

type Reactor struct {
	Store      store.Store
	Dispatcher *Dispatcher
}

// HandleFinalize applies the PENDING -> READY transition for the event's
// record at most once and kicks off notification on the winning attempt.
// A non-nil return means a transient store failure, everything else is a
// deliberate discard and resolves to nil so the event source won't redeliver.
func (r *Reactor) HandleFinalize(ctx context.Context, ev *FinalizeEvent) error {
	fileID, ok := model.FileIDFromObjectKey(ev.Key)
	if !ok {
		zap.L().Debug("Discarding finalize event with malformed key", zap.String("key", ev.Key))
		return nil
	}

	rec, err := r.Store.Get(ctx, fileID)
	if err != nil {
		return err
	}

	if rec == nil {
		zap.L().Debug("Discarding finalize event with no matching record", zap.String("fileID", fileID))
		return nil
	}

	if rec.State != model.StatePending {
		// Duplicate or late delivery for an already-settled record
		zap.L().Debug("Discarding finalize event for settled record",
			zap.String("fileID", fileID),
			zap.String("state", rec.State))
		return nil
	}

	// Declared values are advisory. A mismatch is logged, never blocks.
	if ev.SizeBytes > 0 && ev.SizeBytes != rec.SizeBytes {
		zap.L().Warn("Finalized object size differs from declared size",
			zap.String("fileID", fileID),
			zap.Int64("declared", rec.SizeBytes),
			zap.Int64("actual", ev.SizeBytes))
	}

	readyAt := time.Now().Unix()

	err = r.Store.ConditionalUpdate(ctx, fileID, model.StatePending, store.StatePatch{
		State:   model.StateReady,
		ReadyAt: readyAt,
	})
	if err != nil {
		if apperr.IsKind(err, apperr.Conflict) {
			// Lost the race against a concurrent invocation, which means
			// the transition already happened. Success-equivalent.
			zap.L().Debug("Lost finalize race, record already transitioned", zap.String("fileID", fileID))
			return nil
		}

		return err
	}

	rec.State = model.StateReady
	rec.ReadyAt = readyAt

	// Notification is best-effort with its own retry and failure tracking.
	// It never rolls back the transition above.
	go r.Dispatcher.Dispatch(context.WithoutCancel(ctx), rec)

	return nil
}

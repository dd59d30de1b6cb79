// Package store implements the metadata table adapter. All mutation goes
// through single-record writes; state transitions are conditional so that
// concurrent writers resolve races without locks.
package store

import (
	"context"
	"time"

	"bitwise74/vidshare/model"
)

// StatePatch is the payload of a conditional state transition.
type StatePatch struct {
	State   string
	ReadyAt int64
}

// Store is the single logical table the coordinator persists into. Records
// carry a TTL attribute honored natively by the backing table, so nothing
// here exposes a delete.
type Store interface {
	// Put creates the record, refusing to overwrite an existing file ID.
	Put(ctx context.Context, rec *model.UploadRecord) error

	// Get returns the record, or nil when absent.
	Get(ctx context.Context, fileID string) (*model.UploadRecord, error)

	// ConditionalUpdate applies patch only while the record's state still
	// equals expectedState, returning a Conflict error otherwise.
	ConditionalUpdate(ctx context.Context, fileID, expectedState string, patch StatePatch) error

	// SetNotificationStatus moves notification_status from expected to next,
	// returning a Conflict error when another writer got there first.
	SetNotificationStatus(ctx context.Context, fileID, expected, next string) error

	// RecordDownload bumps the analytics counter and last-download time.
	// Lost updates under concurrency are acceptable.
	RecordDownload(ctx context.Context, fileID string, at time.Time) error

	QueryByRecipient(ctx context.Context, recipient string, limit int32) ([]model.UploadRecord, error)
	QueryByDate(ctx context.Context, date string, limit int32) ([]model.UploadRecord, error)
}

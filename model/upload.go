// Package model defines the persisted entities of the service
package model

import "strings"

// Upload lifecycle states. EXPIRED is never stored: the metadata table's
// TTL drops the record instead.
const (
	StatePending = "PENDING"
	StateReady   = "READY"
	StateFailed  = "FAILED"
)

// Notification delivery states, owned exclusively by the dispatcher.
const (
	NotifyNotSent = "NOT_SENT"
	NotifySent    = "SENT"
	NotifyFailed  = "FAILED"
)

const objectKeyPrefix = "uploads/"

// UploadRecord is the single persisted entity of the coordinator. One record
// exists per file ID for its whole lifetime; the store's TTL on ExpiresAt is
// the only thing that ever removes it.
type UploadRecord struct {
	FileID         string `dynamodbav:"file_id" json:"file_id"`
	State          string `dynamodbav:"state" json:"state"`
	OwnerEmail     string `dynamodbav:"owner_email,omitempty" json:"owner_email,omitempty"`
	RecipientEmail string `dynamodbav:"recipient_email" json:"recipient_email"`
	FileName       string `dynamodbav:"file_name" json:"file_name"`
	SizeBytes      int64  `dynamodbav:"size_bytes" json:"size_bytes"`
	ContentType    string `dynamodbav:"content_type" json:"content_type"`

	// UploadDate is the yyyy-mm-dd partition of CreatedAt, kept as its own
	// attribute so the date-index GSI can key on it.
	UploadDate string `dynamodbav:"upload_date" json:"upload_date"`

	NotificationStatus string `dynamodbav:"notification_status" json:"notification_status"`

	DownloadCount  int64 `dynamodbav:"download_count" json:"download_count"`
	LastDownloadAt int64 `dynamodbav:"last_download_at,omitempty" json:"last_download_at,omitzero"`

	// Unix second timestamps. ExpiresAt doubles as the table's TTL attribute.
	CreatedAt int64 `dynamodbav:"created_at" json:"created_at"`
	ReadyAt   int64 `dynamodbav:"ready_at,omitempty" json:"ready_at,omitzero"`
	ExpiresAt int64 `dynamodbav:"expires_at" json:"expires_at"`
}

// ObjectKey returns the object store key a file ID maps to. Every credential
// minted for a record is scoped to exactly this key.
func ObjectKey(fileID string) string {
	return objectKeyPrefix + fileID
}

// FileIDFromObjectKey reverses ObjectKey. The second return is false for keys
// outside the uploads/ namespace, which finalize-event handling discards.
func FileIDFromObjectKey(key string) (string, bool) {
	id, ok := strings.CutPrefix(key, objectKeyPrefix)
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// Package events consumes the object store's finalize notifications and
// feeds them to the completion reactor.
package events

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"bitwise74/vidshare/service"
)

// s3Notification mirrors the S3 event notification payload, reduced to the
// fields the reactor needs.
type s3Notification struct {
	Records []struct {
		EventName string `json:"eventName"`
		S3        struct {
			Object struct {
				Key  string `json:"key"`
				Size int64  `json:"size"`
				ETag string `json:"eTag"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// ParseNotification extracts finalize events from an S3 notification body.
// Non-creation records are skipped. Object keys arrive URL-encoded and are
// decoded here once.
func ParseNotification(body []byte) ([]*service.FinalizeEvent, error) {
	var n s3Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("failed to parse notification, %w", err)
	}

	evs := make([]*service.FinalizeEvent, 0, len(n.Records))

	for _, r := range n.Records {
		if !strings.HasPrefix(r.EventName, "ObjectCreated:") {
			continue
		}

		key, err := url.QueryUnescape(r.S3.Object.Key)
		if err != nil {
			// Undecodable key can never match a record, skip it
			continue
		}

		evs = append(evs, &service.FinalizeEvent{
			Key:       key,
			SizeBytes: r.S3.Object.Size,
			ETag:      strings.Trim(r.S3.Object.ETag, `"`),
		})
	}

	return evs, nil
}

package events

import (
	"context"
	"testing"
	"time"

	"bitwise74/vidshare/apperr"
	"bitwise74/vidshare/model"
	"bitwise74/vidshare/service"
	"bitwise74/vidshare/store"

	"github.com/stretchr/testify/assert"
)

// stubStore only supports the Get path the reactor hits before discarding.
type stubStore struct {
	getErr error
}

func (s *stubStore) Put(context.Context, *model.UploadRecord) error { return nil }

func (s *stubStore) Get(context.Context, string) (*model.UploadRecord, error) {
	return nil, s.getErr
}

func (s *stubStore) ConditionalUpdate(context.Context, string, string, store.StatePatch) error {
	return nil
}

func (s *stubStore) SetNotificationStatus(context.Context, string, string, string) error {
	return nil
}

func (s *stubStore) RecordDownload(context.Context, string, time.Time) error { return nil }

func (s *stubStore) QueryByRecipient(context.Context, string, int32) ([]model.UploadRecord, error) {
	return nil, nil
}

func (s *stubStore) QueryByDate(context.Context, string, int32) ([]model.UploadRecord, error) {
	return nil, nil
}

const pollerNotification = `{
  "Records": [
    {
      "eventName": "ObjectCreated:Put",
      "s3": {"object": {"key": "uploads/abc", "size": 5, "eTag": "\"aa\""}}
    }
  ]
}`

func TestHandleSettlesDiscardedEvents(t *testing.T) {
	p := &Poller{
		Reactor: &service.Reactor{Store: &stubStore{}},
	}

	// Unknown record is a deliberate discard, the message may be deleted
	assert.True(t, p.handle(context.Background(), pollerNotification))
}

func TestHandleLeavesMessageOnTransientFailure(t *testing.T) {
	p := &Poller{
		Reactor: &service.Reactor{
			Store: &stubStore{
				getErr: apperr.New(apperr.TransientStore, apperr.CodeStoreUnavailable, "table down"),
			},
		},
	}

	assert.False(t, p.handle(context.Background(), pollerNotification), "transient failures rely on queue redelivery")
}

func TestHandleDropsUnparseablePayload(t *testing.T) {
	p := &Poller{
		Reactor: &service.Reactor{Store: &stubStore{}},
	}

	assert.True(t, p.handle(context.Background(), "not json"), "malformed payloads won't improve on redelivery")
}

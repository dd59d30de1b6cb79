package service

import (
	"context"
	"sync"
	"time"

	"bitwise74/vidshare/apperr"
	"bitwise74/vidshare/credential"
	"bitwise74/vidshare/model"
	"bitwise74/vidshare/store"
)

// fakeStore is an in-memory Store with the same CAS semantics as the
// DynamoDB adapter.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]*model.UploadRecord

	putErr      error
	getErr      error
	updateErr   error
	downloadErr error

	putCalls      int
	downloadCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*model.UploadRecord)}
}

func (f *fakeStore) Put(_ context.Context, rec *model.UploadRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.putCalls++
	if f.putErr != nil {
		return f.putErr
	}

	if _, ok := f.records[rec.FileID]; ok {
		return apperr.New(apperr.Conflict, apperr.CodeStoreUnavailable, "record already exists")
	}

	cp := *rec
	f.records[rec.FileID] = &cp
	return nil
}

func (f *fakeStore) Get(_ context.Context, fileID string) (*model.UploadRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}

	rec, ok := f.records[fileID]
	if !ok {
		return nil, nil
	}

	cp := *rec
	return &cp, nil
}

func (f *fakeStore) ConditionalUpdate(_ context.Context, fileID, expectedState string, patch store.StatePatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return f.updateErr
	}

	rec, ok := f.records[fileID]
	if !ok || rec.State != expectedState {
		return apperr.New(apperr.Conflict, apperr.CodeStoreUnavailable, "state changed concurrently")
	}

	rec.State = patch.State
	if patch.ReadyAt != 0 {
		rec.ReadyAt = patch.ReadyAt
	}
	return nil
}

func (f *fakeStore) SetNotificationStatus(_ context.Context, fileID, expected, next string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return f.updateErr
	}

	rec, ok := f.records[fileID]
	if !ok || rec.NotificationStatus != expected {
		return apperr.New(apperr.Conflict, apperr.CodeStoreUnavailable, "notification status changed concurrently")
	}

	rec.NotificationStatus = next
	return nil
}

func (f *fakeStore) RecordDownload(_ context.Context, fileID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.downloadCalls++
	if f.downloadErr != nil {
		return f.downloadErr
	}

	if rec, ok := f.records[fileID]; ok {
		rec.DownloadCount++
		rec.LastDownloadAt = at.Unix()
	}
	return nil
}

func (f *fakeStore) QueryByRecipient(_ context.Context, recipient string, _ int32) ([]model.UploadRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.UploadRecord
	for _, rec := range f.records {
		if rec.RecipientEmail == recipient {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeStore) QueryByDate(_ context.Context, date string, _ int32) ([]model.UploadRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.UploadRecord
	for _, rec := range f.records {
		if rec.UploadDate == date {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeStore) record(fileID string) *model.UploadRecord {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.records[fileID]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

func (f *fakeStore) downloads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.downloadCalls
}

var _ store.Store = (*fakeStore)(nil)

type fakeIssuer struct {
	mu         sync.Mutex
	writeErr   error
	readErr    error
	writeCalls int
	readCalls  int
}

func (f *fakeIssuer) IssueWrite(_ context.Context, key, _ string, ttl time.Duration) (*credential.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writeCalls++
	if f.writeErr != nil {
		return nil, f.writeErr
	}

	return &credential.Credential{
		Key:        key,
		URL:        "https://bucket.test/" + key + "?sig=w",
		Method:     "PUT",
		Capability: credential.CapabilityWrite,
		ExpiresAt:  time.Now().Add(ttl),
	}, nil
}

func (f *fakeIssuer) IssueRead(_ context.Context, key string, ttl time.Duration) (*credential.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.readCalls++
	if f.readErr != nil {
		return nil, f.readErr
	}

	return &credential.Credential{
		Key:        key,
		URL:        "https://bucket.test/" + key + "?sig=r",
		Method:     "GET",
		Capability: credential.CapabilityRead,
		ExpiresAt:  time.Now().Add(ttl),
	}, nil
}

// fakeMailer returns errs in order, then succeeds.
type fakeMailer struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (f *fakeMailer) Send(_ context.Context, _, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

func (f *fakeMailer) sends() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bitwise74/vidshare/apperr"
	"bitwise74/vidshare/model"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDownloadConfig(t *testing.T) {
	t.Helper()
	viper.Set("download.credential_ttl", 24*time.Hour)
}

func TestDownloadReadyRecord(t *testing.T) {
	setupDownloadConfig(t)

	st := newFakeStore()
	require.NoError(t, st.Put(context.Background(), readyRecord("abc")))

	d := &Download{Store: st, Issuer: &fakeIssuer{}}

	cred, err := d.Do(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, model.ObjectKey("abc"), cred.Key)
	assert.Equal(t, "GET", cred.Method)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), cred.ExpiresAt, time.Minute)

	assert.Eventually(t, func() bool {
		return st.record("abc").DownloadCount == 1
	}, 2*time.Second, 10*time.Millisecond, "counter is eventual, not part of the response path")
	assert.NotZero(t, st.record("abc").LastDownloadAt)
}

func TestDownloadUnreadyRecordsAreIndistinguishable(t *testing.T) {
	setupDownloadConfig(t)

	st := newFakeStore()

	pend := pendingRecord("pend")
	require.NoError(t, st.Put(context.Background(), pend))

	failed := pendingRecord("failed")
	failed.State = model.StateFailed
	require.NoError(t, st.Put(context.Background(), failed))

	d := &Download{Store: st, Issuer: &fakeIssuer{}}

	var errs []error
	for _, fileID := range []string{"pend", "failed", "never-existed"} {
		_, err := d.Do(context.Background(), fileID)
		require.Error(t, err)
		errs = append(errs, err)
	}

	for _, err := range errs {
		assert.True(t, apperr.IsKind(err, apperr.NotFound))
		assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
		// Identical message, no existence leakage
		assert.Equal(t, errs[0].Error(), err.Error())
	}
}

func TestDownloadAnalyticsFailureDoesNotFailRequest(t *testing.T) {
	setupDownloadConfig(t)

	st := newFakeStore()
	require.NoError(t, st.Put(context.Background(), readyRecord("abc")))
	st.downloadErr = apperr.New(apperr.TransientStore, apperr.CodeStoreUnavailable, "table down")

	d := &Download{Store: st, Issuer: &fakeIssuer{}}

	cred, err := d.Do(context.Background(), "abc")
	require.NoError(t, err)
	require.NotNil(t, cred)

	assert.Eventually(t, func() bool {
		return st.downloads() == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, st.record("abc").DownloadCount)
}

func TestDownloadOutlivesRequestContext(t *testing.T) {
	setupDownloadConfig(t)

	st := newFakeStore()
	require.NoError(t, st.Put(context.Background(), readyRecord("abc")))

	d := &Download{Store: st, Issuer: &fakeIssuer{}}

	// Simulate a request context that's canceled right after the response,
	// the way gin cancels it when the handler returns
	req := httptest.NewRequest(http.MethodGet, "/api/downloads/abc", nil)
	ctx, cancel := context.WithCancel(req.Context())

	cred, err := d.Do(ctx, "abc")
	cancel()
	require.NoError(t, err)
	require.NotNil(t, cred)

	assert.Eventually(t, func() bool {
		return st.record("abc").DownloadCount == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDownloadEmptyFileID(t *testing.T) {
	setupDownloadConfig(t)

	d := &Download{Store: newFakeStore(), Issuer: &fakeIssuer{}}

	_, err := d.Do(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

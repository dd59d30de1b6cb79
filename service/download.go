package service

import (
	"context"
	"time"

	"bitwise74/vidshare/apperr"
	"bitwise74/vidshare/credential"
	"bitwise74/vidshare/model"
	"bitwise74/vidshare/store"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const analyticsTimeout = 10 * time.Second

type Download struct {
	Store  store.Store
	Issuer CredentialIssuer
}

// Do mints a read credential for a READY record. Missing, pending, failed
// and expired records all produce the same NOT_FOUND so callers can't probe
// for existence. The analytics counter update runs detached and its failure
// never fails the request.
func (d *Download) Do(ctx context.Context, fileID string) (*credential.Credential, error) {
	if fileID == "" {
		return nil, apperr.New(apperr.Validation, apperr.CodeValidationFailed, "no file ID provided")
	}

	rec, err := d.Store.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if rec == nil || rec.State != model.StateReady {
		return nil, apperr.New(apperr.NotFound, apperr.CodeNotFound, "file not found")
	}

	cred, err := d.Issuer.IssueRead(ctx, model.ObjectKey(fileID), viper.GetDuration("download.credential_ttl"))
	if err != nil {
		return nil, err
	}

	go d.recordDownload(context.WithoutCancel(ctx), fileID)

	return cred, nil
}

func (d *Download) recordDownload(ctx context.Context, fileID string) {
	ctx, cancel := context.WithTimeout(ctx, analyticsTimeout)
	defer cancel()

	if err := d.Store.RecordDownload(ctx, fileID, time.Now()); err != nil {
		zap.L().Warn("Failed to record download", zap.String("fileID", fileID), zap.Error(err))
	}
}

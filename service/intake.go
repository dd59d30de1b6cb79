package service

import (
	"context"
	"errors"
	"time"

	"bitwise74/vidshare/apperr"
	"bitwise74/vidshare/credential"
	"bitwise74/vidshare/model"
	"bitwise74/vidshare/store"
	"bitwise74/vidshare/validators"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Intake struct {
	Store  store.Store
	Issuer CredentialIssuer
}

type IntakeRequest struct {
	OwnerEmail     string `json:"owner_email"`
	RecipientEmail string `json:"recipient_email"`
	FileName       string `json:"file_name"`
	SizeBytes      int64  `json:"size_bytes"`
	ContentType    string `json:"content_type"`
}

type IntakeResult struct {
	FileID     string                 `json:"file_id"`
	Credential *credential.Credential `json:"upload"`
	ExpiresAt  int64                  `json:"expires_at"`
}

// Do validates the declared upload, creates the PENDING record and mints the
// write credential. The credential is only issued after the record write
// succeeds so no upload can land without a tracking record.
func (i *Intake) Do(ctx context.Context, req *IntakeRequest) (*IntakeResult, error) {
	if err := validators.EmailValidator(req.RecipientEmail); err != nil {
		return nil, apperr.Wrap(apperr.Validation, apperr.CodeValidationFailed, err.Error(), err)
	}

	if req.OwnerEmail != "" {
		if err := validators.EmailValidator(req.OwnerEmail); err != nil {
			return nil, apperr.Wrap(apperr.Validation, apperr.CodeValidationFailed, err.Error(), err)
		}
	}

	err := validators.UploadValidator(
		req.FileName,
		req.SizeBytes,
		viper.GetInt64("upload.max_size"),
		req.ContentType,
		viper.GetStringSlice("upload.allowed_types"),
	)
	if err != nil {
		code := apperr.CodeValidationFailed
		switch {
		case errors.Is(err, validators.ErrFileTooLarge):
			code = apperr.CodePayloadTooLarge
		case errors.Is(err, validators.ErrFileTypeUnsupported):
			code = apperr.CodeUnsupportedMediaType
		}

		return nil, apperr.Wrap(apperr.Validation, code, err.Error(), err)
	}

	fileID, err := gonanoid.New()
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientStore, apperr.CodeStoreUnavailable, "failed to generate file id", err)
	}

	now := time.Now()
	rec := &model.UploadRecord{
		FileID:             fileID,
		State:              model.StatePending,
		OwnerEmail:         req.OwnerEmail,
		RecipientEmail:     req.RecipientEmail,
		FileName:           req.FileName,
		SizeBytes:          req.SizeBytes,
		ContentType:        req.ContentType,
		UploadDate:         now.UTC().Format(time.DateOnly),
		NotificationStatus: model.NotifyNotSent,
		CreatedAt:          now.Unix(),
		ExpiresAt:          now.Add(viper.GetDuration("upload.retention")).Unix(),
	}

	// Record first, credential second. A failed write here must not leave
	// the client holding a usable credential.
	if err := i.Store.Put(ctx, rec); err != nil {
		return nil, err
	}

	cred, err := i.Issuer.IssueWrite(ctx, model.ObjectKey(fileID), req.ContentType, viper.GetDuration("upload.credential_ttl"))
	if err != nil {
		// The PENDING record stays behind and ages out through its TTL.
		zap.L().Error("Record created but credential issuance failed",
			zap.String("fileID", fileID),
			zap.Error(err))
		return nil, err
	}

	return &IntakeResult{
		FileID:     fileID,
		Credential: cred,
		ExpiresAt:  rec.ExpiresAt,
	}, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"bitwise74/vidshare/apperr"
	"bitwise74/vidshare/model"
	"bitwise74/vidshare/store"
	"bitwise74/vidshare/validators"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const dispatchTimeout = 2 * time.Minute

type Dispatcher struct {
	Store  store.Store
	Issuer CredentialIssuer
	Mailer Mailer
}

// Dispatch mails the recipient a download link for a READY record and tracks
// the outcome in notification_status. Failures never propagate back into the
// upload pipeline, they end as either SENT or FAILED on the record.
func (d *Dispatcher) Dispatch(ctx context.Context, rec *model.UploadRecord) {
	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	// SENT must never resend, FAILED is terminal with no automatic retries
	if rec.NotificationStatus != model.NotifyNotSent {
		return
	}

	if err := validators.EmailValidator(rec.RecipientEmail); err != nil {
		// Permanent rejection, retrying can't fix a bad address
		d.markFailed(ctx, rec.FileID)
		zap.L().Error("Notification rejected permanently",
			zap.String("fileID", rec.FileID),
			zap.Error(err))
		return
	}

	cred, err := d.Issuer.IssueRead(ctx, model.ObjectKey(rec.FileID), viper.GetDuration("download.credential_ttl"))
	if err != nil {
		d.markFailed(ctx, rec.FileID)
		zap.L().Error("Failed to mint read credential for notification",
			zap.String("fileID", rec.FileID),
			zap.Error(err))
		return
	}

	subject := fmt.Sprintf("%s shared a video with you", senderName(rec))
	body := renderMessage(rec, cred.URL, cred.ExpiresAt)

	maxAttempts := viper.GetInt("notify.max_attempts")

	send := func() error {
		err := d.Mailer.Send(ctx, rec.RecipientEmail, subject, body)
		if err != nil && apperr.IsKind(err, apperr.PermanentDelivery) {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(maxAttempts-1)),
		ctx,
	)

	if err := backoff.Retry(send, bo); err != nil {
		d.markFailed(ctx, rec.FileID)
		zap.L().Error("Notification delivery exhausted retries",
			zap.String("fileID", rec.FileID),
			zap.Int("attempts", maxAttempts),
			zap.Error(err))
		return
	}

	err = d.Store.SetNotificationStatus(ctx, rec.FileID, model.NotifyNotSent, model.NotifySent)
	if err != nil {
		if apperr.IsKind(err, apperr.Conflict) {
			// Another dispatch got there first
			zap.L().Debug("Notification status already settled", zap.String("fileID", rec.FileID))
			return
		}

		zap.L().Error("Notification sent but status write failed",
			zap.String("fileID", rec.FileID),
			zap.Error(err))
		return
	}

	rec.NotificationStatus = model.NotifySent
	zap.L().Info("Notification sent",
		zap.String("fileID", rec.FileID),
		zap.String("recipient", rec.RecipientEmail))
}

func (d *Dispatcher) markFailed(ctx context.Context, fileID string) {
	err := d.Store.SetNotificationStatus(ctx, fileID, model.NotifyNotSent, model.NotifyFailed)
	if err != nil && !apperr.IsKind(err, apperr.Conflict) {
		zap.L().Error("Failed to record notification failure",
			zap.String("fileID", fileID),
			zap.Error(err))
	}
}

func senderName(rec *model.UploadRecord) string {
	if rec.OwnerEmail != "" {
		return rec.OwnerEmail
	}
	return "Someone"
}

func renderMessage(rec *model.UploadRecord, link string, linkExpiry time.Time) string {
	return fmt.Sprintf(
		"<p>%s sent you <b>%s</b>.</p><p>Click <a href='%s'>here</a> to download it.</p><p>The link expires on %s. The file itself is removed on %s.</p>",
		senderName(rec),
		rec.FileName,
		link,
		linkExpiry.UTC().Format(time.RFC1123),
		time.Unix(rec.ExpiresAt, 0).UTC().Format(time.RFC1123),
	)
}

// Package service holds the coordinator logic: upload intake, finalize-event
// reaction, notification dispatch and download credential issuance. Handlers
// stay thin, everything stateful lives behind the store and issuer.
package service

import (
	"context"
	"time"

	"bitwise74/vidshare/credential"
)

// CredentialIssuer mints the scoped credentials handed to clients and
// recipients. Satisfied by credential.Issuer.
type CredentialIssuer interface {
	IssueWrite(ctx context.Context, key, contentType string, ttl time.Duration) (*credential.Credential, error)
	IssueRead(ctx context.Context, key string, ttl time.Duration) (*credential.Credential, error)
}

// Mailer delivers a rendered message. Errors carry an apperr kind so the
// dispatcher can tell transient failures from permanent rejections.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

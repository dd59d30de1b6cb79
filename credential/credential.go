// Package credential mints the scoped, time-limited object store credentials
// the service hands out. Call sites never build presigned URLs themselves,
// so scope and expiry stay enforced in one place.
package credential

import (
	"context"
	"time"

	"bitwise74/vidshare/apperr"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Capability names the single operation a credential authorizes.
type Capability string

const (
	CapabilityRead  Capability = "read"
	CapabilityWrite Capability = "write"
)

// Credential is an immutable, already-signed grant for one operation on
// one object key.
type Credential struct {
	Key        string     `json:"-"`
	URL        string     `json:"url"`
	Method     string     `json:"method"`
	Capability Capability `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

// PresignAPI is the slice of the S3 presign client the issuer uses.
type PresignAPI interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Issuer struct {
	presign PresignAPI
	bucket  *string
}

func NewIssuer(presign PresignAPI, bucket *string) *Issuer {
	return &Issuer{
		presign: presign,
		bucket:  bucket,
	}
}

// IssueWrite mints a write credential scoped to key that additionally pins
// the content type the uploader declared.
func (i *Issuer) IssueWrite(ctx context.Context, key, contentType string, ttl time.Duration) (*Credential, error) {
	req, err := i.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      i.bucket,
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientStore, apperr.CodeStoreUnavailable, "failed to presign upload", err)
	}

	return &Credential{
		Key:        key,
		URL:        req.URL,
		Method:     req.Method,
		Capability: CapabilityWrite,
		ExpiresAt:  time.Now().Add(ttl),
	}, nil
}

// IssueRead mints a read credential scoped to key.
func (i *Issuer) IssueRead(ctx context.Context, key string, ttl time.Duration) (*Credential, error) {
	req, err := i.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: i.bucket,
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientStore, apperr.CodeStoreUnavailable, "failed to presign download", err)
	}

	return &Credential{
		Key:        key,
		URL:        req.URL,
		Method:     req.Method,
		Capability: CapabilityRead,
		ExpiresAt:  time.Now().Add(ttl),
	}, nil
}

package credential

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresign struct {
	lastPut *s3.PutObjectInput
	lastGet *s3.GetObjectInput
}

func (f *fakePresign) PresignPutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.lastPut = in
	return &v4.PresignedHTTPRequest{
		URL:    "https://bucket.test/" + aws.ToString(in.Key) + "?sig=w",
		Method: "PUT",
	}, nil
}

func (f *fakePresign) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.lastGet = in
	return &v4.PresignedHTTPRequest{
		URL:    "https://bucket.test/" + aws.ToString(in.Key) + "?sig=r",
		Method: "GET",
	}, nil
}

func TestIssueWriteScopesKeyAndType(t *testing.T) {
	f := &fakePresign{}
	i := NewIssuer(f, aws.String("vidshare-uploads"))

	cred, err := i.IssueWrite(context.Background(), "uploads/abc", "video/mp4", 15*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, "uploads/abc", cred.Key)
	assert.Equal(t, CapabilityWrite, cred.Capability)
	assert.Equal(t, "PUT", cred.Method)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), cred.ExpiresAt, time.Minute)

	require.NotNil(t, f.lastPut)
	assert.Equal(t, "uploads/abc", aws.ToString(f.lastPut.Key))
	assert.Equal(t, "vidshare-uploads", aws.ToString(f.lastPut.Bucket))
	assert.Equal(t, "video/mp4", aws.ToString(f.lastPut.ContentType))
}

func TestIssueReadScopesKey(t *testing.T) {
	f := &fakePresign{}
	i := NewIssuer(f, aws.String("vidshare-uploads"))

	cred, err := i.IssueRead(context.Background(), "uploads/abc", 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, CapabilityRead, cred.Capability)
	assert.Equal(t, "GET", cred.Method)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), cred.ExpiresAt, time.Minute)

	require.NotNil(t, f.lastGet)
	assert.Equal(t, "uploads/abc", aws.ToString(f.lastGet.Key))
}

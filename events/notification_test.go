package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNotification = `{
  "Records": [
    {
      "eventName": "ObjectCreated:Put",
      "s3": {
        "bucket": {"name": "vidshare-uploads"},
        "object": {"key": "uploads/V1StGXR8_Z5jdHi6B-myT", "size": 1048576, "eTag": "\"d41d8cd98f00b204e9800998ecf8427e\""}
      }
    },
    {
      "eventName": "ObjectRemoved:Delete",
      "s3": {
        "bucket": {"name": "vidshare-uploads"},
        "object": {"key": "uploads/gone", "size": 0, "eTag": ""}
      }
    },
    {
      "eventName": "ObjectCreated:CompleteMultipartUpload",
      "s3": {
        "bucket": {"name": "vidshare-uploads"},
        "object": {"key": "uploads/with+spaces", "size": 5, "eTag": "\"aa\""}
      }
    }
  ]
}`

func TestParseNotification(t *testing.T) {
	evs, err := ParseNotification([]byte(sampleNotification))
	require.NoError(t, err)
	require.Len(t, evs, 2, "removal events are skipped")

	assert.Equal(t, "uploads/V1StGXR8_Z5jdHi6B-myT", evs[0].Key)
	assert.Equal(t, int64(1048576), evs[0].SizeBytes)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", evs[0].ETag)

	// S3 url-encodes object keys
	assert.Equal(t, "uploads/with spaces", evs[1].Key)
}

func TestParseNotificationMalformed(t *testing.T) {
	_, err := ParseNotification([]byte("not json"))
	assert.Error(t, err)
}

func TestParseNotificationEmptyRecords(t *testing.T) {
	evs, err := ParseNotification([]byte(`{"Records": []}`))
	require.NoError(t, err)
	assert.Empty(t, evs)
}

package minio

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/content-share/pkg/contentshare"
)

func TestNew_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, Config{Bucket: "b"})
	assert.EqualError(t, err, "endpoint is required")

	_, err = New(ctx, Config{Endpoint: "localhost:9000"})
	assert.EqualError(t, err, "bucket name is required")
}

func TestNew_WithoutBucketCheckDoesNotDial(t *testing.T) {
	backend, err := New(context.Background(), Config{
		Endpoint:  "localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "content",
	})
	require.NoError(t, err)
	assert.Equal(t, "content", backend.bucket)
}

// TestBackend_Integration needs a MinIO server; set TEST_MINIO_ENDPOINT (host:port).
func TestBackend_Integration(t *testing.T) {
	endpoint := os.Getenv("TEST_MINIO_ENDPOINT")
	if endpoint == "" || testing.Short() {
		t.Skip("TEST_MINIO_ENDPOINT not set")
	}

	ctx := context.Background()
	backend, err := New(ctx, Config{
		Endpoint:               endpoint,
		AccessKey:              "minioadmin",
		SecretKey:              "minioadmin",
		Bucket:                 "content-share-test",
		CreateBucketIfNotExist: true,
	})
	require.NoError(t, err)

	key := "website-content/" + uuid.New().String() + ".png"
	data := "fake png bytes"
	err = backend.UploadWithParams(ctx, strings.NewReader(data), contentshare.UploadParams{
		ObjectKey: key,
		MimeType:  "image/png",
		Size:      int64(len(data)),
	})
	require.NoError(t, err)

	reader, err := backend.Download(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(reader)
	reader.Close()
	require.NoError(t, err)
	assert.Equal(t, data, string(got))

	require.NoError(t, backend.Delete(ctx, key))
	_, err = backend.Download(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

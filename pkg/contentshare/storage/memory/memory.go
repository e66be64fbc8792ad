package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/tendant/content-share/pkg/contentshare"
)

// ErrObjectNotFound is returned for keys the backend does not hold
var ErrObjectNotFound = errors.New("object not found")

type object struct {
	data     []byte
	mimeType string
}

// Backend is an in-memory implementation of the contentshare.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string]object),
	}
}

// UploadWithParams stores the full reader under params.ObjectKey
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params contentshare.UploadParams) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	mimeType := params.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[params.ObjectKey] = object{data: data, mimeType: mimeType}
	return nil
}

// Download downloads content directly
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// Delete removes the object. Deleting a missing key succeeds, matching S3.
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.objects, objectKey)
	return nil
}

// MimeType returns the stored content type of objectKey
func (b *Backend) MimeType(objectKey string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	obj, ok := b.objects[objectKey]
	return obj.mimeType, ok
}

// Len returns the number of stored objects
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}

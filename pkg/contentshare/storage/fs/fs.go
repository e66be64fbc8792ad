// Package fs stores uploads under a local directory. Objects are served by
// the router's media route, so it suits single-node deployments and local
// development.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tendant/content-share/pkg/contentshare"
)

var (
	// ErrObjectNotFound is returned for keys with no file behind them
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidKey is returned for keys that would resolve outside the base directory
	ErrInvalidKey = errors.New("invalid object key")
)

// Backend is a filesystem implementation of the contentshare.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	baseDir string
}

// New creates the base directory if needed and returns a backend rooted there
func New(baseDir string) (*Backend, error) {
	if baseDir == "" {
		return nil, errors.New("base directory is required")
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Backend{baseDir: abs}, nil
}

func (b *Backend) path(objectKey string) (string, error) {
	if objectKey == "" {
		return "", ErrInvalidKey
	}
	p := filepath.Join(b.baseDir, filepath.FromSlash(objectKey))
	if !strings.HasPrefix(p, b.baseDir+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return p, nil
}

// UploadWithParams writes reader to a temporary file and renames it into
// place, so readers never see a partial object.
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params contentshare.UploadParams) error {
	filePath, err := b.path(params.ObjectKey)
	if err != nil {
		return err
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("failed to store file: %w", err)
	}
	return nil
}

// Download opens the file stored under objectKey
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	filePath, err := b.path(objectKey)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes the file and any directories left empty by it. A missing
// file is not an error.
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	filePath, err := b.path(objectKey)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	b.cleanupEmptyDirectories(filepath.Dir(filePath))
	return nil
}

// MimeType guesses the content type from the key's extension, then from
// the first bytes of the file.
func (b *Backend) MimeType(objectKey string) (string, bool) {
	filePath, err := b.path(objectKey)
	if err != nil {
		return "", false
	}
	if t := mime.TypeByExtension(filepath.Ext(filePath)); t != "" {
		return t, true
	}

	file, err := os.Open(filePath)
	if err != nil {
		return "", false
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", false
	}
	return http.DetectContentType(buffer[:n]), true
}

// cleanupEmptyDirectories removes empty directories up to baseDir
func (b *Backend) cleanupEmptyDirectories(dir string) {
	if dir == b.baseDir || !strings.HasPrefix(dir, b.baseDir) {
		return
	}
	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}

// Package objectstore implements contentshare.ObjectStorage on top of any
// BlobStore, adding key generation, public URLs and error wrapping.
package objectstore

import (
	"context"
	"log/slog"

	"github.com/tendant/content-share/pkg/contentshare"
	"github.com/tendant/content-share/pkg/contentshare/objectkey"
	"github.com/tendant/content-share/pkg/contentshare/urlstrategy"
)

// Client is the object storage client handed to the content service
type Client struct {
	backendName string
	store       contentshare.BlobStore
	keys        objectkey.Generator
	urls        urlstrategy.Strategy
	logger      *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithKeyGenerator sets the object key strategy
func WithKeyGenerator(gen objectkey.Generator) Option {
	return func(c *Client) {
		c.keys = gen
	}
}

// WithURLStrategy sets how keys are turned into public URLs
func WithURLStrategy(strategy urlstrategy.Strategy) Option {
	return func(c *Client) {
		c.urls = strategy
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for store. backendName is reported in StorageError.
func New(backendName string, store contentshare.BlobStore, opts ...Option) *Client {
	c := &Client{
		backendName: backendName,
		store:       store,
		keys:        objectkey.NewFlatGenerator(objectkey.DefaultPrefix),
		urls:        urlstrategy.NewCDNStrategy(""),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload stores the file under a generated key and returns the key
func (c *Client) Upload(ctx context.Context, file *contentshare.FileUpload) (string, error) {
	if file.Empty() {
		return "", &contentshare.ValidationError{Field: "file", Err: contentshare.ErrFileRequired}
	}

	key := c.keys.GenerateKey(file.Name)
	err := c.store.UploadWithParams(ctx, file.Reader, contentshare.UploadParams{
		ObjectKey: key,
		MimeType:  file.ContentType,
		Size:      file.Size,
	})
	if err != nil {
		return "", &contentshare.StorageError{Backend: c.backendName, Key: key, Op: "upload", Err: err}
	}

	c.logger.Info("Uploaded file", "backend", c.backendName, "key", key, "size", file.Size, "content_type", file.ContentType)
	return key, nil
}

func (c *Client) PublicURL(key string) string {
	return c.urls.PublicURL(key)
}

func (c *Client) TransformedURL(key, transform string) string {
	return c.urls.TransformedURL(key, transform)
}

// SupportsTransforms reports whether the URL strategy renders transformed
// objects. Without it, derived keys such as video poster frames do not exist.
func (c *Client) SupportsTransforms() bool {
	return c.urls.SupportsTransforms()
}

// Delete removes the object under key. An empty key is logged and skipped.
func (c *Client) Delete(ctx context.Context, key string) error {
	if key == "" {
		c.logger.Warn("Skipping delete for empty object key", "backend", c.backendName)
		return nil
	}

	if err := c.store.Delete(ctx, key); err != nil {
		return &contentshare.StorageError{Backend: c.backendName, Key: key, Op: "delete", Err: err}
	}

	c.logger.Info("Deleted file", "backend", c.backendName, "key", key)
	return nil
}

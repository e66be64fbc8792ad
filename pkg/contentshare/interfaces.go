package contentshare

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// UploadParams carries the object key and metadata for a blob upload
type UploadParams struct {
	ObjectKey string
	MimeType  string
	Size      int64
}

// BlobStore defines the interface for storage backends
type BlobStore interface {
	// UploadWithParams streams reader to the backend under params.ObjectKey
	UploadWithParams(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download opens the stored object
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes the stored object
	Delete(ctx context.Context, objectKey string) error
}

// ObjectStorage is the object storage client used by the service. It owns key
// generation and public URL construction on top of a BlobStore.
type ObjectStorage interface {
	// Upload stores the file under a freshly generated key and returns the key.
	Upload(ctx context.Context, file *FileUpload) (string, error)

	// PublicURL joins the public base URL and key. An empty key yields the base URL.
	PublicURL(key string) string

	// TransformedURL returns a derived URL for key, or PublicURL(key) when the
	// backend has no native transformations.
	TransformedURL(key, transform string) string

	// Delete removes the object. An empty key is a no-op.
	Delete(ctx context.Context, key string) error
}

// ContentRepository persists content records
type ContentRepository interface {
	CreateContent(ctx context.Context, content *Content) error
	GetContent(ctx context.Context, id uuid.UUID) (*Content, error)
	// UpdateContent writes title, description, tags and the file fields.
	// Counters and upload date are left untouched.
	UpdateContent(ctx context.Context, content *Content) error
	// DeleteContent removes the record together with its likes and comments.
	DeleteContent(ctx context.Context, id uuid.UUID) error
	// IncrementViews adds one view atomically and returns the new count.
	IncrementViews(ctx context.Context, id uuid.UUID) (int64, error)
	// ListContent returns one page of matching records and the total match count.
	ListContent(ctx context.Context, query ContentQuery) ([]*Content, int64, error)
}

// LikeRepository persists per-user likes and keeps the content like counter in step
type LikeRepository interface {
	// ToggleLike removes the (contentID, userID) like if present, adds it
	// otherwise, and adjusts the content counter in the same unit of work.
	ToggleLike(ctx context.Context, contentID uuid.UUID, userID string) (*LikeResult, error)
	IsLiked(ctx context.Context, contentID uuid.UUID, userID string) (bool, error)
	ListLikedContentIDs(ctx context.Context, userID string) ([]uuid.UUID, error)
}

// CommentRepository persists comments by owning content id
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *Comment) error
	// ListComments returns the comments of a content, newest first.
	ListComments(ctx context.Context, contentID uuid.UUID) ([]*Comment, error)
}

// Repository combines all persistence used by the service
type Repository interface {
	ContentRepository
	LikeRepository
	CommentRepository
}

// EventSink defines the interface for event handling
type EventSink interface {
	// ContentCreated is fired when content is created
	ContentCreated(ctx context.Context, content *Content) error

	// ContentUpdated is fired when content is updated
	ContentUpdated(ctx context.Context, content *Content) error

	// ContentDeleted is fired when content is deleted
	ContentDeleted(ctx context.Context, contentID uuid.UUID) error

	// LikeToggled is fired after a like is added or removed
	LikeToggled(ctx context.Context, contentID uuid.UUID, userID string, result *LikeResult) error

	// CommentAdded is fired when a comment is posted
	CommentAdded(ctx context.Context, comment *Comment) error
}

package contentshare

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// FileType classifies an uploaded file by its declared content type.
type FileType string

const (
	FileTypeVideo   FileType = "video"
	FileTypeImage   FileType = "image"
	FileTypeOther   FileType = "other"
	FileTypeUnknown FileType = "unknown"
)

// Content is a single uploaded media item with its engagement counters.
type Content struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Tags         string    `json:"tags"`
	FilePath     string    `json:"file_path"`
	FileType     FileType  `json:"file_type"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	UploadDate   time.Time `json:"upload_date"`
	Views        int64     `json:"views"`
	Likes        int64     `json:"likes"`
}

// Like records that a user liked a content item. (ContentID, UserID) is unique.
type Like struct {
	ContentID uuid.UUID `json:"content_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is an authored text entry owned by exactly one content item.
type Comment struct {
	ID         uuid.UUID `json:"id"`
	ContentID  uuid.UUID `json:"content_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	PostDate   time.Time `json:"post_date"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Likes int64 `json:"likes"`
	Liked bool  `json:"liked"`
}

// FilterMode selects one of the dashboard listing strategies.
type FilterMode string

const (
	FilterLatest     FilterMode = "latest"
	FilterMostLiked  FilterMode = "most_liked"
	FilterMostViewed FilterMode = "most_viewed"
	FilterByTag      FilterMode = "tag"
)

// SortOrder is the ordering applied by a repository listing.
type SortOrder string

const (
	SortNewest     SortOrder = "newest"
	SortMostLiked  SortOrder = "most_liked"
	SortMostViewed SortOrder = "most_viewed"
)

// ContentQuery is the repository-level listing request.
// Keyword matches title or tags; Tag matches tags only. Both are
// case-insensitive substring matches and are ignored when empty.
type ContentQuery struct {
	Sort    SortOrder
	Keyword string
	Tag     string
	Offset  int
	Limit   int
}

// ContentPage is one page of a listing. Page is 1-based.
type ContentPage struct {
	Items      []*Content `json:"items"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalItems int64      `json:"total_items"`
	TotalPages int        `json:"total_pages"`
}

// FileUpload describes a file handed to object storage.
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Empty reports whether no usable file was supplied.
func (f *FileUpload) Empty() bool {
	return f == nil || f.Reader == nil || f.Size <= 0
}

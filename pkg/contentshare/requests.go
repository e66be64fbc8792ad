package contentshare

import "github.com/google/uuid"

// Request/response DTOs for service operations

// CreateContentRequest contains parameters for uploading new content
type CreateContentRequest struct {
	Title       string
	Description string
	Tags        string
	File        *FileUpload
}

// UpdateContentRequest contains parameters for editing content.
// File is optional; when set the stored file is replaced.
type UpdateContentRequest struct {
	ID          uuid.UUID
	Title       string
	Description string
	Tags        string
	File        *FileUpload
}

// AddCommentRequest contains parameters for posting a comment
type AddCommentRequest struct {
	ContentID  uuid.UUID
	AuthorName string
	Text       string
}

// ListContentRequest selects a dashboard page.
// Query is the keyword for FilterLatest and the tag for FilterByTag; the
// other modes ignore it. Page is 1-based.
type ListContentRequest struct {
	Filter   FilterMode
	Query    string
	Page     int
	PageSize int
}

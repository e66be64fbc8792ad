package contentshare

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the content lifecycle and interaction operations
type Service interface {
	// Content operations
	CreateContent(ctx context.Context, req CreateContentRequest) (*Content, error)
	GetContent(ctx context.Context, id uuid.UUID) (*Content, error)
	UpdateContent(ctx context.Context, req UpdateContentRequest) (*Content, error)
	DeleteContent(ctx context.Context, id uuid.UUID) error
	ListContent(ctx context.Context, req ListContentRequest) (*ContentPage, error)

	// Engagement operations
	IncrementViews(ctx context.Context, id uuid.UUID) (int64, error)
	ToggleLike(ctx context.Context, contentID uuid.UUID, userID string) (*LikeResult, error)
	IsLiked(ctx context.Context, contentID uuid.UUID, userID string) (bool, error)
	LikedContentIDs(ctx context.Context, userID string) ([]uuid.UUID, error)

	// Comment operations
	AddComment(ctx context.Context, req AddCommentRequest) (*Comment, error)
	ListComments(ctx context.Context, contentID uuid.UUID) ([]*Comment, error)
}

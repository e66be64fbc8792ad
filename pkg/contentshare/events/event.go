// Package events turns service notifications into serialized events and
// hands them to a Publisher (slog, Kafka or NATS).
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	TypeContentCreated = "content.created"
	TypeContentUpdated = "content.updated"
	TypeContentDeleted = "content.deleted"
	TypeContentLiked   = "content.liked"
	TypeContentUnliked = "content.unliked"
	TypeCommentAdded   = "comment.added"
)

// Event is the wire form of a service notification
type Event struct {
	Type       string    `json:"type"`
	ContentID  uuid.UUID `json:"content_id"`
	Title      string    `json:"title,omitempty"`
	FileType   string    `json:"file_type,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	Likes      *int64    `json:"likes,omitempty"`
	CommentID  string    `json:"comment_id,omitempty"`
	Author     string    `json:"author,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

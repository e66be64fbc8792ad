package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/content-share/pkg/contentshare"
)

// Publisher delivers a serialized event to a transport
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Sink adapts a Publisher to contentshare.EventSink
type Sink struct {
	publisher Publisher
	now       func() time.Time
}

var _ contentshare.EventSink = (*Sink)(nil)

// NewSink creates an event sink publishing through p
func NewSink(p Publisher) *Sink {
	return &Sink{
		publisher: p,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Close closes the underlying publisher
func (s *Sink) Close() error {
	return s.publisher.Close()
}

func (s *Sink) ContentCreated(ctx context.Context, content *contentshare.Content) error {
	return s.publisher.Publish(ctx, s.contentEvent(TypeContentCreated, content))
}

func (s *Sink) ContentUpdated(ctx context.Context, content *contentshare.Content) error {
	return s.publisher.Publish(ctx, s.contentEvent(TypeContentUpdated, content))
}

func (s *Sink) ContentDeleted(ctx context.Context, contentID uuid.UUID) error {
	return s.publisher.Publish(ctx, Event{
		Type:       TypeContentDeleted,
		ContentID:  contentID,
		OccurredAt: s.now(),
	})
}

func (s *Sink) LikeToggled(ctx context.Context, contentID uuid.UUID, userID string, result *contentshare.LikeResult) error {
	eventType := TypeContentUnliked
	if result.Liked {
		eventType = TypeContentLiked
	}
	likes := result.Likes
	return s.publisher.Publish(ctx, Event{
		Type:       eventType,
		ContentID:  contentID,
		UserID:     userID,
		Likes:      &likes,
		OccurredAt: s.now(),
	})
}

func (s *Sink) CommentAdded(ctx context.Context, comment *contentshare.Comment) error {
	return s.publisher.Publish(ctx, Event{
		Type:       TypeCommentAdded,
		ContentID:  comment.ContentID,
		CommentID:  comment.ID.String(),
		Author:     comment.AuthorName,
		OccurredAt: s.now(),
	})
}

func (s *Sink) contentEvent(eventType string, content *contentshare.Content) Event {
	return Event{
		Type:       eventType,
		ContentID:  content.ID,
		Title:      content.Title,
		FileType:   string(content.FileType),
		OccurredAt: s.now(),
	}
}

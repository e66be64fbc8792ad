package contentshare

import (
	"context"

	"github.com/google/uuid"
)

// NoopEventSink is a no-operation implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) ContentCreated(ctx context.Context, content *Content) error {
	return nil
}

func (n *NoopEventSink) ContentUpdated(ctx context.Context, content *Content) error {
	return nil
}

func (n *NoopEventSink) ContentDeleted(ctx context.Context, contentID uuid.UUID) error {
	return nil
}

func (n *NoopEventSink) LikeToggled(ctx context.Context, contentID uuid.UUID, userID string, result *LikeResult) error {
	return nil
}

func (n *NoopEventSink) CommentAdded(ctx context.Context, comment *Comment) error {
	return nil
}

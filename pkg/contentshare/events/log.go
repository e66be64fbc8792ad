package events

import (
	"context"
	"log/slog"
)

// LogPublisher writes events to a structured logger
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher that logs each event at info level
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	attrs := []any{"type", event.Type, "content_id", event.ContentID}
	if event.UserID != "" {
		attrs = append(attrs, "user_id", event.UserID)
	}
	if event.Likes != nil {
		attrs = append(attrs, "likes", *event.Likes)
	}
	p.logger.InfoContext(ctx, "Content event", attrs...)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

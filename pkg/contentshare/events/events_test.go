package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/content-share/pkg/contentshare"
	"github.com/tendant/content-share/pkg/contentshare/events"
)

type recordingPublisher struct {
	events []events.Event
	closed bool
}

func (r *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) Close() error {
	r.closed = true
	return nil
}

func TestSink_MapsNotifications(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	sink := events.NewSink(pub)

	content := &contentshare.Content{ID: uuid.New(), Title: "Clip", FileType: contentshare.FileTypeVideo}
	comment := &contentshare.Comment{ID: uuid.New(), ContentID: content.ID, AuthorName: "amy", Text: "hi"}

	require.NoError(t, sink.ContentCreated(ctx, content))
	require.NoError(t, sink.ContentUpdated(ctx, content))
	require.NoError(t, sink.LikeToggled(ctx, content.ID, "u1", &contentshare.LikeResult{Likes: 1, Liked: true}))
	require.NoError(t, sink.LikeToggled(ctx, content.ID, "u1", &contentshare.LikeResult{Likes: 0, Liked: false}))
	require.NoError(t, sink.CommentAdded(ctx, comment))
	require.NoError(t, sink.ContentDeleted(ctx, content.ID))

	require.Len(t, pub.events, 6)
	types := make([]string, 0, len(pub.events))
	for _, e := range pub.events {
		types = append(types, e.Type)
		assert.Equal(t, content.ID, e.ContentID)
		assert.False(t, e.OccurredAt.IsZero())
	}
	assert.Equal(t, []string{
		events.TypeContentCreated,
		events.TypeContentUpdated,
		events.TypeContentLiked,
		events.TypeContentUnliked,
		events.TypeCommentAdded,
		events.TypeContentDeleted,
	}, types)

	assert.Equal(t, "Clip", pub.events[0].Title)
	assert.Equal(t, "video", pub.events[0].FileType)
	require.NotNil(t, pub.events[3].Likes)
	assert.Equal(t, int64(0), *pub.events[3].Likes)
	assert.Equal(t, "u1", pub.events[2].UserID)
	assert.Equal(t, comment.ID.String(), pub.events[4].CommentID)
	assert.Equal(t, "amy", pub.events[4].Author)

	require.NoError(t, sink.Close())
	assert.True(t, pub.closed)
}

func TestEvent_JSONOmitsEmptyFields(t *testing.T) {
	event := events.Event{
		Type:       events.TypeContentDeleted,
		ContentID:  uuid.New(),
		OccurredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(event)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "content.deleted", fields["type"])
	assert.NotContains(t, fields, "likes")
	assert.NotContains(t, fields, "user_id")
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	pub := events.NewLogPublisher(logger)

	likes := int64(3)
	err := pub.Publish(context.Background(), events.Event{
		Type:      events.TypeContentLiked,
		ContentID: uuid.New(),
		UserID:    "u1",
		Likes:     &likes,
	})
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Content event", record["msg"])
	assert.Equal(t, "content.liked", record["type"])
	assert.Equal(t, "u1", record["user_id"])
	assert.Equal(t, float64(3), record["likes"])
	assert.NoError(t, pub.Close())
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "content-share.content.created", events.Subject("content-share", events.TypeContentCreated))
	assert.Equal(t, "comment.added", events.Subject("", events.TypeCommentAdded))
}

func TestNewKafkaPublisher_Validation(t *testing.T) {
	_, err := events.NewKafkaPublisher(nil, "content-events")
	assert.Error(t, err)

	_, err = events.NewKafkaPublisher([]string{"localhost:9092"}, "")
	assert.Error(t, err)

	pub, err := events.NewKafkaPublisher([]string{"localhost:9092"}, "content-events")
	require.NoError(t, err)
	assert.NoError(t, pub.Close())
}

func TestKafkaPublisher_UnreachableBrokerIsBounded(t *testing.T) {
	pub, err := events.NewKafkaPublisher([]string{"127.0.0.1:1"}, "content-events",
		events.WithPublishTimeout(200*time.Millisecond))
	require.NoError(t, err)
	defer pub.Close()

	start := time.Now()
	err = pub.Publish(context.Background(), events.Event{
		Type:       events.TypeContentLiked,
		ContentID:  uuid.New(),
		OccurredAt: time.Now(),
	})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNATSPublisher_Integration(t *testing.T) {
	url := os.Getenv("TEST_NATS_URL")
	if url == "" {
		t.Skip("TEST_NATS_URL not set")
	}

	pub, err := events.NewNATSPublisher(url, "content-share", nil)
	require.NoError(t, err)
	defer pub.Close()

	nc, err := nats.Connect(url)
	require.NoError(t, err)
	defer nc.Close()

	sub, err := nc.SubscribeSync(pub.Subject(events.TypeContentCreated))
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	id := uuid.New()
	require.NoError(t, pub.Publish(context.Background(), events.Event{Type: events.TypeContentCreated, ContentID: id}))

	msg, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)

	var received events.Event
	require.NoError(t, json.Unmarshal(msg.Data, &received))
	assert.Equal(t, id, received.ContentID)
}

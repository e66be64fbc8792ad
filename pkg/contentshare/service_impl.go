package contentshare

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultPageSize is the dashboard page size
	DefaultPageSize = 9
	// MaxPageSize bounds any listing request
	MaxPageSize = 100
)

// service implements the Service interface
type service struct {
	repository      Repository
	storage         ObjectStorage
	eventSink       EventSink
	logger          *slog.Logger
	now             func() time.Time
	defaultPageSize int
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithObjectStorage sets the object storage client for the service
func WithObjectStorage(storage ObjectStorage) Option {
	return func(s *service) {
		s.storage = storage
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for upload and post dates
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// WithDefaultPageSize sets the page size used when a listing asks for none
func WithDefaultPageSize(size int) Option {
	return func(s *service) {
		s.defaultPageSize = size
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		eventSink:       NewNoopEventSink(),
		logger:          slog.Default(),
		now:             func() time.Time { return time.Now().UTC() },
		defaultPageSize: DefaultPageSize,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.storage == nil {
		return nil, fmt.Errorf("object storage is required")
	}
	if s.defaultPageSize <= 0 || s.defaultPageSize > MaxPageSize {
		return nil, fmt.Errorf("default page size must be between 1 and %d", MaxPageSize)
	}

	return s, nil
}

// Content operations

func (s *service) CreateContent(ctx context.Context, req CreateContentRequest) (*Content, error) {
	if req.File.Empty() {
		return nil, &ValidationError{Field: "file", Err: ErrFileRequired}
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, &ValidationError{Field: "title", Err: ErrTitleRequired}
	}

	key, err := s.storage.Upload(ctx, req.File)
	if err != nil {
		return nil, err
	}

	fileType := ClassifyFileType(req.File.ContentType)
	content := &Content{
		ID:           uuid.New(),
		Title:        req.Title,
		Description:  req.Description,
		Tags:         req.Tags,
		FilePath:     key,
		FileType:     fileType,
		ThumbnailURL: DeriveThumbnail(fileType, key),
		UploadDate:   s.now(),
	}

	if err := s.repository.CreateContent(ctx, content); err != nil {
		// The uploaded object stays behind; there is no compensating delete.
		s.logger.Error("Failed to save content after upload", "key", key, "err", err)
		return nil, &ContentError{ContentID: content.ID, Op: "create", Err: err}
	}

	s.notify("content.created", func(sink EventSink) error {
		return sink.ContentCreated(ctx, content)
	})

	return content, nil
}

func (s *service) GetContent(ctx context.Context, id uuid.UUID) (*Content, error) {
	content, err := s.repository.GetContent(ctx, id)
	if err != nil {
		return nil, &ContentError{ContentID: id, Op: "get", Err: err}
	}
	return content, nil
}

func (s *service) UpdateContent(ctx context.Context, req UpdateContentRequest) (*Content, error) {
	content, err := s.repository.GetContent(ctx, req.ID)
	if err != nil {
		return nil, &ContentError{ContentID: req.ID, Op: "update", Err: err}
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, &ValidationError{Field: "title", Err: ErrTitleRequired}
	}

	content.Title = req.Title
	content.Description = req.Description
	content.Tags = req.Tags

	if !req.File.Empty() {
		// The previous object is not removed. UploadDate keeps the creation time.
		key, err := s.storage.Upload(ctx, req.File)
		if err != nil {
			return nil, err
		}
		content.FilePath = key
		content.FileType = ClassifyFileType(req.File.ContentType)
		content.ThumbnailURL = DeriveThumbnail(content.FileType, key)
	}

	if err := s.repository.UpdateContent(ctx, content); err != nil {
		return nil, &ContentError{ContentID: req.ID, Op: "update", Err: err}
	}

	s.notify("content.updated", func(sink EventSink) error {
		return sink.ContentUpdated(ctx, content)
	})

	return content, nil
}

func (s *service) DeleteContent(ctx context.Context, id uuid.UUID) error {
	content, err := s.repository.GetContent(ctx, id)
	if err != nil {
		return &ContentError{ContentID: id, Op: "delete", Err: err}
	}

	// Storage goes first; a failure here leaves the record in place for a retry.
	if err := s.storage.Delete(ctx, content.FilePath); err != nil {
		s.logger.Error("Failed to delete stored file", "content_id", id, "key", content.FilePath, "err", err)
		return err
	}

	if err := s.repository.DeleteContent(ctx, id); err != nil {
		return &ContentError{ContentID: id, Op: "delete", Err: err}
	}

	s.notify("content.deleted", func(sink EventSink) error {
		return sink.ContentDeleted(ctx, id)
	})

	return nil
}

func (s *service) ListContent(ctx context.Context, req ListContentRequest) (*ContentPage, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	query := ContentQuery{
		Sort:   SortNewest,
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	}
	switch req.Filter {
	case FilterMostLiked:
		query.Sort = SortMostLiked
	case FilterMostViewed:
		query.Sort = SortMostViewed
	case FilterByTag:
		query.Tag = strings.TrimSpace(req.Query)
	default:
		query.Keyword = strings.TrimSpace(req.Query)
	}

	items, total, err := s.repository.ListContent(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}

	return &ContentPage{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// Engagement operations

func (s *service) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	views, err := s.repository.IncrementViews(ctx, id)
	if err != nil {
		return 0, &ContentError{ContentID: id, Op: "increment views", Err: err}
	}
	return views, nil
}

func (s *service) ToggleLike(ctx context.Context, contentID uuid.UUID, userID string) (*LikeResult, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user", Err: ErrUserRequired}
	}

	result, err := s.repository.ToggleLike(ctx, contentID, userID)
	if err != nil {
		return nil, &ContentError{ContentID: contentID, Op: "toggle like", Err: err}
	}

	s.notify("content.like", func(sink EventSink) error {
		return sink.LikeToggled(ctx, contentID, userID, result)
	})

	return result, nil
}

func (s *service) IsLiked(ctx context.Context, contentID uuid.UUID, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.repository.IsLiked(ctx, contentID, userID)
}

func (s *service) LikedContentIDs(ctx context.Context, userID string) ([]uuid.UUID, error) {
	if userID == "" {
		return []uuid.UUID{}, nil
	}
	return s.repository.ListLikedContentIDs(ctx, userID)
}

// Comment operations

func (s *service) AddComment(ctx context.Context, req AddCommentRequest) (*Comment, error) {
	if strings.TrimSpace(req.AuthorName) == "" {
		return nil, &ValidationError{Field: "author", Err: ErrUserRequired}
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, &ValidationError{Field: "text", Err: ErrCommentRequired}
	}

	if _, err := s.repository.GetContent(ctx, req.ContentID); err != nil {
		return nil, &ContentError{ContentID: req.ContentID, Op: "add comment", Err: err}
	}

	comment := &Comment{
		ID:         uuid.New(),
		ContentID:  req.ContentID,
		AuthorName: req.AuthorName,
		Text:       strings.TrimSpace(req.Text),
		PostDate:   s.now(),
	}
	if err := s.repository.CreateComment(ctx, comment); err != nil {
		return nil, &ContentError{ContentID: req.ContentID, Op: "add comment", Err: err}
	}

	s.notify("comment.added", func(sink EventSink) error {
		return sink.CommentAdded(ctx, comment)
	})

	return comment, nil
}

func (s *service) ListComments(ctx context.Context, contentID uuid.UUID) ([]*Comment, error) {
	comments, err := s.repository.ListComments(ctx, contentID)
	if err != nil {
		return nil, &ContentError{ContentID: contentID, Op: "list comments", Err: err}
	}
	return comments, nil
}

// notify fires an event; failures are logged and never fail the operation.
func (s *service) notify(event string, fire func(EventSink) error) {
	if s.eventSink == nil {
		return
	}
	if err := fire(s.eventSink); err != nil {
		s.logger.Warn("Failed to publish event", "event", event, "err", err)
	}
}

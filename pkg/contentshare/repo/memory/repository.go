package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/content-share/pkg/contentshare"
)

// Repository implements contentshare.Repository using in-memory storage
type Repository struct {
	mu       sync.RWMutex
	contents map[uuid.UUID]*contentshare.Content
	likes    map[uuid.UUID]map[string]time.Time // content_id -> user_id -> liked at
	comments map[uuid.UUID][]*contentshare.Comment
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		contents: make(map[uuid.UUID]*contentshare.Content),
		likes:    make(map[uuid.UUID]map[string]time.Time),
		comments: make(map[uuid.UUID][]*contentshare.Comment),
	}
}

// Content operations

func (r *Repository) CreateContent(ctx context.Context, content *contentshare.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Create a copy to avoid external modifications
	contentCopy := *content
	r.contents[content.ID] = &contentCopy
	return nil
}

func (r *Repository) GetContent(ctx context.Context, id uuid.UUID) (*contentshare.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	content, exists := r.contents[id]
	if !exists {
		return nil, contentshare.ErrContentNotFound
	}
	contentCopy := *content
	return &contentCopy, nil
}

func (r *Repository) UpdateContent(ctx context.Context, content *contentshare.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.contents[content.ID]
	if !exists {
		return contentshare.ErrContentNotFound
	}

	existing.Title = content.Title
	existing.Description = content.Description
	existing.Tags = content.Tags
	existing.FilePath = content.FilePath
	existing.FileType = content.FileType
	existing.ThumbnailURL = content.ThumbnailURL
	return nil
}

func (r *Repository) DeleteContent(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contents[id]; !exists {
		return contentshare.ErrContentNotFound
	}
	delete(r.contents, id)
	delete(r.likes, id)
	delete(r.comments, id)
	return nil
}

func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	content, exists := r.contents[id]
	if !exists {
		return 0, contentshare.ErrContentNotFound
	}
	content.Views++
	return content.Views, nil
}

func (r *Repository) ListContent(ctx context.Context, query contentshare.ContentQuery) ([]*contentshare.Content, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keyword := strings.ToLower(query.Keyword)
	tag := strings.ToLower(query.Tag)

	var matched []*contentshare.Content
	for _, content := range r.contents {
		if tag != "" && !strings.Contains(strings.ToLower(content.Tags), tag) {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(content.Title), keyword) &&
			!strings.Contains(strings.ToLower(content.Tags), keyword) {
			continue
		}
		contentCopy := *content
		matched = append(matched, &contentCopy)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch query.Sort {
		case contentshare.SortMostLiked:
			if a.Likes != b.Likes {
				return a.Likes > b.Likes
			}
		case contentshare.SortMostViewed:
			if a.Views != b.Views {
				return a.Views > b.Views
			}
		}
		if !a.UploadDate.Equal(b.UploadDate) {
			return a.UploadDate.After(b.UploadDate)
		}
		return a.ID.String() < b.ID.String()
	})

	total := int64(len(matched))
	start := query.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if query.Limit > 0 && start+query.Limit < end {
		end = start + query.Limit
	}

	return matched[start:end], total, nil
}

// Like operations

func (r *Repository) ToggleLike(ctx context.Context, contentID uuid.UUID, userID string) (*contentshare.LikeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	content, exists := r.contents[contentID]
	if !exists {
		return nil, contentshare.ErrContentNotFound
	}

	likers, ok := r.likes[contentID]
	if !ok {
		likers = make(map[string]time.Time)
		r.likes[contentID] = likers
	}

	liked := false
	if _, exists := likers[userID]; exists {
		delete(likers, userID)
		if content.Likes > 0 {
			content.Likes--
		}
	} else {
		likers[userID] = time.Now().UTC()
		content.Likes++
		liked = true
	}

	return &contentshare.LikeResult{Likes: content.Likes, Liked: liked}, nil
}

func (r *Repository) IsLiked(ctx context.Context, contentID uuid.UUID, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, liked := r.likes[contentID][userID]
	return liked, nil
}

func (r *Repository) ListLikedContentIDs(ctx context.Context, userID string) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := []uuid.UUID{}
	for contentID, likers := range r.likes {
		if _, ok := likers[userID]; ok {
			ids = append(ids, contentID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

// CountLikes returns the number of like rows for a content
func (r *Repository) CountLikes(contentID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.likes[contentID])
}

// Comment operations

func (r *Repository) CreateComment(ctx context.Context, comment *contentshare.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contents[comment.ContentID]; !exists {
		return contentshare.ErrContentNotFound
	}
	commentCopy := *comment
	r.comments[comment.ContentID] = append(r.comments[comment.ContentID], &commentCopy)
	return nil
}

func (r *Repository) ListComments(ctx context.Context, contentID uuid.UUID) ([]*contentshare.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.comments[contentID]
	comments := make([]*contentshare.Comment, 0, len(stored))
	for _, c := range stored {
		commentCopy := *c
		comments = append(comments, &commentCopy)
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].PostDate.After(comments[j].PostDate)
	})
	return comments, nil
}

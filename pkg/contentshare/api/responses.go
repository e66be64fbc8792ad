package api

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/content-share/pkg/contentshare"
)

// ContentView is a content item with client-facing URLs resolved
type ContentView struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Tags         string    `json:"tags"`
	FileType     string    `json:"fileType"`
	FilePath     string    `json:"filePath"`
	MediaURL     string    `json:"mediaUrl"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	UploadDate   time.Time `json:"uploadDate"`
	Views        int64     `json:"views"`
	Likes        int64     `json:"likes"`
}

// CommentView is one comment on the detail page
type CommentView struct {
	ID         string    `json:"id"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	PostDate   time.Time `json:"postDate"`
}

// DashboardResponse is the public listing page
type DashboardResponse struct {
	Contents          []ContentView     `json:"contents"`
	CurrentPage       int               `json:"currentPage"`
	TotalPages        int               `json:"totalPages"`
	TotalItems        int64             `json:"totalItems"`
	Filter            string            `json:"filter"`
	Tag               string            `json:"tag,omitempty"`
	Keyword           string            `json:"keyword,omitempty"`
	ActiveFilterTitle string            `json:"activeFilterTitle"`
	LikedContentIDs   []string          `json:"likedContentIds"`
	IsAdmin           bool              `json:"isAdmin"`
	Flash             map[string]string `json:"flash,omitempty"`
}

// ContentDetailResponse is the detail page of one item
type ContentDetailResponse struct {
	Content         ContentView       `json:"content"`
	FullMediaURL    string            `json:"fullMediaUrl"`
	Comments        []CommentView     `json:"comments"`
	IsLiked         bool              `json:"isLiked"`
	IsAuthenticated bool              `json:"isAuthenticated"`
	IsAdmin         bool              `json:"isAdmin"`
	Flash           map[string]string `json:"flash,omitempty"`
}

// ViewCountResponse answers a view increment
type ViewCountResponse struct {
	Success  bool  `json:"success"`
	NewViews int64 `json:"newViews"`
}

// LikeResponse answers a like toggle
type LikeResponse struct {
	Success  bool  `json:"success"`
	NewLikes int64 `json:"newLikes"`
	IsLiked  bool  `json:"isLiked"`
}

// AboutResponse is the static about page
type AboutResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AdminDashboardResponse is the admin listing page
type AdminDashboardResponse struct {
	Contents    []ContentView     `json:"contents"`
	CurrentPage int               `json:"currentPage"`
	TotalPages  int               `json:"totalPages"`
	TotalItems  int64             `json:"totalItems"`
	PageSize    int               `json:"pageSize"`
	IsAdmin     bool              `json:"isAdmin"`
	Flash       map[string]string `json:"flash,omitempty"`
}

// FormResponse describes the admin upload and edit forms
type FormResponse struct {
	Action  string       `json:"action"`
	Method  string       `json:"method"`
	Fields  []FormField  `json:"fields"`
	Content *ContentView `json:"content,omitempty"`
	IsAdmin bool         `json:"isAdmin"`
}

// FormField is one input of an admin form
type FormField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// contentView resolves the stored keys of c into public URLs
func contentView(c *contentshare.Content, storage contentshare.ObjectStorage) ContentView {
	view := ContentView{
		ID:          c.ID.String(),
		Title:       c.Title,
		Description: c.Description,
		Tags:        c.Tags,
		FileType:    string(c.FileType),
		FilePath:    c.FilePath,
		MediaURL:    resolveURL(storage, c.FilePath),
		UploadDate:  c.UploadDate,
		Views:       c.Views,
		Likes:       c.Likes,
	}

	switch {
	case c.ThumbnailURL == "":
	case isAbsoluteURL(c.ThumbnailURL):
		view.ThumbnailURL = c.ThumbnailURL
	case c.FileType == contentshare.FileTypeVideo:
		view.ThumbnailURL = videoThumbnailURL(c, storage)
	default:
		view.ThumbnailURL = storage.PublicURL(c.ThumbnailURL)
	}

	return view
}

func contentViews(items []*contentshare.Content, storage contentshare.ObjectStorage) []ContentView {
	views := make([]ContentView, 0, len(items))
	for _, c := range items {
		views = append(views, contentView(c, storage))
	}
	return views
}

func commentViews(comments []*contentshare.Comment) []CommentView {
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, CommentView{
			ID:         c.ID.String(),
			AuthorName: c.AuthorName,
			Text:       c.Text,
			PostDate:   c.PostDate,
		})
	}
	return views
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

// transformer is implemented by storage whose URLs can render derived objects
type transformer interface {
	SupportsTransforms() bool
}

// videoThumbnailURL returns the poster frame URL when the delivery network
// renders one, and the video itself otherwise.
func videoThumbnailURL(c *contentshare.Content, storage contentshare.ObjectStorage) string {
	if t, ok := storage.(transformer); ok && t.SupportsTransforms() {
		return storage.TransformedURL(c.ThumbnailURL, contentshare.ThumbnailTransform)
	}
	return resolveURL(storage, c.FilePath)
}

func resolveURL(storage contentshare.ObjectStorage, key string) string {
	if key == "" || isAbsoluteURL(key) {
		return key
	}
	return storage.PublicURL(key)
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

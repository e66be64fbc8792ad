package orm

import (
	"time"

	"github.com/google/uuid"
	"github.com/tendant/content-share/pkg/contentshare"
)

// contentModel maps the content table created by the migrations package.
type contentModel struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Title        string    `gorm:"column:title"`
	Description  string    `gorm:"column:description"`
	Tags         string    `gorm:"column:tags"`
	FilePath     string    `gorm:"column:file_path"`
	FileType     string    `gorm:"column:file_type"`
	ThumbnailURL *string   `gorm:"column:thumbnail_url"`
	UploadDate   time.Time `gorm:"column:upload_date"`
	Views        int64     `gorm:"column:views"`
	Likes        int64     `gorm:"column:likes"`
}

func (contentModel) TableName() string { return "content" }

type likeModel struct {
	ContentID uuid.UUID `gorm:"column:content_id;type:uuid;primaryKey"`
	UserID    string    `gorm:"column:user_id;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (likeModel) TableName() string { return "content_like" }

type commentModel struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ContentID  uuid.UUID `gorm:"column:content_id;type:uuid"`
	AuthorName string    `gorm:"column:author_name"`
	Text       string    `gorm:"column:text"`
	PostDate   time.Time `gorm:"column:post_date"`
}

func (commentModel) TableName() string { return "content_comment" }

func fromContent(c *contentshare.Content) *contentModel {
	m := &contentModel{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Tags:        c.Tags,
		FilePath:    c.FilePath,
		FileType:    string(c.FileType),
		UploadDate:  c.UploadDate,
		Views:       c.Views,
		Likes:       c.Likes,
	}
	if c.ThumbnailURL != "" {
		thumb := c.ThumbnailURL
		m.ThumbnailURL = &thumb
	}
	return m
}

func (m *contentModel) toContent() *contentshare.Content {
	c := &contentshare.Content{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Tags:        m.Tags,
		FilePath:    m.FilePath,
		FileType:    contentshare.FileType(m.FileType),
		UploadDate:  m.UploadDate,
		Views:       m.Views,
		Likes:       m.Likes,
	}
	if m.ThumbnailURL != nil {
		c.ThumbnailURL = *m.ThumbnailURL
	}
	return c
}

func (m *commentModel) toComment() *contentshare.Comment {
	return &contentshare.Comment{
		ID:         m.ID,
		ContentID:  m.ContentID,
		AuthorName: m.AuthorName,
		Text:       m.Text,
		PostDate:   m.PostDate,
	}
}

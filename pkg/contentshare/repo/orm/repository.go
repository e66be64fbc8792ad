// Package orm implements contentshare.Repository on GORM with the Postgres
// driver. It shares the schema owned by the migrations package and never
// runs AutoMigrate.
package orm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/content-share/pkg/contentshare"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Repository implements contentshare.Repository using GORM
type Repository struct {
	db *gorm.DB
}

// New wraps an open GORM handle
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Open connects to Postgres through GORM. SQL logging is enabled at debug level.
func Open(dsn string, log *slog.Logger) (*gorm.DB, error) {
	level := logger.Silent
	if log != nil && log.Enabled(context.Background(), slog.LevelDebug) {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql.DB error: %w", err)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func translate(operation string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, gorm.ErrForeignKeyViolated):
		return contentshare.ErrContentNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("duplicate entry in %s: %w", operation, err)
	default:
		return fmt.Errorf("database error in %s: %w", operation, err)
	}
}

// Content operations

func (r *Repository) CreateContent(ctx context.Context, content *contentshare.Content) error {
	if err := r.db.WithContext(ctx).Create(fromContent(content)).Error; err != nil {
		return translate("create content", err)
	}
	return nil
}

func (r *Repository) GetContent(ctx context.Context, id uuid.UUID) (*contentshare.Content, error) {
	var m contentModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate("get content", err)
	}
	return m.toContent(), nil
}

func (r *Repository) UpdateContent(ctx context.Context, content *contentshare.Content) error {
	m := fromContent(content)
	res := r.db.WithContext(ctx).Model(&contentModel{}).Where("id = ?", content.ID).Updates(map[string]interface{}{
		"title":         m.Title,
		"description":   m.Description,
		"tags":          m.Tags,
		"file_path":     m.FilePath,
		"file_type":     m.FileType,
		"thumbnail_url": m.ThumbnailURL,
	})
	if res.Error != nil {
		return translate("update content", res.Error)
	}
	if res.RowsAffected == 0 {
		return contentshare.ErrContentNotFound
	}
	return nil
}

// DeleteContent removes the row; the foreign keys cascade to likes and comments.
func (r *Repository) DeleteContent(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&contentModel{})
	if res.Error != nil {
		return translate("delete content", res.Error)
	}
	if res.RowsAffected == 0 {
		return contentshare.ErrContentNotFound
	}
	return nil
}

func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	var views int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&contentModel{}).Where("id = ?", id).UpdateColumn("views", gorm.Expr("views + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&contentModel{}).Select("views").Where("id = ?", id).Scan(&views).Error
	})
	if err != nil {
		return 0, translate("increment views", err)
	}
	return views, nil
}

func (r *Repository) ListContent(ctx context.Context, q contentshare.ContentQuery) ([]*contentshare.Content, int64, error) {
	filtered := func() *gorm.DB {
		db := r.db.WithContext(ctx).Model(&contentModel{})
		if q.Keyword != "" {
			p := likePattern(q.Keyword)
			db = db.Where("(title ILIKE ? OR tags ILIKE ?)", p, p)
		}
		if q.Tag != "" {
			db = db.Where("tags ILIKE ?", likePattern(q.Tag))
		}
		return db
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, translate("count content", err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = contentshare.MaxPageSize
	}

	var models []contentModel
	err := filtered().Order(orderBy(q.Sort)).Limit(limit).Offset(q.Offset).Find(&models).Error
	if err != nil {
		return nil, 0, translate("list content", err)
	}

	contents := make([]*contentshare.Content, 0, len(models))
	for i := range models {
		contents = append(contents, models[i].toContent())
	}
	return contents, total, nil
}

func orderBy(sort contentshare.SortOrder) string {
	switch sort {
	case contentshare.SortMostLiked:
		return "likes DESC, upload_date DESC, id"
	case contentshare.SortMostViewed:
		return "views DESC, upload_date DESC, id"
	default:
		return "upload_date DESC, id"
	}
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// Like operations

func (r *Repository) ToggleLike(ctx context.Context, contentID uuid.UUID, userID string) (*contentshare.LikeResult, error) {
	result := &contentshare.LikeResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m contentModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "likes").First(&m, "id = ?", contentID).Error; err != nil {
			return err
		}

		res := tx.Where("content_id = ? AND user_id = ?", contentID, userID).Delete(&likeModel{})
		if res.Error != nil {
			return res.Error
		}

		counter := gorm.Expr("GREATEST(likes - 1, 0)")
		result.Liked = res.RowsAffected == 0
		if result.Liked {
			like := &likeModel{ContentID: contentID, UserID: userID, CreatedAt: time.Now().UTC()}
			if err := tx.Create(like).Error; err != nil {
				return err
			}
			counter = gorm.Expr("likes + 1")
		}

		if err := tx.Model(&contentModel{}).Where("id = ?", contentID).UpdateColumn("likes", counter).Error; err != nil {
			return err
		}
		return tx.Model(&contentModel{}).Select("likes").Where("id = ?", contentID).Scan(&result.Likes).Error
	})
	if err != nil {
		return nil, translate("toggle like", err)
	}
	return result, nil
}

func (r *Repository) IsLiked(ctx context.Context, contentID uuid.UUID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&likeModel{}).
		Where("content_id = ? AND user_id = ?", contentID, userID).Count(&n).Error
	if err != nil {
		return false, translate("is liked", err)
	}
	return n > 0, nil
}

func (r *Repository) ListLikedContentIDs(ctx context.Context, userID string) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := r.db.WithContext(ctx).Model(&likeModel{}).
		Where("user_id = ?", userID).Order("created_at DESC").Pluck("content_id", &ids).Error
	if err != nil {
		return nil, translate("list liked content", err)
	}
	return ids, nil
}

// CountLikes returns the number of like rows for a content
func (r *Repository) CountLikes(ctx context.Context, contentID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&likeModel{}).Where("content_id = ?", contentID).Count(&n).Error
	if err != nil {
		return 0, translate("count likes", err)
	}
	return n, nil
}

// Comment operations

func (r *Repository) CreateComment(ctx context.Context, comment *contentshare.Comment) error {
	m := &commentModel{
		ID:         comment.ID,
		ContentID:  comment.ContentID,
		AuthorName: comment.AuthorName,
		Text:       comment.Text,
		PostDate:   comment.PostDate,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translate("create comment", err)
	}
	return nil
}

func (r *Repository) ListComments(ctx context.Context, contentID uuid.UUID) ([]*contentshare.Comment, error) {
	var models []commentModel
	err := r.db.WithContext(ctx).Where("content_id = ?", contentID).Order("post_date DESC, id").Find(&models).Error
	if err != nil {
		return nil, translate("list comments", err)
	}

	comments := make([]*contentshare.Comment, 0, len(models))
	for i := range models {
		comments = append(comments, models[i].toComment())
	}
	return comments, nil
}

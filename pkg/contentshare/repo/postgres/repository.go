package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/content-share/pkg/contentshare"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// DB is a DBTX that can also open transactions, such as *pgxpool.Pool
type DB interface {
	DBTX
	Begin(context.Context) (pgx.Tx, error)
}

// Repository implements contentshare.Repository using PostgreSQL
type Repository struct {
	db DB
}

// New creates a new PostgreSQL repository
func New(db DB) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

const contentColumns = `id, title, description, tags, file_path, file_type,
	COALESCE(thumbnail_url, ''), upload_date, views, likes`

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("duplicate entry in %s: %s", operation, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w", operation, contentshare.ErrContentNotFound)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "23514": // check_violation
			return fmt.Errorf("constraint %s violated in %s", pgErr.ConstraintName, operation)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return contentshare.ErrContentNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func scanContent(row pgx.Row) (*contentshare.Content, error) {
	var content contentshare.Content
	var fileType string
	err := row.Scan(
		&content.ID, &content.Title, &content.Description, &content.Tags,
		&content.FilePath, &fileType, &content.ThumbnailURL,
		&content.UploadDate, &content.Views, &content.Likes)
	if err != nil {
		return nil, err
	}
	content.FileType = contentshare.FileType(fileType)
	return &content, nil
}

// Content operations

func (r *Repository) CreateContent(ctx context.Context, content *contentshare.Content) error {
	query := `
		INSERT INTO content (
			id, title, description, tags, file_path, file_type,
			thumbnail_url, upload_date, views, likes
		) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		content.ID, content.Title, content.Description, content.Tags,
		content.FilePath, string(content.FileType), content.ThumbnailURL,
		content.UploadDate, content.Views, content.Likes)
	if err != nil {
		return r.handlePostgresError("create content", err)
	}
	return nil
}

func (r *Repository) GetContent(ctx context.Context, id uuid.UUID) (*contentshare.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM content WHERE id = $1`

	content, err := scanContent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.handlePostgresError("get content", err)
	}
	return content, nil
}

func (r *Repository) UpdateContent(ctx context.Context, content *contentshare.Content) error {
	query := `
		UPDATE content SET
			title = $2, description = $3, tags = $4,
			file_path = $5, file_type = $6, thumbnail_url = NULLIF($7, '')
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		content.ID, content.Title, content.Description, content.Tags,
		content.FilePath, string(content.FileType), content.ThumbnailURL)
	if err != nil {
		return r.handlePostgresError("update content", err)
	}
	if tag.RowsAffected() == 0 {
		return contentshare.ErrContentNotFound
	}
	return nil
}

// DeleteContent removes the row; likes and comments go with it through ON DELETE CASCADE.
func (r *Repository) DeleteContent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete content", err)
	}
	if tag.RowsAffected() == 0 {
		return contentshare.ErrContentNotFound
	}
	return nil
}

func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	var views int64
	err := r.db.QueryRow(ctx,
		`UPDATE content SET views = views + 1 WHERE id = $1 RETURNING views`, id).Scan(&views)
	if err != nil {
		return 0, r.handlePostgresError("increment views", err)
	}
	return views, nil
}

func (r *Repository) ListContent(ctx context.Context, q contentshare.ContentQuery) ([]*contentshare.Content, int64, error) {
	where, args := buildContentWhere(q)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM content`+where, args...).Scan(&total); err != nil {
		return nil, 0, r.handlePostgresError("count content", err)
	}

	argIndex := len(args) + 1
	query := fmt.Sprintf(`SELECT %s FROM content%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		contentColumns, where, orderBy(q.Sort), argIndex, argIndex+1)

	limit := q.Limit
	if limit <= 0 {
		limit = contentshare.MaxPageSize
	}
	args = append(args, limit, q.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, r.handlePostgresError("list content", err)
	}
	defer rows.Close()

	contents := []*contentshare.Content{}
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, 0, r.handlePostgresError("list content", err)
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, r.handlePostgresError("list content", err)
	}

	return contents, total, nil
}

// buildContentWhere builds the WHERE clause for keyword and tag filters
func buildContentWhere(q contentshare.ContentQuery) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if q.Keyword != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR tags ILIKE $%d)", argIndex, argIndex))
		args = append(args, likePattern(q.Keyword))
		argIndex++
	}
	if q.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("tags ILIKE $%d", argIndex))
		args = append(args, likePattern(q.Tag))
		argIndex++
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
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

// likePattern wraps s for a substring match, escaping LIKE wildcards
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// Like operations

// ToggleLike locks the content row so concurrent toggles on the same content
// serialize and the cached counter always equals the like rows.
func (r *Repository) ToggleLike(ctx context.Context, contentID uuid.UUID, userID string) (*contentshare.LikeResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, r.handlePostgresError("begin toggle like", err)
	}
	defer tx.Rollback(ctx)

	var likes int64
	if err := tx.QueryRow(ctx, `SELECT likes FROM content WHERE id = $1 FOR UPDATE`, contentID).Scan(&likes); err != nil {
		return nil, r.handlePostgresError("toggle like", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM content_like WHERE content_id = $1 AND user_id = $2`, contentID, userID)
	if err != nil {
		return nil, r.handlePostgresError("toggle like", err)
	}

	liked := tag.RowsAffected() == 0
	if liked {
		if _, err := tx.Exec(ctx,
			`INSERT INTO content_like (content_id, user_id, created_at) VALUES ($1, $2, $3)`,
			contentID, userID, time.Now().UTC()); err != nil {
			return nil, r.handlePostgresError("toggle like", err)
		}
		err = tx.QueryRow(ctx, `UPDATE content SET likes = likes + 1 WHERE id = $1 RETURNING likes`, contentID).Scan(&likes)
	} else {
		err = tx.QueryRow(ctx, `UPDATE content SET likes = GREATEST(likes - 1, 0) WHERE id = $1 RETURNING likes`, contentID).Scan(&likes)
	}
	if err != nil {
		return nil, r.handlePostgresError("toggle like", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, r.handlePostgresError("commit toggle like", err)
	}

	return &contentshare.LikeResult{Likes: likes, Liked: liked}, nil
}

func (r *Repository) IsLiked(ctx context.Context, contentID uuid.UUID, userID string) (bool, error) {
	var liked bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM content_like WHERE content_id = $1 AND user_id = $2)`,
		contentID, userID).Scan(&liked)
	if err != nil {
		return false, r.handlePostgresError("is liked", err)
	}
	return liked, nil
}

func (r *Repository) ListLikedContentIDs(ctx context.Context, userID string) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT content_id FROM content_like WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, r.handlePostgresError("list liked content", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, r.handlePostgresError("list liked content", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountLikes returns the number of like rows for a content
func (r *Repository) CountLikes(ctx context.Context, contentID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM content_like WHERE content_id = $1`, contentID).Scan(&n)
	if err != nil {
		return 0, r.handlePostgresError("count likes", err)
	}
	return n, nil
}

// Comment operations

func (r *Repository) CreateComment(ctx context.Context, comment *contentshare.Comment) error {
	query := `
		INSERT INTO content_comment (id, content_id, author_name, text, post_date)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		comment.ID, comment.ContentID, comment.AuthorName, comment.Text, comment.PostDate)
	if err != nil {
		return r.handlePostgresError("create comment", err)
	}
	return nil
}

func (r *Repository) ListComments(ctx context.Context, contentID uuid.UUID) ([]*contentshare.Comment, error) {
	query := `
		SELECT id, content_id, author_name, text, post_date
		FROM content_comment
		WHERE content_id = $1
		ORDER BY post_date DESC, id`

	rows, err := r.db.Query(ctx, query, contentID)
	if err != nil {
		return nil, r.handlePostgresError("list comments", err)
	}
	defer rows.Close()

	comments := []*contentshare.Comment{}
	for rows.Next() {
		var c contentshare.Comment
		if err := rows.Scan(&c.ID, &c.ContentID, &c.AuthorName, &c.Text, &c.PostDate); err != nil {
			return nil, r.handlePostgresError("list comments", err)
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

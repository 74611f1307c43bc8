package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blogforge/blogforge/internal/domain/entity"
	"github.com/blogforge/blogforge/internal/domain/repository"
	"github.com/blogforge/blogforge/pkg/apperr"
)

type CommentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

const commentColumns = `c.id, c.content, c.post_id, c.user_id, u.username, c.parent_id, c.created_at`

func scanComment(row pgx.Row, c *entity.Comment) error {
	return row.Scan(&c.ID, &c.Content, &c.PostID, &c.UserID,
		&c.AuthorUsername, &c.ParentID, &c.CreatedAt)
}

func (r *CommentRepository) Create(c *entity.Comment) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO comments (content, post_id, user_id, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, c.Content, c.PostID, c.UserID, c.ParentID)

	return row.Scan(&c.ID, &c.CreatedAt)
}

func (r *CommentRepository) GetByID(id int64) (*entity.Comment, error) {
	ctx := context.Background()
	c := &entity.Comment{}
	row := r.pool.QueryRow(ctx, `
		SELECT `+commentColumns+`
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = $1
	`, id)
	if err := scanComment(row, c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "comment not found")
		}
		return nil, err
	}
	return c, nil
}

func (r *CommentRepository) ListByPost(postID int64) ([]entity.Comment, error) {
	return r.list(`WHERE c.post_id = $1`, []any{postID})
}

func (r *CommentRepository) ListPublic(postID *int64) ([]entity.Comment, error) {
	if postID != nil {
		return r.list(`JOIN posts p ON p.id = c.post_id WHERE p.published AND c.post_id = $1`, []any{*postID})
	}
	return r.list(`JOIN posts p ON p.id = c.post_id WHERE p.published`, nil)
}

func (r *CommentRepository) list(tail string, args []any) ([]entity.Comment, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+commentColumns+`
		FROM comments c
		JOIN users u ON u.id = c.user_id
	`+tail+` ORDER BY c.created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Comment
	for rows.Next() {
		var c entity.Comment
		if err := scanComment(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CommentRepository) Delete(id int64) error {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "comment not found")
	}
	return nil
}

var _ repository.CommentRepository = (*CommentRepository)(nil)

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

const commentSelect = `
	SELECT c.id, c.review_id, c.author_id, u.username, c.text, c.created_at
	FROM comments c
	JOIN users u ON u.id = c.author_id`

type CommentRepository struct {
	db *pgxpool.Pool
}

func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var (
		c                      domain.Comment
		id, reviewID, authorID uuid.UUID
	)
	if err := row.Scan(&id, &reviewID, &authorID, &c.Author, &c.Text, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.ID = id.String()
	c.ReviewID = reviewID.String()
	c.AuthorID = authorID.String()
	return &c, nil
}

func (r *CommentRepository) Insert(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	reviewID, ok := parseID(c.ReviewID)
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	authorID, ok := parseID(c.AuthorID)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	row := r.db.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO comments (id, review_id, author_id, text, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING *
		)
		SELECT ins.id, ins.review_id, ins.author_id, u.username, ins.text, ins.created_at
		FROM ins JOIN users u ON u.id = ins.author_id`,
		uuid.New(), reviewID, authorID, c.Text, c.CreatedAt)
	created, err := scanComment(row)
	if err != nil {
		if code, _ := pgCode(err); code == codeForeignKeyViolation {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return created, nil
}

func (r *CommentRepository) FindByID(ctx context.Context, reviewID, commentID string) (*domain.Comment, error) {
	rid, ok1 := parseID(reviewID)
	cid, ok2 := parseID(commentID)
	if !ok1 || !ok2 {
		return nil, domain.ErrCommentNotFound
	}
	c, err := scanComment(r.db.QueryRow(ctx, commentSelect+` WHERE c.id = $1 AND c.review_id = $2`, cid, rid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return c, nil
}

func (r *CommentRepository) List(ctx context.Context, reviewID string, page ports.PageRequest) ([]*domain.Comment, int64, error) {
	rid, ok := parseID(reviewID)
	if !ok {
		return nil, 0, domain.ErrReviewNotFound
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE review_id = $1`, rid).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	rows, err := r.db.Query(ctx, commentSelect+`
		WHERE c.review_id = $1
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $2 OFFSET $3`, rid, page.Limit, page.Skip())
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []*domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *CommentRepository) Update(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	cid, ok := parseID(c.ID)
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	tag, err := r.db.Exec(ctx, `UPDATE comments SET text = $2 WHERE id = $1`, cid, c.Text)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrCommentNotFound
	}
	out := *c
	return &out, nil
}

func (r *CommentRepository) Delete(ctx context.Context, reviewID, commentID string) error {
	rid, ok1 := parseID(reviewID)
	cid, ok2 := parseID(commentID)
	if !ok1 || !ok2 {
		return domain.ErrCommentNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1 AND review_id = $2`, cid, rid)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

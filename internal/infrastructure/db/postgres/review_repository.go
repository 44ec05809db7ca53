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

const reviewSelect = `
	SELECT r.id, r.title_id, r.author_id, u.username, r.text, r.score, r.created_at
	FROM reviews r
	JOIN users u ON u.id = r.author_id`

type ReviewRepository struct {
	db *pgxpool.Pool
}

func NewReviewRepository(db *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var (
		rv                    domain.Review
		id, titleID, authorID uuid.UUID
		score                 int16
	)
	if err := row.Scan(&id, &titleID, &authorID, &rv.Author, &rv.Text, &score, &rv.CreatedAt); err != nil {
		return nil, err
	}
	rv.ID = id.String()
	rv.TitleID = titleID.String()
	rv.AuthorID = authorID.String()
	rv.Score = int(score)
	return &rv, nil
}

// Insert relies on the (title_id, author_id) unique constraint: a conflicting
// row yields no RETURNING row and maps to domain.ErrDuplicateReview.
func (r *ReviewRepository) Insert(ctx context.Context, rv *domain.Review) (*domain.Review, error) {
	titleID, ok := parseID(rv.TitleID)
	if !ok {
		return nil, domain.ErrTitleNotFound
	}
	authorID, ok := parseID(rv.AuthorID)
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	row := r.db.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO reviews (id, title_id, author_id, text, score, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (title_id, author_id) DO NOTHING
			RETURNING *
		)
		SELECT ins.id, ins.title_id, ins.author_id, u.username, ins.text, ins.score, ins.created_at
		FROM ins JOIN users u ON u.id = ins.author_id`,
		uuid.New(), titleID, authorID, rv.Text, rv.Score, rv.CreatedAt)

	created, err := scanReview(row)
	switch {
	case err == nil:
		return created, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, domain.ErrDuplicateReview
	}
	if code, constraint := pgCode(err); code == codeForeignKeyViolation {
		if constraint == "reviews_author_id_fkey" {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.ErrTitleNotFound
	}
	return nil, fmt.Errorf("insert review: %w", err)
}

func (r *ReviewRepository) FindByID(ctx context.Context, titleID, reviewID string) (*domain.Review, error) {
	tid, ok1 := parseID(titleID)
	rid, ok2 := parseID(reviewID)
	if !ok1 || !ok2 {
		return nil, domain.ErrReviewNotFound
	}
	rv, err := scanReview(r.db.QueryRow(ctx, reviewSelect+` WHERE r.id = $1 AND r.title_id = $2`, rid, tid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return rv, nil
}

func (r *ReviewRepository) List(ctx context.Context, titleID string, page ports.PageRequest) ([]*domain.Review, int64, error) {
	tid, ok := parseID(titleID)
	if !ok {
		return nil, 0, domain.ErrTitleNotFound
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE title_id = $1`, tid).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	rows, err := r.db.Query(ctx, reviewSelect+`
		WHERE r.title_id = $1
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $2 OFFSET $3`, tid, page.Limit, page.Skip())
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var out []*domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan review: %w", err)
		}
		out = append(out, rv)
	}
	return out, total, rows.Err()
}

func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) (*domain.Review, error) {
	rid, ok := parseID(rv.ID)
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	tag, err := r.db.Exec(ctx, `UPDATE reviews SET text = $2, score = $3 WHERE id = $1`, rid, rv.Text, rv.Score)
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrReviewNotFound
	}
	out := *rv
	return &out, nil
}

// Delete removes the review; its comments follow by cascade.
func (r *ReviewRepository) Delete(ctx context.Context, titleID, reviewID string) error {
	tid, ok1 := parseID(titleID)
	rid, ok2 := parseID(reviewID)
	if !ok1 || !ok2 {
		return domain.ErrReviewNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1 AND title_id = $2`, rid, tid)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) ScoreStats(ctx context.Context, titleIDs []string) (map[string]ports.ScoreStats, error) {
	out := make(map[string]ports.ScoreStats, len(titleIDs))
	ids := parseIDs(titleIDs)
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT title_id, COUNT(*), COALESCE(SUM(score), 0)
		FROM reviews
		WHERE title_id = ANY($1)
		GROUP BY title_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("aggregate scores: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id         uuid.UUID
			count, sum int64
		)
		if err := rows.Scan(&id, &count, &sum); err != nil {
			return nil, fmt.Errorf("scan scores: %w", err)
		}
		out[id.String()] = ports.ScoreStats{Count: count, Sum: sum}
	}
	return out, rows.Err()
}

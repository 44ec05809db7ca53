package ports

import (
	"context"

	"github.com/yamdb/catalogue-api/internal/core/domain"
)

// ScoreStats is the raw aggregate a rating is computed from.
type ScoreStats struct {
	Count int64
	Sum   int64
}

// ReviewRepository stores reviews. Author is resolved to a username on read.
type ReviewRepository interface {
	// Insert stores r unless the author already reviewed the title, in which
	// case it returns domain.ErrDuplicateReview. The check and the write are
	// a single atomic operation.
	Insert(ctx context.Context, r *domain.Review) (*domain.Review, error)
	FindByID(ctx context.Context, titleID, reviewID string) (*domain.Review, error)
	List(ctx context.Context, titleID string, page PageRequest) ([]*domain.Review, int64, error)
	Update(ctx context.Context, r *domain.Review) (*domain.Review, error)
	// Delete removes the review and its comments.
	Delete(ctx context.Context, titleID, reviewID string) error
	// ScoreStats aggregates scores per title. Titles without reviews are
	// absent from the result.
	ScoreStats(ctx context.Context, titleIDs []string) (map[string]ScoreStats, error)
}

// CommentRepository stores comments on reviews.
type CommentRepository interface {
	Insert(ctx context.Context, c *domain.Comment) (*domain.Comment, error)
	FindByID(ctx context.Context, reviewID, commentID string) (*domain.Comment, error)
	List(ctx context.Context, reviewID string, page PageRequest) ([]*domain.Comment, int64, error)
	Update(ctx context.Context, c *domain.Comment) (*domain.Comment, error)
	Delete(ctx context.Context, reviewID, commentID string) error
}

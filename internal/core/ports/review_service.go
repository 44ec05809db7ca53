package ports

import (
	"context"

	"github.com/yamdb/catalogue-api/internal/core/domain"
)

// ReviewPatch is a partial review update.
type ReviewPatch struct {
	Text  *string
	Score *int
}

// ReviewService owns the one-review-per-author-per-title rule and the derived
// rating.
type ReviewService interface {
	SubmitReview(ctx context.Context, caller domain.Principal, titleID, text string, score int) (*domain.Review, error)
	UpdateReview(ctx context.Context, caller domain.Principal, titleID, reviewID string, patch ReviewPatch) (*domain.Review, error)
	DeleteReview(ctx context.Context, caller domain.Principal, titleID, reviewID string) error
	GetReview(ctx context.Context, titleID, reviewID string) (*domain.Review, error)
	ListReviews(ctx context.Context, titleID string, page PageRequest) (Page[*domain.Review], error)

	// ComputeRating returns the mean score of the title, or nil when it has
	// no reviews.
	ComputeRating(ctx context.Context, titleID string) (*float64, error)
	// Ratings is the batch form of ComputeRating. Titles without reviews map
	// to nil.
	Ratings(ctx context.Context, titleIDs []string) (map[string]*float64, error)
}

// CommentService manages comments nested under a title's review.
type CommentService interface {
	Create(ctx context.Context, caller domain.Principal, titleID, reviewID, text string) (*domain.Comment, error)
	Get(ctx context.Context, titleID, reviewID, commentID string) (*domain.Comment, error)
	List(ctx context.Context, titleID, reviewID string, page PageRequest) (Page[*domain.Comment], error)
	Update(ctx context.Context, caller domain.Principal, titleID, reviewID, commentID, text string) (*domain.Comment, error)
	Delete(ctx context.Context, caller domain.Principal, titleID, reviewID, commentID string) error
}

package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
	"github.com/yamdb/catalogue-api/pkg/metrics"
)

type reviewService struct {
	titles  ports.TitleRepository
	reviews ports.ReviewRepository
	log     zerolog.Logger
	now     func() time.Time
	group   singleflight.Group
}

// NewReviewService returns a ReviewService implementation.
func NewReviewService(
	titles ports.TitleRepository,
	reviews ports.ReviewRepository,
	log zerolog.Logger,
) ports.ReviewService {
	return &reviewService{
		titles:  titles,
		reviews: reviews,
		log:     log,
		now:     time.Now,
	}
}

// SubmitReview creates the caller's review of a title. Checks run in a fixed
// order: title exists, score in range, then the atomic duplicate check at
// insert time.
func (s *reviewService) SubmitReview(ctx context.Context, caller domain.Principal, titleID, text string, score int) (*domain.Review, error) {
	if err := authorize(caller, true, http.MethodPost, domain.ResourceReview); err != nil {
		return nil, err
	}
	if _, err := s.titles.FindByID(ctx, titleID); err != nil {
		return nil, err
	}

	ve := &domain.ValidationError{}
	domain.ValidateScore(score, ve)
	domain.ValidateText(text, ve)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	review, err := s.reviews.Insert(ctx, &domain.Review{
		TitleID:   titleID,
		AuthorID:  caller.UserID,
		Text:      text,
		Score:     score,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateReview) {
			metrics.ReviewsSubmittedTotal.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}
	metrics.ReviewsSubmittedTotal.WithLabelValues("created").Inc()

	s.log.Info().Str("title_id", titleID).Str("review_id", review.ID).Int("score", score).Msg("review submitted")
	return review, nil
}

// UpdateReview edits text and/or score. Edits never trigger the duplicate
// check.
func (s *reviewService) UpdateReview(ctx context.Context, caller domain.Principal, titleID, reviewID string, patch ports.ReviewPatch) (*domain.Review, error) {
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, review.AuthorID == caller.UserID, http.MethodPatch, domain.ResourceReview); err != nil {
		return nil, err
	}

	if patch.Text != nil {
		review.Text = *patch.Text
	}
	if patch.Score != nil {
		review.Score = *patch.Score
	}
	ve := &domain.ValidationError{}
	domain.ValidateScore(review.Score, ve)
	domain.ValidateText(review.Text, ve)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	updated, err := s.reviews.Update(ctx, review)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, caller domain.Principal, titleID, reviewID string) error {
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := authorize(caller, review.AuthorID == caller.UserID, http.MethodDelete, domain.ResourceReview); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, titleID, reviewID); err != nil {
		return err
	}
	s.log.Info().Str("title_id", titleID).Str("review_id", reviewID).Msg("review deleted")
	return nil
}

func (s *reviewService) GetReview(ctx context.Context, titleID, reviewID string) (*domain.Review, error) {
	if _, err := s.titles.FindByID(ctx, titleID); err != nil {
		return nil, err
	}
	return s.reviews.FindByID(ctx, titleID, reviewID)
}

func (s *reviewService) ListReviews(ctx context.Context, titleID string, page ports.PageRequest) (ports.Page[*domain.Review], error) {
	if _, err := s.titles.FindByID(ctx, titleID); err != nil {
		return ports.Page[*domain.Review]{}, err
	}
	page = page.Normalize()
	items, total, err := s.reviews.List(ctx, titleID, page)
	if err != nil {
		return ports.Page[*domain.Review]{}, err
	}
	return ports.NewPage(items, total, page), nil
}

// ComputeRating aggregates the title's current review set on every call.
// Concurrent callers for the same title share one in-flight store round trip.
func (s *reviewService) ComputeRating(ctx context.Context, titleID string) (*float64, error) {
	v, err, _ := s.group.Do(titleID, func() (any, error) {
		stats, err := s.reviews.ScoreStats(ctx, []string{titleID})
		if err != nil {
			return nil, err
		}
		st := stats[titleID]
		return domain.MeanScore(st.Sum, st.Count), nil
	})
	if err != nil {
		return nil, fmt.Errorf("compute rating: %w", err)
	}
	return v.(*float64), nil
}

// Ratings computes ratings for a page of titles in one aggregate query.
func (s *reviewService) Ratings(ctx context.Context, titleIDs []string) (map[string]*float64, error) {
	out := make(map[string]*float64, len(titleIDs))
	if len(titleIDs) == 0 {
		return out, nil
	}
	stats, err := s.reviews.ScoreStats(ctx, titleIDs)
	if err != nil {
		return nil, fmt.Errorf("compute ratings: %w", err)
	}
	for _, id := range titleIDs {
		st := stats[id]
		out[id] = domain.MeanScore(st.Sum, st.Count)
	}
	return out, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

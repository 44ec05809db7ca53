package service

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

// CommentService manages comments. Every operation first resolves the parent
// review under the given title, so a comment is only reachable through its
// own title and review.
type CommentService struct {
	reviews  ports.ReviewService
	comments ports.CommentRepository
	log      zerolog.Logger
	now      func() time.Time
}

func NewCommentService(reviews ports.ReviewService, comments ports.CommentRepository, log zerolog.Logger) *CommentService {
	return &CommentService{reviews: reviews, comments: comments, log: log, now: time.Now}
}

func (s *CommentService) Create(ctx context.Context, caller domain.Principal, titleID, reviewID, text string) (*domain.Comment, error) {
	if err := authorize(caller, true, http.MethodPost, domain.ResourceComment); err != nil {
		return nil, err
	}
	if _, err := s.reviews.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	ve := &domain.ValidationError{}
	domain.ValidateText(text, ve)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	c, err := s.comments.Insert(ctx, &domain.Comment{
		ReviewID:  reviewID,
		AuthorID:  caller.UserID,
		Text:      text,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("review_id", reviewID).Str("comment_id", c.ID).Msg("comment created")
	return c, nil
}

func (s *CommentService) Get(ctx context.Context, titleID, reviewID, commentID string) (*domain.Comment, error) {
	if _, err := s.reviews.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	return s.comments.FindByID(ctx, reviewID, commentID)
}

func (s *CommentService) List(ctx context.Context, titleID, reviewID string, page ports.PageRequest) (ports.Page[*domain.Comment], error) {
	if _, err := s.reviews.GetReview(ctx, titleID, reviewID); err != nil {
		return ports.Page[*domain.Comment]{}, err
	}
	page = page.Normalize()
	items, total, err := s.comments.List(ctx, reviewID, page)
	if err != nil {
		return ports.Page[*domain.Comment]{}, err
	}
	return ports.NewPage(items, total, page), nil
}

func (s *CommentService) Update(ctx context.Context, caller domain.Principal, titleID, reviewID, commentID, text string) (*domain.Comment, error) {
	c, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, c.AuthorID == caller.UserID, http.MethodPatch, domain.ResourceComment); err != nil {
		return nil, err
	}
	ve := &domain.ValidationError{}
	domain.ValidateText(text, ve)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	c.Text = text
	return s.comments.Update(ctx, c)
}

func (s *CommentService) Delete(ctx context.Context, caller domain.Principal, titleID, reviewID, commentID string) error {
	c, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := authorize(caller, c.AuthorID == caller.UserID, http.MethodDelete, domain.ResourceComment); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, reviewID, commentID); err != nil {
		return err
	}
	s.log.Info().Str("review_id", reviewID).Str("comment_id", commentID).Msg("comment deleted")
	return nil
}

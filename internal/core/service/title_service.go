package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

// RatingSource supplies derived ratings for titles.
type RatingSource interface {
	ComputeRating(ctx context.Context, titleID string) (*float64, error)
	Ratings(ctx context.Context, titleIDs []string) (map[string]*float64, error)
}

// TitleService manages titles and attaches their derived rating on read.
type TitleService struct {
	titles     ports.TitleRepository
	categories ports.TaxonomyRepository
	genres     ports.TaxonomyRepository
	ratings    RatingSource
	log        zerolog.Logger
	now        func() time.Time
}

func NewTitleService(
	titles ports.TitleRepository,
	categories ports.TaxonomyRepository,
	genres ports.TaxonomyRepository,
	ratings RatingSource,
	log zerolog.Logger,
) *TitleService {
	return &TitleService{
		titles:     titles,
		categories: categories,
		genres:     genres,
		ratings:    ratings,
		log:        log,
		now:        time.Now,
	}
}

func (s *TitleService) List(ctx context.Context, filter ports.TitleFilter) (ports.Page[*domain.Title], error) {
	filter.PageRequest = filter.PageRequest.Normalize()
	items, total, err := s.titles.List(ctx, filter)
	if err != nil {
		return ports.Page[*domain.Title]{}, err
	}

	ids := make([]string, len(items))
	for i, t := range items {
		ids[i] = t.ID
	}
	ratings, err := s.ratings.Ratings(ctx, ids)
	if err != nil {
		return ports.Page[*domain.Title]{}, fmt.Errorf("title ratings: %w", err)
	}
	for _, t := range items {
		t.Rating = ratings[t.ID]
	}
	return ports.NewPage(items, total, filter.PageRequest), nil
}

func (s *TitleService) Get(ctx context.Context, id string) (*domain.Title, error) {
	t, err := s.titles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Rating, err = s.ratings.ComputeRating(ctx, t.ID); err != nil {
		return nil, fmt.Errorf("title rating: %w", err)
	}
	return t, nil
}

func (s *TitleService) Create(ctx context.Context, caller domain.Principal, in ports.TitleInput) (*domain.Title, error) {
	if err := authorize(caller, false, http.MethodPost, domain.ResourceTaxonomy); err != nil {
		return nil, err
	}

	title := &domain.Title{
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.resolve(ctx, title, &in.Category, &in.Genres); err != nil {
		return nil, err
	}

	created, err := s.titles.Create(ctx, title)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("title_id", created.ID).Str("name", created.Name).Msg("title created")
	return created, nil
}

func (s *TitleService) Update(ctx context.Context, caller domain.Principal, id string, patch ports.TitlePatch) (*domain.Title, error) {
	if err := authorize(caller, false, http.MethodPatch, domain.ResourceTaxonomy); err != nil {
		return nil, err
	}
	title, err := s.titles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		title.Name = *patch.Name
	}
	if patch.Year != nil {
		title.Year = *patch.Year
	}
	if patch.Description != nil {
		title.Description = *patch.Description
	}
	if err := s.resolve(ctx, title, patch.Category, patch.Genres); err != nil {
		return nil, err
	}

	updated, err := s.titles.Update(ctx, title)
	if err != nil {
		return nil, err
	}
	if updated.Rating, err = s.ratings.ComputeRating(ctx, updated.ID); err != nil {
		return nil, fmt.Errorf("title rating: %w", err)
	}
	return updated, nil
}

func (s *TitleService) Delete(ctx context.Context, caller domain.Principal, id string) error {
	if err := authorize(caller, false, http.MethodDelete, domain.ResourceTaxonomy); err != nil {
		return err
	}
	if err := s.titles.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("title_id", id).Msg("title deleted")
	return nil
}

// resolve validates the scalar fields of t and swaps the category and genre
// slugs for stored taxa. A nil pointer keeps the current value.
func (s *TitleService) resolve(ctx context.Context, t *domain.Title, category *string, genres *[]string) error {
	ve := &domain.ValidationError{}
	domain.ValidateTitleName(t.Name, ve)
	domain.ValidateTitleYear(t.Year, s.now(), ve)

	if category != nil {
		t.Category = nil
		if *category != "" {
			c, err := s.categories.FindBySlug(ctx, *category)
			switch {
			case err == nil:
				t.Category = c
			case isNotFound(err):
				ve.Add("category", fmt.Sprintf("object with slug=%s does not exist", *category))
			default:
				return err
			}
		}
	}

	if genres != nil {
		slugs := dedupe(*genres)
		found, err := s.genres.FindBySlugs(ctx, slugs)
		if err != nil {
			return err
		}
		bySlug := make(map[string]domain.Taxon, len(found))
		for _, g := range found {
			bySlug[g.Slug] = g
		}
		t.Genres = make([]domain.Taxon, 0, len(slugs))
		for _, slug := range slugs {
			g, ok := bySlug[slug]
			if !ok {
				ve.Add("genre", fmt.Sprintf("object with slug=%s does not exist", slug))
				continue
			}
			t.Genres = append(t.Genres, g)
		}
	}

	return ve.OrNil()
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

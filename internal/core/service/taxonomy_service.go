package service

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

// TaxonomyService manages categories or genres; one instance per kind.
type TaxonomyService struct {
	kind domain.TaxonKind
	repo ports.TaxonomyRepository
	log  zerolog.Logger
}

func NewTaxonomyService(kind domain.TaxonKind, repo ports.TaxonomyRepository, log zerolog.Logger) *TaxonomyService {
	return &TaxonomyService{kind: kind, repo: repo, log: log.With().Str("kind", string(kind)).Logger()}
}

func (s *TaxonomyService) Kind() domain.TaxonKind { return s.kind }

func (s *TaxonomyService) List(ctx context.Context, filter ports.TaxonFilter) (ports.Page[domain.Taxon], error) {
	filter.PageRequest = filter.PageRequest.Normalize()
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return ports.Page[domain.Taxon]{}, err
	}
	return ports.NewPage(items, total, filter.PageRequest), nil
}

func (s *TaxonomyService) Create(ctx context.Context, caller domain.Principal, name, slug string) (*domain.Taxon, error) {
	if err := authorize(caller, false, http.MethodPost, domain.ResourceTaxonomy); err != nil {
		return nil, err
	}
	ve := &domain.ValidationError{}
	domain.ValidateTaxon(name, slug, ve)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	t, err := s.repo.Create(ctx, &domain.Taxon{Name: name, Slug: slug})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("slug", slug).Msg("taxon created")
	return t, nil
}

func (s *TaxonomyService) Delete(ctx context.Context, caller domain.Principal, slug string) error {
	if err := authorize(caller, false, http.MethodDelete, domain.ResourceTaxonomy); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, slug); err != nil {
		return err
	}
	s.log.Info().Str("slug", slug).Msg("taxon deleted")
	return nil
}

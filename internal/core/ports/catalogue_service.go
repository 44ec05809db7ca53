package ports

import (
	"context"

	"github.com/yamdb/catalogue-api/internal/core/domain"
)

// TaxonomyService manages one kind of taxon.
type TaxonomyService interface {
	Kind() domain.TaxonKind
	List(ctx context.Context, filter TaxonFilter) (Page[domain.Taxon], error)
	Create(ctx context.Context, caller domain.Principal, name, slug string) (*domain.Taxon, error)
	Delete(ctx context.Context, caller domain.Principal, slug string) error
}

// TitleInput carries a full title write.
type TitleInput struct {
	Name        string
	Year        int
	Description string
	Category    string   // slug, optional
	Genres      []string // slugs
}

// TitlePatch is a partial title update. Nil fields are left untouched.
type TitlePatch struct {
	Name        *string
	Year        *int
	Description *string
	Category    *string
	Genres      *[]string
}

// TitleService manages titles. Returned titles carry their rating.
type TitleService interface {
	List(ctx context.Context, filter TitleFilter) (Page[*domain.Title], error)
	Get(ctx context.Context, id string) (*domain.Title, error)
	Create(ctx context.Context, caller domain.Principal, in TitleInput) (*domain.Title, error)
	Update(ctx context.Context, caller domain.Principal, id string, patch TitlePatch) (*domain.Title, error)
	Delete(ctx context.Context, caller domain.Principal, id string) error
}

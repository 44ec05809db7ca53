package ports

import (
	"context"

	"github.com/yamdb/catalogue-api/internal/core/domain"
)

// TaxonFilter narrows a category or genre listing by name substring.
type TaxonFilter struct {
	Search string
	PageRequest
}

// TaxonomyRepository stores one kind of taxon (categories or genres).
type TaxonomyRepository interface {
	Create(ctx context.Context, t *domain.Taxon) (*domain.Taxon, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Taxon, error)
	// FindBySlugs returns the taxa that exist among slugs, in no particular order.
	FindBySlugs(ctx context.Context, slugs []string) ([]domain.Taxon, error)
	List(ctx context.Context, filter TaxonFilter) ([]domain.Taxon, int64, error)
	// Delete removes the taxon and detaches it from every title.
	Delete(ctx context.Context, slug string) error
}

// TitleFilter narrows a title listing. All fields are optional.
type TitleFilter struct {
	Category string // category slug
	Genre    string // genre slug
	Name     string // substring, case-insensitive
	Year     int
	PageRequest
}

// TitleRepository stores titles. Category and genres are resolved to full
// taxa on read; Rating is left nil.
type TitleRepository interface {
	Create(ctx context.Context, t *domain.Title) (*domain.Title, error)
	FindByID(ctx context.Context, id string) (*domain.Title, error)
	List(ctx context.Context, filter TitleFilter) ([]*domain.Title, int64, error)
	Update(ctx context.Context, t *domain.Title) (*domain.Title, error)
	// Delete removes the title together with its reviews and their comments.
	Delete(ctx context.Context, id string) error
}

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

// TaxonomyRepository stores categories or genres. Deleting a category nulls
// titles.category_id and deleting a genre drops its title_genres rows, both
// through the foreign keys.
type TaxonomyRepository struct {
	db    *pgxpool.Pool
	kind  domain.TaxonKind
	table string
}

func NewCategoryRepository(db *pgxpool.Pool) *TaxonomyRepository {
	return &TaxonomyRepository{db: db, kind: domain.KindCategory, table: "categories"}
}

func NewGenreRepository(db *pgxpool.Pool) *TaxonomyRepository {
	return &TaxonomyRepository{db: db, kind: domain.KindGenre, table: "genres"}
}

func scanTaxon(row pgx.Row) (domain.Taxon, error) {
	var (
		t  domain.Taxon
		id uuid.UUID
	)
	if err := row.Scan(&id, &t.Name, &t.Slug); err != nil {
		return domain.Taxon{}, err
	}
	t.ID = id.String()
	return t, nil
}

func (r *TaxonomyRepository) Create(ctx context.Context, t *domain.Taxon) (*domain.Taxon, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO `+r.table+` (id, name, slug) VALUES ($1, $2, $3) RETURNING id, name, slug`,
		uuid.New(), t.Name, t.Slug)
	created, err := scanTaxon(row)
	if err != nil {
		if code, _ := pgCode(err); code == codeUniqueViolation {
			return nil, domain.ErrSlugTaken
		}
		return nil, fmt.Errorf("insert %s: %w", r.kind, err)
	}
	return &created, nil
}

func (r *TaxonomyRepository) FindBySlug(ctx context.Context, slug string) (*domain.Taxon, error) {
	t, err := scanTaxon(r.db.QueryRow(ctx, `SELECT id, name, slug FROM `+r.table+` WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.kind.NotFoundErr()
		}
		return nil, fmt.Errorf("find %s: %w", r.kind, err)
	}
	return &t, nil
}

func (r *TaxonomyRepository) FindBySlugs(ctx context.Context, slugs []string) ([]domain.Taxon, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, name, slug FROM `+r.table+` WHERE slug = ANY($1)`, slugs)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", r.kind, err)
	}
	return collectTaxa(rows)
}

func (r *TaxonomyRepository) List(ctx context.Context, f ports.TaxonFilter) ([]domain.Taxon, int64, error) {
	var w whereBuilder
	if f.Search != "" {
		w.add("name ILIKE ?", containsPattern(f.Search))
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM `+r.table+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.kind, err)
	}

	where := w.sql()
	limit := w.page(f.Limit, f.Skip())
	rows, err := r.db.Query(ctx, `SELECT id, name, slug FROM `+r.table+where+` ORDER BY name, slug`+limit, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.kind, err)
	}
	out, err := collectTaxa(rows)
	return out, total, err
}

func (r *TaxonomyRepository) Delete(ctx context.Context, slug string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM `+r.table+` WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.kind, err)
	}
	if tag.RowsAffected() == 0 {
		return r.kind.NotFoundErr()
	}
	return nil
}

func collectTaxa(rows pgx.Rows) ([]domain.Taxon, error) {
	defer rows.Close()
	var out []domain.Taxon
	for rows.Next() {
		t, err := scanTaxon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan taxon: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

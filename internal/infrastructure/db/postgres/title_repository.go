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

const titleSelect = `
	SELECT t.id, t.name, t.year, t.description, t.created_at, c.id, c.name, c.slug
	FROM titles t
	LEFT JOIN categories c ON c.id = t.category_id`

type TitleRepository struct {
	db *pgxpool.Pool
}

func NewTitleRepository(db *pgxpool.Pool) *TitleRepository {
	return &TitleRepository{db: db}
}

func scanTitle(row pgx.Row) (*domain.Title, error) {
	var (
		t                domain.Title
		id               uuid.UUID
		catID            *uuid.UUID
		catName, catSlug *string
	)
	if err := row.Scan(&id, &t.Name, &t.Year, &t.Description, &t.CreatedAt, &catID, &catName, &catSlug); err != nil {
		return nil, err
	}
	t.ID = id.String()
	if catID != nil {
		t.Category = &domain.Taxon{ID: catID.String(), Name: *catName, Slug: *catSlug}
	}
	t.Genres = []domain.Taxon{}
	return &t, nil
}

// titleFilter translates a listing filter into SQL conditions.
func titleFilter(f ports.TitleFilter) *whereBuilder {
	w := &whereBuilder{}
	if f.Category != "" {
		w.add("c.slug = ?", f.Category)
	}
	if f.Genre != "" {
		w.add(`EXISTS (SELECT 1 FROM title_genres tg JOIN genres g ON g.id = tg.genre_id
			WHERE tg.title_id = t.id AND g.slug = ?)`, f.Genre)
	}
	if f.Name != "" {
		w.add("t.name ILIKE ?", containsPattern(f.Name))
	}
	if f.Year != 0 {
		w.add("t.year = ?", f.Year)
	}
	return w
}

func categoryID(t *domain.Title) (*uuid.UUID, error) {
	if t.Category == nil {
		return nil, nil
	}
	id, ok := parseID(t.Category.ID)
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return &id, nil
}

func (r *TitleRepository) Create(ctx context.Context, t *domain.Title) (*domain.Title, error) {
	catID, err := categoryID(t)
	if err != nil {
		return nil, err
	}
	id := uuid.New()
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO titles (id, name, year, description, category_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, t.Name, t.Year, t.Description, catID, t.CreatedAt); err != nil {
			return fmt.Errorf("insert title: %w", err)
		}
		return replaceGenres(ctx, tx, id, t.Genres)
	})
	if err != nil {
		return nil, err
	}
	out := *t
	out.ID = id.String()
	return &out, nil
}

func (r *TitleRepository) FindByID(ctx context.Context, id string) (*domain.Title, error) {
	tid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrTitleNotFound
	}
	t, err := scanTitle(r.db.QueryRow(ctx, titleSelect+` WHERE t.id = $1`, tid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTitleNotFound
		}
		return nil, fmt.Errorf("find title: %w", err)
	}
	if err := r.attachGenres(ctx, []*domain.Title{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TitleRepository) List(ctx context.Context, f ports.TitleFilter) ([]*domain.Title, int64, error) {
	w := titleFilter(f)

	var total int64
	countSQL := `SELECT COUNT(*) FROM titles t LEFT JOIN categories c ON c.id = t.category_id` + w.sql()
	if err := r.db.QueryRow(ctx, countSQL, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	where := w.sql()
	limit := w.page(f.Limit, f.Skip())
	rows, err := r.db.Query(ctx, titleSelect+where+` ORDER BY t.name, t.id`+limit, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}
	defer rows.Close()

	var out []*domain.Title
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan title: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.attachGenres(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *TitleRepository) Update(ctx context.Context, t *domain.Title) (*domain.Title, error) {
	tid, ok := parseID(t.ID)
	if !ok {
		return nil, domain.ErrTitleNotFound
	}
	catID, err := categoryID(t)
	if err != nil {
		return nil, err
	}
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE titles SET name = $2, year = $3, description = $4, category_id = $5
			WHERE id = $1`,
			tid, t.Name, t.Year, t.Description, catID)
		if err != nil {
			return fmt.Errorf("update title: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrTitleNotFound
		}
		return replaceGenres(ctx, tx, tid, t.Genres)
	})
	if err != nil {
		return nil, err
	}
	out := *t
	return &out, nil
}

// Delete removes the title; reviews and their comments follow by cascade.
func (r *TitleRepository) Delete(ctx context.Context, id string) error {
	tid, ok := parseID(id)
	if !ok {
		return domain.ErrTitleNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM titles WHERE id = $1`, tid)
	if err != nil {
		return fmt.Errorf("delete title: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTitleNotFound
	}
	return nil
}

func replaceGenres(ctx context.Context, tx pgx.Tx, titleID uuid.UUID, genres []domain.Taxon) error {
	if _, err := tx.Exec(ctx, `DELETE FROM title_genres WHERE title_id = $1`, titleID); err != nil {
		return fmt.Errorf("clear title genres: %w", err)
	}
	if len(genres) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, g := range genres {
		gid, ok := parseID(g.ID)
		if !ok {
			return domain.ErrGenreNotFound
		}
		batch.Queue(`INSERT INTO title_genres (title_id, genre_id, position) VALUES ($1, $2, $3)`, titleID, gid, i)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if code, _ := pgCode(err); code == codeForeignKeyViolation {
			return domain.ErrGenreNotFound
		}
		return fmt.Errorf("insert title genres: %w", err)
	}
	return nil
}

// attachGenres loads the genres of all titles in one query.
func (r *TitleRepository) attachGenres(ctx context.Context, titles []*domain.Title) error {
	if len(titles) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Title, len(titles))
	ids := make([]string, len(titles))
	for i, t := range titles {
		byID[t.ID] = t
		ids[i] = t.ID
	}

	rows, err := r.db.Query(ctx, `
		SELECT tg.title_id, g.id, g.name, g.slug
		FROM title_genres tg
		JOIN genres g ON g.id = tg.genre_id
		WHERE tg.title_id = ANY($1)
		ORDER BY tg.title_id, tg.position`, parseIDs(ids))
	if err != nil {
		return fmt.Errorf("load title genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			titleID, genreID uuid.UUID
			g                domain.Taxon
		)
		if err := rows.Scan(&titleID, &genreID, &g.Name, &g.Slug); err != nil {
			return fmt.Errorf("scan title genre: %w", err)
		}
		g.ID = genreID.String()
		if t, ok := byID[titleID.String()]; ok {
			t.Genres = append(t.Genres, g)
		}
	}
	return rows.Err()
}

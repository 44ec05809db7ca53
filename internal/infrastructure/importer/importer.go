// Package importer loads the legacy CSV fixtures into whichever store the
// repositories point at. Re-running an import is safe: rows that already
// exist are skipped and their store ids reused.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

// Fixture files, in load order.
const (
	FileCategories = "category.csv"
	FileGenres     = "genre.csv"
	FileUsers      = "users.csv"
	FileTitles     = "titles.csv"
	FileGenreTitle = "genre_title.csv"
	FileReviews    = "review.csv"
	FileComments   = "comments.csv"
)

type Repositories struct {
	Users      ports.UserRepository
	Categories ports.TaxonomyRepository
	Genres     ports.TaxonomyRepository
	Titles     ports.TitleRepository
	Reviews    ports.ReviewRepository
	Comments   ports.CommentRepository
}

// FileStats counts row outcomes for one file. Failed rows are malformed or
// reference rows that were never imported.
type FileStats struct {
	Inserted int
	Skipped  int
	Failed   int
}

type Report map[string]*FileStats

type outcome int

const (
	inserted outcome = iota
	skipped
)

// errBadRow marks a row-level problem that is counted and logged instead of
// aborting the import.
var errBadRow = errors.New("bad row")

func badRow(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRow, fmt.Sprintf(format, args...))
}

type rowFunc func(ctx context.Context, r record) (outcome, error)

// Importer maps source ids to store ids as it goes, so later files can
// reference rows loaded by earlier ones.
type Importer struct {
	repos Repositories
	log   zerolog.Logger
	now   func() time.Time

	categories map[string]domain.Taxon
	genres     map[string]domain.Taxon
	users      map[string]string
	titles     map[string]string
	reviews    map[string]string
}

func New(repos Repositories, log zerolog.Logger) *Importer {
	return &Importer{
		repos:      repos,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
		categories: make(map[string]domain.Taxon),
		genres:     make(map[string]domain.Taxon),
		users:      make(map[string]string),
		titles:     make(map[string]string),
		reviews:    make(map[string]string),
	}
}

// Run imports every fixture found in src. Missing files are skipped. Storage
// failures abort the run; the report covers what was processed so far.
func (im *Importer) Run(ctx context.Context, src fs.FS) (Report, error) {
	steps := []struct {
		file string
		fn   rowFunc
	}{
		{FileCategories, im.taxon(im.repos.Categories, im.categories)},
		{FileGenres, im.taxon(im.repos.Genres, im.genres)},
		{FileUsers, im.user},
		{FileTitles, im.title},
		{FileGenreTitle, im.genreTitle},
		{FileReviews, im.review},
		{FileComments, im.comment},
	}

	report := Report{}
	for _, step := range steps {
		stats := &FileStats{}
		report[step.file] = stats

		err := readRecords(src, step.file, func(r record) error {
			res, err := step.fn(ctx, r)
			switch {
			case errors.Is(err, errBadRow):
				stats.Failed++
				im.log.Warn().Str("file", step.file).Int("line", r.line).Err(err).Msg("row rejected")
				return nil
			case err != nil:
				return fmt.Errorf("%s line %d: %w", step.file, r.line, err)
			case res == skipped:
				stats.Skipped++
			default:
				stats.Inserted++
			}
			return nil
		})
		if errors.Is(err, fs.ErrNotExist) {
			im.log.Info().Str("file", step.file).Msg("fixture not found, skipping")
			continue
		}
		if err != nil {
			return report, err
		}
		im.log.Info().
			Str("file", step.file).
			Int("inserted", stats.Inserted).
			Int("skipped", stats.Skipped).
			Int("failed", stats.Failed).
			Msg("fixture imported")
	}
	return report, nil
}

func (im *Importer) taxon(repo ports.TaxonomyRepository, into map[string]domain.Taxon) rowFunc {
	return func(ctx context.Context, r record) (outcome, error) {
		t := domain.Taxon{Name: r.get("name"), Slug: r.get("slug")}
		ve := &domain.ValidationError{}
		domain.ValidateTaxon(t.Name, t.Slug, ve)
		if err := ve.OrNil(); err != nil {
			return 0, badRow("%v", err)
		}

		created, err := repo.Create(ctx, &t)
		if errors.Is(err, domain.ErrConflict) {
			existing, err := repo.FindBySlug(ctx, t.Slug)
			if err != nil {
				return 0, err
			}
			into[r.get("id")] = *existing
			return skipped, nil
		}
		if err != nil {
			return 0, err
		}
		into[r.get("id")] = *created
		return inserted, nil
	}
}

func (im *Importer) user(ctx context.Context, r record) (outcome, error) {
	u := &domain.User{
		Username:  r.get("username"),
		Email:     r.get("email"),
		Role:      domain.Role(r.get("role")),
		FirstName: r.get("first_name"),
		LastName:  r.get("last_name"),
		Bio:       r.get("bio"),
		CreatedAt: im.now(),
	}
	if u.Role == domain.RoleAnonymous {
		u.Role = domain.RoleUser
	}
	u.UpdatedAt = u.CreatedAt

	ve := &domain.ValidationError{}
	domain.ValidateUsername(u.Username, ve)
	domain.ValidateEmail(u.Email, ve)
	domain.ValidateRole(u.Role, ve)
	if err := ve.OrNil(); err != nil {
		return 0, badRow("%v", err)
	}

	created, err := im.repos.Users.Create(ctx, u)
	if errors.Is(err, domain.ErrConflict) {
		existing, ferr := im.repos.Users.FindByUsername(ctx, u.Username)
		if errors.Is(ferr, domain.ErrNotFound) {
			return 0, badRow("email %s belongs to another user", u.Email)
		}
		if ferr != nil {
			return 0, ferr
		}
		if !strings.EqualFold(existing.Email, u.Email) {
			return 0, badRow("username %s is registered with another email", u.Username)
		}
		im.users[r.get("id")] = existing.ID
		return skipped, nil
	}
	if err != nil {
		return 0, err
	}
	im.users[r.get("id")] = created.ID
	return inserted, nil
}

func (im *Importer) title(ctx context.Context, r record) (outcome, error) {
	year, err := r.atoi("year")
	if err != nil {
		return 0, err
	}
	t := &domain.Title{
		Name:        r.get("name"),
		Year:        year,
		Description: r.get("description"),
		CreatedAt:   im.now(),
	}
	ve := &domain.ValidationError{}
	domain.ValidateTitleName(t.Name, ve)
	domain.ValidateTitleYear(t.Year, im.now(), ve)
	if err := ve.OrNil(); err != nil {
		return 0, badRow("%v", err)
	}
	if ref := r.get("category"); ref != "" {
		c, ok := im.categories[ref]
		if !ok {
			return 0, badRow("unknown category %s", ref)
		}
		t.Category = &c
	}

	existing, err := im.findTitle(ctx, t.Name, t.Year)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		im.titles[r.get("id")] = existing.ID
		return skipped, nil
	}

	created, err := im.repos.Titles.Create(ctx, t)
	if err != nil {
		return 0, err
	}
	im.titles[r.get("id")] = created.ID
	return inserted, nil
}

// findTitle treats name plus year as the natural key of a title.
func (im *Importer) findTitle(ctx context.Context, name string, year int) (*domain.Title, error) {
	filter := ports.TitleFilter{Name: name, Year: year, PageRequest: ports.PageRequest{Page: 1, Limit: ports.MaxPageLimit}}
	for {
		titles, total, err := im.repos.Titles.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, t := range titles {
			if t.Name == name {
				return t, nil
			}
		}
		if int64(filter.Page*filter.Limit) >= total {
			return nil, nil
		}
		filter.Page++
	}
}

func (im *Importer) genreTitle(ctx context.Context, r record) (outcome, error) {
	titleID, ok := im.titles[r.get("title_id")]
	if !ok {
		return 0, badRow("unknown title %s", r.get("title_id"))
	}
	genre, ok := im.genres[r.get("genre_id")]
	if !ok {
		return 0, badRow("unknown genre %s", r.get("genre_id"))
	}

	t, err := im.repos.Titles.FindByID(ctx, titleID)
	if err != nil {
		return 0, err
	}
	for _, g := range t.Genres {
		if g.Slug == genre.Slug {
			return skipped, nil
		}
	}
	t.Genres = append(t.Genres, genre)
	if _, err := im.repos.Titles.Update(ctx, t); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (im *Importer) review(ctx context.Context, r record) (outcome, error) {
	titleID, ok := im.titles[r.get("title_id")]
	if !ok {
		return 0, badRow("unknown title %s", r.get("title_id"))
	}
	authorID, ok := im.users[r.get("author")]
	if !ok {
		return 0, badRow("unknown author %s", r.get("author"))
	}
	score, err := r.atoi("score")
	if err != nil {
		return 0, err
	}
	ve := &domain.ValidationError{}
	domain.ValidateScore(score, ve)
	domain.ValidateText(r.get("text"), ve)
	if err := ve.OrNil(); err != nil {
		return 0, badRow("%v", err)
	}

	created, err := im.repos.Reviews.Insert(ctx, &domain.Review{
		TitleID:   titleID,
		AuthorID:  authorID,
		Text:      r.get("text"),
		Score:     score,
		CreatedAt: im.pubDate(r),
	})
	if errors.Is(err, domain.ErrDuplicateReview) {
		existing, err := im.findReview(ctx, titleID, authorID)
		if err != nil {
			return 0, err
		}
		im.reviews[r.get("id")] = existing.ID
		return skipped, nil
	}
	if err != nil {
		return 0, err
	}
	im.reviews[r.get("id")] = created.ID
	return inserted, nil
}

func (im *Importer) findReview(ctx context.Context, titleID, authorID string) (*domain.Review, error) {
	page := ports.PageRequest{Page: 1, Limit: ports.MaxPageLimit}
	for {
		reviews, total, err := im.repos.Reviews.List(ctx, titleID, page)
		if err != nil {
			return nil, err
		}
		for _, rv := range reviews {
			if rv.AuthorID == authorID {
				return rv, nil
			}
		}
		if int64(page.Page*page.Limit) >= total {
			return nil, fmt.Errorf("review by %s on %s reported duplicate but not found", authorID, titleID)
		}
		page.Page++
	}
}

func (im *Importer) comment(ctx context.Context, r record) (outcome, error) {
	reviewID, ok := im.reviews[r.get("review_id")]
	if !ok {
		return 0, badRow("unknown review %s", r.get("review_id"))
	}
	authorID, ok := im.users[r.get("author")]
	if !ok {
		return 0, badRow("unknown author %s", r.get("author"))
	}
	text := r.get("text")
	if text == "" {
		return 0, badRow("empty comment")
	}

	// Comments have no natural key; author plus text stands in for one.
	page := ports.PageRequest{Page: 1, Limit: ports.MaxPageLimit}
	for {
		comments, total, err := im.repos.Comments.List(ctx, reviewID, page)
		if err != nil {
			return 0, err
		}
		for _, c := range comments {
			if c.AuthorID == authorID && c.Text == text {
				return skipped, nil
			}
		}
		if int64(page.Page*page.Limit) >= total {
			break
		}
		page.Page++
	}

	_, err := im.repos.Comments.Insert(ctx, &domain.Comment{
		ReviewID:  reviewID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: im.pubDate(r),
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (im *Importer) pubDate(r record) time.Time {
	if ts, err := time.Parse(time.RFC3339Nano, r.get("pub_date")); err == nil {
		return ts.UTC()
	}
	return im.now()
}

// record is one CSV row addressed by header name.
type record struct {
	line int
	cols map[string]int
	vals []string
}

func (r record) get(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.vals) {
		return ""
	}
	return strings.TrimSpace(r.vals[i])
}

func (r record) atoi(name string) (int, error) {
	n, err := strconv.Atoi(r.get(name))
	if err != nil {
		return 0, badRow("%s: %q is not a number", name, r.get(name))
	}
	return n, nil
}

func readRecords(src fs.FS, name string, fn func(record) error) error {
	f, err := src.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: read header: %w", name, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	for line := 2; ; line++ {
		vals, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s line %d: %w", name, line, err)
		}
		if err := fn(record{line: line, cols: cols, vals: vals}); err != nil {
			return err
		}
	}
}

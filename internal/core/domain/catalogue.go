package domain

import (
	"regexp"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleNameLen = 256
	MaxTaxonNameLen = 256
	MaxSlugLen      = 50
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// TaxonKind tells categories and genres apart. Both share the same shape.
type TaxonKind string

const (
	KindCategory TaxonKind = "category"
	KindGenre    TaxonKind = "genre"
)

// NotFoundErr returns the not-found error for a taxon of this kind.
func (k TaxonKind) NotFoundErr() error {
	if k == KindGenre {
		return ErrGenreNotFound
	}
	return ErrCategoryNotFound
}

// Taxon is a category or genre.
type Taxon struct {
	ID   string `json:"-"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Title is a catalogue item. Rating is derived and nil when the title has no
// reviews.
type Title struct {
	ID          string
	Name        string
	Year        int
	Description string
	Category    *Taxon
	Genres      []Taxon
	Rating      *float64
	CreatedAt   time.Time
}

// CategorySlug returns the slug of the category or "" when unset.
func (t *Title) CategorySlug() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Slug
}

// GenreSlugs returns the slugs of all genres in order.
func (t *Title) GenreSlugs() []string {
	out := make([]string, len(t.Genres))
	for i, g := range t.Genres {
		out[i] = g.Slug
	}
	return out
}

func ValidateTaxon(name, slug string, ve *ValidationError) {
	switch {
	case name == "":
		ve.Add("name", "this field is required")
	case utf8.RuneCountInString(name) > MaxTaxonNameLen:
		ve.Add("name", "ensure this field has no more than 256 characters")
	}
	ValidateSlug("slug", slug, ve)
}

func ValidateSlug(field, slug string, ve *ValidationError) {
	switch {
	case slug == "":
		ve.Add(field, "this field is required")
	case len(slug) > MaxSlugLen:
		ve.Add(field, "ensure this field has no more than 50 characters")
	case !slugPattern.MatchString(slug):
		ve.Add(field, "enter a valid slug consisting of letters, numbers, underscores or hyphens")
	}
}

// ValidateTitleName checks the required name field of a title.
func ValidateTitleName(name string, ve *ValidationError) {
	switch {
	case name == "":
		ve.Add("name", "this field is required")
	case utf8.RuneCountInString(name) > MaxTitleNameLen:
		ve.Add("name", "ensure this field has no more than 256 characters")
	}
}

// ValidateTitleYear rejects titles that have not been released yet.
func ValidateTitleYear(year int, now time.Time, ve *ValidationError) {
	if year > now.Year() {
		ve.Add("year", "year cannot be in the future")
	}
}

package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

var discardLogger = zerolog.Nop()

var (
	anonymous = domain.Principal{}
	alice     = domain.Principal{UserID: "u-alice", Role: domain.RoleUser}
	bob       = domain.Principal{UserID: "u-bob", Role: domain.RoleUser}
	moderator = domain.Principal{UserID: "u-mod", Role: domain.RoleModerator}
	admin     = domain.Principal{UserID: "u-admin", Role: domain.RoleAdmin}
)

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) seed(id, username, email string, role domain.Role) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := &domain.User{ID: id, Username: username, Email: email, Role: role}
	r.byID[id] = u
	return cloneUser(u)
}

func (r *stubUserRepo) conflict(u *domain.User) error {
	for id, other := range r.byID {
		if id == u.ID {
			continue
		}
		if other.Username == u.Username {
			return domain.ErrUsernameTaken
		}
		if other.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	return nil
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.conflict(u); err != nil {
		return nil, err
	}
	r.nextID++
	stored := cloneUser(u)
	stored.ID = fmt.Sprintf("u-%d", r.nextID)
	r.byID[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context, f ports.UserFilter) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.byID {
		if f.Search != "" && !strings.Contains(strings.ToLower(u.Username), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, int64(len(out)), nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	if err := r.conflict(u); err != nil {
		return nil, err
	}
	r.byID[u.ID] = cloneUser(u)
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubUserRepo) SetConfirmationHash(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ConfirmationHash = hash
	return nil
}

// ---------------------------------------------------------------------------
// Notifier
// ---------------------------------------------------------------------------

type sentMessage struct {
	To, Subject, Body string
}

type stubNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *stubNotifier) Send(_ context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{To: to, Subject: subject, Body: body})
	return n.err
}

// ---------------------------------------------------------------------------
// Taxonomy
// ---------------------------------------------------------------------------

type stubTaxonomyRepo struct {
	kind   domain.TaxonKind
	bySlug map[string]domain.Taxon
}

func newStubTaxonomyRepo(kind domain.TaxonKind, taxa ...domain.Taxon) *stubTaxonomyRepo {
	r := &stubTaxonomyRepo{kind: kind, bySlug: make(map[string]domain.Taxon)}
	for _, t := range taxa {
		r.bySlug[t.Slug] = t
	}
	return r
}

func (r *stubTaxonomyRepo) Create(_ context.Context, t *domain.Taxon) (*domain.Taxon, error) {
	if _, ok := r.bySlug[t.Slug]; ok {
		return nil, domain.ErrSlugTaken
	}
	stored := *t
	stored.ID = string(r.kind) + "-" + t.Slug
	r.bySlug[t.Slug] = stored
	return &stored, nil
}

func (r *stubTaxonomyRepo) FindBySlug(_ context.Context, slug string) (*domain.Taxon, error) {
	t, ok := r.bySlug[slug]
	if !ok {
		return nil, r.kind.NotFoundErr()
	}
	return &t, nil
}

func (r *stubTaxonomyRepo) FindBySlugs(_ context.Context, slugs []string) ([]domain.Taxon, error) {
	var out []domain.Taxon
	for _, s := range slugs {
		if t, ok := r.bySlug[s]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *stubTaxonomyRepo) List(_ context.Context, f ports.TaxonFilter) ([]domain.Taxon, int64, error) {
	var out []domain.Taxon
	for _, t := range r.bySlug {
		if f.Search != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (r *stubTaxonomyRepo) Delete(_ context.Context, slug string) error {
	if _, ok := r.bySlug[slug]; !ok {
		return r.kind.NotFoundErr()
	}
	delete(r.bySlug, slug)
	return nil
}

// ---------------------------------------------------------------------------
// Titles
// ---------------------------------------------------------------------------

type stubTitleRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Title
	nextID int
}

func newStubTitleRepo() *stubTitleRepo {
	return &stubTitleRepo{byID: make(map[string]*domain.Title)}
}

func cloneTitle(t *domain.Title) *domain.Title {
	clone := *t
	clone.Genres = append([]domain.Taxon(nil), t.Genres...)
	return &clone
}

func (r *stubTitleRepo) seed(id, name string, year int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id] = &domain.Title{ID: id, Name: name, Year: year}
}

func (r *stubTitleRepo) Create(_ context.Context, t *domain.Title) (*domain.Title, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := cloneTitle(t)
	stored.ID = fmt.Sprintf("t-%d", r.nextID)
	r.byID[stored.ID] = stored
	return cloneTitle(stored), nil
}

func (r *stubTitleRepo) FindByID(_ context.Context, id string) (*domain.Title, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTitleNotFound
	}
	return cloneTitle(t), nil
}

func (r *stubTitleRepo) List(_ context.Context, f ports.TitleFilter) ([]*domain.Title, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Title
	for _, t := range r.byID {
		if f.Year != 0 && t.Year != f.Year {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Category != "" && t.CategorySlug() != f.Category {
			continue
		}
		out = append(out, cloneTitle(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubTitleRepo) Update(_ context.Context, t *domain.Title) (*domain.Title, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[t.ID]; !ok {
		return nil, domain.ErrTitleNotFound
	}
	r.byID[t.ID] = cloneTitle(t)
	return cloneTitle(t), nil
}

func (r *stubTitleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrTitleNotFound
	}
	delete(r.byID, id)
	return nil
}

// ---------------------------------------------------------------------------
// Reviews: the mutex makes Insert atomic the way a unique index does.
// ---------------------------------------------------------------------------

type stubReviewRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Review
	nextID int
	// statsCalls counts ScoreStats invocations.
	statsCalls int
	// afterStats runs once the scores are read, outside the lock.
	afterStats func()
}

func newStubReviewRepo() *stubReviewRepo {
	return &stubReviewRepo{byID: make(map[string]*domain.Review)}
}

func (r *stubReviewRepo) Insert(_ context.Context, rv *domain.Review) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.AuthorID == rv.AuthorID && existing.TitleID == rv.TitleID {
			return nil, domain.ErrDuplicateReview
		}
	}
	r.nextID++
	stored := *rv
	stored.ID = fmt.Sprintf("r-%d", r.nextID)
	r.byID[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubReviewRepo) FindByID(_ context.Context, titleID, reviewID string) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.byID[reviewID]
	if !ok || rv.TitleID != titleID {
		return nil, domain.ErrReviewNotFound
	}
	out := *rv
	return &out, nil
}

func (r *stubReviewRepo) List(_ context.Context, titleID string, _ ports.PageRequest) ([]*domain.Review, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Review
	for _, rv := range r.byID {
		if rv.TitleID == titleID {
			c := *rv
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubReviewRepo) Update(_ context.Context, rv *domain.Review) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[rv.ID]; !ok {
		return nil, domain.ErrReviewNotFound
	}
	stored := *rv
	r.byID[rv.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubReviewRepo) Delete(_ context.Context, titleID, reviewID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.byID[reviewID]
	if !ok || rv.TitleID != titleID {
		return domain.ErrReviewNotFound
	}
	delete(r.byID, reviewID)
	return nil
}

func (r *stubReviewRepo) ScoreStats(_ context.Context, titleIDs []string) (map[string]ports.ScoreStats, error) {
	r.mu.Lock()
	r.statsCalls++
	want := make(map[string]bool, len(titleIDs))
	for _, id := range titleIDs {
		want[id] = true
	}
	out := make(map[string]ports.ScoreStats)
	for _, rv := range r.byID {
		if !want[rv.TitleID] {
			continue
		}
		st := out[rv.TitleID]
		st.Count++
		st.Sum += int64(rv.Score)
		out[rv.TitleID] = st
	}
	hook := r.afterStats
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Comments
// ---------------------------------------------------------------------------

type stubCommentRepo struct {
	byID   map[string]*domain.Comment
	nextID int
}

func newStubCommentRepo() *stubCommentRepo {
	return &stubCommentRepo{byID: make(map[string]*domain.Comment)}
}

func (r *stubCommentRepo) Insert(_ context.Context, c *domain.Comment) (*domain.Comment, error) {
	r.nextID++
	stored := *c
	stored.ID = fmt.Sprintf("c-%d", r.nextID)
	r.byID[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubCommentRepo) FindByID(_ context.Context, reviewID, commentID string) (*domain.Comment, error) {
	c, ok := r.byID[commentID]
	if !ok || c.ReviewID != reviewID {
		return nil, domain.ErrCommentNotFound
	}
	out := *c
	return &out, nil
}

func (r *stubCommentRepo) List(_ context.Context, reviewID string, _ ports.PageRequest) ([]*domain.Comment, int64, error) {
	var out []*domain.Comment
	for _, c := range r.byID {
		if c.ReviewID == reviewID {
			cc := *c
			out = append(out, &cc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubCommentRepo) Update(_ context.Context, c *domain.Comment) (*domain.Comment, error) {
	if _, ok := r.byID[c.ID]; !ok {
		return nil, domain.ErrCommentNotFound
	}
	stored := *c
	r.byID[c.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubCommentRepo) Delete(_ context.Context, reviewID, commentID string) error {
	c, ok := r.byID[commentID]
	if !ok || c.ReviewID != reviewID {
		return domain.ErrCommentNotFound
	}
	delete(r.byID, commentID)
	return nil
}

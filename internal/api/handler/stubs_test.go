package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

// newContext builds an echo context with the validator installed, the way the
// router configures it.
func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

type stubConfirmations struct {
	fn func(ctx context.Context, username, email string) (*ports.SignupResult, error)
}

func (s *stubConfirmations) RequestConfirmation(ctx context.Context, username, email string) (*ports.SignupResult, error) {
	return s.fn(ctx, username, email)
}

type stubTokens struct {
	exchangeFn func(ctx context.Context, username, code string) (string, error)
}

func (s *stubTokens) Exchange(ctx context.Context, username, code string) (string, error) {
	return s.exchangeFn(ctx, username, code)
}

func (s *stubTokens) Verify(string) (domain.Principal, error) {
	return domain.Principal{}, domain.ErrInvalidCredential
}

type stubUsers struct {
	ports.UserService
	updateMeFn func(ctx context.Context, caller domain.Principal, patch ports.UserPatch) (*domain.User, error)
	listFn     func(ctx context.Context, caller domain.Principal, filter ports.UserFilter) (ports.Page[*domain.User], error)
}

func (s *stubUsers) UpdateMe(ctx context.Context, caller domain.Principal, patch ports.UserPatch) (*domain.User, error) {
	return s.updateMeFn(ctx, caller, patch)
}

func (s *stubUsers) List(ctx context.Context, caller domain.Principal, filter ports.UserFilter) (ports.Page[*domain.User], error) {
	return s.listFn(ctx, caller, filter)
}

type stubTitles struct {
	ports.TitleService
	listFn func(ctx context.Context, filter ports.TitleFilter) (ports.Page[*domain.Title], error)
	getFn  func(ctx context.Context, id string) (*domain.Title, error)
}

func (s *stubTitles) List(ctx context.Context, filter ports.TitleFilter) (ports.Page[*domain.Title], error) {
	return s.listFn(ctx, filter)
}

func (s *stubTitles) Get(ctx context.Context, id string) (*domain.Title, error) {
	return s.getFn(ctx, id)
}

type stubReviews struct {
	ports.ReviewService
	submitFn func(ctx context.Context, caller domain.Principal, titleID, text string, score int) (*domain.Review, error)
}

func (s *stubReviews) SubmitReview(ctx context.Context, caller domain.Principal, titleID, text string, score int) (*domain.Review, error) {
	return s.submitFn(ctx, caller, titleID, text, score)
}

type stubTaxa struct {
	ports.TaxonomyService
	createFn func(ctx context.Context, caller domain.Principal, name, slug string) (*domain.Taxon, error)
}

func (s *stubTaxa) Create(ctx context.Context, caller domain.Principal, name, slug string) (*domain.Taxon, error) {
	return s.createFn(ctx, caller, name, slug)
}

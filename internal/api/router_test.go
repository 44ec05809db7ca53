package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

var principals = map[string]domain.Principal{
	"user-token":  {UserID: "u-1", Role: domain.RoleUser},
	"admin-token": {UserID: "u-2", Role: domain.RoleAdmin},
}

type fakeTokens struct{}

func (fakeTokens) Exchange(_ context.Context, username, code string) (string, error) {
	if code != "good" {
		return "", domain.ErrInvalidCredential
	}
	return username + "-token", nil
}

func (fakeTokens) Verify(token string) (domain.Principal, error) {
	p, ok := principals[token]
	if !ok {
		return domain.Principal{}, domain.ErrInvalidCredential
	}
	return p, nil
}

type fakeConfirmations struct{}

func (fakeConfirmations) RequestConfirmation(_ context.Context, username, email string) (*ports.SignupResult, error) {
	return &ports.SignupResult{Username: username, Email: email}, nil
}

type fakeUsers struct{ ports.UserService }

func (fakeUsers) List(context.Context, domain.Principal, ports.UserFilter) (ports.Page[*domain.User], error) {
	return ports.NewPage[*domain.User](nil, 0, ports.PageRequest{Page: 1, Limit: 20}), nil
}

type fakeTitles struct{ ports.TitleService }

func (fakeTitles) List(context.Context, ports.TitleFilter) (ports.Page[*domain.Title], error) {
	return ports.NewPage([]*domain.Title{{ID: "t-1", Name: "Heat", Year: 1995}}, 1, ports.PageRequest{Page: 1, Limit: 20}), nil
}

func (fakeTitles) Get(_ context.Context, id string) (*domain.Title, error) {
	if id == "broken" {
		return nil, errors.New("connection reset by peer")
	}
	return nil, domain.ErrTitleNotFound
}

func (fakeTitles) Create(_ context.Context, _ domain.Principal, in ports.TitleInput) (*domain.Title, error) {
	return &domain.Title{ID: "t-2", Name: in.Name, Year: in.Year}, nil
}

type fakeReviews struct{ ports.ReviewService }

func (fakeReviews) SubmitReview(_ context.Context, caller domain.Principal, titleID, text string, score int) (*domain.Review, error) {
	if err := domain.Authorize(caller, true, http.MethodPost, domain.ResourceReview); err != nil {
		return nil, err
	}
	switch titleID {
	case "missing":
		return nil, domain.ErrTitleNotFound
	case "reviewed":
		return nil, domain.ErrDuplicateReview
	}
	return &domain.Review{ID: "r-1", TitleID: titleID, Author: "neo", Text: text, Score: score}, nil
}

func newTestRouter(opts Options) *echo.Echo {
	reg := prometheus.NewRegistry()
	opts.Registerer, opts.Gatherer = reg, reg
	return NewRouter(Services{
		Confirmations: fakeConfirmations{},
		Tokens:        fakeTokens{},
		Users:         fakeUsers{},
		Titles:        fakeTitles{},
		Reviews:       fakeReviews{},
	}, opts, zerolog.Nop())
}

func do(e *echo.Echo, method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestRouter_Status(t *testing.T) {
	e := newTestRouter(Options{})

	tests := []struct {
		name   string
		method string
		target string
		token  string
		body   string
		want   int
	}{
		{"liveness", http.MethodGet, "/health", "", "", http.StatusOK},
		{"readiness without deps", http.MethodGet, "/health/ready", "", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", "", http.StatusOK},
		{"titles list", http.MethodGet, "/api/v1/titles", "", "", http.StatusOK},
		{"titles list trailing slash", http.MethodGet, "/api/v1/titles/", "", "", http.StatusOK},
		{"unknown title", http.MethodGet, "/api/v1/titles/nope/", "", "", http.StatusNotFound},
		{"anonymous creates title", http.MethodPost, "/api/v1/titles/", "", `{"name":"Heat","year":1995}`, http.StatusUnauthorized},
		{"user creates title", http.MethodPost, "/api/v1/titles/", "user-token", `{"name":"Heat","year":1995}`, http.StatusForbidden},
		{"admin creates title", http.MethodPost, "/api/v1/titles/", "admin-token", `{"name":"Heat","year":1995}`, http.StatusCreated},
		{"user lists users", http.MethodGet, "/api/v1/users/", "user-token", "", http.StatusForbidden},
		{"anonymous lists users", http.MethodGet, "/api/v1/users/", "", "", http.StatusUnauthorized},
		{"admin lists users", http.MethodGet, "/api/v1/users/", "admin-token", "", http.StatusOK},
		{"invalid token", http.MethodGet, "/api/v1/titles/", "forged", "", http.StatusUnauthorized},
		{"anonymous reviews", http.MethodPost, "/api/v1/titles/t-1/reviews/", "", `{"text":"x","score":5}`, http.StatusUnauthorized},
		{"review of unknown title", http.MethodPost, "/api/v1/titles/missing/reviews/", "user-token", `{"text":"x","score":5}`, http.StatusNotFound},
		{"review", http.MethodPost, "/api/v1/titles/t-1/reviews/", "user-token", `{"text":"x","score":5}`, http.StatusCreated},
		{"signup", http.MethodPost, "/api/v1/auth/signup/", "", `{"username":"neo","email":"neo@matrix.io"}`, http.StatusOK},
		{"token exchange", http.MethodPost, "/api/v1/auth/token/", "", `{"username":"user","confirmation_code":"good"}`, http.StatusOK},
		{"malformed json", http.MethodPost, "/api/v1/auth/signup/", "", `{"username":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, tt.method, tt.target, tt.token, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouter_DuplicateReviewIsValidationError(t *testing.T) {
	e := newTestRouter(Options{})

	rec := do(e, http.MethodPost, "/api/v1/titles/reviewed/reviews", "user-token", `{"text":"again","score":7}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); !strings.Contains(resp.Error, "duplicate review") {
		t.Fatalf("unexpected error message: %q", resp.Error)
	}
}

func TestRouter_InvalidConfirmationCode(t *testing.T) {
	e := newTestRouter(Options{})

	rec := do(e, http.MethodPost, "/api/v1/auth/token", "", `{"username":"neo","confirmation_code":"wrong"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec.Body.String() == "" || strings.Contains(rec.Body.String(), "token") {
		t.Fatalf("no credential may be returned: %s", rec.Body.String())
	}
}

func TestRouter_ValidationFields(t *testing.T) {
	e := newTestRouter(Options{})

	rec := do(e, http.MethodPost, "/api/v1/auth/signup", "", `{"username":"bad name","email":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if len(resp.Fields["username"]) == 0 || len(resp.Fields["email"]) == 0 {
		t.Fatalf("expected field errors, got %+v", resp)
	}
}

func TestRouter_UnexpectedErrorIsNotLeaked(t *testing.T) {
	e := newTestRouter(Options{})

	rec := do(e, http.MethodGet, "/api/v1/titles/broken", "", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != "internal server error" {
		t.Fatalf("cause leaked to client: %q", resp.Error)
	}
}

func TestRouter_AuthRateLimit(t *testing.T) {
	e := newTestRouter(Options{AuthRPS: 0.001, AuthBurst: 1})
	body := `{"username":"neo","email":"neo@matrix.io"}`

	if rec := do(e, http.MethodPost, "/api/v1/auth/signup", "", body); rec.Code != http.StatusOK {
		t.Fatalf("first signup: expected 200, got %d", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/api/v1/auth/signup", "", body); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second signup: expected 429, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/api/v1/titles", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("catalogue reads are not throttled, got %d", rec.Code)
	}
}

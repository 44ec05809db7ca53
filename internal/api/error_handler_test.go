package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/yamdb/catalogue-api/internal/api/middleware"
	"github.com/yamdb/catalogue-api/internal/core/domain"
)

func TestResolveError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		bearer bool
		want   int
	}{
		{"field validation", domain.NewValidationError("score", "out of range"), false, http.StatusBadRequest},
		{"duplicate review", domain.ErrDuplicateReview, false, http.StatusBadRequest},
		{"invalid credential", domain.ErrInvalidCredential, false, http.StatusBadRequest},
		{"not found", fmt.Errorf("lookup: %w", domain.ErrReviewNotFound), false, http.StatusNotFound},
		{"conflict", domain.ErrUsernameTaken, false, http.StatusConflict},
		{"denied anonymous", domain.ErrAuthorizationDenied, false, http.StatusUnauthorized},
		{"denied authenticated", domain.ErrAuthorizationDenied, true, http.StatusForbidden},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), false, http.StatusMethodNotAllowed},
		{"unexpected", errors.New("disk on fire"), false, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.bearer {
				req.Header.Set(echo.HeaderAuthorization, "Bearer user-token")
			}
			c := e.NewContext(req, httptest.NewRecorder())
			_ = middleware.Auth(fakeTokens{})(func(echo.Context) error { return nil })(c)

			code, resp := resolveError(tt.err, zerolog.Nop(), c)
			if code != tt.want {
				t.Fatalf("expected %d, got %d (%+v)", tt.want, code, resp)
			}
		})
	}
}

func TestErrorHandler_RendersFields(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	ve := domain.NewValidationError("year", "year cannot be in the future")
	NewHTTPErrorHandler(zerolog.Nop())(ve, c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	want := `{"error":"validation failed","fields":{"year":["year cannot be in the future"]}}`
	if got := rec.Body.String(); got != want+"\n" {
		t.Fatalf("unexpected body:\n got %s\nwant %s", got, want)
	}
}

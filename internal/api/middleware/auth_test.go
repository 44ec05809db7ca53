package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/catalogue-api/internal/core/domain"
)

type stubVerifier struct {
	tokens map[string]domain.Principal
}

func (s stubVerifier) Verify(token string) (domain.Principal, error) {
	p, ok := s.tokens[token]
	if !ok {
		return domain.Principal{}, errors.New("bad token")
	}
	return p, nil
}

var verifier = stubVerifier{tokens: map[string]domain.Principal{
	"good": {UserID: "u-1", Role: domain.RoleModerator},
}}

func runAuth(t *testing.T, header string) (domain.Principal, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var got domain.Principal
	called := false
	err := Auth(verifier)(func(c echo.Context) error {
		called = true
		got = Principal(c)
		return nil
	})(c)
	return got, called, err
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	p, called, err := runAuth(t, "Bearer good")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if p.UserID != "u-1" || p.Role != domain.RoleModerator {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestAuthMiddleware_MissingHeaderIsAnonymous(t *testing.T) {
	p, called, err := runAuth(t, "")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if p.Authenticated() {
		t.Fatalf("expected anonymous principal, got %+v", p)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	for _, header := range []string{"Bearer bad", "Basic good", "Bearer", "good"} {
		_, called, err := runAuth(t, header)
		if called {
			t.Fatalf("%q: next should not be called", header)
		}
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401 error, got %v", header, err)
		}
	}
}

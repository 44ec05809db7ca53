package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

func TestAuthHandler_Signup_Success(t *testing.T) {
	stub := &stubConfirmations{fn: func(_ context.Context, username, email string) (*ports.SignupResult, error) {
		if username != "neo" || email != "neo@matrix.io" {
			t.Fatalf("unexpected args: %s %s", username, email)
		}
		return &ports.SignupResult{Username: username, Email: email}, nil
	}}
	h := NewAuthHandler(stub, nil)

	c, rec := newContext(http.MethodPost, "/api/v1/auth/signup", `{"username":"neo","email":"neo@matrix.io"}`)
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp signupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Username != "neo" || resp.Email != "neo@matrix.io" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Signup_ValidatesBeforeService(t *testing.T) {
	h := NewAuthHandler(&stubConfirmations{fn: func(context.Context, string, string) (*ports.SignupResult, error) {
		t.Fatalf("service must not be called")
		return nil, nil
	}}, nil)

	c, _ := newContext(http.MethodPost, "/api/v1/auth/signup", `{"username":"me","email":"not-an-email"}`)
	err := h.Signup(c)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Fields["username"]) == 0 || len(ve.Fields["email"]) == 0 {
		t.Fatalf("expected username and email errors, got %+v", ve.Fields)
	}
	if ve.Fields["username"][0] != `username "me" is reserved` {
		t.Fatalf("unexpected username message: %q", ve.Fields["username"][0])
	}
}

func TestAuthHandler_Signup_Conflict(t *testing.T) {
	h := NewAuthHandler(&stubConfirmations{fn: func(context.Context, string, string) (*ports.SignupResult, error) {
		return nil, domain.ErrEmailTaken
	}}, nil)

	c, _ := newContext(http.MethodPost, "/api/v1/auth/signup", `{"username":"neo","email":"taken@matrix.io"}`)
	if err := h.Signup(c); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAuthHandler_Token(t *testing.T) {
	h := NewAuthHandler(nil, &stubTokens{exchangeFn: func(_ context.Context, username, code string) (string, error) {
		if code != "c0de" {
			return "", domain.ErrInvalidCredential
		}
		return "jwt-for-" + username, nil
	}})

	c, rec := newContext(http.MethodPost, "/api/v1/auth/token", `{"username":"neo","confirmation_code":"c0de"}`)
	if err := h.Token(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp tokenResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Token != "jwt-for-neo" {
		t.Fatalf("unexpected token: %q", resp.Token)
	}

	c, _ = newContext(http.MethodPost, "/api/v1/auth/token", `{"username":"neo","confirmation_code":"nope"}`)
	if err := h.Token(c); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected invalid credential, got %v", err)
	}
}

func TestAuthHandler_Token_MissingFields(t *testing.T) {
	h := NewAuthHandler(nil, &stubTokens{})

	c, _ := newContext(http.MethodPost, "/api/v1/auth/token", `{}`)
	var ve *domain.ValidationError
	if err := h.Token(c); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := ve.Fields["confirmation_code"]; !ok {
		t.Fatalf("expected confirmation_code error, got %+v", ve.Fields)
	}
}

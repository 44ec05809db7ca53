package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/yamdb/catalogue-api/internal/api/middleware"
	"github.com/yamdb/catalogue-api/internal/core/domain"
)

func TestReviewHandler_Create(t *testing.T) {
	pub := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h := NewReviewHandler(&stubReviews{submitFn: func(_ context.Context, caller domain.Principal, titleID, text string, score int) (*domain.Review, error) {
		if caller.UserID != "u-1" || titleID != "t-1" {
			t.Fatalf("unexpected args: %+v %s", caller, titleID)
		}
		if score > domain.MaxScore {
			return nil, domain.NewValidationError("score", "score must be between 1 and 10")
		}
		return &domain.Review{ID: "r-1", TitleID: titleID, Author: "neo", Text: text, Score: score, CreatedAt: pub}, nil
	}})

	verifier := middleware.Auth(fixedVerifier{domain.Principal{UserID: "u-1", Role: domain.RoleUser}})
	call := func(body string) (*reviewResponse, error) {
		c, rec := newContext(http.MethodPost, "/", body)
		c.Request().Header.Set("Authorization", "Bearer any")
		c.SetParamNames("title_id")
		c.SetParamValues("t-1")
		if err := verifier(h.Create)(c); err != nil {
			return nil, err
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		var resp reviewResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		return &resp, nil
	}

	resp, err := call(`{"text":"great","score":9}`)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp.Author != "neo" || resp.Score != 9 || !resp.PubDate.Equal(pub) {
		t.Fatalf("unexpected payload: %+v", resp)
	}

	if _, err := call(`{"text":"great","score":11}`); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type fixedVerifier struct{ p domain.Principal }

func (v fixedVerifier) Verify(string) (domain.Principal, error) { return v.p, nil }

package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/yamdb/catalogue-api/internal/core/domain"
)

func TestTaxonomyHandler_Create(t *testing.T) {
	h := NewTaxonomyHandler(&stubTaxa{createFn: func(_ context.Context, _ domain.Principal, name, slug string) (*domain.Taxon, error) {
		if slug == "drama" {
			return nil, domain.ErrSlugTaken
		}
		return &domain.Taxon{Name: name, Slug: slug}, nil
	}})

	c, rec := newContext(http.MethodPost, "/api/v1/genres", `{"name":"Noir","slug":"noir"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	c, _ = newContext(http.MethodPost, "/api/v1/genres", `{"name":"Drama","slug":"drama"}`)
	if err := h.Create(c); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

func TestTitleHandler_List_Filters(t *testing.T) {
	var got ports.TitleFilter
	h := NewTitleHandler(&stubTitles{listFn: func(_ context.Context, f ports.TitleFilter) (ports.Page[*domain.Title], error) {
		got = f
		return ports.NewPage[*domain.Title](nil, 0, ports.PageRequest{Page: 1, Limit: 20}), nil
	}})

	c, rec := newContext(http.MethodGet, "/api/v1/titles?category=movie&genre=drama&name=god&year=1972", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	want := ports.TitleFilter{Category: "movie", Genre: "drama", Name: "god", Year: 1972}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if !strings.Contains(rec.Body.String(), `"results":[]`) {
		t.Fatalf("empty listing should render an empty array: %s", rec.Body.String())
	}
}

func TestTitleHandler_List_BadYear(t *testing.T) {
	h := NewTitleHandler(&stubTitles{})

	c, _ := newContext(http.MethodGet, "/api/v1/titles?year=last", "")
	var ve *domain.ValidationError
	if err := h.List(c); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := ve.Fields["year"]; !ok {
		t.Fatalf("expected year error, got %+v", ve.Fields)
	}
}

func TestTitleHandler_Get_Rendering(t *testing.T) {
	rating := 7.5
	titles := map[string]*domain.Title{
		"rated": {
			ID: "rated", Name: "Heat", Year: 1995, Rating: &rating,
			Category: &domain.Taxon{Name: "Movie", Slug: "movie"},
			Genres:   []domain.Taxon{{Name: "Crime", Slug: "crime"}},
		},
		"fresh": {ID: "fresh", Name: "Unseen", Year: 2020},
	}
	h := NewTitleHandler(&stubTitles{getFn: func(_ context.Context, id string) (*domain.Title, error) {
		if t, ok := titles[id]; ok {
			return t, nil
		}
		return nil, domain.ErrTitleNotFound
	}})

	c, rec := newContext(http.MethodGet, "/", "")
	c.SetParamNames("title_id")
	c.SetParamValues("rated")
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp titleResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Rating == nil || *resp.Rating != 7.5 || resp.Category.Slug != "movie" || resp.Genres[0].Slug != "crime" {
		t.Fatalf("unexpected payload: %s", rec.Body.String())
	}

	c, rec = newContext(http.MethodGet, "/", "")
	c.SetParamNames("title_id")
	c.SetParamValues("fresh")
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"rating":null`) || !strings.Contains(body, `"category":null`) || !strings.Contains(body, `"genre":[]`) {
		t.Fatalf("unrated title should render null rating and category: %s", body)
	}

	c, _ = newContext(http.MethodGet, "/", "")
	c.SetParamNames("title_id")
	c.SetParamValues("missing")
	if err := h.Get(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

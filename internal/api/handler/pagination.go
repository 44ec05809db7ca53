package handler

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

// pageResponse is the envelope of every listing.
type pageResponse[T any] struct {
	Count      int64 `json:"count"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
	Results    []T   `json:"results"`
}

func toPageResponse[S, T any](p ports.Page[S], conv func(S) T) pageResponse[T] {
	out := make([]T, len(p.Items))
	for i, item := range p.Items {
		out[i] = conv(item)
	}
	return pageResponse[T]{
		Count:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
		Results:    out,
	}
}

// bindPage reads ?page= and ?limit=. Services clamp the values.
func bindPage(c echo.Context) (ports.PageRequest, error) {
	var p ports.PageRequest
	err := echo.QueryParamsBinder(c).
		Int("page", &p.Page).
		Int("limit", &p.Limit).
		BindError()
	return p, queryError(err)
}

// queryError reports a malformed query parameter as a field error.
func queryError(err error) error {
	if err == nil {
		return nil
	}
	var be *echo.BindingError
	if errors.As(err, &be) {
		return domain.NewValidationError(be.Field, "enter a whole number")
	}
	return err
}

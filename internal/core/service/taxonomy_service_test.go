package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

func TestTaxonomyService(t *testing.T) {
	repo := newStubTaxonomyRepo(domain.KindGenre)
	svc := NewTaxonomyService(domain.KindGenre, repo, discardLogger)
	ctx := context.Background()

	_, err := svc.Create(ctx, moderator, "Drama", "drama")
	assert.ErrorIs(t, err, domain.ErrAuthorizationDenied)

	_, err = svc.Create(ctx, admin, "Drama", "not a slug")
	assert.ErrorIs(t, err, domain.ErrValidation)

	created, err := svc.Create(ctx, admin, "Drama", "drama")
	require.NoError(t, err)
	assert.Equal(t, "drama", created.Slug)

	_, err = svc.Create(ctx, admin, "Drama again", "drama")
	assert.ErrorIs(t, err, domain.ErrConflict)

	page, err := svc.List(ctx, ports.TaxonFilter{Search: "dra"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, ports.DefaultPageLimit, page.Limit)

	require.NoError(t, svc.Delete(ctx, admin, "drama"))
	assert.ErrorIs(t, svc.Delete(ctx, admin, "drama"), domain.ErrGenreNotFound)
}

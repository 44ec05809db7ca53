package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

func TestComments(t *testing.T) {
	_, _, reviews := newReviewFixture()
	svc := NewCommentService(reviews, newStubCommentRepo(), discardLogger)
	ctx := context.Background()

	rv, err := reviews.SubmitReview(ctx, alice, "t-1", "classic", 9)
	require.NoError(t, err)

	t.Run("anonymous cannot comment", func(t *testing.T) {
		_, err := svc.Create(ctx, anonymous, "t-1", rv.ID, "hi")
		assert.ErrorIs(t, err, domain.ErrAuthorizationDenied)
	})

	t.Run("review must belong to title", func(t *testing.T) {
		_, err := svc.Create(ctx, bob, "t-404", rv.ID, "hi")
		assert.ErrorIs(t, err, domain.ErrTitleNotFound)

		_, err = svc.Create(ctx, bob, "t-1", "r-404", "hi")
		assert.ErrorIs(t, err, domain.ErrReviewNotFound)
	})

	t.Run("empty text", func(t *testing.T) {
		_, err := svc.Create(ctx, bob, "t-1", rv.ID, "")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	c, err := svc.Create(ctx, bob, "t-1", rv.ID, "agreed")
	require.NoError(t, err)
	assert.Equal(t, bob.UserID, c.AuthorID)

	t.Run("only author or staff may edit", func(t *testing.T) {
		_, err := svc.Update(ctx, alice, "t-1", rv.ID, c.ID, "hijack")
		assert.ErrorIs(t, err, domain.ErrAuthorizationDenied)

		got, err := svc.Update(ctx, bob, "t-1", rv.ID, c.ID, "strongly agreed")
		require.NoError(t, err)
		assert.Equal(t, "strongly agreed", got.Text)
	})

	t.Run("list", func(t *testing.T) {
		page, err := svc.List(ctx, "t-1", rv.ID, ports.PageRequest{})
		require.NoError(t, err)
		assert.EqualValues(t, 1, page.Total)
	})

	t.Run("moderator deletes", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, moderator, "t-1", rv.ID, c.ID))
		_, err := svc.Get(ctx, "t-1", rv.ID, c.ID)
		assert.ErrorIs(t, err, domain.ErrCommentNotFound)
	})
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

func ptr[T any](v T) *T { return &v }

func TestUpdateMe_RoleChangeIsIgnored(t *testing.T) {
	users := newStubUserRepo()
	users.seed(alice.UserID, "alice", "alice@example.com", domain.RoleUser)
	svc := NewUserService(users, discardLogger)

	got, err := svc.UpdateMe(context.Background(), alice, ports.UserPatch{
		Bio:  ptr("film buff"),
		Role: ptr(domain.RoleAdmin),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, got.Role)
	assert.Equal(t, "film buff", got.Bio)

	stored, _ := users.FindByID(context.Background(), alice.UserID)
	assert.Equal(t, domain.RoleUser, stored.Role)
}

func TestUpdateMe_AdminKeepsRoleToo(t *testing.T) {
	users := newStubUserRepo()
	users.seed(admin.UserID, "root", "root@example.com", domain.RoleAdmin)
	svc := NewUserService(users, discardLogger)

	got, err := svc.UpdateMe(context.Background(), admin, ports.UserPatch{Role: ptr(domain.RoleUser)})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)
}

func TestMe_RequiresAuthentication(t *testing.T) {
	svc := NewUserService(newStubUserRepo(), discardLogger)

	_, err := svc.Me(context.Background(), anonymous)
	assert.ErrorIs(t, err, domain.ErrAuthorizationDenied)
}

func TestUserAdministration_AdminOnly(t *testing.T) {
	users := newStubUserRepo()
	users.seed(alice.UserID, "alice", "alice@example.com", domain.RoleUser)
	svc := NewUserService(users, discardLogger)
	ctx := context.Background()

	for _, caller := range []domain.Principal{anonymous, alice, moderator} {
		_, err := svc.List(ctx, caller, ports.UserFilter{})
		assert.ErrorIs(t, err, domain.ErrAuthorizationDenied, "role %q", caller.Role)

		_, err = svc.Get(ctx, caller, "alice")
		assert.ErrorIs(t, err, domain.ErrAuthorizationDenied, "role %q", caller.Role)
	}

	page, err := svc.List(ctx, admin, ports.UserFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}

func TestUserAdministration_AdminChangesRole(t *testing.T) {
	users := newStubUserRepo()
	users.seed(alice.UserID, "alice", "alice@example.com", domain.RoleUser)
	svc := NewUserService(users, discardLogger)
	ctx := context.Background()

	got, err := svc.Update(ctx, admin, "alice", ports.UserPatch{Role: ptr(domain.RoleModerator)})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleModerator, got.Role)

	_, err = svc.Update(ctx, admin, "alice", ports.UserPatch{Role: ptr(domain.Role("root"))})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUserAdministration_CreateAndDelete(t *testing.T) {
	users := newStubUserRepo()
	svc := NewUserService(users, discardLogger)
	ctx := context.Background()

	created, err := svc.Create(ctx, admin, ports.CreateUserInput{Username: "trinity", Email: "trinity@example.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, created.Role)

	_, err = svc.Create(ctx, admin, ports.CreateUserInput{Username: "trinity", Email: "other@example.com"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Create(ctx, admin, ports.CreateUserInput{Username: "me", Email: "me@example.com"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, svc.Delete(ctx, admin, "trinity"))
	assert.ErrorIs(t, svc.Delete(ctx, admin, "trinity"), domain.ErrNotFound)
}

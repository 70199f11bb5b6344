package user_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-portal/internal/docstore"
	"credit-portal/internal/domain/user"
	"credit-portal/internal/pkg/apperrors"
)

func newStoreRepo(t *testing.T) (user.Repository, docstore.Store) {
	t.Helper()
	store := docstore.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return user.NewRepository(store, logger), store
}

func TestRepositoryCreateAndGet(t *testing.T) {
	repo, _ := newStoreRepo(t)
	ctx := context.Background()

	u := &user.User{Email: "a@example.com", FullName: "A", Role: user.RoleUser, CreditIDs: []string{}}
	require.NoError(t, repo.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	got, err := repo.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "a@example.com", got.Email)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRepositoryFindByEmail(t *testing.T) {
	repo, _ := newStoreRepo(t)
	ctx := context.Background()

	u := &user.User{Email: "b@example.com", FullName: "B", Role: user.RoleUser}
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.FindByEmail(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRepositoryAppendCreditID(t *testing.T) {
	repo, _ := newStoreRepo(t)
	ctx := context.Background()

	u := &user.User{Email: "c@example.com", FullName: "C", Role: user.RoleUser, CreditIDs: []string{}}
	require.NoError(t, repo.Create(ctx, u))

	require.NoError(t, repo.AppendCreditID(ctx, u.ID, "loan-1"))
	require.NoError(t, repo.AppendCreditID(ctx, u.ID, "loan-2"))
	// Appending the same id twice keeps one copy.
	require.NoError(t, repo.AppendCreditID(ctx, u.ID, "loan-1"))

	got, err := repo.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"loan-1", "loan-2"}, got.CreditIDs)
}

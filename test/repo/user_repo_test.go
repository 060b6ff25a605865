package repo_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/credoauth/credo/internal/model"
	appErr "github.com/credoauth/credo/internal/pkg/errors"
	"github.com/credoauth/credo/internal/repo"
	"github.com/credoauth/credo/test/testutil"
)

func newUser(id, email string) *model.User {
	return &model.User{
		ID:           id,
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hash",
		Ctime:        1000,
		Mtime:        1000,
	}
}

func TestUserRepo_CreateDuplicateEmail(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	users := repo.NewUserRepo(conn)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, newUser("u1", "a@x.com")))
	require.Equal(t, appErr.ErrConflict, users.Create(ctx, newUser("u2", "a@x.com")))
}

func TestUserRepo_ConcurrentCreateSingleWinner(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	users := repo.NewUserRepo(conn)
	ctx := context.Background()

	const workers = 8
	results := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = users.Create(ctx, newUser(newTestID(), "race@x.com"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			require.Equal(t, appErr.ErrConflict, err)
		}
	}
	require.Equal(t, 1, succeeded)
}

func TestUserRepo_MarkEmailVerified(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	users := repo.NewUserRepo(conn)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, newUser("u1", "a@x.com")))
	require.NoError(t, users.MarkEmailVerified(ctx, "u1", 2000))

	user, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, user.EmailVerifiedAt)
	require.Equal(t, int64(2000), *user.EmailVerifiedAt)
}

func TestUserRepo_UpdatePassword(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	users := repo.NewUserRepo(conn)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, newUser("u1", "a@x.com")))
	require.NoError(t, users.UpdatePassword(ctx, "u1", "newhash", 2000))

	user, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "newhash", user.PasswordHash)
	require.Equal(t, int64(2000), user.Mtime)

	require.Equal(t, appErr.ErrNotFound, users.UpdatePassword(ctx, "missing", "hash", 2000))
}

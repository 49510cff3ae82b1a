package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"userdir/pkg/domain"
	"userdir/pkg/storage"

	"github.com/stretchr/testify/require"
)

func TestPgSQL_InsertUser(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	alice := domain.User{ID: domain.NewUserID(), UserName: "alice", Email: "a@x.com"}

	t.Run("stores and returns the row", func(t *testing.T) {
		stored, err := pgSQL.InsertUser(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, alice, *stored)
	})

	t.Run("duplicate user name", func(t *testing.T) {
		_, err := pgSQL.InsertUser(ctx, domain.User{ID: domain.NewUserID(), UserName: "alice", Email: "other@x.com"})
		require.ErrorIs(t, err, storage.ErrDuplicateUserName)
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := pgSQL.InsertUser(ctx, domain.User{ID: alice.ID, UserName: "alice2"})
		require.ErrorIs(t, err, storage.ErrDuplicateUserID)
	})

	t.Run("empty email is kept", func(t *testing.T) {
		u := domain.User{ID: domain.NewUserID(), UserName: "no-mail"}
		stored, err := pgSQL.InsertUser(ctx, u)
		require.NoError(t, err)
		require.Empty(t, stored.Email)
	})
}

func TestPgSQL_UserByName(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	u := domain.User{ID: domain.NewUserID(), UserName: "bob", Email: "b@x.com"}
	_, err := pgSQL.InsertUser(ctx, u)
	require.NoError(t, err)

	got, err := pgSQL.UserByName(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, u, *got)

	// names are matched exactly
	got, err = pgSQL.UserByName(ctx, "Bob")
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = pgSQL.UserByName(ctx, "carol")
	require.NoError(t, err)
	require.Nil(t, got)

	// quotes are bound as values and NUL cannot be stored, so neither matches
	for _, name := range []string{"a\x00b", "o'brien", "x'); DROP TABLE users; --"} {
		got, err = pgSQL.UserByName(ctx, name)
		require.NoError(t, err, name)
		require.Nil(t, got, name)
	}
}

func TestPgSQL_InsertUser_ConcurrentSameName(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dups      int
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pgSQL.InsertUser(ctx, domain.User{
				ID:       domain.NewUserID(),
				UserName: "contended",
				Email:    fmt.Sprintf("%d@x.com", i),
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, storage.ErrDuplicateUserName):
				dups++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, workers-1, dups)
}

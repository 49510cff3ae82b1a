package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"userdir/pkg/domain"
	"userdir/pkg/storage"
	"userdir/pkg/storage/sqlite"

	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.Open(context.Background(), sqlite.Options{Path: sqlite.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := sqlite.Open(context.Background(), sqlite.Options{Path: "  "})
	require.Error(t, err)
}

func TestStore_InsertAndLookup(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	alice := domain.User{ID: domain.NewUserID(), UserName: "alice", Email: "a@x.com"}
	stored, err := s.InsertUser(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, alice, *stored)

	got, err := s.UserByName(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, alice, *got)

	got, err = s.UserByName(ctx, "bob")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestStore_InsertUser_Duplicates(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	alice := domain.User{ID: domain.NewUserID(), UserName: "alice", Email: "a@x.com"}
	_, err := s.InsertUser(ctx, alice)
	require.NoError(t, err)

	_, err = s.InsertUser(ctx, domain.User{ID: domain.NewUserID(), UserName: "alice", Email: "other@x.com"})
	require.ErrorIs(t, err, storage.ErrDuplicateUserName)

	_, err = s.InsertUser(ctx, domain.User{ID: alice.ID, UserName: "alice2"})
	require.ErrorIs(t, err, storage.ErrDuplicateUserID)

	// the original record is untouched
	got, err := s.UserByName(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", got.Email)
}

func TestStore_InsertUser_ConcurrentSameName(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	const workers = 16
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
			_, err := s.InsertUser(ctx, domain.User{
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
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, workers-1, dups)
}

func TestStore_FileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.db")

	s, err := sqlite.Open(ctx, sqlite.Options{Path: path})
	require.NoError(t, err)
	u := domain.User{ID: domain.NewUserID(), UserName: "persisted", Email: "p@x.com"}
	_, err = s.InsertUser(ctx, u)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// reopening re-runs migrations, which must be a no-op
	s, err = sqlite.Open(ctx, sqlite.Options{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.UserByName(ctx, "persisted")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, u, *got)
}

func TestStore_NamesAreBoundNotSpliced(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	for _, name := range []string{"a\x00b", "o'brien", `back\slash`, "x'); DROP TABLE users; --"} {
		got, err := s.UserByName(ctx, name)
		require.NoError(t, err, name)
		require.Nil(t, got, name)

		u := domain.User{ID: domain.NewUserID(), UserName: name, Email: name}
		_, err = s.InsertUser(ctx, u)
		require.NoError(t, err, name)

		got, err = s.UserByName(ctx, name)
		require.NoError(t, err, name)
		require.NotNil(t, got, name)
		require.Equal(t, u, *got)
	}

	// the NUL-bearing name does not shadow its prefix
	got, err := s.UserByName(ctx, "a")
	require.NoError(t, err)
	require.Nil(t, got)
}

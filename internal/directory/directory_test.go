package directory_test

import (
	"context"
	"errors"
	"testing"

	"userdir/internal/directory"
	"userdir/pkg/domain"
	"userdir/pkg/serrors"
	"userdir/pkg/storage"
	mockstorage "userdir/pkg/storage/mock"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestDirectory(t *testing.T) (*mockstorage.MockUserStorage, directory.Directory) {
	t.Helper()

	ctrl := gomock.NewController(t)
	st := mockstorage.NewMockUserStorage(ctrl)

	return st, directory.New(st)
}

func TestDirectory_GetUser(t *testing.T) {
	ctx := context.Background()
	alice := &domain.User{ID: domain.NewUserID(), UserName: "alice", Email: "a@x.com"}

	t.Run("empty name is invalid input", func(t *testing.T) {
		_, d := newTestDirectory(t)

		_, err := d.GetUser(ctx, "")
		require.ErrorIs(t, err, serrors.ErrInvalidInput)
	})

	t.Run("found", func(t *testing.T) {
		st, d := newTestDirectory(t)
		st.EXPECT().UserByName(gomock.Any(), "alice").Return(alice, nil)

		got, err := d.GetUser(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, alice, got)
	})

	t.Run("absent is not found", func(t *testing.T) {
		st, d := newTestDirectory(t)
		st.EXPECT().UserByName(gomock.Any(), "bob").Return(nil, nil)

		_, err := d.GetUser(ctx, "bob")
		require.ErrorIs(t, err, serrors.ErrNotFound)
	})

	t.Run("store failure is unavailable", func(t *testing.T) {
		st, d := newTestDirectory(t)
		cause := errors.New("connection reset")
		st.EXPECT().UserByName(gomock.Any(), "alice").Return(nil, cause)

		_, err := d.GetUser(ctx, "alice")
		require.ErrorIs(t, err, serrors.ErrUnavailable)
		require.ErrorIs(t, err, cause)
	})
}

func TestDirectory_RegisterUser(t *testing.T) {
	ctx := context.Background()

	t.Run("empty name is invalid input", func(t *testing.T) {
		_, d := newTestDirectory(t)

		_, err := d.RegisterUser(ctx, domain.UserInput{Email: "a@x.com"})
		require.ErrorIs(t, err, serrors.ErrInvalidInput)
	})

	t.Run("generates an id when none is given", func(t *testing.T) {
		st, d := newTestDirectory(t)
		st.EXPECT().InsertUser(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, u domain.User) (*domain.User, error) {
				require.False(t, u.ID.IsZero())
				require.Equal(t, "alice", u.UserName)
				require.Equal(t, "a@x.com", u.Email)

				return &u, nil
			},
		)

		got, err := d.RegisterUser(ctx, domain.UserInput{UserName: "alice", Email: "a@x.com"})
		require.NoError(t, err)
		require.False(t, got.ID.IsZero())
		require.Equal(t, "alice", got.UserName)
	})

	t.Run("keeps a caller supplied id", func(t *testing.T) {
		st, d := newTestDirectory(t)
		id := domain.NewUserID()
		want := domain.User{ID: id, UserName: "alice", Email: "a@x.com"}
		st.EXPECT().InsertUser(gomock.Any(), want).Return(&want, nil)

		got, err := d.RegisterUser(ctx, domain.UserInput{ID: id, UserName: "alice", Email: "a@x.com"})
		require.NoError(t, err)
		require.Equal(t, want, *got)
	})

	t.Run("duplicate name is conflict", func(t *testing.T) {
		st, d := newTestDirectory(t)
		st.EXPECT().InsertUser(gomock.Any(), gomock.Any()).Return(nil, storage.ErrDuplicateUserName)

		_, err := d.RegisterUser(ctx, domain.UserInput{UserName: "alice"})
		require.ErrorIs(t, err, serrors.ErrConflict)
		require.ErrorIs(t, err, storage.ErrDuplicateUserName)
	})

	t.Run("duplicate id is conflict", func(t *testing.T) {
		st, d := newTestDirectory(t)
		st.EXPECT().InsertUser(gomock.Any(), gomock.Any()).Return(nil, storage.ErrDuplicateUserID)

		_, err := d.RegisterUser(ctx, domain.UserInput{ID: domain.NewUserID(), UserName: "alice"})
		require.ErrorIs(t, err, serrors.ErrConflict)
	})

	t.Run("store failure is unavailable", func(t *testing.T) {
		st, d := newTestDirectory(t)
		st.EXPECT().InsertUser(gomock.Any(), gomock.Any()).Return(nil, errors.New("disk full"))

		_, err := d.RegisterUser(ctx, domain.UserInput{UserName: "alice"})
		require.ErrorIs(t, err, serrors.ErrUnavailable)
		require.NotErrorIs(t, err, serrors.ErrConflict)
	})
}

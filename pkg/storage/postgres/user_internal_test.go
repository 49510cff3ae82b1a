package postgres

import (
	"errors"
	"fmt"
	"testing"

	"userdir/pkg/storage"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestDuplicateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "user name constraint",
			err:  &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_user_name_key"},
			want: storage.ErrDuplicateUserName,
		},
		{
			name: "primary key",
			err:  &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: usersPrimaryKey},
			want: storage.ErrDuplicateUserID,
		},
		{
			name: "wrapped violation",
			err: fmt.Errorf("exec: %w",
				&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_user_name_key"}),
			want: storage.ErrDuplicateUserName,
		},
		{
			name: "other pg error",
			err:  &pgconn.PgError{Code: pgerrcode.NotNullViolation},
			want: nil,
		},
		{
			name: "non pg error",
			err:  errors.New("connection refused"),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, duplicateError(tt.err))
		})
	}
}

func TestIsUnstorableText(t *testing.T) {
	require.True(t, isUnstorableText(&pgconn.PgError{Code: pgerrcode.CharacterNotInRepertoire}))
	require.True(t, isUnstorableText(fmt.Errorf("query: %w", &pgconn.PgError{Code: pgerrcode.CharacterNotInRepertoire})))
	require.False(t, isUnstorableText(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	require.False(t, isUnstorableText(errors.New("eof")))
	require.False(t, isUnstorableText(nil))
}

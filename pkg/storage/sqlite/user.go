package sqlite

import (
	"context"
	"errors"
	"fmt"

	"userdir/pkg/domain"
	"userdir/pkg/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const usersTable = "users"

type userRow struct {
	ID       uuid.UUID `db:"id"`
	UserName string    `db:"user_name"`
	Email    string    `db:"email"`
}

func (r *userRow) toDomain() *domain.User {
	return &domain.User{
		ID:       domain.UserID(r.ID),
		UserName: r.UserName,
		Email:    r.Email,
	}
}

// UserByName returns the user with the given name or nil when there is none.
func (s *Store) UserByName(ctx context.Context, name string) (*domain.User, error) {
	var row userRow
	found, err := s.Builder.From(usersTable).
		Where(goqu.I("user_name").Eq(name)).
		Prepared(true).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch user by name from sqlite: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.toDomain(), nil
}

// InsertUser stores user. SQLite serialises writers, and the UNIQUE
// constraint on user_name rejects every insert after the first for a name.
func (s *Store) InsertUser(ctx context.Context, user domain.User) (*domain.User, error) {
	row := userRow{
		ID:       uuid.UUID(user.ID),
		UserName: user.UserName,
		Email:    user.Email,
	}

	if _, err := s.Builder.Insert(usersTable).Rows(row).Prepared(true).Executor().ExecContext(ctx); err != nil {
		if dup := duplicateError(err); dup != nil {
			return nil, dup
		}

		return nil, fmt.Errorf("could not insert user into sqlite: %w", err)
	}

	return row.toDomain(), nil
}

func duplicateError(err error) error {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return nil
	}

	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
		return storage.ErrDuplicateUserID
	case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
		return storage.ErrDuplicateUserName
	default:
		return nil
	}
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"userdir/pkg/domain"
	"userdir/pkg/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	usersTable = "users"

	usersPrimaryKey = "users_pkey"
)

// UserByName returns the user with the given name or nil when there is none.
func (p *PgSQL) UserByName(ctx context.Context, name string) (*domain.User, error) {
	var row PgUser
	found, err := p.Builder.From(usersTable).
		Where(goqu.I("user_name").Eq(name)).
		Prepared(true).
		Executor().ScanStructContext(ctx, &row)
	if isUnstorableText(err) {
		// text PostgreSQL cannot store can never have been inserted
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not fetch user by name from pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

// InsertUser stores user and returns the inserted row. The unique constraints
// on id and user_name make concurrent inserts of the same name race inside
// PostgreSQL; the losers get a unique violation mapped to a storage sentinel.
func (p *PgSQL) InsertUser(ctx context.Context, user domain.User) (*domain.User, error) {
	var in PgUser
	in.FromDomain(user)

	var row PgUser
	if _, err := p.Builder.Insert(usersTable).
		Rows(in).
		Returning(&PgUser{}).
		Prepared(true).
		Executor().ScanStructContext(ctx, &row); err != nil {
		if dup := duplicateError(err); dup != nil {
			return nil, dup
		}

		return nil, fmt.Errorf("could not insert user into pg: %w", err)
	}

	return row.ToDomain(), nil
}

// duplicateError translates a unique violation into the matching storage
// sentinel and returns nil for every other error.
func duplicateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	if pgErr.ConstraintName == usersPrimaryKey {
		return storage.ErrDuplicateUserID
	}

	return storage.ErrDuplicateUserName
}

// isUnstorableText reports whether err is PostgreSQL rejecting a text value,
// e.g. one containing NUL, that is not representable in the database encoding.
func isUnstorableText(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CharacterNotInRepertoire
}

// Package storage defines the persistence contract of the user directory.
// Concrete backends live in sub-packages (postgres, sqlite) and are selected
// at startup.
//
//go:generate mockgen -package mockstorage -source=interface.go -destination=mock/mockstorage.go *
package storage

import (
	"context"
	"userdir/pkg/domain"
)

// UserStorage persists users keyed by their unique user name.
type UserStorage interface {
	// UserByName returns the user with the given name, or nil when none exists.
	UserByName(ctx context.Context, name string) (*domain.User, error)
	// InsertUser stores a new user and returns the stored record. Implementations
	// must guarantee that of any number of concurrent inserts with the same user
	// name at most one succeeds; the others get ErrDuplicateUserName.
	InsertUser(ctx context.Context, user domain.User) (*domain.User, error)
}

// Storage is a UserStorage with lifecycle management.
type Storage interface {
	UserStorage

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases the underlying connections. The instance must not be used afterwards.
	Close() error
}

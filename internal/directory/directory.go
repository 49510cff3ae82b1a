// Package directory implements the user directory: input checks in front of
// a storage.UserStorage, with storage failures translated into semantic errors.
package directory

import (
	"context"
	"errors"

	"userdir/pkg/domain"
	"userdir/pkg/logger"
	"userdir/pkg/serrors"
	"userdir/pkg/storage"

	"go.uber.org/zap"
)

// directory is the stateless implementation of Directory.
type directory struct {
	storage storage.UserStorage
}

// GetUser returns the user registered under userName.
func (d directory) GetUser(ctx context.Context, userName string) (*domain.User, error) {
	if userName == "" {
		return nil, serrors.With(serrors.ErrInvalidInput, "user name is required")
	}

	user, err := d.storage.UserByName(ctx, userName)
	if err != nil {
		logger.Error(ctx, "could not look up user", zap.String("user_name", userName), zap.Error(err))

		return nil, serrors.Wrap(serrors.ErrUnavailable, err, "could not look up user")
	}
	if user == nil {
		return nil, serrors.With(serrors.ErrNotFound, "user %q not found", userName)
	}

	return user, nil
}

// RegisterUser creates a user from candidate. A zero candidate ID is replaced
// by a freshly generated one.
func (d directory) RegisterUser(ctx context.Context, candidate domain.UserInput) (*domain.User, error) {
	if candidate.UserName == "" {
		return nil, serrors.With(serrors.ErrInvalidInput, "user name is required")
	}

	user := domain.User{
		ID:       candidate.ID,
		UserName: candidate.UserName,
		Email:    candidate.Email,
	}
	if user.ID.IsZero() {
		user.ID = domain.NewUserID()
	}

	created, err := d.storage.InsertUser(ctx, user)
	switch {
	case errors.Is(err, storage.ErrDuplicateUserName):
		return nil, serrors.Wrap(serrors.ErrConflict, err, "user %q already exists", user.UserName)
	case errors.Is(err, storage.ErrDuplicateUserID):
		return nil, serrors.Wrap(serrors.ErrConflict, err, "user id %s already exists", user.ID)
	case err != nil:
		logger.Error(ctx, "could not register user", zap.String("user_name", user.UserName), zap.Error(err))

		return nil, serrors.Wrap(serrors.ErrUnavailable, err, "could not register user")
	}

	logger.Debug(ctx, "user registered",
		zap.String("user_id", created.ID.String()),
		zap.String("user_name", created.UserName))

	return created, nil
}

// New creates a Directory backed by the given storage.
func New(storage storage.UserStorage) Directory {
	return &directory{
		storage: storage,
	}
}

package directory

import (
	"context"
	"userdir/pkg/domain"
)

// Directory looks up and registers users. Errors carry a serrors kind:
// ErrInvalidInput, ErrNotFound, ErrConflict or ErrUnavailable.
//
//go:generate mockgen -package mockdirectory -source=interface.go -destination=mock/mockdirectory.go *
type Directory interface {
	GetUser(ctx context.Context, userName string) (*domain.User, error)
	RegisterUser(ctx context.Context, candidate domain.UserInput) (*domain.User, error)
}

package postgres

import (
	"userdir/pkg/domain"

	"github.com/google/uuid"
)

// PgUser is the row shape of the users table.
type PgUser struct {
	ID       uuid.UUID `db:"id"`
	UserName string    `db:"user_name"`
	Email    string    `db:"email"`
}

func (p *PgUser) ToDomain() *domain.User {
	return &domain.User{
		ID:       domain.UserID(p.ID),
		UserName: p.UserName,
		Email:    p.Email,
	}
}

func (p *PgUser) FromDomain(user domain.User) {
	*p = PgUser{
		ID:       uuid.UUID(user.ID),
		UserName: user.UserName,
		Email:    user.Email,
	}
}

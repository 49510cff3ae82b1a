package domain

import "github.com/google/uuid"

// UserID uniquely identifies a user within the system.
// It is a thin wrapper around uuid.UUID to provide type safety at the domain layer.
type UserID uuid.UUID

// NewUserID returns a freshly generated random UserID.
func NewUserID() UserID {
	return UserID(uuid.New())
}

// IsZero reports whether the ID is the nil UUID.
func (id UserID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

// String returns the canonical textual form of the ID.
func (id UserID) String() string {
	return uuid.UUID(id).String()
}

// User is a registered member of the directory.
type User struct {
	// ID is assigned once at registration and never changes.
	ID UserID
	// UserName is unique across all users.
	UserName string
	// Email is stored as provided; its format is not validated.
	Email string
}

// UserInput is the caller-supplied data for a registration before validation.
// A zero ID asks the directory to generate one.
type UserInput struct {
	ID       UserID
	UserName string
	Email    string
}

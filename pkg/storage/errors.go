package storage

import "errors"

// Errors returned by storage implementations.
var (
	// ErrDuplicateUserName is returned by InsertUser when another user already
	// holds the same user name.
	ErrDuplicateUserName = errors.New("duplicate user name")
	// ErrDuplicateUserID is returned by InsertUser when another user already
	// holds the same ID.
	ErrDuplicateUserID = errors.New("duplicate user id")
)

package storage

import (
	"context"

	"github.com/mcoot/signupgate/internal/model"
)

// Storage defines the interface for user persistence.
//
// Usernames are matched exactly; emails are stored and matched lower-cased.
type Storage interface {
	// CreateUser persists a new user. It returns model.ErrUsernameTaken or
	// model.ErrEmailTaken if either is already registered, checked atomically.
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	DeleteUser(ctx context.Context, id model.UserID) error

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error
	Close() error
}

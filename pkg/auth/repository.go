package auth

import (
	"context"
	"fmt"

	"github.com/artem13815/taskboard/pkg/apperr"
)

// Common errors used by repository/use cases
var (
	ErrUserNotFound       = apperr.NotFound("user not found")
	ErrUserAlreadyExists  = fmt.Errorf("%w: user already exists", apperr.ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid password", apperr.ErrAuthentication)
)

// UserRepository abstracts persistence concerns from the domain layer.
type UserRepository interface {
	// Create assigns a fresh ID and stores the user. It fails with
	// ErrUserAlreadyExists when the username is taken.
	Create(ctx context.Context, user User) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
}

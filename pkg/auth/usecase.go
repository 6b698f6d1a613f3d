package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/artem13815/taskboard/pkg/apperr"
)

// AuthUseCase describes authentication/registration behavior.
type AuthUseCase interface {
	Register(ctx context.Context, username, password string) (string, error)
	Authenticate(ctx context.Context, username, password string) (Identity, error)
	Login(ctx context.Context, username, password string) (AuthResult, error)
	Profile(ctx context.Context, userID string) (User, error)
}

type AuthResult struct {
	Identity Identity
	Token    string
}

type authService struct {
	repo   UserRepository
	tokens TokenIssuer
	cost   int
	now    func() time.Time
}

// NewAuthService returns default implementation of AuthUseCase.
// A cost of zero selects bcrypt.DefaultCost.
func NewAuthService(repo UserRepository, tokens TokenIssuer, bcryptCost int) AuthUseCase {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{repo: repo, tokens: tokens, cost: bcryptCost, now: time.Now}
}

func (s *authService) Register(ctx context.Context, username, password string) (string, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return "", apperr.Validation("username and password are required")
	}

	// Skip hashing for names that are obviously taken; the repository
	// re-checks atomically on insert.
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return "", ErrUserAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return "", err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperr.Validation("password must be at most 72 bytes")
		}
		return "", err
	}

	user, err := s.repo.Create(ctx, User{
		Username:     username,
		PasswordHash: string(passwordHash),
		JoinedAt:     s.now().UTC(),
	})
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return Identity{}, apperr.Validation("username and password are required")
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return Identity{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return user.Identity(), nil
}

func (s *authService) Login(ctx context.Context, username, password string) (AuthResult, error) {
	identity, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return AuthResult{}, err
	}
	token, err := s.tokens.Issue(ctx, identity)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Identity: identity, Token: token}, nil
}

func (s *authService) Profile(ctx context.Context, userID string) (User, error) {
	return s.repo.GetByID(ctx, userID)
}

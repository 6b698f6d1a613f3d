package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/artem13815/taskboard/pkg/apperr"
	"github.com/artem13815/taskboard/pkg/auth"
)

var ErrRevoked = fmt.Errorf("%w: token has been revoked", apperr.ErrInvalidToken)

// Service issues and verifies HS256 bearer tokens.
type Service struct {
	secret  []byte
	issuer  string
	ttl     time.Duration
	revoker Revoker
	now     func() time.Time
}

// NewService returns a token service. A zero ttl issues tokens without an
// expiry; a nil revoker disables revocation checks.
func NewService(secret, issuer string, ttl time.Duration, revoker Revoker) *Service {
	return &Service{secret: []byte(secret), issuer: issuer, ttl: ttl, revoker: revoker, now: time.Now}
}

// Claims carries the identity next to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

func (s *Service) Issue(ctx context.Context, identity auth.Identity) (string, error) {
	if identity.ID == "" || identity.Username == "" {
		return "", apperr.Validation("identity is incomplete")
	}
	now := s.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Issuer:   s.issuer,
			Subject:  identity.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Username: identity.Username,
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature, issuer, expiry and revocation status of
// token and returns the identity it carries.
func (s *Service) Verify(ctx context.Context, token string) (auth.Identity, error) {
	claims, err := s.parse(ctx, token)
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.Identity{ID: claims.Subject, Username: claims.Username}, nil
}

// Revoke rejects token from now on, until it would have expired anyway.
func (s *Service) Revoke(ctx context.Context, token string) error {
	if s.revoker == nil {
		return errors.New("token revocation is not configured")
	}
	claims, err := s.parse(ctx, token)
	if err != nil {
		return err
	}
	if claims.ID == "" {
		return fmt.Errorf("%w: token has no id", apperr.ErrInvalidToken)
	}
	var until time.Time
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return s.revoker.Revoke(ctx, claims.ID, until)
}

func (s *Service) parse(ctx context.Context, tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" || claims.Username == "" {
		return nil, fmt.Errorf("%w: malformed claims", apperr.ErrInvalidToken)
	}
	if s.revoker != nil && claims.ID != "" {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrRevoked
		}
	}
	return claims, nil
}

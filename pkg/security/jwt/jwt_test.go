package jwt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/taskboard/pkg/apperr"
	"github.com/artem13815/taskboard/pkg/auth"
)

var alice = auth.Identity{ID: "u-1", Username: "alice"}

func TestIssueVerifyRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewService("secret", "taskboard", time.Hour, nil)

	token, err := svc.Issue(ctx, alice)
	require.NoError(t, err)

	got, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, alice, got)
}

func TestVerifyRejects(t *testing.T) {
	ctx := context.Background()
	svc := NewService("secret", "taskboard", time.Hour, nil)
	good, err := svc.Issue(ctx, alice)
	require.NoError(t, err)

	otherSecret, err := NewService("other", "taskboard", time.Hour, nil).Issue(ctx, alice)
	require.NoError(t, err)
	otherIssuer, err := NewService("secret", "someone-else", time.Hour, nil).Issue(ctx, alice)
	require.NoError(t, err)

	parts := strings.Split(good, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: alice.ID, Issuer: "taskboard"},
		Username:         alice.Username,
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: alice.ID, Issuer: "taskboard"},
	})
	missingUsername, err := noUser.SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":          "not-a-token",
		"wrong secret":     otherSecret,
		"wrong issuer":     otherIssuer,
		"tampered payload": tampered,
		"alg none":         unsigned,
		"missing username": missingUsername,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(ctx, token)
			assert.ErrorIs(t, err, apperr.ErrInvalidToken)
		})
	}
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	svc := NewService("secret", "taskboard", time.Minute, nil)
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.Issue(ctx, alice)
	require.NoError(t, err)
	_, err = svc.Verify(ctx, token)
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = svc.Verify(ctx, token)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	svc := NewService("secret", "taskboard", 0, nil)
	token, err := svc.Issue(ctx, alice)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().AddDate(10, 0, 0) }
	got, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, alice, got)
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	svc := NewService("secret", "taskboard", time.Hour, NewMemoryRevoker())

	token, err := svc.Issue(ctx, alice)
	require.NoError(t, err)
	other, err := svc.Issue(ctx, alice)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, token))

	_, err = svc.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrRevoked)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)

	_, err = svc.Verify(ctx, other)
	assert.NoError(t, err, "revoking one token must not affect others")
}

func TestRevokeWithoutRevoker(t *testing.T) {
	ctx := context.Background()
	svc := NewService("secret", "taskboard", time.Hour, nil)
	token, err := svc.Issue(ctx, alice)
	require.NoError(t, err)
	assert.Error(t, svc.Revoke(ctx, token))
}

func TestIssueRequiresIdentity(t *testing.T) {
	_, err := NewService("secret", "", 0, nil).Issue(context.Background(), auth.Identity{})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

package jwt

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedApp(svc *Service) *fiber.App {
	app := fiber.New()
	app.Get("/me", NewAuthMiddleware(svc), func(c *fiber.Ctx) error {
		id, ok := IdentityFrom(c)
		if !ok {
			return c.SendStatus(http.StatusTeapot)
		}
		return c.SendString(id.ID + ":" + id.Username)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	svc := NewService("secret", "taskboard", time.Hour, nil)
	token, err := svc.Issue(context.Background(), alice)
	require.NoError(t, err)
	app := newProtectedApp(svc)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"raw token", token, http.StatusOK, "u-1:alice"},
		{"bearer token", "Bearer " + token, http.StatusOK, "u-1:alice"},
		{"lowercase bearer", "bearer " + token, http.StatusOK, "u-1:alice"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"bearer without token", "Bearer", http.StatusUnauthorized, ""},
		{"invalid token", "Bearer nope", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.body != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, tt.body, string(body))
			}
		})
	}
}

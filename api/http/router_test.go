package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	api "github.com/artem13815/taskboard/api/http"
	"github.com/artem13815/taskboard/api/http/handlers"
	"github.com/artem13815/taskboard/api/http/schema"
	"github.com/artem13815/taskboard/pkg/auth"
	"github.com/artem13815/taskboard/pkg/health"
	"github.com/artem13815/taskboard/pkg/health/checkers"
	docrepo "github.com/artem13815/taskboard/pkg/repository/document"
	"github.com/artem13815/taskboard/pkg/security/jwt"
	docstore "github.com/artem13815/taskboard/pkg/storage/document"
	"github.com/artem13815/taskboard/pkg/task"
)

// switchableBackend fails every Save while broken is set.
type switchableBackend struct {
	*docstore.MemoryBackend
	broken atomic.Bool
}

func (b *switchableBackend) Save(ctx context.Context, doc docstore.Document) error {
	if b.broken.Load() {
		return errors.New("disk full")
	}
	return b.MemoryBackend.Save(ctx, doc)
}

func (b *switchableBackend) Ping(ctx context.Context) error {
	if b.broken.Load() {
		return errors.New("disk full")
	}
	return nil
}

type testServer struct {
	app     *fiber.App
	backend *switchableBackend
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := log.New(io.Discard)
	backend := &switchableBackend{MemoryBackend: docstore.NewMemoryBackend()}
	engine, err := docstore.Open(context.Background(), backend, docstore.WithLogger(logger))
	require.NoError(t, err)

	tokens := jwt.NewService("test-secret", "taskboard", time.Hour, jwt.NewMemoryRevoker())
	schemas, err := schema.New()
	require.NoError(t, err)

	authUC := auth.NewAuthService(docrepo.NewUserRepository(engine), tokens, bcrypt.MinCost)
	taskUC := task.NewService(docrepo.NewTaskRepository(engine))

	app := fiber.New(fiber.Config{ErrorHandler: api.ErrorHandler})
	api.Register(app,
		handlers.NewAuthHandler(authUC, tokens, schemas, logger),
		handlers.NewTaskHandler(taskUC, schemas, logger),
		handlers.NewHealthHandler(health.NewService(checkers.NewStoreChecker(engine))),
		jwt.NewAuthMiddleware(tokens),
	)
	return &testServer{app: app, backend: backend}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	if len(raw) > 0 && raw[0] == '[' {
		var items []any
		require.NoError(t, json.Unmarshal(raw, &items))
		out["items"] = items
	}
	return resp.StatusCode, out
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	creds := `{"username":"` + username + `","password":"` + password + `"}`
	status, _ := s.do(t, http.MethodPost, "/api/register", "", creds)
	require.Equal(t, http.StatusOK, status)
	status, body := s.do(t, http.MethodPost, "/api/login", "", creds)
	require.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/register", "", `{"username":"alice","password":"pw"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["message"])

	status, body = s.do(t, http.MethodPost, "/api/register", "", `{"username":"alice","password":"other"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])

	status, body = s.do(t, http.MethodPost, "/api/login", "", `{"username":"alice","password":"pw"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "alice", body["username"])
	assert.NotEmpty(t, body["token"])
}

func TestAuthFailures(t *testing.T) {
	s := newTestServer(t)
	s.login(t, "alice", "pw")

	tests := []struct {
		name string
		path string
		body string
	}{
		{"wrong password", "/api/login", `{"username":"alice","password":"nope"}`},
		{"unknown user", "/api/login", `{"username":"bob","password":"pw"}`},
		{"blank username", "/api/register", `{"username":"  ","password":"pw"}`},
		{"empty password", "/api/register", `{"username":"carol","password":""}`},
		{"extra field", "/api/register", `{"username":"carol","password":"pw","admin":true}`},
		{"malformed json", "/api/login", `{"username":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, http.MethodPost, tt.path, "", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodGet, "/api/tasks", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, http.MethodGet, "/api/tasks", "Bearer garbage", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodGet, "/api/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestTaskLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice", "pw")

	status, created := s.do(t, http.MethodPost, "/api/tasks", token, `{"text":"  buy milk  "}`)
	require.Equal(t, http.StatusOK, status)
	id, _ := created["_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "buy milk", created["text"])
	assert.Equal(t, false, created["completed"])
	assert.NotEmpty(t, created["userId"])
	assert.NotEmpty(t, created["createdAt"])

	status, list := s.do(t, http.MethodGet, "/api/tasks", "Bearer "+token, "")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list["items"], 1)

	status, updated := s.do(t, http.MethodPut, "/api/tasks/"+id, token, `{"completed":true}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, updated["completed"])
	assert.Equal(t, "buy milk", updated["text"])

	status, updated = s.do(t, http.MethodPut, "/api/tasks/"+id, token, `{"text":"buy oat milk"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, updated["completed"])
	assert.Equal(t, "buy oat milk", updated["text"])

	status, _ = s.do(t, http.MethodPut, "/api/tasks/"+id, token, `{"text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/api/tasks", token, `{"text":"a\u0000b"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = s.do(t, http.MethodPost, "/api/tasks", token, `{"text":"one"} {"text":"two"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := s.do(t, http.MethodDelete, "/api/tasks/"+id, token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	status, _ = s.do(t, http.MethodDelete, "/api/tasks/"+id, token, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, list = s.do(t, http.MethodGet, "/api/tasks", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, list["items"])
}

func TestTasksAreIsolatedBetweenUsers(t *testing.T) {
	s := newTestServer(t)
	alice := s.login(t, "alice", "pw")
	bob := s.login(t, "bob", "pw")

	status, created := s.do(t, http.MethodPost, "/api/tasks", alice, `{"text":"alice only"}`)
	require.Equal(t, http.StatusOK, status)
	id := created["_id"].(string)

	status, list := s.do(t, http.MethodGet, "/api/tasks", bob, "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, list["items"])

	status, _ = s.do(t, http.MethodPut, "/api/tasks/"+id, bob, `{"completed":true}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodDelete, "/api/tasks/"+id, bob, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodPut, "/api/tasks/missing", bob, `{"completed":true}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodPost, "/api/tasks", bob, `{"text":"x","userId":"`+created["userId"].(string)+`"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, list = s.do(t, http.MethodGet, "/api/tasks", alice, "")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list["items"], 1)
	assert.Equal(t, false, list["items"].([]any)[0].(map[string]any)["completed"])
}

func TestProfileAndLogout(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice", "pw")

	status, body := s.do(t, http.MethodGet, "/api/profile", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", body["username"])
	assert.NotEmpty(t, body["id"])
	assert.NotContains(t, body, "password")

	status, body = s.do(t, http.MethodPost, "/api/logout", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	status, _ = s.do(t, http.MethodGet, "/api/tasks", token, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestStorageFailureIsReportedAndRolledBack(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice", "pw")

	s.backend.broken.Store(true)
	status, body := s.do(t, http.MethodPost, "/api/tasks", token, `{"text":"lost"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "storage unavailable", body["error"])

	status, _ = s.do(t, http.MethodGet, "/api/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)

	s.backend.broken.Store(false)
	status, list := s.do(t, http.MethodGet, "/api/tasks", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, list["items"])
}

func TestHealthAndUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, body = s.do(t, http.MethodGet, "/api/ready", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, map[string]any{"store": "ok"}, body["checks"])

	status, body = s.do(t, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, body["error"])
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	app := fiber.New(fiber.Config{ErrorHandler: api.ErrorHandler})
	app.Use(api.RequestLogger(logger))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, buf.String(), "path=/ping")
	assert.Contains(t, buf.String(), "status=200")

	buf.Reset()
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, buf.String(), "ERRO")
	assert.Contains(t, buf.String(), "status=500")
}

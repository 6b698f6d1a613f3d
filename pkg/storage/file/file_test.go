package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/taskboard/pkg/storage/document"
)

func TestLoadMissingFile(t *testing.T) {
	b := NewBackend(filepath.Join(t.TempDir(), "database.json"))
	_, ok, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	b := NewBackend(filepath.Join(dir, "data", "database.json"))
	joined := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	doc := document.Document{
		Users: []document.User{{ID: "u1", Username: "alice", PasswordHash: "$2a$10$x", JoinedAt: joined}},
		Tasks: []document.Task{{ID: "t1", OwnerID: "u1", Text: "buy milk", CreatedAt: joined}},
	}

	require.NoError(t, b.Save(context.Background(), doc))

	got, ok, err := b.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, doc, got)

	entries, err := os.ReadDir(filepath.Join(dir, "data"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")

	info, err := os.Stat(b.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(filePermissions), info.Mode().Perm())
}

func TestLoadLegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	legacy := `{
  "users": [
    {"id": "1717171717171", "username": "bob", "password": "$2a$10$hash", "joinedAt": "2024-05-31T15:28:37.171Z"}
  ],
  "tasks": [
    {"_id": "1717171720000", "userId": "1717171717171", "text": "water plants", "completed": true, "createdAt": "2024-05-31T15:28:40.000Z"}
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o600))

	doc, ok, err := NewBackend(path).Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, doc.Users, 1)
	require.Len(t, doc.Tasks, 1)
	assert.Equal(t, "$2a$10$hash", doc.Users[0].PasswordHash)
	assert.Equal(t, "1717171717171", doc.Tasks[0].OwnerID)
	assert.True(t, doc.Tasks[0].Completed)
}

func TestLoadCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := NewBackend(path).Load(context.Background())
	assert.Error(t, err)
}

func TestEngineOverFileBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "database.json")

	e, err := document.Open(ctx, NewBackend(path))
	require.NoError(t, err)
	_, err = e.Mutate(ctx, func(doc *document.Document) error {
		doc.Tasks = append(doc.Tasks, document.Task{ID: "t1", OwnerID: "u1", Text: "persist me"})
		return nil
	})
	require.NoError(t, err)

	reopened, err := document.Open(ctx, NewBackend(path))
	require.NoError(t, err)
	require.Len(t, reopened.Snapshot().Tasks, 1)
	assert.Equal(t, "persist me", reopened.Snapshot().Tasks[0].Text)
}

package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/artem13815/taskboard/pkg/storage/document"
)

const (
	filePermissions = 0o600
	dirPermissions  = 0o700
)

// Backend stores the document as indented JSON in a single file.
type Backend struct {
	path string
}

func NewBackend(path string) *Backend {
	return &Backend{path: path}
}

func (b *Backend) Name() string { return "file" }

func (b *Backend) Path() string { return b.path }

func (b *Backend) Load(ctx context.Context) (document.Document, bool, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return document.Document{}, false, nil
	}
	if err != nil {
		return document.Document{}, false, fmt.Errorf("read %s: %w", b.path, err)
	}
	var doc document.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document.Document{}, false, fmt.Errorf("parse %s: %w", b.path, err)
	}
	return doc, true, nil
}

func (b *Backend) Save(ctx context.Context, doc document.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	return atomicWriteFile(b.path, data, filePermissions)
}

// Ping checks that the directory holding the document is still there.
func (b *Backend) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(b.path))
	return err
}

// atomicWriteFile writes data next to path and renames it into place, so a
// crash leaves either the old or the new file, never a partial one.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	committed := false
	defer func() {
		if !committed {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := tmpFile.Chmod(perm); err != nil {
		return fmt.Errorf("set temp file permissions: %w", err)
	}
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	committed = true
	return nil
}

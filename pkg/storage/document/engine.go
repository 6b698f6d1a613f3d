// Package document owns the shared users/tasks document and serializes every
// read-modify-write cycle over it.
//
// Writers hold a single writer lock across the whole cycle: copy the
// committed document, apply the mutation, save it through the Backend, and
// only then publish it. Readers take a copy of the last published document
// and never wait for a write in progress.
package document

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/artem13815/taskboard/pkg/apperr"
)

// Backend is the durable home of the document.
type Backend interface {
	Name() string
	// Load returns the stored document; ok is false when nothing was stored yet.
	Load(ctx context.Context) (doc Document, ok bool, err error)
	Save(ctx context.Context, doc Document) error
}

// Pinger is implemented by backends that can report their availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MutateFunc changes the document in place. Returning an error aborts the
// cycle and nothing is written.
type MutateFunc func(doc *Document) error

// Engine is the single point of truth for the document.
type Engine struct {
	backend Backend
	logger  *log.Logger

	writeMu   sync.Mutex
	mu        sync.RWMutex
	committed Document
}

type Option func(*Engine)

// WithLogger sets the logger used to report storage failures.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Open loads the document from backend. When the backend holds no document
// yet, an empty one is written before Open returns.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Engine, error) {
	e := &Engine{backend: backend, logger: log.Default()}
	for _, opt := range opts {
		opt(e)
	}

	doc, ok, err := backend.Load(ctx)
	if err != nil {
		return nil, &apperr.StorageError{Op: "load", Backend: backend.Name(), Err: err}
	}
	if !ok {
		doc = Empty()
		if err := backend.Save(ctx, doc); err != nil {
			return nil, &apperr.StorageError{Op: "init", Backend: backend.Name(), Err: err}
		}
		e.logger.Info("initialized empty document", "backend", backend.Name())
	}
	doc.normalize()
	e.committed = doc
	return e, nil
}

// Snapshot returns a copy of the last committed document.
func (e *Engine) Snapshot() Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.committed.Clone()
}

// View calls fn with the committed document while holding the read lock.
// fn must not modify the document or keep references to it.
func (e *Engine) View(fn func(doc *Document)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(&e.committed)
}

// Mutate applies fn to a private copy of the committed document and durably
// commits the result. Concurrent calls are applied one at a time. If fn or
// the durable write fails, the committed document is left untouched.
func (e *Engine) Mutate(ctx context.Context, fn MutateFunc) (Document, error) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	// Only writers replace e.committed, and we hold writeMu.
	next := e.committed.Clone()
	if err := fn(&next); err != nil {
		return Document{}, err
	}
	next.normalize()

	// A commit that has started is finished even if the caller goes away.
	if err := e.backend.Save(context.WithoutCancel(ctx), next); err != nil {
		e.logger.Error("document commit failed, mutation rolled back",
			"backend", e.backend.Name(), "err", err)
		return Document{}, &apperr.StorageError{Op: "save", Backend: e.backend.Name(), Err: err}
	}

	e.mu.Lock()
	e.committed = next
	e.mu.Unlock()
	return next.Clone(), nil
}

// BackendName is used in logs and health output.
func (e *Engine) BackendName() string { return e.backend.Name() }

// Ping reports whether the backend is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	if p, ok := e.backend.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", e.backend.Name(), err)
		}
	}
	return nil
}

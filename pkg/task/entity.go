package task

import (
	"context"
	"fmt"
	"time"

	"github.com/artem13815/taskboard/pkg/apperr"
)

// Task is a short text item owned by exactly one user.
type Task struct {
	ID        string    `json:"_id"`
	OwnerID   string    `json:"userId"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// Patch lists the fields an update may change; nil means leave as is.
type Patch struct {
	Completed *bool
	Text      *string
}

// Apply returns t with the present patch fields applied.
func (p Patch) Apply(t Task) Task {
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Text != nil {
		t.Text = *p.Text
	}
	return t
}

var (
	ErrTaskNotFound  = apperr.NotFound("task not found")
	ErrOwnerNotFound = apperr.NotFound("user not found")
	ErrNotOwner      = fmt.Errorf("%w: task belongs to another user", apperr.ErrAuthorization)
)

// Repository is the port for task storage. Every call is scoped to an owner.
type Repository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]Task, error)
	// Create assigns a fresh ID. Fails with ErrOwnerNotFound if the owner is gone.
	Create(ctx context.Context, t Task) (Task, error)
	// UpdateForOwner fails with ErrTaskNotFound or ErrNotOwner.
	UpdateForOwner(ctx context.Context, ownerID, id string, p Patch) (Task, error)
	// DeleteForOwner fails with ErrTaskNotFound unless id and owner both match.
	DeleteForOwner(ctx context.Context, ownerID, id string) error
}

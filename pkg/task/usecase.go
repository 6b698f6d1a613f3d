package task

import (
	"context"
	"strings"
	"time"

	"github.com/artem13815/taskboard/pkg/apperr"
)

// UseCase runs owner-scoped task operations. ownerID always comes from a
// verified identity.
type UseCase interface {
	List(ctx context.Context, ownerID string) ([]Task, error)
	Create(ctx context.Context, ownerID, text string) (Task, error)
	Update(ctx context.Context, id, ownerID string, p Patch) (Task, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) UseCase { return &service{repo: repo, now: time.Now} }

func (s *service) List(ctx context.Context, ownerID string) ([]Task, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *service) Create(ctx context.Context, ownerID, text string) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, apperr.Validation("text is required")
	}
	return s.repo.Create(ctx, Task{
		OwnerID:   ownerID,
		Text:      text,
		Completed: false,
		CreatedAt: s.now().UTC(),
	})
}

func (s *service) Update(ctx context.Context, id, ownerID string, p Patch) (Task, error) {
	if p.Text != nil {
		text := strings.TrimSpace(*p.Text)
		if text == "" {
			return Task{}, apperr.Validation("text must not be empty")
		}
		p.Text = &text
	}
	return s.repo.UpdateForOwner(ctx, ownerID, id, p)
}

func (s *service) Delete(ctx context.Context, id, ownerID string) error {
	return s.repo.DeleteForOwner(ctx, ownerID, id)
}

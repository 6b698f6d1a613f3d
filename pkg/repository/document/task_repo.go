package document

import (
	"context"

	"github.com/google/uuid"

	docstore "github.com/artem13815/taskboard/pkg/storage/document"
	"github.com/artem13815/taskboard/pkg/task"
)

// TaskRepository implements task.Repository over the shared document.
type TaskRepository struct {
	engine *docstore.Engine
	newID  func() string
}

func NewTaskRepository(engine *docstore.Engine) *TaskRepository {
	return &TaskRepository{engine: engine, newID: uuid.NewString}
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]task.Task, error) {
	res := make([]task.Task, 0)
	r.engine.View(func(doc *docstore.Document) {
		for _, rec := range doc.Tasks {
			if rec.OwnerID == ownerID {
				res = append(res, toTask(rec))
			}
		}
	})
	return res, nil
}

func (r *TaskRepository) Create(ctx context.Context, t task.Task) (task.Task, error) {
	_, err := r.engine.Mutate(ctx, func(doc *docstore.Document) error {
		if _, ok := doc.UserByID(t.OwnerID); !ok {
			return task.ErrOwnerNotFound
		}
		t.ID = doc.NewTaskID(r.newID)
		doc.Tasks = append(doc.Tasks, toRecord(t))
		return nil
	})
	if err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (r *TaskRepository) UpdateForOwner(ctx context.Context, ownerID, id string, p task.Patch) (task.Task, error) {
	var updated task.Task
	_, err := r.engine.Mutate(ctx, func(doc *docstore.Document) error {
		i := doc.TaskIndex(id)
		if i < 0 {
			return task.ErrTaskNotFound
		}
		if doc.Tasks[i].OwnerID != ownerID {
			return task.ErrNotOwner
		}
		updated = p.Apply(toTask(doc.Tasks[i]))
		doc.Tasks[i] = toRecord(updated)
		return nil
	})
	if err != nil {
		return task.Task{}, err
	}
	return updated, nil
}

func (r *TaskRepository) DeleteForOwner(ctx context.Context, ownerID, id string) error {
	_, err := r.engine.Mutate(ctx, func(doc *docstore.Document) error {
		for i, rec := range doc.Tasks {
			if rec.ID == id && rec.OwnerID == ownerID {
				doc.Tasks = append(doc.Tasks[:i], doc.Tasks[i+1:]...)
				return nil
			}
		}
		return task.ErrTaskNotFound
	})
	return err
}

func toTask(rec docstore.Task) task.Task {
	return task.Task{
		ID:        rec.ID,
		OwnerID:   rec.OwnerID,
		Text:      rec.Text,
		Completed: rec.Completed,
		CreatedAt: rec.CreatedAt.UTC(),
	}
}

func toRecord(t task.Task) docstore.Task {
	return docstore.Task{
		ID:        t.ID,
		OwnerID:   t.OwnerID,
		Text:      t.Text,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
	}
}

package document

import (
	"context"

	"github.com/google/uuid"

	"github.com/artem13815/taskboard/pkg/auth"
	docstore "github.com/artem13815/taskboard/pkg/storage/document"
)

// UserRepository implements auth.UserRepository over the shared document.
type UserRepository struct {
	engine *docstore.Engine
	newID  func() string
}

func NewUserRepository(engine *docstore.Engine) *UserRepository {
	return &UserRepository{engine: engine, newID: uuid.NewString}
}

func (r *UserRepository) Create(ctx context.Context, user auth.User) (auth.User, error) {
	_, err := r.engine.Mutate(ctx, func(doc *docstore.Document) error {
		if _, taken := doc.UserByUsername(user.Username); taken {
			return auth.ErrUserAlreadyExists
		}
		user.ID = doc.NewUserID(r.newID)
		doc.Users = append(doc.Users, docstore.User{
			ID:           user.ID,
			Username:     user.Username,
			PasswordHash: user.PasswordHash,
			JoinedAt:     user.JoinedAt,
		})
		return nil
	})
	if err != nil {
		return auth.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (auth.User, error) {
	var (
		rec   docstore.User
		found bool
	)
	r.engine.View(func(doc *docstore.Document) {
		rec, found = doc.UserByUsername(username)
	})
	if !found {
		return auth.User{}, auth.ErrUserNotFound
	}
	return toUser(rec), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (auth.User, error) {
	var (
		rec   docstore.User
		found bool
	)
	r.engine.View(func(doc *docstore.Document) {
		rec, found = doc.UserByID(id)
	})
	if !found {
		return auth.User{}, auth.ErrUserNotFound
	}
	return toUser(rec), nil
}

func toUser(rec docstore.User) auth.User {
	return auth.User{
		ID:           rec.ID,
		Username:     rec.Username,
		PasswordHash: rec.PasswordHash,
		JoinedAt:     rec.JoinedAt.UTC(),
	}
}

package memstore

import (
	"context"
	"fmt"

	"github.com/ferbator/shortlink/internal/db"
	"github.com/ferbator/shortlink/internal/db/memory"
	"github.com/ferbator/shortlink/internal/models"
)

const userKeyPrefix = "user:"

func userKey(userUUID string) string {
	return userKeyPrefix + userUUID
}

// UserRepo представляет собой репозиторий для работы с пользователями в памяти.
type UserRepo struct {
	s *db.MemoryStorage
}

func NewUserRepo(store *db.MemoryStorage) *UserRepo {
	return &UserRepo{
		s: store,
	}
}

func (u *UserRepo) Create(ctx context.Context, user *models.User) error {
	if err := memory.Set[models.User](ctx, userKey(user.UUID), user, u.s.MStorage); err != nil {
		return fmt.Errorf("failed to create record: %w", convertErrorType(err))
	}
	return nil
}

func (u *UserRepo) GetByUUID(ctx context.Context, userUUID string) (*models.User, error) {
	user, err := memory.Get[models.User](ctx, userKey(userUUID), u.s.MStorage)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to get record by uuid %s: %w",
			userUUID, convertErrorType(err),
		)
	}
	return user, nil
}

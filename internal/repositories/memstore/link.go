package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/ferbator/shortlink/internal/db"
	"github.com/ferbator/shortlink/internal/db/memory"
	"github.com/ferbator/shortlink/internal/models"
)

const linkKeyPrefix = "link:"

func linkKey(shortCode string) string {
	return linkKeyPrefix + shortCode
}

// LinkRepo представляет собой репозиторий для работы со ссылками в памяти.
//
// Мьютекс сериализует read-modify-write операции (инкремент счетчика и
// деактивацию) — in-memory аналог условного UPDATE в SQL-репозитории.
type LinkRepo struct {
	s      *db.MemoryStorage
	mu     sync.Mutex
	lastID uint
}

func NewLinkRepo(store *db.MemoryStorage) *LinkRepo {
	return &LinkRepo{
		s: store,
	}
}

func (l *LinkRepo) Create(ctx context.Context, link *models.Link) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastID++
	link.ID = l.lastID
	if err := memory.Set[models.Link](ctx, linkKey(link.ShortCode), link, l.s.MStorage); err != nil {
		return fmt.Errorf("failed to create record: %w", convertErrorType(err))
	}
	return nil
}

func (l *LinkRepo) GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	link, err := memory.Get[models.Link](ctx, linkKey(shortCode), l.s.MStorage)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to get record by short code %s: %w",
			shortCode, convertErrorType(err),
		)
	}
	return link, nil
}

func (l *LinkRepo) GetAll(ctx context.Context) ([]models.Link, error) {
	links, err := memory.FilterAll[models.Link](ctx, l.s.MStorage, func(val models.Link) bool {
		return val.ShortCode != ""
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get all records: %w", convertErrorType(err))
	}
	return links, nil
}

// IncrementClicks увеличивает счетчик переходов, если ссылка активна и
// лимит не исчерпан. Возвращает false если условие не выполнилось.
func (l *LinkRepo) IncrementClicks(ctx context.Context, link *models.Link) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored, err := memory.Get[models.Link](ctx, linkKey(link.ShortCode), l.s.MStorage)
	if err != nil {
		return false, convertErrorType(err)
	}
	if !stored.Active || stored.CurrentClicks >= stored.ClickLimit {
		return false, nil
	}
	stored.CurrentClicks++
	if setErr := memory.Set[models.Link](
		ctx, linkKey(link.ShortCode), stored, l.s.MStorage, memory.WithOverwrite(),
	); setErr != nil {
		return false, convertErrorType(setErr)
	}
	link.CurrentClicks = stored.CurrentClicks
	return true, nil
}

// Deactivate переводит ссылку в неактивное состояние. Возвращает true
// только при фактическом переходе active=true -> false.
func (l *LinkRepo) Deactivate(ctx context.Context, link *models.Link) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored, err := memory.Get[models.Link](ctx, linkKey(link.ShortCode), l.s.MStorage)
	if err != nil {
		return false, convertErrorType(err)
	}
	if !stored.Active {
		return false, nil
	}
	stored.Active = false
	if setErr := memory.Set[models.Link](
		ctx, linkKey(link.ShortCode), stored, l.s.MStorage, memory.WithOverwrite(),
	); setErr != nil {
		return false, convertErrorType(setErr)
	}
	link.Active = false
	return true, nil
}

func (l *LinkRepo) UpdateClickLimit(ctx context.Context, link *models.Link, newLimit int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored, err := memory.Get[models.Link](ctx, linkKey(link.ShortCode), l.s.MStorage)
	if err != nil {
		return convertErrorType(err)
	}
	stored.ClickLimit = newLimit
	if setErr := memory.Set[models.Link](
		ctx, linkKey(link.ShortCode), stored, l.s.MStorage, memory.WithOverwrite(),
	); setErr != nil {
		return convertErrorType(setErr)
	}
	link.ClickLimit = newLimit
	return nil
}

func (l *LinkRepo) Delete(ctx context.Context, link *models.Link) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.s.MStorage.Delete(ctx, linkKey(link.ShortCode)); err != nil {
		return convertErrorType(err)
	}
	return nil
}

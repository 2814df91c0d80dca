package services

import (
	"context"

	"github.com/ferbator/shortlink/internal/models"
)

// LinkRepository описывает репозиторий для ссылок.
type LinkRepository interface {
	// Create создает запись. Возвращает repositories.ErrDuplicateKey при
	// коллизии короткого кода.
	Create(ctx context.Context, link *models.Link) error
	// GetByShortCode находит в хранилище запись по короткому коду.
	GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error)
	// GetAll возвращает все записи в бд. Сразу пачкой.
	GetAll(ctx context.Context) ([]models.Link, error)
	// IncrementClicks атомарно увеличивает счетчик переходов при условии
	// `active AND current_clicks < click_limit`. Возвращает false если
	// условие не выполнилось.
	IncrementClicks(ctx context.Context, link *models.Link) (bool, error)
	// Deactivate атомарно гасит флаг active. Возвращает true только при
	// фактическом переходе active=true -> false.
	Deactivate(ctx context.Context, link *models.Link) (bool, error)
	// UpdateClickLimit выставляет новый лимит переходов как есть.
	UpdateClickLimit(ctx context.Context, link *models.Link, newLimit int) error
	// Delete удаляет запись.
	Delete(ctx context.Context, link *models.Link) error
}

// UserRepository описывает репозиторий для пользователей.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUUID(ctx context.Context, userUUID string) (*models.User, error)
}

// Notifier отправляет письмо владельцу ссылки. Ошибка отправки никогда
// не роняет бизнес-операцию — вызывающая сторона логирует и едет дальше.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

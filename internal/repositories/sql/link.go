package sql

import (
	"context"

	"github.com/ferbator/shortlink/internal/models"
	"github.com/ferbator/shortlink/internal/repositories"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type LinkRepo struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewLinkRepo(db *gorm.DB, logger *logrus.Logger) *LinkRepo {
	return &LinkRepo{
		db:     db,
		logger: logger.WithField("module", "repository/sql/link"),
	}
}

func (l *LinkRepo) Create(ctx context.Context, link *models.Link) error {
	if err := l.db.WithContext(ctx).Create(link).Error; err != nil {
		convErr := convertErrorType(err)
		if !errors.Is(convErr, repositories.ErrDuplicateKey) {
			l.logger.WithError(err).Errorf("failed to create record %+v", *link)
		}
		return convErr
	}
	return nil
}

func (l *LinkRepo) GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	var link models.Link
	err := l.db.WithContext(ctx).Where("short_code = ?", shortCode).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		l.logger.WithError(err).Errorf("failed to get record by short code %s", shortCode)
		return nil, errors.Wrapf(repositories.ErrUnknown, "get record by short code %s", shortCode)
	}
	return &link, nil
}

func (l *LinkRepo) GetAll(ctx context.Context) ([]models.Link, error) {
	var links []models.Link
	if err := l.db.WithContext(ctx).Find(&links).Error; err != nil {
		l.logger.WithError(err).Error("failed to get all records")
		return nil, repositories.ErrUnknown
	}
	return links, nil
}

// IncrementClicks атомарно увеличивает счетчик переходов при условии, что
// ссылка активна и лимит не исчерпан. Возвращает false если условие не
// выполнилось (запись не изменена). Условный UPDATE сериализует
// read-modify-write конкурентных редиректов на стороне БД.
func (l *LinkRepo) IncrementClicks(ctx context.Context, link *models.Link) (bool, error) {
	res := l.db.WithContext(ctx).
		Model(&models.Link{}).
		Where("id = ? AND active = ? AND current_clicks < click_limit", link.ID, true).
		Update("current_clicks", gorm.Expr("current_clicks + 1"))
	if res.Error != nil {
		l.logger.WithError(res.Error).Errorf("failed to increment clicks for id %d", link.ID)
		return false, repositories.ErrUnknown
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	link.CurrentClicks++
	return true, nil
}

// Deactivate атомарно переводит ссылку в неактивное состояние.
// Возвращает true только для перехода active=true -> false; повторный
// вызов по той же ссылке вернет false. На этом построена гарантия
// "не более одного уведомления на деактивацию".
func (l *LinkRepo) Deactivate(ctx context.Context, link *models.Link) (bool, error) {
	res := l.db.WithContext(ctx).
		Model(&models.Link{}).
		Where("id = ? AND active = ?", link.ID, true).
		Update("active", false)
	if res.Error != nil {
		l.logger.WithError(res.Error).Errorf("failed to deactivate record id %d", link.ID)
		return false, repositories.ErrUnknown
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	link.Active = false
	return true, nil
}

func (l *LinkRepo) UpdateClickLimit(ctx context.Context, link *models.Link, newLimit int) error {
	res := l.db.WithContext(ctx).
		Model(&models.Link{}).
		Where("id = ?", link.ID).
		Update("click_limit", newLimit)
	if res.Error != nil {
		l.logger.WithError(res.Error).Errorf("failed to update click limit for id %d", link.ID)
		return repositories.ErrUnknown
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	link.ClickLimit = newLimit
	return nil
}

func (l *LinkRepo) Delete(ctx context.Context, link *models.Link) error {
	if err := l.db.WithContext(ctx).Delete(&models.Link{}, link.ID).Error; err != nil {
		l.logger.WithError(err).Errorf("failed to delete record id %d", link.ID)
		return repositories.ErrUnknown
	}
	return nil
}

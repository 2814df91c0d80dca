package sql

import (
	"context"

	"github.com/ferbator/shortlink/internal/models"
	"github.com/ferbator/shortlink/internal/repositories"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type UserRepo struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewUserRepo(db *gorm.DB, logger *logrus.Logger) *UserRepo {
	return &UserRepo{
		db:     db,
		logger: logger.WithField("module", "repository/sql/user"),
	}
}

func (u *UserRepo) Create(ctx context.Context, user *models.User) error {
	if err := u.db.WithContext(ctx).Create(user).Error; err != nil {
		convErr := convertErrorType(err)
		if !errors.Is(convErr, repositories.ErrDuplicateKey) {
			u.logger.WithError(err).Errorf("failed to create record %+v", *user)
		}
		return convErr
	}
	return nil
}

func (u *UserRepo) GetByUUID(ctx context.Context, userUUID string) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).Where("uuid = ?", userUUID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		u.logger.WithError(err).Errorf("failed to get record by uuid %s", userUUID)
		return nil, errors.Wrapf(repositories.ErrUnknown, "get record by uuid %s", userUUID)
	}
	return &user, nil
}

package services

import (
	"errors"
	"fmt"

	"github.com/ferbator/shortlink/internal/db"
	"github.com/ferbator/shortlink/internal/repositories/memstore"
	"github.com/ferbator/shortlink/internal/repositories/sql"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ServiceType string

const (
	ServiceTypeSQLite   ServiceType = "sqlite"
	ServiceTypePostgres ServiceType = "postgres"
	ServiceTypeInMemory ServiceType = "inMemory"
)

type Services struct {
	LinkService *LinkService
}

func Factory(
	conn any,
	sType ServiceType,
	notifier Notifier,
	conf LinkConfig,
	logger *logrus.Logger,
) (*Services, error) {
	switch sType {
	case ServiceTypeSQLite, ServiceTypePostgres:
		gormDB, ok := conn.(*gorm.DB)
		if !ok {
			return nil, errors.New("invalid connection type. expected *gorm.DB")
		}
		return getSQLServices(gormDB, notifier, conf, logger), nil
	case ServiceTypeInMemory:
		store, ok := conn.(*db.MemoryStorage)
		if !ok {
			return nil, errors.New("invalid connection type. expected *db.MemoryStorage")
		}
		return getInMemoryServices(store, notifier, conf, logger), nil
	default:
		return nil, fmt.Errorf("unknown service type: %s", sType)
	}
}

func getSQLServices(conn *gorm.DB, notifier Notifier, conf LinkConfig, logger *logrus.Logger) *Services {
	linkRepo := sql.NewLinkRepo(conn, logger)
	userRepo := sql.NewUserRepo(conn, logger)
	return &Services{
		LinkService: NewLinkService(linkRepo, userRepo, notifier, conf, logger),
	}
}

func getInMemoryServices(store *db.MemoryStorage, notifier Notifier, conf LinkConfig, logger *logrus.Logger) *Services {
	linkRepo := memstore.NewLinkRepo(store)
	userRepo := memstore.NewUserRepo(store)
	return &Services{
		LinkService: NewLinkService(linkRepo, userRepo, notifier, conf, logger),
	}
}

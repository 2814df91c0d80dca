package db

import (
	"errors"
	"fmt"
)

type StorageType string

const (
	StorageTypeSQLite   StorageType = "sqlite"
	StorageTypePostgres StorageType = "postgres"
	StorageTypeInMemory StorageType = "inMemory"
)

type FactoryConfig struct {
	StorageType StorageType
	PostgresDSN *string
	SQLitePath  *string
}

// NewConnectionFactory возвращает подключение к выбранному хранилищу.
// Тип возвращаемого значения зависит от типа хранилища (*gorm.DB либо
// *MemoryStorage), разбор типа происходит в фабрике сервисов.
func NewConnectionFactory(config FactoryConfig) (any, error) {
	switch config.StorageType {
	case StorageTypeSQLite:
		if config.SQLitePath == nil {
			return nil, errors.New("sqlite path is empty")
		}
		return NewSQLite(*config.SQLitePath)
	case StorageTypePostgres:
		if config.PostgresDSN == nil {
			return nil, errors.New("postgres dsn is empty")
		}
		return NewPostgres(*config.PostgresDSN)
	case StorageTypeInMemory:
		return NewMemStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", config.StorageType)
	}
}

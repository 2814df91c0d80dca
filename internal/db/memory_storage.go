package db

import (
	"github.com/ferbator/shortlink/internal/db/memory"
)

type MemoryStorage struct {
	*memory.MStorage
}

func NewMemStorage() *MemoryStorage {
	return &MemoryStorage{
		MStorage: memory.NewMemStorage(),
	}
}

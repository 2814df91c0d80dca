package memory

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// MStorage потокобезопасное хранилище пар ключ/значение в памяти.
// Значения хранятся сериализованными в JSON.
type MStorage struct {
	data map[string][]byte
	m    sync.RWMutex
}

func NewMemStorage() *MStorage {
	return &MStorage{
		data: make(map[string][]byte),
	}
}

func (m *MStorage) Len() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return len(m.data)
}

func (m *MStorage) IsExist(key string) bool {
	m.m.RLock()
	defer m.m.RUnlock()

	_, ok := m.data[key]
	return ok
}

// Delete удаляет значение по ключу. Отсутствие ключа ошибкой не считается.
func (m *MStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck
	}
	m.m.Lock()
	defer m.m.Unlock()

	delete(m.data, key)
	return nil
}

// SetOptions настройки операции Set.
type SetOptions struct {
	Overwrite bool
}

// WithOverwrite разрешает перезапись существующего ключа.
func WithOverwrite() func(*SetOptions) {
	return func(o *SetOptions) {
		o.Overwrite = true
	}
}

func Get[T any](ctx context.Context, key string, m *MStorage) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck
	}
	m.m.RLock()
	defer m.m.RUnlock()

	val, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	var result T
	if err := json.Unmarshal(val, &result); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal json by key `%s`", key)
	}
	return &result, nil
}

// Set Сохраняет новые пары ключ/значение. Ключ обязан быть уникальным, иначе вернется
// ошибка ErrDuplicateKey. Перезапись включается опцией WithOverwrite.
func Set[T any](ctx context.Context, key string, val *T, m *MStorage, opts ...func(*SetOptions)) error {
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck
	}

	var options SetOptions
	for _, opt := range opts {
		opt(&options)
	}

	m.m.Lock()
	defer m.m.Unlock()

	if _, exist := m.data[key]; exist && !options.Overwrite {
		return ErrDuplicateKey
	}

	bytes, err := json.Marshal(val)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal json for object `%+v`", val)
	}
	m.data[key] = bytes
	return nil
}

func GetAll[T any](ctx context.Context, m *MStorage) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck
	}
	m.m.RLock()
	defer m.m.RUnlock()

	var result = make([]T, 0, len(m.data))

	for _, bytes := range m.data {
		var val T
		if err := json.Unmarshal(bytes, &val); err != nil {
			logrus.WithError(err).Errorf("failed to unmarshal json for object `%+v`", val)
			continue
		}
		result = append(result, val)
	}
	return result, nil
}

// FilterAll возвращает значения, для которых фильтр вернул true.
func FilterAll[T any](ctx context.Context, m *MStorage, filter func(val T) bool) ([]T, error) {
	all, err := GetAll[T](ctx, m)
	if err != nil {
		return nil, err
	}
	var result = make([]T, 0, len(all))
	for _, val := range all {
		if filter(val) {
			result = append(result, val)
		}
	}
	return result, nil
}

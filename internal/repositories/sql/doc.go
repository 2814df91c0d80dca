// Package sql предоставляет реализацию репозиториев ссылок и пользователей поверх gorm.
//
// Все методы репозитория преобразуют ошибки БД в общие ошибки уровня репозитория
// с помощью convertErrorType:
//   - gorm.ErrDuplicatedKey -> repositories.ErrDuplicateKey
//   - gorm.ErrRecordNotFound -> repositories.ErrNotFound
//   - другие ошибки -> repositories.ErrUnknown
package sql

// Package memstore предоставляет реализацию репозиториев ссылок и пользователей
// для in-memory хранилища.
//
// Все методы репозитория преобразуют внутренние ошибки хранилища в общие ошибки
// уровня репозитория с помощью convertErrorType.
package memstore

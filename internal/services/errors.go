package services

import "errors"

var (
	ErrUnknown        = errors.New("[service]: unknown error")
	ErrRecordNotFound = errors.New("[service]: record not found")
	ErrDuplicateKey   = errors.New("[service]: duplicate key")
	ErrInvalid        = errors.New("[service]: invalid argument")
	ErrForbidden      = errors.New("[service]: forbidden")
	// ErrConflict исчерпаны попытки генерации уникального кода.
	ErrConflict = errors.New("[service]: short code conflict")
	// ErrLinkInactive ссылка уже деактивирована.
	ErrLinkInactive = errors.New("[service]: link is inactive")
	// ErrLimitExhausted лимит переходов исчерпан.
	ErrLimitExhausted = errors.New("[service]: click limit exhausted")
	// ErrLinkExpired время жизни ссылки истекло.
	ErrLinkExpired = errors.New("[service]: link expired")
)

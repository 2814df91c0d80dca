package controllers

import "errors"

// Ошибки, уходящие клиенту в теле ответа.
var (
	ErrLinkUnavailable  = errors.New("Link is unavailable!")
	ErrLimitExhausted   = errors.New("Click limit exhausted!")
	ErrLinkExpired      = errors.New("Link lifetime expired!")
	ErrLinkNotFound     = errors.New("Link not found!")
	ErrForeignDelete    = errors.New("No access to delete a foreign link!")
	ErrForeignEdit      = errors.New("No access to edit the limit!")
	ErrMalformedUUID    = errors.New("Malformed userUuid!")
	ErrMalformedNumber  = errors.New("Malformed numeric parameter!")
	ErrEmptyOriginalURL = errors.New("originalUrl is required!")
	ErrInternal         = errors.New("Internal error")
)

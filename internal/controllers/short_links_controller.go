package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ferbator/shortlink/internal/models"
	"github.com/ferbator/shortlink/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ShortLinkService операции движка ссылок, нужные транспорту.
type ShortLinkService interface {
	Create(ctx context.Context, params services.CreateLinkParams) (*models.Link, *models.User, error)
	Resolve(ctx context.Context, shortCode string) (*models.Link, error)
	EditClickLimit(ctx context.Context, userUUID, shortCode string, newLimit int) (*models.Link, error)
	Delete(ctx context.Context, userUUID, shortCode string) error
}

type ShortLinkController struct {
	linkService ShortLinkService
	baseURL     *url.URL
}

func NewShortLinkController(linkService ShortLinkService, baseURL *url.URL) *ShortLinkController {
	return &ShortLinkController{
		linkService: linkService,
		baseURL:     baseURL,
	}
}

// CreateShortLink принимает параметры запросом вида
// POST /api/create?originalUrl=...&userUuid=...&email=...&clickLimit=...&ttlSeconds=...
// Обязателен только originalUrl; отсутствующий userUuid означает нового
// пользователя. Никакой бизнес-логики здесь нет — только разбор параметров.
func (s *ShortLinkController) CreateShortLink(ctx *gin.Context) {
	userUUID, uuidOK := parseOptionalUUID(ctx)
	if !uuidOK {
		ctx.String(http.StatusBadRequest, ErrMalformedUUID.Error())
		return
	}

	originalURL := ctx.Query("originalUrl")
	if originalURL == "" {
		ctx.String(http.StatusBadRequest, ErrEmptyOriginalURL.Error())
		return
	}

	var clickLimit *int
	if raw := ctx.Query("clickLimit"); raw != "" {
		parsed, parseErr := strconv.Atoi(raw)
		if parseErr != nil {
			ctx.String(http.StatusBadRequest, ErrMalformedNumber.Error())
			return
		}
		clickLimit = &parsed
	}

	var ttlSeconds *int64
	if raw := ctx.Query("ttlSeconds"); raw != "" {
		parsed, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			ctx.String(http.StatusBadRequest, ErrMalformedNumber.Error())
			return
		}
		ttlSeconds = &parsed
	}

	link, owner, createErr := s.linkService.Create(ctx.Request.Context(), services.CreateLinkParams{
		UserUUID:    userUUID,
		Email:       ctx.Query("email"),
		OriginalURL: originalURL,
		ClickLimit:  clickLimit,
		TTLSeconds:  ttlSeconds,
	})
	if createErr != nil {
		if errors.Is(createErr, services.ErrInvalid) {
			ctx.String(http.StatusBadRequest, createErr.Error())
			return
		}
		ctx.String(http.StatusInternalServerError, ErrInternal.Error())
		return
	}

	ctx.String(http.StatusOK, fmt.Sprintf(
		"Short link: %s\nYour UUID: %s\nNotifications will be sent to email: %s",
		s.getShortURL(ctx.Request, link.ShortCode), owner.UUID, owner.Email,
	))
}

// Redirect решает судьбу перехода: 301 с Location либо 400 с причиной.
// Все четыре отказа (нет записи, неактивна, лимит, срок) по наследству от
// старого интерфейса отдаются одним статусом 400 с различимым телом.
func (s *ShortLinkController) Redirect(ctx *gin.Context) {
	shortCode := ctx.Param("shortCode")

	if len(shortCode) != models.ShortCodeLength {
		ctx.String(http.StatusBadRequest, ErrLinkUnavailable.Error())
		return
	}

	link, err := s.linkService.Resolve(ctx.Request.Context(), shortCode)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRecordNotFound), errors.Is(err, services.ErrLinkInactive):
			ctx.String(http.StatusBadRequest, ErrLinkUnavailable.Error())
		case errors.Is(err, services.ErrLimitExhausted):
			ctx.String(http.StatusBadRequest, ErrLimitExhausted.Error())
		case errors.Is(err, services.ErrLinkExpired):
			ctx.String(http.StatusBadRequest, ErrLinkExpired.Error())
		default:
			ctx.String(http.StatusInternalServerError, ErrInternal.Error())
		}
		return
	}

	ctx.Redirect(http.StatusMovedPermanently, link.OriginalURL)
}

// DeleteLink удаляет ссылку владельца. Отсутствие записи — тоже успех.
func (s *ShortLinkController) DeleteLink(ctx *gin.Context) {
	userUUID, uuidOK := parseRequiredUUID(ctx)
	if !uuidOK {
		ctx.String(http.StatusBadRequest, ErrMalformedUUID.Error())
		return
	}

	err := s.linkService.Delete(ctx.Request.Context(), userUUID, ctx.Param("shortCode"))
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			ctx.String(http.StatusForbidden, ErrForeignDelete.Error())
			return
		}
		ctx.String(http.StatusInternalServerError, ErrInternal.Error())
		return
	}
	ctx.String(http.StatusOK, "Link deleted!")
}

// EditClickLimit меняет лимит переходов у ссылки владельца.
func (s *ShortLinkController) EditClickLimit(ctx *gin.Context) {
	userUUID, uuidOK := parseRequiredUUID(ctx)
	if !uuidOK {
		ctx.String(http.StatusBadRequest, ErrMalformedUUID.Error())
		return
	}

	newLimit, limitErr := strconv.Atoi(ctx.Query("newLimit"))
	if limitErr != nil {
		ctx.String(http.StatusBadRequest, ErrMalformedNumber.Error())
		return
	}

	shortCode := ctx.Param("shortCode")
	link, err := s.linkService.EditClickLimit(ctx.Request.Context(), userUUID, shortCode, newLimit)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRecordNotFound):
			ctx.String(http.StatusBadRequest, ErrLinkNotFound.Error())
		case errors.Is(err, services.ErrForbidden):
			ctx.String(http.StatusForbidden, ErrForeignEdit.Error())
		default:
			ctx.String(http.StatusInternalServerError, ErrInternal.Error())
		}
		return
	}

	ctx.String(http.StatusOK, fmt.Sprintf(
		"Limit updated to %d for link = %s",
		newLimit, s.getShortURL(ctx.Request, link.ShortCode),
	))
}

// getShortURL вспомогательный метод который собирает короткую ссылку.
func (s *ShortLinkController) getShortURL(r *http.Request, shortCode string) string {
	var scheme = "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if s.baseURL == nil {
		return fmt.Sprintf("%s://%s/api/%s", scheme, r.Host, shortCode)
	}
	return fmt.Sprintf("%s/api/%s", s.baseURL, shortCode)
}

// parseRequiredUUID читает обязательный query-параметр userUuid.
func parseRequiredUUID(ctx *gin.Context) (string, bool) {
	raw := ctx.Query("userUuid")
	if raw == "" {
		return "", false
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

// parseOptionalUUID читает userUuid, отсутствие параметра допустимо.
func parseOptionalUUID(ctx *gin.Context) (string, bool) {
	raw := ctx.Query("userUuid")
	if raw == "" {
		return "", true
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ferbator/shortlink/internal/models"
	"github.com/ferbator/shortlink/internal/repositories"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// mintAttemptsMax число попыток генерации уникального короткого кода.
const mintAttemptsMax = 5

// notifyTimeout таймаут на отправку одного уведомления.
const notifyTimeout = 10 * time.Second

// LinkConfig параметры переговоров при создании ссылки.
type LinkConfig struct {
	// DefaultClickLimit нижняя граница лимита переходов.
	DefaultClickLimit int
	// DefaultTTLSeconds верхняя граница времени жизни в секундах.
	DefaultTTLSeconds int64
}

// CreateLinkParams входные параметры создания короткой ссылки.
// UserUUID и Email могут быть пустыми; ClickLimit и TTLSeconds — nil,
// если клиент их не передавал.
type CreateLinkParams struct {
	UserUUID    string
	Email       string
	OriginalURL string
	ClickLimit  *int
	TTLSeconds  *int64
}

// LinkService управляет жизненным циклом коротких ссылок: создание,
// допуск редиректа, правка лимита, удаление и периодическая зачистка
// истекших ссылок. Кроме конфигурации сервис не держит изменяемого
// состояния — вся синхронизация лежит на условных обновлениях хранилища.
type LinkService struct {
	linkRepo LinkRepository
	userRepo UserRepository
	notifier Notifier
	conf     LinkConfig
	logger   *logrus.Entry

	// источник времени, подменяется в тестах
	now func() time.Time
}

func NewLinkService(
	linkRepo LinkRepository,
	userRepo UserRepository,
	notifier Notifier,
	conf LinkConfig,
	logger *logrus.Logger,
) *LinkService {
	return &LinkService{
		linkRepo: linkRepo,
		userRepo: userRepo,
		notifier: notifier,
		conf:     conf,
		logger:   logger.WithField("module", "services/link"),
		now:      time.Now,
	}
}

// GetOrCreateUser возвращает пользователя по UUID, создавая его при первом
// обращении. Пустой UUID означает нового пользователя — UUID генерируется.
func (s *LinkService) GetOrCreateUser(ctx context.Context, userUUID, email string) (*models.User, error) {
	if userUUID == "" {
		userUUID = uuid.NewString()
	}

	user, getErr := s.userRepo.GetByUUID(ctx, userUUID)
	if getErr == nil {
		return user, nil
	}
	if !errors.Is(getErr, repositories.ErrNotFound) {
		return nil, ErrUnknown
	}

	newUser := models.User{UUID: userUUID, Email: email}
	if createErr := s.userRepo.Create(ctx, &newUser); createErr != nil {
		// гонка двух create с одним UUID — запись уже есть, перечитываем
		if errors.Is(createErr, repositories.ErrDuplicateKey) {
			return s.userRepo.GetByUUID(ctx, userUUID) //nolint:wrapcheck
		}
		return nil, ErrUnknown
	}
	return &newUser, nil
}

// Create создает короткую ссылку.
//
// Лимит переходов: берем большее из введённого пользователем (по модулю) и
// значения из конфигурации. Время жизни: берем меньшее из введённого
// пользователем и значения из конфигурации. Код генерируется с повторными
// попытками на случай коллизии.
func (s *LinkService) Create(ctx context.Context, params CreateLinkParams) (*models.Link, *models.User, error) {
	if params.OriginalURL == "" {
		return nil, nil, errors.Wrap(ErrInvalid, "original url is empty")
	}

	user, userErr := s.GetOrCreateUser(ctx, params.UserUUID, params.Email)
	if userErr != nil {
		return nil, nil, userErr
	}

	finalLimit := s.conf.DefaultClickLimit
	if params.ClickLimit != nil {
		requested := *params.ClickLimit
		if requested < 0 {
			requested = -requested
		}
		finalLimit = max(requested, s.conf.DefaultClickLimit)
	}

	finalTTL := s.conf.DefaultTTLSeconds
	if params.TTLSeconds != nil {
		// отрицательный TTL схлопывается в ноль: expires_at не может
		// быть раньше created_at
		finalTTL = max(min(*params.TTLSeconds, s.conf.DefaultTTLSeconds), 0)
	}

	now := s.now()
	for attempt := 0; attempt < mintAttemptsMax; attempt++ {
		link := models.Link{
			OriginalURL:   params.OriginalURL,
			ShortCode:     MintShortCode(params.OriginalURL, user.UUID),
			CreatedAt:     now,
			ExpiresAt:     now.Add(time.Duration(finalTTL) * time.Second),
			CurrentClicks: 0,
			ClickLimit:    finalLimit,
			Active:        true,
			UserUUID:      user.UUID,
		}
		createErr := s.linkRepo.Create(ctx, &link)
		if createErr == nil {
			return &link, user, nil
		}
		if errors.Is(createErr, repositories.ErrDuplicateKey) {
			continue
		}
		return nil, nil, ErrUnknown
	}
	return nil, nil, errors.Wrapf(ErrConflict, "mint attempts limit %d reached", mintAttemptsMax)
}

// Resolve решает судьбу перехода по короткому коду.
//
// Таблица решений (в порядке проверки): нет записи -> ErrRecordNotFound;
// неактивна -> ErrLinkInactive; лимит исчерпан -> деактивация и
// ErrLimitExhausted; истекла -> деактивация и ErrLinkExpired; иначе счетчик
// инкрементируется и возвращается ссылка для редиректа.
func (s *LinkService) Resolve(ctx context.Context, shortCode string) (*models.Link, error) {
	link, getErr := s.linkRepo.GetByShortCode(ctx, shortCode)
	if getErr != nil {
		if errors.Is(getErr, repositories.ErrNotFound) {
			return nil, errors.Wrapf(ErrRecordNotFound, "short code %s not found", shortCode)
		}
		return nil, ErrUnknown
	}

	if !link.Active {
		return nil, ErrLinkInactive
	}
	if link.IsExhausted() {
		s.Deactivate(ctx, link)
		return nil, ErrLimitExhausted
	}
	if link.IsExpired(s.now()) {
		s.Deactivate(ctx, link)
		return nil, ErrLinkExpired
	}

	admitted, incErr := s.linkRepo.IncrementClicks(ctx, link)
	if incErr != nil {
		return nil, ErrUnknown
	}
	if !admitted {
		// проиграли гонку конкурентному редиректу: перечитываем запись и
		// сообщаем фактическую причину отказа
		return nil, s.loseAdmission(ctx, shortCode)
	}
	return link, nil
}

// loseAdmission классифицирует отказ условного инкремента.
func (s *LinkService) loseAdmission(ctx context.Context, shortCode string) error {
	link, getErr := s.linkRepo.GetByShortCode(ctx, shortCode)
	if getErr != nil {
		return ErrUnknown
	}
	if !link.Active {
		return ErrLinkInactive
	}
	// единственный оставшийся способ провалить условие — исчерпанный лимит
	s.Deactivate(ctx, link)
	return ErrLimitExhausted
}

// EditClickLimit меняет лимит переходов. Доступно только владельцу.
//
// Новый лимит применяется как есть, без нижней границы из конфигурации.
// Значение меньше текущего счетчика не гасит ссылку немедленно — это
// сделает следующий редирект, увидев исчерпанную квоту.
func (s *LinkService) EditClickLimit(ctx context.Context, userUUID, shortCode string, newLimit int) (*models.Link, error) {
	link, getErr := s.linkRepo.GetByShortCode(ctx, shortCode)
	if getErr != nil {
		if errors.Is(getErr, repositories.ErrNotFound) {
			return nil, errors.Wrapf(ErrRecordNotFound, "short code %s not found", shortCode)
		}
		return nil, ErrUnknown
	}
	if link.UserUUID != userUUID {
		return nil, errors.Wrap(ErrForbidden, "no access to edit limit of a foreign link")
	}
	if updErr := s.linkRepo.UpdateClickLimit(ctx, link, newLimit); updErr != nil {
		return nil, ErrUnknown
	}
	return link, nil
}

// Delete удаляет ссылку. Доступно только владельцу; отсутствие записи
// не считается ошибкой. В отличие от деактивации запись не сохраняется
// и уведомление не отправляется.
func (s *LinkService) Delete(ctx context.Context, userUUID, shortCode string) error {
	link, getErr := s.linkRepo.GetByShortCode(ctx, shortCode)
	if getErr != nil {
		if errors.Is(getErr, repositories.ErrNotFound) {
			return nil
		}
		return ErrUnknown
	}
	if link.UserUUID != userUUID {
		return errors.Wrap(ErrForbidden, "no access to delete a foreign link")
	}
	if delErr := s.linkRepo.Delete(ctx, link); delErr != nil {
		return ErrUnknown
	}
	return nil
}

// Deactivate гасит ссылку и уведомляет владельца. Идемпотентна: условное
// обновление в хранилище срабатывает не более одного раза на переход
// active=true -> false, и только в этом случае уходит уведомление.
func (s *LinkService) Deactivate(ctx context.Context, link *models.Link) {
	changed, deactErr := s.linkRepo.Deactivate(ctx, link)
	if deactErr != nil {
		s.logger.WithError(deactErr).Errorf("failed to deactivate link %s", link.ShortCode)
		return
	}
	if !changed {
		return
	}
	s.notifyOwner(ctx, link)
}

// notifyOwner отправляет владельцу письмо о недоступности ссылки.
// Ошибки отправки логируются и проглатываются.
func (s *LinkService) notifyOwner(ctx context.Context, link *models.Link) {
	user, getErr := s.userRepo.GetByUUID(ctx, link.UserUUID)
	if getErr != nil {
		s.logger.WithError(getErr).Errorf("failed to get owner of link %s", link.ShortCode)
		return
	}
	if user.Email == "" {
		return
	}

	subject := "Your link is no longer available"
	body := fmt.Sprintf(
		"Hello!\n\n"+
			"The link to %s is no longer available.\n"+
			"The click limit was exhausted or the lifetime expired.\n\n"+
			"Regards,\nThe shortlink team.",
		link.OriginalURL,
	)

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if sendErr := s.notifier.Send(sendCtx, user.Email, subject, body); sendErr != nil {
		s.logger.WithError(sendErr).Warnf("failed to notify %s about link %s", user.Email, link.ShortCode)
	}
}

// SweepExpired проходит по всем ссылкам и деактивирует активные истекшие.
// Возвращает число деактивированных. Повторные запуски и гонки с
// редиректами безопасны — деактивация идемпотентна.
func (s *LinkService) SweepExpired(ctx context.Context) (int, error) {
	links, getErr := s.linkRepo.GetAll(ctx)
	if getErr != nil {
		return 0, ErrUnknown
	}

	now := s.now()
	var swept int
	for i := range links {
		link := &links[i]
		if !link.Active || !link.IsExpired(now) {
			continue
		}
		s.Deactivate(ctx, link)
		swept++
	}
	return swept, nil
}

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/ferbator/shortlink/internal/db"
	"github.com/ferbator/shortlink/internal/models"
	"github.com/ferbator/shortlink/internal/repositories"
	"github.com/ferbator/shortlink/internal/repositories/memstore"
)

type notifierMock struct {
	mock.Mock
}

func (n *notifierMock) Send(ctx context.Context, to, subject, body string) error {
	args := n.Called(ctx, to, subject, body)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

type linkRepoMock struct {
	mock.Mock
}

func (l *linkRepoMock) Create(ctx context.Context, link *models.Link) error {
	args := l.Called(ctx, link)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

func (l *linkRepoMock) GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	args := l.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

func (l *linkRepoMock) GetAll(ctx context.Context) ([]models.Link, error) {
	args := l.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).([]models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

func (l *linkRepoMock) IncrementClicks(ctx context.Context, link *models.Link) (bool, error) {
	args := l.Called(ctx, link)
	return args.Bool(0), args.Error(1) //nolint:wrapcheck,errcheck
}

func (l *linkRepoMock) Deactivate(ctx context.Context, link *models.Link) (bool, error) {
	args := l.Called(ctx, link)
	return args.Bool(0), args.Error(1) //nolint:wrapcheck,errcheck
}

func (l *linkRepoMock) UpdateClickLimit(ctx context.Context, link *models.Link, newLimit int) error {
	args := l.Called(ctx, link, newLimit)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

func (l *linkRepoMock) Delete(ctx context.Context, link *models.Link) error {
	args := l.Called(ctx, link)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

// LinkServiceSuite гоняет движок на реальных in-memory репозиториях,
// подменены только уведомления и источник времени.
type LinkServiceSuite struct {
	suite.Suite
	linkRepo *memstore.LinkRepo
	userRepo *memstore.UserRepo
	notifier *notifierMock
	service  *LinkService
	now      time.Time
}

func (s *LinkServiceSuite) SetupTest() {
	store := db.NewMemStorage()
	s.linkRepo = memstore.NewLinkRepo(store)
	s.userRepo = memstore.NewUserRepo(store)
	s.notifier = new(notifierMock)
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	logger := logrus.New()
	s.service = NewLinkService(s.linkRepo, s.userRepo, s.notifier, LinkConfig{
		DefaultClickLimit: 10,
		DefaultTTLSeconds: 86400,
	}, logger)
	s.service.now = func() time.Time { return s.now }
}

func (s *LinkServiceSuite) createLink(params CreateLinkParams) (*models.Link, *models.User) {
	link, owner, err := s.service.Create(context.Background(), params)
	s.Require().NoError(err)
	return link, owner
}

func (s *LinkServiceSuite) TestCreate_Defaults() {
	link, owner := s.createLink(CreateLinkParams{OriginalURL: "https://google.com"})

	_, parseErr := uuid.Parse(owner.UUID)
	s.NoError(parseErr, "new owner should get a generated UUID")
	s.Equal("https://google.com", link.OriginalURL)
	s.Equal(10, link.ClickLimit)
	s.Equal(0, link.CurrentClicks)
	s.True(link.Active)
	s.Equal(s.now, link.CreatedAt)
	s.Equal(s.now.Add(86400*time.Second), link.ExpiresAt)
	s.Len(link.ShortCode, models.ShortCodeLength)
}

func (s *LinkServiceSuite) TestCreate_Negotiation() {
	tests := []struct {
		name       string
		clickLimit *int
		ttlSeconds *int64
		wantLimit  int
		wantTTL    time.Duration
	}{
		{name: "below floor and above ceiling", clickLimit: intPtr(5), ttlSeconds: int64Ptr(100000),
			wantLimit: 10, wantTTL: 86400 * time.Second},
		{name: "above floor", clickLimit: intPtr(25), wantLimit: 25, wantTTL: 86400 * time.Second},
		{name: "negative limit neutralized", clickLimit: intPtr(-50), wantLimit: 50, wantTTL: 86400 * time.Second},
		{name: "short ttl kept", ttlSeconds: int64Ptr(100), wantLimit: 10, wantTTL: 100 * time.Second},
		{name: "negative ttl clamped to zero", ttlSeconds: int64Ptr(-3600), wantLimit: 10, wantTTL: 0},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			link, _ := s.createLink(CreateLinkParams{
				OriginalURL: gofakeit.URL(),
				ClickLimit:  tt.clickLimit,
				TTLSeconds:  tt.ttlSeconds,
			})
			s.Equal(tt.wantLimit, link.ClickLimit)
			s.Equal(s.now.Add(tt.wantTTL), link.ExpiresAt)
		})
	}
}

func (s *LinkServiceSuite) TestCreate_NegativeTTLExpiresImmediately() {
	link, _ := s.createLink(CreateLinkParams{
		OriginalURL: gofakeit.URL(),
		TTLSeconds:  int64Ptr(-100),
	})
	s.Equal(link.CreatedAt, link.ExpiresAt)

	s.now = s.now.Add(time.Second)
	_, err := s.service.Resolve(context.Background(), link.ShortCode)
	s.ErrorIs(err, ErrLinkExpired)
}

func (s *LinkServiceSuite) TestCreate_EmptyURL() {
	_, _, err := s.service.Create(context.Background(), CreateLinkParams{})
	s.ErrorIs(err, ErrInvalid)
}

func (s *LinkServiceSuite) TestCreate_ReusesExistingUser() {
	_, owner := s.createLink(CreateLinkParams{OriginalURL: gofakeit.URL(), Email: "a@test.com"})
	link2, owner2 := s.createLink(CreateLinkParams{
		OriginalURL: gofakeit.URL(),
		UserUUID:    owner.UUID,
		Email:       "another@test.com",
	})

	s.Equal(owner.UUID, owner2.UUID)
	s.Equal("a@test.com", owner2.Email, "email of an existing user must not be overwritten")
	s.Equal(owner.UUID, link2.UserUUID)
}

func (s *LinkServiceSuite) TestResolve_HappyPathAndExhaustion() {
	ctx := context.Background()
	link, owner := s.createLink(CreateLinkParams{OriginalURL: "https://example.com/target"})
	_, editErr := s.service.EditClickLimit(ctx, owner.UUID, link.ShortCode, 2)
	s.Require().NoError(editErr)

	for i := 1; i <= 2; i++ {
		resolved, err := s.service.Resolve(ctx, link.ShortCode)
		s.Require().NoError(err)
		s.Equal("https://example.com/target", resolved.OriginalURL)

		stored, getErr := s.linkRepo.GetByShortCode(ctx, link.ShortCode)
		s.Require().NoError(getErr)
		s.Equal(i, stored.CurrentClicks)
	}

	_, err := s.service.Resolve(ctx, link.ShortCode)
	s.ErrorIs(err, ErrLimitExhausted)

	stored, getErr := s.linkRepo.GetByShortCode(ctx, link.ShortCode)
	s.Require().NoError(getErr)
	s.False(stored.Active)
	s.Equal(2, stored.CurrentClicks)

	// четвертая попытка видит уже неактивную ссылку
	_, err = s.service.Resolve(ctx, link.ShortCode)
	s.ErrorIs(err, ErrLinkInactive)
	s.notifier.AssertNumberOfCalls(s.T(), "Send", 0)
}

func (s *LinkServiceSuite) TestResolve_NotFound() {
	_, err := s.service.Resolve(context.Background(), "deadbeef")
	s.ErrorIs(err, ErrRecordNotFound)
}

func (s *LinkServiceSuite) TestResolve_ExpiredNotifiesOnce() {
	ctx := context.Background()
	link, _ := s.createLink(CreateLinkParams{
		OriginalURL: "https://example.com/expired",
		Email:       "owner@test.com",
	})

	s.notifier.On("Send", mock.Anything, "owner@test.com", mock.Anything, mock.Anything).
		Return(nil)

	s.now = s.now.Add(86401 * time.Second)

	_, err := s.service.Resolve(ctx, link.ShortCode)
	s.ErrorIs(err, ErrLinkExpired)

	stored, getErr := s.linkRepo.GetByShortCode(ctx, link.ShortCode)
	s.Require().NoError(getErr)
	s.False(stored.Active)
	s.Equal(0, stored.CurrentClicks)

	// повторная деактивация не порождает второго письма
	s.service.Deactivate(ctx, stored)
	s.notifier.AssertNumberOfCalls(s.T(), "Send", 1)

	call := s.notifier.Calls[0]
	s.Contains(call.Arguments.String(3), "https://example.com/expired")
}

func (s *LinkServiceSuite) TestResolve_NoEmailNoNotification() {
	ctx := context.Background()
	link, _ := s.createLink(CreateLinkParams{OriginalURL: gofakeit.URL()})

	s.now = s.now.Add(86401 * time.Second)
	_, err := s.service.Resolve(ctx, link.ShortCode)
	s.ErrorIs(err, ErrLinkExpired)
	s.notifier.AssertNumberOfCalls(s.T(), "Send", 0)
}

func (s *LinkServiceSuite) TestDeactivate_NotifierFailureIsSwallowed() {
	ctx := context.Background()
	link, _ := s.createLink(CreateLinkParams{
		OriginalURL: gofakeit.URL(),
		Email:       "owner@test.com",
	})

	s.notifier.On("Send", mock.Anything, "owner@test.com", mock.Anything, mock.Anything).
		Return(errors.New("smtp is down"))

	s.now = s.now.Add(86401 * time.Second)
	_, err := s.service.Resolve(ctx, link.ShortCode)
	s.ErrorIs(err, ErrLinkExpired)

	stored, getErr := s.linkRepo.GetByShortCode(ctx, link.ShortCode)
	s.Require().NoError(getErr)
	s.False(stored.Active, "link must be deactivated even if the notifier fails")
}

func (s *LinkServiceSuite) TestConcurrentRedirects_ExactlyQuotaAdmitted() {
	ctx := context.Background()

	// отдельный сервис с низким потолком, репозитории общие
	svc := NewLinkService(s.linkRepo, s.userRepo, s.notifier, LinkConfig{
		DefaultClickLimit: 3,
		DefaultTTLSeconds: 86400,
	}, logrus.New())
	svc.now = func() time.Time { return s.now }

	link, _, createErr := svc.Create(ctx, CreateLinkParams{OriginalURL: gofakeit.URL()})
	s.Require().NoError(createErr)

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Resolve(ctx, link.ShortCode)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var admitted int
	for err := range results {
		if err == nil {
			admitted++
		}
	}
	s.Equal(3, admitted, "exactly quota attempts must be admitted")

	stored, getErr := s.linkRepo.GetByShortCode(ctx, link.ShortCode)
	s.Require().NoError(getErr)
	s.Equal(3, stored.CurrentClicks)
}

func (s *LinkServiceSuite) TestEditClickLimit() {
	ctx := context.Background()
	link, owner := s.createLink(CreateLinkParams{OriginalURL: gofakeit.URL()})

	s.Run("foreign owner", func() {
		_, err := s.service.EditClickLimit(ctx, uuid.NewString(), link.ShortCode, 15)
		s.ErrorIs(err, ErrForbidden)
	})

	s.Run("not found", func() {
		_, err := s.service.EditClickLimit(ctx, owner.UUID, "deadbeef", 15)
		s.ErrorIs(err, ErrRecordNotFound)
	})

	s.Run("no floor applied", func() {
		updated, err := s.service.EditClickLimit(ctx, owner.UUID, link.ShortCode, 1)
		s.Require().NoError(err)
		s.Equal(1, updated.ClickLimit, "edit accepts values below the creation floor")
	})

	s.Run("limit below clicks deactivates on next redirect", func() {
		_, resolveErr := s.service.Resolve(ctx, link.ShortCode)
		s.Require().NoError(resolveErr)

		_, err := s.service.EditClickLimit(ctx, owner.UUID, link.ShortCode, 1)
		s.Require().NoError(err)

		stored, getErr := s.linkRepo.GetByShortCode(ctx, link.ShortCode)
		s.Require().NoError(getErr)
		s.True(stored.Active, "link stays active until the next redirect attempt")

		_, err = s.service.Resolve(ctx, link.ShortCode)
		s.ErrorIs(err, ErrLimitExhausted)

		stored, getErr = s.linkRepo.GetByShortCode(ctx, link.ShortCode)
		s.Require().NoError(getErr)
		s.False(stored.Active)
	})
}

func (s *LinkServiceSuite) TestDelete() {
	ctx := context.Background()
	link, owner := s.createLink(CreateLinkParams{OriginalURL: gofakeit.URL()})

	s.Run("foreign owner", func() {
		err := s.service.Delete(ctx, uuid.NewString(), link.ShortCode)
		s.ErrorIs(err, ErrForbidden)

		_, getErr := s.linkRepo.GetByShortCode(ctx, link.ShortCode)
		s.NoError(getErr, "link must survive a foreign delete attempt")
	})

	s.Run("owner deletes", func() {
		err := s.service.Delete(ctx, owner.UUID, link.ShortCode)
		s.Require().NoError(err)

		_, getErr := s.linkRepo.GetByShortCode(ctx, link.ShortCode)
		s.ErrorIs(getErr, repositories.ErrNotFound)
	})

	s.Run("missing link is a no-op", func() {
		err := s.service.Delete(ctx, owner.UUID, "deadbeef")
		s.NoError(err)
	})

	s.notifier.AssertNumberOfCalls(s.T(), "Send", 0)
}

func (s *LinkServiceSuite) TestSweepExpired() {
	ctx := context.Background()

	expired, _ := s.createLink(CreateLinkParams{OriginalURL: gofakeit.URL(), Email: "x@test.com"})

	alreadyInactive, _ := s.createLink(CreateLinkParams{OriginalURL: gofakeit.URL(), Email: "z@test.com"})
	changed, deactErr := s.linkRepo.Deactivate(ctx, alreadyInactive)
	s.Require().NoError(deactErr)
	s.Require().True(changed)

	s.notifier.On("Send", mock.Anything, "x@test.com", mock.Anything, mock.Anything).
		Return(nil)

	// X и Z истекают; Y создается уже после сдвига времени и остается свежей
	s.now = s.now.Add(86401 * time.Second)
	fresh, _ := s.createLink(CreateLinkParams{OriginalURL: gofakeit.URL()})

	swept, sweepErr := s.service.SweepExpired(ctx)
	s.Require().NoError(sweepErr)
	s.Equal(1, swept)

	gotExpired, _ := s.linkRepo.GetByShortCode(ctx, expired.ShortCode)
	s.False(gotExpired.Active)

	gotFresh, _ := s.linkRepo.GetByShortCode(ctx, fresh.ShortCode)
	s.True(gotFresh.Active)

	gotInactive, _ := s.linkRepo.GetByShortCode(ctx, alreadyInactive.ShortCode)
	s.False(gotInactive.Active)

	// только X порождает письмо; Z была погашена до зачистки
	s.notifier.AssertNumberOfCalls(s.T(), "Send", 1)

	// повторная зачистка ничего не находит
	sweptAgain, againErr := s.service.SweepExpired(ctx)
	s.Require().NoError(againErr)
	s.Zero(sweptAgain)
	s.notifier.AssertNumberOfCalls(s.T(), "Send", 1)
}

func (s *LinkServiceSuite) TestGetOrCreateUser() {
	ctx := context.Background()

	s.Run("mints uuid when absent", func() {
		user, err := s.service.GetOrCreateUser(ctx, "", "a@test.com")
		s.Require().NoError(err)
		_, parseErr := uuid.Parse(user.UUID)
		s.NoError(parseErr)
		s.Equal("a@test.com", user.Email)
	})

	s.Run("finds existing user", func() {
		created, err := s.service.GetOrCreateUser(ctx, "", "b@test.com")
		s.Require().NoError(err)

		found, foundErr := s.service.GetOrCreateUser(ctx, created.UUID, "other@test.com")
		s.Require().NoError(foundErr)
		s.Equal(created.UUID, found.UUID)
		s.Equal("b@test.com", found.Email)
	})
}

func TestLinkServiceSuite(t *testing.T) {
	suite.Run(t, new(LinkServiceSuite))
}

func TestCreate_MintCollisionRetries(t *testing.T) {
	linkRepo := new(linkRepoMock)
	userRepo := new(userRepoMock)
	notifier := new(notifierMock)

	owner := models.User{UUID: uuid.NewString()}
	userRepo.On("GetByUUID", mock.Anything, mock.Anything).Return(&owner, nil)

	service := NewLinkService(linkRepo, userRepo, notifier, LinkConfig{
		DefaultClickLimit: 10,
		DefaultTTLSeconds: 86400,
	}, logrus.New())

	t.Run("retries on collision then succeeds", func(t *testing.T) {
		linkRepo.ExpectedCalls = nil
		linkRepo.Calls = nil
		linkRepo.On("Create", mock.Anything, mock.Anything).
			Return(repositories.ErrDuplicateKey).Twice()
		linkRepo.On("Create", mock.Anything, mock.Anything).
			Return(nil).Once()

		_, _, err := service.Create(context.Background(), CreateLinkParams{
			OriginalURL: gofakeit.URL(),
			UserUUID:    owner.UUID,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		linkRepo.AssertNumberOfCalls(t, "Create", 3)
	})

	t.Run("gives up after attempts limit", func(t *testing.T) {
		linkRepo.ExpectedCalls = nil
		linkRepo.Calls = nil
		linkRepo.On("Create", mock.Anything, mock.Anything).
			Return(repositories.ErrDuplicateKey)

		_, _, err := service.Create(context.Background(), CreateLinkParams{
			OriginalURL: gofakeit.URL(),
			UserUUID:    owner.UUID,
		})
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("want ErrConflict, got %v", err)
		}
		linkRepo.AssertNumberOfCalls(t, "Create", mintAttemptsMax)
	})
}

type userRepoMock struct {
	mock.Mock
}

func (u *userRepoMock) Create(ctx context.Context, user *models.User) error {
	args := u.Called(ctx, user)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

func (u *userRepoMock) GetByUUID(ctx context.Context, userUUID string) (*models.User, error) {
	args := u.Called(ctx, userUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.User), args.Error(1) //nolint:wrapcheck,errcheck
}

func intPtr(v int) *int {
	return &v
}

func int64Ptr(v int64) *int64 {
	return &v
}

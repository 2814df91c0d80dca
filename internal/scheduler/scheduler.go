package scheduler

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// sweepTimeout таймаут одного прохода зачистки.
const sweepTimeout = time.Minute

// Sweeper деактивирует истекшие ссылки. Реализуется сервисом ссылок.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// Scheduler запускает зачистку истекших ссылок по cron-расписанию.
// Пропущенные тики (процесс лежал) не доигрываются: следующий запуск
// подберет все истекшие ссылки разом, деактивация идемпотентна.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	logger  *logrus.Entry
}

func New(sweeper Sweeper, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		logger:  logger.WithField("module", "scheduler"),
	}
}

// Start регистрирует задание по cron-спецификации (например `0 0 * * *` —
// ежедневно в полночь) и запускает планировщик.
func (s *Scheduler) Start(cronSpec string) error {
	if _, err := s.cron.AddFunc(cronSpec, s.runSweep); err != nil {
		return errors.Wrapf(err, "bad cron spec %q", cronSpec)
	}
	s.cron.Start()
	s.logger.Infof("sweep scheduled at %q", cronSpec)
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущего прохода.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	swept, err := s.sweeper.SweepExpired(ctx)
	if err != nil {
		s.logger.WithError(err).Error("sweep failed")
		return
	}
	s.logger.Infof("sweep finished, deactivated %d expired links", swept)
}

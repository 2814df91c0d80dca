package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// NoopNotifier заглушка на случай, когда SMTP не сконфигурирован.
// Письма не отправляются, факт уведомления пишется в лог.
type NoopNotifier struct {
	logger *logrus.Entry
}

func NewNoopNotifier(logger *logrus.Logger) *NoopNotifier {
	return &NoopNotifier{
		logger: logger.WithField("module", "mailer/noop"),
	}
}

func (n *NoopNotifier) Send(_ context.Context, to, subject, _ string) error {
	n.logger.Infof("smtp is not configured, skipping notification to %s: %s", to, subject)
	return nil
}

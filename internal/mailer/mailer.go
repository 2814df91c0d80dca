package mailer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Config параметры SMTP-транспорта.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier отправляет простые текстовые письма через SMTP.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
	logger *logrus.Entry
}

func NewSMTPNotifier(conf Config, logger *logrus.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(conf.Host, conf.Port, conf.Username, conf.Password),
		from:   conf.From,
		logger: logger.WithField("module", "mailer"),
	}
}

// Send отправляет письмо. Уважает отмену контекста: отправка идет в
// отдельной горутине, по истечении контекста возвращается его ошибка
// (само SMTP-соединение при этом довисает в фоне и закрывается сервером).
func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain; charset=UTF-8", body)

	done := make(chan error, 1)
	go func() {
		done <- n.dialer.DialAndSend(msg)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck
	case err := <-done:
		if err != nil {
			return errors.Wrapf(err, "send email to %s", to)
		}
		n.logger.Debugf("notification sent to %s", to)
		return nil
	}
}

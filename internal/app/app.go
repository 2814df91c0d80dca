package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ferbator/shortlink/internal/config"
	"github.com/ferbator/shortlink/internal/controllers"
	"github.com/ferbator/shortlink/internal/db"
	"github.com/ferbator/shortlink/internal/mailer"
	"github.com/ferbator/shortlink/internal/scheduler"
	"github.com/ferbator/shortlink/internal/services"
)

type App struct {
	config     config.Config
	dbServices *services.Services
	sweeper    *scheduler.Scheduler
	Logger     *logrus.Logger
}

func New(conf config.Config) (*App, error) {
	logger := conf.Logger

	dbServices, servicesErr := initServices(conf, logger)
	if servicesErr != nil {
		return nil, fmt.Errorf("init services: %w", servicesErr)
	}

	return &App{
		config:     conf,
		dbServices: dbServices,
		sweeper:    scheduler.New(dbServices.LinkService, logger),
		Logger:     logger,
	}, nil
}

// Must вызывает панику если произошла ошибка.
func Must(a *App, err error) *App {
	if err != nil {
		panic(err)
	}
	return a
}

// Run запускает web сервер и планировщик зачистки истекших ссылок.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if sweepErr := a.sweeper.Start(a.config.SweepCron); sweepErr != nil {
		return fmt.Errorf("run app: %w", sweepErr)
	}
	defer a.sweeper.Stop()

	errChan := make(chan error, 1)

	server := controllers.SetupRouter(controllers.RouterParams{
		LinkService: a.dbServices.LinkService,
		AppConf:     a.config,
		Logger:      a.Logger,
	})

	go func() {
		if err := server.Run(a.config.ServerAddress); err != nil {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Shutdown command received")
	case serverErr = <-errChan:
		a.Logger.WithError(serverErr).Error("router error")
	}

	return serverErr
}

// initServices создает подключение к базе данных и возвращает сервисный слой приложения.
func initServices(conf config.Config, logger *logrus.Logger) (*services.Services, error) {
	dbConn, connErr := db.NewConnectionFactory(db.FactoryConfig{
		StorageType: whatIsDBStorageType(&conf),
		PostgresDSN: &conf.DatabaseDSN,
		SQLitePath:  &conf.SQLitePath,
	})
	if connErr != nil {
		return nil, connErr //nolint:wrapcheck
	}

	linkConf := services.LinkConfig{
		DefaultClickLimit: conf.DefaultClickLimit,
		DefaultTTLSeconds: conf.DefaultTTLSeconds,
	}

	dbServices, dbServErr := services.Factory(
		dbConn, whatIsServiceType(&conf), initNotifier(&conf, logger), linkConf, logger,
	)
	if dbServErr != nil {
		return nil, dbServErr //nolint:wrapcheck
	}
	return dbServices, nil
}

// initNotifier выбирает транспорт уведомлений. Пустой SMTP host означает
// работу без писем — заглушка лишь пишет в лог.
func initNotifier(conf *config.Config, logger *logrus.Logger) services.Notifier {
	if conf.SMTPHost == "" {
		return mailer.NewNoopNotifier(logger)
	}
	return mailer.NewSMTPNotifier(mailer.Config{
		Host:     conf.SMTPHost,
		Port:     conf.SMTPPort,
		Username: conf.SMTPUsername,
		Password: conf.SMTPPassword,
		From:     conf.SMTPFrom,
	}, logger)
}

func whatIsDBStorageType(conf *config.Config) db.StorageType {
	switch conf.DBType {
	case config.DBTypeSQLite:
		return db.StorageTypeSQLite
	case config.DBTypePostgres:
		return db.StorageTypePostgres
	default:
		return db.StorageTypeInMemory
	}
}

func whatIsServiceType(conf *config.Config) services.ServiceType {
	switch conf.DBType {
	case config.DBTypeSQLite:
		return services.ServiceTypeSQLite
	case config.DBTypePostgres:
		return services.ServiceTypePostgres
	default:
		return services.ServiceTypeInMemory
	}
}

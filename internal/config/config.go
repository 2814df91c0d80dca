package config

import (
	"flag"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type DBType string

const (
	DBTypeSQLite   DBType = "sqlite"
	DBTypePostgres DBType = "postgres"
	DBTypeInMemory DBType = "inMemory"
)

const (
	defaultTTLSeconds = 86400
	defaultClickLimit = 10
	// defaultSweepCron ежедневно в полночь.
	defaultSweepCron = "0 0 * * *"
)

type Config struct {
	// Порт на котором запустится сервер
	ServerAddress string `env:"SERVER_ADDRESS"`
	// Базовый адрес результирующего сокращенного URL
	BaseURL *url.URL `env:"BASE_URL"`
	// Тип хранилища
	DBType DBType `env:"DB" envDefault:"inMemory"` // через флаги не настраиваю, незачем
	// Путь к файлу sqlite
	SQLitePath string `env:"SQLITE_PATH" envDefault:"shortlink.db"`
	// DSN для postgres
	DatabaseDSN string `env:"DATABASE_DSN"`

	// Верхняя граница времени жизни ссылки в секундах
	DefaultTTLSeconds int64 `env:"DEFAULT_TTL_SECONDS"`
	// Нижняя граница лимита переходов
	DefaultClickLimit int `env:"DEFAULT_CLICK_LIMIT"`
	// Cron-расписание зачистки истекших ссылок
	SweepCron string `env:"SWEEP_CRON" envDefault:"0 0 * * *"`

	// Параметры SMTP. Пустой host отключает отправку писем.
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`

	Logger *logrus.Logger
}

func LoadConfig() (*Config, error) {
	var flagsConfig, envConfig Config
	logger := initLogger()

	if err := env.Parse(&envConfig); err != nil {
		return nil, errors.Wrapf(err, "parse ENV config error")
	}

	loadsFlags(&flagsConfig)

	conf := mergeConfig(&envConfig, &flagsConfig)
	if validateErr := validateConfig(conf); validateErr != nil {
		return nil, validateErr
	}
	conf.Logger = logger
	return conf, nil
}

// MustLoadConfig вызывает панику если произошла ошибка.
func MustLoadConfig() *Config {
	conf, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return conf
}

// loadsFlags парсит флаги командной строки.
func loadsFlags(flagsConfig *Config) {
	flag.StringVar(&flagsConfig.ServerAddress, "a", "localhost:8080", "Адрес сервера")
	flag.Int64Var(&flagsConfig.DefaultTTLSeconds, "ttl", defaultTTLSeconds,
		"Верхняя граница времени жизни ссылки (секунды)")
	flag.IntVar(&flagsConfig.DefaultClickLimit, "limit", defaultClickLimit,
		"Нижняя граница лимита переходов")

	bDesc := "Базовый адрес результирующего сокращенного URL (по умолчанию Scheme://Host запущенного сервера)"
	flag.Func("b", bDesc, func(rawURL string) error {
		parsedURL, err := url.ParseRequestURI(rawURL)
		if err != nil {
			return errors.Wrap(err, "failed to parse base url")
		}

		// создаем новый инстанс, отсекая тем самым Path и Query если они заданы в базовом урле.
		flagsConfig.BaseURL = &url.URL{
			Scheme: parsedURL.Scheme,
			Host:   parsedURL.Host,
		}
		return nil
	})

	flag.Parse()
}

// mergeConfig сливает структуры для env и флагов.
func mergeConfig(envConfig, flagsConfig *Config) *Config {
	return &Config{
		ServerAddress:     defaultIfBlank[string](envConfig.ServerAddress, flagsConfig.ServerAddress),
		BaseURL:           defaultIfBlank[*url.URL](envConfig.BaseURL, flagsConfig.BaseURL),
		DBType:            defaultIfBlank[DBType](envConfig.DBType, flagsConfig.DBType),
		SQLitePath:        envConfig.SQLitePath,
		DatabaseDSN:       envConfig.DatabaseDSN,
		DefaultTTLSeconds: defaultIfBlank[int64](envConfig.DefaultTTLSeconds, flagsConfig.DefaultTTLSeconds),
		DefaultClickLimit: defaultIfBlank[int](envConfig.DefaultClickLimit, flagsConfig.DefaultClickLimit),
		SweepCron:         defaultIfBlank[string](envConfig.SweepCron, defaultSweepCron),
		SMTPHost:          envConfig.SMTPHost,
		SMTPPort:          envConfig.SMTPPort,
		SMTPUsername:      envConfig.SMTPUsername,
		SMTPPassword:      envConfig.SMTPPassword,
		SMTPFrom:          envConfig.SMTPFrom,
	}
}

// validateConfig проверяет границы переговоров: обе обязаны быть положительными.
func validateConfig(conf *Config) error {
	if conf.DefaultTTLSeconds <= 0 {
		return errors.Errorf("default ttl must be positive, got %d", conf.DefaultTTLSeconds)
	}
	if conf.DefaultClickLimit <= 0 {
		return errors.Errorf("default click limit must be positive, got %d", conf.DefaultClickLimit)
	}
	return nil
}

func defaultIfBlank[T any](value T, defaultValue T) T {
	if v, ok := any(value).(string); ok && v == "" {
		return defaultValue
	}
	if v, ok := any(value).(DBType); ok && v == "" {
		return defaultValue
	}
	if v, ok := any(value).(*url.URL); ok && v == nil {
		return defaultValue
	}
	if v, ok := any(value).(int); ok && v == 0 {
		return defaultValue
	}
	if v, ok := any(value).(int64); ok && v == 0 {
		return defaultValue
	}
	return value
}

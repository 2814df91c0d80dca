package config

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// initLogger инициализирует логгер сервиса.
func initLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	logger.SetLevel(logrus.InfoLevel)

	// перезаписываем ряд настроек для окружений отличных от продакшн
	if os.Getenv("GIN_MODE") != "release" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(new(logrus.TextFormatter))
	}

	// явный LOG_LEVEL имеет приоритет над умолчаниями окружения
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}

	return logger
}

// Package logger builds the process-wide logrus instance from the logging
// configuration: level, text or JSON format, stdout or a rotating file.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kivanctezoren/sanalkiwobot/internal/config"
)

// NewLogger assembles a logger from the configuration.
func NewLogger(cfg *config.LoggingConfig) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	out, err := output(cfg)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(formatter(cfg.Format))
	log.SetOutput(out)
	return log, nil
}

func formatter(format string) logrus.Formatter {
	if format == "json" {
		return &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		}
	}
	return &logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	}
}

func output(cfg *config.LoggingConfig) (io.Writer, error) {
	if cfg.Output != "file" {
		return os.Stdout, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   cfg.File.Path,
		MaxSize:    cfg.File.MaxSize, // megabytes
		MaxBackups: cfg.File.MaxBackups,
		MaxAge:     cfg.File.MaxAge, // days
		Compress:   true,
	}, nil
}

// WithChat tags an entry with the chat it concerns, keeping the field
// name uniform across the handlers.
func WithChat(log *logrus.Logger, chatID int64) *logrus.Entry {
	return log.WithField("chat_id", chatID)
}

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"wipesim_enterprise/internal/config"
)

// Enterprise логгер с аудитом на базе zerolog
type Logger struct {
	zl      zerolog.Logger
	file    *os.File
	verbose bool
}

func NewLogger(cfg *config.Config, verbose bool) (*Logger, error) {
	l := &Logger{verbose: verbose}

	writers := []io.Writer{}
	if verbose {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"})
	}

	// Автоматическое создание директории для логов
	if cfg.Logging.File != "" {
		logDir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Printf("[WARN] Не удалось создать директорию логов %s: %v\n", logDir, err)
		} else {
			f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
			if err != nil {
				fmt.Printf("[WARN] Не удалось открыть файл логов %s: %v\n", cfg.Logging.File, err)
			} else {
				l.file = f
				writers = append(writers, f)
			}
		}
	}

	if len(writers) == 0 {
		// Без файла и verbose пишем только ошибки в stderr
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"})
	}

	level := parseLevel(cfg.Logging.Level)
	l.zl = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()

	return l, nil
}

// Log пишет запись с уровнем и парами ключ-значение
func (l *Logger) Log(level, message string, fields ...interface{}) {
	event := l.event(level)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", fields[i])
		}
		event = event.Interface(key, fields[i+1])
	}
	event.Msg(message)
}

func (l *Logger) event(level string) *zerolog.Event {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return l.zl.Debug()
	case "WARN":
		return l.zl.Warn()
	case "ERROR":
		return l.zl.Error()
	case "FATAL":
		// WithLevel не вызывает os.Exit в отличие от Fatal()
		return l.zl.WithLevel(zerolog.FatalLevel)
	default:
		return l.zl.Info()
	}
}

func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.InfoLevel
	}
	return parsed
}

func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

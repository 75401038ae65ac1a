package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/kimyounil1/honey-pot-sub000/internal/config"

	"gopkg.in/lumberjack.v2"
)

// Component names the process writing the log: the HTTP gateway or the
// terminal chat client. Both may share one log file.
type Component string

const (
	Gateway Component = "gateway"
	CLI     Component = "cli"
)

// Init installs the process-wide JSON logger. Every record carries the
// component so interleaved gateway and client lines can be told apart.
func Init(cfg config.LogConfig, component Component) {
	level := parseLevel(cfg.Level)

	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, os.Stdout)
	}
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		})
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	h := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h).With("component", string(component)))
	Info("logger initialized", "level", cfg.Level, "file", cfg.File)
}

func Info(msg string, args ...any)  { slog.Info(msg, args...) }
func Warn(msg string, args ...any)  { slog.Warn(msg, args...) }
func Error(msg string, args ...any) { slog.Error(msg, args...) }
func Debug(msg string, args ...any) { slog.Debug(msg, args...) }

// ChatID logs an optional chat id by value. A nil id yields an empty attribute,
// which handlers drop.
func ChatID(id *int64) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Int64("chat_id", *id)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// AngelaMos | 2026
// logger.go

package core

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/apptnu/portal/internal/config"
)

// NewLogger builds the process logger. When file logging is enabled the
// output is teed into a size-rotated file; the returned closer flushes it.
func NewLogger(cfg config.LogConfig, service string) (*slog.Logger, io.Closer) {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if cfg.File.Enabled {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    max(1, cfg.File.MaxSizeMB),
			MaxBackups: max(0, cfg.File.MaxBackups),
			MaxAge:     max(0, cfg.File.MaxAgeDays),
			Compress:   cfg.File.Compress,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closer = rotator
	}

	opts := &slog.HandlerOptions{Level: ParseLogLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler).With("service", service), closer
}

func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

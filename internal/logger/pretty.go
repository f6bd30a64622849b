package logger

import (
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/log"
)

// NewPrettyHandler returns a slog.Handler that renders human readable,
// colored lines when w is a terminal.
func NewPrettyHandler(w io.Writer, level slog.Level) slog.Handler {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           log.Level(level),
	})
}

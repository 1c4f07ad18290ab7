package helpers

import (
	"io"
	"log/slog"
	"os"
)

const RequestIDKey = "requestId"

// NewLogger builds the JSON logger shared by every component.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	hostname, _ := os.Hostname()
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})).
		With(slog.String("service", "food-ordering"), slog.String("hostname", hostname))
}

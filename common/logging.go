package common

import (
	"log/slog"
	"os"
)

// LoggingOpts configures the process logger.
type LoggingOpts struct {
	// Debug enables debug level messages.
	Debug bool

	// JSON switches from the text handler to the JSON handler.
	JSON bool

	// Service is attached to every record as "service".
	Service string

	// Version is attached to every record as "version".
	Version string
}

// SetupLogger builds the slog logger used across the commands. Records go to
// stderr so that stdout stays free for command output.
func SetupLogger(opts *LoggingOpts) *slog.Logger {
	return slog.New(newHandler(opts)).With(loggerAttrs(opts)...)
}

func newHandler(opts *LoggingOpts) slog.Handler {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if opts.JSON {
		return slog.NewJSONHandler(os.Stderr, handlerOpts)
	}
	return slog.NewTextHandler(os.Stderr, handlerOpts)
}

func loggerAttrs(opts *LoggingOpts) []any {
	attrs := []any{}
	if opts.Service != "" {
		attrs = append(attrs, "service", opts.Service)
	}
	if opts.Version != "" {
		attrs = append(attrs, "version", opts.Version)
	}
	return attrs
}

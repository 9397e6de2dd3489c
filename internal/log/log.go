// Package log carries a logrus entry through a context.
package log

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

type loggerKey struct{}

// L is the entry returned by G when the context carries none.
var L = logrus.NewEntry(logrus.StandardLogger())

// WithLogger returns a copy of ctx carrying entry.
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, entry)
}

// G returns the logger stored in ctx, or L.
func G(ctx context.Context) *logrus.Entry {
	if ctx == nil {
		return L
	}
	if entry, ok := ctx.Value(loggerKey{}).(*logrus.Entry); ok && entry != nil {
		return entry
	}
	return L
}

// New builds a logger writing to out. Format is one of "text" or "json".
func New(out io.Writer, level, format string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(parsed)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return logger, nil
}

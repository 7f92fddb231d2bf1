// Package logging builds the charmbracelet loggers used across distindex and
// carries them through contexts.
package logging

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/distindex/pkg/errors"
)

// New creates a logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// ParseLevel parses a configured level name. The empty string is info.
func ParseLevel(s string) (log.Level, error) {
	if s == "" {
		return log.InfoLevel, nil
	}
	l, err := log.ParseLevel(strings.ToLower(s))
	if err != nil {
		return log.InfoLevel, errors.Wrap(errors.ErrCodeInvalidConfig, err, "log level %q", s)
	}
	return l, nil
}

// Progress tracks the start time of an operation and logs completion with
// elapsed duration. It is meant for sequential use by one goroutine.
type Progress struct {
	logger *log.Logger
	start  time.Time
}

// NewProgress creates a progress tracker that captures the current time as
// start.
func NewProgress(l *log.Logger) *Progress {
	return &Progress{logger: l, start: time.Now()}
}

// Done logs msg along with the elapsed time since the tracker was created,
// rounded to the millisecond, followed by optional key/value pairs.
// Example output: "Built index (1.234s) nodes=42"
func (p *Progress) Done(msg string, keyvals ...any) {
	p.logger.Info(msg+" ("+p.Elapsed().String()+")", keyvals...)
}

// Elapsed returns the rounded time since start.
func (p *Progress) Elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

type ctxKey int

const loggerKey ctxKey = 0

// WithLogger returns a new context with the given logger attached.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext retrieves the logger from ctx, or log.Default() when none is
// attached.
func FromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok && l != nil {
		return l
	}
	return log.Default()
}

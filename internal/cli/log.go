// Logging for the synvisio CLI.
//
// All commands support --verbose (-v) for debug-level logging, which also
// routes pipeline and cache hooks to the logger. The logger is attached to
// the command context so long-running commands such as serve can hand it to
// the packages they start.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w at level, with timestamps like
// "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stage times one step of a command and logs it once with its elapsed time.
type stage struct {
	logger *log.Logger
	name   string
	start  time.Time
}

func startStage(l *log.Logger, name string) *stage {
	l.Debug("start", "stage", name)
	return &stage{logger: l, name: name, start: time.Now()}
}

// done logs the stage at info level. keyvals are appended after the
// elapsed time, e.g. "collisions", 12.
func (s *stage) done(keyvals ...any) {
	kv := append([]any{"elapsed", time.Since(s.start).Round(time.Millisecond)}, keyvals...)
	s.logger.Info(s.name, kv...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

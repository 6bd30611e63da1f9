package text

import (
	"log/slog"
	"sync/atomic"
)

// logger holds the package's logger. nil means logging is disabled, which is
// the default.
var logger atomic.Pointer[slog.Logger]

// SetLogger configures the logger used by the text pipeline, for example to
// report a full glyph atlas. Passing nil disables logging. It is safe for
// concurrent use.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

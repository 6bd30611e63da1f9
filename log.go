package keith

import (
	"context"
	"log/slog"
	"sync/atomic"

	"honnef.co/go/keith/text"
)

// nopHandler discards all records. Enabled returns false so that disabled
// logging skips message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(nopHandler{}))
}

// SetLogger routes log output of this package and its subpackages through
// l. By default nothing is logged. Passing nil restores that.
func SetLogger(l *slog.Logger) {
	text.SetLogger(l)
	if l == nil {
		l = slog.New(nopHandler{})
	}
	logger.Store(l)
}

// Logger returns the logger configured with SetLogger. It never returns
// nil.
func Logger() *slog.Logger {
	return logger.Load()
}

package samples

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/gg"
	"github.com/gogpu/wgpu/hal"
)

// nopHandler discards every record. Enabled reports false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger shared by the samples and all their
// packages. By default nothing is logged. Pass nil to restore silence.
//
// The logger is also handed to the hal layer and to gg so that adapter
// selection and canvas diagnostics end up in the same stream.
//
// Log levels used:
//   - [slog.LevelDebug]: per-resource creation, frame statistics
//   - [slog.LevelInfo]: lifecycle transitions, adapter selection
//   - [slog.LevelWarn]: device loss, recoverable presentation errors
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	hal.SetLogger(l)
	gg.SetLogger(l)
}

// Logger returns the current logger. Sub-packages call this instead of
// holding their own copy so a later SetLogger takes effect everywhere.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

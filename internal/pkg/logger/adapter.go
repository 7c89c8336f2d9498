package logger

import "portal_wallet/internal/app/port"

// slogAdapter implements port.Logger on top of the package's global slog logger.
type slogAdapter struct {
	attrs []any
}

// NewSlogAdapter creates a port.Logger backed by the global logger.
func NewSlogAdapter() port.Logger {
	return &slogAdapter{}
}

// Named returns an adapter that tags every record with a component name.
func Named(component string) port.Logger {
	return NewSlogAdapter().With("component", component)
}

func (a *slogAdapter) merge(args []any) []any {
	if len(a.attrs) == 0 {
		return args
	}
	out := make([]any, 0, len(a.attrs)+len(args))
	out = append(out, a.attrs...)
	return append(out, args...)
}

func (a *slogAdapter) Info(msg string, args ...any)  { Info(msg, a.merge(args)...) }
func (a *slogAdapter) Debug(msg string, args ...any) { Debug(msg, a.merge(args)...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { Warn(msg, a.merge(args)...) }
func (a *slogAdapter) Error(msg string, args ...any) { Error(msg, a.merge(args)...) }

// With returns a child adapter carrying additional attributes.
func (a *slogAdapter) With(args ...any) port.Logger {
	return &slogAdapter{attrs: a.merge(args)}
}

// nopLogger discards everything.
type nopLogger struct{}

// Nop returns a port.Logger that discards all records.
func Nop() port.Logger { return nopLogger{} }

func (nopLogger) Info(string, ...any)       {}
func (nopLogger) Debug(string, ...any)      {}
func (nopLogger) Warn(string, ...any)       {}
func (nopLogger) Error(string, ...any)      {}
func (n nopLogger) With(...any) port.Logger { return n }


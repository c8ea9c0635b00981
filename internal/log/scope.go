package log

// Logger is what packages take when they want their records tagged.
type Logger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	With(args ...any) Logger
}

// Named returns a Logger that adds component=name to each record. It looks
// up the active sink per call, so it follows later SetOutput/SetCallback.
func Named(name string) Logger {
	return scoped{args: []any{"component", name}}
}

type scoped struct {
	args []any
}

func (s scoped) With(args ...any) Logger {
	merged := make([]any, 0, len(s.args)+len(args))
	merged = append(merged, s.args...)
	return scoped{args: append(merged, args...)}
}

func (s scoped) Info(msg string, args ...any)  { current().With(s.args...).Info(msg, args...) }
func (s scoped) Debug(msg string, args ...any) { current().With(s.args...).Debug(msg, args...) }
func (s scoped) Error(msg string, args ...any) { current().With(s.args...).Error(msg, args...) }
func (s scoped) Warn(msg string, args ...any)  { current().With(s.args...).Warn(msg, args...) }

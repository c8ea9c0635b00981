// Package log is the process-wide slog setup. Records go to stderr as one
// line each until a full-screen view takes them over with SetCallback.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LevelError LogLevel = "error"
	LevelWarn  LogLevel = "warn"
	LevelInfo  LogLevel = "info"
	LevelDebug LogLevel = "debug"
)

type state struct {
	level    slog.Level
	output   io.Writer
	callback CallbackFunc
	logger   *slog.Logger
}

var (
	mu  sync.RWMutex
	cur = rebuild(state{level: slog.LevelInfo, output: os.Stderr})
)

func rebuild(s state) state {
	if s.callback != nil {
		s.logger = slog.New(NewCallbackHandler(s.callback, s.level))
	} else {
		s.logger = slog.New(NewHandler(s.output, s.level))
	}
	return s
}

func update(fn func(*state)) {
	mu.Lock()
	defer mu.Unlock()
	next := cur
	fn(&next)
	cur = rebuild(next)
}

// SetLevel changes the minimum level of whichever sink is active.
func SetLevel(level LogLevel) error {
	lvl, err := level.slog()
	if err != nil {
		return err
	}
	update(func(s *state) { s.level = lvl })
	return nil
}

// SetOutput sends records to w and drops any callback.
func SetOutput(w io.Writer) {
	update(func(s *state) {
		s.output = w
		s.callback = nil
	})
}

// SetCallback hands every enabled record to fn until SetOutput is called.
func SetCallback(fn CallbackFunc) {
	update(func(s *state) { s.callback = fn })
}

// ParseLevel converts a string to LogLevel
func ParseLevel(s string) (LogLevel, error) {
	level := LogLevel(strings.ToLower(strings.TrimSpace(s)))
	if _, err := level.slog(); err != nil {
		return "", err
	}
	return level, nil
}

func (l LogLevel) slog() (slog.Level, error) {
	switch l {
	case LevelError:
		return slog.LevelError, nil
	case LevelWarn:
		return slog.LevelWarn, nil
	case LevelInfo:
		return slog.LevelInfo, nil
	case LevelDebug:
		return slog.LevelDebug, nil
	}
	return 0, fmt.Errorf("invalid log level: %s", l)
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return cur.logger
}

func Error(msg string, args ...any) { current().Error(msg, args...) }
func Warn(msg string, args ...any)  { current().Warn(msg, args...) }
func Info(msg string, args ...any)  { current().Info(msg, args...) }
func Debug(msg string, args ...any) { current().Debug(msg, args...) }

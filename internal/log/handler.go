package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

// CallbackFunc receives records while a view owns the terminal.
type CallbackFunc func(record slog.Record)

// Handler renders records as "msg key=value ..." and passes them to a sink.
// Attributes added through With come after the record's own.
type Handler struct {
	level  slog.Level
	mu     *sync.Mutex
	attrs  []slog.Attr
	prefix string // dotted group path
	sink   func(slog.Record) error
}

// NewHandler writes one line per record to w, prefixed with the level
// unless it is info.
func NewHandler(w io.Writer, level slog.Level) *Handler {
	return &Handler{
		level: level,
		mu:    &sync.Mutex{},
		sink: func(r slog.Record) error {
			_, err := fmt.Fprintln(w, levelTag(r.Level)+Format(r))
			return err
		},
	}
}

// NewCallbackHandler hands records to fn unformatted.
func NewCallbackHandler(fn CallbackFunc, level slog.Level) *Handler {
	return &Handler{
		level: level,
		mu:    &sync.Mutex{},
		sink: func(r slog.Record) error {
			if fn != nil {
				fn(r)
			}
			return nil
		},
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	if h.prefix != "" {
		grouped := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
		r.Attrs(func(a slog.Attr) bool {
			a.Key = h.prefix + "." + a.Key
			grouped.AddAttrs(a)
			return true
		})
		r = grouped
	}
	if len(h.attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(h.attrs...)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sink(r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + "." + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	if next.prefix != "" {
		next.prefix += "."
	}
	next.prefix += name
	return &next
}

// Format renders a record's message and attributes without the level tag.
func Format(r slog.Record) string {
	var b strings.Builder
	b.WriteString(r.Message)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, "", a)
		return true
	})
	return b.String()
}

func writeAttr(b *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(b, key, ga)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(quote(a.Value.String()))
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " =\"\t\n") {
		return strconv.Quote(s)
	}
	return s
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "[ERROR] "
	case l >= slog.LevelWarn:
		return "[WARN] "
	case l >= slog.LevelInfo:
		return ""
	}
	return "[DEBUG] "
}

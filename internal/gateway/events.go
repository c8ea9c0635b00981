package gateway

import (
	"log/slog"

	"github.com/rail44/roster/internal/log"
)

// Reporter receives every failed request.
type Reporter interface {
	Report(err *RequestFailed)
}

// Events is a Reporter backed by a buffered channel. When the buffer is full
// new events are dropped and logged, so the gateway never blocks on a slow
// consumer.
type Events struct {
	ch chan *RequestFailed
}

// NewEvents creates an event channel with room for size pending failures.
func NewEvents(size int) *Events {
	if size < 1 {
		size = 1
	}
	return &Events{ch: make(chan *RequestFailed, size)}
}

// Report implements Reporter.
func (e *Events) Report(err *RequestFailed) {
	select {
	case e.ch <- err:
	default:
		log.Warn("error channel full, dropping event", slog.String("op", string(err.Op)))
	}
}

// C returns the receive side of the channel.
func (e *Events) C() <-chan *RequestFailed {
	return e.ch
}

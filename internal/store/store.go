// Package store holds the row collection shown by the browser. All changes go
// through a small set of reducer operations, each of which bumps the revision.
package store

import (
	"log/slog"
	"sync"

	"github.com/rail44/roster/internal/log"
	"github.com/rail44/roster/internal/row"
)

var logger = log.Named("store")

// Revision identifies a state of the collection.
type Revision uint64

type opKind int

const (
	opAppend opKind = iota
	opRemove
	opPatch
)

type op struct {
	rev  Revision
	kind opKind
	id   string
	nth  int // occurrence of id to touch; -1 for all (remove only)
	row  row.Row
}

// maxJournal bounds how many local mutations are kept for replay.
const maxJournal = 256

// Collection is an ordered set of rows.
type Collection struct {
	mu      sync.RWMutex
	rows    []row.Row
	rev     Revision
	base    Revision // since of the last accepted replacement
	journal []op
	trimmed Revision // newest revision dropped from the journal
}

// New creates an empty collection.
func New() *Collection {
	return &Collection{}
}

// Begin returns the current revision. Pass it to ReplaceAll when the
// replacement data was requested at this point.
func (c *Collection) Begin() Revision {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rev
}

// ReplaceAll swaps in rows. Local mutations recorded after since are replayed
// on top, so a create that resolved while a list was in flight survives the
// list's arrival. A replacement requested before the last accepted one is
// stale and is dropped; ok reports whether rows were taken.
func (c *Collection) ReplaceAll(rows []row.Row, since Revision) (replayed int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if since < c.base {
		return 0, false
	}
	if since < c.trimmed {
		logger.Warn("local changes older than the journal are not replayed",
			slog.Uint64("since", uint64(since)),
			slog.Uint64("trimmed", uint64(c.trimmed)))
	}

	next := make([]row.Row, len(rows))
	for i, r := range rows {
		next[i] = r.Clone()
	}

	for _, o := range c.journal {
		if o.rev <= since {
			continue
		}
		if o.kind == opAppend {
			// The server may already list the created row.
			if id, has := o.row.ID(); has {
				if i := indexOf(next, id); i >= 0 {
					next[i] = o.row
					replayed++
					continue
				}
			}
		}
		next = apply(next, o)
		replayed++
	}

	c.rows = next
	c.rev++
	c.base = since

	// Later replacements can only start from since or after.
	kept := c.journal[:0]
	for _, o := range c.journal {
		if o.rev > since {
			kept = append(kept, o)
		}
	}
	c.journal = kept
	return replayed, true
}

// Append adds r at the end.
func (c *Collection) Append(r row.Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(op{kind: opAppend, row: r.Clone()})
}

// RemoveByID removes every row whose id is id. It reports whether any row
// matched. The removal is journaled either way, so a list that was in flight
// cannot bring the row back.
func (c *Collection) RemoveByID(id string) bool {
	return c.RemoveAt(id, -1)
}

// RemoveAt removes the nth row (counting from 0) whose id is id; a negative
// nth removes all of them.
func (c *Collection) RemoveAt(id string, nth int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	found := locate(c.rows, id, nth) >= 0
	c.record(op{kind: opRemove, id: id, nth: nth})
	return found
}

// PatchByID merges fields into the first row whose id is id.
func (c *Collection) PatchByID(id string, fields row.Row) bool {
	return c.PatchAt(id, 0, fields)
}

// PatchAt merges fields into the nth row whose id is id. Like RemoveAt it
// journals the patch even when no row matches yet.
func (c *Collection) PatchAt(id string, nth int, fields row.Row) bool {
	if nth < 0 {
		nth = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	found := locate(c.rows, id, nth) >= 0
	c.record(op{kind: opPatch, id: id, nth: nth, row: fields.Clone()})
	return found
}

// Rows returns a copy of the current rows.
func (c *Collection) Rows() []row.Row {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]row.Row, len(c.rows))
	copy(out, c.rows)
	return out
}

// Len returns the number of rows.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}

// record applies o and journals it. Caller holds the lock.
func (c *Collection) record(o op) {
	c.rev++
	o.rev = c.rev
	c.rows = apply(c.rows, o)
	c.journal = append(c.journal, o)
	if drop := len(c.journal) - maxJournal; drop > 0 {
		c.trimmed = c.journal[drop-1].rev
		c.journal = c.journal[drop:]
		logger.Debug("journal full, dropped oldest change", slog.Int("dropped", drop))
	}
}

func apply(rows []row.Row, o op) []row.Row {
	switch o.kind {
	case opAppend:
		return append(rows, o.row)
	case opRemove:
		target := locate(rows, o.id, o.nth)
		if target < 0 {
			return rows
		}
		if o.nth >= 0 {
			return append(rows[:target:target], rows[target+1:]...)
		}
		out := rows[:0:0]
		for _, r := range rows {
			if id, ok := r.ID(); ok && id == o.id {
				continue
			}
			out = append(out, r)
		}
		return out
	case opPatch:
		if i := locate(rows, o.id, o.nth); i >= 0 {
			out := make([]row.Row, len(rows))
			copy(out, rows)
			out[i] = rows[i].Merge(o.row)
			return out
		}
	}
	return rows
}

func indexOf(rows []row.Row, id string) int {
	return locate(rows, id, 0)
}

// locate returns the index of the nth row with the given id; a negative nth
// matches the first.
func locate(rows []row.Row, id string, nth int) int {
	if nth < 0 {
		nth = 0
	}
	for i, r := range rows {
		if rid, ok := r.ID(); ok && rid == id {
			if nth == 0 {
				return i
			}
			nth--
		}
	}
	return -1
}

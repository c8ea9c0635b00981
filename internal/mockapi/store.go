package mockapi

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/rail44/roster/internal/row"
)

//go:embed users.json
var defaultSeed []byte

// DefaultUsers returns the built-in seed records.
func DefaultUsers() []row.Row {
	rows, err := row.DecodeList(defaultSeed)
	if err != nil {
		panic(fmt.Sprintf("mockapi: embedded seed is invalid: %v", err))
	}
	return rows
}

// LoadSeed reads a JSON array of records from path.
func LoadSeed(path string) ([]row.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	rows, err := row.DecodeList(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return rows, nil
}

// Store is the in-memory users collection behind the mock API.
type Store struct {
	mu     sync.RWMutex
	rows   []row.Row
	nextID int64
}

// NewStore creates a store holding rows.
func NewStore(rows []row.Row) *Store {
	s := &Store{}
	s.Reset(rows)
	return s
}

// Reset replaces the whole collection.
func (s *Store) Reset(rows []row.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = make([]row.Row, len(rows))
	s.nextID = 1
	for i, r := range rows {
		s.rows[i] = r.Clone()
		if n, ok := numericID(r); ok && n >= s.nextID {
			s.nextID = n + 1
		}
	}
}

// List returns every record in insertion order.
func (s *Store) List() []row.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]row.Row, len(s.rows))
	for i, r := range s.rows {
		out[i] = r.Clone()
	}
	return out
}

// Get returns the record with id.
func (s *Store) Get(id string) (row.Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.rows[i].Clone(), true
	}
	return nil, false
}

// Create stores r. A missing or already-taken id is replaced by the next free one.
func (s *Store) Create(r row.Row) row.Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	r = r.Clone()
	if r == nil {
		r = row.Row{}
	}
	id, ok := r.ID()
	if !ok || s.index(id) >= 0 {
		r["id"] = s.nextID
	}
	if n, ok := numericID(r); ok && n >= s.nextID {
		s.nextID = n + 1
	}
	s.rows = append(s.rows, r)
	return r.Clone()
}

// Patch merges fields into the record with id. The id itself is never changed.
func (s *Store) Patch(id string, fields row.Row) (row.Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return nil, false
	}
	orig := s.rows[i]["id"]
	merged := s.rows[i].Merge(fields)
	merged["id"] = orig
	s.rows[i] = merged
	return merged.Clone(), true
}

// Replace swaps the record with id for r, keeping the id.
func (s *Store) Replace(id string, r row.Row) (row.Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return nil, false
	}
	next := r.Clone()
	if next == nil {
		next = row.Row{}
	}
	next["id"] = s.rows[i]["id"]
	s.rows[i] = next
	return next.Clone(), true
}

// Delete removes the record with id.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return false
	}
	s.rows = append(s.rows[:i:i], s.rows[i+1:]...)
	return true
}

func (s *Store) index(id string) int {
	for i, r := range s.rows {
		if rid, ok := r.ID(); ok && rid == id {
			return i
		}
	}
	return -1
}

func numericID(r row.Row) (int64, bool) {
	id, ok := r.ID()
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Package table turns a compiled schema and a row collection into a render
// tree of header rows and body rows with per-element keys.
package table

import (
	"fmt"

	"github.com/rail44/roster/internal/row"
	"github.com/rail44/roster/internal/schema"
)

// HeaderCell is one cell in a header row. Span is the number of leaf columns
// it covers, starting at Column.
type HeaderCell struct {
	Key         string
	Label       string
	Column      int
	Span        int
	Placeholder bool
}

// HeaderRow is one level of the header.
type HeaderRow struct {
	Key   string
	Depth int
	Cells []HeaderCell
}

// Cell is one resolved body value.
type Cell struct {
	Key    string
	Column int
	Value  string
}

// BodyRow is the rendered form of one record.
type BodyRow struct {
	Key   string
	Index int
	Row   row.Row
	Cells []Cell
}

// Grid is the full render tree.
type Grid struct {
	Schema  *schema.Schema
	Headers []HeaderRow
	Body    []BodyRow
}

// Build resolves rows against s. The rows are read, never modified.
func Build(s *schema.Schema, rows []row.Row) *Grid {
	g := &Grid{
		Schema:  s,
		Headers: buildHeaders(s),
		Body:    make([]BodyRow, 0, len(rows)),
	}

	seen := make(map[string]int, len(rows))
	for i, r := range rows {
		key := row.Key(r)
		if n := seen[key]; n > 0 {
			seen[key] = n + 1
			key = fmt.Sprintf("%s#%d", key, n)
		} else {
			seen[key] = 1
		}

		br := BodyRow{
			Key:   key,
			Index: i,
			Row:   r,
			Cells: make([]Cell, len(s.Columns)),
		}
		for c, col := range s.Columns {
			br.Cells[c] = Cell{
				Key:    fmt.Sprintf("%s_%d", key, c),
				Column: c,
				Value:  col.Value(r),
			}
		}
		g.Body = append(g.Body, br)
	}
	return g
}

// Leaves returns the number of leaf columns.
func (g *Grid) Leaves() int {
	return len(g.Schema.Columns)
}

// Find returns the index of the body row with the given key, or -1.
func (g *Grid) Find(key string) int {
	for i, br := range g.Body {
		if br.Key == key {
			return i
		}
	}
	return -1
}

func buildHeaders(s *schema.Schema) []HeaderRow {
	rows := make([]HeaderRow, s.Depth)
	for d := range rows {
		rows[d] = HeaderRow{Key: fmt.Sprintf("hg%d", d), Depth: d}
		for _, n := range s.Roots {
			rows[d].Cells = appendHeaderCells(rows[d].Cells, n, d, s.Depth)
		}
	}
	return rows
}

// appendHeaderCells emits the cells node n contributes to header row d.
// Groups sit on their own depth; leaves sit on the bottom row with
// placeholders above them.
func appendHeaderCells(cells []HeaderCell, n *schema.Node, d, depth int) []HeaderCell {
	key := fmt.Sprintf("h%d_%d", d, n.First)
	if n.IsLeaf() {
		if d == depth-1 {
			return append(cells, HeaderCell{Key: key, Label: n.Header, Column: n.First, Span: 1})
		}
		return append(cells, HeaderCell{Key: key, Column: n.First, Span: 1, Placeholder: true})
	}
	if n.Depth == d {
		return append(cells, HeaderCell{Key: key, Label: n.Header, Column: n.First, Span: n.Span})
	}
	for _, c := range n.Children {
		cells = appendHeaderCells(cells, c, d, depth)
	}
	return cells
}

// Package schema compiles declarative column specs into typed accessors.
package schema

import (
	"errors"
	"fmt"

	"github.com/rail44/roster/internal/row"
)

// ColumnSpec describes one column or one group of columns. A leaf sets Path;
// a group sets Columns.
type ColumnSpec struct {
	Header  string       `toml:"header" json:"header"`
	Path    string       `toml:"path" json:"path,omitempty"`
	Columns []ColumnSpec `toml:"columns" json:"columns,omitempty"`
}

// Leaf builds a leaf column spec.
func Leaf(header, path string) ColumnSpec {
	return ColumnSpec{Header: header, Path: path}
}

// Group builds a column group.
func Group(header string, columns ...ColumnSpec) ColumnSpec {
	return ColumnSpec{Header: header, Columns: columns}
}

// Accessor resolves a cell value from a row. ok is false when the value is absent.
type Accessor func(r row.Row) (v any, ok bool)

// Column is a compiled leaf.
type Column struct {
	Header   string
	Path     string
	Index    int
	Accessor Accessor
}

// Value resolves the column against r and formats it as cell text.
func (c Column) Value(r row.Row) string {
	v, ok := c.Accessor(r)
	if !ok {
		return ""
	}
	return row.FormatValue(v)
}

// Node is one compiled ColumnSpec in the header tree.
type Node struct {
	Header   string
	Depth    int
	Span     int // number of leaf descendants; 1 for a leaf
	First    int // index of the first leaf under this node
	Column   *Column
	Children []*Node
}

// IsLeaf reports whether the node is a column rather than a group.
func (n *Node) IsLeaf() bool {
	return n.Column != nil
}

// Schema is the compiled form of a ColumnSpec tree.
type Schema struct {
	Roots   []*Node
	Columns []Column
	Depth   int
}

var ErrEmptySchema = errors.New("schema has no columns")

// Compile validates specs and resolves every leaf path into an accessor.
// Leaves are numbered depth-first, left to right.
func Compile(specs []ColumnSpec) (*Schema, error) {
	if len(specs) == 0 {
		return nil, ErrEmptySchema
	}

	s := &Schema{}
	for i, spec := range specs {
		n, err := s.compile(spec, 0, fmt.Sprintf("[%d]", i))
		if err != nil {
			return nil, err
		}
		s.Roots = append(s.Roots, n)
	}

	// Column pointers were taken while the slice grew; rebind them.
	var rebind func(n *Node)
	rebind = func(n *Node) {
		if n.Column != nil {
			n.Column = &s.Columns[n.Column.Index]
		}
		for _, c := range n.Children {
			rebind(c)
		}
	}
	for _, n := range s.Roots {
		rebind(n)
	}
	return s, nil
}

func (s *Schema) compile(spec ColumnSpec, depth int, where string) (*Node, error) {
	if depth+1 > s.Depth {
		s.Depth = depth + 1
	}

	hasPath := spec.Path != ""
	hasChildren := len(spec.Columns) > 0

	switch {
	case hasPath && hasChildren:
		return nil, fmt.Errorf("column %s %q: set either path or columns, not both", where, spec.Header)
	case !hasPath && !hasChildren:
		return nil, fmt.Errorf("column %s %q: needs a path or child columns", where, spec.Header)
	case hasPath:
		segs := row.SplitPath(spec.Path)
		if len(segs) == 0 {
			return nil, fmt.Errorf("column %s %q: invalid path %q", where, spec.Header, spec.Path)
		}
		col := Column{
			Header:   spec.Header,
			Path:     spec.Path,
			Index:    len(s.Columns),
			Accessor: accessorFor(segs),
		}
		s.Columns = append(s.Columns, col)
		return &Node{
			Header: spec.Header,
			Depth:  depth,
			Span:   1,
			First:  col.Index,
			Column: &col,
		}, nil
	}

	n := &Node{Header: spec.Header, Depth: depth, First: len(s.Columns)}
	for i, child := range spec.Columns {
		c, err := s.compile(child, depth+1, fmt.Sprintf("%s[%d]", where, i))
		if err != nil {
			return nil, err
		}
		n.Span += c.Span
		n.Children = append(n.Children, c)
	}
	return n, nil
}

func accessorFor(segs []string) Accessor {
	// Single-segment paths skip the walk.
	if len(segs) == 1 {
		key := segs[0]
		return func(r row.Row) (any, bool) {
			v, ok := r[key]
			if !ok || v == nil {
				return nil, false
			}
			return v, true
		}
	}
	return func(r row.Row) (any, bool) {
		return r.Lookup(segs)
	}
}

// Headers returns the leaf headers in column order.
func (s *Schema) Headers() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Header
	}
	return out
}

// Values resolves every column for r.
func (s *Schema) Values(r row.Row) []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Value(r)
	}
	return out
}

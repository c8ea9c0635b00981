package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rail44/roster/internal/row"
)

func TestCompileUserColumns(t *testing.T) {
	s, err := Compile(UserColumns())
	require.NoError(t, err)

	assert.Equal(t, 2, s.Depth)
	require.Len(t, s.Columns, 15)
	require.Len(t, s.Roots, 3)

	spans := []int{}
	for _, n := range s.Roots {
		spans = append(spans, n.Span)
	}
	assert.Equal(t, []int{6, 6, 3}, spans)
	assert.Equal(t, []int{0, 6, 12}, []int{s.Roots[0].First, s.Roots[1].First, s.Roots[2].First})

	for i, c := range s.Columns {
		assert.Equal(t, i, c.Index)
	}
	assert.Equal(t, "id", s.Columns[0].Header)
	assert.Equal(t, "Geo.Lat", s.Columns[10].Header)
	assert.Equal(t, "Bs", s.Columns[14].Header)

	// Leaf nodes point into the compiled column slice.
	leaf := s.Roots[1].Children[4]
	require.True(t, leaf.IsLeaf())
	assert.Same(t, &s.Columns[10], leaf.Column)
}

func TestColumnValue(t *testing.T) {
	s, err := Compile(UserColumns())
	require.NoError(t, err)

	r := row.Row{
		"id":      11,
		"name":    "Clementina DuBuque",
		"address": map[string]any{"geo": map[string]any{"lat": "-38.2386"}},
	}

	vals := s.Values(r)
	assert.Equal(t, "11", vals[0])
	assert.Equal(t, "Clementina DuBuque", vals[1])
	assert.Equal(t, "-38.2386", vals[10])
	assert.Equal(t, "", vals[11])
	assert.Equal(t, "", vals[12])

	lon, err := Compile([]ColumnSpec{Leaf("Lon", "address.geo.lon")})
	require.NoError(t, err)
	assert.Equal(t, "", lon.Columns[0].Value(r))
}

func TestCompileRejectsInvalidSpecs(t *testing.T) {
	tests := []struct {
		name  string
		specs []ColumnSpec
	}{
		{"empty", nil},
		{"leaf without path", []ColumnSpec{{Header: "x"}}},
		{"path and children", []ColumnSpec{{Header: "x", Path: "a", Columns: []ColumnSpec{Leaf("b", "b")}}}},
		{"dots only", []ColumnSpec{Leaf("x", "..")}},
		{"nested empty group", []ColumnSpec{Group("g", Group("inner"))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.specs)
			assert.Error(t, err)
		})
	}
}

func TestCompileUnevenDepth(t *testing.T) {
	s, err := Compile([]ColumnSpec{
		Leaf("id", "id"),
		Group("Address", Group("Geo", Leaf("Lat", "address.geo.lat"), Leaf("Lng", "address.geo.lng"))),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, s.Depth)
	assert.Equal(t, []string{"id", "Lat", "Lng"}, s.Headers())
	assert.Equal(t, 2, s.Roots[1].Span)
	assert.Equal(t, 2, s.Roots[1].Children[0].Span)
}

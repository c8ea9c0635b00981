package formatter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rail44/roster/internal/row"
	"github.com/rail44/roster/internal/schema"
	"github.com/rail44/roster/internal/table"
)

func sampleRows(t *testing.T) []row.Row {
	t.Helper()
	rows, err := row.DecodeList([]byte(`[
		{"id": 1, "name": "Leanne Graham", "address": {"city": "Gwenborough"}},
		{"id": 2, "name": "Ervin | Howell"}
	]`))
	require.NoError(t, err)
	return rows
}

func sampleSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Compile([]schema.ColumnSpec{
		schema.Group("Person", schema.Leaf("id", "id"), schema.Leaf("Name", "name")),
		schema.Group("Address", schema.Leaf("City", "address.city")),
	})
	require.NoError(t, err)
	return s
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}

func TestFormatGridAsMarkdown(t *testing.T) {
	g := table.Build(sampleSchema(t), sampleRows(t))

	want := strings.Join([]string{
		"| id | Name | City |",
		"| --- | --- | --- |",
		"| **Person** |  | **Address** |",
		"| 1 | Leanne Graham | Gwenborough |",
		`| 2 | Ervin \| Howell |  |`,
		"",
	}, "\n")
	assert.Equal(t, want, FormatGridAsMarkdown(g))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Format: FormatJSON, Schema: sampleSchema(t)}
	require.NoError(t, p.Print(&buf, sampleRows(t)[:1]))

	assert.JSONEq(t, `[{"id":1,"name":"Leanne Graham","address":{"city":"Gwenborough"}}]`, buf.String())

	buf.Reset()
	require.NoError(t, p.Print(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestPrintYAMLKeepsNumbersUnquoted(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Format: FormatYAML, Schema: sampleSchema(t)}
	require.NoError(t, p.Print(&buf, sampleRows(t)[:1]))

	want := strings.Join([]string{
		"- address:",
		"    city: Gwenborough",
		"  id: 1",
		"  name: Leanne Graham",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{
		Format:  FormatTable,
		Schema:  sampleSchema(t),
		Options: table.RenderOptions{Selected: -1, Plain: true},
	}
	require.NoError(t, p.Print(&buf, sampleRows(t)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[3], "Leanne Graham")
	assert.Contains(t, lines[3], "Gwenborough")
}

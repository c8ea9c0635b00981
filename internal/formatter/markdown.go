package formatter

import (
	"strings"

	"github.com/rail44/roster/internal/table"
)

// FormatGridAsMarkdown renders the grid as a pipe table. Markdown has no
// column spans, so group headers become a leading body row with each label in
// the first column it covers.
func FormatGridAsMarkdown(g *table.Grid) string {
	if g.Leaves() == 0 {
		return ""
	}

	var formatted strings.Builder

	last := len(g.Headers) - 1
	writeRow(&formatted, headerLabels(g.Headers[last], g.Leaves()))
	separators := make([]string, g.Leaves())
	for i := range separators {
		separators[i] = "---"
	}
	writeRow(&formatted, separators)

	for _, hr := range g.Headers[:last] {
		cells := headerLabels(hr, g.Leaves())
		for i, c := range cells {
			if c != "" {
				cells[i] = "**" + c + "**"
			}
		}
		writeRow(&formatted, cells)
	}

	for _, br := range g.Body {
		cells := make([]string, len(br.Cells))
		for i, c := range br.Cells {
			cells[i] = c.Value
		}
		writeRow(&formatted, cells)
	}
	return formatted.String()
}

func headerLabels(hr table.HeaderRow, leaves int) []string {
	cells := make([]string, leaves)
	for _, hc := range hr.Cells {
		if !hc.Placeholder {
			cells[hc.Column] = hc.Label
		}
	}
	return cells
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(escapeCell(c))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

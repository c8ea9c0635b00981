package table

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const separator = " │ "

// styles
var (
	groupStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15"))
	ruleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// RenderOptions controls the terminal rendering of a Grid.
type RenderOptions struct {
	// Selected highlights a body row; -1 for none.
	Selected int
	// MaxCellWidth truncates wider cells with an ellipsis; 0 disables.
	MaxCellWidth int
	// Offset is the first leaf column shown.
	Offset int
	// Width limits the total line width; 0 disables. At least one column is
	// always shown.
	Width int
	// Plain disables all styling.
	Plain bool
}

// Renderer draws a Grid as aligned text.
type Renderer struct {
	opts RenderOptions
}

// NewRenderer creates a renderer with the given options.
func NewRenderer(opts RenderOptions) *Renderer {
	return &Renderer{opts: opts}
}

// ColumnWidths returns the display width of every leaf column: the widest of
// its header and cells, capped by MaxCellWidth, then widened so every group
// label fits over its span.
func (r *Renderer) ColumnWidths(g *Grid) []int {
	widths := make([]int, g.Leaves())
	for i, c := range g.Schema.Columns {
		widths[i] = runewidth.StringWidth(c.Header)
	}
	for _, br := range g.Body {
		for _, c := range br.Cells {
			if w := runewidth.StringWidth(c.Value); w > widths[c.Column] {
				widths[c.Column] = w
			}
		}
	}
	if limit := r.opts.MaxCellWidth; limit > 0 {
		for i, w := range widths {
			if w > limit {
				widths[i] = limit
			}
		}
	}

	for _, hr := range g.Headers {
		for _, hc := range hr.Cells {
			if hc.Placeholder || hc.Span < 2 {
				continue
			}
			need := runewidth.StringWidth(hc.Label)
			if have := spanWidth(widths, hc.Column, hc.Column+hc.Span); need > have {
				widths[hc.Column+hc.Span-1] += need - have
			}
		}
	}
	return widths
}

// Visible returns the half-open range of leaf columns that fit the options.
func (r *Renderer) Visible(widths []int) (from, to int) {
	from = r.opts.Offset
	if from < 0 {
		from = 0
	}
	if from >= len(widths) {
		from = len(widths) - 1
	}
	if from < 0 {
		return 0, 0
	}

	to = from + 1
	if r.opts.Width <= 0 {
		return from, len(widths)
	}
	used := widths[from]
	for to < len(widths) {
		next := used + runewidth.StringWidth(separator) + widths[to]
		if next > r.opts.Width {
			break
		}
		used = next
		to++
	}
	return from, to
}

// Render draws the grid: header rows, a rule, then one line per body row.
func (r *Renderer) Render(g *Grid) string {
	if g.Leaves() == 0 {
		return ""
	}

	widths := r.ColumnWidths(g)
	from, to := r.Visible(widths)

	var lines []string
	for _, hr := range g.Headers {
		group := hr.Depth < len(g.Headers)-1
		style := headerStyle
		if group {
			style = groupStyle
		}
		lines = append(lines, r.style(style, headerLine(hr, widths, from, to, group)))
	}
	lines = append(lines, r.style(ruleStyle, rule(widths, from, to)))

	for i, br := range g.Body {
		parts := make([]string, 0, to-from)
		for c := from; c < to; c++ {
			parts = append(parts, pad(br.Cells[c].Value, widths[c], lipgloss.Left))
		}
		line := strings.Join(parts, separator)
		if i == r.opts.Selected {
			line = r.style(selectedStyle, line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func headerLine(hr HeaderRow, widths []int, from, to int, group bool) string {
	var parts []string
	for _, hc := range hr.Cells {
		lo, hi := hc.Column, hc.Column+hc.Span
		if lo < from {
			lo = from
		}
		if hi > to {
			hi = to
		}
		if lo >= hi {
			continue
		}
		align := lipgloss.Left
		if group {
			align = lipgloss.Center
		}
		parts = append(parts, pad(hc.Label, spanWidth(widths, lo, hi), align))
	}
	return strings.Join(parts, separator)
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if r.opts.Plain {
		return text
	}
	return s.Render(text)
}

func rule(widths []int, from, to int) string {
	parts := make([]string, 0, to-from)
	for c := from; c < to; c++ {
		parts = append(parts, strings.Repeat("─", widths[c]))
	}
	return strings.Join(parts, "─┼─")
}

func spanWidth(widths []int, from, to int) int {
	w := 0
	for c := from; c < to; c++ {
		w += widths[c]
	}
	if n := to - from; n > 1 {
		w += (n - 1) * runewidth.StringWidth(separator)
	}
	return w
}

// pad truncates or pads s to exactly width display cells.
func pad(s string, width int, align lipgloss.Position) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case lipgloss.Center:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}

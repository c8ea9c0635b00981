// Package formatter renders user records for the command line.
package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rail44/roster/internal/row"
	"github.com/rail44/roster/internal/schema"
	"github.com/rail44/roster/internal/table"
)

// Format is an output format name.
type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Formats lists the accepted names in help order.
var Formats = []Format{FormatTable, FormatMarkdown, FormatJSON, FormatYAML}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want one of table, markdown, json, yaml)", s)
}

// Printer writes rows in one format.
type Printer struct {
	Format  Format
	Schema  *schema.Schema
	Options table.RenderOptions
}

// Print writes rows to w.
func (p *Printer) Print(w io.Writer, rows []row.Row) error {
	switch p.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rowsOrEmpty(rows))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(plain(rowsOrEmpty(rows))); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, FormatGridAsMarkdown(table.Build(p.Schema, rows)))
		return err
	case FormatTable, "":
		out := table.NewRenderer(p.Options).Render(table.Build(p.Schema, rows))
		_, err := fmt.Fprintln(w, out)
		return err
	default:
		return fmt.Errorf("unknown output format %q", p.Format)
	}
}

func rowsOrEmpty(rows []row.Row) []row.Row {
	if rows == nil {
		return []row.Row{}
	}
	return rows
}

// plain converts decoded JSON values into types yaml renders unquoted.
func plain(v any) any {
	switch v := v.(type) {
	case []row.Row:
		out := make([]any, len(v))
		for i, r := range v {
			out[i] = plain(r)
		}
		return out
	case row.Row:
		return plain(map[string]any(v))
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = plain(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = plain(e)
		}
		return out
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	default:
		return v
	}
}

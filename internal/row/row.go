// Package row holds the schemaless user record exchanged with the users API.
package row

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Row is an arbitrary JSON object. No schema is enforced; missing fields
// simply resolve to the empty value.
type Row map[string]any

// Decode parses a JSON object into a Row, keeping numbers as json.Number so
// identifiers round-trip without float formatting.
func Decode(data []byte) (Row, error) {
	var r Row
	if err := unmarshal(data, &r); err != nil {
		return nil, err
	}
	return r, nil
}

// DecodeList parses a JSON array of objects.
func DecodeList(data []byte) ([]Row, error) {
	var rows []Row
	if err := unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	return nil
}

// Lookup walks the row one segment at a time. It reports false when any
// segment is absent, null, or not an object.
func (r Row) Lookup(segments []string) (any, bool) {
	var cur any = map[string]any(r)
	for _, seg := range segments {
		obj, ok := asObject(cur)
		if !ok {
			return nil, false
		}
		cur, ok = obj[seg]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// Get resolves a dot-delimited path such as "address.geo.lat".
func (r Row) Get(path string) (any, bool) {
	return r.Lookup(SplitPath(path))
}

// ID returns the record identifier as text.
func (r Row) ID() (string, bool) {
	v, ok := r["id"]
	if !ok || v == nil {
		return "", false
	}
	return FormatValue(v), true
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	return cloneValue(map[string]any(r)).(map[string]any)
}

// Merge returns a copy of r with the top-level fields of patch applied.
func (r Row) Merge(patch Row) Row {
	out := r.Clone()
	if out == nil {
		out = Row{}
	}
	for k, v := range patch {
		out[k] = cloneValue(v)
	}
	return out
}

// Set assigns v at a dot-delimited path, creating intermediate objects.
func (r Row) Set(path string, v any) {
	segs := SplitPath(path)
	if len(segs) == 0 {
		return
	}
	cur := map[string]any(r)
	for _, seg := range segs[:len(segs)-1] {
		next, ok := asObject(cur[seg])
		if !ok {
			next = map[string]any{}
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = v
}

// SplitPath splits a dot path, dropping empty segments.
func SplitPath(path string) []string {
	parts := strings.Split(path, ".")
	segs := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}

// FormatValue renders a resolved value as cell text. Objects and arrays are
// rendered as compact JSON.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

func asObject(v any) (map[string]any, bool) {
	switch o := v.(type) {
	case map[string]any:
		return o, true
	case Row:
		return o, true
	default:
		return nil, false
	}
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = cloneValue(e)
		}
		return out
	case Row:
		return cloneValue(map[string]any(v))
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

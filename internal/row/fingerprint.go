package row

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
)

// Fingerprint computes an FNV-1a checksum of the row's canonical JSON form.
// Map keys are marshaled in sorted order, so equal rows hash equally.
func Fingerprint(r Row) string {
	data, err := json.Marshal(r)
	if err != nil {
		data = []byte(fmt.Sprint(map[string]any(r)))
	}

	h := fnv.New32a()
	h.Write(data)
	return fmt.Sprintf("%08x", h.Sum32())
}

// Key returns an identity for the row that survives collection replacement:
// the id when present, otherwise the content fingerprint.
func Key(r Row) string {
	if id, ok := r.ID(); ok {
		return "id:" + id
	}
	return "fp:" + Fingerprint(r)
}

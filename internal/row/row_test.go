package row

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clementina = `{
  "id": 11,
  "name": "Clementina DuBuque",
  "address": {"city": "Lebsackbury", "geo": {"lat": "-38.2386", "lng": "57.2232"}},
  "company": null
}`

func TestGetResolvesNestedPath(t *testing.T) {
	r, err := Decode([]byte(clementina))
	require.NoError(t, err)

	v, ok := r.Get("address.geo.lat")
	require.True(t, ok)
	assert.Equal(t, "-38.2386", FormatValue(v))

	tests := []string{
		"address.geo.lon",
		"company.name",
		"name.first",
		"missing",
	}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			v, ok := r.Get(path)
			assert.False(t, ok)
			assert.Equal(t, "", FormatValue(v))
		})
	}
}

func TestIDKeepsIntegerForm(t *testing.T) {
	r, err := Decode([]byte(clementina))
	require.NoError(t, err)

	id, ok := r.ID()
	require.True(t, ok)
	assert.Equal(t, "11", id)
	assert.Equal(t, "id:11", Key(r))

	_, ok = Row{"name": "x"}.ID()
	assert.False(t, ok)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "3.5", FormatValue(3.5))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, `{"a":1}`, FormatValue(map[string]any{"a": 1}))
	assert.Equal(t, `[1,"x"]`, FormatValue([]any{1, "x"}))
}

func TestCloneIsDeep(t *testing.T) {
	r, err := Decode([]byte(clementina))
	require.NoError(t, err)

	c := r.Clone()
	c.Set("address.geo.lat", "0")

	v, _ := r.Get("address.geo.lat")
	assert.Equal(t, "-38.2386", v)
}

func TestMergeIsShallowAndCopies(t *testing.T) {
	r := Row{"id": 1, "name": "Leanne", "email": "a@b"}
	m := r.Merge(Row{"name": "Pepito"})

	assert.Equal(t, "Pepito", m["name"])
	assert.Equal(t, "a@b", m["email"])
	assert.Equal(t, "Leanne", r["name"])
}

func TestSetCreatesIntermediateObjects(t *testing.T) {
	r := Row{}
	r.Set("company.name", "Hoeger LLC")
	r.Set("name", "Pepito")

	v, ok := r.Get("company.name")
	require.True(t, ok)
	assert.Equal(t, "Hoeger LLC", v)
	assert.Equal(t, "Pepito", r["name"])
}

func TestFingerprintStableAcrossKeyOrder(t *testing.T) {
	a, err := Decode([]byte(`{"name":"x","email":"y"}`))
	require.NoError(t, err)
	b, err := Decode([]byte(`{"email":"y","name":"x"}`))
	require.NoError(t, err)

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.Len(t, Fingerprint(a), 8)
	assert.Equal(t, "fp:"+Fingerprint(a), Key(a))
}

func TestDecodeListKeepsOrder(t *testing.T) {
	rows, err := DecodeList([]byte(`[{"id":3},{"id":1},{"id":2}]`))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, want := range []string{"3", "1", "2"} {
		id, _ := rows[i].ID()
		assert.Equal(t, want, id)
	}

	_, err = DecodeList([]byte(`{"id":1}`))
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, "users", cfg.Resource)
	assert.Equal(t, "Pepito", cfg.ModifyName)
	assert.Equal(t, "", cfg.Path())
}

func TestLoadSearchesUpward(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), `
endpoint = "http://localhost:8080"
log_level = "debug"
max_cell_width = 12

[create]
payload = "payloads/new.json"
`)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	cfg, err := Load(nested)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Endpoint)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 12, cfg.MaxCellWidth)
	assert.Equal(t, "Pepito", cfg.ModifyName)
	assert.Equal(t, filepath.Join(root, "payloads", "new.json"), cfg.Create.Payload)
	assert.Equal(t, filepath.Join(root, FileName), cfg.Path())
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("ROSTER_TEST_HOST", "http://127.0.0.1:9000")
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, `endpoint = "${ROSTER_TEST_HOST}"`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.Endpoint)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unset env", `endpoint = "${ROSTER_SURELY_UNSET}"`, "ROSTER_SURELY_UNSET is not set"},
		{"not a url", `endpoint = "localhost"`, "endpoint"},
		{"bad level", `log_level = "loud"`, "log_level"},
		{"negative width", `max_cell_width = -1`, "max_cell_width"},
		{"bad toml", `endpoint = `, "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			writeFile(t, path, tt.content)

			_, err := LoadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSchemaFromColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, `
[[columns]]
header = "id"
path = "id"

[[columns]]
header = "Where"

  [[columns.columns]]
  header = "City"
  path = "address.city"

  [[columns.columns]]
  header = "Lat"
  path = "address.geo.lat"
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	s, err := cfg.Schema()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "City", "Lat"}, s.Headers())
	assert.Equal(t, 2, s.Depth)

	def, err := Default().Schema()
	require.NoError(t, err)
	assert.Len(t, def.Columns, 15)
}

func TestCreatePayload(t *testing.T) {
	cfg := Default()
	r, err := cfg.CreatePayload()
	require.NoError(t, err)
	id, _ := r.ID()
	assert.Equal(t, "11", id)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "new.json"), `{"id": 42, "name": "Custom"}`)
	cfg.Create.Payload = filepath.Join(dir, "new.json")
	r, err = cfg.CreatePayload()
	require.NoError(t, err)
	assert.Equal(t, "Custom", r["name"])

	cfg.Create.Payload = filepath.Join(dir, "missing.json")
	_, err = cfg.CreatePayload()
	assert.Error(t, err)
}

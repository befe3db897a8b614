package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 1e-6, c.Epsilon)
	assert.Equal(t, 5*time.Second, c.Timeout())
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
epsilon = 1e-9
tree_depth = 3
eval_timeout = "250ms"
`))
	require.NoError(t, err)
	assert.Equal(t, 1e-9, c.Epsilon)
	assert.Equal(t, 3, c.TreeDepth)
	assert.Equal(t, 250*time.Millisecond, c.Timeout())
	assert.Equal(t, DefaultMeshCells, c.MeshCells, "unset keys keep their defaults")
	assert.Equal(t, DefaultMaxDeviation, c.MaxDeviation)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		invalid bool
	}{
		{"unknown key", `colour = "red"`, false},
		{"bad syntax", `epsilon = `, false},
		{"bad duration", `eval_timeout = "soon"`, false},
		{"zero epsilon", `epsilon = 0.0`, true},
		{"negative depth", `tree_depth = -1`, true},
		{"zero cells", `mesh_cells = 0`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)
			assert.Equal(t, tt.invalid, errors.Is(err, ErrInvalid))
		})
	}
}

func TestLoadAndEncode(t *testing.T) {
	want := Default()
	want.MaxPathDepth = 10
	want.EvalTimeout = Duration(time.Second)

	data, err := want.Encode()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "kerf.toml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

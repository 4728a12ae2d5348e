package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/crossfilter/internal/facet"
)

func TestParseSchema(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    []string
		wantErr string
	}{
		{
			name: "valid",
			yaml: `
dimensions:
  - name: mod2
    modulus: 2
  - name: mod7
    modulus: 7
    label: Weekday
`,
			want: []string{"mod2", "mod7"},
		},
		{
			name:    "no dimensions",
			yaml:    "dimensions: []\n",
			wantErr: "no dimensions",
		},
		{
			name: "duplicate",
			yaml: `
dimensions:
  - {name: a, modulus: 2}
  - {name: a, modulus: 3}
`,
			wantErr: "duplicate name",
		},
		{
			name:    "reserved name",
			yaml:    "dimensions:\n  - {name: number, modulus: 2}\n",
			wantErr: "reserved",
		},
		{
			name:    "zero modulus",
			yaml:    "dimensions:\n  - {name: a, modulus: 0}\n",
			wantErr: "modulus must be positive",
		},
		{
			name:    "unknown key",
			yaml:    "dimensions:\n  - {name: a, modulus: 2, colour: red}\n",
			wantErr: "colour",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseSchema([]byte(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Names())
		})
	}
}

func TestParseSchemaDefaultsLabel(t *testing.T) {
	s, err := ParseSchema([]byte("dimensions:\n  - {name: mod2, modulus: 2}\n"))
	require.NoError(t, err)
	assert.Equal(t, "mod2", s.Dimensions[0].Label)
}

func TestLoadSchema(t *testing.T) {
	s, err := LoadSchema("")
	require.NoError(t, err)
	assert.True(t, s.Equal(facet.DefaultSchema()))

	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dimensions:\n  - {name: mod9, modulus: 9}\n"), 0o600))

	s, err = LoadSchema(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"mod9"}, s.Names())

	_, err = LoadSchema(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

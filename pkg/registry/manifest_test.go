package registry

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifest(t *testing.T) {
	fsys := fstest.MapFS{
		ManifestFile: {Data: []byte(`
[pack]
name = "flutter-firebase"
version = "1.2.0"
description = "Firebase commands"
min_version = "0.3.0"
`)},
	}

	m, err := ParseManifest(fsys)
	require.NoError(t, err)
	assert.Equal(t, "flutter-firebase", m.Pack.Name)
	assert.Equal(t, "0.3.0", m.Pack.MinVersion)
	assert.NoError(t, m.Validate())
}

func TestParseManifestRejectsUnknownKeys(t *testing.T) {
	_, err := ParseManifestData([]byte("[pack]\nname = \"x\"\nversion = \"1.0.0\"\nhomepage = \"https://example.com\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pack.homepage")
}

func TestManifestValidate(t *testing.T) {
	tests := []struct {
		name    string
		info    PackInfo
		wantErr string
	}{
		{name: "ok", info: PackInfo{Name: "p", Version: "1.0.0"}},
		{name: "missing name", info: PackInfo{Version: "1.0.0"}, wantErr: "name is required"},
		{name: "missing version", info: PackInfo{Name: "p"}, wantErr: "version is required"},
		{name: "bad version", info: PackInfo{Name: "p", Version: "one"}, wantErr: "not a semantic version"},
		{name: "bad min version", info: PackInfo{Name: "p", Version: "1.0.0", MinVersion: "soon"}, wantErr: "min_version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&PackManifest{Pack: tt.info}).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCheckCompatibility(t *testing.T) {
	m := &PackManifest{Pack: PackInfo{Name: "p", Version: "1.0.0", MinVersion: "0.5.0"}}

	assert.NoError(t, m.CheckCompatibility("dev"))
	assert.NoError(t, m.CheckCompatibility(""))
	assert.NoError(t, m.CheckCompatibility("0.5.0"))
	assert.NoError(t, m.CheckCompatibility("v1.2.3"))
	assert.NoError(t, m.CheckCompatibility("not-a-version"))

	err := m.CheckCompatibility("0.4.9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires fsk 0.5.0 or newer")
}

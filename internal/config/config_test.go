package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenticgokit/fsk/pkg/registry"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	s := Load(v)
	assert.Equal(t, ".", s.ProjectRoot)
	assert.Equal(t, "console", s.Format)
	assert.Equal(t, registry.DefaultRegistryURL, s.RegistryURL)
	assert.False(t, s.DryRun)
	assert.False(t, s.RunHooks)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("FSK_FORMAT", "json")
	t.Setenv("FSK_DRY_RUN", "true")

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	SetDefaults(v)

	s := Load(v)
	assert.Equal(t, "json", s.Format)
	assert.True(t, s.DryRun)
}

func TestGenerateConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	want := Defaults()
	want.Format = "markdown"
	want.RunHooks = true

	g := NewGenerator()
	require.NoError(t, g.GenerateConfig(want, path, false))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# fsk configuration")
	assert.Contains(t, string(content), `format = "markdown"`)

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	assert.Equal(t, want, Load(v))
}

func TestGenerateConfigRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("format = \"json\"\n"), 0644))

	g := NewGenerator()
	err := g.GenerateConfig(Defaults(), path, false)
	assert.ErrorIs(t, err, ErrConfigExists)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "format = \"json\"\n", string(content))

	require.NoError(t, g.GenerateConfig(Defaults(), path, true))
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `format = "console"`)
}

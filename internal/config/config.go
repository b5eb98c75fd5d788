// Package config maps viper configuration onto typed CLI settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/agenticgokit/fsk/pkg/registry"
)

// Configuration keys shared by flags, environment and the config file.
const (
	KeyDebug       = "debug"
	KeyVerbose     = "verbose"
	KeyProjectRoot = "project_root"
	KeyFormat      = "format"
	KeyDryRun      = "dry_run"
	KeyRunHooks    = "run_hooks"
	KeyInteractive = "interactive"
	KeyTrace       = "trace"
	KeyPackDir     = "pack_dir"
	KeyRegistryURL = "registry_url"
)

// EnvPrefix prefixes environment overrides, e.g. FSK_FORMAT=json.
const EnvPrefix = "FSK"

// FileName is the config file name looked up in the home directory.
const FileName = ".fsk.toml"

// Settings is the resolved CLI configuration.
type Settings struct {
	Debug       bool   `toml:"debug"`
	Verbose     bool   `toml:"verbose"`
	ProjectRoot string `toml:"project_root"`
	Format      string `toml:"format"`
	DryRun      bool   `toml:"dry_run"`
	RunHooks    bool   `toml:"run_hooks"`
	Interactive bool   `toml:"interactive"`
	Trace       bool   `toml:"trace"`
	PackDir     string `toml:"pack_dir"`
	RegistryURL string `toml:"registry_url"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	packDir, err := registry.DefaultCacheDir()
	if err != nil {
		packDir = ""
	}
	return Settings{
		ProjectRoot: ".",
		Format:      "console",
		PackDir:     packDir,
		RegistryURL: registry.DefaultRegistryURL,
	}
}

// SetDefaults registers Defaults on v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeyProjectRoot, d.ProjectRoot)
	v.SetDefault(KeyFormat, d.Format)
	v.SetDefault(KeyPackDir, d.PackDir)
	v.SetDefault(KeyRegistryURL, d.RegistryURL)
}

// Load reads the settings from v.
func Load(v *viper.Viper) Settings {
	return Settings{
		Debug:       v.GetBool(KeyDebug),
		Verbose:     v.GetBool(KeyVerbose),
		ProjectRoot: v.GetString(KeyProjectRoot),
		Format:      v.GetString(KeyFormat),
		DryRun:      v.GetBool(KeyDryRun),
		RunHooks:    v.GetBool(KeyRunHooks),
		Interactive: v.GetBool(KeyInteractive),
		Trace:       v.GetBool(KeyTrace),
		PackDir:     v.GetString(KeyPackDir),
		RegistryURL: v.GetString(KeyRegistryURL),
	}
}

// DefaultPath returns $HOME/.fsk.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

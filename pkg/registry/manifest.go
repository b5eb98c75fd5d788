// Package registry loads command packs and manages the local pack cache.
// Packs come from the embedded builtin pack, Git repositories, local paths and
// the fsk pack index.
package registry

import (
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
)

// ManifestFile is the name of the pack manifest at the root of every pack.
const ManifestFile = "fsk-pack.toml"

// PackManifest represents the fsk-pack.toml file structure.
type PackManifest struct {
	Pack PackInfo `toml:"pack"`
}

// PackInfo contains metadata about a command pack.
type PackInfo struct {
	Name        string `toml:"name"`
	Version     string `toml:"version"`
	Description string `toml:"description"`
	Author      string `toml:"author"`
	License     string `toml:"license"`

	// Compatibility
	MinVersion string `toml:"min_version"`
}

// ParseManifest reads and parses fsk-pack.toml from the root of fsys.
func ParseManifest(fsys fs.FS) (*PackManifest, error) {
	data, err := fs.ReadFile(fsys, ManifestFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifestData(data)
}

// ParseManifestData parses manifest content from bytes.
func ParseManifestData(data []byte) (*PackManifest, error) {
	var manifest PackManifest
	meta, err := toml.Decode(string(data), &manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("failed to parse manifest: unknown key %q", undecoded[0].String())
	}
	return &manifest, nil
}

// Validate checks if the manifest is valid.
func (m *PackManifest) Validate() error {
	if m.Pack.Name == "" {
		return fmt.Errorf("pack name is required")
	}
	if m.Pack.Version == "" {
		return fmt.Errorf("pack version is required")
	}
	if _, err := semver.NewVersion(m.Pack.Version); err != nil {
		return fmt.Errorf("pack version %q is not a semantic version: %w", m.Pack.Version, err)
	}
	if m.Pack.MinVersion != "" {
		if _, err := semver.NewVersion(m.Pack.MinVersion); err != nil {
			return fmt.Errorf("min_version %q is not a semantic version: %w", m.Pack.MinVersion, err)
		}
	}
	return nil
}

// CheckCompatibility reports an error when the running CLI is older than the
// pack's min_version. Development builds are always compatible.
func (m *PackManifest) CheckCompatibility(cliVersion string) error {
	if m.Pack.MinVersion == "" || cliVersion == "" || cliVersion == "dev" {
		return nil
	}
	current, err := semver.NewVersion(cliVersion)
	if err != nil {
		return nil
	}
	constraint, err := semver.NewConstraint(">= " + m.Pack.MinVersion)
	if err != nil {
		return fmt.Errorf("invalid min_version %q: %w", m.Pack.MinVersion, err)
	}
	if !constraint.Check(current) {
		return fmt.Errorf("pack %s requires fsk %s or newer (running %s)", m.Pack.Name, m.Pack.MinVersion, cliVersion)
	}
	return nil
}

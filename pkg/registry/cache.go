package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	VersionLatest = "latest"
)

// CachedPack represents a pack stored in the local cache.
type CachedPack struct {
	Name        string        // Pack name from manifest (e.g., "flutter-firebase")
	Source      string        // Source URL/Path (e.g., "github.com/user/repo")
	Version     string        // Version tag or "latest"
	Description string        // Description from manifest
	LocalPath   string        // Absolute path to the pack in cache
	Manifest    *PackManifest // Parsed manifest
}

// CacheManager handles local storage of packs.
type CacheManager struct {
	BaseDir string // Root cache directory (e.g., ~/.fsk/packs)
}

// DefaultCacheDir returns ~/.fsk/packs.
func DefaultCacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".fsk", "packs"), nil
}

// NewCacheManager creates a new cache manager.
// If baseDir is empty, it defaults to ~/.fsk/packs.
func NewCacheManager(baseDir string) (*CacheManager, error) {
	if baseDir == "" {
		dir, err := DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}

	if err := os.MkdirAll(baseDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", baseDir, err)
	}

	return &CacheManager{BaseDir: baseDir}, nil
}

// GetPath returns the expected local path for a given source and version.
// If version is empty, it uses "latest".
func (c *CacheManager) GetPath(source, version string) string {
	if version == "" {
		version = VersionLatest
	}
	// Keep the source inside the cache directory
	source = filepath.Clean("/" + filepath.FromSlash(source))
	source = strings.TrimPrefix(source, string(filepath.Separator))

	// Example: ~/.fsk/packs/github.com/user/repo/v1.0.0
	return filepath.Join(c.BaseDir, source, version)
}

// List returns all packs currently in the cache, sorted by name.
func (c *CacheManager) List() ([]CachedPack, error) {
	var packs []CachedPack

	// Expected structure: BaseDir/SOURCE.../VERSION/fsk-pack.toml
	err := filepath.WalkDir(c.BaseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != c.BaseDir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != ManifestFile {
			return nil
		}

		dir := filepath.Dir(path)
		manifest, err := ParseManifest(os.DirFS(dir))
		if err != nil {
			// Broken entries are skipped; Load reports them
			return nil
		}
		relPath, err := filepath.Rel(c.BaseDir, dir)
		if err != nil {
			return nil
		}

		packs = append(packs, CachedPack{
			Name:        manifest.Pack.Name,
			Source:      filepath.ToSlash(filepath.Dir(relPath)),
			Version:     filepath.Base(relPath),
			Description: manifest.Pack.Description,
			LocalPath:   dir,
			Manifest:    manifest,
		})
		return filepath.SkipDir
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk cache directory: %w", err)
	}

	sort.Slice(packs, func(i, j int) bool {
		if packs[i].Name != packs[j].Name {
			return packs[i].Name < packs[j].Name
		}
		return packs[i].Source < packs[j].Source
	})

	return packs, nil
}

// Load loads every cached pack.
func (c *CacheManager) Load(cliVersion string) ([]*Pack, error) {
	cached, err := c.List()
	if err != nil {
		return nil, err
	}
	packs := make([]*Pack, 0, len(cached))
	for _, entry := range cached {
		pack, err := LoadPack(os.DirFS(entry.LocalPath), entry.Source+"@"+entry.Version, cliVersion)
		if err != nil {
			return nil, err
		}
		packs = append(packs, pack)
	}
	return packs, nil
}

// Remove deletes a pack from the cache.
// If version is empty, all versions of the source are removed.
func (c *CacheManager) Remove(source, version string) error {
	path := c.GetPath(source, version)

	if version == "" {
		// GetPath appends /latest for an empty version
		path = filepath.Dir(path)
	}
	if path == c.BaseDir || !strings.HasPrefix(path, c.BaseDir) {
		return fmt.Errorf("refusing to remove %s", path)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("pack not found: %s", path)
	}

	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove pack %s: %w", path, err)
	}

	return nil
}

// Clear removes all cached packs.
func (c *CacheManager) Clear() error {
	if err := os.RemoveAll(c.BaseDir); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return os.MkdirAll(c.BaseDir, 0750)
}

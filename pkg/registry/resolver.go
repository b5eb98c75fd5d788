package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	FetcherTypeGit   = "git"
	FetcherTypeLocal = "local"
)

// Resolver resolves pack references to cached packs, fetching them when needed.
type Resolver struct {
	cache    *CacheManager
	fetchers map[string]Fetcher // "git", "local"
	indexURL string
}

// NewResolver creates a new pack resolver. An empty indexURL uses DefaultRegistryURL.
func NewResolver(cache *CacheManager, indexURL string) *Resolver {
	if indexURL == "" {
		indexURL = DefaultRegistryURL
	}
	return &Resolver{
		cache: cache,
		fetchers: map[string]Fetcher{
			FetcherTypeGit:   &GitFetcher{},
			FetcherTypeLocal: &LocalFetcher{},
		},
		indexURL: indexURL,
	}
}

// WithFetcher replaces the fetcher used for a source type.
func (r *Resolver) WithFetcher(kind string, f Fetcher) *Resolver {
	r.fetchers[kind] = f
	return r
}

// Resolve locates a pack, fetching it if necessary, and returns the cached pack.
// Source can be:
// - Git URL: github.com/user/repo or https://github.com/user/repo
// - Versioned: github.com/user/repo@v1.0.0
// - Local path: ./my-pack or /abs/path/to/pack
// - Index name: flutter-firebase
func (r *Resolver) Resolve(ctx context.Context, sourceRef string) (*CachedPack, error) {
	source, version := parseSourceRef(sourceRef)
	isLocal := isLocalPath(source)

	fetcherType, resolvedSource, err := r.resolveFetcherType(ctx, source, isLocal)
	if err != nil {
		return nil, err
	}
	source = resolvedSource

	cacheKey := cacheKeyFor(source, isLocal)
	destPath := r.cache.GetPath(cacheKey, version)

	// Local packs are always refreshed; remote ones are reused from the cache
	if !isLocal {
		if _, err := ParseManifest(os.DirFS(destPath)); err == nil {
			return r.loadFromCache(destPath, cacheKey, version)
		}
	}

	fetcher, ok := r.fetchers[fetcherType]
	if !ok {
		return nil, fmt.Errorf("no fetcher for type %s", fetcherType)
	}
	if err := fetcher.Fetch(ctx, source, version, destPath); err != nil {
		return nil, fmt.Errorf("failed to fetch pack: %w", err)
	}

	return r.loadFromCache(destPath, cacheKey, version)
}

func (r *Resolver) resolveFetcherType(ctx context.Context, source string, isLocal bool) (string, string, error) {
	if isLocal {
		absPath, err := filepath.Abs(source)
		if err == nil {
			source = absPath
		}
		return FetcherTypeLocal, source, nil
	}

	if isGitSource(source) {
		return FetcherTypeGit, source, nil
	}

	return r.resolveFromRegistry(ctx, source)
}

func (r *Resolver) resolveFromRegistry(ctx context.Context, name string) (string, string, error) {
	index, err := FetchIndex(ctx, r.indexURL)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch pack index to resolve '%s': %w", name, err)
	}

	if repoURL, ok := index.Packs[name]; ok {
		return FetcherTypeGit, repoURL, nil
	}

	if stripped, ok := strings.CutPrefix(name, "fsk/"); ok {
		if repoURL, ok := index.Packs[stripped]; ok {
			return FetcherTypeGit, repoURL, nil
		}
		return "", "", fmt.Errorf("pack '%s' (nor '%s') not found in the index", name, stripped)
	}

	return "", "", fmt.Errorf("pack '%s' not found in the index and is not a valid URL or local path", name)
}

func (r *Resolver) loadFromCache(path, source, version string) (*CachedPack, error) {
	manifest, err := ParseManifest(os.DirFS(path))
	if err != nil {
		return nil, fmt.Errorf("invalid pack (missing or invalid %s): %w", ManifestFile, err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pack: %w", err)
	}

	return &CachedPack{
		Name:        manifest.Pack.Name,
		Source:      source,
		Version:     version,
		Description: manifest.Pack.Description,
		LocalPath:   path,
		Manifest:    manifest,
	}, nil
}

// cacheKeyFor maps a source to its directory under the cache.
func cacheKeyFor(source string, isLocal bool) string {
	if isLocal {
		return "local/" + filepath.Base(source)
	}
	key := source
	if i := strings.Index(key, "://"); i >= 0 {
		key = key[i+3:]
	}
	if rest, ok := strings.CutPrefix(key, "git@"); ok {
		key = strings.Replace(rest, ":", "/", 1)
	}
	return strings.TrimSuffix(key, ".git")
}

// parseSourceRef splits "source@version" into "source" and "version".
// An "@" inside scp-style Git sources (git@host:path) is not a version separator.
func parseSourceRef(ref string) (string, string) {
	lastIdx := strings.LastIndex(ref, "@")
	if lastIdx <= 0 {
		return ref, VersionLatest
	}
	// git@github.com:user/repo without a version
	if strings.HasPrefix(ref, "git@") && lastIdx == len("git") {
		return ref, VersionLatest
	}
	version := ref[lastIdx+1:]
	if version == "" || strings.ContainsAny(version, "/:") {
		return ref, VersionLatest
	}
	return ref[:lastIdx], version
}

func isGitSource(s string) bool {
	return strings.Contains(s, "://") ||
		strings.HasPrefix(s, "git@") ||
		strings.HasPrefix(s, "github.com/") ||
		strings.HasPrefix(s, "gitlab.com/") ||
		strings.HasPrefix(s, "bitbucket.org/")
}

func isLocalPath(s string) bool {
	if isGitSource(s) || strings.HasPrefix(s, "fsk/") {
		return false
	}
	return strings.HasPrefix(s, ".") ||
		strings.HasPrefix(s, "/") ||
		strings.HasPrefix(s, "\\") ||
		filepath.IsAbs(s) ||
		strings.Contains(s, string(filepath.Separator))
}

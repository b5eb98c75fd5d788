package registry

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Fetcher defines the interface for fetching packs.
type Fetcher interface {
	// Fetch downloads the pack from source/version to the dest directory.
	Fetch(ctx context.Context, source, version, dest string) error
}

// GitFetcher downloads packs from Git repositories.
type GitFetcher struct {
	// Progress receives clone progress; nil discards it.
	Progress io.Writer
}

// Fetch shallow-clones the repository at the tag named by version, or the default
// branch for "latest".
func (f *GitFetcher) Fetch(ctx context.Context, source, version, dest string) error {
	// git clone fails on a non-empty destination
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("failed to clear destination: %w", err)
	}

	url := source
	if !strings.Contains(url, "://") && !strings.HasPrefix(url, "git@") {
		url = "https://" + url
	}

	cloneOpts := &git.CloneOptions{
		URL:      url,
		Progress: f.Progress,
		Depth:    1,
		Tags:     git.NoTags,
	}
	if version != "" && version != VersionLatest {
		cloneOpts.ReferenceName = plumbing.NewTagReferenceName(version)
		cloneOpts.SingleBranch = true
	}

	if _, err := git.PlainCloneContext(ctx, dest, false, cloneOpts); err != nil {
		_ = os.RemoveAll(dest)
		return fmt.Errorf("git clone failed for %s@%s: %w", url, version, err)
	}

	// The cache keeps pack files only
	if err := os.RemoveAll(filepath.Join(dest, ".git")); err != nil {
		return fmt.Errorf("failed to remove .git directory: %w", err)
	}

	return nil
}

// LocalFetcher copies packs from a local path. Version is ignored.
type LocalFetcher struct{}

// Fetch implements Fetcher for local paths.
func (f *LocalFetcher) Fetch(ctx context.Context, source, version, dest string) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("local source not found: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("local source %s is not a directory", source)
	}
	if _, err := os.Stat(filepath.Join(source, ManifestFile)); err != nil {
		return fmt.Errorf("local source %s has no %s", source, ManifestFile)
	}

	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("failed to clear destination: %w", err)
	}

	return copyDir(ctx, source, dest)
}

// copyDir recursively copies a directory tree, skipping dot directories.
func copyDir(ctx context.Context, src, dst string) error {
	src = filepath.Clean(src)
	dst = filepath.Clean(dst)

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		dstPath := filepath.Join(dst, relPath)

		if d.IsDir() {
			if relPath != "." && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return os.MkdirAll(dstPath, 0750)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if err := copyFile(path, dstPath, info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to copy file %s: %w", path, err)
		}
		return nil
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

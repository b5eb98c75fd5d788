package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// PubspecFile marks the root of a Flutter project.
const PubspecFile = "pubspec.yaml"

// ErrNoProject is returned when no pubspec.yaml is found above a directory.
var ErrNoProject = errors.New("no pubspec.yaml found")

// FileExists checks if a file exists
func FileExists(fsys afero.Fs, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(fsys afero.Fs, path string) bool {
	ok, err := afero.DirExists(fsys, path)
	return err == nil && ok
}

// EnsureDir ensures a directory exists, creating it if necessary
func EnsureDir(fsys afero.Fs, path string) error {
	if DirExists(fsys, path) {
		return nil
	}
	return fsys.MkdirAll(path, 0755)
}

// WriteFile writes content to a file, creating directories if needed
func WriteFile(fsys afero.Fs, path string, content []byte) error {
	if err := EnsureDir(fsys, filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return afero.WriteFile(fsys, path, content, 0644)
}

// IsEmptyDir checks if a directory is empty
func IsEmptyDir(fsys afero.Fs, path string) (bool, error) {
	return afero.IsEmpty(fsys, path)
}

// FindProjectRoot walks up from start to the closest directory holding a
// pubspec.yaml and returns it as an absolute path.
func FindProjectRoot(fsys afero.Fs, start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if FileExists(fsys, filepath.Join(dir, PubspecFile)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w in %s or any parent directory", ErrNoProject, start)
		}
		dir = parent
	}
}

// ProjectFs returns a filesystem rooted at the project directory. Paths given
// to it are relative to root and cannot escape it.
func ProjectFs(root string) (afero.Fs, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	return afero.NewBasePathFs(afero.NewOsFs(), root), nil
}

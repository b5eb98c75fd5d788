// Package project reads the Flutter project a command runs in.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/iancoleman/strcase"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/agenticgokit/fsk/internal/utils"
	"github.com/agenticgokit/fsk/pkg/scaffold"
)

// Pubspec is the part of pubspec.yaml fsk cares about.
type Pubspec struct {
	Name            string         `yaml:"name"`
	Description     string         `yaml:"description"`
	Dependencies    map[string]any `yaml:"dependencies"`
	DevDependencies map[string]any `yaml:"dev_dependencies"`
}

// Project is a Flutter project on an afero.Fs rooted at its directory.
type Project struct {
	root    string
	pubspec Pubspec
	found   bool
}

var _ scaffold.Project = (*Project)(nil)

// Open reads pubspec.yaml from fsys. root is the project directory on disk and
// names the package when pubspec.yaml is missing or has no name. A missing
// pubspec.yaml is not an error; an unparsable one is.
func Open(fsys afero.Fs, root string) (*Project, error) {
	p := &Project{root: root}

	data, err := afero.ReadFile(fsys, utils.PubspecFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return p, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", utils.PubspecFile, err)
	}

	if err := yaml.Unmarshal(data, &p.pubspec); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", utils.PubspecFile, err)
	}
	p.found = true
	return p, nil
}

// Found reports whether the project has a pubspec.yaml.
func (p *Project) Found() bool { return p.found }

// Pubspec returns the parsed pubspec.yaml.
func (p *Project) Pubspec() Pubspec { return p.pubspec }

// PackageName returns the Dart package name from pubspec.yaml, or the snake case
// of the project directory name.
func (p *Project) PackageName() string {
	if p.pubspec.Name != "" {
		return p.pubspec.Name
	}
	abs, err := filepath.Abs(p.root)
	if err != nil {
		abs = p.root
	}
	return strcase.ToSnake(filepath.Base(abs))
}

// Bindings returns the project-level template bindings.
func (p *Project) Bindings() map[string]string {
	return map[string]string{
		scaffold.BindingPackageName: p.PackageName(),
		scaffold.BindingProjectRoot: p.root,
	}
}

// HasDependency reports whether name is declared under dependencies or
// dev_dependencies.
func (p *Project) HasDependency(name string) bool {
	if _, ok := p.pubspec.Dependencies[name]; ok {
		return true
	}
	_, ok := p.pubspec.DevDependencies[name]
	return ok
}

// Dependencies lists every declared dependency name, sorted.
func (p *Project) Dependencies() []string {
	var names []string
	for name := range p.pubspec.Dependencies {
		names = append(names, name)
	}
	for name := range p.pubspec.DevDependencies {
		if _, dup := p.pubspec.Dependencies[name]; !dup {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

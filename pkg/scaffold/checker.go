package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// Action is what the writer will do with a planned file.
type Action string

const (
	ActionCreate       Action = "create"
	ActionOverwrite    Action = "overwrite"
	ActionConflict     Action = "conflict"
	ActionUpdateBarrel Action = "update-barrel"
	ActionUnchanged    Action = "unchanged"
)

// PlannedFile is a rendered file classified against the target filesystem.
type PlannedFile struct {
	Path   string
	Source string
	Action Action
	// Content is what will be written: the rendered body, or the merged barrel.
	Content string
	// Added lists the lines appended to a barrel file.
	Added  []string
	Reason string
}

// Plan is the classified output of the checker.
type Plan struct {
	Files    []PlannedFile
	Warnings []string
	Errors   Errors
}

// HasErrors reports whether the plan contains errors or conflicts.
func (p *Plan) HasErrors() bool {
	if len(p.Errors) > 0 {
		return true
	}
	for _, f := range p.Files {
		if f.Action == ActionConflict {
			return true
		}
	}
	return false
}

// OverwritePolicy says whether existing non-barrel files may be replaced.
type OverwritePolicy struct {
	Allowed bool
	// Flag names the argument that enables overwriting, for error hints.
	Flag string
}

// Project answers questions about the target project that are not plain file checks.
type Project interface {
	Bindings() map[string]string
	HasDependency(name string) bool
}

// Checker classifies rendered files and evaluates preconditions against an afero.Fs
// rooted at the project directory.
type Checker struct {
	fs      afero.Fs
	project Project
}

// NewChecker creates a checker. project may be nil, in which case every dependency
// precondition fails.
func NewChecker(fsys afero.Fs, project Project) *Checker {
	return &Checker{fs: fsys, project: project}
}

// Plan classifies each rendered file. Conflicts are recorded in the plan; the
// returned error is reserved for failures reading the filesystem.
func (c *Checker) Plan(files []RenderedFile, policy OverwritePolicy) (*Plan, error) {
	plan := &Plan{Files: make([]PlannedFile, 0, len(files))}
	for _, f := range files {
		planned, err := c.classify(f, policy)
		if err != nil {
			return nil, err
		}
		if planned.Action == ActionConflict {
			plan.Errors = append(plan.Errors, &FileAlreadyExistsError{Path: f.Path, OverwriteArg: policy.Flag})
		}
		plan.Files = append(plan.Files, planned)
	}
	return plan, nil
}

func (c *Checker) classify(f RenderedFile, policy OverwritePolicy) (PlannedFile, error) {
	planned := PlannedFile{Path: f.Path, Source: f.Source, Content: f.Content}

	info, err := c.fs.Stat(filepath.FromSlash(f.Path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		planned.Action = ActionCreate
		if f.Barrel {
			planned.Content, planned.Added = MergeBarrel("", f.Content)
		}
		return planned, nil
	case err != nil:
		return planned, fmt.Errorf("stat %s: %w", f.Path, err)
	}

	if info.IsDir() {
		planned.Action = ActionConflict
		planned.Reason = "a directory exists at this path"
		return planned, nil
	}

	if f.Barrel {
		existing, err := afero.ReadFile(c.fs, filepath.FromSlash(f.Path))
		if err != nil {
			return planned, fmt.Errorf("read %s: %w", f.Path, err)
		}
		merged, added := MergeBarrel(string(existing), f.Content)
		if len(added) == 0 {
			planned.Action = ActionUnchanged
			planned.Content = string(existing)
			planned.Reason = "already exports every line"
			return planned, nil
		}
		planned.Action = ActionUpdateBarrel
		planned.Content = merged
		planned.Added = added
		return planned, nil
	}

	if policy.Allowed {
		planned.Action = ActionOverwrite
		return planned, nil
	}
	planned.Action = ActionConflict
	planned.Reason = "file already exists"
	return planned, nil
}

// CheckPreconditions evaluates rendered preconditions. Failed error-severity
// preconditions are returned as errors; failed warnings as messages.
func (c *Checker) CheckPreconditions(ps []Precondition) (warnings []string, errs Errors, err error) {
	for _, p := range ps {
		ok, err := c.holds(p)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			continue
		}
		desc := p.Description
		if desc == "" {
			desc = describePrecondition(p)
		}
		if p.Severity == SeverityWarn {
			msg := desc
			if p.Hint != "" {
				msg = fmt.Sprintf("%s (%s)", desc, p.Hint)
			}
			warnings = append(warnings, msg)
			continue
		}
		errs = append(errs, &PreconditionNotMetError{Description: desc, Suggestion: p.Hint})
	}
	return warnings, errs, nil
}

func (c *Checker) holds(p Precondition) (bool, error) {
	switch p.Kind {
	case PreconditionDirExists:
		return afero.DirExists(c.fs, filepath.FromSlash(p.Target))
	case PreconditionFileExists:
		info, err := c.fs.Stat(filepath.FromSlash(p.Target))
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return !info.IsDir(), nil
	case PreconditionDependency:
		return c.project != nil && c.project.HasDependency(p.Target), nil
	}
	return false, fmt.Errorf("unknown precondition kind %q", p.Kind)
}

func describePrecondition(p Precondition) string {
	switch p.Kind {
	case PreconditionDirExists:
		return fmt.Sprintf("directory %s must exist", p.Target)
	case PreconditionFileExists:
		return fmt.Sprintf("file %s must exist", p.Target)
	case PreconditionDependency:
		return fmt.Sprintf("pubspec.yaml must declare %s", p.Target)
	}
	return p.Target
}

// Existing returns the paths that exist as regular files, in input order.
func (c *Checker) Existing(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := c.fs.Stat(filepath.FromSlash(p))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
		}
	}
	return out, nil
}

package scaffold

import (
	"fmt"
	"maps"
	"slices"
)

// Registry holds the loaded commands. It is read-only once built and safe for
// concurrent readers.
type Registry struct {
	commands map[string]*Command
}

// NewRegistry validates and indexes commands. A command with the same name as an
// earlier one replaces it, so later packs override earlier ones.
func NewRegistry(commands ...*Command) (*Registry, error) {
	r := &Registry{commands: make(map[string]*Command, len(commands))}
	for _, cmd := range commands {
		if cmd == nil {
			continue
		}
		if err := cmd.Validate(); err != nil {
			if cmd.Source != "" {
				return nil, fmt.Errorf("%s: %w", cmd.Source, err)
			}
			return nil, err
		}
		r.commands[cmd.Spec.Name] = cmd
	}
	return r, nil
}

// Command returns the command with the given name
func (r *Registry) Command(name string) (*Command, error) {
	cmd, ok := r.commands[name]
	if !ok {
		return nil, &UnknownCommandError{Name: name}
	}
	return cmd, nil
}

// Commands returns every command sorted by name
func (r *Registry) Commands() []*Command {
	names := slices.Sorted(maps.Keys(r.commands))
	out := make([]*Command, 0, len(names))
	for _, name := range names {
		out = append(out, r.commands[name])
	}
	return out
}

// Len returns the number of registered commands
func (r *Registry) Len() int { return len(r.commands) }

// Variant returns the template set key selected by the resolved options.
func (r *Registry) Variant(cmd *Command, opts *ResolvedOptions) string {
	if cmd.Spec.Selector == "" {
		return DefaultVariant
	}
	return opts.String(cmd.Spec.Selector)
}

// Set returns the template set of a command variant.
func (r *Registry) Set(command, key string) (TemplateSet, error) {
	cmd, err := r.Command(command)
	if err != nil {
		return TemplateSet{}, err
	}
	set, ok := cmd.Sets[key]
	if !ok {
		return TemplateSet{}, &UnknownTemplateVariantError{Command: command, Key: key}
	}
	return set, nil
}

// Lookup returns, in order, the files of a variant whose conditions hold.
func (r *Registry) Lookup(command, key string, opts *ResolvedOptions) ([]TemplateFile, error) {
	set, err := r.Set(command, key)
	if err != nil {
		return nil, err
	}
	files := make([]TemplateFile, 0, len(set.Files))
	for _, f := range set.Files {
		if AllHold(f.When, opts) {
			files = append(files, f)
		}
	}
	return files, nil
}

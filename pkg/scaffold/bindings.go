package scaffold

import (
	"maps"
	"slices"
)

// Project binding names supplied by the project context.
const (
	BindingPackageName = "package_name"
	BindingProjectRoot = "project_root"
)

// Bindings maps placeholder names to substituted values. It is never mutated after Bind.
type Bindings struct {
	values map[string]string
}

// NewBindings copies values into a Bindings set.
func NewBindings(values map[string]string) Bindings {
	return Bindings{values: maps.Clone(values)}
}

// Get returns the value bound to name.
func (b Bindings) Get(name string) (string, bool) {
	v, ok := b.values[name]
	return v, ok
}

// Has reports whether name is bound.
func (b Bindings) Has(name string) bool {
	_, ok := b.values[name]
	return ok
}

// Map returns a copy of every binding.
func (b Bindings) Map() map[string]string {
	return maps.Clone(b.values)
}

// Names returns the bound names, sorted.
func (b Bindings) Names() []string {
	return slices.Sorted(maps.Keys(b.values))
}

// Len returns the number of bindings.
func (b Bindings) Len() int { return len(b.values) }

// Bind derives the placeholder bindings of an invocation.
//
// For a positional argument named "widget" with value "UserAvatar" it binds
// widget=user_avatar, Widget=UserAvatar, widgetCamel=userAvatar, widgetKebab=user-avatar,
// widgetTitle="User Avatar" and widgetRaw=UserAvatar. Every other argument is bound
// under its name with dashes replaced by underscores. Project bindings fill in names
// the command does not bind itself.
func Bind(spec CommandSpec, opts *ResolvedOptions, project map[string]string) (Bindings, error) {
	values := make(map[string]string, len(spec.Arguments)+8)

	for _, arg := range spec.Arguments {
		values[BindingName(arg.Name)] = opts.Format(arg.Name)
	}

	if primary, ok := spec.Primary(); ok {
		raw := opts.Primary()
		if err := CheckIdentifier(raw, primary.Convention); err != nil {
			return Bindings{}, err
		}
		for name, value := range NameForms(BindingName(primary.Name), raw) {
			values[name] = value
		}
	}

	for name, value := range project {
		if _, taken := values[name]; !taken {
			values[name] = value
		}
	}

	return Bindings{values: values}, nil
}

// NameForms returns the case variants of value keyed by the names derived from base.
func NameForms(base, value string) map[string]string {
	snake := PascalToSnake(value)
	camelBase := ToCamel(base)
	return map[string]string{
		base:                snake,
		SnakeToPascal(base): SnakeToPascal(snake),
		camelBase + "Camel": ToCamel(snake),
		camelBase + "Kebab": ToKebab(snake),
		camelBase + "Title": ToTitle(snake),
		camelBase + "Raw":   value,
	}
}

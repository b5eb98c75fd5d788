package registry

import (
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/agenticgokit/fsk/pkg/scaffold"
)

// TemplatesDir holds the template bodies referenced by command documents.
const TemplatesDir = "templates"

// CommandDocument is the TOML form of a command under commands/.
type CommandDocument struct {
	Name          string                 `toml:"name"`
	Description   string                 `toml:"description"`
	Agents        []string               `toml:"agents"`
	Selector      string                 `toml:"selector"`
	Overwrite     string                 `toml:"overwrite"`
	Migrate       string                 `toml:"migrate"`
	Hooks         []string               `toml:"hooks"`
	NextSteps     []string               `toml:"next_steps"`
	Arguments     []ArgumentDocument     `toml:"arguments"`
	Preconditions []PreconditionDocument `toml:"preconditions"`
	Files         []FileDocument         `toml:"files"`
	Sets          map[string]SetDocument `toml:"sets"`
}

// ArgumentDocument declares one argument.
type ArgumentDocument struct {
	Name        string   `toml:"name"`
	Short       string   `toml:"short"`
	Kind        string   `toml:"kind"` // "string", "boolean", "choice", "list"
	Description string   `toml:"description"`
	Required    bool     `toml:"required"`
	Positional  bool     `toml:"positional"`
	Default     any      `toml:"default"`
	Allowed     []string `toml:"allowed"`
	Examples    []string `toml:"examples"`
	Convention  string   `toml:"convention"` // "snake", "pascal"
}

// PreconditionDocument declares a filesystem or dependency check.
type PreconditionDocument struct {
	Kind        string   `toml:"kind"`
	Target      string   `toml:"target"`
	Description string   `toml:"description"`
	Hint        string   `toml:"hint"`
	Severity    string   `toml:"severity"`
	When        []string `toml:"when"`
}

// FileDocument declares a template file. Body is inline; Template names a file
// under templates/.
type FileDocument struct {
	Path     string   `toml:"path"`
	Template string   `toml:"template"`
	Body     string   `toml:"body"`
	When     []string `toml:"when"`
	Barrel   bool     `toml:"barrel"`
	// Variants restricts a top-level file to some template sets.
	Variants []string `toml:"variants"`
}

// SetDocument holds what is specific to one variant.
type SetDocument struct {
	Files         []FileDocument         `toml:"files"`
	Preconditions []PreconditionDocument `toml:"preconditions"`
	Hooks         []string               `toml:"hooks"`
	NextSteps     []string               `toml:"next_steps"`
}

// ParseCommandDocument validates data against the command schema and decodes it.
func ParseCommandDocument(file string, data []byte) (*CommandDocument, error) {
	if err := ValidateCommandDocument(file, data); err != nil {
		return nil, err
	}
	var doc CommandDocument
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	return &doc, nil
}

// Build turns the document into an engine command. Template bodies are read from
// fsys, the pack root.
func (d *CommandDocument) Build(fsys fs.FS, source string) (*scaffold.Command, error) {
	spec := scaffold.CommandSpec{
		Name:        d.Name,
		Description: d.Description,
		Agents:      slices.Clone(d.Agents),
		Selector:    d.Selector,
		Overwrite:   d.Overwrite,
		Migrate:     d.Migrate,
	}
	for _, a := range d.Arguments {
		arg, err := a.build()
		if err != nil {
			return nil, fmt.Errorf("command %q: %w", d.Name, err)
		}
		spec.Arguments = append(spec.Arguments, arg)
	}

	cmd := &scaffold.Command{
		Spec:      spec,
		Sets:      make(map[string]scaffold.TemplateSet),
		Hooks:     slices.Clone(d.Hooks),
		NextSteps: slices.Clone(d.NextSteps),
		Source:    source,
	}

	var err error
	if cmd.Preconditions, err = buildPreconditions(d.Preconditions); err != nil {
		return nil, fmt.Errorf("command %q: %w", d.Name, err)
	}

	keys := []string{scaffold.DefaultVariant}
	if d.Selector != "" {
		// Every selector value gets a set; declared sets outside the selector's
		// values are kept so validation reports them.
		keys = keys[:0]
		if selector, ok := spec.Argument(d.Selector); ok {
			keys = append(keys, selector.Allowed...)
		}
		for key := range d.Sets {
			if !slices.Contains(keys, key) {
				keys = append(keys, key)
			}
		}
		slices.Sort(keys)
	} else if len(d.Sets) > 0 {
		return nil, fmt.Errorf("command %q: sets require a selector", d.Name)
	}

	for _, f := range d.Files {
		for _, v := range f.Variants {
			if !slices.Contains(keys, v) {
				return nil, fmt.Errorf("command %q: file %s names unknown variant %q", d.Name, f.Path, v)
			}
		}
	}

	for _, key := range keys {
		setDoc := d.Sets[key]
		set := scaffold.TemplateSet{
			Key:       key,
			Hooks:     slices.Clone(setDoc.Hooks),
			NextSteps: slices.Clone(setDoc.NextSteps),
		}
		for _, f := range d.Files {
			if len(f.Variants) > 0 && !slices.Contains(f.Variants, key) {
				continue
			}
			tf, err := f.build(fsys)
			if err != nil {
				return nil, fmt.Errorf("command %q: %w", d.Name, err)
			}
			set.Files = append(set.Files, tf)
		}
		for _, f := range setDoc.Files {
			if len(f.Variants) > 0 {
				return nil, fmt.Errorf("command %q: file %s in set %q cannot restrict variants", d.Name, f.Path, key)
			}
			tf, err := f.build(fsys)
			if err != nil {
				return nil, fmt.Errorf("command %q: %w", d.Name, err)
			}
			set.Files = append(set.Files, tf)
		}
		if set.Preconditions, err = buildPreconditions(setDoc.Preconditions); err != nil {
			return nil, fmt.Errorf("command %q: set %q: %w", d.Name, key, err)
		}
		cmd.Sets[key] = set
	}

	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (a ArgumentDocument) build() (scaffold.ArgumentSpec, error) {
	arg := scaffold.ArgumentSpec{
		Name:        a.Name,
		Short:       a.Short,
		Kind:        scaffold.ArgumentKind(a.Kind),
		Description: a.Description,
		Required:    a.Required,
		Positional:  a.Positional,
		Allowed:     slices.Clone(a.Allowed),
		Examples:    slices.Clone(a.Examples),
		Convention:  scaffold.Convention(a.Convention),
	}
	if a.Default != nil {
		value, err := defaultString(a.Default)
		if err != nil {
			return arg, fmt.Errorf("argument %q: %w", a.Name, err)
		}
		arg.Default = value
		arg.HasDefault = true
	}
	return arg, nil
}

// defaultString converts a TOML default to its textual form.
func defaultString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return "", fmt.Errorf("list default items must be strings, got %T", item)
			}
			items = append(items, s)
		}
		return strings.Join(items, ","), nil
	case []string:
		return strings.Join(val, ","), nil
	}
	return "", fmt.Errorf("unsupported default of type %T", v)
}

func buildPreconditions(docs []PreconditionDocument) ([]scaffold.Precondition, error) {
	out := make([]scaffold.Precondition, 0, len(docs))
	for _, d := range docs {
		severity := scaffold.Severity(d.Severity)
		if severity == "" {
			severity = scaffold.SeverityError
		}
		when, err := parseConditions(d.When)
		if err != nil {
			return nil, fmt.Errorf("precondition %q: %w", d.Target, err)
		}
		out = append(out, scaffold.Precondition{
			Kind:        scaffold.PreconditionKind(d.Kind),
			Target:      d.Target,
			Description: d.Description,
			Hint:        d.Hint,
			Severity:    severity,
			When:        when,
		})
	}
	return out, nil
}

func (f FileDocument) build(fsys fs.FS) (scaffold.TemplateFile, error) {
	when, err := parseConditions(f.When)
	if err != nil {
		return scaffold.TemplateFile{}, fmt.Errorf("file %s: %w", f.Path, err)
	}
	tf := scaffold.TemplateFile{
		Path:   f.Path,
		Body:   f.Body,
		When:   when,
		Barrel: f.Barrel,
		Source: f.Path,
	}
	if f.Template != "" {
		if f.Body != "" {
			return tf, fmt.Errorf("file %s: set either template or body, not both", f.Path)
		}
		name := path.Join(TemplatesDir, f.Template)
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return tf, fmt.Errorf("file %s: read template: %w", f.Path, err)
		}
		tf.Body = string(data)
		tf.Source = name
	}
	return tf, nil
}

func parseConditions(exprs []string) ([]scaffold.Condition, error) {
	var out []scaffold.Condition
	for _, expr := range exprs {
		c, err := scaffold.ParseCondition(expr)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

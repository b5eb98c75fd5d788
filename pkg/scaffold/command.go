package scaffold

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ArgumentKind is the declared type of a command argument.
type ArgumentKind string

const (
	KindString  ArgumentKind = "string"
	KindBoolean ArgumentKind = "boolean"
	KindChoice  ArgumentKind = "choice"
	KindList    ArgumentKind = "list"
)

// Convention is the naming rule a primary argument must follow.
type Convention string

const (
	ConventionNone   Convention = ""
	ConventionSnake  Convention = "snake"
	ConventionPascal Convention = "pascal"
)

// ArgumentSpec declares one argument of a command.
type ArgumentSpec struct {
	Name        string
	Short       string
	Kind        ArgumentKind
	Description string
	Required    bool
	Positional  bool
	Default     string
	HasDefault  bool
	Allowed     []string
	Examples    []string
	Convention  Convention
}

// Validate checks the declaration invariants of the argument.
func (a ArgumentSpec) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("argument name is required")
	}
	if a.Name[0] < 'a' || a.Name[0] > 'z' {
		return fmt.Errorf("argument %q: name must start with a lower-case letter", a.Name)
	}
	for _, r := range a.Name {
		if (r < 'a' || r > 'z') && !isASCIIDigit(r) && r != '-' && r != '_' {
			return fmt.Errorf("argument %q: name may only contain lower-case letters, digits, '-' and '_'", a.Name)
		}
	}
	if len(a.Short) > 1 {
		return fmt.Errorf("argument %q: short alias must be a single character", a.Name)
	}

	switch a.Kind {
	case KindString, KindBoolean, KindChoice, KindList:
	default:
		return fmt.Errorf("argument %q: unknown kind %q", a.Name, a.Kind)
	}

	if a.Required && a.HasDefault {
		return fmt.Errorf("argument %q: a required argument cannot have a default", a.Name)
	}

	if a.Kind == KindChoice {
		if len(a.Allowed) == 0 {
			return fmt.Errorf("argument %q: choice arguments need allowed values", a.Name)
		}
		if a.HasDefault && !slices.Contains(a.Allowed, a.Default) {
			return fmt.Errorf("argument %q: default %q is not one of %s", a.Name, a.Default, strings.Join(a.Allowed, ", "))
		}
	} else if len(a.Allowed) > 0 && a.Kind != KindList {
		return fmt.Errorf("argument %q: allowed values only apply to choice and list arguments", a.Name)
	}

	if a.Kind == KindList && len(a.Allowed) > 0 && a.HasDefault {
		for _, item := range splitList(a.Default) {
			if !slices.Contains(a.Allowed, item) {
				return fmt.Errorf("argument %q: default item %q is not one of %s", a.Name, item, strings.Join(a.Allowed, ", "))
			}
		}
	}

	if a.Kind == KindBoolean && a.HasDefault {
		if _, err := strconv.ParseBool(a.Default); err != nil {
			return fmt.Errorf("argument %q: boolean default %q is not a bool", a.Name, a.Default)
		}
	}

	if a.Positional && a.Kind != KindString {
		return fmt.Errorf("argument %q: the positional argument must be a string", a.Name)
	}

	switch a.Convention {
	case ConventionNone, ConventionSnake, ConventionPascal:
	default:
		return fmt.Errorf("argument %q: unknown naming convention %q", a.Name, a.Convention)
	}
	if a.Convention != ConventionNone && !a.Positional {
		return fmt.Errorf("argument %q: naming conventions only apply to the positional argument", a.Name)
	}

	return nil
}

// CommandSpec is the declared interface of a scaffolding command.
type CommandSpec struct {
	Name        string
	Description string
	Arguments   []ArgumentSpec
	// Agents are advisory references passed through to the report untouched.
	Agents []string
	// Selector names the choice argument whose value picks the template set.
	Selector string
	// Overwrite names a boolean argument that allows replacing existing files.
	Overwrite string
	// Migrate names a choice argument holding the variant being migrated away from.
	Migrate string
}

// Primary returns the positional argument, if the command declares one.
func (c CommandSpec) Primary() (ArgumentSpec, bool) {
	for _, arg := range c.Arguments {
		if arg.Positional {
			return arg, true
		}
	}
	return ArgumentSpec{}, false
}

// Argument returns the argument with the given name.
func (c CommandSpec) Argument(name string) (ArgumentSpec, bool) {
	for _, arg := range c.Arguments {
		if arg.Name == name {
			return arg, true
		}
	}
	return ArgumentSpec{}, false
}

// Validate checks the command declaration and every argument in it.
func (c CommandSpec) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("command name is required")
	}

	names := make(map[string]bool, len(c.Arguments))
	shorts := make(map[string]bool)
	bindingKeys := make(map[string]string)
	positional := 0
	for _, arg := range c.Arguments {
		if err := arg.Validate(); err != nil {
			return fmt.Errorf("command %q: %w", c.Name, err)
		}
		if names[arg.Name] {
			return fmt.Errorf("command %q: duplicate argument %q", c.Name, arg.Name)
		}
		names[arg.Name] = true

		key := BindingName(arg.Name)
		if other, ok := bindingKeys[key]; ok {
			return fmt.Errorf("command %q: arguments %q and %q bind to the same name %q", c.Name, other, arg.Name, key)
		}
		bindingKeys[key] = arg.Name

		if arg.Short != "" {
			if shorts[arg.Short] {
				return fmt.Errorf("command %q: duplicate short alias -%s", c.Name, arg.Short)
			}
			shorts[arg.Short] = true
		}
		if arg.Positional {
			positional++
		}
	}
	if positional > 1 {
		return fmt.Errorf("command %q: only one positional argument is allowed", c.Name)
	}

	if c.Selector != "" {
		arg, ok := c.Argument(c.Selector)
		if !ok || arg.Kind != KindChoice {
			return fmt.Errorf("command %q: selector %q must name a choice argument", c.Name, c.Selector)
		}
	}
	if c.Overwrite != "" {
		arg, ok := c.Argument(c.Overwrite)
		if !ok || arg.Kind != KindBoolean {
			return fmt.Errorf("command %q: overwrite %q must name a boolean argument", c.Name, c.Overwrite)
		}
	}
	if c.Migrate != "" {
		if c.Selector == "" {
			return fmt.Errorf("command %q: migrate requires a selector", c.Name)
		}
		arg, ok := c.Argument(c.Migrate)
		if !ok || arg.Kind != KindChoice {
			return fmt.Errorf("command %q: migrate %q must name a choice argument", c.Name, c.Migrate)
		}
		if arg.HasDefault {
			return fmt.Errorf("command %q: migrate argument %q cannot have a default", c.Name, c.Migrate)
		}
		selector, _ := c.Argument(c.Selector)
		for _, v := range arg.Allowed {
			if !slices.Contains(selector.Allowed, v) {
				return fmt.Errorf("command %q: migrate value %q is not a variant of %q", c.Name, v, c.Selector)
			}
		}
	}

	return nil
}

// PreconditionKind is the filesystem fact a precondition checks.
type PreconditionKind string

const (
	PreconditionDirExists  PreconditionKind = "dir_exists"
	PreconditionFileExists PreconditionKind = "file_exists"
	PreconditionDependency PreconditionKind = "dependency"
)

// Severity decides whether a failed precondition stops the invocation.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
)

// Precondition is a fact about the target project that must hold before writing.
// Target, Description and Hint are templates rendered with the invocation bindings.
type Precondition struct {
	Kind        PreconditionKind
	Target      string
	Description string
	Hint        string
	Severity    Severity
	When        []Condition
}

// Validate checks the precondition declaration.
func (p Precondition) Validate() error {
	switch p.Kind {
	case PreconditionDirExists, PreconditionFileExists, PreconditionDependency:
	default:
		return fmt.Errorf("unknown precondition kind %q", p.Kind)
	}
	if p.Target == "" {
		return fmt.Errorf("%s precondition needs a target", p.Kind)
	}
	switch p.Severity {
	case SeverityError, SeverityWarn:
	default:
		return fmt.Errorf("unknown precondition severity %q", p.Severity)
	}
	return nil
}

// Command is a loaded command: its declaration plus the template sets it renders.
type Command struct {
	Spec          CommandSpec
	Sets          map[string]TemplateSet
	Preconditions []Precondition
	Hooks         []string
	NextSteps     []string
	// Source identifies the pack the command was loaded from.
	Source string
}

// Validate checks the command declaration, the closed variant enumeration and
// every condition against the argument schema.
func (c *Command) Validate() error {
	if err := c.Spec.Validate(); err != nil {
		return err
	}

	if c.Spec.Selector == "" {
		if len(c.Sets) != 1 {
			return fmt.Errorf("command %q: commands without a selector need exactly one template set", c.Spec.Name)
		}
		if _, ok := c.Sets[DefaultVariant]; !ok {
			return fmt.Errorf("command %q: commands without a selector use the %q template set", c.Spec.Name, DefaultVariant)
		}
	} else {
		selector, _ := c.Spec.Argument(c.Spec.Selector)
		for _, v := range selector.Allowed {
			if _, ok := c.Sets[v]; !ok {
				return fmt.Errorf("command %q: no template set for %s=%s", c.Spec.Name, c.Spec.Selector, v)
			}
		}
		for key := range c.Sets {
			if !slices.Contains(selector.Allowed, key) {
				return fmt.Errorf("command %q: template set %q is not a value of %q", c.Spec.Name, key, c.Spec.Selector)
			}
		}
	}

	for _, p := range c.Preconditions {
		if err := c.validatePrecondition(p); err != nil {
			return err
		}
	}

	for key, set := range c.Sets {
		if set.Key != key {
			return fmt.Errorf("command %q: template set %q is registered as %q", c.Spec.Name, set.Key, key)
		}
		for _, f := range set.Files {
			if f.Path == "" {
				return fmt.Errorf("command %q: set %q has a template without a path", c.Spec.Name, key)
			}
			for _, cond := range f.When {
				if err := cond.Check(c.Spec); err != nil {
					return fmt.Errorf("command %q: template %s: %w", c.Spec.Name, f.Source, err)
				}
			}
		}
		for _, p := range set.Preconditions {
			if err := c.validatePrecondition(p); err != nil {
				return err
			}
		}
	}

	return nil
}

func (c *Command) validatePrecondition(p Precondition) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("command %q: %w", c.Spec.Name, err)
	}
	for _, cond := range p.When {
		if err := cond.Check(c.Spec); err != nil {
			return fmt.Errorf("command %q: precondition %q: %w", c.Spec.Name, p.Target, err)
		}
	}
	return nil
}

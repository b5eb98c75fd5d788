package scaffold

import (
	"slices"
	"strconv"
	"strings"
)

type optionValue struct {
	kind  ArgumentKind
	text  string
	flag  bool
	items []string
}

// ResolvedOptions holds the typed argument values of one invocation.
// Every declared argument has a value; unsupplied ones carry their default or the zero value.
type ResolvedOptions struct {
	command  string
	primary  string
	names    []string
	values   map[string]optionValue
	supplied map[string]bool
}

// Command returns the name of the command the options were resolved for.
func (o *ResolvedOptions) Command() string { return o.command }

// Primary returns the value of the positional argument.
func (o *ResolvedOptions) Primary() string { return o.primary }

// String returns the value of a string or choice argument.
func (o *ResolvedOptions) String(name string) string { return o.values[name].text }

// Bool returns the value of a boolean argument.
func (o *ResolvedOptions) Bool(name string) bool { return o.values[name].flag }

// List returns a copy of the items of a list argument.
func (o *ResolvedOptions) List(name string) []string {
	return slices.Clone(o.values[name].items)
}

// Supplied reports whether the argument appeared in the invocation.
func (o *ResolvedOptions) Supplied(name string) bool { return o.supplied[name] }

// Has reports whether the command declares the argument.
func (o *ResolvedOptions) Has(name string) bool {
	_, ok := o.values[name]
	return ok
}

// Names returns the argument names in declaration order.
func (o *ResolvedOptions) Names() []string { return slices.Clone(o.names) }

// Format returns the textual form of an argument: strings verbatim, booleans as
// "true" or "false" and lists joined with commas.
func (o *ResolvedOptions) Format(name string) string {
	v := o.values[name]
	switch v.kind {
	case KindBoolean:
		return strconv.FormatBool(v.flag)
	case KindList:
		return strings.Join(v.items, ",")
	default:
		return v.text
	}
}

// Resolve parses invocation tokens against the command's arguments.
// All input errors are collected and returned together as Errors, in token order.
func Resolve(spec CommandSpec, tokens []string) (*ResolvedOptions, error) {
	r := &resolver{
		spec:     spec,
		values:   make(map[string]optionValue, len(spec.Arguments)),
		supplied: make(map[string]bool, len(spec.Arguments)),
	}
	r.parse(tokens)
	r.applyDefaults()
	r.checkMigration()

	if len(r.errs) > 0 {
		return nil, r.errs
	}

	opts := &ResolvedOptions{
		command:  spec.Name,
		values:   r.values,
		supplied: r.supplied,
	}
	for _, arg := range spec.Arguments {
		opts.names = append(opts.names, arg.Name)
	}
	if primary, ok := spec.Primary(); ok {
		opts.primary = r.values[primary.Name].text
	}
	return opts, nil
}

type resolver struct {
	spec     CommandSpec
	values   map[string]optionValue
	supplied map[string]bool
	errs     Errors
}

func (r *resolver) parse(tokens []string) {
	primary, hasPrimary := r.spec.Primary()
	positionalOnly := false

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if positionalOnly || !isFlagToken(tok) {
			if tok == "" && !positionalOnly {
				continue
			}
			if hasPrimary && !r.supplied[primary.Name] {
				r.set(primary, tok)
				continue
			}
			r.errs = append(r.errs, &UnexpectedArgumentError{Value: tok})
			continue
		}

		if tok == "--" {
			positionalOnly = true
			continue
		}

		var (
			arg    ArgumentSpec
			found  bool
			label  string
			value  string
			hasVal bool
		)
		if strings.HasPrefix(tok, "--") {
			label, value, hasVal = strings.Cut(tok[2:], "=")
			arg, found = r.spec.Argument(label)
		} else {
			label, value, hasVal = strings.Cut(tok[1:], "=")
			arg, found = r.byShort(label)
			if !found {
				label = "-" + label
			}
		}

		if !found {
			r.errs = append(r.errs, &UnknownArgumentError{Name: label})
			// Swallow the value of an unknown flag so it is not reported twice.
			if !hasVal && i+1 < len(tokens) && !isFlagToken(tokens[i+1]) {
				i++
			}
			continue
		}

		if arg.Kind == KindBoolean {
			if !hasVal {
				r.set(arg, "true")
				continue
			}
			if _, err := strconv.ParseBool(value); err != nil {
				r.errs = append(r.errs, &InvalidChoiceError{Argument: arg.Name, Value: value, Allowed: []string{"true", "false"}})
				continue
			}
			r.set(arg, value)
			continue
		}

		if !hasVal {
			if i+1 >= len(tokens) || isFlagToken(tokens[i+1]) {
				r.errs = append(r.errs, &MissingFlagValueError{Name: arg.Name})
				continue
			}
			i++
			value = tokens[i]
		}
		r.set(arg, value)
	}
}

func (r *resolver) byShort(short string) (ArgumentSpec, bool) {
	if short == "" {
		return ArgumentSpec{}, false
	}
	for _, arg := range r.spec.Arguments {
		if arg.Short == short {
			return arg, true
		}
	}
	return ArgumentSpec{}, false
}

func (r *resolver) set(arg ArgumentSpec, raw string) {
	v, ok := r.coerce(arg, raw)
	if !ok {
		return
	}
	if arg.Kind == KindList && r.supplied[arg.Name] {
		prev := r.values[arg.Name]
		v.items = append(prev.items, v.items...)
	}
	r.values[arg.Name] = v
	r.supplied[arg.Name] = true
}

func (r *resolver) coerce(arg ArgumentSpec, raw string) (optionValue, bool) {
	v := optionValue{kind: arg.Kind}
	switch arg.Kind {
	case KindBoolean:
		v.flag, _ = strconv.ParseBool(raw)
	case KindChoice:
		if !slices.Contains(arg.Allowed, raw) {
			r.errs = append(r.errs, &InvalidChoiceError{Argument: arg.Name, Value: raw, Allowed: arg.Allowed})
			return v, false
		}
		v.text = raw
	case KindList:
		v.items = splitList(raw)
		if len(arg.Allowed) > 0 {
			valid := true
			for _, item := range v.items {
				if !slices.Contains(arg.Allowed, item) {
					r.errs = append(r.errs, &InvalidChoiceError{Argument: arg.Name, Value: item, Allowed: arg.Allowed})
					valid = false
				}
			}
			if !valid {
				return v, false
			}
		}
	default:
		v.text = raw
	}
	return v, true
}

func (r *resolver) applyDefaults() {
	for _, arg := range r.spec.Arguments {
		if r.supplied[arg.Name] {
			continue
		}
		if arg.Required {
			if !r.rejected(arg.Name) {
				r.errs = append(r.errs, &MissingRequiredArgumentError{Name: arg.Name})
			}
			continue
		}
		v := optionValue{kind: arg.Kind}
		if arg.HasDefault {
			switch arg.Kind {
			case KindBoolean:
				v.flag, _ = strconv.ParseBool(arg.Default)
			case KindList:
				v.items = splitList(arg.Default)
			default:
				v.text = arg.Default
			}
		}
		r.values[arg.Name] = v
	}
}

// rejected reports whether a value for the argument was supplied but failed validation.
func (r *resolver) rejected(name string) bool {
	for _, err := range r.errs {
		if choice, ok := err.(*InvalidChoiceError); ok && choice.Argument == name {
			return true
		}
	}
	return false
}

// checkMigration rejects migrating from the variant being generated.
func (r *resolver) checkMigration() {
	if r.spec.Migrate == "" || r.spec.Selector == "" || !r.supplied[r.spec.Migrate] {
		return
	}
	from := r.values[r.spec.Migrate].text
	to, ok := r.values[r.spec.Selector]
	if !ok || from != to.text {
		return
	}
	migrate, _ := r.spec.Argument(r.spec.Migrate)
	allowed := make([]string, 0, len(migrate.Allowed))
	for _, v := range migrate.Allowed {
		if v != to.text {
			allowed = append(allowed, v)
		}
	}
	r.errs = append(r.errs, &InvalidChoiceError{Argument: r.spec.Migrate, Value: from, Allowed: allowed})
}

func isFlagToken(tok string) bool {
	return len(tok) > 1 && tok[0] == '-'
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

package scaffold

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// SampleProjectBindings are the project bindings used when verifying a registry.
var SampleProjectBindings = map[string]string{
	BindingPackageName: "sample_app",
	BindingProjectRoot: ".",
}

// VerifyRegistry renders every template, precondition, hook and next step of every
// command variant with sample bindings and returns all template errors found.
//
// Samples come from argument examples. Every boolean is switched on and every list
// carries all of its examples, and each file is rendered regardless of its
// conditions, so a clean result means no binding the command can produce is missing.
func VerifyRegistry(reg *Registry) error {
	renderer := NewRenderer()
	var errs Errors
	for _, cmd := range reg.Commands() {
		for _, key := range slices.Sorted(maps.Keys(cmd.Sets)) {
			for _, err := range verifyVariant(renderer, cmd, key) {
				errs = append(errs, fmt.Errorf("%s [%s]: %w", cmd.Spec.Name, key, err))
			}
		}
	}
	return errs.ErrorOrNil()
}

func verifyVariant(renderer *Renderer, cmd *Command, key string) []error {
	opts, err := Resolve(cmd.Spec, SampleTokens(cmd.Spec, key))
	if err != nil {
		return Flatten(err)
	}
	b, err := Bind(cmd.Spec, opts, SampleProjectBindings)
	if err != nil {
		return []error{err}
	}

	set := cmd.Sets[key]
	var errs []error
	collect := func(err error) {
		errs = append(errs, Flatten(err)...)
	}

	if _, err := renderer.RenderFiles(set.Files, b); err != nil {
		collect(err)
	}
	if _, err := renderer.RenderPreconditions(concat(cmd.Preconditions, set.Preconditions), nil, b); err != nil {
		collect(err)
	}
	if _, err := renderer.RenderLines("hooks", concat(cmd.Hooks, set.Hooks), b); err != nil {
		collect(err)
	}
	if _, err := renderer.RenderLines("next steps", concat(cmd.NextSteps, set.NextSteps), b); err != nil {
		collect(err)
	}
	return errs
}

// SampleTokens builds an invocation that selects variant key and sets every option.
func SampleTokens(spec CommandSpec, key string) []string {
	var tokens []string
	for _, arg := range spec.Arguments {
		switch {
		case arg.Positional:
			tokens = append(tokens, samplePrimary(arg))
		case arg.Name == spec.Selector:
			tokens = append(tokens, "--"+arg.Name+"="+key)
		case arg.Name == spec.Migrate:
			for _, v := range arg.Allowed {
				if v != key {
					tokens = append(tokens, "--"+arg.Name+"="+v)
					break
				}
			}
		case arg.Kind == KindBoolean:
			tokens = append(tokens, "--"+arg.Name)
		case arg.Kind == KindList:
			items := arg.Examples
			if len(items) == 0 {
				items = arg.Allowed
			}
			if len(items) == 0 {
				items = []string{"sample"}
			}
			tokens = append(tokens, "--"+arg.Name+"="+strings.Join(items, ","))
		case arg.Kind == KindChoice:
			value := arg.Default
			if !arg.HasDefault {
				value = arg.Allowed[0]
			}
			tokens = append(tokens, "--"+arg.Name+"="+value)
		default:
			value := "sample"
			if len(arg.Examples) > 0 {
				value = arg.Examples[0]
			} else if arg.HasDefault && arg.Default != "" {
				value = arg.Default
			}
			tokens = append(tokens, "--"+arg.Name+"="+value)
		}
	}
	return tokens
}

func samplePrimary(arg ArgumentSpec) string {
	for _, example := range arg.Examples {
		if CheckIdentifier(example, arg.Convention) == nil {
			return example
		}
	}
	if arg.Convention == ConventionPascal {
		return "SampleName"
	}
	return "sample_name"
}

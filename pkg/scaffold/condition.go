package scaffold

import (
	"fmt"
	"slices"
	"strings"
)

// Operator is the comparison a Condition applies.
type Operator string

const (
	OpSet       Operator = ""
	OpNotSet    Operator = "!"
	OpEquals    Operator = "=="
	OpNotEquals Operator = "!="
	OpContains  Operator = "contains"
)

// Condition is a predicate over resolved options that gates a template file or precondition.
type Condition struct {
	Argument string
	Op       Operator
	Value    string
}

// ParseCondition parses one of "name", "!name", "name == value", "name != value"
// or "name contains value".
func ParseCondition(expr string) (Condition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Condition{}, fmt.Errorf("empty condition")
	}

	if rest, ok := strings.CutPrefix(expr, "!"); ok && !strings.HasPrefix(rest, "=") {
		return newCondition(expr, rest, OpNotSet, "")
	}
	for _, op := range []Operator{OpNotEquals, OpEquals} {
		if left, right, ok := strings.Cut(expr, string(op)); ok {
			return newCondition(expr, left, op, right)
		}
	}
	if left, right, ok := strings.Cut(expr, " "+string(OpContains)+" "); ok {
		return newCondition(expr, left, OpContains, right)
	}
	return newCondition(expr, expr, OpSet, "")
}

func newCondition(expr, name string, op Operator, value string) (Condition, error) {
	name = strings.TrimSpace(name)
	value = strings.Trim(strings.TrimSpace(value), `"'`)
	if name == "" || strings.ContainsAny(name, " \t=!") {
		return Condition{}, fmt.Errorf("invalid condition %q: bad argument name", expr)
	}
	if op != OpSet && op != OpNotSet && value == "" {
		return Condition{}, fmt.Errorf("invalid condition %q: missing value", expr)
	}
	return Condition{Argument: name, Op: op, Value: value}, nil
}

// MustParseConditions parses every expression and panics on the first error.
func MustParseConditions(exprs ...string) []Condition {
	conds := make([]Condition, 0, len(exprs))
	for _, expr := range exprs {
		c, err := ParseCondition(expr)
		if err != nil {
			panic(err)
		}
		conds = append(conds, c)
	}
	return conds
}

func (c Condition) String() string {
	switch c.Op {
	case OpSet:
		return c.Argument
	case OpNotSet:
		return "!" + c.Argument
	default:
		return fmt.Sprintf("%s %s %s", c.Argument, c.Op, c.Value)
	}
}

// Check type-checks the condition against the command's arguments.
func (c Condition) Check(spec CommandSpec) error {
	arg, ok := spec.Argument(c.Argument)
	if !ok {
		return fmt.Errorf("condition %q references unknown argument %q", c, c.Argument)
	}

	switch c.Op {
	case OpSet, OpNotSet:
		if arg.Kind != KindBoolean {
			return fmt.Errorf("condition %q needs a boolean argument, %q is %s", c, c.Argument, arg.Kind)
		}
	case OpEquals, OpNotEquals:
		if arg.Kind != KindString && arg.Kind != KindChoice {
			return fmt.Errorf("condition %q needs a string or choice argument, %q is %s", c, c.Argument, arg.Kind)
		}
		if arg.Kind == KindChoice && !slices.Contains(arg.Allowed, c.Value) {
			return fmt.Errorf("condition %q compares against %q, which is not one of %s", c, c.Value, strings.Join(arg.Allowed, ", "))
		}
	case OpContains:
		if arg.Kind != KindList {
			return fmt.Errorf("condition %q needs a list argument, %q is %s", c, c.Argument, arg.Kind)
		}
		if len(arg.Allowed) > 0 && !slices.Contains(arg.Allowed, c.Value) {
			return fmt.Errorf("condition %q tests for %q, which is not one of %s", c, c.Value, strings.Join(arg.Allowed, ", "))
		}
	default:
		return fmt.Errorf("unknown condition operator %q", c.Op)
	}
	return nil
}

// Holds evaluates the condition against resolved options.
func (c Condition) Holds(opts *ResolvedOptions) bool {
	switch c.Op {
	case OpSet:
		return opts.Bool(c.Argument)
	case OpNotSet:
		return !opts.Bool(c.Argument)
	case OpEquals:
		return opts.String(c.Argument) == c.Value
	case OpNotEquals:
		return opts.String(c.Argument) != c.Value
	case OpContains:
		return slices.Contains(opts.List(c.Argument), c.Value)
	}
	return false
}

// AllHold reports whether every condition holds. An empty list always holds.
func AllHold(conds []Condition, opts *ResolvedOptions) bool {
	for _, c := range conds {
		if !c.Holds(opts) {
			return false
		}
	}
	return true
}

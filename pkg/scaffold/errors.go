package scaffold

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory groups engine errors by who is expected to fix them.
type ErrorCategory string

const (
	// CategoryInput covers invocation mistakes: bad flags, names or values.
	CategoryInput ErrorCategory = "input"
	// CategoryTemplate covers defects in a command pack.
	CategoryTemplate ErrorCategory = "template"
	// CategoryFilesystem covers conflicts and unmet preconditions in the target project.
	CategoryFilesystem ErrorCategory = "filesystem"
)

// Error is implemented by every error the engine reports.
type Error interface {
	error
	Category() ErrorCategory
}

// Hinter is implemented by errors that carry a suggested fix.
type Hinter interface {
	Hint() string
}

// UnknownCommandError indicates that no pack defines the requested command.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Name)
}

func (e *UnknownCommandError) Category() ErrorCategory { return CategoryInput }

// MissingRequiredArgumentError indicates a required argument was not supplied.
type MissingRequiredArgumentError struct {
	Name string
}

func (e *MissingRequiredArgumentError) Error() string {
	return fmt.Sprintf("missing required argument %q", e.Name)
}

func (e *MissingRequiredArgumentError) Category() ErrorCategory { return CategoryInput }

// InvalidChoiceError indicates a value outside the allowed set of a choice argument.
type InvalidChoiceError struct {
	Argument string
	Value    string
	Allowed  []string
}

func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("invalid value %q for --%s (allowed: %s)", e.Value, e.Argument, strings.Join(e.Allowed, ", "))
}

func (e *InvalidChoiceError) Category() ErrorCategory { return CategoryInput }

// UnknownArgumentError indicates a flag the command does not declare.
type UnknownArgumentError struct {
	Name string
}

func (e *UnknownArgumentError) Error() string {
	return fmt.Sprintf("unknown argument %q", e.Name)
}

func (e *UnknownArgumentError) Category() ErrorCategory { return CategoryInput }

// MissingFlagValueError indicates a value flag given without a value.
type MissingFlagValueError struct {
	Name string
}

func (e *MissingFlagValueError) Error() string {
	return fmt.Sprintf("flag --%s requires a value", e.Name)
}

func (e *MissingFlagValueError) Category() ErrorCategory { return CategoryInput }

// UnexpectedArgumentError indicates a positional token beyond the primary argument.
type UnexpectedArgumentError struct {
	Value string
}

func (e *UnexpectedArgumentError) Error() string {
	return fmt.Sprintf("unexpected argument %q", e.Value)
}

func (e *UnexpectedArgumentError) Category() ErrorCategory { return CategoryInput }

// InvalidIdentifierError indicates a primary argument that breaks its naming convention.
type InvalidIdentifierError struct {
	Value      string
	Convention Convention
	Reason     string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier %q: %s", e.Value, e.Reason)
}

func (e *InvalidIdentifierError) Category() ErrorCategory { return CategoryInput }

// UnknownTemplateVariantError indicates a template set key the command does not define.
type UnknownTemplateVariantError struct {
	Command string
	Key     string
}

func (e *UnknownTemplateVariantError) Error() string {
	return fmt.Sprintf("command %q has no template variant %q", e.Command, e.Key)
}

func (e *UnknownTemplateVariantError) Category() ErrorCategory { return CategoryTemplate }

// UnresolvedPlaceholderError indicates a template referencing a binding that does not exist.
type UnresolvedPlaceholderError struct {
	Name string
	File string
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("unresolved placeholder %q in %s", e.Name, e.File)
}

func (e *UnresolvedPlaceholderError) Category() ErrorCategory { return CategoryTemplate }

// TemplateError wraps a parse or execution failure of a template.
type TemplateError struct {
	File  string
	Cause error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.File, e.Cause)
}

func (e *TemplateError) Category() ErrorCategory { return CategoryTemplate }

func (e *TemplateError) Unwrap() error { return e.Cause }

// InvalidTargetPathError indicates a rendered path that is absolute or escapes the project.
type InvalidTargetPathError struct {
	Path string
	File string
}

func (e *InvalidTargetPathError) Error() string {
	return fmt.Sprintf("template %s renders invalid target path %q", e.File, e.Path)
}

func (e *InvalidTargetPathError) Category() ErrorCategory { return CategoryTemplate }

// DuplicateTargetError indicates two templates rendering to the same path.
type DuplicateTargetError struct {
	Path    string
	Sources []string
}

func (e *DuplicateTargetError) Error() string {
	return fmt.Sprintf("path %q is produced by more than one template (%s)", e.Path, strings.Join(e.Sources, ", "))
}

func (e *DuplicateTargetError) Category() ErrorCategory { return CategoryTemplate }

// FileAlreadyExistsError indicates a target path that exists and may not be overwritten.
type FileAlreadyExistsError struct {
	Path         string
	OverwriteArg string
}

func (e *FileAlreadyExistsError) Error() string {
	return fmt.Sprintf("file already exists: %s", e.Path)
}

func (e *FileAlreadyExistsError) Category() ErrorCategory { return CategoryFilesystem }

func (e *FileAlreadyExistsError) Hint() string {
	if e.OverwriteArg != "" {
		return fmt.Sprintf("choose another name or pass --%s to overwrite", e.OverwriteArg)
	}
	return "choose another name or remove the existing file"
}

// PreconditionNotMetError indicates a filesystem fact the command requires does not hold.
type PreconditionNotMetError struct {
	Description string
	Suggestion  string
}

func (e *PreconditionNotMetError) Error() string {
	return fmt.Sprintf("precondition not met: %s", e.Description)
}

func (e *PreconditionNotMetError) Category() ErrorCategory { return CategoryFilesystem }

func (e *PreconditionNotMetError) Hint() string { return e.Suggestion }

// Errors is an ordered list of errors reported together.
type Errors []error

func (e Errors) Error() string {
	lines := make([]string, 0, len(e))
	for _, err := range e {
		lines = append(lines, err.Error())
	}
	return strings.Join(lines, "\n")
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e Errors) Unwrap() []error { return e }

// ErrorOrNil returns nil for an empty list.
func (e Errors) ErrorOrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Flatten returns the leaf errors of err, expanding Errors lists.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}
	var list Errors
	if errors.As(err, &list) {
		out := make([]error, 0, len(list))
		for _, e := range list {
			out = append(out, Flatten(e)...)
		}
		return out
	}
	return []error{err}
}

// CategoryOf returns the category of the first engine error found in err's tree.
func CategoryOf(err error) ErrorCategory {
	var engineErr Error
	if errors.As(err, &engineErr) {
		return engineErr.Category()
	}
	return ""
}

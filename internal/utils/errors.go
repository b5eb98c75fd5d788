package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agenticgokit/fsk/pkg/scaffold"
)

// Exit codes reported by the CLI.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitInput      = 2
	ExitTemplate   = 3
	ExitFilesystem = 4
)

// UserError represents an error with a user-friendly message and solution
type UserError struct {
	Message  string
	Solution string
	Err      error
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Solution != "" {
		msg += fmt.Sprintf("\n\n💡 Solution: %s", e.Solution)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n\nDetails: %v", e.Err)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new UserError
func NewUserError(message, solution string, err error) *UserError {
	return &UserError{
		Message:  message,
		Solution: solution,
		Err:      err,
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// FromEngineError turns a scaffold run failure into a UserError. The message
// names the failure category, the solution collects the hints carried by the
// individual errors.
func FromEngineError(err error) *UserError {
	if err == nil {
		return nil
	}
	var ue *UserError
	if errors.As(err, &ue) {
		return ue
	}

	var message string
	switch scaffold.CategoryOf(err) {
	case scaffold.CategoryInput:
		message = "Invalid command invocation"
	case scaffold.CategoryTemplate:
		message = "The command pack is broken"
	case scaffold.CategoryFilesystem:
		message = "The project is not ready for this command"
	default:
		message = "Command failed"
	}

	var hints []string
	seen := map[string]bool{}
	for _, e := range scaffold.Flatten(err) {
		var h scaffold.Hinter
		if !errors.As(e, &h) {
			continue
		}
		if hint := h.Hint(); hint != "" && !seen[hint] {
			seen[hint] = true
			hints = append(hints, hint)
		}
	}
	if scaffold.CategoryOf(err) == scaffold.CategoryTemplate && len(hints) == 0 {
		hints = append(hints, "Run 'fsk verify' to check every command in the loaded packs")
	}

	return NewUserError(message, strings.Join(hints, "; "), err)
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch scaffold.CategoryOf(err) {
	case scaffold.CategoryInput:
		return ExitInput
	case scaffold.CategoryTemplate:
		return ExitTemplate
	case scaffold.CategoryFilesystem:
		return ExitFilesystem
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ExitInput
	}
	return ExitGeneral
}

// Package toolchain runs the post-write hooks of a command, such as
// "dart format" or "dart run build_runner build".
package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"mvdan.cc/sh/v3/shell"

	"github.com/agenticgokit/fsk/pkg/scaffold"
)

// DefaultTimeout bounds a single hook.
const DefaultTimeout = 5 * time.Minute

// Runner executes hook lines in the project directory. Lines are split into
// words with shell quoting rules but are never run through a shell.
type Runner struct {
	dir     string
	timeout time.Duration
	logger  *zerolog.Logger
	lookup  func(string) string
}

// NewRunner creates a hook runner working in dir. A nil logger discards output.
func NewRunner(dir string, logger *zerolog.Logger) *Runner {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Runner{
		dir:     dir,
		timeout: DefaultTimeout,
		logger:  logger,
		lookup:  os.Getenv,
	}
}

// WithTimeout sets the per-hook timeout.
func (r *Runner) WithTimeout(d time.Duration) *Runner {
	r.timeout = d
	return r
}

// Run executes the hooks in order. A failing hook does not stop the ones after it.
func (r *Runner) Run(ctx context.Context, hooks []string) []scaffold.HookResult {
	results := make([]scaffold.HookResult, 0, len(hooks))
	for _, line := range hooks {
		results = append(results, r.runOne(ctx, line))
	}
	return results
}

func (r *Runner) runOne(ctx context.Context, line string) scaffold.HookResult {
	result := scaffold.HookResult{Command: line}

	args, err := shell.Fields(line, r.lookup)
	if err != nil {
		result.Error = fmt.Sprintf("invalid hook: %v", err)
		return result
	}
	if len(args) == 0 {
		result.Error = "empty hook"
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = r.dir
	cmd.Env = os.Environ()

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	err = cmd.Run()
	result.Output = strings.TrimSpace(output.String())

	r.logger.Debug().
		Str("hook", line).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("hook finished")

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			result.Error = fmt.Sprintf("timed out after %s", r.timeout)
		} else {
			result.Error = err.Error()
		}
		return result
	}
	result.Success = true
	return result
}

// Warnings converts failed hook results into report warnings.
func Warnings(results []scaffold.HookResult) []string {
	var warnings []string
	for _, res := range results {
		if !res.Success {
			warnings = append(warnings, fmt.Sprintf("hook %q failed: %s", res.Command, res.Error))
		}
	}
	return warnings
}

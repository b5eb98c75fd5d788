package scaffold

import "errors"

// PlannedEntry is a planned file as shown in the report.
type PlannedEntry struct {
	Path   string `json:"path" yaml:"path"`
	Action Action `json:"action" yaml:"action"`
	Source string `json:"source" yaml:"source"`
}

// SkippedFile is a planned file the writer leaves alone.
type SkippedFile struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// HookResult is the outcome of one post-write hook.
type HookResult struct {
	Command string `json:"command" yaml:"command"`
	Success bool   `json:"success" yaml:"success"`
	Output  string `json:"output,omitempty" yaml:"output,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ExecutionReport summarizes one invocation. Planned always lists what would be
// written; Written tells whether it was.
type ExecutionReport struct {
	Command           string         `json:"command" yaml:"command"`
	Primary           string         `json:"primary,omitempty" yaml:"primary,omitempty"`
	Variant           string         `json:"variant,omitempty" yaml:"variant,omitempty"`
	Agents            []string       `json:"agents,omitempty" yaml:"agents,omitempty"`
	DryRun            bool           `json:"dry_run" yaml:"dry_run"`
	Written           bool           `json:"written" yaml:"written"`
	Planned           []PlannedEntry `json:"planned" yaml:"planned"`
	Created           []string       `json:"created" yaml:"created"`
	Modified          []string       `json:"modified" yaml:"modified"`
	Skipped           []SkippedFile  `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	FlaggedForRemoval []string       `json:"flagged_for_removal,omitempty" yaml:"flagged_for_removal,omitempty"`
	Warnings          []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors            []string       `json:"errors,omitempty" yaml:"errors,omitempty"`
	NextSteps         []string       `json:"next_steps,omitempty" yaml:"next_steps,omitempty"`
	Hooks             []string       `json:"hooks,omitempty" yaml:"hooks,omitempty"`
	HookResults       []HookResult   `json:"hook_results,omitempty" yaml:"hook_results,omitempty"`

	errs []error
}

// Failed reports whether the invocation ended with errors.
func (r *ExecutionReport) Failed() bool { return len(r.errs) > 0 }

// Err returns the invocation errors as an Errors list, or nil.
func (r *ExecutionReport) Err() error {
	return Errors(r.errs).ErrorOrNil()
}

// Causes returns the individual invocation errors.
func (r *ExecutionReport) Causes() []error { return r.errs }

func (r *ExecutionReport) addError(err error) {
	for _, e := range Flatten(err) {
		r.errs = append(r.errs, e)
		r.Errors = append(r.Errors, e.Error())
	}
}

func (r *ExecutionReport) addPlan(plan *Plan) {
	for _, f := range plan.Files {
		r.Planned = append(r.Planned, PlannedEntry{Path: f.Path, Action: f.Action, Source: f.Source})
		if f.Action == ActionUnchanged {
			r.Skipped = append(r.Skipped, SkippedFile{Path: f.Path, Reason: f.Reason})
		}
	}
	r.Warnings = append(r.Warnings, plan.Warnings...)
}

// PlannedPaths returns the planned paths with the given actions, or every planned
// path when no action is given.
func (r *ExecutionReport) PlannedPaths(actions ...Action) []string {
	var out []string
	for _, p := range r.Planned {
		if len(actions) == 0 {
			out = append(out, p.Path)
			continue
		}
		for _, a := range actions {
			if p.Action == a {
				out = append(out, p.Path)
				break
			}
		}
	}
	return out
}

// HasError reports whether any invocation error matches target, as errors.As does.
func (r *ExecutionReport) HasError(target any) bool {
	for _, err := range r.errs {
		if errors.As(err, target) {
			return true
		}
	}
	return false
}

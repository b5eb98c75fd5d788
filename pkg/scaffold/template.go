// Package scaffold provides the template-driven scaffolding engine: option resolution,
// variable binding, template lookup, rendering, conflict checking and writing.
package scaffold

// DefaultVariant is the template set key of commands without a selector.
const DefaultVariant = "default"

// TemplateFile is a parametrized file: both Path and Body are templates.
type TemplateFile struct {
	Path string
	Body string
	// When gates the file; every condition must hold for it to be rendered.
	When []Condition
	// Barrel marks an aggregator file that is merged into instead of overwritten.
	Barrel bool
	// Source is the provenance tag of the file inside its pack.
	Source string
}

// TemplateSet is the file tree of one variant of a command.
type TemplateSet struct {
	Key           string
	Files         []TemplateFile
	Preconditions []Precondition
	NextSteps     []string
	Hooks         []string
}

// RenderedFile is a template file after substitution
type RenderedFile struct {
	Path    string
	Content string
	Source  string
	Barrel  bool
}

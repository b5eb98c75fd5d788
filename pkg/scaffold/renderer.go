package scaffold

import (
	"bytes"
	"errors"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"text/template/parse"

	"github.com/Masterminds/sprig/v3"
	"github.com/iancoleman/strcase"
)

// Renderer substitutes bindings into templates. It never touches the filesystem.
type Renderer struct {
	funcs template.FuncMap
}

// NewRenderer returns a renderer with sprig's hermetic helpers plus the case helpers.
func NewRenderer() *Renderer {
	funcs := sprig.HermeticTxtFuncMap()
	funcs["snake"] = strcase.ToSnake
	funcs["camel"] = strcase.ToCamel
	funcs["lowerCamel"] = strcase.ToLowerCamel
	funcs["kebab"] = strcase.ToKebab
	funcs["screamingSnake"] = strcase.ToScreamingSnake
	funcs["pascal"] = SnakeToPascal
	return &Renderer{funcs: funcs}
}

// RenderString renders a single template. file names the template in errors.
func (r *Renderer) RenderString(file, text string, b Bindings) (string, error) {
	tmpl, err := template.New(file).Funcs(r.funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", &TemplateError{File: file, Cause: err}
	}
	if tmpl.Tree != nil {
		if name, ok := firstUnbound(tmpl.Tree.Root, b); ok {
			return "", &UnresolvedPlaceholderError{Name: name, File: file}
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, b.values); err != nil {
		return "", &TemplateError{File: file, Cause: err}
	}
	return buf.String(), nil
}

// RenderFiles renders the path and body of every file. Target paths are cleaned to
// slash-separated paths relative to the project root.
//
// Errors from all files are collected into an Errors list; the files that rendered
// cleanly are returned alongside it.
func (r *Renderer) RenderFiles(files []TemplateFile, b Bindings) ([]RenderedFile, error) {
	var (
		out     []RenderedFile
		errs    Errors
		sources = make(map[string]string, len(files))
	)
	for _, f := range files {
		source := f.Source
		if source == "" {
			source = f.Path
		}

		target, err := r.RenderString(source, f.Path, b)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		target, ok := cleanTarget(target)
		if !ok {
			errs = append(errs, &InvalidTargetPathError{Path: target, File: source})
			continue
		}

		body, err := r.RenderString(source, f.Body, b)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if prev, dup := sources[target]; dup {
			errs = append(errs, &DuplicateTargetError{Path: target, Sources: []string{prev, source}})
			continue
		}
		sources[target] = source

		out = append(out, RenderedFile{
			Path:    target,
			Content: body,
			Source:  source,
			Barrel:  f.Barrel,
		})
	}
	return out, errs.ErrorOrNil()
}

// RenderPreconditions renders the preconditions whose conditions hold.
func (r *Renderer) RenderPreconditions(ps []Precondition, opts *ResolvedOptions, b Bindings) ([]Precondition, error) {
	var (
		out  []Precondition
		errs Errors
	)
	for _, p := range ps {
		if opts != nil && !AllHold(p.When, opts) {
			continue
		}
		rendered, err := r.renderPrecondition(p, b)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, rendered)
	}
	return out, errs.ErrorOrNil()
}

func (r *Renderer) renderPrecondition(p Precondition, b Bindings) (Precondition, error) {
	name := "precondition " + p.Target
	target, err := r.RenderString(name, p.Target, b)
	if err != nil {
		return p, err
	}
	desc, err := r.RenderString(name, p.Description, b)
	if err != nil {
		return p, err
	}
	hint, err := r.RenderString(name, p.Hint, b)
	if err != nil {
		return p, err
	}
	if p.Kind != PreconditionDependency {
		cleaned, ok := cleanTarget(target)
		if !ok {
			return p, &InvalidTargetPathError{Path: target, File: name}
		}
		target = cleaned
	}
	p.Target, p.Description, p.Hint = target, desc, hint
	return p, nil
}

// RenderLines renders hook command lines or next-step text.
func (r *Renderer) RenderLines(kind string, lines []string, b Bindings) ([]string, error) {
	var (
		out  []string
		errs Errors
	)
	for _, line := range lines {
		text, err := r.RenderString(kind, line, b)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			out = append(out, text)
		}
	}
	return out, errs.ErrorOrNil()
}

func cleanTarget(p string) (string, bool) {
	p = strings.TrimSpace(filepath.ToSlash(p))
	if p == "" || path.IsAbs(p) || filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return p, false
	}
	p = path.Clean(p)
	if p == "." || p == ".." || strings.HasPrefix(p, "../") || strings.HasSuffix(p, "/") {
		return p, false
	}
	return p, true
}

// firstUnbound walks a parsed template and returns the first top-level field
// reference with no binding. Inside range and with bodies dot is rebound, so only
// references through $ are checked there.
func firstUnbound(node parse.Node, b Bindings) (string, bool) {
	var found string
	var walk func(n parse.Node, rebound bool) bool
	walk = func(n parse.Node, rebound bool) bool {
		if n == nil {
			return false
		}
		switch n := n.(type) {
		case *parse.ListNode:
			if n == nil {
				return false
			}
			for _, child := range n.Nodes {
				if walk(child, rebound) {
					return true
				}
			}
		case *parse.ActionNode:
			return walk(n.Pipe, rebound)
		case *parse.PipeNode:
			if n == nil {
				return false
			}
			for _, cmd := range n.Cmds {
				if walk(cmd, rebound) {
					return true
				}
			}
		case *parse.CommandNode:
			if key, ok := indexKey(n, rebound); ok && !b.Has(key) {
				found = key
				return true
			}
			for _, arg := range n.Args {
				if walk(arg, rebound) {
					return true
				}
			}
		case *parse.FieldNode:
			if !rebound && len(n.Ident) > 0 && !b.Has(n.Ident[0]) {
				found = n.Ident[0]
				return true
			}
		case *parse.VariableNode:
			if len(n.Ident) > 1 && n.Ident[0] == "$" && !b.Has(n.Ident[1]) {
				found = n.Ident[1]
				return true
			}
		case *parse.ChainNode:
			return walk(n.Node, rebound)
		case *parse.IfNode:
			return walk(n.Pipe, rebound) || walk(n.List, rebound) || walk(n.ElseList, rebound)
		case *parse.RangeNode:
			return walk(n.Pipe, rebound) || walk(n.List, true) || walk(n.ElseList, rebound)
		case *parse.WithNode:
			return walk(n.Pipe, rebound) || walk(n.List, true) || walk(n.ElseList, rebound)
		case *parse.TemplateNode:
			return walk(n.Pipe, rebound)
		}
		return false
	}
	if walk(node, false) {
		return found, true
	}
	return "", false
}

// indexKey returns the literal key of an `index . "key"` or `index $ "key"` call.
func indexKey(n *parse.CommandNode, rebound bool) (string, bool) {
	if len(n.Args) < 3 {
		return "", false
	}
	if id, ok := n.Args[0].(*parse.IdentifierNode); !ok || id.Ident != "index" {
		return "", false
	}
	switch root := n.Args[1].(type) {
	case *parse.DotNode:
		if rebound {
			return "", false
		}
	case *parse.VariableNode:
		if len(root.Ident) != 1 || root.Ident[0] != "$" {
			return "", false
		}
	default:
		return "", false
	}
	key, ok := n.Args[2].(*parse.StringNode)
	if !ok {
		return "", false
	}
	return key.Text, true
}

// IsUnresolved reports whether err contains an unresolved placeholder.
func IsUnresolved(err error) bool {
	var target *UnresolvedPlaceholderError
	return errors.As(err, &target)
}

// Package report renders execution reports for the terminal and for tooling.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agenticgokit/fsk/internal/tui"
	"github.com/agenticgokit/fsk/pkg/scaffold"
)

// Formats lists the supported report formats.
var Formats = []string{"console", "json", "yaml", "markdown"}

// Reporter generates execution reports in various formats
type Reporter struct {
	format string
}

// NewReporter creates a new reporter. An empty format means console.
func NewReporter(format string) *Reporter {
	if format == "" {
		format = "console"
	}
	return &Reporter{format: format}
}

// Generate writes the report to w.
func (r *Reporter) Generate(report *scaffold.ExecutionReport, w io.Writer) error {
	switch r.format {
	case "console":
		return r.generateConsole(report, w)
	case "json":
		return r.generateJSON(report, w)
	case "yaml":
		return r.generateYAML(report, w)
	case "markdown":
		return r.generateMarkdown(report, w)
	default:
		return fmt.Errorf("unsupported format: %s (use one of %s)", r.format, strings.Join(Formats, ", "))
	}
}

// generateConsole creates a human-readable console report
func (r *Reporter) generateConsole(report *scaffold.ExecutionReport, w io.Writer) error {
	title := report.Command
	if report.Primary != "" {
		title += " " + report.Primary
	}
	if report.Variant != "" && report.Variant != scaffold.DefaultVariant {
		title += " (" + report.Variant + ")"
	}
	fmt.Fprintln(w, tui.TitleStyle.Render(title))

	if len(report.Planned) > 0 {
		fmt.Fprintln(w, tui.SectionHeaderStyle.Render(filesHeading(report)))
		for _, p := range report.Planned {
			style := tui.ActionStyle(p.Action)
			fmt.Fprintf(w, "  %s %s %s\n",
				style.Render(tui.ActionSymbol(p.Action)),
				tui.PathStyle.Render(p.Path),
				tui.MutedStyle.Render(string(p.Action)))
		}
	}

	if len(report.FlaggedForRemoval) > 0 {
		fmt.Fprintln(w, tui.SectionHeaderStyle.Render("Flagged for removal"))
		for _, path := range report.FlaggedForRemoval {
			fmt.Fprintf(w, "  %s %s\n", tui.WarningStyle.Render("-"), path)
		}
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintln(w, tui.SectionHeaderStyle.Render("Warnings"))
		for _, warning := range report.Warnings {
			fmt.Fprintf(w, "  %s %s\n", tui.WarningStyle.Render("!"), warning)
		}
	}

	if len(report.Errors) > 0 {
		fmt.Fprintln(w, tui.SectionHeaderStyle.Render("Errors"))
		for _, msg := range report.Errors {
			fmt.Fprintf(w, "  %s %s\n", tui.ErrorStyle.Render("✗"), msg)
		}
	}

	if len(report.HookResults) > 0 {
		fmt.Fprintln(w, tui.SectionHeaderStyle.Render("Hooks"))
		for _, h := range report.HookResults {
			if h.Success {
				fmt.Fprintf(w, "  %s %s\n", tui.SuccessStyle.Render("✓"), h.Command)
			} else {
				fmt.Fprintf(w, "  %s %s: %s\n", tui.ErrorStyle.Render("✗"), h.Command, h.Error)
			}
		}
	} else if len(report.Hooks) > 0 && report.Written {
		fmt.Fprintln(w, tui.SectionHeaderStyle.Render("Run next"))
		for _, h := range report.Hooks {
			fmt.Fprintf(w, "  $ %s\n", h)
		}
	}

	if len(report.NextSteps) > 0 && !report.Failed() {
		fmt.Fprintln(w, tui.SectionHeaderStyle.Render("Next steps"))
		for i, step := range report.NextSteps {
			fmt.Fprintf(w, "  %d. %s\n", i+1, step)
		}
	}

	if len(report.Agents) > 0 {
		fmt.Fprintf(w, "\n%s\n", tui.MutedStyle.Render("agents: "+strings.Join(report.Agents, ", ")))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, summary(report))
	return nil
}

func filesHeading(report *scaffold.ExecutionReport) string {
	switch {
	case report.Written:
		return "Files"
	case report.DryRun && !report.Failed():
		return "Files (dry run)"
	default:
		return "Planned files (nothing written)"
	}
}

func summary(report *scaffold.ExecutionReport) string {
	switch {
	case report.Failed():
		return tui.ErrorStyle.Render(fmt.Sprintf("✗ %d error(s), nothing was written", len(report.Errors)))
	case report.Written:
		return tui.SuccessStyle.Render(fmt.Sprintf("✓ %d created, %d modified", len(report.Created), len(report.Modified)))
	default:
		return tui.MutedStyle.Render(fmt.Sprintf("dry run: %d file(s) planned", len(report.Planned)))
	}
}

// generateJSON creates a JSON report
func (r *Reporter) generateJSON(report *scaffold.ExecutionReport, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func (r *Reporter) generateYAML(report *scaffold.ExecutionReport, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return err
	}
	return encoder.Close()
}

// generateMarkdown creates a Markdown report with a diagram of the planned tree
func (r *Reporter) generateMarkdown(report *scaffold.ExecutionReport, w io.Writer) error {
	fmt.Fprintf(w, "# fsk %s", report.Command)
	if report.Primary != "" {
		fmt.Fprintf(w, " %s", report.Primary)
	}
	fmt.Fprintf(w, "\n\n")

	fmt.Fprintf(w, "| Field | Value |\n")
	fmt.Fprintf(w, "|-------|-------|\n")
	if report.Variant != "" {
		fmt.Fprintf(w, "| Variant | %s |\n", report.Variant)
	}
	fmt.Fprintf(w, "| Dry run | %t |\n", report.DryRun)
	fmt.Fprintf(w, "| Written | %t |\n", report.Written)
	fmt.Fprintf(w, "| Created | %d |\n", len(report.Created))
	fmt.Fprintf(w, "| Modified | %d |\n", len(report.Modified))
	if len(report.Agents) > 0 {
		fmt.Fprintf(w, "| Agents | %s |\n", strings.Join(report.Agents, ", "))
	}
	fmt.Fprintf(w, "\n")

	if len(report.Planned) > 0 {
		fmt.Fprintf(w, "## Files\n\n")
		fmt.Fprintf(w, "| Path | Action | Template |\n")
		fmt.Fprintf(w, "|------|--------|----------|\n")
		for _, p := range report.Planned {
			fmt.Fprintf(w, "| `%s` | %s | %s |\n", p.Path, p.Action, p.Source)
		}
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "%s\n\n", PlanDiagram(report))
	}

	writeList(w, "Flagged for removal", report.FlaggedForRemoval, "`")
	writeList(w, "Warnings", report.Warnings, "")
	writeList(w, "Errors", report.Errors, "")
	writeList(w, "Next steps", report.NextSteps, "")

	if len(report.Hooks) > 0 {
		fmt.Fprintf(w, "## Hooks\n\n```bash\n")
		for _, h := range report.Hooks {
			fmt.Fprintf(w, "%s\n", h)
		}
		fmt.Fprintf(w, "```\n\n")
	}
	return nil
}

func writeList(w io.Writer, heading string, items []string, quote string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "## %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(w, "- %s%s%s\n", quote, item, quote)
	}
	fmt.Fprintf(w, "\n")
}

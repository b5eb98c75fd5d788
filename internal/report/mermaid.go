package report

import (
	"path"
	"sort"
	"strings"

	"github.com/TyphonHill/go-mermaid/diagrams/flowchart"

	"github.com/agenticgokit/fsk/pkg/scaffold"
)

// PlanDiagram creates a Mermaid flowchart of the planned files, linked from the
// project root through their directories.
func PlanDiagram(report *scaffold.ExecutionReport) string {
	diagram := flowchart.NewFlowchart()
	diagram.EnableMarkdownFence()
	diagram.SetDirection(flowchart.FlowchartDirectionTopDown)
	diagram.Config.SetHtmlLabels(true)

	root := diagram.AddNode(".")
	root.SetShape(flowchart.NodeShapeTerminal)

	dirs := map[string]*flowchart.Node{".": root}
	var dirNode func(dir string) *flowchart.Node
	dirNode = func(dir string) *flowchart.Node {
		if node, ok := dirs[dir]; ok {
			return node
		}
		parent := dirNode(path.Dir(dir))
		node := diagram.AddNode(path.Base(dir) + "/")
		node.SetShape(flowchart.NodeShapeSubprocess)
		dirs[dir] = node
		diagram.AddLink(parent, node)
		return node
	}

	planned := append([]scaffold.PlannedEntry(nil), report.Planned...)
	sort.SliceStable(planned, func(i, j int) bool { return planned[i].Path < planned[j].Path })

	for _, p := range planned {
		parent := dirNode(path.Dir(p.Path))
		node := diagram.AddNode(path.Base(p.Path) + "<br/>" + string(p.Action))
		applyActionShape(node, p.Action)
		if style := actionStyle(p.Action); style != nil {
			node.SetStyle(style)
		}
		diagram.AddLink(parent, node)
	}

	return strings.TrimSpace(diagram.String())
}

func applyActionShape(node *flowchart.Node, action scaffold.Action) {
	switch action {
	case scaffold.ActionConflict:
		node.SetShape(flowchart.NodeShapeDecision)
	case scaffold.ActionUpdateBarrel:
		node.SetShape(flowchart.NodeShapeInputOutput)
	default:
		node.SetShape(flowchart.NodeShapeProcess)
	}
}

// actionStyle returns Mermaid styling for the planned action
func actionStyle(action scaffold.Action) *flowchart.NodeStyle {
	style := flowchart.NewNodeStyle()
	style.StrokeWidth = 1

	switch action {
	case scaffold.ActionCreate:
		style.Fill = "#e8f5e9"
		style.Stroke = "#1b5e20"
	case scaffold.ActionOverwrite:
		style.Fill = "#fff3e0"
		style.Stroke = "#e65100"
	case scaffold.ActionUpdateBarrel:
		style.Fill = "#e1f5fe"
		style.Stroke = "#01579b"
	case scaffold.ActionConflict:
		style.Fill = "#fce4ec"
		style.Stroke = "#880e4f"
	default:
		return nil
	}
	return style
}

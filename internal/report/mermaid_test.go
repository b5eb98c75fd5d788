package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenticgokit/fsk/pkg/scaffold"
)

func TestPlanDiagram(t *testing.T) {
	diagram := PlanDiagram(sampleReport())

	assert.True(t, strings.HasPrefix(diagram, "```mermaid"))
	assert.Contains(t, diagram, "flowchart")
	for _, label := range []string{"lib/", "features/", "products/", "domain/", "data/", "product.dart", "features.dart"} {
		assert.Contains(t, diagram, label)
	}
	assert.Equal(t, 1, strings.Count(diagram, "features/"), "directories are shared between files")
}

func TestPlanDiagramEmpty(t *testing.T) {
	diagram := PlanDiagram(&scaffold.ExecutionReport{Command: "add-ci"})
	assert.Contains(t, diagram, "flowchart")
}

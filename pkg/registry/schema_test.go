package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommandDocument(t *testing.T) {
	require.NoError(t, ValidateCommandDocument("ok.toml", []byte(screenCommand)))

	tests := []struct {
		name string
		doc  string
		path string
	}{
		{name: "unknown top-level key", doc: "name = \"new-x\"\ncolour = \"red\"\n", path: ""},
		{name: "bad kind", doc: "name = \"new-x\"\n[[arguments]]\nname = \"x\"\nkind = \"number\"\n", path: "/arguments/0/kind"},
		{name: "upper-case name", doc: "name = \"NewX\"\n", path: "/name"},
		{name: "file without body", doc: "name = \"new-x\"\n[[files]]\npath = \"lib/x.dart\"\n", path: "/files/0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCommandDocument("cmd.toml", []byte(tt.doc))
			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, "cmd.toml", schemaErr.File)
			require.NotEmpty(t, schemaErr.Issues)

			var paths []string
			for _, issue := range schemaErr.Issues {
				paths = append(paths, issue.Path)
			}
			assert.Contains(t, paths, tt.path)
		})
	}
}

func TestValidateCommandDocumentBadToml(t *testing.T) {
	err := ValidateCommandDocument("cmd.toml", []byte("name = "))
	require.Error(t, err)
	var schemaErr *SchemaError
	assert.NotErrorAs(t, err, &schemaErr)
}

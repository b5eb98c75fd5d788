package registry

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/command.schema.json
var commandSchemaBytes []byte

var (
	commandSchema     *jsonschema.Schema
	commandSchemaOnce sync.Once
	commandSchemaErr  error
	printer           = message.NewPrinter(language.English)
)

// SchemaIssue is a single schema violation in a command document.
type SchemaIssue struct {
	Path    string // Instance location, e.g. "/arguments/0/kind"
	Message string
	Keyword string
}

func (i SchemaIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// SchemaError lists the schema violations of one command document.
type SchemaError struct {
	File   string
	Issues []SchemaIssue
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("%s does not match the command schema: %s", e.File, strings.Join(parts, "; "))
}

func getCommandSchema() (*jsonschema.Schema, error) {
	commandSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(commandSchemaBytes))
		if err != nil {
			commandSchemaErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("command.schema.json", doc); err != nil {
			commandSchemaErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		commandSchema, commandSchemaErr = c.Compile("command.schema.json")
		if commandSchemaErr != nil {
			commandSchemaErr = fmt.Errorf("compiling schema: %w", commandSchemaErr)
		}
	})
	return commandSchema, commandSchemaErr
}

// ValidateCommandDocument checks raw TOML against the command schema. A document
// that violates the schema yields a *SchemaError; other errors mean the TOML could
// not be read at all.
func ValidateCommandDocument(file string, data []byte) error {
	schema, err := getCommandSchema()
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}

	// Round-trip through JSON so numbers and tables reach the validator as JSON values.
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("converting %s to JSON: %w", file, err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("preparing %s for validation: %w", file, err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil
	}
	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return fmt.Errorf("unexpected validation error type: %w", err)
	}
	return &SchemaError{File: file, Issues: extractIssues(validationErr)}
}

func extractIssues(ve *jsonschema.ValidationError) []SchemaIssue {
	var issues []SchemaIssue
	collectIssues(ve, &issues)
	if len(issues) == 0 {
		return []SchemaIssue{{Message: ve.Error()}}
	}

	seen := make(map[string]bool, len(issues))
	out := issues[:0]
	for _, issue := range issues {
		key := issue.Path + "|" + issue.Keyword + "|" + issue.Message
		if !seen[key] {
			seen[key] = true
			out = append(out, issue)
		}
	}
	return out
}

func collectIssues(ve *jsonschema.ValidationError, issues *[]SchemaIssue) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collectIssues(cause, issues)
		}
		return
	}

	path := ""
	if len(ve.InstanceLocation) > 0 {
		path = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	keyword := ""
	msg := ""
	if ve.ErrorKind != nil {
		if kw := ve.ErrorKind.KeywordPath(); len(kw) > 0 {
			keyword = kw[len(kw)-1]
		}
		msg = ve.ErrorKind.LocalizedString(printer)
	}
	switch keyword {
	case "", "oneOf", "anyOf", "allOf", "$ref":
		return
	}
	*issues = append(*issues, SchemaIssue{Path: path, Message: msg, Keyword: keyword})
}

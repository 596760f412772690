package validation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema/definition.schema.json
var definitionSchemaJSON []byte

var (
	definitionSchemaOnce sync.Once
	definitionSchema     *gojsonschema.Schema
	definitionSchemaErr  error
)

// Issue represents a validation error with optional location metadata.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result captures validation outcomes.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Errors groups issue messages by field so they can be handed to a renderer.
// Issues without a field are returned under the empty key.
func (r Result) Errors() map[string][]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, issue := range r.Issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	return out
}

// DefinitionSchema returns the raw JSON schema used by ValidateDefinition.
func DefinitionSchema() []byte {
	return append([]byte(nil), definitionSchemaJSON...)
}

func compiledDefinitionSchema() (*gojsonschema.Schema, error) {
	definitionSchemaOnce.Do(func() {
		definitionSchema, definitionSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(definitionSchemaJSON))
	})
	return definitionSchema, definitionSchemaErr
}

// ValidateDefinition validates a YAML or JSON definition document against the
// definition schema.
func ValidateDefinition(raw []byte) Result {
	result := Result{Valid: true}

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return invalid(Issue{Message: fmt.Sprintf("parse definition: %v", err)})
	}
	if doc == nil {
		return invalid(Issue{Message: "definition is empty"})
	}

	payload, err := json.Marshal(normalizeYAML(doc))
	if err != nil {
		return invalid(Issue{Message: fmt.Sprintf("encode definition: %v", err)})
	}

	schema, err := compiledDefinitionSchema()
	if err != nil {
		return invalid(Issue{Message: fmt.Sprintf("compile definition schema: %v", err)})
	}

	outcome, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return invalid(Issue{Message: fmt.Sprintf("validate definition: %v", err)})
	}
	if outcome.Valid() {
		return result
	}

	result.Valid = false
	for _, desc := range outcome.Errors() {
		// if/then failures are reported twice: once for the branch and once
		// for the keyword inside it.
		if desc.Type() == "condition_then" {
			continue
		}
		result.Issues = append(result.Issues, issueFromResultError(desc))
	}
	return result
}

func invalid(issue Issue) Result {
	return Result{Valid: false, Issues: []Issue{issue}}
}

func issueFromResultError(desc gojsonschema.ResultError) Issue {
	field := desc.Field()
	if field == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY {
		field = ""
	}
	return Issue{
		Path:    pointerFromField(field),
		Field:   field,
		Message: strings.TrimSpace(desc.Description()),
	}
}

// pointerFromField converts gojsonschema dotted paths ("items.0.fieldType")
// into JSON pointers ("#/items/0/fieldType").
func pointerFromField(field string) string {
	if field == "" {
		return "#"
	}
	parts := strings.Split(field, ".")
	for idx, part := range parts {
		part = strings.ReplaceAll(part, "~", "~0")
		parts[idx] = strings.ReplaceAll(part, "/", "~1")
	}
	return "#/" + strings.Join(parts, "/")
}

// normalizeYAML turns map[any]any nodes into map[string]any so the document
// can be encoded as JSON.
func normalizeYAML(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[fmt.Sprint(key)] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for idx, val := range v {
			out[idx] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}

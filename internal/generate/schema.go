package generate

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/hartfield-labs/factfind/internal/record"
)

// InferSchema builds a JSON Schema from an example record: objects carry
// additionalProperties:false and require every observed key, arrays take
// their item schema from the first element, and scalars map to their JSON
// type. Missing-marker strings are plain strings to the schema.
func InferSchema(template record.Record) map[string]any {
	schema := inferValue(map[string]any(template))
	schema["$schema"] = "https://json-schema.org/draft/2020-12/schema"
	return schema
}

func inferValue(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		props := make(map[string]any, len(t))
		required := make([]string, 0, len(t))
		for k, val := range t {
			props[k] = inferValue(val)
			required = append(required, k)
		}
		sort.Strings(required)
		return map[string]any{
			"type":                 "object",
			"properties":           props,
			"required":             required,
			"additionalProperties": false,
		}
	case []any:
		items := map[string]any{"type": "string"}
		if len(t) > 0 {
			items = inferValue(t[0])
		}
		return map[string]any{
			"type":  "array",
			"items": items,
		}
	case string:
		return map[string]any{"type": "string"}
	case float64:
		return map[string]any{"type": "number"}
	case bool:
		return map[string]any{"type": "boolean"}
	default:
		return map[string]any{}
	}
}

// Validator wraps a compiled JSON Schema for checking extracted records.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles a schema document.
func NewValidator(schemaDoc map[string]any) (*Validator, error) {
	data, err := json.Marshal(schemaDoc)
	if err != nil {
		return nil, eris.Wrap(err, "schema: marshal")
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(string(data))); err != nil {
		return nil, eris.Wrap(err, "schema: add resource")
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, eris.Wrap(err, "schema: compile")
	}
	return &Validator{schema: compiled}, nil
}

// Validate checks a record against the schema.
func (v *Validator) Validate(rec record.Record) error {
	if err := v.schema.Validate(map[string]any(rec)); err != nil {
		return eris.Wrap(err, "schema: validate")
	}
	return nil
}

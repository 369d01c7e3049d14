package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/contract-risk/constants"
)

// BuildClauseJSONSchema returns the JSON Schema (draft 2020-12 subset) of the
// model response as a generic map. withScore adds the top-level scoring fields.
func BuildClauseJSONSchema(withScore bool) map[string]any {
	clause := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"type":            map[string]any{"type": "string", "enum": constants.ClauseTypesAsStrings()},
			"title":           map[string]any{"type": "string", "minLength": 1},
			"severity":        map[string]any{"type": "string", "enum": []string{"low", "medium", "high"}},
			"original_text":   map[string]any{"type": "string"},
			"simplified_text": map[string]any{"type": "string"},
		},
		"required": []string{"type", "title", "severity", "original_text", "simplified_text"},
	}

	props := map[string]any{
		"clauses": map[string]any{"type": "array", "items": clause},
	}
	required := []string{"clauses"}

	if withScore {
		props["risk_score"] = map[string]any{"type": "integer", "minimum": 0, "maximum": 100}
		props["risk_level"] = map[string]any{"type": "string", "enum": []string{"low", "medium", "high"}}
		props["summary"] = map[string]any{"type": "string", "minLength": 1}
		required = append(required, "risk_score", "risk_level", "summary")
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

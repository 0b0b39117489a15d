package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// OfferSchema is the JSON Schema the extraction response must satisfy before
// the offer builder sees it. Numerics allow strings because models echo
// Polish-formatted amounts; the builder's number parser handles those.
func OfferSchema() map[string]any {
	amount := map[string]any{"type": []string{"number", "string", "null"}}
	contract := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":    map[string]any{"type": "string"},
			"sum":     amount,
			"premium": amount,
		},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"insurer":      map[string]any{"type": "string"},
			"product_type": map[string]any{"type": "string"},
			"insured": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":  map[string]any{"type": "string"},
						"age":   amount,
						"role":  map[string]any{"type": "string"},
						"plans": map[string]any{"type": "array", "items": contract},
					},
				},
			},
			"base_contracts":       map[string]any{"type": "array", "items": contract},
			"additional_contracts": map[string]any{"type": "array", "items": contract},
			"discounts": map[string]any{
				"type": "array", "items": map[string]any{"type": "string"},
			},
			"total_premium_before_discounts": amount,
			"total_premium_after_discounts":  amount,
			"assistance": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": []string{"object", "string"},
					"properties": map[string]any{
						"name":     map[string]any{"type": "string"},
						"coverage": map[string]any{"type": "string"},
						"limits":   map[string]any{"type": "string"},
					},
				},
			},
			"duration": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"start":   map[string]any{"type": "string"},
					"end":     map[string]any{"type": "string"},
					"variant": map[string]any{"type": "string"},
				},
			},
			"notes": map[string]any{
				"type": "array", "items": map[string]any{"type": "string"},
			},
		},
	}
}

// ValidateAgainstSchema validates data against the given schema map.
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
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

package extract

import (
	"fmt"

	"github.com/kaptinlin/jsonschema"
)

func must[T any](t T, err error) T {
	if err != nil {
		panic(err)
	}
	return t
}

var (
	compiler      = jsonschema.NewCompiler()
	productSchema = must(compiler.Compile([]byte(productSchemaDocument)))
)

// validateShape checks decoded model output against the product tree shape.
// Scalar types are deliberately loose; coercion happens while decoding.
func validateShape(data []byte) error {
	result := productSchema.ValidateJSON(data)
	if !result.Valid {
		return fmt.Errorf("model output does not match the product shape: %w", result)
	}
	return nil
}

const productSchemaDocument = `{
	"$id": "product.json",
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"title": "Product",
	"$ref": "#/$defs/product",
	"$defs": {
		"text": {
			"type": ["string", "number", "null"]
		},
		"number": {
			"type": ["number", "string", "null"]
		},
		"location": {
			"anyOf": [
				{ "type": "null" },
				{ "type": "string", "minLength": 1 },
				{
					"type": "object",
					"required": ["name"],
					"properties": {
						"name": { "type": ["string", "number"] },
						"description": { "$ref": "#/$defs/text" },
						"country_code": { "$ref": "#/$defs/text" },
						"address": { "$ref": "#/$defs/text" }
					}
				}
			]
		},
		"product": {
			"type": "object",
			"required": ["name"],
			"properties": {
				"name": { "type": ["string", "number"] },
				"description": { "$ref": "#/$defs/text" },
				"hs_code": { "$ref": "#/$defs/text" },
				"image_url": { "$ref": "#/$defs/text" },
				"location": { "$ref": "#/$defs/location" },
				"weight_kg": { "$ref": "#/$defs/number" },
				"recycled_pct": { "$ref": "#/$defs/number" },
				"waste_pct": { "$ref": "#/$defs/number" },
				"lifetime_amount": { "$ref": "#/$defs/number" },
				"materials": {
					"type": ["array", "null"],
					"items": {
						"anyOf": [
							{ "$ref": "#/$defs/product" },
							{ "type": "string", "minLength": 1 }
						]
					}
				}
			}
		}
	}
}`

package api

import (
	"context"
	"fmt"

	"github.com/qri-io/jsonschema"
)

// Event payloads arrive from other subsystems, so they are validated
// against a JSON schema before decoding instead of trusting the producer.
var (
	missionCompletedSchema = jsonschema.Must(`{
		"type": "object",
		"required": ["user_id", "mission_id", "title", "score"],
		"properties": {
			"user_id":    {"type": "string", "minLength": 1},
			"mission_id": {"type": "string", "minLength": 1},
			"title":      {"type": "string", "minLength": 1},
			"score":      {"type": "number", "minimum": 0, "maximum": 100},
			"skills": {
				"type": "array",
				"items": {"type": "string"}
			},
			"evidence": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["url", "kind"],
					"properties": {
						"url":  {"type": "string", "minLength": 1},
						"kind": {"type": "string", "minLength": 1}
					}
				}
			}
		}
	}`)

	visibilityChangedSchema = jsonschema.Must(`{
		"type": "object",
		"required": ["user_id", "new_visibility"],
		"properties": {
			"user_id": {"type": "string", "minLength": 1},
			"new_visibility": {
				"type": "string",
				"enum": ["private", "unlisted", "marketplace_preview", "public"]
			}
		}
	}`)
)

// validatePayload checks body against schema and reports the first
// violation.
func validatePayload(ctx context.Context, schema *jsonschema.Schema, body []byte) error {
	keyErrs, err := schema.ValidateBytes(ctx, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if len(keyErrs) > 0 {
		return fmt.Errorf("%w: %s: %s", ErrBadRequest,
			keyErrs[0].PropertyPath, keyErrs[0].Message)
	}
	return nil
}

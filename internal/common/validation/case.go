// Package validation checks inbound case payloads before the packet
// pipeline runs. Intake data is loosely keyed, so the schema only pins down
// structure; field-level normalization happens later in the mapper.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const caseSchema = `{
	"type": "object",
	"required": ["caseNumber", "fields"],
	"properties": {
		"caseNumber": {"type": "string", "minLength": 1},
		"fields": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		},
		"indemnitors": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["firstName", "lastName"],
				"properties": {
					"firstName": {"type": "string", "minLength": 1},
					"lastName": {"type": "string", "minLength": 1},
					"email": {"type": "string"},
					"phone": {"type": "string"}
				}
			}
		},
		"charges": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"description": {"type": "string"},
					"caseNumber": {"type": "string"},
					"bondAmount": {"type": "string"},
					"powerNumbers": {"type": "string"}
				}
			}
		}
	}
}`

var caseSchemaLoader = gojsonschema.NewStringLoader(caseSchema)

// ValidateCasePayload validates a raw case JSON body against the intake
// schema. Returns a single error naming every violation.
func ValidateCasePayload(body []byte) error {
	result, err := gojsonschema.Validate(caseSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("case payload is not valid JSON: %w", err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return fmt.Errorf("case payload validation failed: %s", strings.Join(msgs, "; "))
}

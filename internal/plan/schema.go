// Package plan implements the safety-gated wellness plan generation pipeline:
// prompt construction, tiered generation with validation, JSON recovery, and the
// deterministic fallback synthesizer.
package plan

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// SchemaName identifies the structured output schema in API requests.
const SchemaName = "wellness_plan_output"

// WellnessPlanOutputSchema is the canonical JSON schema for the pipeline output.
//
// IMPORTANT: This schema is the single source of truth for the output shape. The
// prompt's JSON shape description is generated from it (see shapeDescription), so the
// natural-language prompt cannot silently drift from what validation enforces. Field
// names and enums must match models.WellnessPlanOutput.
const WellnessPlanOutputSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["emotionalSupport", "wellnessTips", "personalizedPlan", "safetyFlag", "safetyMessage"],
  "properties": {
    "emotionalSupport": {
      "type": "string",
      "description": "Empathetic validation and coping strategies for stress, anxiety, or low mood."
    },
    "wellnessTips": {
      "type": "string",
      "description": "Actionable suggestions on hydration, sleep hygiene, light exercise, and nutrition."
    },
    "personalizedPlan": {
      "type": "object",
      "additionalProperties": false,
      "required": ["id", "title", "overview", "summaryBullets", "steps", "estimatedEffort", "timeframe"],
      "properties": {
        "id": {"type": "string"},
        "title": {"type": "string"},
        "overview": {"type": "string", "description": "One to two sentences."},
        "summaryBullets": {
          "type": "array",
          "items": {"type": "string"},
          "minItems": 3,
          "maxItems": 6
        },
        "steps": {
          "type": "array",
          "minItems": 3,
          "maxItems": 8,
          "items": {
            "type": "object",
            "additionalProperties": false,
            "required": ["id", "text", "category", "durationMinutes", "frequency", "priority", "when", "safety", "followUpQuestion"],
            "properties": {
              "id": {"type": "string"},
              "text": {"type": "string", "description": "Imperative micro-action, at most 120 characters."},
              "category": {
                "type": "string",
                "enum": ["movement", "sleep", "hydration", "nutrition", "social", "breathing", "cognitive", "other"]
              },
              "durationMinutes": {"type": ["integer", "null"], "minimum": 0},
              "frequency": {"type": ["string", "null"]},
              "priority": {"type": ["string", "null"], "enum": ["low", "medium", "high", null]},
              "when": {"type": ["string", "null"]},
              "safety": {"type": ["string", "null"]},
              "followUpQuestion": {"type": ["string", "null"]}
            }
          }
        },
        "estimatedEffort": {"type": "string", "enum": ["low", "medium", "high"]},
        "timeframe": {"type": "string", "description": "Human-readable, e.g. \"1 week\"."}
      }
    },
    "safetyFlag": {"type": "boolean"},
    "safetyMessage": {"type": ["string", "null"]}
  }
}`

var (
	schemaOnce sync.Once
	schemaRaw  map[string]interface{}
)

// RawSchema returns the parsed canonical schema for use as an API response format.
func RawSchema() map[string]interface{} {
	schemaOnce.Do(func() {
		if err := json.Unmarshal([]byte(WellnessPlanOutputSchema), &schemaRaw); err != nil {
			// The constant is fixed at compile time; a parse failure is a programming error.
			panic(fmt.Sprintf("invalid wellness plan schema constant: %v", err))
		}
	})
	return schemaRaw
}

// shapeDescription renders a compact field listing from the canonical schema for
// embedding in prompts, keeping the prompt's shape description in sync with validation.
func shapeDescription() string {
	var b strings.Builder
	describeObject(&b, RawSchema(), "", 0)
	return b.String()
}

func describeObject(b *strings.Builder, schema map[string]interface{}, name string, depth int) {
	props, ok := schema["properties"].(map[string]interface{})
	if !ok {
		return
	}
	indent := strings.Repeat("  ", depth)
	if name != "" {
		fmt.Fprintf(b, "%s%s (object):\n", indent, name)
		indent = strings.Repeat("  ", depth+1)
		depth++
	}

	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, field := range names {
		sub, _ := props[field].(map[string]interface{})
		typ := schemaType(sub)
		switch typ {
		case "object":
			describeObject(b, sub, field, depth)
		case "array":
			items, _ := sub["items"].(map[string]interface{})
			if schemaType(items) == "object" {
				fmt.Fprintf(b, "%s%s (array of objects%s):\n", indent, field, arrayBounds(sub))
				describeObject(b, items, "", depth+1)
			} else {
				fmt.Fprintf(b, "%s%s (array of %s%s)\n", indent, field, schemaType(items), arrayBounds(sub))
			}
		default:
			if enum, ok := sub["enum"].([]interface{}); ok {
				fmt.Fprintf(b, "%s%s (%s, one of: %s)\n", indent, field, typ, enumList(enum))
			} else {
				fmt.Fprintf(b, "%s%s (%s)\n", indent, field, typ)
			}
		}
	}
}

func schemaType(schema map[string]interface{}) string {
	if schema == nil {
		return "any"
	}
	switch t := schema["type"].(type) {
	case string:
		return t
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, v := range t {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " or ")
	default:
		return "any"
	}
}

func arrayBounds(schema map[string]interface{}) string {
	min, hasMin := schema["minItems"].(float64)
	max, hasMax := schema["maxItems"].(float64)
	if hasMin && hasMax {
		return fmt.Sprintf(", %d to %d items", int(min), int(max))
	}
	return ""
}

func enumList(enum []interface{}) string {
	parts := make([]string, 0, len(enum))
	for _, v := range enum {
		if s, ok := v.(string); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

package plan

import (
	"strings"
	"testing"
)

func TestRawSchemaParses(t *testing.T) {
	raw := RawSchema()
	if raw["type"] != "object" {
		t.Errorf("schema root type = %v, want object", raw["type"])
	}
	props, ok := raw["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("schema root has no properties")
	}
	for _, field := range []string{"emotionalSupport", "wellnessTips", "personalizedPlan", "safetyFlag", "safetyMessage"} {
		if _, ok := props[field]; !ok {
			t.Errorf("schema missing top-level field %q", field)
		}
	}
}

func TestShapeDescriptionCoversSchema(t *testing.T) {
	// The prompt's shape listing is generated from the schema; every field and enum
	// value must surface so the model is told about all of them.
	desc := shapeDescription()
	fields := []string{
		"emotionalSupport", "wellnessTips", "personalizedPlan", "safetyFlag", "safetyMessage",
		"id", "title", "overview", "summaryBullets", "steps", "estimatedEffort", "timeframe",
		"text", "category", "durationMinutes", "frequency", "priority", "when", "safety", "followUpQuestion",
	}
	for _, f := range fields {
		if !strings.Contains(desc, f) {
			t.Errorf("shape description missing field %q", f)
		}
	}
	for _, enum := range []string{"movement", "sleep", "hydration", "nutrition", "social", "breathing", "cognitive", "other"} {
		if !strings.Contains(desc, enum) {
			t.Errorf("shape description missing category enum %q", enum)
		}
	}
}

func TestShapeDescriptionBounds(t *testing.T) {
	desc := shapeDescription()
	if !strings.Contains(desc, "3 to 8 items") {
		t.Error("shape description should state the step count bounds")
	}
	if !strings.Contains(desc, "3 to 6 items") {
		t.Error("shape description should state the bullet count bounds")
	}
}

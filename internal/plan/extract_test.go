package plan

import (
	"errors"
	"testing"
)

const validOutputJSON = `{
  "emotionalSupport": "It sounds like a lot is weighing on you right now, and that's a hard place to be.",
  "wellnessTips": "Keep water nearby, take short walks, and protect a consistent bedtime.",
  "personalizedPlan": {
    "id": "test-plan",
    "title": "Test Plan",
    "overview": "A small test plan.",
    "summaryBullets": ["one", "two", "three"],
    "steps": [
      {"id": "step-1", "text": "Drink a glass of water with breakfast", "category": "hydration", "durationMinutes": null, "frequency": "daily", "priority": "medium", "when": null, "safety": null, "followUpQuestion": null},
      {"id": "step-2", "text": "Take a 10-minute walk", "category": "movement", "durationMinutes": 10, "frequency": "daily", "priority": "medium", "when": "afternoon", "safety": null, "followUpQuestion": null},
      {"id": "step-3", "text": "Write down one good moment from today", "category": "cognitive", "durationMinutes": 3, "frequency": "daily", "priority": "low", "when": "evening", "safety": null, "followUpQuestion": null}
    ],
    "estimatedEffort": "low",
    "timeframe": "1 week"
  },
  "safetyFlag": false,
  "safetyMessage": null
}`

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fences", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  \n```json\n{\"a\": 1}\n```\n  ", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.input); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractOutputPlainJSON(t *testing.T) {
	out, err := ExtractOutput(validOutputJSON)
	if err != nil {
		t.Fatalf("ExtractOutput failed: %v", err)
	}
	if out.PersonalizedPlan.ID != "test-plan" {
		t.Errorf("plan id = %q, want %q", out.PersonalizedPlan.ID, "test-plan")
	}
	if len(out.PersonalizedPlan.Steps) != 3 {
		t.Errorf("steps = %d, want 3", len(out.PersonalizedPlan.Steps))
	}
	if out.PersonalizedPlan.Steps[1].DurationMinutes == nil || *out.PersonalizedPlan.Steps[1].DurationMinutes != 10 {
		t.Error("step-2 durationMinutes not decoded")
	}
}

func TestExtractOutputFencedJSON(t *testing.T) {
	out, err := ExtractOutput("```json\n" + validOutputJSON + "\n```")
	if err != nil {
		t.Fatalf("ExtractOutput failed on fenced input: %v", err)
	}
	if out.PersonalizedPlan.Title != "Test Plan" {
		t.Errorf("title = %q", out.PersonalizedPlan.Title)
	}
}

func TestExtractOutputProseWrapped(t *testing.T) {
	raw := "Sure! Here is your plan:\n" + validOutputJSON + "\nHope this helps!"
	out, err := ExtractOutput(raw)
	if err != nil {
		t.Fatalf("ExtractOutput failed on prose-wrapped input: %v", err)
	}
	if out.SafetyFlag || out.SafetyMessage != nil {
		t.Error("unexpected safety fields")
	}
	if out.PersonalizedPlan.ID != "test-plan" {
		t.Errorf("plan id = %q", out.PersonalizedPlan.ID)
	}
}

func TestExtractOutputNoJSON(t *testing.T) {
	_, err := ExtractOutput("I'm sorry, I can't help with that.")
	if !errors.Is(err, ErrNoJSONObject) {
		t.Errorf("expected ErrNoJSONObject, got %v", err)
	}
}

func TestExtractOutputMalformedJSON(t *testing.T) {
	_, err := ExtractOutput(`{"emotionalSupport": "truncated...`)
	if err == nil {
		t.Error("expected error for malformed JSON")
	}
}

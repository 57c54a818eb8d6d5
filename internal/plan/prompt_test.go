package plan

import (
	"strings"
	"testing"

	"github.com/damii-health/wellnessd/internal/models"
)

func TestBuildPromptIncludesInput(t *testing.T) {
	_, user := BuildPrompt("feeling stressed about deadlines", models.VerdictNone)
	if !strings.Contains(user, "feeling stressed about deadlines") {
		t.Error("user prompt must carry the sanitized input")
	}
}

func TestBuildPromptContextRules(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fragment string
	}{
		{"work stress", "deadlines at work are crushing me", "desk-friendly"},
		{"anxiety", "I feel anxious all the time", "breathing-focused"},
		{"sleep", "I can't sleep at night", "sleep hygiene"},
		{"loneliness", "I feel so lonely lately", "social-category"},
		{"low energy", "I'm exhausted every day", "gentle movement"},
		{"eating", "I keep skipping meals", "nutrition-category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			system, _ := BuildPrompt(tt.input, models.VerdictNone)
			if !strings.Contains(system, tt.fragment) {
				t.Errorf("system prompt for %q missing %q", tt.input, tt.fragment)
			}
		})
	}
}

func TestBuildPromptNoRulesForGenericInput(t *testing.T) {
	system, _ := BuildPrompt("had a fairly ordinary week", models.VerdictNone)
	if strings.Contains(system, "Personalization rules") {
		t.Error("generic input should not trigger personalization rules")
	}
}

func TestBuildPromptConcerningAnnotation(t *testing.T) {
	plain, _ := BuildPrompt("feeling a bit off today overall", models.VerdictNone)
	annotated, _ := BuildPrompt("feeling a bit off today overall", models.VerdictConcerning)
	if strings.Contains(plain, "SAFETY NOTE") {
		t.Error("annotation must not appear for a clean verdict")
	}
	if !strings.HasPrefix(annotated, "SAFETY NOTE") {
		t.Error("concerning verdict must prepend the safety annotation")
	}
}

func TestBuildPromptIncludesSchemaShape(t *testing.T) {
	system, _ := BuildPrompt("stressed about work", models.VerdictNone)
	for _, field := range []string{"emotionalSupport", "wellnessTips", "personalizedPlan", "summaryBullets", "estimatedEffort", "safetyFlag", "safetyMessage"} {
		if !strings.Contains(system, field) {
			t.Errorf("system prompt missing schema field %q", field)
		}
	}
}

func TestBuildStrictRetryPrompt(t *testing.T) {
	base, baseUser := BuildPrompt("stressed about work deadlines", models.VerdictNone)
	strict, strictUser := BuildStrictRetryPrompt("stressed about work deadlines", models.VerdictNone)
	if !strings.HasPrefix(strict, base) {
		t.Error("strict prompt should extend the base prompt")
	}
	if !strings.Contains(strict, "ONLY the JSON object") {
		t.Error("strict prompt missing the JSON-only directive")
	}
	if strictUser != baseUser {
		t.Error("user prompt should be unchanged by the retry tier")
	}
}

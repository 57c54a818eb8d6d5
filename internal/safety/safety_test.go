package safety

import (
	"strings"
	"testing"
	"time"

	"github.com/damii-health/wellnessd/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  models.SafetyVerdict
	}{
		{"neutral check-in", "I am stressed about work and sleeping badly", models.VerdictNone},
		{"empty", "", models.VerdictNone},
		{"critical direct", "I want to kill myself", models.VerdictCritical},
		{"critical uppercase", "I WANT TO KILL MYSELF", models.VerdictCritical},
		{"critical embedded", "lately I've been thinking about suicide a lot", models.VerdictCritical},
		{"critical want to die", "some days I just want to die", models.VerdictCritical},
		{"critical self harm", "I keep wanting to hurt myself", models.VerdictCritical},
		{"critical ending it all", "I keep thinking about ending it all", models.VerdictCritical},
		{"concerning hopeless", "everything feels hopeless lately", models.VerdictConcerning},
		{"concerning worthless", "I feel so worthless at my job", models.VerdictConcerning},
		{"concerning cant go on", "I can't go on like this", models.VerdictConcerning},
		{"concerning no one cares", "it feels like no one cares about me", models.VerdictConcerning},
		{"critical wins over concerning", "I feel hopeless and I want to die", models.VerdictCritical},
		{"benign mention of dying phone", "my phone battery keeps dying", models.VerdictNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.input); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	input := "I feel hopeless and completely alone"
	first := Classify(input)
	for i := 0; i < 10; i++ {
		if got := Classify(input); got != first {
			t.Fatalf("verdict changed across calls: %q then %q", first, got)
		}
	}
}

func TestCrisisResponse(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	out := CrisisResponse(now)

	if !out.SafetyFlag {
		t.Error("crisis response must set safetyFlag")
	}
	if out.SafetyMessage == nil || *out.SafetyMessage == "" {
		t.Error("crisis response must carry a safety message")
	}
	if err := out.Validate(); err != nil {
		t.Errorf("crisis response failed validation: %v", err)
	}
	if !strings.Contains(out.WellnessTips, "988") {
		t.Error("crisis resources must include the 988 lifeline")
	}
	if out.PersonalizedPlan.Timeframe != "immediately" {
		t.Errorf("timeframe = %q, want %q", out.PersonalizedPlan.Timeframe, "immediately")
	}
	if !strings.HasPrefix(out.PersonalizedPlan.ID, "crisis-support-") {
		t.Errorf("unexpected plan id %q", out.PersonalizedPlan.ID)
	}
	for _, step := range out.PersonalizedPlan.Steps {
		if step.Priority != models.PriorityHigh {
			t.Errorf("crisis step %s priority = %q, want high", step.ID, step.Priority)
		}
	}
}

func TestCrisisResponseDeterministic(t *testing.T) {
	now := time.Unix(1748779200, 0)
	a := CrisisResponse(now)
	b := CrisisResponse(now)
	if a.PersonalizedPlan.ID != b.PersonalizedPlan.ID {
		t.Errorf("same timestamp produced different ids: %q vs %q", a.PersonalizedPlan.ID, b.PersonalizedPlan.ID)
	}
}

func TestCrisisChatReply(t *testing.T) {
	reply := CrisisChatReply()
	if !strings.Contains(reply, "988") {
		t.Error("chat crisis reply must include the 988 lifeline")
	}
	if !strings.Contains(reply, "741741") {
		t.Error("chat crisis reply must include the crisis text line")
	}
}

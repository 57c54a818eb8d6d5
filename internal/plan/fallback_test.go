package plan

import (
	"testing"
	"time"

	"github.com/damii-health/wellnessd/internal/models"
)

var fallbackNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestFallbackAlwaysValid(t *testing.T) {
	inputs := []string{
		"",
		"just a normal day",
		"stressed and tired and eating junk food and can't sleep and feeling sad",
		"stress sleep junk food tired sad", // every theme at once
	}
	for _, in := range inputs {
		out := Fallback(in, fallbackNow)
		if err := out.Validate(); err != nil {
			t.Errorf("Fallback(%q) produced invalid output: %v", in, err)
		}
		if out.SafetyFlag || out.SafetyMessage != nil {
			t.Errorf("Fallback(%q) must not set safety fields", in)
		}
		if out.EmotionalSupport == "" || out.WellnessTips == "" {
			t.Errorf("Fallback(%q) missing support text", in)
		}
	}
}

func TestFallbackDeterministic(t *testing.T) {
	a := Fallback("stressed about work", fallbackNow)
	b := Fallback("stressed about work", fallbackNow)
	if a.PersonalizedPlan.ID != b.PersonalizedPlan.ID {
		t.Errorf("ids differ for identical input and time: %q vs %q", a.PersonalizedPlan.ID, b.PersonalizedPlan.ID)
	}
	if a.PersonalizedPlan.Title != b.PersonalizedPlan.Title {
		t.Error("titles differ for identical input")
	}
	if len(a.PersonalizedPlan.Steps) != len(b.PersonalizedPlan.Steps) {
		t.Error("step counts differ for identical input")
	}
}

func TestFallbackGenericInput(t *testing.T) {
	out := Fallback("I had an okay week overall", fallbackNow)
	p := out.PersonalizedPlan
	if p.Title != "Daily Wellness Basics" {
		t.Errorf("title = %q, want baseline", p.Title)
	}
	if len(p.Steps) != 3 {
		t.Errorf("baseline plan should have 3 steps, got %d", len(p.Steps))
	}
	if p.ID != "plan-general-1748779200" {
		t.Errorf("id = %q", p.ID)
	}
}

func TestFallbackStressTheme(t *testing.T) {
	out := Fallback("I feel so stressed and overwhelmed", fallbackNow)
	p := out.PersonalizedPlan
	if p.Title != "Stress Relief Basics" {
		t.Errorf("title = %q, want stress override", p.Title)
	}
	if !hasStep(p, "fallback-stress") {
		t.Error("expected breathing step for stress input")
	}
}

func TestFallbackThemeOrderLaterOverrideWins(t *testing.T) {
	// Stress and sleep both carry header overrides; sleep is applied later.
	out := Fallback("stressed at work and my sleep is terrible", fallbackNow)
	p := out.PersonalizedPlan
	if p.Title != "Better Sleep Routine" {
		t.Errorf("title = %q, want the sleep override to win", p.Title)
	}
	if !hasStep(p, "fallback-stress") || !hasStep(p, "fallback-sleep") {
		t.Error("both themes should still contribute steps")
	}
}

func TestFallbackEnergyAndNutritionAddStepsOnly(t *testing.T) {
	out := Fallback("I'm tired all the time and eat junk food", fallbackNow)
	p := out.PersonalizedPlan
	// Nutrition carries a header override; energy does not.
	if p.Title != "Steady Energy Through Food" {
		t.Errorf("title = %q", p.Title)
	}
	if !hasStep(p, "fallback-energy") {
		t.Error("expected daylight step for tiredness")
	}
	if !hasStep(p, "fallback-nutrition") {
		t.Error("expected nutrition step for junk food")
	}
}

func TestFallbackAllThemesStayInBounds(t *testing.T) {
	out := Fallback("stressed, can't sleep, eating junk food, tired, and sad", fallbackNow)
	p := out.PersonalizedPlan
	if len(p.Steps) > models.MaxPlanSteps {
		t.Errorf("steps = %d exceeds max %d", len(p.Steps), models.MaxPlanSteps)
	}
	if len(p.SummaryBullets) > models.MaxSummaryBullets {
		t.Errorf("bullets = %d exceeds max %d", len(p.SummaryBullets), models.MaxSummaryBullets)
	}
	if len(p.Steps) != 8 {
		t.Errorf("all five themes plus baseline should give 8 steps, got %d", len(p.Steps))
	}
	if p.ID != "plan-stress-sleep-nutrition-energy-mood-1748779200" {
		t.Errorf("id = %q", p.ID)
	}
}

func hasStep(p models.PersonalizedPlan, id string) bool {
	for _, s := range p.Steps {
		if s.ID == id {
			return true
		}
	}
	return false
}

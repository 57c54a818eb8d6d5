package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/damii-health/wellnessd/internal/models"
)

// theme is a life-context category detected via keyword match, used to personalize
// fallback plans when all generation tiers have failed.
type theme struct {
	name     string
	keywords []string
	// title/overview override the plan header when non-empty. Themes are applied in
	// slice order, so a later theme's override wins; that order is part of the
	// synthesizer's contract and must not be rearranged.
	title    string
	overview string
	bullet   string
	step     models.PlanStep
}

func intPtr(n int) *int { return &n }

// Themes in fixed application order: stress, sleep, nutrition carry header overrides;
// energy and mood contribute steps only. The accumulation is bounded: 3 baseline steps
// plus at most one step per theme stays within the 8-step limit, and 3 baseline
// bullets plus at most three theme bullets stays within the 6-bullet limit.
var fallbackThemes = []theme{
	{
		name:     "stress",
		keywords: []string{"stress", "stressed", "anxious", "anxiety", "overwhelmed", "pressure", "worried", "tense"},
		title:    "Stress Relief Basics",
		overview: "Simple daily actions to release tension and give your mind short, reliable breaks.",
		bullet:   "Short breathing breaks to interrupt stress spirals",
		step: models.PlanStep{
			ID:              "fallback-stress",
			Text:            "Pause for 2 minutes of slow box breathing when tension builds",
			Category:        models.CategoryBreathing,
			DurationMinutes: intPtr(2),
			Frequency:       "2-3 times daily",
			Priority:        models.PriorityHigh,
		},
	},
	{
		name:     "sleep",
		keywords: []string{"sleep", "insomnia", "awake", "restless", "can't fall asleep", "cant fall asleep", "tossing"},
		title:    "Better Sleep Routine",
		overview: "A consistent wind-down routine to help your body learn when it is time to rest.",
		bullet:   "A consistent wind-down routine before bed",
		step: models.PlanStep{
			ID:        "fallback-sleep",
			Text:      "Put screens away 30 minutes before bed and dim the lights",
			Category:  models.CategorySleep,
			Frequency: "nightly",
			Priority:  models.PriorityHigh,
			When:      "evening",
		},
	},
	{
		name:     "nutrition",
		keywords: []string{"junk food", "eating", "appetite", "meals", "diet", "snack", "snacking", "sugar"},
		title:    "Steady Energy Through Food",
		overview: "Small, regular eating habits that keep your energy and mood steadier through the day.",
		bullet:   "One small, regular eating habit at a time",
		step: models.PlanStep{
			ID:        "fallback-nutrition",
			Text:      "Add one piece of fruit or a handful of vegetables to a meal today",
			Category:  models.CategoryNutrition,
			Frequency: "daily",
			Priority:  models.PriorityMedium,
		},
	},
	{
		name:     "energy",
		keywords: []string{"tired", "exhausted", "fatigue", "drained", "low energy", "sluggish", "no energy"},
		step: models.PlanStep{
			ID:              "fallback-energy",
			Text:            "Step outside for 5 minutes of daylight soon after waking",
			Category:        models.CategoryMovement,
			DurationMinutes: intPtr(5),
			Frequency:       "every morning",
			Priority:        models.PriorityMedium,
			When:            "morning",
		},
	},
	{
		name:     "mood",
		keywords: []string{"sad", "down", "low mood", "unmotivated", "flat", "blue", "miserable"},
		step: models.PlanStep{
			ID:               "fallback-mood",
			Text:             "Write down one small thing that went okay today",
			Category:         models.CategoryCognitive,
			DurationMinutes:  intPtr(3),
			Frequency:        "daily",
			Priority:         models.PriorityLow,
			When:             "evening",
			FollowUpQuestion: "What made that moment a little easier?",
		},
	},
}

const fallbackEmotionalSupport = "Thank you for sharing how you're feeling - that takes courage. " +
	"Whatever you're carrying right now, small consistent actions can make the next few days feel " +
	"a little lighter, and you don't have to change everything at once."

const fallbackWellnessTips = "Start with the basics: keep water within reach through the day, move " +
	"gently for a few minutes when you can, and protect a regular bedtime. Small habits compound."

// Fallback deterministically synthesizes a valid plan from the sanitized input. It is
// the guaranteed-success terminal tier: pure, total, and never calls an external service.
func Fallback(sanitized string, now time.Time) models.WellnessPlanOutput {
	plan := models.PersonalizedPlan{
		Title:    "Daily Wellness Basics",
		Overview: "A gentle baseline of hydration and movement to steady your week.",
		SummaryBullets: []string{
			"Regular water through the day",
			"A short walk to reset body and mind",
			"Small steps, repeated daily",
		},
		Steps: []models.PlanStep{
			{
				ID:        "fallback-hydration",
				Text:      "Drink a glass of water with every meal and one mid-morning",
				Category:  models.CategoryHydration,
				Frequency: "daily",
				Priority:  models.PriorityMedium,
			},
			{
				ID:              "fallback-movement",
				Text:            "Take a 10-minute walk, ideally outside",
				Category:        models.CategoryMovement,
				DurationMinutes: intPtr(10),
				Frequency:       "daily",
				Priority:        models.PriorityMedium,
			},
			{
				ID:              "fallback-checkin",
				Text:            "Take 2 minutes to notice how you're feeling, without judgment",
				Category:        models.CategoryCognitive,
				DurationMinutes: intPtr(2),
				Frequency:       "daily",
				Priority:        models.PriorityLow,
			},
		},
		EstimatedEffort: models.EffortLow,
		Timeframe:       "1 week",
	}

	lower := strings.ToLower(sanitized)
	var matched []string
	for _, t := range fallbackThemes {
		if !themeMatches(lower, t) {
			continue
		}
		matched = append(matched, t.name)
		if t.title != "" {
			plan.Title = t.title
			plan.Overview = t.overview
		}
		if t.bullet != "" && len(plan.SummaryBullets) < models.MaxSummaryBullets {
			plan.SummaryBullets = append(plan.SummaryBullets, t.bullet)
		}
		if len(plan.Steps) < models.MaxPlanSteps {
			plan.Steps = append(plan.Steps, t.step)
		}
	}

	if len(matched) > 0 {
		plan.ID = fmt.Sprintf("plan-%s-%d", strings.Join(matched, "-"), now.Unix())
	} else {
		plan.ID = fmt.Sprintf("plan-general-%d", now.Unix())
	}

	return models.WellnessPlanOutput{
		EmotionalSupport: fallbackEmotionalSupport,
		WellnessTips:     fallbackWellnessTips,
		PersonalizedPlan: plan,
		SafetyFlag:       false,
		SafetyMessage:    nil,
	}
}

func themeMatches(lower string, t theme) bool {
	for _, kw := range t.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

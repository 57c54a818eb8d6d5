package plan

import (
	"fmt"
	"strings"

	"github.com/damii-health/wellnessd/internal/models"
)

// contextRule maps detected life-context keywords to a personalization instruction
// for the model. Rules are data so they can be audited and extended without touching
// prompt assembly.
type contextRule struct {
	keywords    []string
	instruction string
}

var contextRules = []contextRule{
	{
		keywords:    []string{"work", "deadline", "deadlines", "meeting", "meetings", "boss", "job", "office"},
		instruction: "The user mentions work stress: prefer desk-friendly actions that fit into a workday (short walks, posture resets, scheduled breaks).",
	},
	{
		keywords:    []string{"anxious", "anxiety", "panic", "nervous", "worried", "worry", "overwhelmed"},
		instruction: "The user mentions anxiety: include at least one breathing-focused step (e.g. box breathing, 4-7-8) and keep steps small and calming.",
	},
	{
		keywords:    []string{"sleep", "insomnia", "can't sleep", "cant sleep", "tired at night", "awake at night"},
		instruction: "The user mentions sleep trouble: include at least one sleep-category step on sleep hygiene (consistent bedtime, screens off, wind-down routine).",
	},
	{
		keywords:    []string{"lonely", "alone", "isolated", "no friends"},
		instruction: "The user mentions loneliness: include a social-category step with a low-pressure way to connect with someone.",
	},
	{
		keywords:    []string{"tired", "exhausted", "fatigue", "low energy", "drained"},
		instruction: "The user mentions low energy: favor gentle movement and hydration steps; avoid demanding workouts.",
	},
	{
		keywords:    []string{"junk food", "eating badly", "skipping meals", "no appetite", "overeating"},
		instruction: "The user mentions eating patterns: include a nutrition-category step with one small, concrete food habit.",
	},
}

const plannerRole = `You are DAMII: Your Wellness Assistant, a holistic tool that supports users who are feeling down or experiencing general health and wellness concerns. You are supportive and non-diagnostic. You are not a doctor and never provide medical advice.`

const plannerRequirements = `Create a personalized wellness plan from the user's description. Requirements:
- emotionalSupport: 2-4 sentences of validation and coping strategies for stress, anxiety, or low mood.
- wellnessTips: 2-4 sentences of safe, actionable advice on hydration, sleep hygiene, gentle movement, and nutrition.
- personalizedPlan: 3 to 8 concrete micro-action steps the user can realistically do. Step text is imperative and at most 120 characters. Give each step a short stable id like "step-1".
- summaryBullets: 3 to 6 short bullets summarizing the plan.
- Set safetyFlag to false and safetyMessage to null unless the input itself requires a safety note.
- Ground every step in something the user actually said.`

// Few-shot example kept deliberately small; it anchors step granularity and id style.
const plannerExample = `Example (for input "I'm stressed about exams and barely sleep"):
{
  "emotionalSupport": "Exam pressure is genuinely hard, and running on little sleep makes everything feel heavier. Being this worried shows you care about doing well - you deserve rest too.",
  "wellnessTips": "Keep a water bottle at your desk and take a short walk between study blocks. Try to stop studying 30 minutes before bed and keep your bedtime consistent, even during exam week.",
  "personalizedPlan": {
    "id": "exam-stress-reset",
    "title": "Exam Week Reset",
    "overview": "Small study-break and wind-down habits to lower stress and protect your sleep during exams.",
    "summaryBullets": ["Short breaks between study blocks", "A fixed wind-down routine before bed", "Hydration through the day"],
    "steps": [
      {"id": "step-1", "text": "Take a 5-minute walk after every 50 minutes of studying", "category": "movement", "durationMinutes": 5, "frequency": "every study block", "priority": "high", "when": "during study sessions", "safety": null, "followUpQuestion": null},
      {"id": "step-2", "text": "Do 4-7-8 breathing for 2 minutes when worry spikes", "category": "breathing", "durationMinutes": 2, "frequency": "as needed", "priority": "medium", "when": "when feeling overwhelmed", "safety": null, "followUpQuestion": "What moment today felt most stressful?"},
      {"id": "step-3", "text": "Put screens away 30 minutes before your target bedtime", "category": "sleep", "durationMinutes": null, "frequency": "nightly", "priority": "high", "when": "evening", "safety": null, "followUpQuestion": null}
    ],
    "estimatedEffort": "low",
    "timeframe": "exam week"
  },
  "safetyFlag": false,
  "safetyMessage": null
}`

// concerningAnnotation is prepended when the safety verdict is "concerning": generation
// proceeds, but the model is told to respond gently and point at professional support.
const concerningAnnotation = `SAFETY NOTE: The user's message contains language suggesting emotional distress. Respond with extra gentleness and warmth. In emotionalSupport, encourage them to consider talking to a mental health professional or a trusted person. Do not be alarmist and do not diagnose.`

// BuildPrompt assembles the generation instruction from the sanitized input and the
// safety verdict. Pure: the wording is a fixed template parameterized only by its inputs.
func BuildPrompt(sanitized string, verdict models.SafetyVerdict) (systemPrompt, userPrompt string) {
	var sb strings.Builder
	if verdict == models.VerdictConcerning {
		sb.WriteString(concerningAnnotation)
		sb.WriteString("\n\n")
	}
	sb.WriteString(plannerRole)
	sb.WriteString("\n\n")
	sb.WriteString(plannerRequirements)

	if rules := matchContextRules(sanitized); len(rules) > 0 {
		sb.WriteString("\n\nPersonalization rules for this input:\n")
		for _, r := range rules {
			sb.WriteString("- ")
			sb.WriteString(r)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nRespond with a single JSON object with exactly this shape:\n")
	sb.WriteString(shapeDescription())
	sb.WriteString("\n")
	sb.WriteString(plannerExample)

	userPrompt = fmt.Sprintf("User describes how they are feeling:\n\n%s\n\nCreate their personalized wellness plan now.", sanitized)
	return sb.String(), userPrompt
}

// BuildStrictRetryPrompt builds the tier-2 instruction: same content as the first
// attempt plus an uncompromising JSON-only directive for manual extraction.
func BuildStrictRetryPrompt(sanitized string, verdict models.SafetyVerdict) (systemPrompt, userPrompt string) {
	systemPrompt, userPrompt = BuildPrompt(sanitized, verdict)
	systemPrompt += `

OUTPUT REQUIREMENTS (CRITICAL):
- Return ONLY the JSON object - no prose, no explanations before or after
- No markdown fencing
- Start your response with { and end with }
- The JSON must be valid and parseable`
	return systemPrompt, userPrompt
}

func matchContextRules(sanitized string) []string {
	lower := strings.ToLower(sanitized)
	var matched []string
	for _, rule := range contextRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, rule.instruction)
				break
			}
		}
	}
	return matched
}

package safety

import (
	"fmt"
	"time"

	"github.com/damii-health/wellnessd/internal/models"
)

// Crisis resources enumerated in the fixed response. Kept as data so they can be
// updated without touching the response construction.
var crisisResources = []string{
	"988 Suicide & Crisis Lifeline: call or text 988 (24/7)",
	"Crisis Text Line: text HOME to 741741",
	"International Association for Suicide Prevention: https://www.iasp.info/resources/Crisis_Centres/",
	"If you are in immediate danger, call your local emergency number (911 in the US)",
}

const crisisEmotionalSupport = "I'm really sorry you're going through this. You are not alone, " +
	"and what you're feeling right now can change with the right support. Please reach out to " +
	"someone who can help you right away - you deserve immediate, real support from a person."

const crisisSafetyMessage = "We detected language about self-harm or suicide in your message. " +
	"This assistant cannot provide crisis care. Please contact a crisis line now - trained " +
	"counselors are available 24/7 and the call or text is free and confidential."

// CrisisResponse builds the fixed crisis payload returned when the classifier signals
// critical risk. This path is terminal: the generative model is never called, trading
// personalization for guaranteed latency and safety-appropriate content.
func CrisisResponse(now time.Time) models.WellnessPlanOutput {
	tips := "Immediate support resources:\n"
	for _, r := range crisisResources {
		tips += "- " + r + "\n"
	}

	msg := crisisSafetyMessage
	return models.WellnessPlanOutput{
		EmotionalSupport: crisisEmotionalSupport,
		WellnessTips:     tips,
		PersonalizedPlan: models.PersonalizedPlan{
			ID:       fmt.Sprintf("crisis-support-%d", now.Unix()),
			Title:    "Immediate Crisis Support",
			Overview: "Your safety comes first. These steps connect you with people who can help right now.",
			SummaryBullets: []string{
				"Contact a crisis line immediately - you do not have to face this alone",
				"Stay with someone you trust, or ask someone to stay with you",
				"Remove anything nearby you could use to hurt yourself",
			},
			Steps: []models.PlanStep{
				{
					ID:       "crisis-1",
					Text:     "Call or text 988 (Suicide & Crisis Lifeline) immediately",
					Category: models.CategorySocial,
					Priority: models.PriorityHigh,
					When:     "right now",
				},
				{
					ID:       "crisis-2",
					Text:     "Make your immediate surroundings safe and move away from anything harmful",
					Category: models.CategoryOther,
					Priority: models.PriorityHigh,
					When:     "right now",
				},
				{
					ID:       "crisis-3",
					Text:     "Reach a trusted person and ask them to stay with you until help arrives",
					Category: models.CategorySocial,
					Priority: models.PriorityHigh,
					When:     "right now",
				},
			},
			EstimatedEffort: models.EffortLow,
			Timeframe:       "immediately",
		},
		SafetyFlag:    true,
		SafetyMessage: &msg,
	}
}

// CrisisChatReply is the fixed chat response used when crisis language appears in the
// conversational path. Same policy as CrisisResponse: no model call is made.
func CrisisChatReply() string {
	reply := crisisEmotionalSupport + "\n\n"
	for _, r := range crisisResources {
		reply += "- " + r + "\n"
	}
	return reply
}

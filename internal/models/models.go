// Package models defines the core data structures for wellnessd.
//
// It includes the wellness plan types produced by the generation pipeline and the
// persistence/request types shared across modules.
package models

import (
	"errors"
	"strings"
	"time"
)

// StepCategory classifies a plan step by the kind of micro-action it suggests.
type StepCategory string

const (
	CategoryMovement  StepCategory = "movement"
	CategorySleep     StepCategory = "sleep"
	CategoryHydration StepCategory = "hydration"
	CategoryNutrition StepCategory = "nutrition"
	CategorySocial    StepCategory = "social"
	CategoryBreathing StepCategory = "breathing"
	CategoryCognitive StepCategory = "cognitive"
	CategoryOther     StepCategory = "other"
)

// EffortLevel describes the overall effort a plan asks of the user.
type EffortLevel string

const (
	EffortLow    EffortLevel = "low"
	EffortMedium EffortLevel = "medium"
	EffortHigh   EffortLevel = "high"
)

// StepPriority ranks a step within a plan.
type StepPriority string

const (
	PriorityLow    StepPriority = "low"
	PriorityMedium StepPriority = "medium"
	PriorityHigh   StepPriority = "high"
)

// Validation constants for plan structure
const (
	// MinPlanSteps defines the minimum number of steps a valid plan must contain
	MinPlanSteps = 3
	// MaxPlanSteps defines the maximum number of steps a valid plan may contain
	MaxPlanSteps = 8
	// MinSummaryBullets defines the minimum number of summary bullets for a valid plan
	MinSummaryBullets = 3
	// MaxSummaryBullets defines the maximum number of summary bullets for a valid plan
	MaxSummaryBullets = 6
	// MaxStepTextLength defines the contractual maximum length for step text
	MaxStepTextLength = 120
	// MaxSanitizedInputLength defines the cap applied to user input before processing
	MaxSanitizedInputLength = 2000
	// MinWellnessInputLength defines the minimum accepted length for a wellness check-in
	MinWellnessInputLength = 10
)

// Error variables for better error handling and testability
var (
	ErrEmptyPlanID           = errors.New("plan id cannot be empty")
	ErrEmptyPlanTitle        = errors.New("plan title cannot be empty")
	ErrStepCountOutOfRange   = errors.New("plan step count out of range")
	ErrBulletCountOutOfRange = errors.New("summary bullet count out of range")
	ErrInvalidStepCategory   = errors.New("invalid step category")
	ErrInvalidEffortLevel    = errors.New("invalid effort level")
	ErrInvalidStepPriority   = errors.New("invalid step priority")
	ErrNegativeDuration      = errors.New("step duration cannot be negative")
	ErrEmptyStepText         = errors.New("step text cannot be empty")
	ErrSafetyFlagMismatch    = errors.New("safety flag and safety message must be set together")
	ErrInputTooShort         = errors.New("wellness input too short")
	ErrInvalidMoodValue      = errors.New("mood must be between 1 and 5")
	ErrEmptyChatMessage      = errors.New("chat message cannot be empty")
)

// IsValidStepCategory checks if the given step category is supported.
func IsValidStepCategory(c StepCategory) bool {
	switch c {
	case CategoryMovement, CategorySleep, CategoryHydration, CategoryNutrition,
		CategorySocial, CategoryBreathing, CategoryCognitive, CategoryOther:
		return true
	default:
		return false
	}
}

// IsValidEffortLevel checks if the given effort level is supported.
func IsValidEffortLevel(e EffortLevel) bool {
	switch e {
	case EffortLow, EffortMedium, EffortHigh:
		return true
	default:
		return false
	}
}

// IsValidStepPriority checks if the given step priority is supported.
func IsValidStepPriority(p StepPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// PlanStep is one actionable micro-action inside a personalized plan.
type PlanStep struct {
	ID               string       `json:"id"`
	Text             string       `json:"text"`
	Category         StepCategory `json:"category"`
	DurationMinutes  *int         `json:"durationMinutes,omitempty"`
	Frequency        string       `json:"frequency,omitempty"`
	Priority         StepPriority `json:"priority,omitempty"`
	When             string       `json:"when,omitempty"`
	Safety           string       `json:"safety,omitempty"`
	FollowUpQuestion string       `json:"followUpQuestion,omitempty"`
}

// Validate checks a single plan step against the schema constraints.
func (s *PlanStep) Validate() error {
	if s.Text == "" {
		return ErrEmptyStepText
	}
	if !IsValidStepCategory(s.Category) {
		return ErrInvalidStepCategory
	}
	if s.Priority != "" && !IsValidStepPriority(s.Priority) {
		return ErrInvalidStepPriority
	}
	if s.DurationMinutes != nil && *s.DurationMinutes < 0 {
		return ErrNegativeDuration
	}
	return nil
}

// PersonalizedPlan is the structured micro-action plan inside a wellness response.
type PersonalizedPlan struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Overview        string      `json:"overview"`
	SummaryBullets  []string    `json:"summaryBullets"`
	Steps           []PlanStep  `json:"steps"`
	EstimatedEffort EffortLevel `json:"estimatedEffort"`
	Timeframe       string      `json:"timeframe"`
}

// Validate performs structural validation on a personalized plan. A plan returned by
// the generative model that fails validation is treated as a generation failure, not
// surfaced to the caller.
func (p *PersonalizedPlan) Validate() error {
	if p.ID == "" {
		return ErrEmptyPlanID
	}
	if p.Title == "" {
		return ErrEmptyPlanTitle
	}
	if len(p.Steps) < MinPlanSteps || len(p.Steps) > MaxPlanSteps {
		return ErrStepCountOutOfRange
	}
	if len(p.SummaryBullets) < MinSummaryBullets || len(p.SummaryBullets) > MaxSummaryBullets {
		return ErrBulletCountOutOfRange
	}
	if !IsValidEffortLevel(p.EstimatedEffort) {
		return ErrInvalidEffortLevel
	}
	for i := range p.Steps {
		if err := p.Steps[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// WellnessPlanOutput is the top-level response of the plan-generation pipeline.
// SafetyFlag is true exactly when SafetyMessage is non-nil.
type WellnessPlanOutput struct {
	EmotionalSupport string           `json:"emotionalSupport"`
	WellnessTips     string           `json:"wellnessTips"`
	PersonalizedPlan PersonalizedPlan `json:"personalizedPlan"`
	SafetyFlag       bool             `json:"safetyFlag"`
	SafetyMessage    *string          `json:"safetyMessage,omitempty"`
}

// Validate checks the full output invariants, including the safety flag/message pairing.
func (o *WellnessPlanOutput) Validate() error {
	if o.SafetyFlag != (o.SafetyMessage != nil) {
		return ErrSafetyFlagMismatch
	}
	return o.PersonalizedPlan.Validate()
}

// SafetyVerdict is the outcome of heuristic crisis-language detection.
type SafetyVerdict string

const (
	// VerdictNone indicates no safety-relevant language was detected.
	VerdictNone SafetyVerdict = "none"
	// VerdictConcerning indicates crisis-adjacent language; generation proceeds gently.
	VerdictConcerning SafetyVerdict = "concerning"
	// VerdictCritical indicates explicit crisis language; generation is bypassed.
	VerdictCritical SafetyVerdict = "critical"
)

// SavedPlan is a persisted wellness plan document. The store assigns ID and CreatedAt;
// the embedded output is stored exactly as produced by the pipeline.
type SavedPlan struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	Plan      WellnessPlanOutput `json:"plan"`
	CreatedAt time.Time          `json:"created_at"`
}

// MoodLog is a single mood check-in recorded by a user.
type MoodLog struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Mood       int       `json:"mood"` // 1-5 scale
	Activities []string  `json:"activities,omitempty"`
	Date       string    `json:"date"` // ISO date, e.g. "2026-08-28"
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate validates a mood log entry.
func (m *MoodLog) Validate() error {
	if m.Mood < 1 || m.Mood > 5 {
		return ErrInvalidMoodValue
	}
	if m.Date != "" {
		if _, err := time.Parse("2006-01-02", m.Date); err != nil {
			return errors.New("date must be in YYYY-MM-DD format")
		}
	}
	return nil
}

// Chat roles as stored in history and replayed to the model.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn of the supportive chat history.
type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// WellnessRequest is the payload for the plan-generation endpoint.
type WellnessRequest struct {
	Input string `json:"input"`
}

// Validate enforces the minimum check-in length used by the intake form.
func (r *WellnessRequest) Validate() error {
	if len(r.Input) < MinWellnessInputLength {
		return ErrInputTooShort
	}
	return nil
}

// SavePlanRequest is the payload for saving a generated plan.
type SavePlanRequest struct {
	Plan WellnessPlanOutput `json:"plan"`
	Name string             `json:"name,omitempty"` // optional user-chosen title override
}

// RenamePlanRequest is the payload for renaming a saved plan.
type RenamePlanRequest struct {
	Title string `json:"title"`
}

// ChatRequest is the payload for the supportive chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// Validate checks that the chat message is non-empty.
func (r *ChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return ErrEmptyChatMessage
	}
	return nil
}

package plan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/damii-health/wellnessd/internal/genai"
	"github.com/damii-health/wellnessd/internal/models"
	"github.com/damii-health/wellnessd/internal/safety"
	"github.com/damii-health/wellnessd/internal/sanitize"
)

// StrictRetryTemperature is the lowered sampling temperature used by the tier-2
// JSON-only retry.
const StrictRetryTemperature = 0.2

// strategy is one attempt tier in the ordered generation sequence. A strategy either
// produces a validated output or reports failure; the pipeline then moves on.
type strategy struct {
	name string
	run  func(ctx context.Context, sanitized string, verdict models.SafetyVerdict) (models.WellnessPlanOutput, error)
}

// Pipeline runs the safety-gated plan generation sequence: sanitize, classify,
// crisis short-circuit, then the tiered generation strategies ending in the
// guaranteed-success fallback synthesizer.
type Pipeline struct {
	client     genai.ClientInterface
	strategies []strategy
	now        func() time.Time
}

// NewPipeline creates a plan generation pipeline backed by the given GenAI client.
// The client may be nil, in which case generation goes straight to the fallback tier.
func NewPipeline(client genai.ClientInterface) *Pipeline {
	p := &Pipeline{
		client: client,
		now:    time.Now,
	}
	// Tier order is fixed: each tier's precondition is the definite failure of the
	// previous one, so this list must never be reordered or parallelized.
	p.strategies = []strategy{
		{name: "structured", run: p.structuredAttempt},
		{name: "strict_json_retry", run: p.strictJSONRetry},
	}
	return p
}

// GeneratePlan is the single inbound operation of the pipeline. It never returns an
// error under normal operation: generation failures degrade through the tiers and the
// final tier is total. The returned output always satisfies the schema invariants.
func (p *Pipeline) GeneratePlan(ctx context.Context, rawInput string) (models.WellnessPlanOutput, error) {
	sanitized := sanitize.Input(rawInput)
	verdict := safety.Classify(sanitized)
	slog.Debug("Pipeline.GeneratePlan: input classified", "verdict", verdict, "inputLength", len(sanitized))

	if verdict == models.VerdictCritical {
		// Terminal path: no model call, fixed crisis payload.
		slog.Info("Pipeline.GeneratePlan: critical language detected, returning crisis response")
		return safety.CrisisResponse(p.now()), nil
	}

	if p.client != nil {
		for _, s := range p.strategies {
			out, err := s.run(ctx, sanitized, verdict)
			if err != nil {
				// Tier failures are logged with enough context to diagnose prompt or
				// schema drift, then swallowed so the next tier can run.
				slog.Warn("Pipeline.GeneratePlan: generation tier failed", "tier", s.name, "error", err)
				continue
			}
			slog.Info("Pipeline.GeneratePlan: plan generated", "tier", s.name, "planID", out.PersonalizedPlan.ID, "steps", len(out.PersonalizedPlan.Steps))
			return out, nil
		}
	} else {
		slog.Debug("Pipeline.GeneratePlan: no GenAI client configured, using fallback synthesis")
	}

	out := Fallback(sanitized, p.now())
	if err := out.Validate(); err != nil {
		// The fallback tier must never fail; if it does, the invariant is broken and
		// the error propagates as fatal.
		return models.WellnessPlanOutput{}, fmt.Errorf("fallback plan failed validation: %w", err)
	}
	slog.Info("Pipeline.GeneratePlan: fallback plan synthesized", "planID", out.PersonalizedPlan.ID)
	return out, nil
}

// structuredAttempt is tier 1: schema-constrained generation.
func (p *Pipeline) structuredAttempt(ctx context.Context, sanitized string, verdict models.SafetyVerdict) (models.WellnessPlanOutput, error) {
	systemPrompt, userPrompt := BuildPrompt(sanitized, verdict)
	raw, err := p.client.GenerateStructured(ctx, systemPrompt, userPrompt, SchemaName, RawSchema())
	if err != nil {
		return models.WellnessPlanOutput{}, fmt.Errorf("structured generation: %w", err)
	}
	return p.decodeAndValidate(raw)
}

// strictJSONRetry is tier 2: a stricter instruction at lower temperature, raw text
// response, fence stripping and manual JSON extraction.
func (p *Pipeline) strictJSONRetry(ctx context.Context, sanitized string, verdict models.SafetyVerdict) (models.WellnessPlanOutput, error) {
	systemPrompt, userPrompt := BuildStrictRetryPrompt(sanitized, verdict)
	raw, err := p.client.GenerateFreeform(ctx, systemPrompt, userPrompt, StrictRetryTemperature)
	if err != nil {
		return models.WellnessPlanOutput{}, fmt.Errorf("freeform generation: %w", err)
	}
	return p.decodeAndValidate(raw)
}

// decodeAndValidate parses model output, normalizes best-effort identifiers, and
// enforces the schema invariants. Any failure is a tier failure.
func (p *Pipeline) decodeAndValidate(raw string) (models.WellnessPlanOutput, error) {
	out, err := ExtractOutput(raw)
	if err != nil {
		return models.WellnessPlanOutput{}, fmt.Errorf("extract output: %w", err)
	}
	p.normalizeIDs(&out)
	if err := out.Validate(); err != nil {
		return models.WellnessPlanOutput{}, fmt.Errorf("schema validation: %w", err)
	}
	return out, nil
}

// normalizeIDs fills missing identifiers with time-derived values. IDs are best-effort
// unique; an absent id is recoverable and should not burn a generation tier.
func (p *Pipeline) normalizeIDs(out *models.WellnessPlanOutput) {
	if out.PersonalizedPlan.ID == "" {
		out.PersonalizedPlan.ID = fmt.Sprintf("plan-%d", p.now().UnixNano())
	}
	for i := range out.PersonalizedPlan.Steps {
		if out.PersonalizedPlan.Steps[i].ID == "" {
			out.PersonalizedPlan.Steps[i].ID = fmt.Sprintf("step-%d", i+1)
		}
	}
}

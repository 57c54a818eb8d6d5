package plan

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/openai/openai-go"
)

// mockGenAIClient implements genai.ClientInterface with canned responses per tier.
type mockGenAIClient struct {
	structuredResult string
	structuredErr    error
	freeformResult   string
	freeformErr      error

	structuredCalls int
	freeformCalls   int

	lastStructuredSystem string
	lastStructuredUser   string
	lastFreeformSystem   string
	lastFreeformTemp     float64
}

func (m *mockGenAIClient) GeneratePromptWithContext(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "", errors.New("not used by the pipeline")
}

func (m *mockGenAIClient) GenerateStructured(ctx context.Context, systemPrompt, userPrompt, schemaName string, schema map[string]interface{}) (string, error) {
	m.structuredCalls++
	m.lastStructuredSystem = systemPrompt
	m.lastStructuredUser = userPrompt
	return m.structuredResult, m.structuredErr
}

func (m *mockGenAIClient) GenerateFreeform(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	m.freeformCalls++
	m.lastFreeformSystem = systemPrompt
	m.lastFreeformTemp = temperature
	return m.freeformResult, m.freeformErr
}

func (m *mockGenAIClient) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	return "", errors.New("not used by the pipeline")
}

func newTestPipeline(client *mockGenAIClient) *Pipeline {
	var p *Pipeline
	if client != nil {
		p = NewPipeline(client)
	} else {
		p = NewPipeline(nil)
	}
	p.now = func() time.Time { return fallbackNow }
	return p
}

func TestGeneratePlanStructuredSuccess(t *testing.T) {
	mock := &mockGenAIClient{structuredResult: validOutputJSON}
	p := newTestPipeline(mock)

	out, err := p.GeneratePlan(context.Background(), "stressed about work lately")
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if out.PersonalizedPlan.ID != "test-plan" {
		t.Errorf("plan id = %q, expected the structured tier's output", out.PersonalizedPlan.ID)
	}
	if mock.structuredCalls != 1 {
		t.Errorf("structured calls = %d, want 1", mock.structuredCalls)
	}
	if mock.freeformCalls != 0 {
		t.Errorf("freeform tier ran despite tier-1 success")
	}
}

func TestGeneratePlanFallsToStrictRetry(t *testing.T) {
	mock := &mockGenAIClient{
		structuredErr:  errors.New("model overloaded"),
		freeformResult: "```json\n" + validOutputJSON + "\n```",
	}
	p := newTestPipeline(mock)

	out, err := p.GeneratePlan(context.Background(), "stressed about work lately")
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if mock.structuredCalls != 1 || mock.freeformCalls != 1 {
		t.Errorf("calls = (%d, %d), want tier 1 then tier 2", mock.structuredCalls, mock.freeformCalls)
	}
	if mock.lastFreeformTemp != StrictRetryTemperature {
		t.Errorf("retry temperature = %v, want %v", mock.lastFreeformTemp, StrictRetryTemperature)
	}
	if out.PersonalizedPlan.ID != "test-plan" {
		t.Errorf("plan id = %q", out.PersonalizedPlan.ID)
	}
}

func TestGeneratePlanInvalidStructuredOutputTriggersRetry(t *testing.T) {
	// Tier 1 returns parseable JSON that fails validation (too few steps).
	bad := strings.Replace(validOutputJSON, `"summaryBullets": ["one", "two", "three"]`, `"summaryBullets": ["one"]`, 1)
	mock := &mockGenAIClient{
		structuredResult: bad,
		freeformResult:   validOutputJSON,
	}
	p := newTestPipeline(mock)

	out, err := p.GeneratePlan(context.Background(), "stressed about work lately")
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if mock.freeformCalls != 1 {
		t.Error("invalid tier-1 output should trigger the retry tier")
	}
	if err := out.Validate(); err != nil {
		t.Errorf("returned plan invalid: %v", err)
	}
}

func TestGeneratePlanAllTiersFailUsesFallback(t *testing.T) {
	mock := &mockGenAIClient{
		structuredErr: errors.New("boom"),
		freeformErr:   errors.New("boom again"),
	}
	p := newTestPipeline(mock)

	out, err := p.GeneratePlan(context.Background(), "stressed and can't sleep")
	if err != nil {
		t.Fatalf("GeneratePlan must not fail when tiers fail: %v", err)
	}
	if err := out.Validate(); err != nil {
		t.Errorf("fallback output invalid: %v", err)
	}
	if out.PersonalizedPlan.EstimatedEffort == "" || out.PersonalizedPlan.Timeframe == "" {
		t.Error("fallback plan missing effort or timeframe")
	}
	if !strings.HasPrefix(out.PersonalizedPlan.ID, "plan-stress-sleep-") {
		t.Errorf("expected themed fallback id, got %q", out.PersonalizedPlan.ID)
	}
}

func TestGeneratePlanNilClientUsesFallback(t *testing.T) {
	p := newTestPipeline(nil)
	out, err := p.GeneratePlan(context.Background(), "feeling quite tired this week")
	if err != nil {
		t.Fatalf("GeneratePlan failed without a client: %v", err)
	}
	if err := out.Validate(); err != nil {
		t.Errorf("fallback output invalid: %v", err)
	}
}

func TestGeneratePlanCrisisShortCircuit(t *testing.T) {
	mock := &mockGenAIClient{structuredResult: validOutputJSON}
	p := newTestPipeline(mock)

	out, err := p.GeneratePlan(context.Background(), "I want to kill myself")
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if mock.structuredCalls != 0 || mock.freeformCalls != 0 {
		t.Error("crisis path must never call the model")
	}
	if !out.SafetyFlag || out.SafetyMessage == nil {
		t.Error("crisis response must set the safety fields")
	}
	if !strings.HasPrefix(out.PersonalizedPlan.ID, "crisis-support-") {
		t.Errorf("plan id = %q", out.PersonalizedPlan.ID)
	}
}

func TestGeneratePlanConcerningAnnotatesPrompt(t *testing.T) {
	mock := &mockGenAIClient{structuredResult: validOutputJSON}
	p := newTestPipeline(mock)

	_, err := p.GeneratePlan(context.Background(), "everything feels hopeless at work")
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if mock.structuredCalls != 1 {
		t.Fatal("concerning input should still reach the model")
	}
	if !strings.Contains(mock.lastStructuredSystem, "SAFETY NOTE") {
		t.Error("concerning verdict should annotate the system prompt")
	}
}

func TestGeneratePlanSanitizesBeforeClassification(t *testing.T) {
	mock := &mockGenAIClient{structuredErr: errors.New("fail"), freeformErr: errors.New("fail")}
	p := newTestPipeline(mock)

	_, err := p.GeneratePlan(context.Background(), "stressed, reach me at jane@example.com")
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if strings.Contains(mock.lastStructuredUser, "jane@example.com") {
		t.Error("raw PII leaked into the prompt")
	}
	if !strings.Contains(mock.lastStructuredUser, "[email]") {
		t.Error("expected the masked placeholder in the prompt")
	}
}

func TestGeneratePlanNormalizesMissingIDs(t *testing.T) {
	missing := strings.Replace(validOutputJSON, `"id": "test-plan"`, `"id": ""`, 1)
	missing = strings.Replace(missing, `"id": "step-1"`, `"id": ""`, 1)
	mock := &mockGenAIClient{structuredResult: missing}
	p := newTestPipeline(mock)

	out, err := p.GeneratePlan(context.Background(), "stressed about work lately")
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if out.PersonalizedPlan.ID == "" {
		t.Error("empty plan id should be filled in")
	}
	if out.PersonalizedPlan.Steps[0].ID != "step-1" {
		t.Errorf("step id = %q, want normalized step-1", out.PersonalizedPlan.Steps[0].ID)
	}
}

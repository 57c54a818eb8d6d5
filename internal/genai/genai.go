// Package genai wraps the OpenAI chat completion API for wellness plan generation
// and supportive chat.
package genai

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// Default generation parameters. Structured plan output benefits from a moderate
// temperature; the strict-JSON retry lowers it separately.
const (
	DefaultModel               = openai.ChatModelGPT4oMini
	DefaultTemperature         = 0.7
	DefaultMaxCompletionTokens = 2048
)

// Error variables for better error handling and testability
var (
	ErrAPIKeyNotSet      = errors.New("OPENAI_API_KEY not set")
	ErrNoChoicesReturned = errors.New("no choices returned")
	ErrEmptyCompletion   = errors.New("completion content is empty")
)

// chatService defines the minimal interface for chat completions, allowing tests to
// substitute a mock without a network dependency.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// openaiChatService adapts the real OpenAI completion service to chatService.
type openaiChatService struct {
	svc openai.ChatCompletionService
}

func (s *openaiChatService) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := s.svc.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// Opts holds configuration for the GenAI client.
type Opts struct {
	APIKey              string
	Model               shared.ChatModel
	Temperature         float64
	MaxCompletionTokens int64
}

// Option configures the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key (overrides $OPENAI_API_KEY).
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel sets the chat model to use.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = shared.ChatModel(model) }
}

// WithTemperature sets the default sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *Opts) { o.Temperature = t }
}

// WithMaxCompletionTokens sets the completion token budget.
func WithMaxCompletionTokens(n int64) Option {
	return func(o *Opts) { o.MaxCompletionTokens = n }
}

// Client wraps the OpenAI chat completion service.
type Client struct {
	chat                chatService
	model               shared.ChatModel
	temperature         float64
	maxCompletionTokens int64
}

// ClientInterface defines the generation operations consumed by the plan pipeline
// and the chat handler. Implemented by Client and by test mocks.
type ClientInterface interface {
	// GeneratePromptWithContext runs a plain system+user completion at the default temperature.
	GeneratePromptWithContext(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// GenerateStructured runs a completion constrained to the given JSON schema and
	// returns the raw JSON content.
	GenerateStructured(ctx context.Context, systemPrompt, userPrompt, schemaName string, schema map[string]interface{}) (string, error)
	// GenerateFreeform runs an unconstrained completion at an explicit temperature.
	GenerateFreeform(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
	// GenerateWithMessages runs a completion over a full message history.
	GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)
}

// NewClient initializes a GenAI client. The API key comes from options or the
// OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Opts{
		Model:               DefaultModel,
		Temperature:         DefaultTemperature,
		MaxCompletionTokens: DefaultMaxCompletionTokens,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	key := cfg.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return nil, ErrAPIKeyNotSet
	}

	cli := openai.NewClient(option.WithAPIKey(key))
	return &Client{
		chat:                &openaiChatService{svc: cli.Chat.Completions},
		model:               cfg.Model,
		temperature:         cfg.Temperature,
		maxCompletionTokens: cfg.MaxCompletionTokens,
	}, nil
}

// GeneratePromptWithContext generates a response from system and user prompts.
func (c *Client) GeneratePromptWithContext(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature:         openai.Float(c.temperature),
		MaxCompletionTokens: openai.Int(c.maxCompletionTokens),
	}
	return c.complete(ctx, params)
}

// GenerateStructured requests a completion constrained to the given JSON schema via
// the json_schema response format in strict mode, returning the raw JSON content.
func (c *Client) GenerateStructured(ctx context.Context, systemPrompt, userPrompt, schemaName string, schema map[string]interface{}) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature:         openai.Float(c.temperature),
		MaxCompletionTokens: openai.Int(c.maxCompletionTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schemaName,
					Strict: openai.Bool(true),
					Schema: schema,
				},
			},
		},
	}
	return c.complete(ctx, params)
}

// GenerateFreeform requests an unconstrained completion at an explicit temperature.
// Used by the strict-JSON retry tier, which parses the raw text itself.
func (c *Client) GenerateFreeform(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(c.maxCompletionTokens),
	}
	return c.complete(ctx, params)
}

// GenerateWithMessages runs a completion over a full message history.
func (c *Client) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:               c.model,
		Messages:            messages,
		Temperature:         openai.Float(c.temperature),
		MaxCompletionTokens: openai.Int(c.maxCompletionTokens),
	}
	return c.complete(ctx, params)
}

func (c *Client) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	resp, err := c.chat.Create(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

package LlmClient

import (
	"context"
	"fmt"
	"strings"

	"slack-todo-extractor/Models"
)

type ToolSchema = Models.ToolSchema
type ToolCall = Models.ToolCall
type ToolCallResponse = Models.ToolCallResponse
type SamplingOptions = Models.SamplingOptions

// system prompt shared by every backend
const systemInstruction = "You are a helpful assistant that extracts and structures information from text."
const systemInstructionWithTools = systemInstruction + " Use the provided tools to extract todos."

const (
	DefaultTemperature       float32 = 0.3
	DefaultMaxTokens                 = 1000
	DefaultMaxTokensForTools         = 2000
)

// LlmClient is the provider-agnostic interface over a chat-completion
// backend. GenerateWithTools leaves the tool choice to the model ("auto"),
// so an empty ToolCalls slice is a normal outcome, not an error.
type LlmClient interface {
	Generate(ctx context.Context, prompt string, opts SamplingOptions) (string, error)
	GenerateWithTools(ctx context.Context, prompt string, tools []ToolSchema, opts SamplingOptions) (*ToolCallResponse, error)
}

// ConfigurationError is returned at client construction time for an unknown
// provider or a missing credential. It never occurs during a generation call.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "llm configuration error: " + e.Reason
}

// InvocationError is the single error type every backend failure during a
// generation call surfaces as. The clients perform no retries; retry policy
// belongs to the caller.
type InvocationError struct {
	Provider string
	Err      error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("error calling %s API: %s", e.Provider, e.Err.Error())
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// CreateLlmClient builds a client for the given provider identifier.
// model may be empty to use the provider's default. API keys come from the
// environment (OPENAI_API_KEY, GROQ_API_KEY, GEMINI_API_KEY).
func CreateLlmClient(ctx context.Context, provider string, model string) (LlmClient, error) {
	switch strings.ToLower(provider) {
	case "openai":
		return NewOpenAiClient("", model)
	case "groq":
		return NewGroqClient("", model)
	case "gemini":
		return NewGeminiClient(ctx, "", model)
	default:
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("unsupported LLM provider: %q. Supported providers: 'openai', 'groq', 'gemini'", provider),
		}
	}
}

func temperatureOrDefault(opts SamplingOptions) float32 {
	if opts.Temperature > 0 {
		return opts.Temperature
	}
	return DefaultTemperature
}

func maxTokensOrDefault(opts SamplingOptions, fallback int) int {
	if opts.MaxTokens > 0 {
		return opts.MaxTokens
	}
	return fallback
}

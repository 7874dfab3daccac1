package LlmClient

import (
	"context"
	"os"

	"github.com/sashabaranov/go-openai"
)

const groqBaseUrl = "https://api.groq.com/openai/v1"
const defaultGroqModel = "llama-3.1-70b-versatile"

// GroqClient talks to the Groq API. Groq exposes an OpenAI-compatible
// chat-completions endpoint, so it reuses the same client pointed at
// Groq's base URL.
type GroqClient struct {
	client *openai.Client
	model  string
}

func NewGroqClient(apiKey string, model string) (*GroqClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}
	if apiKey == "" {
		return nil, &ConfigurationError{Reason: "Groq API key is required. Set GROQ_API_KEY environment variable."}
	}
	if model == "" {
		model = defaultGroqModel
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = groqBaseUrl

	return &GroqClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

func (c *GroqClient) Generate(ctx context.Context, prompt string, opts SamplingOptions) (string, error) {
	return chatCompletionText(ctx, c.client, "Groq", c.model, prompt, opts)
}

func (c *GroqClient) GenerateWithTools(ctx context.Context, prompt string, tools []ToolSchema, opts SamplingOptions) (*ToolCallResponse, error) {
	return chatCompletionWithTools(ctx, c.client, "Groq", c.model, prompt, tools, opts)
}

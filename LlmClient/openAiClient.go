package LlmClient

import (
	"context"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const defaultOpenAiModel = "gpt-4o-mini"

// OpenAiClient talks to the OpenAI chat-completions API.
type OpenAiClient struct {
	client *openai.Client
	model  string
}

func NewOpenAiClient(apiKey string, model string) (*OpenAiClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, &ConfigurationError{Reason: "OpenAI API key is required. Set OPENAI_API_KEY environment variable."}
	}
	if model == "" {
		model = defaultOpenAiModel
	}

	return &OpenAiClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

func (c *OpenAiClient) Generate(ctx context.Context, prompt string, opts SamplingOptions) (string, error) {
	return chatCompletionText(ctx, c.client, "OpenAI", c.model, prompt, opts)
}

func (c *OpenAiClient) GenerateWithTools(ctx context.Context, prompt string, tools []ToolSchema, opts SamplingOptions) (*ToolCallResponse, error) {
	return chatCompletionWithTools(ctx, c.client, "OpenAI", c.model, prompt, tools, opts)
}

// chatCompletionText and chatCompletionWithTools are shared between the
// OpenAI and Groq clients because Groq speaks the same wire protocol.
func chatCompletionText(
	ctx context.Context,
	client *openai.Client,
	provider string,
	model string,
	prompt string,
	opts SamplingOptions) (string, error) {

	response, chatCompletionError := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperatureOrDefault(opts),
		MaxTokens:   maxTokensOrDefault(opts, DefaultMaxTokens),
	})
	if chatCompletionError != nil {
		return "", &InvocationError{Provider: provider, Err: chatCompletionError}
	}
	if len(response.Choices) == 0 {
		return "", nil
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func chatCompletionWithTools(
	ctx context.Context,
	client *openai.Client,
	provider string,
	model string,
	prompt string,
	tools []ToolSchema,
	opts SamplingOptions) (*ToolCallResponse, error) {

	// map the provider-agnostic schemas onto the OpenAI tool shape
	var openAiTools []openai.Tool
	for _, tool := range tools {
		openAiTools = append(openAiTools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	response, chatCompletionError := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstructionWithTools},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Tools: openAiTools,
		// the model decides whether to call a tool at all; "no todos"
		// legitimately comes back as zero tool calls
		ToolChoice:  "auto",
		Temperature: temperatureOrDefault(opts),
		MaxTokens:   maxTokensOrDefault(opts, DefaultMaxTokensForTools),
	})
	if chatCompletionError != nil {
		return nil, &InvocationError{Provider: provider, Err: chatCompletionError}
	}

	result := &ToolCallResponse{}
	if len(response.Choices) == 0 {
		return result, nil
	}

	message := response.Choices[0].Message
	result.Content = strings.TrimSpace(message.Content)

	for _, toolCall := range message.ToolCalls {
		if toolCall.Type != openai.ToolTypeFunction {
			continue
		}
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			Id:            toolCall.ID,
			FunctionName:  toolCall.Function.Name,
			ArgumentsJson: toolCall.Function.Arguments,
		})
	}

	return result, nil
}

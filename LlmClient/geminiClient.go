package LlmClient

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiClient talks to the Gemini API through google.golang.org/genai.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey string, model string) (*GeminiClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, &ConfigurationError{Reason: "Gemini API key is required. Set GEMINI_API_KEY environment variable."}
	}
	if model == "" {
		model = defaultGeminiModel
	}

	genAiClient, genAiClientError := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if genAiClientError != nil {
		return nil, &ConfigurationError{Reason: "failed to create Gemini client: " + genAiClientError.Error()}
	}

	return &GeminiClient{
		client: genAiClient,
		model:  model,
	}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts SamplingOptions) (string, error) {
	generateContentResult, generateContentError := c.client.Models.GenerateContent(
		ctx,
		c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			Temperature:       genai.Ptr(temperatureOrDefault(opts)),
			MaxOutputTokens:   int32(maxTokensOrDefault(opts, DefaultMaxTokens)),
		},
	)
	if generateContentError != nil {
		return "", &InvocationError{Provider: "Gemini", Err: generateContentError}
	}

	return strings.TrimSpace(generateContentResult.Text()), nil
}

func (c *GeminiClient) GenerateWithTools(ctx context.Context, prompt string, tools []ToolSchema, opts SamplingOptions) (*ToolCallResponse, error) {
	var functionDeclarations []*genai.FunctionDeclaration
	for _, tool := range tools {
		functionDeclarations = append(functionDeclarations, &genai.FunctionDeclaration{
			Name:                 tool.Name,
			Description:          tool.Description,
			ParametersJsonSchema: tool.Parameters,
		})
	}

	generateContentResult, generateContentError := c.client.Models.GenerateContent(
		ctx,
		c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstructionWithTools, genai.RoleUser),
			Temperature:       genai.Ptr(temperatureOrDefault(opts)),
			MaxOutputTokens:   int32(maxTokensOrDefault(opts, DefaultMaxTokensForTools)),
			Tools:             []*genai.Tool{{FunctionDeclarations: functionDeclarations}},
			ToolConfig: &genai.ToolConfig{
				// AUTO keeps "no todos found" expressible as zero calls
				FunctionCallingConfig: &genai.FunctionCallingConfig{
					Mode: genai.FunctionCallingConfigModeAuto,
				},
			},
		},
	)
	if generateContentError != nil {
		return nil, &InvocationError{Provider: "Gemini", Err: generateContentError}
	}

	result := &ToolCallResponse{
		Content: strings.TrimSpace(generateContentResult.Text()),
	}

	// Gemini hands arguments back already parsed; re-encode them so every
	// backend exposes the same untrusted-JSON ToolCall shape.
	for _, functionCall := range generateContentResult.FunctionCalls() {
		argumentsJson, marshalError := json.Marshal(functionCall.Args)
		if marshalError != nil {
			continue
		}
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			Id:            functionCall.ID,
			FunctionName:  functionCall.Name,
			ArgumentsJson: string(argumentsJson),
		})
	}

	return result, nil
}

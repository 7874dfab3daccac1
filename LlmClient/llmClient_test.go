package LlmClient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLlmClientUnknownProvider(t *testing.T) {
	client, err := CreateLlmClient(context.Background(), "mystery-llm", "")

	assert.Nil(t, client)
	require.Error(t, err)
	var configurationError *ConfigurationError
	require.ErrorAs(t, err, &configurationError)
	assert.Contains(t, err.Error(), "unsupported LLM provider")
}

func TestNewOpenAiClientRequiresApiKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	client, err := NewOpenAiClient("", "")

	assert.Nil(t, client)
	var configurationError *ConfigurationError
	require.ErrorAs(t, err, &configurationError)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestNewGroqClientRequiresApiKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")

	client, err := NewGroqClient("", "")

	assert.Nil(t, client)
	var configurationError *ConfigurationError
	require.ErrorAs(t, err, &configurationError)
	assert.Contains(t, err.Error(), "GROQ_API_KEY")
}

func TestNewOpenAiClientDefaultModel(t *testing.T) {
	client, err := NewOpenAiClient("test-key", "")

	require.NoError(t, err)
	assert.Equal(t, defaultOpenAiModel, client.model)
}

func TestNewOpenAiClientModelOverride(t *testing.T) {
	client, err := NewOpenAiClient("test-key", "gpt-4o")

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", client.model)
}

func TestNewGroqClientDefaultModel(t *testing.T) {
	client, err := NewGroqClient("test-key", "")

	require.NoError(t, err)
	assert.Equal(t, defaultGroqModel, client.model)
}

func TestCreateLlmClientProviderIsCaseInsensitive(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	client, err := CreateLlmClient(context.Background(), "OpenAI", "")

	require.NoError(t, err)
	assert.IsType(t, &OpenAiClient{}, client)
}

func TestInvocationErrorWrapsCause(t *testing.T) {
	cause := assert.AnError
	err := &InvocationError{Provider: "Groq", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "Groq")
}

func TestSamplingDefaults(t *testing.T) {
	assert.Equal(t, DefaultTemperature, temperatureOrDefault(SamplingOptions{}))
	assert.Equal(t, float32(0.9), temperatureOrDefault(SamplingOptions{Temperature: 0.9}))
	assert.Equal(t, DefaultMaxTokensForTools, maxTokensOrDefault(SamplingOptions{}, DefaultMaxTokensForTools))
	assert.Equal(t, 512, maxTokensOrDefault(SamplingOptions{MaxTokens: 512}, DefaultMaxTokensForTools))
}

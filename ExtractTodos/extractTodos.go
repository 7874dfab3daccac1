package ExtractTodos

import (
	"context"
	"log"

	"slack-todo-extractor/BuildPrompt"
	"slack-todo-extractor/LlmClient"
	"slack-todo-extractor/Models"
)

type Todo = Models.Todo
type NormalizedMessage = Models.NormalizedMessage
type LastBotMessage = Models.LastBotMessage

// TodoExtractor drives one extraction: prompt, LLM tool call, decode.
type TodoExtractor struct {
	llmClient LlmClient.LlmClient
}

func NewTodoExtractor(llmClient LlmClient.LlmClient) *TodoExtractor {
	return &TodoExtractor{llmClient: llmClient}
}

// ExtractTodos extracts pending action items from the given conversation.
// It never returns an error: an LLM failure degrades to an empty result so
// a backend outage looks the same as "no todos found" to the caller.
func (e *TodoExtractor) ExtractTodos(
	ctx context.Context,
	messages []NormalizedMessage,
	lastBotMessage *LastBotMessage) []Todo {

	// nothing to analyze, skip the LLM call entirely
	if len(messages) == 0 {
		log.Printf("ExtractTodos:ExtractTodos#No messages provided for todo extraction")
		return []Todo{}
	}

	prompt := BuildPrompt.GetTodoExtractionPrompt(messages, lastBotMessage)
	tools := BuildPrompt.GetTodoExtractionToolSchema()

	response, generateWithToolsError := e.llmClient.GenerateWithTools(ctx, prompt, tools, Models.SamplingOptions{
		Temperature: 0.3,
		MaxTokens:   2000,
	})
	if generateWithToolsError != nil {
		log.Printf("ExtractTodos:ExtractTodos#Error extracting todos: %s", generateWithToolsError.Error())
		return []Todo{}
	}

	todos := ParseToolCalls(response.ToolCalls)
	log.Printf("ExtractTodos:ExtractTodos#Extracted %d todos from %d messages", len(todos), len(messages))
	return todos
}

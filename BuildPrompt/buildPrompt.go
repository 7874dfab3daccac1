package BuildPrompt

import (
	"fmt"
	"strings"

	"slack-todo-extractor/Models"
)

type NormalizedMessage = Models.NormalizedMessage
type LastBotMessage = Models.LastBotMessage
type ToolSchema = Models.ToolSchema

// TodoFunctionName is the single function the extraction prompt tells the
// model to call. The decoder skips tool calls with any other name.
const TodoFunctionName = "extract_todos"

// GetTodoExtractionToolSchema returns the static tool schema for todo
// extraction. The shape is fixed: one function taking a required todos
// array of {description (required), assigned_to (nullable)} objects.
func GetTodoExtractionToolSchema() []ToolSchema {
	return []ToolSchema{
		{
			Name:        TodoFunctionName,
			Description: "Extract todos, tasks, and action items from Slack messages. Call this function for each todo found.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"todos": map[string]any{
						"type":        "array",
						"description": "List of todos extracted from the messages",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"description": map[string]any{
									"type":        "string",
									"description": "Clear description of the todo/task",
								},
								"assigned_to": map[string]any{
									"type":        "string",
									"description": "Username or person assigned to the task (null if not mentioned)",
									"nullable":    true,
								},
							},
							"required": []string{"description"},
						},
					},
				},
				"required": []string{"todos"},
			},
		},
	}
}

// GetTodoExtractionPrompt renders the conversation transcript and the task
// instructions. Messages must already be in chronological order; the
// connector is responsible for reversing Slack's newest-first history.
func GetTodoExtractionPrompt(messages []NormalizedMessage, lastBotMessage *LastBotMessage) string {
	var transcript strings.Builder
	for _, message := range messages {
		transcript.WriteString(fmt.Sprintf("[%s] %s: %s\n", message.Timestamp, message.Author, message.Text))
	}

	// when the bot has posted before, show the model its own last message
	// so already-surfaced todos are not extracted again
	botMessageText := ""
	specialInstructions := ""
	if lastBotMessage != nil {
		botMessageText = "# Last Bot Message from the Channel:\n"
		botMessageText += fmt.Sprintf("[%s] %s", lastBotMessage.Timestamp, lastBotMessage.Text)
		specialInstructions = "- Refer to the last bot message from the channel when extracting todos to avoid duplicates."
	}

	prompt := fmt.Sprintf(`
# Context:
## Slack Channel Conversation:
%s

%s

# Task
- Analyze the Slack conversation and extract all todos and action items that are still pending and need to be done.
- If an imperative sentence is said by person X, that is a todo for person Y.
%s

For each todo, identify:
- The task description
- Who it's assigned to (if mentioned)

Use the extract_todos function to record all found todos. If no todos are found, call the function with an empty array.`,
		transcript.String(), botMessageText, specialInstructions)

	return prompt
}

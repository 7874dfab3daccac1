package ExtractTodos

import (
	"encoding/json"
	"log"

	"slack-todo-extractor/BuildPrompt"
	"slack-todo-extractor/Models"
)

// ParseToolCalls turns the model's untrusted tool calls into validated
// todos. It is total: malformed JSON, wrong shapes and missing fields all
// degrade to fewer todos, never to an error. Output order follows call
// order, then entry order within each call.
func ParseToolCalls(toolCalls []Models.ToolCall) []Todo {
	todos := []Todo{}

	for _, toolCall := range toolCalls {
		// unexpected function names are skipped, not rejected
		if toolCall.FunctionName != BuildPrompt.TodoFunctionName {
			continue
		}

		var arguments map[string]any
		jsonUnmarshallError := json.Unmarshal([]byte(toolCall.ArgumentsJson), &arguments)
		if jsonUnmarshallError != nil {
			// one garbled call must not discard todos decoded from the others
			log.Printf("ExtractTodos:ParseToolCalls#Error parsing function arguments: %s", jsonUnmarshallError.Error())
			continue
		}

		entries, ok := arguments["todos"].([]any)
		if !ok {
			continue
		}

		for _, entry := range entries {
			entryObject, ok := entry.(map[string]any)
			if !ok {
				continue
			}

			description, ok := entryObject["description"].(string)
			if !ok || description == "" {
				continue
			}

			todo := Todo{Description: description}
			// assigned_to may be absent, null, or a string; only the
			// last one carries an assignee
			if assignedTo, ok := entryObject["assigned_to"].(string); ok {
				todo.AssignedTo = assignedTo
			}
			todos = append(todos, todo)
		}
	}

	return todos
}

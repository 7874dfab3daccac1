package ExtractTodos

import (
	"testing"

	"slack-todo-extractor/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolCallsWellFormed(t *testing.T) {
	toolCalls := []Models.ToolCall{
		{
			Id:            "call_1",
			FunctionName:  "extract_todos",
			ArgumentsJson: `{"todos": [{"description": "ship report", "assigned_to": "Sam"}, {"description": "review PR"}]}`,
		},
	}

	todos := ParseToolCalls(toolCalls)

	require.Len(t, todos, 2)
	assert.Equal(t, Todo{Description: "ship report", AssignedTo: "Sam"}, todos[0])
	assert.Equal(t, Todo{Description: "review PR"}, todos[1])
}

func TestParseToolCallsMalformedJson(t *testing.T) {
	toolCalls := []Models.ToolCall{
		{Id: "call_1", FunctionName: "extract_todos", ArgumentsJson: `{not json`},
	}

	todos := ParseToolCalls(toolCalls)

	assert.Empty(t, todos)
}

func TestParseToolCallsPartialTolerance(t *testing.T) {
	// one garbled call must not discard the todos from the good call
	toolCalls := []Models.ToolCall{
		{Id: "call_1", FunctionName: "extract_todos", ArgumentsJson: `{"todos": [{"description": "ship report"}]}`},
		{Id: "call_2", FunctionName: "extract_todos", ArgumentsJson: `{broken`},
	}

	todos := ParseToolCalls(toolCalls)

	require.Len(t, todos, 1)
	assert.Equal(t, "ship report", todos[0].Description)
}

func TestParseToolCallsEntryFiltering(t *testing.T) {
	toolCalls := []Models.ToolCall{
		{
			FunctionName:  "extract_todos",
			ArgumentsJson: `{"todos": [{"description": "ship report"}, {"assigned_to": "Sam"}, {"description": "", "assigned_to": "Lee"}]}`,
		},
	}

	todos := ParseToolCalls(toolCalls)

	require.Len(t, todos, 1)
	assert.Equal(t, Todo{Description: "ship report", AssignedTo: ""}, todos[0])
}

func TestParseToolCallsAssignedToMapping(t *testing.T) {
	toolCalls := []Models.ToolCall{
		{
			FunctionName:  "extract_todos",
			ArgumentsJson: `{"todos": [{"description": "review PR", "assigned_to": null}, {"description": "review PR", "assigned_to": "Ana"}]}`,
		},
	}

	todos := ParseToolCalls(toolCalls)

	require.Len(t, todos, 2)
	assert.Equal(t, "", todos[0].AssignedTo)
	assert.Equal(t, "Ana", todos[1].AssignedTo)
}

func TestParseToolCallsSkipsUnknownFunctionNames(t *testing.T) {
	toolCalls := []Models.ToolCall{
		{FunctionName: "summarize_channel", ArgumentsJson: `{"todos": [{"description": "should be ignored"}]}`},
		{FunctionName: "extract_todos", ArgumentsJson: `{"todos": [{"description": "kept"}]}`},
	}

	todos := ParseToolCalls(toolCalls)

	require.Len(t, todos, 1)
	assert.Equal(t, "kept", todos[0].Description)
}

func TestParseToolCallsToleratesWrongShapes(t *testing.T) {
	cases := []struct {
		name          string
		argumentsJson string
	}{
		{"todos missing", `{}`},
		{"todos not an array", `{"todos": "nothing here"}`},
		{"entry not an object", `{"todos": ["just a string", 42, null]}`},
		{"description not a string", `{"todos": [{"description": 7}]}`},
		{"arguments not an object", `[1, 2, 3]`},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			todos := ParseToolCalls([]Models.ToolCall{
				{FunctionName: "extract_todos", ArgumentsJson: testCase.argumentsJson},
			})
			assert.Empty(t, todos)
		})
	}
}

func TestParseToolCallsPreservesCallThenEntryOrder(t *testing.T) {
	toolCalls := []Models.ToolCall{
		{FunctionName: "extract_todos", ArgumentsJson: `{"todos": [{"description": "first"}, {"description": "second"}]}`},
		{FunctionName: "extract_todos", ArgumentsJson: `{"todos": [{"description": "third"}]}`},
	}

	todos := ParseToolCalls(toolCalls)

	require.Len(t, todos, 3)
	assert.Equal(t, "first", todos[0].Description)
	assert.Equal(t, "second", todos[1].Description)
	assert.Equal(t, "third", todos[2].Description)
}

func TestParseToolCallsEmptyInput(t *testing.T) {
	assert.Empty(t, ParseToolCalls(nil))
	assert.Empty(t, ParseToolCalls([]Models.ToolCall{}))
}

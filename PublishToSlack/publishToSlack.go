package PublishToSlack

import (
	"fmt"
	"strings"

	"slack-todo-extractor/Models"

	"github.com/slack-go/slack"
)

type Todo = Models.Todo

func formatTodosHeader(todos []Todo) string {
	if len(todos) == 1 {
		return "📋 *1 Todo Found*"
	}
	return fmt.Sprintf("📋 *%d Todos Found*", len(todos))
}

// formatTodosMessage builds the plain-text fallback used when Block Kit
// rendering is unavailable.
func formatTodosMessage(todos []Todo) string {
	var b strings.Builder

	b.WriteString(formatTodosHeader(todos))
	b.WriteString("\n\n")

	for i, todo := range todos {
		todoLine := fmt.Sprintf("*%d.* %s", i+1, todo.Description)
		if todo.AssignedTo != "" {
			todoLine += fmt.Sprintf(" (Assigned to: %s)", todo.AssignedTo)
		}
		b.WriteString(todoLine)
		b.WriteString("\n")
	}

	return b.String()
}

// buildTodoBlocks renders the todo list as Block Kit blocks: a header, a
// divider, then one section per todo with dividers between them.
func buildTodoBlocks(todos []Todo) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, strings.ReplaceAll(formatTodosHeader(todos), "*", ""), true, false)),
		slack.NewDividerBlock(),
	}

	for i, todo := range todos {
		todoText := fmt.Sprintf("*%d.* %s", i+1, todo.Description)
		if todo.AssignedTo != "" {
			todoText += fmt.Sprintf("\n👤 Assigned to: %s", todo.AssignedTo)
		}

		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, todoText, false, false), nil, nil))

		if i < len(todos)-1 {
			blocks = append(blocks, slack.NewDividerBlock())
		}
	}

	return blocks
}

// PostTodos publishes the extracted todos to the channel with link
// previews disabled.
func PostTodos(slackClient *slack.Client, channelId string, todos []Todo) error {
	msg := formatTodosMessage(todos)
	blocks := buildTodoBlocks(todos)

	_, _, postMessageError := slackClient.PostMessage(
		channelId,
		slack.MsgOptionText(msg, false),
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionPostMessageParameters(slack.PostMessageParameters{
			UnfurlLinks: false,
			UnfurlMedia: false,
		}),
	)
	if postMessageError != nil {
		return fmt.Errorf("error posting todos to Slack: %w", postMessageError)
	}

	return nil
}

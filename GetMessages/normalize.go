package GetMessages

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

// mention tokens look like <@U0123ABCD> or <@U0123ABCD|label>
var mentionTokenPattern = regexp.MustCompile(`<@([A-Z0-9]+)(?:\|[^>]*)?>`)

// NormalizeMessages converts raw Slack history into the message shape the
// extractor consumes. Slack returns history newest-first; the output is
// reversed into chronological order. Authors and in-text mention tokens
// are resolved to display names through lookup.
func NormalizeMessages(messages []slack.Message, lookup func(userId string) string) []NormalizedMessage {
	normalized := make([]NormalizedMessage, 0, len(messages))

	for i := len(messages) - 1; i >= 0; i-- {
		message := messages[i]
		normalized = append(normalized, NormalizedMessage{
			Text:      ResolveMentionTokens(message.Text, lookup),
			Author:    lookup(message.User),
			Timestamp: FormatSlackTimestamp(message.Timestamp),
		})
	}

	return normalized
}

// ResolveMentionTokens replaces every <@Uxxx> token in text with the
// resolved display name, prefixed with @ so the mention stays readable.
func ResolveMentionTokens(text string, lookup func(userId string) string) string {
	return mentionTokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		userId := mentionTokenPattern.FindStringSubmatch(token)[1]
		return "@" + lookup(userId)
	})
}

// FormatSlackTimestamp renders a raw Slack ts ("1728412800.000100") as a
// human-readable local time. Unparseable timestamps pass through as-is.
func FormatSlackTimestamp(ts string) string {
	seconds := ts
	if dotIndex := strings.Index(ts, "."); dotIndex >= 0 {
		seconds = ts[:dotIndex]
	}

	unixSeconds, parseError := strconv.ParseInt(seconds, 10, 64)
	if parseError != nil {
		return ts
	}

	return time.Unix(unixSeconds, 0).Format("2006-01-02 15:04:05")
}

// PickLastBotMessage returns the newest message authored by botUserId, or
// nil when the window contains none. History is newest-first, so the first
// match wins.
func PickLastBotMessage(messages []slack.Message, botUserId string) *LastBotMessage {
	for _, message := range messages {
		if message.User != botUserId {
			continue
		}
		return &LastBotMessage{
			Text:      message.Text,
			Timestamp: FormatSlackTimestamp(message.Timestamp),
		}
	}
	return nil
}

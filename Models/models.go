package Models

// NormalizedMessage is one chat message after Slack-specific enrichment.
// Author is a display name and Text has all <@Uxxx> mention tokens already
// resolved, so the LLM never sees raw Slack user IDs.
type NormalizedMessage struct {
	Text      string
	Author    string
	Timestamp string
}

// LastBotMessage is the last message this bot itself posted to the channel.
// It is passed to the extractor so the model can avoid re-reporting todos
// that were already surfaced.
type LastBotMessage struct {
	Text      string
	Timestamp string
}

// ToolSchema describes one callable function the LLM may invoke.
// Parameters is a JSON-schema object (nested maps/slices).
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is the provider-agnostic view of one function call made by the
// model. ArgumentsJson is untrusted text and may not be valid JSON.
type ToolCall struct {
	Id            string
	FunctionName  string
	ArgumentsJson string
}

// ToolCallResponse is what an LLM client returns from a tool-calling
// generation: the free-text content (possibly empty) and the ordered
// function calls (possibly none).
type ToolCallResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// SamplingOptions carries per-call generation parameters. Zero values mean
// "use the client's default".
type SamplingOptions struct {
	Temperature float32
	MaxTokens   int
}

// Todo is one validated action item extracted from a conversation.
// An empty AssignedTo means nobody was assigned.
type Todo struct {
	Description string `json:"description"`
	AssignedTo  string `json:"assigned_to,omitempty"`
}

type Channel struct {
	ChannelID string
}

// ExtractTodosRequest is the optional JSON body of POST /extract-todos.
// Missing fields fall back to the environment configuration.
type ExtractTodosRequest struct {
	ChannelName  string `json:"channel_name,omitempty"`
	MinutesAgo   *int   `json:"minutes_ago,omitempty"`
	MessageLimit *int   `json:"message_limit,omitempty"`
	PostToSlack  *bool  `json:"post_to_slack,omitempty"`
}

type ExtractTodosResponse struct {
	Todos             []Todo `json:"todos"`
	TotalMessages     int    `json:"total_messages"`
	TodosFound        int    `json:"todos_found"`
	Channel           string `json:"channel,omitempty"`
	TimeWindowMinutes *int   `json:"time_window_minutes,omitempty"`
}

type ChannelInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsPrivate bool   `json:"is_private"`
}

type ListChannelsResponse struct {
	Channels []ChannelInfo `json:"channels"`
	Total    int           `json:"total"`
}

type RegisterChannelRequest struct {
	ChannelName string `json:"channel_name"`
}

type RegisterChannelResponse struct {
	ChannelID         string `json:"channel_id"`
	AlreadyRegistered bool   `json:"already_registered"`
}

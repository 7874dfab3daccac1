package GetMessages

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"slack-todo-extractor/Models"

	"github.com/slack-go/slack"
)

type NormalizedMessage = Models.NormalizedMessage
type LastBotMessage = Models.LastBotMessage

// SlackService wraps the Slack Web API for fetching and normalizing
// channel messages.
type SlackService struct {
	client *slack.Client

	botUserIdMu sync.Mutex
	botUserId   string
}

func NewSlackService(token string, options ...slack.Option) (*SlackService, error) {
	if token == "" {
		token = os.Getenv("SLACK_BOT_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("SLACK_BOT_TOKEN not found. Set it in environment variables or pass as argument")
	}

	return &SlackService{client: slack.New(token, options...)}, nil
}

// Client exposes the underlying API client for the publisher.
func (s *SlackService) Client() *slack.Client {
	return s.client
}

// ListChannels returns every public and private channel the bot can see,
// following pagination cursors until the listing is exhausted.
func (s *SlackService) ListChannels() ([]slack.Channel, error) {
	var channels []slack.Channel
	cursor := ""

	for {
		page, nextCursor, getConversationsError := s.client.GetConversations(&slack.GetConversationsParameters{
			Types:  []string{"public_channel", "private_channel"},
			Cursor: cursor,
			Limit:  200,
		})
		if getConversationsError != nil {
			return nil, fmt.Errorf("error listing channels: %w", getConversationsError)
		}

		channels = append(channels, page...)
		if nextCursor == "" {
			return channels, nil
		}
		cursor = nextCursor
	}
}

// FindChannelId resolves a channel name to its ID, case-insensitively.
func (s *SlackService) FindChannelId(channelName string) (string, error) {
	channels, listChannelsError := s.ListChannels()
	if listChannelsError != nil {
		return "", listChannelsError
	}

	for _, channel := range channels {
		if strings.EqualFold(channel.Name, channelName) {
			return channel.ID, nil
		}
	}

	var availableChannels []string
	for _, channel := range channels {
		availableChannels = append(availableChannels, channel.Name)
	}
	return "", fmt.Errorf("channel %q not found. Available channels: %s",
		channelName, strings.Join(availableChannels, ", "))
}

// GetChannelMessages fetches up to limit messages from the named channel,
// optionally restricted to the last minutesAgo minutes (0 = no window),
// and returns them normalized and in chronological order.
func (s *SlackService) GetChannelMessages(channelName string, minutesAgo int, limit int) ([]NormalizedMessage, error) {
	channelId, findChannelError := s.FindChannelId(channelName)
	if findChannelError != nil {
		return nil, findChannelError
	}

	return s.GetChannelMessagesById(channelId, minutesAgo, limit)
}

// GetChannelMessagesById is GetChannelMessages for callers that already
// hold a channel ID, such as the scheduler walking the registry.
func (s *SlackService) GetChannelMessagesById(channelId string, minutesAgo int, limit int) ([]NormalizedMessage, error) {
	messages, getHistoryError := s.fetchHistory(channelId, minutesAgo, limit)
	if getHistoryError != nil {
		return nil, getHistoryError
	}

	log.Printf("GetMessages:GetChannelMessagesById#Retrieved %d messages from channel %s", len(messages), channelId)

	// one name cache per fetch; user lookups within a request hit the API
	// at most once per author
	userCache := map[string]string{}
	lookup := func(userId string) string {
		return s.resolveUserName(userId, userCache)
	}

	return NormalizeMessages(messages, lookup), nil
}

// GetLastBotMessage returns the newest message in the window that this
// bot posted itself, or nil when there is none. Only messages whose author
// matches the bot's own user ID count; other bots' output is ignored.
func (s *SlackService) GetLastBotMessage(channelId string, minutesAgo int, limit int) (*LastBotMessage, error) {
	botUserId, authError := s.getBotUserId()
	if authError != nil {
		return nil, authError
	}

	messages, getHistoryError := s.fetchHistory(channelId, minutesAgo, limit)
	if getHistoryError != nil {
		return nil, getHistoryError
	}

	return PickLastBotMessage(messages, botUserId), nil
}

func (s *SlackService) fetchHistory(channelId string, minutesAgo int, limit int) ([]slack.Message, error) {
	params := &slack.GetConversationHistoryParameters{
		ChannelID: channelId,
		Limit:     limit,
	}
	if minutesAgo > 0 {
		cutoff := time.Now().Add(-time.Duration(minutesAgo) * time.Minute)
		params.Oldest = fmt.Sprintf("%d.000000", cutoff.Unix())
	}

	history, getHistoryError := s.client.GetConversationHistory(params)
	if getHistoryError != nil {
		return nil, fmt.Errorf("error fetching messages from Slack: %w", getHistoryError)
	}

	return history.Messages, nil
}

// getBotUserId resolves and caches the bot's own user ID. The ID is only
// latched on success, so a transient auth.test failure is retried on the
// next call instead of poisoning the cache for the life of the process.
func (s *SlackService) getBotUserId() (string, error) {
	s.botUserIdMu.Lock()
	defer s.botUserIdMu.Unlock()

	if s.botUserId != "" {
		return s.botUserId, nil
	}

	authTestResponse, authTestError := s.client.AuthTest()
	if authTestError != nil {
		return "", fmt.Errorf("error resolving bot identity: %w", authTestError)
	}

	s.botUserId = authTestResponse.UserID
	return s.botUserId, nil
}

func (s *SlackService) resolveUserName(userId string, userCache map[string]string) string {
	if userId == "" {
		return "Unknown"
	}
	if userId == "USLACKBOT" {
		return "Slackbot"
	}
	if cachedName, ok := userCache[userId]; ok {
		return cachedName
	}

	userInfo, getUserInfoError := s.client.GetUserInfo(userId)
	if getUserInfoError != nil {
		// missing users:read scope or a deleted user; fall back to the ID
		log.Printf("GetMessages:resolveUserName#Could not fetch user info for %s: %s", userId, getUserInfoError.Error())
		userCache[userId] = userId
		return userId
	}

	userName := userInfo.RealName
	if userName == "" {
		userName = userInfo.Profile.DisplayName
	}
	if userName == "" {
		userName = userInfo.Name
	}
	if userName == "" {
		userName = userId
	}

	userCache[userId] = userName
	return userName
}

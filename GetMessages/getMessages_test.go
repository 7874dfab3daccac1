package GetMessages

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBotUserIdRetriesAfterFailure(t *testing.T) {
	authTestCalls := 0
	slackApi := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authTestCalls++
		w.Header().Set("Content-Type", "application/json")
		if authTestCalls == 1 {
			fmt.Fprint(w, `{"ok": false, "error": "fatal_error"}`)
			return
		}
		fmt.Fprint(w, `{"ok": true, "user_id": "UBOT", "user": "todo-bot", "team": "t", "team_id": "T1"}`)
	}))
	defer slackApi.Close()

	service, newServiceError := NewSlackService("test-token", slack.OptionAPIURL(slackApi.URL+"/"))
	require.NoError(t, newServiceError)

	// a transient auth.test failure must not latch
	_, firstError := service.getBotUserId()
	require.Error(t, firstError)

	botUserId, secondError := service.getBotUserId()
	require.NoError(t, secondError)
	assert.Equal(t, "UBOT", botUserId)

	// the ID is cached after the first success
	botUserId, thirdError := service.getBotUserId()
	require.NoError(t, thirdError)
	assert.Equal(t, "UBOT", botUserId)
	assert.Equal(t, 2, authTestCalls)
}

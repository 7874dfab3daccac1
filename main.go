package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"slack-todo-extractor/ExtractTodos"
	"slack-todo-extractor/GetMessages"
	"slack-todo-extractor/LlmClient"
	"slack-todo-extractor/Models"
	"slack-todo-extractor/PublishToSlack"
	"slack-todo-extractor/Repo"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type ExtractTodosRequest = Models.ExtractTodosRequest
type ExtractTodosResponse = Models.ExtractTodosResponse

// extractionDefaults is the env-supplied fallback for request parameters.
type extractionDefaults struct {
	ChannelName  string
	MinutesAgo   int
	MessageLimit int
	PostToSlack  bool
}

// server holds the explicitly constructed dependencies. Everything is built
// once in main and passed by reference; there are no lazily initialized
// package-level services.
type server struct {
	slackService  *GetMessages.SlackService
	todoExtractor *ExtractTodos.TodoExtractor
	dbPool        *pgxpool.Pool
	defaults      extractionDefaults
}

func loadExtractionDefaults() extractionDefaults {
	defaults := extractionDefaults{
		ChannelName:  os.Getenv("SLACK_CHANNEL_NAME"),
		MessageLimit: 100,
		PostToSlack:  true,
	}

	if minutesAgo := os.Getenv("SLACK_MINUTES_AGO"); minutesAgo != "" {
		if parsed, parseError := strconv.Atoi(minutesAgo); parseError == nil {
			defaults.MinutesAgo = parsed
		}
	}
	if limit := os.Getenv("SLACK_MESSAGE_LIMIT"); limit != "" {
		if parsed, parseError := strconv.Atoi(limit); parseError == nil && parsed > 0 {
			defaults.MessageLimit = parsed
		}
	}
	if postToSlack := os.Getenv("POST_TODOS_TO_SLACK"); strings.EqualFold(postToSlack, "false") {
		defaults.PostToSlack = false
	}

	return defaults
}

func writeJson(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if encodeError := json.NewEncoder(w).Encode(payload); encodeError != nil {
		log.Printf("main:writeJson#Error encoding response: %s", encodeError.Error())
	}
}

func (s *server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, map[string]any{
		"message": "Slack Todo Extraction API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"GET /health":             "Health check",
			"GET /channels":           "List channels the bot can access",
			"POST /channels/register": "Register a channel for scheduled extraction",
			"POST /extract-todos":     "Extract todos from a Slack channel",
		},
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJson(w, http.StatusMethodNotAllowed, map[string]string{"detail": "method not allowed"})
		return
	}

	channels, listChannelsError := s.slackService.ListChannels()
	if listChannelsError != nil {
		log.Printf("main:handleListChannels#Error listing channels: %s", listChannelsError.Error())
		writeJson(w, http.StatusInternalServerError, map[string]string{"detail": listChannelsError.Error()})
		return
	}

	response := Models.ListChannelsResponse{Channels: []Models.ChannelInfo{}}
	for _, channel := range channels {
		response.Channels = append(response.Channels, Models.ChannelInfo{
			ID:        channel.ID,
			Name:      channel.Name,
			IsPrivate: channel.IsPrivate,
		})
	}
	response.Total = len(response.Channels)

	writeJson(w, http.StatusOK, response)
}

func (s *server) handleRegisterChannel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJson(w, http.StatusMethodNotAllowed, map[string]string{"detail": "method not allowed"})
		return
	}
	if s.dbPool == nil {
		writeJson(w, http.StatusServiceUnavailable, map[string]string{"detail": "channel registry is not configured (DATABASE_URL is missing)"})
		return
	}

	var request Models.RegisterChannelRequest
	if decodeError := json.NewDecoder(r.Body).Decode(&request); decodeError != nil || request.ChannelName == "" {
		writeJson(w, http.StatusBadRequest, map[string]string{"detail": "channel_name is required"})
		return
	}

	channelId, findChannelError := s.slackService.FindChannelId(request.ChannelName)
	if findChannelError != nil {
		writeJson(w, http.StatusNotFound, map[string]string{"detail": findChannelError.Error()})
		return
	}

	alreadyRegistered, checkChannelError := Repo.CheckChannelInDb(channelId, s.dbPool)
	if checkChannelError != nil {
		log.Printf("main:handleRegisterChannel#Channel check failed: %s", checkChannelError.Error())
		writeJson(w, http.StatusInternalServerError, map[string]string{"detail": "failed to check channel in database"})
		return
	}

	if !alreadyRegistered {
		if saveChannelError := Repo.SaveChannelToDb(channelId, s.dbPool); saveChannelError != nil {
			log.Printf("main:handleRegisterChannel#Channel save failed: %s", saveChannelError.Error())
			writeJson(w, http.StatusInternalServerError, map[string]string{"detail": "failed to save channel to database"})
			return
		}
	}

	writeJson(w, http.StatusOK, Models.RegisterChannelResponse{
		ChannelID:         channelId,
		AlreadyRegistered: alreadyRegistered,
	})
}

func (s *server) handleExtractTodos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeJson(w, http.StatusMethodNotAllowed, map[string]string{"detail": "method not allowed"})
		return
	}

	request := ExtractTodosRequest{}
	if r.Method == http.MethodPost && r.Body != nil {
		// the body is optional; an empty or absent one means "use env config"
		decodeError := json.NewDecoder(r.Body).Decode(&request)
		if decodeError != nil && !errors.Is(decodeError, io.EOF) {
			writeJson(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body: " + decodeError.Error()})
			return
		}
	}

	channelName := request.ChannelName
	if channelName == "" {
		channelName = s.defaults.ChannelName
	}
	if channelName == "" {
		writeJson(w, http.StatusBadRequest, map[string]string{"detail": "SLACK_CHANNEL_NAME environment variable is required"})
		return
	}

	minutesAgo := s.defaults.MinutesAgo
	if request.MinutesAgo != nil {
		minutesAgo = *request.MinutesAgo
	}
	messageLimit := s.defaults.MessageLimit
	if request.MessageLimit != nil && *request.MessageLimit > 0 {
		messageLimit = *request.MessageLimit
	}
	postToSlack := s.defaults.PostToSlack
	if request.PostToSlack != nil {
		postToSlack = *request.PostToSlack
	}

	log.Printf("main:handleExtractTodos#Configuration: channel=%s, minutes_ago=%d, limit=%d", channelName, minutesAgo, messageLimit)

	channelId, findChannelError := s.slackService.FindChannelId(channelName)
	if findChannelError != nil {
		log.Printf("main:handleExtractTodos#Error resolving channel: %s", findChannelError.Error())
		writeJson(w, http.StatusNotFound, map[string]string{"detail": findChannelError.Error()})
		return
	}

	response, extractError := s.extractChannelTodos(r.Context(), channelId, minutesAgo, messageLimit, postToSlack)
	if extractError != nil {
		log.Printf("main:handleExtractTodos#Error fetching messages: %s", extractError.Error())
		writeJson(w, http.StatusInternalServerError, map[string]string{"detail": extractError.Error()})
		return
	}
	response.Channel = channelName
	if minutesAgo > 0 {
		response.TimeWindowMinutes = &minutesAgo
	}

	writeJson(w, http.StatusOK, response)
}

// extractChannelTodos runs one full extraction for a channel: fetch,
// extract, optionally publish. LLM failures inside the extractor degrade
// to an empty todo list; a Slack fetch failure is a transport error and
// is returned to the caller instead of being passed off as an empty
// window.
func (s *server) extractChannelTodos(ctx context.Context, channelId string, minutesAgo int, messageLimit int, postToSlack bool) (ExtractTodosResponse, error) {
	response := ExtractTodosResponse{Todos: []Models.Todo{}}

	messages, getMessagesError := s.slackService.GetChannelMessagesById(channelId, minutesAgo, messageLimit)
	if getMessagesError != nil {
		return response, getMessagesError
	}
	response.TotalMessages = len(messages)

	if len(messages) == 0 {
		log.Printf("main:extractChannelTodos#No messages found in the specified time window")
		return response, nil
	}

	// best effort; extraction still works without the duplicate hint
	lastBotMessage, getLastBotMessageError := s.slackService.GetLastBotMessage(channelId, minutesAgo, messageLimit)
	if getLastBotMessageError != nil {
		log.Printf("main:extractChannelTodos#Could not fetch last bot message: %s", getLastBotMessageError.Error())
	}

	todos := s.todoExtractor.ExtractTodos(ctx, messages, lastBotMessage)
	response.Todos = todos
	response.TodosFound = len(todos)

	if len(todos) > 0 && postToSlack {
		if postTodosError := PublishToSlack.PostTodos(s.slackService.Client(), channelId, todos); postTodosError != nil {
			// posting failures must not fail the extraction itself
			log.Printf("main:extractChannelTodos#Error posting todos to Slack: %s", postTodosError.Error())
		}
	}

	return response, nil
}

// performScheduledExtraction is the cron entry point. It fans out one
// goroutine per channel and collects the results through a buffered
// channel, then logs a run summary.
func (s *server) performScheduledExtraction() {
	log.Printf("main:performScheduledExtraction#Scheduled todo extraction started")

	channelIds := s.scheduledChannelIds()
	if len(channelIds) == 0 {
		log.Printf("main:performScheduledExtraction#No channels configured, skipping run")
		return
	}

	resultsChan := make(chan ExtractTodosResponse, len(channelIds))
	var extractionsDone sync.WaitGroup

	for _, channelId := range channelIds {
		extractionsDone.Add(1)
		go func(id string) {
			defer extractionsDone.Done()
			result, extractError := s.extractChannelTodos(context.Background(), id, s.defaults.MinutesAgo, s.defaults.MessageLimit, s.defaults.PostToSlack)
			if extractError != nil {
				// no request to fail here; log and keep the other channels going
				log.Printf("main:performScheduledExtraction#Error extracting channel %s: %s", id, extractError.Error())
			}
			resultsChan <- result
		}(channelId)
	}

	// close after the last goroutine finishes so ranging terminates
	extractionsDone.Wait()
	close(resultsChan)

	totalMessages := 0
	totalTodos := 0
	for result := range resultsChan {
		totalMessages += result.TotalMessages
		totalTodos += result.TodosFound
	}

	log.Printf("main:performScheduledExtraction#Scheduled run complete: %d channels, %d messages, %d todos",
		len(channelIds), totalMessages, totalTodos)
}

// scheduledChannelIds merges the env-configured channel with the registry,
// de-duplicated, env channel first.
func (s *server) scheduledChannelIds() []string {
	seen := map[string]bool{}
	var channelIds []string

	if s.defaults.ChannelName != "" {
		channelId, findChannelError := s.slackService.FindChannelId(s.defaults.ChannelName)
		if findChannelError != nil {
			log.Printf("main:scheduledChannelIds#Error resolving configured channel: %s", findChannelError.Error())
		} else {
			seen[channelId] = true
			channelIds = append(channelIds, channelId)
		}
	}

	if s.dbPool != nil {
		registeredChannels, getChannelsError := Repo.GetRegisteredChannels(s.dbPool)
		if getChannelsError != nil {
			log.Printf("main:scheduledChannelIds#Error loading registered channels: %s", getChannelsError.Error())
		}
		for _, channel := range registeredChannels {
			if !seen[channel.ChannelID] {
				seen[channel.ChannelID] = true
				channelIds = append(channelIds, channel.ChannelID)
			}
		}
	}

	return channelIds
}

func main() {

	if dotEnvError := godotenv.Load(); dotEnvError != nil {
		log.Println("No .env file found, using process environment")
	}

	ctx := context.Background()

	provider := os.Getenv("LLM_PROVIDER")
	if provider == "" {
		provider = "openai"
	}
	model := os.Getenv("LLM_MODEL")

	log.Printf("main:main#Initialising LLM client with provider=%s model=%s", provider, model)
	llmClient, createLlmClientError := LlmClient.CreateLlmClient(ctx, provider, model)
	if createLlmClientError != nil {
		log.Fatal("Failed to initialise LLM client: ", createLlmClientError)
	}

	slackService, slackServiceError := GetMessages.NewSlackService("")
	if slackServiceError != nil {
		log.Fatal("Failed to initialise Slack service: ", slackServiceError)
	}

	var dbPool *pgxpool.Pool
	if os.Getenv("DATABASE_URL") != "" {
		if dbInitialisationError := Repo.InitDbPool(&dbPool); dbInitialisationError != nil {
			log.Fatal("Failed to initialise DB: ", dbInitialisationError)
		}
	} else {
		log.Println("DATABASE_URL not set, channel registry disabled")
	}

	srv := &server{
		slackService:  slackService,
		todoExtractor: ExtractTodos.NewTodoExtractor(llmClient),
		dbPool:        dbPool,
		defaults:      loadExtractionDefaults(),
	}

	if !strings.EqualFold(os.Getenv("SCHEDULER_ENABLED"), "false") {
		intervalMinutes := 30
		if interval := os.Getenv("SCHEDULER_INTERVAL_MINUTES"); interval != "" {
			if parsed, parseError := strconv.Atoi(interval); parseError == nil && parsed > 0 {
				intervalMinutes = parsed
			}
		}

		scheduler := cron.New()
		if _, addJobError := scheduler.AddFunc(fmt.Sprintf("@every %dm", intervalMinutes), srv.performScheduledExtraction); addJobError != nil {
			log.Fatal("Failed to schedule todo extraction: ", addJobError)
		}
		scheduler.Start()
		log.Printf("main:main#Scheduler running every %d minutes", intervalMinutes)
	} else {
		log.Println("Scheduler is disabled (SCHEDULER_ENABLED=false)")
	}

	http.HandleFunc("/", srv.handleRoot)
	http.HandleFunc("/health", srv.handleHealth)
	http.HandleFunc("/channels", srv.handleListChannels)
	http.HandleFunc("/channels/register", srv.handleRegisterChannel)
	http.HandleFunc("/extract-todos", srv.handleExtractTodos)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("main:main#Listening on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}

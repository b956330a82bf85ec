package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/slotwise/slotwise/internal/instrumentation"
	"github.com/slotwise/slotwise/internal/logging"
	"github.com/slotwise/slotwise/internal/store"
)

const (
	// DefaultModel is the Gemini model used when none is configured.
	DefaultModel = "gemini-1.5-flash"

	// maxToolRounds bounds the function-calling loop for a single turn.
	maxToolRounds = 8

	fallbackAnswer = "I'm sorry, I wasn't able to formulate a response for that."
)

// Config configures the scheduling assistant.
type Config struct {
	// APIKey is the Gemini API key. Required.
	APIKey string

	// Model overrides DefaultModel when set.
	Model string

	// Calendar is the calendar surface for tool dispatch. When nil the
	// agent runs in not-linked mode: it chats but registers no tools.
	Calendar CalendarService

	// Store persists conversation history when set.
	Store *store.Store

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
}

// Agent is a Gemini-backed conversational scheduling assistant.
type Agent struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	calendar CalendarService
	store    *store.Store
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
}

// New creates an agent and establishes the Gemini client connection.
func New(ctx context.Context, cfg Config) (*Agent, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	linked := cfg.Calendar != nil

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt(linked, time.Now()))},
	}
	if linked {
		model.Tools = calendarTools()
	}

	return &Agent{
		client:   client,
		model:    model,
		calendar: cfg.Calendar,
		store:    cfg.Store,
		logger:   logger,
		metrics:  cfg.Metrics,
	}, nil
}

// Close releases the Gemini client connection.
func (a *Agent) Close() error {
	return a.client.Close()
}

// Run executes one conversational turn. When conversationID is set and a
// store is configured, prior messages seed the chat and both the prompt and
// the answer are appended to the conversation.
func (a *Agent) Run(ctx context.Context, conversationID, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt must not be empty")
	}

	history, err := a.loadHistory(ctx, conversationID)
	if err != nil {
		return "", err
	}

	chat := a.model.StartChat()
	chat.History = history

	a.saveMessage(ctx, conversationID, store.RoleUser, prompt)

	answer, err := a.converse(ctx, chat, prompt)
	if a.metrics != nil {
		result := instrumentation.StatusSuccess
		if err != nil {
			result = instrumentation.StatusError
		}
		a.metrics.RecordAgentTurn(ctx, result)
	}
	if err != nil {
		return "", err
	}

	a.saveMessage(ctx, conversationID, store.RoleAssistant, answer)
	return answer, nil
}

// converse sends the prompt and resolves function calls until the model
// produces a text answer or the round limit is reached.
func (a *Agent) converse(ctx context.Context, chat *genai.ChatSession, prompt string) (string, error) {
	resp, err := chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			break
		}

		parts := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			a.logger.Info("agent tool call",
				logging.Operation("agent_tool_call"),
				logging.Tool(call.Name),
			)

			response := a.dispatchToolCall(ctx, call)

			if a.metrics != nil {
				status := instrumentation.StatusSuccess
				if _, failed := response["error"]; failed {
					status = instrumentation.StatusError
				}
				a.metrics.RecordAgentToolCall(ctx, call.Name, status)
			}

			parts = append(parts, genai.FunctionResponse{
				Name:     call.Name,
				Response: response,
			})
		}

		resp, err = chat.SendMessage(ctx, parts...)
		if err != nil {
			return "", fmt.Errorf("gemini request failed: %w", err)
		}
	}

	answer := textFromResponse(resp)
	if answer == "" {
		answer = fallbackAnswer
	}
	return answer, nil
}

// loadHistory converts stored messages to chat history. Tool messages and
// empty contents are skipped; Gemini only replays user/model turns.
func (a *Agent) loadHistory(ctx context.Context, conversationID string) ([]*genai.Content, error) {
	if a.store == nil || conversationID == "" {
		return nil, nil
	}

	messages, err := a.store.Messages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}

	var history []*genai.Content
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		var role string
		switch msg.Role {
		case store.RoleUser:
			role = "user"
		case store.RoleAssistant:
			role = "model"
		default:
			continue
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return history, nil
}

// saveMessage appends a message to the conversation. Persistence failures
// are logged but do not abort the turn.
func (a *Agent) saveMessage(ctx context.Context, conversationID string, role store.Role, content string) {
	if a.store == nil || conversationID == "" {
		return
	}
	if _, err := a.store.AppendMessage(ctx, conversationID, role, content); err != nil {
		a.logger.Warn("failed to persist conversation message",
			logging.Conversation(conversationID),
			logging.Err(err),
		)
	}
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

func textFromResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	return out
}

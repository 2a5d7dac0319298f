package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// TaskGenerator turns free text into task suggestions.
type TaskGenerator interface {
	GenerateTasksFromText(ctx context.Context, projectName, text string) ([]GeneratedTask, error)
}

type GeneratedTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"due_date"`
}

// AIConfig configures the OpenAI backed generator. Model and Timeout have
// defaults, BaseURL is only set for compatible gateways.
type AIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// AIService asks a chat completion model for task suggestions.
type AIService struct {
	client *openai.Client
	model  string
	now    func() time.Time
}

func NewAIService(cfg AIConfig) *AIService {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}

	return &AIService{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		now:    time.Now,
	}
}

const suggestionInstructions = `You are a project assistant for a design and development studio.
Extract concrete, actionable tasks from the notes the user sends.

Respond with a JSON object of this shape and nothing else:
{"tasks": [{"title": "short task title", "description": "what needs to be done", "priority": "low|medium|high", "tags": ["label"], "due_date": "2025-10-28T23:59:59Z or null"}]}

Use {"tasks": []} when the notes contain no tasks. Convert relative deadlines such as "tomorrow" or "next week" into absolute ISO8601 timestamps.`

// GenerateTasksFromText sends the notes for projectName to the model and
// decodes its suggestions.
func (s *AIService) GenerateTasksFromText(ctx context.Context, projectName, text string) ([]GeneratedTask, error) {
	if s.client == nil {
		return nil, errors.New("openai client not initialized")
	}

	notes := fmt.Sprintf("Project: %s\nCurrent time: %s\n\nNotes:\n%s",
		projectName, s.now().UTC().Format(time.RFC3339), text)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: suggestionInstructions},
			{Role: openai.ChatMessageRoleUser, Content: notes},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	return parseSuggestions(resp.Choices[0].Message.Content)
}

// parseSuggestions accepts {"tasks": [...]} or a bare array, optionally
// wrapped in a markdown code fence.
func parseSuggestions(content string) ([]GeneratedTask, error) {
	content = stripCodeFence(content)

	if strings.HasPrefix(content, "[") {
		var tasks []GeneratedTask
		if err := json.Unmarshal([]byte(content), &tasks); err != nil {
			return nil, fmt.Errorf("failed to parse suggestions: %w", err)
		}
		return tasks, nil
	}

	var envelope struct {
		Tasks []GeneratedTask `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions: %w", err)
	}
	return envelope.Tasks, nil
}

func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

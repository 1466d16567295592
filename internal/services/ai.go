package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/todo-app/internal/constants"
)

// AIService extracts todos from free text with the OpenAI chat API
type AIService struct {
	client *openai.Client
	model  string
}

// GeneratedTodo is one raw todo as returned by the model
type GeneratedTodo struct {
	Text     string `json:"text"`
	DueDate  string `json:"due_date"`
	Priority string `json:"priority"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

// NewAIServiceWithConfig builds the service on a custom client config,
// e.g. a different base URL.
func NewAIServiceWithConfig(cfg openai.ClientConfig) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.GPT4o,
	}
}

// GenerateTodosFromText analyzes text and extracts todos using OpenAI GPT
func (s *AIService) GenerateTodosFromText(ctx context.Context, text string, today time.Time) ([]GeneratedTodo, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`You extract actionable todo items from text.

Today is %s (UTC).

Text:
%s

Return a JSON array, at most %d items, in this shape:
[
  {
    "text": "short todo, at most %d characters",
    "due_date": "YYYY-MM-DD, today or later; use today when no date is implied",
    "priority": "IMPORTANT, MEDIUM or EASY"
  }
]

Rules:
- Return [] when there is nothing to do
- Resolve relative dates ("tomorrow", "next week") to calendar dates
- Return JSON only, without commentary`,
		today.Format(constants.DueDateLayout), text, constants.MaxAIGeneratedTodos, constants.MaxTodoTextLength)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseGeneratedTodos(resp.Choices[0].Message.Content)
}

// parseGeneratedTodos decodes the model output, tolerating a markdown fence.
func parseGeneratedTodos(content string) ([]GeneratedTodo, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var todos []GeneratedTodo
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &todos); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	return todos, nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/designdesk/task-desk-api/internal/constants"
	"github.com/sashabaranov/go-openai"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrBriefRequired          = fmt.Errorf("%w: brief is required", ErrValidation)
	ErrBriefTooLong           = fmt.Errorf("%w: brief is too long", ErrValidation)
)

type AIService struct {
	client *openai.Client
	now    func() time.Time
}

// TaskDraft is a suggested task the client can review before submitting.
type TaskDraft struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Categories  []string   `json:"categories"`
	Deadline    *time.Time `json:"deadline"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		now:    time.Now,
	}
}

// DraftTaskFromBrief turns a free-form client brief into a structured task draft using OpenAI GPT
func (s *AIService) DraftTaskFromBrief(ctx context.Context, brief string) (*TaskDraft, error) {
	if s == nil || s.client == nil {
		return nil, ErrAIServiceNotConfigured
	}
	brief = strings.TrimSpace(brief)
	if brief == "" {
		return nil, ErrBriefRequired
	}
	if len([]rune(brief)) > constants.MaxBriefLength {
		return nil, ErrBriefTooLong
	}

	currentDate := s.now().Format(constants.DeadlineLayout)
	prompt := fmt.Sprintf(`Ты ассистент дизайн-студии. Составь из описания клиента одну задачу на дизайн.

Текущая дата: %s

Описание клиента:
%s

Верни JSON-объект:
{
  "title": "краткое название задачи",
  "description": "подробное техническое задание для дизайнера",
  "categories": ["категории услуг: web, branding, print, illustration, video, marketing, game, additional"],
  "deadline": "дедлайн в формате ISO8601 (например 2025-10-28T18:00:00Z) или null, если клиент его не указал"
}

Правила:
- Относительные сроки («через неделю», «к пятнице») переводи в конкретную дату
- Верни только JSON без пояснений`, currentDate, brief)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseTaskDraft(resp.Choices[0].Message.Content)
}

func parseTaskDraft(content string) (*TaskDraft, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var draft TaskDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, fmt.Errorf("AI response has no title")
	}
	return &draft, nil
}

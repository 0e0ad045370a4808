package picker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-news-sender/internal/domain"
	"github.com/samvad-hq/samvad-news-sender/internal/logger"
	"github.com/samvad-hq/samvad-news-sender/pkg/feedapi"
)

const (
	chatCompletionsEndpoint = "chat/completions"
	chatTimeout             = 60 * time.Second

	systemPrompt = "You are an editor for a news channel. From the queued " +
		"posts below, choose the single most newsworthy post that has not " +
		"been published yet. Answer with a JSON object of the form " +
		`{"seed": "<seed of the chosen post>"} and nothing else.`
)

// ChatConfig configures the chat-completion picker.
type ChatConfig struct {
	APIURL string
	APIKey string
	Model  string
}

// ChatPicker asks an OpenAI-style chat-completions API to choose the next
// post. The call goes through a feedapi Handler so request handling and
// logging match the rest of the service.
type ChatPicker struct {
	handler *feedapi.Handler
	model   string
	log     logger.Logger
}

// NewChatPicker builds a picker against the configured completions API.
func NewChatPicker(cfg ChatConfig, log logger.Logger) *ChatPicker {
	if log == nil {
		log = &logger.NopLogger{}
	}
	handler := feedapi.NewHandler(feedapi.Config{
		BaseURL: cfg.APIURL,
		Headers: map[string]string{"Authorization": "Bearer " + cfg.APIKey},
		Timeout: chatTimeout,
	}, log)
	return &ChatPicker{handler: handler, model: cfg.Model, log: log}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices" validate:"min=1"`
}

// seedAnswer is the JSON shape the model is instructed to answer with.
type seedAnswer struct {
	Seed string `json:"seed"`
}

// Pick sends the queue and sent listings to the completions API and parses
// the chosen seed out of the first choice.
func (p *ChatPicker) Pick(ctx context.Context, queue *domain.QueueList, sent *domain.SendNewsList) (string, error) {
	userMessage, err := buildUserMessage(queue, sent)
	if err != nil {
		return "", err
	}

	p.log.DebugObj("asking picker api to choose a post", "picker_request", map[string]any{
		"model":       p.model,
		"queue_count": len(queue.Queue),
	})

	out := &chatResponse{}
	_, err = p.handler.Post(ctx, chatCompletionsEndpoint,
		feedapi.WithBody(chatRequest{
			Model: p.model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: userMessage},
			},
		}),
		feedapi.WithResponse(out),
	)
	if err != nil {
		return "", fmt.Errorf("picker api call: %w", err)
	}

	seed, err := parseSeed(out.Choices[0].Message.Content)
	if err != nil {
		return "", err
	}
	return seed, nil
}

// buildUserMessage serializes the queue and the already-published seeds for
// the model.
func buildUserMessage(queue *domain.QueueList, sent *domain.SendNewsList) (string, error) {
	if queue == nil || len(queue.Queue) == 0 {
		return "", fmt.Errorf("queue is empty")
	}

	type queuedPost struct {
		Seed  string `json:"seed"`
		Title string `json:"title,omitempty"`
	}
	posts := make([]queuedPost, 0, len(queue.Queue))
	for _, item := range queue.Queue {
		posts = append(posts, queuedPost{Seed: item.Seed, Title: item.Title})
	}

	published := make([]string, 0)
	if sent != nil {
		for _, item := range sent.Send {
			published = append(published, item.Seed)
		}
	}

	payload, err := json.Marshal(map[string]any{
		"queued":    posts,
		"published": published,
	})
	if err != nil {
		return "", fmt.Errorf("marshal picker message: %w", err)
	}
	return string(payload), nil
}

// parseSeed extracts the chosen seed from the model answer, tolerating
// markdown code fences around the JSON.
func parseSeed(content string) (string, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var answer seedAnswer
	if err := json.Unmarshal([]byte(content), &answer); err != nil {
		return "", fmt.Errorf("parse picker answer %q: %w", content, err)
	}
	if answer.Seed == "" {
		return "", fmt.Errorf("picker answer contains no seed")
	}
	return answer.Seed, nil
}

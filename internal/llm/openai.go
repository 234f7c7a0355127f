package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Config is what the OpenAI-compatible client needs.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client wraps the OpenAI client with our configuration.
// Any OpenAI-compatible endpoint works through BaseURL.
type Client struct {
	client openai.Client
	model  string
}

// NewClient builds a chat-completions client. Retries are disabled:
// callers degrade on the first failure.
func NewClient(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-3.5-turbo"
	}

	return &Client{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Complete sends a system + user message pair and returns the first
// choice. No choices yields an empty reply, not an error.
func (c *Client) Complete(ctx context.Context, prompt, systemMessage string) (string, error) {
	if systemMessage == "" {
		systemMessage = DefaultSystemMessage
	}

	chatCompletion, err := c.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemMessage),
				openai.UserMessage(prompt),
			},
			Model: c.model,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to call chat completions: %w", err)
	}

	if len(chatCompletion.Choices) == 0 {
		return "", nil
	}
	return chatCompletion.Choices[0].Message.Content, nil
}

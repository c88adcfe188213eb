package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var (
	// ErrNoChoices is returned when the endpoint answers without any choice.
	ErrNoChoices = errors.New("completion has no choices")
	// ErrEmptyReply is returned when every attempt produced blank content.
	ErrEmptyReply = errors.New("model returned an empty reply")
)

const (
	lmStudioTemperature = 0.2
	ollamaPersona       = "You are a helpful, friendly, and concise chat assistant."
)

// Completer turns a prompt into a reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAICompleter calls an OpenAI-compatible chat completions endpoint.
//
// Failed requests are retried by the SDK. A blank reply, which Ollama sends
// while a model is still loading, is retried here after RetryWait.
type OpenAICompleter struct {
	client      openai.Client
	model       string
	persona     string
	temperature float64
	attempts    int
	retryWait   time.Duration
}

// NewOpenAICompleter creates a completer for cfg's endpoint. LM Studio gets a
// low temperature and a single attempt; Ollama gets the persona line and
// cfg.Retries retries.
func NewOpenAICompleter(cfg Config) *OpenAICompleter {
	retries := cfg.Retries
	c := &OpenAICompleter{
		model:     cfg.Model,
		retryWait: cfg.RetryWait,
	}
	if cfg.APIType == APITypeLMStudio {
		retries = 0
		c.temperature = lmStudioTemperature
	} else {
		c.persona = ollamaPersona
	}
	c.attempts = retries + 1
	c.client = openai.NewClient(
		option.WithBaseURL(BaseURL(cfg.APIURL)),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(retries),
		option.WithRequestTimeout(cfg.RequestTimeout),
	)
	return c
}

// BaseURL accepts either an API root such as http://host:11434/v1 or a full
// chat completions endpoint and returns the root with a trailing slash.
func BaseURL(apiURL string) string {
	u := strings.TrimSuffix(apiURL, "/")
	u = strings.TrimSuffix(u, "/chat/completions")
	return u + "/"
}

// Complete sends prompt as a single user message.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if c.persona != "" {
		prompt += "\n" + c.persona
	}
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	}
	if c.temperature > 0 {
		params.Temperature = openai.Float(c.temperature)
	}

	for attempt := 1; ; attempt++ {
		resp, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", ErrNoChoices
		}
		if reply := strings.TrimSpace(resp.Choices[0].Message.Content); reply != "" {
			return reply, nil
		}
		if attempt >= c.attempts {
			return "", ErrEmptyReply
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.retryWait):
		}
	}
}

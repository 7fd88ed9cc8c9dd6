package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/gioco-play/easy-i18n/i18n"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultBaseURL is the DashScope OpenAI-compatible endpoint
	DefaultBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1/"
	// DefaultModel is the Qwen model used for diagnosis
	DefaultModel = "qwen-max-latest"
)

// ErrNoAPIKey is returned when no DashScope key is configured
var ErrNoAPIKey = errors.New("DashScope API Key is not set")

// QwenClient handles failure diagnosis using Alibaba Cloud Qwen
type QwenClient struct {
	apiKey  string
	baseURL string
	model   string
}

// Option configures a QwenClient
type Option func(*QwenClient)

// WithBaseURL points the client at another OpenAI-compatible endpoint
func WithBaseURL(u string) Option {
	return func(c *QwenClient) { c.baseURL = u }
}

// WithModel overrides the model name
func WithModel(m string) Option {
	return func(c *QwenClient) { c.model = m }
}

// NewQwenClient creates a new Qwen AI client
func NewQwenClient(apiKey string, opts ...Option) *QwenClient {
	c := &QwenClient{apiKey: apiKey, baseURL: DefaultBaseURL, model: DefaultModel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Diagnose sends the log excerpt of a failed run together with a prompt
// chosen by failure kind and returns the model's suggestion
func (c *QwenClient) Diagnose(ctx context.Context, kind, logContent string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	client := openai.NewClient(
		option.WithAPIKey(c.apiKey),
		option.WithBaseURL(c.baseURL),
		option.WithMaxRetries(1),
	)

	chatCompletion, err := client.Chat.Completions.New(
		ctx, openai.ChatCompletionNewParams{
			Messages: openai.F(
				[]openai.ChatCompletionMessageParamUnion{
					openai.SystemMessage(Prompt(kind)),
					openai.UserMessage(logContent),
				},
			),
			Model: openai.F(c.model),
		},
	)
	if err != nil {
		return "", err
	}
	if len(chatCompletion.Choices) == 0 {
		return "", errors.New("empty response from model")
	}
	return strings.TrimSpace(chatCompletion.Choices[0].Message.Content), nil
}

// Prompt returns the system prompt for a failure kind
func Prompt(kind string) string {
	switch kind {
	case "ConnectionError":
		return i18n.Sprintf("AI_DIAG_PROMPT_CONNECTION")
	case "BucketMissing":
		return i18n.Sprintf("AI_DIAG_PROMPT_BUCKET")
	case "ClientInitError":
		return i18n.Sprintf("AI_DIAG_PROMPT_CLIENT")
	case "VerificationMismatch":
		return i18n.Sprintf("AI_DIAG_PROMPT_VERIFY")
	default:
		return i18n.Sprintf("AI_DIAG_PROMPT")
	}
}

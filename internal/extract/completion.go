package extract

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

const (
	DefaultModel       = openai.ChatModelGPT3_5Turbo0125
	DefaultTemperature = 0.7
)

// Completer sends one prompt to a chat-completion service and returns the text
// of the first choice.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompletionClient is a Completer backed by an OpenAI-compatible
// chat-completion endpoint. It never retries and never streams.
type CompletionClient struct {
	openAI      openai.Client
	model       string
	temperature float64
	requestOpts []option.RequestOption
}

var _ Completer = (*CompletionClient)(nil)

func NewCompletionClient(
	apiKey string,
	options ...func(*CompletionClient),
) *CompletionClient {
	c := &CompletionClient{
		model:       DefaultModel,
		temperature: DefaultTemperature,
		requestOpts: []option.RequestOption{
			option.WithAPIKey(apiKey),
			option.WithMaxRetries(0),
		},
	}
	for _, opt := range options {
		opt(c)
	}
	c.openAI = openai.NewClient(c.requestOpts...)
	return c
}

// WithBaseURL points the client at another OpenAI-compatible endpoint.
func WithBaseURL(baseURL string) func(*CompletionClient) {
	return func(c *CompletionClient) {
		if baseURL != "" {
			c.requestOpts = append(c.requestOpts, option.WithBaseURL(baseURL))
		}
	}
}

func WithModel(model string) func(*CompletionClient) {
	return func(c *CompletionClient) {
		if model != "" {
			c.model = model
		}
	}
}

func WithTemperature(temperature float64) func(*CompletionClient) {
	return func(c *CompletionClient) {
		c.temperature = temperature
	}
}

func WithHTTPClient(client *http.Client) func(*CompletionClient) {
	return func(c *CompletionClient) {
		c.requestOpts = append(c.requestOpts, option.WithHTTPClient(client))
	}
}

func (c *CompletionClient) Model() string { return c.model }

// Complete performs a single blocking round trip. ctx cancellation aborts the
// in-flight request.
func (c *CompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	completion, err := c.openAI.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Model: c.model,
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Temperature: openai.Float(c.temperature),
		},
	)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", &UpstreamError{Err: err}
	}

	if completion == nil || len(completion.Choices) == 0 {
		return "", &UpstreamError{Err: errors.New("response has no choices")}
	}
	message := completion.Choices[0].Message
	if !message.JSON.Content.Valid() {
		return "", &UpstreamError{Err: errors.New("response has no choices[0].message.content")}
	}

	content := strings.TrimSpace(message.Content)
	zap.L().Debug("completion received",
		zap.String("model", c.model),
		zap.String("completion_id", completion.ID),
		zap.Int("content_length", len(content)),
	)
	return content, nil
}

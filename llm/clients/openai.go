package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stardustagi/TopRelay/libs/logs"
	"github.com/stardustagi/TopRelay/llm/content"
	"github.com/stardustagi/TopRelay/llm/models"
	"go.uber.org/zap"
	"resty.dev/v3"
)

// FallbackReply replaces a reply that is empty after normalization.
const FallbackReply = "I could not generate a response just now. Please try again."

const completionsPath = "/chat/completions"

// CompletionConfig is fixed for the lifetime of a CompletionClient.
type CompletionConfig struct {
	Token       string        `validate:"required"`
	BaseURL     string        `validate:"required,url"`
	Model       string        `validate:"required"`
	MaxTokens   int           `validate:"gt=0"`
	Temperature float64       `validate:"gte=0"`
	Timeout     time.Duration `validate:"gt=0"`
}

type Option func(*CompletionClient)

// WithLogger overrides the module logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *CompletionClient) { c.logger = l }
}

// WithHTTPClient sets the transport used for outbound calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *CompletionClient) { c.http = resty.NewWithClient(hc) }
}

// CompletionClient sends chat completion requests to an OpenAI-compatible
// endpoint such as Databricks model serving. It holds no per-call state and is
// safe for concurrent use.
type CompletionClient struct {
	cfg      CompletionConfig
	endpoint string
	http     *resty.Client
	validate *validator.Validate
	logger   *zap.Logger
}

func NewCompletionClient(cfg CompletionConfig, opts ...Option) (*CompletionClient, error) {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid completion client config")
	}
	c := &CompletionClient{
		cfg:      cfg,
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + completionsPath,
		validate: validate,
		logger:   logs.GetLogger("completion_client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = resty.New()
	}
	// retry policy belongs to the caller
	c.http.SetRetryCount(0)
	return c, nil
}

func (c *CompletionClient) Model() string { return c.cfg.Model }

// Endpoint is the full completions URL derived from the base URL.
func (c *CompletionClient) Endpoint() string { return c.endpoint }

// Close releases idle connections.
func (c *CompletionClient) Close() error {
	return c.http.Close()
}

// GenerateReply sends messages in one request and returns the normalized reply
// text. The deadline is enforced here: when it elapses the in-flight call is
// abandoned and a timeout RequestError is returned. The reply is never empty.
func (c *CompletionClient) GenerateReply(ctx context.Context, messages []models.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", newRequestError(KindInvalidRequest, "at least one message required", nil)
	}
	for i := range messages {
		if err := c.validate.Struct(&messages[i]); err != nil {
			return "", newRequestError(KindInvalidRequest, fmt.Sprintf("message %d is invalid", i), err)
		}
	}
	payload := make([]models.ChatMessage, len(messages))
	copy(payload, messages)

	c.logger.Debug("dispatching completion request",
		logs.Int("messages", len(payload)),
		logs.String("model", c.cfg.Model))

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	started := time.Now()
	go func() {
		text, err := c.invoke(ctx, payload)
		done <- result{text: text, err: err}
	}()

	var text string
	select {
	case r := <-done:
		if r.err != nil {
			return "", c.classify(ctx, r.err, time.Since(started))
		}
		text = r.text
	case <-ctx.Done():
		return "", c.classify(ctx, ctx.Err(), time.Since(started))
	}

	if text == "" {
		text = FallbackReply
	}
	return text, nil
}

func (c *CompletionClient) classify(ctx context.Context, err error, elapsed time.Duration) *RequestError {
	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr):
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		reqErr = newRequestError(KindTimeout, "completion request timed out", err)
	default:
		reqErr = newRequestError(KindTransport, "completion request failed", err)
	}
	fields := []zap.Field{
		logs.String("kind", reqErr.Kind.String()),
		logs.Duration("elapsed", elapsed),
		logs.ErrorInfo(reqErr.cause),
	}
	if reqErr.Timeout() {
		c.logger.Error("completion request timed out", fields...)
	} else {
		c.logger.Error("completion request failed", fields...)
	}
	return reqErr
}

func (c *CompletionClient) invoke(ctx context.Context, messages []models.ChatMessage) (string, error) {
	req := &models.ChatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.cfg.Token).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetBody(req).
		Post(c.endpoint)
	if err != nil {
		return "", errors.Wrapf(err, "POST %s", c.endpoint)
	}
	if resp.IsError() {
		return "", errors.Errorf("completion endpoint returned %s: %s", resp.Status(), truncate(resp.String(), 512))
	}

	var chatResp models.ChatResponse
	if err := json.Unmarshal(resp.Bytes(), &chatResp); err != nil {
		return "", errors.Wrap(err, "decode completion response")
	}
	if len(chatResp.Choices) == 0 {
		return "", newRequestError(KindNoChoices, "no choices returned", nil)
	}

	var b strings.Builder
	for _, choice := range chatResp.Choices {
		b.WriteString(content.Normalize(content.Decode(choice.Message.Content)))
	}
	return strings.TrimSpace(b.String()), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Package llm talks to an Ollama-compatible text generation endpoint.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/okian/woke/pkg/metrics"
)

const (
	generatePath = "/api/generate"
	tagsPath     = "/api/tags"
)

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// OllamaClient wraps resty with rate limiting. It never retries: the caller
// owns the fallback.
type OllamaClient struct {
	resty   *resty.Client
	limiter *rate.Limiter
	model   string
	format  string
	timeout time.Duration
}

// NewOllamaClient creates a client for the endpoint rooted at baseURL.
func NewOllamaClient(baseURL string, opts ...Option) *OllamaClient {
	c := &OllamaClient{
		limiter: rate.NewLimiter(rate.Inf, 0),
		model:   defaultModel,
		format:  defaultFormat,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.resty = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(c.timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", defaultUserAgent).
		SetHeader("Content-Type", "application/json")
	return c
}

// Model returns the configured model name.
func (c *OllamaClient) Model() string {
	return c.model
}

// Generate sends prompt and returns the model's raw text.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := c.generate(ctx, prompt)
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordLLMRequest("error", latency)
		metrics.RecordErrorByComponent("llm", errorKind(ctx, err))
		return "", err
	}
	metrics.RecordLLMRequest("ok", latency)
	return text, nil
}

func (c *OllamaClient) generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limit: %w", ErrTransport, err)
	}

	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(generateRequest{Model: c.model, Prompt: prompt, Stream: false, Format: c.format}).
		Post(generatePath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	var out generateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("%w: %w", ErrEnvelope, err)
	}
	return out.Response, nil
}

// Ping checks that the endpoint answers. It bypasses the rate limiter.
func (c *OllamaClient) Ping(ctx context.Context) error {
	resp, err := c.resty.R().SetContext(ctx).Get(tagsPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}
	return nil
}

func errorKind(ctx context.Context, err error) string {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "timeout"
	case errors.Is(ctx.Err(), context.Canceled):
		return "cancelled"
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrEnvelope):
		return "envelope"
	default:
		return "transport"
	}
}

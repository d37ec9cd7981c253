package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"golang.org/x/time/rate"

	"github.com/socratutor/internal/retry"
)

// Client wraps a langchaingo model with retry, rate limiting, and timeout
// handling so callers get one place to tune model-call resiliency.
type Client struct {
	model       llms.Model
	retryConfig retry.Config
	limiter     *rate.Limiter
	timeout     time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRetryConfig overrides the default model-call retry policy.
func WithRetryConfig(config retry.Config) ClientOption {
	return func(c *Client) { c.retryConfig = config }
}

// WithRateLimit caps outgoing model calls at rps requests per second.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithTimeout bounds each Generate call, retries included.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// NewClient wraps model with the default model-call retry policy.
func NewClient(model llms.Model, opts ...ClientOption) *Client {
	c := &Client{
		model:       model,
		retryConfig: retry.ModelCallConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the underlying langchaingo model for callers that need
// direct access, such as tool-call requests.
func (c *Client) Model() llms.Model {
	return c.model
}

// Generate runs a single-prompt completion with retries.
func (c *Client) Generate(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reply string
	result := retry.Do(ctx, c.retryConfig, func() error {
		if err := c.wait(ctx); err != nil {
			return err
		}
		out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, options...)
		if err != nil {
			return err
		}
		reply = out
		return nil
	})
	if !result.Success {
		log.Warn().Err(result.LastError).Int("attempts", result.Attempts).Msg("Model completion failed")
		return "", result.LastError
	}
	return reply, nil
}

// GenerateContent runs a multi-message request with retries. Used for
// chat-shaped calls that carry history or tool definitions.
func (c *Client) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var resp *llms.ContentResponse
	result := retry.Do(ctx, c.retryConfig, func() error {
		if err := c.wait(ctx); err != nil {
			return err
		}
		out, err := c.model.GenerateContent(ctx, messages, options...)
		if err != nil {
			return err
		}
		resp = out
		return nil
	})
	if !result.Success {
		log.Warn().Err(result.LastError).Int("attempts", result.Attempts).Msg("Model content call failed")
		return nil, result.LastError
	}
	return resp, nil
}

// GenerateJSON runs a completion and decodes the reply into target,
// repairing malformed JSON along the way.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, target interface{}, options ...llms.CallOption) (DecodeResult, error) {
	reply, err := c.Generate(ctx, prompt, options...)
	if err != nil {
		return DecodeResult{}, err
	}
	return DecodeInto(reply, target)
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const headerRequestID = "X-Request-ID"

// client wraps resty for the three session endpoints.
type client struct {
	r *resty.Client
}

func newClient(baseURL string, timeout time.Duration) *client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &client{r: r}
}

func (c *client) health(ctx context.Context) error {
	resp, err := c.r.R().SetContext(ctx).Get("/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode())
	}
	return nil
}

// post sends body as JSON and decodes a 2xx answer into out.
func (c *client) post(ctx context.Context, requestID, path string, body, out any) (*resty.Response, error) {
	resp, err := c.r.R().
		SetContext(ctx).
		SetHeader(headerRequestID, requestID).
		SetBody(body).
		SetResult(out).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRequest, path, err)
	}
	if resp.IsError() {
		return resp, fmt.Errorf("%w: %s: %d %s", ErrStatus, path, resp.StatusCode(), resp.String())
	}
	return resp, nil
}

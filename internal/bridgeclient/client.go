// Package bridgeclient is a small client for the bridge API, used by the
// usicheck CLI and by anything else that wants to drive a remote bridge.
package bridgeclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/hisui/usi-bridge/pkg/enginedto"
)

type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &fasthttp.Client{
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			MaxConnsPerHost: 16,
		},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Init(ctx context.Context, path string) (*enginedto.InitResponse, error) {
	var resp enginedto.InitResponse
	req := enginedto.InitRequest{Path: path}
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/engine/init", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Move(ctx context.Context, req enginedto.MoveRequest) (string, error) {
	var resp enginedto.MoveResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/engine/move", req, &resp, false); err != nil {
		return "", err
	}
	return resp.Move, nil
}

func (c *Client) Shutdown(ctx context.Context) error {
	return c.doJSON(ctx, fasthttp.MethodPost, "/engine/shutdown", nil, nil, false)
}

// Ready retries on transport errors: it doubles as the liveness probe.
func (c *Client) Ready(ctx context.Context) (bool, error) {
	var resp enginedto.ReadyResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/engine/ready", nil, &resp, true); err != nil {
		return false, err
	}
	return resp.Ready, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, retry bool) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry && c.retryMax > 1 {
		attempts = c.retryMax
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			if attempt == attempts {
				return lastErr
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			return decodeAPIError(status, resp.Body())
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}
	return lastErr
}

// decodeAPIError rebuilds the server's DomainError from an error body so
// callers can switch on the code.
func decodeAPIError(status int, body []byte) error {
	var apiErr enginedto.ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		return enginedto.DomainError{
			Code:      apiErr.Code,
			Message:   apiErr.Message,
			Retryable: status == fasthttp.StatusGatewayTimeout,
		}
	}
	return fmt.Errorf("bridge api error: status=%d body=%s", status, truncate(string(body), 512))
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.defaultTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}
	return deadline
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	d := time.Duration(attempt) * 250 * time.Millisecond
	if d > 2*time.Second {
		d = 2 * time.Second
	}
	return d
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

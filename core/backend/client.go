// Package backend talks to the chat backend over its three HTTP endpoints:
// orchestration, text-to-speech and speech-to-text.
package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/koscakluka/ema-chat/core/api"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	DefaultBaseURL = "http://localhost:8000"

	orchestratePath  = "/api/orchestrate"
	textToSpeechPath = "/api/text-to-speech"
	speechToTextPath = "/api/speech-to-text"

	// maxErrorBodySize bounds how much of a failed response ends up in logs.
	maxErrorBodySize = 4 << 10
)

// Client is safe for concurrent use; each call is an independent request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

type ClientOption func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout bounds every request made by the client, body included. Zero
// means no limit.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.timeout = timeout }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(_ string, request *http.Request) string {
				return "POST " + request.URL.Path
			}),
		)},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		httpClient := *c.httpClient
		httpClient.Timeout = c.timeout
		c.httpClient = &httpClient
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// post sends body to path and returns the response when the status is 2xx.
// The caller closes the body. Every error it returns matches api.ErrNetwork.
func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", api.ErrNetwork, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		countRequest(ctx, path, "transport_error")
		return nil, fmt.Errorf("%w: failed to send request: %w", api.ErrNetwork, err)
	}

	countRequest(ctx, path, strconv.Itoa(resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		logger.WarnContext(ctx, "backend returned non-success status",
			"path", path,
			"status", resp.Status,
			"body", string(errorBody))
		return nil, fmt.Errorf("%w: %s returned %s", api.ErrNetwork, path, resp.Status)
	}

	return resp, nil
}

func countRequest(ctx context.Context, path, status string) {
	requestCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("path", path),
		attribute.String("status", status),
	))
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/malonaz/qachat/internal/debug"
)

const requestIDHeader = "X-Request-ID"

// TokenSource supplies the bearer token attached to every request.
type TokenSource interface {
	Token() string
}

// Client talks to the chat service REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	log        *slog.Logger

	mu          sync.RWMutex
	tokenSource TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithTimeout bounds every request. A stream is only bounded until its response
// headers arrive, so long answers are never cut off. Zero disables the timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTokenSource sets the bearer token source.
func WithTokenSource(tokenSource TokenSource) Option {
	return func(c *Client) { c.tokenSource = tokenSource }
}

// New returns a client for the API rooted at baseURL (e.g. http://localhost:8000/api).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		log:        debug.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource sets the bearer token source after construction.
func (c *Client) SetTokenSource(tokenSource TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokenSource = tokenSource
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokenSource == nil {
		return ""
	}
	return c.tokenSource.Token()
}

// send issues a request and returns the response if its status is 2xx.
// The caller owns the response body.
func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "marshaling request body")
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	requestID := uuid.New().String()
	request.Header.Set(requestIDHeader, requestID)
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.log.Debug("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}
	c.log.Debug("request completed", "method", method, "path", path, "request_id", requestID,
		"status", response.StatusCode, "duration", time.Since(start))

	if response.StatusCode < 200 || response.StatusCode > 299 {
		defer response.Body.Close()
		payload, err := io.ReadAll(response.Body)
		if err != nil {
			return nil, &NetworkError{Op: "reading error response", Err: err}
		}
		return nil, errorFromResponse(response.StatusCode, payload)
	}
	return response, nil
}

// do issues a request and decodes the JSON response into out, unless out is nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	response, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return &NetworkError{Op: "reading response", Err: err}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &ServerError{StatusCode: response.StatusCode, Detail: "malformed response: " + err.Error()}
	}
	return nil
}

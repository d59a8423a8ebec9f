// Package client is a typed HTTP client for the campus API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// Envelope is the response wrapper every endpoint returns.
type Envelope[T any] struct {
	Success bool            `json:"success"`
	Data    T               `json:"data"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message"`
	Meta    json.RawMessage `json:"meta,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

// APIError is returned when the server answers with success=false or a
// non-2xx status.
type APIError struct {
	Status  int
	Message string
	Details json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("campus api: %d %s", e.Status, e.Message)
}

// StatusCode extracts the HTTP status from an APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client talks to one campus API deployment. Calls are bounded only by the
// caller's context.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  zerolog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithHTTPClient replaces the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger.With().Str("component", "api_client").Logger() }
}

// New builds a client for baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		http:    &http.Client{},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	c.logger.Debug().Str("method", req.Method).Str("url", req.URL.String()).Msg("api request")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	return resp, nil
}

func decode[T any](resp *http.Response) (Envelope[T], error) {
	defer resp.Body.Close()

	var env Envelope[T]
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return env, fmt.Errorf("read response: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= 300 {
				return env, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
			}
			return env, fmt.Errorf("decode response: %w", err)
		}
	}
	if resp.StatusCode >= 300 || !env.Success {
		message := env.Error
		if message == "" {
			message = env.Message
		}
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return env, &APIError{Status: resp.StatusCode, Message: message, Details: env.Details}
	}
	return env, nil
}

// call issues a JSON request and unwraps the envelope data.
func call[T any](ctx context.Context, c *Client, method, path string, query url.Values, body interface{}) (Envelope[T], error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return Envelope[T]{}, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return Envelope[T]{}, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.send(req)
	if err != nil {
		return Envelope[T]{}, err
	}
	return decode[T](resp)
}

// FilePart is an attachment for multipart endpoints.
type FilePart struct {
	Field    string
	Name     string
	Content  io.Reader
	MimeType string
}

func upload[T any](ctx context.Context, c *Client, path string, fields map[string]string, file *FilePart) (Envelope[T], error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return Envelope[T]{}, fmt.Errorf("write field %s: %w", key, err)
		}
	}
	if file != nil {
		part, err := writer.CreateFormFile(file.Field, file.Name)
		if err != nil {
			return Envelope[T]{}, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return Envelope[T]{}, fmt.Errorf("copy form file: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return Envelope[T]{}, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, &buf)
	if err != nil {
		return Envelope[T]{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := c.send(req)
	if err != nil {
		return Envelope[T]{}, err
	}
	return decode[T](resp)
}

// download fetches a raw file body. Failures still arrive as envelopes.
func (c *Client) download(ctx context.Context, path string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		_, err := decode[json.RawMessage](resp)
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func idPath(prefix string, id uint) string {
	return fmt.Sprintf("%s/%d", prefix, id)
}

func setUint(q url.Values, key string, v *uint) {
	if v != nil {
		q.Set(key, fmt.Sprint(*v))
	}
}

func setString(q url.Values, key, v string) {
	if strings.TrimSpace(v) != "" {
		q.Set(key, v)
	}
}

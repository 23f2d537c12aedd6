// Package client talks to the storefront REST API on behalf of a signed-in
// session. It never retries; callers decide what to do with each failure.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/junaidrashid-git/storefront/errs"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// TokenSource supplies the bearer credential of the current session.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for the API rooted at baseURL (e.g. "https://shop.example.com").
// No request timeout is set; bound calls with the context.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		tokens:  tokens,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiError struct {
	Error string `json:"error"`
}

// do performs one round trip. When auth is set and no token is available it
// fails with ErrAuthRequired before touching the network.
func (c *Client) do(ctx context.Context, op, method, path string, auth bool, body, out any) error {
	var token string
	if auth {
		t, ok := c.tokens.Token(ctx)
		if !ok {
			return &errs.Error{Op: op, Err: errs.ErrAuthRequired}
		}
		token = t
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &errs.Error{Op: op, Message: err.Error(), Err: fmt.Errorf("%w: %w", errs.ErrNetwork, err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errs.Error{Op: op, Status: resp.StatusCode, Message: err.Error(), Err: errs.ErrNetwork}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return &errs.Error{Op: op, Status: resp.StatusCode, Message: "malformed response: " + err.Error(), Err: errs.ErrNetwork}
		}
		return nil
	}

	e := &errs.Error{Op: op, Status: resp.StatusCode, Message: errorMessage(raw, resp.Status)}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Err = errs.ErrAuthRequired
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		e.Err = errs.ErrValidation
	case http.StatusNotFound:
		e.Err = errs.ErrNotFound
	case http.StatusConflict:
		e.Err = errs.ErrConflict
	default:
		e.Err = errs.ErrNetwork
	}

	c.logger.Debug("api request failed",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.String("message", e.Message))
	return e
}

func errorMessage(raw []byte, fallback string) string {
	var body apiError
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	if text := strings.TrimSpace(string(raw)); text != "" && len(text) < 256 {
		return text
	}
	return fallback
}

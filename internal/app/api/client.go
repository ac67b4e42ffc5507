package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tranminh/clubhub/internal/pkg/logger"
)

// TokenSource supplies the current bearer token, or "" when logged out. The
// token is read fresh on every request rather than cached in the client, so a
// logout elsewhere takes effect on the next call.
type TokenSource func() string

// Client is the single configured HTTP client for the backend. Every resource
// area exposes one method per backend endpoint; each is a thin pass-through
// returning the decoded response. There is no retry and no response caching.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	logger  zerolog.Logger
}

// NewClient creates a Client for the given base URL. token may be nil for a
// client that only hits public endpoints.
func NewClient(baseURL string, timeout time.Duration, token TokenSource) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		token:   token,
		logger:  logger.With("api"),
	}
}

// Error is the error surface for non-2xx backend responses. Message prefers
// the payload's error field, then its message field, then a generic fallback;
// views render it as-is.
type Error struct {
	Status  int
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsStatus reports whether err is an *Error with the given HTTP status
func IsStatus(err error, status int) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == status
	}
	return false
}

// errorPayload is the ad hoc error body shape the backend returns
type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// dataEnvelope is the standard success body shape: the payload sits under a
// top-level data key.
type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// do performs a JSON request and decodes the response payload from the data
// envelope into out (when out is non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	raw, err := c.roundTrip(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}

	var envelope dataEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to decode response envelope: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode response payload: %w", err)
	}
	return nil
}

// doRaw performs a JSON request and decodes the response body directly into
// out, for the endpoints (login, register) that respond without an envelope.
func (c *Client) doRaw(ctx context.Context, method, path string, body, out interface{}) error {
	raw, err := c.roundTrip(ctx, method, path, nil, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response payload: %w", err)
	}
	return nil
}

// roundTrip builds the request, attaches the Authorization header when a
// token exists, and maps non-2xx responses to *Error.
func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	// The token already carries whatever prefix the backend issued, so it is
	// forwarded verbatim rather than wrapped in a Bearer scheme here.
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", token)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Msg("Sending request")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var payload errorPayload
		if err := json.Unmarshal(raw, &payload); err == nil {
			if payload.Error != "" {
				apiErr.Message = payload.Error
			} else if payload.Message != "" {
				apiErr.Message = payload.Message
			}
		}
		c.logger.Debug().
			Int("status", resp.StatusCode).
			Str("path", path).
			Str("message", apiErr.Message).
			Msg("Request rejected by backend")
		return nil, apiErr
	}

	return raw, nil
}

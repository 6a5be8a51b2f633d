// Package clubapi is the read/write adapter for the club platform's REST
// API. All alias normalization happens here: handlers and the aggregation
// engine only ever see the canonical model types.
package clubapi

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

	"command-center-backend/config"
)

// Client talks to the club platform API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	loc     *time.Location
}

// NewClient creates a client from the upstream configuration.
func NewClient(cfg *config.UpstreamConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		loc:     cfg.Location(),
	}
}

// StatusError is a non-2xx reply from the club platform. RequiresRoster is
// only meaningful on 402 replies, where it distinguishes "guest roster
// incomplete" from "payment required".
type StatusError struct {
	Code           int
	Message        string
	RequiresRoster bool
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned status %d", e.Code)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.Code, e.Message)
}

// AsPaymentRequired unwraps err into the 402 payment-or-roster reply.
func AsPaymentRequired(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusPaymentRequired {
		return statusErr, true
	}
	return nil, false
}

func (c *Client) getList(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return err
	}

	list, err := unwrapList(body)
	if err != nil {
		return fmt.Errorf("unexpected response shape for %s: %w", path, err)
	}
	if err := json.Unmarshal(list, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", path, err)
	}
	return nil
}

func (c *Client) put(ctx context.Context, path string, payload any) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeStatusError(resp.StatusCode, body)
	}
	return body, nil
}

// decodeStatusError pulls the error message and the 402 roster discriminator
// out of an upstream failure body.
func decodeStatusError(code int, body []byte) *StatusError {
	var payload struct {
		Error           string `json:"error"`
		Message         string `json:"message"`
		RequiresRoster  bool   `json:"requiresRoster"`
		RequiresRoster2 bool   `json:"requires_roster"`
	}
	// A non-JSON error body still yields a usable StatusError.
	_ = json.Unmarshal(body, &payload)

	return &StatusError{
		Code:           code,
		Message:        firstNonEmpty(payload.Error, payload.Message),
		RequiresRoster: payload.RequiresRoster || payload.RequiresRoster2,
	}
}

// unwrapList tolerates both a bare JSON array and a {"data": [...]} envelope.
func unwrapList(body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return trimmed, nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return nil, errors.New("response carries no data field")
	}
	return envelope.Data, nil
}

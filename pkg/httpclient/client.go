package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every request when the caller does not set one
const DefaultTimeout = 5 * time.Second

// maxErrorBody caps how much of a failed response body ends up in the error
const maxErrorBody = 1024 * 1024

// StatusError is returned for non-2xx responses
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("POST %s returned %d (%s)", e.URL, e.StatusCode, e.Body)
}

type Client struct {
	client *http.Client
	token  string
	host   string
}

// NewClient creates a client for host. token is sent as a bearer token when non-empty.
func NewClient(host, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		token: token,
		host:  host,
	}
}

// Post sends body encoded as JSON to host+path and fails on any non-2xx response
func (c *Client) Post(ctx context.Context, path string, body interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("could not encode request body: %w", err)
	}

	url := fmt.Sprintf("%s%s", c.host, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("could not construct request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("could not POST to %s: %w", c.host, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return &StatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	return nil
}

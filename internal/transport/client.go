// Package transport fetches remote extracts over HTTP.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/agentstation/careroster/pkg/constants"
	"github.com/agentstation/careroster/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// maxBody caps a single extract download.
const maxBody = 64 << 20

// StatusError is a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed on retry.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client provides HTTP client functionality with authentication.
type Client struct {
	http *http.Client
	auth Authenticator
}

// New creates a new transport client with the specified authenticator.
func New(auth Authenticator) *Client {
	return NewWithHTTPClient(&http.Client{Timeout: DefaultHTTPTimeout}, auth)
}

// NewWithHTTPClient creates a transport client around an existing http.Client.
func NewWithHTTPClient(c *http.Client, auth Authenticator) *Client {
	if c == nil {
		c = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	if auth == nil {
		auth = &NoAuth{}
	}
	return &Client{http: c, auth: auth}
}

// Get downloads url and returns the body. Non-2xx responses yield a
// *StatusError.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+url, err)
	}
	req.Header.Set("Accept", "text/csv, */*")
	c.auth.Apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WrapIO("get", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, errors.WrapIO("read", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: snippet}
	}
	return body, nil
}

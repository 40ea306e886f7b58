// Package documentcloud implements the platform collaborators on top of the
// DocumentCloud REST API: documents, page text and positions, notes, and
// add-on run uploads.
package documentcloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Default endpoints.
const (
	DefaultBaseURL  = "https://api.www.documentcloud.org/api"
	DefaultAssetURL = "https://s3.documentcloud.org/"
	DefaultSiteURL  = "https://www.documentcloud.org"
)

// StatusError is returned for non-2xx API responses.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("documentcloud: %s %s returned status %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL sets the API base URL (for testing or self-hosted instances).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithAssetURL sets the asset host used when a document does not report one.
func WithAssetURL(u string) Option {
	return func(c *Client) {
		c.assetURL = strings.TrimRight(u, "/") + "/"
	}
}

// WithSiteURL sets the public site used to build canonical annotation URLs.
func WithSiteURL(u string) Option {
	return func(c *Client) {
		c.siteURL = strings.TrimRight(u, "/")
	}
}

// WithToken sets the bearer access token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRetry sets the attempt count and base delay for idempotent reads.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.delay = delay
	}
}

// Client talks to the DocumentCloud API.
type Client struct {
	baseURL  string
	assetURL string
	siteURL  string
	token    string
	http     *http.Client
	attempts uint
	delay    time.Duration
}

// NewClient creates a DocumentCloud client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		assetURL: DefaultAssetURL,
		siteURL:  DefaultSiteURL,
		http:     &http.Client{Timeout: 60 * time.Second},
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AnnotationURL returns the canonical viewing URL for a note.
func (c *Client) AnnotationURL(docID, noteID string) string {
	return fmt.Sprintf("%s/documents/%s/annotations/%s", c.siteURL, docID, noteID)
}

// get performs an authenticated GET, retrying transient failures.
func (c *Client) get(ctx context.Context, url string, auth bool) ([]byte, error) {
	var body []byte
	err := retry.Do(
		func() error {
			b, err := c.do(ctx, http.MethodGet, url, nil, "", auth)
			if err != nil {
				return err
			}
			body = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			zap.L().Debug("documentcloud: retrying request",
				zap.String("url", url),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// sendJSON performs a non-retried authenticated request with a JSON body and
// decodes the JSON response into out (when non-nil).
func (c *Client) sendJSON(ctx context.Context, method, url string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return eris.Wrap(err, "documentcloud: encode request")
	}
	body, err := c.do(ctx, method, url, bytes.NewReader(payload), "application/json", true)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "documentcloud: decode response")
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, contentType string, auth bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, eris.Wrap(err, "documentcloud: build request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "documentcloud: %s %s", method, url)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "documentcloud: read body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(respBody)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{Method: method, URL: url, Code: resp.StatusCode, Body: snippet}
	}
	return respBody, nil
}

// isTransient reports whether a failed read is worth retrying.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return true
}

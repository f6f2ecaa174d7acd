// Package share provides a client for the share API (entries, attachments,
// custom fields and field options) exposed under {base}/api.php.
package share

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/tidwall/gjson"

	"github.com/ternarybob/share-mcp/internal/common"
	"github.com/ternarybob/share-mcp/internal/httpclient"
	"github.com/ternarybob/share-mcp/internal/interfaces"
	"github.com/ternarybob/share-mcp/internal/services/transform"
)

// maxErrorBody caps how much of an error response is kept in APIError
const maxErrorBody = 512

// Client is a share API client. A Client is built per tool invocation from
// that invocation's configuration.
type Client struct {
	config      *common.Config
	httpClient  *http.Client
	logger      arbor.ILogger
	transformer *transform.Service
}

var _ interfaces.ShareService = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTransformer sets the service used for HTML conversion and rendering.
func WithTransformer(transformer *transform.Service) ClientOption {
	return func(c *Client) {
		c.transformer = transformer
	}
}

// NewClient creates a new share API client. Basic auth is attached to every
// request when both credentials are configured.
func NewClient(config *common.Config, opts ...ClientOption) *Client {
	c := &Client{
		config:     config,
		httpClient: httpclient.NewHTTPClientFromConfig(config),
		logger:     arbor.NewLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.transformer == nil && (config.Markdown.ConvertHTML || config.Markdown.RenderHTML) {
		c.transformer = transform.NewService(c.logger)
	}

	return c
}

// APIError represents a non-2xx response from the share API.
type APIError struct {
	StatusCode int
	Status     string
	Method     string
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("share API error: %s %s returned %s", e.Method, e.URL, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// apiURL builds {normalized base}/api.php/<segments...>
func (c *Client) apiURL(baseURL string, segments ...string) string {
	return common.APIURL(c.normalize(baseURL), segments...)
}

func (c *Client) entryURL(baseURL string, entryID int) string {
	return common.EntryURL(c.normalize(baseURL), entryID)
}

func (c *Client) normalize(baseURL string) string {
	return common.NormalizeBaseURL(baseURL, c.config.Share.RewriteLocalhost)
}

// newRequest creates a request with an optional JSON payload
func (c *Client) newRequest(ctx context.Context, method, reqURL string, params url.Values, payload any) (*http.Request, error) {
	if len(params) > 0 {
		reqURL = reqURL + "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// send executes a request and converts non-2xx responses into *APIError.
// On success the caller owns resp.Body.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", req.Method, req.URL.Redacted(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Method:     req.Method,
			URL:        req.URL.Redacted(),
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return resp, nil
}

// doJSON performs a request and parses the JSON response body. An empty body
// parses as an empty object so delete endpoints fall back to their defaults.
func (c *Client) doJSON(ctx context.Context, method, reqURL string, params url.Values, payload any) (gjson.Result, error) {
	req, err := c.newRequest(ctx, method, reqURL, params, payload)
	if err != nil {
		return gjson.Result{}, err
	}

	resp, err := c.send(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to read response from %s: %w", reqURL, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return gjson.Parse("{}"), nil
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("failed to decode response from %s: invalid JSON", reqURL)
	}
	return gjson.ParseBytes(data), nil
}

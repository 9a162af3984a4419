package upstream

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

	"github.com/godilite/profile-audit/internal/service"
)

const (
	defaultTimeout  = 10 * time.Second
	maxErrorBodyLen = 4 << 10
)

// ErrAccessGated is returned when the upstream reports insufficient permission.
var ErrAccessGated = service.ErrAccessGated

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Code, e.Body)
}

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Option func(*Options)

func WithBaseURL(url string) Option {
	return func(o *Options) { o.BaseURL = strings.TrimRight(url, "/") }
}

func WithAPIKey(key string) Option {
	return func(o *Options) { o.APIKey = key }
}

func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) { o.HTTPClient = c }
}

// client holds what every collaborator client shares.
type client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newClient(opts ...Option) (*client, error) {
	options := &Options{Timeout: defaultTimeout}
	for _, opt := range opts {
		opt(options)
	}
	if options.BaseURL == "" {
		return nil, errors.New("upstream base url cannot be empty")
	}

	hc := options.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: options.Timeout}
	}
	return &client{
		baseURL:    options.BaseURL,
		apiKey:     options.APIKey,
		httpClient: hc,
	}, nil
}

func (c *client) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, dest)
}

func (c *client) postJSON(ctx context.Context, path string, body, dest any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, dest)
}

func (c *client) do(req *http.Request, dest any) error {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		if resp.StatusCode == http.StatusForbidden || isPermissionDenied(body) {
			return fmt.Errorf("%w: %s", ErrAccessGated, resp.Status)
		}
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if isPermissionDenied(body) {
		return fmt.Errorf("%w: %s", ErrAccessGated, req.URL.Path)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type apiError struct {
	Error *struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
	} `json:"error"`
}

// isPermissionDenied detects the upstream access-gated envelope, which some
// proxies deliver with a 200 status.
func isPermissionDenied(body []byte) bool {
	if len(body) == 0 || body[0] != '{' {
		return false
	}
	var env apiError
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil {
		return false
	}
	return env.Error.Status == "PERMISSION_DENIED" || env.Error.Code == http.StatusForbidden
}

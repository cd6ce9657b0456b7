package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/callanalyzer/dashboard/internal/core/domain"
	"github.com/callanalyzer/dashboard/pkg/metrics"
)

// DefaultBaseURL is used when no backend URL is configured.
const DefaultBaseURL = "http://127.0.0.1:8000"

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 64 << 10
)

// TokenSource yields the auth token of the browser session bound to ctx,
// or "" when there is none.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// HTTPError is returned for every non-2xx backend response.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string { return e.Message }

func (e *HTTPError) StatusCode() int { return e.Status }

// Is lets callers match HTTP failures against domain sentinels.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case domain.ErrNotFound:
		return e.Status == http.StatusNotFound
	case domain.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case domain.ErrForbidden:
		return e.Status == http.StatusForbidden
	}
	return false
}

// Multipart is a pre-encoded multipart/form-data body.
type Multipart struct {
	Body        io.Reader
	ContentType string
}

// RequestOptions configures a single request. The zero value is an authenticated
// GET without a body.
type RequestOptions struct {
	Method   string
	Headers  map[string]string
	Body     any
	SkipAuth bool
	FormData bool
}

// Option mutates RequestOptions for the convenience wrappers.
type Option func(*RequestOptions)

// WithoutAuth sends the request without looking up a token.
func WithoutAuth() Option {
	return func(o *RequestOptions) { o.SkipAuth = true }
}

// WithHeader adds an extra request header.
func WithHeader(key, value string) Option {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		o.Headers[key] = value
	}
}

// WithToken authenticates with an explicit token instead of the stored one.
func WithToken(token string) Option {
	return func(o *RequestOptions) {
		WithHeader("Authorization", "Token "+token)(o)
		o.SkipAuth = true
	}
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	Logger     zerolog.Logger
}

// Client is the request pipeline to the Call Analyzer REST backend. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     zerolog.Logger
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: base, http: hc, tokens: opts.Tokens, log: opts.Logger}
}

// BaseURL returns the resolved backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// Do sends a request to endpoint and decodes a JSON success body into out
// (which may be nil). Failures are returned as *HTTPError, domain.ErrAuthRequired,
// or a wrapped transport/decoding error.
func (c *Client) Do(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	header := make(http.Header)
	for k, v := range opts.Headers {
		header.Set(k, v)
	}
	header.Set("Accept", "application/json")
	if !opts.FormData {
		header.Set("Content-Type", "application/json")
	}

	if !opts.SkipAuth {
		token, err := c.token(ctx)
		if err != nil {
			return fmt.Errorf("read auth token: %w", err)
		}
		if token == "" {
			metrics.BackendRequestsTotal.WithLabelValues(method, "auth_required").Inc()
			return domain.ErrAuthRequired
		}
		header.Set("Authorization", "Token "+token)
	}

	body, err := encodeBody(opts, header)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(endpoint), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header = header

	c.log.Debug().Str("method", method).Str("url", req.URL.String()).Msg("backend request")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(method, "network_error").Inc()
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()
	metrics.BackendRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		herr := decodeError(resp)
		c.log.Debug().Str("method", method).Str("endpoint", endpoint).Int("status", herr.Status).Msg(herr.Message)
		return herr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, endpoint, err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, endpoint string, out any, opts ...Option) error {
	return c.Do(ctx, endpoint, build(http.MethodGet, nil, opts), out)
}

func (c *Client) Post(ctx context.Context, endpoint string, body, out any, opts ...Option) error {
	return c.Do(ctx, endpoint, build(http.MethodPost, body, opts), out)
}

func (c *Client) Put(ctx context.Context, endpoint string, body, out any, opts ...Option) error {
	return c.Do(ctx, endpoint, build(http.MethodPut, body, opts), out)
}

func (c *Client) Patch(ctx context.Context, endpoint string, body, out any, opts ...Option) error {
	return c.Do(ctx, endpoint, build(http.MethodPatch, body, opts), out)
}

func (c *Client) Delete(ctx context.Context, endpoint string, out any, opts ...Option) error {
	return c.Do(ctx, endpoint, build(http.MethodDelete, nil, opts), out)
}

// Upload POSTs a multipart form.
func (c *Client) Upload(ctx context.Context, endpoint string, form *Multipart, out any, opts ...Option) error {
	ro := build(http.MethodPost, form, opts)
	ro.FormData = true
	return c.Do(ctx, endpoint, ro, out)
}

func build(method string, body any, opts []Option) RequestOptions {
	ro := RequestOptions{Body: body}
	for _, opt := range opts {
		opt(&ro)
	}
	ro.Method = method
	return ro
}

func (c *Client) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint
}

func (c *Client) token(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", nil
	}
	return c.tokens.Token(ctx)
}

func encodeBody(opts RequestOptions, header http.Header) (io.Reader, error) {
	if opts.Body == nil {
		return nil, nil
	}
	if opts.FormData {
		switch b := opts.Body.(type) {
		case *Multipart:
			header.Set("Content-Type", b.ContentType)
			return b.Body, nil
		case io.Reader:
			return b, nil
		default:
			return nil, fmt.Errorf("form body must be *Multipart or io.Reader, got %T", opts.Body)
		}
	}
	raw, err := json.Marshal(opts.Body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return bytes.NewReader(raw), nil
}

// decodeError extracts a human-readable message from an error response: the
// "detail" field, then the first "non_field_errors" entry, then a status fallback.
func decodeError(resp *http.Response) *HTTPError {
	herr := &HTTPError{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("Request failed with status: %d", resp.StatusCode),
	}
	var payload struct {
		Detail         string   `json:"detail"`
		NonFieldErrors []string `json:"non_field_errors"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&payload); err != nil {
		return herr
	}
	switch {
	case payload.Detail != "":
		herr.Message = payload.Detail
	case len(payload.NonFieldErrors) > 0 && payload.NonFieldErrors[0] != "":
		herr.Message = payload.NonFieldErrors[0]
	}
	return herr
}

// IsHTTPStatus reports whether err is an HTTPError with the given status.
func IsHTTPStatus(err error, status int) bool {
	var herr *HTTPError
	return errors.As(err, &herr) && herr.Status == status
}

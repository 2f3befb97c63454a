// Package provider is the shared HTTP client adapters use to reach their
// provider APIs.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

const (
	maxResponseBytes = 4 << 20
	maxErrorBody     = 500
)

// Options are the process-wide knobs shared by every provider client.
type Options struct {
	RateLimit  float64 // requests per second, 0 disables
	Retries    int     // extra attempts for idempotent requests
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Auth decorates an outgoing request with credentials. It may fail with a
// not_configured or upstream ToolError.
type Auth func(ctx context.Context, req *http.Request) error

// Bearer sends a static token.
func Bearer(token string) Auth {
	return func(_ context.Context, req *http.Request) error {
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	}
}

// TokenSource yields short-lived access tokens.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// BearerFrom sends a token obtained from ts on every request.
func BearerFrom(ts TokenSource) Auth {
	return func(ctx context.Context, req *http.Request) error {
		tok, err := ts.Token(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
		return nil
	}
}

// ErrorFormatter turns a failed response into the caller-facing message.
type ErrorFormatter func(status int, body []byte) string

// Client talks to one provider base URL.
type Client struct {
	name     string
	baseURL  string
	http     *http.Client
	auth     Auth
	header   http.Header
	limiter  *rate.Limiter
	retries  int
	errorMsg ErrorFormatter
	log      *slog.Logger
}

func New(name, baseURL string, auth Auth, opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	c := &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		auth:    auth,
		header:  make(http.Header),
		retries: opts.Retries,
		log:     log.With("provider", name),
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), int(opts.RateLimit)+1)
	}
	c.errorMsg = c.defaultError
	return c
}

// SetHeader adds a header sent on every request.
func (c *Client) SetHeader(key, value string) *Client {
	c.header.Set(key, value)
	return c
}

// SetErrorFormatter overrides the "<name> API error: <status> - <body>" form.
func (c *Client) SetErrorFormatter(f ErrorFormatter) *Client {
	c.errorMsg = f
	return c
}

func (c *Client) Name() string    { return c.name }
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) defaultError(status int, body []byte) string {
	return fmt.Sprintf("%s API error: %d - %s", c.name, status, Truncate(strings.TrimSpace(string(body)), maxErrorBody))
}

// Request describes one call. Path is relative to the base URL unless it is
// absolute. JSON and Body are mutually exclusive. A non-nil ResponseHeader
// receives the headers of the successful response.
type Request struct {
	Method         string
	Path           string
	Query          url.Values
	JSON           any
	Body           []byte
	ContentType    string
	Header         http.Header
	ResponseHeader http.Header
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, JSON: body}, out)
}

func (c *Client) Patch(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Query: query, JSON: body}, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, JSON: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, nil)
}

// Do sends the request and decodes a JSON response into out. out may be nil,
// or *[]byte for the raw body. GET requests are retried with exponential
// backoff on retryable failures; other methods are sent once.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	payload := r.Body
	if r.JSON != nil {
		b, err := json.Marshal(r.JSON)
		if err != nil {
			return types.ErrInternal(fmt.Errorf("provider.Do marshal: %w", err))
		}
		payload = b
		if r.ContentType == "" {
			r.ContentType = "application/json"
		}
	}

	attempt := func() ([]byte, error) {
		body, err := c.send(ctx, r, payload)
		if err == nil {
			return body, nil
		}
		var te *types.ToolError
		if errors.As(err, &te) && te.Retryable {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	var body []byte
	var err error
	if r.Method == http.MethodGet && c.retries > 0 {
		body, err = backoff.Retry(ctx, attempt,
			backoff.WithBackOff(newBackOff()),
			backoff.WithMaxTries(uint(c.retries+1)),
			backoff.WithNotify(func(err error, wait time.Duration) {
				c.log.WarnContext(ctx, "provider request retry", "path", r.Path, "wait", wait, "error", err)
			}),
		)
	} else {
		body, err = c.send(ctx, r, payload)
	}
	if err != nil {
		var te *types.ToolError
		if errors.As(err, &te) {
			return te
		}
		return types.ErrUpstream(c.name, 0, fmt.Sprintf("%s request failed: %v", c.name, err), err)
	}
	return decodeInto(c.name, body, out)
}

func newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return b
}

func (c *Client) send(ctx context.Context, r Request, payload []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, types.ErrTimeout(fmt.Sprintf("%s rate limit wait: %v", c.name, err))
		}
	}

	u, err := c.resolve(r.Path, r.Query)
	if err != nil {
		return nil, types.ErrInternal(err)
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, u, reader)
	if err != nil {
		return nil, types.ErrInternal(fmt.Errorf("provider.send new request: %w", err))
	}
	for k, vs := range c.header {
		req.Header[k] = vs
	}
	for k, vs := range r.Header {
		req.Header[k] = vs
	}
	req.Header.Set("Accept", "application/json")
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	if c.auth != nil {
		if err := c.auth(ctx, req); err != nil {
			return nil, err
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, types.ErrUpstream(c.name, 0, fmt.Sprintf("%s request failed: %v", c.name, err), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, types.ErrUpstream(c.name, resp.StatusCode, fmt.Sprintf("%s read response: %v", c.name, err), err)
	}
	if resp.StatusCode >= 400 {
		te := types.ErrUpstream(c.name, resp.StatusCode, c.errorMsg(resp.StatusCode, body), nil)
		te.Detail = Truncate(string(body), 2000)
		return nil, te
	}
	if r.ResponseHeader != nil {
		for k, vs := range resp.Header {
			r.ResponseHeader[k] = vs
		}
	}
	return body, nil
}

func (c *Client) resolve(path string, query url.Values) (string, error) {
	raw := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		raw = c.baseURL + "/" + strings.TrimLeft(path, "/")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("provider.resolve %q: %w", raw, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func decodeInto(name string, body []byte, out any) error {
	switch o := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*o = body
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return types.ErrUpstream(name, 0, fmt.Sprintf("%s returned an unreadable response", name), err)
	}
	return nil
}

// Truncate shortens s to at most n bytes, marking the cut. The cut backs up
// to a rune boundary.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}

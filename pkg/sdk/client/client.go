// Package client calls a remote adapter's HTTP transport.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
	"github.com/google/uuid"
)

const maxResponseBytes = 8 << 20

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New targets baseURL. apiKey may be empty when the adapter has no keys.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// SetTimeout overrides the default HTTP client timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.httpClient.Timeout = d
}

// ListTools fetches the adapter's advertised descriptors.
func (c *Client) ListTools(ctx context.Context) (*connectors.ToolsResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/tools", nil)
	if err != nil {
		return nil, err
	}
	var resp connectors.ToolsResponse
	if err := c.doJSON(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Exec runs one invocation remotely. A tool failure is a normal envelope with
// IsError set; the error return is for transport problems only.
func (c *Client) Exec(ctx context.Context, name string, arguments map[string]any) (*tools.Envelope, error) {
	body, err := json.Marshal(connectors.ExecRequest{Name: name, Arguments: arguments})
	if err != nil {
		return nil, fmt.Errorf("client.Exec marshal: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/exec", body)
	if err != nil {
		return nil, err
	}
	var env tools.Envelope
	if err := c.doJSON(req, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// Ready reports whether the adapter answers /readyz with 200.
func (c *Client) Ready(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/readyz", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client.Ready: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("client.Ready: http status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var r io.Reader = http.NoBody
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("client new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	return req, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body := io.LimitReader(resp.Body, maxResponseBytes)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr types.APIError
		if decodeErr := json.NewDecoder(body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
			apiErr.HTTPCode = resp.StatusCode
			return &apiErr
		}
		return fmt.Errorf("client %s %s: http status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("client decode %s: %w", req.URL.Path, err)
	}
	return nil
}

// Package jobber exposes the Jobber field-service GraphQL API as tools.
package jobber

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/config"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/provider"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

const (
	Name       = "jobber"
	DefaultURL = "https://api.getjobber.com/api/graphql"
	apiVersion = "2023-03-15"
)

// Info registers the adapter with the catalog.
var Info = connectors.Info{
	Name:        Name,
	Description: "Jobber clients, jobs and invoices",
	Factory:     Factory,
}

type Config struct {
	APIKey    string
	APISecret string
	URL       string
	Mock      bool
}

// ConfigFromEnv reads JOBBER_API_KEY and JOBBER_API_SECRET.
func ConfigFromEnv(s *config.Secrets) Config {
	return Config{
		APIKey:    s.Get("JOBBER_API_KEY"),
		APISecret: s.Get("JOBBER_API_SECRET"),
		URL:       config.EnvOr("JOBBER_API_URL", DefaultURL),
	}
}

type Connector struct {
	cfg Config
	api *provider.Client
}

func New(cfg Config, opts provider.Options) *Connector {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	api := provider.New("Jobber", cfg.URL, provider.Bearer(cfg.APIKey), opts).
		SetHeader("X-JOBBER-GRAPHQL-VERSION", apiVersion)
	return &Connector{cfg: cfg, api: api}
}

func Factory(_ context.Context, env connectors.Env) (connectors.Adapter, error) {
	cfg := ConfigFromEnv(env.Secrets)
	cfg.Mock = env.Mock
	return New(cfg, env.Provider), nil
}

func (c *Connector) Secrets() []string {
	return []string{c.cfg.APIKey, c.cfg.APISecret}
}

func (c *Connector) ready() error {
	missing := config.Missing(map[string]string{
		"JOBBER_API_KEY":    c.cfg.APIKey,
		"JOBBER_API_SECRET": c.cfg.APISecret,
	}, "JOBBER_API_KEY", "JOBBER_API_SECRET")
	if len(missing) > 0 {
		return types.ErrNotConfigured("Jobber", missing...)
	}
	return nil
}

type gqlError struct {
	Message string `json:"message"`
}

type userError struct {
	Field   any    `json:"field"`
	Message string `json:"message"`
}

// query posts one GraphQL document and decodes its data member into out.
// Top-level errors fail the call even when partial data came back.
func (c *Connector) query(ctx context.Context, doc string, vars map[string]any, out any) error {
	if err := c.ready(); err != nil {
		return err
	}
	var resp struct {
		Data   json.RawMessage `json:"data"`
		Errors []gqlError      `json:"errors"`
	}
	body := map[string]any{"query": doc, "variables": vars}
	if err := c.api.Post(ctx, c.api.BaseURL(), body, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			msgs[i] = e.Message
		}
		return &types.ToolError{Kind: types.KindUpstream, Message: "Jobber API error: " + strings.Join(msgs, "; ")}
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return &types.ToolError{Kind: types.KindUpstream, Message: "Jobber API error: empty response"}
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return types.ErrUpstream("Jobber", 0, "Jobber returned an unreadable response", err)
	}
	return nil
}

func userErrors(errs []userError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return &types.ToolError{Kind: types.KindUpstream, Message: "Jobber rejected the request: " + strings.Join(msgs, ", ")}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

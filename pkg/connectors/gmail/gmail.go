// Package gmail exposes a Gmail mailbox as tools, authenticated with a
// Google OAuth refresh token.
package gmail

import (
	"context"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/config"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/provider"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/oauth"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

const (
	Name       = "gmail"
	DefaultURL = "https://gmail.googleapis.com/gmail/v1/users/me"

	// detailLimit bounds the per-message fetches a listing makes.
	detailLimit = 5
)

var Info = connectors.Info{
	Name:        Name,
	Description: "Gmail messages, labels and drafts",
	Factory:     Factory,
}

type Config struct {
	OAuth oauth.RefreshConfig
	URL   string
	Mock  bool
}

func ConfigFromEnv(s *config.Secrets) Config {
	return Config{
		OAuth: oauth.RefreshConfigFrom(s.Get),
		URL:   config.EnvOr("GMAIL_API_URL", DefaultURL),
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
	if cfg.OAuth.HTTPClient == nil {
		cfg.OAuth.HTTPClient = opts.HTTPClient
	}
	ts := oauth.NewRefreshTokenSource(cfg.OAuth)
	api := provider.New("Gmail", cfg.URL, provider.BearerFrom(ts), opts).
		SetErrorFormatter(provider.GoogleErrors("Gmail"))
	return &Connector{cfg: cfg, api: api}
}

func Factory(_ context.Context, env connectors.Env) (connectors.Adapter, error) {
	cfg := ConfigFromEnv(env.Secrets)
	cfg.Mock = env.Mock
	return New(cfg, env.Provider), nil
}

func (c *Connector) Secrets() []string { return c.cfg.OAuth.Secrets() }

func (c *Connector) ready() error {
	if missing := c.cfg.OAuth.Missing(); len(missing) > 0 {
		return types.ErrNotConfigured("Gmail", missing...)
	}
	return nil
}

// Package sendgrid exposes SendGrid mail, template, contact and statistics
// endpoints as tools.
package sendgrid

import (
	"context"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/config"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/provider"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

const (
	Name       = "sendgrid"
	DefaultURL = "https://api.sendgrid.com/v3"
)

var Info = connectors.Info{
	Name:        Name,
	Description: "SendGrid transactional mail, templates, contacts and stats",
	Factory:     Factory,
}

type Config struct {
	APIKey    string
	FromEmail string
	FromName  string
	URL       string
	Mock      bool
}

func ConfigFromEnv(s *config.Secrets) Config {
	return Config{
		APIKey:    s.Get("SENDGRID_API_KEY"),
		FromEmail: config.EnvOr("SENDGRID_FROM_EMAIL", ""),
		FromName:  config.EnvOr("SENDGRID_FROM_NAME", ""),
		URL:       config.EnvOr("SENDGRID_API_URL", DefaultURL),
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
	return &Connector{cfg: cfg, api: provider.New("SendGrid", cfg.URL, provider.Bearer(cfg.APIKey), opts)}
}

func Factory(_ context.Context, env connectors.Env) (connectors.Adapter, error) {
	cfg := ConfigFromEnv(env.Secrets)
	cfg.Mock = env.Mock
	return New(cfg, env.Provider), nil
}

func (c *Connector) Secrets() []string { return []string{c.cfg.APIKey} }

func (c *Connector) ready() error {
	if c.cfg.APIKey == "" {
		return types.ErrNotConfigured("SendGrid", "SENDGRID_API_KEY")
	}
	return nil
}

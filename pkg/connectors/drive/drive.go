// Package drive exposes Google Drive files and folders as tools. It shares
// the Google OAuth refresh-token environment with the gmail package.
package drive

import (
	"context"
	"strings"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/config"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/provider"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/oauth"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

const (
	Name       = "drive"
	DefaultURL = "https://www.googleapis.com/drive/v3"

	folderMimeType = "application/vnd.google-apps.folder"
)

var Info = connectors.Info{
	Name:        Name,
	Description: "Google Drive files, folders and sharing",
	Factory:     Factory,
}

type Config struct {
	OAuth oauth.RefreshConfig
	URL   string
	// UploadURL defaults to the upload host matching URL.
	UploadURL string
	Mock      bool
}

func ConfigFromEnv(s *config.Secrets) Config {
	return Config{
		OAuth: oauth.RefreshConfigFrom(s.Get),
		URL:   config.EnvOr("DRIVE_API_URL", DefaultURL),
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
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if cfg.UploadURL == "" {
		cfg.UploadURL = uploadURL(cfg.URL)
	}
	if cfg.OAuth.HTTPClient == nil {
		cfg.OAuth.HTTPClient = opts.HTTPClient
	}
	ts := oauth.NewRefreshTokenSource(cfg.OAuth)
	api := provider.New("Google Drive", cfg.URL, provider.BearerFrom(ts), opts).
		SetErrorFormatter(provider.GoogleErrors("Google Drive"))
	return &Connector{cfg: cfg, api: api}
}

// uploadURL maps https://host/drive/v3 to https://host/upload/drive/v3/files.
func uploadURL(base string) string {
	if i := strings.Index(base, "/drive/"); i >= 0 {
		return base[:i] + "/upload" + base[i:] + "/files"
	}
	return base + "/upload/files"
}

func Factory(_ context.Context, env connectors.Env) (connectors.Adapter, error) {
	cfg := ConfigFromEnv(env.Secrets)
	cfg.Mock = env.Mock
	return New(cfg, env.Provider), nil
}

func (c *Connector) Secrets() []string { return c.cfg.OAuth.Secrets() }

func (c *Connector) ready() error {
	if missing := c.cfg.OAuth.Missing(); len(missing) > 0 {
		return types.ErrNotConfigured("Google Drive", missing...)
	}
	return nil
}

// quote renders s as a Drive query string literal.
func quote(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}

// exportFormats maps Google Workspace types to the text format they are
// exported as.
var exportFormats = map[string]string{
	"application/vnd.google-apps.document":     "text/plain",
	"application/vnd.google-apps.spreadsheet":  "text/csv",
	"application/vnd.google-apps.presentation": "text/plain",
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

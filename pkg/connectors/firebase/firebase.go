// Package firebase exposes Firestore documents and Firebase Auth users as
// tools. Requests are authorized with service-account JWT grants.
package firebase

import (
	"context"
	"net/url"
	"strings"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/config"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/provider"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/oauth"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

const (
	Name = "firebase"

	DefaultFirestoreURL = "https://firestore.googleapis.com"
	DefaultAuthURL      = "https://identitytoolkit.googleapis.com"

	keyEnv = "FIREBASE_SERVICE_ACCOUNT_KEY"
)

var scopes = []string{
	"https://www.googleapis.com/auth/datastore",
	"https://www.googleapis.com/auth/firebase",
	"https://www.googleapis.com/auth/identitytoolkit",
}

var Info = connectors.Info{
	Name:        Name,
	Description: "Firestore documents and Firebase Auth users",
	Factory:     Factory,
}

type Config struct {
	// ServiceAccountKey is the service-account key file contents.
	ServiceAccountKey string
	// DatabaseURL is the Realtime Database URL. No tool reads it; it is
	// carried so one environment can serve every Firebase client.
	DatabaseURL  string
	FirestoreURL string
	AuthURL      string
	Mock         bool
}

func ConfigFromEnv(s *config.Secrets) Config {
	return Config{
		ServiceAccountKey: s.Get(keyEnv),
		DatabaseURL:       config.EnvOr("FIREBASE_DATABASE_URL", ""),
		FirestoreURL:      config.EnvOr("FIRESTORE_API_URL", DefaultFirestoreURL),
		AuthURL:           config.EnvOr("IDENTITY_TOOLKIT_URL", DefaultAuthURL),
	}
}

type Connector struct {
	cfg     Config
	sa      *oauth.ServiceAccount
	initErr error
	store   *provider.Client
	auth    *provider.Client
}

// New parses the service-account key. A missing or unusable key is reported
// on the first call, never here.
func New(cfg Config, opts provider.Options) *Connector {
	if cfg.FirestoreURL == "" {
		cfg.FirestoreURL = DefaultFirestoreURL
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	c := &Connector{cfg: cfg}
	if cfg.ServiceAccountKey == "" {
		return c
	}

	sa, err := oauth.ParseServiceAccount([]byte(cfg.ServiceAccountKey))
	if err != nil {
		c.initErr = err
		return c
	}
	ts, err := oauth.NewJWTSource(sa, scopes, opts.HTTPClient)
	if err != nil {
		c.initErr = err
		return c
	}
	c.sa = sa
	project := "/v1/projects/" + url.PathEscape(sa.ProjectID)
	c.store = provider.New("Firestore", strings.TrimRight(cfg.FirestoreURL, "/")+project+"/databases/(default)/documents",
		provider.BearerFrom(ts), opts).SetErrorFormatter(provider.GoogleErrors("Firestore"))
	c.auth = provider.New("Firebase Auth", strings.TrimRight(cfg.AuthURL, "/")+project,
		provider.BearerFrom(ts), opts).SetErrorFormatter(provider.GoogleErrors("Firebase Auth"))
	return c
}

func Factory(_ context.Context, env connectors.Env) (connectors.Adapter, error) {
	cfg := ConfigFromEnv(env.Secrets)
	cfg.Mock = env.Mock
	return New(cfg, env.Provider), nil
}

func (c *Connector) Secrets() []string {
	if c.sa == nil {
		return nil
	}
	return []string{c.sa.PrivateKey, c.sa.PrivateKeyID}
}

func (c *Connector) ready() error {
	switch {
	case c.cfg.ServiceAccountKey == "":
		return types.ErrNotConfigured("Firebase", keyEnv)
	case c.initErr != nil:
		return &types.ToolError{
			Kind:    types.KindNotConfigured,
			Message: "Firebase is not configured: " + keyEnv + " is not a usable service-account key",
			Cause:   c.initErr,
		}
	}
	return nil
}

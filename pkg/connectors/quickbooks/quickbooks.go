// Package quickbooks exposes QuickBooks Online accounting data as tools.
package quickbooks

import (
	"context"
	"net/url"
	"strings"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/config"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/provider"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

const (
	Name              = "quickbooks"
	ProductionURL     = "https://quickbooks.api.intuit.com"
	SandboxURL        = "https://sandbox-quickbooks.api.intuit.com"
	minorVersion      = "65"
	defaultExpenseAcc = "1"
)

var Info = connectors.Info{
	Name:        Name,
	Description: "QuickBooks Online company, reports, customers, invoices and bills",
	Factory:     Factory,
}

type Config struct {
	AccessToken      string
	CompanyID        string
	Sandbox          bool
	ExpenseAccountID string
	URL              string // overrides the production/sandbox choice
	Mock             bool
}

func ConfigFromEnv(s *config.Secrets) Config {
	return Config{
		AccessToken:      s.Get("QB_ACCESS_TOKEN"),
		CompanyID:        config.EnvOr("QB_COMPANY_ID", ""),
		Sandbox:          config.EnvOrBool("QB_SANDBOX", false),
		ExpenseAccountID: config.EnvOr("QB_EXPENSE_ACCOUNT_ID", defaultExpenseAcc),
		URL:              config.EnvOr("QB_API_URL", ""),
	}
}

type Connector struct {
	cfg Config
	api *provider.Client
}

func New(cfg Config, opts provider.Options) *Connector {
	if cfg.URL == "" {
		cfg.URL = ProductionURL
		if cfg.Sandbox {
			cfg.URL = SandboxURL
		}
	}
	if cfg.ExpenseAccountID == "" {
		cfg.ExpenseAccountID = defaultExpenseAcc
	}
	base := strings.TrimRight(cfg.URL, "/") + "/v3/company/" + url.PathEscape(cfg.CompanyID)
	return &Connector{cfg: cfg, api: provider.New("QuickBooks", base, provider.Bearer(cfg.AccessToken), opts)}
}

func Factory(_ context.Context, env connectors.Env) (connectors.Adapter, error) {
	cfg := ConfigFromEnv(env.Secrets)
	cfg.Mock = env.Mock
	return New(cfg, env.Provider), nil
}

func (c *Connector) Secrets() []string { return []string{c.cfg.AccessToken} }

func (c *Connector) ready() error {
	missing := config.Missing(map[string]string{
		"QB_ACCESS_TOKEN": c.cfg.AccessToken,
		"QB_COMPANY_ID":   c.cfg.CompanyID,
	}, "QB_ACCESS_TOKEN", "QB_COMPANY_ID")
	if len(missing) > 0 {
		return types.ErrNotConfigured("QuickBooks", missing...)
	}
	return nil
}

func (c *Connector) get(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.ready(); err != nil {
		return err
	}
	if q == nil {
		q = url.Values{}
	}
	q.Set("minorversion", minorVersion)
	return c.api.Get(ctx, path, q, out)
}

func (c *Connector) post(ctx context.Context, path string, body, out any) error {
	if err := c.ready(); err != nil {
		return err
	}
	q := url.Values{"minorversion": {minorVersion}}
	return c.api.Do(ctx, provider.Request{Method: "POST", Path: path, Query: q, JSON: body}, out)
}

// query runs a QuickBooks query-language statement.
func (c *Connector) query(ctx context.Context, stmt string, out any) error {
	return c.get(ctx, "query", url.Values{"query": {stmt}}, out)
}

// quote escapes a literal for the QuickBooks query language.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

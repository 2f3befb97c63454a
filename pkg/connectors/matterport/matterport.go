// Package matterport exposes Matterport 3D models as tools.
package matterport

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/config"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/provider"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

const (
	Name       = "matterport"
	DefaultURL = "https://web-api.matterport.com/api/v1"
	showURL    = "https://my.matterport.com/show/"
)

var Info = connectors.Info{
	Name:        Name,
	Description: "Matterport 3D models, assets, sharing and analytics",
	Factory:     Factory,
}

type Config struct {
	AccessToken string
	URL         string
	Mock        bool
}

func ConfigFromEnv(s *config.Secrets) Config {
	return Config{
		AccessToken: s.Get("MATTERPORT_ACCESS_TOKEN"),
		URL:         config.EnvOr("MATTERPORT_API_URL", DefaultURL),
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
	return &Connector{cfg: cfg, api: provider.New("Matterport", cfg.URL, provider.Bearer(cfg.AccessToken), opts)}
}

func Factory(_ context.Context, env connectors.Env) (connectors.Adapter, error) {
	cfg := ConfigFromEnv(env.Secrets)
	cfg.Mock = env.Mock
	return New(cfg, env.Provider), nil
}

func (c *Connector) Secrets() []string { return []string{c.cfg.AccessToken} }

func (c *Connector) ready() error {
	if c.cfg.AccessToken == "" {
		return types.ErrNotConfigured("Matterport", "MATTERPORT_ACCESS_TOKEN")
	}
	return nil
}

func (c *Connector) get(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.api.Get(ctx, path, q, out)
}

func modelPath(id string, rest ...string) string {
	return strings.Join(append([]string{"models", url.PathEscape(id)}, rest...), "/")
}

func showLink(id string) string {
	return showURL + "?m=" + url.QueryEscape(id)
}

type model struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Status       string            `json:"status"`
	Created      string            `json:"created"`
	Modified     string            `json:"modified"`
	ViewCount    int               `json:"view_count"`
	Size         float64           `json:"size"`
	ScanDuration float64           `json:"scan_duration"`
	IsPublic     bool              `json:"is_public"`
	Tags         []string          `json:"tags"`
	Metadata     map[string]any    `json:"metadata"`
	Location     map[string]string `json:"location"`
}

func (m model) title() string {
	if m.Name == "" {
		return "Untitled"
	}
	return m.Name
}

func (m model) description() string {
	if m.Description == "" {
		return "No description"
	}
	return m.Description
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func num(f float64) string {
	if f == 0 {
		return "N/A"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func mockModel(id string) model {
	return model{ID: id, Name: "Mock Showroom", Status: "active", Created: "2026-01-01T00:00:00Z", ViewCount: 128, Tags: []string{"demo"}}
}

func (c *Connector) Tools() []tools.Tool {
	modelID := tools.Field{Name: "modelId", Kind: tools.KindString, Description: "Matterport model ID"}
	return []tools.Tool{
		{
			Descriptor: tools.Descriptor{
				Name:        "matterport_list_models",
				Description: "List Matterport 3D models",
				Fields: []tools.Field{
					{Name: "limit", Kind: tools.KindNumber, Description: "Number of models to return", Default: 10},
					{Name: "offset", Kind: tools.KindNumber, Description: "Number of models to skip", Default: 0},
					{Name: "search", Kind: tools.KindString, Description: "Search term"},
				},
			},
			Handler: c.listModels,
		},
		{
			Descriptor: tools.Descriptor{
				Name: "matterport_get_model", Description: "Get a model summary",
				Fields: []tools.Field{modelID}, Required: []string{"modelId"},
			},
			Handler: c.getModel,
		},
		{
			Descriptor: tools.Descriptor{
				Name: "matterport_get_model_details", Description: "Get full model details including metadata and location",
				Fields: []tools.Field{modelID}, Required: []string{"modelId"},
			},
			Handler: c.getModelDetails,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "matterport_list_assets",
				Description: "List photos and floorplans of a model",
				Fields: []tools.Field{
					modelID,
					{Name: "assetType", Kind: tools.KindString, Description: "Asset type", Enum: []any{"photo", "floorplan", "all"}, Default: "all"},
				},
				Required: []string{"modelId"},
			},
			Handler: c.listAssets,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "matterport_get_embed_code",
				Description: "Build the HTML embed code for a model",
				Fields: []tools.Field{
					modelID,
					{Name: "width", Kind: tools.KindNumber, Description: "Frame width in pixels", Default: 853},
					{Name: "height", Kind: tools.KindNumber, Description: "Frame height in pixels", Default: 480},
					{Name: "autoplay", Kind: tools.KindBoolean, Description: "Start the tour automatically", Default: false},
				},
				Required: []string{"modelId"},
			},
			Handler: c.getEmbedCode,
		},
		{
			Descriptor: tools.Descriptor{
				Name: "matterport_get_sharing_link", Description: "Get sharing settings and links for a model",
				Fields: []tools.Field{modelID}, Required: []string{"modelId"},
			},
			Handler: c.getSharingLink,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "matterport_update_model",
				Description: "Update a model's name, description or tags",
				Fields: []tools.Field{
					modelID,
					{Name: "name", Kind: tools.KindString, Description: "New name"},
					{Name: "description", Kind: tools.KindString, Description: "New description"},
					{Name: "tags", Kind: tools.KindArray, Description: "Replacement tags", Items: &tools.Field{Kind: tools.KindString}},
				},
				Required: []string{"modelId"},
			},
			Handler: c.updateModel,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "matterport_get_analytics",
				Description: "Get view analytics for a model",
				Fields: []tools.Field{
					modelID,
					{Name: "startDate", Kind: tools.KindString, Description: "Start date (YYYY-MM-DD)"},
					{Name: "endDate", Kind: tools.KindString, Description: "End date (YYYY-MM-DD)"},
				},
				Required: []string{"modelId"},
			},
			Handler: c.getAnalytics,
		},
	}
}

func (c *Connector) listModels(ctx context.Context, args tools.Args) (any, error) {
	var resp struct {
		Results []model `json:"results"`
	}
	if c.cfg.Mock {
		resp.Results = []model{mockModel("mock-model-1")}
	} else {
		q := url.Values{"limit": {args.Text("limit")}, "offset": {args.Text("offset")}}
		if s := args.String("search"); s != "" {
			q.Set("search", s)
		}
		if err := c.get(ctx, "models", q, &resp); err != nil {
			return nil, err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d models:\n", len(resp.Results))
	for _, m := range resp.Results {
		fmt.Fprintf(&b, "\nID: %s\nName: %s\nStatus: %s\nCreated: %s\nViews: %d\nSize: %s MB\nURL: %s\n",
			m.ID, m.title(), m.Status, m.Created, m.ViewCount, num(m.Size), showLink(m.ID))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Connector) fetchModel(ctx context.Context, id string, rest ...string) (model, error) {
	if c.cfg.Mock {
		return mockModel(id), nil
	}
	var m model
	err := c.get(ctx, modelPath(id, rest...), nil, &m)
	return m, err
}

func (c *Connector) getModel(ctx context.Context, args tools.Args) (any, error) {
	m, err := c.fetchModel(ctx, args.String("modelId"))
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("Model Details:\n\nID: %s\nName: %s\nDescription: %s\nStatus: %s\nCreated: %s\nModified: %s\nViews: %d\nSize: %s MB\nDuration: %s minutes\nPublic: %s\nURL: %s",
		m.ID, m.title(), m.description(), m.Status, m.Created, orNA(m.Modified), m.ViewCount, num(m.Size), num(m.ScanDuration), yesNo(m.IsPublic), showLink(m.ID)), nil
}

func (c *Connector) getModelDetails(ctx context.Context, args tools.Args) (any, error) {
	m, err := c.fetchModel(ctx, args.String("modelId"), "details")
	if err != nil {
		return nil, err
	}
	res := tools.Text("Comprehensive Model Details:\n\nID: %s\nName: %s\nDescription: %s\nStatus: %s\nCreated: %s\nModified: %s",
		m.ID, m.title(), m.description(), m.Status, m.Created, orNA(m.Modified))
	if len(m.Location) > 0 {
		res.Text += fmt.Sprintf("\n\nLocation:\nAddress: %s\nCity: %s\nCountry: %s",
			orNA(m.Location["address"]), orNA(m.Location["city"]), orNA(m.Location["country"]))
	}
	if len(m.Tags) > 0 {
		res.Text += "\n\nTags: " + strings.Join(m.Tags, ", ")
	}
	if len(m.Metadata) > 0 {
		res.Data = m.Metadata
	}
	return res, nil
}

type asset struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	URL    string `json:"url"`
}

func (c *Connector) listAssets(ctx context.Context, args tools.Args) (any, error) {
	id, kind := args.String("modelId"), args.String("assetType")
	var resp struct {
		Results []asset `json:"results"`
	}
	if c.cfg.Mock {
		resp.Results = []asset{{ID: "a-1", Type: "photo", Name: "Living room", Width: 4096, Height: 2048, URL: "https://example.com/a-1.jpg"}}
	} else {
		var q url.Values
		if kind != "all" {
			q = url.Values{"type": {kind}}
		}
		if err := c.get(ctx, modelPath(id, "assets"), q, &resp); err != nil {
			return nil, err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d assets for model %s:\n", len(resp.Results), id)
	for _, a := range resp.Results {
		name := a.Name
		if name == "" {
			name = "Untitled"
		}
		fmt.Fprintf(&b, "\nType: %s\nID: %s\nName: %s\nSize: %dx%d\nURL: %s\n", a.Type, a.ID, name, a.Width, a.Height, a.URL)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// getEmbedCode is computed locally; it needs neither network nor credentials.
func (c *Connector) getEmbedCode(_ context.Context, args tools.Args) (any, error) {
	id := args.String("modelId")
	width, height, autoplay := args.Int("width"), args.Int("height"), args.Bool("autoplay")
	link := showLink(id)
	if autoplay {
		link += "&play=1"
	}
	iframe := fmt.Sprintf(`<iframe width="%d" height="%d" src="%s" frameborder="0" allowfullscreen allow="xr-spatial-tracking"></iframe>`,
		width, height, strings.ReplaceAll(link, "&", "&amp;"))
	state := "Disabled"
	if autoplay {
		state = "Enabled"
	}
	return fmt.Sprintf("Embed Code for Model %s:\n\nHTML:\n%s\n\nDirect Link:\n%s\n\nDimensions: %dx%dpx\nAutoplay: %s",
		id, iframe, link, width, height, state), nil
}

func (c *Connector) getSharingLink(ctx context.Context, args tools.Args) (any, error) {
	id := args.String("modelId")
	var s struct {
		PublicURL         string `json:"public_url"`
		PrivateURL        string `json:"private_url"`
		PasswordProtected bool   `json:"password_protected"`
		SharingEnabled    bool   `json:"sharing_enabled"`
	}
	if c.cfg.Mock {
		s.SharingEnabled = true
	} else if err := c.get(ctx, modelPath(id, "sharing"), nil, &s); err != nil {
		return nil, err
	}
	if s.PublicURL == "" {
		s.PublicURL = showLink(id)
	}
	return fmt.Sprintf("Sharing Information for Model %s:\n\nPublic URL: %s\nPrivate URL: %s\nPassword Protected: %s\nSharing Enabled: %s",
		id, s.PublicURL, orNA(s.PrivateURL), yesNo(s.PasswordProtected), yesNo(s.SharingEnabled)), nil
}

func (c *Connector) updateModel(ctx context.Context, args tools.Args) (any, error) {
	patch := map[string]any{}
	if v := args.String("name"); v != "" {
		patch["name"] = v
	}
	if v := args.String("description"); v != "" {
		patch["description"] = v
	}
	if args.Has("tags") {
		patch["tags"] = args.Strings("tags")
	}
	if len(patch) == 0 {
		return nil, types.ErrInvalidArguments(&types.ValidationError{
			Field:  "name",
			Reason: "or description or tags must be provided",
		})
	}

	id := args.String("modelId")
	var m model
	if c.cfg.Mock {
		m = mockModel(id)
		m.Name, m.Description, m.Tags = args.String("name"), args.String("description"), args.Strings("tags")
	} else {
		if err := c.ready(); err != nil {
			return nil, err
		}
		if err := c.api.Patch(ctx, modelPath(id), nil, patch, &m); err != nil {
			return nil, err
		}
	}
	tags := "No tags"
	if len(m.Tags) > 0 {
		tags = strings.Join(m.Tags, ", ")
	}
	return fmt.Sprintf("Model updated successfully:\n\nID: %s\nName: %s\nDescription: %s\nTags: %s\nModified: %s",
		m.ID, m.title(), m.description(), tags, orNA(m.Modified)), nil
}

func (c *Connector) getAnalytics(ctx context.Context, args tools.Args) (any, error) {
	id, start, end := args.String("modelId"), args.String("startDate"), args.String("endDate")
	var a struct {
		TotalViews         int      `json:"total_views"`
		UniqueVisitors     int      `json:"unique_visitors"`
		AvgSessionDuration float64  `json:"avg_session_duration"`
		TotalTimeViewed    float64  `json:"total_time_viewed"`
		BounceRate         float64  `json:"bounce_rate"`
		TopReferrers       []string `json:"top_referrers"`
	}
	if c.cfg.Mock {
		a.TotalViews, a.UniqueVisitors = 128, 77
	} else {
		q := url.Values{}
		if start != "" {
			q.Set("start_date", start)
		}
		if end != "" {
			q.Set("end_date", end)
		}
		if err := c.get(ctx, modelPath(id, "analytics"), q, &a); err != nil {
			return nil, err
		}
	}
	if start == "" {
		start = "All time"
	}
	if end == "" {
		end = "Present"
	}
	referrers := "N/A"
	if len(a.TopReferrers) > 0 {
		referrers = strings.Join(a.TopReferrers, ", ")
	}
	return fmt.Sprintf("Analytics for Model %s:\n\nPeriod: %s to %s\n\nTotal Views: %d\nUnique Visitors: %d\nAverage Session Duration: %s minutes\nTotal Time Viewed: %s hours\nBounce Rate: %s%%\nTop Referrers: %s",
		id, start, end, a.TotalViews, a.UniqueVisitors, num(a.AvgSessionDuration), num(a.TotalTimeViewed), num(a.BounceRate), referrers), nil
}

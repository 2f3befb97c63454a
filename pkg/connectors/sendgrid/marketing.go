package sendgrid

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
)

type template struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Generation string `json:"generation"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	Versions   []any  `json:"versions"`
}

func (c *Connector) listTemplates(ctx context.Context, args tools.Args) (any, error) {
	gen := args.String("generations")
	var resp struct {
		Result    []template `json:"result"`
		Templates []template `json:"templates"`
	}
	if c.cfg.Mock {
		resp.Result = []template{{ID: "d-mock1", Name: "Welcome", Generation: gen, UpdatedAt: "2026-01-01 00:00:00"}}
	} else {
		if err := c.ready(); err != nil {
			return nil, err
		}
		q := url.Values{"generations": {gen}, "page_size": {args.Text("pageSize")}}
		if err := c.api.Get(ctx, "templates", q, &resp); err != nil {
			return nil, err
		}
	}
	list := resp.Result
	if len(list) == 0 {
		list = resp.Templates
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d %s templates:\n", len(list), gen)
	for _, t := range list {
		fmt.Fprintf(&b, "\nID: %s\nName: %s\nGeneration: %s\nUpdated: %s\n", t.ID, t.Name, t.Generation, t.UpdatedAt)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Connector) getTemplate(ctx context.Context, args tools.Args) (any, error) {
	var t template
	if c.cfg.Mock {
		t = template{ID: args.String("templateId"), Name: "Mock template", Generation: "dynamic"}
	} else {
		if err := c.ready(); err != nil {
			return nil, err
		}
		if err := c.api.Get(ctx, "templates/"+url.PathEscape(args.String("templateId")), nil, &t); err != nil {
			return nil, err
		}
	}
	return fmt.Sprintf("Template Details:\n\nID: %s\nName: %s\nGeneration: %s\nCreated: %s\nUpdated: %s\nVersions: %d",
		t.ID, t.Name, t.Generation, t.CreatedAt, t.UpdatedAt, len(t.Versions)), nil
}

func (c *Connector) createTemplate(ctx context.Context, args tools.Args) (any, error) {
	req := map[string]any{"name": args.String("name"), "generation": args.String("generation")}
	var t template
	if c.cfg.Mock {
		t = template{ID: "d-mock-new", Name: args.String("name"), Generation: args.String("generation")}
	} else {
		if err := c.ready(); err != nil {
			return nil, err
		}
		if err := c.api.Post(ctx, "templates", req, &t); err != nil {
			return nil, err
		}
	}
	return fmt.Sprintf("Template created successfully:\n\nID: %s\nName: %s\nGeneration: %s\nCreated: %s",
		t.ID, t.Name, t.Generation, t.CreatedAt), nil
}

func (c *Connector) addContact(ctx context.Context, args tools.Args) (any, error) {
	contact := map[string]any{"email": args.String("email")}
	if v := args.String("firstName"); v != "" {
		contact["first_name"] = v
	}
	if v := args.String("lastName"); v != "" {
		contact["last_name"] = v
	}
	if v := args.Object("customFields"); len(v) > 0 {
		contact["custom_fields"] = v
	}
	req := map[string]any{"contacts": []any{contact}}
	if ids := args.Strings("listIds"); len(ids) > 0 {
		req["list_ids"] = ids
	}

	var resp struct {
		JobID string `json:"job_id"`
	}
	if c.cfg.Mock {
		resp.JobID = "mock-job-1"
	} else {
		if err := c.ready(); err != nil {
			return nil, err
		}
		if err := c.api.Put(ctx, "marketing/contacts", req, &resp); err != nil {
			return nil, err
		}
	}
	return fmt.Sprintf("Contact added successfully:\n\nEmail: %s\nJob ID: %s", args.String("email"), resp.JobID), nil
}

type contact struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (c *Connector) listContacts(ctx context.Context, args tools.Args) (any, error) {
	var resp struct {
		Result   []contact `json:"result"`
		Metadata struct {
			Next string `json:"next"`
		} `json:"_metadata"`
	}
	if c.cfg.Mock {
		resp.Result = []contact{{ID: "ct-1", Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"}}
	} else {
		if err := c.ready(); err != nil {
			return nil, err
		}
		q := url.Values{"page_size": {args.Text("pageSize")}}
		if tok := args.String("pageToken"); tok != "" {
			q.Set("page_token", tok)
		}
		if err := c.api.Get(ctx, "marketing/contacts", q, &resp); err != nil {
			return nil, err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d contacts:\n", len(resp.Result))
	for _, ct := range resp.Result {
		name := strings.TrimSpace(ct.FirstName + " " + ct.LastName)
		fmt.Fprintf(&b, "\nID: %s\nEmail: %s\nName: %s\nCreated: %s\nUpdated: %s\n", ct.ID, ct.Email, name, ct.CreatedAt, ct.UpdatedAt)
	}
	if resp.Metadata.Next != "" {
		fmt.Fprintf(&b, "\nNext Page Token: %s", pageToken(resp.Metadata.Next))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// pageToken extracts page_token from the next-page URL SendGrid returns.
func pageToken(next string) string {
	u, err := url.Parse(next)
	if err != nil {
		return next
	}
	if tok := u.Query().Get("page_token"); tok != "" {
		return tok
	}
	return next
}

type list struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactCount int    `json:"contact_count"`
}

func (c *Connector) listMarketingLists(ctx context.Context, args tools.Args) (any, error) {
	var resp struct {
		Result []list `json:"result"`
	}
	if c.cfg.Mock {
		resp.Result = []list{{ID: "l-1", Name: "Customers", ContactCount: 42}}
	} else {
		if err := c.ready(); err != nil {
			return nil, err
		}
		if err := c.api.Get(ctx, "marketing/lists", url.Values{"page_size": {args.Text("pageSize")}}, &resp); err != nil {
			return nil, err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d marketing lists:\n", len(resp.Result))
	for _, l := range resp.Result {
		fmt.Fprintf(&b, "\nID: %s\nName: %s\nContact Count: %d\n", l.ID, l.Name, l.ContactCount)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Connector) createMarketingList(ctx context.Context, args tools.Args) (any, error) {
	var l list
	if c.cfg.Mock {
		l = list{ID: "l-mock", Name: args.String("name")}
	} else {
		if err := c.ready(); err != nil {
			return nil, err
		}
		if err := c.api.Post(ctx, "marketing/lists", map[string]any{"name": args.String("name")}, &l); err != nil {
			return nil, err
		}
	}
	return fmt.Sprintf("Marketing list created successfully:\n\nID: %s\nName: %s\nContact Count: %d", l.ID, l.Name, l.ContactCount), nil
}

type dayStats struct {
	Date  string `json:"date"`
	Stats []struct {
		Metrics map[string]float64 `json:"metrics"`
	} `json:"stats"`
}

var statMetrics = []struct{ key, label string }{
	{"delivered", "Delivered"},
	{"opens", "Opens"},
	{"clicks", "Clicks"},
	{"bounces", "Bounces"},
	{"spam_reports", "Spam Reports"},
	{"unsubscribes", "Unsubscribes"},
}

func (c *Connector) getEmailStats(ctx context.Context, args tools.Args) (any, error) {
	start, end := args.String("startDate"), args.String("endDate")
	var days []dayStats
	if c.cfg.Mock {
		days = []dayStats{{Date: start}}
	} else {
		if err := c.ready(); err != nil {
			return nil, err
		}
		q := url.Values{"start_date": {start}, "end_date": {end}}
		if agg := args.String("aggregatedBy"); agg != "" {
			q.Set("aggregated_by", agg)
		}
		if err := c.api.Get(ctx, "stats", q, &days); err != nil {
			return nil, err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Email Statistics (%s to %s):\n", start, end)
	for _, d := range days {
		totals := make(map[string]float64)
		for _, s := range d.Stats {
			for k, v := range s.Metrics {
				totals[k] += v
			}
		}
		fmt.Fprintf(&b, "\nDate: %s\n", d.Date)
		for _, m := range statMetrics {
			fmt.Fprintf(&b, "  %s: %s\n", m.label, strconv.FormatFloat(totals[m.key], 'f', -1, 64))
		}
	}
	if len(days) == 0 {
		b.WriteString("\nNo statistics for this period.")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

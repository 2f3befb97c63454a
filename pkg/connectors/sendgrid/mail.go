package sendgrid

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/provider"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type personalization struct {
	To                  []address      `json:"to"`
	DynamicTemplateData map[string]any `json:"dynamic_template_data,omitempty"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type message struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	ReplyTo          *address          `json:"reply_to,omitempty"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content,omitempty"`
	TemplateID       string            `json:"template_id,omitempty"`
}

// sender resolves the from address; an explicit argument beats the
// configured default.
func (c *Connector) sender(args tools.Args) (address, error) {
	from := address{Email: args.String("from"), Name: args.String("fromName")}
	if from.Email == "" {
		from.Email = c.cfg.FromEmail
	}
	if from.Name == "" {
		from.Name = c.cfg.FromName
	}
	if from.Email == "" && c.cfg.Mock {
		from.Email = "noreply@example.com"
	}
	if from.Email == "" {
		return address{}, types.ErrNotConfigured("SendGrid sender", "SENDGRID_FROM_EMAIL (or the from argument)")
	}
	return from, nil
}

// body builds the content parts. markdown renders text to HTML when no
// explicit html is given.
func body(args tools.Args, res *tools.Result) ([]content, error) {
	text, html := args.String("text"), args.String("html")
	if args.Bool("markdown") {
		if html != "" {
			res.Warn("markdown ignored because html was provided")
		} else {
			rendered, err := provider.Markdown(text)
			if err != nil {
				return nil, err
			}
			html = rendered
		}
	}
	parts := []content{{Type: "text/plain", Value: text}}
	if html != "" {
		parts = append(parts, content{Type: "text/html", Value: html})
	}
	return parts, nil
}

func (c *Connector) send(ctx context.Context, msg message) (status int, id string, err error) {
	if err := c.ready(); err != nil {
		return 0, "", err
	}
	hdr := make(http.Header)
	err = c.api.Do(ctx, provider.Request{Method: http.MethodPost, Path: "mail/send", JSON: msg, ResponseHeader: hdr}, nil)
	if err != nil {
		return 0, "", err
	}
	return http.StatusAccepted, hdr.Get("X-Message-Id"), nil
}

func (c *Connector) sendEmail(ctx context.Context, args tools.Args) (any, error) {
	from, err := c.sender(args)
	if err != nil {
		return nil, err
	}
	res := &tools.Result{}
	parts, err := body(args, res)
	if err != nil {
		return nil, err
	}
	to := args.String("to")
	msg := message{
		Personalizations: []personalization{{
			To:                  []address{{Email: to}},
			DynamicTemplateData: args.Object("dynamicTemplateData"),
		}},
		From:       from,
		Subject:    args.String("subject"),
		Content:    parts,
		TemplateID: args.String("templateId"),
	}
	if r := args.String("replyTo"); r != "" {
		msg.ReplyTo = &address{Email: r}
	}

	status, id := http.StatusAccepted, "mock-message-id"
	if !c.cfg.Mock {
		if status, id, err = c.send(ctx, msg); err != nil {
			return nil, err
		}
	}
	res.Text = fmt.Sprintf("Email sent successfully:\n\nMessage ID: %s\nTo: %s\nSubject: %s\nStatus: %d", orNA(id), to, msg.Subject, status)
	return res, nil
}

func (c *Connector) sendBulkEmail(ctx context.Context, args tools.Args) (any, error) {
	from, err := c.sender(args)
	if err != nil {
		return nil, err
	}
	res := &tools.Result{}
	parts, err := body(args, res)
	if err != nil {
		return nil, err
	}
	recipients := args.Objects("recipients")
	if len(recipients) == 0 {
		return nil, types.ErrInvalidArguments(&types.ValidationError{Field: "recipients", Reason: "must contain at least one recipient"})
	}
	// One personalization per recipient keeps addresses hidden from each other.
	msg := message{
		From:       from,
		Subject:    args.String("subject"),
		Content:    parts,
		TemplateID: args.String("templateId"),
	}
	for _, r := range recipients {
		email, _ := r["email"].(string)
		name, _ := r["name"].(string)
		msg.Personalizations = append(msg.Personalizations, personalization{To: []address{{Email: email, Name: name}}})
	}

	status, id := http.StatusAccepted, "mock-message-id"
	if !c.cfg.Mock {
		if status, id, err = c.send(ctx, msg); err != nil {
			return nil, err
		}
	}
	res.Text = fmt.Sprintf("Bulk email sent successfully:\n\nRecipients: %d\nSubject: %s\nStatus: %d\nMessage ID: %s", len(recipients), msg.Subject, status, orNA(id))
	return res, nil
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "n/a"
	}
	return s
}

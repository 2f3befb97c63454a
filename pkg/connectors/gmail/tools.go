package gmail

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/provider"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
	"golang.org/x/sync/errgroup"
)

func (c *Connector) Tools() []tools.Tool {
	messageID := tools.Field{Name: "messageId", Kind: tools.KindString, Description: "Gmail message ID"}
	labelIDs := tools.Field{Name: "labelIds", Kind: tools.KindArray, Description: "Label IDs", Items: &tools.Field{Kind: tools.KindString}}
	compose := []tools.Field{
		{Name: "to", Kind: tools.KindString, Description: "Recipient email address"},
		{Name: "subject", Kind: tools.KindString, Description: "Email subject"},
		{Name: "body", Kind: tools.KindString, Description: "Email body"},
		{Name: "cc", Kind: tools.KindString, Description: "CC recipients"},
		{Name: "bcc", Kind: tools.KindString, Description: "BCC recipients"},
		{Name: "isHtml", Kind: tools.KindBoolean, Description: "Send the body as HTML", Default: false},
	}
	send := append(append([]tools.Field{}, compose...),
		tools.Field{Name: "markdown", Kind: tools.KindBoolean, Description: "Render the body from Markdown to HTML", Default: false})

	return []tools.Tool{
		{
			Descriptor: tools.Descriptor{
				Name:        "gmail_list_messages",
				Description: "List Gmail messages matching a search query",
				Fields: []tools.Field{
					{Name: "query", Kind: tools.KindString, Description: `Gmail search query (e.g. "from:example@gmail.com")`},
					{Name: "maxResults", Kind: tools.KindNumber, Description: "Maximum number of messages", Default: 10},
					labelIDs,
				},
			},
			Handler: c.listMessages,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "gmail_read_message",
				Description: "Read a Gmail message",
				Fields: []tools.Field{
					messageID,
					{Name: "format", Kind: tools.KindString, Description: "Response detail", Enum: []any{"full", "metadata", "minimal"}, Default: "full"},
				},
				Required: []string{"messageId"},
			},
			Handler: c.readMessage,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "gmail_send_message",
				Description: "Send an email",
				Fields:      send,
				Required:    []string{"to", "subject", "body"},
			},
			Handler: c.sendMessage,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "gmail_reply_message",
				Description: "Reply to a message in its thread",
				Fields: []tools.Field{
					messageID,
					{Name: "body", Kind: tools.KindString, Description: "Reply body"},
					{Name: "replyAll", Kind: tools.KindBoolean, Description: "Reply to all recipients", Default: false},
					{Name: "isHtml", Kind: tools.KindBoolean, Description: "Send the body as HTML", Default: false},
				},
				Required: []string{"messageId", "body"},
			},
			Handler: c.replyMessage,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "gmail_add_label",
				Description: "Add labels to a message",
				Fields:      []tools.Field{messageID, labelIDs},
				Required:    []string{"messageId", "labelIds"},
			},
			Handler: c.modifyLabels(true),
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "gmail_remove_label",
				Description: "Remove labels from a message",
				Fields:      []tools.Field{messageID, labelIDs},
				Required:    []string{"messageId", "labelIds"},
			},
			Handler: c.modifyLabels(false),
		},
		{
			Descriptor: tools.Descriptor{Name: "gmail_list_labels", Description: "List mailbox labels"},
			Handler:    c.listLabels,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "gmail_create_draft",
				Description: "Create a draft email",
				Fields:      compose,
				Required:    []string{"to", "subject", "body"},
			},
			Handler: c.createDraft,
		},
	}
}

func (c *Connector) getMessage(ctx context.Context, id, format string, headers ...string) (message, error) {
	var m message
	if c.cfg.Mock {
		return mockMessage(id), nil
	}
	if err := c.ready(); err != nil {
		return m, err
	}
	q := url.Values{"format": {format}}
	for _, h := range headers {
		q.Add("metadataHeaders", h)
	}
	err := c.api.Get(ctx, "messages/"+url.PathEscape(id), q, &m)
	return m, err
}

func (c *Connector) listMessages(ctx context.Context, args tools.Args) (any, error) {
	var list struct {
		Messages []message `json:"messages"`
	}
	if c.cfg.Mock {
		list.Messages = []message{{ID: "mock-1"}, {ID: "mock-2"}}
	} else {
		if err := c.ready(); err != nil {
			return nil, err
		}
		q := url.Values{"maxResults": {args.Text("maxResults")}}
		if s := args.String("query"); s != "" {
			q.Set("q", s)
		}
		for _, l := range args.Strings("labelIds") {
			q.Add("labelIds", l)
		}
		if err := c.api.Get(ctx, "messages", q, &list); err != nil {
			return nil, err
		}
	}

	n := min(len(list.Messages), detailLimit)
	details := make([]message, n)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			m, err := c.getMessage(gctx, list.Messages[i].ID, "metadata", "From", "Subject", "Date")
			details[i] = m
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &tools.Result{}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d messages:\n", len(list.Messages))
	for _, m := range details {
		fmt.Fprintf(&b, "\nID: %s\nFrom: %s\nSubject: %s\nDate: %s\nSnippet: %s\n",
			m.ID, or(m.header("From"), "Unknown"), or(m.header("Subject"), "No Subject"), or(m.header("Date"), "Unknown"), m.Snippet)
	}
	res.Text = strings.TrimRight(b.String(), "\n")
	if rest := len(list.Messages) - n; rest > 0 {
		res.Warn("details shown for the first %d messages only; %d more not expanded (use gmail_read_message)", n, rest)
	}
	return res, nil
}

func (c *Connector) readMessage(ctx context.Context, args tools.Args) (any, error) {
	id, format := args.String("messageId"), args.String("format")
	m, err := c.getMessage(ctx, id, format)
	if err != nil {
		return nil, err
	}
	bodyText := "Body not included"
	if format == "full" {
		if t := m.text(); t != "" {
			bodyText = "Body:\n" + t
		}
	}
	return fmt.Sprintf("Message Details:\n\nID: %s\nFrom: %s\nTo: %s\nSubject: %s\nDate: %s\nSnippet: %s\n\n%s",
		id, or(m.header("From"), "Unknown"), or(m.header("To"), "Unknown"), or(m.header("Subject"), "No Subject"),
		or(m.header("Date"), "Unknown"), m.Snippet, bodyText), nil
}

func (c *Connector) send(ctx context.Context, d draft, threadID string) (string, error) {
	if c.cfg.Mock {
		return "mock-sent-1", nil
	}
	if err := c.ready(); err != nil {
		return "", err
	}
	req := map[string]any{"raw": d.raw()}
	if threadID != "" {
		req["threadId"] = threadID
	}
	var resp message
	if err := c.api.Post(ctx, "messages/send", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func composed(args tools.Args) (draft, error) {
	d := draft{
		To:      args.String("to"),
		Cc:      args.String("cc"),
		Bcc:     args.String("bcc"),
		Subject: args.String("subject"),
		Body:    args.String("body"),
		HTML:    args.Bool("isHtml"),
	}
	if args.Bool("markdown") {
		html, err := provider.Markdown(d.Body)
		if err != nil {
			return d, err
		}
		d.Body, d.HTML = html, true
	}
	return d, nil
}

func (c *Connector) sendMessage(ctx context.Context, args tools.Args) (any, error) {
	d, err := composed(args)
	if err != nil {
		return nil, err
	}
	id, err := c.send(ctx, d, "")
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("Email sent successfully:\n\nMessage ID: %s\nTo: %s\nSubject: %s", id, d.To, d.Subject), nil
}

func (c *Connector) replyMessage(ctx context.Context, args tools.Args) (any, error) {
	orig, err := c.getMessage(ctx, args.String("messageId"), "metadata", "From", "To", "Cc", "Subject", "Message-ID")
	if err != nil {
		return nil, err
	}
	from := orig.header("From")
	d := draft{
		To:        from,
		Subject:   orig.header("Subject"),
		Body:      args.String("body"),
		HTML:      args.Bool("isHtml"),
		InReplyTo: orig.header("Message-ID"),
	}
	replyAll := args.Bool("replyAll")
	if replyAll {
		if to := orig.header("To"); to != "" {
			d.To = from + ", " + to
		}
		d.Cc = orig.header("Cc")
	}
	if !strings.HasPrefix(strings.ToLower(d.Subject), "re:") {
		d.Subject = "Re: " + d.Subject
	}

	id, err := c.send(ctx, d, orig.ThreadID)
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("Reply sent successfully:\n\nMessage ID: %s\nReplying to: %s\nSubject: %s\nReply All: %t",
		id, or(from, "Unknown"), d.Subject, replyAll), nil
}

func (c *Connector) modifyLabels(add bool) tools.Handler {
	return func(ctx context.Context, args tools.Args) (any, error) {
		id, labels := args.String("messageId"), args.Strings("labelIds")
		if !c.cfg.Mock {
			if err := c.ready(); err != nil {
				return nil, err
			}
			key := "removeLabelIds"
			if add {
				key = "addLabelIds"
			}
			if err := c.api.Post(ctx, "messages/"+url.PathEscape(id)+"/modify", map[string]any{key: labels}, nil); err != nil {
				return nil, err
			}
		}
		verb, noun := "removed", "Labels removed"
		if add {
			verb, noun = "added", "Labels added"
		}
		return fmt.Sprintf("Labels %s successfully:\n\nMessage ID: %s\n%s: %s", verb, id, noun, strings.Join(labels, ", ")), nil
	}
}

func (c *Connector) listLabels(ctx context.Context, _ tools.Args) (any, error) {
	var resp struct {
		Labels []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"labels"`
	}
	if c.cfg.Mock {
		resp.Labels = append(resp.Labels, struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			Type string `json:"type"`
		}{"INBOX", "INBOX", "system"})
	} else {
		if err := c.ready(); err != nil {
			return nil, err
		}
		if err := c.api.Get(ctx, "labels", nil, &resp); err != nil {
			return nil, err
		}
	}

	var b strings.Builder
	b.WriteString("Available labels:\n")
	for _, l := range resp.Labels {
		fmt.Fprintf(&b, "\nID: %s\nName: %s\nType: %s\n", l.ID, l.Name, l.Type)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Connector) createDraft(ctx context.Context, args tools.Args) (any, error) {
	d, err := composed(args)
	if err != nil {
		return nil, err
	}
	var resp struct {
		ID string `json:"id"`
	}
	if c.cfg.Mock {
		resp.ID = "mock-draft-1"
	} else {
		if err := c.ready(); err != nil {
			return nil, err
		}
		if err := c.api.Post(ctx, "drafts", map[string]any{"message": map[string]any{"raw": d.raw()}}, &resp); err != nil {
			return nil, err
		}
	}
	return fmt.Sprintf("Draft created successfully:\n\nDraft ID: %s\nTo: %s\nSubject: %s", resp.ID, d.To, d.Subject), nil
}

func mockMessage(id string) message {
	return message{
		ID:       id,
		ThreadID: "thread-" + id,
		Snippet:  "This is a mock message",
		Payload: &part{
			MimeType: "text/plain",
			Headers: []header{
				{Name: "From", Value: "sender@example.com"},
				{Name: "To", Value: "me@example.com"},
				{Name: "Subject", Value: "Mock subject"},
				{Name: "Date", Value: "Mon, 5 Jan 2026 09:00:00 +0000"},
				{Name: "Message-ID", Value: "<" + id + "@mail.example.com>"},
			},
			Body: body{Data: "TW9jayBib2R5"},
		},
	}
}

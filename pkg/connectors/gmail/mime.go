package gmail

import (
	"encoding/base64"
	"mime"
	"strings"
)

// draft is an outgoing RFC 2822 message.
type draft struct {
	To, Cc, Bcc string
	Subject     string
	Body        string
	HTML        bool
	InReplyTo   string
}

func headerValue(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// raw renders the message in the base64url form the send and draft
// endpoints take.
func (d draft) raw() string {
	var b strings.Builder
	add := func(k, v string) {
		if v = strings.TrimSpace(headerValue(v)); v != "" {
			b.WriteString(k + ": " + v + "\r\n")
		}
	}
	add("To", d.To)
	add("Cc", d.Cc)
	add("Bcc", d.Bcc)
	add("Subject", mime.QEncoding.Encode("utf-8", headerValue(d.Subject)))
	add("In-Reply-To", d.InReplyTo)
	add("References", d.InReplyTo)
	b.WriteString("MIME-Version: 1.0\r\n")
	ct := "text/plain"
	if d.HTML {
		ct = "text/html"
	}
	b.WriteString("Content-Type: " + ct + "; charset=utf-8\r\n\r\n")
	b.WriteString(d.Body)
	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}

type header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type body struct {
	Data string `json:"data"`
	Size int    `json:"size"`
}

type part struct {
	MimeType string   `json:"mimeType"`
	Headers  []header `json:"headers"`
	Body     body     `json:"body"`
	Parts    []part   `json:"parts"`
}

type message struct {
	ID       string   `json:"id"`
	ThreadID string   `json:"threadId"`
	LabelIDs []string `json:"labelIds"`
	Snippet  string   `json:"snippet"`
	Payload  *part    `json:"payload"`
}

// header returns the first header with the given name, case-insensitively.
func (m message) header(name string) string {
	if m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// text extracts the message body, preferring text/plain over text/html.
func (m message) text() string {
	if m.Payload == nil {
		return ""
	}
	if s := findPart(*m.Payload, "text/plain"); s != "" {
		return s
	}
	return findPart(*m.Payload, "text/html")
}

func findPart(p part, mimeType string) string {
	if strings.HasPrefix(p.MimeType, mimeType) && p.Body.Data != "" {
		return decode(p.Body.Data)
	}
	if len(p.Parts) == 0 && p.Body.Data != "" && mimeType == "text/plain" && !strings.HasPrefix(p.MimeType, "text/html") {
		return decode(p.Body.Data)
	}
	for _, sub := range p.Parts {
		if s := findPart(sub, mimeType); s != "" {
			return s
		}
	}
	return ""
}

func decode(data string) string {
	data = strings.TrimRight(data, "=")
	b, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return ""
	}
	return string(b)
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

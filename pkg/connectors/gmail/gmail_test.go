package gmail

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/connectortest"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/oauth"
)

func newTestConnector(t *testing.T, api http.HandlerFunc) *Connector {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("refresh_token") != "refresh-abc123" {
			t.Errorf("token form = %v", r.PostForm)
		}
		connectortest.WriteJSON(w, 200, map[string]any{"access_token": "ya29.access", "expires_in": 3600})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer ya29.access" {
			t.Errorf("Authorization = %q", got)
		}
		api(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(Config{
		OAuth: oauth.RefreshConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RefreshToken: "refresh-abc123",
			TokenURL:     srv.URL + "/token",
		},
		URL: srv.URL,
	}, connectortest.Options())
}

func metadata(id, from, subject string) map[string]any {
	return map[string]any{
		"id":       id,
		"threadId": "t-" + id,
		"snippet":  "snippet " + id,
		"payload": map[string]any{"headers": []any{
			map[string]any{"name": "From", "value": from},
			map[string]any{"name": "Subject", "value": subject},
			map[string]any{"name": "Date", "value": "Tue, 6 Jan 2026 10:00:00 +0000"},
			map[string]any{"name": "Message-ID", "value": "<" + id + "@mail.example.com>"},
		}},
	}
}

func decodeRaw(t *testing.T, raw string) string {
	t.Helper()
	b, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	return string(b)
}

func TestListMessages_ExpandsFirstFive(t *testing.T) {
	var details atomic.Int32
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/messages":
			if q := r.URL.Query(); q.Get("q") != "from:boss" || q.Get("maxResults") != "10" {
				t.Errorf("list query = %s", r.URL.RawQuery)
			}
			var ids []any
			for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
				ids = append(ids, map[string]any{"id": id})
			}
			connectortest.WriteJSON(w, 200, map[string]any{"messages": ids})
		case strings.HasPrefix(r.URL.Path, "/messages/"):
			details.Add(1)
			if r.URL.Query().Get("format") != "metadata" {
				t.Errorf("detail format = %q", r.URL.Query().Get("format"))
			}
			id := strings.TrimPrefix(r.URL.Path, "/messages/")
			connectortest.WriteJSON(w, 200, metadata(id, "boss@example.com", "Subject "+id))
		default:
			http.NotFound(w, r)
		}
	})

	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "gmail_list_messages", map[string]any{"query": "from:boss"}))
	if got := details.Load(); got != 5 {
		t.Errorf("detail fetches = %d, want 5", got)
	}
	for _, want := range []string{"Found 7 messages:", "ID: a", "Subject: Subject e", "From: boss@example.com", "Warning: details shown for the first 5 messages only; 2 more"} {
		if !strings.Contains(text, want) {
			t.Errorf("text %q missing %q", text, want)
		}
	}
	if strings.Contains(text, "ID: f") {
		t.Errorf("message f should not be expanded: %q", text)
	}
}

func TestReadMessage_DecodesBody(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		m := metadata("m1", "a@example.com", "Hello")
		m["payload"].(map[string]any)["mimeType"] = "multipart/alternative"
		m["payload"].(map[string]any)["parts"] = []any{
			map[string]any{"mimeType": "text/html", "body": map[string]any{"data": base64.RawURLEncoding.EncodeToString([]byte("<p>hi</p>"))}},
			map[string]any{"mimeType": "text/plain", "body": map[string]any{"data": base64.RawURLEncoding.EncodeToString([]byte("plain hi"))}},
		}
		connectortest.WriteJSON(w, 200, m)
	})
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "gmail_read_message", map[string]any{"messageId": "m1"}))
	for _, want := range []string{"Message Details:", "Subject: Hello", "Body:\nplain hi"} {
		if !strings.Contains(text, want) {
			t.Errorf("text %q missing %q", text, want)
		}
	}
}

func TestReadMessage_RejectsUnknownFormat(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	})
	env := connectortest.Call(t, c, "gmail_read_message", map[string]any{"messageId": "m1", "format": "raw"})
	connectortest.MustFail(t, env, "format must be one of full, metadata, minimal")
}

func TestSendMessage_Markdown(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages/send" || r.Method != http.MethodPost {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		raw, _ := connectortest.DecodeJSON(t, r)["raw"].(string)
		msg := decodeRaw(t, raw)
		for _, want := range []string{"To: client@example.com\r\n", "Content-Type: text/html; charset=utf-8", "<strong>ready</strong>"} {
			if !strings.Contains(msg, want) {
				t.Errorf("raw message %q missing %q", msg, want)
			}
		}
		connectortest.WriteJSON(w, 200, map[string]any{"id": "sent-1"})
	})
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "gmail_send_message", map[string]any{
		"to": "client@example.com", "subject": "Quote", "body": "Your quote is **ready**", "markdown": true,
	}))
	if !strings.Contains(text, "Email sent successfully:") || !strings.Contains(text, "Message ID: sent-1") {
		t.Errorf("text = %q", text)
	}
}

func TestReplyMessage_ThreadsAndPrefixes(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/messages/orig":
			m := metadata("orig", "alice@example.com", "Site visit")
			hs := m["payload"].(map[string]any)["headers"].([]any)
			m["payload"].(map[string]any)["headers"] = append(hs,
				map[string]any{"name": "To", "value": "me@example.com"},
				map[string]any{"name": "Cc", "value": "bob@example.com"})
			connectortest.WriteJSON(w, 200, m)
		case "/messages/send":
			body := connectortest.DecodeJSON(t, r)
			if body["threadId"] != "t-orig" {
				t.Errorf("threadId = %v", body["threadId"])
			}
			raw, _ := body["raw"].(string)
			msg := decodeRaw(t, raw)
			for _, want := range []string{
				"To: alice@example.com, me@example.com\r\n",
				"Cc: bob@example.com\r\n",
				"Subject: Re: Site visit\r\n",
				"In-Reply-To: <orig@mail.example.com>\r\n",
			} {
				if !strings.Contains(msg, want) {
					t.Errorf("raw message %q missing %q", msg, want)
				}
			}
			connectortest.WriteJSON(w, 200, map[string]any{"id": "reply-1"})
		default:
			http.NotFound(w, r)
		}
	})
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "gmail_reply_message", map[string]any{
		"messageId": "orig", "body": "Thursday works", "replyAll": true,
	}))
	if !strings.Contains(text, "Reply sent successfully:") || !strings.Contains(text, "Subject: Re: Site visit") {
		t.Errorf("text = %q", text)
	}
}

func TestModifyLabels(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		body := connectortest.DecodeJSON(t, r)
		if r.URL.Path != "/messages/m1/modify" || body["removeLabelIds"] == nil {
			t.Errorf("request = %s %v", r.URL.Path, body)
		}
		connectortest.WriteJSON(w, 200, map[string]any{"id": "m1"})
	})
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "gmail_remove_label", map[string]any{
		"messageId": "m1", "labelIds": []any{"UNREAD", "INBOX"},
	}))
	if !strings.Contains(text, "Labels removed: UNREAD, INBOX") {
		t.Errorf("text = %q", text)
	}
}

func TestUpstreamErrorIsReported(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		connectortest.WriteJSON(w, 403, map[string]any{"error": map[string]any{"code": 403, "message": "Insufficient Permission"}})
	})
	env := connectortest.Call(t, c, "gmail_list_labels", nil)
	connectortest.MustFail(t, env, "Gmail API error: 403 - Insufficient Permission")
}

func TestNotConfigured(t *testing.T) {
	c := New(Config{}, connectortest.Options())
	env := connectortest.Call(t, c, "gmail_list_labels", nil)
	connectortest.MustFail(t, env, "Gmail is not configured: missing GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, GOOGLE_REFRESH_TOKEN")
}

func TestMockMode(t *testing.T) {
	c := New(Config{Mock: true}, connectortest.Options())
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "gmail_read_message", map[string]any{"messageId": "x"}))
	if !strings.Contains(text, "Body:\nMock body") {
		t.Errorf("text = %q", text)
	}
}

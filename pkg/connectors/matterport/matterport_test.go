package matterport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/connectortest"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

func newTestConnector(t *testing.T, h http.HandlerFunc) *Connector {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{AccessToken: "mp-token-123", URL: srv.URL}, connectortest.Options())
}

func TestListModels(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/models" || q.Get("limit") != "10" || q.Get("offset") != "0" || q.Get("search") != "loft" {
			t.Errorf("request = %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		connectortest.WriteJSON(w, 200, map[string]any{"results": []any{
			map[string]any{"id": "SxQL3iGyoDo", "name": "Loft", "status": "active", "view_count": 5, "size": 120.5},
		}})
	})
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "matterport_list_models", map[string]any{"search": "loft"}))
	for _, want := range []string{"Found 1 models:", "Name: Loft", "Views: 5", "Size: 120.5 MB", "URL: https://my.matterport.com/show/?m=SxQL3iGyoDo"} {
		if !strings.Contains(text, want) {
			t.Errorf("text %q missing %q", text, want)
		}
	}
}

func TestGetModel_NotFound(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	})
	env := connectortest.Call(t, c, "matterport_get_model", map[string]any{"modelId": "missing"})
	connectortest.MustFail(t, env, "Matterport API error: 404")
}

func TestListAssets_TypeFilter(t *testing.T) {
	var (
		mu       sync.Mutex
		gotQuery []string
	)
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotQuery = append(gotQuery, r.URL.Query().Get("type"))
		mu.Unlock()
		connectortest.WriteJSON(w, 200, map[string]any{"results": []any{}})
	})
	connectortest.MustSucceed(t, connectortest.Call(t, c, "matterport_list_assets", map[string]any{"modelId": "m1"}))
	connectortest.MustSucceed(t, connectortest.Call(t, c, "matterport_list_assets", map[string]any{"modelId": "m1", "assetType": "photo"}))
	mu.Lock()
	defer mu.Unlock()
	if len(gotQuery) != 2 || gotQuery[0] != "" || gotQuery[1] != "photo" {
		t.Errorf("type params = %q", gotQuery)
	}
}

func TestGetEmbedCode_IsLocal(t *testing.T) {
	c := New(Config{}, connectortest.Options())
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "matterport_get_embed_code", map[string]any{"modelId": "abc", "autoplay": true}))
	for _, want := range []string{
		`<iframe width="853" height="480" src="https://my.matterport.com/show/?m=abc&amp;play=1"`,
		"Direct Link:\nhttps://my.matterport.com/show/?m=abc&play=1",
		"Dimensions: 853x480px",
		"Autoplay: Enabled",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("text %q missing %q", text, want)
		}
	}
}

func TestUpdateModel_RequiresAField(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider must not be called")
	})
	d := connectortest.Dispatcher(t, c)
	env := d.Dispatch(t.Context(), types.Invocation{Name: "matterport_update_model", Arguments: map[string]any{"modelId": "m1"}})
	connectortest.MustFail(t, env, "invalid arguments")
}

func TestUpdateModel_Patch(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/models/m1" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		body := connectortest.DecodeJSON(t, r)
		if _, ok := body["description"]; ok {
			t.Errorf("unset description sent: %v", body)
		}
		connectortest.WriteJSON(w, 200, map[string]any{"id": "m1", "name": "Renamed", "tags": []string{"a", "b"}})
	})
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "matterport_update_model", map[string]any{
		"modelId": "m1", "name": "Renamed", "tags": []any{"a", "b"},
	}))
	if !strings.Contains(text, "Name: Renamed") || !strings.Contains(text, "Tags: a, b") {
		t.Errorf("text = %q", text)
	}
}

func TestGetAnalytics_DefaultPeriod(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("query = %q, want none", r.URL.RawQuery)
		}
		connectortest.WriteJSON(w, 200, map[string]any{"total_views": 40, "top_referrers": []string{"google.com"}})
	})
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "matterport_get_analytics", map[string]any{"modelId": "m1"}))
	for _, want := range []string{"Period: All time to Present", "Total Views: 40", "Top Referrers: google.com", "Bounce Rate: N/A%"} {
		if !strings.Contains(text, want) {
			t.Errorf("text %q missing %q", text, want)
		}
	}
}

func TestNotConfigured(t *testing.T) {
	c := New(Config{}, connectortest.Options())
	connectortest.MustFail(t, connectortest.Call(t, c, "matterport_get_sharing_link", map[string]any{"modelId": "m1"}), "MATTERPORT_ACCESS_TOKEN")
}

package firebase

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/connectortest"
)

const docsPrefix = "/v1/projects/demo-project/databases/(default)/documents"

func serviceAccountKey(t *testing.T, tokenURL string) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	raw, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"project_id":     "demo-project",
		"private_key_id": "kid-123456",
		"private_key":    string(pemKey),
		"client_email":   "bot@demo-project.iam.gserviceaccount.com",
		"token_uri":      tokenURL,
	})
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}

func newTestConnector(t *testing.T, api http.HandlerFunc) *Connector {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("assertion") == "" {
			t.Errorf("token form = %v", r.PostForm)
		}
		connectortest.WriteJSON(w, 200, map[string]any{"access_token": "ya29.sa", "expires_in": 3600})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer ya29.sa" {
			t.Errorf("Authorization = %q", got)
		}
		api(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(Config{
		ServiceAccountKey: serviceAccountKey(t, srv.URL+"/token"),
		FirestoreURL:      srv.URL,
		AuthURL:           srv.URL,
	}, connectortest.Options())
}

func TestFirestoreRead(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != docsPrefix+"/jobs/j1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		connectortest.WriteJSON(w, 200, map[string]any{
			"name":   "projects/demo-project/databases/(default)/documents/jobs/j1",
			"fields": map[string]any{"title": map[string]any{"stringValue": "Roof"}, "crew": map[string]any{"integerValue": "4"}},
		})
	})
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "firestore_read", map[string]any{"collection": "jobs", "documentId": "j1"}))
	for _, want := range []string{"Document retrieved successfully:", "Document ID: j1", `"crew": 4`, `"title": "Roof"`} {
		if !strings.Contains(text, want) {
			t.Errorf("text %q missing %q", text, want)
		}
	}
}

func TestFirestoreRead_Missing(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		connectortest.WriteJSON(w, 404, map[string]any{"error": map[string]any{"code": 404, "message": "Document not found", "status": "NOT_FOUND"}})
	})
	env := connectortest.Call(t, c, "firestore_read", map[string]any{"collection": "jobs", "documentId": "nope"})
	connectortest.MustFail(t, env, "Document nope not found in collection jobs")
}

func TestFirestoreWrite_AutoID(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != docsPrefix+"/leads" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		body := connectortest.DecodeJSON(t, r)
		fields, _ := body["fields"].(map[string]any)
		if v, _ := fields["score"].(map[string]any); v["integerValue"] != "7" {
			t.Errorf("fields = %v", fields)
		}
		connectortest.WriteJSON(w, 200, map[string]any{"name": "projects/demo-project/databases/(default)/documents/leads/AbC123"})
	})
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "firestore_write", map[string]any{
		"collection": "leads", "data": map[string]any{"score": 7},
	}))
	if !strings.Contains(text, "Document ID: AbC123") {
		t.Errorf("text = %q", text)
	}
}

func TestFirestoreWrite_WithIDPatches(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != docsPrefix+"/leads/l1" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		connectortest.WriteJSON(w, 200, map[string]any{"name": "projects/demo-project/databases/(default)/documents/leads/l1"})
	})
	connectortest.MustSucceed(t, connectortest.Call(t, c, "firestore_write", map[string]any{
		"collection": "leads", "documentId": "l1", "data": map[string]any{"stage": "won"},
	}))
}

func TestFirestoreQuery_Filter(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != docsPrefix+":runQuery" {
			t.Errorf("path = %s", r.URL.Path)
		}
		body := connectortest.DecodeJSON(t, r)
		sq, _ := body["structuredQuery"].(map[string]any)
		where, _ := sq["where"].(map[string]any)
		ff, _ := where["fieldFilter"].(map[string]any)
		if ff["op"] != "IN" || sq["limit"] != float64(10) {
			t.Errorf("structuredQuery = %v", sq)
		}
		connectortest.WriteJSON(w, 200, []any{
			map[string]any{"document": map[string]any{
				"name":   "projects/demo-project/databases/(default)/documents/jobs/j9",
				"fields": map[string]any{"status": map[string]any{"stringValue": "open"}},
			}},
			map[string]any{"readTime": "2026-01-05T09:00:00Z"},
		})
	})
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "firestore_query", map[string]any{
		"collection": "jobs", "field": "status", "operator": "in", "value": "open, pending",
	}))
	for _, want := range []string{"Filter: status in open, pending", "Results found: 1", `"id": "j9"`} {
		if !strings.Contains(text, want) {
			t.Errorf("text %q missing %q", text, want)
		}
	}
}

func TestFirestoreQuery_PartialFilterWarns(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		sq, _ := connectortest.DecodeJSON(t, r)["structuredQuery"].(map[string]any)
		if _, ok := sq["where"]; ok {
			t.Errorf("partial filter was sent: %v", sq)
		}
		connectortest.WriteJSON(w, 200, []any{})
	})
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "firestore_query", map[string]any{"collection": "jobs", "field": "status"}))
	if !strings.Contains(text, "Filter: No filter") || !strings.Contains(text, "Warning: filter ignored") {
		t.Errorf("text = %q", text)
	}
}

func TestAuthGetUser_ByUID(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/projects/demo-project/accounts:lookup" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ids, _ := connectortest.DecodeJSON(t, r)["localId"].([]any); len(ids) != 1 || ids[0] != "u1" {
			t.Errorf("localId = %v", ids)
		}
		connectortest.WriteJSON(w, 200, map[string]any{"users": []any{map[string]any{
			"localId": "u1", "email": "pm@example.com", "emailVerified": true, "createdAt": "1767603600000",
		}}})
	})
	text := connectortest.MustSucceed(t, connectortest.Call(t, c, "auth_get_user", map[string]any{"identifier": "u1", "type": "uid"}))
	for _, want := range []string{"User found:", "UID: u1", "Display Name: Not set", "Email Verified: true", "Last Sign In: Never"} {
		if !strings.Contains(text, want) {
			t.Errorf("text %q missing %q", text, want)
		}
	}
}

func TestAuthGetUser_NoMatch(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		connectortest.WriteJSON(w, 200, map[string]any{"kind": "identitytoolkit#GetAccountInfoResponse"})
	})
	env := connectortest.Call(t, c, "auth_get_user", map[string]any{"identifier": "ghost@example.com"})
	connectortest.MustFail(t, env, "No user found for ghost@example.com")
}

func TestAuthCreateUser_EmailExists(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		connectortest.WriteJSON(w, 400, map[string]any{"error": map[string]any{"code": 400, "message": "EMAIL_EXISTS"}})
	})
	env := connectortest.Call(t, c, "auth_create_user", map[string]any{"email": "a@example.com", "password": "hunter22"})
	connectortest.MustFail(t, env, "Firebase Auth API error: 400 - EMAIL_EXISTS")
}

func TestNotConfigured(t *testing.T) {
	c := New(Config{}, connectortest.Options())
	connectortest.MustFail(t, connectortest.Call(t, c, "firestore_delete", map[string]any{"collection": "a", "documentId": "b"}),
		"Firebase is not configured: missing FIREBASE_SERVICE_ACCOUNT_KEY")

	bad := New(Config{ServiceAccountKey: `{"project_id":"p"}`}, connectortest.Options())
	connectortest.MustFail(t, connectortest.Call(t, bad, "firestore_delete", map[string]any{"collection": "a", "documentId": "b"}),
		"is not a usable service-account key")
}

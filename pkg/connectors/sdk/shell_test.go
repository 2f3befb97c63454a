package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/audit"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/config"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

const fakeSecret = "sk-live-0123456789"

type fakeAdapter struct {
	tools   []tools.Tool
	secrets []string
}

func (f fakeAdapter) Tools() []tools.Tool { return f.tools }
func (f fakeAdapter) Secrets() []string   { return f.secrets }

func echoTool() tools.Tool {
	return tools.Tool{
		Descriptor: tools.Descriptor{
			Name:        "echo",
			Description: "Echo a message",
			Fields:      []tools.Field{{Name: "msg", Kind: tools.KindString}},
			Required:    []string{"msg"},
		},
		Handler: func(_ context.Context, args tools.Args) (any, error) {
			return args.String("msg"), nil
		},
	}
}

func leakyTool() tools.Tool {
	return tools.Tool{
		Descriptor: tools.Descriptor{Name: "leaky", Description: "Fails with a credential in the message"},
		Handler: func(context.Context, tools.Args) (any, error) {
			return nil, types.ErrUpstream("Demo", 401, "Demo API error: 401 - bad key "+fakeSecret, nil)
		},
	}
}

func factoryOf(list ...tools.Tool) connectors.Factory {
	return func(context.Context, connectors.Env) (connectors.Adapter, error) {
		return fakeAdapter{tools: list, secrets: []string{fakeSecret}}, nil
	}
}

func testSettings(transport string) *config.Settings {
	s := config.DefaultSettings()
	s.Transport = transport
	s.Addr = "127.0.0.1:0"
	s.HTTP.RateLimit = 0
	s.CallTimeout = 2 * time.Second
	return &s
}

func TestRun_StdioSession(t *testing.T) {
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","clientInfo":{"name":"test"}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"echo","arguments":{"msg":"hello"}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"leaky"}}`,
	}, "\n") + "\n"
	var out, logs bytes.Buffer

	err := Run(context.Background(), Options{
		Name:     "demo",
		Version:  "0.1.0",
		Factory:  factoryOf(echoTool(), leakyTool()),
		Settings: testSettings(config.TransportStdio),
		Stdin:    strings.NewReader(in),
		Stdout:   &out,
		Stderr:   &logs,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	stdout := out.String()
	if !strings.Contains(stdout, `"text":"hello"`) {
		t.Errorf("echo response missing:\n%s", stdout)
	}
	if strings.Contains(stdout, fakeSecret) {
		t.Errorf("secret leaked into response:\n%s", stdout)
	}
	if !strings.Contains(stdout, tools.MaskedSecretValue) {
		t.Errorf("expected masked secret in response:\n%s", stdout)
	}
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		if !json.Valid([]byte(line)) {
			t.Errorf("stdout carries a non-protocol line: %q", line)
		}
	}
	if !strings.Contains(logs.String(), "adapter ready") {
		t.Errorf("startup log should go to stderr, got:\n%s", logs.String())
	}
}

func TestNew_MalformedToolListFails(t *testing.T) {
	_, err := New(context.Background(), Options{
		Name:     "demo",
		Factory:  factoryOf(echoTool(), echoTool()),
		Settings: testSettings(config.TransportStdio),
		Stderr:   io.Discard,
	})
	var dup *tools.DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
}

func TestNew_FactoryError(t *testing.T) {
	_, err := New(context.Background(), Options{
		Name: "demo",
		Factory: func(context.Context, connectors.Env) (connectors.Adapter, error) {
			return nil, errors.New("bad service account json")
		},
		Settings: testSettings(config.TransportStdio),
		Stderr:   io.Discard,
	})
	if err == nil || !strings.Contains(err.Error(), "bad service account json") {
		t.Fatalf("expected factory error, got %v", err)
	}
}

func TestNew_BadFilterPattern(t *testing.T) {
	s := testSettings(config.TransportStdio)
	s.Tools.Allow = []string{"echo[", "x"}
	_, err := New(context.Background(), Options{Name: "demo", Factory: factoryOf(echoTool()), Settings: s, Stderr: io.Discard})
	if err == nil {
		t.Fatal("expected invalid pattern error")
	}
}

func TestNew_FilterHidesTools(t *testing.T) {
	s := testSettings(config.TransportStdio)
	s.Tools.Deny = []string{"leak{y,ed}"}
	var logs bytes.Buffer
	sh, err := New(context.Background(), Options{Name: "demo", Factory: factoryOf(echoTool(), leakyTool()), Settings: s, Stderr: &logs})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer sh.Close()
	if got := sh.Tools(); len(got) != 1 || got[0].Name != "echo" {
		t.Errorf("tools = %v", got)
	}
	if !strings.Contains(logs.String(), `"msg":"tools hidden by filter"`) || !strings.Contains(logs.String(), `"hidden":1`) {
		t.Errorf("logs = %s", logs.String())
	}
}

func TestShell_HTTPHandler(t *testing.T) {
	s := testSettings(config.TransportHTTP)
	s.HTTP.APIKeys = "desktop:sk-test-key"
	sh, err := New(context.Background(), Options{
		Name:     "demo",
		Version:  "0.1.0",
		Factory:  factoryOf(echoTool()),
		Settings: s,
		Stdout:   io.Discard,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sh.Close()
	srv := httptest.NewServer(sh.Handler())
	defer srv.Close()

	do := func(method, path, body string, withKey bool) *http.Response {
		t.Helper()
		req, _ := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
		if withKey {
			req.Header.Set("X-API-Key", "sk-test-key")
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	if resp := do("GET", "/healthz", "", false); resp.StatusCode != http.StatusOK {
		t.Errorf("healthz = %d", resp.StatusCode)
	}
	if resp := do("GET", "/readyz", "", false); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("readyz before serving = %d, want 503", resp.StatusCode)
	}
	if resp := do("GET", "/tools", "", false); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("tools without key = %d", resp.StatusCode)
	}

	resp := do("GET", "/tools", "", true)
	var list connectors.ToolsResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if list.Adapter != "demo" || len(list.Tools) != 1 || list.Tools[0].Name != "echo" {
		t.Errorf("tools = %+v", list)
	}

	resp = do("POST", "/exec", `{"name":"echo","arguments":{"msg":"via http"}}`, true)
	var env tools.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatal(err)
	}
	if env.IsError || env.Text() != "via http" {
		t.Errorf("exec envelope = %+v", env)
	}

	resp = do("POST", "/exec", `{"name":"echo"}`, true)
	env = tools.Envelope{}
	_ = json.NewDecoder(resp.Body).Decode(&env)
	if !env.IsError || !strings.Contains(env.Text(), "msg") {
		t.Errorf("missing argument envelope = %+v", env)
	}

	if resp := do("POST", "/exec", `{not json`, true); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad body = %d", resp.StatusCode)
	}
	if resp := do("POST", "/exec", `{"name":"echo","arguments":"x"}`, true); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("non-object arguments = %d", resp.StatusCode)
	}

	resp = do("POST", "/mcp", `{"jsonrpc":"2.0","id":7,"method":"ping"}`, true)
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), `"id":7`) || !strings.Contains(string(b), `"result":{}`) {
		t.Errorf("mcp ping = %s", b)
	}
	if resp := do("POST", "/mcp", `{"jsonrpc":"2.0","method":"notifications/initialized"}`, true); resp.StatusCode != http.StatusAccepted {
		t.Errorf("mcp notification = %d", resp.StatusCode)
	}

	resp = do("GET", "/metrics", "", false)
	b, _ = io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "toolbridge_tool_invocations") {
		t.Errorf("metrics missing invocation counter:\n%s", b)
	}
}

func TestShell_HTTPLifecycle(t *testing.T) {
	sh, err := New(context.Background(), Options{
		Name:     "demo",
		Factory:  factoryOf(echoTool()),
		Settings: testSettings(config.TransportHTTP),
		Stdout:   io.Discard,
	})
	if err != nil {
		t.Fatal(err)
	}
	if sh.State() != Starting {
		t.Fatalf("state = %v, want starting", sh.State())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sh.Serve(ctx) }()

	waitFor(t, func() bool { return sh.State() == Ready })
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop after cancel")
	}
	if sh.State() != Terminated {
		t.Errorf("state = %v, want terminated", sh.State())
	}
}

func TestShell_HandlingWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	blocking := tools.Tool{
		Descriptor: tools.Descriptor{Name: "block", Description: "Blocks until released"},
		Handler: func(context.Context, tools.Args) (any, error) {
			close(started)
			<-release
			return "done", nil
		},
	}
	inR, inW := io.Pipe()
	sh, err := New(context.Background(), Options{
		Name:     "demo",
		Factory:  factoryOf(blocking),
		Settings: testSettings(config.TransportStdio),
		Stdin:    inR,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	})
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- sh.Serve(context.Background()) }()

	_, _ = io.WriteString(inW, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"block"}}`+"\n")
	<-started
	if got := sh.State(); got != Handling {
		t.Errorf("state during call = %v, want handling", got)
	}
	close(release)
	waitFor(t, func() bool { return sh.State() == Ready })

	_ = inW.Close()
	if err := <-done; err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if sh.State() != Terminated {
		t.Errorf("state = %v", sh.State())
	}
}

func TestShell_AuditTrail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	s := testSettings(config.TransportStdio)
	s.Audit.SQLitePath = path
	sh, err := New(context.Background(), Options{Name: "demo", Factory: factoryOf(echoTool()), Settings: s, Stderr: io.Discard})
	if err != nil {
		t.Fatal(err)
	}
	env := sh.Dispatch(context.Background(), types.Invocation{Name: "echo", Arguments: map[string]any{"msg": "audited"}})
	if env.IsError {
		t.Fatalf("dispatch failed: %+v", env)
	}
	sh.Close()

	store, err := audit.OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	chain, err := store.Chain(context.Background(), "demo", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(chain) != 1 || chain[0].Tool != "echo" || chain[0].Kind != "ok" {
		t.Fatalf("chain = %+v", chain)
	}
	if err := audit.VerifyChain(chain); err != nil {
		t.Error(err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestState_String(t *testing.T) {
	for s, want := range map[State]string{Starting: "starting", Handling: "handling", Terminated: "terminated"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q", s, s.String())
		}
	}
}

// Package connectortest runs adapter tools through the real dispatch path in
// tests.
package connectortest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/provider"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Options are provider options with retries and rate limiting off.
func Options() provider.Options {
	return provider.Options{Timeout: 5 * time.Second, Logger: Logger()}
}

// Dispatcher registers the adapter's tools and returns a dispatcher that
// redacts the adapter's secrets.
func Dispatcher(t testing.TB, a connectors.Adapter) *tools.Dispatcher {
	t.Helper()
	reg, err := tools.NewRegistryFrom(a.Tools())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return tools.NewDispatcher(reg, tools.Options{
		Adapter:  "test",
		Executor: tools.ExecutorConfig{Timeout: 5 * time.Second},
		Redactor: tools.NewRedactor(a.Secrets()...),
		Logger:   Logger(),
	})
}

// Call dispatches one invocation.
func Call(t testing.TB, a connectors.Adapter, name string, args map[string]any) tools.Envelope {
	t.Helper()
	return Dispatcher(t, a).Dispatch(context.Background(), types.Invocation{Name: name, Arguments: args})
}

// MustSucceed fails the test when env is an error envelope.
func MustSucceed(t testing.TB, env tools.Envelope) string {
	t.Helper()
	if env.IsError {
		t.Fatalf("unexpected error envelope: %s", env.Text())
	}
	return env.Text()
}

// MustFail fails the test unless env is an error envelope containing want.
func MustFail(t testing.TB, env tools.Envelope, want string) {
	t.Helper()
	if !env.IsError {
		t.Fatalf("expected error envelope, got %s", env.Text())
	}
	if !strings.Contains(env.Text(), want) {
		t.Fatalf("error %q does not contain %q", env.Text(), want)
	}
}

// DecodeJSON reads a JSON request body in a fake provider handler.
func DecodeJSON(t testing.TB, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Errorf("decode request body: %v", err)
	}
	return body
}

// WriteJSON answers a fake provider request.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

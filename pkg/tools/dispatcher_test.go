package tools

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

type recordingObserver struct {
	mu   sync.Mutex
	seen []Observation
}

func (r *recordingObserver) Observe(_ context.Context, obs Observation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, obs)
}

func newTestDispatcher(t *testing.T, opts Options, list ...Tool) *Dispatcher {
	t.Helper()
	reg, err := NewRegistryFrom(list)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	}
	if opts.Adapter == "" {
		opts.Adapter = "test"
	}
	return NewDispatcher(reg, opts)
}

func TestDispatch_EchoEndToEnd(t *testing.T) {
	d := newTestDispatcher(t, Options{}, echoTool())

	env := d.Dispatch(context.Background(), types.Invocation{Name: "echo", Arguments: map[string]any{"msg": "hi"}})
	if env.IsError {
		t.Fatalf("unexpected error envelope: %+v", env)
	}
	if len(env.Content) != 1 || env.Content[0].Type != "text" || env.Content[0].Text != "hi" {
		t.Errorf("unexpected content %+v", env.Content)
	}

	env = d.Dispatch(context.Background(), types.Invocation{Name: "echo", Arguments: map[string]any{}})
	if !env.IsError {
		t.Fatal("expected error envelope for missing msg")
	}
	if len(env.Content) != 1 || !strings.Contains(env.Content[0].Text, "msg") {
		t.Errorf("expected content to mention msg, got %+v", env.Content)
	}

	env = d.Dispatch(context.Background(), types.Invocation{Name: "nope", Arguments: map[string]any{}})
	if !env.IsError || !strings.Contains(env.Text(), "nope") {
		t.Errorf("expected unknown tool error mentioning nope, got %+v", env)
	}
}

func TestDispatch_InvalidArgumentsNeverInvokeHandler(t *testing.T) {
	var invoked bool
	tool := echoTool()
	tool.Handler = func(context.Context, Args) (any, error) {
		invoked = true
		return "x", nil
	}
	d := newTestDispatcher(t, Options{}, tool)

	env := d.Dispatch(context.Background(), types.Invocation{Name: "echo", Arguments: map[string]any{"msg": 42.0}})
	if !env.IsError {
		t.Fatal("expected error envelope")
	}
	if invoked {
		t.Error("handler was invoked despite invalid arguments")
	}
}

func TestDispatch_HandlerFailureDoesNotPoisonLaterCalls(t *testing.T) {
	boom := Tool{
		Descriptor: Descriptor{Name: "boom"},
		Handler: func(context.Context, Args) (any, error) {
			panic(errors.New("exploded"))
		},
	}
	d := newTestDispatcher(t, Options{}, boom, echoTool())

	env := d.Dispatch(context.Background(), types.Invocation{Name: "boom"})
	if !env.IsError || !strings.Contains(env.Text(), "exploded") {
		t.Fatalf("expected error envelope with raised message, got %+v", env)
	}

	env = d.Dispatch(context.Background(), types.Invocation{Name: "echo", Arguments: map[string]any{"msg": "still here"}})
	if env.IsError || env.Text() != "still here" {
		t.Errorf("follow-up call failed: %+v", env)
	}
}

func TestDispatch_TimeoutWithConcurrentFastCall(t *testing.T) {
	never := make(chan struct{})
	defer close(never)
	hang := Tool{
		Descriptor: Descriptor{Name: "hang"},
		Handler: func(context.Context, Args) (any, error) {
			<-never
			return nil, nil
		},
	}
	d := newTestDispatcher(t, Options{Executor: ExecutorConfig{Timeout: 50 * time.Millisecond}}, hang, echoTool())

	var wg sync.WaitGroup
	var slow, fast Envelope
	wg.Add(2)
	go func() {
		defer wg.Done()
		slow = d.Dispatch(context.Background(), types.Invocation{Name: "hang"})
	}()
	go func() {
		defer wg.Done()
		fast = d.Dispatch(context.Background(), types.Invocation{Name: "echo", Arguments: map[string]any{"msg": "fast"}})
	}()
	wg.Wait()

	if !slow.IsError || !strings.Contains(slow.Text(), "timed out") {
		t.Errorf("expected timeout envelope, got %+v", slow)
	}
	if fast.IsError || fast.Text() != "fast" {
		t.Errorf("expected fast call to succeed, got %+v", fast)
	}
}

func TestDispatch_RedactsSecretsButLogsRaw(t *testing.T) {
	var logs bytes.Buffer
	leaky := Tool{
		Descriptor: Descriptor{Name: "leaky"},
		Handler: func(context.Context, Args) (any, error) {
			return nil, types.ErrUpstream("SendGrid", 401, "SendGrid API error: 401 - bad key SG.supersecretvalue", nil)
		},
	}
	d := newTestDispatcher(t, Options{
		Redactor: NewRedactor("SG.supersecretvalue"),
		Logger:   slog.New(slog.NewJSONHandler(&logs, nil)),
	}, leaky)

	env := d.Dispatch(context.Background(), types.Invocation{Name: "leaky"})
	if !env.IsError {
		t.Fatal("expected error envelope")
	}
	if strings.Contains(env.Text(), "supersecretvalue") {
		t.Errorf("secret leaked into envelope: %q", env.Text())
	}
	if !strings.Contains(env.Text(), MaskedSecretValue) {
		t.Errorf("expected masked marker, got %q", env.Text())
	}
	if !strings.Contains(logs.String(), "upstream_error") {
		t.Errorf("expected failure to be logged, got %s", logs.String())
	}
}

func TestDispatch_FilterHidesTools(t *testing.T) {
	filter, err := NewFilter(nil, []string{"ec*"})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	other := Tool{Descriptor: Descriptor{Name: "other"}, Handler: echoHandler}
	d := newTestDispatcher(t, Options{Filter: filter}, echoTool(), other)

	list := d.Tools()
	if len(list) != 1 || list[0].Name != "other" {
		t.Errorf("expected only other to be advertised, got %+v", list)
	}
	env := d.Dispatch(context.Background(), types.Invocation{Name: "echo", Arguments: map[string]any{"msg": "x"}})
	if !env.IsError || !strings.Contains(env.Text(), "unknown tool") {
		t.Errorf("expected hidden tool to be unknown, got %+v", env)
	}
}

func TestDispatch_NotifiesObservers(t *testing.T) {
	obs := &recordingObserver{}
	d := newTestDispatcher(t, Options{Adapter: "jobber", Observers: []Observer{obs}}, echoTool())

	d.Dispatch(context.Background(), types.Invocation{Name: "echo", Arguments: map[string]any{"msg": "x"}})
	d.Dispatch(context.Background(), types.Invocation{Name: "missing"})

	if len(obs.seen) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs.seen))
	}
	if obs.seen[0].Kind != "ok" || obs.seen[0].Adapter != "jobber" || obs.seen[0].Args.String("msg") != "x" {
		t.Errorf("unexpected first observation %+v", obs.seen[0])
	}
	if obs.seen[1].Kind != string(types.KindUnknownTool) || obs.seen[1].Args != nil {
		t.Errorf("unexpected second observation %+v", obs.seen[1])
	}
	if obs.seen[0].InvocationID == obs.seen[1].InvocationID {
		t.Error("expected distinct invocation ids")
	}
}

func TestDispatch_EmptyNameIsUnknownTool(t *testing.T) {
	d := newTestDispatcher(t, Options{}, echoTool())
	env := d.Dispatch(context.Background(), types.Invocation{})
	if !env.IsError || !strings.Contains(env.Text(), "unknown tool") {
		t.Errorf("unexpected envelope %+v", env)
	}
}

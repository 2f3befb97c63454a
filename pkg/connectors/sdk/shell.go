// Package sdk is the process shell every adapter binary runs in: it loads
// configuration, builds the tool registry, wires logging, metrics, tracing and
// audit, and serves the dispatcher over stdio or HTTP until signalled.
package sdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/audit"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/auth"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/config"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/provider"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/mcp"
	ocotel "github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/otel"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

const shutdownTimeout = 10 * time.Second

// Options configure a Shell. Zero values fall back to the process
// environment and standard streams.
type Options struct {
	Name     string
	Version  string
	Factory  connectors.Factory
	Settings *config.Settings
	Secrets  *config.Secrets
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
}

// Shell hosts one adapter.
type Shell struct {
	name     string
	version  string
	settings config.Settings
	log      *slog.Logger

	lc         lifecycle
	dispatcher tracked
	mcp        *mcp.Server
	telemetry  *ocotel.Telemetry
	audit      audit.Store
	keys       *auth.KeyStore
	limiter    *auth.RateLimiter

	stdin  io.Reader
	stdout io.Writer

	closeOnce sync.Once
}

// Main runs the adapter until SIGINT/SIGTERM or end of input and exits the
// process: 0 on a clean stop, 1 when startup or the transport fails.
func Main(name, version string, factory connectors.Factory) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := Run(ctx, Options{Name: name, Version: version, Factory: factory})
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		os.Exit(1)
	}
}

// Run builds a Shell and serves it until ctx is done.
func Run(ctx context.Context, opts Options) error {
	sh, err := New(ctx, opts)
	if err != nil {
		return err
	}
	return sh.Serve(ctx)
}

// New performs startup. A malformed tool list or bad configuration fails
// here, before anything is served.
func New(ctx context.Context, opts Options) (*Shell, error) {
	if opts.Name == "" || opts.Factory == nil {
		return nil, errors.New("sdk.New: adapter name and factory are required")
	}
	settings, err := resolveSettings(opts.Settings)
	if err != nil {
		return nil, err
	}
	secrets := opts.Secrets
	if secrets == nil {
		secrets = config.NewSecrets()
	}

	s := &Shell{
		name:     opts.Name,
		version:  opts.Version,
		settings: settings,
		stdin:    orReader(opts.Stdin, os.Stdin),
		stdout:   orWriter(opts.Stdout, os.Stdout),
	}
	// stdout carries the protocol in stdio mode.
	logOut := s.stdout
	if settings.Transport == config.TransportStdio {
		logOut = orWriter(opts.Stderr, os.Stderr)
	}
	s.log = NewLogger(settings.LogLevel, logOut).With("adapter", opts.Name)
	slog.SetDefault(s.log)

	// ── OpenTelemetry ────────────────────────────────────────────────────
	s.telemetry, err = ocotel.Setup(ctx, ocotel.Config{
		ServiceName:    "adapter-" + opts.Name,
		ServiceVersion: opts.Version,
		OTLPEndpoint:   settings.OTLPEndpoint,
		MetricsEnabled: true,
		TracingEnabled: settings.OTLPEndpoint != "",
	})
	if err != nil {
		return nil, fmt.Errorf("sdk.New otel: %w", err)
	}
	metrics, err := tools.NewMetrics(s.telemetry.Meter("toolbridge/" + opts.Name))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("sdk.New metrics: %w", err)
	}

	// ── Adapter and registry ─────────────────────────────────────────────
	adapter, err := opts.Factory(ctx, connectors.Env{
		Secrets: secrets,
		Provider: provider.Options{
			RateLimit: settings.Provider.RateLimit,
			Retries:   settings.Provider.Retries,
			Timeout:   settings.Provider.Timeout,
			Logger:    s.log,
		},
		Mock:   settings.Mock,
		Logger: s.log,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("sdk.New adapter %s: %w", opts.Name, err)
	}
	reg, err := tools.NewRegistryFrom(adapter.Tools())
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("sdk.New malformed tool list: %w", err)
	}
	filter, err := tools.NewFilter(settings.Tools.Allow, settings.Tools.Deny)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("sdk.New tool filter: %w", err)
	}

	// ── Audit ────────────────────────────────────────────────────────────
	var observers []tools.Observer
	s.audit, err = audit.Open(ctx, settings.Audit.PostgresDSN, settings.Audit.SQLitePath)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("sdk.New: %w", err)
	}
	if s.audit != nil {
		observers = append(observers, audit.NewRecorder(s.audit, s.log))
	}

	d := tools.NewDispatcher(reg, tools.Options{
		Adapter: opts.Name,
		Executor: tools.ExecutorConfig{
			Timeout:       settings.CallTimeout,
			MaxConcurrent: settings.MaxConcurrent,
		},
		Filter:    filter,
		Redactor:  tools.NewRedactor(adapter.Secrets()...),
		Metrics:   metrics,
		Observers: observers,
		Logger:    s.log,
	})
	if hidden := reg.Len() - len(d.Tools()); hidden > 0 {
		s.log.Info("tools hidden by filter", "registered", reg.Len(), "hidden", hidden)
	}
	s.dispatcher = tracked{Dispatcher: d, lc: &s.lc}
	s.mcp = mcp.NewServer(s.dispatcher, mcp.ServerInfo{Name: opts.Name, Version: opts.Version}, s.log)
	s.keys = auth.NewKeyStore(settings.HTTP.APIKeys)
	s.limiter = auth.NewRateLimiter(settings.HTTP.RateLimit, settings.HTTP.Burst)
	return s, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Serving
// ──────────────────────────────────────────────────────────────────────────────

// Serve blocks until ctx is cancelled or, on stdio, input ends. Both are a
// clean stop. Serve closes the shell before returning.
func (s *Shell) Serve(ctx context.Context) error {
	defer s.Close()
	defer s.lc.set(Terminated)

	switch s.settings.Transport {
	case config.TransportHTTP:
		return s.serveHTTP(ctx)
	default:
		return s.serveStdio(ctx)
	}
}

func (s *Shell) serveStdio(ctx context.Context) error {
	s.lc.set(Ready)
	s.log.Info("adapter ready",
		"transport", config.TransportStdio,
		"version", s.version,
		"tools", len(s.dispatcher.Tools()),
		"mock", s.settings.Mock,
	)
	err := s.mcp.Serve(ctx, s.stdin, s.stdout)
	s.lc.set(ShuttingDown)
	s.log.Info("adapter stopping", "reason", stopReason(ctx, err))
	return err
}

func (s *Shell) serveHTTP(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.settings.Addr)
	if err != nil {
		return fmt.Errorf("sdk.Serve listen %s: %w", s.settings.Addr, err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.settings.CallTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.lc.set(Ready)
	s.log.Info("adapter ready",
		"transport", config.TransportHTTP,
		"addr", ln.Addr().String(),
		"version", s.version,
		"tools", len(s.dispatcher.Tools()),
		"mock", s.settings.Mock,
	)

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	s.lc.set(ShuttingDown)
	s.log.Info("adapter stopping", "reason", stopReason(ctx, serveErr))
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		s.log.Error("server shutdown error", "error", err)
	}
	if serveErr != nil {
		return fmt.Errorf("sdk.Serve http: %w", serveErr)
	}
	return nil
}

func stopReason(ctx context.Context, err error) string {
	switch {
	case err != nil:
		return err.Error()
	case ctx.Err() != nil:
		return "signal"
	default:
		return "input closed"
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Accessors
// ──────────────────────────────────────────────────────────────────────────────

func (s *Shell) State() State { return s.lc.state() }

func (s *Shell) Name() string { return s.name }

// Tools returns the advertised descriptors.
func (s *Shell) Tools() []tools.Descriptor { return s.dispatcher.Tools() }

// Dispatch runs one invocation in-process.
func (s *Shell) Dispatch(ctx context.Context, inv types.Invocation) tools.Envelope {
	return s.dispatcher.Dispatch(ctx, inv)
}

// Close flushes telemetry and closes the audit store. It is safe to call
// more than once.
func (s *Shell) Close() {
	s.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if s.telemetry != nil {
			_ = s.telemetry.Shutdown(ctx)
		}
		if s.audit != nil {
			if err := s.audit.Close(); err != nil && s.log != nil {
				s.log.Error("audit close failed", "error", err)
			}
		}
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

// NewLogger builds the JSON logger used by every adapter process.
func NewLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func resolveSettings(s *config.Settings) (config.Settings, error) {
	if s != nil {
		return *s, s.Validate()
	}
	return config.LoadSettings()
}

func orReader(r, fallback io.Reader) io.Reader {
	if r != nil {
		return r
	}
	return fallback
}

func orWriter(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}

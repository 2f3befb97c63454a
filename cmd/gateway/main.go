// Gateway aggregates remote HTTP adapters into one tool endpoint. It lists
// each adapter's tools at startup and forwards every call to the adapter that
// advertised it.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/config"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/sdk"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/sdk/client"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

const (
	version = "0.1.0"

	remoteKeyEnv = "GATEWAY_REMOTE_API_KEY"
)

func main() {
	sdk.Main("gateway", version, factory)
}

func factory(ctx context.Context, env connectors.Env) (connectors.Adapter, error) {
	remotes, err := connectors.ParseRemotes(config.EnvOr("GATEWAY_ADAPTERS", ""))
	if err != nil {
		return nil, err
	}
	if len(remotes) == 0 {
		return nil, errors.New("GATEWAY_ADAPTERS lists no adapters")
	}
	apiKey := env.Secrets.Get(remoteKeyEnv)
	timeout := config.EnvOrDuration("GATEWAY_REMOTE_TIMEOUT", 60*time.Second)
	dial := func(r connectors.Remote) remoteClient {
		c := client.New(r.BaseURL, apiKey)
		c.SetTimeout(timeout)
		return c
	}
	g, err := newGateway(ctx, remotes, dial, env.Logger)
	if err != nil {
		return nil, err
	}
	g.apiKey = apiKey
	return g, nil
}

// remoteClient is the part of client.Client the gateway uses.
type remoteClient interface {
	ListTools(ctx context.Context) (*connectors.ToolsResponse, error)
	Exec(ctx context.Context, name string, arguments map[string]any) (*tools.Envelope, error)
}

type gateway struct {
	routes  *connectors.Routes
	clients map[string]remoteClient
	tools   []tools.Tool
	apiKey  string
	log     *slog.Logger
}

// newGateway lists every remote's tools. An unreachable remote or a tool name
// advertised by two remotes fails startup.
func newGateway(ctx context.Context, remotes []connectors.Remote, dial func(connectors.Remote) remoteClient, log *slog.Logger) (*gateway, error) {
	if log == nil {
		log = slog.Default()
	}
	g := &gateway{
		routes:  connectors.NewRoutes(),
		clients: make(map[string]remoteClient, len(remotes)),
		log:     log,
	}
	for _, r := range remotes {
		c := dial(r)
		resp, err := c.ListTools(ctx)
		if err != nil {
			return nil, fmt.Errorf("gateway: list tools of %s at %s: %w", r.Adapter, r.BaseURL, err)
		}
		g.clients[r.Adapter] = c
		for _, d := range resp.Tools {
			if err := g.routes.Register(d.Name, r); err != nil {
				return nil, fmt.Errorf("gateway: adapter %s: %w", r.Adapter, err)
			}
			g.tools = append(g.tools, tools.Tool{Descriptor: d, Handler: g.forward(d.Name)})
		}
		log.Info("remote adapter registered", "remote", r.Adapter, "url", r.BaseURL, "tools", len(resp.Tools))
	}
	log.Info("gateway routes ready", "adapters", strings.Join(g.routes.Adapters(), ","), "tools", len(g.tools))
	return g, nil
}

func (g *gateway) Tools() []tools.Tool { return g.tools }

func (g *gateway) Secrets() []string {
	if g.apiKey == "" {
		return nil
	}
	return []string{g.apiKey}
}

// forward relays one validated call. A remote error envelope keeps its
// message; transport failures become upstream errors.
func (g *gateway) forward(name string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (any, error) {
		remote, ok := g.routes.Route(name)
		if !ok {
			return nil, types.ErrUnknownTool(name)
		}
		env, err := g.clients[remote.Adapter].Exec(ctx, name, map[string]any(args))
		if err != nil {
			status := 0
			var apiErr *types.APIError
			if errors.As(err, &apiErr) {
				status = apiErr.HTTPCode
			}
			return nil, types.ErrUpstream(remote.Adapter, status,
				fmt.Sprintf("adapter %s unavailable: %v", remote.Adapter, err), err)
		}
		if env.IsError {
			return nil, &types.ToolError{
				Kind:    types.KindUpstream,
				Message: strings.TrimPrefix(env.Text(), "Error: "),
			}
		}
		out := make([]string, len(env.Content))
		for i, b := range env.Content {
			out[i] = b.Text
		}
		return out, nil
	}
}

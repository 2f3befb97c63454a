// Package connectors defines the contract between provider adapters and the
// process shell that serves them.
package connectors

import (
	"context"
	"log/slog"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/config"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/provider"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

// Adapter exposes one provider as a static tool table.
type Adapter interface {
	Tools() []tools.Tool
	// Secrets returns credential values that must never appear in an
	// envelope.
	Secrets() []string
}

// Env is what a Factory may read at startup. It is immutable afterwards.
type Env struct {
	Secrets  *config.Secrets
	Provider provider.Options
	Mock     bool
	Logger   *slog.Logger
}

// Factory builds an adapter. Missing credentials are not an error here; the
// adapter reports them as not_configured on the first call.
type Factory func(ctx context.Context, env Env) (Adapter, error)

// Info describes a built-in adapter.
type Info struct {
	Name        string
	Description string
	Factory     Factory
}

// ExecRequest is the body of POST /exec.
type ExecRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

func (r ExecRequest) Invocation() types.Invocation {
	return types.Invocation{Name: r.Name, Arguments: r.Arguments}
}

// ToolsResponse is the body of GET /tools.
type ToolsResponse struct {
	Adapter string             `json:"adapter"`
	Version string             `json:"version,omitempty"`
	Tools   []tools.Descriptor `json:"tools"`
}

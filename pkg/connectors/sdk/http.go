package sdk

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/auth"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = types.MaxArgumentsBytes + 64<<10

// Handler is the HTTP transport: health, readiness, metrics, tool listing,
// direct execution and single-message MCP.
func (s *Shell) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(auth.APIKeyAuth(s.keys))
	r.Use(s.limiter.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		switch s.State() {
		case Ready, Handling:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		default:
			types.ErrNotReady().WriteJSON(w)
		}
	})
	r.Method(http.MethodGet, "/metrics", s.telemetry.MetricsHandler())
	r.Get("/tools", s.handleTools)
	r.Post("/exec", s.handleExec)
	r.Post("/mcp", s.handleMCP)
	return r
}

func (s *Shell) handleTools(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, connectors.ToolsResponse{
		Adapter: s.name,
		Version: s.version,
		Tools:   s.Tools(),
	})
}

func (s *Shell) handleExec(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		types.ErrBadRequest("invalid body").WriteJSON(w)
		return
	}
	args, err := types.DecodeArguments(req.Arguments)
	if err != nil {
		types.ErrValidation(err).WriteJSON(w)
		return
	}
	env := s.Dispatch(r.Context(), connectors.ExecRequest{Name: req.Name, Arguments: args}.Invocation())
	s.writeJSON(w, r, http.StatusOK, env)
}

func (s *Shell) handleMCP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		types.ErrBadRequest("invalid body").WriteJSON(w)
		return
	}
	resp := s.mcp.HandleMessage(r.Context(), body)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(resp)
}

func (s *Shell) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.ErrorContext(r.Context(), "response encode failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
	}
}

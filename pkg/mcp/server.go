package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

// maxLineBytes bounds one stdio message: the argument limit plus room for
// the JSON-RPC wrapper.
const maxLineBytes = types.MaxArgumentsBytes + 64<<10

// Dispatcher is what the server exposes as tools.
type Dispatcher interface {
	Tools() []tools.Descriptor
	Dispatch(ctx context.Context, inv types.Invocation) tools.Envelope
}

// Server answers MCP requests. It is safe for concurrent use; tools/call
// requests read from stdio are served on their own goroutines.
type Server struct {
	info ServerInfo
	d    Dispatcher
	log  *slog.Logger

	// DrainTimeout bounds how long Serve waits for in-flight calls after its
	// context is cancelled.
	DrainTimeout time.Duration
}

func NewServer(d Dispatcher, info ServerInfo, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{info: info, d: d, log: log, DrainTimeout: 5 * time.Second}
}

// ──────────────────────────────────────────────────────────────────────────────
// Message handling
// ──────────────────────────────────────────────────────────────────────────────

// HandleMessage processes one encoded JSON-RPC message and returns the
// encoded response, or nil for a notification.
func (s *Server) HandleMessage(ctx context.Context, raw []byte) []byte {
	req, resp := decode(raw)
	if resp == nil {
		resp = s.handle(ctx, req)
	}
	if resp == nil {
		return nil
	}
	b, err := json.Marshal(resp)
	if err != nil {
		s.log.ErrorContext(ctx, "mcp encode response failed", "method", req.Method, "error", err)
		b, _ = json.Marshal(rpcError(resp.ID, CodeInternalError, "response encoding failed"))
	}
	return b
}

func decode(raw []byte) (*Request, *Response) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return &req, rpcError(nil, CodeParseError, "parse error: "+err.Error())
	}
	if req.JSONRPC != jsonRPCVersion || req.Method == "" {
		if req.IsNotification() {
			return &req, nil
		}
		return &req, rpcError(req.ID, CodeInvalidRequest, "invalid request")
	}
	return &req, nil
}

func (s *Server) handle(ctx context.Context, req *Request) *Response {
	if req.JSONRPC != jsonRPCVersion || req.Method == "" {
		return nil
	}
	if req.IsNotification() {
		s.log.DebugContext(ctx, "mcp notification", "method", req.Method)
		return nil
	}

	switch req.Method {
	case "initialize":
		var p InitializeParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &p); err != nil {
				return rpcError(req.ID, CodeInvalidParams, "invalid initialize params: "+err.Error())
			}
		}
		s.log.InfoContext(ctx, "mcp session initialized",
			"client", p.ClientInfo.Name,
			"client_version", p.ClientInfo.Version,
			"client_protocol", p.ProtocolVersion,
		)
		return result(req.ID, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{"listChanged": false}},
			ServerInfo:      s.info,
		})
	case "ping":
		return result(req.ID, struct{}{})
	case "tools/list":
		list := s.d.Tools()
		if list == nil {
			list = []tools.Descriptor{}
		}
		return result(req.ID, ToolsListResult{Tools: list})
	case "tools/call":
		var p CallParams
		if len(req.Params) == 0 {
			return rpcError(req.ID, CodeInvalidParams, "tools/call requires params")
		}
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return rpcError(req.ID, CodeInvalidParams, "invalid tools/call params: "+err.Error())
		}
		args, err := types.DecodeArguments(p.Arguments)
		if err != nil {
			return rpcError(req.ID, CodeInvalidParams, err.Error())
		}
		env := s.d.Dispatch(ctx, types.Invocation{Name: p.Name, Arguments: args})
		return result(req.ID, env)
	default:
		return rpcError(req.ID, CodeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Stdio loop
// ──────────────────────────────────────────────────────────────────────────────

type lineWriter struct {
	mu  sync.Mutex
	w   io.Writer
	log *slog.Logger
}

func (lw *lineWriter) write(b []byte) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if _, err := lw.w.Write(append(b, '\n')); err != nil {
		lw.log.Error("mcp write failed", "error", err)
	}
}

// Serve reads newline-delimited messages from r and writes responses to w
// until r reaches EOF or ctx is cancelled. Both are a clean stop and return
// nil after in-flight calls have been answered. In-flight calls are not
// cancelled by ctx.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
		for sc.Scan() {
			line := bytes.TrimSpace(sc.Bytes())
			if len(line) == 0 {
				continue
			}
			select {
			case lines <- append([]byte(nil), line...):
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	out := &lineWriter{w: w, log: s.log}
	callCtx := context.WithoutCancel(ctx)
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			s.drain(&wg)
			return nil
		case line, ok := <-lines:
			if !ok {
				wg.Wait()
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("mcp.Serve read: %w", err)
					}
				default:
				}
				s.log.Info("mcp input closed")
				return nil
			}
			s.dispatchLine(callCtx, line, out, &wg)
		}
	}
}

func (s *Server) dispatchLine(ctx context.Context, line []byte, out *lineWriter, wg *sync.WaitGroup) {
	req, resp := decode(line)
	if resp != nil {
		out.write(mustEncode(resp))
		return
	}
	if req.Method == "tools/call" && !req.IsNotification() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b := s.HandleMessage(ctx, line); b != nil {
				out.write(b)
			}
		}()
		return
	}
	if b := s.HandleMessage(ctx, line); b != nil {
		out.write(b)
	}
}

func (s *Server) drain(wg *sync.WaitGroup) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(s.DrainTimeout):
		s.log.Warn("mcp shutdown with calls still in flight", "drain_timeout", s.DrainTimeout)
	}
}

func mustEncode(resp *Response) []byte {
	b, err := json.Marshal(resp)
	if err != nil {
		b, _ = json.Marshal(rpcError(nil, CodeInternalError, "response encoding failed"))
	}
	return b
}

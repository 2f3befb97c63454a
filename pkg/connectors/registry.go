package connectors

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
)

// Remote is one adapter reachable over HTTP.
type Remote struct {
	Adapter string
	BaseURL string
}

// Routes maps tool names to the remote adapter that serves them.
type Routes struct {
	mu      sync.RWMutex
	routes  map[string]Remote // tool → adapter
	remotes map[string]string // adapter → base URL
}

func NewRoutes() *Routes {
	return &Routes{
		routes:  make(map[string]Remote),
		remotes: make(map[string]string),
	}
}

// ParseRemotes reads "name=url,name=url".
func ParseRemotes(raw string) ([]Remote, error) {
	var out []Remote
	seen := map[string]bool{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, url, ok := strings.Cut(pair, "=")
		name, url = strings.TrimSpace(name), strings.TrimRight(strings.TrimSpace(url), "/")
		if !ok || name == "" || url == "" {
			return nil, fmt.Errorf("connectors.ParseRemotes: malformed entry %q (want name=url)", pair)
		}
		if seen[name] {
			return nil, fmt.Errorf("connectors.ParseRemotes: adapter %q listed twice", name)
		}
		seen[name] = true
		out = append(out, Remote{Adapter: name, BaseURL: url})
	}
	return out, nil
}

// Register maps a tool to a remote adapter. A tool name already routed to
// any adapter is rejected.
func (r *Routes) Register(tool string, remote Remote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.routes[tool]; dup {
		return &tools.DuplicateNameError{Name: tool}
	}
	r.routes[tool] = remote
	r.remotes[remote.Adapter] = remote.BaseURL
	return nil
}

// Route returns the remote serving tool.
func (r *Routes) Route(tool string) (Remote, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.routes[tool]
	return rt, ok
}

// Adapters returns the registered adapter names, sorted.
func (r *Routes) Adapters() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.remotes))
	for name := range r.remotes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

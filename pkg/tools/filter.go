package tools

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter hides tools by name. Deny patterns win over allow patterns; an empty
// allow list admits everything not denied.
type Filter struct {
	allow []string
	deny  []string
}

// NewFilter validates glob patterns such as "qb_list_*" or "firestore_{read,query}".
func NewFilter(allow, deny []string) (*Filter, error) {
	f := &Filter{allow: cleanPatterns(allow), deny: cleanPatterns(deny)}
	for _, p := range append(append([]string{}, f.allow...), f.deny...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("tools.NewFilter: invalid pattern %q", p)
		}
	}
	return f, nil
}

// ParsePatterns splits a comma-separated pattern list. Commas inside braces
// belong to the pattern, so "gmail_*,firestore_{read,query}" yields two
// patterns. Blank entries are dropped.
func ParsePatterns(raw string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range raw {
		switch r {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, raw[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, raw[start:])
	return cleanPatterns(parts)
}

func cleanPatterns(in []string) []string {
	var out []string
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Allowed reports whether a tool name is exposed.
func (f *Filter) Allowed(name string) bool {
	if f == nil {
		return true
	}
	for _, p := range f.deny {
		if ok, _ := doublestar.Match(p, name); ok {
			return false
		}
	}
	if len(f.allow) == 0 {
		return true
	}
	for _, p := range f.allow {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

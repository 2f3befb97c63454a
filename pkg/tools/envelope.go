package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

const noOutput = "(no output)"

// ──────────────────────────────────────────────────────────────────────────────
// Result: optional rich payload a handler may return
// ──────────────────────────────────────────────────────────────────────────────

// Result lets a handler return more than one text block and report optional
// arguments it could not honour.
type Result struct {
	Text     string
	Blocks   []string
	Data     any
	Warnings []string
}

// Text starts a Result from formatted text.
func Text(format string, a ...any) *Result {
	if len(a) == 0 {
		return &Result{Text: format}
	}
	return &Result{Text: fmt.Sprintf(format, a...)}
}

// Warn records an argument that was accepted but not applied.
func (r *Result) Warn(format string, a ...any) *Result {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, a...))
	return r
}

// ──────────────────────────────────────────────────────────────────────────────
// Outcome
// ──────────────────────────────────────────────────────────────────────────────

// Outcome is either a success payload or a failure.
type Outcome struct {
	Payload any
	Err     *types.ToolError
}

func Success(payload any) Outcome { return Outcome{Payload: payload} }

func Failure(err error) Outcome {
	te := types.AsToolError(err)
	if te == nil {
		te = types.ErrInternal(nil)
	}
	return Outcome{Err: te}
}

func (o Outcome) OK() bool { return o.Err == nil }

// Kind returns the failure kind, or "ok".
func (o Outcome) Kind() string {
	if o.Err == nil {
		return "ok"
	}
	return string(o.Err.Kind)
}

// ──────────────────────────────────────────────────────────────────────────────
// Envelope
// ──────────────────────────────────────────────────────────────────────────────

type Block struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Envelope is the response returned for every invocation.
type Envelope struct {
	Content []Block `json:"content"`
	IsError bool    `json:"isError,omitempty"`
}

// Text joins all block texts.
func (e Envelope) Text() string {
	parts := make([]string, len(e.Content))
	for i, b := range e.Content {
		parts[i] = b.Text
	}
	return strings.Join(parts, "\n")
}

func textBlock(s string) Block { return Block{Type: "text", Text: s} }

// ErrorEnvelope is the single-block failure shape.
func ErrorEnvelope(msg string) Envelope {
	if strings.TrimSpace(msg) == "" {
		msg = "unknown error"
	}
	return Envelope{Content: []Block{textBlock("Error: " + msg)}, IsError: true}
}

// Build converts an outcome into an envelope. It never fails and never
// returns empty content.
func Build(o Outcome) Envelope {
	if o.Err != nil {
		return ErrorEnvelope(o.Err.Error())
	}

	var blocks []Block
	switch p := o.Payload.(type) {
	case nil:
	case string:
		blocks = append(blocks, textBlock(p))
	case *Result:
		blocks = appendResult(blocks, p)
	case Result:
		blocks = appendResult(blocks, &p)
	case []string:
		for _, s := range p {
			blocks = append(blocks, textBlock(s))
		}
	default:
		blocks = append(blocks, textBlock(Render(p)))
	}

	if len(blocks) == 0 || (len(blocks) == 1 && blocks[0].Text == "") {
		blocks = []Block{textBlock(noOutput)}
	}
	return Envelope{Content: blocks}
}

func appendResult(blocks []Block, r *Result) []Block {
	if r == nil {
		return blocks
	}
	if r.Text != "" {
		blocks = append(blocks, textBlock(r.Text))
	}
	for _, b := range r.Blocks {
		blocks = append(blocks, textBlock(b))
	}
	if r.Data != nil {
		blocks = append(blocks, textBlock(Render(r.Data)))
	}
	for _, w := range r.Warnings {
		blocks = append(blocks, textBlock("Warning: "+w))
	}
	return blocks
}

// Render formats a structured value as indented JSON with sorted object keys.
// Values that cannot be encoded fall back to their %v form.
func Render(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimRight(buf.String(), "\n")
}

package tools

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"

// Observation describes one finished invocation. Args is nil when the
// invocation never passed validation.
type Observation struct {
	InvocationID string
	Adapter      string
	Tool         string
	Args         Args
	Kind         string
	Duration     time.Duration
	At           time.Time
}

// Observer is notified after every invocation. Implementations must not block
// for long and must not fail the call.
type Observer interface {
	Observe(ctx context.Context, obs Observation)
}

// Options configures a Dispatcher.
type Options struct {
	Adapter   string
	Executor  ExecutorConfig
	Filter    *Filter
	Redactor  *Redactor
	Metrics   *Metrics
	Observers []Observer
	Logger    *slog.Logger
}

// Dispatcher runs the full invocation path: lookup, validation, execution,
// envelope. It is safe for concurrent use.
type Dispatcher struct {
	adapter   string
	registry  *Registry
	executor  *Executor
	filter    *Filter
	redactor  *Redactor
	metrics   *Metrics
	observers []Observer
	log       *slog.Logger
	tracer    trace.Tracer
}

func NewDispatcher(reg *Registry, opts Options) *Dispatcher {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		adapter:   opts.Adapter,
		registry:  reg,
		executor:  NewExecutor(opts.Executor),
		filter:    opts.Filter,
		redactor:  opts.Redactor,
		metrics:   opts.Metrics,
		observers: opts.Observers,
		log:       log.With("adapter", opts.Adapter),
		tracer:    otel.Tracer(tracerName),
	}
}

// Adapter returns the adapter name the dispatcher reports under.
func (d *Dispatcher) Adapter() string { return d.adapter }

// Tools returns the advertised descriptors, in registration order, minus
// anything the filter hides.
func (d *Dispatcher) Tools() []Descriptor {
	all := d.registry.List()
	out := all[:0]
	for _, desc := range all {
		if d.filter.Allowed(desc.Name) {
			out = append(out, desc)
		}
	}
	return out
}

// Dispatch handles one invocation and always returns an envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, inv types.Invocation) Envelope {
	start := time.Now()
	id := uuid.NewString()
	ctx, span := d.tracer.Start(ctx, "tools.dispatch", trace.WithAttributes(
		attribute.String("tool.name", inv.Name),
		attribute.String("invocation.id", id),
	))
	defer span.End()

	args, out := d.run(ctx, inv)

	env := Build(d.sanitize(out))
	elapsed := time.Since(start)
	d.report(ctx, id, inv.Name, args, out, elapsed)

	span.SetAttributes(attribute.String("tool.outcome", out.Kind()))
	if !out.OK() {
		span.SetStatus(codes.Error, string(out.Err.Kind))
	}
	return env
}

func (d *Dispatcher) run(ctx context.Context, inv types.Invocation) (Args, Outcome) {
	if err := inv.Validate(); err != nil {
		var ve *types.ValidationError
		if errors.As(err, &ve) && ve.Field == "name" {
			return nil, Failure(types.ErrUnknownTool(inv.Name))
		}
		return nil, Failure(err)
	}

	tool, ok := d.registry.Lookup(inv.Name)
	if !ok || !d.filter.Allowed(inv.Name) {
		return nil, Failure(types.ErrUnknownTool(inv.Name))
	}

	args, err := Validate(tool.Descriptor, inv.Arguments)
	if err != nil {
		return nil, Failure(err)
	}
	return args, d.executor.Execute(ctx, tool.Handler, args)
}

// sanitize masks secret material in the failure message shown to the caller.
// The unmasked error is logged by report.
func (d *Dispatcher) sanitize(out Outcome) Outcome {
	if out.OK() || d.redactor == nil {
		return out
	}
	masked := *out.Err
	masked.Message = d.redactor.Redact(out.Err.Error())
	return Outcome{Err: &masked}
}

func (d *Dispatcher) report(ctx context.Context, id, name string, args Args, out Outcome, elapsed time.Duration) {
	metricName := name
	if out.Err != nil && out.Err.Kind == types.KindUnknownTool {
		metricName = "unknown"
	}
	d.metrics.Record(ctx, d.adapter, metricName, out.Kind(), elapsed)

	attrs := []any{
		"tool", name,
		"invocation_id", id,
		"kind", out.Kind(),
		"duration_ms", elapsed.Milliseconds(),
	}
	switch {
	case out.OK():
		d.log.InfoContext(ctx, "tool call completed", attrs...)
	case out.Err.Kind == types.KindUnknownTool || out.Err.Kind == types.KindInvalidArguments:
		d.log.WarnContext(ctx, "tool call rejected", append(attrs, "error", out.Err.Error())...)
	default:
		attrs = append(attrs, "error", errorChain(out.Err))
		if out.Err.Status != 0 {
			attrs = append(attrs, "status", out.Err.Status)
		}
		if out.Err.Detail != "" {
			attrs = append(attrs, "detail", out.Err.Detail)
		}
		d.log.ErrorContext(ctx, "tool call failed", attrs...)
	}

	obs := Observation{
		InvocationID: id,
		Adapter:      d.adapter,
		Tool:         name,
		Args:         args,
		Kind:         out.Kind(),
		Duration:     elapsed,
		At:           time.Now().UTC(),
	}
	for _, o := range d.observers {
		o.Observe(ctx, obs)
	}
}

func errorChain(err *types.ToolError) string {
	msg := err.Error()
	if err.Cause != nil && err.Cause.Error() != msg {
		msg += ": " + err.Cause.Error()
	}
	return msg
}

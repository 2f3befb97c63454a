package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
)

const recordTimeout = 5 * time.Second

// Recorder appends one record per finished invocation. It implements
// tools.Observer; failures are logged and never reach the caller.
type Recorder struct {
	store Store
	log   *slog.Logger
}

func NewRecorder(store Store, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{store: store, log: log}
}

func (r *Recorder) Observe(ctx context.Context, obs tools.Observation) {
	digest, err := Digest(obs.Args)
	if err != nil {
		r.log.WarnContext(ctx, "audit digest failed", "invocation_id", obs.InvocationID, "error", err)
	}
	rec := &Record{
		ID:         obs.InvocationID,
		Adapter:    obs.Adapter,
		Tool:       obs.Tool,
		Kind:       obs.Kind,
		DurationMS: obs.Duration.Milliseconds(),
		ArgsDigest: digest,
		At:         obs.At,
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := r.store.Append(ctx, rec); err != nil {
		r.log.ErrorContext(ctx, "audit record failed",
			"invocation_id", obs.InvocationID,
			"tool", obs.Tool,
			"error", err,
		)
		return
	}
	r.log.DebugContext(ctx, "audit recorded", "invocation_id", rec.ID, "hash", rec.Hash)
}

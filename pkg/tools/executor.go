package tools

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
	"golang.org/x/sync/semaphore"
)

// DefaultTimeout leaves a margin under the common 60s orchestrator request
// timeout.
const DefaultTimeout = 55 * time.Second

// ExecutorConfig bounds handler execution. Zero Timeout disables the wait
// budget; zero MaxConcurrent disables the concurrency bound.
type ExecutorConfig struct {
	Timeout       time.Duration
	MaxConcurrent int64
}

// Executor runs handlers and normalizes whatever they do into an Outcome.
//
// A timeout abandons the wait only. The handler keeps running on a context
// that the timeout does not cancel, so a handler that issues several provider
// calls is never interrupted between them, and writes already made are not
// rolled back.
type Executor struct {
	timeout time.Duration
	sem     *semaphore.Weighted
}

func NewExecutor(cfg ExecutorConfig) *Executor {
	e := &Executor{timeout: cfg.Timeout}
	if cfg.MaxConcurrent > 0 {
		e.sem = semaphore.NewWeighted(cfg.MaxConcurrent)
	}
	return e
}

// Execute runs h with args and waits at most the configured timeout.
func (e *Executor) Execute(ctx context.Context, h Handler, args Args) Outcome {
	waitCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	if e.sem != nil {
		if err := e.sem.Acquire(waitCtx, 1); err != nil {
			return Failure(e.abandoned(ctx, "waiting for a free execution slot"))
		}
	}

	done := make(chan Outcome, 1)
	go func() {
		if e.sem != nil {
			defer e.sem.Release(1)
		}
		done <- run(context.WithoutCancel(ctx), h, args)
	}()

	select {
	case out := <-done:
		return out
	case <-waitCtx.Done():
		return Failure(e.abandoned(ctx, ""))
	}
}

func (e *Executor) abandoned(ctx context.Context, stage string) *types.ToolError {
	if ctx.Err() != nil {
		return &types.ToolError{Kind: types.KindInternal, Message: "invocation cancelled", Cause: ctx.Err()}
	}
	msg := fmt.Sprintf("timed out after %s", e.timeout)
	if stage != "" {
		msg = fmt.Sprintf("timed out after %s %s", e.timeout, stage)
	}
	return types.ErrTimeout(msg)
}

func run(ctx context.Context, h Handler, args Args) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: &types.ToolError{
				Kind:    types.KindInternal,
				Message: fmt.Sprint(r),
				Detail:  string(debug.Stack()),
			}}
		}
	}()
	payload, err := h(ctx, args)
	if err != nil {
		return Failure(err)
	}
	return Success(payload)
}

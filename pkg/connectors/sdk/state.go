package sdk

import (
	"context"
	"sync/atomic"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/tools"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

// State is the shell's lifecycle position.
type State int32

const (
	Starting State = iota
	Ready
	Handling
	ShuttingDown
	Terminated
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Ready:
		return "ready"
	case Handling:
		return "handling"
	case ShuttingDown:
		return "shutting_down"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// lifecycle tracks the phase and the number of invocations in flight. The
// reported state is Handling while the phase is Ready and a call is running.
type lifecycle struct {
	phase    atomic.Int32
	inflight atomic.Int64
}

func (l *lifecycle) set(s State) { l.phase.Store(int32(s)) }

func (l *lifecycle) state() State {
	s := State(l.phase.Load())
	if s == Ready && l.inflight.Load() > 0 {
		return Handling
	}
	return s
}

// tracked counts in-flight calls around a dispatcher.
type tracked struct {
	*tools.Dispatcher
	lc *lifecycle
}

func (t tracked) Dispatch(ctx context.Context, inv types.Invocation) tools.Envelope {
	t.lc.inflight.Add(1)
	defer t.lc.inflight.Add(-1)
	return t.Dispatcher.Dispatch(ctx, inv)
}

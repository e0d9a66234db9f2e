// Package pipeline receives validated hook envelopes, serializes handling
// per (projectName, instanceKey), and dispatches each event type to its
// typed handler (C5/C6).
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dguik/discode/internal/bus"
	"github.com/dguik/discode/internal/hook"
	"github.com/dguik/discode/internal/logging"
	"github.com/dguik/discode/internal/messaging"
	"github.com/dguik/discode/internal/metrics"
	"github.com/dguik/discode/internal/pending"
	"github.com/dguik/discode/internal/quiethours"
	"github.com/dguik/discode/internal/routing"
	"github.com/dguik/discode/internal/streaming"
	"github.com/dguik/discode/internal/vt"
)

// ErrUnknownType is returned by Dispatch for a type not in the closed
// dispatch set; validation itself accepts unknown types (§4.3), so this is
// a dispatch-time-only rejection.
var ErrUnknownType = fmt.Errorf("pipeline: unknown event type")

// Deps is the shared dependency bundle injected into every handler
// invocation (§9 "Break the cycle with a shared dependency bundle").
// Handlers never hold references to each other directly.
type Deps struct {
	Messaging messaging.Messaging
	Pending   *pending.Tracker
	Streaming *streaming.Updater
	Checklist *ChecklistStore
	Metrics   *metrics.Counters
	Logger    *logging.Logger

	// QuietHours gates the thinking-timer placeholder (§6 supplemented
	// feature). Nil is treated as always-active (never quiet).
	QuietHours *quiethours.Gate
	// ThinkingPlaceholderDelay is how long thinking.start waits before
	// posting a placeholder if thinking.stop hasn't arrived yet. Zero
	// disables the placeholder entirely.
	ThinkingPlaceholderDelay time.Duration

	// Bus fans VT snapshots out to chat-refresh/TUI-live-view subscribers
	// (§2, §6) when a turn goes idle. Nil disables publishing.
	Bus bus.EventBus
	// VTRegistry holds the per-key VT windows a snapshot is taken from.
	// Nil disables publishing (no windows are tracked).
	VTRegistry *vt.Registry
}

// Pipeline dispatches validated envelopes to typed handlers, serialized
// per (projectName, instanceKey).
type Pipeline struct {
	routing *routing.Table
	deps    Deps

	// keyLocks is the per-key serialization mechanism (§5): one mutex per
	// instanceKey, created lazily and kept for the process lifetime.
	keyLocks sync.Map // map[string]*sync.Mutex

	// thinkingTimers holds one pending placeholder timer per key between a
	// thinking.start and its matching thinking.stop.
	thinkingTimers sync.Map // map[string]*time.Timer

	// sessionStarted marks keys that have already posted their session.start
	// banner, so a duplicate session.start doesn't repost it (§4.5: "send a
	// start banner once"). Cleared on session.end so the next session
	// posts its own banner.
	sessionStarted sync.Map // map[string]bool
}

// New creates a Pipeline bound to a routing table and the shared deps.
func New(table *routing.Table, deps Deps) *Pipeline {
	return &Pipeline{routing: table, deps: deps}
}

// Handle validates routing, serializes on the resolved instanceKey, and
// dispatches to the typed handler. It returns a routing.Error for
// unresolved routing (caller maps this to 404), ErrUnknownType for an
// unrecognized event type, or nil on success — handler-internal failures
// are logged and swallowed per §7, except where a handler explicitly
// returns an error intended to surface as 500.
func (p *Pipeline) Handle(ctx context.Context, env *hook.Envelope) error {
	p.deps.Metrics.EventsReceived.Add(1)

	evCtx, err := p.routing.Resolve(env.ProjectName, env.AgentType, env.InstanceID)
	if err != nil {
		p.deps.Metrics.EventsRejectedRouting.Add(1)
		return err
	}

	if !hook.KnownEventTypes[env.Type] {
		p.deps.Metrics.EventsRejectedValidation.Add(1)
		return ErrUnknownType
	}

	lock := p.keyLock(evCtx.InstanceKey)
	lock.Lock()
	defer lock.Unlock()

	p.deps.Metrics.EventsAccepted.Add(1)

	log := p.deps.Logger.WithProject(evCtx.ProjectName).WithInstanceKey(evCtx.InstanceKey)

	if err := dispatch(ctx, p, evCtx, env, log); err != nil {
		p.deps.Metrics.HandlerErrors.Add(1)
		log.Error("handler failed", zap.String("type", env.Type), zap.Error(err))
		return err
	}
	return nil
}

func (p *Pipeline) keyLock(key string) *sync.Mutex {
	val, _ := p.keyLocks.LoadOrStore(key, &sync.Mutex{})
	return val.(*sync.Mutex)
}

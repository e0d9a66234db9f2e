package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dguik/discode/internal/appctx"
	"github.com/dguik/discode/internal/bus"
	"github.com/dguik/discode/internal/hook"
	"github.com/dguik/discode/internal/logging"
	"github.com/dguik/discode/internal/routing"
)

// dispatch implements the event-type table in §4.5. Each case is a typed
// handler (C6); this function is the exhaustive sum-type dispatcher §9
// recommends over a map-of-closures, since Go's switch on a string const
// set reads the same way and keeps each handler's signature visible.
func dispatch(ctx context.Context, p *Pipeline, evCtx *routing.EventContext, env *hook.Envelope, log *logging.Logger) error {
	deps := &p.deps
	key := evCtx.InstanceKey

	switch env.Type {
	case "session.start":
		deps.Pending.MarkCompleted(key)
		if _, already := p.sessionStarted.LoadOrStore(key, true); !already {
			chatWarn(log, deps, "sendToChannel", deps.Messaging.SendToChannel(ctx, evCtx.ChannelID, "agent session started"))
		}
		return nil

	case "session.end":
		p.sessionStarted.Delete(key)
		deps.Pending.MarkCompleted(key)
		deps.Checklist.Clear(key)
		deps.Streaming.Finalize(ctx, key)
		publishVTSnapshot(ctx, deps, key, log)
		return nil

	case "session.error":
		text := "⚠️ error: " + env.Text
		chatWarn(log, deps, "sendToChannel", deps.Messaging.SendToChannel(ctx, evCtx.ChannelID, text))
		deps.Pending.MarkError(key, env.Text)
		deps.Streaming.Discard(key)
		return nil

	case "session.notification":
		chatWarn(log, deps, "sendToChannel", deps.Messaging.SendToChannel(ctx, evCtx.ChannelID, env.Text))
		return nil

	case "session.idle":
		deps.Pending.MarkCompleted(key)
		deps.Streaming.Finalize(ctx, key)
		publishVTSnapshot(ctx, deps, key, log)
		return nil

	case "teammate.idle":
		deps.Streaming.Finalize(ctx, key)
		publishVTSnapshot(ctx, deps, key, log)
		return nil

	case "thinking.start":
		scheduleThinkingPlaceholder(p, evCtx, key, log)
		return handleThinking(ctx, deps, evCtx, key, "\U0001F9E0", "")

	case "thinking.stop":
		cancelThinkingPlaceholder(p, key)
		return handleThinking(ctx, deps, evCtx, key, "", "✅")

	case "tool.activity":
		return handleToolActivity(ctx, deps, evCtx, env, log)

	case "tool.failure":
		text := "❌ " + env.Text
		chatWarn(log, deps, "sendToChannel", deps.Messaging.SendToChannel(ctx, evCtx.ChannelID, text))
		deps.Checklist.DemoteInProgress(key)
		return nil

	case "permission.request":
		return handlePermissionRequest(ctx, deps, evCtx, env, log)

	case "task.completed":
		return handleTaskCompleted(ctx, deps, evCtx, env, log)

	case "prompt.submit":
		messageID := firstNonEmpty(env.Raw, "chatMessageId")
		deps.Pending.OpenTurn(key, evCtx.ChannelID, messageID)
		return nil

	default:
		return fmt.Errorf("pipeline: no handler registered for type %q", env.Type)
	}
}

// handleThinking implements the 🧠/✅ reaction lifecycle (§4.5, scenario 1).
// addEmoji is added when stopEmoji is empty; otherwise the pending 🧠
// reaction is replaced with stopEmoji.
func handleThinking(ctx context.Context, deps *Deps, evCtx *routing.EventContext, key, addEmoji, stopEmoji string) error {
	turn, ok := deps.Pending.GetPending(key)
	if !ok {
		return nil
	}
	if stopEmoji == "" {
		err := deps.Messaging.AddReactionToMessage(ctx, turn.ChannelID, turn.MessageID, addEmoji)
		chatWarn(deps.Logger, deps, "addReaction", err)
		return nil
	}
	err := deps.Messaging.ReplaceOwnReactionOnMessage(ctx, turn.ChannelID, turn.MessageID, "\U0001F9E0", stopEmoji)
	chatWarn(deps.Logger, deps, "replaceReaction", err)
	_ = evCtx
	return nil
}

// handlePermissionRequest implements §4.5 permission.request and scenario 2.
func handlePermissionRequest(ctx context.Context, deps *Deps, evCtx *routing.EventContext, env *hook.Envelope, log *logging.Logger) error {
	toolName := env.ToolName
	if toolName == "" {
		toolName = "unknown"
	}
	text := "\U0001F510 *Permission needed:* `" + toolName + "`"
	if env.ToolInput != "" {
		text += " — `" + env.ToolInput + "`"
	}
	chatWarn(log, deps, "sendToChannel", deps.Messaging.SendToChannel(ctx, evCtx.ChannelID, text))
	return nil
}

// handleTaskCompleted implements §4.5 task.completed.
func handleTaskCompleted(ctx context.Context, deps *Deps, evCtx *routing.EventContext, env *hook.Envelope, log *logging.Logger) error {
	subject := env.Subject
	if subject == "" {
		subject = env.Text
	}
	text := "✅ Task completed: " + subject
	if env.Teammate != "" {
		text = "[" + env.Teammate + "] " + text
	}
	chatWarn(log, deps, "sendToChannel", deps.Messaging.SendToChannel(ctx, evCtx.ChannelID, text))

	if taskID := firstNonEmpty(env.Raw, "taskId"); taskID != "" {
		deps.Checklist.Update(ctx, evCtx.InstanceKey, evCtx.ChannelID, taskID, "completed", "", deps.Messaging, log)
	}
	return nil
}

// publishVTSnapshot fans the current VT screen text for key out on the bus
// (§2, §6 "fans VT snapshots out to chat-refresh and TUI-live-view
// subscribers") when a turn goes idle. A nil Bus/VTRegistry or a key with
// no window yet disables this silently — PTY ingestion into the registry
// is the external orchestrator's job, so not every key has a window.
func publishVTSnapshot(ctx context.Context, deps *Deps, key string, log *logging.Logger) {
	if deps.Bus == nil || deps.VTRegistry == nil {
		return
	}
	win, ok := deps.VTRegistry.Get(key)
	if !ok {
		return
	}

	event := bus.NewEvent("vt.snapshot", "pipeline", map[string]interface{}{
		"key":      key,
		"snapshot": win.VT.TextSnapshot(),
	})
	// Published on the fixed "vt.snapshot" subject (no wildcard matching
	// involved); subscribers distinguish windows via the "key" entry of
	// event.Data.
	if err := deps.Bus.Publish(ctx, "vt.snapshot", event); err != nil {
		log.Warn("failed to publish vt snapshot", zap.String("key", key), zap.Error(err))
	}
}

// scheduleThinkingPlaceholder arms a one-shot timer that posts a "still
// thinking" placeholder message if thinking.stop hasn't arrived within
// deps.ThinkingPlaceholderDelay, gated by quiet hours (§6 supplemented
// feature). A zero delay disables the placeholder entirely.
func scheduleThinkingPlaceholder(p *Pipeline, evCtx *routing.EventContext, key string, log *logging.Logger) {
	cancelThinkingPlaceholder(p, key)

	delay := p.deps.ThinkingPlaceholderDelay
	if delay <= 0 {
		return
	}

	timer := time.AfterFunc(delay, func() {
		p.thinkingTimers.Delete(key)

		if p.deps.QuietHours != nil && !p.deps.QuietHours.Active(evCtx.ProjectName, time.Now()) {
			return
		}

		ctx, cancel := appctx.Detached(context.Background(), nil, 10*time.Second)
		defer cancel()

		err := p.deps.Messaging.SendToChannel(ctx, evCtx.ChannelID, "\U0001F914 still thinking…")
		chatWarn(log, &p.deps, "sendToChannel", err)
	})

	p.thinkingTimers.Store(key, timer)
}

// cancelThinkingPlaceholder disarms any pending placeholder timer for key
// (thinking.stop, or a fresh thinking.start replacing an unmatched one).
func cancelThinkingPlaceholder(p *Pipeline, key string) {
	if v, ok := p.thinkingTimers.LoadAndDelete(key); ok {
		v.(*time.Timer).Stop()
	}
}

func firstNonEmpty(raw map[string]interface{}, field string) string {
	if v, ok := raw[field]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// chatWarn implements §7's "chat transient" taxonomy entry: log a warning
// and swallow the failure so the pipeline continues and the event still
// acks successfully.
func chatWarn(log *logging.Logger, deps *Deps, op string, err error) {
	if err == nil {
		return
	}
	deps.Metrics.ChatCallFailures.Add(1)
	log.Warn("chat call failed", zap.String("op", op), zap.Error(err))
}

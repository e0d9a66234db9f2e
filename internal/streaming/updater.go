// Package streaming buffers incremental assistant/tool output per
// conversation turn and flushes it to chat on a debounce timer, rolling
// into continuation messages when a single chat message would exceed the
// platform's length limit (C7).
package streaming

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dguik/discode/internal/appctx"
	"github.com/dguik/discode/internal/logging"
	"github.com/dguik/discode/internal/messaging"
)

const debounceWindow = 500 * time.Millisecond

// stream is the per-key buffered state, grounded on the same
// map-of-per-key-state-plus-mutex shape the teacher's streaming Manager
// uses for its per-instance readers.
type stream struct {
	mu sync.Mutex

	channel   string
	messageID string // the message currently being edited

	buffer  string // text appended but not yet flushed
	pending string // full text already committed to the current message

	timer  *time.Timer
	closed bool
}

// Updater manages one stream per (projectName, instanceKey).
type Updater struct {
	msg    messaging.Messaging
	logger *logging.Logger

	mu      sync.Mutex
	streams map[string]*stream
}

// NewUpdater creates a streaming updater bound to a messaging capability.
func NewUpdater(msg messaging.Messaging, log *logging.Logger) *Updater {
	return &Updater{
		msg:     msg,
		logger:  log.WithFields(zap.String("component", "streaming-updater")),
		streams: make(map[string]*stream),
	}
}

// Has reports whether key currently has an active stream.
func (u *Updater) Has(key string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, ok := u.streams[key]
	return ok
}

// Start posts a placeholder message for key and seedText, opening a new
// stream. Any existing stream for key is discarded first.
func (u *Updater) Start(ctx context.Context, key, channel, seedText string) error {
	u.Discard(key)

	messageID, err := u.msg.SendToChannelWithId(ctx, channel, seedText)
	if err != nil {
		u.logger.Warn("failed to post stream placeholder", zap.String("key", key), zap.Error(err))
		return err
	}

	st := &stream{channel: channel, messageID: messageID, pending: seedText}
	u.mu.Lock()
	u.streams[key] = st
	u.mu.Unlock()
	return nil
}

// Append buffers text for key and schedules a debounced flush. It is safe
// to call even if Start was never called for key; in that case the text is
// discarded.
func (u *Updater) Append(ctx context.Context, key, text string) {
	u.mu.Lock()
	st, ok := u.streams[key]
	u.mu.Unlock()
	if !ok {
		return
	}

	st.mu.Lock()
	st.buffer += text
	if st.timer == nil {
		st.timer = time.AfterFunc(debounceWindow, func() {
			flushCtx, cancel := appctx.Detached(ctx, nil, 10*time.Second)
			defer cancel()
			u.flush(flushCtx, key)
		})
	}
	st.mu.Unlock()
}

// flush edits the current message (or rolls into a continuation message if
// the combined text would exceed the platform limit) with the buffered
// text, preserving append order.
func (u *Updater) flush(ctx context.Context, key string) {
	u.mu.Lock()
	st, ok := u.streams[key]
	u.mu.Unlock()
	if !ok {
		return
	}

	st.mu.Lock()
	if st.closed {
		st.mu.Unlock()
		return
	}
	delta := st.buffer
	st.buffer = ""
	st.timer = nil
	if delta == "" {
		st.mu.Unlock()
		return
	}

	combined := st.pending + delta
	limit := u.msg.Platform().MaxMessageLength()

	if len(combined) <= limit {
		st.pending = combined
		channel, messageID := st.channel, st.messageID
		st.mu.Unlock()

		if err := u.msg.UpdateMessage(ctx, channel, messageID, combined); err != nil {
			u.logger.Warn("failed to update streaming message", zap.String("key", key), zap.Error(err))
		}
		return
	}

	// Roll into a continuation message: the current message stays as-is,
	// a new message starts carrying `delta`.
	channel := st.channel
	st.mu.Unlock()

	newID, err := u.msg.SendToChannelWithId(ctx, channel, delta)
	if err != nil {
		u.logger.Warn("failed to roll streaming message", zap.String("key", key), zap.Error(err))
		return
	}

	st.mu.Lock()
	st.messageID = newID
	st.pending = delta
	st.mu.Unlock()
}

// Finalize flushes any buffered text synchronously and detaches the
// stream.
func (u *Updater) Finalize(ctx context.Context, key string) {
	u.flush(ctx, key)

	u.mu.Lock()
	st, ok := u.streams[key]
	if ok {
		delete(u.streams, key)
	}
	u.mu.Unlock()

	if ok {
		st.mu.Lock()
		st.closed = true
		if st.timer != nil {
			st.timer.Stop()
		}
		st.mu.Unlock()
	}
}

// Discard drops any buffered bytes for key silently and detaches the
// stream without flushing.
func (u *Updater) Discard(key string) {
	u.mu.Lock()
	st, ok := u.streams[key]
	if ok {
		delete(u.streams, key)
	}
	u.mu.Unlock()

	if ok {
		st.mu.Lock()
		st.closed = true
		if st.timer != nil {
			st.timer.Stop()
		}
		st.mu.Unlock()
	}
}

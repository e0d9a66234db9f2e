package streaming

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/dguik/discode/internal/logging"
	"github.com/dguik/discode/internal/messaging"
)

type fakeMessaging struct {
	mu       sync.Mutex
	platform messaging.Platform
	maxLen   int
	sent     []string
	updated  []string
	nextID   int
}

func newFakeMessaging(platform messaging.Platform) *fakeMessaging {
	return &fakeMessaging{platform: platform}
}

func (f *fakeMessaging) Platform() messaging.Platform { return f.platform }

func (f *fakeMessaging) SendToChannel(ctx context.Context, channel, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeMessaging) SendToChannelWithId(ctx context.Context, channel, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	f.nextID++
	return itoa(f.nextID), nil
}

func (f *fakeMessaging) UpdateMessage(ctx context.Context, channel, messageID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, text)
	return nil
}

func (f *fakeMessaging) AddReactionToMessage(ctx context.Context, channel, messageID, emoji string) error {
	return nil
}

func (f *fakeMessaging) ReplaceOwnReactionOnMessage(ctx context.Context, channel, messageID, from, to string) error {
	return nil
}

func (f *fakeMessaging) ReplyInThread(ctx context.Context, channel, messageID, text string) (string, error) {
	return "reply-1", nil
}

func (f *fakeMessaging) SendToChannelWithFiles(ctx context.Context, channel, text string, files []messaging.File) error {
	return nil
}

func itoa(n int) string {
	digits := "0123456789"
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{digits[n%10]}, b...)
		n /= 10
	}
	return string(b)
}

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	log, err := logging.NewLogger(logging.LoggingConfig{Level: "error", Format: "json", OutputPath: "stdout"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	return log
}

func TestStartPostsSeedAndAppendSchedulesFlush(t *testing.T) {
	msg := newFakeMessaging(messaging.PlatformDiscord)
	u := NewUpdater(msg, testLogger(t))

	if err := u.Start(context.Background(), "k1", "chan", "hello"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !u.Has("k1") {
		t.Fatal("expected stream to exist after Start")
	}

	u.Append(context.Background(), "k1", " world")
	u.Finalize(context.Background(), "k1")

	if len(msg.updated) == 0 || msg.updated[len(msg.updated)-1] != "hello world" {
		t.Fatalf("expected final update to combine seed+append, got %+v", msg.updated)
	}
	if u.Has("k1") {
		t.Fatal("expected stream to be detached after Finalize")
	}
}

func TestAppendRollsIntoContinuationWhenOverLimit(t *testing.T) {
	msg := newFakeMessaging(messaging.PlatformDiscord)
	u := NewUpdater(msg, testLogger(t))

	seed := strings.Repeat("a", 1900)
	if err := u.Start(context.Background(), "k1", "chan", seed); err != nil {
		t.Fatalf("Start: %v", err)
	}

	u.Append(context.Background(), "k1", strings.Repeat("b", 500))
	u.Finalize(context.Background(), "k1")

	if len(msg.sent) < 2 {
		t.Fatalf("expected a continuation message to be sent, got sent=%+v", msg.sent)
	}
}

func TestDiscardDropsBufferedTextWithoutFlushing(t *testing.T) {
	msg := newFakeMessaging(messaging.PlatformDiscord)
	u := NewUpdater(msg, testLogger(t))

	if err := u.Start(context.Background(), "k1", "chan", "seed"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	u.Append(context.Background(), "k1", " buffered")
	u.Discard("k1")

	if u.Has("k1") {
		t.Fatal("expected stream to be detached after Discard")
	}
	if len(msg.updated) != 0 {
		t.Fatalf("expected no update after Discard, got %+v", msg.updated)
	}
}

func TestAppendWithoutStartIsANoop(t *testing.T) {
	msg := newFakeMessaging(messaging.PlatformDiscord)
	u := NewUpdater(msg, testLogger(t))

	u.Append(context.Background(), "k1", "text")

	if u.Has("k1") {
		t.Fatal("expected Append without Start to not create a stream")
	}
}

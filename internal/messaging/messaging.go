// Package messaging defines the chat-platform capability (§6) that the
// event pipeline, streaming updater, and pending-turn tracker consume.
// Concrete Slack/Discord clients live behind this interface in
// subpackages; core pipeline code never imports a chat SDK directly.
package messaging

import "context"

// Platform selects which message-length/splitting rules apply.
type Platform string

const (
	PlatformSlack   Platform = "slack"
	PlatformDiscord Platform = "discord"
)

// Messaging is the full set of chat operations the core needs. All calls
// are asynchronous from the caller's perspective (they may block on
// network) and must tolerate being invoked concurrently across different
// serialization keys (§5 "Suspension points").
type Messaging interface {
	Platform() Platform

	// SendToChannel posts text with no message id tracking.
	SendToChannel(ctx context.Context, channel, text string) error

	// SendToChannelWithId posts text and returns the new message's id so
	// the caller can edit or react to it later.
	SendToChannelWithId(ctx context.Context, channel, text string) (messageID string, err error)

	// UpdateMessage edits a previously sent message in place.
	UpdateMessage(ctx context.Context, channel, messageID, text string) error

	// AddReactionToMessage adds an emoji reaction.
	AddReactionToMessage(ctx context.Context, channel, messageID, emoji string) error

	// ReplaceOwnReactionOnMessage removes the bot's own `from` reaction and
	// adds `to` in its place (§4.5 thinking.start/stop lifecycle).
	ReplaceOwnReactionOnMessage(ctx context.Context, channel, messageID, from, to string) error

	// ReplyInThread posts text as a threaded reply to messageID, returning
	// the new message's id.
	ReplyInThread(ctx context.Context, channel, messageID, text string) (replyID string, err error)

	// SendToChannelWithFiles posts text with one or more file attachments.
	SendToChannelWithFiles(ctx context.Context, channel, text string, files []File) error
}

// File is a single attachment for SendToChannelWithFiles.
type File struct {
	Name    string
	Content []byte
}

// MaxMessageLength returns the platform-specific chat message length limit
// used by the streaming updater's roll-over logic (§4.6).
func (p Platform) MaxMessageLength() int {
	switch p {
	case PlatformDiscord:
		return 2000
	case PlatformSlack:
		return 3000
	default:
		return 2000
	}
}

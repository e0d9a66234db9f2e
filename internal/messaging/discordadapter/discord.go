// Package discordadapter implements the messaging.Messaging capability on
// top of discordgo's REST API. It talks to Discord purely via REST calls
// (no gateway connection) since the core only ever needs to send, edit,
// and react to messages — it never needs to receive Discord events itself.
package discordadapter

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/dguik/discode/internal/messaging"
)

// Adapter implements messaging.Messaging for Discord.
type Adapter struct {
	session *discordgo.Session
}

// New creates a Discord adapter authenticated with a bot token.
func New(token string) (*Adapter, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return &Adapter{session: session}, nil
}

func (a *Adapter) Platform() messaging.Platform { return messaging.PlatformDiscord }

func (a *Adapter) SendToChannel(_ context.Context, channel, text string) error {
	_, err := a.session.ChannelMessageSend(channel, text)
	return err
}

func (a *Adapter) SendToChannelWithId(_ context.Context, channel, text string) (string, error) {
	msg, err := a.session.ChannelMessageSend(channel, text)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (a *Adapter) UpdateMessage(_ context.Context, channel, messageID, text string) error {
	_, err := a.session.ChannelMessageEdit(channel, messageID, text)
	return err
}

func (a *Adapter) AddReactionToMessage(_ context.Context, channel, messageID, emoji string) error {
	return a.session.MessageReactionAdd(channel, messageID, emoji)
}

func (a *Adapter) ReplaceOwnReactionOnMessage(_ context.Context, channel, messageID, from, to string) error {
	if err := a.session.MessageReactionRemove(channel, messageID, from, "@me"); err != nil {
		return err
	}
	return a.session.MessageReactionAdd(channel, messageID, to)
}

func (a *Adapter) ReplyInThread(_ context.Context, channel, messageID, text string) (string, error) {
	msg, err := a.session.ChannelMessageSendComplex(channel, &discordgo.MessageSend{
		Content:   text,
		Reference: &discordgo.MessageReference{MessageID: messageID, ChannelID: channel},
	})
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (a *Adapter) SendToChannelWithFiles(_ context.Context, channel, text string, files []messaging.File) error {
	send := &discordgo.MessageSend{Content: text}
	for _, f := range files {
		send.Files = append(send.Files, &discordgo.File{Name: f.Name, Reader: bytes.NewReader(f.Content)})
	}
	_, err := a.session.ChannelMessageSendComplex(channel, send)
	return err
}

// Package slackadapter implements the messaging.Messaging capability on
// top of slack-go/slack's Web API client.
package slackadapter

import (
	"bytes"
	"context"

	"github.com/slack-go/slack"

	"github.com/dguik/discode/internal/messaging"
)

// Adapter implements messaging.Messaging for Slack.
type Adapter struct {
	client *slack.Client
}

// New creates a Slack adapter authenticated with a bot token.
func New(token string) *Adapter {
	return &Adapter{client: slack.New(token)}
}

func (a *Adapter) Platform() messaging.Platform { return messaging.PlatformSlack }

func (a *Adapter) SendToChannel(_ context.Context, channel, text string) error {
	_, _, err := a.client.PostMessage(channel, slack.MsgOptionText(text, false))
	return err
}

func (a *Adapter) SendToChannelWithId(_ context.Context, channel, text string) (string, error) {
	_, ts, err := a.client.PostMessage(channel, slack.MsgOptionText(text, false))
	return ts, err
}

func (a *Adapter) UpdateMessage(_ context.Context, channel, messageID, text string) error {
	_, _, _, err := a.client.UpdateMessage(channel, messageID, slack.MsgOptionText(text, false))
	return err
}

func (a *Adapter) AddReactionToMessage(_ context.Context, channel, messageID, emoji string) error {
	ref := slack.NewRefToMessage(channel, messageID)
	return a.client.AddReaction(emoji, ref)
}

func (a *Adapter) ReplaceOwnReactionOnMessage(_ context.Context, channel, messageID, from, to string) error {
	ref := slack.NewRefToMessage(channel, messageID)
	if err := a.client.RemoveReaction(from, ref); err != nil {
		return err
	}
	return a.client.AddReaction(to, ref)
}

func (a *Adapter) ReplyInThread(_ context.Context, channel, messageID, text string) (string, error) {
	_, ts, err := a.client.PostMessage(channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(messageID),
	)
	return ts, err
}

func (a *Adapter) SendToChannelWithFiles(_ context.Context, channel, text string, files []messaging.File) error {
	for _, f := range files {
		_, err := a.client.UploadFileV2(slack.UploadFileV2Parameters{
			Channel:  channel,
			Filename: f.Name,
			Reader:   bytes.NewReader(f.Content),
			FileSize: len(f.Content),
		})
		if err != nil {
			return err
		}
	}
	if text != "" {
		return a.SendToChannel(context.Background(), channel, text)
	}
	return nil
}

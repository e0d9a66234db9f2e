package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dguik/discode/internal/hook"
	"github.com/dguik/discode/internal/logging"
	"github.com/dguik/discode/internal/routing"
)

// structuredPrefixes are the recognized tool.activity sub-message prefixes
// (§4.5.1). A tool.activity whose text starts with none of these is
// treated as ordinary streaming output instead.
var structuredPrefixes = []string{
	"TASK_CREATE:", "TASK_UPDATE:", "GIT_COMMIT:", "GIT_PUSH:", "SUBAGENT_DONE:",
}

// handleToolActivity implements §4.5's tool.activity row: structured
// sub-messages are dispatched to their own handler; everything else is
// appended to the streaming updater.
func handleToolActivity(ctx context.Context, deps *Deps, evCtx *routing.EventContext, env *hook.Envelope, log *logging.Logger) error {
	for _, prefix := range structuredPrefixes {
		if strings.HasPrefix(env.Text, prefix) {
			payload := strings.TrimPrefix(env.Text, prefix)
			handleStructured(ctx, deps, evCtx, prefix, payload, log)
			return nil
		}
	}

	if !deps.Streaming.Has(evCtx.InstanceKey) {
		if err := deps.Streaming.Start(ctx, evCtx.InstanceKey, evCtx.ChannelID, env.Text); err != nil {
			chatWarn(log, deps, "streamingStart", err)
		}
		return nil
	}
	deps.Streaming.Append(ctx, evCtx.InstanceKey, env.Text)
	return nil
}

func handleStructured(ctx context.Context, deps *Deps, evCtx *routing.EventContext, prefix, payload string, log *logging.Logger) {
	switch prefix {
	case "TASK_CREATE:":
		var body struct {
			Subject string `json:"subject"`
		}
		if err := json.Unmarshal([]byte(payload), &body); err != nil {
			deps.Metrics.StructuredParseFailures.Add(1)
			return // swallowed per §4.5.1
		}
		deps.Checklist.Create(ctx, evCtx.InstanceKey, evCtx.ChannelID, body.Subject, deps.Messaging, log)

	case "TASK_UPDATE:":
		var body struct {
			TaskID  string `json:"taskId"`
			Status  string `json:"status"`
			Subject string `json:"subject"`
		}
		if err := json.Unmarshal([]byte(payload), &body); err != nil {
			deps.Metrics.StructuredParseFailures.Add(1)
			return
		}
		deps.Checklist.Update(ctx, evCtx.InstanceKey, evCtx.ChannelID, body.TaskID, body.Status, body.Subject, deps.Messaging, log)

	case "GIT_COMMIT:":
		var body struct {
			Message string `json:"message"`
			Stat    string `json:"stat"`
		}
		if err := json.Unmarshal([]byte(payload), &body); err != nil {
			deps.Metrics.StructuredParseFailures.Add(1)
			return
		}
		text := "📦 *Committed:* `" + body.Message + "`"
		if body.Stat != "" {
			text += "\n" + body.Stat
		}
		chatWarn(log, deps, "sendToChannel", deps.Messaging.SendToChannel(ctx, evCtx.ChannelID, text))

	case "GIT_PUSH:":
		var body struct {
			RemoteRef string `json:"remoteRef"`
			ToHash    string `json:"toHash"`
		}
		if err := json.Unmarshal([]byte(payload), &body); err != nil {
			deps.Metrics.StructuredParseFailures.Add(1)
			return
		}
		short := body.ToHash
		if len(short) > 7 {
			short = short[:7]
		}
		text := fmt.Sprintf("🚀 *Pushed to* `%s` (`%s`)", body.RemoteRef, short)
		chatWarn(log, deps, "sendToChannel", deps.Messaging.SendToChannel(ctx, evCtx.ChannelID, text))

	case "SUBAGENT_DONE:":
		var body struct {
			SubagentType string `json:"subagentType"`
			Summary      string `json:"summary"`
		}
		if err := json.Unmarshal([]byte(payload), &body); err != nil {
			deps.Metrics.StructuredParseFailures.Add(1)
			return
		}
		if body.Summary == "" {
			return
		}
		text := fmt.Sprintf("🔍 *%s 완료:* %s", body.SubagentType, body.Summary)
		chatWarn(log, deps, "sendToChannel", deps.Messaging.SendToChannel(ctx, evCtx.ChannelID, text))
	}
}

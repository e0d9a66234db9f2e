// Package routing resolves a hook event's (projectName, agentType,
// instanceId) into the channel and pending-turn context its handler needs
// (C4). Routing tables are produced by the external orchestrator and are
// read-only from the core's perspective (§5).
package routing

// ErrKind discriminates the two routing failure modes (§4.4).
type ErrKind string

const (
	ErrUnknownProject ErrKind = "unknownProject"
	ErrUnknownChannel ErrKind = "unknownChannel"
)

// Error is a routing failure; Kind drives the hook server's response code
// (404-equivalent either way, per §4.8).
type Error struct {
	Kind ErrKind
}

func (e *Error) Error() string { return string(e.Kind) }

// PendingSnapshot is a read-only copy of an open pending turn at resolve
// time, so a handler can see whether a turn was already open without
// racing the pending tracker.
type PendingSnapshot struct {
	Open           bool
	ChannelID      string
	MessageID      string
	StartMessageID string
}

// EventContext is what resolve() hands back to a handler: enough to post
// to the right channel and to know the pending-turn state under the
// serialization key.
type EventContext struct {
	ProjectName     string
	AgentType       string
	InstanceKey     string
	ChannelID       string
	Platform        string // "slack" | "discord"
	PendingSnapshot PendingSnapshot
}

// Project is one routing table entry: channel ids by agent type, and
// instance overrides that take priority over the agent-type channel.
type Project struct {
	Name            string
	Platform        string
	EnabledAgents   []string
	DefaultAgent    string
	ChannelsByAgent map[string]string // agentType -> channelId
	Instances       map[string]string // instanceKey -> channelId, takes priority
}

// PendingLookup abstracts the pending-turn tracker (C8) so resolve can
// snapshot an open turn without routing owning turn state itself.
type PendingLookup interface {
	Snapshot(key string) (PendingSnapshot, bool)
}

// Table is the full routing table, keyed by project name.
type Table struct {
	Projects map[string]*Project
	Pending  PendingLookup
}

// NewTable creates an empty routing table. The caller populates Projects
// from the orchestrator-provided config.
func NewTable(pending PendingLookup) *Table {
	return &Table{Projects: make(map[string]*Project), Pending: pending}
}

// Resolve looks up routing for (projectName, agentType, instanceId). See
// §4.4 for the resolution procedure.
func (t *Table) Resolve(projectName, agentType, instanceID string) (*EventContext, error) {
	project, ok := t.Projects[projectName]
	if !ok {
		return nil, &Error{Kind: ErrUnknownProject}
	}

	resolvedAgent := agentType
	if resolvedAgent == "" {
		resolvedAgent = soleEnabledAgentOrDefault(project)
	}

	instanceKey := InstanceKey(projectName, resolvedAgent, instanceID)

	channelID, ok := project.Instances[instanceKey]
	if !ok {
		channelID, ok = project.ChannelsByAgent[resolvedAgent]
		if !ok {
			return nil, &Error{Kind: ErrUnknownChannel}
		}
	}

	var snapshot PendingSnapshot
	if t.Pending != nil {
		snapshot, _ = t.Pending.Snapshot(instanceKey)
	}

	return &EventContext{
		ProjectName:     projectName,
		AgentType:       resolvedAgent,
		InstanceKey:     instanceKey,
		ChannelID:       channelID,
		Platform:        project.Platform,
		PendingSnapshot: snapshot,
	}, nil
}

// soleEnabledAgentOrDefault implements "event field → sole enabled agent →
// default claude" (§4.4).
func soleEnabledAgentOrDefault(project *Project) string {
	if len(project.EnabledAgents) == 1 {
		return project.EnabledAgents[0]
	}
	if project.DefaultAgent != "" {
		return project.DefaultAgent
	}
	return "claude"
}

// InstanceKey computes the serialization key shared by routing, the
// pending tracker, the streaming updater, and the task checklist (§5).
func InstanceKey(projectName, agentType, instanceID string) string {
	if instanceID == "" {
		return projectName + ":" + agentType
	}
	return projectName + ":" + agentType + ":" + instanceID
}

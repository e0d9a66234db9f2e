package routing

import "testing"

type fakePending struct {
	snapshots map[string]PendingSnapshot
}

func (f *fakePending) Snapshot(key string) (PendingSnapshot, bool) {
	s, ok := f.snapshots[key]
	return s, ok
}

func newTestTable() *Table {
	pending := &fakePending{snapshots: map[string]PendingSnapshot{}}
	table := NewTable(pending)
	table.Projects["acme"] = &Project{
		Name:          "acme",
		Platform:      "discord",
		EnabledAgents: []string{"claude"},
		ChannelsByAgent: map[string]string{
			"claude": "chan-claude",
		},
		Instances: map[string]string{
			"acme:claude:worker-1": "chan-worker-1",
		},
	}
	table.Projects["multi"] = &Project{
		Name:          "multi",
		Platform:      "slack",
		EnabledAgents: []string{"claude", "codex"},
		DefaultAgent:  "claude",
		ChannelsByAgent: map[string]string{
			"claude": "chan-claude",
			"codex":  "chan-codex",
		},
	}
	return table
}

func TestResolveUnknownProject(t *testing.T) {
	table := newTestTable()
	_, err := table.Resolve("nope", "claude", "")
	rErr, ok := err.(*Error)
	if !ok || rErr.Kind != ErrUnknownProject {
		t.Fatalf("expected unknownProject error, got %v", err)
	}
}

func TestResolveUnknownChannel(t *testing.T) {
	table := newTestTable()
	_, err := table.Resolve("acme", "codex", "")
	rErr, ok := err.(*Error)
	if !ok || rErr.Kind != ErrUnknownChannel {
		t.Fatalf("expected unknownChannel error, got %v", err)
	}
}

func TestResolveSoleEnabledAgentWhenAgentTypeOmitted(t *testing.T) {
	table := newTestTable()
	ctx, err := table.Resolve("acme", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.AgentType != "claude" {
		t.Fatalf("expected sole enabled agent claude, got %q", ctx.AgentType)
	}
}

func TestResolveDefaultAgentWhenMultipleEnabledAndAgentTypeOmitted(t *testing.T) {
	table := newTestTable()
	ctx, err := table.Resolve("multi", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.AgentType != "claude" {
		t.Fatalf("expected default agent claude, got %q", ctx.AgentType)
	}
}

func TestResolveInstanceOverrideTakesPriority(t *testing.T) {
	table := newTestTable()
	ctx, err := table.Resolve("acme", "claude", "worker-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.ChannelID != "chan-worker-1" {
		t.Fatalf("expected instance-specific channel, got %q", ctx.ChannelID)
	}
}

func TestResolveFallsBackToAgentChannelWithoutInstanceOverride(t *testing.T) {
	table := newTestTable()
	ctx, err := table.Resolve("acme", "claude", "worker-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.ChannelID != "chan-claude" {
		t.Fatalf("expected agent-type channel fallback, got %q", ctx.ChannelID)
	}
}

func TestInstanceKeyFormatting(t *testing.T) {
	if got := InstanceKey("proj", "claude", ""); got != "proj:claude" {
		t.Fatalf("expected proj:claude, got %q", got)
	}
	if got := InstanceKey("proj", "claude", "w1"); got != "proj:claude:w1" {
		t.Fatalf("expected proj:claude:w1, got %q", got)
	}
}

func TestResolveCarriesPendingSnapshot(t *testing.T) {
	pending := &fakePending{snapshots: map[string]PendingSnapshot{
		"acme:claude": {Open: true, ChannelID: "chan-claude", MessageID: "m1"},
	}}
	table := NewTable(pending)
	table.Projects["acme"] = &Project{
		Name:            "acme",
		EnabledAgents:   []string{"claude"},
		ChannelsByAgent: map[string]string{"claude": "chan-claude"},
	}

	ctx, err := table.Resolve("acme", "claude", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ctx.PendingSnapshot.Open || ctx.PendingSnapshot.MessageID != "m1" {
		t.Fatalf("expected pending snapshot to be carried through, got %+v", ctx.PendingSnapshot)
	}
}

package claudeadapter

import (
	"testing"

	"github.com/dguik/discode/internal/agentadapter"
)

func TestConfig(t *testing.T) {
	a := New()
	cfg := a.Config()
	if cfg.Name != "claude" || cfg.Command != "claude" || cfg.ChannelSuffix != "-claude" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestGetStartCommandAppendsAllowedTools(t *testing.T) {
	a := New()
	cmd := a.GetStartCommand("/work", []string{"Bash", "Read"})

	want := []string{"claude", "--allowedTools", "Bash", "--allowedTools", "Read"}
	if len(cmd) != len(want) {
		t.Fatalf("expected %v, got %v", want, cmd)
	}
	for i := range want {
		if cmd[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, cmd)
		}
	}
}

func TestInstallIntegrationRejectsUnknownMode(t *testing.T) {
	a := New()
	if err := a.InstallIntegration("/work", "ssh"); err == nil {
		t.Fatal("expected an unsupported integration mode to error")
	}
	if err := a.InstallIntegration("/work", "hook"); err != nil {
		t.Fatalf("expected hook mode to be accepted, got %v", err)
	}
	if err := a.InstallIntegration("/work", "mcp"); err != nil {
		t.Fatalf("expected mcp mode to be accepted, got %v", err)
	}
}

func TestBuildLaunchCommandAddsHooksConfigOnlyWithIntegration(t *testing.T) {
	a := New()
	base := []string{"claude"}

	plain := a.BuildLaunchCommand(base, false)
	if len(plain) != 1 {
		t.Fatalf("expected no hooks flag without integration, got %v", plain)
	}

	withHooks := a.BuildLaunchCommand(base, true)
	if len(withHooks) != 3 || withHooks[1] != "--hooks-config" {
		t.Fatalf("expected hooks-config flag appended, got %v", withHooks)
	}
}

func TestGetExtraEnvVarsIncludesPermissionAllowWhenPresent(t *testing.T) {
	a := New()

	base := a.GetExtraEnvVars(agentadapter.ExtraEnvOpts{})
	if base["AGENT_DISCORD_AGENT"] != "claude" {
		t.Fatalf("expected agent name env var, got %+v", base)
	}
	if _, ok := base["CLAUDE_PERMISSION_ALLOW"]; ok {
		t.Fatal("expected no permission-allow var when none was given")
	}

	withPerms := a.GetExtraEnvVars(agentadapter.ExtraEnvOpts{PermissionAllow: []string{"Bash"}})
	if _, ok := withPerms["CLAUDE_PERMISSION_ALLOW"]; !ok {
		t.Fatal("expected a permission-allow var when PermissionAllow is set")
	}
}

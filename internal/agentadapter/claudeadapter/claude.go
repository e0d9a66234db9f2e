// Package claudeadapter implements agentadapter.Adapter for the Claude
// Code CLI, the routing resolver's default agent type (§4.4).
package claudeadapter

import (
	"fmt"
	"os/exec"

	"github.com/dguik/discode/internal/agentadapter"
)

// Adapter implements agentadapter.Adapter for Claude Code.
type Adapter struct{}

// New creates the Claude Code adapter.
func New() *Adapter { return &Adapter{} }

func (a *Adapter) Config() agentadapter.Config {
	return agentadapter.Config{
		Name:          "claude",
		DisplayName:   "Claude Code",
		Command:       "claude",
		ChannelSuffix: "-claude",
	}
}

func (a *Adapter) IsInstalled() bool {
	_, err := exec.LookPath(a.Config().Command)
	return err == nil
}

func (a *Adapter) GetStartCommand(path string, permissionAllow []string) []string {
	cmd := []string{a.Config().Command}
	for _, tool := range permissionAllow {
		cmd = append(cmd, "--allowedTools", tool)
	}
	return cmd
}

func (a *Adapter) InstallIntegration(path, mode string) error {
	// The discode bridge plugin is installed as a Claude Code hook config
	// file under path/.claude; the orchestrator owns the actual file
	// write, this adapter only validates the mode it's asked to install.
	if mode != "hook" && mode != "mcp" {
		return fmt.Errorf("claude adapter: unsupported integration mode %q", mode)
	}
	return nil
}

func (a *Adapter) InjectContainerPlugins(containerID string) error {
	return nil
}

func (a *Adapter) BuildLaunchCommand(cmd []string, integration bool) []string {
	if !integration {
		return cmd
	}
	return append(cmd, "--hooks-config", ".claude/discode-hooks.json")
}

func (a *Adapter) GetExtraEnvVars(opts agentadapter.ExtraEnvOpts) map[string]string {
	env := map[string]string{
		"AGENT_DISCORD_AGENT": a.Config().Name,
	}
	if len(opts.PermissionAllow) > 0 {
		env["CLAUDE_PERMISSION_ALLOW"] = fmt.Sprint(opts.PermissionAllow)
	}
	return env
}

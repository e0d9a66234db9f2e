// Package agentadapter defines the agent-CLI capability (§6) consumed by
// the orchestrator-facing plugin-install flow. Concrete adapters (claude,
// codex, etc.) register themselves in a Registry by name; core pipeline
// code only ever depends on the Adapter interface.
package agentadapter

import "strings"

// Config describes one agent CLI's identity.
type Config struct {
	Name          string // e.g. "claude"
	DisplayName   string
	Command       string // binary/launcher name
	ChannelSuffix string // e.g. "-claude", used to route a chat channel back to an adapter
}

// Adapter is the plugin-install/launch contract for one agent CLI.
type Adapter interface {
	Config() Config
	IsInstalled() bool
	GetStartCommand(path string, permissionAllow []string) []string
	InstallIntegration(path, mode string) error
	InjectContainerPlugins(containerID string) error
	BuildLaunchCommand(cmd []string, integration bool) []string
	GetExtraEnvVars(opts ExtraEnvOpts) map[string]string
}

// ExtraEnvOpts parameterizes GetExtraEnvVars.
type ExtraEnvOpts struct {
	PermissionAllow []string
}

// Registry looks adapters up by name or by a channel-name suffix.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter under its Config().Name.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Config().Name] = a
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// ParseChannelName splits a chat channel name into its project prefix and
// resolved adapter, matching on each registered adapter's ChannelSuffix.
func (r *Registry) ParseChannelName(name string) (project string, adapter Adapter, ok bool) {
	for _, a := range r.adapters {
		suffix := a.Config().ChannelSuffix
		if suffix == "" {
			continue
		}
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix), a, true
		}
	}
	return "", nil, false
}

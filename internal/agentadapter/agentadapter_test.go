package agentadapter

import "testing"

type fakeAdapter struct {
	cfg Config
}

func (f *fakeAdapter) Config() Config { return f.cfg }
func (f *fakeAdapter) IsInstalled() bool { return true }
func (f *fakeAdapter) GetStartCommand(path string, permissionAllow []string) []string {
	return []string{f.cfg.Command}
}
func (f *fakeAdapter) InstallIntegration(path, mode string) error      { return nil }
func (f *fakeAdapter) InjectContainerPlugins(containerID string) error { return nil }
func (f *fakeAdapter) BuildLaunchCommand(cmd []string, integration bool) []string {
	return cmd
}
func (f *fakeAdapter) GetExtraEnvVars(opts ExtraEnvOpts) map[string]string {
	return map[string]string{}
}

func TestRegistryGetByName(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeAdapter{cfg: Config{Name: "claude", ChannelSuffix: "-claude"}})

	a, ok := r.Get("claude")
	if !ok || a.Config().Name != "claude" {
		t.Fatalf("expected to find registered adapter, got %v ok=%v", a, ok)
	}

	if _, ok := r.Get("codex"); ok {
		t.Fatal("expected no adapter registered under codex")
	}
}

func TestParseChannelNameMatchesSuffix(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeAdapter{cfg: Config{Name: "claude", ChannelSuffix: "-claude"}})
	r.Register(&fakeAdapter{cfg: Config{Name: "codex", ChannelSuffix: "-codex"}})

	project, adapter, ok := r.ParseChannelName("myproject-claude")
	if !ok || project != "myproject" || adapter.Config().Name != "claude" {
		t.Fatalf("expected myproject/claude, got %q %v ok=%v", project, adapter, ok)
	}
}

func TestParseChannelNameNoMatch(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeAdapter{cfg: Config{Name: "claude", ChannelSuffix: "-claude"}})

	_, _, ok := r.ParseChannelName("myproject-unknown")
	if ok {
		t.Fatal("expected no match for an unregistered suffix")
	}
}

func TestParseChannelNameSkipsAdaptersWithoutSuffix(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeAdapter{cfg: Config{Name: "bare"}})

	_, _, ok := r.ParseChannelName("anything")
	if ok {
		t.Fatal("expected an adapter with an empty ChannelSuffix to never match")
	}
}

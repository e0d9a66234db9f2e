// Package main is the discode process entrypoint: it wires configuration,
// logging, the routing table, the in-process event bus, the VT screen
// registry, the messaging/agent-adapter capabilities, and the hook HTTP
// server into one running process.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dguik/discode/internal/agentadapter"
	"github.com/dguik/discode/internal/agentadapter/claudeadapter"
	"github.com/dguik/discode/internal/bus"
	"github.com/dguik/discode/internal/config"
	"github.com/dguik/discode/internal/hookserver"
	"github.com/dguik/discode/internal/logging"
	"github.com/dguik/discode/internal/messaging"
	"github.com/dguik/discode/internal/messaging/discordadapter"
	"github.com/dguik/discode/internal/messaging/slackadapter"
	"github.com/dguik/discode/internal/metrics"
	"github.com/dguik/discode/internal/pending"
	"github.com/dguik/discode/internal/pipeline"
	"github.com/dguik/discode/internal/quiethours"
	"github.com/dguik/discode/internal/routing"
	"github.com/dguik/discode/internal/streaming"
	"github.com/dguik/discode/internal/tracing"
	"github.com/dguik/discode/internal/vt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.NewLogger(logging.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logging.SetDefault(log)

	log.Info("starting discode")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventBus := bus.NewMemoryEventBus(log)
	defer eventBus.Close()

	vtRegistry := vt.NewRegistry(120, 500)

	msg, err := newMessaging(log)
	if err != nil {
		log.Fatal("failed to initialize messaging capability", zap.Error(err))
	}

	agentRegistry := agentadapter.NewRegistry()
	agentRegistry.Register(claudeadapter.New())

	pendingTracker := pending.NewTracker()
	streamingUpdater := streaming.NewUpdater(msg, log)
	checklistStore := pipeline.NewChecklistStore()

	routingTable := routing.NewTable(pendingTracker)
	if err := loadProjects(routingTable); err != nil {
		log.Warn("failed to load project routing table, starting empty", zap.Error(err))
	}

	quietHoursGate := quiethours.NewGate()

	liveSnapshots := newLiveSnapshotCache()
	subscribeVTSnapshotConsumers(eventBus, liveSnapshots, log)

	deps := pipeline.Deps{
		Messaging:                msg,
		Pending:                  pendingTracker,
		Streaming:                streamingUpdater,
		Checklist:                checklistStore,
		Metrics:                  metrics.Default,
		Logger:                   log,
		QuietHours:               quietHoursGate,
		ThinkingPlaceholderDelay: cfg.Thinking.PlaceholderDelay(),
		Bus:                      eventBus,
		VTRegistry:               vtRegistry,
	}
	pl := pipeline.New(routingTable, deps)

	server := hookserver.New(hookserver.Config{
		Host:            cfg.Hook.Host,
		Port:            cfg.Hook.Port,
		RateLimitPerSec: cfg.Hook.RateLimitPerSec,
		RateLimitBurst:  cfg.Hook.RateLimitBurst,
	}, pl, log)

	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- server.ListenAndServe(ctx)
	}()

	debugServer := newDebugServer(vtRegistry, liveSnapshots, log)
	go func() {
		if err := debugServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("debug server exited", zap.Error(err))
		}
	}()

	log.Info("discode ready",
		zap.String("hook_addr", fmt.Sprintf("%s:%d", cfg.Hook.Host, cfg.Hook.Port)),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("shutting down discode")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("hook server exited unexpectedly", zap.Error(err))
		}
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		log.Warn("tracing shutdown error", zap.Error(err))
	}
	if err := debugServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("debug server shutdown error", zap.Error(err))
	}

	log.Info("discode stopped")
}

// newDebugServer exposes the process-wide metrics counters, a plain-text VT
// snapshot per window key (read straight from the registry), and a
// bus-delivered "live view" snapshot per key (read from liveSnapshots,
// fed entirely through the event bus, decoupled from the registry) for
// local inspection, grounded on the teacher's simple debug-only /health
// route.
func newDebugServer(registry *vt.Registry, liveSnapshots *liveSnapshotCache, log *logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", metrics.Default.Handler())
	mux.HandleFunc("/vt/", func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path[len("/vt/"):]
		win, ok := registry.Get(key)
		if !ok {
			http.Error(w, "unknown window", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(win.VT.TextSnapshot()))
	})
	mux.HandleFunc("/vt/live/", func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path[len("/vt/live/"):]
		text, ok := liveSnapshots.Get(key)
		if !ok {
			http.Error(w, "no snapshot published yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(text))
	})

	return &http.Server{
		Addr:              "127.0.0.1:18471",
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// liveSnapshotCache holds the most recently bus-delivered VT snapshot per
// key, fed entirely by subscribeVTSnapshotConsumers's TUI-live-view
// subscriber rather than by reading internal/vt.Registry directly — this
// is what a real TUI client would subscribe to instead of polling windows.
type liveSnapshotCache struct {
	mu   sync.Mutex
	byKey map[string]string
}

func newLiveSnapshotCache() *liveSnapshotCache {
	return &liveSnapshotCache{byKey: make(map[string]string)}
}

func (c *liveSnapshotCache) Set(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byKey[key] = text
}

func (c *liveSnapshotCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, ok := c.byKey[key]
	return text, ok
}

// subscribeVTSnapshotConsumers registers the two "vt.snapshot" consumers
// the bus fans VT snapshots out to (§2, §6): a chat-refresh consumer that
// counts deliveries for the metrics endpoint, and a TUI-live-view consumer
// that mirrors the latest snapshot into liveSnapshots for the debug
// server's /vt/live/<key> route.
func subscribeVTSnapshotConsumers(eventBus bus.EventBus, liveSnapshots *liveSnapshotCache, log *logging.Logger) {
	chatRefresh := func(ctx context.Context, event *bus.Event) error {
		metrics.Default.VTSnapshotsConsumed.Add(1)
		data, _ := event.Data.(map[string]interface{})
		key, _ := data["key"].(string)
		log.Debug("vt snapshot ready for chat refresh", zap.String("key", key))
		return nil
	}
	if _, err := eventBus.Subscribe("vt.snapshot", chatRefresh); err != nil {
		log.Warn("failed to subscribe chat-refresh vt snapshot consumer", zap.Error(err))
	}

	tuiLiveView := func(ctx context.Context, event *bus.Event) error {
		data, _ := event.Data.(map[string]interface{})
		key, _ := data["key"].(string)
		snapshot, _ := data["snapshot"].(string)
		if key == "" {
			return nil
		}
		liveSnapshots.Set(key, snapshot)
		return nil
	}
	if _, err := eventBus.Subscribe("vt.snapshot", tuiLiveView); err != nil {
		log.Warn("failed to subscribe TUI-live-view vt snapshot consumer", zap.Error(err))
	}
}

// newMessaging builds the concrete Messaging capability selected by
// DISCODE_PLATFORM ("discord" or "slack"), reading the platform token from
// the matching env var (§6 plugin launch contract keeps its own
// AGENT_DISCORD_ namespace; the bot token is the orchestrator's own secret
// and stays outside viper's DISCODE_ tree).
func newMessaging(log *logging.Logger) (messaging.Messaging, error) {
	switch os.Getenv("DISCODE_PLATFORM") {
	case "slack":
		token := os.Getenv("SLACK_BOT_TOKEN")
		if token == "" {
			return nil, fmt.Errorf("SLACK_BOT_TOKEN must be set when DISCODE_PLATFORM=slack")
		}
		return slackadapter.New(token), nil
	case "discord", "":
		token := os.Getenv("DISCORD_BOT_TOKEN")
		if token == "" {
			return nil, fmt.Errorf("DISCORD_BOT_TOKEN must be set when DISCODE_PLATFORM=discord")
		}
		return discordadapter.New(token)
	default:
		return nil, fmt.Errorf("unsupported DISCODE_PLATFORM %q", os.Getenv("DISCODE_PLATFORM"))
	}
}

// loadProjects is a placeholder for the orchestrator-provided routing table
// (§4.4, §5): in production this is populated by the external orchestrator
// over its own management channel. Until that wiring exists, the table
// starts empty and every event 404s as unknownProject, which is the correct
// conservative default.
func loadProjects(table *routing.Table) error {
	return nil
}

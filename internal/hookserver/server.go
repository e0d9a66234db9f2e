// Package hookserver is the localhost-only HTTP ingress (C9) that receives
// hook events posted by the agent bridge scripts and hands validated
// envelopes to the event pipeline (§4.8).
package hookserver

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dguik/discode/internal/hook"
	"github.com/dguik/discode/internal/httpmw"
	"github.com/dguik/discode/internal/logging"
	"github.com/dguik/discode/internal/routing"
)

// Handler dispatches one validated envelope; implemented by
// *pipeline.Pipeline in production, faked in tests.
type Handler interface {
	Handle(ctx context.Context, env *hook.Envelope) error
}

// Server is the gin-based localhost HTTP ingress for /opencode-event (§4.8).
// All agent types post to the same route, discriminated by the envelope's
// agentType field (§6 plugin launch contract).
type Server struct {
	engine  *gin.Engine
	http    *http.Server
	handler Handler
	log     *logging.Logger

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
	rateN     rate.Limit
	rateBurst int
}

// Config controls the listener address and the per-key token bucket shape.
type Config struct {
	Host            string
	Port            int
	RateLimitPerSec int
	RateLimitBurst  int
}

// New builds a Server; call ListenAndServe to start it.
func New(cfg Config, handler Handler, log *logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		engine:    engine,
		handler:   handler,
		log:       log.WithFields(zap.String("component", "hookserver")),
		limiters:  make(map[string]*rate.Limiter),
		rateN:     rate.Limit(cfg.RateLimitPerSec),
		rateBurst: cfg.RateLimitBurst,
	}

	engine.Use(gin.Recovery())
	engine.Use(httpmw.RequestLogger(s.log, "hookserver"))
	engine.Use(httpmw.OtelTracing("hookserver"))
	engine.Use(s.loopbackOnly())

	engine.POST("/opencode-event", s.handleEvent)

	addr := net.JoinHostPort(cfg.Host, itoa(cfg.Port))
	s.http = &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving hook requests until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// loopbackOnly rejects any request whose remote address isn't the loopback
// interface — the hook ingress trusts its payload entirely on the strength
// of never being reachable from outside localhost (§4.8, §6).
func (s *Server) loopbackOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err != nil {
			host = c.Request.RemoteAddr
		}
		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": false, "reason": "loopback only"})
			return
		}
		c.Next()
	}
}

// handleEvent implements §4.8: validate → rate limit per (project,
// instance) → resolve routing → dispatch. Response codes: 200 on success,
// 400 on validation failure, 404 when routing can't resolve a channel, 429
// when the per-key bucket is empty, 500 only for handler-internal errors
// the pipeline chooses to surface.
func (s *Server) handleEvent(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "errors": []string{"failed to read body"}})
		return
	}

	result := hook.Validate(body)
	if !result.Ok {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "errors": result.Errors})
		return
	}
	env := result.Value

	limiterKey := env.ProjectName + ":" + env.AgentType + ":" + env.InstanceID
	if !s.allow(limiterKey) {
		c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "reason": "rate limited"})
		return
	}

	if err := s.handler.Handle(c.Request.Context(), env); err != nil {
		var routingErr *routing.Error
		if errors.As(err, &routingErr) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "reason": "no channel"})
			return
		}
		s.log.Error("hook event handling failed", zap.String("type", env.Type), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "reason": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// allow enforces a per-key token bucket (§4.8 rate limiting), creating the
// bucket lazily on first use, mirroring the pending tracker's and
// pipeline's per-key lazy-map pattern.
func (s *Server) allow(key string) bool {
	s.limiterMu.Lock()
	lim, ok := s.limiters[key]
	if !ok {
		lim = rate.NewLimiter(s.rateN, s.rateBurst)
		s.limiters[key] = lim
	}
	s.limiterMu.Unlock()
	return lim.Allow()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

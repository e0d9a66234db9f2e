// Package quiethours gates the thinking-timer placeholder notification by a
// per-project working-hours cron expression (§6 supplemented feature).
package quiethours

import (
	"sync"
	"time"

	"github.com/adhocore/gronx"
)

// Gate holds one working-hours cron expression per project. A project with
// no configured expression is always considered active (never quiet),
// matching the conservative default of not suppressing anything until a
// team opts in.
type Gate struct {
	mu         sync.RWMutex
	exprByProj map[string]string
	gron       gronx.Gronx
}

// NewGate creates an empty quiet-hours gate.
func NewGate() *Gate {
	return &Gate{exprByProj: make(map[string]string), gron: gronx.New()}
}

// Set installs the working-hours cron expression for project, e.g.
// "0-59 9-17 * * 1-5" for 9:00-17:59 on weekdays. Cron range fields make this a
// single expression rather than needing separate start/end schedules.
func (g *Gate) Set(project, cronExpr string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.exprByProj[project] = cronExpr
}

// Clear removes project's quiet-hours configuration.
func (g *Gate) Clear(project string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.exprByProj, project)
}

// Active reports whether placeholder notifications should be sent for
// project at time t. Returns true (active, not quiet) when no expression is
// configured or the expression fails to parse.
func (g *Gate) Active(project string, t time.Time) bool {
	g.mu.RLock()
	expr, ok := g.exprByProj[project]
	g.mu.RUnlock()
	if !ok || expr == "" {
		return true
	}

	due, err := g.gron.IsDue(expr, t)
	if err != nil {
		return true
	}
	return due
}

package collector

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Guard isolates one collector from the host page. A panic inside a
// collector callback permanently disables that collector instead of
// propagating; the metric simply stops being reported.
type Guard struct {
	name     string
	log      *zap.Logger
	disabled atomic.Bool
}

// NewGuard creates a guard for the named collector.
func NewGuard(name string, log *zap.Logger) *Guard {
	return &Guard{name: name, log: log}
}

// Do runs fn unless the collector is disabled, recovering from panics.
func (g *Guard) Do(fn func()) {
	if g.disabled.Load() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			g.disabled.Store(true)
			g.log.Warn("Collector disabled after internal failure",
				zap.String("collector", g.name),
				zap.Any("panic", r))
		}
	}()

	fn()
}

// Disabled reports whether the guard has tripped.
func (g *Guard) Disabled() bool {
	return g.disabled.Load()
}

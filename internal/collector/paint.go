package collector

import (
	"sync"

	"github.com/google/uuid"

	"github.com/vitalwatch/telemetry-agent/internal/event"
	"github.com/vitalwatch/telemetry-agent/internal/vitals"
)

// LCPCollector tracks the most recent largest-contentful-paint candidate
// and reports it once, when the page is hidden or torn down. If no
// candidate was ever observed nothing is emitted.
type LCPCollector struct {
	emitter Emitter

	mu        sync.Mutex
	candidate float64
	seen      bool
	done      bool
}

// NewLCPCollector creates an LCP collector.
func NewLCPCollector(emitter Emitter) *LCPCollector {
	return &LCPCollector{emitter: emitter}
}

// OnPaint records an LCP candidate. Later candidates replace earlier ones;
// the timeline only reports a new entry when a larger element paints.
func (c *LCPCollector) OnPaint(entry PaintEntry) {
	if entry.Name != PaintLargestContentful {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done {
		return
	}
	c.candidate = entry.StartTime
	c.seen = true
}

// Finalize emits the retained candidate. Safe to call more than once; only
// the first call emits.
func (c *LCPCollector) Finalize() {
	c.mu.Lock()
	if c.done || !c.seen {
		c.done = true
		c.mu.Unlock()
		return
	}
	c.done = true
	value := c.candidate
	c.mu.Unlock()

	c.emitter.EmitVital(&event.VitalData{
		Name:          string(vitals.LCP),
		Value:         value,
		Rating:        string(vitals.Rate(vitals.LCP, value)),
		MeasurementID: uuid.NewString(),
	})
}

// FCPCollector reports first-contentful-paint the moment it is observed.
// FCP is single-shot by construction, so no finalization is needed.
type FCPCollector struct {
	emitter Emitter

	mu   sync.Mutex
	done bool
}

// NewFCPCollector creates an FCP collector.
func NewFCPCollector(emitter Emitter) *FCPCollector {
	return &FCPCollector{emitter: emitter}
}

// OnPaint emits on the first first-contentful-paint entry.
func (c *FCPCollector) OnPaint(entry PaintEntry) {
	if entry.Name != PaintFirstContentful {
		return
	}

	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}
	c.done = true
	c.mu.Unlock()

	c.emitter.EmitVital(&event.VitalData{
		Name:          string(vitals.FCP),
		Value:         entry.StartTime,
		Rating:        string(vitals.Rate(vitals.FCP, entry.StartTime)),
		MeasurementID: uuid.NewString(),
	})
}

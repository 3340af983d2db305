package collector

import (
	"sync"

	"github.com/google/uuid"

	"github.com/vitalwatch/telemetry-agent/internal/event"
	"github.com/vitalwatch/telemetry-agent/internal/vitals"
)

// INPCollector tracks the worst event-processing duration across
// interaction entries and reports it once, on hide or teardown. Pages
// without interactions emit nothing.
type INPCollector struct {
	emitter Emitter

	mu   sync.Mutex
	max  float64
	seen bool
	done bool
}

// NewINPCollector creates an INP collector.
func NewINPCollector(emitter Emitter) *INPCollector {
	return &INPCollector{emitter: emitter}
}

// OnEventTiming records one interaction entry.
func (c *INPCollector) OnEventTiming(entry EventTiming) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done {
		return
	}
	if entry.Duration > c.max {
		c.max = entry.Duration
	}
	c.seen = true
}

// Finalize emits the worst interaction duration. Only the first call
// emits.
func (c *INPCollector) Finalize() {
	c.mu.Lock()
	if c.done || !c.seen {
		c.done = true
		c.mu.Unlock()
		return
	}
	c.done = true
	value := c.max
	c.mu.Unlock()

	c.emitter.EmitVital(&event.VitalData{
		Name:          string(vitals.INP),
		Value:         value,
		Rating:        string(vitals.Rate(vitals.INP, value)),
		MeasurementID: uuid.NewString(),
	})
}

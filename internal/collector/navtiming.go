package collector

import (
	"sync"

	"github.com/google/uuid"

	"github.com/vitalwatch/telemetry-agent/internal/event"
	"github.com/vitalwatch/telemetry-agent/internal/vitals"
)

// TTFBCollector computes time-to-first-byte from the navigation timing
// entry and emits immediately; there is nothing to finalize. A malformed
// entry means the metric is simply never emitted.
type TTFBCollector struct {
	emitter Emitter

	mu   sync.Mutex
	done bool
}

// NewTTFBCollector creates a TTFB collector.
func NewTTFBCollector(emitter Emitter) *TTFBCollector {
	return &TTFBCollector{emitter: emitter}
}

// OnNavigationTiming emits TTFB from the first plausible entry.
func (c *TTFBCollector) OnNavigationTiming(timing NavigationTiming) {
	if timing.ResponseStart <= 0 || timing.ResponseStart < timing.RequestStart {
		return
	}

	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}
	c.done = true
	c.mu.Unlock()

	value := timing.ResponseStart - timing.RequestStart
	c.emitter.EmitVital(&event.VitalData{
		Name:           string(vitals.TTFB),
		Value:          value,
		Rating:         string(vitals.Rate(vitals.TTFB, value)),
		MeasurementID:  uuid.NewString(),
		NavigationType: timing.Type,
	})
}

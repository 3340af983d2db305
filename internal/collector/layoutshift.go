package collector

import (
	"sync"

	"github.com/google/uuid"

	"github.com/vitalwatch/telemetry-agent/internal/event"
	"github.com/vitalwatch/telemetry-agent/internal/vitals"
)

// CLSCollector folds layout shifts into session windows and reports the
// worst window once, on hide or teardown. A page with no shifts reports
// zero, which rates good.
type CLSCollector struct {
	emitter Emitter

	mu     sync.Mutex
	window *vitals.SessionWindow
	done   bool
}

// NewCLSCollector creates a CLS collector.
func NewCLSCollector(emitter Emitter) *CLSCollector {
	return &CLSCollector{
		emitter: emitter,
		window:  vitals.NewSessionWindow(),
	}
}

// OnShift folds one layout-shift entry into the current session window.
// Shifts following recent user input are excluded from CLS by definition.
func (c *CLSCollector) OnShift(shift LayoutShift) {
	if shift.HadRecentInput {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done {
		return
	}
	c.window.Add(shift.Value, shift.StartTime)
}

// Finalize emits the worst session window. Only the first call emits.
func (c *CLSCollector) Finalize() {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}
	c.done = true
	value := c.window.Worst()
	c.mu.Unlock()

	c.emitter.EmitVital(&event.VitalData{
		Name:          string(vitals.CLS),
		Value:         value,
		Rating:        string(vitals.Rate(vitals.CLS, value)),
		MeasurementID: uuid.NewString(),
	})
}

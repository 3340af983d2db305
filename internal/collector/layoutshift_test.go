package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitalwatch/telemetry-agent/internal/vitals"
)

func TestCLSCollector_ReportsWorstWindow(t *testing.T) {
	emitter := &recordingEmitter{}
	c := NewCLSCollector(emitter)

	for _, at := range []float64{0, 800, 1700, 2600, 6000} {
		c.OnShift(LayoutShift{Value: 0.05, StartTime: at})
	}
	c.Finalize()

	v := emitter.vitalByName("CLS")
	assert.NotNil(t, v)
	assert.InDelta(t, 0.2, v.Value, 1e-9)
	assert.Equal(t, string(vitals.RatingNeedsImprovement), v.Rating)
}

func TestCLSCollector_IgnoresShiftsWithRecentInput(t *testing.T) {
	emitter := &recordingEmitter{}
	c := NewCLSCollector(emitter)

	c.OnShift(LayoutShift{Value: 0.4, StartTime: 100, HadRecentInput: true})
	c.OnShift(LayoutShift{Value: 0.05, StartTime: 200})
	c.Finalize()

	v := emitter.vitalByName("CLS")
	assert.NotNil(t, v)
	assert.InDelta(t, 0.05, v.Value, 1e-9)
}

func TestCLSCollector_NoShiftsReportsZero(t *testing.T) {
	emitter := &recordingEmitter{}
	c := NewCLSCollector(emitter)

	c.Finalize()

	v := emitter.vitalByName("CLS")
	assert.NotNil(t, v, "a page without shifts still reports CLS")
	assert.Zero(t, v.Value)
	assert.Equal(t, string(vitals.RatingGood), v.Rating)
}

func TestCLSCollector_FinalizeOnce(t *testing.T) {
	emitter := &recordingEmitter{}
	c := NewCLSCollector(emitter)

	c.OnShift(LayoutShift{Value: 0.1, StartTime: 0})
	c.Finalize()
	c.OnShift(LayoutShift{Value: 0.5, StartTime: 100})
	c.Finalize()

	assert.Len(t, emitter.Vitals(), 1)
	assert.InDelta(t, 0.1, emitter.Vitals()[0].Value, 1e-9)
}

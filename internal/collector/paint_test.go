package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitalwatch/telemetry-agent/internal/vitals"
)

func TestLCPCollector_KeepsLatestCandidate(t *testing.T) {
	emitter := &recordingEmitter{}
	c := NewLCPCollector(emitter)

	c.OnPaint(PaintEntry{Name: PaintLargestContentful, StartTime: 800})
	c.OnPaint(PaintEntry{Name: PaintLargestContentful, StartTime: 1900})
	assert.Empty(t, emitter.Vitals(), "LCP must not emit before finalize")

	c.Finalize()

	v := emitter.vitalByName("LCP")
	assert.NotNil(t, v)
	assert.Equal(t, 1900.0, v.Value)
	assert.Equal(t, string(vitals.RatingGood), v.Rating)
	assert.NotEmpty(t, v.MeasurementID)
}

func TestLCPCollector_FinalizeOnce(t *testing.T) {
	emitter := &recordingEmitter{}
	c := NewLCPCollector(emitter)

	c.OnPaint(PaintEntry{Name: PaintLargestContentful, StartTime: 3000})
	c.Finalize()
	c.Finalize()

	assert.Len(t, emitter.Vitals(), 1)
}

func TestLCPCollector_NoCandidateNoEmit(t *testing.T) {
	emitter := &recordingEmitter{}
	c := NewLCPCollector(emitter)

	c.Finalize()

	assert.Empty(t, emitter.Vitals())
}

func TestLCPCollector_CandidateAfterFinalizeIgnored(t *testing.T) {
	emitter := &recordingEmitter{}
	c := NewLCPCollector(emitter)

	c.OnPaint(PaintEntry{Name: PaintLargestContentful, StartTime: 1000})
	c.Finalize()
	c.OnPaint(PaintEntry{Name: PaintLargestContentful, StartTime: 9000})
	c.Finalize()

	assert.Len(t, emitter.Vitals(), 1)
	assert.Equal(t, 1000.0, emitter.Vitals()[0].Value)
}

func TestLCPCollector_IgnoresOtherPaints(t *testing.T) {
	emitter := &recordingEmitter{}
	c := NewLCPCollector(emitter)

	c.OnPaint(PaintEntry{Name: PaintFirstContentful, StartTime: 500})
	c.Finalize()

	assert.Empty(t, emitter.Vitals())
}

func TestFCPCollector_EmitsImmediatelyOnce(t *testing.T) {
	emitter := &recordingEmitter{}
	c := NewFCPCollector(emitter)

	c.OnPaint(PaintEntry{Name: PaintFirstContentful, StartTime: 1800})
	c.OnPaint(PaintEntry{Name: PaintFirstContentful, StartTime: 2500})

	vs := emitter.Vitals()
	assert.Len(t, vs, 1, "FCP is single-shot")
	assert.Equal(t, "FCP", vs[0].Name)
	assert.Equal(t, 1800.0, vs[0].Value)
	assert.Equal(t, string(vitals.RatingGood), vs[0].Rating)
}

func TestFCPCollector_IgnoresLCPEntries(t *testing.T) {
	emitter := &recordingEmitter{}
	c := NewFCPCollector(emitter)

	c.OnPaint(PaintEntry{Name: PaintLargestContentful, StartTime: 900})

	assert.Empty(t, emitter.Vitals())
}

package vitals

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestSessionWindow_SplitsOnGapAndSpan(t *testing.T) {
	// Shifts at [0, 800, 1700, 2600, 6000] with equal values form two
	// windows: the first four (gaps <=1000ms, span <=5000ms) and the last
	// (gap 3400ms). The score is the larger window sum.
	w := NewSessionWindow()
	for _, at := range []float64{0, 800, 1700, 2600, 6000} {
		w.Add(0.05, at)
	}

	assert.InDelta(t, 0.2, w.Worst(), 1e-9)
	assert.True(t, w.Observed())
}

func TestSessionWindow_GapBoundaryInclusive(t *testing.T) {
	// A gap of exactly 1000ms stays in the window; only a larger gap
	// starts a new one.
	w := NewSessionWindow()
	w.Add(0.1, 0)
	w.Add(0.1, 1000)
	assert.InDelta(t, 0.2, w.Worst(), 1e-9)

	w2 := NewSessionWindow()
	w2.Add(0.1, 0)
	w2.Add(0.1, 1001)
	assert.InDelta(t, 0.1, w2.Worst(), 1e-9)
}

func TestSessionWindow_SpanBoundary(t *testing.T) {
	// Shifts under 1000ms apart can still split when the window span
	// passes 5000ms.
	w := NewSessionWindow()
	for at := 0.0; at <= 5900; at += 900 {
		w.Add(0.1, at)
	}
	// Six shifts land in [0..4500]; the shift at 5400 exceeds the span
	// bound and opens a new window.
	assert.InDelta(t, 0.6, w.Worst(), 1e-9)
}

func TestSessionWindow_WorstKeepsEarlierWindow(t *testing.T) {
	w := NewSessionWindow()
	w.Add(0.3, 0)
	w.Add(0.3, 500)
	// New window with a smaller sum; the earlier one must win.
	w.Add(0.1, 3000)
	assert.InDelta(t, 0.6, w.Worst(), 1e-9)
}

func TestSessionWindow_Empty(t *testing.T) {
	w := NewSessionWindow()
	assert.Zero(t, w.Worst())
	assert.False(t, w.Observed())
}

func TestSessionWindow_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	genShifts := gen.SliceOf(gen.Struct(
		reflect.TypeOf(shift{}),
		map[string]gopter.Gen{
			"Value": gen.Float64Range(0, 0.5),
			"Gap":   gen.Float64Range(0, 3000),
		},
	))

	properties.Property("worst is at least the largest single shift", prop.ForAll(
		func(shifts []shift) bool {
			w := NewSessionWindow()
			at, largest := 0.0, 0.0
			for _, s := range shifts {
				at += s.Gap
				w.Add(s.Value, at)
				if s.Value > largest {
					largest = s.Value
				}
			}
			return w.Worst() >= largest
		},
		genShifts,
	))

	properties.Property("worst never exceeds the total of all shifts", prop.ForAll(
		func(shifts []shift) bool {
			w := NewSessionWindow()
			at, total := 0.0, 0.0
			for _, s := range shifts {
				at += s.Gap
				w.Add(s.Value, at)
				total += s.Value
			}
			return w.Worst() <= total+1e-9
		},
		genShifts,
	))

	properties.Property("shifts more than 1000ms apart never share a window", prop.ForAll(
		func(values []float64) bool {
			// With every gap above the session bound, each shift is its
			// own window and the worst is the single largest value.
			w := NewSessionWindow()
			at, largest := 0.0, 0.0
			for _, v := range values {
				w.Add(v, at)
				at += 1500
				if v > largest {
					largest = v
				}
			}
			return w.Worst() == largest
		},
		gen.SliceOf(gen.Float64Range(0, 1)),
	))

	properties.TestingRun(t)
}

type shift struct {
	Value float64
	Gap   float64
}

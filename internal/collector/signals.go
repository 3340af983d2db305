// Package collector translates raw page signals into event records. Each
// collector observes one signal family, is stateless with respect to the
// others, and emits through the Emitter exactly once per logical
// measurement.
package collector

import "github.com/vitalwatch/telemetry-agent/internal/event"

// Paint entry names from the performance timeline.
const (
	PaintFirstContentful   = "first-contentful-paint"
	PaintLargestContentful = "largest-contentful-paint"
)

// PaintEntry is a paint-timing observation. For LCP the adapter reports
// every candidate as the page evolves; for FCP there is a single entry.
type PaintEntry struct {
	Name      string
	StartTime float64 // ms since navigation start
}

// LayoutShift is one layout-shift entry. Shifts that follow recent user
// input are excluded from CLS by definition.
type LayoutShift struct {
	Value          float64
	StartTime      float64 // ms since navigation start
	HadRecentInput bool
}

// EventTiming is an interaction entry from the event-timing timeline.
type EventTiming struct {
	Duration  float64 // ms from input to next paint
	StartTime float64
}

// NavigationTiming carries the fields of the navigation timing entry the
// agent consumes.
type NavigationTiming struct {
	RequestStart  float64
	ResponseStart float64
	Type          string // navigate, reload, back-forward, prerender
}

// PageError is an uncaught exception or unhandled rejection.
type PageError struct {
	Message string
	Stack   string
	File    string
	Line    int
	Column  int
}

// Emitter receives finished records from collectors. The agent implements
// it by wrapping the variant in an envelope and appending to the queue;
// collectors never see queue or transport state.
type Emitter interface {
	EmitPageView(data *event.PageViewData)
	EmitVital(data *event.VitalData)
	EmitError(data *event.ErrorData)
}

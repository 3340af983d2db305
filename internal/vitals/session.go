package vitals

// Session window boundaries, in milliseconds. A shift starts a new window
// when the gap since the previous shift exceeds MaxSessionGapMs, or when
// folding it in would stretch the window past MaxSessionSpanMs.
const (
	MaxSessionGapMs  = 1000.0
	MaxSessionSpanMs = 5000.0
)

// SessionWindow accumulates layout shifts into session windows and tracks
// the worst one. CLS is defined as the largest window sum, not the sum of
// every shift on the page.
type SessionWindow struct {
	sum   float64
	first float64 // start time of the current window
	last  float64 // start time of the most recent shift in it
	count int
	worst float64
	seen  bool
}

// NewSessionWindow returns an empty session tracker.
func NewSessionWindow() *SessionWindow {
	return &SessionWindow{}
}

// Add folds a shift into the current window, closing it first when the
// shift falls outside the window's gap or span bound. startTime is in
// milliseconds relative to navigation start.
func (w *SessionWindow) Add(value, startTime float64) {
	if w.count > 0 && (startTime-w.last > MaxSessionGapMs || startTime-w.first > MaxSessionSpanMs) {
		w.close()
	}

	if w.count == 0 {
		w.first = startTime
	}
	w.sum += value
	w.last = startTime
	w.count++
	w.seen = true
}

// close retires the current window, keeping its sum if it is the worst so
// far.
func (w *SessionWindow) close() {
	if w.sum > w.worst {
		w.worst = w.sum
	}
	w.sum = 0
	w.count = 0
}

// Worst returns the largest window sum observed, including the window
// still open.
func (w *SessionWindow) Worst() float64 {
	if w.sum > w.worst {
		return w.sum
	}
	return w.worst
}

// Observed reports whether any shift has been added.
func (w *SessionWindow) Observed() bool {
	return w.seen
}

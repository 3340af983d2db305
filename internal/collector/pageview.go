package collector

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vitalwatch/telemetry-agent/internal/event"
)

// DefaultEmitDelay is how long a page view is deferred after a navigation
// so the adapter has updated the document title by the time the record is
// built.
const DefaultEmitDelay = 100 * time.Millisecond

// PageViewCollector emits one record per distinct navigation: the initial
// load and every path change reported through OnNavigation. Consecutive
// navigations to the same path never re-trigger.
type PageViewCollector struct {
	emitter Emitter
	page    func() event.PageContext
	delay   time.Duration

	mu       sync.Mutex
	lastPath string
	pending  *time.Timer
}

// NewPageViewCollector creates a page-view collector reading the current
// page context through page.
func NewPageViewCollector(emitter Emitter, page func() event.PageContext) *PageViewCollector {
	return &PageViewCollector{
		emitter: emitter,
		page:    page,
		delay:   DefaultEmitDelay,
	}
}

// OnNavigation records a navigation. Emission is deferred by the collector
// delay; a navigation arriving inside the window supersedes the pending
// one.
func (c *PageViewCollector) OnNavigation() {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.page().Path
	if path == c.lastPath {
		return
	}
	c.lastPath = path

	if c.pending != nil {
		c.pending.Stop()
	}
	c.pending = time.AfterFunc(c.delay, c.emit)
}

// TrackNow emits a page view immediately, for manual track calls. The
// path is recorded so a following navigation signal for the same path is
// not double-counted.
func (c *PageViewCollector) TrackNow() {
	c.mu.Lock()
	c.lastPath = c.page().Path
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.mu.Unlock()

	c.emit()
}

// Stop cancels any deferred emission. Used at page teardown.
func (c *PageViewCollector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

func (c *PageViewCollector) emit() {
	// Title is read at emission time, after the deferral, so client-side
	// routers have had a chance to update it.
	page := c.page()
	c.emitter.EmitPageView(&event.PageViewData{
		Title:  page.Title,
		ViewID: uuid.NewString(),
	})
}

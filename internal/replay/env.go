package replay

import (
	"sync"

	"github.com/vitalwatch/telemetry-agent/internal/event"
)

// Env is a mutable simulated page environment implementing
// agent.Environment. Replay streams and tests drive it directly.
type Env struct {
	mu     sync.Mutex
	page   event.PageContext
	dnt    bool
	hidden bool
}

// NewEnv creates an environment with the given initial page context.
func NewEnv(page event.PageContext) *Env {
	return &Env{page: page}
}

// Page implements agent.Environment.
func (e *Env) Page() event.PageContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.page
}

// DoNotTrack implements agent.Environment.
func (e *Env) DoNotTrack() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dnt
}

// Hidden implements agent.Environment.
func (e *Env) Hidden() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hidden
}

// Navigate updates the page context for a client-side navigation. Empty
// fields keep their previous values except the referrer, which becomes
// the previous URL.
func (e *Env) Navigate(url, path, title, referrer string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if referrer == "" {
		referrer = e.page.URL
	}
	if url != "" {
		e.page.URL = url
	}
	if path != "" {
		e.page.Path = path
	}
	e.page.Title = title
	e.page.Referrer = referrer
}

// SetTitle updates the document title, as a router would after navigating.
func (e *Env) SetTitle(title string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.page.Title = title
}

// SetHidden updates the visibility state.
func (e *Env) SetHidden(hidden bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hidden = hidden
}

// SetDoNotTrack updates the DNT flag. Only meaningful before the agent
// starts; the agent checks once.
func (e *Env) SetDoNotTrack(dnt bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dnt = dnt
}

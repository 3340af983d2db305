// Package agent wires collectors, batcher, and transport into the public
// runtime surface. A thin platform adapter detects the raw browser
// signals and calls the typed entry points; nothing in this package may
// ever propagate a failure back into the host.
package agent

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vitalwatch/telemetry-agent/internal/batcher"
	"github.com/vitalwatch/telemetry-agent/internal/collector"
	"github.com/vitalwatch/telemetry-agent/internal/config"
	"github.com/vitalwatch/telemetry-agent/internal/event"
	"github.com/vitalwatch/telemetry-agent/internal/transport"
)

// Version is stamped on every record's envelope.
const Version = "0.4.0"

// eventBuffer sizes the collector-to-batcher channel. Emission is
// non-blocking; a full buffer drops the record rather than janking the
// host.
const eventBuffer = 256

// Environment is what the agent needs to know about the host page. The
// platform adapter keeps it current.
type Environment interface {
	// Page returns the current page context used for record envelopes.
	Page() event.PageContext
	// DoNotTrack reports the browser's DNT setting. Checked once, at
	// start, before any collector is installed.
	DoNotTrack() bool
	// Hidden reports the current visibility state.
	Hidden() bool
}

// Agent is the telemetry agent handle returned by New. All methods are
// no-ops until Start and after Close, and permanently when the agent went
// dormant for DNT.
type Agent struct {
	cfg    *config.Config
	env    Environment
	sender transport.Sender
	log    *zap.Logger

	mu      sync.Mutex
	started bool
	dormant bool
	closing bool
	closed  bool
	events  chan event.Event
	batcher *batcher.Batcher
	cancel  context.CancelFunc
	done    chan struct{}
	navType string

	pageViews *collector.PageViewCollector
	lcp       *collector.LCPCollector
	fcp       *collector.FCPCollector
	cls       *collector.CLSCollector
	inp       *collector.INPCollector
	ttfb      *collector.TTFBCollector
	errors    *collector.ErrorCollector

	pageViewGuard *collector.Guard
	vitalsGuard   *collector.Guard
	errorGuard    *collector.Guard
}

// New validates the configuration and builds an agent. A nil sender gets
// the HTTP sender for the configured endpoint; tests inject their own.
func New(cfg *config.Config, env Environment, sender transport.Sender, log *zap.Logger) (*Agent, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Normalize()

	if sender == nil {
		sender = transport.NewHTTPSender(transport.Config{
			Endpoint:      cfg.Endpoint,
			APIKey:        cfg.APIKey,
			Headers:       cfg.Headers,
			DisableBeacon: cfg.DisableBeacon,
			Debug:         cfg.Debug,
		}, log)
	}

	return &Agent{
		cfg:    cfg,
		env:    env,
		sender: sender,
		log:    log,
	}, nil
}

// Start installs the enabled collectors and launches the batcher. It is
// idempotent; a second call on a started agent is a no-op. If the
// environment reports Do-Not-Track and the agent is configured to respect
// it, no collector is installed and no data is ever sent.
func (a *Agent) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return
	}
	a.started = true

	if a.cfg.RespectDoNotTrack && a.env.DoNotTrack() {
		a.dormant = true
		a.log.Info("Do-Not-Track enabled, agent dormant")
		return
	}

	a.events = make(chan event.Event, eventBuffer)
	a.batcher = batcher.New(a.sender, batcher.Config{
		MaxBatchSize:  a.cfg.BatchSize,
		FlushInterval: a.cfg.FlushInterval(),
		Hidden:        a.env.Hidden,
	}, a.log)

	ctx, a.cancel = context.WithCancel(ctx)
	a.done = make(chan struct{})
	go func() {
		a.batcher.Start(ctx, a.events)
		close(a.done)
	}()

	if a.cfg.TrackPageViews {
		a.pageViews = collector.NewPageViewCollector(a, a.env.Page)
		a.pageViewGuard = collector.NewGuard("page_views", a.log)
	}
	if a.cfg.TrackVitals {
		a.lcp = collector.NewLCPCollector(a)
		a.fcp = collector.NewFCPCollector(a)
		a.cls = collector.NewCLSCollector(a)
		a.inp = collector.NewINPCollector(a)
		a.ttfb = collector.NewTTFBCollector(a)
		a.vitalsGuard = collector.NewGuard("vitals", a.log)
	}
	if a.cfg.TrackErrors {
		a.errors = collector.NewErrorCollector(a)
		a.errorGuard = collector.NewGuard("errors", a.log)
	}

	a.log.Info("Agent started",
		zap.String("site_id", a.cfg.SiteID),
		zap.Int("batch_size", a.cfg.BatchSize),
		zap.Duration("flush_interval", a.cfg.FlushInterval()))
}

// active reports whether signals should be processed at all.
func (a *Agent) active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.started && !a.dormant && !a.closed
}

// NotifyNavigation reports a navigation (initial load or client-side
// route change). The adapter owns detection; the agent owns idempotence
// and deferred emission.
func (a *Agent) NotifyNavigation() {
	if !a.active() || a.pageViews == nil {
		return
	}
	a.pageViewGuard.Do(a.pageViews.OnNavigation)
}

// TrackPageView emits a page view immediately, for manual instrumentation.
func (a *Agent) TrackPageView() {
	if !a.active() || a.pageViews == nil {
		return
	}
	a.pageViewGuard.Do(a.pageViews.TrackNow)
}

// TrackEvent emits a custom event with a sanitized flat property map.
func (a *Agent) TrackEvent(name string, properties map[string]any) {
	if !a.active() || name == "" {
		return
	}

	e := a.newEnvelope(event.KindCustom)
	e.Custom = event.NewCustom(name, properties)
	a.enqueue(e)
}

// ObservePaint feeds a paint-timing entry to the paint collectors.
func (a *Agent) ObservePaint(entry collector.PaintEntry) {
	if !a.active() || a.lcp == nil {
		return
	}
	a.vitalsGuard.Do(func() {
		a.fcp.OnPaint(entry)
		a.lcp.OnPaint(entry)
	})
}

// ObserveLayoutShift feeds a layout-shift entry to the CLS collector.
func (a *Agent) ObserveLayoutShift(shift collector.LayoutShift) {
	if !a.active() || a.cls == nil {
		return
	}
	a.vitalsGuard.Do(func() { a.cls.OnShift(shift) })
}

// ObserveEventTiming feeds an interaction entry to the INP collector.
func (a *Agent) ObserveEventTiming(entry collector.EventTiming) {
	if !a.active() || a.inp == nil {
		return
	}
	a.vitalsGuard.Do(func() { a.inp.OnEventTiming(entry) })
}

// ObserveNavigationTiming feeds the navigation timing entry to the TTFB
// collector and remembers the navigation type for subsequent vitals.
func (a *Agent) ObserveNavigationTiming(timing collector.NavigationTiming) {
	if !a.active() {
		return
	}

	a.mu.Lock()
	a.navType = timing.Type
	a.mu.Unlock()

	if a.ttfb == nil {
		return
	}
	a.vitalsGuard.Do(func() { a.ttfb.OnNavigationTiming(timing) })
}

// ReportError reports an uncaught exception or unhandled rejection.
func (a *Agent) ReportError(pageErr collector.PageError) {
	if !a.active() || a.errors == nil {
		return
	}
	a.errorGuard.Do(func() { a.errors.OnError(pageErr) })
}

// PageHidden reports the page transitioning to the hidden visibility
// state: pending vitals finalize and everything queued flushes on the
// unload-safe path.
func (a *Agent) PageHidden() {
	if !a.active() {
		return
	}

	a.finalizeVitals()
	a.batcher.RequestFlush(true)
}

// Flush forces immediate delivery of whatever is queued.
func (a *Agent) Flush() {
	if !a.active() {
		return
	}
	a.batcher.RequestFlush(a.env.Hidden())
}

// Close is the page-teardown signal: vitals finalize, the remainder is
// flushed, and the batcher stops. The agent is a no-op afterwards.
func (a *Agent) Close() {
	a.mu.Lock()
	if !a.started || a.dormant || a.closing {
		a.mu.Unlock()
		return
	}
	// Claim the teardown before releasing the lock so a concurrent Close
	// cannot reach close(a.events) twice. closed stays false until the
	// channel closes so the finalized vitals below still enqueue.
	a.closing = true
	a.mu.Unlock()

	a.finalizeVitals()
	if a.pageViews != nil {
		a.pageViews.Stop()
	}

	a.mu.Lock()
	a.closed = true
	close(a.events)
	a.mu.Unlock()

	// The batcher drains the channel and performs the teardown flush
	// before exiting.
	<-a.done
	a.cancel()

	if w, ok := a.sender.(interface{ Wait() }); ok {
		w.Wait()
	}
}

// finalizeVitals closes out the hide/teardown-finalized metrics. Each
// collector emits at most once no matter how often this runs.
func (a *Agent) finalizeVitals() {
	if a.lcp == nil {
		return
	}
	a.vitalsGuard.Do(func() {
		a.lcp.Finalize()
		a.cls.Finalize()
		a.inp.Finalize()
	})
}

// EmitPageView implements collector.Emitter.
func (a *Agent) EmitPageView(data *event.PageViewData) {
	e := a.newEnvelope(event.KindPageView)
	e.PageView = data
	a.enqueue(e)
}

// EmitVital implements collector.Emitter, stamping the navigation type
// learned from the navigation timing entry when the collector did not set
// one itself.
func (a *Agent) EmitVital(data *event.VitalData) {
	if data.NavigationType == "" {
		a.mu.Lock()
		data.NavigationType = a.navType
		a.mu.Unlock()
	}

	e := a.newEnvelope(event.KindVital)
	e.Vital = data
	a.enqueue(e)
}

// EmitError implements collector.Emitter.
func (a *Agent) EmitError(data *event.ErrorData) {
	e := a.newEnvelope(event.KindError)
	e.Error = data
	a.enqueue(e)
}

// newEnvelope snapshots the page context into a fresh record envelope.
func (a *Agent) newEnvelope(kind event.Kind) event.Event {
	page := a.env.Page()
	return event.Event{
		Kind:           kind,
		Timestamp:      time.Now().UnixMilli(),
		SiteID:         a.cfg.SiteID,
		URL:            page.URL,
		Path:           page.Path,
		Referrer:       page.Referrer,
		ScreenWidth:    page.ScreenWidth,
		Timezone:       page.Timezone,
		Language:       page.Language,
		ConnectionType: page.ConnectionType,
		AgentVersion:   Version,
	}
}

// enqueue appends a record to the queue without ever blocking the caller.
// The lock is held through the send so a deferred emission cannot race a
// concurrent Close; the send itself is non-blocking.
func (a *Agent) enqueue(e event.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started || a.dormant || a.closed {
		return
	}

	select {
	case a.events <- e:
	default:
		a.log.Warn("Event dropped, queue full", zap.String("kind", string(e.Kind)))
	}
}

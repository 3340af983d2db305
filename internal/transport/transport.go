// Package transport delivers serialized batches to the ingestion endpoint.
// Delivery is best-effort: failures are swallowed, never retried, and
// never surfaced to the host.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/vitalwatch/telemetry-agent/internal/event"
)

// MaxEventsPerRequest is the ceiling the ingestion endpoint enforces on a
// single request. Larger batches are split rather than rejected.
const MaxEventsPerRequest = 100

// UnloadGracePeriod bounds how long an async send may keep running after
// the page that produced it is gone.
const UnloadGracePeriod = 10 * time.Second

// beaconTimeout bounds the synchronous unload-safe send.
const beaconTimeout = 2 * time.Second

// Sender hands a batch to the network. hidden is the page visibility at
// flush time and drives the choice between the async path and the
// unload-safe beacon path.
type Sender interface {
	Send(ctx context.Context, events []event.Event, hidden bool)
}

// Config configures the HTTP sender.
type Config struct {
	Endpoint string
	APIKey   string
	// Headers are attached on the async path only; the beacon path cannot
	// carry custom headers.
	Headers map[string]string
	// DisableBeacon forces the async path even when the page is hidden,
	// for hosts without an unload-safe send primitive.
	DisableBeacon bool
	// Debug enables logging of swallowed delivery failures.
	Debug bool
}

type payload struct {
	Events []event.Event `json:"events"`
}

// HTTPSender implements Sender over plain HTTP POSTs. The async path is
// fire-and-forget with auth headers; the beacon path is a bounded
// synchronous POST with the API key as a query parameter.
type HTTPSender struct {
	client    *http.Client
	cfg       Config
	beaconURL string
	log       *zap.Logger
	inflight  chan struct{}
}

// NewHTTPSender creates a sender for the configured endpoint.
func NewHTTPSender(cfg Config, log *zap.Logger) *HTTPSender {
	return &HTTPSender{
		client:    &http.Client{Timeout: UnloadGracePeriod},
		cfg:       cfg,
		beaconURL: beaconURL(cfg.Endpoint, cfg.APIKey),
		log:       log,
		// Bounds concurrent fire-and-forget sends; an unreachable endpoint
		// must not accumulate goroutines for the page lifetime.
		inflight: make(chan struct{}, 8),
	}
}

// Send serializes the batch and posts it, splitting at the per-request
// ceiling. Order is preserved end to end. Send never returns an error and
// never blocks on the network on the async path.
func (s *HTTPSender) Send(ctx context.Context, events []event.Event, hidden bool) {
	for start := 0; start < len(events); start += MaxEventsPerRequest {
		end := start + MaxEventsPerRequest
		if end > len(events) {
			end = len(events)
		}

		body, err := json.Marshal(payload{Events: events[start:end]})
		if err != nil {
			s.debugf("Failed to serialize batch", zap.Error(err))
			continue
		}

		if hidden && !s.cfg.DisableBeacon {
			s.sendBeacon(body)
			continue
		}

		s.inflight <- struct{}{}
		go func(body []byte) {
			defer func() { <-s.inflight }()
			s.sendAsync(body)
		}(body)
	}
}

// Wait blocks until all fire-and-forget sends have finished. Used at
// teardown and in tests; the pipeline itself never waits on delivery.
func (s *HTTPSender) Wait() {
	for i := 0; i < cap(s.inflight); i++ {
		s.inflight <- struct{}{}
	}
	for i := 0; i < cap(s.inflight); i++ {
		<-s.inflight
	}
}

// sendAsync is the fetch path: custom headers attached, outcome only used
// for debug logging. It deliberately runs on a fresh context so the send
// survives the caller for the unload grace period.
func (s *HTTPSender) sendAsync(body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), UnloadGracePeriod)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		s.debugf("Failed to build delivery request", zap.Error(err))
		return
	}

	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
		req.Header.Set("X-Api-Key", s.cfg.APIKey)
	}
	for name, value := range s.cfg.Headers {
		req.Header.Set(name, value)
	}

	s.do(req)
}

// sendBeacon is the unload-safe path: synchronous, tightly bounded, and
// header-less. The API key travels as a query parameter because beacons
// cannot carry custom headers.
func (s *HTTPSender) sendBeacon(body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), beaconTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.beaconURL, bytes.NewReader(body))
	if err != nil {
		s.debugf("Failed to build beacon request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	s.do(req)
}

// do executes the request and swallows the outcome. A failed batch is
// considered attempted; it is never re-queued.
func (s *HTTPSender) do(req *http.Request) {
	resp, err := s.client.Do(req)
	if err != nil {
		s.debugf("Batch delivery failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.debugf("Batch rejected by endpoint", zap.Int("status", resp.StatusCode))
	}
}

func (s *HTTPSender) debugf(msg string, fields ...zap.Field) {
	if s.cfg.Debug {
		s.log.Debug(msg, fields...)
	}
}

// beaconURL appends the API key as a query parameter to the endpoint.
func beaconURL(endpoint, apiKey string) string {
	if apiKey == "" {
		return endpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	q := u.Query()
	q.Set("key", apiKey)
	u.RawQuery = q.Encode()
	return u.String()
}

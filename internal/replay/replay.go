// Package replay drives an agent from a recorded signal stream: one JSON
// object per line, each describing a raw page signal. It is the
// platform-adapter used for development and integration testing; a real
// host wires the same agent entry points to live browser signals.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vitalwatch/telemetry-agent/internal/agent"
	"github.com/vitalwatch/telemetry-agent/internal/collector"
)

// Signal types accepted in a stream.
const (
	TypeNavigation       = "navigation"
	TypePaint            = "paint"
	TypeLayoutShift      = "layout-shift"
	TypeEventTiming      = "event-timing"
	TypeNavigationTiming = "navigation-timing"
	TypeError            = "error"
	TypeCustom           = "custom"
	TypeVisibility       = "visibility"
	TypeFlush            = "flush"
)

// Signal is one line of a recorded stream. Only the fields relevant to
// its type are read.
type Signal struct {
	Type string `json:"type"`

	// navigation
	URL      string `json:"url,omitempty"`
	Path     string `json:"path,omitempty"`
	Title    string `json:"title,omitempty"`
	Referrer string `json:"referrer,omitempty"`

	// paint
	Name      string  `json:"name,omitempty"`
	StartTime float64 `json:"start_time,omitempty"`

	// layout-shift
	Value          float64 `json:"value,omitempty"`
	HadRecentInput bool    `json:"had_recent_input,omitempty"`

	// event-timing
	Duration float64 `json:"duration,omitempty"`

	// navigation-timing
	RequestStart   float64 `json:"request_start,omitempty"`
	ResponseStart  float64 `json:"response_start,omitempty"`
	NavigationType string  `json:"navigation_type,omitempty"`

	// error
	Message string `json:"message,omitempty"`
	Stack   string `json:"stack,omitempty"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`

	// visibility
	Hidden bool `json:"hidden,omitempty"`

	// custom
	Properties map[string]any `json:"properties,omitempty"`
}

// ParseStream reads a JSONL signal stream, skipping blank lines.
func ParseStream(r io.Reader) ([]Signal, error) {
	var signals []Signal

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var sig Signal
		if err := json.Unmarshal(raw, &sig); err != nil {
			return nil, fmt.Errorf("line %d: failed to parse signal: %w", line, err)
		}
		if sig.Type == "" {
			return nil, fmt.Errorf("line %d: signal has no type", line)
		}
		signals = append(signals, sig)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read signal stream: %w", err)
	}

	return signals, nil
}

// Runner dispatches signals to an agent, keeping the simulated page
// environment current as navigation and visibility signals arrive.
type Runner struct {
	agent *agent.Agent
	env   *Env
}

// NewRunner creates a runner for the agent and its simulated environment.
func NewRunner(a *agent.Agent, env *Env) *Runner {
	return &Runner{agent: a, env: env}
}

// Run applies every signal in order.
func (r *Runner) Run(signals []Signal) error {
	for i, sig := range signals {
		if err := r.Apply(sig); err != nil {
			return fmt.Errorf("signal %d (%s): %w", i+1, sig.Type, err)
		}
	}
	return nil
}

// Apply dispatches one signal to the matching agent entry point.
func (r *Runner) Apply(sig Signal) error {
	switch sig.Type {
	case TypeNavigation:
		r.env.Navigate(sig.URL, sig.Path, sig.Title, sig.Referrer)
		r.agent.NotifyNavigation()

	case TypePaint:
		r.agent.ObservePaint(collector.PaintEntry{
			Name:      sig.Name,
			StartTime: sig.StartTime,
		})

	case TypeLayoutShift:
		r.agent.ObserveLayoutShift(collector.LayoutShift{
			Value:          sig.Value,
			StartTime:      sig.StartTime,
			HadRecentInput: sig.HadRecentInput,
		})

	case TypeEventTiming:
		r.agent.ObserveEventTiming(collector.EventTiming{
			Duration:  sig.Duration,
			StartTime: sig.StartTime,
		})

	case TypeNavigationTiming:
		r.agent.ObserveNavigationTiming(collector.NavigationTiming{
			RequestStart:  sig.RequestStart,
			ResponseStart: sig.ResponseStart,
			Type:          sig.NavigationType,
		})

	case TypeError:
		r.agent.ReportError(collector.PageError{
			Message: sig.Message,
			Stack:   sig.Stack,
			File:    sig.File,
			Line:    sig.Line,
			Column:  sig.Column,
		})

	case TypeCustom:
		r.agent.TrackEvent(sig.Name, sig.Properties)

	case TypeVisibility:
		r.env.SetHidden(sig.Hidden)
		if sig.Hidden {
			r.agent.PageHidden()
		}

	case TypeFlush:
		r.agent.Flush()

	default:
		return fmt.Errorf("unknown signal type %q", sig.Type)
	}

	return nil
}

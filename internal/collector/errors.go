package collector

import (
	"github.com/vitalwatch/telemetry-agent/internal/event"
)

// ErrorCollector emits one record per uncaught exception or unhandled
// rejection, with message and stack truncated to their payload caps.
type ErrorCollector struct {
	emitter Emitter
}

// NewErrorCollector creates an error collector.
func NewErrorCollector(emitter Emitter) *ErrorCollector {
	return &ErrorCollector{emitter: emitter}
}

// OnError reports one page error. Errors without a message carry nothing
// actionable and are dropped.
func (c *ErrorCollector) OnError(pageErr PageError) {
	if pageErr.Message == "" {
		return
	}

	var source *event.SourceLocation
	if pageErr.File != "" || pageErr.Line > 0 {
		source = &event.SourceLocation{
			File:   pageErr.File,
			Line:   pageErr.Line,
			Column: pageErr.Column,
		}
	}

	c.emitter.EmitError(event.NewError(pageErr.Message, pageErr.Stack, source))
}

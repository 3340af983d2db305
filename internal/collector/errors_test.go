package collector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitalwatch/telemetry-agent/internal/event"
)

func TestErrorCollector_EmitsPerOccurrence(t *testing.T) {
	emitter := &recordingEmitter{}
	c := NewErrorCollector(emitter)

	c.OnError(PageError{Message: "boom", Stack: "at app.js:10", File: "app.js", Line: 10, Column: 4})
	c.OnError(PageError{Message: "boom"})

	errs := emitter.Errors()
	assert.Len(t, errs, 2)
	assert.Equal(t, "boom", errs[0].Message)
	assert.Equal(t, "app.js", errs[0].Source.File)
	assert.Equal(t, 10, errs[0].Source.Line)
	assert.Nil(t, errs[1].Source)
}

func TestErrorCollector_TruncatesPayload(t *testing.T) {
	emitter := &recordingEmitter{}
	c := NewErrorCollector(emitter)

	c.OnError(PageError{
		Message: strings.Repeat("m", event.MaxErrorMessageLen*2),
		Stack:   strings.Repeat("s", event.MaxErrorStackLen*2),
	})

	errs := emitter.Errors()
	assert.Len(t, errs, 1)
	assert.Len(t, errs[0].Message, event.MaxErrorMessageLen)
	assert.Len(t, errs[0].Stack, event.MaxErrorStackLen)
}

func TestErrorCollector_DropsEmptyMessage(t *testing.T) {
	emitter := &recordingEmitter{}
	c := NewErrorCollector(emitter)

	c.OnError(PageError{Stack: "stack without message"})

	assert.Empty(t, emitter.Errors())
}

package collector

import (
	"sync"

	"github.com/vitalwatch/telemetry-agent/internal/event"
)

// recordingEmitter captures everything the collectors emit.
type recordingEmitter struct {
	mu        sync.Mutex
	pageViews []*event.PageViewData
	vitals    []*event.VitalData
	errors    []*event.ErrorData
}

func (r *recordingEmitter) EmitPageView(data *event.PageViewData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pageViews = append(r.pageViews, data)
}

func (r *recordingEmitter) EmitVital(data *event.VitalData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vitals = append(r.vitals, data)
}

func (r *recordingEmitter) EmitError(data *event.ErrorData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, data)
}

func (r *recordingEmitter) PageViewCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pageViews)
}

func (r *recordingEmitter) Vitals() []*event.VitalData {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*event.VitalData, len(r.vitals))
	copy(out, r.vitals)
	return out
}

func (r *recordingEmitter) Errors() []*event.ErrorData {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*event.ErrorData, len(r.errors))
	copy(out, r.errors)
	return out
}

func (r *recordingEmitter) vitalByName(name string) *event.VitalData {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.vitals {
		if v.Name == name {
			return v
		}
	}
	return nil
}

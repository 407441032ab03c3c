// SPDX-License-Identifier: MIT
package engine

import (
	"sync"

	"github.com/skaphos/fleetpull/internal/model"
)

// Reporter receives progress events. The engine serializes calls, so
// implementations do not need their own locking.
type Reporter interface {
	Report(model.Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(model.Event)

func (f ReporterFunc) Report(ev model.Event) { f(ev) }

// Discard drops every event.
var Discard Reporter = ReporterFunc(func(model.Event) {})

// Recorder keeps every event in arrival order.
type Recorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *Recorder) Report(ev model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Event(nil), r.events...)
}

type lockedReporter struct {
	mu   sync.Mutex
	next Reporter
}

func (l *lockedReporter) Report(ev model.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next.Report(ev)
}

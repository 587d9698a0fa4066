package tltest

import (
	"github.com/iov-one/tradelock"
	"github.com/iov-one/tradelock/x/htlc"
)

// EventRecorder collects every emitted escrow event in order, so a test
// can assert on what external observers would have seen.
type EventRecorder struct {
	Events []htlc.Event
}

var _ htlc.Emitter = (*EventRecorder)(nil)

func (r *EventRecorder) Emit(ctx tradelock.Context, ev htlc.Event) {
	r.Events = append(r.Events, ev)
}

// Last returns the most recent event, or nil when nothing was emitted.
func (r *EventRecorder) Last() htlc.Event {
	if len(r.Events) == 0 {
		return nil
	}
	return r.Events[len(r.Events)-1]
}

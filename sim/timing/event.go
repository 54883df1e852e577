package timing

import (
	"github.com/sarchlab/rebalance/sim/hooking"
	"github.com/sarchlab/rebalance/sim/id"
)

// VTimeInSec is the host clock, in seconds since the engine was created.
type VTimeInSec = float64

// An Event is something going to happen in the future.
type Event interface {
	// Time returns the time that the event should happen.
	Time() VTimeInSec

	// Handler returns the handler that should handle the event.
	Handler() Handler
}

// A Handler defines a domain for the events.
//
// One event is always constraint to one Handler, which means the event can
// only be scheduled by one handler and can only directly modify that handler.
type Handler interface {
	Handle(e Event) error
}

// HookPosBeforeFrame is a hook position that triggers at the start of every
// frame, after posted commands have run.
var HookPosBeforeFrame = &hooking.HookPos{Name: "BeforeFrame"}

// HookPosAfterFrame is a hook position that triggers once all continuations and
// tickers of a frame have run.
var HookPosAfterFrame = &hooking.HookPos{Name: "AfterFrame"}

// HookPosTaskEnd triggers when a continuation finishes or is stopped. The item
// is the *Task.
var HookPosTaskEnd = &hooking.HookPos{Name: "TaskEnd"}

// EventBase provides the basic fields and getters for other events
type EventBase struct {
	ID      string
	time    VTimeInSec
	handler Handler
}

// NewEventBase creates a new EventBase
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	e := new(EventBase)
	e.ID = id.Generate()
	e.time = t
	e.handler = handler

	return e
}

// Time return the time that the event is going to happen
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler to handle the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// wakeEvent resumes a continuation parked by WaitSeconds.
type wakeEvent struct {
	*EventBase
}

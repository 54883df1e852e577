// Package reactive diffs tunable parameters against the values last applied
// and calls the handlers of the parameters that changed.
package reactive

import (
	"go.uber.org/zap"
)

// Unapplied is the snapshot value of a parameter that was never applied. No
// tunable can take it, so the first sync always fires.
const Unapplied = -1.0

// A Handler applies a changed parameter.
type Handler func(id string, old, value float64)

// An Option configures a tracked parameter.
type Option func(p *param)

// WithGate makes the parameter sync only while open returns true. A gated
// parameter keeps its stale snapshot and fires once the gate opens.
func WithGate(open func() bool) Option {
	return func(p *param) {
		p.gate = open
	}
}

// Bool converts a flag into a parameter value.
func Bool(b bool) float64 {
	if b {
		return 1
	}

	return 0
}

type param struct {
	id       string
	read     func() float64
	gate     func() bool
	last     float64
	handlers []Handler
}

// Tracker holds the parameter snapshot.
type Tracker struct {
	enabled func() bool
	log     *zap.Logger

	params []*param
	byID   map[string]*param
}

// NewTracker creates a tracker that syncs only while enabled returns true.
// A nil enabled is always on.
func NewTracker(enabled func() bool, log *zap.Logger) *Tracker {
	return &Tracker{
		enabled: enabled,
		log:     log.Named("reactive"),
		byID:    make(map[string]*param),
	}
}

// Track adds a parameter read by read. Tracking an id twice panics.
func (t *Tracker) Track(id string, read func() float64, opts ...Option) {
	if _, found := t.byID[id]; found {
		panic("parameter " + id + " tracked twice")
	}

	p := &param{id: id, read: read, last: Unapplied}
	for _, o := range opts {
		o(p)
	}

	t.params = append(t.params, p)
	t.byID[id] = p
}

// On registers a handler for a tracked parameter.
func (t *Tracker) On(id string, h Handler) {
	p, found := t.byID[id]
	if !found {
		panic("parameter " + id + " is not tracked")
	}

	p.handlers = append(p.handlers, h)
}

// IDs returns the tracked parameters in tracking order.
func (t *Tracker) IDs() []string {
	ids := make([]string, len(t.params))
	for i, p := range t.params {
		ids[i] = p.id
	}

	return ids
}

// Snapshot returns the value last applied for id.
func (t *Tracker) Snapshot(id string) (float64, bool) {
	p, found := t.byID[id]
	if !found {
		return 0, false
	}

	return p.last, true
}

// Sync compares every open parameter with its snapshot and fires the handlers
// of those that changed. It returns the number of parameters applied.
func (t *Tracker) Sync() int {
	if t.enabled != nil && !t.enabled() {
		return 0
	}

	n := 0

	for _, p := range t.params {
		if p.gate != nil && !p.gate() {
			continue
		}

		v := p.read()
		if v == p.last {
			continue
		}

		old := p.last
		p.last = v
		n++

		for _, h := range p.handlers {
			t.call(p, h, old, v)
		}
	}

	return n
}

func (t *Tracker) call(p *param, h Handler, old, v float64) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("parameter handler panicked",
				zap.String("param", p.id), zap.Any("panic", r))
		}
	}()

	h(p.id, old, v)
}

// Forget resets every snapshot entry to Unapplied without syncing.
func (t *Tracker) Forget() {
	for _, p := range t.params {
		p.last = Unapplied
	}
}

// ForceAll forgets every applied value and syncs, so that every open
// parameter fires once.
func (t *Tracker) ForceAll(reason string) int {
	t.Forget()

	n := t.Sync()

	t.log.Info("parameters re-applied",
		zap.String("reason", reason), zap.Int("applied", n))

	return n
}

// Tick syncs. It lets the tracker run as an engine ticker.
func (t *Tracker) Tick() bool {
	return t.Sync() > 0
}

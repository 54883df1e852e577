// Package patching rewrites the host's state machine action lists and damage
// fields, and undoes those rewrites exactly.
package patching

import (
	"errors"
	"fmt"

	"github.com/sarchlab/rebalance/host"
	"go.uber.org/zap"
)

// ErrTargetMissing is returned when the machine, state or object to patch
// does not exist on the host.
var ErrTargetMissing = errors.New("patch target missing")

// A Locator finds the object that carries the patch targets.
type Locator interface {
	Object() host.GameObject
}

// Splicer replaces instructions in one state of one machine.
type Splicer struct {
	locator Locator
	machine string
	state   string
	marker  string
	log     *zap.Logger

	noop  *NoopAction
	spawn *SpawnAction

	target   host.State
	original []host.Action
	patched  bool
}

// NewSplicer creates a splicer for the state of the machine. Activation
// instructions become no-ops and the message instruction calling marker
// becomes a spawn through spawner.
func NewSplicer(
	locator Locator,
	machine, state, marker string,
	spawner Spawner,
	log *zap.Logger,
) *Splicer {
	log = log.Named("splicer").With(
		zap.String("machine", machine), zap.String("state", state))

	return &Splicer{
		locator: locator,
		machine: machine,
		state:   state,
		marker:  marker,
		log:     log,
		noop:    &NoopAction{},
		spawn:   NewSpawnAction(spawner, log),
	}
}

// Patched returns true between a successful Apply and the next Rollback.
func (s *Splicer) Patched() bool {
	return s.patched
}

// Captured returns the action list captured on the first successful Apply,
// or nil.
func (s *Splicer) Captured() []host.Action {
	return s.original
}

// Apply splices the state. It may be called any number of times; the original
// list is captured only once and already spliced instructions are kept.
func (s *Splicer) Apply() error {
	st, err := s.locate()
	if err != nil {
		s.log.Warn("cannot splice", zap.Error(err))
		return err
	}

	if s.original == nil {
		s.original = append([]host.Action{}, st.Actions()...)
		s.target = st
	}

	current := st.Actions()
	next := make([]host.Action, len(current))

	for i, a := range current {
		next[i] = s.replace(a)
	}

	st.SetActions(next)
	s.patched = true

	s.log.Info("state spliced", zap.Int("actions", len(next)))

	return nil
}

func (s *Splicer) replace(a host.Action) host.Action {
	switch a := a.(type) {
	case *NoopAction, *SpawnAction:
		return a
	case host.ActivateAction:
		return s.noop
	case host.MessageAction:
		if a.FunctionName() == s.marker {
			return s.spawn
		}

		return a
	default:
		return a
	}
}

// Rollback writes the captured list back and forgets it. The state is looked
// up on the current controller object; the state patched first is used only
// when the lookup fails.
func (s *Splicer) Rollback() error {
	if s.original == nil {
		return nil
	}

	st, err := s.locate()
	if err != nil {
		st = s.target
	}

	if st == nil {
		s.log.Warn("cannot roll back", zap.Error(err))
		s.forget()

		return err
	}

	st.SetActions(s.original)
	s.forget()

	s.log.Info("state restored")

	return nil
}

func (s *Splicer) forget() {
	s.original = nil
	s.target = nil
	s.patched = false
}

func (s *Splicer) locate() (host.State, error) {
	obj := s.locator.Object()
	if obj == nil {
		return nil, fmt.Errorf("controller object: %w", ErrTargetMissing)
	}

	fsm := host.FindStateMachine(obj, s.machine)
	if fsm == nil {
		return nil, fmt.Errorf("machine %q: %w", s.machine, ErrTargetMissing)
	}

	st := fsm.State(s.state)
	if st == nil {
		return nil, fmt.Errorf("state %q: %w", s.state, ErrTargetMissing)
	}

	return st, nil
}

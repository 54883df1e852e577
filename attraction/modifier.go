// Package attraction makes silk collectibles fly toward the hero from a
// configurable range.
package attraction

import (
	"github.com/sarchlab/rebalance/host"
	"go.uber.org/zap"
)

// ModifierKind is the component kind of Modifier.
const ModifierKind = "ReaperSilkRangeModifier"

// CollectableState is the collectible state the range action joins.
const CollectableState = "Collectable"

// Params are the attraction tunables.
type Params struct {
	Range        float64
	MaxSpeed     float64
	Acceleration float64
}

// Modifier is attached to a collectible. Once started it adds a
// RangeCollectAction to the collectible's Collectable state, and it removes
// that action again when it is destroyed.
type Modifier struct {
	Params

	hero host.Hero
	log  *zap.Logger
}

// NewModifier creates a modifier that attracts toward hero.
func NewModifier(hero host.Hero, p Params, log *zap.Logger) *Modifier {
	return &Modifier{Params: p, hero: hero, log: log}
}

// ComponentKind returns ModifierKind.
func (m *Modifier) ComponentKind() string {
	return ModifierKind
}

// Clone copies the modifier onto an instantiated collectible.
func (m *Modifier) Clone() host.Component {
	c := *m
	return &c
}

// Start injects the range action.
func (m *Modifier) Start(owner host.GameObject) {
	m.Inject(owner)
}

// Inject adds the range action to owner's Collectable state unless it is
// already there. It returns false when owner has no such state.
func (m *Modifier) Inject(owner host.GameObject) bool {
	st := host.FindState(owner, CollectableState)
	if st == nil {
		return false
	}

	if findAction(st) != nil {
		return true
	}

	actions := append([]host.Action{}, st.Actions()...)
	actions = append(actions, NewRangeCollectAction(m.log))
	st.SetActions(actions)

	m.log.Debug("range action added", zap.String("object", owner.Name()))

	return true
}

// OnDestroy removes the range action.
func (m *Modifier) OnDestroy(owner host.GameObject) {
	st := host.FindState(owner, CollectableState)
	if st == nil || findAction(st) == nil {
		return
	}

	kept := make([]host.Action, 0, len(st.Actions()))

	for _, a := range st.Actions() {
		if _, ok := a.(*RangeCollectAction); !ok {
			kept = append(kept, a)
		}
	}

	st.SetActions(kept)
}

// Action returns the range action of owner, or nil.
func Action(owner host.GameObject) *RangeCollectAction {
	st := host.FindState(owner, CollectableState)
	if st == nil {
		return nil
	}

	return findAction(st)
}

func findAction(st host.State) *RangeCollectAction {
	for _, a := range st.Actions() {
		if r, ok := a.(*RangeCollectAction); ok {
			return r
		}
	}

	return nil
}

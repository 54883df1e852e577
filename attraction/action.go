package attraction

import (
	"github.com/sarchlab/rebalance/host"
	"go.uber.org/zap"
)

// CheckInterval is the time between two range checks, in seconds.
const CheckInterval = 0.1

// stopSpeed is the speed under which a collectible leaving range stops dead.
const stopSpeed = 0.1

// RangeCollectAction pulls its collectible toward the hero while the hero is
// within range. It reads its parameters from the Modifier on its object.
type RangeCollectAction struct {
	log *zap.Logger

	inRange  bool
	elapsed  float64
	finished bool
}

// NewRangeCollectAction creates the action.
func NewRangeCollectAction(log *zap.Logger) *RangeCollectAction {
	return &RangeCollectAction{log: log}
}

// InRange returns true while the hero is within range.
func (a *RangeCollectAction) InRange() bool {
	return a.inRange
}

// Finished returns true once the action gave up on its object.
func (a *RangeCollectAction) Finished() bool {
	return a.finished
}

// CloneAction gives each copy its own range state.
func (a *RangeCollectAction) CloneAction() host.Action {
	return NewRangeCollectAction(a.log)
}

// OnEnter checks that the action has a hero to pull toward and a body to
// move.
func (a *RangeCollectAction) OnEnter(owner host.GameObject) {
	a.inRange = false
	a.elapsed = 0
	a.finished = false

	m, body := a.resolve(owner)
	if m == nil || m.hero.Object() == nil {
		a.finished = true
		return
	}

	if body == nil {
		a.log.Warn("collectible has no body, cannot attract",
			zap.String("object", owner.Name()))

		a.finished = true

		return
	}

	a.log.Debug("range check started", zap.Float64("range", m.Range))
}

// OnUpdate steers the body once every CheckInterval.
func (a *RangeCollectAction) OnUpdate(owner host.GameObject, dt float64) {
	if a.finished {
		return
	}

	m, body := a.resolve(owner)
	if m == nil || body == nil {
		a.finished = true
		return
	}

	heroObj := m.hero.Object()
	if heroObj == nil {
		a.finished = true
		return
	}

	a.elapsed += dt
	if a.elapsed < CheckInterval {
		return
	}

	a.elapsed = 0

	offset := heroObj.Position().Sub(owner.Position())
	if offset.Len() <= m.Range {
		a.pull(body, host.Vec2{X: offset.X, Y: offset.Y}, m, dt)
		return
	}

	if a.inRange {
		a.inRange = false
		a.release(body, dt)
	}
}

func (a *RangeCollectAction) pull(
	body *host.Body,
	toHero host.Vec2,
	m *Modifier,
	dt float64,
) {
	a.inRange = true

	target := toHero.Normalized().Scale(m.MaxSpeed)
	change := target.Sub(body.Velocity)

	maxChange := m.Acceleration * dt
	if change.Len() > maxChange {
		change = change.Normalized().Scale(maxChange)
	}

	body.Velocity = body.Velocity.Add(change)

	if body.Velocity.Len() > m.MaxSpeed {
		body.Velocity = body.Velocity.Normalized().Scale(m.MaxSpeed)
	}
}

func (a *RangeCollectAction) release(body *host.Body, dt float64) {
	if body.Velocity.Len() > stopSpeed {
		body.Velocity = body.Velocity.Lerp(host.Vec2{}, 2*dt)
		return
	}

	body.Velocity = host.Vec2{}
}

// OnExit clears the range state.
func (a *RangeCollectAction) OnExit(host.GameObject) {
	a.inRange = false
	a.elapsed = 0
}

func (a *RangeCollectAction) resolve(owner host.GameObject) (*Modifier, *host.Body) {
	m, _ := owner.Component(ModifierKind).(*Modifier)
	body, _ := owner.Component(host.BodyKind).(*host.Body)

	return m, body
}

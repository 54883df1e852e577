package patching

import (
	"github.com/sarchlab/rebalance/host"
	"go.uber.org/zap"
)

// A Spawner creates the effect a spliced instruction stands for.
type Spawner interface {
	Spawn() error
}

// NoopAction replaces an instruction that must not run.
type NoopAction struct{}

// OnEnter does nothing.
func (a *NoopAction) OnEnter(host.GameObject) {}

// SpawnAction replaces the slash message with a spawn.
type SpawnAction struct {
	spawner Spawner
	log     *zap.Logger
}

// NewSpawnAction creates a spawn instruction bound to spawner.
func NewSpawnAction(spawner Spawner, log *zap.Logger) *SpawnAction {
	return &SpawnAction{spawner: spawner, log: log}
}

// OnEnter spawns. Failures are logged and never reach the host machine.
func (a *SpawnAction) OnEnter(host.GameObject) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("spawn instruction panicked", zap.Any("panic", r))
		}
	}()

	if err := a.spawner.Spawn(); err != nil {
		a.log.Debug("spawn instruction skipped", zap.Error(err))
	}
}

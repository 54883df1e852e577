// Package spawning prepares the pooled cross slash prefab and places copies
// of it in the scene when the hero's heavy attack fires.
package spawning

import (
	"errors"
	"fmt"

	"github.com/sarchlab/rebalance/config"
	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/sim/hooking"
	"go.uber.org/zap"
)

var (
	// ErrNotReady is returned when the host or the coordinator is not ready
	// to spawn.
	ErrNotReady = errors.New("not ready to spawn")

	// ErrNotPooled is returned when the prefab is not in the pool.
	ErrNotPooled = errors.New("prefab not pooled")

	// ErrNoHero is returned outside gameplay.
	ErrNoHero = errors.New("no hero")
)

// HookPosSpawn marks a spawned instance. The Item is a Context.
var HookPosSpawn = &hooking.HookPos{Name: "Spawn"}

// A Source holds pooled prefabs.
type Source interface {
	Get(name string) host.GameObject
}

// Context describes one spawned instance.
type Context struct {
	Object    host.GameObject
	Position  host.Vec3
	Rotation  host.Euler
	Imbuement host.Imbuement
	DotTicks  int
}

// Spawner places copies of the pooled prefab at the hero.
type Spawner struct {
	*hooking.HookableBase

	world     host.World
	hero      host.Hero
	equipment host.Equipment
	source    Source
	store     *config.Store
	ready     func() bool
	log       *zap.Logger

	name string
}

// NewSpawner creates a spawner for the pooled prefab called name. Spawning
// is refused while ready returns false.
func NewSpawner(
	world host.World,
	hero host.Hero,
	equipment host.Equipment,
	source Source,
	store *config.Store,
	ready func() bool,
	log *zap.Logger,
) *Spawner {
	return &Spawner{
		HookableBase: hooking.NewHookableBase(),
		world:        world,
		hero:         hero,
		equipment:    equipment,
		source:       source,
		store:        store,
		ready:        ready,
		log:          log.Named("spawner"),
		name:         config.CrossSlashPooled,
	}
}

// Spawn places one instance. Every failure is logged before it is returned.
func (s *Spawner) Spawn() error {
	ctx, err := s.spawn()
	if err != nil {
		s.log.Error("cannot spawn cross slash", zap.Error(err))
		return err
	}

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosSpawn,
		Item:   ctx,
	})

	return nil
}

func (s *Spawner) spawn() (Context, error) {
	if s.ready != nil && !s.ready() {
		return Context{}, ErrNotReady
	}

	prefab := s.source.Get(s.name)
	if prefab == nil {
		return Context{}, fmt.Errorf("%s: %w", s.name, ErrNotPooled)
	}

	heroObj := s.hero.Object()
	if heroObj == nil {
		return Context{}, ErrNoHero
	}

	ctx := Context{
		Position:  heroObj.Position(),
		Rotation:  s.facing(heroObj),
		Imbuement: s.hero.Imbuement(),
		DotTicks:  s.DotTicks(),
	}

	obj := s.world.Instantiate(prefab, ctx.Position, ctx.Rotation)
	obj.SetName(s.name)
	obj.SetParent(nil)
	obj.SetActive(true)

	for _, d := range host.Damagers(obj) {
		d.Element = ctx.Imbuement.Element
		d.DotTicks = ctx.DotTicks
	}

	ctx.Object = obj

	return ctx, nil
}

func (s *Spawner) facing(heroObj host.GameObject) host.Euler {
	x := heroObj.LocalScale().X

	switch {
	case x < 0:
		return host.Mirrored
	case x == 0:
		s.log.Warn("hero facing unknown, spawning unmirrored")
		return host.Identity
	default:
		return host.Identity
	}
}

// DotTicks returns the damage-over-time ticks the equipped modifier items
// stack onto a spawned instance.
func (s *Spawner) DotTicks() int {
	ticks := 0

	for id, n := range s.store.Load().Policy.ModifierItems {
		if s.equipment.IsEquipped(id) {
			ticks += n
		}
	}

	return ticks
}

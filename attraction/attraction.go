package attraction

import (
	"fmt"
	"strings"

	"github.com/sarchlab/rebalance/config"
	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/sim/timing"
	"go.uber.org/zap"
)

// A Getter looks up cached content.
type Getter interface {
	Get(kind host.Kind, name string) (host.Object, error)
}

// Attraction keeps a Modifier on the collectible prefab and on every live
// collectible.
type Attraction struct {
	world  host.World
	cache  Getter
	hero   host.Hero
	engine *timing.Engine
	owner  timing.Owner
	log    *zap.Logger

	name string
}

// New creates the feature. Its deferred instance walks run as continuations
// of owner.
func New(
	world host.World,
	cache Getter,
	hero host.Hero,
	engine *timing.Engine,
	owner timing.Owner,
	log *zap.Logger,
) *Attraction {
	return &Attraction{
		world:  world,
		cache:  cache,
		hero:   hero,
		engine: engine,
		owner:  owner,
		log:    log.Named("attraction"),
		name:   config.SilkBundle,
	}
}

// ParamsOf extracts the attraction tunables of cfg.
func ParamsOf(cfg config.Config) Params {
	return Params{
		Range:        cfg.CollectRange,
		MaxSpeed:     cfg.CollectMaxSpeed,
		Acceleration: cfg.CollectAcceleration,
	}
}

// Apply attaches or updates the modifier on the prefab now and on live
// instances one frame later.
func (a *Attraction) Apply(p Params) error {
	prefab, err := a.prefab()
	if err != nil {
		a.log.Error("cannot apply attraction", zap.Error(err))
		return err
	}

	a.attach(prefab, p)
	a.log.Info("attraction applied", zap.Float64("range", p.Range))

	a.later("attraction.instances", func() {
		n := 0

		for _, obj := range a.Instances() {
			a.attach(obj, p)
			n++
		}

		a.log.Info("live collectibles modified", zap.Int("count", n))
	})

	return nil
}

// Update changes the parameters of existing modifiers without adding new
// ones.
func (a *Attraction) Update(p Params) {
	if prefab, err := a.prefab(); err == nil {
		if m := modifierOf(prefab); m != nil {
			m.Params = p
		}
	}

	a.later("attraction.update", func() {
		for _, obj := range a.Instances() {
			if m := modifierOf(obj); m != nil {
				m.Params = p
			}
		}
	})
}

// Reset removes the modifier from the prefab now and from live instances one
// frame later.
func (a *Attraction) Reset() error {
	prefab, err := a.prefab()
	if err != nil {
		a.log.Error("cannot reset attraction", zap.Error(err))
		return err
	}

	detach(prefab)

	a.later("attraction.reset", func() {
		n := 0

		for _, obj := range a.Instances() {
			if detach(obj) {
				n++
			}
		}

		a.log.Info("live collectibles restored", zap.Int("count", n))
	})

	return nil
}

// Instances returns the collectibles placed in the scene.
func (a *Attraction) Instances() []host.GameObject {
	return a.world.FindObjects(func(o host.GameObject) bool {
		return o.InScene() && strings.Contains(o.Name(), a.name)
	})
}

func (a *Attraction) prefab() (host.GameObject, error) {
	obj, err := a.cache.Get(host.KindGameObject, a.name)
	if err != nil {
		return nil, err
	}

	prefab, ok := obj.(host.GameObject)
	if !ok {
		return nil, fmt.Errorf("%s is a %s, not a game object", a.name, obj.Kind())
	}

	return prefab, nil
}

func (a *Attraction) attach(obj host.GameObject, p Params) {
	m := modifierOf(obj)
	if m == nil {
		m = NewModifier(a.hero, p, a.log)
		obj.AddComponent(m)
	}

	m.Params = p

	if obj.InScene() {
		m.Inject(obj)
	}
}

func detach(obj host.GameObject) bool {
	m := modifierOf(obj)
	if m == nil {
		return false
	}

	obj.RemoveComponent(m)

	return true
}

func (a *Attraction) later(name string, fn func()) {
	a.engine.Start(a.owner, timing.NewTask(name).WaitFrames(1).Do(fn))
}

func modifierOf(obj host.GameObject) *Modifier {
	m, _ := obj.Component(ModifierKind).(*Modifier)
	return m
}

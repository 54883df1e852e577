package spawning

import (
	"errors"
	"fmt"
	"math"

	"github.com/sarchlab/rebalance/config"
	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/patching"
	"go.uber.org/zap"
)

// A Getter looks up cached content.
type Getter interface {
	Get(kind host.Kind, name string) (host.Object, error)
}

// A Pool stores prepared prefabs.
type Pool interface {
	Source
	Store(name string, obj host.GameObject)
	IsCached(name string) bool
}

// Preparer derives the pooled cross slash prefab from the cached source and
// keeps its scale and damage in line with the configuration.
type Preparer struct {
	world host.World
	cache Getter
	pool  Pool
	stun  *patching.StunTable
	log   *zap.Logger

	source string
	name   string
}

// NewPreparer creates a preparer. The stun table is shared with the normal
// attack multipliers.
func NewPreparer(
	world host.World,
	cache Getter,
	pool Pool,
	stun *patching.StunTable,
	log *zap.Logger,
) *Preparer {
	return &Preparer{
		world:  world,
		cache:  cache,
		pool:   pool,
		stun:   stun,
		log:    log.Named("preparer"),
		source: config.CrossSlashSource,
		name:   config.CrossSlashPooled,
	}
}

// BaseDamage returns the policy damage for the given nail upgrade count.
func BaseDamage(p config.Policy, upgrades int) float64 {
	return p.BaseDamage + p.DamagePerUpgrade*float64(upgrades)
}

// Prepare builds the prefab and stores it in the pool. It does nothing when
// the prefab is already pooled.
func (p *Preparer) Prepare(cfg config.Config, upgrades int) error {
	if p.pool.IsCached(p.name) {
		return nil
	}

	src, err := p.cache.Get(host.KindGameObject, p.source)
	if err != nil {
		p.log.Error("cannot prepare prefab", zap.Error(err))
		return err
	}

	srcObj, ok := src.(host.GameObject)
	if !ok {
		err := fmt.Errorf("%s is a %s: %w", p.source, src.Kind(), errors.ErrUnsupported)
		p.log.Error("cannot prepare prefab", zap.Error(err))

		return err
	}

	obj := p.world.Instantiate(srcObj, host.Vec3{}, host.Identity)
	obj.SetName(p.name)
	obj.SetActive(false)
	obj.SetLocalScale(uniform(cfg.CrossSlashScale))

	base := int(math.Round(BaseDamage(cfg.Policy, upgrades)))

	for _, d := range host.Damagers(obj) {
		d.UseNailDamage = true
		d.UseHeroDamageAffectors = true
		d.IsHeroDamage = true
		d.AttackType = host.AttackNail
		d.DamageValue = base
	}

	p.pool.Store(p.name, obj)

	p.log.Info("prefab prepared",
		zap.String("name", p.name),
		zap.Int("damagers", len(host.Damagers(obj))))

	return nil
}

// UpdateScale sets the prefab's uniform scale.
func (p *Preparer) UpdateScale(scale float64) error {
	obj := p.pool.Get(p.name)
	if obj == nil {
		return fmt.Errorf("%s: %w", p.name, ErrNotPooled)
	}

	obj.SetLocalScale(uniform(scale))

	return nil
}

// UpdateDamage rewrites the prefab's damage for the upgrade count and scales
// its stun from the learned base.
func (p *Preparer) UpdateDamage(
	policy config.Policy,
	upgrades int,
	multiplier, stun float64,
) error {
	obj := p.pool.Get(p.name)
	if obj == nil {
		return fmt.Errorf("%s: %w", p.name, ErrNotPooled)
	}

	damage := int(math.Round(BaseDamage(policy, upgrades) * multiplier))

	for _, d := range host.Damagers(obj) {
		d.DamageValue = damage
		d.DamageDealt = damage
		p.stun.Scale(d, stun)
	}

	p.log.Debug("prefab damage updated",
		zap.Int("damage", damage), zap.Int("upgrades", upgrades))

	return nil
}

func uniform(s float64) host.Vec3 {
	return host.Vec3{X: s, Y: s, Z: s}
}

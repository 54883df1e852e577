package interception

import (
	"math"
	"math/rand/v2"

	"github.com/sarchlab/rebalance/config"
	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/sim/hooking"
	"go.uber.org/zap"
)

// CritHook replaces the host's crit roll for the archetype's nail hits.
type CritHook struct {
	store     *config.Store
	equipment host.Equipment
	active    func() bool
	roll      func() float64
	log       *zap.Logger
}

// NewCritHook creates the hook. It does nothing while active returns false.
func NewCritHook(
	store *config.Store,
	equipment host.Equipment,
	active func() bool,
	log *zap.Logger,
) *CritHook {
	return &CritHook{
		store:     store,
		equipment: equipment,
		active:    active,
		roll:      rand.Float64,
		log:       log.Named("crit"),
	}
}

// WithRoll replaces the random source. roll returns values in [0, 1).
func (h *CritHook) WithRoll(roll func() float64) *CritHook {
	h.roll = roll
	return h
}

// Methods returns the damage scaling method.
func (h *CritHook) Methods() []host.MethodID {
	return []host.MethodID{host.MethodApplyDamageScaling}
}

// Func rolls the crit before the host scales the damage.
func (h *CritHook) Func(ctx hooking.HookCtx) {
	defer guard(h.log, "crit")

	if ctx.Pos != host.HookPosBefore {
		return
	}

	hit, ok := ctx.Item.(*host.HitInstance)
	if !ok || hit == nil {
		return
	}

	if !h.active() {
		return
	}

	cfg := h.store.Load()
	if !cfg.EnableReaperCrit || !h.equipment.IsEquipped(cfg.Host.CrestID) {
		return
	}

	if !hit.IsHeroDamage || !hit.IsNailDamage() {
		return
	}

	vanilla := hit.CriticalHit
	hit.CriticalHit = false

	if h.roll() >= cfg.CritChance/100 {
		if vanilla {
			h.log.Debug("vanilla crit overridden")
		}

		return
	}

	hit.CriticalHit = true

	if v := cfg.Policy.VanillaCritMultiplier; v > 0 {
		hit.DamageDealt = int(math.Round(float64(hit.DamageDealt) * cfg.CritDamage / v))
	}

	h.log.Debug("crit",
		zap.Int("damage", hit.DamageDealt),
		zap.Float64("multiplier", cfg.CritDamage))
}

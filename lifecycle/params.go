package lifecycle

import (
	"github.com/sarchlab/rebalance/attraction"
	"github.com/sarchlab/rebalance/config"
	"github.com/sarchlab/rebalance/reactive"
)

// Tracked parameter ids.
const (
	ParamCrossSlashScale      = "cross_slash_scale"
	ParamCrossSlashDamage     = "cross_slash_damage"
	ParamNailUpgrades         = "nail_upgrades"
	ParamNormalMultiplier     = "normal_attack_multiplier"
	ParamDownSlashMultiplier  = "down_slash_multiplier"
	ParamStunMultiplier       = "stun_damage_multiplier"
	ParamEnableCrossSlash     = "enable_cross_slash"
	ParamEnableSilkAttraction = "enable_silk_attraction"
	ParamCollectRange         = "collect_range"
	ParamCollectMaxSpeed      = "collect_max_speed"
	ParamCollectAcceleration  = "collect_acceleration"
)

func attractionParams(cfg config.Config) attraction.Params {
	return attraction.ParamsOf(cfg)
}

// trackParams binds every tunable to the handlers that apply it.
func (c *Coordinator) trackParams() {
	t := c.tracker
	cfg := func() config.Config { return c.store.Load() }

	settled := reactive.WithGate(func() bool {
		return c.session != nil && c.session.settled
	})
	attracting := reactive.WithGate(func() bool {
		return c.session != nil && c.session.settled && cfg().EnableSilkAttraction
	})

	t.Track(ParamCrossSlashScale, func() float64 { return cfg().CrossSlashScale })
	t.Track(ParamCrossSlashDamage, func() float64 { return cfg().CrossSlashDamage })
	t.Track(ParamNailUpgrades, func() float64 {
		return float64(c.host.Hero().NailUpgrades())
	})
	t.Track(ParamNormalMultiplier, func() float64 { return cfg().NormalAttackMultiplier })
	t.Track(ParamDownSlashMultiplier, func() float64 { return cfg().DownSlashMultiplier })
	t.Track(ParamStunMultiplier, func() float64 { return cfg().StunDamageMultiplier })
	t.Track(ParamEnableCrossSlash, func() float64 {
		return reactive.Bool(cfg().EnableCrossSlash)
	})
	t.Track(ParamEnableSilkAttraction, func() float64 {
		return reactive.Bool(cfg().EnableSilkAttraction)
	}, settled)
	t.Track(ParamCollectRange, func() float64 { return cfg().CollectRange }, attracting)
	t.Track(ParamCollectMaxSpeed, func() float64 { return cfg().CollectMaxSpeed }, attracting)
	t.Track(ParamCollectAcceleration, func() float64 {
		return cfg().CollectAcceleration
	}, attracting)

	t.On(ParamCrossSlashScale, func(string, float64, float64) { c.updatePrefabScale() })

	for _, id := range []string{
		ParamCrossSlashDamage, ParamNailUpgrades, ParamStunMultiplier,
	} {
		t.On(id, func(string, float64, float64) { c.updatePrefabDamage() })
	}

	for _, id := range []string{
		ParamNormalMultiplier, ParamDownSlashMultiplier, ParamStunMultiplier,
	} {
		t.On(id, func(string, float64, float64) { c.modifyNormal() })
	}

	t.On(ParamEnableCrossSlash, func(_ string, _, v float64) {
		if v == 1 {
			c.applyHeavy()
		} else {
			c.rollbackHeavy()
		}
	})

	t.On(ParamEnableSilkAttraction, func(_ string, _, v float64) {
		if v == 1 {
			c.applySilk(cfg())
		} else {
			c.resetSilk()
		}
	})

	for _, id := range []string{
		ParamCollectRange, ParamCollectMaxSpeed, ParamCollectAcceleration,
	} {
		t.On(id, func(string, float64, float64) {
			c.attraction.Update(attractionParams(cfg()))
		})
	}

	for _, id := range t.IDs() {
		t.On(id, func(id string, old, v float64) {
			c.emit(HookPosParamApplied, ParamChange{ID: id, Old: old, Value: v})
		})
	}
}

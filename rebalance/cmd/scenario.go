package cmd

import (
	"context"
	"time"

	"github.com/sarchlab/rebalance/config"
	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/host/hostsim"
	"github.com/sarchlab/rebalance/lifecycle"
	"github.com/sarchlab/rebalance/sim/hooking"
	"github.com/sarchlab/rebalance/spawning"
	"go.uber.org/zap"
)

// Scenes and items the scripted session uses.
const (
	gameplayScene = "Bone_01"
	nextScene     = "Bone_02"
	otherCrest    = "Hunter"
	poisonItem    = "Poison Pouch"
)

// A step is one scripted action followed by idle frames.
type step struct {
	name   string
	do     func(r *runner)
	frames int
}

// Summary reports what a scripted session did.
type Summary struct {
	Frames         uint64           `json:"frames"`
	Sessions       int              `json:"sessions"`
	Spawns         int              `json:"spawns"`
	VanillaSlashes int              `json:"vanilla_slashes"`
	ParamsApplied  int              `json:"params_applied"`
	PatchFailures  int              `json:"patch_failures"`
	SlashDamage    []int            `json:"slash_damage"`
	BindDuration   float64          `json:"bind_duration"`
	Status         lifecycle.Status `json:"status"`
}

type runner struct {
	sim   *hostsim.Sim
	coord *lifecycle.Coordinator
	dt    float64
	log   *zap.Logger

	onFrame func()
	summary Summary
}

func newRunner(
	sim *hostsim.Sim,
	coord *lifecycle.Coordinator,
	dt float64,
	log *zap.Logger,
) *runner {
	r := &runner{sim: sim, coord: coord, dt: dt, log: log.Named("scenario")}
	coord.AcceptHook(hooking.HookFunc(r.count))

	return r
}

func (r *runner) count(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case lifecycle.HookPosSessionStarted:
		r.summary.Sessions++
	case spawning.HookPosSpawn:
		r.summary.Spawns++
	case lifecycle.HookPosParamApplied:
		r.summary.ParamsApplied++
	case lifecycle.HookPosPatch:
		if e, ok := ctx.Item.(lifecycle.PatchEvent); ok && e.Err != nil {
			r.summary.PatchFailures++
		}
	}
}

func (r *runner) script() []step {
	crest := r.coord.Config().Host.CrestID
	title := r.coord.Config().Host.TitleScene

	return []step{
		{"boot", nil, 5},
		{"title", func(r *runner) { r.sim.LoadScene(title) }, 5},
		{"enter game", func(r *runner) { r.sim.LoadScene(gameplayScene) }, 10},
		{"equip crest", func(r *runner) { r.sim.SimEquipment().EquipCrest(crest) }, 10},
		{"strike", (*runner).strike, 5},
		{"heavy attack left", func(r *runner) { r.attack(-1) }, 5},
		{"settle", nil, int(2*lifecycle.SettleDelay/r.dt) + 1},
		{"drop silk", (*runner).dropSilk, int(1/r.dt) + 1},
		{"bind", func(r *runner) {
			r.sim.SimHero().Bind()
			r.summary.BindDuration = r.sim.SimHero().ReaperModeDuration()
		}, 5},
		{"poison attack", func(r *runner) {
			r.sim.SimHero().SetImbuement(host.Imbuement{Element: "Poison"})
			r.sim.SimEquipment().Equip(poisonItem)
			r.attack(1)
		}, 5},
		{"upgrade nail", func(r *runner) { r.sim.SimHero().SetNailUpgrades(2) }, 5},
		{"scale up", func(r *runner) {
			cfg := r.coord.Config()
			cfg.CrossSlashScale *= 1.5
			r.coord.ApplyConfig(cfg)
		}, 5},
		{"strike upgraded", (*runner).strike, 5},
		{"swap crest", func(r *runner) {
			r.sim.SimEquipment().EquipCrest(otherCrest)
			r.attack(1)
		}, 5},
		{"restore crest", func(r *runner) { r.sim.SimEquipment().EquipCrest(crest) }, 10},
		{"next scene", func(r *runner) { r.sim.LoadScene(nextScene) }, 10},
		{"heavy attack after scene change", func(r *runner) { r.attack(1) }, 5},
		{"return to title", func(r *runner) { r.sim.LoadScene(title) }, 5},
	}
}

// play runs the script and returns early when ctx is done.
func (r *runner) play(ctx context.Context) error {
	for _, s := range r.script() {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.log.Debug("step", zap.String("name", s.name))

		if s.do != nil {
			s.do(r)
		}

		if err := r.frames(ctx, s.frames); err != nil {
			return err
		}
	}

	r.finish()

	return nil
}

// idle keeps the frame loop running. With n <= 0 it runs until ctx is done.
// Frames are paced to wall time when realtime is set.
func (r *runner) idle(ctx context.Context, n int, realtime bool) error {
	var tick <-chan time.Time

	if realtime {
		ticker := time.NewTicker(time.Duration(r.dt * float64(time.Second)))
		defer ticker.Stop()

		tick = ticker.C
	}

	for i := 0; n <= 0 || i < n; i++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				r.finish()
				return nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			break
		}

		r.step()
	}

	r.finish()

	return nil
}

func (r *runner) frames(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.step()
	}

	return nil
}

func (r *runner) step() {
	r.sim.Step(r.dt)

	if r.onFrame != nil {
		r.onFrame()
	}
}

func (r *runner) finish() {
	r.summary.Frames = r.sim.Frames()
	r.summary.VanillaSlashes = r.sim.SimHero().VanillaSlashes
	r.summary.Status = r.coord.Status()
}

func (r *runner) attack(facing float64) {
	r.sim.SimHero().Face(facing)
	r.sim.SimHero().HeavyAttack()
}

// strike attacks and hits an enemy with the newest cross slash.
func (r *runner) strike() {
	r.attack(1)

	slashes := r.sim.World().FindObjects(func(o host.GameObject) bool {
		return o.Name() == config.CrossSlashPooled && o.Parent() == nil && o.InScene()
	})
	if len(slashes) == 0 {
		r.log.Warn("no cross slash to strike with")
		return
	}

	damagers := host.Damagers(slashes[len(slashes)-1])
	if len(damagers) == 0 {
		return
	}

	damage, _ := r.sim.SimHero().Hit(damagers[0], false)
	r.summary.SlashDamage = append(r.summary.SlashDamage, damage)
}

func (r *runner) dropSilk() {
	hero := r.sim.Hero().Object()
	if hero == nil {
		return
	}

	pos := hero.Position().Add(host.Vec3{X: 4, Y: 1})
	if r.sim.SpawnSilk(config.SilkBundle, pos) == nil {
		r.log.Warn("no silk prefab loaded")
	}
}

package hostsim

import (
	"math"

	"github.com/sarchlab/rebalance/host"
)

// Vanilla balance values of the simulated host.
const (
	VanillaBindDuration   = 5.0
	VanillaCritMultiplier = 1.5
)

type reaperState struct {
	ReaperModeDurationLeft float32
	active                 bool
}

// HeroController is the host's private controller state.
type HeroController struct {
	reaperState reaperState
	binds       int
}

// Hero is the simulated player character.
type Hero struct {
	sim        *Sim
	obj        *GameObject
	controller *HeroController

	imbuement host.Imbuement
	upgrades  int

	// VanillaSlashes counts heavy attacks the host resolved itself.
	VanillaSlashes int
}

func newHero(s *Sim) *Hero {
	h := &Hero{sim: s, controller: &HeroController{}}
	h.build()

	return h
}

// build creates the hero rig: the attack hierarchy and the Nail Arts machine.
func (h *Hero) build() {
	w := h.sim.world

	o := w.NewObject("Hero_Hornet")
	w.KeepAcrossScenes(o)

	attacks := o.AddChild("Attacks")
	scythe := attacks.AddChild("Scythe")

	for _, name := range []string{"SlashAlt", "Slash", "UpSlash", "DownSlash New"} {
		s := scythe.AddChild(name)
		s.AddComponent(&host.Damager{
			DamageMultiplier: 1,
			StunDamage:       1,
			IsHeroDamage:     true,
			UseNailDamage:    true,
			AttackType:       host.AttackNail,
		})
	}

	heavy := attacks.AddChild("HeavySlash")
	heavy.SetActive(false)

	o.AddStateMachine("Nail Arts",
		NewState("Antic", &Wait{Seconds: 0.2}),
		NewState("Do Slash",
			&ActivateGameObject{Child: "Attacks/HeavySlash"},
			&SendMessage{
				Function: "OnSlashStarting",
				Receiver: func(host.GameObject) { h.VanillaSlashes++ },
			},
			&Wait{Seconds: 0.3},
		),
		NewState("Recover"),
	)

	o.AddStateMachine("Sprint", NewState("Start"))

	h.obj = o
}

// Object returns the hero controller object, or nil if the hero is gone.
func (h *Hero) Object() host.GameObject {
	if h.obj == nil || !h.obj.alive {
		return nil
	}

	return h.obj
}

// GameObject returns the concrete hero object.
func (h *Hero) GameObject() *GameObject {
	return h.obj
}

// Controller returns the private controller.
func (h *Hero) Controller() any {
	return h.controller
}

// Imbuement returns the active imbuement.
func (h *Hero) Imbuement() host.Imbuement {
	return h.imbuement
}

// SetImbuement changes the active imbuement.
func (h *Hero) SetImbuement(i host.Imbuement) {
	h.imbuement = i
}

// NailUpgrades returns the player's nail upgrade count.
func (h *Hero) NailUpgrades() int {
	return h.upgrades
}

// SetNailUpgrades changes the nail upgrade count.
func (h *Hero) SetNailUpgrades(n int) {
	h.upgrades = n
}

// Face turns the hero left (negative) or right (positive).
func (h *Hero) Face(x float64) {
	s := h.obj.LocalScale()
	s.X = x
	h.obj.SetLocalScale(s)
}

// HeavyAttack runs the Nail Arts machine through its slash.
func (h *Hero) HeavyAttack() {
	m := h.obj.Machine("Nail Arts")
	m.Enter("Antic")
	m.Enter("Do Slash")
	m.Enter("Recover")
	h.obj.Find("Attacks/HeavySlash").SetActive(false)
}

// Bind completes a bind, which starts reaper mode.
func (h *Hero) Bind() {
	h.sim.interceptor.Call(host.MethodBindCompleted, h.controller, nil, func() {
		h.controller.binds++
		h.controller.reaperState.active = true
		h.controller.reaperState.ReaperModeDurationLeft = VanillaBindDuration
	})
}

// ReaperModeDuration returns the remaining reaper mode time.
func (h *Hero) ReaperModeDuration() float64 {
	return float64(h.controller.reaperState.ReaperModeDurationLeft)
}

// Hit resolves a hit from damager and returns the damage the enemy takes.
// The rolled vanilla crit is applied before the hooks run.
func (h *Hero) Hit(d *host.Damager, vanillaCrit bool) (int, *host.HitInstance) {
	hit := &host.HitInstance{
		IsHeroDamage: d.IsHeroDamage,
		AttackType:   d.AttackType,
		NailTag:      d.UseNailDamage,
		CriticalHit:  vanillaCrit,
		DamageDealt:  d.DamageDealt,
		Multiplier:   d.DamageMultiplier,
	}

	if hit.DamageDealt == 0 {
		hit.DamageDealt = d.DamageValue
	}

	var damage int

	h.sim.interceptor.Call(host.MethodApplyDamageScaling, hit, &damage, func() {
		scaled := float64(hit.DamageDealt) * hit.Multiplier
		if hit.CriticalHit {
			scaled *= VanillaCritMultiplier
		}

		damage = int(math.Round(scaled))
	})

	return damage, hit
}

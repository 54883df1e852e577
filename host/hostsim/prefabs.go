package hostsim

import "github.com/sarchlab/rebalance/host"

// CrossSlashPrefab builds a cross slash effect with two damaging halves.
func CrossSlashPrefab(w *World, name string) *GameObject {
	p := w.NewPrefab(name)

	for _, half := range []string{"Damager1", "Damager2"} {
		d := p.AddChild(half)
		d.AddComponent(&host.Damager{
			DamageMultiplier: 1,
			StunDamage:       1,
			AttackType:       host.AttackGeneric,
			DamageValue:      20,
			DamageDealt:      20,
		})
	}

	return p
}

// SilkBundlePrefab builds a collectible that drifts with a body and waits in
// its Collectable state.
func SilkBundlePrefab(w *World, name string) *GameObject {
	p := w.NewPrefab(name)
	p.AddComponent(&host.Body{})
	p.AddStateMachine("Control",
		NewState("Init"),
		NewState("Collectable", &Wait{}),
		NewState("Collected"),
	)

	return p
}

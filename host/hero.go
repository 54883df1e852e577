package host

// Imbuement is the transient elemental state of the hero.
type Imbuement struct {
	Element string
}

// Hero is the player character.
type Hero interface {
	// Object returns the hero controller object, or nil outside gameplay.
	Object() GameObject

	// Controller returns the host's own controller value, for private field
	// access.
	Controller() any

	Imbuement() Imbuement
	NailUpgrades() int
}

// Equipment answers equipment status queries.
type Equipment interface {
	IsEquipped(id string) bool
}

// HitInstance describes one hit before the host scales its damage.
type HitInstance struct {
	IsHeroDamage bool
	AttackType   AttackType
	NailTag      bool
	CriticalHit  bool
	DamageDealt  int
	Multiplier   float64
}

// IsNailDamage returns true for nail tagged hits and nail attacks.
func (h *HitInstance) IsNailDamage() bool {
	return h.NailTag || h.AttackType == AttackNail
}

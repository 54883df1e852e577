package host

// A Component is data or behaviour attached to a GameObject.
type Component interface {
	ComponentKind() string

	// Clone returns the copy placed on instantiated objects.
	Clone() Component
}

// A Behaviour is a component the host starts once its object is active in a
// scene.
type Behaviour interface {
	Component
	Start(owner GameObject)
}

// A Destroyable component is told when it is removed.
type Destroyable interface {
	Component
	OnDestroy(owner GameObject)
}

// AttackType classifies a hit.
type AttackType int

// Attack types.
const (
	AttackGeneric AttackType = iota
	AttackNail
	AttackHeavy
	AttackSpell
)

// String returns the host name of the attack type.
func (t AttackType) String() string {
	switch t {
	case AttackNail:
		return "Nail"
	case AttackHeavy:
		return "Heavy"
	case AttackSpell:
		return "Spell"
	default:
		return "Generic"
	}
}

// DamagerKind is the component kind of Damager.
const DamagerKind = "DamageEnemies"

// Damager deals damage to enemies its object touches.
type Damager struct {
	DamageMultiplier float64
	StunDamage       float64

	UseNailDamage          bool
	UseHeroDamageAffectors bool
	IsHeroDamage           bool
	AttackType             AttackType

	// DamageValue is the value of the damage asset the damager reads.
	DamageValue int
	DamageDealt int

	Element  string
	DotTicks int
}

// ComponentKind returns DamagerKind.
func (d *Damager) ComponentKind() string {
	return DamagerKind
}

// Clone copies the damager.
func (d *Damager) Clone() Component {
	c := *d
	return &c
}

// BodyKind is the component kind of Body.
const BodyKind = "Rigidbody2D"

// Body gives an object a velocity the host integrates every frame.
type Body struct {
	Velocity Vec2
}

// ComponentKind returns BodyKind.
func (b *Body) ComponentKind() string {
	return BodyKind
}

// Clone copies the body.
func (b *Body) Clone() Component {
	c := *b
	return &c
}

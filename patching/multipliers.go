package patching

import (
	"fmt"

	"github.com/sarchlab/rebalance/host"
	"go.uber.org/zap"
)

// StunTable remembers the stun magnitude each damager had before it was first
// scaled, so that scaling never compounds.
type StunTable struct {
	base map[*host.Damager]float64
}

// NewStunTable creates an empty table.
func NewStunTable() *StunTable {
	return &StunTable{base: make(map[*host.Damager]float64)}
}

// Scale sets the damager's stun to its learned base times m.
func (t *StunTable) Scale(d *host.Damager, m float64) float64 {
	b, ok := t.base[d]
	if !ok {
		b = d.StunDamage
		t.base[d] = b
	}

	d.StunDamage = b * m

	return d.StunDamage
}

// Base returns the learned base of d.
func (t *StunTable) Base(d *host.Damager) (float64, bool) {
	b, ok := t.base[d]
	return b, ok
}

// Len returns the number of damagers tracked.
func (t *StunTable) Len() int {
	return len(t.base)
}

// RestoreAll writes every base back and clears the table. It returns how many
// damagers were restored.
func (t *StunTable) RestoreAll() int {
	n := len(t.base)

	for d, b := range t.base {
		d.StunDamage = b
	}

	t.base = make(map[*host.Damager]float64)

	return n
}

// Multipliers sets the damage multipliers of the hero's normal attacks.
type Multipliers struct {
	locator  Locator
	path     string
	downName string
	stun     *StunTable
	log      *zap.Logger
}

// NewMultipliers creates the patch for the damagers under path. The child
// named downName gets the down slash multiplier.
func NewMultipliers(
	locator Locator,
	path, downName string,
	stun *StunTable,
	log *zap.Logger,
) *Multipliers {
	return &Multipliers{
		locator:  locator,
		path:     path,
		downName: downName,
		stun:     stun,
		log:      log.Named("multipliers"),
	}
}

// Apply assigns the multipliers and scales stun from the learned base.
func (m *Multipliers) Apply(normal, down, stun float64) error {
	root, err := m.root()
	if err != nil {
		m.log.Warn("cannot apply multipliers", zap.Error(err))
		return err
	}

	n := 0

	host.Walk(root, func(o host.GameObject) {
		d, ok := o.Component(host.DamagerKind).(*host.Damager)
		if !ok {
			return
		}

		if o.Name() == m.downName {
			d.DamageMultiplier = down
		} else {
			d.DamageMultiplier = normal
		}

		m.stun.Scale(d, stun)
		n++
	})

	m.log.Info("multipliers applied",
		zap.Float64("normal", normal),
		zap.Float64("down", down),
		zap.Float64("stun", stun),
		zap.Int("damagers", n))

	return nil
}

// Reset puts the multipliers back to 1 and restores every learned stun base.
func (m *Multipliers) Reset() error {
	root, err := m.root()
	if err == nil {
		for _, d := range host.Damagers(root) {
			d.DamageMultiplier = 1
		}
	}

	restored := m.stun.RestoreAll()
	m.log.Info("multipliers reset", zap.Int("stun_restored", restored))

	return err
}

func (m *Multipliers) root() (host.GameObject, error) {
	obj := m.locator.Object()
	if obj == nil {
		return nil, fmt.Errorf("controller object: %w", ErrTargetMissing)
	}

	root := obj.Find(m.path)
	if root == nil {
		return nil, fmt.Errorf("%s: %w", m.path, ErrTargetMissing)
	}

	return root, nil
}

package patching

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/host/hostsim"
	"go.uber.org/zap"
)

var _ = Describe("Multipliers", func() {
	var (
		sim    *hostsim.Sim
		stun   *StunTable
		mults  *Multipliers
		damage func(name string) *host.Damager
	)

	BeforeEach(func() {
		sim = hostsim.MakeBuilder().Build()
		stun = NewStunTable()
		mults = NewMultipliers(sim.Hero(),
			"Attacks/Scythe", "DownSlash New", stun, zap.NewNop())
		damage = func(name string) *host.Damager {
			obj := sim.Hero().Object().Find("Attacks/Scythe/" + name)
			return obj.Component(host.DamagerKind).(*host.Damager)
		}
	})

	It("should give the down slash its own multiplier", func() {
		Expect(mults.Apply(1.2, 1.5, 1)).To(Succeed())

		Expect(damage("Slash").DamageMultiplier).To(Equal(1.2))
		Expect(damage("UpSlash").DamageMultiplier).To(Equal(1.2))
		Expect(damage("DownSlash New").DamageMultiplier).To(Equal(1.5))
	})

	It("should scale stun from the learned base", func() {
		Expect(mults.Apply(1, 1, 2)).To(Succeed())
		Expect(mults.Apply(1, 1, 3)).To(Succeed())

		Expect(damage("Slash").StunDamage).To(Equal(3.0))
		Expect(stun.Len()).To(Equal(4))
	})

	It("should restore every field on reset", func() {
		Expect(mults.Apply(1.2, 1.5, 2)).To(Succeed())
		Expect(mults.Reset()).To(Succeed())

		for _, name := range []string{"SlashAlt", "Slash", "UpSlash", "DownSlash New"} {
			Expect(damage(name).DamageMultiplier).To(Equal(1.0))
			Expect(damage(name).StunDamage).To(Equal(1.0))
		}
		Expect(stun.Len()).To(Equal(0))
	})

	It("should report a missing attack tree", func() {
		m := NewMultipliers(sim.Hero(), "Attacks/Missing", "DownSlash New",
			stun, zap.NewNop())

		Expect(errors.Is(m.Apply(1, 1, 1), ErrTargetMissing)).To(BeTrue())
	})
})

var _ = Describe("StunTable", func() {
	It("should never compound", func() {
		t := NewStunTable()
		d := &host.Damager{StunDamage: 4}

		t.Scale(d, 1.5)
		t.Scale(d, 0.5)

		Expect(d.StunDamage).To(Equal(2.0))
		base, ok := t.Base(d)
		Expect(ok).To(BeTrue())
		Expect(base).To(Equal(4.0))
	})

	It("should restore all bases", func() {
		t := NewStunTable()
		a := &host.Damager{StunDamage: 1}
		b := &host.Damager{StunDamage: 2}
		t.Scale(a, 3)
		t.Scale(b, 3)

		Expect(t.RestoreAll()).To(Equal(2))
		Expect(a.StunDamage).To(Equal(1.0))
		Expect(b.StunDamage).To(Equal(2.0))
	})
})

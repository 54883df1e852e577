package lifecycle

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/rebalance/attraction"
	"github.com/sarchlab/rebalance/config"
	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/host/hostsim"
	"github.com/sarchlab/rebalance/sim/hooking"
	"github.com/sarchlab/rebalance/sim/timing"
	"github.com/sarchlab/rebalance/spawning"
	"go.uber.org/zap"
)

const dt = 0.02

var _ = Describe("Coordinator", func() {
	var (
		sim    *hostsim.Sim
		store  *config.Store
		c      *Coordinator
		events []hooking.HookCtx
	)

	run := func(frames int) {
		sim.Run(frames, dt)
	}

	enterGame := func() {
		sim.LoadScene("Menu_Title")
		sim.LoadScene("Bone_01")
	}

	settle := func() {
		run(int(SettleDelay/dt) + 10)
	}

	scytheDamager := func(name string) *host.Damager {
		obj := sim.Hero().Object().Find(ScythePath + "/" + name)
		return obj.Component(host.DamagerKind).(*host.Damager)
	}

	crossSlashes := func() []host.GameObject {
		return sim.World().FindObjects(func(o host.GameObject) bool {
			return o.Name() == config.CrossSlashPooled && o.InScene() &&
				o.Parent() == nil
		})
	}

	params := func() []string {
		var ids []string

		for _, e := range events {
			if e.Pos == HookPosParamApplied {
				ids = append(ids, e.Item.(ParamChange).ID)
			}
		}

		return ids
	}

	BeforeEach(func() {
		sim = hostsim.MakeBuilder().Build()
		sim.MountStandardBundles()
		store = config.NewStore(config.Defaults(), "")
		c = MakeBuilder().
			WithHost(sim).
			WithConfigStore(store).
			WithLogger(zap.NewNop()).
			Build()
		events = nil
		c.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			events = append(events, ctx)
		}))
		c.Start()
	})

	It("should bootstrap the cache once the host is ready", func() {
		Expect(c.Cache().IsInitialized()).To(BeTrue())
		Expect(c.Session()).To(BeNil())
	})

	It("should wait for a ready host", func() {
		sim = hostsim.MakeBuilder().WithReady(false).Build()
		sim.MountStandardBundles()
		c = MakeBuilder().WithHost(sim).Build()
		c.Start()
		run(3)
		Expect(c.Cache().IsInitialized()).To(BeFalse())

		sim.SetReady(true)
		run(1)

		Expect(c.Cache().IsInitialized()).To(BeTrue())
	})

	Context("without the crest", func() {
		It("should not start a session", func() {
			enterGame()
			run(5)

			Expect(c.Session()).To(BeNil())
			sim.SimHero().HeavyAttack()
			Expect(sim.SimHero().VanillaSlashes).To(Equal(1))
		})
	})

	Context("with the crest equipped in game", func() {
		BeforeEach(func() {
			enterGame()
			sim.SimEquipment().EquipCrest("Reaper")
			run(2)
		})

		It("should prepare and patch", func() {
			Expect(c.IsInitialized()).To(BeTrue())
			Expect(c.IsPrefabCached()).To(BeTrue())
			Expect(c.Splicer().Patched()).To(BeTrue())
			Expect(scytheDamager("Slash").DamageMultiplier).To(Equal(1.2))
			Expect(scytheDamager("DownSlash New").DamageMultiplier).To(Equal(1.5))
			Expect(scytheDamager("Slash").StunDamage).To(BeNumerically("~", 1.2, 1e-9))

			prefab := c.Pool().Get(config.CrossSlashPooled)
			for _, d := range host.Damagers(prefab) {
				Expect(d.DamageValue).To(Equal(28))
			}
		})

		It("should spawn a cross slash instead of the vanilla slash", func() {
			sim.SimHero().HeavyAttack()

			Expect(sim.SimHero().VanillaSlashes).To(Equal(0))
			Expect(crossSlashes()).To(HaveLen(1))

			spawns := 0
			for _, e := range events {
				if e.Pos == spawning.HookPosSpawn {
					spawns++
				}
			}
			Expect(spawns).To(Equal(1))
		})

		It("should set up attraction after settling", func() {
			silk, err := c.Get(host.KindGameObject, config.SilkBundle)
			Expect(err).NotTo(HaveOccurred())
			Expect(silk.(host.GameObject).Component(attraction.ModifierKind)).To(BeNil())

			settle()

			Expect(c.Session().Settled()).To(BeTrue())
			Expect(silk.(host.GameObject).Component(attraction.ModifierKind)).
				NotTo(BeNil())
		})

		It("should apply only the changed parameter", func() {
			settle()
			events = nil

			store.Update(func(cfg *config.Config) { cfg.CrossSlashScale = 2 })
			run(1)

			Expect(params()).To(Equal([]string{ParamCrossSlashScale}))
			prefab := c.Pool().Get(config.CrossSlashPooled)
			Expect(prefab.LocalScale()).To(Equal(host.Vec3{X: 2, Y: 2, Z: 2}))
		})

		It("should rederive damage when the nail is upgraded", func() {
			run(1)
			sim.SimHero().SetNailUpgrades(1)
			run(1)

			prefab := c.Pool().Get(config.CrossSlashPooled)
			for _, d := range host.Damagers(prefab) {
				Expect(d.DamageValue).To(Equal(48))
			}
		})

		It("should roll the splice back when cross slash is disabled", func() {
			store.Update(func(cfg *config.Config) { cfg.EnableCrossSlash = false })
			run(1)

			Expect(c.Splicer().Patched()).To(BeFalse())
			sim.SimHero().HeavyAttack()
			Expect(sim.SimHero().VanillaSlashes).To(Equal(1))

			store.Update(func(cfg *config.Config) { cfg.EnableCrossSlash = true })
			run(1)

			Expect(c.Splicer().Patched()).To(BeTrue())
		})

		It("should fire every handler on a forced update", func() {
			settle()
			events = nil

			Expect(c.ForceUpdateConfig()).To(Equal(11))
			Expect(params()).To(HaveLen(11))
		})

		It("should end the session when the crest is swapped", func() {
			sim.SimEquipment().EquipCrest("Hunter")

			Expect(c.Session()).To(BeNil())
			Expect(c.Splicer().Patched()).To(BeFalse())
			Expect(scytheDamager("Slash").DamageMultiplier).To(Equal(1.0))
			Expect(scytheDamager("Slash").StunDamage).To(Equal(1.0))

			sim.SimHero().HeavyAttack()
			Expect(sim.SimHero().VanillaSlashes).To(Equal(1))
		})

		It("should end the session when disabled", func() {
			settle()

			c.SetEnabled(false)

			Expect(c.Session()).To(BeNil())
			Expect(store.Load().EnableReaperBalance).To(BeFalse())
			Expect(c.ShouldApplyPatches()).To(BeFalse())

			silk, _ := c.Get(host.KindGameObject, config.SilkBundle)
			Expect(silk.(host.GameObject).Component(attraction.ModifierKind)).To(BeNil())

			c.SetEnabled(true)
			run(2)
			Expect(c.IsInitialized()).To(BeTrue())
		})

		It("should toggle through an applied configuration", func() {
			cfg := store.Load()
			cfg.EnableReaperBalance = false

			c.ApplyConfig(cfg)

			Expect(c.Enabled()).To(BeFalse())
			Expect(c.Session()).To(BeNil())
		})

		It("should clean up on the title scene and initialize again", func() {
			sim.LoadScene("Menu_Title")

			Expect(c.Session()).To(BeNil())
			Expect(c.Pool().Len()).To(Equal(0))
			Expect(c.IsPrefabCached()).To(BeFalse())
			Expect(c.IsInitialized()).To(BeFalse())

			sim.LoadScene("Bone_01")
			run(2)

			Expect(c.IsInitialized()).To(BeTrue())
			Expect(c.IsPrefabCached()).To(BeTrue())
		})

		It("should stop every continuation on the title scene", func() {
			settle()

			sim.LoadScene("Menu_Title")

			for _, owner := range []timing.Owner{
				OwnerContent, OwnerSession, OwnerAttraction,
			} {
				Expect(c.Engine().Running(owner)).To(Equal(0), string(owner))
			}

			run(2)

			Expect(c.IsInitialized()).To(BeFalse())
		})

		It("should keep the session across gameplay scenes", func() {
			id := c.Session().ID

			sim.LoadScene("Bone_02")
			run(2)

			Expect(c.Session().ID).To(Equal(id))
			Expect(c.IsPrefabCached()).To(BeTrue())
			sim.SimHero().HeavyAttack()
			Expect(crossSlashes()).To(HaveLen(1))
		})

		It("should ignore the intro scene", func() {
			events = nil

			sim.LoadScene("Pre_Menu_Intro")

			for _, e := range events {
				Expect(e.Pos).NotTo(BeIdenticalTo(HookPosScene))
			}
			Expect(c.Session()).NotTo(BeNil())
		})

		It("should report its status", func() {
			s := c.Status()

			Expect(s.Enabled).To(BeTrue())
			Expect(s.Session).To(Equal(c.Session().ID))
			Expect(s.HeavyPatched).To(BeTrue())
			Expect(s.Pooled).To(Equal([]string{config.CrossSlashPooled}))
		})
	})

	It("should apply all changes at once in an initialized session", func() {
		enterGame()
		sim.SimEquipment().EquipCrest("Reaper")
		events = nil

		t := c.ApplyAllChanges("test")

		Expect(t).NotTo(BeNil())
		Expect(t.Finished()).To(BeTrue())
		Expect(params()).To(HaveLen(8))
	})

	It("should not apply changes without a session", func() {
		Expect(c.ApplyAllChanges("test")).To(BeNil())
		Expect(c.ForceUpdateConfig()).To(Equal(0))
	})
})

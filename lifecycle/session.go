package lifecycle

import (
	"github.com/rs/xid"
	"github.com/sarchlab/rebalance/config"
	"github.com/sarchlab/rebalance/sim/timing"
	"go.uber.org/zap"
)

// Session is the period during which the modifications are active: the
// extension is enabled and the archetype crest is equipped.
type Session struct {
	ID      string
	Reason  string
	Started float64

	initialized bool
	settled     bool
	task        *timing.Task
}

// Initialized returns true once the prefab is prepared and the attack
// patches are applied.
func (s *Session) Initialized() bool {
	return s.initialized
}

// Settled returns true once the delayed attraction setup has run.
func (s *Session) Settled() bool {
	return s.settled
}

func (c *Coordinator) startSession(reason string) {
	s := &Session{
		ID:      xid.New().String(),
		Reason:  reason,
		Started: float64(c.engine.Now()),
	}
	c.session = s

	c.log.Info("session started",
		zap.String("session", s.ID), zap.String("reason", reason))
	c.emit(HookPosSessionStarted, c.sessionInfo(s))

	s.task = timing.NewTask("session " + s.ID).
		WaitUntil(c.cache.IsInitialized).
		Do(c.preload).
		Do(c.modifyHeavy).
		Do(c.modifyNormal).
		Do(func() { s.initialized = true }).
		WaitSeconds(SettleDelay).
		Do(func() {
			c.modifySilk()
			s.settled = true
			c.log.Info("session initialized", zap.String("session", s.ID))
		})

	c.engine.Start(OwnerSession, s.task)
}

func (c *Coordinator) endSession() {
	s := c.session
	if s == nil {
		return
	}

	c.engine.StopAll(OwnerSession)
	c.session = nil
	c.tracker.Forget()

	c.log.Info("session ended", zap.String("session", s.ID))
	c.emit(HookPosSessionEnded, c.sessionInfo(s))
}

func (c *Coordinator) sessionInfo(s *Session) SessionInfo {
	return SessionInfo{ID: s.ID, Reason: s.Reason, Time: float64(c.engine.Now())}
}

func (c *Coordinator) preload() {
	cfg := c.store.Load()

	err := c.preparer.Prepare(cfg, c.host.Hero().NailUpgrades())
	c.emit(HookPosPatch, PatchEvent{Target: TargetPrefab, Op: OpPrepare, Err: err})
}

func (c *Coordinator) modifyHeavy() {
	if !c.store.Load().EnableCrossSlash {
		return
	}

	c.applyHeavy()
}

func (c *Coordinator) applyHeavy() {
	err := c.splicer.Apply()
	c.emit(HookPosPatch, PatchEvent{Target: TargetHeavy, Op: OpApply, Err: err})
}

func (c *Coordinator) rollbackHeavy() {
	if c.splicer.Captured() == nil {
		return
	}

	err := c.splicer.Rollback()
	c.emit(HookPosPatch, PatchEvent{Target: TargetHeavy, Op: OpRollback, Err: err})
}

func (c *Coordinator) modifyNormal() {
	cfg := c.store.Load()

	err := c.multipliers.Apply(
		cfg.NormalAttackMultiplier,
		cfg.DownSlashMultiplier,
		cfg.StunDamageMultiplier,
	)
	c.emit(HookPosPatch, PatchEvent{Target: TargetNormal, Op: OpApply, Err: err})
}

func (c *Coordinator) updatePrefabDamage() {
	cfg := c.store.Load()

	err := c.preparer.UpdateDamage(cfg.Policy, c.host.Hero().NailUpgrades(),
		cfg.CrossSlashDamage, cfg.StunDamageMultiplier)
	if err != nil {
		c.log.Warn("cannot update prefab damage", zap.Error(err))
	}
}

func (c *Coordinator) updatePrefabScale() {
	if err := c.preparer.UpdateScale(c.store.Load().CrossSlashScale); err != nil {
		c.log.Warn("cannot update prefab scale", zap.Error(err))
	}
}

func (c *Coordinator) modifySilk() {
	cfg := c.store.Load()
	if !c.enabled || !cfg.EnableSilkAttraction {
		return
	}

	c.applySilk(cfg)
}

func (c *Coordinator) applySilk(cfg config.Config) {
	err := c.attraction.Apply(attractionParams(cfg))
	if err == nil {
		c.silkApplied = true
	}

	c.emit(HookPosPatch, PatchEvent{Target: TargetAttraction, Op: OpApply, Err: err})
}

func (c *Coordinator) resetSilk() {
	if !c.silkApplied {
		return
	}

	err := c.attraction.Reset()
	c.silkApplied = false
	c.emit(HookPosPatch, PatchEvent{Target: TargetAttraction, Op: OpReset, Err: err})
}

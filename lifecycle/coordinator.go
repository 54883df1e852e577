// Package lifecycle owns the extension's components and drives them from the
// host's frame and scene notifications.
package lifecycle

import (
	"slices"

	"github.com/sarchlab/rebalance/attraction"
	"github.com/sarchlab/rebalance/config"
	"github.com/sarchlab/rebalance/content"
	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/interception"
	"github.com/sarchlab/rebalance/patching"
	"github.com/sarchlab/rebalance/pool"
	"github.com/sarchlab/rebalance/reactive"
	"github.com/sarchlab/rebalance/sim/hooking"
	"github.com/sarchlab/rebalance/sim/timing"
	"github.com/sarchlab/rebalance/spawning"
	"go.uber.org/zap"
)

// Continuation owners.
const (
	OwnerContent    timing.Owner = "content"
	OwnerSession    timing.Owner = "session"
	OwnerAttraction timing.Owner = "attraction"
)

// SettleDelay is the time between a session's attack patches and its
// attraction setup, in seconds.
const SettleDelay = 1.0

// Patch target names on the hero.
const (
	NailArtsMachine = "Nail Arts"
	DoSlashState    = "Do Slash"
	SlashMarker     = "OnSlashStarting"
	ScythePath      = "Attacks/Scythe"
	DownSlashName   = "DownSlash New"
)

// Coordinator is the single owner of the extension's state.
type Coordinator struct {
	*hooking.HookableBase

	host   host.Host
	store  *config.Store
	engine *timing.Engine
	log    *zap.Logger

	cache       *content.Cache
	pool        *pool.Pool
	stun        *patching.StunTable
	splicer     *patching.Splicer
	multipliers *patching.Multipliers
	spawner     *spawning.Spawner
	preparer    *spawning.Preparer
	attraction  *attraction.Attraction
	tracker     *reactive.Tracker

	enabled     bool
	session     *Session
	silkApplied bool
	started     bool
}

// Func receives the host's frame and scene notifications.
func (c *Coordinator) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case host.HookPosFrame:
		if f, ok := ctx.Item.(host.Frame); ok {
			c.OnFrame(f.Dt)
		}
	case host.HookPosSceneChanged:
		if sc, ok := ctx.Item.(host.SceneChange); ok {
			c.OnSceneChange(sc)
		}
	}
}

// Start waits for the host and bootstraps the content cache.
func (c *Coordinator) Start() {
	if c.started {
		return
	}

	c.started = true

	c.engine.Start(OwnerContent, timing.NewTask("bootstrap").
		WaitUntil(c.host.Ready).
		Await(c.ensureInitialized))
}

// OnFrame advances the continuations and the reactive sync by one frame.
func (c *Coordinator) OnFrame(dt float64) {
	defer guard(c.log, "frame")

	c.engine.Advance(timing.VTimeInSec(dt))
}

// OnSceneChange tears down on the way to the title scene and refreshes on
// every gameplay transition.
func (c *Coordinator) OnSceneChange(sc host.SceneChange) {
	defer guard(c.log, "scene change")

	cfg := c.store.Load()

	if slices.Contains(cfg.Host.IgnoredScenes, sc.To) {
		c.log.Debug("scene ignored", zap.String("scene", sc.To))
		return
	}

	c.emit(HookPosScene, sc)

	switch {
	case sc.To == cfg.Host.TitleScene:
		c.cleanupOnTitle()
	case sc.From == cfg.Host.TitleScene:
		c.ensureInitialized()
		c.Refresh("EnterGame", true)
	default:
		c.ensureInitialized()
		c.revalidate()
		c.Refresh("SceneChange", true)
	}
}

func (c *Coordinator) cleanupOnTitle() {
	if c.session != nil {
		c.ResetModifications()
		c.endSession()
	}

	c.pool.Cleanup()
	c.emit(HookPosCache, CacheEvent{Op: CacheCleanup})

	c.log.Info("title cleanup completed")
}

func (c *Coordinator) ensureInitialized() *timing.Task {
	if c.cache.IsInitialized() {
		return nil
	}

	t := c.cache.Initialize()
	if t == nil {
		return nil
	}

	c.engine.Start(OwnerContent, timing.NewTask("report initialize").
		Await(func() *timing.Task { return t }).
		Do(func() {
			c.emit(HookPosCache, CacheEvent{
				Op:     CacheInitialize,
				Assets: c.cache.Len(),
				Pooled: c.pool.Len(),
			})
		}))

	return t
}

func (c *Coordinator) revalidate() {
	t := c.cache.Revalidate()

	c.engine.Start(OwnerContent, timing.NewTask("report revalidate").
		Await(func() *timing.Task { return t }).
		Do(func() {
			c.emit(HookPosCache, CacheEvent{
				Op:     CacheRevalidate,
				Assets: c.cache.Len(),
				Pooled: c.pool.Len(),
			})
		}))
}

// Refresh starts a session when the extension is enabled and the crest is
// equipped, and ends it otherwise. With force, every parameter is applied
// again once the session is initialized.
func (c *Coordinator) Refresh(reason string, force bool) {
	defer guard(c.log, "refresh")

	if !c.host.Ready() {
		c.log.Debug("host not ready, refresh skipped", zap.String("reason", reason))
		return
	}

	want := c.enabled && c.crestEquipped()

	switch {
	case want && c.session == nil:
		c.startSession(reason)
	case !want && c.session != nil:
		c.ResetModifications()
		c.endSession()
	}

	if force && c.session != nil {
		c.ApplyAllChanges(reason)
	}
}

func (c *Coordinator) crestEquipped() bool {
	return c.host.Equipment().IsEquipped(c.store.Load().Host.CrestID)
}

// ApplyAllChanges re-applies every parameter once the session is
// initialized. It returns the waiting continuation, or nil without a session.
func (c *Coordinator) ApplyAllChanges(reason string) *timing.Task {
	if c.session == nil {
		return nil
	}

	s := c.session

	return c.engine.Start(OwnerSession, timing.NewTask("apply "+reason).
		WaitUntil(func() bool { return s.initialized }).
		Do(func() {
			c.log.Info("applying all changes", zap.String("reason", reason))
			c.forceAll(reason)
		}))
}

// ForceUpdateConfig re-applies every parameter now. It does nothing before
// the session is initialized and returns the number of parameters applied.
func (c *Coordinator) ForceUpdateConfig() int {
	return c.forceAll("force")
}

func (c *Coordinator) forceAll(reason string) int {
	if !c.IsInitialized() {
		return 0
	}

	return c.tracker.ForceAll(reason)
}

// ResetModifications rolls every patch back.
func (c *Coordinator) ResetModifications() {
	defer guard(c.log, "reset")

	err := c.multipliers.Reset()
	c.emit(HookPosPatch, PatchEvent{Target: TargetNormal, Op: OpReset, Err: err})

	c.rollbackHeavy()
	c.resetSilk()

	c.log.Info("modifications reset")
}

// SetEnabled flips the global switch and refreshes.
func (c *Coordinator) SetEnabled(enabled bool) {
	c.enabled = enabled
	c.store.Update(func(cfg *config.Config) { cfg.EnableReaperBalance = enabled })

	c.log.Info("extension toggled", zap.Bool("enabled", enabled))

	c.Refresh("ToggleReaperBalance", true)
}

// ApplyConfig replaces the live configuration, as a reload or the external
// panel does. Parameter changes are picked up on the next frame; a change of
// the global switch refreshes at once.
func (c *Coordinator) ApplyConfig(cfg config.Config) {
	cfg.Clamp()

	toggled := cfg.EnableReaperBalance != c.enabled
	c.store.Replace(cfg)

	if toggled {
		c.SetEnabled(cfg.EnableReaperBalance)
	}
}

// ResetDefaults restores the default configuration and refreshes.
func (c *Coordinator) ResetDefaults() {
	cfg := c.store.ResetDefaults()
	c.enabled = cfg.EnableReaperBalance

	c.Refresh("ResetDefaults", true)
}

// Enabled returns the global switch.
func (c *Coordinator) Enabled() bool {
	return c.enabled
}

// ShouldApplyPatches returns true while the method hooks may act.
func (c *Coordinator) ShouldApplyPatches() bool {
	return c.enabled
}

// Config returns the live configuration.
func (c *Coordinator) Config() config.Config {
	return c.store.Load()
}

// AssetNames lists the cached content.
func (c *Coordinator) AssetNames() []string {
	return c.cache.AssetNames()
}

// Get resolves cached content.
func (c *Coordinator) Get(kind host.Kind, name string) (host.Object, error) {
	return c.cache.Get(kind, name)
}

// IsInitialized returns true while an initialized session exists.
func (c *Coordinator) IsInitialized() bool {
	return c.session != nil && c.session.initialized
}

// IsPrefabCached returns true while the derived prefab is pooled.
func (c *Coordinator) IsPrefabCached() bool {
	return c.pool.IsCached(config.CrossSlashPooled)
}

// Session returns the active session, or nil.
func (c *Coordinator) Session() *Session {
	return c.session
}

// Cache returns the content cache.
func (c *Coordinator) Cache() *content.Cache {
	return c.cache
}

// Pool returns the derived-object pool.
func (c *Coordinator) Pool() *pool.Pool {
	return c.pool
}

// Engine returns the continuation engine.
func (c *Coordinator) Engine() *timing.Engine {
	return c.engine
}

// Store returns the live configuration.
func (c *Coordinator) Store() *config.Store {
	return c.store
}

// Tracker returns the parameter tracker.
func (c *Coordinator) Tracker() *reactive.Tracker {
	return c.tracker
}

// Splicer returns the heavy attack splice.
func (c *Coordinator) Splicer() *patching.Splicer {
	return c.splicer
}

// Spawner returns the cross slash spawner.
func (c *Coordinator) Spawner() *spawning.Spawner {
	return c.spawner
}

// Status is a snapshot of the coordinator for the control surface.
type Status struct {
	Enabled          bool     `json:"enabled"`
	Session          string   `json:"session,omitempty"`
	Initialized      bool     `json:"initialized"`
	Settled          bool     `json:"settled"`
	CacheInitialized bool     `json:"cache_initialized"`
	PrefabCached     bool     `json:"prefab_cached"`
	HeavyPatched     bool     `json:"heavy_patched"`
	SilkApplied      bool     `json:"silk_applied"`
	Assets           int      `json:"assets"`
	Pooled           []string `json:"pooled"`
	Frame            uint64   `json:"frame"`
	Time             float64  `json:"time"`
}

// Status returns the current status.
func (c *Coordinator) Status() Status {
	s := Status{
		Enabled:          c.enabled,
		Initialized:      c.IsInitialized(),
		CacheInitialized: c.cache.IsInitialized(),
		PrefabCached:     c.IsPrefabCached(),
		HeavyPatched:     c.splicer.Patched(),
		SilkApplied:      c.silkApplied,
		Assets:           c.cache.Len(),
		Pooled:           c.pool.Names(),
		Frame:            c.engine.Frame(),
		Time:             float64(c.engine.Now()),
	}

	if c.session != nil {
		s.Session = c.session.ID
		s.Settled = c.session.settled
	}

	return s
}

func (c *Coordinator) emit(pos *hooking.HookPos, item any) {
	c.InvokeHook(hooking.HookCtx{Domain: c, Pos: pos, Item: item})
}

func (c *Coordinator) install() {
	c.host.Events().AcceptHook(c)

	active := c.ShouldApplyPatches

	err := interception.Install(c.host.Interceptor(),
		interception.NewCritHook(c.store, c.host.Equipment(), active, c.log),
		interception.NewDurationHook(c.store, c.host.Equipment(), active, c.log),
		interception.NewEquipmentHook(func(reason string) {
			c.Refresh(reason, true)
		}, c.log),
	)
	if err != nil {
		panic(err)
	}

	c.spawner.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
		c.InvokeHook(hooking.HookCtx{Domain: c, Pos: ctx.Pos, Item: ctx.Item})
	}))
}

func guard(log *zap.Logger, what string) {
	if r := recover(); r != nil {
		log.Error("lifecycle step panicked",
			zap.String("step", what), zap.Any("panic", r))
	}
}

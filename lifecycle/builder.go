package lifecycle

import (
	"github.com/sarchlab/rebalance/attraction"
	"github.com/sarchlab/rebalance/config"
	"github.com/sarchlab/rebalance/content"
	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/patching"
	"github.com/sarchlab/rebalance/pool"
	"github.com/sarchlab/rebalance/reactive"
	"github.com/sarchlab/rebalance/sim/hooking"
	"github.com/sarchlab/rebalance/sim/timing"
	"github.com/sarchlab/rebalance/spawning"
	"go.uber.org/zap"
)

// Builder creates coordinators.
type Builder struct {
	host   host.Host
	store  *config.Store
	engine *timing.Engine
	log    *zap.Logger
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{log: zap.NewNop()}
}

// WithHost sets the host.
func (b Builder) WithHost(h host.Host) Builder {
	b.host = h
	return b
}

// WithConfigStore sets the live configuration.
func (b Builder) WithConfigStore(s *config.Store) Builder {
	b.store = s
	return b
}

// WithEngine sets the continuation engine. By default the coordinator
// creates its own.
func (b Builder) WithEngine(e *timing.Engine) Builder {
	b.engine = e
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(log *zap.Logger) Builder {
	b.log = log
	return b
}

// Build creates the coordinator and registers it on the host.
func (b Builder) Build() *Coordinator {
	if b.host == nil {
		panic("coordinator requires a host")
	}

	if b.store == nil {
		b.store = config.NewStore(config.Defaults(), "")
	}

	if b.engine == nil {
		b.engine = timing.NewEngine(b.log)
	}

	cfg := b.store.Load()
	log := b.log.Named("lifecycle")

	c := &Coordinator{
		HookableBase: hooking.NewHookableBase(),
		host:         b.host,
		store:        b.store,
		engine:       b.engine,
		log:          log,
		enabled:      cfg.EnableReaperBalance,
	}

	c.cache = content.MakeBuilder().
		WithEngine(b.engine).
		WithLogger(b.log).
		WithOwner(OwnerContent).
		WithPlatform(b.host.Platform()).
		WithContentRoot(b.host.ContentRoot()).
		WithBundles(cfg.Host.Bundles...).
		WithRequiredAssets(cfg.Host.RequiredAssets...).
		Build(b.host.Content())

	c.pool = pool.NewPool(b.host.World(), c.cache, b.engine, b.log,
		OwnerContent, OwnerSession, OwnerAttraction)

	hero := b.host.Hero()

	c.stun = patching.NewStunTable()
	c.spawner = spawning.NewSpawner(b.host.World(), hero, b.host.Equipment(),
		c.pool, b.store, c.spawnReady, b.log)
	c.preparer = spawning.NewPreparer(b.host.World(), c.cache, c.pool, c.stun, b.log)
	c.splicer = patching.NewSplicer(hero,
		NailArtsMachine, DoSlashState, SlashMarker, c.spawner, b.log)
	c.multipliers = patching.NewMultipliers(hero,
		ScythePath, DownSlashName, c.stun, b.log)
	c.attraction = attraction.New(b.host.World(), c.cache, hero,
		b.engine, OwnerAttraction, b.log)

	c.tracker = reactive.NewTracker(func() bool {
		return c.enabled && c.IsInitialized()
	}, b.log)
	c.trackParams()
	b.engine.RegisterTicker(c.tracker)

	c.install()

	return c
}

func (c *Coordinator) spawnReady() bool {
	return c.host.Ready() && c.IsInitialized()
}

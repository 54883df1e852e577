package content

import (
	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/sim/timing"
	"go.uber.org/zap"
)

// Builder creates content caches.
type Builder struct {
	engine      *timing.Engine
	log         *zap.Logger
	owner       timing.Owner
	platform    string
	contentRoot string
	bundles     []string
	required    []string
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		log:   zap.NewNop(),
		owner: "content",
	}
}

// WithEngine sets the engine the cache runs its continuations on.
func (b Builder) WithEngine(e *timing.Engine) Builder {
	b.engine = e
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(log *zap.Logger) Builder {
	b.log = log
	return b
}

// WithOwner sets the owner of the cache's continuations.
func (b Builder) WithOwner(owner timing.Owner) Builder {
	b.owner = owner
	return b
}

// WithPlatform sets the OS name used to pick the bundle folder.
func (b Builder) WithPlatform(goos string) Builder {
	b.platform = goos
	return b
}

// WithContentRoot sets the directory bundle files are loaded from.
func (b Builder) WithContentRoot(dir string) Builder {
	b.contentRoot = dir
	return b
}

// WithBundles sets the bundles loaded when a required asset is missing.
func (b Builder) WithBundles(names ...string) Builder {
	b.bundles = names
	return b
}

// WithRequiredAssets sets the assets the bootstrap must find.
func (b Builder) WithRequiredAssets(names ...string) Builder {
	b.required = names
	return b
}

// Build creates the cache over store.
func (b Builder) Build(store host.ContentStore) *Cache {
	if b.engine == nil {
		panic("content cache needs an engine")
	}

	c := &Cache{
		store:       store,
		engine:      b.engine,
		log:         b.log.Named("content"),
		owner:       b.owner,
		platform:    b.platform,
		contentRoot: b.contentRoot,
		bundles:     append([]string(nil), b.bundles...),
		required:    append([]string(nil), b.required...),
		manualNames: make(map[string]bool),
	}
	c.clearTable()

	return c
}

package content

import (
	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/sim/timing"
	"go.uber.org/zap"
)

// loadRequiredBundles returns the continuation that loads every required
// bundle from disk, one after the other. At most one runs at a time; callers
// that arrive while it runs get the running one.
func (c *Cache) loadRequiredBundles() *timing.Task {
	if c.manualTask != nil && !c.manualTask.Finished() {
		return c.manualTask
	}

	t := timing.NewTask("load required bundles")

	for _, name := range c.bundles {
		t.Await(func() *timing.Task { return c.loadBundle(name) })
	}

	c.manualTask = t

	return t
}

// loadBundle returns the continuation that loads one bundle file, or nil if
// the bundle does not need loading.
func (c *Cache) loadBundle(name string) *timing.Task {
	if c.IsBundleAlreadyLoaded(name) {
		c.log.Info("bundle already loaded, skipping", zap.String("bundle", name))
		return nil
	}

	path := c.BundlePath(name)

	var req host.LoadRequest

	return timing.NewTask("load bundle "+name).
		Do(func() {
			c.log.Info("loading bundle", zap.String("path", path))
			req = c.store.LoadBundleFromFile(path)
		}).
		WaitUntil(func() bool { return req == nil || req.Done() }).
		Do(func() {
			if req == nil {
				c.log.Error("bundle load was not started", zap.String("path", path))
				return
			}

			b := req.Bundle()
			if b == nil {
				c.log.Error("failed to load bundle",
					zap.String("path", path), zap.Error(req.Err()))

				return
			}

			c.manualBundles = append(c.manualBundles, b)
			c.scanRequired([]host.Bundle{b})
			c.manualNames[name] = true
			c.log.Info("loaded bundle", zap.String("bundle", name))
		})
}

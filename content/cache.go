// Package content resolves and memoizes named content objects from the host's
// bundles, loading the required bundles from disk when the host has not.
package content

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/sim/timing"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when no loaded bundle holds the asset.
	ErrNotFound = errors.New("content not found")

	// ErrBundle wraps a failure while reading one bundle.
	ErrBundle = errors.New("bundle error")
)

// Cache maps (kind, name) to live host objects.
type Cache struct {
	store       host.ContentStore
	engine      *timing.Engine
	log         *zap.Logger
	owner       timing.Owner
	platform    string
	contentRoot string

	bundles  []string
	required []string

	table map[host.Kind]map[string]host.Object

	manualNames   map[string]bool
	manualBundles []host.Bundle

	initialized bool
	initTask    *timing.Task
	manualTask  *timing.Task
}

// Owner returns the owner of the cache's continuations.
func (c *Cache) Owner() timing.Owner {
	return c.owner
}

// RequiredAssets returns the names the cache bootstraps.
func (c *Cache) RequiredAssets() []string {
	return append([]string(nil), c.required...)
}

// IsInitialized returns true once the bootstrap has finished.
func (c *Cache) IsInitialized() bool {
	return c.initialized
}

// Get returns the object of kind named name. On a miss the loaded bundles are
// scanned. If that fails ErrNotFound is returned at once, and a manual load of
// the required bundles is started in the background.
func (c *Cache) Get(kind host.Kind, name string) (host.Object, error) {
	if name == "" {
		return nil, c.emptyName(kind)
	}

	if obj := c.lookup(kind, name); obj != nil {
		return obj, nil
	}

	if obj := c.scanFor(kind, name); obj != nil {
		c.put(kind, name, obj)
		return obj, nil
	}

	c.log.Warn("asset not in loaded bundles, loading bundles manually",
		zap.String("kind", string(kind)), zap.String("name", name))

	c.engine.Start(c.owner, c.retry(kind, name, nil))

	return nil, fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
}

// Resolve is the asynchronous Get. fn receives the object, or ErrNotFound
// once the manual load did not help. The returned task is already running.
func (c *Cache) Resolve(
	kind host.Kind,
	name string,
	fn func(host.Object, error),
) *timing.Task {
	if name == "" {
		err := c.emptyName(kind)

		return c.engine.Start(c.owner, timing.NewTask("resolve").Do(func() {
			if fn != nil {
				fn(nil, err)
			}
		}))
	}

	var found host.Object

	t := timing.NewTask("resolve " + name).
		Do(func() {
			found = c.lookup(kind, name)
			if found != nil {
				return
			}

			found = c.scanFor(kind, name)
			if found != nil {
				c.put(kind, name, found)
			}
		}).
		Await(func() *timing.Task {
			if found != nil {
				return nil
			}

			return c.retry(kind, name, fn)
		}).
		Do(func() {
			if found != nil && fn != nil {
				fn(found, nil)
			}
		})

	return c.engine.Start(c.owner, t)
}

// emptyName reports a lookup without a name. An empty name would match every
// asset, so it is never scanned for.
func (c *Cache) emptyName(kind host.Kind) error {
	c.log.Error("asset name is empty", zap.String("kind", string(kind)))

	return fmt.Errorf("%s with empty name: %w", kind, ErrNotFound)
}

// retry loads the required bundles and scans for the asset again.
func (c *Cache) retry(
	kind host.Kind,
	name string,
	fn func(host.Object, error),
) *timing.Task {
	return timing.NewTask("retry "+name).
		Await(c.loadRequiredBundles).
		Do(func() {
			obj := c.lookup(kind, name)
			if obj == nil {
				obj = c.scanFor(kind, name)
			}

			if obj == nil {
				c.log.Error("asset still missing after manual bundle load",
					zap.String("kind", string(kind)), zap.String("name", name))

				if fn != nil {
					fn(nil, fmt.Errorf("%s %q: %w", kind, name, ErrNotFound))
				}

				return
			}

			c.put(kind, name, obj)

			if fn != nil {
				fn(obj, nil)
			}
		})
}

// Initialize bootstraps the cache: the table is cleared, the loaded bundles are
// scanned for the required assets, and the required bundles are loaded from
// disk if anything is missing. It returns nil when the cache is already
// initialized, and the running task when a bootstrap is in flight.
func (c *Cache) Initialize() *timing.Task {
	if c.initialized {
		return nil
	}

	if c.initTask != nil && !c.initTask.Finished() {
		return c.initTask
	}

	t := timing.NewTask("initialize content").
		Do(func() {
			c.clearTable()
			c.scanRequired(c.store.LoadedBundles())
		}).
		Await(func() *timing.Task {
			if c.requiredAvailable() {
				return nil
			}

			return c.loadRequiredBundles()
		}).
		Do(func() {
			c.initialized = true
			c.log.Info("content initialized", zap.Int("assets", c.Len()))
		})

	c.initTask = t

	return c.engine.Start(c.owner, t)
}

// Reinitialize tears the table down and bootstraps again.
func (c *Cache) Reinitialize() *timing.Task {
	c.log.Info("reinitializing content")

	for _, t := range []*timing.Task{c.initTask, c.manualTask} {
		if t != nil {
			c.engine.Stop(t)
		}
	}

	c.Clear()

	return c.Initialize()
}

// Revalidate sweeps stale entries and reinitializes when a required asset is
// no longer available.
func (c *Cache) Revalidate() *timing.Task {
	t := timing.NewTask("revalidate content").
		Do(func() {
			n := c.Sweep()
			c.log.Info("swept stale content", zap.Int("removed", n))
		}).
		Await(func() *timing.Task {
			if !c.initialized || c.requiredAvailable() {
				return nil
			}

			return c.Reinitialize()
		})

	return c.engine.Start(c.owner, t)
}

// Sweep removes entries whose object the host destroyed and returns how many
// were removed.
func (c *Cache) Sweep() int {
	removed := 0

	for kind, byName := range c.table {
		for name, obj := range byName {
			if !obj.Alive() {
				delete(byName, name)
				removed++
			}
		}

		if len(byName) == 0 {
			delete(c.table, kind)
		}
	}

	return removed
}

// Clear empties the table and forgets the manually loaded bundles. The cache
// is uninitialized afterwards.
func (c *Cache) Clear() {
	c.clearTable()
	c.manualNames = make(map[string]bool)
	c.manualBundles = nil
	c.initialized = false
	c.initTask = nil
	c.manualTask = nil
}

// UnloadAll unloads the bundles the cache loaded itself, then clears it.
func (c *Cache) UnloadAll() {
	for _, b := range c.manualBundles {
		c.store.Unload(b)
	}

	c.log.Info("unloaded manual bundles", zap.Int("count", len(c.manualBundles)))
	c.Clear()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	n := 0
	for _, byName := range c.table {
		n += len(byName)
	}

	return n
}

// AssetNames lists cached entries as kind/name, sorted.
func (c *Cache) AssetNames() []string {
	var names []string

	for kind, byName := range c.table {
		for name := range byName {
			names = append(names, string(kind)+"/"+name)
		}
	}

	sort.Strings(names)

	return names
}

// IsBundleAlreadyLoaded returns true if name was loaded manually, if a bundle
// of that name is loaded, or if the loaded bundles already hold an asset for
// every required name.
func (c *Cache) IsBundleAlreadyLoaded(name string) bool {
	if c.manualNames[name] {
		return true
	}

	covered := make(map[string]bool)

	c.eachBundle(c.store.LoadedBundles(), func(b host.Bundle, paths []string) bool {
		if b.Name() == name {
			for _, r := range c.required {
				covered[r] = true
			}

			return true
		}

		for _, p := range paths {
			stem := Stem(p)

			for _, r := range c.required {
				if containsFold(stem, r) {
					covered[r] = true
				}
			}
		}

		return len(covered) == len(c.required)
	})

	if len(covered) < len(c.required) {
		return false
	}

	c.manualNames[name] = true

	return true
}

// BundlePath returns where the bundle file of name lives.
func (c *Cache) BundlePath(name string) string {
	return filepath.Join(c.contentRoot, PlatformFolder(c.platform), name+".bundle")
}

// PlatformFolder maps an OS name to the host's bundle folder.
func PlatformFolder(goos string) string {
	switch goos {
	case "windows":
		return "StandaloneWindows64"
	case "darwin":
		return "StandaloneOSX"
	case "linux":
		return "StandaloneLinux64"
	default:
		return ""
	}
}

// Stem returns the file name of an asset path without its extension.
func Stem(assetPath string) string {
	base := filepath.Base(strings.ReplaceAll(assetPath, `\`, "/"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (c *Cache) lookup(kind host.Kind, name string) host.Object {
	byName, ok := c.table[kind]
	if !ok {
		return nil
	}

	obj, ok := byName[name]
	if !ok {
		return nil
	}

	if obj == nil || !obj.Alive() {
		delete(byName, name)
		c.log.Warn("cached asset was destroyed, removed from cache",
			zap.String("kind", string(kind)), zap.String("name", name))

		return nil
	}

	return obj
}

func (c *Cache) put(kind host.Kind, name string, obj host.Object) {
	byName, ok := c.table[kind]
	if !ok {
		byName = make(map[string]host.Object)
		c.table[kind] = byName
	}

	byName[name] = obj
	c.log.Debug("stored asset",
		zap.String("kind", string(kind)), zap.String("name", name))
}

func (c *Cache) clearTable() {
	c.table = make(map[host.Kind]map[string]host.Object)
}

func (c *Cache) isRequired(stem string) bool {
	for _, r := range c.required {
		if containsFold(stem, r) {
			return true
		}
	}

	return false
}

func (c *Cache) requiredAvailable() bool {
	for _, r := range c.required {
		if c.lookup(host.KindGameObject, r) == nil {
			c.log.Warn("required asset not available", zap.String("name", r))
			return false
		}
	}

	return true
}

// scanFor finds the asset among the loaded bundles. An asset whose name equals
// the requested one wins over one that merely contains it.
func (c *Cache) scanFor(kind host.Kind, name string) host.Object {
	var exact, partial host.Object

	c.eachBundle(c.store.LoadedBundles(), func(b host.Bundle, paths []string) bool {
		for _, p := range paths {
			stem := Stem(p)

			isExact := strings.EqualFold(stem, name)
			if !isExact && (partial != nil || !containsFold(stem, name)) {
				continue
			}

			obj := c.load(b, p, kind)
			if obj == nil {
				continue
			}

			if isExact {
				exact = obj
				return true
			}

			partial = obj
		}

		return false
	})

	if exact != nil {
		return exact
	}

	return partial
}

func (c *Cache) scanRequired(bundles []host.Bundle) {
	c.eachBundle(bundles, func(b host.Bundle, paths []string) bool {
		for _, p := range paths {
			if !c.isRequired(Stem(p)) {
				continue
			}

			obj := c.load(b, p, host.KindGameObject)
			if obj == nil {
				c.log.Error("failed to load required asset", zap.String("path", p))
				continue
			}

			c.put(obj.Kind(), obj.Name(), obj)
			c.log.Info("loaded required asset",
				zap.String("name", obj.Name()), zap.String("bundle", b.Name()))
		}

		return false
	})
}

// load reads the asset typed as kind, falling back to an untyped load.
func (c *Cache) load(b host.Bundle, path string, kind host.Kind) host.Object {
	obj, err := b.Load(path, kind)
	if err == nil && obj != nil {
		return obj
	}

	obj, err = b.Load(path, host.KindAny)
	if err != nil || obj == nil {
		c.log.Warn("failed to load asset",
			zap.String("path", path), zap.Error(err))

		return nil
	}

	if kind != host.KindAny && obj.Kind() != kind {
		c.log.Warn("asset has the wrong kind and is ignored",
			zap.String("path", path),
			zap.String("want", string(kind)),
			zap.String("got", string(obj.Kind())))

		return nil
	}

	return obj
}

// eachBundle calls fn with the asset paths of every bundle until fn returns
// true. A failing bundle is logged and skipped.
func (c *Cache) eachBundle(
	bundles []host.Bundle,
	fn func(b host.Bundle, paths []string) bool,
) {
	for _, b := range bundles {
		if b == nil {
			continue
		}

		stop, err := c.visitBundle(b, fn)
		if err != nil {
			c.log.Error("failed to process bundle", zap.Error(err))
			continue
		}

		if stop {
			return
		}
	}
}

func (c *Cache) visitBundle(
	b host.Bundle,
	fn func(b host.Bundle, paths []string) bool,
) (stop bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v: %w", b.Name(), r, ErrBundle)
		}
	}()

	paths, err := b.AssetPaths()
	if err != nil {
		return false, fmt.Errorf("%s: %w: %w", b.Name(), ErrBundle, err)
	}

	return fn(b, paths), nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

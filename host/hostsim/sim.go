// Package hostsim is an in-memory host. It implements every host interface
// closely enough to run the extension end to end without the real
// application.
package hostsim

import (
	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/sim/hooking"
)

// Events is the hookable that delivers frame and scene notifications.
type Events struct {
	*hooking.HookableBase
}

// Sim is the simulated host.
type Sim struct {
	world       *World
	content     *ContentStore
	hero        *Hero
	equipment   *Equipment
	interceptor *Interceptor
	events      *Events

	ready       bool
	platform    string
	contentRoot string

	time   float64
	frames uint64
}

// Builder creates simulated hosts.
type Builder struct {
	platform    string
	contentRoot string
	loadDelay   int
	ready       bool
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		platform:  "linux",
		loadDelay: 2,
		ready:     true,
	}
}

// WithPlatform sets the OS reported to the extension.
func (b Builder) WithPlatform(p string) Builder {
	b.platform = p
	return b
}

// WithContentRoot sets the directory bundles are loaded from.
func (b Builder) WithContentRoot(dir string) Builder {
	b.contentRoot = dir
	return b
}

// WithLoadDelay sets how many frames a bundle file load takes.
func (b Builder) WithLoadDelay(frames int) Builder {
	b.loadDelay = frames
	return b
}

// WithReady sets whether the host starts ready.
func (b Builder) WithReady(ready bool) Builder {
	b.ready = ready
	return b
}

// Build creates the host.
func (b Builder) Build() *Sim {
	s := &Sim{
		world:       NewWorld(),
		interceptor: NewInterceptor(),
		events:      &Events{hooking.NewHookableBase()},
		ready:       b.ready,
		platform:    b.platform,
		contentRoot: b.contentRoot,
	}

	s.content = NewContentStore(s.world, b.loadDelay)
	s.equipment = newEquipment(s)
	s.hero = newHero(s)

	return s
}

// World returns the scene graph.
func (s *Sim) World() host.World {
	return s.world
}

// Content returns the bundle manager.
func (s *Sim) Content() host.ContentStore {
	return s.content
}

// Hero returns the player character.
func (s *Sim) Hero() host.Hero {
	return s.hero
}

// Equipment returns the equipment system.
func (s *Sim) Equipment() host.Equipment {
	return s.equipment
}

// Interceptor returns the method interceptor.
func (s *Sim) Interceptor() host.Interceptor {
	return s.interceptor
}

// Events returns the notification hookable.
func (s *Sim) Events() host.Events {
	return s.events
}

// Ready returns true once the host is ready.
func (s *Sim) Ready() bool {
	return s.ready
}

// SetReady changes the ready flag.
func (s *Sim) SetReady(ready bool) {
	s.ready = ready
}

// Platform returns the OS name.
func (s *Sim) Platform() string {
	return s.platform
}

// ContentRoot returns the bundle directory.
func (s *Sim) ContentRoot() string {
	return s.contentRoot
}

// SimWorld returns the concrete world.
func (s *Sim) SimWorld() *World {
	return s.world
}

// SimContent returns the concrete content store.
func (s *Sim) SimContent() *ContentStore {
	return s.content
}

// SimHero returns the concrete hero.
func (s *Sim) SimHero() *Hero {
	return s.hero
}

// SimEquipment returns the concrete equipment.
func (s *Sim) SimEquipment() *Equipment {
	return s.equipment
}

// SimInterceptor returns the concrete interceptor.
func (s *Sim) SimInterceptor() *Interceptor {
	return s.interceptor
}

// Time returns the host clock.
func (s *Sim) Time() float64 {
	return s.time
}

// Frames returns the number of frames stepped.
func (s *Sim) Frames() uint64 {
	return s.frames
}

// Step runs one frame: bundle loads progress, the frame notification fires,
// then the scene updates.
func (s *Sim) Step(dt float64) {
	s.frames++
	s.time += dt

	s.content.update()
	s.events.InvokeHook(hooking.HookCtx{
		Domain: s.events,
		Pos:    host.HookPosFrame,
		Item:   host.Frame{Dt: dt},
	})
	s.world.update(dt)
}

// Run steps n frames.
func (s *Sim) Run(n int, dt float64) {
	for i := 0; i < n; i++ {
		s.Step(dt)
	}
}

// LoadScene unloads the current scene and activates the named one.
func (s *Sim) LoadScene(name string) {
	from := s.world.scene

	s.world.unloadScene()
	s.world.scene = name

	s.events.InvokeHook(hooking.HookCtx{
		Domain: s.events,
		Pos:    host.HookPosSceneChanged,
		Item:   host.SceneChange{From: from, To: name},
	})
}

// MountStandardBundles loads the bundles the host ships with.
func (s *Sim) MountStandardBundles() {
	for _, m := range StandardManifests() {
		b, _ := m.Build(s.world)
		s.content.Mount(b)
	}
}

// SpawnSilk drops a collectible built from the first loaded prefab whose name
// is name.
func (s *Sim) SpawnSilk(name string, pos host.Vec3) *GameObject {
	for _, b := range s.content.loaded {
		for _, p := range b.paths {
			prefab, ok := b.assets[p].(*GameObject)
			if !ok || prefab.name != name {
				continue
			}

			o := s.world.Instantiate(prefab, pos, host.Identity).(*GameObject)
			if m := o.Machine("Control"); m != nil {
				m.Enter("Collectable")
			}

			return o
		}
	}

	return nil
}

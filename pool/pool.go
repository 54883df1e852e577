// Package pool keeps modified copies of cached content under one inactive
// container that survives scene changes.
package pool

import (
	"sort"

	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/sim/timing"
	"go.uber.org/zap"
)

// ContainerName is the name of the pool's root object.
const ContainerName = "ReaperBalance Pool"

// A Table is the cache the pool clears together with itself.
type Table interface {
	Clear()
}

// Pool indexes derived objects by name.
type Pool struct {
	world  host.World
	table  Table
	engine *timing.Engine
	owners []timing.Owner
	log    *zap.Logger

	container host.GameObject
	index     map[string]host.GameObject
}

// NewPool creates the pool and its container. Cleanup stops the
// continuations of owners before tearing anything down.
func NewPool(
	world host.World,
	table Table,
	engine *timing.Engine,
	log *zap.Logger,
	owners ...timing.Owner,
) *Pool {
	p := &Pool{
		world:  world,
		table:  table,
		engine: engine,
		owners: owners,
		log:    log.Named("pool"),
		index:  make(map[string]host.GameObject),
	}

	p.container = world.NewGameObject(ContainerName)
	p.container.SetActive(false)
	world.KeepAcrossScenes(p.container)

	return p
}

// Container returns the pool's root object.
func (p *Pool) Container() host.GameObject {
	return p.container
}

// Store parents obj under the container, deactivates it and indexes it by
// name. A different object already stored under name is destroyed.
func (p *Pool) Store(name string, obj host.GameObject) {
	if old, ok := p.index[name]; ok && old != obj && old.Alive() {
		p.log.Info("replacing pooled object", zap.String("name", name))
		p.world.Destroy(old)
	}

	obj.SetParent(p.container)
	obj.SetActive(false)
	p.index[name] = obj

	p.log.Debug("stored pooled object", zap.String("name", name))
}

// Get returns the pooled object, or nil.
func (p *Pool) Get(name string) host.GameObject {
	obj, ok := p.index[name]
	if !ok {
		return nil
	}

	if !obj.Alive() {
		delete(p.index, name)
		return nil
	}

	return obj
}

// IsCached returns true if name is indexed and alive.
func (p *Pool) IsCached(name string) bool {
	return p.Get(name) != nil
}

// Names returns the indexed names, sorted.
func (p *Pool) Names() []string {
	names := make([]string, 0, len(p.index))
	for name := range p.index {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Len returns the number of indexed objects.
func (p *Pool) Len() int {
	return len(p.index)
}

// Cleanup stops the owners' continuations, destroys every pooled object,
// clears the index and clears the cache table.
func (p *Pool) Cleanup() {
	stopped := 0
	for _, owner := range p.owners {
		stopped += p.engine.StopAll(owner)
	}

	destroyed := 0
	for _, child := range p.container.Children() {
		p.world.Destroy(child)
		destroyed++
	}

	p.index = make(map[string]host.GameObject)
	p.table.Clear()

	p.log.Info("pool cleaned up",
		zap.Int("destroyed", destroyed),
		zap.Int("stopped", stopped))
}

package hostsim

import (
	"github.com/sarchlab/rebalance/host"
)

// World is the in-memory scene graph.
type World struct {
	nextID  uint64
	objects []*GameObject
	scene   string
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{}
}

func (w *World) newObject(name string, inScene bool) *GameObject {
	w.nextID++

	o := &GameObject{
		world:   w,
		id:      w.nextID,
		name:    name,
		alive:   true,
		active:  true,
		scale:   host.Vec3{X: 1, Y: 1, Z: 1},
		inScene: inScene,
		started: make(map[host.Component]bool),
	}
	w.objects = append(w.objects, o)

	return o
}

// NewGameObject creates an active root object in the current scene.
func (w *World) NewGameObject(name string) host.GameObject {
	return w.NewObject(name)
}

// NewObject is NewGameObject returning the concrete type.
func (w *World) NewObject(name string) *GameObject {
	return w.newObject(name, true)
}

// NewPrefab creates a root object that lives outside scenes.
func (w *World) NewPrefab(name string) *GameObject {
	return w.newObject(name, false)
}

// Instantiate places a copy of prefab in the scene.
func (w *World) Instantiate(
	prefab host.GameObject,
	pos host.Vec3,
	rot host.Euler,
) host.GameObject {
	src := prefab.(*GameObject)

	c := src.clone(w, true)
	c.name = src.name + "(Clone)"
	c.pos = pos
	c.rot = rot

	return c
}

// Destroy destroys obj and its descendants.
func (w *World) Destroy(obj host.GameObject) {
	o, ok := obj.(*GameObject)
	if !ok || !o.alive {
		return
	}

	if o.parent != nil {
		o.parent.removeChild(o)
		o.parent = nil
	}

	o.destroy()
}

func (o *GameObject) destroy() {
	o.alive = false

	for _, c := range o.children {
		c.destroy()
	}

	for _, comp := range o.components {
		if d, ok := comp.(host.Destroyable); ok {
			d.OnDestroy(o)
		}
	}
}

// KeepAcrossScenes marks the root of obj persistent.
func (w *World) KeepAcrossScenes(obj host.GameObject) {
	o := obj.(*GameObject)
	for o.parent != nil {
		o = o.parent
	}

	o.persistent = true
}

// FindObjects returns live objects match accepts.
func (w *World) FindObjects(match func(host.GameObject) bool) []host.GameObject {
	var out []host.GameObject

	for _, o := range w.objects {
		if o.alive && match(o) {
			out = append(out, o)
		}
	}

	return out
}

// Scene returns the name of the active scene.
func (w *World) Scene() string {
	return w.scene
}

// Live returns the number of live objects.
func (w *World) Live() int {
	n := 0

	for _, o := range w.objects {
		if o.alive {
			n++
		}
	}

	return n
}

// unloadScene destroys every scene root that is not persistent.
func (w *World) unloadScene() {
	for _, o := range w.objects {
		if o.alive && o.inScene && o.parent == nil && !o.persistent {
			o.destroy()
		}
	}
}

// update starts behaviours, updates state machines and integrates bodies.
func (w *World) update(dt float64) {
	w.compact()

	objects := append([]*GameObject(nil), w.objects...)

	for _, o := range objects {
		if !o.alive || !o.inScene || !o.ActiveInHierarchy() {
			continue
		}

		o.startBehaviours()

		for _, m := range o.fsms {
			m.update(dt)
		}
	}

	for _, o := range objects {
		if !o.alive || !o.inScene || !o.ActiveInHierarchy() {
			continue
		}

		if b, ok := o.Component(host.BodyKind).(*host.Body); ok {
			o.pos = o.pos.Add(host.Vec3{X: b.Velocity.X, Y: b.Velocity.Y}.Scale(dt))
		}
	}
}

func (o *GameObject) startBehaviours() {
	for _, c := range o.Components() {
		b, ok := c.(host.Behaviour)
		if !ok || o.started[c] {
			continue
		}

		o.started[c] = true
		b.Start(o)
	}
}

func (w *World) compact() {
	live := w.objects[:0]

	for _, o := range w.objects {
		if o.alive {
			live = append(live, o)
		}
	}

	for i := len(live); i < len(w.objects); i++ {
		w.objects[i] = nil
	}

	w.objects = live
}

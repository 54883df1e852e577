package hostsim

import (
	"strings"

	"github.com/sarchlab/rebalance/host"
)

// GameObject is an in-memory scene graph node.
type GameObject struct {
	world *World

	id     uint64
	name   string
	alive  bool
	active bool

	parent   *GameObject
	children []*GameObject

	pos   host.Vec3
	rot   host.Euler
	scale host.Vec3

	components []host.Component
	fsms       []*StateMachine

	inScene    bool
	persistent bool
	started    map[host.Component]bool
}

// Name returns the name of the object.
func (o *GameObject) Name() string {
	return o.name
}

// Kind returns host.KindGameObject.
func (o *GameObject) Kind() host.Kind {
	return host.KindGameObject
}

// Alive returns false after the object is destroyed.
func (o *GameObject) Alive() bool {
	return o.alive
}

// ID returns the unique id of the object.
func (o *GameObject) ID() uint64 {
	return o.id
}

// SetName renames the object.
func (o *GameObject) SetName(name string) {
	o.name = name
}

// Find looks up a descendant by a slash separated path.
func (o *GameObject) Find(path string) host.GameObject {
	found := o.find(path)
	if found == nil {
		return nil
	}

	return found
}

func (o *GameObject) find(path string) *GameObject {
	cur := o

	for _, segment := range strings.Split(path, "/") {
		var next *GameObject

		for _, c := range cur.children {
			if c.name == segment {
				next = c
				break
			}
		}

		if next == nil {
			return nil
		}

		cur = next
	}

	return cur
}

// Children returns the direct children.
func (o *GameObject) Children() []host.GameObject {
	out := make([]host.GameObject, len(o.children))
	for i, c := range o.children {
		out[i] = c
	}

	return out
}

// Parent returns the parent, or nil for roots.
func (o *GameObject) Parent() host.GameObject {
	if o.parent == nil {
		return nil
	}

	return o.parent
}

// SetParent moves the object under parent.
func (o *GameObject) SetParent(parent host.GameObject) {
	if o.parent != nil {
		o.parent.removeChild(o)
		o.parent = nil
	}

	if parent == nil {
		return
	}

	p := parent.(*GameObject)
	p.children = append(p.children, o)
	o.parent = p
	o.setInScene(p.inScene)
}

func (o *GameObject) removeChild(c *GameObject) {
	for i, child := range o.children {
		if child == c {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

func (o *GameObject) setInScene(inScene bool) {
	o.inScene = inScene
	for _, c := range o.children {
		c.setInScene(inScene)
	}
}

// Active returns the object's own active flag.
func (o *GameObject) Active() bool {
	return o.active
}

// SetActive sets the object's own active flag.
func (o *GameObject) SetActive(active bool) {
	o.active = active
}

// ActiveInHierarchy returns true if the object and all its ancestors are
// active.
func (o *GameObject) ActiveInHierarchy() bool {
	for cur := o; cur != nil; cur = cur.parent {
		if !cur.active {
			return false
		}
	}

	return true
}

// Position returns the position.
func (o *GameObject) Position() host.Vec3 {
	return o.pos
}

// SetPosition moves the object.
func (o *GameObject) SetPosition(p host.Vec3) {
	o.pos = p
}

// Rotation returns the rotation.
func (o *GameObject) Rotation() host.Euler {
	return o.rot
}

// SetRotation rotates the object.
func (o *GameObject) SetRotation(r host.Euler) {
	o.rot = r
}

// LocalScale returns the scale.
func (o *GameObject) LocalScale() host.Vec3 {
	return o.scale
}

// SetLocalScale scales the object.
func (o *GameObject) SetLocalScale(s host.Vec3) {
	o.scale = s
}

// Component returns the first component of kind.
func (o *GameObject) Component(kind string) host.Component {
	for _, c := range o.components {
		if c.ComponentKind() == kind {
			return c
		}
	}

	return nil
}

// Components returns all components.
func (o *GameObject) Components() []host.Component {
	return append([]host.Component(nil), o.components...)
}

// AddComponent attaches c.
func (o *GameObject) AddComponent(c host.Component) {
	o.components = append(o.components, c)
}

// RemoveComponent detaches c and tells it so.
func (o *GameObject) RemoveComponent(c host.Component) {
	for i, existing := range o.components {
		if existing != c {
			continue
		}

		o.components = append(o.components[:i], o.components[i+1:]...)
		delete(o.started, c)

		if d, ok := c.(host.Destroyable); ok {
			d.OnDestroy(o)
		}

		return
	}
}

// StateMachines returns the machines attached to the object.
func (o *GameObject) StateMachines() []host.StateMachine {
	out := make([]host.StateMachine, len(o.fsms))
	for i, m := range o.fsms {
		out[i] = m
	}

	return out
}

// AddStateMachine attaches a new machine with the given states.
func (o *GameObject) AddStateMachine(name string, states ...*State) *StateMachine {
	m := &StateMachine{name: name, owner: o, states: states}
	o.fsms = append(o.fsms, m)

	return m
}

// Machine returns the named machine or nil.
func (o *GameObject) Machine(name string) *StateMachine {
	for _, m := range o.fsms {
		if m.name == name {
			return m
		}
	}

	return nil
}

// InScene returns true for scene objects.
func (o *GameObject) InScene() bool {
	return o.inScene
}

// Persistent returns true if the object's root survives scene changes.
func (o *GameObject) Persistent() bool {
	root := o
	for root.parent != nil {
		root = root.parent
	}

	return root.persistent
}

// AddChild creates a new child object.
func (o *GameObject) AddChild(name string) *GameObject {
	c := o.world.newObject(name, o.inScene)
	c.SetParent(o)

	return c
}

func (o *GameObject) clone(w *World, inScene bool) *GameObject {
	c := w.newObject(o.name, inScene)
	c.active = o.active
	c.pos = o.pos
	c.rot = o.rot
	c.scale = o.scale

	for _, comp := range o.components {
		c.components = append(c.components, comp.Clone())
	}

	for _, m := range o.fsms {
		c.fsms = append(c.fsms, m.clone(c))
	}

	for _, child := range o.children {
		cc := child.clone(w, inScene)
		cc.parent = c
		c.children = append(c.children, cc)
	}

	return c
}

// Asset is a content object that is not a GameObject.
type Asset struct {
	name  string
	kind  host.Kind
	alive bool
}

// NewAsset creates an asset.
func NewAsset(name string, kind host.Kind) *Asset {
	return &Asset{name: name, kind: kind, alive: true}
}

// Name returns the asset name.
func (a *Asset) Name() string {
	return a.name
}

// Kind returns the asset kind.
func (a *Asset) Kind() host.Kind {
	return a.kind
}

// Alive returns false after Destroy.
func (a *Asset) Alive() bool {
	return a.alive
}

// Destroy marks the asset destroyed.
func (a *Asset) Destroy() {
	a.alive = false
}

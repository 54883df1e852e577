package host

// A GameObject is a node of the host's scene graph.
type GameObject interface {
	Object

	// ID is unique among all objects the host ever created.
	ID() uint64

	SetName(name string)

	// Find looks up a descendant by a slash separated path of child names.
	// It returns nil when any segment is missing.
	Find(path string) GameObject

	Children() []GameObject
	Parent() GameObject

	// SetParent moves the object under parent. A nil parent detaches it.
	SetParent(parent GameObject)

	Active() bool
	SetActive(active bool)

	Position() Vec3
	SetPosition(p Vec3)
	Rotation() Euler
	SetRotation(r Euler)
	LocalScale() Vec3
	SetLocalScale(s Vec3)

	// Component returns the first component of the kind, or nil.
	Component(kind string) Component
	Components() []Component
	AddComponent(c Component)
	RemoveComponent(c Component)

	StateMachines() []StateMachine

	// InScene returns true for objects placed in a loaded scene, and false
	// for prefabs that only live in content bundles.
	InScene() bool
}

// World creates, finds and destroys scene objects.
type World interface {
	NewGameObject(name string) GameObject

	// Instantiate places a deep copy of prefab into the active scene.
	Instantiate(prefab GameObject, pos Vec3, rot Euler) GameObject

	// Destroy destroys obj and its descendants at the end of the call.
	Destroy(obj GameObject)

	// KeepAcrossScenes marks a root object to survive scene changes.
	KeepAcrossScenes(obj GameObject)

	// FindObjects returns every live object, prefabs included, that match
	// returns true for.
	FindObjects(match func(GameObject) bool) []GameObject
}

// Walk visits obj and all its descendants depth first.
func Walk(obj GameObject, visit func(GameObject)) {
	if obj == nil {
		return
	}

	visit(obj)

	for _, child := range obj.Children() {
		Walk(child, visit)
	}
}

// Damagers returns every Damager component in the subtree of obj.
func Damagers(obj GameObject) []*Damager {
	var out []*Damager

	Walk(obj, func(o GameObject) {
		if d, ok := o.Component(DamagerKind).(*Damager); ok {
			out = append(out, d)
		}
	})

	return out
}

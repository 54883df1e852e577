package host

// An Action is one instruction of a state. The host calls OnEnter when the
// state is entered.
type Action interface {
	OnEnter(owner GameObject)
}

// An Updater action is also called every frame while its state is active.
type Updater interface {
	Action
	OnUpdate(owner GameObject, dt float64)
}

// An Exiter action is told when its state is left.
type Exiter interface {
	Action
	OnExit(owner GameObject)
}

// An ActionCloner action carries per-object state and is copied when its
// object is instantiated. Other actions are shared between copies.
type ActionCloner interface {
	Action
	CloneAction() Action
}

// ActivateAction is the host instruction that activates a child object.
type ActivateAction interface {
	Action
	Target() string
}

// MessageAction is the host instruction that calls a named function on its
// object.
type MessageAction interface {
	Action
	FunctionName() string
}

// A StateMachine is a behaviour script attached to a GameObject.
type StateMachine interface {
	Name() string
	Owner() GameObject

	// State returns the named state or nil.
	State(name string) State
	States() []State
}

// A State holds an ordered list of actions.
type State interface {
	Name() string

	// Actions returns the live list. Callers must not modify it in place.
	Actions() []Action

	// SetActions replaces the whole list at once.
	SetActions(actions []Action)
}

// FindStateMachine returns the machine of obj with the given name, or nil.
func FindStateMachine(obj GameObject, name string) StateMachine {
	if obj == nil {
		return nil
	}

	for _, fsm := range obj.StateMachines() {
		if fsm.Name() == name {
			return fsm
		}
	}

	return nil
}

// FindState returns the first state named name over all machines of obj.
func FindState(obj GameObject, name string) State {
	if obj == nil {
		return nil
	}

	for _, fsm := range obj.StateMachines() {
		if s := fsm.State(name); s != nil {
			return s
		}
	}

	return nil
}

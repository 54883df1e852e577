package hostsim

import "github.com/sarchlab/rebalance/host"

// StateMachine runs one state at a time.
type StateMachine struct {
	name    string
	owner   *GameObject
	states  []*State
	current *State
}

// Name returns the machine name.
func (m *StateMachine) Name() string {
	return m.name
}

// Owner returns the object the machine is attached to.
func (m *StateMachine) Owner() host.GameObject {
	return m.owner
}

// State returns the named state.
func (m *StateMachine) State(name string) host.State {
	for _, s := range m.states {
		if s.name == name {
			return s
		}
	}

	return nil
}

// States returns all states.
func (m *StateMachine) States() []host.State {
	out := make([]host.State, len(m.states))
	for i, s := range m.states {
		out[i] = s
	}

	return out
}

// Current returns the name of the active state, or "".
func (m *StateMachine) Current() string {
	if m.current == nil {
		return ""
	}

	return m.current.name
}

// Enter leaves the current state and enters the named one.
func (m *StateMachine) Enter(name string) bool {
	var next *State

	for _, s := range m.states {
		if s.name == name {
			next = s
		}
	}

	if next == nil {
		return false
	}

	m.Leave()
	m.current = next

	for _, a := range next.Actions() {
		a.OnEnter(m.owner)
	}

	return true
}

// Leave exits the current state.
func (m *StateMachine) Leave() {
	if m.current == nil {
		return
	}

	for _, a := range m.current.Actions() {
		if e, ok := a.(host.Exiter); ok {
			e.OnExit(m.owner)
		}
	}

	m.current = nil
}

func (m *StateMachine) update(dt float64) {
	if m.current == nil {
		return
	}

	for _, a := range m.current.Actions() {
		if u, ok := a.(host.Updater); ok {
			u.OnUpdate(m.owner, dt)
		}
	}
}

func (m *StateMachine) clone(owner *GameObject) *StateMachine {
	c := &StateMachine{name: m.name, owner: owner}

	for _, s := range m.states {
		cs := &State{name: s.name, actions: make([]host.Action, len(s.actions))}

		for i, a := range s.actions {
			if cl, ok := a.(host.ActionCloner); ok {
				cs.actions[i] = cl.CloneAction()
			} else {
				cs.actions[i] = a
			}
		}

		c.states = append(c.states, cs)

		if m.current == s {
			c.current = cs
		}
	}

	return c
}

// State is a named list of actions.
type State struct {
	name    string
	actions []host.Action
	writes  int
}

// NewState creates a state.
func NewState(name string, actions ...host.Action) *State {
	return &State{name: name, actions: actions}
}

// Name returns the state name.
func (s *State) Name() string {
	return s.name
}

// Actions returns the live action list.
func (s *State) Actions() []host.Action {
	return s.actions
}

// SetActions replaces the action list.
func (s *State) SetActions(actions []host.Action) {
	s.actions = actions
	s.writes++
}

// Writes counts SetActions calls.
func (s *State) Writes() int {
	return s.writes
}

// ActivateGameObject activates a child of the owner on enter.
type ActivateGameObject struct {
	Child string
}

// OnEnter activates the child.
func (a *ActivateGameObject) OnEnter(owner host.GameObject) {
	if c := owner.Find(a.Child); c != nil {
		c.SetActive(true)
	}
}

// Target returns the child path.
func (a *ActivateGameObject) Target() string {
	return a.Child
}

// SendMessage calls a named function of the owner on enter.
type SendMessage struct {
	Function string
	Receiver func(owner host.GameObject)
}

// OnEnter calls the receiver.
func (a *SendMessage) OnEnter(owner host.GameObject) {
	if a.Receiver != nil {
		a.Receiver(owner)
	}
}

// FunctionName returns the called function.
func (a *SendMessage) FunctionName() string {
	return a.Function
}

// Wait is a host action that does nothing on enter.
type Wait struct {
	Seconds float64
}

// OnEnter does nothing.
func (a *Wait) OnEnter(host.GameObject) {}

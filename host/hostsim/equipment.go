package hostsim

import "github.com/sarchlab/rebalance/host"

// Equipment tracks the equipped crest and tools.
type Equipment struct {
	sim      *Sim
	crest    string
	equipped map[string]bool
}

func newEquipment(s *Sim) *Equipment {
	return &Equipment{sim: s, equipped: make(map[string]bool)}
}

// IsEquipped returns true if id is the equipped crest or an equipped tool.
func (e *Equipment) IsEquipped(id string) bool {
	return id == e.crest || e.equipped[id]
}

// Crest returns the equipped crest.
func (e *Equipment) Crest() string {
	return e.crest
}

// EquipCrest switches crest.
func (e *Equipment) EquipCrest(id string) {
	e.sim.interceptor.Call(host.MethodSetEquippedCrest, &id, nil, func() {
		e.crest = id
	})
	e.changed()
}

// Equip equips a tool.
func (e *Equipment) Equip(id string) {
	e.equipped[id] = true
	e.changed()
}

// Unequip removes a tool.
func (e *Equipment) Unequip(id string) {
	delete(e.equipped, id)
	e.changed()
}

func (e *Equipment) changed() {
	e.sim.interceptor.Call(host.MethodRefreshEquippedState, nil, nil, nil)
	e.sim.interceptor.Call(host.MethodSendEquippedChangedEvt, nil, nil, nil)
}

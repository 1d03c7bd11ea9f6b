package sim

import "fmt"

// EntityKey is a stable handle to an entity. The generation distinguishes an
// entity from a later one that reuses the same slot, so a stale key never
// resolves to the wrong entity.
type EntityKey struct {
	Index      uint32 `json:"index"`
	Generation uint32 `json:"generation"`
}

// NoKey is the zero key; no entity is ever stored under it.
var NoKey = EntityKey{Index: ^uint32(0)}

// IsZero reports whether k is NoKey.
func (k EntityKey) IsZero() bool {
	return k == NoKey
}

func (k EntityKey) String() string {
	return fmt.Sprintf("%d:%d", k.Index, k.Generation)
}

// Slot is one cell of the arena.
type Slot struct {
	Generation uint32  `json:"generation"`
	Entity     *Entity `json:"entity,omitempty"`
}

// Entities is a generational arena of entities. Iteration is always in slot
// order so every stage of the frame visits entities deterministically.
type Entities struct {
	Slots []Slot `json:"slots"`
}

// Insert stores e in the lowest free slot and returns its key.
func (es *Entities) Insert(e *Entity) EntityKey {
	for i := range es.Slots {
		if es.Slots[i].Entity == nil {
			es.Slots[i].Entity = e
			return EntityKey{Index: uint32(i), Generation: es.Slots[i].Generation}
		}
	}
	es.Slots = append(es.Slots, Slot{Entity: e})
	return EntityKey{Index: uint32(len(es.Slots) - 1)}
}

// Get returns the entity for key, or nil if it was removed.
func (es *Entities) Get(key EntityKey) *Entity {
	if int(key.Index) >= len(es.Slots) {
		return nil
	}
	slot := &es.Slots[key.Index]
	if slot.Generation != key.Generation {
		return nil
	}
	return slot.Entity
}

// Remove deletes the entity for key. Removing a stale key is a no-op.
func (es *Entities) Remove(key EntityKey) {
	if es.Get(key) == nil {
		return
	}
	slot := &es.Slots[key.Index]
	slot.Entity = nil
	slot.Generation++
}

// Keys returns the keys of every live entity in slot order.
func (es *Entities) Keys() []EntityKey {
	keys := make([]EntityKey, 0, len(es.Slots))
	for i, slot := range es.Slots {
		if slot.Entity != nil {
			keys = append(keys, EntityKey{Index: uint32(i), Generation: slot.Generation})
		}
	}
	return keys
}

// Len returns the number of live entities.
func (es *Entities) Len() int {
	n := 0
	for _, slot := range es.Slots {
		if slot.Entity != nil {
			n++
		}
	}
	return n
}

// Each calls fn for every live entity in slot order.
func (es *Entities) Each(fn func(EntityKey, *Entity)) {
	for i, slot := range es.Slots {
		if slot.Entity != nil {
			fn(EntityKey{Index: uint32(i), Generation: slot.Generation}, slot.Entity)
		}
	}
}

// Clone returns a deep copy of the arena.
func (es *Entities) Clone() *Entities {
	out := &Entities{Slots: make([]Slot, len(es.Slots))}
	for i, slot := range es.Slots {
		out.Slots[i].Generation = slot.Generation
		if slot.Entity != nil {
			out.Slots[i].Entity = slot.Entity.Clone()
		}
	}
	return out
}

// Players returns the live players in slot order.
func (es *Entities) Players() []*Player {
	var players []*Player
	es.Each(func(_ EntityKey, e *Entity) {
		if e.Player != nil {
			players = append(players, e.Player)
		}
	})
	return players
}

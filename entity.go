package spatial

import (
	"fmt"
	"iter"

	"github.com/TheBitDrifter/mask"
)

// Entity is a stable handle to one simulated object. The zero value is the
// nil entity. A handle stays invalid once its entity is destroyed, even if the
// slot is reused.
type Entity struct {
	ID         uint32
	Generation uint32
}

// NilEntity refers to nothing.
var NilEntity Entity

func (e Entity) IsNil() bool {
	return e.ID == 0
}

func (e Entity) String() string {
	return fmt.Sprintf("%d:%d", e.ID, e.Generation)
}

type entitySlot struct {
	generation uint32
	alive      bool
	mask       mask.Mask
}

// entityArena hands out handles and tracks each live entity's component mask.
// Slot i holds the entity with ID i+1.
type entityArena struct {
	slots []entitySlot
	free  []uint32
	live  int
}

func (a *entityArena) spawn() Entity {
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		slot := &a.slots[id-1]
		slot.alive = true
		slot.mask = mask.Mask{}
		a.live++
		return Entity{ID: id, Generation: slot.generation}
	}
	a.slots = append(a.slots, entitySlot{alive: true})
	a.live++
	return Entity{ID: uint32(len(a.slots))}
}

func (a *entityArena) release(e Entity) bool {
	slot, ok := a.slot(e)
	if !ok {
		return false
	}
	slot.alive = false
	slot.mask = mask.Mask{}
	slot.generation++
	a.free = append(a.free, e.ID)
	a.live--
	return true
}

func (a *entityArena) slot(e Entity) (*entitySlot, bool) {
	if e.ID == 0 || int(e.ID) > len(a.slots) {
		return nil, false
	}
	slot := &a.slots[e.ID-1]
	if !slot.alive || slot.generation != e.Generation {
		return nil, false
	}
	return slot, true
}

func (a *entityArena) alive(e Entity) bool {
	_, ok := a.slot(e)
	return ok
}

func (a *entityArena) all() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for i := range a.slots {
			slot := &a.slots[i]
			if !slot.alive {
				continue
			}
			if !yield(Entity{ID: uint32(i + 1), Generation: slot.generation}) {
				return
			}
		}
	}
}

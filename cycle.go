package spatial

import "slices"

// cycleGuard finds cycles by walking parent links. Every entity is stamped
// with the walk that first reached it, so each entity is walked once and each
// cycle is found exactly once: by the walk that revisits its own stamp.
type cycleGuard struct {
	stamps map[Entity]uint32
	walk   uint32
	path   []Entity
}

func newCycleGuard() cycleGuard {
	return cycleGuard{stamps: make(map[Entity]uint32)}
}

func (g *cycleGuard) detect(sto Storage, starts []Entity) []StructuralError {
	clear(g.stamps)
	g.walk = 0

	var found []StructuralError
	for _, start := range starts {
		if _, seen := g.stamps[start]; seen {
			continue
		}
		g.walk++
		g.path = g.path[:0]

		e := start
		for {
			if stamp, seen := g.stamps[e]; seen {
				if stamp == g.walk {
					first := slices.Index(g.path, e)
					found = append(found, StructuralError{
						Kind:   CyclicEdge,
						Parent: e,
						Child:  g.path[len(g.path)-1],
						Cycle:  slices.Clone(g.path[first:]),
					})
				}
				break
			}
			g.stamps[e] = g.walk
			g.path = append(g.path, e)

			parent := ParentComponent.GetFromEntity(sto, e)
			if parent == nil || !sto.Alive(parent.Entity) {
				break
			}
			e = parent.Entity
		}
	}
	return found
}

// FindCycles reports every cycle in the parent graph without propagating.
// Editors use it to validate a reparent before the next frame.
func FindCycles(sto Storage) []StructuralError {
	q := newQuery()
	q.And(ParentComponent)
	var starts []Entity
	for e := range newCursor(q, sto).Entities() {
		starts = append(starts, e)
	}
	guard := newCycleGuard()
	return guard.detect(sto, starts)
}

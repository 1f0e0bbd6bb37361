package spatial

import (
	"errors"
	"fmt"
)

type operation struct {
	typ      operationType
	amount   int
	comps    []Component
	entities []Entity
	parent   Entity
}

type operationType int

const (
	opNoop operationType = iota - 1
	opCreate
	opDestroy
	opAddComponent
	opRemoveComponent
	opSetParent
	opRemoveParent
)

// opKey identifies one component slot of one entity. Later requests for the
// same slot replace earlier ones.
type opKey struct {
	entity Entity
	slot   uint32
}

type opQueue struct {
	createOps      []operation
	componentOps   []operation
	destroyOps     []operation
	pendingDestroy map[Entity]struct{}
	pendingMods    map[opKey]int
}

func newOpQueue() opQueue {
	return opQueue{
		pendingDestroy: make(map[Entity]struct{}),
		pendingMods:    make(map[opKey]int),
	}
}

func (q *opQueue) enqueueOp(op operation) {
	switch op.typ {
	case opCreate:
		q.createOps = append(q.createOps, op)
	case opDestroy:
		q.destroyOps = append(q.destroyOps, op)
	case opAddComponent, opRemoveComponent, opSetParent, opRemoveParent:
		q.componentOps = append(q.componentOps, op)
	}
}

func (q *opQueue) empty() bool {
	return len(q.createOps) == 0 && len(q.componentOps) == 0 && len(q.destroyOps) == 0
}

// processOperationQueue applies creates, then component and parent changes,
// then destroys. Every operation is attempted; failures are joined.
func (sto *storage) processOperationQueue() error {
	if sto.opQueue.empty() {
		return nil
	}
	var errs []error

	for _, op := range sto.opQueue.createOps {
		if _, err := sto.NewEntities(op.amount, op.comps...); err != nil {
			errs = append(errs, fmt.Errorf("failed to process queued entity creation: %w", err))
		}
	}

	for _, op := range sto.opQueue.componentOps {
		entity := op.entities[0]
		// Skip entities destroyed since the request
		if op.typ == opNoop || !sto.Alive(entity) {
			continue
		}
		var err error
		switch op.typ {
		case opAddComponent:
			err = sto.AddComponent(entity, op.comps[0])
		case opRemoveComponent:
			err = sto.RemoveComponent(entity, op.comps[0])
		case opSetParent:
			err = sto.SetParent(entity, op.parent)
		case opRemoveParent:
			err = sto.RemoveParent(entity)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to apply queued change to %v: %w", entity, err))
		}
	}

	for _, op := range sto.opQueue.destroyOps {
		if err := sto.DestroyEntities(op.entities...); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete queued entities: %w", err))
		}
	}

	sto.opQueue.createOps = sto.opQueue.createOps[:0]
	sto.opQueue.componentOps = sto.opQueue.componentOps[:0]
	sto.opQueue.destroyOps = sto.opQueue.destroyOps[:0]
	clear(sto.opQueue.pendingDestroy)
	clear(sto.opQueue.pendingMods)
	return errors.Join(errs...)
}

func (q *opQueue) EnqueueDestroy(entities []Entity) {
	var newEntities []Entity
	for _, entity := range entities {
		if _, exists := q.pendingDestroy[entity]; exists {
			continue
		}
		newEntities = append(newEntities, entity)
		q.pendingDestroy[entity] = struct{}{}

		// Pending changes to a destroyed entity become no-ops
		for key, idx := range q.pendingMods {
			if key.entity == entity {
				q.componentOps[idx].typ = opNoop
				delete(q.pendingMods, key)
			}
		}
	}

	if len(newEntities) > 0 {
		q.destroyOps = append(q.destroyOps, operation{
			typ:      opDestroy,
			entities: newEntities,
		})
	}
}

func (q *opQueue) EnqueueComponentOp(typ operationType, entity Entity, comp Component, slot uint32) {
	q.enqueueSlotOp(operation{
		typ:      typ,
		entities: []Entity{entity},
		comps:    []Component{comp},
	}, slot)
}

func (q *opQueue) EnqueueParentOp(typ operationType, child, parent Entity, slot uint32) {
	q.enqueueSlotOp(operation{
		typ:      typ,
		entities: []Entity{child},
		parent:   parent,
	}, slot)
}

func (q *opQueue) enqueueSlotOp(op operation, slot uint32) {
	entity := op.entities[0]
	if _, isDestroyed := q.pendingDestroy[entity]; isDestroyed {
		return
	}
	key := opKey{entity: entity, slot: slot}
	if existingIdx, exists := q.pendingMods[key]; exists {
		q.componentOps[existingIdx] = op
		return
	}
	q.pendingMods[key] = len(q.componentOps)
	q.enqueueOp(op)
}

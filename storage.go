package spatial

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
	"github.com/go-gl/mathgl/mgl32"
)

var _ Storage = &storage{}

type storage struct {
	locked   bool
	schema   table.Schema
	entities entityArena
	columns  []*column
	opQueue  opQueue
	logger   *slog.Logger
}

func newStorage(schema table.Schema) *storage {
	return &storage{
		schema:  schema,
		opQueue: newOpQueue(),
		logger:  bark.For("storage"),
	}
}

func (sto *storage) NewEntities(n int, components ...Component) ([]Entity, error) {
	if sto.locked {
		return nil, LockedStorageError{}
	}
	if n <= 0 {
		return nil, fmt.Errorf("cannot create %d entities", n)
	}
	if err := validateComponentSet(NilEntity, components); err != nil {
		return nil, err
	}
	created := make([]Entity, n)
	for i := range created {
		e := sto.entities.spawn()
		created[i] = e
		for _, c := range components {
			if err := sto.addComponent(e, c); err != nil {
				sto.destroy(created[:i+1]...)
				return nil, fmt.Errorf("failed to create entities: %w", err)
			}
		}
	}
	return created, nil
}

func (sto *storage) EnqueueNewEntities(n int, components ...Component) error {
	if !sto.locked {
		_, err := sto.NewEntities(n, components...)
		if err != nil {
			return fmt.Errorf("failed to create entities directly: %w", err)
		}
		return nil
	}
	sto.opQueue.enqueueOp(operation{
		typ:    opCreate,
		amount: n,
		comps:  components,
	})
	return nil
}

// Spawn builds entities from loader bundles. Either every bundle is created
// or none is.
func (sto *storage) Spawn(bundles ...Bundle) ([]Entity, error) {
	if sto.locked {
		return nil, LockedStorageError{}
	}
	for i, b := range bundles {
		if b.Transform != nil && b.WorldTransform != nil {
			return nil, PlacementConflictError{}
		}
		if b.ParentIndex < 0 || b.ParentIndex > len(bundles) {
			return nil, fmt.Errorf("bundle %d: parent index %d out of range", i, b.ParentIndex)
		}
		if err := validateComponentSet(NilEntity, b.Components); err != nil {
			return nil, fmt.Errorf("bundle %d: %w", i, err)
		}
	}

	created := make([]Entity, 0, len(bundles))
	fail := func(err error) ([]Entity, error) {
		sto.destroy(created...)
		return nil, err
	}
	for i, b := range bundles {
		e := sto.entities.spawn()
		created = append(created, e)
		for _, c := range b.Components {
			if err := sto.addComponent(e, c); err != nil {
				return fail(fmt.Errorf("bundle %d: %w", i, err))
			}
		}
		if b.Name != "" {
			if err := NameComponent.SetOnEntity(sto, e, Name(b.Name)); err != nil {
				return fail(fmt.Errorf("bundle %d: %w", i, err))
			}
		}
		var err error
		switch {
		case b.Transform != nil:
			err = sto.SetTransform(e, *b.Transform)
		case b.WorldTransform != nil:
			err = sto.SetWorldTransform(e, *b.WorldTransform)
		}
		if err != nil {
			return fail(fmt.Errorf("bundle %d: %w", i, err))
		}
	}
	for i, b := range bundles {
		parent := b.Parent
		if b.ParentIndex > 0 {
			parent = created[b.ParentIndex-1]
		}
		if parent.IsNil() {
			continue
		}
		if err := sto.SetParent(created[i], parent); err != nil {
			return fail(fmt.Errorf("bundle %d: %w", i, err))
		}
	}
	return created, nil
}

// DestroyEntities removes entities and all their components. Handles that are
// nil or already destroyed are ignored. Parent references to destroyed
// entities are left in place and treated as dangling by the propagator.
func (sto *storage) DestroyEntities(entities ...Entity) error {
	if sto.locked {
		return LockedStorageError{}
	}
	return sto.destroy(entities...)
}

func (sto *storage) destroy(entities ...Entity) error {
	for _, e := range entities {
		slot, ok := sto.entities.slot(e)
		if !ok {
			continue
		}
		entityMask := slot.mask
		for bit, col := range sto.columns {
			if col == nil || !entityMask.Contains(uint32(bit)) {
				continue
			}
			if err := col.remove(e); err != nil {
				return bark.AddTrace(fmt.Errorf("failed to delete entries: %w", err))
			}
		}
		sto.entities.release(e)
	}
	return nil
}

func (sto *storage) EnqueueDestroyEntities(entities ...Entity) error {
	if !sto.locked {
		return sto.DestroyEntities(entities...)
	}
	sto.opQueue.EnqueueDestroy(entities)
	return nil
}

func (sto *storage) Alive(e Entity) bool {
	return sto.entities.alive(e)
}

func (sto *storage) Entities() iter.Seq[Entity] {
	return sto.entities.all()
}

func (sto *storage) Len() int {
	return sto.entities.live
}

func (sto *storage) Mask(e Entity) (mask.Mask, bool) {
	slot, ok := sto.entities.slot(e)
	if !ok {
		return mask.Mask{}, false
	}
	return slot.mask, true
}

func (sto *storage) Has(e Entity, c Component) bool {
	slot, ok := sto.entities.slot(e)
	return ok && slot.mask.Contains(sto.RowIndexFor(c))
}

func (sto *storage) AddComponent(e Entity, c Component) error {
	if sto.locked {
		return LockedStorageError{}
	}
	return sto.addComponent(e, c)
}

func (sto *storage) RemoveComponent(e Entity, c Component) error {
	if sto.locked {
		return LockedStorageError{}
	}
	return sto.removeComponent(e, c)
}

func (sto *storage) EnqueueAddComponent(e Entity, c Component) error {
	if !sto.locked {
		return sto.AddComponent(e, c)
	}
	sto.opQueue.EnqueueComponentOp(opAddComponent, e, c, sto.RowIndexFor(c))
	return nil
}

func (sto *storage) EnqueueRemoveComponent(e Entity, c Component) error {
	if !sto.locked {
		return sto.RemoveComponent(e, c)
	}
	sto.opQueue.EnqueueComponentOp(opRemoveComponent, e, c, sto.RowIndexFor(c))
	return nil
}

// SetTransform stores t with its rotation normalized, adding the component
// when missing.
func (sto *storage) SetTransform(e Entity, t Transform) error {
	if sto.locked {
		return LockedStorageError{}
	}
	if !t.finite() {
		return InvalidTransformError{Entity: e, Reason: "position, rotation and scale must be finite"}
	}
	return TransformComponent.SetOnEntity(sto, e, t.Normalized())
}

func (sto *storage) SetWorldTransform(e Entity, w WorldTransform) error {
	if sto.locked {
		return LockedStorageError{}
	}
	if !w.finite() {
		return InvalidTransformError{Entity: e, Reason: "position, rotation and scale must be finite"}
	}
	w.Rotation = w.Rotation.Normalize()
	return WorldTransformComponent.SetOnEntity(sto, e, w)
}

// SetParent points child at parent. Cycles are accepted here and rejected by
// the propagator. Edges between a Transform entity and a WorldTransform
// entity are refused.
func (sto *storage) SetParent(child, parent Entity) error {
	if sto.locked {
		return LockedStorageError{}
	}
	if !sto.Alive(child) {
		return EntityNotFoundError{Entity: child}
	}
	if !sto.Alive(parent) {
		return EntityNotFoundError{Entity: parent}
	}
	if mixedTiers(tierOf(sto, child), tierOf(sto, parent)) {
		return TierMismatchError{Child: child, Parent: parent}
	}
	return ParentComponent.SetOnEntity(sto, child, Parent{Entity: parent})
}

func (sto *storage) RemoveParent(child Entity) error {
	if sto.locked {
		return LockedStorageError{}
	}
	return sto.removeComponent(child, ParentComponent)
}

func (sto *storage) EnqueueSetParent(child, parent Entity) error {
	if !sto.locked {
		return sto.SetParent(child, parent)
	}
	sto.opQueue.EnqueueParentOp(opSetParent, child, parent, sto.RowIndexFor(ParentComponent))
	return nil
}

func (sto *storage) EnqueueRemoveParent(child Entity) error {
	if !sto.locked {
		return sto.RemoveParent(child)
	}
	sto.opQueue.EnqueueParentOp(opRemoveParent, child, NilEntity, sto.RowIndexFor(ParentComponent))
	return nil
}

// WorldMatrix returns the matrix written by the most recent propagation pass.
func (sto *storage) WorldMatrix(e Entity) (mgl32.Mat4, bool) {
	g := globalComponent.GetFromEntity(sto, e)
	if g == nil {
		return mgl32.Mat4{}, false
	}
	return g.matrix, true
}

// Locate returns the table row holding the entity's component.
func (sto *storage) Locate(e Entity, c Component) (int, table.Table, bool) {
	if !sto.Has(e, c) {
		return 0, nil, false
	}
	col := sto.existingColumn(c)
	if col == nil {
		return 0, nil, false
	}
	idx, ok := col.row(e)
	if !ok {
		return 0, nil, false
	}
	return idx, col.table, true
}

func (sto *storage) RowIndexFor(c Component) uint32 {
	return sto.schema.RowIndexFor(c)
}

func (sto *storage) Locked() bool {
	return sto.locked
}

func (sto *storage) Lock() {
	sto.locked = true
}

// Unlock applies queued operations. Failures are logged rather than returned
// so a frame is never aborted by a stale request.
func (sto *storage) Unlock() {
	sto.locked = false
	if err := sto.processOperationQueue(); err != nil {
		sto.logger.Error("queued operations failed", bark.KeyError, err)
	}
}

func (sto *storage) addComponent(e Entity, c Component) error {
	slot, ok := sto.entities.slot(e)
	if !ok {
		return EntityNotFoundError{Entity: e}
	}
	bit := sto.RowIndexFor(c)
	if slot.mask.Contains(bit) {
		return ComponentExistsError{Component: c}
	}
	if isPlacement(c) && (slot.mask.Contains(sto.RowIndexFor(TransformComponent)) ||
		slot.mask.Contains(sto.RowIndexFor(WorldTransformComponent))) {
		return PlacementConflictError{Entity: e}
	}
	col, err := sto.column(c)
	if err != nil {
		return err
	}
	idx, err := col.add(e)
	if err != nil {
		return fmt.Errorf("failed to add component: %w", err)
	}
	slot.mask.Mark(bit)

	switch {
	case sameComponent(c, TransformComponent):
		*TransformComponent.Get(idx, col.table) = NewTransform()
	case sameComponent(c, WorldTransformComponent):
		*WorldTransformComponent.Get(idx, col.table) = NewWorldTransform()
	case sameComponent(c, globalComponent):
		*globalComponent.Get(idx, col.table) = globalTransform{matrix: mgl32.Ident4()}
	}
	if isPlacement(c) || sameComponent(c, ParentComponent) {
		if !slot.mask.Contains(sto.RowIndexFor(globalComponent)) {
			return sto.addComponent(e, globalComponent)
		}
	}
	return nil
}

func (sto *storage) removeComponent(e Entity, c Component) error {
	slot, ok := sto.entities.slot(e)
	if !ok {
		return EntityNotFoundError{Entity: e}
	}
	bit := sto.RowIndexFor(c)
	col := sto.existingColumn(c)
	if !slot.mask.Contains(bit) || col == nil {
		return ComponentNotFoundError{Component: c}
	}
	if err := col.remove(e); err != nil {
		return fmt.Errorf("failed to remove component: %w", err)
	}
	slot.mask.Unmark(bit)
	return nil
}

func (sto *storage) existingColumn(c Component) *column {
	bit := int(sto.RowIndexFor(c))
	if bit >= len(sto.columns) {
		return nil
	}
	return sto.columns[bit]
}

func (sto *storage) column(c Component) (*column, error) {
	if col := sto.existingColumn(c); col != nil {
		return col, nil
	}
	bit := int(sto.RowIndexFor(c))
	if bit >= mask.MaxBits {
		return nil, fmt.Errorf("component %v exceeds the %d supported component types", c.Type(), mask.MaxBits)
	}
	col, err := newColumn(sto.schema, c)
	if err != nil {
		return nil, bark.AddTrace(fmt.Errorf("failed to create column: %w", err))
	}
	for len(sto.columns) <= bit {
		sto.columns = append(sto.columns, nil)
	}
	sto.columns[bit] = col
	sto.logger.Debug("column created", "column", col.String())
	return col, nil
}

func validateComponentSet(e Entity, components []Component) error {
	placements := 0
	seen := make(map[table.ElementTypeID]struct{}, len(components))
	for _, c := range components {
		if _, dup := seen[c.ID()]; dup {
			return ComponentExistsError{Component: c}
		}
		seen[c.ID()] = struct{}{}
		if isPlacement(c) {
			placements++
		}
	}
	if placements > 1 {
		return PlacementConflictError{Entity: e}
	}
	return nil
}

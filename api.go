package spatial

import (
	"iter"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
	"github.com/go-gl/mathgl/mgl32"
)

// Storage owns entities, their components, and their derived world matrices.
// While locked, direct mutations fail with LockedStorageError and the Enqueue
// variants defer them until Unlock.
type Storage interface {
	NewEntities(int, ...Component) ([]Entity, error)
	EnqueueNewEntities(int, ...Component) error
	Spawn(...Bundle) ([]Entity, error)
	DestroyEntities(...Entity) error
	EnqueueDestroyEntities(...Entity) error
	Alive(Entity) bool
	Entities() iter.Seq[Entity]
	Len() int
	Mask(Entity) (mask.Mask, bool)
	Has(Entity, Component) bool
	AddComponent(Entity, Component) error
	RemoveComponent(Entity, Component) error
	EnqueueAddComponent(Entity, Component) error
	EnqueueRemoveComponent(Entity, Component) error
	SetTransform(Entity, Transform) error
	SetWorldTransform(Entity, WorldTransform) error
	SetParent(child, parent Entity) error
	RemoveParent(child Entity) error
	EnqueueSetParent(child, parent Entity) error
	EnqueueRemoveParent(child Entity) error
	WorldMatrix(Entity) (mgl32.Mat4, bool)
	Locate(Entity, Component) (int, table.Table, bool)
	RowIndexFor(Component) uint32
	Locked() bool
	Lock()
	Unlock()
}

type Component interface {
	table.ElementType
}

type Query interface {
	QueryNode
	And(items ...interface{}) QueryNode
	Or(items ...interface{}) QueryNode
	Not(items ...interface{}) QueryNode
}

type QueryNode interface {
	Evaluate(entityMask mask.Mask, storage Storage) bool
}

type iCursor interface {
	Entities() iter.Seq[Entity]
	Next() bool
}

type Cache[T any] interface {
	GetIndex(string) (int, bool)
	GetItem(int) *T
	GetItem32(uint32) *T
	Register(string, T) (int, error)
	Len() int
}

// Bundle describes one entity for bulk construction by scene loaders. At most
// one of Transform and WorldTransform may be set. ParentIndex, when non-zero,
// is the 1-based position of another bundle in the same Spawn call and takes
// precedence over Parent.
type Bundle struct {
	Name           string
	Transform      *Transform
	WorldTransform *WorldTransform
	Parent         Entity
	ParentIndex    int
	Components     []Component
}

// Warning: internal Dependencies abound!
type Cursor struct {
	// The query to filter entities
	query QueryNode

	// The storage to iterate over
	storage Storage

	// Current iteration state
	matched  []Entity
	position int
	current  Entity

	// Initialization state
	initialized bool
	ownsLock    bool
}

type AccessibleComponent[T any] struct {
	Component
	table.Accessor[T] // concrete.
}

type SimpleCache[T any] struct {
	items       []T
	itemIndices map[string]int
	maxCapacity int
}

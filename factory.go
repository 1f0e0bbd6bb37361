package spatial

import (
	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/table"
)

type factory struct{}

var Factory factory

// NewStorage creates storage over a schema from table.Factory.NewSchema
func (f factory) NewStorage(schema table.Schema) Storage {
	return newStorage(schema)
}

func (f factory) NewQuery() Query {
	return newQuery()
}

func (f factory) NewCursor(query QueryNode, storage Storage) *Cursor {
	return newCursor(query, storage)
}

func (f factory) NewPropagator() *Propagator {
	return newPropagator(bark.For("hierarchy"))
}

// NewConverter creates a converter able to track up to maxCameras cameras
func (f factory) NewConverter(maxCameras int) *Converter {
	return newConverter(maxCameras, bark.For("converter"))
}

// NewSectorMapper creates a mapper using Config.SectorSize
func (f factory) NewSectorMapper() (SectorMapper, error) {
	return NewSectorMapper(Config.SectorSize())
}

// FactoryNewComponent registers a new component type. Component types are
// limited by the mask width, so create them once at package level.
func FactoryNewComponent[T any]() AccessibleComponent[T] {
	iden := table.FactoryNewElementType[T]()
	return AccessibleComponent[T]{
		Component: iden,
		Accessor:  table.FactoryNewAccessor[T](iden),
	}
}

func FactoryNewCache[T any](cap int) Cache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: cap,
	}
}

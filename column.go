package spatial

import (
	"fmt"
	"reflect"

	"github.com/TheBitDrifter/table"
	iter_util "github.com/TheBitDrifter/util/iter"
)

// column stores every value of one component type. Each row pairs the value
// with the entity that owns it.
type column struct {
	component Component
	table     table.Table
	entries   table.EntryIndex
	rows      map[Entity]table.EntryID
}

func newColumn(schema table.Schema, c Component) (*column, error) {
	entries := table.Factory.NewEntryIndex()
	tbl, err := table.NewTableBuilder().
		WithSchema(schema).
		WithEntryIndex(entries).
		WithElementTypes(c, ownerComponent).
		WithEvents(Config.tableEvents).
		Build()
	if err != nil {
		return nil, err
	}
	return &column{
		component: c,
		table:     tbl,
		entries:   entries,
		rows:      make(map[Entity]table.EntryID),
	}, nil
}

func (col *column) add(e Entity) (int, error) {
	if _, ok := col.rows[e]; ok {
		return 0, ComponentExistsError{Component: col.component}
	}
	created, err := col.table.NewEntries(1)
	if err != nil {
		return 0, err
	}
	entry := created[0]
	idx := entry.Index()
	// Popped rows are not cleared by the table.
	if err := col.table.Set(col.component, reflect.Zero(col.component.Type()), idx); err != nil {
		return 0, err
	}
	*ownerComponent.Get(idx, col.table) = e
	col.rows[e] = entry.ID()
	return idx, nil
}

func (col *column) row(e Entity) (int, bool) {
	id, ok := col.rows[e]
	if !ok {
		return 0, false
	}
	entry, err := col.entries.Entry(int(id) - 1)
	if err != nil {
		return 0, false
	}
	return entry.Index(), true
}

func (col *column) remove(e Entity) error {
	idx, ok := col.row(e)
	if !ok {
		return ComponentNotFoundError{Component: col.component}
	}
	if _, err := col.table.DeleteEntries(idx); err != nil {
		return err
	}
	delete(col.rows, e)
	return nil
}

func (col *column) length() int {
	return col.table.Length()
}

func (col *column) owner(idx int) Entity {
	return *ownerComponent.Get(idx, col.table)
}

func (col *column) String() string {
	types := iter_util.Collect(col.table.ElementTypes())
	return fmt.Sprintf("column%v[%d]", types[0].Type(), col.length())
}

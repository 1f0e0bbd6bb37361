package spatial

// GetFromCursor retrieves the component value for the entity at the cursor position
func (c AccessibleComponent[T]) GetFromCursor(cursor *Cursor) *T {
	return c.GetFromEntity(cursor.storage, cursor.current)
}

// GetFromCursorSafe safely retrieves a component value, checking if the component exists
// Returns a boolean indicating success and the component pointer if found
func (c AccessibleComponent[T]) GetFromCursorSafe(cursor *Cursor) (bool, *T) {
	v := c.GetFromCursor(cursor)
	return v != nil, v
}

// CheckCursor determines if the entity at the cursor position holds the component
func (c AccessibleComponent[T]) CheckCursor(cursor *Cursor) bool {
	return cursor.storage.Has(cursor.current, c)
}

// GetFromEntity retrieves the component value for the entity, or nil when the
// entity does not hold it. The pointer is invalidated by structural changes.
func (c AccessibleComponent[T]) GetFromEntity(sto Storage, e Entity) *T {
	idx, tbl, ok := sto.Locate(e, c)
	if !ok {
		return nil
	}
	return c.Get(idx, tbl)
}

// SetOnEntity stores v on the entity, adding the component when missing
func (c AccessibleComponent[T]) SetOnEntity(sto Storage, e Entity, v T) error {
	if sto.Locked() {
		return LockedStorageError{}
	}
	if !sto.Has(e, c) {
		if err := sto.AddComponent(e, c); err != nil {
			return err
		}
	}
	*c.GetFromEntity(sto, e) = v
	return nil
}

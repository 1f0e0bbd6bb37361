package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryOperations(t *testing.T) {
	sto := newTestStorage()
	healthOnly, err := sto.NewEntities(2, healthComponent)
	require.NoError(t, err)
	velocityOnly, err := sto.NewEntities(3, velocityComponent)
	require.NoError(t, err)
	both, err := sto.NewEntities(4, healthComponent, velocityComponent)
	require.NoError(t, err)
	placed, err := sto.NewEntities(1, healthComponent, TransformComponent)
	require.NoError(t, err)
	_, err = sto.NewEntities(5)
	require.NoError(t, err)

	tests := []struct {
		name     string
		build    func(q Query)
		expected int
	}{
		{"and single", func(q Query) { q.And(healthComponent) }, len(healthOnly) + len(both) + len(placed)},
		{"and pair", func(q Query) { q.And(healthComponent, velocityComponent) }, len(both)},
		{"or", func(q Query) { q.Or(healthComponent, velocityComponent) }, len(healthOnly) + len(velocityOnly) + len(both) + len(placed)},
		{"not", func(q Query) { q.Not(healthComponent) }, len(velocityOnly) + 5},
		{
			"and with nested not",
			func(q Query) { q.And(healthComponent, q.Not(velocityComponent)) },
			len(healthOnly) + len(placed),
		},
		{
			"or of nested ands",
			func(q Query) {
				q.Or(q.And(healthComponent, TransformComponent), q.And(velocityComponent, q.Not(healthComponent)))
			},
			len(placed) + len(velocityOnly),
		},
		{"not of nested or", func(q Query) { q.Not(q.Or(healthComponent, velocityComponent)) }, 5},
		{"component slice", func(q Query) { q.And([]Component{healthComponent, velocityComponent}) }, len(both)},
		{"implicit global matrix", func(q Query) { q.And(globalComponent) }, len(placed)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Factory.NewQuery()
			tt.build(q)
			cursor := Factory.NewCursor(q, sto)
			assert.Equal(t, tt.expected, cursor.TotalMatched())
			cursor.Reset()
		})
	}

	emptyCursor := Factory.NewCursor(Factory.NewQuery(), sto)
	assert.Zero(t, emptyCursor.TotalMatched())
	emptyCursor.Reset()
	assert.False(t, sto.Locked())
}

func TestCursorIteration(t *testing.T) {
	sto := newTestStorage()
	entities, err := sto.NewEntities(4, healthComponent)
	require.NoError(t, err)
	for i, e := range entities {
		healthComponent.GetFromEntity(sto, e).Value = i * 10
	}

	q := Factory.NewQuery()
	q.And(healthComponent)
	cursor := Factory.NewCursor(q, sto)

	var seen []Entity
	total := 0
	for cursor.Next() {
		assert.True(t, sto.Locked(), "storage must stay locked while iterating")
		assert.True(t, healthComponent.CheckCursor(cursor))
		ok, h := healthComponent.GetFromCursorSafe(cursor)
		require.True(t, ok)
		total += h.Value
		seen = append(seen, cursor.Entity())
	}
	assert.Equal(t, entities, seen)
	assert.Equal(t, 60, total)
	assert.False(t, sto.Locked())

	ok, v := velocityComponent.GetFromCursorSafe(cursor)
	assert.False(t, ok)
	assert.Nil(t, v)

	// Breaking out of a range loop releases the lock too.
	for e := range cursor.Entities() {
		assert.Equal(t, entities[0], e)
		assert.Equal(t, len(entities)-1, cursor.Remaining())
		break
	}
	assert.False(t, sto.Locked())
}

func TestCursorDefersMutations(t *testing.T) {
	sto := newTestStorage()
	entities, err := sto.NewEntities(3, healthComponent)
	require.NoError(t, err)

	q := Factory.NewQuery()
	q.And(healthComponent)
	cursor := Factory.NewCursor(q, sto)
	for e := range cursor.Entities() {
		assert.ErrorIs(t, sto.DestroyEntities(e), LockedStorageError{})
		require.NoError(t, sto.EnqueueDestroyEntities(e))
		require.NoError(t, sto.EnqueueNewEntities(1, velocityComponent))
	}

	for _, e := range entities {
		assert.False(t, sto.Alive(e))
	}
	assert.Equal(t, 3, sto.Len())
}

func TestCursorRespectsExistingLock(t *testing.T) {
	sto := newTestStorage()
	_, err := sto.NewEntities(2, healthComponent)
	require.NoError(t, err)

	sto.Lock()
	q := Factory.NewQuery()
	q.And(healthComponent)
	cursor := Factory.NewCursor(q, sto)
	count := 0
	for range cursor.Entities() {
		count++
	}
	assert.Equal(t, 2, count)
	assert.True(t, sto.Locked())
	sto.Unlock()
}

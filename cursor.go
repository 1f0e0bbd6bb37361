package spatial

import (
	"iter"
)

var _ iCursor = &Cursor{}

func newCursor(query QueryNode, storage Storage) *Cursor {
	return &Cursor{
		query:   query,
		storage: storage,
	}
}

// Next advances to the next matching entity. The storage stays locked from
// the first call until iteration ends or Reset is called, unless it was
// already locked by someone else.
func (c *Cursor) Next() bool {
	if !c.initialized {
		c.initialize()
	}
	if c.position < len(c.matched) {
		c.current = c.matched[c.position]
		c.position++
		return true
	}
	c.Reset()
	return false
}

func (c *Cursor) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		c.initialize()
		for c.position < len(c.matched) {
			c.current = c.matched[c.position]
			c.position++
			if !yield(c.current) {
				break
			}
		}
		c.Reset()
	}
}

func (c *Cursor) initialize() {
	if c.initialized {
		return
	}
	c.matched = c.matched[:0]
	for e := range c.storage.Entities() {
		m, _ := c.storage.Mask(e)
		if c.query.Evaluate(m, c.storage) {
			c.matched = append(c.matched, e)
		}
	}
	c.position = 0
	if !c.storage.Locked() {
		c.storage.Lock()
		c.ownsLock = true
	}
	c.initialized = true
}

func (c *Cursor) Reset() {
	c.position = 0
	c.current = NilEntity
	c.matched = c.matched[:0]
	c.initialized = false
	if c.ownsLock {
		c.ownsLock = false
		c.storage.Unlock()
	}
}

// Entity returns the entity at the cursor position
func (c *Cursor) Entity() Entity {
	return c.current
}

func (c *Cursor) Remaining() int {
	return len(c.matched) - c.position
}

func (c *Cursor) TotalMatched() int {
	if !c.initialized {
		c.initialize()
	}
	return len(c.matched)
}

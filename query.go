package spatial

import (
	"github.com/TheBitDrifter/mask"
)

// Operation is how a query node combines its components and sub-nodes.
type Operation int

const (
	OpAnd Operation = iota
	OpOr
	OpNot
)

// maskNode matches a single entity's component mask. Its own components are
// checked first, then each nested node.
type maskNode struct {
	op       Operation
	required []Component
	nested   []QueryNode
}

type query struct {
	root QueryNode
}

func newQuery() Query {
	return &query{}
}

// componentMask marks the storage row of every component.
func componentMask(storage Storage, components []Component) mask.Mask {
	var m mask.Mask
	for _, c := range components {
		m.Mark(storage.RowIndexFor(c))
	}
	return m
}

// Evaluate reports whether an entity carrying entityMask satisfies the node.
// An empty Not node matches every entity.
func (n *maskNode) Evaluate(entityMask mask.Mask, storage Storage) bool {
	own := componentMask(storage, n.required)

	switch n.op {
	case OpAnd:
		if !entityMask.ContainsAll(own) {
			return false
		}
		for _, sub := range n.nested {
			if !sub.Evaluate(entityMask, storage) {
				return false
			}
		}
		return true

	case OpOr:
		if entityMask.ContainsAny(own) {
			return true
		}
		for _, sub := range n.nested {
			if sub.Evaluate(entityMask, storage) {
				return true
			}
		}
		return false

	case OpNot:
		for _, sub := range n.nested {
			if sub.Evaluate(entityMask, storage) {
				return false
			}
		}
		return own.IsEmpty() || entityMask.ContainsNone(own)
	}
	return false
}

// And, Or and Not each build a node and make it the query root. Nested
// calls run before the outer one, so the outermost node ends up as root.
func (q *query) And(items ...interface{}) QueryNode {
	return q.build(OpAnd, items)
}

func (q *query) Or(items ...interface{}) QueryNode {
	return q.build(OpOr, items)
}

func (q *query) Not(items ...interface{}) QueryNode {
	return q.build(OpNot, items)
}

// build sorts items into components and nested nodes. Anything else is
// ignored.
func (q *query) build(op Operation, items []interface{}) QueryNode {
	node := &maskNode{op: op}
	for _, item := range items {
		switch v := item.(type) {
		case Component:
			node.required = append(node.required, v)
		case []Component:
			node.required = append(node.required, v...)
		case QueryNode:
			node.nested = append(node.nested, v)
		}
	}
	q.root = node
	return node
}

// Evaluate matches nothing until a root node has been built.
func (q *query) Evaluate(entityMask mask.Mask, storage Storage) bool {
	if q.root == nil {
		return false
	}
	return q.root.Evaluate(entityMask, storage)
}

package spatial

import (
	"fmt"
	"strings"
)

type LockedStorageError struct{}

func (e LockedStorageError) Error() string {
	return "storage is currently locked"
}

type EntityNotFoundError struct {
	Entity Entity
}

func (e EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity %v does not exist", e.Entity)
}

type ComponentExistsError struct {
	Component Component
}

func (e ComponentExistsError) Error() string {
	return fmt.Sprintf("component already exists on entity: %v", e.Component.Type())
}

type ComponentNotFoundError struct {
	Component Component
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component does not exist on entity: %v", e.Component.Type())
}

// PlacementConflictError is returned when an entity would own both a Transform
// and a WorldTransform.
type PlacementConflictError struct {
	Entity Entity
}

func (e PlacementConflictError) Error() string {
	return fmt.Sprintf("entity %v cannot hold both Transform and WorldTransform", e.Entity)
}

// TierMismatchError is returned when a parent edge would join a Transform
// entity and a WorldTransform entity.
type TierMismatchError struct {
	Child, Parent Entity
}

func (e TierMismatchError) Error() string {
	return fmt.Sprintf("child %v and parent %v use different precision tiers", e.Child, e.Parent)
}

type InvalidTransformError struct {
	Entity Entity
	Reason string
}

func (e InvalidTransformError) Error() string {
	return fmt.Sprintf("invalid transform for entity %v: %s", e.Entity, e.Reason)
}

type StructuralKind int

const (
	// CyclicEdge marks a parent edge that closes a cycle.
	CyclicEdge StructuralKind = iota
	// MixedTierEdge marks a parent edge between precision tiers.
	MixedTierEdge
)

func (k StructuralKind) String() string {
	switch k {
	case CyclicEdge:
		return "cycle"
	case MixedTierEdge:
		return "mixed-tier"
	}
	return "unknown"
}

// StructuralError reports a rejected parent edge. For CyclicEdge errors Cycle
// lists the cycle's members, each followed by its own parent.
type StructuralError struct {
	Kind   StructuralKind
	Parent Entity
	Child  Entity
	Cycle  []Entity
}

func (e StructuralError) Error() string {
	if e.Kind == CyclicEdge {
		members := make([]string, len(e.Cycle))
		for i, en := range e.Cycle {
			members[i] = en.String()
		}
		return fmt.Sprintf("cyclic parent-child relationship detected: parent %v, child %v, cycle [%s]",
			e.Parent, e.Child, strings.Join(members, " "))
	}
	return fmt.Sprintf("%v parent edge rejected: parent %v, child %v", e.Kind, e.Parent, e.Child)
}

type MissingReason int

const (
	// DanglingParent means the referenced parent no longer exists.
	DanglingParent MissingReason = iota
	// UnplacedParent means the parent exists but has no place in the hierarchy.
	UnplacedParent
	// MissingPlacement means the entity has neither Transform nor WorldTransform.
	MissingPlacement
	// NonFinitePlacement means the entity's placement holds NaN or Inf values.
	NonFinitePlacement
)

func (r MissingReason) String() string {
	switch r {
	case DanglingParent:
		return "parent no longer exists"
	case UnplacedParent:
		return "parent has no placement"
	case MissingPlacement:
		return "entity has no placement"
	case NonFinitePlacement:
		return "placement is not finite"
	}
	return "unknown"
}

// MissingDataWarning reports a fallback applied during propagation. Parent is
// the nil entity unless Reason concerns the parent.
type MissingDataWarning struct {
	Entity Entity
	Parent Entity
	Reason MissingReason
}

func (w MissingDataWarning) Error() string {
	if w.Parent.IsNil() {
		return fmt.Sprintf("entity %v: %v", w.Entity, w.Reason)
	}
	return fmt.Sprintf("entity %v: %v (parent %v)", w.Entity, w.Reason, w.Parent)
}

type ConfigurationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

// PrecisionAdvisory is informational: Resolution is the spacing of ordinary
// precision values at Distance and exceeds Tolerance.
type PrecisionAdvisory struct {
	Entity     Entity
	Distance   float64
	Resolution float64
	Tolerance  float64
}

func (a PrecisionAdvisory) Error() string {
	return fmt.Sprintf("entity %v at distance %g has resolution %g (tolerance %g), consider WorldTransform",
		a.Entity, a.Distance, a.Resolution, a.Tolerance)
}

type SectorRangeError struct {
	Axis  string
	Value float64
}

func (e SectorRangeError) Error() string {
	return fmt.Sprintf("position %s=%g cannot be addressed by a sector index", e.Axis, e.Value)
}

package spatial

import (
	"log/slog"

	"github.com/TheBitDrifter/bark"
	"github.com/go-gl/mathgl/mgl32"
)

type tier int

const (
	tierNone tier = iota
	tierLocal
	tierWorld
)

func tierOf(sto Storage, e Entity) tier {
	switch {
	case sto.Has(e, TransformComponent):
		return tierLocal
	case sto.Has(e, WorldTransformComponent):
		return tierWorld
	}
	return tierNone
}

func mixedTiers(a, b tier) bool {
	return a != tierNone && b != tierNone && a != b
}

// PassReport summarizes one propagation pass. Stale counts entities that kept
// their previous world matrix because no root reaches them.
type PassReport struct {
	Frame      uint64
	Skipped    bool
	Updated    int
	Stale      int
	Structural []StructuralError
	Missing    []MissingDataWarning
	Advisories []PrecisionAdvisory
}

// Clean reports whether the pass found no structural or missing-data problems.
func (r PassReport) Clean() bool {
	return len(r.Structural) == 0 && len(r.Missing) == 0
}

// FrameClock is a logical frame counter shared by the call sites of one loop.
type FrameClock struct {
	frame uint64
}

func (c *FrameClock) Advance() uint64 {
	c.frame++
	return c.frame
}

func (c *FrameClock) Frame() uint64 {
	return c.frame
}

type workItem struct {
	entity    Entity
	inherited mgl32.Mat4
}

// Propagator computes world matrices level by level from the roots of the
// parent graph. It runs at most once per logical frame; its buffers are
// reused between frames.
type Propagator struct {
	lastFrame uint64
	ran       bool
	report    PassReport

	queue    []workItem
	visited  map[Entity]struct{}
	children map[Entity][]Entity
	roots    []Entity
	holders  []Entity
	cursor   *Cursor
	placed   *Cursor
	guard    cycleGuard
	logger   *slog.Logger
}

func newPropagator(logger *slog.Logger) *Propagator {
	holders := newQuery()
	holders.And(globalComponent)
	placed := newQuery()
	placed.Or(TransformComponent, WorldTransformComponent)
	return &Propagator{
		visited:  make(map[Entity]struct{}),
		children: make(map[Entity][]Entity),
		cursor:   newCursor(holders, nil),
		placed:   newCursor(placed, nil),
		guard:    newCycleGuard(),
		logger:   logger,
	}
}

func (p *Propagator) SetLogger(logger *slog.Logger) {
	p.logger = logger
}

// LastFrame returns the frame of the most recent pass, if any ran.
func (p *Propagator) LastFrame() (uint64, bool) {
	return p.lastFrame, p.ran
}

// Propagate writes a world matrix for every entity with a placement or a
// parent. A second call with the same frame does nothing and returns the
// earlier report marked Skipped. Malformed graphs never abort the pass.
func (p *Propagator) Propagate(sto Storage, frame uint64) PassReport {
	if p.ran && frame == p.lastFrame {
		report := p.report
		report.Skipped = true
		return report
	}
	p.normalizeRotations(sto)

	if !sto.Locked() {
		sto.Lock()
		defer sto.Unlock()
	}

	report := PassReport{Frame: frame}
	p.collect(sto, &report)
	p.traverse(sto, frame, &report)
	p.breakCycles(sto, &report)

	if Config.PrecisionAdvisories() {
		report.Advisories = AdvisePrecision(sto, Config.PrecisionTolerance())
		for _, a := range report.Advisories {
			p.logger.Info("ordinary precision degraded", "entity", a.Entity.String(),
				"distance", a.Distance, "resolution", a.Resolution)
		}
	}

	p.lastFrame, p.ran, p.report = frame, true, report
	p.logger.Debug("propagation pass complete",
		"frame", frame,
		"updated", report.Updated,
		"stale", report.Stale,
		"structural", len(report.Structural),
		"missing", len(report.Missing),
	)
	return report
}

// normalizeRotations re-normalizes stored rotations ahead of the read-only
// part of the pass.
func (p *Propagator) normalizeRotations(sto Storage) {
	p.placed.storage = sto
	for range p.placed.Entities() {
		if ok, t := TransformComponent.GetFromCursorSafe(p.placed); ok {
			t.Rotation = t.Rotation.Normalize()
			continue
		}
		if ok, w := WorldTransformComponent.GetFromCursorSafe(p.placed); ok {
			w.Rotation = w.Rotation.Normalize()
		}
	}
}

// collect sorts every matrix holder into roots and children. Edges that
// cannot be followed turn the child into a root.
func (p *Propagator) collect(sto Storage, report *PassReport) {
	p.holders = p.holders[:0]
	p.roots = p.roots[:0]
	if len(p.children) > 2*sto.Len()+16 {
		clear(p.children)
	}
	for k, v := range p.children {
		p.children[k] = v[:0]
	}

	p.cursor.storage = sto
	for e := range p.cursor.Entities() {
		p.holders = append(p.holders, e)
		parent := ParentComponent.GetFromEntity(sto, e)
		if parent == nil {
			p.roots = append(p.roots, e)
			continue
		}
		pe := parent.Entity
		switch {
		case !sto.Alive(pe):
			p.warn(sto, report, MissingDataWarning{Entity: e, Parent: pe, Reason: DanglingParent})
			p.roots = append(p.roots, e)
		case !sto.Has(pe, globalComponent):
			p.warn(sto, report, MissingDataWarning{Entity: e, Parent: pe, Reason: UnplacedParent})
			p.roots = append(p.roots, e)
		case mixedTiers(tierOf(sto, e), tierOf(sto, pe)):
			p.reject(sto, report, StructuralError{Kind: MixedTierEdge, Parent: pe, Child: e})
			p.roots = append(p.roots, e)
		default:
			p.children[pe] = append(p.children[pe], e)
		}
	}
}

func (p *Propagator) traverse(sto Storage, frame uint64, report *PassReport) {
	clear(p.visited)
	p.queue = p.queue[:0]
	identity := mgl32.Ident4()
	for _, root := range p.roots {
		p.visited[root] = struct{}{}
		p.queue = append(p.queue, workItem{entity: root, inherited: identity})
	}

	for head := 0; head < len(p.queue); head++ {
		item := p.queue[head]
		world := item.inherited.Mul4(p.localMatrix(sto, item.entity, report))

		g := globalComponent.GetFromEntity(sto, item.entity)
		g.matrix = world
		g.frame = frame
		g.written = true
		report.Updated++

		for _, child := range p.children[item.entity] {
			if _, seen := p.visited[child]; seen {
				p.reject(sto, report, StructuralError{Kind: CyclicEdge, Parent: item.entity, Child: child})
				continue
			}
			p.visited[child] = struct{}{}
			p.queue = append(p.queue, workItem{entity: child, inherited: world})
		}
	}
}

// breakCycles reports each cycle among the holders no root reached. Those
// entities and everything below them keep their previous matrix.
func (p *Propagator) breakCycles(sto Storage, report *PassReport) {
	var unreached []Entity
	for _, e := range p.holders {
		if _, ok := p.visited[e]; !ok {
			unreached = append(unreached, e)
		}
	}
	report.Stale = len(unreached)
	if len(unreached) == 0 {
		return
	}
	for _, cycle := range p.guard.detect(sto, unreached) {
		p.reject(sto, report, cycle)
	}
}

// localMatrix falls back to identity when the placement is missing or unusable.
func (p *Propagator) localMatrix(sto Storage, e Entity, report *PassReport) mgl32.Mat4 {
	if t := TransformComponent.GetFromEntity(sto, e); t != nil {
		if !t.finite() {
			p.warn(sto, report, MissingDataWarning{Entity: e, Reason: NonFinitePlacement})
			return mgl32.Ident4()
		}
		return t.Matrix()
	}
	if w := WorldTransformComponent.GetFromEntity(sto, e); w != nil {
		if !w.finite() {
			p.warn(sto, report, MissingDataWarning{Entity: e, Reason: NonFinitePlacement})
			return mgl32.Ident4()
		}
		return w.RotationScale()
	}
	p.warn(sto, report, MissingDataWarning{Entity: e, Reason: MissingPlacement})
	return mgl32.Ident4()
}

func (p *Propagator) warn(sto Storage, report *PassReport, w MissingDataWarning) {
	report.Missing = append(report.Missing, w)
	p.logger.Warn(w.Reason.String(), "entity", w.Entity.String(), "name", nameOf(sto, w.Entity),
		"parent", w.Parent.String())
}

func (p *Propagator) reject(sto Storage, report *PassReport, err StructuralError) {
	report.Structural = append(report.Structural, err)
	p.logger.Error("parent edge rejected",
		bark.KeyError, err,
		"parent", err.Parent.String(),
		"child", err.Child.String(),
		"child_name", nameOf(sto, err.Child),
	)
}

// ValidateHierarchy lists entities that have a parent but no placement.
func ValidateHierarchy(sto Storage) []MissingDataWarning {
	q := newQuery()
	q.And(ParentComponent, q.Not(TransformComponent, WorldTransformComponent))
	cursor := newCursor(q, sto)

	var warnings []MissingDataWarning
	for e := range cursor.Entities() {
		warnings = append(warnings, MissingDataWarning{
			Entity: e,
			Parent: ParentComponent.GetFromCursor(cursor).Entity,
			Reason: MissingPlacement,
		})
	}
	return warnings
}

func nameOf(sto Storage, e Entity) string {
	if n := NameComponent.GetFromEntity(sto, e); n != nil {
		return string(*n)
	}
	return ""
}

package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// GalaxyScaleDistance is the distance past which a WorldTransform should be
// addressed through a SectorMapper.
const GalaxyScaleDistance = 1e15

// Transform is an ordinary precision placement relative to the parent, or to
// the world origin for roots.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func TransformFromPosition(x, y, z float32) Transform {
	t := NewTransform()
	t.Position = mgl32.Vec3{x, y, z}
	return t
}

func (t Transform) WithRotation(q mgl32.Quat) Transform {
	t.Rotation = q.Normalize()
	return t
}

func (t Transform) WithScale(x, y, z float32) Transform {
	t.Scale = mgl32.Vec3{x, y, z}
	return t
}

// Normalized returns t with a unit rotation. A zero quaternion becomes identity.
func (t Transform) Normalized() Transform {
	t.Rotation = t.Rotation.Normalize()
	return t
}

// Matrix composes scale, then rotation, then translation.
func (t Transform) Matrix() mgl32.Mat4 {
	r := t.Rotation.Normalize().Mat4()
	s := mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2])
	return mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2]).Mul4(r).Mul4(s)
}

func (t Transform) finite() bool {
	return finite32(t.Position) && finite32(t.Scale) &&
		finite32(t.Rotation.V) && !math.IsNaN(float64(t.Rotation.W)) && !math.IsInf(float64(t.Rotation.W), 0)
}

// WorldTransform places an entity at high precision. Rotation and scale stay
// at ordinary precision. It has no absolute matrix: render matrices come from
// CameraRelativeMatrix or a Converter.
type WorldTransform struct {
	Position mgl64.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewWorldTransform() WorldTransform {
	return WorldTransform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func WorldTransformAt(x, y, z float64) WorldTransform {
	w := NewWorldTransform()
	w.Position = mgl64.Vec3{x, y, z}
	return w
}

// WorldTransformFromTransform promotes t, treating its position as relative to offset.
func WorldTransformFromTransform(t Transform, offset mgl64.Vec3) WorldTransform {
	return WorldTransform{
		Position: offset.Add(widen(t.Position)),
		Rotation: t.Rotation.Normalize(),
		Scale:    t.Scale,
	}
}

// RotationScale is the part of the placement that composes through a hierarchy.
func (w WorldTransform) RotationScale() mgl32.Mat4 {
	return w.Rotation.Normalize().Mat4().Mul4(mgl32.Scale3D(w.Scale[0], w.Scale[1], w.Scale[2]))
}

func (w WorldTransform) DistanceTo(point mgl64.Vec3) float64 {
	return w.Position.Sub(point).Len()
}

// ToCameraRelative reduces w to an ordinary precision Transform centered on camera.
func (w WorldTransform) ToCameraRelative(camera mgl64.Vec3) Transform {
	return Transform{
		Position: narrow(w.Position.Sub(camera)),
		Rotation: w.Rotation.Normalize(),
		Scale:    w.Scale,
	}
}

func (w WorldTransform) Translate(delta mgl64.Vec3) WorldTransform {
	w.Position = w.Position.Add(delta)
	return w
}

func (w WorldTransform) WithinRenderDistance(camera mgl64.Vec3, maxDistance float64) bool {
	return w.DistanceTo(camera) <= maxDistance
}

func (w WorldTransform) IsGalaxyScale() bool {
	return w.Position.Len() > GalaxyScaleDistance
}

// LookAt orients w so its -Z axis points at target. Degenerate inputs leave
// the rotation unchanged.
func (w WorldTransform) LookAt(target, up mgl64.Vec3) WorldTransform {
	forward := target.Sub(w.Position)
	if forward.Len() == 0 || up.Len() == 0 {
		return w
	}
	forward = forward.Normalize()
	right := forward.Cross(up.Normalize())
	if right.Len() < 1e-9 {
		return w
	}
	right = right.Normalize()
	trueUp := right.Cross(forward)

	basis := mgl32.Mat4FromCols(
		narrow(right).Vec4(0),
		narrow(trueUp).Vec4(0),
		narrow(forward.Mul(-1)).Vec4(0),
		mgl32.Vec4{0, 0, 0, 1},
	)
	w.Rotation = mgl32.Mat4ToQuat(basis).Normalize()
	return w
}

// ToSector expresses the position in sector coordinates.
func (w WorldTransform) ToSector(m SectorMapper) (SectorPosition, error) {
	return m.ToSector(w.Position)
}

func WorldTransformFromSector(m SectorMapper, sp SectorPosition) WorldTransform {
	w := NewWorldTransform()
	w.Position = m.ToWorld(sp)
	return w
}

func (w WorldTransform) finite() bool {
	return finite64(w.Position) && finite32(w.Scale) &&
		finite32(w.Rotation.V) && !math.IsNaN(float64(w.Rotation.W)) && !math.IsInf(float64(w.Rotation.W), 0)
}

type Parent struct {
	Entity Entity
}

// Name labels an entity in log output.
type Name string

// globalTransform is the derived world matrix. frame is the pass that last
// wrote it, valid once written is set.
type globalTransform struct {
	matrix  mgl32.Mat4
	frame   uint64
	written bool
}

func narrow(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

func widen(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

func finite32(v mgl32.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}

func finite64(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

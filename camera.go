package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

type ProjectionMode int

const (
	Perspective ProjectionMode = iota
	Orthographic
)

// Camera holds projection settings. Near and Far are kept at high precision
// so extreme ratios survive until the depth coefficient is derived.
type Camera struct {
	Mode   ProjectionMode
	FovY   float32 // radians, perspective only
	Height float32 // view height, orthographic only
	Aspect float32
	Near   float64
	Far    float64
}

func NewPerspectiveCamera(fovY, aspect float32, near, far float64) (Camera, error) {
	c := Camera{Mode: Perspective, FovY: fovY, Aspect: aspect, Near: near, Far: far}
	return c, c.Validate()
}

func NewOrthographicCamera(height, aspect float32, near, far float64) (Camera, error) {
	c := Camera{Mode: Orthographic, Height: height, Aspect: aspect, Near: near, Far: far}
	return c, c.Validate()
}

func (c Camera) Validate() error {
	if err := validatePlanes(c.Near, c.Far); err != nil {
		return err
	}
	if err := validatePositive("aspect ratio", float64(c.Aspect)); err != nil {
		return err
	}
	switch c.Mode {
	case Perspective:
		if err := validatePositive("field of view", float64(c.FovY)); err != nil {
			return err
		}
		if c.FovY >= math.Pi {
			return ConfigurationError{Field: "field of view", Value: float64(c.FovY), Reason: "must be below pi radians"}
		}
	case Orthographic:
		if err := validatePositive("view height", float64(c.Height)); err != nil {
			return err
		}
	default:
		return ConfigurationError{Field: "projection mode", Value: float64(c.Mode), Reason: "unknown mode"}
	}
	return nil
}

func (c Camera) Projection() mgl32.Mat4 {
	near, far := float32(c.Near), float32(c.Far)
	if c.Mode == Orthographic {
		halfH := c.Height / 2
		halfW := halfH * c.Aspect
		return mgl32.Ortho(-halfW, halfW, -halfH, halfH, near, far)
	}
	return mgl32.Perspective(c.FovY, c.Aspect, near, far)
}

func (c Camera) DepthCoefficient() (float64, error) {
	return DepthCoefficient(c.Near, c.Far)
}

// CameraRelativeMatrix builds a render matrix centered on the camera. The
// subtraction happens at high precision before narrowing. rotationScale must
// carry no translation.
func CameraRelativeMatrix(entityPos, cameraPos mgl64.Vec3, rotationScale mgl32.Mat4) mgl32.Mat4 {
	d := narrow(entityPos.Sub(cameraPos))
	return mgl32.Translate3D(d[0], d[1], d[2]).Mul4(rotationScale)
}

// RelativeView is the view matrix of a camera sitting at the origin of
// camera-relative space: rotation only.
func RelativeView(rotation mgl32.Quat) mgl32.Mat4 {
	return rotation.Normalize().Conjugate().Mat4()
}

// rotationOf extracts the rotation of a matrix built from rotation and
// positive scale.
func rotationOf(m mgl32.Mat4) mgl32.Quat {
	var cols [3]mgl32.Vec4
	for i := range cols {
		axis := m.Col(i).Vec3()
		if axis.Len() == 0 {
			return mgl32.QuatIdent()
		}
		cols[i] = axis.Normalize().Vec4(0)
	}
	return mgl32.Mat4ToQuat(mgl32.Mat4FromCols(cols[0], cols[1], cols[2], mgl32.Vec4{0, 0, 0, 1})).Normalize()
}

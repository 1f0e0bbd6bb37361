package spatial

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// CameraState is a camera's absolute placement as of the last tracked frame.
// Until Established is set the camera is treated as sitting at the origin.
type CameraState struct {
	Entity      Entity
	Position    mgl64.Vec3
	Rotation    mgl32.Quat
	Frame       uint64
	Established bool
}

// Converter turns world matrices into camera-relative render matrices for
// named cameras. Call Track after each propagation pass.
type Converter struct {
	cameras Cache[CameraState]
	logger  *slog.Logger
}

func newConverter(maxCameras int, logger *slog.Logger) *Converter {
	return &Converter{
		cameras: FactoryNewCache[CameraState](maxCameras),
		logger:  logger,
	}
}

func (c *Converter) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// Register binds name to a camera entity. Rebinding a name resets its state.
func (c *Converter) Register(name string, camera Entity) error {
	_, err := c.cameras.Register(name, CameraState{Entity: camera, Rotation: mgl32.QuatIdent()})
	return err
}

// Track records every registered camera's placement from the current world
// matrices. Cameras whose matrix has not been written yet stay unestablished.
func (c *Converter) Track(sto Storage, frame uint64) {
	for i := 0; i < c.cameras.Len(); i++ {
		state := c.cameras.GetItem(i)
		g := globalComponent.GetFromEntity(sto, state.Entity)
		if g == nil {
			c.logger.Warn("camera has no world matrix", "camera", state.Entity.String())
			continue
		}
		if !g.written {
			continue
		}
		if pos, ok := worldAnchor(sto, state.Entity); ok {
			state.Position = pos
		} else {
			state.Position = widen(g.matrix.Col(3).Vec3())
		}
		state.Rotation = rotationOf(g.matrix)
		state.Frame = frame
		if !state.Established {
			c.logger.Debug("camera established", "camera", state.Entity.String(), "frame", frame)
		}
		state.Established = true
	}
}

func (c *Converter) Camera(name string) (CameraState, bool) {
	idx, ok := c.cameras.GetIndex(name)
	if !ok {
		return CameraState{}, false
	}
	return *c.cameras.GetItem(idx), true
}

// CameraPosition falls back to the origin until the camera is established.
func (c *Converter) CameraPosition(name string) mgl64.Vec3 {
	state, ok := c.Camera(name)
	if !ok || !state.Established {
		return mgl64.Vec3{}
	}
	return state.Position
}

func (c *Converter) View(name string) mgl32.Mat4 {
	state, ok := c.Camera(name)
	if !ok {
		return mgl32.Ident4()
	}
	return RelativeView(state.Rotation)
}

// Projection reads the Camera component of a registered camera.
func (c *Converter) Projection(sto Storage, name string) (mgl32.Mat4, error) {
	state, ok := c.Camera(name)
	if !ok {
		return mgl32.Mat4{}, fmt.Errorf("camera %q is not registered", name)
	}
	cam := CameraComponent.GetFromEntity(sto, state.Entity)
	if cam == nil {
		return mgl32.Mat4{}, ComponentNotFoundError{Component: CameraComponent}
	}
	if err := cam.Validate(); err != nil {
		return mgl32.Mat4{}, err
	}
	return cam.Projection(), nil
}

// RenderMatrix places e relative to the named camera. WorldTransform entities
// contribute their high precision position directly, as do unplaced entities
// hanging below one. Transform entities use the translation of their world
// matrix.
func (c *Converter) RenderMatrix(sto Storage, e Entity, camera string) (mgl32.Mat4, error) {
	if _, ok := c.cameras.GetIndex(camera); !ok {
		return mgl32.Mat4{}, fmt.Errorf("camera %q is not registered", camera)
	}
	g := globalComponent.GetFromEntity(sto, e)
	if g == nil {
		return mgl32.Mat4{}, EntityNotFoundError{Entity: e}
	}
	cameraPos := c.CameraPosition(camera)

	if pos, ok := worldAnchor(sto, e); ok {
		return CameraRelativeMatrix(pos, cameraPos, g.matrix), nil
	}
	rotationScale := g.matrix
	position := widen(rotationScale.Col(3).Vec3())
	rotationScale[12], rotationScale[13], rotationScale[14] = 0, 0, 0
	return CameraRelativeMatrix(position, cameraPos, rotationScale), nil
}

// worldAnchor returns the high precision position e renders from: its own
// WorldTransform, or the one of its nearest placed ancestor when e and every
// entity in between carry no placement. Their world matrices hold no
// translation, so the ancestor's position is theirs.
func worldAnchor(sto Storage, e Entity) (mgl64.Vec3, bool) {
	for range sto.Len() + 1 {
		if w := WorldTransformComponent.GetFromEntity(sto, e); w != nil {
			return w.Position, true
		}
		if sto.Has(e, TransformComponent) {
			return mgl64.Vec3{}, false
		}
		parent := ParentComponent.GetFromEntity(sto, e)
		if parent == nil || !sto.Alive(parent.Entity) {
			return mgl64.Vec3{}, false
		}
		e = parent.Entity
	}
	return mgl64.Vec3{}, false
}

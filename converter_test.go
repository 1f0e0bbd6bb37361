package spatial

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConverter(buf *bytes.Buffer, maxCameras int) *Converter {
	return newConverter(maxCameras, slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func spawnFar(t *testing.T, sto *storage, x, y, z float64) Entity {
	t.Helper()
	created, err := sto.NewEntities(1)
	require.NoError(t, err)
	require.NoError(t, sto.SetWorldTransform(created[0], WorldTransformAt(x, y, z)))
	return created[0]
}

func TestConverterExtremeDistance(t *testing.T) {
	sto := newTestStorage()
	camera := spawnFar(t, sto, 1e15-1000, 0, 0)
	ship := spawnFar(t, sto, 1e15, 0, 0)

	var buf bytes.Buffer
	conv := newTestConverter(&buf, 2)
	require.NoError(t, conv.Register("main", camera))

	// Before the first pass the camera sits at the origin.
	state, ok := conv.Camera("main")
	require.True(t, ok)
	assert.False(t, state.Established)
	assert.Equal(t, mgl64.Vec3{}, conv.CameraPosition("main"))
	conv.Track(sto, 0)
	state, _ = conv.Camera("main")
	assert.False(t, state.Established, "an unwritten matrix must not establish the camera")

	newCapturingPropagator(&bytes.Buffer{}).Propagate(sto, 1)
	conv.Track(sto, 1)

	state, _ = conv.Camera("main")
	assert.True(t, state.Established)
	assert.Equal(t, uint64(1), state.Frame)
	assert.Equal(t, mgl64.Vec3{1e15 - 1000, 0, 0}, conv.CameraPosition("main"))
	assert.Contains(t, buf.String(), "camera established")

	m, err := conv.RenderMatrix(sto, ship, "main")
	require.NoError(t, err)
	assertVec3(t, mgl32.Vec3{1000, 0, 0}, translation(m), 0.1)
}

func TestConverterTransformHierarchy(t *testing.T) {
	sto := newTestStorage()
	rig := spawnAt(t, sto, 10, 0, 0)
	camera := spawnAt(t, sto, 0, 2, 0)
	require.NoError(t, sto.SetTransform(camera, TransformFromPosition(0, 2, 0).
		WithRotation(mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0}))))
	require.NoError(t, sto.SetParent(camera, rig))

	target := spawnAt(t, sto, 15, 2, 0)
	require.NoError(t, sto.SetTransform(target, TransformFromPosition(15, 2, 0).WithScale(3, 3, 3)))

	newCapturingPropagator(&bytes.Buffer{}).Propagate(sto, 1)
	conv := newTestConverter(&bytes.Buffer{}, 1)
	require.NoError(t, conv.Register("main", camera))
	conv.Track(sto, 1)

	pos := conv.CameraPosition("main")
	assert.InDeltaSlice(t, []float64{10, 2, 0}, pos[:], 1e-5)

	m, err := conv.RenderMatrix(sto, target, "main")
	require.NoError(t, err)
	assertVec3(t, mgl32.Vec3{5, 0, 0}, translation(m), 1e-5)
	assertVec3(t, mgl32.Vec3{3, 0, 0}, m.Col(0).Vec3(), 1e-5)

	camRotation := mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0})
	view := conv.View("main")
	assertMat4(t, mgl32.Ident4(), view.Mul4(camRotation.Mat4()), 1e-5)
}

func TestConverterUnplacedChildOfWorldTransform(t *testing.T) {
	sto := newTestStorage()
	camera := spawnFar(t, sto, 1e15-1000, 0, 0)
	ship := spawnFar(t, sto, 1e15, 0, 0)
	created, err := sto.NewEntities(1)
	require.NoError(t, err)
	marker := created[0]
	require.NoError(t, sto.SetParent(marker, ship))

	report := newCapturingPropagator(&bytes.Buffer{}).Propagate(sto, 1)
	require.Len(t, report.Missing, 1)
	assert.Equal(t, MissingPlacement, report.Missing[0].Reason)

	conv := newTestConverter(&bytes.Buffer{}, 1)
	require.NoError(t, conv.Register("main", camera))
	conv.Track(sto, 1)

	m, err := conv.RenderMatrix(sto, marker, "main")
	require.NoError(t, err)
	assertVec3(t, mgl32.Vec3{1000, 0, 0}, translation(m), 0.1)

	// A camera with no placement of its own rides on its WorldTransform parent.
	require.NoError(t, conv.Register("main", marker))
	conv.Track(sto, 1)
	assert.Equal(t, mgl64.Vec3{1e15, 0, 0}, conv.CameraPosition("main"))
}

func TestConverterRegistration(t *testing.T) {
	sto := newTestStorage()
	first := spawnFar(t, sto, 1, 0, 0)
	second := spawnFar(t, sto, 2, 0, 0)

	var buf bytes.Buffer
	conv := newTestConverter(&buf, 1)
	require.NoError(t, conv.Register("main", first))
	assert.Error(t, conv.Register("minimap", second))

	newCapturingPropagator(&bytes.Buffer{}).Propagate(sto, 1)
	conv.Track(sto, 1)
	require.Equal(t, mgl64.Vec3{1, 0, 0}, conv.CameraPosition("main"))

	// Rebinding resets the state until the next Track.
	require.NoError(t, conv.Register("main", second))
	assert.Equal(t, mgl64.Vec3{}, conv.CameraPosition("main"))
	conv.Track(sto, 2)
	assert.Equal(t, mgl64.Vec3{2, 0, 0}, conv.CameraPosition("main"))

	_, ok := conv.Camera("missing")
	assert.False(t, ok)
	assert.Equal(t, mgl64.Vec3{}, conv.CameraPosition("missing"))
	assert.Equal(t, mgl32.Ident4(), conv.View("missing"))
	_, err := conv.RenderMatrix(sto, first, "missing")
	assert.Error(t, err)

	created, err := sto.NewEntities(1)
	require.NoError(t, err)
	unplaced := created[0]
	_, err = conv.RenderMatrix(sto, unplaced, "main")
	assert.Equal(t, EntityNotFoundError{Entity: unplaced}, err)

	require.NoError(t, conv.Register("main", unplaced))
	conv.Track(sto, 3)
	assert.Contains(t, buf.String(), "camera has no world matrix")
}

func TestConverterProjection(t *testing.T) {
	sto := newTestStorage()
	camera := spawnFar(t, sto, 0, 0, 0)
	conv := newTestConverter(&bytes.Buffer{}, 1)
	require.NoError(t, conv.Register("main", camera))

	_, err := conv.Projection(sto, "main")
	var missing ComponentNotFoundError
	assert.ErrorAs(t, err, &missing)

	settings, err := NewPerspectiveCamera(1.2, 1.5, 0.1, 1e9)
	require.NoError(t, err)
	require.NoError(t, CameraComponent.SetOnEntity(sto, camera, settings))

	proj, err := conv.Projection(sto, "main")
	require.NoError(t, err)
	assert.Equal(t, settings.Projection(), proj)

	CameraComponent.GetFromEntity(sto, camera).Near = 0
	_, err = conv.Projection(sto, "main")
	assert.ErrorAs(t, err, &ConfigurationError{})

	_, err = conv.Projection(sto, "missing")
	assert.Error(t, err)
}

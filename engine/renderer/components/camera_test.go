package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softglow/lantern/engine/math"
)

func TestViewOfRestingCameraIsPureTranslation(t *testing.T) {
	camera := NewCamera()
	camera.SetPosition(math.NewVec3(0, 1, 3.5))

	view := camera.View()

	origin := view.MulVec4(math.Vec4{X: 0, Y: 0, Z: 0, W: 1})
	assert.InDelta(t, 0.0, float64(origin.X), 1e-5)
	assert.InDelta(t, -1.0, float64(origin.Y), 1e-5)
	assert.InDelta(t, -3.5, float64(origin.Z), 1e-5)
}

func TestViewAppliesYawRotation(t *testing.T) {
	camera := NewCamera()
	camera.Yaw = math.Pi / 2

	// A quarter turn around Y carries +X onto -Z.
	rotated := camera.View().MulVec4(math.Vec4{X: 1, Y: 0, Z: 0, W: 1})
	assert.InDelta(t, 0.0, float64(rotated.X), 1e-5)
	assert.InDelta(t, 0.0, float64(rotated.Y), 1e-5)
	assert.InDelta(t, -1.0, float64(rotated.Z), 1e-5)
}

func TestTickIntegratesActiveMovements(t *testing.T) {
	camera := NewCamera()
	camera.StartMovement(MovePositiveX, 2.0)
	camera.StartMovement(MoveNegativeY, 4.0)

	camera.Tick(500)

	assert.InDelta(t, 1.0, float64(camera.Position.X), 1e-5)
	assert.InDelta(t, -2.0, float64(camera.Position.Y), 1e-5)

	camera.StopMovement(MovePositiveX)
	camera.Tick(500)

	assert.InDelta(t, 1.0, float64(camera.Position.X), 1e-5)
	assert.InDelta(t, -4.0, float64(camera.Position.Y), 1e-5)
}

func TestStartMovementReplacesSpeed(t *testing.T) {
	camera := NewCamera()
	camera.StartMovement(MovePositiveZ, 1.0)
	camera.StartMovement(MovePositiveZ, 3.0)

	camera.Tick(1000)

	assert.InDelta(t, 3.0, float64(camera.Position.Z), 1e-5)
}

func TestMoveByTurns(t *testing.T) {
	camera := NewCamera()
	camera.MoveBy(TurnPositiveYaw, 0.25)
	camera.MoveBy(TurnNegativePitch, 0.5)

	assert.InDelta(t, 0.25, float64(camera.Yaw), 1e-5)
	assert.InDelta(t, -0.5, float64(camera.Pitch), 1e-5)
}

func TestPitchStaysWithinLimits(t *testing.T) {
	camera := NewCamera()

	camera.MoveBy(TurnPositivePitch, 10)
	require.InDelta(t, float64(pitchLimit), float64(camera.Pitch), 1e-5)

	camera.MoveBy(TurnNegativePitch, 20)
	require.InDelta(t, float64(-pitchLimit), float64(camera.Pitch), 1e-5)
}

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softglow/lantern/engine/core"
	"github.com/softglow/lantern/engine/renderer/components"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.Renderer.Samples = 7

	_, err := New(config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "renderer.samples")
}

func TestQuitEventStopsTheLoop(t *testing.T) {
	engine, err := New(nil)
	require.NoError(t, err)

	engine.running = true
	engine.handleEvent(core.Event{Type: core.EventQuit})
	assert.False(t, engine.running)
}

func TestStopPublishesQuit(t *testing.T) {
	engine, err := New(nil)
	require.NoError(t, err)

	engine.Stop()
	assert.Equal(t, 1, engine.bus.Pending())

	engine.running = true
	engine.bus.Drain(engine.handleEvent)
	assert.False(t, engine.running)
}

func TestEscapeStopsTheLoop(t *testing.T) {
	engine, err := New(nil)
	require.NoError(t, err)

	engine.running = true
	engine.camera = components.NewCamera()
	engine.handleEvent(core.Event{Type: core.EventKeyPressed, Key: core.KEY_ESCAPE})
	assert.False(t, engine.running)
}

func TestZeroSizeResizeSuspends(t *testing.T) {
	engine, err := New(nil)
	require.NoError(t, err)

	engine.handleEvent(core.Event{Type: core.EventResized, Width: 0, Height: 0})
	assert.True(t, engine.suspended)

	// A second minimize notification is idempotent.
	engine.handleEvent(core.Event{Type: core.EventResized, Width: 0, Height: 0})
	assert.True(t, engine.suspended)
}

func TestMovementKeysDriveTheCamera(t *testing.T) {
	engine, err := New(nil)
	require.NoError(t, err)
	engine.camera = components.NewCamera()
	engine.camera.SetPosition(engine.cameraStartPosition())

	before := engine.camera.View()

	engine.handleEvent(core.Event{Type: core.EventKeyPressed, Key: core.KEY_W})
	engine.camera.Tick(500)
	moved := engine.camera.View()
	assert.NotEqual(t, before, moved, "holding W should move the camera")

	// After release the camera coasts to a stop.
	engine.handleEvent(core.Event{Type: core.EventKeyReleased, Key: core.KEY_W})
	engine.camera.Tick(500)
	settled := engine.camera.View()
	engine.camera.Tick(500)
	assert.Equal(t, settled, engine.camera.View(), "released key should not keep moving the camera")
}

func TestSpaceResetsTheCamera(t *testing.T) {
	engine, err := New(nil)
	require.NoError(t, err)
	engine.camera = components.NewCamera()
	engine.camera.SetPosition(engine.cameraStartPosition())

	home := engine.camera.View()

	engine.handleEvent(core.Event{Type: core.EventKeyPressed, Key: core.KEY_D})
	engine.camera.Tick(1000)
	engine.handleEvent(core.Event{Type: core.EventKeyReleased, Key: core.KEY_D})
	require.NotEqual(t, home, engine.camera.View())

	engine.handleEvent(core.Event{Type: core.EventKeyPressed, Key: core.KEY_SPACE})
	assert.Equal(t, home, engine.camera.View())
}

func TestCameraDirectionForKey(t *testing.T) {
	bindings := map[core.KeyCode]components.CameraDirection{
		core.KEY_W:     components.MoveNegativeZ,
		core.KEY_S:     components.MovePositiveZ,
		core.KEY_A:     components.MoveNegativeX,
		core.KEY_D:     components.MovePositiveX,
		core.KEY_E:     components.MovePositiveY,
		core.KEY_Q:     components.MoveNegativeY,
		core.KEY_LEFT:  components.TurnNegativeYaw,
		core.KEY_RIGHT: components.TurnPositiveYaw,
		core.KEY_UP:    components.TurnPositivePitch,
		core.KEY_DOWN:  components.TurnNegativePitch,
	}
	for key, want := range bindings {
		direction, ok := cameraDirectionForKey(key)
		require.True(t, ok, "key %#x should be bound", key)
		assert.Equal(t, want, direction)
	}

	_, ok := cameraDirectionForKey(core.KEY_ESCAPE)
	assert.False(t, ok, "escape is not a movement key")
}

func TestCameraSpeedSelectsTurnRate(t *testing.T) {
	engine, err := New(nil)
	require.NoError(t, err)

	assert.Equal(t, engine.config.Camera.MoveSpeed, engine.cameraSpeed(components.MovePositiveX))
	assert.Equal(t, engine.config.Camera.TurnSpeed, engine.cameraSpeed(components.TurnPositiveYaw))
	assert.True(t, isTurnDirection(components.TurnNegativePitch))
	assert.False(t, isTurnDirection(components.MoveNegativeZ))
}

package components

import (
	"github.com/softglow/lantern/engine/math"
)

// CameraDirection selects one axis of continuous camera motion. Translation
// runs along world axes rather than the view heading, turning adjusts the
// Euler angles.
type CameraDirection int

const (
	MovePositiveX CameraDirection = iota
	MoveNegativeX
	MovePositiveY
	MoveNegativeY
	MovePositiveZ
	MoveNegativeZ
	TurnPositivePitch
	TurnNegativePitch
	TurnPositiveYaw
	TurnNegativeYaw
)

// pitchLimit keeps the camera from flipping over, 89 degrees in radians.
const pitchLimit = float32(1.55334306)

// Camera is a free-fly camera described by a world position and pitch/yaw
// Euler angles in radians. Held key directions accumulate into per-second
// speeds that Tick integrates.
type Camera struct {
	Position math.Vec3
	Pitch    float32
	Yaw      float32

	speeds map[CameraDirection]float32
}

func NewCamera() *Camera {
	return &Camera{
		speeds: map[CameraDirection]float32{},
	}
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.Position = position
}

// View builds the world-to-view matrix by undoing the camera placement:
// rotate by pitch, then yaw, then translate by the negated position.
func (c *Camera) View() math.Mat4 {
	pitch := math.NewMat4EulerZ(c.Pitch)
	yaw := math.NewMat4EulerY(c.Yaw)
	translation := math.NewMat4Translation(c.Position.Negated())
	return pitch.Mul(yaw).Mul(translation)
}

// StartMovement begins continuous motion along a direction. The speed is
// per second; starting an already moving direction replaces its speed.
func (c *Camera) StartMovement(direction CameraDirection, speed float32) {
	c.speeds[direction] = speed
}

func (c *Camera) StopMovement(direction CameraDirection) {
	delete(c.speeds, direction)
}

// MoveBy applies a single step along a direction immediately.
func (c *Camera) MoveBy(direction CameraDirection, increment float32) {
	switch direction {
	case MovePositiveX:
		c.Position.X += increment
	case MoveNegativeX:
		c.Position.X -= increment
	case MovePositiveY:
		c.Position.Y += increment
	case MoveNegativeY:
		c.Position.Y -= increment
	case MovePositiveZ:
		c.Position.Z += increment
	case MoveNegativeZ:
		c.Position.Z -= increment
	case TurnPositivePitch:
		c.Pitch = math.Clamp(c.Pitch+increment, -pitchLimit, pitchLimit)
	case TurnNegativePitch:
		c.Pitch = math.Clamp(c.Pitch-increment, -pitchLimit, pitchLimit)
	case TurnPositiveYaw:
		c.Yaw += increment
	case TurnNegativeYaw:
		c.Yaw -= increment
	}
}

// Tick advances every active movement by the elapsed time in milliseconds.
func (c *Camera) Tick(deltaMilliseconds float32) {
	for direction, speed := range c.speeds {
		c.MoveBy(direction, speed*deltaMilliseconds/1000.0)
	}
}

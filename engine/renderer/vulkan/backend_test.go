package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	m "github.com/softglow/lantern/engine/math"
)

func TestAdvanceFrameSlot(t *testing.T) {
	t.Run("cycles through every slot", func(t *testing.T) {
		slot := 0
		seen := map[int]bool{slot: true}
		for i := 0; i < maxFramesInFlight-1; i++ {
			slot = advanceFrameSlot(slot)
			assert.False(t, seen[slot], "slot %d repeated before the cycle closed", slot)
			seen[slot] = true
		}
		assert.Len(t, seen, maxFramesInFlight)
	})

	t.Run("wraps to the first slot", func(t *testing.T) {
		assert.Equal(t, 0, advanceFrameSlot(maxFramesInFlight-1))
	})

	t.Run("never leaves the valid range", func(t *testing.T) {
		slot := 0
		for i := 0; i < 100; i++ {
			slot = advanceFrameSlot(slot)
			assert.GreaterOrEqual(t, slot, 0)
			assert.Less(t, slot, maxFramesInFlight)
		}
	})
}

func TestSceneProjection(t *testing.T) {
	t.Run("flips the Y axis for clip space", func(t *testing.T) {
		projection := sceneProjection(60, 800, 600, 0.1, 100)
		reference := m.NewMat4Perspective(60*(3.14159265/180), 800.0/600.0, 0.1, 100)
		assert.InDelta(t, -reference.Data[5], projection.Data[5], 1e-5)
		assert.Negative(t, projection.Data[5])
	})

	t.Run("tracks the surface aspect ratio", func(t *testing.T) {
		wide := sceneProjection(60, 1600, 400, 0.1, 100)
		square := sceneProjection(60, 400, 400, 0.1, 100)
		// A wider surface squeezes X by the aspect ratio.
		assert.InDelta(t, square.Data[0]/4, wide.Data[0], 1e-5)
	})

	t.Run("world up maps to the top of the framebuffer", func(t *testing.T) {
		// Vulkan device Y points down, so a view-space point above
		// center must come out at negative clip Y.
		projection := sceneProjection(90, 512, 512, 0.1, 100)
		clip := projection.MulVec4(m.NewVec4(0, 1, -2, 1))
		assert.Negative(t, clip.Y/clip.W)
	})
}

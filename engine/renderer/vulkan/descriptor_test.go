package vulkan

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softglow/lantern/engine/math"
	"github.com/softglow/lantern/engine/resources"
)

// The shader-side blocks use std140 layout; these sizes are part of
// the GPU contract, not an implementation detail.
func TestUniformBlockLayout(t *testing.T) {
	t.Run("vertex block is two matrices", func(t *testing.T) {
		assert.Equal(t, uintptr(128), unsafe.Sizeof(VertexUniforms{}))
	})

	t.Run("fragment block matches std140 with padded vec2", func(t *testing.T) {
		assert.Equal(t, uintptr(672), unsafe.Sizeof(FragmentUniforms{}))

		var block FragmentUniforms
		base := uintptr(unsafe.Pointer(&block))
		assert.Equal(t, uintptr(0), uintptr(unsafe.Pointer(&block.LightPosition))-base)
		assert.Equal(t, uintptr(16), uintptr(unsafe.Pointer(&block.ShadowClip))-base)
		assert.Equal(t, uintptr(32), uintptr(unsafe.Pointer(&block.Materials))-base)
	})

	t.Run("material entries are two vec4 slots", func(t *testing.T) {
		assert.Equal(t, uintptr(32), unsafe.Sizeof(materialUniform{}))
	})
}

func TestBuildMaterialTable(t *testing.T) {
	t.Run("mirrors colors into vec4 slots", func(t *testing.T) {
		materials := []resources.Material{
			{Name: "red", Ambient: math.NewVec3(0.1, 0, 0), Diffuse: math.NewVec3(0.9, 0, 0)},
			{Name: "green", Ambient: math.NewVec3(0, 0.1, 0), Diffuse: math.NewVec3(0, 0.9, 0)},
		}

		table, err := buildMaterialTable(materials)
		require.NoError(t, err)

		assert.InDelta(t, 0.1, table[0].Ambient.X, 1e-6)
		assert.InDelta(t, 0.9, table[0].Diffuse.X, 1e-6)
		assert.InDelta(t, 1.0, table[0].Ambient.W, 1e-6)
		assert.InDelta(t, 0.9, table[1].Diffuse.Y, 1e-6)
	})

	t.Run("unused entries stay zero", func(t *testing.T) {
		table, err := buildMaterialTable([]resources.Material{
			{Name: "only", Diffuse: math.NewVec3(1, 1, 1)},
		})
		require.NoError(t, err)
		assert.Equal(t, float32(0), table[1].Diffuse.X)
		assert.Equal(t, float32(0), table[19].Ambient.W)
	})

	t.Run("accepts exactly the capacity", func(t *testing.T) {
		materials := make([]resources.Material, resources.MaxMaterialCount)
		_, err := buildMaterialTable(materials)
		assert.NoError(t, err)
	})

	t.Run("rejects one past the capacity", func(t *testing.T) {
		materials := make([]resources.Material, resources.MaxMaterialCount+1)
		_, err := buildMaterialTable(materials)
		require.Error(t, err)
		assert.ErrorIs(t, err, resources.ErrTooManyMaterials)
	})
}

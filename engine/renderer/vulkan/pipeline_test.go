package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneVertexLayout(t *testing.T) {
	bindings := sceneVertexBindings()
	attributes := sceneVertexAttributes()
	require.Len(t, bindings, 3)
	require.Len(t, attributes, 3)

	t.Run("position and normal are tightly packed vec3 streams", func(t *testing.T) {
		assert.Equal(t, uint32(12), bindings[0].Stride)
		assert.Equal(t, uint32(12), bindings[1].Stride)
		assert.Equal(t, vk.FormatR32g32b32Sfloat, attributes[0].Format)
		assert.Equal(t, vk.FormatR32g32b32Sfloat, attributes[1].Format)
	})

	t.Run("material index is an unsigned scalar stream", func(t *testing.T) {
		assert.Equal(t, uint32(4), bindings[2].Stride)
		assert.Equal(t, vk.FormatR32Uint, attributes[2].Format)
	})

	t.Run("attribute locations follow their bindings", func(t *testing.T) {
		for i := range attributes {
			assert.Equal(t, uint32(i), attributes[i].Location)
			assert.Equal(t, uint32(i), attributes[i].Binding)
			assert.Equal(t, uint32(0), attributes[i].Offset)
			assert.Equal(t, vk.VertexInputRateVertex, bindings[i].InputRate)
		}
	})
}

func TestShadowVertexLayout(t *testing.T) {
	bindings := shadowVertexBindings()
	attributes := shadowVertexAttributes()
	require.Len(t, bindings, 1)
	require.Len(t, attributes, 1)

	assert.Equal(t, uint32(12), bindings[0].Stride)
	assert.Equal(t, vk.FormatR32g32b32Sfloat, attributes[0].Format)
	assert.Equal(t, uint32(0), attributes[0].Location)
}

func TestShadowPushConstantRange(t *testing.T) {
	ranges := shadowPushConstantRange()
	require.Len(t, ranges, 1)

	// One column-major mat4 for the face transform.
	assert.Equal(t, uint32(64), ranges[0].Size)
	assert.Equal(t, uint32(0), ranges[0].Offset)
	assert.Equal(t, vk.ShaderStageFlags(vk.ShaderStageVertexBit), ranges[0].StageFlags)
}

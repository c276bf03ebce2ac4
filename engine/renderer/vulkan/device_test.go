package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectQueueFamilies(t *testing.T) {
	t.Run("single family serving both roles", func(t *testing.T) {
		graphics, present := selectQueueFamilies([]queueFamilySpec{
			{SupportsGraphics: true, SupportsPresent: true},
		})
		assert.Equal(t, int32(0), graphics)
		assert.Equal(t, int32(0), present)
	})

	t.Run("split families", func(t *testing.T) {
		graphics, present := selectQueueFamilies([]queueFamilySpec{
			{SupportsGraphics: true},
			{SupportsPresent: true},
		})
		assert.Equal(t, int32(0), graphics)
		assert.Equal(t, int32(1), present)
	})

	t.Run("combined family wins over earlier partial match", func(t *testing.T) {
		graphics, present := selectQueueFamilies([]queueFamilySpec{
			{SupportsPresent: true},
			{SupportsGraphics: true, SupportsPresent: true},
		})
		assert.Equal(t, int32(1), graphics)
		assert.Equal(t, int32(1), present)
	})

	t.Run("missing present role", func(t *testing.T) {
		graphics, present := selectQueueFamilies([]queueFamilySpec{
			{SupportsGraphics: true},
		})
		assert.Equal(t, int32(0), graphics)
		assert.Equal(t, int32(-1), present)
	})

	t.Run("no families at all", func(t *testing.T) {
		graphics, present := selectQueueFamilies(nil)
		assert.Equal(t, int32(-1), graphics)
		assert.Equal(t, int32(-1), present)
	})
}

func TestChooseDepthFormat(t *testing.T) {
	t.Run("prefers pure depth when supported", func(t *testing.T) {
		format, hasStencil, err := chooseDepthFormat([]depthFormatCandidate{
			{Format: vk.FormatD32Sfloat, Supported: true},
			{Format: vk.FormatD32SfloatS8Uint, HasStencil: true, Supported: true},
		})
		require.NoError(t, err)
		assert.Equal(t, vk.FormatD32Sfloat, format)
		assert.False(t, hasStencil)
	})

	t.Run("falls back along the candidate order", func(t *testing.T) {
		format, hasStencil, err := chooseDepthFormat([]depthFormatCandidate{
			{Format: vk.FormatD32Sfloat},
			{Format: vk.FormatD32SfloatS8Uint, HasStencil: true},
			{Format: vk.FormatD24UnormS8Uint, HasStencil: true, Supported: true},
		})
		require.NoError(t, err)
		assert.Equal(t, vk.FormatD24UnormS8Uint, format)
		assert.True(t, hasStencil)
	})

	t.Run("fails when nothing is supported", func(t *testing.T) {
		_, _, err := chooseDepthFormat([]depthFormatCandidate{
			{Format: vk.FormatD32Sfloat},
		})
		assert.Error(t, err)
	})
}

func TestChooseSampleCount(t *testing.T) {
	all := vk.SampleCountFlags(vk.SampleCount1Bit | vk.SampleCount2Bit | vk.SampleCount4Bit)

	t.Run("grants the requested level", func(t *testing.T) {
		assert.Equal(t, vk.SampleCount4Bit, chooseSampleCount(all, 4))
		assert.Equal(t, vk.SampleCount2Bit, chooseSampleCount(all, 2))
	})

	t.Run("degrades when the device lacks the level", func(t *testing.T) {
		supported := vk.SampleCountFlags(vk.SampleCount1Bit | vk.SampleCount2Bit)
		assert.Equal(t, vk.SampleCount2Bit, chooseSampleCount(supported, 4))
	})

	t.Run("degrades to single sampling last", func(t *testing.T) {
		supported := vk.SampleCountFlags(vk.SampleCount1Bit)
		assert.Equal(t, vk.SampleCount1Bit, chooseSampleCount(supported, 4))
		assert.Equal(t, vk.SampleCount1Bit, chooseSampleCount(all, 1))
		assert.Equal(t, vk.SampleCount1Bit, chooseSampleCount(all, 0))
	})

	t.Run("odd requests round down", func(t *testing.T) {
		assert.Equal(t, vk.SampleCount2Bit, chooseSampleCount(all, 3))
		assert.Equal(t, vk.SampleCount4Bit, chooseSampleCount(all, 8))
	})
}

func TestContainsAll(t *testing.T) {
	available := []string{"VK_KHR_swapchain", "VK_KHR_maintenance1"}
	assert.True(t, containsAll(available, []string{"VK_KHR_swapchain"}))
	assert.True(t, containsAll(available, nil))
	assert.False(t, containsAll(available, []string{"VK_KHR_ray_tracing_pipeline"}))
}

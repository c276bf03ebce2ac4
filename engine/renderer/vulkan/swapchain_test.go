package vulkan

import (
	"math"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestChooseSurfaceFormat(t *testing.T) {
	preferred := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	t.Run("prefers sRGB BGRA in sRGB color space", func(t *testing.T) {
		formats := []vk.SurfaceFormat{
			{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			preferred,
		}
		chosen := chooseSurfaceFormat(formats)
		assert.Equal(t, vk.FormatB8g8r8a8Srgb, chosen.Format)
		assert.Equal(t, vk.ColorSpaceSrgbNonlinear, chosen.ColorSpace)
	})

	t.Run("format alone is not enough", func(t *testing.T) {
		formats := []vk.SurfaceFormat{
			{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceDisplayP3Nonlinear},
			{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		}
		chosen := chooseSurfaceFormat(formats)
		assert.Equal(t, vk.FormatB8g8r8a8Srgb, chosen.Format)
		assert.Equal(t, vk.ColorSpaceDisplayP3Nonlinear, chosen.ColorSpace)
	})

	t.Run("falls back to the first listed format", func(t *testing.T) {
		formats := []vk.SurfaceFormat{
			{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			{Format: vk.FormatR8g8b8a8Snorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		}
		chosen := chooseSurfaceFormat(formats)
		assert.Equal(t, vk.FormatR8g8b8a8Unorm, chosen.Format)
	})
}

func TestChoosePresentMode(t *testing.T) {
	t.Run("prefers mailbox", func(t *testing.T) {
		modes := []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox, vk.PresentModeImmediate}
		assert.Equal(t, vk.PresentModeMailbox, choosePresentMode(modes))
	})

	t.Run("falls back to fifo", func(t *testing.T) {
		modes := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifoRelaxed}
		assert.Equal(t, vk.PresentModeFifo, choosePresentMode(modes))
	})
}

func TestChooseSwapExtent(t *testing.T) {
	t.Run("fixed surface extent wins over framebuffer size", func(t *testing.T) {
		capabilities := vk.SurfaceCapabilities{
			CurrentExtent: vk.Extent2D{Width: 800, Height: 600},
		}
		width, height := chooseSwapExtent(capabilities, 1920, 1080)
		assert.Equal(t, uint32(800), width)
		assert.Equal(t, uint32(600), height)
	})

	t.Run("unbounded surface clamps framebuffer size into range", func(t *testing.T) {
		capabilities := vk.SurfaceCapabilities{
			CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
			MinImageExtent: vk.Extent2D{Width: 200, Height: 200},
			MaxImageExtent: vk.Extent2D{Width: 1600, Height: 900},
		}

		width, height := chooseSwapExtent(capabilities, 1920, 1080)
		assert.Equal(t, uint32(1600), width)
		assert.Equal(t, uint32(900), height)

		width, height = chooseSwapExtent(capabilities, 100, 100)
		assert.Equal(t, uint32(200), width)
		assert.Equal(t, uint32(200), height)

		width, height = chooseSwapExtent(capabilities, 1024, 768)
		assert.Equal(t, uint32(1024), width)
		assert.Equal(t, uint32(768), height)

		// Each axis clamps independently.
		width, height = chooseSwapExtent(capabilities, 50, 6000)
		assert.Equal(t, uint32(200), width)
		assert.Equal(t, uint32(900), height)
	})
}

func TestChooseImageCount(t *testing.T) {
	t.Run("one above the minimum", func(t *testing.T) {
		capabilities := vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8}
		assert.Equal(t, uint32(3), chooseImageCount(capabilities))
	})

	t.Run("clamped by the maximum", func(t *testing.T) {
		capabilities := vk.SurfaceCapabilities{MinImageCount: 3, MaxImageCount: 3}
		assert.Equal(t, uint32(3), chooseImageCount(capabilities))
	})

	t.Run("zero maximum means unbounded", func(t *testing.T) {
		capabilities := vk.SurfaceCapabilities{MinImageCount: 4, MaxImageCount: 0}
		assert.Equal(t, uint32(5), chooseImageCount(capabilities))
	})
}

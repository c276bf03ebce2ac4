package vulkan

import vk "github.com/goki/vulkan"

const (
	// maxFramesInFlight bounds how many frames the CPU may record ahead
	// of the GPU. Decoupled from the swapchain image count.
	maxFramesInFlight = 3

	// defaultShadowMapSize is the edge length in pixels of every cube
	// shadow face when the configuration does not override it.
	defaultShadowMapSize = 1024

	// shadowFaceCount is the number of faces in the shadow cube.
	shadowFaceCount = 6

	// shadowDepthFormat backs the shadow cube. Unlike the scene depth
	// attachment this image is sampled, and 32-bit float depth is the
	// one format with guaranteed sampled-image support.
	shadowDepthFormat = vk.FormatD32Sfloat

	// staticGeneration keys registry entries whose lifetime spans every
	// swapchain rebuild. Swapchain generations start counting at 1.
	staticGeneration = 0
)

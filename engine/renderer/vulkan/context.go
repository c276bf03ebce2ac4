package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/softglow/lantern/engine/core"
)

// Context is the state shared by every renderer component: instance and
// surface, the selected device, the live swapchain and the bookkeeping
// that ties resource lifetimes to swapchain generations.
type Context struct {
	// Framebuffer size in pixels, fed by resize events. The generation
	// pair detects sizes that changed since the swapchain was last
	// built: when the two differ a rebuild is pending.
	FramebufferWidth              uint32
	FramebufferHeight             uint32
	FramebufferSizeGeneration     uint64
	FramebufferSizeLastGeneration uint64

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugMessenger vk.DebugReportCallback

	Device    *Device
	Swapchain *Swapchain

	// ShadowMapSize is the edge length in pixels of every cube shadow
	// face. Fixed at startup.
	ShadowMapSize uint32

	// SwapchainGeneration counts swapchain builds, starting at 1 for
	// the first. Resources living only as long as the current swapchain
	// register under it and are released wholesale on recreation.
	SwapchainGeneration uint64

	Registry *core.ResourceRegistry
}

// TrackSwapchainResource registers a device object that lives and dies
// with the current swapchain generation.
func (c *Context) TrackSwapchainResource(kind string) core.ResourceID {
	return c.Registry.Acquire(kind, c.SwapchainGeneration)
}

// TrackStaticResource registers a device object that survives swapchain
// rebuilds and is only torn down at shutdown.
func (c *Context) TrackStaticResource(kind string) core.ResourceID {
	return c.Registry.Acquire(kind, staticGeneration)
}

func (c *Context) ReleaseResource(id core.ResourceID) {
	if err := c.Registry.Release(id); err != nil {
		core.LogWarn("%v", err)
	}
}

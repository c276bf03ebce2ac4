package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// CommandPoolCreate builds the graphics-family pool every command
// buffer in the renderer comes from. No reset flag: buffers are
// recorded once and freed wholesale on swapchain rebuilds.
func CommandPoolCreate(context *Context) (vk.CommandPool, error) {
	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
	}

	var pool vk.CommandPool
	if err := vk.Error(vk.CreateCommandPool(context.Device.Logical, &poolInfo, context.Allocator, &pool)); err != nil {
		return vk.NullCommandPool, fmt.Errorf("creating command pool: %w", err)
	}
	return pool, nil
}

func CommandPoolDestroy(context *Context, pool vk.CommandPool) {
	if pool == vk.NullCommandPool {
		return
	}
	vk.DestroyCommandPool(context.Device.Logical, pool, context.Allocator)
}

package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// Command buffers here are recorded once per swapchain image and
// replayed every frame, so there is no per-frame reset path. Uploads
// and layout transitions run through the single-use pair below.

func CommandBufferAllocate(context *Context, pool vk.CommandPool, count uint32) ([]vk.CommandBuffer, error) {
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}

	buffers := make([]vk.CommandBuffer, count)
	if err := vk.Error(vk.AllocateCommandBuffers(context.Device.Logical, &allocInfo, buffers)); err != nil {
		return nil, fmt.Errorf("allocating %d command buffers: %w", count, err)
	}
	return buffers, nil
}

func CommandBufferFree(context *Context, pool vk.CommandPool, buffers []vk.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	vk.FreeCommandBuffers(context.Device.Logical, pool, uint32(len(buffers)), buffers)
}

// AllocateAndBeginSingleUse hands back a primary command buffer already
// in the recording state, flagged for one submission.
func AllocateAndBeginSingleUse(context *Context, pool vk.CommandPool) (vk.CommandBuffer, error) {
	buffers, err := CommandBufferAllocate(context, pool, 1)
	if err != nil {
		return nil, err
	}
	commandBuffer := buffers[0]

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if err := vk.Error(vk.BeginCommandBuffer(commandBuffer, &beginInfo)); err != nil {
		CommandBufferFree(context, pool, buffers)
		return nil, fmt.Errorf("beginning single-use command buffer: %w", err)
	}
	return commandBuffer, nil
}

// EndSingleUse submits the buffer, blocks until the queue drains, and
// frees it. Callers accept the stall; this path only runs at load and
// resize time.
func EndSingleUse(context *Context, pool vk.CommandPool, commandBuffer vk.CommandBuffer, queue vk.Queue) error {
	defer CommandBufferFree(context, pool, []vk.CommandBuffer{commandBuffer})

	if err := vk.Error(vk.EndCommandBuffer(commandBuffer)); err != nil {
		return fmt.Errorf("ending single-use command buffer: %w", err)
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{commandBuffer},
	}
	if err := vk.Error(vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence)); err != nil {
		return fmt.Errorf("submitting single-use command buffer: %w", err)
	}
	if err := vk.Error(vk.QueueWaitIdle(queue)); err != nil {
		return fmt.Errorf("draining queue after single-use submit: %w", err)
	}
	return nil
}

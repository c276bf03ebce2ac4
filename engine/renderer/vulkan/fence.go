package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// Fences and semaphores are used as bare handles. No wrapper caches
// signal state; the GPU flips fences behind the driver's back, so the
// driver is the only honest source of truth.

func FenceCreate(context *Context, signaled bool) (vk.Fence, error) {
	fenceInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		fenceInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var fence vk.Fence
	if err := vk.Error(vk.CreateFence(context.Device.Logical, &fenceInfo, context.Allocator, &fence)); err != nil {
		return vk.NullFence, fmt.Errorf("creating fence: %w", err)
	}
	return fence, nil
}

func FenceDestroy(context *Context, fence vk.Fence) {
	if fence == vk.NullFence {
		return
	}
	vk.DestroyFence(context.Device.Logical, fence, context.Allocator)
}

func FenceWait(context *Context, fence vk.Fence, timeoutNS uint64) error {
	result := vk.WaitForFences(context.Device.Logical, 1, []vk.Fence{fence}, vk.True, timeoutNS)
	if result == vk.Timeout {
		return fmt.Errorf("fence wait timed out after %dns", timeoutNS)
	}
	if err := vk.Error(result); err != nil {
		return fmt.Errorf("waiting for fence: %w", err)
	}
	return nil
}

func FenceReset(context *Context, fence vk.Fence) error {
	if err := vk.Error(vk.ResetFences(context.Device.Logical, 1, []vk.Fence{fence})); err != nil {
		return fmt.Errorf("resetting fence: %w", err)
	}
	return nil
}

func SemaphoreCreate(context *Context) (vk.Semaphore, error) {
	semaphoreInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	var semaphore vk.Semaphore
	if err := vk.Error(vk.CreateSemaphore(context.Device.Logical, &semaphoreInfo, context.Allocator, &semaphore)); err != nil {
		return vk.NullSemaphore, fmt.Errorf("creating semaphore: %w", err)
	}
	return semaphore, nil
}

func SemaphoreDestroy(context *Context, semaphore vk.Semaphore) {
	if semaphore == vk.NullSemaphore {
		return
	}
	vk.DestroySemaphore(context.Device.Logical, semaphore, context.Allocator)
}

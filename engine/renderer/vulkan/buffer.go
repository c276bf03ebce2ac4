package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// Buffer owns a device buffer and its backing memory. Mapped is only
// set while the memory is host-mapped; uniform buffers stay mapped for
// their whole lifetime.
type Buffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
	Mapped unsafe.Pointer
}

func BufferCreate(context *Context, size vk.DeviceSize, usage vk.BufferUsageFlags, memoryFlags vk.MemoryPropertyFlags) (*Buffer, error) {
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	var handle vk.Buffer
	if err := vk.Error(vk.CreateBuffer(context.Device.Logical, &bufferInfo, context.Allocator, &handle)); err != nil {
		return nil, fmt.Errorf("creating buffer: %w", err)
	}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.Logical, handle, &requirements)
	requirements.Deref()

	memoryIndex, err := context.FindMemoryIndex(requirements.MemoryTypeBits, memoryFlags)
	if err != nil {
		vk.DestroyBuffer(context.Device.Logical, handle, context.Allocator)
		return nil, err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryIndex,
	}
	var memory vk.DeviceMemory
	if err := vk.Error(vk.AllocateMemory(context.Device.Logical, &allocInfo, context.Allocator, &memory)); err != nil {
		vk.DestroyBuffer(context.Device.Logical, handle, context.Allocator)
		return nil, fmt.Errorf("allocating buffer memory: %w", err)
	}
	if err := vk.Error(vk.BindBufferMemory(context.Device.Logical, handle, memory, 0)); err != nil {
		vk.FreeMemory(context.Device.Logical, memory, context.Allocator)
		vk.DestroyBuffer(context.Device.Logical, handle, context.Allocator)
		return nil, fmt.Errorf("binding buffer memory: %w", err)
	}

	return &Buffer{Handle: handle, Memory: memory, Size: size}, nil
}

func (b *Buffer) Destroy(context *Context) {
	if b == nil {
		return
	}
	if b.Mapped != nil {
		b.Unmap(context)
	}
	if b.Handle != vk.NullBuffer {
		vk.DestroyBuffer(context.Device.Logical, b.Handle, context.Allocator)
		b.Handle = vk.NullBuffer
	}
	if b.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.Device.Logical, b.Memory, context.Allocator)
		b.Memory = vk.NullDeviceMemory
	}
}

// Map exposes the whole buffer to the host. The mapping persists until
// Unmap or Destroy, so frame loops can rewrite uniforms without
// remapping.
func (b *Buffer) Map(context *Context) error {
	if b.Mapped != nil {
		return nil
	}
	var data unsafe.Pointer
	if err := vk.Error(vk.MapMemory(context.Device.Logical, b.Memory, 0, b.Size, 0, &data)); err != nil {
		return fmt.Errorf("mapping buffer memory: %w", err)
	}
	b.Mapped = data
	return nil
}

func (b *Buffer) Unmap(context *Context) {
	if b.Mapped == nil {
		return
	}
	vk.UnmapMemory(context.Device.Logical, b.Memory)
	b.Mapped = nil
}

// Write copies raw bytes into the mapped region. Callers must have
// mapped the buffer and must not exceed its size.
func (b *Buffer) Write(data []byte) {
	vk.Memcopy(b.Mapped, data)
}

// BufferCreateDeviceLocal uploads data into a fresh device-local
// buffer through a throwaway staging buffer and a single-use command
// buffer. The submit is synchronous; geometry uploads happen once at
// scene load, so blocking the queue is fine.
func BufferCreateDeviceLocal(context *Context, pool vk.CommandPool, queue vk.Queue, usage vk.BufferUsageFlags, data []byte) (*Buffer, error) {
	size := vk.DeviceSize(len(data))
	if size == 0 {
		return nil, fmt.Errorf("device-local buffer needs at least one byte of data")
	}

	staging, err := BufferCreate(context, size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, fmt.Errorf("creating staging buffer: %w", err)
	}
	defer staging.Destroy(context)

	if err := staging.Map(context); err != nil {
		return nil, err
	}
	staging.Write(data)
	staging.Unmap(context)

	deviceLocal, err := BufferCreate(context, size,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}

	commandBuffer, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		deviceLocal.Destroy(context)
		return nil, err
	}
	region := vk.BufferCopy{SrcOffset: 0, DstOffset: 0, Size: size}
	vk.CmdCopyBuffer(commandBuffer, staging.Handle, deviceLocal.Handle, 1, []vk.BufferCopy{region})
	if err := EndSingleUse(context, pool, commandBuffer, queue); err != nil {
		deviceLocal.Destroy(context)
		return nil, err
	}

	return deviceLocal, nil
}

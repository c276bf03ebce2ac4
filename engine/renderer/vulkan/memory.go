package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/softglow/lantern/engine/core"
)

// memoryTypeSpec is the property mask of one entry in the device's
// memory type table, flattened out of the C-backed query result so the
// selection logic stays testable.
type memoryTypeSpec struct {
	PropertyFlags uint32
}

// findMemoryTypeIndex picks the first memory type whose bit is set in
// the requirement's type mask and whose property flags contain every
// requested flag.
func findMemoryTypeIndex(types []memoryTypeSpec, typeBits uint32, required uint32) (uint32, error) {
	for i, spec := range types {
		if typeBits&(1<<uint(i)) == 0 {
			continue
		}
		if spec.PropertyFlags&required != required {
			continue
		}
		return uint32(i), nil
	}
	return 0, fmt.Errorf("%w: type mask %#x, property flags %#x",
		core.ErrNoSuitableMemoryType, typeBits, required)
}

// FindMemoryIndex resolves a memory type for an allocation against the
// physical device's memory table.
func (c *Context) FindMemoryIndex(typeBits uint32, required vk.MemoryPropertyFlags) (uint32, error) {
	var properties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(c.Device.Physical, &properties)
	properties.Deref()

	types := make([]memoryTypeSpec, properties.MemoryTypeCount)
	for i := uint32(0); i < properties.MemoryTypeCount; i++ {
		memType := properties.MemoryTypes[i]
		memType.Deref()
		types[i] = memoryTypeSpec{PropertyFlags: uint32(memType.PropertyFlags)}
	}

	return findMemoryTypeIndex(types, typeBits, uint32(required))
}

// structBytes views a struct as its raw bytes for uploading into mapped
// device memory. The pointer must reference a fixed-layout struct with
// no Go pointers inside.
func structBytes(ptr unsafe.Pointer, size uintptr) []byte {
	return unsafe.Slice((*byte)(ptr), size)
}

// sliceBytes views a slice's backing array as raw bytes.
func sliceBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), uintptr(len(data))*unsafe.Sizeof(zero))
}

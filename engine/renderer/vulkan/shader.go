package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/softglow/lantern/engine/resources"
)

func ShaderModuleCreate(context *Context, blob *resources.ShaderBlob) (vk.ShaderModule, error) {
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(blob.Code)),
		PCode:    repackUint32(blob.Code),
	}

	var module vk.ShaderModule
	if err := vk.Error(vk.CreateShaderModule(context.Device.Logical, &createInfo, context.Allocator, &module)); err != nil {
		return vk.NullShaderModule, fmt.Errorf("creating shader module from %s: %w", blob.Path, err)
	}
	return module, nil
}

func ShaderModuleDestroy(context *Context, module vk.ShaderModule) {
	if module == vk.NullShaderModule {
		return
	}
	vk.DestroyShaderModule(context.Device.Logical, module, context.Allocator)
}

// repackUint32 reinterprets SPIR-V bytes as the word stream the API
// wants. Loaders reject blobs that are not word aligned, so the
// division here is exact.
func repackUint32(data []byte) []uint32 {
	words := make([]uint32, len(data)/4)
	vk.Memcopy(unsafe.Pointer(&words[0]), data)
	return words
}

package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/softglow/lantern/engine/core"
	m "github.com/softglow/lantern/engine/math"
	"github.com/softglow/lantern/engine/resources"
)

// Uniform block layouts mirror the shader side byte for byte under
// std140 rules, so the explicit padding fields are load bearing.

// VertexUniforms feeds the scene vertex stage.
type VertexUniforms struct {
	Model m.Mat4
	MVP   m.Mat4
}

// materialUniform is one entry of the material table. Colors ride in
// vec4 slots because std140 arrays align elements to 16 bytes anyway.
type materialUniform struct {
	Ambient m.Vec4
	Diffuse m.Vec4
}

// FragmentUniforms feeds the scene fragment stage: the light position,
// the shadow projection's near/far pair for depth linearization, and
// the full material table.
type FragmentUniforms struct {
	LightPosition m.Vec4
	ShadowClip    m.Vec2
	_             [8]byte
	Materials     [resources.MaxMaterialCount]materialUniform
}

// DescriptorSetLayoutCreate builds the three-binding scene layout:
// vertex uniforms, fragment uniforms, shadow cube sampler. The layout
// depends on nothing the swapchain owns, so it is created once and
// survives every rebuild.
func DescriptorSetLayoutCreate(context *Context) (vk.DescriptorSetLayout, error) {
	bindings := []vk.DescriptorSetLayoutBinding{
		{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		},
		{
			Binding:         1,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
		{
			Binding:         2,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	}

	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	var layout vk.DescriptorSetLayout
	if err := vk.Error(vk.CreateDescriptorSetLayout(context.Device.Logical, &layoutInfo, context.Allocator, &layout)); err != nil {
		return vk.NullDescriptorSetLayout, fmt.Errorf("creating descriptor set layout: %w", err)
	}
	return layout, nil
}

func DescriptorSetLayoutDestroy(context *Context, layout vk.DescriptorSetLayout) {
	if layout == vk.NullDescriptorSetLayout {
		return
	}
	vk.DestroyDescriptorSetLayout(context.Device.Logical, layout, context.Allocator)
}

// ShadowSamplerCreate builds the shared sampler the shadow cube is
// read through: linear filtering, clamp to edge, anisotropy at the
// device limit. Created once, shared by every frame's descriptor set.
func ShadowSamplerCreate(context *Context) (vk.Sampler, error) {
	// White border reads as maximum depth, so geometry outside a face
	// never registers as shadowed.
	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeNearest,
		AddressModeU:            vk.SamplerAddressModeClampToEdge,
		AddressModeV:            vk.SamplerAddressModeClampToEdge,
		AddressModeW:            vk.SamplerAddressModeClampToEdge,
		AnisotropyEnable:        vk.True,
		MaxAnisotropy:           context.Device.Properties.Limits.MaxSamplerAnisotropy,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		BorderColor:             vk.BorderColorFloatOpaqueWhite,
		UnnormalizedCoordinates: vk.False,
	}

	var sampler vk.Sampler
	if err := vk.Error(vk.CreateSampler(context.Device.Logical, &samplerInfo, context.Allocator, &sampler)); err != nil {
		return vk.NullSampler, fmt.Errorf("creating shadow sampler: %w", err)
	}
	return sampler, nil
}

func SamplerDestroy(context *Context, sampler vk.Sampler) {
	if sampler == vk.NullSampler {
		return
	}
	vk.DestroySampler(context.Device.Logical, sampler, context.Allocator)
}

// SceneDescriptors owns the per-generation descriptor state for the
// scene pass: the pool, one set and one pair of persistently mapped
// uniform buffers per swapchain image. Layout and sampler are borrowed
// from the backend and never destroyed here.
type SceneDescriptors struct {
	Pool    vk.DescriptorPool
	Sets    []vk.DescriptorSet
	layout  vk.DescriptorSetLayout
	sampler vk.Sampler

	VertexBuffers   []*Buffer
	FragmentBuffers []*Buffer

	resourceIDs []core.ResourceID
}

// SceneDescriptorsCreate builds pool, buffers and sets for imageCount
// swapchain images and points binding 2 of each image's set at that
// image's own shadow cube view.
func SceneDescriptorsCreate(context *Context, layout vk.DescriptorSetLayout, sampler vk.Sampler, imageCount uint32, shadowCubeViews []vk.ImageView) (*SceneDescriptors, error) {
	if uint32(len(shadowCubeViews)) != imageCount {
		return nil, fmt.Errorf("%d shadow cube views for %d swapchain images", len(shadowCubeViews), imageCount)
	}
	descriptors := &SceneDescriptors{layout: layout, sampler: sampler}

	if err := descriptors.createPool(context, imageCount); err != nil {
		descriptors.Destroy(context)
		return nil, err
	}
	if err := descriptors.createUniformBuffers(context, imageCount); err != nil {
		descriptors.Destroy(context)
		return nil, err
	}
	if err := descriptors.allocateSets(context, imageCount, shadowCubeViews); err != nil {
		descriptors.Destroy(context)
		return nil, err
	}

	return descriptors, nil
}

func (d *SceneDescriptors) createPool(context *Context, imageCount uint32) error {
	poolSizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: 2 * imageCount},
		{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: imageCount},
	}

	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
		MaxSets:       imageCount,
	}

	var pool vk.DescriptorPool
	if err := vk.Error(vk.CreateDescriptorPool(context.Device.Logical, &poolInfo, context.Allocator, &pool)); err != nil {
		return fmt.Errorf("creating descriptor pool: %w", err)
	}
	d.Pool = pool
	d.resourceIDs = append(d.resourceIDs, context.TrackSwapchainResource("descriptor-pool"))
	return nil
}

func (d *SceneDescriptors) createUniformBuffers(context *Context, imageCount uint32) error {
	d.VertexBuffers = make([]*Buffer, imageCount)
	d.FragmentBuffers = make([]*Buffer, imageCount)

	hostFlags := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	usage := vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)

	for i := uint32(0); i < imageCount; i++ {
		vertexBuffer, err := BufferCreate(context, vk.DeviceSize(unsafe.Sizeof(VertexUniforms{})), usage, hostFlags)
		if err != nil {
			return fmt.Errorf("creating vertex uniform buffer %d: %w", i, err)
		}
		d.VertexBuffers[i] = vertexBuffer
		if err := vertexBuffer.Map(context); err != nil {
			return err
		}

		fragmentBuffer, err := BufferCreate(context, vk.DeviceSize(unsafe.Sizeof(FragmentUniforms{})), usage, hostFlags)
		if err != nil {
			return fmt.Errorf("creating fragment uniform buffer %d: %w", i, err)
		}
		d.FragmentBuffers[i] = fragmentBuffer
		if err := fragmentBuffer.Map(context); err != nil {
			return err
		}

		d.resourceIDs = append(d.resourceIDs,
			context.TrackSwapchainResource("vertex-ubo"),
			context.TrackSwapchainResource("fragment-ubo"))
	}
	return nil
}

func (d *SceneDescriptors) allocateSets(context *Context, imageCount uint32, shadowCubeViews []vk.ImageView) error {
	layouts := make([]vk.DescriptorSetLayout, imageCount)
	for i := range layouts {
		layouts[i] = d.layout
	}

	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.Pool,
		DescriptorSetCount: imageCount,
		PSetLayouts:        layouts,
	}

	d.Sets = make([]vk.DescriptorSet, imageCount)
	if err := vk.Error(vk.AllocateDescriptorSets(context.Device.Logical, &allocInfo, &d.Sets[0])); err != nil {
		return fmt.Errorf("allocating descriptor sets: %w", err)
	}

	for i := uint32(0); i < imageCount; i++ {
		vertexInfo := vk.DescriptorBufferInfo{
			Buffer: d.VertexBuffers[i].Handle,
			Offset: 0,
			Range:  vk.DeviceSize(unsafe.Sizeof(VertexUniforms{})),
		}
		fragmentInfo := vk.DescriptorBufferInfo{
			Buffer: d.FragmentBuffers[i].Handle,
			Offset: 0,
			Range:  vk.DeviceSize(unsafe.Sizeof(FragmentUniforms{})),
		}
		shadowInfo := vk.DescriptorImageInfo{
			Sampler:     d.sampler,
			ImageView:   shadowCubeViews[i],
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		}

		writes := []vk.WriteDescriptorSet{
			{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          d.Sets[i],
				DstBinding:      0,
				DescriptorType:  vk.DescriptorTypeUniformBuffer,
				DescriptorCount: 1,
				PBufferInfo:     []vk.DescriptorBufferInfo{vertexInfo},
			},
			{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          d.Sets[i],
				DstBinding:      1,
				DescriptorType:  vk.DescriptorTypeUniformBuffer,
				DescriptorCount: 1,
				PBufferInfo:     []vk.DescriptorBufferInfo{fragmentInfo},
			},
			{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          d.Sets[i],
				DstBinding:      2,
				DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
				DescriptorCount: 1,
				PImageInfo:      []vk.DescriptorImageInfo{shadowInfo},
			},
		}
		vk.UpdateDescriptorSets(context.Device.Logical, uint32(len(writes)), writes, 0, nil)
	}
	return nil
}

// WriteVertexUniforms copies the block into image's mapped vertex
// buffer. Callers serialize against the frame fence first.
func (d *SceneDescriptors) WriteVertexUniforms(imageIndex uint32, uniforms *VertexUniforms) {
	d.VertexBuffers[imageIndex].Write(structBytes(unsafe.Pointer(uniforms), unsafe.Sizeof(*uniforms)))
}

func (d *SceneDescriptors) WriteFragmentUniforms(imageIndex uint32, uniforms *FragmentUniforms) {
	d.FragmentBuffers[imageIndex].Write(structBytes(unsafe.Pointer(uniforms), unsafe.Sizeof(*uniforms)))
}

func (d *SceneDescriptors) Destroy(context *Context) {
	if d == nil {
		return
	}
	for _, buffer := range d.VertexBuffers {
		buffer.Destroy(context)
	}
	for _, buffer := range d.FragmentBuffers {
		buffer.Destroy(context)
	}
	d.VertexBuffers = nil
	d.FragmentBuffers = nil

	if d.Pool != vk.NullDescriptorPool {
		// Pool destruction frees every set allocated from it.
		vk.DestroyDescriptorPool(context.Device.Logical, d.Pool, context.Allocator)
		d.Pool = vk.NullDescriptorPool
	}
	d.Sets = nil

	for _, id := range d.resourceIDs {
		context.ReleaseResource(id)
	}
	d.resourceIDs = nil
}

// buildMaterialTable mirrors loaded materials into the fixed uniform
// array. Overflow is a hard load failure, never a silent truncation.
func buildMaterialTable(materials []resources.Material) ([resources.MaxMaterialCount]materialUniform, error) {
	var table [resources.MaxMaterialCount]materialUniform
	if len(materials) > resources.MaxMaterialCount {
		return table, fmt.Errorf("%d materials: %w", len(materials), resources.ErrTooManyMaterials)
	}
	for i, material := range materials {
		table[i] = materialUniform{
			Ambient: material.Ambient.ToVec4(1),
			Diffuse: material.Diffuse.ToVec4(1),
		}
	}
	return table, nil
}

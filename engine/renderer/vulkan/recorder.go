package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	m "github.com/softglow/lantern/engine/math"
)

// RecordConfig gathers everything one frame's command sequence touches.
type RecordConfig struct {
	CommandBuffers []vk.CommandBuffer
	ShadowPass     vk.RenderPass
	ScenePass      vk.RenderPass
	ShadowPipeline *Pipeline
	ScenePipeline  *Pipeline
	ShadowTargets  *ShadowTargets
	RenderTargets  *RenderTargets
	Descriptors    *SceneDescriptors
	Geometry       *GeometryBuffers
	FaceMatrices   [shadowFaceCount]m.Mat4
}

// RecordCommandBuffers writes the static frame sequence into one
// command buffer per swapchain image: six depth passes into the
// image's shadow cube, a barrier flipping the cube to a sampleable
// layout, the lit scene pass, and a mirror barrier readying the cube
// for the next replay. Buffers are recorded once and resubmitted
// until the swapchain generation retires.
func RecordCommandBuffers(context *Context, config RecordConfig) error {
	sceneClear := sceneClearValues(context.Device.SampleCount != vk.SampleCount1Bit)
	shadowClear := shadowClearValues()
	extent := context.Swapchain.Extent

	for i, commandBuffer := range config.CommandBuffers {
		beginInfo := vk.CommandBufferBeginInfo{
			SType: vk.StructureTypeCommandBufferBeginInfo,
		}
		if err := vk.Error(vk.BeginCommandBuffer(commandBuffer, &beginInfo)); err != nil {
			return fmt.Errorf("beginning command buffer %d: %w", i, err)
		}

		shadowMap := config.ShadowTargets.Maps[i]
		for face := 0; face < shadowFaceCount; face++ {
			renderPassBegin(commandBuffer, config.ShadowPass, shadowMap.Framebuffers[face],
				context.ShadowMapSize, context.ShadowMapSize, shadowClear)
			vk.CmdBindPipeline(commandBuffer, vk.PipelineBindPointGraphics, config.ShadowPipeline.Handle)

			matrix := config.FaceMatrices[face]
			vk.CmdPushConstants(commandBuffer, config.ShadowPipeline.Layout,
				vk.ShaderStageFlags(vk.ShaderStageVertexBit),
				0, uint32(unsafe.Sizeof(matrix)), unsafe.Pointer(&matrix.Data[0]))

			config.Geometry.BindPositionsOnly(commandBuffer)
			vk.CmdDrawIndexed(commandBuffer, config.Geometry.IndexCount, 1, 0, 0, 0)
			renderPassEnd(commandBuffer)
		}

		shadowMap.RecordBarrierToSampling(commandBuffer)

		renderPassBegin(commandBuffer, config.ScenePass, config.RenderTargets.Framebuffers[i],
			extent.Width, extent.Height, sceneClear)
		vk.CmdBindPipeline(commandBuffer, vk.PipelineBindPointGraphics, config.ScenePipeline.Handle)
		vk.CmdBindDescriptorSets(commandBuffer, vk.PipelineBindPointGraphics, config.ScenePipeline.Layout,
			0, 1, []vk.DescriptorSet{config.Descriptors.Sets[i]}, 0, nil)
		config.Geometry.Bind(commandBuffer)
		vk.CmdDrawIndexed(commandBuffer, config.Geometry.IndexCount, 1, 0, 0, 0)
		renderPassEnd(commandBuffer)

		shadowMap.RecordBarrierToAttachment(commandBuffer)

		if err := vk.Error(vk.EndCommandBuffer(commandBuffer)); err != nil {
			return fmt.Errorf("ending command buffer %d: %w", i, err)
		}
	}
	return nil
}

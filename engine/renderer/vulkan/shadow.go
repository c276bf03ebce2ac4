package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"

	"github.com/softglow/lantern/engine/core"
	m "github.com/softglow/lantern/engine/math"
)

// ShadowMap is one swapchain image's omnidirectional shadow target: a
// six-layer cube-compatible depth image, a 2D view per face for
// rendering, framebuffers over those views, and a cube view for
// sampling in the scene pass. Every frame in flight owns its own cube
// so depth writes never race a previous frame's reads.
type ShadowMap struct {
	Image        *Image
	FaceViews    [shadowFaceCount]vk.ImageView
	Framebuffers [shadowFaceCount]vk.Framebuffer
}

// ShadowTargets bundles the per-image shadow maps for one swapchain
// generation.
type ShadowTargets struct {
	Maps []*ShadowMap

	resourceIDs []core.ResourceID
}

func ShadowTargetsCreate(context *Context, shadowPass vk.RenderPass, imageCount uint32) (*ShadowTargets, error) {
	targets := &ShadowTargets{Maps: make([]*ShadowMap, imageCount)}

	for i := uint32(0); i < imageCount; i++ {
		shadowMap, err := shadowMapCreate(context, shadowPass)
		if err != nil {
			targets.Destroy(context)
			return nil, fmt.Errorf("creating shadow map %d: %w", i, err)
		}
		targets.Maps[i] = shadowMap
		targets.resourceIDs = append(targets.resourceIDs, context.TrackSwapchainResource("shadow-map"))
	}
	return targets, nil
}

// CubeViews lists the sampling view of every shadow map in image
// order, ready for descriptor writes.
func (st *ShadowTargets) CubeViews() []vk.ImageView {
	views := make([]vk.ImageView, len(st.Maps))
	for i, shadowMap := range st.Maps {
		views[i] = shadowMap.Image.View
	}
	return views
}

func (st *ShadowTargets) Destroy(context *Context) {
	if st == nil {
		return
	}
	for _, shadowMap := range st.Maps {
		if shadowMap == nil {
			continue
		}
		for _, framebuffer := range shadowMap.Framebuffers {
			FramebufferDestroy(context, framebuffer)
		}
		for _, view := range shadowMap.FaceViews {
			if view != vk.NullImageView {
				vk.DestroyImageView(context.Device.Logical, view, context.Allocator)
			}
		}
		shadowMap.Image.Destroy(context)
	}
	st.Maps = nil
	for _, id := range st.resourceIDs {
		context.ReleaseResource(id)
	}
	st.resourceIDs = nil
}

func shadowMapCreate(context *Context, shadowPass vk.RenderPass) (*ShadowMap, error) {
	image, err := ImageCreate(context, ImageConfig{
		Width:          context.ShadowMapSize,
		Height:         context.ShadowMapSize,
		Format:         shadowDepthFormat,
		Tiling:         vk.ImageTilingOptimal,
		Usage:          vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit | vk.ImageUsageSampledBit),
		MemoryFlags:    vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		ArrayLayers:    shadowFaceCount,
		CubeCompatible: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating cube depth image: %w", err)
	}

	shadowMap := &ShadowMap{Image: image}

	image.View, err = imageViewCreate(context, image.Handle, vk.ImageViewTypeCube, shadowDepthFormat,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit), 0, shadowFaceCount)
	if err != nil {
		shadowMap.destroy(context)
		return nil, fmt.Errorf("creating cube sampling view: %w", err)
	}

	for face := 0; face < shadowFaceCount; face++ {
		view, err := imageViewCreate(context, image.Handle, vk.ImageViewType2d, shadowDepthFormat,
			vk.ImageAspectFlags(vk.ImageAspectDepthBit), uint32(face), 1)
		if err != nil {
			shadowMap.destroy(context)
			return nil, fmt.Errorf("creating face view %d: %w", face, err)
		}
		shadowMap.FaceViews[face] = view

		framebuffer, err := FramebufferCreate(context, shadowPass, context.ShadowMapSize, context.ShadowMapSize,
			[]vk.ImageView{view})
		if err != nil {
			shadowMap.destroy(context)
			return nil, fmt.Errorf("creating face framebuffer %d: %w", face, err)
		}
		shadowMap.Framebuffers[face] = framebuffer
	}

	return shadowMap, nil
}

func (s *ShadowMap) destroy(context *Context) {
	for _, framebuffer := range s.Framebuffers {
		FramebufferDestroy(context, framebuffer)
	}
	for _, view := range s.FaceViews {
		if view != vk.NullImageView {
			vk.DestroyImageView(context.Device.Logical, view, context.Allocator)
		}
	}
	s.Image.Destroy(context)
}

// RecordBarrierToSampling transitions all six cube layers from depth
// attachment to shader-read layout in one barrier, ordering the last
// face's depth writes before the scene pass samples them.
func (s *ShadowMap) RecordBarrierToSampling(commandBuffer vk.CommandBuffer) {
	s.recordLayoutBarrier(commandBuffer,
		vk.ImageLayoutDepthStencilAttachmentOptimal, vk.ImageLayoutShaderReadOnlyOptimal,
		vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit), vk.AccessFlags(vk.AccessShaderReadBit),
		vk.PipelineStageFlags(vk.PipelineStageLateFragmentTestsBit),
		vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit))
}

// RecordBarrierToAttachment mirrors RecordBarrierToSampling, readying
// the cube for the next frame's depth passes.
func (s *ShadowMap) RecordBarrierToAttachment(commandBuffer vk.CommandBuffer) {
	s.recordLayoutBarrier(commandBuffer,
		vk.ImageLayoutShaderReadOnlyOptimal, vk.ImageLayoutDepthStencilAttachmentOptimal,
		vk.AccessFlags(vk.AccessShaderReadBit), vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit),
		vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit))
}

func (s *ShadowMap) recordLayoutBarrier(commandBuffer vk.CommandBuffer,
	oldLayout, newLayout vk.ImageLayout, srcAccess, dstAccess vk.AccessFlags,
	srcStage, dstStage vk.PipelineStageFlags) {

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       srcAccess,
		DstAccessMask:       dstAccess,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               s.Image.Handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectDepthBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     shadowFaceCount,
		},
	}
	vk.CmdPipelineBarrier(commandBuffer, srcStage, dstStage, 0,
		0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

// ShadowFaceMatrices builds the six view-projection matrices of the
// light's cube, in cube layer order +X, -X, +Y, -Y, +Z, -Z. Each face
// uses a square 90-degree projection over the shadow clip range with
// no Y negation; the 180-degree terms in the rotations reorient every
// face from the scene's right-handed axes to the cube map's
// left-handed face convention, so a fragment projected here lands on
// the exact texel a direction lookup of (fragment - light) samples.
func ShadowFaceMatrices(lightPosition m.Vec3, near, far float32) [shadowFaceCount]m.Mat4 {
	const pi = float32(math.Pi)
	const halfPi = float32(math.Pi / 2)

	rotations := [shadowFaceCount]m.Mat4{
		m.NewMat4EulerY(halfPi).Mul(m.NewMat4EulerX(pi)),
		m.NewMat4EulerY(-halfPi).Mul(m.NewMat4EulerX(pi)),
		m.NewMat4EulerX(-halfPi),
		m.NewMat4EulerX(halfPi),
		m.NewMat4EulerX(pi),
		m.NewMat4EulerZ(pi),
	}

	projection := m.NewMat4Perspective(halfPi, 1, near, far)
	toLight := m.NewMat4Translation(lightPosition.Negated())

	var matrices [shadowFaceCount]m.Mat4
	for face, rotation := range rotations {
		matrices[face] = projection.Mul(rotation.Mul(toLight))
	}
	return matrices
}

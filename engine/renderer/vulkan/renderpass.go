package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// Two render passes cover the whole frame. The shadow pass runs six
// times against the cube faces, then the scene pass draws once into
// the swapchain. Layout traffic between them is handled by explicit
// pipeline barriers during recording, so neither pass transitions the
// shadow image to a sampleable layout itself.

// SceneRenderPassCreate builds the presentation pass. With
// multisampling the color attachment is a transient MSAA target
// resolved into the swapchain image; without it the swapchain image is
// rendered directly.
func SceneRenderPassCreate(context *Context) (vk.RenderPass, error) {
	device := context.Device
	multisampled := device.SampleCount != vk.SampleCount1Bit

	colorFinalLayout := vk.ImageLayoutPresentSrc
	colorStoreOp := vk.AttachmentStoreOpStore
	if multisampled {
		// The MSAA target is never presented or sampled, only resolved.
		colorFinalLayout = vk.ImageLayoutColorAttachmentOptimal
		colorStoreOp = vk.AttachmentStoreOpDontCare
	}

	attachments := []vk.AttachmentDescription{
		{
			Format:         context.Swapchain.Format.Format,
			Samples:        device.SampleCount,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        colorStoreOp,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    colorFinalLayout,
		},
		{
			Format:         device.DepthFormat,
			Samples:        device.SampleCount,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}

	colorRef := vk.AttachmentReference{Attachment: 0, Layout: vk.ImageLayoutColorAttachmentOptimal}
	depthRef := vk.AttachmentReference{Attachment: 1, Layout: vk.ImageLayoutDepthStencilAttachmentOptimal}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    1,
		PColorAttachments:       []vk.AttachmentReference{colorRef},
		PDepthStencilAttachment: &depthRef,
	}

	if multisampled {
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         context.Swapchain.Format.Format,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpDontCare,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		})
		resolveRef := vk.AttachmentReference{Attachment: 2, Layout: vk.ImageLayoutColorAttachmentOptimal}
		subpass.PResolveAttachments = []vk.AttachmentReference{resolveRef}
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
	}

	passInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var pass vk.RenderPass
	if err := vk.Error(vk.CreateRenderPass(context.Device.Logical, &passInfo, context.Allocator, &pass)); err != nil {
		return vk.NullRenderPass, fmt.Errorf("creating scene render pass: %w", err)
	}
	return pass, nil
}

// ShadowRenderPassCreate builds the depth-only pass each cube face is
// rendered through. The attachment keeps depth-stencil-attachment
// layout on exit; the sampling transition happens in a barrier after
// all six faces are done.
func ShadowRenderPassCreate(context *Context) (vk.RenderPass, error) {
	depthAttachment := vk.AttachmentDescription{
		Format:         shadowDepthFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	depthRef := vk.AttachmentReference{Attachment: 0, Layout: vk.ImageLayoutDepthStencilAttachmentOptimal}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		PDepthStencilAttachment: &depthRef,
	}

	// Order the previous frame's shadow sampling against this frame's
	// depth writes.
	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		SrcAccessMask: vk.AccessFlags(vk.AccessShaderReadBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit | vk.PipelineStageLateFragmentTestsBit),
		DstAccessMask: vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit),
	}

	passInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.AttachmentDescription{depthAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var pass vk.RenderPass
	if err := vk.Error(vk.CreateRenderPass(context.Device.Logical, &passInfo, context.Allocator, &pass)); err != nil {
		return vk.NullRenderPass, fmt.Errorf("creating shadow render pass: %w", err)
	}
	return pass, nil
}

func RenderPassDestroy(context *Context, pass vk.RenderPass) {
	if pass == vk.NullRenderPass {
		return
	}
	vk.DestroyRenderPass(context.Device.Logical, pass, context.Allocator)
}

func renderPassBegin(commandBuffer vk.CommandBuffer, pass vk.RenderPass, framebuffer vk.Framebuffer,
	width, height uint32, clearValues []vk.ClearValue) {

	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  pass,
		Framebuffer: framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{Width: width, Height: height},
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(commandBuffer, &beginInfo, vk.SubpassContentsInline)
}

func renderPassEnd(commandBuffer vk.CommandBuffer) {
	vk.CmdEndRenderPass(commandBuffer)
}

// sceneClearValues covers every scene attachment; the resolve target
// ignores its entry but the count has to span the attachment list.
func sceneClearValues(multisampled bool) []vk.ClearValue {
	count := 2
	if multisampled {
		count = 3
	}
	clearValues := make([]vk.ClearValue, count)
	clearValues[0].SetColor([]float32{0, 0, 0, 1})
	clearValues[1].SetDepthStencil(1, 0)
	return clearValues
}

func shadowClearValues() []vk.ClearValue {
	clearValues := make([]vk.ClearValue, 1)
	clearValues[0].SetDepthStencil(1, 0)
	return clearValues
}

package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/softglow/lantern/engine/core"
)

func FramebufferCreate(context *Context, pass vk.RenderPass, width, height uint32, attachments []vk.ImageView) (vk.Framebuffer, error) {
	framebufferInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      pass,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           width,
		Height:          height,
		Layers:          1,
	}

	var framebuffer vk.Framebuffer
	if err := vk.Error(vk.CreateFramebuffer(context.Device.Logical, &framebufferInfo, context.Allocator, &framebuffer)); err != nil {
		return vk.NullFramebuffer, fmt.Errorf("creating framebuffer: %w", err)
	}
	return framebuffer, nil
}

func FramebufferDestroy(context *Context, framebuffer vk.Framebuffer) {
	if framebuffer == vk.NullFramebuffer {
		return
	}
	vk.DestroyFramebuffer(context.Device.Logical, framebuffer, context.Allocator)
}

// RenderTargets carries the scene pass attachments, one bundle per
// swapchain image: a depth image, a multisample color target when MSAA
// is on, and the framebuffer tying them to that image's view. All of
// it is sized to the swapchain and torn down with its generation.
type RenderTargets struct {
	Depth        []*Image
	ColorMSAA    []*Image
	Framebuffers []vk.Framebuffer

	resourceIDs []core.ResourceID
}

func RenderTargetsCreate(context *Context, scenePass vk.RenderPass) (*RenderTargets, error) {
	device := context.Device
	swapchain := context.Swapchain
	multisampled := device.SampleCount != vk.SampleCount1Bit
	imageCount := swapchain.ImageCount

	targets := &RenderTargets{
		Depth:        make([]*Image, imageCount),
		Framebuffers: make([]vk.Framebuffer, imageCount),
	}
	if multisampled {
		targets.ColorMSAA = make([]*Image, imageCount)
	}

	for i := uint32(0); i < imageCount; i++ {
		depth, err := ImageCreate(context, ImageConfig{
			Width:       swapchain.Extent.Width,
			Height:      swapchain.Extent.Height,
			Format:      device.DepthFormat,
			Tiling:      vk.ImageTilingOptimal,
			Usage:       vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
			MemoryFlags: vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
			Samples:     device.SampleCount,
		})
		if err != nil {
			targets.Destroy(context)
			return nil, fmt.Errorf("creating depth target %d: %w", i, err)
		}
		targets.Depth[i] = depth
		targets.resourceIDs = append(targets.resourceIDs, context.TrackSwapchainResource("depth-target"))

		depth.View, err = imageViewCreate(context, depth.Handle, vk.ImageViewType2d, depth.Format,
			vk.ImageAspectFlags(vk.ImageAspectDepthBit), 0, 1)
		if err != nil {
			targets.Destroy(context)
			return nil, fmt.Errorf("creating depth view %d: %w", i, err)
		}

		if multisampled {
			colorMSAA, err := ImageCreate(context, ImageConfig{
				Width:       swapchain.Extent.Width,
				Height:      swapchain.Extent.Height,
				Format:      swapchain.Format.Format,
				Tiling:      vk.ImageTilingOptimal,
				Usage:       vk.ImageUsageFlags(vk.ImageUsageTransientAttachmentBit | vk.ImageUsageColorAttachmentBit),
				MemoryFlags: vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
				Samples:     device.SampleCount,
			})
			if err != nil {
				targets.Destroy(context)
				return nil, fmt.Errorf("creating multisample color target %d: %w", i, err)
			}
			targets.ColorMSAA[i] = colorMSAA
			targets.resourceIDs = append(targets.resourceIDs, context.TrackSwapchainResource("msaa-target"))

			colorMSAA.View, err = imageViewCreate(context, colorMSAA.Handle, vk.ImageViewType2d, colorMSAA.Format,
				vk.ImageAspectFlags(vk.ImageAspectColorBit), 0, 1)
			if err != nil {
				targets.Destroy(context)
				return nil, fmt.Errorf("creating multisample color view %d: %w", i, err)
			}
		}

		// Attachment order mirrors the scene pass: color, depth, then
		// the resolve target when multisampling.
		var attachments []vk.ImageView
		if multisampled {
			attachments = []vk.ImageView{targets.ColorMSAA[i].View, depth.View, swapchain.ImageViews[i]}
		} else {
			attachments = []vk.ImageView{swapchain.ImageViews[i], depth.View}
		}

		framebuffer, err := FramebufferCreate(context, scenePass, swapchain.Extent.Width, swapchain.Extent.Height, attachments)
		if err != nil {
			targets.Destroy(context)
			return nil, fmt.Errorf("creating framebuffer %d: %w", i, err)
		}
		targets.Framebuffers[i] = framebuffer
		targets.resourceIDs = append(targets.resourceIDs, context.TrackSwapchainResource("framebuffer"))
	}

	return targets, nil
}

func (rt *RenderTargets) Destroy(context *Context) {
	if rt == nil {
		return
	}
	for _, framebuffer := range rt.Framebuffers {
		FramebufferDestroy(context, framebuffer)
	}
	rt.Framebuffers = nil
	for _, image := range rt.ColorMSAA {
		image.Destroy(context)
	}
	rt.ColorMSAA = nil
	for _, image := range rt.Depth {
		image.Destroy(context)
	}
	rt.Depth = nil
	for _, id := range rt.resourceIDs {
		context.ReleaseResource(id)
	}
	rt.resourceIDs = nil
}

package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"

	"github.com/softglow/lantern/engine/core"
	m "github.com/softglow/lantern/engine/math"
)

// Swapchain owns the presentable images negotiated with the surface
// plus one color view per image. Depth and multisample targets live
// with the render targets, not here, because they are sized alongside
// the swapchain but owned per render pass.
type Swapchain struct {
	Handle      vk.Swapchain
	Format      vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extent      vk.Extent2D
	ImageCount  uint32
	Images      []vk.Image
	ImageViews  []vk.ImageView

	resourceIDs []core.ResourceID
}

// SwapchainCreate negotiates format, present mode, extent and image
// count against fresh surface capabilities and builds the swapchain.
// It opens a new resource generation; everything sized to this
// swapchain registers under it.
func SwapchainCreate(context *Context, width, height uint32) error {
	support, err := querySwapchainSupport(context.Device.Physical, context.Surface)
	if err != nil {
		return err
	}
	context.Device.SwapchainSupport = support

	context.SwapchainGeneration++

	swapchain := &Swapchain{
		Format:      chooseSurfaceFormat(support.Formats),
		PresentMode: choosePresentMode(support.PresentModes),
	}
	extentWidth, extentHeight := chooseSwapExtent(support.Capabilities, width, height)
	swapchain.Extent = vk.Extent2D{Width: extentWidth, Height: extentHeight}
	imageCount := chooseImageCount(support.Capabilities)

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.Format.Format,
		ImageColorSpace:  swapchain.Format.ColorSpace,
		ImageExtent:      swapchain.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferSrcBit),
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      swapchain.PresentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	// A split graphics/present topology forces concurrent sharing so
	// images need no ownership transfers between the two families.
	device := context.Device
	if device.GraphicsQueueIndex != device.PresentQueueIndex {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{
			uint32(device.GraphicsQueueIndex),
			uint32(device.PresentQueueIndex),
		}
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var handle vk.Swapchain
	if err := vk.Error(vk.CreateSwapchain(device.Logical, &createInfo, context.Allocator, &handle)); err != nil {
		return fmt.Errorf("creating swapchain: %w", err)
	}
	swapchain.Handle = handle
	swapchain.resourceIDs = append(swapchain.resourceIDs, context.TrackSwapchainResource("swapchain"))

	var actualCount uint32
	if err := vk.Error(vk.GetSwapchainImages(device.Logical, handle, &actualCount, nil)); err != nil {
		return fmt.Errorf("counting swapchain images: %w", err)
	}
	swapchain.Images = make([]vk.Image, actualCount)
	if err := vk.Error(vk.GetSwapchainImages(device.Logical, handle, &actualCount, swapchain.Images)); err != nil {
		return fmt.Errorf("fetching swapchain images: %w", err)
	}
	swapchain.ImageCount = actualCount

	swapchain.ImageViews = make([]vk.ImageView, actualCount)
	for i, image := range swapchain.Images {
		view, err := imageViewCreate(context, image, vk.ImageViewType2d, swapchain.Format.Format,
			vk.ImageAspectFlags(vk.ImageAspectColorBit), 0, 1)
		if err != nil {
			return fmt.Errorf("creating view for swapchain image %d: %w", i, err)
		}
		swapchain.ImageViews[i] = view
		swapchain.resourceIDs = append(swapchain.resourceIDs, context.TrackSwapchainResource("swapchain-view"))
	}

	context.FramebufferWidth = extentWidth
	context.FramebufferHeight = extentHeight
	context.Swapchain = swapchain

	core.LogInfo("swapchain created: %dx%d, %d images, format %d, present mode %d",
		extentWidth, extentHeight, actualCount, swapchain.Format.Format, swapchain.PresentMode)
	return nil
}

// SwapchainDestroy drops the views and the swapchain handle. Callers
// must have drained the device first.
func SwapchainDestroy(context *Context) {
	swapchain := context.Swapchain
	if swapchain == nil {
		return
	}
	for _, view := range swapchain.ImageViews {
		vk.DestroyImageView(context.Device.Logical, view, context.Allocator)
	}
	if swapchain.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(context.Device.Logical, swapchain.Handle, context.Allocator)
	}
	for _, id := range swapchain.resourceIDs {
		context.ReleaseResource(id)
	}
	context.Swapchain = nil
}

// AcquireNextImageIndex hands back the index of the next presentable
// image. An out-of-date surface surfaces as core.ErrSwapchainOutOfDate
// so the frame loop can rebuild and skip the frame.
func (s *Swapchain) AcquireNextImageIndex(context *Context, timeoutNS uint64, imageAvailable vk.Semaphore, fence vk.Fence) (uint32, error) {
	var imageIndex uint32
	result := vk.AcquireNextImage(context.Device.Logical, s.Handle, timeoutNS, imageAvailable, fence, &imageIndex)
	switch {
	case result == vk.ErrorOutOfDate:
		return 0, core.ErrSwapchainOutOfDate
	case result != vk.Success && result != vk.Suboptimal:
		return 0, fmt.Errorf("acquiring swapchain image: %w", vk.Error(result))
	}
	return imageIndex, nil
}

// Present queues the image for presentation. Both out-of-date and
// suboptimal results map to core.ErrSwapchainOutOfDate because either
// way the swapchain no longer matches the surface.
func (s *Swapchain) Present(context *Context, renderComplete vk.Semaphore, imageIndex uint32) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderComplete},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.Handle},
		PImageIndices:      []uint32{imageIndex},
	}

	result := vk.QueuePresent(context.Device.PresentQueue, &presentInfo)
	switch {
	case result == vk.ErrorOutOfDate || result == vk.Suboptimal:
		return core.ErrSwapchainOutOfDate
	case result != vk.Success:
		return fmt.Errorf("presenting swapchain image: %w", vk.Error(result))
	}
	return nil
}

// chooseSurfaceFormat prefers sRGB BGRA with the sRGB nonlinear color
// space and otherwise settles for whatever the surface lists first.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range formats {
		if format.Format == vk.FormatB8g8r8a8Srgb && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	return formats[0]
}

// choosePresentMode prefers mailbox for its low latency without
// tearing. FIFO is the guaranteed fallback.
func choosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	return vk.PresentModeFifo
}

// chooseSwapExtent honors the surface's fixed extent when it reports
// one and otherwise clamps the framebuffer size into the allowed
// range.
func chooseSwapExtent(capabilities vk.SurfaceCapabilities, framebufferWidth, framebufferHeight uint32) (uint32, uint32) {
	if capabilities.CurrentExtent.Width != math.MaxUint32 {
		return capabilities.CurrentExtent.Width, capabilities.CurrentExtent.Height
	}
	width := m.Clamp(framebufferWidth, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width)
	height := m.Clamp(framebufferHeight, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height)
	return width, height
}

// chooseImageCount asks for one image above the minimum so the driver
// is less likely to stall acquires, honoring the maximum when the
// surface reports one (zero means unbounded).
func chooseImageCount(capabilities vk.SurfaceCapabilities) uint32 {
	count := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && count > capabilities.MaxImageCount {
		count = capabilities.MaxImageCount
	}
	return count
}

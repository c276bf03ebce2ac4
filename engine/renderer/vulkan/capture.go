package vulkan

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	vk "github.com/goki/vulkan"
	"github.com/google/uuid"
	"golang.org/x/image/bmp"

	"github.com/softglow/lantern/engine/core"
)

// CaptureScreenshot copies the most recently presented swapchain image
// into host memory and writes it as a BMP under dir, returning the
// path. The copy rides a single-use command buffer and waits for the
// queue to drain, so this stalls the frame loop and is meant for
// debugging, not per-frame capture.
func (r *Renderer) CaptureScreenshot(dir string) (string, error) {
	context := r.context

	if r.lastImageGeneration != context.SwapchainGeneration {
		return "", fmt.Errorf("no presented image in swapchain generation %d yet", context.SwapchainGeneration)
	}
	if err := DeviceWaitIdle(context); err != nil {
		return "", err
	}

	swapchain := context.Swapchain
	width := swapchain.Extent.Width
	height := swapchain.Extent.Height
	source := swapchain.Images[r.lastImageIndex]

	size := vk.DeviceSize(width) * vk.DeviceSize(height) * 4
	staging, err := BufferCreate(context, size,
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return "", fmt.Errorf("creating capture staging buffer: %w", err)
	}
	defer staging.Destroy(context)

	commandBuffer, err := AllocateAndBeginSingleUse(context, r.commandPool)
	if err != nil {
		return "", err
	}

	recordCaptureBarrier(commandBuffer, source,
		vk.ImageLayoutPresentSrc, vk.ImageLayoutTransferSrcOptimal,
		0, vk.AccessFlags(vk.AccessTransferReadBit))

	region := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{Width: width, Height: height, Depth: 1},
	}
	vk.CmdCopyImageToBuffer(commandBuffer, source, vk.ImageLayoutTransferSrcOptimal,
		staging.Handle, 1, []vk.BufferImageCopy{region})

	// Hand the image back in the layout the frame loop expects between
	// frames.
	recordCaptureBarrier(commandBuffer, source,
		vk.ImageLayoutTransferSrcOptimal, vk.ImageLayoutPresentSrc,
		vk.AccessFlags(vk.AccessTransferReadBit), 0)

	if err := EndSingleUse(context, r.commandPool, commandBuffer, context.Device.GraphicsQueue); err != nil {
		return "", err
	}

	if err := staging.Map(context); err != nil {
		return "", err
	}
	pixels := structBytes(staging.Mapped, uintptr(size))

	img, err := pixelsToImage(pixels, int(width), int(height), swapchain.Format.Format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating screenshot directory: %w", err)
	}
	path := filepath.Join(dir, uuid.NewString()+".bmp")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating screenshot file: %w", err)
	}
	defer file.Close()

	if err := bmp.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding screenshot: %w", err)
	}

	core.LogInfo("captured %dx%d screenshot to %s", width, height, path)
	return path, nil
}

func recordCaptureBarrier(commandBuffer vk.CommandBuffer, target vk.Image,
	oldLayout, newLayout vk.ImageLayout, srcAccess, dstAccess vk.AccessFlags) {

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       srcAccess,
		DstAccessMask:       dstAccess,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               target,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	vk.CmdPipelineBarrier(commandBuffer,
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

// pixelsToImage converts tightly packed swapchain texels into an image
// the BMP encoder accepts, swizzling BGRA formats on the way.
func pixelsToImage(pixels []byte, width, height int, format vk.Format) (image.Image, error) {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	switch format {
	case vk.FormatB8g8r8a8Srgb, vk.FormatB8g8r8a8Unorm:
		for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
			img.Pix[i+0] = pixels[i+2]
			img.Pix[i+1] = pixels[i+1]
			img.Pix[i+2] = pixels[i+0]
			img.Pix[i+3] = 0xff
		}
	case vk.FormatR8g8b8a8Srgb, vk.FormatR8g8b8a8Unorm:
		for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
			img.Pix[i+0] = pixels[i+0]
			img.Pix[i+1] = pixels[i+1]
			img.Pix[i+2] = pixels[i+2]
			img.Pix[i+3] = 0xff
		}
	default:
		return nil, fmt.Errorf("screenshot capture does not support swapchain format %d", format)
	}
	return img, nil
}

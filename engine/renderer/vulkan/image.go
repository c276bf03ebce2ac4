package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// Image owns a device image together with its memory. View is an
// optional primary view destroyed with the image when set; callers
// holding additional views release those themselves.
type Image struct {
	Handle vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Width  uint32
	Height uint32
	Format vk.Format
}

// ImageConfig describes an image allocation. Zero values mean one
// array layer and single sampling.
type ImageConfig struct {
	Width          uint32
	Height         uint32
	Format         vk.Format
	Tiling         vk.ImageTiling
	Usage          vk.ImageUsageFlags
	MemoryFlags    vk.MemoryPropertyFlags
	Samples        vk.SampleCountFlagBits
	ArrayLayers    uint32
	CubeCompatible bool
}

// ImageCreate allocates a 2D image and binds fresh device memory to
// it. Mipmaps are never generated; every attachment and shadow face
// renders at its native resolution.
func ImageCreate(context *Context, config ImageConfig) (*Image, error) {
	if config.Samples == 0 {
		config.Samples = vk.SampleCount1Bit
	}
	if config.ArrayLayers == 0 {
		config.ArrayLayers = 1
	}

	imageInfo := vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        config.Format,
		Extent:        vk.Extent3D{Width: config.Width, Height: config.Height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   config.ArrayLayers,
		Samples:       config.Samples,
		Tiling:        config.Tiling,
		Usage:         config.Usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	if config.CubeCompatible {
		imageInfo.Flags = vk.ImageCreateFlags(vk.ImageCreateCubeCompatibleBit)
	}

	var handle vk.Image
	if err := vk.Error(vk.CreateImage(context.Device.Logical, &imageInfo, context.Allocator, &handle)); err != nil {
		return nil, fmt.Errorf("creating image: %w", err)
	}

	var requirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(context.Device.Logical, handle, &requirements)
	requirements.Deref()

	memoryIndex, err := context.FindMemoryIndex(requirements.MemoryTypeBits, config.MemoryFlags)
	if err != nil {
		vk.DestroyImage(context.Device.Logical, handle, context.Allocator)
		return nil, err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryIndex,
	}
	var memory vk.DeviceMemory
	if err := vk.Error(vk.AllocateMemory(context.Device.Logical, &allocInfo, context.Allocator, &memory)); err != nil {
		vk.DestroyImage(context.Device.Logical, handle, context.Allocator)
		return nil, fmt.Errorf("allocating image memory: %w", err)
	}
	if err := vk.Error(vk.BindImageMemory(context.Device.Logical, handle, memory, 0)); err != nil {
		vk.FreeMemory(context.Device.Logical, memory, context.Allocator)
		vk.DestroyImage(context.Device.Logical, handle, context.Allocator)
		return nil, fmt.Errorf("binding image memory: %w", err)
	}

	return &Image{
		Handle: handle,
		Memory: memory,
		Width:  config.Width,
		Height: config.Height,
		Format: config.Format,
	}, nil
}

func (image *Image) Destroy(context *Context) {
	if image == nil {
		return
	}
	if image.View != vk.NullImageView {
		vk.DestroyImageView(context.Device.Logical, image.View, context.Allocator)
		image.View = vk.NullImageView
	}
	if image.Handle != vk.NullImage {
		vk.DestroyImage(context.Device.Logical, image.Handle, context.Allocator)
		image.Handle = vk.NullImage
	}
	if image.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.Device.Logical, image.Memory, context.Allocator)
		image.Memory = vk.NullDeviceMemory
	}
}

// imageViewCreate builds a single-mip view over a layer range of an
// image. The swapchain, the attachment targets and the shadow cube
// faces all come through here.
func imageViewCreate(context *Context, image vk.Image, viewType vk.ImageViewType, format vk.Format,
	aspect vk.ImageAspectFlags, baseLayer, layerCount uint32) (vk.ImageView, error) {

	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: viewType,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: baseLayer,
			LayerCount:     layerCount,
		},
	}

	var view vk.ImageView
	if err := vk.Error(vk.CreateImageView(context.Device.Logical, &viewInfo, context.Allocator, &view)); err != nil {
		return vk.NullImageView, fmt.Errorf("creating image view: %w", err)
	}
	return view, nil
}

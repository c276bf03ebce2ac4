package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/softglow/lantern/engine/core"
)

// Device bundles the physical device, the logical device carved out of
// it, and the queue topology negotiated against the presentation
// surface.
type Device struct {
	Physical vk.PhysicalDevice
	Logical  vk.Device

	SwapchainSupport SwapchainSupportInfo

	GraphicsQueueIndex int32
	PresentQueueIndex  int32
	GraphicsQueue      vk.Queue
	PresentQueue       vk.Queue

	Properties vk.PhysicalDeviceProperties
	Features   vk.PhysicalDeviceFeatures

	DepthFormat     vk.Format
	DepthHasStencil bool
	SampleCount     vk.SampleCountFlagBits
}

// SwapchainSupportInfo carries the surface capabilities queried from a
// physical device. Capabilities go stale on resize, so the swapchain
// re-queries before every (re)creation.
type SwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// queueFamilySpec flattens one queue family's relevant capabilities so
// family selection can run without a live device.
type queueFamilySpec struct {
	SupportsGraphics bool
	SupportsPresent  bool
}

var requiredDeviceExtensions = []string{vk.KhrSwapchainExtensionName}

// DeviceCreate selects the first suitable physical device, builds a
// logical device exposing one graphics and one present queue, and
// settles the depth format and sample count used by every attachment.
func DeviceCreate(context *Context, requestedSamples int) error {
	context.Device = &Device{GraphicsQueueIndex: -1, PresentQueueIndex: -1}

	if err := selectPhysicalDevice(context); err != nil {
		return err
	}
	if err := createLogicalDevice(context); err != nil {
		return err
	}

	device := context.Device
	vk.GetDeviceQueue(device.Logical, uint32(device.GraphicsQueueIndex), 0, &device.GraphicsQueue)
	vk.GetDeviceQueue(device.Logical, uint32(device.PresentQueueIndex), 0, &device.PresentQueue)

	if err := detectDepthFormat(device); err != nil {
		return err
	}

	device.Properties.Limits.Deref()
	supported := device.Properties.Limits.FramebufferColorSampleCounts &
		device.Properties.Limits.FramebufferDepthSampleCounts
	device.SampleCount = chooseSampleCount(supported, requestedSamples)
	core.LogInfo("multisampling at %dx (requested %dx)", int(device.SampleCount), requestedSamples)

	return nil
}

// DeviceDestroy tears down the logical device. The physical device
// handle belongs to the instance and needs no destruction.
func DeviceDestroy(context *Context) {
	device := context.Device
	if device == nil {
		return
	}
	if device.Logical != nil {
		vk.DestroyDevice(device.Logical, context.Allocator)
		device.Logical = nil
	}
	device.GraphicsQueue = nil
	device.PresentQueue = nil
	device.GraphicsQueueIndex = -1
	device.PresentQueueIndex = -1
	context.Device = nil
}

// DeviceWaitIdle blocks until the GPU drains all submitted work.
func DeviceWaitIdle(context *Context) error {
	if err := vk.Error(vk.DeviceWaitIdle(context.Device.Logical)); err != nil {
		return fmt.Errorf("waiting for device idle: %w", err)
	}
	return nil
}

func selectPhysicalDevice(context *Context) error {
	var deviceCount uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(context.Instance, &deviceCount, nil)); err != nil {
		return fmt.Errorf("counting physical devices: %w", err)
	}
	if deviceCount == 0 {
		return fmt.Errorf("no Vulkan-capable physical devices present")
	}

	physicalDevices := make([]vk.PhysicalDevice, deviceCount)
	if err := vk.Error(vk.EnumeratePhysicalDevices(context.Instance, &deviceCount, physicalDevices)); err != nil {
		return fmt.Errorf("enumerating physical devices: %w", err)
	}

	for _, physical := range physicalDevices {
		suitable, err := evaluatePhysicalDevice(context, physical)
		if err != nil {
			return err
		}
		if suitable {
			break
		}
	}
	if context.Device.Physical == nil {
		return fmt.Errorf("no physical device meets the renderer requirements")
	}

	device := context.Device
	device.Properties.Deref()
	apiVersion := vk.Version(device.Properties.ApiVersion)
	core.LogInfo("selected GPU '%s' (%s, Vulkan %d.%d.%d), graphics queue %d, present queue %d",
		byteString(device.Properties.DeviceName[:]),
		deviceTypeString(device.Properties.DeviceType),
		apiVersion.Major(), apiVersion.Minor(), apiVersion.Patch(),
		device.GraphicsQueueIndex, device.PresentQueueIndex)
	return nil
}

func (c *Context) queueFamilies(physical vk.PhysicalDevice) ([]queueFamilySpec, error) {
	var familyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(physical, &familyCount, nil)
	families := make([]vk.QueueFamilyProperties, familyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(physical, &familyCount, families)

	specs := make([]queueFamilySpec, familyCount)
	for i := range families {
		families[i].Deref()
		specs[i].SupportsGraphics = families[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0

		var presentSupport vk.Bool32
		if err := vk.Error(vk.GetPhysicalDeviceSurfaceSupport(physical, uint32(i), c.Surface, &presentSupport)); err != nil {
			return nil, fmt.Errorf("querying present support for queue family %d: %w", i, err)
		}
		specs[i].SupportsPresent = presentSupport == vk.True
	}
	return specs, nil
}

// evaluatePhysicalDevice fills context.Device when the candidate meets
// every requirement and reports whether it did.
func evaluatePhysicalDevice(context *Context, physical vk.PhysicalDevice) (bool, error) {
	specs, err := context.queueFamilies(physical)
	if err != nil {
		return false, err
	}
	graphicsIndex, presentIndex := selectQueueFamilies(specs)
	if graphicsIndex < 0 || presentIndex < 0 {
		return false, nil
	}

	supported, err := deviceSupportsExtensions(physical, requiredDeviceExtensions)
	if err != nil {
		return false, err
	}
	if !supported {
		return false, nil
	}

	support, err := querySwapchainSupport(physical, context.Surface)
	if err != nil {
		return false, err
	}
	if len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		return false, nil
	}

	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(physical, &features)
	features.Deref()
	if features.SamplerAnisotropy != vk.True {
		return false, nil
	}

	device := context.Device
	device.Physical = physical
	device.GraphicsQueueIndex = graphicsIndex
	device.PresentQueueIndex = presentIndex
	device.SwapchainSupport = support
	device.Features = features
	vk.GetPhysicalDeviceProperties(physical, &device.Properties)
	return true, nil
}

// selectQueueFamilies walks the family table the way the surface
// negotiation expects: assignments keep overwriting until both roles
// are filled, so a family serving both tends to win and the swapchain
// can stay in exclusive sharing mode.
func selectQueueFamilies(families []queueFamilySpec) (graphics, present int32) {
	graphics, present = -1, -1
	for i, family := range families {
		if family.SupportsGraphics {
			graphics = int32(i)
		}
		if family.SupportsPresent {
			present = int32(i)
		}
		if graphics >= 0 && present >= 0 {
			return graphics, present
		}
	}
	return graphics, present
}

func deviceSupportsExtensions(physical vk.PhysicalDevice, required []string) (bool, error) {
	var extensionCount uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(physical, "", &extensionCount, nil)); err != nil {
		return false, fmt.Errorf("counting device extensions: %w", err)
	}
	extensions := make([]vk.ExtensionProperties, extensionCount)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(physical, "", &extensionCount, extensions)); err != nil {
		return false, fmt.Errorf("enumerating device extensions: %w", err)
	}

	available := make([]string, extensionCount)
	for i := range extensions {
		extensions[i].Deref()
		available[i] = byteString(extensions[i].ExtensionName[:])
	}
	return containsAll(available, required), nil
}

func containsAll(available, required []string) bool {
	for _, name := range required {
		found := false
		for _, have := range available {
			if have == name {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func querySwapchainSupport(physical vk.PhysicalDevice, surface vk.Surface) (SwapchainSupportInfo, error) {
	var support SwapchainSupportInfo

	var capabilities vk.SurfaceCapabilities
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(physical, surface, &capabilities)); err != nil {
		return support, fmt.Errorf("querying surface capabilities: %w", err)
	}
	capabilities.Deref()
	capabilities.CurrentExtent.Deref()
	capabilities.MinImageExtent.Deref()
	capabilities.MaxImageExtent.Deref()
	support.Capabilities = capabilities

	var formatCount uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(physical, surface, &formatCount, nil)); err != nil {
		return support, fmt.Errorf("counting surface formats: %w", err)
	}
	if formatCount > 0 {
		support.Formats = make([]vk.SurfaceFormat, formatCount)
		if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(physical, surface, &formatCount, support.Formats)); err != nil {
			return support, fmt.Errorf("enumerating surface formats: %w", err)
		}
		for i := range support.Formats {
			support.Formats[i].Deref()
		}
	}

	var modeCount uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(physical, surface, &modeCount, nil)); err != nil {
		return support, fmt.Errorf("counting present modes: %w", err)
	}
	if modeCount > 0 {
		support.PresentModes = make([]vk.PresentMode, modeCount)
		if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(physical, surface, &modeCount, support.PresentModes)); err != nil {
			return support, fmt.Errorf("enumerating present modes: %w", err)
		}
	}

	return support, nil
}

func createLogicalDevice(context *Context) error {
	device := context.Device

	familyIndices := []uint32{uint32(device.GraphicsQueueIndex)}
	if device.PresentQueueIndex != device.GraphicsQueueIndex {
		familyIndices = append(familyIndices, uint32(device.PresentQueueIndex))
	}

	queueInfos := make([]vk.DeviceQueueCreateInfo, 0, len(familyIndices))
	for _, family := range familyIndices {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1},
		})
	}

	features := vk.PhysicalDeviceFeatures{SamplerAnisotropy: vk.True}
	deviceInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{features},
		EnabledExtensionCount:   uint32(len(requiredDeviceExtensions)),
		PpEnabledExtensionNames: safeStrings(requiredDeviceExtensions),
	}

	var logical vk.Device
	if err := vk.Error(vk.CreateDevice(device.Physical, &deviceInfo, context.Allocator, &logical)); err != nil {
		return fmt.Errorf("creating logical device: %w", err)
	}
	device.Logical = logical
	return nil
}

// depthFormatCandidate flattens one format's optimal-tiling support so
// the fallback chain stays testable.
type depthFormatCandidate struct {
	Format     vk.Format
	HasStencil bool
	Supported  bool
}

// chooseDepthFormat returns the first supported candidate.
func chooseDepthFormat(candidates []depthFormatCandidate) (vk.Format, bool, error) {
	for _, candidate := range candidates {
		if candidate.Supported {
			return candidate.Format, candidate.HasStencil, nil
		}
	}
	return vk.FormatUndefined, false, fmt.Errorf("no depth format supports optimal-tiling depth attachments")
}

func detectDepthFormat(device *Device) error {
	candidates := []depthFormatCandidate{
		{Format: vk.FormatD32Sfloat},
		{Format: vk.FormatD32SfloatS8Uint, HasStencil: true},
		{Format: vk.FormatD24UnormS8Uint, HasStencil: true},
	}
	for i := range candidates {
		var properties vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(device.Physical, candidates[i].Format, &properties)
		properties.Deref()
		flags := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
		candidates[i].Supported = properties.OptimalTilingFeatures&flags == flags
	}

	format, hasStencil, err := chooseDepthFormat(candidates)
	if err != nil {
		return err
	}
	device.DepthFormat = format
	device.DepthHasStencil = hasStencil
	return nil
}

// chooseSampleCount picks the highest supported MSAA level not above
// the requested one. Anything but 4 or 2 degrades to single sampling.
func chooseSampleCount(supported vk.SampleCountFlags, requested int) vk.SampleCountFlagBits {
	if requested >= 4 && supported&vk.SampleCountFlags(vk.SampleCount4Bit) != 0 {
		return vk.SampleCount4Bit
	}
	if requested >= 2 && supported&vk.SampleCountFlags(vk.SampleCount2Bit) != 0 {
		return vk.SampleCount2Bit
	}
	return vk.SampleCount1Bit
}

func deviceTypeString(deviceType vk.PhysicalDeviceType) string {
	switch deviceType {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	default:
		return "unknown"
	}
}

package vulkan

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/softglow/lantern/engine/core"
	m "github.com/softglow/lantern/engine/math"
	"github.com/softglow/lantern/engine/platform"
	"github.com/softglow/lantern/engine/renderer/metadata"
	"github.com/softglow/lantern/engine/resources"
)

const validationLayerName = "VK_LAYER_KHRONOS_validation"

// shaderModules groups the compiled modules so a reload can swap all
// four atomically.
type shaderModules struct {
	sceneVertex    vk.ShaderModule
	sceneFragment  vk.ShaderModule
	shadowVertex   vk.ShaderModule
	shadowFragment vk.ShaderModule
}

func createShaderModules(context *Context, shaders metadata.ShaderSet) (shaderModules, error) {
	var modules shaderModules
	entries := []struct {
		blob *resources.ShaderBlob
		dst  *vk.ShaderModule
	}{
		{shaders.SceneVertex, &modules.sceneVertex},
		{shaders.SceneFragment, &modules.sceneFragment},
		{shaders.ShadowVertex, &modules.shadowVertex},
		{shaders.ShadowFragment, &modules.shadowFragment},
	}
	for _, entry := range entries {
		if entry.blob == nil {
			modules.destroy(context)
			return shaderModules{}, errors.New("shader set is incomplete")
		}
		module, err := ShaderModuleCreate(context, entry.blob)
		if err != nil {
			modules.destroy(context)
			return shaderModules{}, err
		}
		*entry.dst = module
	}
	return modules, nil
}

func (s *shaderModules) destroy(context *Context) {
	ShaderModuleDestroy(context, s.sceneVertex)
	ShaderModuleDestroy(context, s.sceneFragment)
	ShaderModuleDestroy(context, s.shadowVertex)
	ShaderModuleDestroy(context, s.shadowFragment)
	*s = shaderModules{}
}

// Renderer drives the whole Vulkan backend: one static scene, six
// shadow passes and a lit pass per frame, three frames in flight.
//
// Objects split into two lifetimes. Instance, device, command pool,
// descriptor set layout, pipeline layouts, sampler, shader modules,
// geometry and sync objects live until Shutdown. Render passes,
// pipelines, attachment bundles, shadow cubes, descriptor sets,
// uniform buffers and command buffers belong to the current swapchain
// generation and are rebuilt wholesale whenever the surface changes.
type Renderer struct {
	platform *platform.Platform
	config   metadata.RendererConfig
	context  *Context

	FrameNumber uint64

	// validation is the granted state; config holds the request.
	validation bool

	commandPool      vk.CommandPool
	descriptorLayout vk.DescriptorSetLayout
	shadowSampler    vk.Sampler
	sceneLayout      vk.PipelineLayout
	shadowLayout     vk.PipelineLayout
	modules          shaderModules
	shaders          metadata.ShaderSet

	imageAvailable [maxFramesInFlight]vk.Semaphore
	renderComplete [maxFramesInFlight]vk.Semaphore
	frameFences    [maxFramesInFlight]vk.Fence
	imagesInFlight []vk.Fence
	currentFrame   int

	scenePass      vk.RenderPass
	shadowPass     vk.RenderPass
	scenePipeline  *Pipeline
	shadowPipeline *Pipeline
	renderTargets  *RenderTargets
	shadowTargets  *ShadowTargets
	descriptors    *SceneDescriptors
	commandBuffers []vk.CommandBuffer

	scene            metadata.SceneDescription
	geometry         *GeometryBuffers
	faceMatrices     [shadowFaceCount]m.Mat4
	fragmentUniforms FragmentUniforms
	projection       m.Mat4

	// Screenshot capture targets the image presented last, which is
	// only meaningful within the generation that presented it.
	lastImageIndex      uint32
	lastImageGeneration uint64
}

func New(p *platform.Platform, config metadata.RendererConfig) *Renderer {
	shadowMapSize := uint32(defaultShadowMapSize)
	if config.ShadowMapSize > 0 {
		shadowMapSize = uint32(config.ShadowMapSize)
	}
	return &Renderer{
		platform:   p,
		config:     config,
		validation: config.EnableValidation,
		context: &Context{
			Allocator:     nil,
			ShadowMapSize: shadowMapSize,
			Registry:      core.NewResourceRegistry(),
		},
	}
}

// Initialize brings the backend from nothing to renderable: instance,
// device, swapchain, the persistent objects, the uploaded scene and
// the first generation of swapchain resources. The platform window
// must exist before this is called.
func (r *Renderer) Initialize(scene metadata.SceneDescription, shaders metadata.ShaderSet) error {
	if scene.Mesh == nil {
		return errors.New("scene description carries no mesh")
	}
	r.scene = scene

	if err := r.createInstance(); err != nil {
		return err
	}
	if r.validation {
		if err := r.createDebugCallback(); err != nil {
			return err
		}
	}

	surface, err := r.platform.CreateSurface(r.context.Instance)
	if err != nil {
		return err
	}
	r.context.Surface = surface

	if err := DeviceCreate(r.context, r.config.SampleCount); err != nil {
		return fmt.Errorf("creating device: %w", err)
	}

	width, height := r.platform.FramebufferSize()
	if err := SwapchainCreate(r.context, width, height); err != nil {
		return fmt.Errorf("creating swapchain: %w", err)
	}

	pool, err := CommandPoolCreate(r.context)
	if err != nil {
		return err
	}
	r.commandPool = pool

	layout, err := DescriptorSetLayoutCreate(r.context)
	if err != nil {
		return err
	}
	r.descriptorLayout = layout

	sampler, err := ShadowSamplerCreate(r.context)
	if err != nil {
		return err
	}
	r.shadowSampler = sampler

	sceneLayout, err := PipelineLayoutCreate(r.context, []vk.DescriptorSetLayout{r.descriptorLayout}, nil)
	if err != nil {
		return err
	}
	r.sceneLayout = sceneLayout

	// The shadow pipeline binds no descriptors at all; the face matrix
	// rides in as a push constant.
	shadowLayout, err := PipelineLayoutCreate(r.context, nil, shadowPushConstantRange())
	if err != nil {
		return err
	}
	r.shadowLayout = shadowLayout

	modules, err := createShaderModules(r.context, shaders)
	if err != nil {
		return err
	}
	r.modules = modules
	r.shaders = shaders

	materials, err := buildMaterialTable(scene.Mesh.Materials)
	if err != nil {
		return err
	}
	r.fragmentUniforms = FragmentUniforms{
		LightPosition: scene.LightPosition.ToVec4(1),
		ShadowClip:    m.NewVec2(scene.ShadowNear, scene.ShadowFar),
		Materials:     materials,
	}
	r.faceMatrices = ShadowFaceMatrices(scene.LightPosition, scene.ShadowNear, scene.ShadowFar)

	geometry, err := GeometryBuffersCreate(r.context, r.commandPool, r.context.Device.GraphicsQueue, scene.Mesh)
	if err != nil {
		return err
	}
	r.geometry = geometry

	if err := r.buildSwapchainObjects(); err != nil {
		return err
	}
	if err := r.createSyncObjects(); err != nil {
		return err
	}

	core.LogInfo("vulkan renderer initialized: %dx%d, %d swapchain images, %dx msaa",
		r.context.FramebufferWidth, r.context.FramebufferHeight,
		r.context.Swapchain.ImageCount, int(r.context.Device.SampleCount))
	return nil
}

func (r *Renderer) createInstance() error {
	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   safeString(r.config.ApplicationName),
		PEngineName:        safeString("Lantern Engine"),
	}

	extensions := r.platform.RequiredExtensionNames()
	if runtime.GOOS == "darwin" {
		extensions = append(extensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2")
	}
	if r.validation {
		extensions = append(extensions, vk.ExtDebugReportExtensionName)
	}

	var layers []string
	if r.validation {
		present, err := validationLayerPresent()
		if err != nil {
			return err
		}
		if present {
			layers = append(layers, validationLayerName)
		} else {
			core.LogWarn("%s requested but not installed, continuing without validation", validationLayerName)
			r.validation = false
			extensions = extensions[:len(extensions)-1]
		}
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}
	if runtime.GOOS == "darwin" {
		// Portability enumeration bit, needed for MoltenVK devices to
		// show up at all.
		createInfo.Flags |= 1
	}

	if err := vk.Error(vk.CreateInstance(&createInfo, r.context.Allocator, &r.context.Instance)); err != nil {
		return fmt.Errorf("creating instance: %w", err)
	}
	if err := vk.InitInstance(r.context.Instance); err != nil {
		return fmt.Errorf("loading instance procedures: %w", err)
	}

	core.LogDebug("vulkan instance created with %d extensions", len(extensions))
	return nil
}

func validationLayerPresent() (bool, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return false, fmt.Errorf("enumerating instance layers: %w", err)
	}
	available := make([]vk.LayerProperties, count)
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, available)); err != nil {
		return false, fmt.Errorf("enumerating instance layers: %w", err)
	}
	for i := range available {
		available[i].Deref()
		if byteString(available[i].LayerName[:]) == validationLayerName {
			return true, nil
		}
	}
	return false, nil
}

func (r *Renderer) createDebugCallback() error {
	debugInfo := vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: debugReportCallback,
	}

	var callback vk.DebugReportCallback
	if err := vk.Error(vk.CreateDebugReportCallback(r.context.Instance, &debugInfo, r.context.Allocator, &callback)); err != nil {
		return fmt.Errorf("creating debug callback: %w", err)
	}
	r.context.debugMessenger = callback
	return nil
}

func debugReportCallback(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64,
	location uint64, messageCode int32, layerPrefix string, message string, userData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("[%s] %s", layerPrefix, message)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("[%s] %s", layerPrefix, message)
	default:
		core.LogDebug("[%s] %s", layerPrefix, message)
	}
	return vk.Bool32(vk.False)
}

func (r *Renderer) createSyncObjects() error {
	for i := 0; i < maxFramesInFlight; i++ {
		imageAvailable, err := SemaphoreCreate(r.context)
		if err != nil {
			return err
		}
		r.imageAvailable[i] = imageAvailable

		renderComplete, err := SemaphoreCreate(r.context)
		if err != nil {
			return err
		}
		r.renderComplete[i] = renderComplete

		// Signaled so the first wait on each slot falls straight
		// through.
		fence, err := FenceCreate(r.context, true)
		if err != nil {
			return err
		}
		r.frameFences[i] = fence
	}
	return nil
}

// buildSwapchainObjects creates everything tied to the current
// swapchain generation, in dependency order: passes, pipelines,
// attachment bundles, shadow cubes, descriptors and the pre-recorded
// command buffers. The projection is re-derived here because the
// aspect ratio follows the swapchain extent.
func (r *Renderer) buildSwapchainObjects() error {
	context := r.context
	swapchain := context.Swapchain

	scenePass, err := SceneRenderPassCreate(context)
	if err != nil {
		return err
	}
	r.scenePass = scenePass

	shadowPass, err := ShadowRenderPassCreate(context)
	if err != nil {
		return err
	}
	r.shadowPass = shadowPass

	scenePipeline, shadowPipeline, err := r.buildPipelines(r.modules)
	if err != nil {
		return err
	}
	r.scenePipeline = scenePipeline
	r.shadowPipeline = shadowPipeline

	renderTargets, err := RenderTargetsCreate(context, scenePass)
	if err != nil {
		return err
	}
	r.renderTargets = renderTargets

	shadowTargets, err := ShadowTargetsCreate(context, shadowPass, swapchain.ImageCount)
	if err != nil {
		return err
	}
	r.shadowTargets = shadowTargets

	descriptors, err := SceneDescriptorsCreate(context, r.descriptorLayout, r.shadowSampler,
		swapchain.ImageCount, shadowTargets.CubeViews())
	if err != nil {
		return err
	}
	r.descriptors = descriptors

	r.projection = sceneProjection(r.scene.CameraFOVDegrees,
		swapchain.Extent.Width, swapchain.Extent.Height,
		r.scene.CameraNear, r.scene.CameraFar)

	// Fragment uniforms are static per generation; write them into
	// every image's buffer once instead of every frame.
	for i := uint32(0); i < swapchain.ImageCount; i++ {
		descriptors.WriteFragmentUniforms(i, &r.fragmentUniforms)
	}

	commandBuffers, err := CommandBufferAllocate(context, r.commandPool, swapchain.ImageCount)
	if err != nil {
		return err
	}
	r.commandBuffers = commandBuffers

	r.imagesInFlight = make([]vk.Fence, swapchain.ImageCount)

	return r.recordFrames()
}

func (r *Renderer) buildPipelines(modules shaderModules) (*Pipeline, *Pipeline, error) {
	context := r.context
	swapchain := context.Swapchain

	scenePipeline, err := PipelineCreate(context, PipelineConfig{
		RenderPass:       r.scenePass,
		Layout:           r.sceneLayout,
		VertexBindings:   sceneVertexBindings(),
		VertexAttributes: sceneVertexAttributes(),
		ViewportWidth:    swapchain.Extent.Width,
		ViewportHeight:   swapchain.Extent.Height,
		Samples:          context.Device.SampleCount,
		VertexShader:     modules.sceneVertex,
		FragmentShader:   modules.sceneFragment,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating scene pipeline: %w", err)
	}

	shadowPipeline, err := PipelineCreate(context, PipelineConfig{
		RenderPass:       r.shadowPass,
		Layout:           r.shadowLayout,
		VertexBindings:   shadowVertexBindings(),
		VertexAttributes: shadowVertexAttributes(),
		ViewportWidth:    r.context.ShadowMapSize,
		ViewportHeight:   r.context.ShadowMapSize,
		Samples:          vk.SampleCount1Bit,
		VertexShader:     modules.shadowVertex,
		FragmentShader:   modules.shadowFragment,
		DepthOnly:        true,
	})
	if err != nil {
		scenePipeline.Destroy(context)
		return nil, nil, fmt.Errorf("creating shadow pipeline: %w", err)
	}

	return scenePipeline, shadowPipeline, nil
}

func (r *Renderer) recordFrames() error {
	return RecordCommandBuffers(r.context, RecordConfig{
		CommandBuffers: r.commandBuffers,
		ShadowPass:     r.shadowPass,
		ScenePass:      r.scenePass,
		ShadowPipeline: r.shadowPipeline,
		ScenePipeline:  r.scenePipeline,
		ShadowTargets:  r.shadowTargets,
		RenderTargets:  r.renderTargets,
		Descriptors:    r.descriptors,
		Geometry:       r.geometry,
		FaceMatrices:   r.faceMatrices,
	})
}

func (r *Renderer) destroySwapchainObjects() {
	context := r.context

	if len(r.commandBuffers) > 0 {
		CommandBufferFree(context, r.commandPool, r.commandBuffers)
		r.commandBuffers = nil
	}
	r.descriptors.Destroy(context)
	r.descriptors = nil
	r.shadowTargets.Destroy(context)
	r.shadowTargets = nil
	r.renderTargets.Destroy(context)
	r.renderTargets = nil
	r.scenePipeline.Destroy(context)
	r.scenePipeline = nil
	r.shadowPipeline.Destroy(context)
	r.shadowPipeline = nil
	RenderPassDestroy(context, r.scenePass)
	r.scenePass = vk.NullRenderPass
	RenderPassDestroy(context, r.shadowPass)
	r.shadowPass = vk.NullRenderPass
}

// Resized records a new surface size. The actual rebuild is deferred
// to the next DrawFrame so it happens on the render path, never inside
// a window system callback.
func (r *Renderer) Resized(width, height uint32) {
	r.context.FramebufferSizeGeneration++
	core.LogDebug("framebuffer resize to %dx%d (generation %d)", width, height, r.context.FramebufferSizeGeneration)
}

// DrawFrame renders and presents one frame.
//
// The slot fence gates CPU reuse of per-slot sync objects, the
// per-image fence gates reuse of the image's uniform buffers, and the
// two semaphores order acquire, submit and present on the GPU
// timeline. Returns ErrFrameSkipped when the swapchain had to be
// rebuilt instead of rendered.
func (r *Renderer) DrawFrame(packet *metadata.RenderPacket) error {
	context := r.context

	// A resize since the last build means the swapchain no longer
	// matches the surface. Rebuild and let the caller retry.
	if context.FramebufferSizeGeneration != context.FramebufferSizeLastGeneration {
		if err := r.recreateSwapchain(); err != nil {
			return err
		}
		return core.ErrFrameSkipped
	}

	slotFence := r.frameFences[r.currentFrame]
	if err := FenceWait(context, slotFence, math.MaxUint64); err != nil {
		return fmt.Errorf("waiting for frame slot %d: %w", r.currentFrame, err)
	}

	imageIndex, err := context.Swapchain.AcquireNextImageIndex(context, math.MaxUint64,
		r.imageAvailable[r.currentFrame], vk.NullFence)
	if err != nil {
		if errors.Is(err, core.ErrSwapchainOutOfDate) {
			if err := r.recreateSwapchain(); err != nil {
				return err
			}
			return core.ErrFrameSkipped
		}
		return err
	}

	// The acquired image may still be in flight under an earlier slot.
	// Its uniform buffers cannot be rewritten until that frame retires.
	if r.imagesInFlight[imageIndex] != vk.NullFence && r.imagesInFlight[imageIndex] != slotFence {
		if err := FenceWait(context, r.imagesInFlight[imageIndex], math.MaxUint64); err != nil {
			return fmt.Errorf("waiting for image %d: %w", imageIndex, err)
		}
	}
	r.imagesInFlight[imageIndex] = slotFence

	uniforms := VertexUniforms{
		Model: m.NewMat4Identity(),
		MVP:   r.projection.Mul(packet.View),
	}
	r.descriptors.WriteVertexUniforms(imageIndex, &uniforms)

	if err := FenceReset(context, slotFence); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{r.imageAvailable[r.currentFrame]},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{r.commandBuffers[imageIndex]},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{r.renderComplete[r.currentFrame]},
	}
	if err := vk.Error(vk.QueueSubmit(context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, slotFence)); err != nil {
		return fmt.Errorf("submitting frame: %w", err)
	}

	err = context.Swapchain.Present(context, r.renderComplete[r.currentFrame], imageIndex)
	r.currentFrame = advanceFrameSlot(r.currentFrame)
	r.FrameNumber++
	r.lastImageIndex = imageIndex
	r.lastImageGeneration = context.SwapchainGeneration

	if err != nil {
		if errors.Is(err, core.ErrSwapchainOutOfDate) {
			// The frame was rendered; only the presentation target is
			// stale. Rebuild for the next one.
			return r.recreateSwapchain()
		}
		return err
	}
	return nil
}

// recreateSwapchain tears down the current generation and rebuilds it
// against the surface's present size. Blocks while the window is
// minimized.
func (r *Renderer) recreateSwapchain() error {
	context := r.context

	width, height := r.platform.FramebufferSize()
	for width == 0 || height == 0 {
		r.platform.WaitMessages()
		width, height = r.platform.FramebufferSize()
	}

	if err := DeviceWaitIdle(context); err != nil {
		return err
	}

	oldGeneration := context.SwapchainGeneration
	r.destroySwapchainObjects()
	SwapchainDestroy(context)

	if leaked := context.Registry.ReleaseGeneration(oldGeneration); leaked > 0 {
		core.LogWarn("swapchain generation %d retired with %d unreleased resources", oldGeneration, leaked)
	}

	if err := SwapchainCreate(context, width, height); err != nil {
		return fmt.Errorf("recreating swapchain: %w", err)
	}
	if err := r.buildSwapchainObjects(); err != nil {
		return fmt.Errorf("rebuilding swapchain resources: %w", err)
	}

	context.FramebufferSizeLastGeneration = context.FramebufferSizeGeneration
	core.LogInfo("swapchain recreated at %dx%d (generation %d)",
		context.FramebufferWidth, context.FramebufferHeight, context.SwapchainGeneration)
	return nil
}

// ReloadShaders swaps in freshly compiled SPIR-V without touching the
// rest of the generation. New modules and pipelines are built first;
// any failure leaves the previous ones running.
func (r *Renderer) ReloadShaders(shaders metadata.ShaderSet) error {
	context := r.context
	if err := DeviceWaitIdle(context); err != nil {
		return err
	}

	modules, err := createShaderModules(context, shaders)
	if err != nil {
		return fmt.Errorf("loading replacement shaders: %w", err)
	}

	scenePipeline, shadowPipeline, err := r.buildPipelines(modules)
	if err != nil {
		modules.destroy(context)
		return fmt.Errorf("rebuilding pipelines: %w", err)
	}

	r.scenePipeline.Destroy(context)
	r.shadowPipeline.Destroy(context)
	r.modules.destroy(context)
	r.modules = modules
	r.shaders = shaders
	r.scenePipeline = scenePipeline
	r.shadowPipeline = shadowPipeline

	// The old command buffers still reference the retired pipelines.
	CommandBufferFree(context, r.commandPool, r.commandBuffers)
	commandBuffers, err := CommandBufferAllocate(context, r.commandPool, context.Swapchain.ImageCount)
	if err != nil {
		return err
	}
	r.commandBuffers = commandBuffers
	if err := r.recordFrames(); err != nil {
		return err
	}

	core.LogInfo("shader modules reloaded")
	return nil
}

// Shutdown destroys everything in reverse creation order and reports
// any resource the registry still considers live. Tolerates partially
// initialized state so a failed Initialize can be unwound with it.
func (r *Renderer) Shutdown() error {
	context := r.context

	if context.Device != nil && context.Device.Logical != nil {
		if err := DeviceWaitIdle(context); err != nil {
			core.LogWarn("device wait during shutdown: %v", err)
		}

		for i := 0; i < maxFramesInFlight; i++ {
			SemaphoreDestroy(context, r.imageAvailable[i])
			r.imageAvailable[i] = vk.NullSemaphore
			SemaphoreDestroy(context, r.renderComplete[i])
			r.renderComplete[i] = vk.NullSemaphore
			FenceDestroy(context, r.frameFences[i])
			r.frameFences[i] = vk.NullFence
		}
		r.imagesInFlight = nil

		r.destroySwapchainObjects()
		SwapchainDestroy(context)

		r.geometry.Destroy(context)
		r.geometry = nil

		r.modules.destroy(context)
		PipelineLayoutDestroy(context, r.sceneLayout)
		r.sceneLayout = vk.NullPipelineLayout
		PipelineLayoutDestroy(context, r.shadowLayout)
		r.shadowLayout = vk.NullPipelineLayout
		SamplerDestroy(context, r.shadowSampler)
		r.shadowSampler = vk.NullSampler
		DescriptorSetLayoutDestroy(context, r.descriptorLayout)
		r.descriptorLayout = vk.NullDescriptorSetLayout
		CommandPoolDestroy(context, r.commandPool)
		r.commandPool = vk.NullCommandPool

		context.Registry.ReportLeaks()

		DeviceDestroy(context)
	}

	if context.Surface != vk.NullSurface {
		vk.DestroySurface(context.Instance, context.Surface, context.Allocator)
		context.Surface = vk.NullSurface
	}
	if context.debugMessenger != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(context.Instance, context.debugMessenger, context.Allocator)
		context.debugMessenger = vk.NullDebugReportCallback
	}
	if context.Instance != nil {
		vk.DestroyInstance(context.Instance, context.Allocator)
		context.Instance = nil
	}

	core.LogInfo("vulkan renderer shut down after %d frames", r.FrameNumber)
	return nil
}

// advanceFrameSlot cycles through the frame slots so at most
// maxFramesInFlight frames have work queued at once.
func advanceFrameSlot(current int) int {
	return (current + 1) % maxFramesInFlight
}

// sceneProjection derives the camera projection for a surface size.
// The Y axis flips because clip space points down in Vulkan while the
// world is Y-up.
func sceneProjection(fovDegrees float32, width, height uint32, near, far float32) m.Mat4 {
	aspect := float32(width) / float32(height)
	projection := m.NewMat4Perspective(fovDegrees*(math.Pi/180), aspect, near, far)
	projection.Data[5] *= -1
	return projection
}

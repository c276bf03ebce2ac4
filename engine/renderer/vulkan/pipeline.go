package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	m "github.com/softglow/lantern/engine/math"
)

// Pipeline pairs a pipeline with the layout it was built against. The
// layout is borrowed: it outlives swapchain rebuilds, so Destroy never
// touches it.
type Pipeline struct {
	Handle vk.Pipeline
	Layout vk.PipelineLayout
}

// PipelineLayoutCreate builds a layout from set layouts and push
// ranges. Layouts depend on neither the render pass nor the extent, so
// they are created once and survive every swapchain rebuild.
func PipelineLayoutCreate(context *Context, setLayouts []vk.DescriptorSetLayout, pushRanges []vk.PushConstantRange) (vk.PipelineLayout, error) {
	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(setLayouts)),
		PSetLayouts:            setLayouts,
		PushConstantRangeCount: uint32(len(pushRanges)),
		PPushConstantRanges:    pushRanges,
	}

	var layout vk.PipelineLayout
	if err := vk.Error(vk.CreatePipelineLayout(context.Device.Logical, &layoutInfo, context.Allocator, &layout)); err != nil {
		return vk.NullPipelineLayout, fmt.Errorf("creating pipeline layout: %w", err)
	}
	return layout, nil
}

func PipelineLayoutDestroy(context *Context, layout vk.PipelineLayout) {
	if layout == vk.NullPipelineLayout {
		return
	}
	vk.DestroyPipelineLayout(context.Device.Logical, layout, context.Allocator)
}

// PipelineConfig narrows the pipeline state space to what the two
// passes actually vary: vertex layout, viewport, sampling, shader
// pair, layout and whether a color attachment exists. Everything else
// is fixed: triangle lists, back-face culling with counter-clockwise
// winding, fill mode, LESS depth testing with writes on, no blending,
// no dynamic state.
type PipelineConfig struct {
	RenderPass       vk.RenderPass
	Layout           vk.PipelineLayout
	VertexBindings   []vk.VertexInputBindingDescription
	VertexAttributes []vk.VertexInputAttributeDescription
	ViewportWidth    uint32
	ViewportHeight   uint32
	Samples          vk.SampleCountFlagBits
	VertexShader     vk.ShaderModule
	FragmentShader   vk.ShaderModule
	DepthOnly        bool
}

func PipelineCreate(context *Context, config PipelineConfig) (*Pipeline, error) {
	if config.Samples == 0 {
		config.Samples = vk.SampleCount1Bit
	}

	stages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: config.VertexShader,
			PName:  safeString("main"),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: config.FragmentShader,
			PName:  safeString("main"),
		},
	}

	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(config.VertexBindings)),
		PVertexBindingDescriptions:      config.VertexBindings,
		VertexAttributeDescriptionCount: uint32(len(config.VertexAttributes)),
		PVertexAttributeDescriptions:    config.VertexAttributes,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}

	viewport := vk.Viewport{
		X: 0, Y: 0,
		Width:    float32(config.ViewportWidth),
		Height:   float32(config.ViewportHeight),
		MinDepth: 0,
		MaxDepth: 1,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: config.ViewportWidth, Height: config.ViewportHeight},
	}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports:    []vk.Viewport{viewport},
		ScissorCount:  1,
		PScissors:     []vk.Rect2D{scissor},
	}

	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		LineWidth:               1,
		CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
	}

	multisampling := vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples:  config.Samples,
		SampleShadingEnable:   vk.False,
		MinSampleShading:      1,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       vk.True,
		DepthWriteEnable:      vk.True,
		DepthCompareOp:        vk.CompareOpLess,
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     vk.False,
	}

	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:         vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable: vk.False,
		LogicOp:       vk.LogicOpCopy,
	}
	if !config.DepthOnly {
		blendAttachment := vk.PipelineColorBlendAttachmentState{
			ColorWriteMask: vk.ColorComponentFlags(
				vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
			BlendEnable: vk.False,
		}
		colorBlend.AttachmentCount = 1
		colorBlend.PAttachments = []vk.PipelineColorBlendAttachmentState{blendAttachment}
	}

	pipelineInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisampling,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlend,
		Layout:              config.Layout,
		RenderPass:          config.RenderPass,
		Subpass:             0,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}

	pipelines := make([]vk.Pipeline, 1)
	result := vk.CreateGraphicsPipelines(context.Device.Logical, vk.NullPipelineCache,
		1, []vk.GraphicsPipelineCreateInfo{pipelineInfo}, context.Allocator, pipelines)
	if err := vk.Error(result); err != nil {
		return nil, fmt.Errorf("creating graphics pipeline: %w", err)
	}

	return &Pipeline{Handle: pipelines[0], Layout: config.Layout}, nil
}

func (p *Pipeline) Destroy(context *Context) {
	if p == nil {
		return
	}
	if p.Handle != vk.NullPipeline {
		vk.DestroyPipeline(context.Device.Logical, p.Handle, context.Allocator)
		p.Handle = vk.NullPipeline
	}
	p.Layout = vk.NullPipelineLayout
}

// sceneVertexBindings lays out the three per-vertex streams: position,
// normal, material index. Each attribute rides its own binding so the
// loader can keep flat arrays.
func sceneVertexBindings() []vk.VertexInputBindingDescription {
	return []vk.VertexInputBindingDescription{
		{Binding: 0, Stride: uint32(unsafe.Sizeof(m.Vec3{})), InputRate: vk.VertexInputRateVertex},
		{Binding: 1, Stride: uint32(unsafe.Sizeof(m.Vec3{})), InputRate: vk.VertexInputRateVertex},
		{Binding: 2, Stride: uint32(unsafe.Sizeof(uint32(0))), InputRate: vk.VertexInputRateVertex},
	}
}

func sceneVertexAttributes() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
		{Location: 1, Binding: 1, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
		{Location: 2, Binding: 2, Format: vk.FormatR32Uint, Offset: 0},
	}
}

// shadowVertexBindings exposes positions alone; depth rendering has no
// use for normals or materials.
func shadowVertexBindings() []vk.VertexInputBindingDescription {
	return []vk.VertexInputBindingDescription{
		{Binding: 0, Stride: uint32(unsafe.Sizeof(m.Vec3{})), InputRate: vk.VertexInputRateVertex},
	}
}

func shadowVertexAttributes() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
	}
}

// shadowPushConstantRange exposes one face matrix to the vertex stage.
func shadowPushConstantRange() []vk.PushConstantRange {
	return []vk.PushConstantRange{
		{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			Offset:     0,
			Size:       uint32(unsafe.Sizeof(m.Mat4{})),
		},
	}
}

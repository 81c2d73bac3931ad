// Package renderer is the Vulkan backend. It draws scene frames with the same two bind groups the software
// pipeline uses: the camera set bound once per command buffer and an artifact set rebound before every draw.
package renderer

import (
	"context"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"time"

	vk "github.com/goki/vulkan"
	"github.com/veandco/go-sdl2/sdl"

	com "artifact_renderer/common"
	"artifact_renderer/model"
	"artifact_renderer/raster"
	"artifact_renderer/scene"
	"artifact_renderer/shading"
)

const PROGRAM_NAME = "Artifact renderer"
const WINDOW_WIDTH, WINDOW_HEIGHT int32 = 1280, 720
const MAX_FRAMES_IN_FLIGHT = 2

var VALIDATION_LAYERS = []string{
	"VK_LAYER_KHRONOS_validation",
}

type Options struct {
	Title         string
	Width, Height int32
	Validation    bool
	// ShaderDir holds the compiled unlit.vert.spv and unlit.frag.spv.
	ShaderDir string
	State     raster.PipelineState
}

func DefaultOptions() Options {
	return Options{
		Title:     PROGRAM_NAME,
		Width:     WINDOW_WIDTH,
		Height:    WINDOW_HEIGHT,
		ShaderDir: "shaders_spv",
		State:     raster.DefaultPipelineState(),
	}
}

type Core struct {
	// OS/Window level
	Win    *com.Window
	device *com.Device

	// Target level
	swapChain *com.SwapChain
	depth     *com.Image

	// Drawing infrastructure level
	state          raster.PipelineState
	shaderDir      string
	renderPass     vk.RenderPass
	descriptors    *DescriptorProvisioner
	pipelineLayout vk.PipelineLayout
	pipelines      []vk.Pipeline
	commandPool    vk.CommandPool

	// Frame level
	commandBuffers     []vk.CommandBuffer
	currentFrameIdx    int
	imageAvailableSems []vk.Semaphore
	renderFinishedSems []vk.Semaphore
	inFlightFens       []vk.Fence

	// Data level
	meshes map[string]*gpuMesh
}

// NewRenderCore opens the window and builds everything needed to draw frames. Failures of the Vulkan
// setup itself panic, a pipeline that cannot be built from the given options is returned as error.
func NewRenderCore(opts Options) (*Core, error) {
	if err := opts.State.Layout.Validate(); err != nil {
		return nil, err
	}
	if opts.State.Interpolation != raster.InterpolatePerspective {
		log.Printf("Vulkan backend always interpolates perspective correct, ignoring interpolation %d", opts.State.Interpolation)
	}
	var layers []string
	if opts.Validation {
		layers = VALIDATION_LAYERS
	}
	c := &Core{
		state:     opts.State,
		shaderDir: opts.ShaderDir,
		meshes:    map[string]*gpuMesh{},
	}
	c.Win = com.NewVulkanWindow(opts.Title, opts.Width, opts.Height, layers)
	c.device = com.NewDevice(c.Win, layers)
	c.swapChain = com.NewSwapChain(c.device, c.Win)
	c.createDepthResources()
	c.createRenderPass()
	c.createFrameBuffers()
	c.descriptors = NewDescriptorProvisioner(c.device, c.state.Layout, MAX_FRAMES_IN_FLIGHT)
	if err := c.createGraphicsPipeline(); err != nil {
		c.Destroy()
		return nil, err
	}
	c.createCommandPool()
	c.createCommandBuffers()
	c.createSyncObjects()
	return c, nil
}

type IterationHandler func(sdl.Event, *Core)

type DrawHandler func(time.Duration, *Core) error

// Loop is the event loop for user interaction. Every iteration handles the pending events, first the
// basic window bookkeeping and then ih, and afterwards calls dh with the time since the previous frame.
// Nothing is drawn while the window is minimized. Loop returns when the window is closed, ctx is done or
// dh fails.
func (c *Core) Loop(ctx context.Context, ih IterationHandler, dh DrawHandler) error {
	t0 := time.Now()
	last := t0
	frames := 0
	c.Win.Close = false
	for !c.Win.Close {
		if err := ctx.Err(); err != nil {
			return err
		}
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			c.Win.HandleEvent(event)
			if ih != nil {
				ih(event, c)
			}
		}
		if c.Win.Minimized {
			// Sleep until new events change c.Win.Minimized
			if event := sdl.WaitEventTimeout(100); event != nil {
				c.Win.HandleEvent(event)
				if ih != nil {
					ih(event, c)
				}
			}
			continue
		}
		now := time.Now()
		if err := dh(now.Sub(last), c); err != nil {
			return err
		}
		last = now
		frames++
	}
	dt := time.Since(t0)
	log.Printf("Elapsed: %v, rough avg fps: %v fps", dt, float64(frames)/dt.Seconds())
	return nil
}

// Extent is the size of the images drawn into.
func (c *Core) Extent() (int, int) {
	return int(c.swapChain.Extend.Width), int(c.swapChain.Extend.Height)
}

func (c *Core) Destroy() {
	if c.device != nil {
		// We need to wait for the last asynchronous call to finish before tear down
		vk.DeviceWaitIdle(c.device.D)
		c.clearMeshes()
		if c.swapChain != nil {
			c.destroySwapChainAndDerivatives()
		}
		if c.descriptors != nil {
			c.descriptors.Destroy()
		}
		for i := range c.inFlightFens {
			vk.DestroySemaphore(c.device.D, c.imageAvailableSems[i], nil)
			vk.DestroySemaphore(c.device.D, c.renderFinishedSems[i], nil)
			vk.DestroyFence(c.device.D, c.inFlightFens[i], nil)
		}
		if c.commandPool != nil {
			vk.DestroyCommandPool(c.device.D, c.commandPool, nil)
		}
		for i := range c.pipelines {
			vk.DestroyPipeline(c.device.D, c.pipelines[i], nil)
		}
		if c.pipelineLayout != nil {
			vk.DestroyPipelineLayout(c.device.D, c.pipelineLayout, nil)
		}
		if c.renderPass != nil {
			vk.DestroyRenderPass(c.device.D, c.renderPass, nil)
		}
		c.device.Destroy()
	}
	c.Win.Destroy()
}

func (c *Core) destroySwapChainAndDerivatives() {
	com.DestroyImage(c.device, c.depth)
	c.swapChain.Destroy(c.device)
}

func (c *Core) createRenderPass() {
	colorAttachment := vk.AttachmentDescription{
		Flags:          0,
		Format:         c.swapChain.Format.Format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}
	colorAttachmentRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}
	depthAttachment := vk.AttachmentDescription{
		Flags:          0,
		Format:         c.depth.Format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	depthAttachmentRef := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	subpass := vk.SubpassDescription{
		Flags:                   0,
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		InputAttachmentCount:    0,
		PInputAttachments:       nil,
		ColorAttachmentCount:    1,
		PColorAttachments:       []vk.AttachmentReference{colorAttachmentRef},
		PResolveAttachments:     nil,
		PDepthStencilAttachment: &depthAttachmentRef,
		PreserveAttachmentCount: 0,
		PPreserveAttachments:    nil,
	}
	dependency := vk.SubpassDependency{
		SrcSubpass:      vk.SubpassExternal,
		DstSubpass:      0,
		SrcStageMask:    vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		DstStageMask:    vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		SrcAccessMask:   0,
		DstAccessMask:   vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
		DependencyFlags: 0,
	}
	renderPassInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		PNext:           nil,
		Flags:           0,
		AttachmentCount: 2,
		PAttachments:    []vk.AttachmentDescription{colorAttachment, depthAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
	var err error
	c.renderPass, err = com.VkCreateRenderPass(c.device.D, &renderPassInfo, nil)
	if err != nil {
		log.Panicf("Failed create render pass due to: %s", err)
	}
	log.Println("Successfully created render pass")
}

func (c *Core) createGraphicsPipeline() error {
	// Shader mode deletion can be done right after pipeline creation
	vertShaderMod, vertStageInfo, err := LoadStage(c.device.D, filepath.Join(c.shaderDir, VertShaderFile), vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	defer DeleteShaderMod(c.device.D, vertShaderMod)
	fragShaderMod, fragStageInfo, err := LoadStage(c.device.D, filepath.Join(c.shaderDir, FragShaderFile), vk.ShaderStageFragmentBit)
	if err != nil {
		return err
	}
	defer DeleteShaderMod(c.device.D, fragShaderMod)
	shaderStages := []vk.PipelineShaderStageCreateInfo{vertStageInfo, fragStageInfo}

	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
	}
	dynamicStateCreateInfo := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		PNext:             nil,
		Flags:             0,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}
	bindingDesc := []vk.VertexInputBindingDescription{vertexBindingDescription(c.state.Layout)}
	attributeDesc := vertexAttributeDescriptions(c.state.Layout)
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		PNext:                           nil,
		Flags:                           0,
		VertexBindingDescriptionCount:   uint32(len(bindingDesc)),
		PVertexBindingDescriptions:      bindingDesc,
		VertexAttributeDescriptionCount: uint32(len(attributeDesc)),
		PVertexAttributeDescriptions:    attributeDesc,
	}
	inputAssemblyInfo := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		PNext:                  nil,
		Flags:                  0,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}
	viewportStateInfo := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		PNext:         nil,
		Flags:         0,
		ViewportCount: 1,
		PViewports:    nil,
		ScissorCount:  1,
		PScissors:     nil,
	}
	rasterizerInfo := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		CullMode:                cullModeFlags(c.state.Cull),
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
		DepthBiasConstantFactor: 0,
		DepthBiasClamp:          0,
		DepthBiasSlopeFactor:    0,
		LineWidth:               1.0,
	}
	multisamplingInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		RasterizationSamples:  vk.SampleCount1Bit,
		SampleShadingEnable:   vk.False,
		MinSampleShading:      1.0,
		PSampleMask:           nil,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}
	colorBlendAttachmentInfo := vk.PipelineColorBlendAttachmentState{
		BlendEnable:         vk.False,
		SrcColorBlendFactor: vk.BlendFactorOne,
		DstColorBlendFactor: vk.BlendFactorZero,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorOne,
		DstAlphaBlendFactor: vk.BlendFactorZero,
		AlphaBlendOp:        vk.BlendOpAdd,
		ColorWriteMask:      vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
	}
	colorBlendingInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		PNext:           nil,
		Flags:           0,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachmentInfo},
		BlendConstants:  [4]float32{0, 0, 0, 0},
	}

	// One descriptor set per bind group, index = group
	setLayouts := c.descriptors.SetLayouts()
	pipelineLayoutInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		PNext:                  nil,
		Flags:                  0,
		SetLayoutCount:         uint32(len(setLayouts)),
		PSetLayouts:            setLayouts,
		PushConstantRangeCount: 0,
		PPushConstantRanges:    nil,
	}
	c.pipelineLayout, err = com.VkCreatePipelineLayout(c.device.D, &pipelineLayoutInfo, nil)
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		DepthTestEnable:       boolToVk(c.state.DepthTest),
		DepthWriteEnable:      boolToVk(c.state.DepthWrite),
		DepthCompareOp:        vk.CompareOpLess,
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     vk.False,
		Front:                 vk.StencilOpState{},
		Back:                  vk.StencilOpState{},
		MinDepthBounds:        0,
		MaxDepthBounds:        1,
	}

	pipelineInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		PNext:               nil,
		Flags:               0,
		StageCount:          uint32(len(shaderStages)),
		PStages:             shaderStages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssemblyInfo,
		PTessellationState:  nil,
		PViewportState:      &viewportStateInfo,
		PRasterizationState: &rasterizerInfo,
		PMultisampleState:   &multisamplingInfo,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlendingInfo,
		PDynamicState:       &dynamicStateCreateInfo,
		Layout:              c.pipelineLayout,
		RenderPass:          c.renderPass,
		Subpass:             0,
		BasePipelineHandle:  nil,
		BasePipelineIndex:   -1,
	}
	c.pipelines, err = com.VkCreateGraphicsPipelines(c.device.D, nil, 1, []vk.GraphicsPipelineCreateInfo{pipelineInfo}, nil)
	if err != nil {
		return fmt.Errorf("create graphics pipeline: %w", err)
	}
	log.Printf("Successfully created graphics pipeline with %d descriptor set layouts", len(setLayouts))
	return nil
}

func (c *Core) createFrameBuffers() {
	c.swapChain.CreateFrameBuffers(c.device, c.renderPass, &c.depth.View)
}

func (c *Core) createDepthResources() {
	c.depth = com.CreateDepthImage(c.device, c.swapChain.Extend.Width, c.swapChain.Extend.Height)
}

func (c *Core) createCommandPool() {
	commandPool, err := com.VKSCreateCommandPool(
		c.device.D,
		vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		*c.device.QFamilies.GraphicsFamily,
	)
	if err != nil {
		log.Panicf("Failed to create command pool: %v", err)
	}
	log.Printf("Successfully created command pool")
	c.commandPool = commandPool
}

func (c *Core) createCommandBuffers() {
	buffers, err := com.VKAllocateCommandBuffersPrimary(c.device.D, c.commandPool, uint32(MAX_FRAMES_IN_FLIGHT))
	if err != nil {
		log.Panicf("Failed to allocate command buffers: %v", err)
	}
	log.Printf("Successfully allocated %d command buffers", len(buffers))
	c.commandBuffers = buffers
}

func (c *Core) createSyncObjects() {
	semCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
		PNext: nil,
		Flags: 0,
	}
	fenCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		PNext: nil,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}
	for i := 0; i < MAX_FRAMES_IN_FLIGHT; i++ {
		ias, err1 := com.VkCreateSemaphore(c.device.D, &semCreateInfo, nil)
		rfs, err2 := com.VkCreateSemaphore(c.device.D, &semCreateInfo, nil)
		iff, err3 := com.VkCreateFence(c.device.D, &fenCreateInfo, nil)
		if err1 != nil || err2 != nil || err3 != nil {
			log.Panicf("Failed to create sync objects for frame %d", i)
		}
		c.imageAvailableSems = append(c.imageAvailableSems, ias)
		c.renderFinishedSems = append(c.renderFinishedSems, rfs)
		c.inFlightFens = append(c.inFlightFens, iff)
	}
}

// Drawing and derivative functionality

// RenderFrame draws and presents one frame. Draws without triangles are skipped.
func (c *Core) RenderFrame(ctx context.Context, f *scene.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	frame := c.currentFrameIdx
	// Wait for frame to be ready - signalled by the inFlightFens
	vk.WaitForFences(c.device.D, 1, []vk.Fence{c.inFlightFens[frame]}, vk.True, math.MaxUint64)

	var imgIdx uint32
	result := vk.AcquireNextImage(c.device.D, c.swapChain.Handle, math.MaxUint64, c.imageAvailableSems[frame], nil, &imgIdx)
	// React on surface changes and other possible causes for failure (e.g.: Window resizing)
	if result == vk.ErrorOutOfDate {
		c.recreateSwapChain()
		return nil
	} else if result != vk.Success && result != vk.Suboptimal {
		return fmt.Errorf("acquire swap chain image: %w", vk.Error(result))
	}

	// The fence guarantees the GPU is done with this frame's uniform buffers
	c.pruneMeshes(f)
	var meshes []*gpuMesh
	var uniforms []model.ArtifactUniform
	for _, d := range f.Draws {
		m := c.meshFor(d)
		if m == nil {
			continue
		}
		meshes = append(meshes, m)
		uniforms = append(uniforms, d.Artifact)
	}
	cameraSet := c.descriptors.CameraSet(frame, clipCorrection(f.Camera))
	artifactSets := c.descriptors.ArtifactSets(frame, uniforms)

	// Reset the fence only if we are actually going to execute work that will put the fence into the signalled state
	vk.ResetFences(c.device.D, 1, []vk.Fence{c.inFlightFens[frame]})
	vk.ResetCommandBuffer(c.commandBuffers[frame], 0)
	if err := c.recordDrawCommands(c.commandBuffers[frame], imgIdx, f, cameraSet, artifactSets, meshes); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		PNext:              nil,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{c.imageAvailableSems[frame]},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{c.commandBuffers[frame]},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{c.renderFinishedSems[frame]},
	}
	if err := vk.Error(vk.QueueSubmit(c.device.GraphicsQ, 1, []vk.SubmitInfo{submitInfo}, c.inFlightFens[frame])); err != nil {
		return fmt.Errorf("submit command buffer: %w", err)
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		PNext:              nil,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{c.renderFinishedSems[frame]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{c.swapChain.Handle},
		PImageIndices:      []uint32{imgIdx},
		PResults:           nil,
	}
	result = vk.QueuePresent(c.device.PresentQ, &presentInfo)
	c.currentFrameIdx = (frame + 1) % MAX_FRAMES_IN_FLIGHT
	if result == vk.ErrorOutOfDate || result == vk.Suboptimal || c.Win.Resized {
		c.Win.Resized = false
		c.recreateSwapChain()
	} else if result != vk.Success {
		return fmt.Errorf("present image: %w", vk.Error(result))
	}
	return nil
}

func (c *Core) recordDrawCommands(buffer vk.CommandBuffer, imageIdx uint32, f *scene.Frame, cameraSet vk.DescriptorSet, artifactSets []vk.DescriptorSet, meshes []*gpuMesh) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType:            vk.StructureTypeCommandBufferBeginInfo,
		PNext:            nil,
		Flags:            0,
		PInheritanceInfo: nil,
	}
	if err := vk.Error(vk.BeginCommandBuffer(buffer, &beginInfo)); err != nil {
		return fmt.Errorf("begin command buffer: %w", err)
	}

	clear := clearValues(f.ClearColor)
	renderPassInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		PNext:       nil,
		RenderPass:  c.renderPass,
		Framebuffer: c.swapChain.FrameBuffers[imageIdx],
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: c.swapChain.Extend,
		},
		ClearValueCount: uint32(len(clear)),
		PClearValues:    clear,
	}
	vk.CmdBeginRenderPass(buffer, &renderPassInfo, vk.SubpassContentsInline)
	vk.CmdBindPipeline(buffer, vk.PipelineBindPointGraphics, c.pipelines[0])

	vk.CmdSetViewport(buffer, 0, 1, []vk.Viewport{{
		X:        0,
		Y:        0,
		Width:    float32(c.swapChain.Extend.Width),
		Height:   float32(c.swapChain.Extend.Height),
		MinDepth: 0,
		MaxDepth: 1.0,
	}})
	vk.CmdSetScissor(buffer, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: c.swapChain.Extend,
	}})

	// Binding a set leaves the other groups bound, so the camera is bound once for all draws
	vk.CmdBindDescriptorSets(buffer, vk.PipelineBindPointGraphics, c.pipelineLayout, shading.CameraBinding.Group, 1, []vk.DescriptorSet{cameraSet}, 0, nil)
	for i, m := range meshes {
		vk.CmdBindDescriptorSets(buffer, vk.PipelineBindPointGraphics, c.pipelineLayout, shading.ArtifactBinding.Group, 1, []vk.DescriptorSet{artifactSets[i]}, 0, nil)
		vk.CmdBindVertexBuffers(buffer, 0, 1, []vk.Buffer{m.vertices.Handle}, []vk.DeviceSize{0})
		vk.CmdBindIndexBuffer(buffer, m.indices.Handle, 0, vk.IndexTypeUint32)
		vk.CmdDrawIndexed(buffer, m.indexCount, 1, 0, 0, 0)
	}

	vk.CmdEndRenderPass(buffer)
	if err := vk.Error(vk.EndCommandBuffer(buffer)); err != nil {
		return fmt.Errorf("record command buffer: %w", err)
	}
	return nil
}

func (c *Core) recreateSwapChain() {
	w, h := c.Win.DrawableSize()
	if w == 0 || h == 0 {
		// minimized, the next resize event brings us back here
		return
	}
	vk.DeviceWaitIdle(c.device.D)
	c.destroySwapChainAndDerivatives()
	c.swapChain = com.NewSwapChain(c.device, c.Win)
	c.createDepthResources()
	c.createFrameBuffers()
}

package renderer

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"artifact_renderer/model"
	"artifact_renderer/raster"
	"artifact_renderer/shading"
	vm "artifact_renderer/vector_math"
)

// Translation of the stage contract in shading.Layout and the fixed function state in raster.PipelineState
// into their Vulkan counterparts. Nothing in here talks to a device.

func shaderStageFlags(v shading.Visibility) vk.ShaderStageFlags {
	var flags vk.ShaderStageFlagBits
	if v&shading.VisibleVertex != 0 {
		flags |= vk.ShaderStageVertexBit
	}
	if v&shading.VisibleFragment != 0 {
		flags |= vk.ShaderStageFragmentBit
	}
	return vk.ShaderStageFlags(flags)
}

// descriptorSetLayoutBindings lists the bindings of one bind group, which becomes one descriptor set.
func descriptorSetLayoutBindings(l shading.Layout, group uint32) []vk.DescriptorSetLayoutBinding {
	bindings := l.Group(group)
	res := make([]vk.DescriptorSetLayoutBinding, len(bindings))
	for i, b := range bindings {
		res[i] = vk.DescriptorSetLayoutBinding{
			Binding:            b.Binding,
			DescriptorType:     vk.DescriptorTypeUniformBuffer,
			DescriptorCount:    1,
			StageFlags:         shaderStageFlags(b.Visibility),
			PImmutableSamplers: nil,
		}
	}
	return res
}

func vertexFormat(f shading.AttributeFormat) vk.Format {
	switch f {
	case shading.Float32x3:
		return vk.FormatR32g32b32Sfloat
	}
	panic(fmt.Sprintf("no vulkan format for attribute format %d", f))
}

func vertexBindingDescription(l shading.Layout) vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    l.VertexStride,
		InputRate: vk.VertexInputRateVertex,
	}
}

func vertexAttributeDescriptions(l shading.Layout) []vk.VertexInputAttributeDescription {
	res := make([]vk.VertexInputAttributeDescription, len(l.Attributes))
	for i, a := range l.Attributes {
		res[i] = vk.VertexInputAttributeDescription{
			Location: a.Location,
			Binding:  0,
			Format:   vertexFormat(a.Format),
			Offset:   a.Offset,
		}
	}
	return res
}

func cullModeFlags(c raster.CullMode) vk.CullModeFlags {
	switch c {
	case raster.CullBack:
		return vk.CullModeFlags(vk.CullModeBackBit)
	case raster.CullFront:
		return vk.CullModeFlags(vk.CullModeFrontBit)
	}
	return vk.CullModeFlags(vk.CullModeNone)
}

func boolToVk(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

// clipCorrection turns the y-up clip space the stages are written against into Vulkan's y-down one.
// Triangles that are counter clockwise in y-up coordinates stay counter clockwise for the rasterizer.
func clipCorrection(u model.CameraUniform) model.CameraUniform {
	return model.NewCameraUniform(vm.FlipY().Mult(u.ViewProj))
}

func clearValues(c vm.Vec4) []vk.ClearValue {
	color := c.Array()
	return []vk.ClearValue{
		vk.NewClearValue(color[:]),
		vk.NewClearDepthStencil(1, 0),
	}
}

package renderer

//go:generate mkdir -p ../shaders_spv
//go:generate glslc ../shaders/unlit.vert -o ../shaders_spv/unlit.vert.spv
//go:generate glslc ../shaders/unlit.frag -o ../shaders_spv/unlit.frag.spv

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	vk "github.com/goki/vulkan"

	com "artifact_renderer/common"
)

const (
	VertShaderFile = "unlit.vert.spv"
	FragShaderFile = "unlit.frag.spv"

	// glslc names the entry point of every module 'main'. The vs_main and fs_main names of the stage
	// contract are the WGSL spelling of the same two functions.
	glslEntryPoint = "main"
)

// LoadStage reads a '.spv' file and wraps it into a shader module plus the vk.PipelineShaderStageCreateInfo
// binding it to the given stage of a pipeline.
func LoadStage(d vk.Device, path string, stage vk.ShaderStageFlagBits) (vk.ShaderModule, vk.PipelineShaderStageCreateInfo, error) {
	mod, err := readShaderCode(d, path)
	if err != nil {
		return nil, vk.PipelineShaderStageCreateInfo{}, err
	}
	log.Printf("Created shader module from %s", filepath.Base(path))
	return mod, vk.PipelineShaderStageCreateInfo{
		SType:               vk.StructureTypePipelineShaderStageCreateInfo,
		PNext:               nil,
		Flags:               0,
		Stage:               stage,
		Module:              mod,
		PName:               com.TerminatedStr(glslEntryPoint),
		PSpecializationInfo: nil,
	}, nil
}

// DeleteShaderMod discards a shader module. As vk.ShaderModule is only meant as a container to move the shader code
// onto device memory, it can be destroyed right after creating a shader stage when binding to a rendering pipeline.
func DeleteShaderMod(d vk.Device, mod vk.ShaderModule) {
	vk.DestroyShaderModule(d, mod, nil)
}

func readShaderCode(d vk.Device, shaderFile string) (vk.ShaderModule, error) {
	code, err := os.ReadFile(shaderFile)
	if err != nil {
		return nil, fmt.Errorf("read shader: %w", err)
	}
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, fmt.Errorf("shader %s: %d bytes is no SPIR-V word stream", shaderFile, len(code))
	}
	createInfo := &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		PNext:    nil,
		Flags:    0,
		CodeSize: uint64(len(code)),
		PCode:    com.AsUint32Arr(code),
	}
	module, err := com.VKCreateShaderModule(d, createInfo, nil)
	if err != nil {
		return nil, fmt.Errorf("create shader module %s: %w", shaderFile, err)
	}
	return module, nil
}

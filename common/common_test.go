package common

import (
	"encoding/binary"
	"math"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllOfAinB(t *testing.T) {
	assert.True(t, AllOfAinB(nil, []string{"a"}))
	assert.True(t, AllOfAinB([]string{"VK_KHR_swapchain"}, []string{"VK_KHR_surface", "VK_KHR_swapchain"}))
	assert.False(t, AllOfAinB([]string{"VK_KHR_swapchain", "missing"}, []string{"VK_KHR_swapchain"}))
}

func TestTerminatedStrsKeepsInput(t *testing.T) {
	in := []string{"VK_LAYER_KHRONOS_validation", "already\x00"}
	out := TerminatedStrs(in)
	assert.Equal(t, []string{"VK_LAYER_KHRONOS_validation\x00", "already\x00"}, out)
	assert.Equal(t, "VK_LAYER_KHRONOS_validation", in[0])
	assert.Equal(t, "\x00", TerminatedStr(""))
}

func TestAsUint32Arr(t *testing.T) {
	code := make([]byte, 10)
	binary.NativeEndian.PutUint32(code[0:], 0x07230203)
	binary.NativeEndian.PutUint32(code[4:], 42)
	words := AsUint32Arr(code)
	require.Len(t, words, 2)
	assert.Equal(t, uint32(0x07230203), words[0])
	assert.Equal(t, uint32(42), words[1])
	assert.Nil(t, AsUint32Arr([]byte{1, 2}))
}

func family(graphics bool) vk.QueueFamilyProperties {
	var flags vk.QueueFlags
	if graphics {
		flags = vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueTransferBit)
	} else {
		flags = vk.QueueFlags(vk.QueueComputeBit)
	}
	return vk.QueueFamilyProperties{QueueFlags: flags, QueueCount: 1}
}

func TestSelectQueueFamiliesPrefersCombined(t *testing.T) {
	fams := []vk.QueueFamilyProperties{family(true), family(false), family(true)}
	qf, err := selectQueueFamilies(fams, func(i uint32) bool { return i != 0 })
	require.NoError(t, err)
	assert.Equal(t, uint32(2), *qf.GraphicsFamily)
	assert.Equal(t, uint32(2), *qf.PresentFamily)
	assert.Equal(t, []uint32{2}, qf.Unique())
}

func TestSelectQueueFamiliesSplit(t *testing.T) {
	fams := []vk.QueueFamilyProperties{family(true), family(false)}
	qf, err := selectQueueFamilies(fams, func(i uint32) bool { return i == 1 })
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1}, qf.Unique())
	create := qf.toQueueCreateInfos()
	require.Len(t, create, 2)
	assert.Equal(t, uint32(1), create[1].QueueFamilyIndex)
}

func TestSelectQueueFamiliesMissing(t *testing.T) {
	_, err := selectQueueFamilies([]vk.QueueFamilyProperties{family(false)}, func(uint32) bool { return true })
	assert.ErrorIs(t, err, ErrNoGraphicsQueue)
	_, err = selectQueueFamilies([]vk.QueueFamilyProperties{family(true)}, func(uint32) bool { return false })
	assert.ErrorIs(t, err, ErrNoPresentQueue)
}

func TestSelectSwapExtent(t *testing.T) {
	d := SwapChainDetails{}
	d.capabilities.CurrentExtent = vk.Extent2D{Width: 800, Height: 600}
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, d.selectSwapExtent(1024, 768))

	d.capabilities.CurrentExtent = vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32}
	d.capabilities.MinImageExtent = vk.Extent2D{Width: 1, Height: 1}
	d.capabilities.MaxImageExtent = vk.Extent2D{Width: 1000, Height: 1000}
	assert.Equal(t, vk.Extent2D{Width: 1000, Height: 768}, d.selectSwapExtent(1024, 768))
}

func TestSelectSwapSurfaceFormatFallback(t *testing.T) {
	d := SwapChainDetails{formats: []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}}
	assert.Equal(t, vk.FormatB8g8r8a8Unorm, d.selectSwapSurfaceFormat(vk.FormatB8g8r8a8Unorm, vk.ColorSpaceSrgbNonlinear).Format)
	assert.Equal(t, vk.FormatR8g8b8a8Srgb, d.selectSwapSurfaceFormat(vk.FormatR16g16b16a16Sfloat, vk.ColorSpaceSrgbNonlinear).Format)
	assert.Equal(t, vk.PresentModeFifo, d.selectSwapPresentMode(vk.PresentModeMailbox))
}

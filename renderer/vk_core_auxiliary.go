package renderer

import (
	"log"

	vk "github.com/goki/vulkan"

	com "artifact_renderer/common"
)

// Helpers tied to a Core. They differ from the VKS functions in common by assuming the core's device,
// command pool and graphics queue.

func (c *Core) beginSingleTimeCommands() vk.CommandBuffer {
	cmdBuffer, err := com.VKBeginSingleTimeCommands(c.device.D, c.commandPool)
	if err != nil {
		log.Panicf("Failed to create command buffer for single time use: %v", err)
	}
	return cmdBuffer
}

func (c *Core) endSingleTimeCommands(cmdBuf vk.CommandBuffer) {
	err := com.VKEndSingleTimeCommands(c.device.D, c.commandPool, c.device.GraphicsQ, cmdBuf)
	if err != nil {
		log.Panicf("Failed to end single time use command buffer: %v", err)
	}
}

// copyBuffer records the copy into a single use command buffer, submits it and waits for it to finish.
func (c *Core) copyBuffer(src *com.Buffer, dst *com.Buffer, s vk.DeviceSize) {
	cmdBuf := c.beginSingleTimeCommands()
	copyRegions := []vk.BufferCopy{
		{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      s,
		},
	}
	vk.CmdCopyBuffer(cmdBuf, src.Handle, dst.Handle, 1, copyRegions)
	c.endSingleTimeCommands(cmdBuf)
}

package renderer

import (
	"log"

	vk "github.com/goki/vulkan"

	com "artifact_renderer/common"
	"artifact_renderer/model"
	"artifact_renderer/scene"
)

// These functions keep the device side copies of the meshes drawn. Meshes are uploaded once through a
// staging buffer and looked up by draw name afterwards. A draw that brings a different mesh under a known
// name replaces the old upload.

type gpuMesh struct {
	src        *model.Mesh
	vertices   *com.Buffer
	indices    *com.Buffer
	indexCount uint32
}

// meshFor returns the uploaded mesh of a draw, nil for draws without triangles.
func (c *Core) meshFor(d scene.DrawCall) *gpuMesh {
	if d.Mesh == nil || len(d.Mesh.Indices) == 0 || len(d.Mesh.Vertices) == 0 {
		return nil
	}
	if m, ok := c.meshes[d.Name]; ok {
		if m.src == d.Mesh {
			return m
		}
		c.ForgetMesh(d.Name)
	}
	m := &gpuMesh{
		src:        d.Mesh,
		vertices:   c.allocateDeviceLocal(d.Mesh.VertexBytes(), vk.BufferUsageVertexBufferBit),
		indices:    c.allocateDeviceLocal(d.Mesh.IndexBytes(), vk.BufferUsageIndexBufferBit),
		indexCount: uint32(len(d.Mesh.Indices)),
	}
	log.Printf("Uploaded mesh \"%s\": %d vertices, %d triangles", d.Name, len(d.Mesh.Vertices), d.Mesh.TriangleCount())
	c.meshes[d.Name] = m
	return m
}

// allocateDeviceLocal copies payload into a new device local buffer of the given usage via a staging buffer.
func (c *Core) allocateDeviceLocal(payload []byte, usage vk.BufferUsageFlagBits) *com.Buffer {
	bufSize := vk.DeviceSize(len(payload))
	stgBuf := com.CreateBuffer(
		c.device,
		bufSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
	)
	defer com.DestroyBuffer(c.device, stgBuf)
	com.CopyToDeviceBuffer(c.device, stgBuf, payload)

	buf := com.CreateBuffer(
		c.device,
		bufSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit|usage),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	)
	c.copyBuffer(stgBuf, buf, bufSize)
	return buf
}

// ForgetMesh releases the device copy of a mesh. Frames still in flight may read it, so the device is
// drained first.
func (c *Core) ForgetMesh(name string) {
	m, ok := c.meshes[name]
	if !ok {
		return
	}
	vk.DeviceWaitIdle(c.device.D)
	com.DestroyBuffer(c.device, m.vertices)
	com.DestroyBuffer(c.device, m.indices)
	delete(c.meshes, name)
}

// pruneMeshes forgets the meshes of names not drawn in f.
func (c *Core) pruneMeshes(f *scene.Frame) {
	drawn := make(map[string]bool, len(f.Draws))
	for _, d := range f.Draws {
		drawn[d.Name] = true
	}
	for name := range c.meshes {
		if !drawn[name] {
			c.ForgetMesh(name)
		}
	}
}

func (c *Core) clearMeshes() {
	for name := range c.meshes {
		c.ForgetMesh(name)
	}
}

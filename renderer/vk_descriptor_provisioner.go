package renderer

import (
	"log"

	vk "github.com/goki/vulkan"

	com "artifact_renderer/common"
	"artifact_renderer/model"
	"artifact_renderer/shading"
)

// artifactSlotChunk is the minimum number of artifact slots added per frame when draws outgrow them.
const artifactSlotChunk = 16

type uniformSlot struct {
	buf *com.Buffer
	set vk.DescriptorSet
}

type frameDescriptors struct {
	camera    uniformSlot
	artifacts []uniformSlot
}

// DescriptorProvisioner owns one descriptor set layout per bind group and the uniform buffers behind the
// sets. Every frame in flight has its own camera set, bound once per command buffer, and its own list of
// artifact sets, one per draw, so that writing the next frame never touches buffers still read by the GPU.
type DescriptorProvisioner struct {
	dc     *com.Device
	layout shading.Layout

	setLayouts []vk.DescriptorSetLayout
	pools      []vk.DescriptorPool
	frames     []frameDescriptors
}

func NewDescriptorProvisioner(dc *com.Device, layout shading.Layout, framesInFlight int) *DescriptorProvisioner {
	dp := &DescriptorProvisioner{
		dc:     dc,
		layout: layout,
		frames: make([]frameDescriptors, framesInFlight),
	}
	dp.createDescriptorSetLayouts()
	dp.createCameraSets()
	return dp
}

// SetLayouts is indexed by bind group, ready to be handed to the pipeline layout.
func (dp *DescriptorProvisioner) SetLayouts() []vk.DescriptorSetLayout {
	return dp.setLayouts
}

func (dp *DescriptorProvisioner) createDescriptorSetLayouts() {
	dp.setLayouts = make([]vk.DescriptorSetLayout, dp.layout.GroupCount())
	for g := range dp.setLayouts {
		bindings := descriptorSetLayoutBindings(dp.layout, uint32(g))
		layoutInfo := vk.DescriptorSetLayoutCreateInfo{
			SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
			PNext:        nil,
			Flags:        0,
			BindingCount: uint32(len(bindings)),
			PBindings:    bindings,
		}
		dsl, err := com.VKCreateDescriptorSetLayout(dp.dc.D, &layoutInfo, nil)
		if err != nil {
			log.Panicf("Failed to create descriptor set layout for group %d: %v", g, err)
		}
		dp.setLayouts[g] = dsl
	}
	log.Printf("Created %d descriptor set layouts", len(dp.setLayouts))
}

// allocSlots creates count uniform buffers of the binding's bound size together with a fresh pool holding
// exactly their descriptor sets.
func (dp *DescriptorProvisioner) allocSlots(b shading.UniformBinding, count int) []uniformSlot {
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PNext:         nil,
		Flags:         0,
		MaxSets:       uint32(count),
		PoolSizeCount: 1,
		PPoolSizes: []vk.DescriptorPoolSize{{
			Type:            vk.DescriptorTypeUniformBuffer,
			DescriptorCount: uint32(count),
		}},
	}
	pool, err := com.VKCreateDescriptorPool(dp.dc.D, &poolInfo, nil)
	if err != nil {
		log.Panicf("Failed to create descriptor pool: %v", err)
	}
	dp.pools = append(dp.pools, pool)

	layouts := make([]vk.DescriptorSetLayout, count)
	for i := range layouts {
		layouts[i] = dp.setLayouts[b.Group]
	}
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		PNext:              nil,
		DescriptorPool:     pool,
		DescriptorSetCount: uint32(count),
		PSetLayouts:        layouts,
	}
	sets, err := com.VKAllocateDescriptorSets(dp.dc.D, &allocInfo)
	if err != nil {
		log.Panicf("Failed to allocate %d descriptor sets: %v", count, err)
	}

	size := vk.DeviceSize(b.BoundSize)
	slots := make([]uniformSlot, count)
	writes := make([]vk.WriteDescriptorSet, count)
	for i := range slots {
		slots[i] = uniformSlot{buf: com.CreateUniformBuffer(dp.dc, size), set: sets[i]}
		writes[i] = vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			PNext:           nil,
			DstSet:          sets[i],
			DstBinding:      b.Binding,
			DstArrayElement: 0,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			PImageInfo:      nil,
			PBufferInfo: []vk.DescriptorBufferInfo{{
				Buffer: slots[i].buf.Handle,
				Offset: 0,
				Range:  size,
			}},
			PTexelBufferView: nil,
		}
	}
	vk.UpdateDescriptorSets(dp.dc.D, uint32(len(writes)), writes, 0, nil)
	return slots
}

func (dp *DescriptorProvisioner) createCameraSets() {
	slots := dp.allocSlots(shading.CameraBinding, len(dp.frames))
	for i := range dp.frames {
		dp.frames[i].camera = slots[i]
	}
}

// CameraSet writes the camera binding of a frame and returns its set.
func (dp *DescriptorProvisioner) CameraSet(frame int, u model.CameraUniform) vk.DescriptorSet {
	slot := dp.frames[frame].camera
	slot.buf.Write(u.Bytes())
	return slot.set
}

// ArtifactSets writes one artifact binding per draw and returns the sets in draw order, growing the
// frame's slots when needed.
func (dp *DescriptorProvisioner) ArtifactSets(frame int, uniforms []model.ArtifactUniform) []vk.DescriptorSet {
	fd := &dp.frames[frame]
	if grow := slotGrowth(len(fd.artifacts), len(uniforms)); grow > 0 {
		log.Printf("Growing artifact slots of frame %d by %d", frame, grow)
		fd.artifacts = append(fd.artifacts, dp.allocSlots(shading.ArtifactBinding, grow)...)
	}
	sets := make([]vk.DescriptorSet, len(uniforms))
	for i, u := range uniforms {
		fd.artifacts[i].buf.Write(u.Bytes())
		sets[i] = fd.artifacts[i].set
	}
	return sets
}

// slotGrowth is the number of slots to add so that need draws fit, at least doubling and never less than
// artifactSlotChunk.
func slotGrowth(have, need int) int {
	if need <= have {
		return 0
	}
	return max(need-have, have, artifactSlotChunk)
}

func (dp *DescriptorProvisioner) Destroy() {
	for _, fd := range dp.frames {
		com.DestroyBuffer(dp.dc, fd.camera.buf)
		for _, s := range fd.artifacts {
			com.DestroyBuffer(dp.dc, s.buf)
		}
	}
	// Destroying a pool frees its sets
	for _, p := range dp.pools {
		vk.DestroyDescriptorPool(dp.dc.D, p, nil)
	}
	for _, l := range dp.setLayouts {
		vk.DestroyDescriptorSetLayout(dp.dc.D, l, nil)
	}
}

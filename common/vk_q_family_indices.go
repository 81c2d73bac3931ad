package common

import (
	"errors"
	"log"
	"slices"

	vk "github.com/goki/vulkan"
)

var (
	ErrNoGraphicsQueue = errors.New("unable to find graphics capable queue family")
	ErrNoPresentQueue  = errors.New("unable to find present capable queue family for given surface")
)

// QueueFamilyIndices holds the family indices of the queues the renderer submits to. A nil index
// means no such family has been found yet.
type QueueFamilyIndices struct {
	GraphicsFamily *uint32
	PresentFamily  *uint32
}

func findQueueFamilies(pd vk.PhysicalDevice, surf vk.Surface) (*QueueFamilyIndices, error) {
	qFamilies := ReadQueueFamilies(pd)
	return selectQueueFamilies(qFamilies, func(i uint32) bool {
		var presentSupport vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(pd, i, surf, &presentSupport)
		return presentSupport > 0
	})
}

// selectQueueFamilies picks the first graphics capable family and the first family able to present,
// preferring a single family doing both.
func selectQueueFamilies(qFamilies []vk.QueueFamilyProperties, canPresent func(uint32) bool) (*QueueFamilyIndices, error) {
	indices := &QueueFamilyIndices{}
	for i := range qFamilies {
		idx := uint32(i)
		graphics := isBitSet(qFamilies[i], vk.QueueGraphicsBit)
		present := canPresent(idx)
		if graphics && present {
			indices.GraphicsFamily = &idx
			indices.PresentFamily = &idx
			return indices, nil
		}
		if indices.GraphicsFamily == nil && graphics {
			indices.GraphicsFamily = &idx
		}
		if indices.PresentFamily == nil && present {
			indices.PresentFamily = &idx
		}
	}
	if indices.GraphicsFamily == nil {
		return nil, ErrNoGraphicsQueue
	}
	if indices.PresentFamily == nil {
		return nil, ErrNoPresentQueue
	}
	return indices, nil
}

func isBitSet(qFamily vk.QueueFamilyProperties, bit vk.QueueFlagBits) bool {
	return vk.QueueFlagBits(qFamily.QueueFlags)&bit > 0
}

func (q *QueueFamilyIndices) isAllQueuesFound() bool {
	return q.GraphicsFamily != nil && q.PresentFamily != nil
}

// Unique returns the distinct family indices, graphics first.
func (q *QueueFamilyIndices) Unique() []uint32 {
	if !q.isAllQueuesFound() {
		log.Panicf("Failed to access queue family indices, graphics: %v present: %v", q.GraphicsFamily, q.PresentFamily)
	}
	uniq := []uint32{*q.GraphicsFamily}
	if !slices.Contains(uniq, *q.PresentFamily) {
		uniq = append(uniq, *q.PresentFamily)
	}
	return uniq
}

func (q *QueueFamilyIndices) toQueueCreateInfos() []vk.DeviceQueueCreateInfo {
	uniqIndices := q.Unique()
	infos := make([]vk.DeviceQueueCreateInfo, len(uniqIndices))
	for i := range uniqIndices {
		infos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			PNext:            nil,
			Flags:            0,
			QueueFamilyIndex: uniqIndices[i],
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}
	return infos
}

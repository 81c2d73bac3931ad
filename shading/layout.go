package shading

import (
	"errors"
	"fmt"

	"artifact_renderer/model"
)

type Visibility uint8

const (
	VisibleVertex Visibility = 1 << iota
	VisibleFragment
)

func (v Visibility) String() string {
	switch v {
	case VisibleVertex:
		return "vertex"
	case VisibleFragment:
		return "fragment"
	case VisibleVertex | VisibleFragment:
		return "vertex|fragment"
	}
	return fmt.Sprintf("Visibility(%d)", uint8(v))
}

// UniformBinding describes one uniform block the stages read.
type UniformBinding struct {
	Name    string
	Group   uint32
	Binding uint32
	// Size is the number of bytes the shader reads, BoundSize the size of the
	// buffer range a caller has to bind.
	Size       int
	BoundSize  int
	Visibility Visibility
}

type AttributeFormat uint8

const (
	Float32x3 AttributeFormat = iota
)

func (f AttributeFormat) Size() int {
	switch f {
	case Float32x3:
		return 12
	}
	return 0
}

type VertexAttribute struct {
	Name     string
	Location uint32
	Offset   uint32
	Format   AttributeFormat
}

// Layout is the contract between the stages and whoever drives them.
type Layout struct {
	Bindings      []UniformBinding
	Attributes    []VertexAttribute
	VertexStride  uint32
	VertexEntry   string
	FragmentEntry string
}

var (
	CameraBinding = UniformBinding{
		Name:       "camera",
		Group:      0,
		Binding:    0,
		Size:       model.CameraUniformSize,
		BoundSize:  model.CameraUniformSize,
		Visibility: VisibleVertex,
	}
	ArtifactBinding = UniformBinding{
		Name:       "artifact",
		Group:      1,
		Binding:    0,
		Size:       model.ArtifactIntensitySize,
		BoundSize:  model.ArtifactUniformSize,
		Visibility: VisibleFragment,
	}
	PositionAttribute = VertexAttribute{
		Name:     "position",
		Location: model.PositionLocation,
		Offset:   model.PositionOffset,
		Format:   Float32x3,
	}
	ColorAttribute = VertexAttribute{
		Name:     "color",
		Location: model.ColorLocation,
		Offset:   model.ColorOffset,
		Format:   Float32x3,
	}
)

// UnlitLayout returns the layout of the unlit pipeline.
func UnlitLayout() Layout {
	return Layout{
		Bindings:      []UniformBinding{CameraBinding, ArtifactBinding},
		Attributes:    []VertexAttribute{PositionAttribute, ColorAttribute},
		VertexStride:  model.VertexStride,
		VertexEntry:   VertexEntryPoint,
		FragmentEntry: FragmentEntryPoint,
	}
}

// GroupCount is one past the highest bind group index.
func (l Layout) GroupCount() uint32 {
	var n uint32
	for _, b := range l.Bindings {
		if b.Group+1 > n {
			n = b.Group + 1
		}
	}
	return n
}

// Group returns the bindings of bind group g.
func (l Layout) Group(g uint32) []UniformBinding {
	var res []UniformBinding
	for _, b := range l.Bindings {
		if b.Group == g {
			res = append(res, b)
		}
	}
	return res
}

var ErrInvalidLayout = errors.New("invalid pipeline layout")

// Validate checks that the bind groups can be rebound independently and that
// the vertex attributes fit the stride without overlapping.
func (l Layout) Validate() error {
	seen := map[[2]uint32]string{}
	groups := map[uint32]Visibility{}
	for _, b := range l.Bindings {
		key := [2]uint32{b.Group, b.Binding}
		if other, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s and %s share group %d binding %d", ErrInvalidLayout, other, b.Name, b.Group, b.Binding)
		}
		seen[key] = b.Name
		if b.BoundSize < b.Size || b.BoundSize%16 != 0 {
			return fmt.Errorf("%w: %s bound size %d does not cover %d bytes in 16 byte blocks", ErrInvalidLayout, b.Name, b.BoundSize, b.Size)
		}
		if b.Visibility == 0 {
			return fmt.Errorf("%w: %s is not visible to any stage", ErrInvalidLayout, b.Name)
		}
		groups[b.Group] |= b.Visibility
	}
	for g := uint32(0); g < l.GroupCount(); g++ {
		if _, ok := groups[g]; !ok {
			return fmt.Errorf("%w: bind group %d is empty", ErrInvalidLayout, g)
		}
	}

	locations := map[uint32]bool{}
	var used uint32
	for _, a := range l.Attributes {
		if locations[a.Location] {
			return fmt.Errorf("%w: location %d used twice", ErrInvalidLayout, a.Location)
		}
		locations[a.Location] = true
		end := a.Offset + uint32(a.Format.Size())
		if end > l.VertexStride {
			return fmt.Errorf("%w: attribute %s ends at %d past stride %d", ErrInvalidLayout, a.Name, end, l.VertexStride)
		}
		used += uint32(a.Format.Size())
	}
	if used > l.VertexStride {
		return fmt.Errorf("%w: attributes overlap", ErrInvalidLayout)
	}
	if l.VertexEntry == "" || l.FragmentEntry == "" {
		return fmt.Errorf("%w: missing entry point", ErrInvalidLayout)
	}
	return nil
}

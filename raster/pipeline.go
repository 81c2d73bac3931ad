package raster

import (
	"fmt"

	"artifact_renderer/shading"
)

type CullMode uint8

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

// ParseCullMode maps the config spelling none, back or front to a CullMode.
func ParseCullMode(s string) (CullMode, error) {
	switch s {
	case "none":
		return CullNone, nil
	case "back", "":
		return CullBack, nil
	case "front":
		return CullFront, nil
	}
	return CullNone, fmt.Errorf("unknown cull mode %q", s)
}

type Interpolation uint8

const (
	// InterpolatePerspective is what GPUs do by default.
	InterpolatePerspective Interpolation = iota
	// InterpolateLinear interpolates in screen space.
	InterpolateLinear
)

// PipelineState is the fixed function configuration around the two stages.
// Triangles wound counter clockwise in normalized device coordinates face
// front, the depth test passes for strictly smaller depth.
type PipelineState struct {
	Layout        shading.Layout
	Cull          CullMode
	Interpolation Interpolation
	DepthTest     bool
	DepthWrite    bool
}

func DefaultPipelineState() PipelineState {
	return PipelineState{
		Layout:        shading.UnlitLayout(),
		Cull:          CullBack,
		Interpolation: InterpolatePerspective,
		DepthTest:     true,
		DepthWrite:    true,
	}
}

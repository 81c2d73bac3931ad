package scene

import (
	"github.com/chewxy/math32"

	vm "artifact_renderer/vector_math"
)

const (
	DefaultBeaconRadius   = 3
	DefaultPulseBase      = 0.2
	DefaultPulseAmplitude = 0.8
	DefaultPulseRate      = 3
)

// Beacon drives an artifact's intensity. While the viewer stands within
// Radius of Center (measured in the xz plane) the intensity pulses between
// Base and Base+Amplitude, otherwise it rests at Base.
type Beacon struct {
	Center    vm.Vec3
	Radius    float32
	Base      float32
	Amplitude float32
	Rate      float32

	active bool
	phase  float32
}

func NewBeacon(center vm.Vec3) *Beacon {
	return &Beacon{
		Center:    center,
		Radius:    DefaultBeaconRadius,
		Base:      DefaultPulseBase,
		Amplitude: DefaultPulseAmplitude,
		Rate:      DefaultPulseRate,
	}
}

// Update advances the pulse by dt seconds for a viewer at pos and returns
// the intensity to bind.
func (b *Beacon) Update(dt float32, pos vm.Vec3) float32 {
	d := vm.Vec2{X: pos.X - b.Center.X, Y: pos.Z - b.Center.Z}
	if d.Len() < b.Radius {
		b.active = true
		b.phase += dt * b.Rate
		return b.Intensity()
	}
	if b.active {
		b.active = false
		b.phase = 0
	}
	return b.Base
}

func (b *Beacon) Active() bool {
	return b.active
}

func (b *Beacon) Intensity() float32 {
	if !b.active {
		return b.Base
	}
	return b.Base + b.Amplitude*(0.5+0.5*math32.Sin(b.phase))
}

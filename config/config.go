// Package config loads the yaml description of a render run: window, backend,
// camera and the artifacts to draw.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	BackendSoftware = "software"
	BackendVulkan   = "vulkan"

	ShapeCube     = "cube"
	ShapeFloor    = "floor"
	ShapeRing     = "ring"
	ShapeTriangle = "triangle"
	ShapeSTL      = "stl"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Backend    string           `yaml:"backend"`
	Output     string           `yaml:"output,omitempty"`
	Window     WindowConfig     `yaml:"window"`
	Camera     CameraConfig     `yaml:"camera"`
	ClearColor []float32        `yaml:"clearColor,omitempty"`
	Cull       string           `yaml:"cull,omitempty"`
	Artifacts  []ArtifactConfig `yaml:"artifacts"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type CameraConfig struct {
	Projection string      `yaml:"projection,omitempty"`
	Fov        float32     `yaml:"fov,omitempty"`
	Near       float32     `yaml:"near,omitempty"`
	Far        float32     `yaml:"far,omitempty"`
	Position   [3]float32  `yaml:"position"`
	Target     *[3]float32 `yaml:"target,omitempty"`
}

type ArtifactConfig struct {
	Name      string        `yaml:"name"`
	Shape     string        `yaml:"shape"`
	Path      string        `yaml:"path,omitempty"`
	Size      float32       `yaml:"size,omitempty"`
	Count     int           `yaml:"count,omitempty"`
	Radius    float32       `yaml:"radius,omitempty"`
	Color     *[3]float32   `yaml:"color,omitempty"`
	Offset    [3]float32    `yaml:"offset,omitempty"`
	Intensity *float32      `yaml:"intensity,omitempty"`
	Beacon    *BeaconConfig `yaml:"beacon,omitempty"`
}

// BeaconConfig fields are pointers so that an explicit 0 is kept, nil takes
// the default.
type BeaconConfig struct {
	Radius    *float32 `yaml:"radius,omitempty"`
	Base      *float32 `yaml:"base,omitempty"`
	Amplitude *float32 `yaml:"amplitude,omitempty"`
	Rate      *float32 `yaml:"rate,omitempty"`
}

// Default is the beacon demo: a floor with a ring of artifacts around the
// origin that start pulsing when the camera walks into the ring.
func Default() Config {
	one := float32(1)
	c := Config{
		Camera: CameraConfig{
			Position: [3]float32{0, 1.7, 8},
			Target:   &[3]float32{0, 0.5, 0},
		},
		Artifacts: []ArtifactConfig{
			{Name: "floor", Shape: ShapeFloor, Intensity: &one},
			{Name: "ring", Shape: ShapeRing, Beacon: &BeaconConfig{}},
		},
	}
	c.normalize()
	return c
}

func (c *Config) normalize() {
	if c.Backend == "" {
		c.Backend = BackendSoftware
	}
	if c.Window.Title == "" {
		c.Window.Title = "artifact renderer"
	}
	if c.Window.Width == 0 {
		c.Window.Width = 800
	}
	if c.Window.Height == 0 {
		c.Window.Height = 600
	}
	if c.Camera.Projection == "" {
		c.Camera.Projection = "perspective"
	}
	if c.Camera.Fov == 0 {
		c.Camera.Fov = 60
	}
	if c.Camera.Near == 0 {
		c.Camera.Near = 0.1
	}
	if c.Camera.Far == 0 {
		c.Camera.Far = 100
	}
	if len(c.ClearColor) == 0 {
		c.ClearColor = []float32{0.1, 0.1, 0.1, 1}
	}
	if c.Cull == "" {
		c.Cull = "back"
	}
	for i := range c.Artifacts {
		a := &c.Artifacts[i]
		switch a.Shape {
		case ShapeFloor:
			if a.Size == 0 {
				a.Size = 20
			}
			if a.Color == nil {
				a.Color = &[3]float32{0.3, 0.3, 0.3}
			}
		case ShapeRing:
			if a.Count == 0 {
				a.Count = 28
			}
			if a.Radius == 0 {
				a.Radius = 3
			}
		}
		if a.Beacon != nil {
			b := a.Beacon
			defaultTo(&b.Radius, 3)
			defaultTo(&b.Base, 0.2)
			defaultTo(&b.Amplitude, 0.8)
			defaultTo(&b.Rate, 3)
		}
	}
}

func defaultTo(p **float32, v float32) {
	if *p == nil {
		*p = &v
	}
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSoftware, BackendVulkan:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Backend)
	}
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	switch c.Camera.Projection {
	case "perspective", "orthographic":
	default:
		return fmt.Errorf("%w: unknown projection %q", ErrInvalid, c.Camera.Projection)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("%w: camera planes near=%v far=%v", ErrInvalid, c.Camera.Near, c.Camera.Far)
	}
	if len(c.ClearColor) != 4 {
		return fmt.Errorf("%w: clearColor needs 4 components, got %d", ErrInvalid, len(c.ClearColor))
	}
	switch c.Cull {
	case "none", "back", "front":
	default:
		return fmt.Errorf("%w: unknown cull mode %q", ErrInvalid, c.Cull)
	}
	names := map[string]bool{}
	for _, a := range c.Artifacts {
		if a.Name == "" {
			return fmt.Errorf("%w: artifact without name", ErrInvalid)
		}
		if names[a.Name] {
			return fmt.Errorf("%w: artifact %q defined twice", ErrInvalid, a.Name)
		}
		names[a.Name] = true
		switch a.Shape {
		case ShapeCube, ShapeFloor, ShapeRing, ShapeTriangle:
		case ShapeSTL:
			if a.Path == "" {
				return fmt.Errorf("%w: artifact %q needs a path", ErrInvalid, a.Name)
			}
		default:
			return fmt.Errorf("%w: artifact %q has unknown shape %q", ErrInvalid, a.Name, a.Shape)
		}
	}
	return nil
}

// Parse reads a config, fills in defaults and validates it.
func Parse(r io.Reader) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Write stores c as yaml, e.g. to bootstrap a config from Default.
func Write(w io.Writer, c Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

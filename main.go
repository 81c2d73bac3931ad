package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"artifact_renderer/config"
	"artifact_renderer/model"
	"artifact_renderer/preview"
	"artifact_renderer/raster"
	"artifact_renderer/renderer"
	"artifact_renderer/scene"
	vm "artifact_renderer/vector_math"
)

const walkStep = 0.25

// snapshotStep is the simulated frame time of headless runs.
const snapshotStep = float32(1) / 60

var errFrameLimit = errors.New("frame limit reached")

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetOutput(os.Stdout)
	log.Println("Starting artifact renderer")
	log.Printf("Using GoLang: [%s]", runtime.Version())
}

func main() {
	configPath := flag.String("config", "", "scene description (yaml), the beacon demo when empty")
	backend := flag.String("backend", "", "software or vulkan, overrides the config")
	out := flag.String("out", "", "render headless with the software pipeline and write a png")
	frames := flag.Int("frames", 0, "stop after this many frames, 0 runs until the window is closed")
	validation := flag.Bool("validation", false, "enable the Vulkan validation layers")
	shaderDir := flag.String("shaders", "shaders_spv", "directory of the compiled SPIR-V shaders")
	printConfig := flag.Bool("print-config", false, "print the effective config and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *out != "" {
		cfg.Output = *out
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if *printConfig {
		if err := config.Write(os.Stdout, cfg); err != nil {
			log.Fatal(err)
		}
		return
	}

	s, err := scene.FromConfig(cfg)
	if err != nil {
		log.Fatal(err)
	}
	state := raster.DefaultPipelineState()
	state.Cull, err = raster.ParseCullMode(cfg.Cull)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case cfg.Output != "":
		err = runSnapshot(ctx, cfg, s, state, *frames)
	case cfg.Backend == config.BackendVulkan:
		opts := renderer.DefaultOptions()
		opts.Title = cfg.Window.Title
		opts.Width, opts.Height = int32(cfg.Window.Width), int32(cfg.Window.Height)
		opts.Validation = *validation
		opts.ShaderDir = *shaderDir
		opts.State = state
		err = runVulkan(ctx, opts, s, *frames)
	default:
		err = runPreview(ctx, cfg, s, state, *frames)
	}
	if err != nil && !errors.Is(err, errFrameLimit) && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// runSnapshot advances the scene frames times with a fixed step and writes the last frame.
func runSnapshot(ctx context.Context, cfg config.Config, s *scene.Scene, state raster.PipelineState, frames int) error {
	r, err := raster.NewRenderer(cfg.Window.Width, cfg.Window.Height)
	if err != nil {
		return err
	}
	r.State = state
	for i := 0; i < max(frames, 1); i++ {
		if err := s.Render(ctx, r, snapshotStep); err != nil {
			return err
		}
	}
	if err := r.Target.SavePNG(cfg.Output); err != nil {
		return err
	}
	log.Printf("Wrote %dx%d frame to %s", r.Target.Width, r.Target.Height, cfg.Output)
	return nil
}

func runPreview(ctx context.Context, cfg config.Config, s *scene.Scene, state raster.PipelineState, frames int) error {
	r, err := raster.NewRenderer(cfg.Window.Width, cfg.Window.Height)
	if err != nil {
		return err
	}
	r.State = state
	w, err := preview.New(cfg.Window.Title, int32(cfg.Window.Width), int32(cfg.Window.Height), r)
	if err != nil {
		return err
	}
	defer w.Destroy()

	drawn := 0
	return w.Loop(ctx,
		func(event sdl.Event) { onKey(event, s.Camera) },
		func(dt time.Duration) error {
			s.Camera.SetAspect(w.Extent())
			if err := s.Render(ctx, w, float32(dt.Seconds())); err != nil {
				return err
			}
			drawn++
			if frames > 0 && drawn >= frames {
				return errFrameLimit
			}
			return nil
		},
	)
}

func runVulkan(ctx context.Context, opts renderer.Options, s *scene.Scene, frames int) error {
	core, err := renderer.NewRenderCore(opts)
	if err != nil {
		return err
	}
	defer core.Destroy()

	drawn := 0
	return core.Loop(ctx,
		func(event sdl.Event, _ *renderer.Core) { onKey(event, s.Camera) },
		func(dt time.Duration, c *renderer.Core) error {
			s.Camera.SetAspect(c.Extent())
			if err := s.Render(ctx, c, float32(dt.Seconds())); err != nil {
				return err
			}
			drawn++
			if frames > 0 && drawn >= frames {
				return errFrameLimit
			}
			return nil
		},
	)
}

func onKey(event sdl.Event, cam *model.Camera) {
	ev, ok := event.(*sdl.KeyboardEvent)
	if !ok || ev.Type != sdl.KEYDOWN {
		return
	}
	switch ev.Keysym.Sym {
	case sdl.K_1:
		var newProj int
		if cam.ProjectionType == model.CAM_PERSPECTIVE_PROJECTION {
			newProj = model.CAM_ORTHOGRAPHIC_PROJECTION
		} else {
			newProj = model.CAM_PERSPECTIVE_PROJECTION
		}
		log.Printf("Switching projection to -> %d", newProj)
		cam.ProjectionType = newProj
	case sdl.K_2:
		if cam.LookTarget != nil {
			cam.LookDir = cam.Forward()
			cam.ClearTarget()
		} else {
			cam.SetTarget(vm.Vec3{})
		}
	case sdl.K_w:
		cam.Move(cam.Forward().ScalarMul(walkStep))
	case sdl.K_s:
		cam.Move(cam.Forward().ScalarMul(-walkStep))
	case sdl.K_a:
		cam.Move(cam.Right().ScalarMul(-walkStep))
	case sdl.K_d:
		cam.Move(cam.Right().ScalarMul(walkStep))
	}
}

// Package preview shows the software pipeline's target in an SDL window.
package preview

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	com "artifact_renderer/common"
	"artifact_renderer/raster"
	"artifact_renderer/scene"
)

const bytesPerPixel = 4

// Window renders frames with a raster.Renderer and streams the converted target into an SDL texture.
// The target follows the drawable size of the window.
type Window struct {
	Win    *com.Window
	Raster *raster.Renderer

	sdlRenderer *sdl.Renderer
	texture     *sdl.Texture
	texW, texH  int
}

func New(title string, w, h int32, r *raster.Renderer) (*Window, error) {
	p := &Window{
		Win:    com.NewWindow(title, w, h),
		Raster: r,
	}
	var err error
	p.sdlRenderer, err = sdl.CreateRenderer(p.Win.Win, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create sdl renderer: %w", err)
	}
	if err := p.resize(); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

// Extent is the size of the images drawn into.
func (p *Window) Extent() (int, int) {
	return p.Raster.Target.Width, p.Raster.Target.Height
}

func (p *Window) resize() error {
	w, h := p.Win.DrawableSize()
	if w == 0 || h == 0 {
		return nil
	}
	if err := p.Raster.Resize(int(w), int(h)); err != nil {
		return err
	}
	if p.texture != nil && p.texW == int(w) && p.texH == int(h) {
		return nil
	}
	if p.texture != nil {
		p.texture.Destroy()
	}
	tex, err := p.sdlRenderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING, w, h)
	if err != nil {
		return fmt.Errorf("create streaming texture %dx%d: %w", w, h, err)
	}
	p.texture, p.texW, p.texH = tex, int(w), int(h)
	log.Printf("Preview target resized to %dx%d", w, h)
	return nil
}

// RenderFrame draws f on the CPU and presents the result.
func (p *Window) RenderFrame(ctx context.Context, f *scene.Frame) error {
	if p.Win.Resized {
		p.Win.Resized = false
		if err := p.resize(); err != nil {
			return err
		}
	}
	if err := p.Raster.RenderFrame(ctx, f); err != nil {
		return err
	}
	return p.present()
}

func (p *Window) present() error {
	// ABGR8888 is R,G,B,A in memory on little endian machines, the layout of RGBA8
	pixels, pitch, err := p.texture.Lock(nil)
	if err != nil {
		return fmt.Errorf("lock texture: %w", err)
	}
	t := p.Raster.Target
	copyRows(pixels, pitch, t.RGBA8(), t.Width*bytesPerPixel, t.Height)
	p.texture.Unlock()

	if err := p.sdlRenderer.Clear(); err != nil {
		return err
	}
	if err := p.sdlRenderer.Copy(p.texture, nil, nil); err != nil {
		return err
	}
	p.sdlRenderer.Present()
	return nil
}

// copyRows copies rows lines of src into dst when both use their own pitch.
func copyRows(dst []byte, dstPitch int, src []byte, srcPitch int, rows int) {
	n := min(dstPitch, srcPitch)
	for y := 0; y < rows; y++ {
		d, s := y*dstPitch, y*srcPitch
		if d+n > len(dst) || s+n > len(src) {
			return
		}
		copy(dst[d:d+n], src[s:s+n])
	}
}

// Loop polls the window events, hands them to ih and calls dh with the time since the previous frame
// until the window closes or ctx is done.
func (p *Window) Loop(ctx context.Context, ih func(sdl.Event), dh func(time.Duration) error) error {
	last := time.Now()
	p.Win.Close = false
	for !p.Win.Close {
		if err := ctx.Err(); err != nil {
			return err
		}
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			p.Win.HandleEvent(event)
			if ih != nil {
				ih(event)
			}
		}
		if p.Win.Minimized {
			sdl.Delay(50)
			continue
		}
		now := time.Now()
		if err := dh(now.Sub(last)); err != nil {
			return err
		}
		last = now
	}
	return nil
}

func (p *Window) Destroy() {
	if p.texture != nil {
		p.texture.Destroy()
	}
	if p.sdlRenderer != nil {
		p.sdlRenderer.Destroy()
	}
	p.Win.Destroy()
}

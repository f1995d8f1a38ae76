// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package drawsurface

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/drawsurface/frametimer"
	"github.com/gogpu/drawsurface/render"
	"github.com/gogpu/drawsurface/synctex"
)

// Host is the compositor side of a connection: it creates the shared
// texture and schedules frames. It is the subset of
// gpucontext.WindowProvider plus gpucontext.TextureCreator the bridge uses.
type Host interface {
	gpucontext.TextureCreator

	// ScaleFactor returns the ratio of pixels to logical points.
	ScaleFactor() float64

	// RequestRedraw asks the compositor for another frame. It must not
	// block.
	RequestRedraw()
}

// Bridge connects one renderer at a time to a compositor surface.
//
// Bridge is safe for concurrent use.
type Bridge struct {
	factory render.Factory
	timer   *frametimer.Timer

	mu         sync.Mutex
	host       Host
	renderer   render.Renderer
	texture    *synctex.Texture
	resolution Size
	bounds     Size
	frames     uint64

	pointers pointerHandlers
}

// New creates a disconnected bridge.
func New(opts ...Option) *Bridge {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Bridge{
		factory:    o.factory,
		timer:      frametimer.New(frametimer.WithClock(o.clock)),
		resolution: o.resolution,
		bounds:     o.bounds,
	}
}

// CreateContentProvider returns a provider driving this bridge.
// It has no side effects.
func (b *Bridge) CreateContentProvider() *ContentProvider {
	return &ContentProvider{bridge: b}
}

// RenderResolution returns the cached render resolution in pixels.
// It is zero until set or derived by Connect.
func (b *Bridge) RenderResolution() Size {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resolution
}

// SetRenderResolution changes the render resolution. Setting the current
// value does nothing. While connected, the renderer is resized and the
// shared texture is recreated on the next frame.
func (b *Bridge) SetRenderResolution(s Size) error {
	if !s.IsValid() {
		return fmt.Errorf("%w: %v", ErrInvalidResolution, s)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if s == b.resolution {
		return nil
	}
	b.resolution = s
	if b.renderer == nil {
		return nil
	}
	b.renderer.UpdateForRenderResolutionChange(s.Width, s.Height)
	if err := b.texture.Recreate(s.pixels()); err != nil {
		return fmt.Errorf("%w: %w", ErrTextureSync, err)
	}
	Logger().Debug("drawsurface: render resolution changed", "resolution", s.String())
	return nil
}

// WindowBounds returns the window bounds in logical points.
func (b *Bridge) WindowBounds() Size {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bounds
}

// SetWindowBounds records the window bounds used by the next Connect.
// A connected renderer is told about the change.
func (b *Bridge) SetWindowBounds(s Size) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s == b.bounds {
		return
	}
	b.bounds = s
	if b.renderer != nil {
		b.renderer.UpdateForWindowSizeChange(s.Width, s.Height)
	}
}

// Connect creates and initializes a renderer for host and creates the
// shared texture at the render resolution. A live renderer is
// disconnected first. bounds become the new window bounds; without an
// explicit render resolution the bridge uses
// NativeResolution(bounds, host.ScaleFactor()).
//
// If the renderer fails to initialize or the host cannot create the
// texture, Connect returns an error wrapping ErrInitializationFailed and
// the bridge stays disconnected.
func (b *Bridge) Connect(host Host, bounds Size) error {
	if host == nil {
		return ErrNilHost
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.renderer != nil {
		Logger().Info("drawsurface: reconnecting, releasing previous renderer")
		b.releaseLocked()
	}
	b.bounds = bounds

	res := b.resolution
	if !res.IsValid() {
		res = NativeResolution(bounds, host.ScaleFactor())
		if !res.IsValid() {
			return fmt.Errorf("%w: %w: bounds %v", ErrInitializationFailed, ErrInvalidResolution, bounds)
		}
	}

	r := b.factory()
	if r == nil {
		return fmt.Errorf("%w: factory returned nil", ErrInitializationFailed)
	}
	if err := r.Initialize(); err != nil {
		closeRenderer(r)
		return fmt.Errorf("%w: %w", ErrInitializationFailed, err)
	}
	r.UpdateForWindowSizeChange(bounds.Width, bounds.Height)
	r.UpdateForRenderResolutionChange(res.Width, res.Height)

	tex := synctex.New(host)
	if err := primeTexture(tex, r, res); err != nil {
		tex.Destroy()
		closeRenderer(r)
		return fmt.Errorf("%w: %w", ErrInitializationFailed, err)
	}

	b.host = host
	b.renderer = r
	b.texture = tex
	b.resolution = res
	b.frames = 0
	b.timer.Reset()

	Logger().Info("drawsurface: connected",
		"bounds", bounds.String(),
		"resolution", res.String(),
		"scale", host.ScaleFactor())
	return nil
}

// primeTexture creates the host texture at the render resolution, filled
// with the renderer's current output when it already has that size.
func primeTexture(tex *synctex.Texture, r render.Renderer, res Size) error {
	w, h := res.pixels()
	if err := tex.Recreate(w, h); err != nil {
		return err
	}
	var data []byte
	if out := r.Texture(); out != nil && out.Width() == w && out.Height() == h {
		data = out.Pixels()
	} else {
		data = make([]byte, w*h*synctex.BytesPerPixel)
	}
	_, err := tex.Sync(data)
	return err
}

// Disconnect releases the renderer and the shared texture. It is safe to
// call at any time, any number of times.
func (b *Bridge) Disconnect() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.renderer == nil {
		return
	}
	b.releaseLocked()
	Logger().Info("drawsurface: disconnected")
}

func (b *Bridge) releaseLocked() {
	closeRenderer(b.renderer)
	if b.texture != nil {
		b.texture.Destroy()
	}
	b.renderer = nil
	b.texture = nil
	b.host = nil
}

func closeRenderer(r render.Renderer) {
	if c, ok := r.(io.Closer); ok {
		if err := c.Close(); err != nil {
			Logger().Warn("drawsurface: renderer close failed", "err", err)
		}
	}
}

// Connected reports whether a renderer is live.
func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renderer != nil
}

// PrepareResources reports whether the next frame needs drawing. The
// renderer animates every frame, so the content is always dirty.
func (b *Bridge) PrepareResources(presentTargetTime time.Duration) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.renderer == nil {
		return false, ErrNotConnected
	}
	return true, nil
}

// GetTexture produces one frame: it advances the timer, steps and renders
// the renderer, copies the output into the shared texture and asks the host
// for another frame. The returned rectangle covers the whole texture.
//
// The redraw request is issued whenever a renderer was stepped, even if the
// frame failed, so a single bad frame does not stop the loop.
func (b *Bridge) GetTexture(size SizeF) (gpucontext.Texture, RectF, error) {
	b.mu.Lock()
	host := b.host
	tex, rect, err := b.frameLocked(size)
	b.mu.Unlock()

	if host != nil {
		host.RequestRedraw()
	}
	return tex, rect, err
}

func (b *Bridge) frameLocked(size SizeF) (gpucontext.Texture, RectF, error) {
	r := b.renderer
	if r == nil {
		return nil, RectF{}, ErrNotConnected
	}

	b.timer.Update()
	r.Update(b.timer.Total(), b.timer.Delta())
	if err := r.Render(); err != nil {
		return nil, RectF{}, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	out := r.Texture()
	if out == nil {
		return nil, RectF{}, fmt.Errorf("%w: renderer has no output texture", ErrRenderFailed)
	}
	w, h := out.Width(), out.Height()
	if err := b.texture.Recreate(w, h); err != nil {
		return nil, RectF{}, fmt.Errorf("%w: %w", ErrTextureSync, err)
	}
	shared, err := b.texture.Sync(out.Pixels())
	if err != nil {
		return nil, RectF{}, fmt.Errorf("%w: %w", ErrTextureSync, err)
	}

	b.frames++
	if size.IsValid() {
		if sw, sh := size.pixels(); sw != w || sh != h {
			Logger().Debug("drawsurface: surface and texture sizes differ",
				"surface", size.String(), "width", w, "height", h)
		}
	}
	return shared, RectF{Width: float32(w), Height: float32(h)}, nil
}

// Texture returns the renderer's current output, or nil when disconnected.
// The texture is borrowed; it is invalid after Disconnect.
func (b *Bridge) Texture() render.Texture {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.renderer == nil {
		return nil
	}
	return b.renderer.Texture()
}

// Timer returns the frame timer.
func (b *Bridge) Timer() *frametimer.Timer {
	return b.timer
}

// FrameCount returns the number of frames produced since the last Connect.
func (b *Bridge) FrameCount() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames
}

// currentRenderer returns the live renderer for pointer forwarding.
func (b *Bridge) currentRenderer() render.Renderer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renderer
}

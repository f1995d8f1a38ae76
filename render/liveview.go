// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/draw"

	"github.com/gogpu/drawsurface/internal/logx"
)

// ErrNilFeed is returned by Initialize when the renderer has no frame feed.
var ErrNilFeed = errors.New("render: nil FrameFeed")

// LiveviewOption configures a LiveviewRenderer.
type LiveviewOption func(*liveviewOptions)

type liveviewOptions struct {
	hud          bool
	hudSize      float64
	background   gg.RGBA
	interpolator draw.Interpolator
}

func defaultLiveviewOptions() liveviewOptions {
	return liveviewOptions{
		hud:          true,
		hudSize:      14,
		background:   gg.RGB(0, 0, 0),
		interpolator: draw.ApproxBiLinear,
	}
}

// WithHUD enables or disables the status overlay (frame number, fps).
func WithHUD(enabled bool) LiveviewOption {
	return func(o *liveviewOptions) {
		o.hud = enabled
	}
}

// WithHUDSize sets the overlay font size in pixels.
func WithHUDSize(size float64) LiveviewOption {
	return func(o *liveviewOptions) {
		if size > 0 {
			o.hudSize = size
		}
	}
}

// WithBackground sets the letterbox color.
func WithBackground(c gg.RGBA) LiveviewOption {
	return func(o *liveviewOptions) {
		o.background = c
	}
}

// WithInterpolator sets the scaler used to fit frames to the surface.
// The default is draw.ApproxBiLinear; draw.CatmullRom is sharper and slower.
func WithInterpolator(i draw.Interpolator) LiveviewOption {
	return func(o *liveviewOptions) {
		if i != nil {
			o.interpolator = i
		}
	}
}

// LiveviewRenderer draws the latest frame of a FrameFeed, scaled to fit the
// surface while keeping its aspect ratio.
type LiveviewRenderer struct {
	mu   sync.Mutex
	opts liveviewOptions
	feed *FrameFeed

	dc          *gg.Context
	texture     *PixmapTexture
	face        text.Face
	initialized bool
	closed      bool

	// Scaled copy of the last drawn frame, reused while the frame and the
	// target rectangle stay the same.
	scaled     *image.RGBA
	scaledBuf  *gg.ImageBuf
	scaledSeq  uint64
	scaledRect image.Rectangle

	fps    fpsMeter
	frames uint64
}

var _ Renderer = (*LiveviewRenderer)(nil)

// NewLiveviewRenderer creates a renderer reading from feed.
func NewLiveviewRenderer(feed *FrameFeed, opts ...LiveviewOption) *LiveviewRenderer {
	o := defaultLiveviewOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &LiveviewRenderer{opts: o, feed: feed}
}

// Initialize checks the feed and loads the HUD font.
// A font failure disables the HUD rather than failing initialization.
func (r *LiveviewRenderer) Initialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if r.feed == nil {
		return ErrNilFeed
	}
	if r.opts.hud {
		src, err := hudFontSource()
		if err != nil {
			logx.Logger().Warn("render: HUD disabled", "err", err)
		} else {
			r.face = src.Face(r.opts.hudSize)
		}
	}
	r.initialized = true
	return nil
}

// UpdateForWindowSizeChange is a no-op; the liveview ignores window bounds.
func (r *LiveviewRenderer) UpdateForWindowSizeChange(width, height float32) {}

// UpdateForRenderResolutionChange resizes the drawing context.
func (r *LiveviewRenderer) UpdateForRenderResolutionChange(width, height float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	w, h := pixelSize(width, height)
	if r.dc == nil {
		r.dc = gg.NewContext(w, h)
	} else if err := r.dc.Resize(w, h); err != nil {
		logx.Logger().Warn("render: liveview resize failed", "width", w, "height", h, "err", err)
		return
	}
	r.texture = NewPixmapTexture(r.dc.ResizeTarget())
	r.scaledRect = image.Rectangle{}
}

// Update feeds the frame rate meter.
func (r *LiveviewRenderer) Update(total, delta float64) {
	r.mu.Lock()
	r.fps.add(delta)
	r.mu.Unlock()
}

// Render draws the latest frame and the HUD.
func (r *LiveviewRenderer) Render() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.closed:
		return ErrClosed
	case !r.initialized:
		return ErrNotInitialized
	case r.dc == nil:
		return ErrNoResolution
	}

	dc := r.dc
	dc.ClearWithColor(r.opts.background)

	frame := r.feed.Latest()
	if frame != nil && frame.Image != nil {
		if err := r.drawFrame(frame); err != nil {
			return err
		}
	}
	r.frames++

	if r.face != nil {
		r.drawHUD(frame)
	}
	return dc.FlushGPU()
}

func (r *LiveviewRenderer) drawFrame(frame *Frame) error {
	dst := fitRect(frame.Image.Bounds(), r.dc.Width(), r.dc.Height())
	if dst.Empty() {
		return nil
	}
	if r.scaledBuf == nil || frame.Sequence != r.scaledSeq || dst != r.scaledRect {
		size := image.Rect(0, 0, dst.Dx(), dst.Dy())
		if r.scaled == nil || r.scaled.Bounds() != size {
			r.scaled = image.NewRGBA(size)
		}
		r.opts.interpolator.Scale(r.scaled, size, frame.Image, frame.Image.Bounds(), draw.Src, nil)
		r.scaledBuf = gg.ImageBufFromImage(r.scaled)
		if r.scaledBuf == nil {
			return fmt.Errorf("render: convert liveview frame %d", frame.Sequence)
		}
		r.scaledSeq = frame.Sequence
		r.scaledRect = dst
	}
	r.dc.DrawImage(r.scaledBuf, float64(dst.Min.X), float64(dst.Min.Y))
	return nil
}

func (r *LiveviewRenderer) drawHUD(frame *Frame) {
	dc := r.dc
	dc.SetFont(r.face)
	x := r.opts.hudSize * 0.5
	y := r.opts.hudSize * 1.5

	var label string
	if frame == nil {
		label = "waiting for liveview"
	} else {
		label = fmt.Sprintf("LIVE  #%d  %.1f fps", frame.Sequence, r.fps.value())
	}
	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawString(label, x+1, y+1)
	dc.SetRGB(1, 1, 1)
	dc.DrawString(label, x, y)
}

// Texture returns the pixmap of the last frame, or nil before the render
// resolution is set.
func (r *LiveviewRenderer) Texture() Texture {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.texture == nil {
		return nil
	}
	return r.texture
}

// Frames returns the number of completed Render calls.
func (r *LiveviewRenderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Close releases the drawing context. It is idempotent.
func (r *LiveviewRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.texture = nil
	r.scaled = nil
	r.scaledBuf = nil
	if r.dc != nil {
		err := r.dc.Close()
		r.dc = nil
		return err
	}
	return nil
}

// fitRect returns the largest rectangle with src's aspect ratio centered in
// a width x height area.
func fitRect(src image.Rectangle, width, height int) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	if sw <= 0 || sh <= 0 || width <= 0 || height <= 0 {
		return image.Rectangle{}
	}
	w, h := width, sh*width/sw
	if h > height {
		w, h = sw*height/sh, height
	}
	x := (width - w) / 2
	y := (height - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

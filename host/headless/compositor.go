// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package headless

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/drawsurface"
	"github.com/gogpu/drawsurface/frametimer"
	"github.com/gogpu/drawsurface/internal/logx"
)

// Errors returned by the compositor.
var (
	// ErrInvalidData is returned when pixel data does not match the
	// texture size.
	ErrInvalidData = errors.New("headless: invalid pixel data")

	// ErrTextureDestroyed is returned when a destroyed texture is updated.
	ErrTextureDestroyed = errors.New("headless: texture destroyed")

	// ErrForeignTexture is returned when a provider hands back a texture
	// this compositor did not create.
	ErrForeignTexture = errors.New("headless: texture not created by this compositor")

	// ErrNoFrame is returned by Run when no frame was produced.
	ErrNoFrame = errors.New("headless: no frame produced")
)

// DefaultFrameInterval is the clock step between frames, 60 fps.
const DefaultFrameInterval = time.Second / 60

// Frame describes one composed frame.
type Frame struct {
	Index   int
	Texture *Texture
	Rect    drawsurface.RectF
	Elapsed time.Duration
}

// SnapshotFunc observes composed frames. The texture is only valid during
// the call; Clone it to keep it. Returning an error stops Run.
type SnapshotFunc func(Frame) error

// Option configures a Compositor.
type Option func(*options)

type options struct {
	scale    float64
	interval time.Duration
	size     drawsurface.SizeF
	snapshot SnapshotFunc
}

// WithScaleFactor sets the pixel to point ratio reported to the bridge.
func WithScaleFactor(s float64) Option {
	return func(o *options) {
		if s > 0 {
			o.scale = s
		}
	}
}

// WithFrameInterval sets how far the clock advances per frame.
func WithFrameInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithSurfaceSize sets the size passed to GetTexture.
func WithSurfaceSize(s drawsurface.SizeF) Option {
	return func(o *options) {
		o.size = s
	}
}

// WithSnapshot sets a callback run after every composed frame.
func WithSnapshot(fn SnapshotFunc) Option {
	return func(o *options) {
		o.snapshot = fn
	}
}

// Compositor is an in-memory drawsurface host.
type Compositor struct {
	opts  options
	clock *frametimer.ManualClock

	redraws atomic.Uint64
	pending atomic.Bool

	mu      sync.Mutex
	created int
	live    int
}

var _ drawsurface.Host = (*Compositor)(nil)

// NewCompositor creates a compositor whose clock starts at the Unix epoch.
func NewCompositor(opts ...Option) *Compositor {
	o := options{scale: 1, interval: DefaultFrameInterval}
	for _, opt := range opts {
		opt(&o)
	}
	return &Compositor{
		opts:  o,
		clock: frametimer.NewManualClock(time.Unix(0, 0)),
	}
}

// Clock returns the clock advanced by Run. Pass it to the bridge with
// drawsurface.WithClock.
func (c *Compositor) Clock() *frametimer.ManualClock {
	return c.clock
}

// NewTextureFromRGBA implements gpucontext.TextureCreator.
func (c *Compositor) NewTextureFromRGBA(width, height int, data []byte) (gpucontext.Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidData, width, height)
	}
	if len(data) != width*height*4 {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidData, len(data), width*height*4)
	}
	c.mu.Lock()
	c.created++
	c.live++
	c.mu.Unlock()
	return &Texture{
		width:  width,
		height: height,
		data:   append([]byte(nil), data...),
		owner:  c,
	}, nil
}

func (c *Compositor) textureDestroyed() {
	c.mu.Lock()
	c.live--
	c.mu.Unlock()
}

// ScaleFactor returns the configured scale factor.
func (c *Compositor) ScaleFactor() float64 {
	return c.opts.scale
}

// RequestRedraw schedules another frame.
func (c *Compositor) RequestRedraw() {
	c.redraws.Add(1)
	c.pending.Store(true)
}

// Redraws returns the number of redraw requests received.
func (c *Compositor) Redraws() uint64 {
	return c.redraws.Load()
}

// TexturesCreated returns how many textures were created.
func (c *Compositor) TexturesCreated() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.created
}

// LiveTextures returns how many created textures are not destroyed.
func (c *Compositor) LiveTextures() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

// Run connects p, composes up to frames frames and disconnects. Before each
// frame the clock advances by the frame interval. Run stops early when the
// provider did not request a redraw or ctx is done. It returns a copy of
// the last composed texture.
func (c *Compositor) Run(ctx context.Context, p drawsurface.Provider, frames int) (*Texture, error) {
	if err := p.Connect(c); err != nil {
		return nil, err
	}
	defer p.Disconnect()

	log := logx.Logger()
	var last *Texture
	c.pending.Store(true)
	for i := range frames {
		if err := ctx.Err(); err != nil {
			return last, err
		}
		if !c.pending.Swap(false) {
			log.Debug("headless: provider idle, stopping", "frame", i)
			break
		}
		c.clock.Advance(c.opts.interval)

		dirty, err := p.PrepareResources(c.opts.interval)
		if err != nil {
			return last, fmt.Errorf("headless: frame %d: %w", i, err)
		}
		if !dirty && last != nil {
			continue
		}
		tex, rect, err := p.GetTexture(c.opts.size)
		if err != nil {
			return last, fmt.Errorf("headless: frame %d: %w", i, err)
		}
		ht, ok := tex.(*Texture)
		if !ok || ht.owner != c {
			return last, fmt.Errorf("headless: frame %d: %w", i, ErrForeignTexture)
		}
		if c.opts.snapshot != nil {
			f := Frame{Index: i, Texture: ht, Rect: rect, Elapsed: time.Duration(i+1) * c.opts.interval}
			if err := c.opts.snapshot(f); err != nil {
				return last, fmt.Errorf("headless: snapshot %d: %w", i, err)
			}
		}
		last = ht.Clone()
	}
	if last == nil {
		return nil, ErrNoFrame
	}
	log.Info("headless: run finished", "redraws", c.Redraws(), "textures", c.TexturesCreated())
	return last, nil
}

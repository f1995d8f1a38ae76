// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build cgo || windows || darwin

package ebitenhost

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/drawsurface"
	"github.com/gogpu/drawsurface/internal/logx"
)

// Run opens a window hosting b and blocks until the window closes. The
// bridge is connected once the window has a size and disconnected on
// return.
func Run(b *drawsurface.Bridge, opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	w := &window{
		bridge:   b,
		provider: b.CreateContentProvider(),
		opts:     o,
		pointers: newPointerTracker(time.Now),
		pending:  true,
	}
	b.SetManipulationHost(w.pointers)
	defer b.Disconnect()

	ebiten.SetWindowTitle(o.title)
	ebiten.SetWindowSize(o.width, o.height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(o.tps)

	err := ebiten.RunGame(w)
	w.pointers.cancelAll()
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// window is the ebiten game acting as compositor. It implements
// drawsurface.Host.
type window struct {
	bridge   *drawsurface.Bridge
	provider drawsurface.Provider
	opts     options
	pointers *pointerTracker

	mu        sync.Mutex
	pending   bool // redraw requested
	connected bool
	bounds    drawsurface.Size
	current   *windowTexture

	touchIDs []ebiten.TouchID
}

var _ drawsurface.Host = (*window)(nil)

// windowTexture is a shared texture stored in an ebiten image.
type windowTexture struct {
	img           *ebiten.Image
	width, height int
}

func (t *windowTexture) Width() int  { return t.width }
func (t *windowTexture) Height() int { return t.height }

// UpdateData uploads premultiplied RGBA8 pixels, the layout ebiten uses.
func (t *windowTexture) UpdateData(data []byte) error {
	if len(data) != t.width*t.height*4 {
		return fmt.Errorf("ebitenhost: got %d bytes for %dx%d texture", len(data), t.width, t.height)
	}
	t.img.WritePixels(data)
	return nil
}

func (t *windowTexture) Destroy() {
	t.img.Deallocate()
}

// NewTextureFromRGBA implements gpucontext.TextureCreator.
func (w *window) NewTextureFromRGBA(width, height int, data []byte) (gpucontext.Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("ebitenhost: invalid texture size %dx%d", width, height)
	}
	t := &windowTexture{img: ebiten.NewImage(width, height), width: width, height: height}
	if err := t.UpdateData(data); err != nil {
		t.Destroy()
		return nil, err
	}
	return t, nil
}

// ScaleFactor returns the device scale factor of the window's monitor.
func (w *window) ScaleFactor() float64 {
	return ebiten.Monitor().DeviceScaleFactor()
}

// RequestRedraw marks the surface for drawing on the next Draw.
func (w *window) RequestRedraw() {
	w.mu.Lock()
	w.pending = true
	w.mu.Unlock()
}

func (w *window) Update() error {
	w.mu.Lock()
	bounds, connected := w.bounds, w.connected
	w.mu.Unlock()

	if !connected && bounds.IsValid() {
		w.bridge.SetWindowBounds(bounds)
		if err := w.provider.Connect(w); err != nil {
			return err
		}
		w.mu.Lock()
		w.connected = true
		w.pending = true
		w.mu.Unlock()
	}
	w.pollInput()
	return nil
}

func (w *window) pollInput() {
	x, y := ebiten.CursorPosition()
	w.pointers.mouse(float64(x), float64(y),
		inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft))

	w.touchIDs = inpututil.AppendJustPressedTouchIDs(w.touchIDs[:0])
	for _, id := range w.touchIDs {
		tx, ty := ebiten.TouchPosition(id)
		w.pointers.touchDown(int(id), float64(tx), float64(ty))
	}
	w.touchIDs = ebiten.AppendTouchIDs(w.touchIDs[:0])
	for _, id := range w.touchIDs {
		tx, ty := ebiten.TouchPosition(id)
		w.pointers.touchMove(int(id), float64(tx), float64(ty))
	}
	w.touchIDs = inpututil.AppendJustReleasedTouchIDs(w.touchIDs[:0])
	for _, id := range w.touchIDs {
		tx, ty := inpututil.TouchPositionInPreviousTick(id)
		w.pointers.touchUp(int(id), float64(tx), float64(ty))
	}
}

func (w *window) Draw(screen *ebiten.Image) {
	w.mu.Lock()
	draw := w.connected && w.pending
	w.pending = false
	bounds := w.bounds
	w.mu.Unlock()

	if draw {
		w.compose(bounds)
	}

	w.mu.Lock()
	cur := w.current
	w.mu.Unlock()
	if cur == nil {
		return
	}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(sw)/float64(cur.width), float64(sh)/float64(cur.height))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(cur.img, op)
}

func (w *window) compose(bounds drawsurface.Size) {
	log := logx.Logger()
	target := time.Second / time.Duration(w.opts.tps)
	dirty, err := w.provider.PrepareResources(target)
	if err != nil {
		log.Warn("ebitenhost: prepare failed", "err", err)
		return
	}
	if !dirty {
		return
	}
	tex, _, err := w.provider.GetTexture(drawsurface.NativeResolution(bounds, w.ScaleFactor()))
	if err != nil {
		// The frame is skipped; the previous texture stays on screen.
		log.Warn("ebitenhost: frame failed", "err", err)
		return
	}
	wt, ok := tex.(*windowTexture)
	if !ok {
		log.Warn("ebitenhost: unexpected texture type", "type", fmt.Sprintf("%T", tex))
		return
	}
	w.mu.Lock()
	w.current = wt
	w.mu.Unlock()
}

func (w *window) Layout(outsideWidth, outsideHeight int) (int, int) {
	size := drawsurface.Size{Width: float32(outsideWidth), Height: float32(outsideHeight)}

	w.mu.Lock()
	changed := size != w.bounds
	w.bounds = size
	connected := w.connected
	w.mu.Unlock()

	if changed && connected && size.IsValid() {
		w.bridge.SetWindowBounds(size)
		if err := w.bridge.SetRenderResolution(drawsurface.NativeResolution(size, w.ScaleFactor())); err != nil {
			logx.Logger().Warn("ebitenhost: resize failed", "size", size.String(), "err", err)
		}
		w.RequestRedraw()
	}
	return outsideWidth, outsideHeight
}

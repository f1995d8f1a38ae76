// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package lvsim simulates a network camera: a JSON-RPC camera service
// (shooting mode, liveview, stills, zoom, events) and the liveview stream
// it hands out.
//
// Frames are drawn with gg, encoded as JPEG and framed with
// liveview.Writer, so clients see the same bytes a camera would send.
package lvsim

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/gg"
)

// ErrInvalidOptions is returned for non-positive sizes or rates.
var ErrInvalidOptions = errors.New("lvsim: invalid options")

// Options configures the simulated camera.
type Options struct {
	Width   int // frame width in pixels
	Height  int // frame height in pixels
	FPS     int // frames per second streamed to each client
	Quality int // JPEG quality, 1-100

	// MaxFrames ends each stream after this many frames. Zero streams
	// until the client disconnects.
	MaxFrames int
}

// DefaultOptions returns a 640x480, 30 fps camera.
func DefaultOptions() Options {
	return Options{
		Width:   640,
		Height:  480,
		FPS:     30,
		Quality: 80,
	}
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 || o.FPS <= 0 || o.Quality < 1 || o.Quality > 100 || o.MaxFrames < 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidOptions, o)
	}
	return nil
}

// Generator draws numbered test frames. It is safe for concurrent use.
type Generator struct {
	opts Options

	mu sync.Mutex
	dc *gg.Context
}

// NewGenerator creates a generator for opts.
func NewGenerator(opts Options) (*Generator, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Generator{opts: opts, dc: gg.NewContext(opts.Width, opts.Height)}, nil
}

// Options returns the generator's options.
func (g *Generator) Options() Options {
	return g.opts
}

// Frame draws frame n and returns it JPEG encoded.
//
// The picture is a sweeping clock hand over color bars with a ball that
// bounces once per second of stream time, so dropped or repeated frames are
// easy to spot.
func (g *Generator) Frame(n int) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	dc := g.dc
	w, h := float64(g.opts.Width), float64(g.opts.Height)
	t := float64(n) / float64(g.opts.FPS)

	bars := [...]gg.RGBA{
		gg.RGB(0.75, 0.75, 0.75),
		gg.RGB(0.75, 0.75, 0),
		gg.RGB(0, 0.75, 0.75),
		gg.RGB(0, 0.75, 0),
		gg.RGB(0.75, 0, 0.75),
		gg.RGB(0.75, 0, 0),
		gg.RGB(0, 0, 0.75),
	}
	barW := w / float64(len(bars))
	for i, c := range bars {
		dc.SetColor(c)
		dc.DrawRectangle(float64(i)*barW, 0, barW+1, h)
		if err := dc.Fill(); err != nil {
			return nil, err
		}
	}

	cx, cy := w/2, h/2
	r := math.Min(w, h) * 0.4
	angle := t*2*math.Pi/10 - math.Pi/2
	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(math.Max(2, r/20))
	dc.MoveTo(cx, cy)
	dc.LineTo(cx+r*math.Cos(angle), cy+r*math.Sin(angle))
	if err := dc.Stroke(); err != nil {
		return nil, err
	}

	phase := t - math.Floor(t)
	ballY := h - (h*0.8)*4*phase*(1-phase) - r/8
	dc.SetRGB(1, 0.3, 0.1)
	dc.DrawCircle(w*0.1+(w*0.8)*phase, ballY, r/8)
	if err := dc.Fill(); err != nil {
		return nil, err
	}

	if err := dc.FlushGPU(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := dc.ResizeTarget().EncodeJPEG(&buf, g.opts.Quality); err != nil {
		return nil, fmt.Errorf("lvsim: encode frame %d: %w", n, err)
	}
	return buf.Bytes(), nil
}

// Close releases the drawing context.
func (g *Generator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dc.Close()
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package drawsurface

import (
	"github.com/gogpu/drawsurface/frametimer"
	"github.com/gogpu/drawsurface/render"
)

// Option configures a Bridge during creation.
//
// Example:
//
//	bridge := drawsurface.New(
//	    drawsurface.WithRenderer(factory),
//	    drawsurface.WithRenderResolution(drawsurface.Size{Width: 1280, Height: 720}),
//	)
type Option func(*options)

type options struct {
	factory    render.Factory
	clock      frametimer.Clock
	resolution Size
	bounds     Size
}

func defaultOptions() options {
	return options{
		factory: func() render.Renderer { return render.NewCubeRenderer() },
		clock:   frametimer.SystemClock(),
	}
}

// WithRenderer sets the factory called on every Connect.
// The default renders a spinning cube. nil keeps the default.
func WithRenderer(f render.Factory) Option {
	return func(o *options) {
		if f != nil {
			o.factory = f
		}
	}
}

// WithClock sets the time source of the frame timer.
// Headless hosts pass a frametimer.ManualClock to step time explicitly.
func WithClock(c frametimer.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithRenderResolution sets the initial render resolution in pixels.
// Invalid sizes are ignored; the resolution is then derived at connect time.
func WithRenderResolution(s Size) Option {
	return func(o *options) {
		if s.IsValid() {
			o.resolution = s
		}
	}
}

// WithWindowBounds sets the initial window bounds in logical points.
func WithWindowBounds(s Size) Option {
	return func(o *options) {
		o.bounds = s
	}
}

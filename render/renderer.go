// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"

	"github.com/gogpu/gpucontext"
)

// Common errors returned by renderers.
var (
	// ErrNotInitialized is returned when Render runs before Initialize.
	ErrNotInitialized = errors.New("render: renderer not initialized")

	// ErrNoResolution is returned when Render runs before a render
	// resolution was set.
	ErrNoResolution = errors.New("render: render resolution not set")

	// ErrClosed is returned when a closed renderer is used.
	ErrClosed = errors.New("render: renderer closed")
)

// MaxFrameDelta is the largest step, in seconds, that the bundled
// renderers integrate in one Update. Longer gaps (a suspended app, a
// debugger pause) are treated as this long.
const MaxFrameDelta = 0.1

// Renderer produces one texture per frame for a drawing surface.
//
// Sizes are float32 because hosts report them in fractional logical
// points; renderers round to whole pixels.
//
// Renderers are driven from a single goroutine by the bridge. Methods of
// optional interfaces (PointerInput) may be called from the host's input
// goroutine and must synchronize with Render themselves.
type Renderer interface {
	// Initialize prepares resources that do not depend on size.
	Initialize() error

	// UpdateForWindowSizeChange reports the host window bounds in
	// logical points.
	UpdateForWindowSizeChange(width, height float32)

	// UpdateForRenderResolutionChange sets the output size in pixels.
	UpdateForRenderResolutionChange(width, height float32)

	// Update advances simulation state. total and delta are seconds.
	Update(total, delta float64)

	// Render draws the current state into the output texture.
	Render() error

	// Texture returns the output of the most recent Render. The
	// renderer keeps ownership; callers must not retain it past
	// the renderer's lifetime.
	Texture() Texture
}

// Texture is a renderer's output: a texture whose RGBA8 pixels are
// readable on the CPU.
type Texture interface {
	gpucontext.Texture

	// Pixels returns premultiplied RGBA8 data, Width*Height*4 bytes.
	Pixels() []byte
}

// PointerInput is implemented by renderers that react to pointer events.
// Coordinates are in window logical points.
type PointerInput interface {
	HandlePointer(ev gpucontext.PointerEvent)
}

// Factory creates a renderer. The bridge calls it on every connect.
type Factory func() Renderer

// clampDelta bounds a frame step to [0, MaxFrameDelta].
func clampDelta(delta float64) float64 {
	switch {
	case delta < 0:
		return 0
	case delta > MaxFrameDelta:
		return MaxFrameDelta
	default:
		return delta
	}
}

// pixelSize rounds a float size to whole pixels, at least one.
func pixelSize(width, height float32) (int, int) {
	w := int(width + 0.5)
	h := int(height + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

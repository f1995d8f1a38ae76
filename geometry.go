// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package drawsurface

import (
	"fmt"
	"math"
)

// Size is a width and height. Render resolutions are in pixels, window
// bounds in logical points.
type Size struct {
	Width  float32
	Height float32
}

// SizeF is the surface size a compositor passes to GetTexture.
type SizeF = Size

// MaxDimension bounds each side of a valid Size. It matches the largest
// 2D texture most GPUs accept.
const MaxDimension = 16384

// IsValid reports whether both dimensions are positive, finite and at most
// MaxDimension.
func (s Size) IsValid() bool {
	return s.Width > 0 && s.Height > 0 &&
		s.Width <= MaxDimension && s.Height <= MaxDimension
}

// String implements fmt.Stringer.
func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}

// pixels rounds s to whole pixels, at least one in each dimension.
func (s Size) pixels() (int, int) {
	w := int(math.Round(float64(s.Width)))
	h := int(math.Round(float64(s.Height)))
	return max(w, 1), max(h, 1)
}

// RectF is a rectangle in texture pixels.
type RectF struct {
	X      float32
	Y      float32
	Width  float32
	Height float32
}

// NativeResolution converts window bounds in logical points to pixels,
// rounding to the nearest pixel. A non-positive scale is treated as 1.
func NativeResolution(bounds Size, scale float64) Size {
	if scale <= 0 {
		scale = 1
	}
	return Size{
		Width:  float32(math.Round(float64(bounds.Width) * scale)),
		Height: float32(math.Round(float64(bounds.Height) * scale)),
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"

	"github.com/gogpu/gg"
	"github.com/gogpu/gputypes"
)

// PixmapTexture exposes a gg pixmap as a Texture.
//
// It does not copy: the pixels change when the owning renderer draws
// the next frame.
type PixmapTexture struct {
	pm *gg.Pixmap
}

// NewPixmapTexture wraps pm.
func NewPixmapTexture(pm *gg.Pixmap) *PixmapTexture {
	return &PixmapTexture{pm: pm}
}

// Width returns the texture width in pixels.
func (t *PixmapTexture) Width() int {
	return t.pm.Width()
}

// Height returns the texture height in pixels.
func (t *PixmapTexture) Height() int {
	return t.pm.Height()
}

// Format returns the pixel format of Pixels.
func (t *PixmapTexture) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Pixels returns the premultiplied RGBA8 data.
func (t *PixmapTexture) Pixels() []byte {
	return t.pm.Data()
}

// Stride returns the number of bytes per row.
func (t *PixmapTexture) Stride() int {
	return t.pm.Width() * 4
}

// Image returns a copy of the pixels as an *image.RGBA.
func (t *PixmapTexture) Image() *image.RGBA {
	return t.pm.ToImage()
}

// Pixmap returns the wrapped pixmap.
func (t *PixmapTexture) Pixmap() *gg.Pixmap {
	return t.pm
}

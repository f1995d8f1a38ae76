// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package headless

import (
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Texture is a CPU texture owned by a Compositor.
type Texture struct {
	mu            sync.RWMutex
	width, height int
	data          []byte
	premultiplied bool
	destroyed     bool
	updates       int
	owner         *Compositor
}

var (
	_ gpucontext.Texture        = (*Texture)(nil)
	_ gpucontext.TextureUpdater = (*Texture)(nil)
)

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.height }

// Format returns the pixel format, always RGBA8.
func (t *Texture) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// UpdateData replaces the pixel data.
func (t *Texture) UpdateData(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return ErrTextureDestroyed
	}
	if len(data) != len(t.data) {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidData, len(data), len(t.data))
	}
	copy(t.data, data)
	t.updates++
	return nil
}

// SetPremultiplied records whether the data holds premultiplied alpha.
func (t *Texture) SetPremultiplied(p bool) {
	t.mu.Lock()
	t.premultiplied = p
	t.mu.Unlock()
}

// Premultiplied reports whether the data holds premultiplied alpha.
func (t *Texture) Premultiplied() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.premultiplied
}

// Destroy releases the texture. It is idempotent.
func (t *Texture) Destroy() {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return
	}
	t.destroyed = true
	t.mu.Unlock()
	if t.owner != nil {
		t.owner.textureDestroyed()
	}
}

// Destroyed reports whether Destroy was called.
func (t *Texture) Destroyed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.destroyed
}

// Updates returns how many times UpdateData succeeded.
func (t *Texture) Updates() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.updates
}

// Pixels returns a copy of the RGBA8 data.
func (t *Texture) Pixels() []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]byte(nil), t.data...)
}

// Clone returns an independent copy that is not tracked by the compositor.
func (t *Texture) Clone() *Texture {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return &Texture{
		width:         t.width,
		height:        t.height,
		data:          append([]byte(nil), t.data...),
		premultiplied: t.premultiplied,
	}
}

// Pixmap copies the texture into a gg pixmap.
func (t *Texture) Pixmap() *gg.Pixmap {
	pm := gg.NewPixmap(t.width, t.height)
	t.mu.RLock()
	copy(pm.Data(), t.data)
	t.mu.RUnlock()
	return pm
}

// Image returns the texture as an *image.RGBA.
func (t *Texture) Image() *image.RGBA {
	return t.Pixmap().ToImage()
}

// SavePNG writes the texture to a PNG file.
func (t *Texture) SavePNG(path string) error {
	return t.Pixmap().SavePNG(path)
}

// EncodePNG writes the texture as PNG to w.
func (t *Texture) EncodePNG(w io.Writer) error {
	return t.Pixmap().EncodePNG(w)
}

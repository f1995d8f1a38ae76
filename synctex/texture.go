// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package synctex

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/drawsurface/internal/logx"
)

// Common errors returned by Texture operations.
var (
	// ErrNilCreator is returned when no TextureCreator is available.
	ErrNilCreator = errors.New("synctex: nil TextureCreator")

	// ErrInvalidDimensions is returned when width or height is not positive.
	ErrInvalidDimensions = errors.New("synctex: invalid dimensions")

	// ErrSizeMismatch is returned when pixel data does not match the texture size.
	ErrSizeMismatch = errors.New("synctex: pixel data size mismatch")

	// ErrDestroyed is returned when the texture was destroyed.
	ErrDestroyed = errors.New("synctex: texture destroyed")
)

// BytesPerPixel is the stride of the RGBA8 data accepted by Sync.
const BytesPerPixel = 4

// textureDestroyer matches the Destroy method of host textures.
type textureDestroyer interface {
	Destroy()
}

// Texture is the compositor-side copy of a renderer's output.
type Texture struct {
	creator   gpucontext.TextureCreator
	current   gpucontext.Texture
	width     int
	height    int
	pending   bool // size changed, create a new texture on next Sync
	destroyed bool
	uploads   uint64
}

// New creates an empty synchronized texture bound to creator.
// No host texture exists until the first Sync.
func New(creator gpucontext.TextureCreator) *Texture {
	return &Texture{creator: creator}
}

// Recreate sets the size of the shared texture. The host texture is
// rebuilt on the next Sync; the current one stays valid until then.
// Calling Recreate with the current size and a live texture is a no-op.
func (t *Texture) Recreate(width, height int) error {
	if t.destroyed {
		return ErrDestroyed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	if t.current != nil && !t.pending && t.width == width && t.height == height {
		return nil
	}
	t.width = width
	t.height = height
	t.pending = true
	return nil
}

// Sync copies data into the shared texture and returns the handle to give
// the compositor. data must hold width*height RGBA8 pixels.
func (t *Texture) Sync(data []byte) (gpucontext.Texture, error) {
	if t.destroyed {
		return nil, ErrDestroyed
	}
	if t.creator == nil {
		return nil, ErrNilCreator
	}
	if t.width <= 0 || t.height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, t.width, t.height)
	}
	if want := t.width * t.height * BytesPerPixel; len(data) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, len(data), want)
	}

	if t.pending || t.current == nil {
		tex, err := t.creator.NewTextureFromRGBA(t.width, t.height, data)
		if err != nil {
			return nil, fmt.Errorf("synctex: NewTextureFromRGBA failed: %w", err)
		}
		// gg pixmaps hold premultiplied alpha.
		if pt, ok := tex.(interface{ SetPremultiplied(bool) }); ok {
			pt.SetPremultiplied(true)
		}
		old := t.current
		t.current = tex
		t.pending = false
		t.uploads++
		release(old)
		logx.Logger().Debug("synctex: texture created", "width", t.width, "height", t.height)
		return t.current, nil
	}

	if updater, ok := t.current.(gpucontext.TextureUpdater); ok {
		if err := updater.UpdateData(data); err != nil {
			return nil, fmt.Errorf("synctex: texture update failed: %w", err)
		}
	}
	t.uploads++
	return t.current, nil
}

// Current returns the shared texture without uploading. nil before the
// first Sync or after Destroy.
func (t *Texture) Current() gpucontext.Texture {
	return t.current
}

// Size returns the configured dimensions.
func (t *Texture) Size() (width, height int) {
	return t.width, t.height
}

// Uploads returns how many times pixel data reached the host.
func (t *Texture) Uploads() uint64 {
	return t.uploads
}

// Destroy releases the host texture. It is idempotent.
func (t *Texture) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	release(t.current)
	t.current = nil
	t.creator = nil
}

func release(tex gpucontext.Texture) {
	if tex == nil {
		return
	}
	if d, ok := tex.(textureDestroyer); ok {
		d.Destroy()
	}
}

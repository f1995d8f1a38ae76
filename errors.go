// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package drawsurface

import "errors"

// Errors returned by Bridge and ContentProvider operations.
var (
	// ErrNotConnected is returned by frame operations while no renderer
	// is connected.
	ErrNotConnected = errors.New("drawsurface: not connected")

	// ErrInitializationFailed is returned by Connect when the renderer
	// could not be created or initialized.
	ErrInitializationFailed = errors.New("drawsurface: renderer initialization failed")

	// ErrInvalidResolution is returned for zero or negative dimensions.
	ErrInvalidResolution = errors.New("drawsurface: invalid resolution")

	// ErrRenderFailed is returned by GetTexture when the renderer fails
	// to produce a frame.
	ErrRenderFailed = errors.New("drawsurface: render failed")

	// ErrTextureSync is returned by GetTexture when the renderer output
	// could not be copied into the shared texture.
	ErrTextureSync = errors.New("drawsurface: texture sync failed")

	// ErrNilHost is returned by Connect when the host is nil.
	ErrNilHost = errors.New("drawsurface: nil host")
)

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package synctex manages a texture shared between a renderer and a host
// compositor.
//
// The renderer draws into CPU memory. A synchronized Texture owns the
// compositor-side copy: it is created through the host's
// gpucontext.TextureCreator, refreshed with gpucontext.TextureUpdater each
// frame, and replaced when the render resolution changes.
//
//	tex := synctex.New(host)
//	if err := tex.Recreate(800, 600); err != nil { ... }
//	handle, err := tex.Sync(rgba)
//	defer tex.Destroy()
//
// # Lifetime
//
// A texture handed to the compositor may still be referenced by in-flight
// work. Recreate therefore destroys the previous texture only after its
// replacement exists. Destroy releases everything and is idempotent.
//
// Texture is not safe for concurrent use; the bridge serializes access.
package synctex

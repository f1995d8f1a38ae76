// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render defines the renderer contract used by a drawing surface
// bridge and ships the renderers that run on it.
//
// # Lifecycle
//
// The bridge drives a Renderer through a fixed call sequence:
//
//	r.Initialize()
//	r.UpdateForWindowSizeChange(boundsW, boundsH)
//	r.UpdateForRenderResolutionChange(resW, resH)
//	for each frame {
//	    r.Update(total, delta)
//	    r.Render()
//	    tex := r.Texture()
//	}
//
// The bridge never looks inside a renderer. Any type implementing this
// sequence can replace the bundled ones, which is how tests substitute
// recording doubles.
//
// # Renderers
//
//   - CubeRenderer: a shaded spinning cube, rotated by pointer drags
//   - LiveviewRenderer: the most recent camera liveview frame from a FrameFeed
//
// Both draw with gg into a CPU pixmap exposed as a PixmapTexture.
//
// # Registry
//
// Renderers are looked up by name ("cube", "liveview") through a Registry so
// that commands can pick one from a flag.
package render

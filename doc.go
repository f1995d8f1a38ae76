// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package drawsurface hosts a frame-producing renderer on a drawing surface
// owned by a compositor.
//
// # Overview
//
// A Bridge owns the connection between a compositor and one renderer. The
// compositor drives it through a Provider, usually the ContentProvider
// returned by Bridge.CreateContentProvider:
//
//	compositor                 Bridge                      renderer
//	----------                 ------                      --------
//	Connect(host)  ─────────▶  create, Initialize  ─────▶  render.Renderer
//	PrepareResources ───────▶  always dirty
//	GetTexture     ─────────▶  timer.Update
//	                           Update(total, delta) ─────▶
//	                           Render               ─────▶
//	                           sync shared texture  ◀────  Texture()
//	               ◀─────────  host.RequestRedraw
//	Disconnect     ─────────▶  Close, destroy texture
//
// Each GetTexture advances the frame timer, steps and renders the renderer,
// copies its output into a texture created through the host's
// gpucontext.TextureCreator, asks the host for another frame, and returns
// that shared texture.
//
// # Quick Start
//
//	bridge := drawsurface.New(
//	    drawsurface.WithRenderer(func() render.Renderer { return render.NewCubeRenderer() }),
//	)
//	bridge.SetWindowBounds(drawsurface.Size{Width: 800, Height: 600})
//	provider := bridge.CreateContentProvider()
//
//	if err := provider.Connect(host); err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Disconnect()
//
//	// once per compositor frame:
//	tex, rect, err := provider.GetTexture(size)
//
// # Pointer Input
//
// SetManipulationHost subscribes to a gpucontext.PointerEventSource. Events
// are sorted into pressed, moved and released and delivered to the handlers
// registered with OnPointerPressed, OnPointerMoved and OnPointerReleased.
// Renderers implementing render.PointerInput receive every event as well.
//
// # Resolution
//
// The render resolution is in pixels, the window bounds in logical points.
// Hosts that do not set a resolution get NativeResolution(bounds, scale) at
// connect time. SetRenderResolution may be called at any time; a change
// while connected resizes the renderer and recreates the shared texture.
//
// # Thread Safety
//
// Connect, Disconnect, GetTexture and the resolution setters serialize on
// one mutex, so a host may disconnect from another goroutine while a frame
// is being produced. Pointer handlers run on the goroutine of the pointer
// source.
//
// # Logging
//
// drawsurface is silent by default. Call SetLogger to enable output.
package drawsurface

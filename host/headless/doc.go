// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package headless is an in-memory compositor for drawsurface.
//
// A Compositor implements drawsurface.Host with CPU textures and steps a
// drawsurface.Provider through a fixed number of frames on a manual clock.
// Frame timing is therefore exact and reproducible, which makes it the host
// of choice for tests, thumbnails and batch rendering.
//
//	comp := headless.NewCompositor(headless.WithFrameInterval(time.Second / 60))
//	bridge := drawsurface.New(drawsurface.WithClock(comp.Clock()))
//	bridge.SetWindowBounds(drawsurface.Size{Width: 640, Height: 480})
//
//	last, err := comp.Run(ctx, bridge.CreateContentProvider(), 120)
//	if err != nil {
//	    return err
//	}
//	err = last.SavePNG("frame.png")
//
// The compositor honors redraw requests like an on-demand host: after the
// first frame it only draws again when the provider asked for it.
package headless

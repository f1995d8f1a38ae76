// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package ebitenhost hosts a drawsurface.Bridge in a desktop window.
//
// The window is an ebiten game acting as the compositor. Each Draw asks the
// bridge's content provider for a texture and blits it to the screen. The
// shared texture lives in an ebiten.Image, so uploads go straight to the
// GPU through WritePixels. Mouse and touch input are translated into
// gpucontext.PointerEvent values and fed to the bridge as its
// manipulation host.
//
// Resizing the window updates the bridge's window bounds and render
// resolution.
//
// Window mode needs cgo on Linux and the BSDs.
package ebitenhost

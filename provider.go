// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package drawsurface

import (
	"time"

	"github.com/gogpu/gpucontext"
)

// Provider is the callback interface a compositor drives once connected.
// Every method returns a nil error on success; a failed frame is skipped.
type Provider interface {
	Connect(host Host) error
	Disconnect()
	PrepareResources(presentTargetTime time.Duration) (dirty bool, err error)
	GetTexture(size SizeF) (gpucontext.Texture, RectF, error)
}

// ContentProvider adapts a Bridge to Provider. Connect uses the bridge's
// current window bounds.
type ContentProvider struct {
	bridge *Bridge
}

var _ Provider = (*ContentProvider)(nil)

// Bridge returns the wrapped bridge.
func (p *ContentProvider) Bridge() *Bridge {
	return p.bridge
}

// Connect connects the bridge to host with the bridge's window bounds.
func (p *ContentProvider) Connect(host Host) error {
	return p.bridge.Connect(host, p.bridge.WindowBounds())
}

// Disconnect disconnects the bridge.
func (p *ContentProvider) Disconnect() {
	p.bridge.Disconnect()
}

// PrepareResources forwards to Bridge.PrepareResources.
func (p *ContentProvider) PrepareResources(presentTargetTime time.Duration) (bool, error) {
	return p.bridge.PrepareResources(presentTargetTime)
}

// GetTexture forwards to Bridge.GetTexture.
func (p *ContentProvider) GetTexture(size SizeF) (gpucontext.Texture, RectF, error) {
	return p.bridge.GetTexture(size)
}

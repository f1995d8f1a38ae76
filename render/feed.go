// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"sync/atomic"
	"time"
)

// Frame is one decoded liveview image.
type Frame struct {
	Image    image.Image
	Sequence uint64
	Received time.Time
}

// FrameFeed holds the most recent liveview frame. Producers push from any
// goroutine; renderers read the latest frame when they draw. Older frames
// are dropped, never queued.
type FrameFeed struct {
	latest  atomic.Pointer[Frame]
	seq     atomic.Uint64
	dropped atomic.Uint64
	now     func() time.Time
}

// NewFrameFeed creates an empty feed.
func NewFrameFeed() *FrameFeed {
	return &FrameFeed{now: time.Now}
}

// PushJPEG decodes data and publishes it as the latest frame.
func (f *FrameFeed) PushJPEG(data []byte) error {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		f.dropped.Add(1)
		return fmt.Errorf("render: decode liveview frame: %w", err)
	}
	f.PushImage(img)
	return nil
}

// PushImage publishes img as the latest frame.
func (f *FrameFeed) PushImage(img image.Image) {
	fr := &Frame{
		Image:    img,
		Sequence: f.seq.Add(1),
		Received: f.now(),
	}
	f.latest.Store(fr)
}

// Latest returns the most recent frame, or nil if none arrived yet.
func (f *FrameFeed) Latest() *Frame {
	return f.latest.Load()
}

// Count returns how many frames were published.
func (f *FrameFeed) Count() uint64 {
	return f.seq.Load()
}

// Dropped returns how many pushed frames failed to decode.
func (f *FrameFeed) Dropped() uint64 {
	return f.dropped.Load()
}

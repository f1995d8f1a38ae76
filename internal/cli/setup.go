// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package cli holds the renderer and logging setup shared by the commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gogpu/drawsurface"
	"github.com/gogpu/drawsurface/camera"
	"github.com/gogpu/drawsurface/liveview"
	"github.com/gogpu/drawsurface/render"
)

// ErrNoLiveviewFrame is returned when a liveview stream produced no frame
// within the wait time.
var ErrNoLiveviewFrame = errors.New("cli: no liveview frame received")

// SetupLogging enables text logging to stderr. verbose selects debug level.
func SetupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	drawsurface.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// stopTimeout bounds the stopLiveview call made by Close.
const stopTimeout = 2 * time.Second

// Renderers builds renderer factories by name. "cube" is always
// available; "liveview" draws frames from the feed, which StartLiveview
// fills from a camera stream.
type Renderers struct {
	Registry *render.Registry
	Feed     *render.FrameFeed

	mu        sync.Mutex
	camera    *camera.Client
	client    *liveview.Client
	first     chan struct{}
	firstOnce sync.Once
}

// NewRenderers registers the built-in renderers.
func NewRenderers() *Renderers {
	r := &Renderers{
		Registry: render.NewRegistry(),
		Feed:     render.NewFrameFeed(),
		first:    make(chan struct{}),
	}
	r.Registry.Register("liveview", func() render.Renderer {
		return render.NewLiveviewRenderer(r.Feed)
	})
	return r
}

// Factory returns the factory registered under name.
func (r *Renderers) Factory(name string) (render.Factory, error) {
	return r.Registry.Factory(name)
}

// StartLiveview asks the camera at endpoint for its liveview URL and
// streams it into the feed until Close. It fails with
// liveview.ErrAlreadyOpen while an earlier stream is still open; once that
// stream has ended it may be called again.
func (r *Renderers) StartLiveview(ctx context.Context, endpoint string, opts ...liveview.ClientOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil && r.client.IsOpen() {
		return liveview.ErrAlreadyOpen
	}
	r.client = nil

	cam := camera.NewClient(endpoint)
	url, err := cam.PrepareLiveview(ctx)
	if err != nil {
		return fmt.Errorf("cli: prepare liveview at %s: %w", endpoint, err)
	}
	log := drawsurface.Logger()
	client := liveview.NewClient(opts...)
	onFrame := func(f *liveview.Frame) {
		if err := r.Feed.PushJPEG(f.JPEG); err != nil {
			log.Warn("cli: bad liveview frame", "seq", f.Sequence, "err", err)
			return
		}
		r.firstOnce.Do(func() { close(r.first) })
	}
	onClosed := func(err error) {
		if err != nil {
			log.Warn("cli: liveview stream ended", "err", err)
		}
	}
	if err := client.Open(ctx, url, onFrame, onClosed); err != nil {
		return fmt.Errorf("cli: open liveview %s: %w", url, err)
	}
	r.camera = cam
	r.client = client
	return nil
}

// WaitFirstFrame blocks until the feed has a frame, ctx is done or timeout
// passes.
func (r *Renderers) WaitFirstFrame(ctx context.Context, timeout time.Duration) error {
	select {
	case <-r.first:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(timeout):
		return ErrNoLiveviewFrame
	}
}

// Close stops the liveview stream, if any, and tells the camera to stop
// serving it.
func (r *Renderers) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		r.client.Close()
		r.client = nil
	}
	if r.camera != nil {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		if err := r.camera.StopLiveview(ctx); err != nil {
			drawsurface.Logger().Warn("cli: stop liveview", "endpoint", r.camera.Endpoint(), "err", err)
		}
		cancel()
		r.camera = nil
	}
}

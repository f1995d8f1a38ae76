// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package drawsurface

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/drawsurface/render"
)

// fakeOutput is a renderer output texture backed by a byte slice.
type fakeOutput struct {
	width, height int
	pixels        []byte
}

func (t *fakeOutput) Width() int     { return t.width }
func (t *fakeOutput) Height() int    { return t.height }
func (t *fakeOutput) Pixels() []byte { return t.pixels }

// recordingRenderer records the calls made by the bridge.
type recordingRenderer struct {
	mu        sync.Mutex
	calls     []string
	initErr   error
	renderErr error
	closeErr  error
	out       *fakeOutput
	total     float64
	delta     float64
	closed    int
	pointer   []gpucontext.PointerEvent
}

var (
	_ render.Renderer     = (*recordingRenderer)(nil)
	_ render.PointerInput = (*recordingRenderer)(nil)
)

func (r *recordingRenderer) record(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recordingRenderer) Initialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Initialize")
	return r.initErr
}

func (r *recordingRenderer) UpdateForWindowSizeChange(w, h float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("WindowSize %gx%g", w, h)
}

func (r *recordingRenderer) UpdateForRenderResolutionChange(w, h float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Resolution %gx%g", w, h)
	pw, ph := int(w+0.5), int(h+0.5)
	r.out = &fakeOutput{width: pw, height: ph, pixels: make([]byte, pw*ph*4)}
}

func (r *recordingRenderer) Update(total, delta float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Update")
	r.total, r.delta = total, delta
}

func (r *recordingRenderer) Render() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Render")
	if r.renderErr != nil {
		return r.renderErr
	}
	if r.out != nil && len(r.out.pixels) > 0 {
		r.out.pixels[0]++
	}
	return nil
}

func (r *recordingRenderer) Texture() render.Texture {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.out == nil {
		return nil
	}
	return r.out
}

func (r *recordingRenderer) HandlePointer(ev gpucontext.PointerEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pointer = append(r.pointer, ev)
}

func (r *recordingRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return r.closeErr
}

func (r *recordingRenderer) callsSnapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recordingRenderer) resetCalls() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

// hostTexture is a texture created by mockHost.
type hostTexture struct {
	width, height int
	data          []byte
	updates       int
	destroyed     bool
}

func (t *hostTexture) Width() int  { return t.width }
func (t *hostTexture) Height() int { return t.height }
func (t *hostTexture) Destroy()    { t.destroyed = true }

func (t *hostTexture) UpdateData(data []byte) error {
	t.updates++
	t.data = append(t.data[:0], data...)
	return nil
}

// mockHost is an in-memory compositor.
type mockHost struct {
	mu        sync.Mutex
	scale     float64
	created   []*hostTexture
	redraws   int
	createErr error
}

var _ Host = (*mockHost)(nil)

func (h *mockHost) NewTextureFromRGBA(w, hh int, data []byte) (gpucontext.Texture, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.createErr != nil {
		return nil, h.createErr
	}
	if len(data) != w*hh*4 {
		return nil, errors.New("mockHost: bad data size")
	}
	t := &hostTexture{width: w, height: hh, data: append([]byte(nil), data...)}
	h.created = append(h.created, t)
	return t, nil
}

func (h *mockHost) ScaleFactor() float64 {
	if h.scale == 0 {
		return 1
	}
	return h.scale
}

func (h *mockHost) RequestRedraw() {
	h.mu.Lock()
	h.redraws++
	h.mu.Unlock()
}

func (h *mockHost) redrawCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.redraws
}

// mockPointerSource keeps the registered callbacks and replays events.
type mockPointerSource struct {
	callbacks []func(gpucontext.PointerEvent)
}

func (s *mockPointerSource) OnPointer(fn func(gpucontext.PointerEvent)) {
	s.callbacks = append(s.callbacks, fn)
}

func (s *mockPointerSource) emit(ev gpucontext.PointerEvent) {
	for _, fn := range s.callbacks {
		fn(ev)
	}
}

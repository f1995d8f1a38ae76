// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package drawsurface

import (
	"errors"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/drawsurface/frametimer"
	"github.com/gogpu/drawsurface/render"
)

func newTestBridge(t *testing.T, opts ...Option) (*Bridge, *recordingRenderer, *frametimer.ManualClock) {
	t.Helper()
	rec := &recordingRenderer{}
	clk := frametimer.NewManualClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	opts = append([]Option{
		WithRenderer(func() render.Renderer { return rec }),
		WithClock(clk),
	}, opts...)
	return New(opts...), rec, clk
}

func TestConnectResetsTimer(t *testing.T) {
	b, _, clk := newTestBridge(t)
	clk.Advance(time.Second)
	b.Timer().Update()

	if err := b.Connect(&mockHost{}, Size{Width: 320, Height: 240}); err != nil {
		t.Fatalf("Connect() = %v", err)
	}
	if got := b.Timer().Total(); got != 0 {
		t.Errorf("Total() after Connect = %v, want 0", got)
	}
	if got := b.Timer().Delta(); got != 0 {
		t.Errorf("Delta() after Connect = %v, want 0", got)
	}
	if !b.Connected() {
		t.Error("Connected() = false after Connect")
	}
}

func TestConnectCallSequence(t *testing.T) {
	b, rec, _ := newTestBridge(t)
	if err := b.Connect(&mockHost{scale: 2}, Size{Width: 100, Height: 50}); err != nil {
		t.Fatal(err)
	}
	want := []string{"Initialize", "WindowSize 100x50", "Resolution 200x100"}
	if got := rec.callsSnapshot(); !slices.Equal(got, want) {
		t.Errorf("calls = %q, want %q", got, want)
	}
	if got := b.RenderResolution(); got != (Size{Width: 200, Height: 100}) {
		t.Errorf("RenderResolution() = %v, want 200x100", got)
	}
	if got := b.WindowBounds(); got != (Size{Width: 100, Height: 50}) {
		t.Errorf("WindowBounds() = %v, want 100x50", got)
	}
}

func TestConnectKeepsExplicitResolution(t *testing.T) {
	b, rec, _ := newTestBridge(t, WithRenderResolution(Size{Width: 64, Height: 32}))
	if err := b.Connect(&mockHost{scale: 3}, Size{Width: 100, Height: 50}); err != nil {
		t.Fatal(err)
	}
	if got := rec.callsSnapshot()[2]; got != "Resolution 64x32" {
		t.Errorf("resolution call = %q, want Resolution 64x32", got)
	}
}

func TestConnectInitializationFailure(t *testing.T) {
	cause := errors.New("device lost")
	b, rec, _ := newTestBridge(t)
	rec.initErr = cause

	err := b.Connect(&mockHost{}, Size{Width: 10, Height: 10})
	if !errors.Is(err, ErrInitializationFailed) {
		t.Fatalf("Connect() = %v, want ErrInitializationFailed", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Connect() = %v, want it to wrap the cause", err)
	}
	if b.Connected() {
		t.Error("Connected() = true after failed Connect")
	}
	if rec.closed != 1 {
		t.Errorf("renderer closed %d times, want 1", rec.closed)
	}
	if _, _, err := b.GetTexture(Size{}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("GetTexture() after failed Connect = %v, want ErrNotConnected", err)
	}
}

func TestConnectErrors(t *testing.T) {
	tests := []struct {
		name    string
		factory render.Factory
		host    Host
		bounds  Size
		want    error
	}{
		{"nil host", nil, nil, Size{Width: 1, Height: 1}, ErrNilHost},
		{"nil renderer", func() render.Renderer { return nil }, &mockHost{}, Size{Width: 1, Height: 1}, ErrInitializationFailed},
		{"empty bounds", nil, &mockHost{}, Size{}, ErrInvalidResolution},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _, _ := newTestBridge(t)
			if tt.factory != nil {
				b = New(WithRenderer(tt.factory))
			}
			err := b.Connect(tt.host, tt.bounds)
			if !errors.Is(err, tt.want) {
				t.Errorf("Connect() = %v, want %v", err, tt.want)
			}
			if b.Connected() {
				t.Error("Connected() = true after failed Connect")
			}
		})
	}
}

func TestReconnectReleasesPreviousRenderer(t *testing.T) {
	var made []*recordingRenderer
	b := New(WithRenderer(func() render.Renderer {
		r := &recordingRenderer{}
		made = append(made, r)
		return r
	}))
	host := &mockHost{}
	bounds := Size{Width: 8, Height: 8}
	if err := b.Connect(host, bounds); err != nil {
		t.Fatal(err)
	}
	if _, _, err := b.GetTexture(bounds); err != nil {
		t.Fatal(err)
	}
	if err := b.Connect(host, bounds); err != nil {
		t.Fatal(err)
	}
	if len(made) != 2 {
		t.Fatalf("factory called %d times, want 2", len(made))
	}
	if made[0].closed != 1 {
		t.Errorf("first renderer closed %d times, want 1", made[0].closed)
	}
	if !host.created[0].destroyed {
		t.Error("shared texture of first connection not destroyed")
	}
	if b.FrameCount() != 0 {
		t.Errorf("FrameCount() after reconnect = %d, want 0", b.FrameCount())
	}
}

func TestDisconnectTwice(t *testing.T) {
	b, rec, _ := newTestBridge(t)
	b.Disconnect()

	host := &mockHost{}
	if err := b.Connect(host, Size{Width: 4, Height: 4}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := b.GetTexture(Size{}); err != nil {
		t.Fatal(err)
	}
	b.Disconnect()
	b.Disconnect()

	if rec.closed != 1 {
		t.Errorf("renderer closed %d times, want 1", rec.closed)
	}
	if !host.created[0].destroyed {
		t.Error("shared texture not destroyed on Disconnect")
	}
	if b.Connected() {
		t.Error("Connected() = true after Disconnect")
	}
	if b.Texture() != nil {
		t.Error("Texture() after Disconnect should be nil")
	}
}

func TestDisconnectLogsCloseError(t *testing.T) {
	b, rec, _ := newTestBridge(t)
	rec.closeErr = errors.New("busy")
	if err := b.Connect(&mockHost{}, Size{Width: 4, Height: 4}); err != nil {
		t.Fatal(err)
	}
	b.Disconnect()
	if b.Connected() {
		t.Error("close error must not keep the renderer connected")
	}
}

func TestFrameOperationsWhileDisconnected(t *testing.T) {
	b, rec, _ := newTestBridge(t)

	tex, rect, err := b.GetTexture(Size{Width: 10, Height: 10})
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("GetTexture() = %v, want ErrNotConnected", err)
	}
	if tex != nil || rect != (RectF{}) {
		t.Errorf("GetTexture() = %v, %v; want zero values", tex, rect)
	}
	dirty, err := b.PrepareResources(time.Millisecond)
	if !errors.Is(err, ErrNotConnected) || dirty {
		t.Errorf("PrepareResources() = %v, %v; want false, ErrNotConnected", dirty, err)
	}
	if len(rec.callsSnapshot()) != 0 {
		t.Errorf("renderer was called while disconnected: %q", rec.callsSnapshot())
	}
}

func TestPrepareResourcesAlwaysDirty(t *testing.T) {
	b, _, _ := newTestBridge(t)
	if err := b.Connect(&mockHost{}, Size{Width: 4, Height: 4}); err != nil {
		t.Fatal(err)
	}
	for range 3 {
		dirty, err := b.PrepareResources(16 * time.Millisecond)
		if err != nil || !dirty {
			t.Fatalf("PrepareResources() = %v, %v; want true, nil", dirty, err)
		}
	}
}

// Connect, set 800x600, three frames 16ms apart.
func TestFrameScenario(t *testing.T) {
	b, rec, clk := newTestBridge(t)
	host := &mockHost{}
	if err := b.Connect(host, Size{Width: 400, Height: 300}); err != nil {
		t.Fatal(err)
	}
	if err := b.SetRenderResolution(Size{Width: 800, Height: 600}); err != nil {
		t.Fatal(err)
	}

	prevTotal := b.Timer().Total()
	for i := range 3 {
		clk.Advance(16 * time.Millisecond)
		tex, rect, err := b.GetTexture(Size{Width: 800, Height: 600})
		if err != nil {
			t.Fatalf("frame %d: GetTexture() = %v", i, err)
		}
		if tex == nil {
			t.Fatalf("frame %d: texture is nil", i)
		}
		if tex.Width() != 800 || tex.Height() != 600 {
			t.Errorf("frame %d: texture %dx%d, want 800x600", i, tex.Width(), tex.Height())
		}
		if rect != (RectF{Width: 800, Height: 600}) {
			t.Errorf("frame %d: rect = %+v, want full texture", i, rect)
		}

		total, delta := b.Timer().Total(), b.Timer().Delta()
		if delta < 0 {
			t.Errorf("frame %d: delta = %v, want >= 0", i, delta)
		}
		if math.Abs(total-(prevTotal+delta)) > 1e-12 || total <= prevTotal {
			t.Errorf("frame %d: total %v does not advance %v by %v", i, total, prevTotal, delta)
		}
		prevTotal = total
		if rec.total != total || rec.delta != delta {
			t.Errorf("frame %d: renderer got (%v, %v), want (%v, %v)", i, rec.total, rec.delta, total, delta)
		}
	}

	if got := b.Timer().Total(); math.Abs(got-0.048) > 1e-9 {
		t.Errorf("Total() = %v, want 0.048", got)
	}
	if got := host.redrawCount(); got != 3 {
		t.Errorf("RequestRedraw called %d times, want 3", got)
	}
	if got := b.FrameCount(); got != 3 {
		t.Errorf("FrameCount() = %d, want 3", got)
	}
	// 400x300 from Connect, then one 800x600 texture updated in place.
	if len(host.created) != 2 {
		t.Fatalf("host created %d textures, want 2", len(host.created))
	}
	if !host.created[0].destroyed {
		t.Error("texture created by Connect not destroyed after resize")
	}
	cur := host.created[1]
	if cur.width != 800 || cur.height != 600 {
		t.Errorf("current texture %dx%d, want 800x600", cur.width, cur.height)
	}
	if cur.updates != 2 {
		t.Errorf("texture updated %d times, want 2", cur.updates)
	}
	if cur.data[0] != 3 {
		t.Errorf("texture holds frame %d, want 3", cur.data[0])
	}
}

func TestGetTextureCallOrder(t *testing.T) {
	b, rec, _ := newTestBridge(t)
	if err := b.Connect(&mockHost{}, Size{Width: 2, Height: 2}); err != nil {
		t.Fatal(err)
	}
	rec.resetCalls()
	if _, _, err := b.GetTexture(Size{}); err != nil {
		t.Fatal(err)
	}
	want := []string{"Update", "Render"}
	if got := rec.callsSnapshot(); !slices.Equal(got, want) {
		t.Errorf("calls = %q, want %q", got, want)
	}
}

func TestGetTextureRenderFailure(t *testing.T) {
	b, rec, _ := newTestBridge(t)
	host := &mockHost{}
	if err := b.Connect(host, Size{Width: 2, Height: 2}); err != nil {
		t.Fatal(err)
	}
	rec.renderErr = errors.New("out of memory")

	_, _, err := b.GetTexture(Size{})
	if !errors.Is(err, ErrRenderFailed) {
		t.Fatalf("GetTexture() = %v, want ErrRenderFailed", err)
	}
	if host.redrawCount() != 1 {
		t.Errorf("RequestRedraw called %d times after failed frame, want 1", host.redrawCount())
	}
	if b.FrameCount() != 0 {
		t.Errorf("FrameCount() = %d, want 0", b.FrameCount())
	}

	rec.renderErr = nil
	if _, _, err := b.GetTexture(Size{}); err != nil {
		t.Errorf("GetTexture() after recovery = %v", err)
	}
}

func TestConnectCreatesSharedTexture(t *testing.T) {
	b, _, _ := newTestBridge(t)
	host := &mockHost{scale: 2}
	if err := b.Connect(host, Size{Width: 3, Height: 2}); err != nil {
		t.Fatal(err)
	}
	if len(host.created) != 1 {
		t.Fatalf("host created %d textures on Connect, want 1", len(host.created))
	}
	if tex := host.created[0]; tex.width != 6 || tex.height != 4 {
		t.Errorf("texture %dx%d, want 6x4", tex.width, tex.height)
	}
	if _, _, err := b.GetTexture(Size{}); err != nil {
		t.Fatal(err)
	}
	if len(host.created) != 1 || host.created[0].updates != 1 {
		t.Errorf("first frame should update the texture from Connect")
	}
}

func TestConnectTextureCreationFailure(t *testing.T) {
	b, rec, _ := newTestBridge(t)
	cause := errors.New("no memory")
	host := &mockHost{createErr: cause}
	err := b.Connect(host, Size{Width: 2, Height: 2})
	if !errors.Is(err, ErrInitializationFailed) || !errors.Is(err, cause) {
		t.Fatalf("Connect() = %v, want ErrInitializationFailed wrapping cause", err)
	}
	if b.Connected() {
		t.Error("Connected() = true after texture creation failed")
	}
	if rec.closed != 1 {
		t.Errorf("renderer closed %d times, want 1", rec.closed)
	}
}

func TestGetTextureSyncFailure(t *testing.T) {
	b, _, _ := newTestBridge(t)
	host := &mockHost{}
	if err := b.Connect(host, Size{Width: 2, Height: 2}); err != nil {
		t.Fatal(err)
	}
	host.mu.Lock()
	host.createErr = errors.New("no memory")
	host.mu.Unlock()
	if err := b.SetRenderResolution(Size{Width: 4, Height: 4}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := b.GetTexture(Size{}); !errors.Is(err, ErrTextureSync) {
		t.Errorf("GetTexture() = %v, want ErrTextureSync", err)
	}
}

func TestSetRenderResolutionSameValueIsNoop(t *testing.T) {
	b, rec, _ := newTestBridge(t)
	host := &mockHost{}
	if err := b.Connect(host, Size{Width: 16, Height: 16}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := b.GetTexture(Size{}); err != nil {
		t.Fatal(err)
	}
	rec.resetCalls()

	if err := b.SetRenderResolution(b.RenderResolution()); err != nil {
		t.Fatalf("SetRenderResolution(same) = %v", err)
	}
	if calls := rec.callsSnapshot(); len(calls) != 0 {
		t.Errorf("renderer calls = %q, want none", calls)
	}
	if _, _, err := b.GetTexture(Size{}); err != nil {
		t.Fatal(err)
	}
	if len(host.created) != 1 {
		t.Errorf("host created %d textures, want 1 (no recreation)", len(host.created))
	}
}

func TestSetRenderResolutionWhileDisconnected(t *testing.T) {
	b, rec, _ := newTestBridge(t)
	want := Size{Width: 640, Height: 480}
	if err := b.SetRenderResolution(want); err != nil {
		t.Fatal(err)
	}
	if got := b.RenderResolution(); got != want {
		t.Errorf("RenderResolution() = %v, want %v", got, want)
	}
	if calls := rec.callsSnapshot(); len(calls) != 0 {
		t.Errorf("renderer calls = %q, want none", calls)
	}
}

func TestSetRenderResolutionRecreatesTexture(t *testing.T) {
	b, rec, _ := newTestBridge(t)
	host := &mockHost{}
	if err := b.Connect(host, Size{Width: 16, Height: 16}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := b.GetTexture(Size{}); err != nil {
		t.Fatal(err)
	}
	rec.resetCalls()

	if err := b.SetRenderResolution(Size{Width: 32, Height: 8}); err != nil {
		t.Fatal(err)
	}
	if got := rec.callsSnapshot(); !slices.Equal(got, []string{"Resolution 32x8"}) {
		t.Errorf("calls = %q, want [Resolution 32x8]", got)
	}
	tex, _, err := b.GetTexture(Size{})
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width() != 32 || tex.Height() != 8 {
		t.Errorf("texture %dx%d, want 32x8", tex.Width(), tex.Height())
	}
	if len(host.created) != 2 {
		t.Fatalf("host created %d textures, want 2", len(host.created))
	}
	if !host.created[0].destroyed {
		t.Error("previous texture not destroyed after recreation")
	}
}

func TestSetRenderResolutionInvalid(t *testing.T) {
	b, _, _ := newTestBridge(t)
	orig := Size{Width: 10, Height: 10}
	if err := b.SetRenderResolution(orig); err != nil {
		t.Fatal(err)
	}
	huge := []Size{
		{},
		{Width: -1, Height: 5},
		{Width: 5, Height: 0},
		{Width: 1e6, Height: 1e6},
		{Width: float32(math.Inf(1)), Height: 5},
	}
	for _, s := range huge {
		if err := b.SetRenderResolution(s); !errors.Is(err, ErrInvalidResolution) {
			t.Errorf("SetRenderResolution(%v) = %v, want ErrInvalidResolution", s, err)
		}
	}
	if got := b.RenderResolution(); got != orig {
		t.Errorf("RenderResolution() = %v after invalid sets, want %v", got, orig)
	}
}

func TestSetWindowBounds(t *testing.T) {
	b, rec, _ := newTestBridge(t)
	b.SetWindowBounds(Size{Width: 30, Height: 20})
	if len(rec.callsSnapshot()) != 0 {
		t.Error("renderer called while disconnected")
	}

	p := b.CreateContentProvider()
	if err := p.Connect(&mockHost{}); err != nil {
		t.Fatal(err)
	}
	if got := rec.callsSnapshot()[1]; got != "WindowSize 30x20" {
		t.Errorf("window call = %q, want WindowSize 30x20", got)
	}

	rec.resetCalls()
	b.SetWindowBounds(Size{Width: 30, Height: 20})
	b.SetWindowBounds(Size{Width: 60, Height: 40})
	if got := rec.callsSnapshot(); !slices.Equal(got, []string{"WindowSize 60x40"}) {
		t.Errorf("calls = %q, want [WindowSize 60x40]", got)
	}
}

func TestTextureBorrowsRendererOutput(t *testing.T) {
	b, rec, _ := newTestBridge(t)
	if err := b.Connect(&mockHost{}, Size{Width: 3, Height: 3}); err != nil {
		t.Fatal(err)
	}
	if got := b.Texture(); got != render.Texture(rec.out) {
		t.Errorf("Texture() = %v, want renderer output", got)
	}
}

func TestContentProvider(t *testing.T) {
	b, _, clk := newTestBridge(t, WithWindowBounds(Size{Width: 5, Height: 5}))
	var p Provider = b.CreateContentProvider()
	if b.CreateContentProvider().Bridge() != b {
		t.Error("Bridge() does not return the wrapped bridge")
	}
	if b.Connected() {
		t.Fatal("CreateContentProvider must not connect")
	}

	host := &mockHost{}
	if err := p.Connect(host); err != nil {
		t.Fatal(err)
	}
	clk.Advance(time.Millisecond)
	if dirty, err := p.PrepareResources(0); !dirty || err != nil {
		t.Errorf("PrepareResources() = %v, %v", dirty, err)
	}
	tex, _, err := p.GetTexture(Size{Width: 5, Height: 5})
	if err != nil || tex == nil {
		t.Fatalf("GetTexture() = %v, %v", tex, err)
	}
	p.Disconnect()
	if b.Connected() {
		t.Error("Disconnect through provider left bridge connected")
	}
}

// Connect and Disconnect cycle while other goroutines draw frames, resize
// and deliver pointer events. Run with -race.
func TestConcurrentConnectDisconnect(t *testing.T) {
	b := New(WithRenderer(func() render.Renderer { return &recordingRenderer{} }))
	src := &mockPointerSource{}
	b.SetManipulationHost(src)
	var handled atomic.Int64
	b.OnPointerPressed(func(gpucontext.PointerEventSource, gpucontext.PointerEvent) { handled.Add(1) })
	b.OnPointerReleased(func(gpucontext.PointerEventSource, gpucontext.PointerEvent) { handled.Add(1) })

	host := &mockHost{}
	bounds := Size{Width: 16, Height: 16}
	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			_, _, err := b.GetTexture(bounds)
			if err != nil && !errors.Is(err, ErrNotConnected) {
				t.Errorf("GetTexture() = %v", err)
				return
			}
			b.PrepareResources(0)
			b.Texture()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		sizes := []Size{{Width: 16, Height: 16}, {Width: 24, Height: 8}}
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if err := b.SetRenderResolution(sizes[i%2]); err != nil {
				t.Errorf("SetRenderResolution() = %v", err)
				return
			}
			b.SetWindowBounds(sizes[(i+1)%2])
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		kinds := []gpucontext.PointerEventType{gpucontext.PointerDown, gpucontext.PointerMove, gpucontext.PointerUp}
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			src.emit(gpucontext.PointerEvent{Type: kinds[i%3], X: float64(i % 16), Y: 1})
		}
	}()

	src.emit(gpucontext.PointerEvent{Type: gpucontext.PointerDown})
	for i := range 200 {
		if err := b.Connect(host, bounds); err != nil {
			t.Errorf("cycle %d: Connect() = %v", i, err)
			break
		}
		if i%2 == 0 {
			b.Disconnect()
		}
	}
	b.Disconnect()
	close(stop)
	wg.Wait()

	if b.Connected() {
		t.Error("Connected() = true after final Disconnect")
	}
	host.mu.Lock()
	defer host.mu.Unlock()
	for i, tex := range host.created {
		if !tex.destroyed {
			t.Errorf("texture %d not destroyed", i)
		}
	}
	if handled.Load() == 0 {
		t.Error("no pointer events reached the handlers")
	}
}

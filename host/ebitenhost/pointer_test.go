// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ebitenhost

import (
	"testing"
	"time"

	"github.com/gogpu/gpucontext"
)

type fakeNow struct{ t time.Time }

func (f *fakeNow) now() time.Time { return f.t }

func newTracker() (*pointerTracker, *fakeNow, *[]gpucontext.PointerEvent) {
	clk := &fakeNow{t: time.Unix(100, 0)}
	tr := newPointerTracker(clk.now)
	var got []gpucontext.PointerEvent
	tr.OnPointer(func(ev gpucontext.PointerEvent) { got = append(got, ev) })
	return tr, clk, &got
}

func types(evs []gpucontext.PointerEvent) []gpucontext.PointerEventType {
	out := make([]gpucontext.PointerEventType, len(evs))
	for i, ev := range evs {
		out[i] = ev.Type
	}
	return out
}

func TestMouseDrag(t *testing.T) {
	tr, clk, got := newTracker()

	tr.mouse(10, 10, false, false) // first sighting, no event
	tr.mouse(10, 10, true, false)
	clk.t = clk.t.Add(16 * time.Millisecond)
	tr.mouse(15, 12, false, false)
	tr.mouse(15, 12, false, false) // unchanged
	tr.mouse(15, 12, false, true)

	want := []gpucontext.PointerEventType{gpucontext.PointerDown, gpucontext.PointerMove, gpucontext.PointerUp}
	gotTypes := types(*got)
	if len(gotTypes) != len(want) {
		t.Fatalf("events = %v, want %v", gotTypes, want)
	}
	for i := range want {
		if gotTypes[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, gotTypes[i], want[i])
		}
	}

	down, move, up := (*got)[0], (*got)[1], (*got)[2]
	if down.Button != gpucontext.ButtonLeft || down.Buttons != gpucontext.ButtonsLeft {
		t.Errorf("down buttons = %v/%v", down.Button, down.Buttons)
	}
	if move.X != 15 || move.Y != 12 || move.Buttons != gpucontext.ButtonsLeft {
		t.Errorf("move = %+v", move)
	}
	if move.Timestamp != 16*time.Millisecond {
		t.Errorf("move timestamp = %v, want 16ms", move.Timestamp)
	}
	if up.Buttons != gpucontext.ButtonsNone || up.PointerType != gpucontext.PointerTypeMouse {
		t.Errorf("up = %+v", up)
	}
}

func TestMouseReleaseWithoutPress(t *testing.T) {
	tr, _, got := newTracker()
	tr.mouse(0, 0, false, true)
	if len(*got) != 0 {
		t.Errorf("events = %v, want none", types(*got))
	}
}

func TestTouchLifecycle(t *testing.T) {
	tr, _, got := newTracker()

	tr.touchDown(3, 1, 1)
	tr.touchMove(3, 1, 1) // unchanged
	tr.touchMove(3, 4, 5)
	tr.touchMove(9, 4, 5) // unknown touch
	tr.touchUp(3, 4, 5)
	tr.touchUp(3, 4, 5) // already released

	if len(*got) != 3 {
		t.Fatalf("events = %v, want down, move, up", types(*got))
	}
	for _, ev := range *got {
		if ev.PointerID != 4 {
			t.Errorf("PointerID = %d, want touch ID + 1", ev.PointerID)
		}
		if ev.PointerType != gpucontext.PointerTypeTouch {
			t.Errorf("PointerType = %v, want touch", ev.PointerType)
		}
	}
	if (*got)[1].X != 4 || (*got)[1].Y != 5 {
		t.Errorf("move = %+v", (*got)[1])
	}
}

func TestCancelAll(t *testing.T) {
	tr, _, got := newTracker()
	tr.mouse(2, 2, true, false)
	tr.touchDown(0, 5, 5)
	*got = nil

	tr.cancelAll()
	if len(*got) != 2 {
		t.Fatalf("events = %v, want two cancels", types(*got))
	}
	for _, ev := range *got {
		if ev.Type != gpucontext.PointerCancel {
			t.Errorf("event type = %v, want PointerCancel", ev.Type)
		}
	}
	tr.cancelAll()
	if len(*got) != 2 {
		t.Error("second cancelAll emitted events")
	}
}

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	for _, opt := range []Option{WithTitle("x"), WithWindowSize(-1, 5), WithTPS(0)} {
		opt(&o)
	}
	if o.title != "x" || o.width != 800 || o.height != 600 || o.tps != 60 {
		t.Errorf("options = %+v", o)
	}
	WithWindowSize(320, 240)(&o)
	WithTPS(30)(&o)
	if o.width != 320 || o.height != 240 || o.tps != 30 {
		t.Errorf("options = %+v", o)
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ebitenhost

import (
	"sync"
	"time"

	"github.com/gogpu/gpucontext"
)

// mousePointerID is the pointer ID of the mouse. Touches use their touch
// ID plus one.
const mousePointerID = 0

// pointerTracker turns polled input state into pointer events and delivers
// them to the registered callbacks. It implements
// gpucontext.PointerEventSource.
type pointerTracker struct {
	mu        sync.Mutex
	callbacks []func(gpucontext.PointerEvent)
	start     time.Time
	now       func() time.Time

	mouseX, mouseY float64
	mouseSeen      bool
	mouseDown      bool
	touches        map[int][2]float64
}

var _ gpucontext.PointerEventSource = (*pointerTracker)(nil)

func newPointerTracker(now func() time.Time) *pointerTracker {
	return &pointerTracker{
		start:   now(),
		now:     now,
		touches: make(map[int][2]float64),
	}
}

// OnPointer registers fn for all pointer events.
func (t *pointerTracker) OnPointer(fn func(gpucontext.PointerEvent)) {
	t.mu.Lock()
	t.callbacks = append(t.callbacks, fn)
	t.mu.Unlock()
}

func (t *pointerTracker) emit(ev gpucontext.PointerEvent) {
	ev.Timestamp = t.now().Sub(t.start)
	t.mu.Lock()
	cbs := t.callbacks
	t.mu.Unlock()
	for _, fn := range cbs {
		fn(ev)
	}
}

// mouse reports the left button state at one tick. Moves are emitted only
// when the cursor changed position.
func (t *pointerTracker) mouse(x, y float64, justPressed, justReleased bool) {
	base := gpucontext.PointerEvent{
		PointerID:   mousePointerID,
		X:           x,
		Y:           y,
		PointerType: gpucontext.PointerTypeMouse,
		IsPrimary:   true,
		Button:      gpucontext.ButtonNone,
	}
	if t.mouseDown {
		base.Buttons = gpucontext.ButtonsLeft
	}

	if !t.mouseSeen || x != t.mouseX || y != t.mouseY {
		if t.mouseSeen {
			ev := base
			ev.Type = gpucontext.PointerMove
			t.emit(ev)
		}
		t.mouseX, t.mouseY, t.mouseSeen = x, y, true
	}
	if justPressed && !t.mouseDown {
		t.mouseDown = true
		ev := base
		ev.Type = gpucontext.PointerDown
		ev.Button = gpucontext.ButtonLeft
		ev.Buttons = gpucontext.ButtonsLeft
		ev.Pressure = 0.5
		t.emit(ev)
	}
	if justReleased && t.mouseDown {
		t.mouseDown = false
		ev := base
		ev.Type = gpucontext.PointerUp
		ev.Button = gpucontext.ButtonLeft
		ev.Buttons = gpucontext.ButtonsNone
		t.emit(ev)
	}
}

func (t *pointerTracker) touchEvent(typ gpucontext.PointerEventType, id int, x, y float64) gpucontext.PointerEvent {
	ev := gpucontext.PointerEvent{
		Type:        typ,
		PointerID:   id + 1,
		X:           x,
		Y:           y,
		PointerType: gpucontext.PointerTypeTouch,
		IsPrimary:   len(t.touches) <= 1,
		Button:      gpucontext.ButtonNone,
	}
	if typ != gpucontext.PointerUp {
		ev.Pressure = 0.5
		ev.Buttons = gpucontext.ButtonsLeft
	}
	return ev
}

func (t *pointerTracker) touchDown(id int, x, y float64) {
	t.touches[id] = [2]float64{x, y}
	ev := t.touchEvent(gpucontext.PointerDown, id, x, y)
	ev.Button = gpucontext.ButtonLeft
	t.emit(ev)
}

func (t *pointerTracker) touchMove(id int, x, y float64) {
	prev, ok := t.touches[id]
	if !ok || (prev[0] == x && prev[1] == y) {
		return
	}
	t.touches[id] = [2]float64{x, y}
	t.emit(t.touchEvent(gpucontext.PointerMove, id, x, y))
}

func (t *pointerTracker) touchUp(id int, x, y float64) {
	if _, ok := t.touches[id]; !ok {
		return
	}
	ev := t.touchEvent(gpucontext.PointerUp, id, x, y)
	ev.Button = gpucontext.ButtonLeft
	delete(t.touches, id)
	t.emit(ev)
}

// cancelAll ends every active pointer, used when the window closes.
func (t *pointerTracker) cancelAll() {
	if t.mouseDown {
		t.mouseDown = false
		t.emit(gpucontext.PointerEvent{
			Type:        gpucontext.PointerCancel,
			PointerID:   mousePointerID,
			X:           t.mouseX,
			Y:           t.mouseY,
			PointerType: gpucontext.PointerTypeMouse,
			IsPrimary:   true,
			Button:      gpucontext.ButtonNone,
		})
	}
	for id, p := range t.touches {
		ev := t.touchEvent(gpucontext.PointerCancel, id, p[0], p[1])
		delete(t.touches, id)
		t.emit(ev)
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package drawsurface

import (
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/drawsurface/render"
)

// PointerHandler observes pointer events from a manipulation host.
type PointerHandler func(source gpucontext.PointerEventSource, ev gpucontext.PointerEvent)

type pointerHandlers struct {
	mu       sync.RWMutex
	pressed  []PointerHandler
	moved    []PointerHandler
	released []PointerHandler
	source   gpucontext.PointerEventSource
	gen      uint64 // bumped by SetManipulationHost
	events   uint64
}

// SetManipulationHost subscribes the bridge to the pointer events of src.
// Sources have no way to unsubscribe, so events from a previously set
// source are ignored once a new one is set. nil stops dispatching.
func (b *Bridge) SetManipulationHost(src gpucontext.PointerEventSource) {
	b.pointers.mu.Lock()
	b.pointers.source = src
	b.pointers.gen++
	gen := b.pointers.gen
	b.pointers.mu.Unlock()
	if src == nil {
		return
	}
	src.OnPointer(func(ev gpucontext.PointerEvent) {
		b.dispatchPointer(gen, src, ev)
	})
}

// OnPointerPressed registers h for pointer down events.
func (b *Bridge) OnPointerPressed(h PointerHandler) {
	b.addPointerHandler(&b.pointers.pressed, h)
}

// OnPointerMoved registers h for pointer move events.
func (b *Bridge) OnPointerMoved(h PointerHandler) {
	b.addPointerHandler(&b.pointers.moved, h)
}

// OnPointerReleased registers h for pointer up and cancel events.
func (b *Bridge) OnPointerReleased(h PointerHandler) {
	b.addPointerHandler(&b.pointers.released, h)
}

// PointerEvents returns how many events were dispatched.
func (b *Bridge) PointerEvents() uint64 {
	b.pointers.mu.RLock()
	defer b.pointers.mu.RUnlock()
	return b.pointers.events
}

func (b *Bridge) addPointerHandler(list *[]PointerHandler, h PointerHandler) {
	if h == nil {
		return
	}
	b.pointers.mu.Lock()
	*list = append(*list, h)
	b.pointers.mu.Unlock()
}

func (b *Bridge) dispatchPointer(gen uint64, src gpucontext.PointerEventSource, ev gpucontext.PointerEvent) {
	p := &b.pointers
	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return
	}
	var handlers []PointerHandler
	switch ev.Type {
	case gpucontext.PointerDown:
		handlers = p.pressed
	case gpucontext.PointerMove:
		handlers = p.moved
	case gpucontext.PointerUp, gpucontext.PointerCancel:
		handlers = p.released
	default:
		// Enter and leave carry no manipulation.
		p.mu.Unlock()
		return
	}
	p.events++
	p.mu.Unlock()

	for _, h := range handlers {
		h(src, ev)
	}
	if pi, ok := b.currentRenderer().(render.PointerInput); ok {
		pi.HandlePointer(ev)
	}
}

// ManipulationHost returns the current pointer source, or nil.
func (b *Bridge) ManipulationHost() gpucontext.PointerEventSource {
	b.pointers.mu.RLock()
	defer b.pointers.mu.RUnlock()
	return b.pointers.source
}

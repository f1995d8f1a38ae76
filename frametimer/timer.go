// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package frametimer tracks wall time for a frame loop.
//
// A Timer reports the total time since its last Reset and the delta between
// the two most recent updates. It is reset when a drawing surface connects
// and advanced once per frame callback.
//
// The timer does not bound the delta. After a long pause the first delta
// can be large; renderers that integrate motion clamp it themselves.
package frametimer

import (
	"sync"
	"time"
)

// Clock is the time source of a Timer.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock. time.Now carries a monotonic reading,
// so deltas are not affected by wall clock adjustments.
func SystemClock() Clock { return systemClock{} }

// Option configures a Timer.
type Option func(*options)

type options struct {
	clock Clock
}

// WithClock sets the time source. nil keeps the system clock.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// Timer accumulates frame time. It is safe for concurrent use.
type Timer struct {
	mu    sync.Mutex
	clock Clock
	last  time.Time
	total time.Duration
	delta time.Duration
}

// New creates a Timer that starts in the reset state.
func New(opts ...Option) *Timer {
	o := options{clock: SystemClock()}
	for _, opt := range opts {
		opt(&o)
	}
	t := &Timer{clock: o.clock}
	t.Reset()
	return t
}

// Reset zeroes total and delta and measures the next delta from now.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = t.clock.Now()
	t.total = 0
	t.delta = 0
}

// Update measures the time since the previous Update or Reset and adds it
// to the total. A clock that moves backwards yields a zero delta.
func (t *Timer) Update() {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	d := now.Sub(t.last)
	if d < 0 {
		d = 0
	}
	t.last = now
	t.delta = d
	t.total += d
}

// Total returns the seconds accumulated since the last Reset.
func (t *Timer) Total() float64 {
	return t.Elapsed().Seconds()
}

// Delta returns the seconds measured by the most recent Update.
func (t *Timer) Delta() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delta.Seconds()
}

// Elapsed returns the total as a duration.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

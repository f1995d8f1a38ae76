// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frametimer

import (
	"math"
	"testing"
	"time"
)

func newManual() (*Timer, *ManualClock) {
	clk := NewManualClock(time.Unix(1000, 0))
	return New(WithClock(clk)), clk
}

func TestNewStartsReset(t *testing.T) {
	tm, _ := newManual()
	if tm.Total() != 0 {
		t.Errorf("Total() = %v, want 0", tm.Total())
	}
	if tm.Delta() != 0 {
		t.Errorf("Delta() = %v, want 0", tm.Delta())
	}
}

func TestUpdateAccumulates(t *testing.T) {
	tm, clk := newManual()

	steps := []time.Duration{16 * time.Millisecond, 17 * time.Millisecond, 0, 33 * time.Millisecond}
	var want time.Duration
	for i, step := range steps {
		before := tm.Elapsed()
		clk.Advance(step)
		tm.Update()
		want += step

		if got := tm.Delta(); got != step.Seconds() {
			t.Errorf("step %d: Delta() = %v, want %v", i, got, step.Seconds())
		}
		if tm.Delta() < 0 {
			t.Errorf("step %d: Delta() negative", i)
		}
		if tm.Elapsed() != before+step {
			t.Errorf("step %d: Elapsed() = %v, want %v", i, tm.Elapsed(), before+step)
		}
	}
	if tm.Elapsed() != want {
		t.Errorf("Elapsed() = %v, want %v", tm.Elapsed(), want)
	}
}

func TestReset(t *testing.T) {
	tm, clk := newManual()
	clk.Advance(time.Second)
	tm.Update()

	tm.Reset()
	if tm.Total() != 0 || tm.Delta() != 0 {
		t.Fatalf("after Reset: Total=%v Delta=%v, want 0, 0", tm.Total(), tm.Delta())
	}

	// Time spent before Reset does not leak into the next delta.
	clk.Advance(10 * time.Millisecond)
	tm.Update()
	if math.Abs(tm.Delta()-0.010) > 1e-12 {
		t.Errorf("Delta() = %v, want 0.010", tm.Delta())
	}
}

func TestBackwardsClockClampsDelta(t *testing.T) {
	tm, clk := newManual()
	clk.Advance(-time.Second)
	tm.Update()
	if tm.Delta() != 0 {
		t.Errorf("Delta() = %v, want 0", tm.Delta())
	}
	if tm.Total() != 0 {
		t.Errorf("Total() = %v, want 0", tm.Total())
	}
}

func TestWithNilClockKeepsSystemClock(t *testing.T) {
	tm := New(WithClock(nil))
	tm.Update()
	if tm.Delta() < 0 {
		t.Errorf("Delta() = %v, want >= 0", tm.Delta())
	}
}

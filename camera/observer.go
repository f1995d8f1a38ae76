// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package camera

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gogpu/drawsurface/internal/logx"
)

// Observer errors.
var (
	// ErrObserverRunning is returned by Start while polling is active.
	ErrObserverRunning = errors.New("camera: observer already running")

	// ErrNilCallback is returned when Start gets a nil callback.
	ErrNilCallback = errors.New("camera: nil callback")
)

// Observer defaults.
const (
	DefaultRetryLimit    = 3
	DefaultRetryInterval = 3 * time.Second
)

// ObserverOption configures an Observer.
type ObserverOption func(*observerOptions)

type observerOptions struct {
	retryLimit    int
	retryInterval time.Duration
}

// WithRetryLimit sets how many consecutive failed polls end observation.
func WithRetryLimit(n int) ObserverOption {
	return func(o *observerOptions) {
		if n > 0 {
			o.retryLimit = n
		}
	}
}

// WithRetryInterval sets the pause before a failed poll is retried.
func WithRetryInterval(d time.Duration) ObserverOption {
	return func(o *observerOptions) {
		if d >= 0 {
			o.retryInterval = d
		}
	}
}

// Observer polls camera events and tracks the camera Status.
//
// The first poll returns the full state; later polls long-poll for
// changes. Transient camera errors are retried up to the retry limit, but
// a failing first poll ends observation at once.
type Observer struct {
	client *Client
	opts   observerOptions

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

// NewObserver creates an observer polling through c.
func NewObserver(c *Client, opts ...ObserverOption) *Observer {
	o := observerOptions{
		retryLimit:    DefaultRetryLimit,
		retryInterval: DefaultRetryInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Observer{client: c, opts: o}
}

// Start begins polling in the background with a fresh Status. onChange
// runs for each changed member with the status after the change. onStop
// runs once when polling ends: with nil after Stop or cancellation of
// ctx, otherwise with the error that ended it.
func (o *Observer) Start(ctx context.Context, onChange func(Member, Status), onStop func(error)) error {
	if onChange == nil || onStop == nil {
		return ErrNilCallback
	}
	o.mu.Lock()
	if o.done != nil {
		o.mu.Unlock()
		return ErrObserverRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	o.status = Status{}
	o.cancel = cancel
	o.done = done
	o.mu.Unlock()

	go func() {
		defer close(done)
		err := o.run(ctx, onChange)
		cancel()
		logx.Logger().Info("camera: event observer stopped", "endpoint", o.client.Endpoint(), "err", err)
		onStop(err)
		o.mu.Lock()
		if o.done == done {
			o.cancel = nil
			o.done = nil
		}
		o.mu.Unlock()
	}()
	return nil
}

func (o *Observer) run(ctx context.Context, onChange func(Member, Status)) error {
	log := logx.Logger().With("endpoint", o.client.Endpoint())
	failures := o.opts.retryLimit
	longPoll := false
	for {
		ev, err := o.client.Event(ctx, longPoll)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			switch code := Code(err); {
			case code == CodeDuplicatePolling:
				log.Debug("camera: another poll is active, retrying")
			case retryable(err):
				failures++
				if failures >= o.opts.retryLimit {
					return err
				}
				log.Warn("camera: getEvent failed, retrying", "attempt", failures, "err", err)
			default:
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(o.opts.retryInterval):
			}
			continue
		}

		failures = 0
		longPoll = true
		o.mu.Lock()
		next, changed := o.status.Apply(ev)
		o.status = next
		o.mu.Unlock()
		for _, m := range changed {
			onChange(m, next)
		}
	}
}

// retryable reports whether a failed poll may succeed later. Transport
// failures count as retryable.
func retryable(err error) bool {
	switch Code(err) {
	case 0, CodeAny, CodeTimeout, CodeIllegalState, CodeNotAcceptable,
		CodeServiceUnavailable, CodeCameraNotReady:
		return true
	}
	return false
}

// Stop ends polling and waits for onStop to return. It is a no-op when
// not running. Calling it from a callback deadlocks.
func (o *Observer) Stop() {
	o.mu.Lock()
	cancel, done := o.cancel, o.done
	o.mu.Unlock()
	if done == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether polling is active.
func (o *Observer) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.done != nil
}

// Status returns the last known camera state.
func (o *Observer) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

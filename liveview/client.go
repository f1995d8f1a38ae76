// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package liveview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gogpu/drawsurface/internal/logx"
)

// Client errors.
var (
	// ErrAlreadyOpen is returned by Open while a stream is open.
	ErrAlreadyOpen = errors.New("liveview: stream already open")

	// ErrBadStatus is reported when the server does not answer 200 OK.
	ErrBadStatus = errors.New("liveview: unexpected HTTP status")

	// ErrNilCallback is returned when Open gets a nil callback.
	ErrNilCallback = errors.New("liveview: nil callback")

	// ErrStalled is reported when no frame arrives within the read timeout.
	ErrStalled = errors.New("liveview: stream stalled")
)

// DefaultReadTimeout is how long a stream may go without a frame.
const DefaultReadTimeout = 10 * time.Second

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	httpClient  *http.Client
	readTimeout time.Duration
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithReadTimeout sets how long to wait for the next frame before giving
// up. Zero disables the timeout.
func WithReadTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		if d >= 0 {
			o.readTimeout = d
		}
	}
}

// Client streams liveview frames from a camera.
//
// One stream may be open at a time. Frames are delivered on the client's
// goroutine; callbacks should hand them off quickly.
type Client struct {
	opts clientOptions

	mu     sync.Mutex
	open   bool
	cancel context.CancelFunc
	done   chan struct{}
}

// NewClient creates a Client.
func NewClient(opts ...ClientOption) *Client {
	o := clientOptions{
		httpClient:  http.DefaultClient,
		readTimeout: DefaultReadTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{opts: o}
}

// Open starts streaming url in the background. onFrame receives every frame
// until the stream ends; onClosed then runs exactly once with the reason,
// nil when Close ended the stream or the server closed it cleanly.
func (c *Client) Open(ctx context.Context, url string, onFrame func(*Frame), onClosed func(error)) error {
	if onFrame == nil || onClosed == nil {
		return ErrNilCallback
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("liveview: build request: %w", err)
	}

	c.mu.Lock()
	if c.open {
		c.mu.Unlock()
		return ErrAlreadyOpen
	}
	streamCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.open = true
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	go func() {
		defer close(done)
		err := c.stream(streamCtx, req.WithContext(streamCtx), onFrame)
		// Cancellation through Close is a normal end.
		if streamCtx.Err() != nil && ctx.Err() == nil && !errors.Is(err, ErrStalled) {
			err = nil
		}
		c.mu.Lock()
		c.open = false
		c.cancel = nil
		c.mu.Unlock()
		cancel()
		logx.Logger().Info("liveview: stream closed", "url", url, "err", err)
		onClosed(err)
		c.mu.Lock()
		if c.done == done {
			c.done = nil
		}
		c.mu.Unlock()
	}()
	return nil
}

func (c *Client) stream(ctx context.Context, req *http.Request, onFrame func(*Frame)) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var watchdog *time.Timer
	if c.opts.readTimeout > 0 {
		watchdog = time.AfterFunc(c.opts.readTimeout, func() { cancel(ErrStalled) })
		defer watchdog.Stop()
	}

	resp, err := c.opts.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		if cause := context.Cause(ctx); errors.Is(cause, ErrStalled) {
			return cause
		}
		return fmt.Errorf("liveview: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}
	logx.Logger().Info("liveview: stream connected", "url", req.URL.String())

	r := NewReader(resp.Body)
	for {
		frame, err := r.Next()
		if err != nil {
			if cause := context.Cause(ctx); errors.Is(cause, ErrStalled) {
				return cause
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if watchdog != nil {
			watchdog.Reset(c.opts.readTimeout)
		}
		onFrame(frame)
	}
}

// Close stops the open stream and waits for onClosed to return, including
// when the stream already ended and onClosed is still running. It is a
// no-op when nothing is open. Calling it from onFrame or onClosed
// deadlocks.
func (c *Client) Close() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()
	if done == nil {
		return
	}
	if cancel != nil {
		cancel()
	}
	<-done
}

// IsOpen reports whether a stream is open.
func (c *Client) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

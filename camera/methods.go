// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package camera

import (
	"context"
	"fmt"
	"slices"

	json "github.com/goccy/go-json"

	"github.com/gogpu/drawsurface/internal/logx"
)

// ZoomDirection selects the zoom lens direction.
type ZoomDirection string

// Zoom directions.
const (
	ZoomIn  ZoomDirection = "in"
	ZoomOut ZoomDirection = "out"
)

// ZoomMovement selects how far the lens moves.
type ZoomMovement string

// Zoom movements. ZoomStart keeps moving until ZoomStop.
const (
	ZoomStart   ZoomMovement = "start"
	ZoomStop    ZoomMovement = "stop"
	ZoomOneShot ZoomMovement = "1shot"
)

// MethodType describes one method the camera supports.
type MethodType struct {
	Name    string
	Params  []string
	Results []string
	Version string
}

// MethodTypes lists the methods of the camera service.
func (c *Client) MethodTypes(ctx context.Context) ([]MethodType, error) {
	const method = "getMethodTypes"
	result, err := c.call(ctx, c.opts.timeout, method, APIVersion)
	if err != nil {
		return nil, err
	}
	types := make([]MethodType, 0, len(result))
	for i, raw := range result {
		var entry []json.RawMessage
		if err := json.Unmarshal(raw, &entry); err != nil || len(entry) < 4 {
			return nil, fmt.Errorf("%w: %s entry %d", ErrMalformedResponse, method, i)
		}
		var mt MethodType
		for j, dst := range []any{&mt.Name, &mt.Params, &mt.Results, &mt.Version} {
			if err := json.Unmarshal(entry[j], dst); err != nil {
				return nil, fmt.Errorf("%w: %s entry %d: %w", ErrMalformedResponse, method, i, err)
			}
		}
		types = append(types, mt)
	}
	return types, nil
}

// StartRecMode switches the camera into shooting mode. Some cameras need
// it before StartLiveview.
func (c *Client) StartRecMode(ctx context.Context) error {
	return c.simple(ctx, "startRecMode")
}

// StopRecMode leaves shooting mode.
func (c *Client) StopRecMode(ctx context.Context) error {
	return c.simple(ctx, "stopRecMode")
}

// StartLiveview starts the liveview stream and returns its URL.
func (c *Client) StartLiveview(ctx context.Context) (string, error) {
	const method = "startLiveview"
	result, err := c.call(ctx, c.opts.timeout, method)
	if err != nil {
		return "", err
	}
	var url string
	if err := decodeResult(method, result, 0, &url); err != nil {
		return "", err
	}
	if url == "" {
		return "", fmt.Errorf("%w: %s returned no URL", ErrEmptyResult, method)
	}
	return url, nil
}

// StopLiveview stops the liveview stream.
func (c *Client) StopLiveview(ctx context.Context) error {
	return c.simple(ctx, "stopLiveview")
}

// PrepareLiveview enters shooting mode when the camera offers
// startRecMode, then starts the liveview and returns the stream URL.
func (c *Client) PrepareLiveview(ctx context.Context) (string, error) {
	types, err := c.MethodTypes(ctx)
	if err != nil {
		return "", err
	}
	if slices.ContainsFunc(types, func(t MethodType) bool { return t.Name == "startRecMode" }) {
		if err := c.StartRecMode(ctx); err != nil {
			return "", err
		}
	}
	url, err := c.StartLiveview(ctx)
	if err != nil {
		return "", err
	}
	logx.Logger().Info("camera: liveview started", "endpoint", c.endpoint, "url", url)
	return url, nil
}

// ActTakePicture shoots a still image and returns the postview URLs.
// While the camera is still capturing it fails with
// CodeStillCapturingNotFinished; AwaitTakePicture then waits for the
// result.
func (c *Client) ActTakePicture(ctx context.Context) ([]string, error) {
	return c.pictureURLs(ctx, "actTakePicture")
}

// AwaitTakePicture waits for a capture started by ActTakePicture.
func (c *Client) AwaitTakePicture(ctx context.Context) ([]string, error) {
	return c.pictureURLs(ctx, "awaitTakePicture")
}

func (c *Client) pictureURLs(ctx context.Context, method string) ([]string, error) {
	result, err := c.call(ctx, c.opts.timeout, method)
	if err != nil {
		return nil, err
	}
	var urls []string
	if err := decodeResult(method, result, 0, &urls); err != nil {
		return nil, err
	}
	return urls, nil
}

// TakePicture shoots a still image, waiting through long captures, and
// returns the postview URLs.
func (c *Client) TakePicture(ctx context.Context) ([]string, error) {
	urls, err := c.ActTakePicture(ctx)
	for Code(err) == CodeStillCapturingNotFinished {
		logx.Logger().Debug("camera: still capturing")
		urls, err = c.AwaitTakePicture(ctx)
	}
	return urls, err
}

// PostviewImageSize returns the current postview size, such as "2M" or
// "Original".
func (c *Client) PostviewImageSize(ctx context.Context) (string, error) {
	const method = "getPostviewImageSize"
	result, err := c.call(ctx, c.opts.timeout, method)
	if err != nil {
		return "", err
	}
	var size string
	err = decodeResult(method, result, 0, &size)
	return size, err
}

// AvailablePostviewImageSize returns the current postview size and the
// sizes the camera accepts.
func (c *Client) AvailablePostviewImageSize(ctx context.Context) (Setting[string], error) {
	const method = "getAvailablePostviewImageSize"
	var s Setting[string]
	result, err := c.call(ctx, c.opts.timeout, method)
	if err != nil {
		return s, err
	}
	if err := decodeResult(method, result, 0, &s.Current); err != nil {
		return s, err
	}
	err = decodeResult(method, result, 1, &s.Candidates)
	return s, err
}

// SetPostviewImageSize selects the postview size.
func (c *Client) SetPostviewImageSize(ctx context.Context, size string) error {
	return c.simple(ctx, "setPostviewImageSize", size)
}

// ActZoom moves the zoom lens.
func (c *Client) ActZoom(ctx context.Context, dir ZoomDirection, mv ZoomMovement) error {
	return c.simple(ctx, "actZoom", string(dir), string(mv))
}

// Event returns the camera state. With longPoll the camera holds the
// request until something changes; the call is then bounded by the poll
// timeout instead of the call timeout.
func (c *Client) Event(ctx context.Context, longPoll bool) (*Event, error) {
	const method = "getEvent"
	timeout := c.opts.timeout
	if longPoll {
		timeout = c.opts.pollTimeout
	}
	result, err := c.call(ctx, timeout, method, longPoll)
	if err != nil {
		return nil, err
	}
	return parseEvent(result)
}

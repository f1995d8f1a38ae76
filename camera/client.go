// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"

	"github.com/gogpu/drawsurface/internal/logx"
)

// APIVersion is the camera service version this package speaks.
const APIVersion = "1.0"

// Default timeouts.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultPollTimeout = 60 * time.Second
)

// maxPostviewBytes bounds a postview download.
const maxPostviewBytes = 64 << 20

// Transport errors.
var (
	// ErrBadStatus is returned when the camera does not answer 200 OK.
	ErrBadStatus = errors.New("camera: unexpected HTTP status")

	// ErrMalformedResponse is returned when a reply is not valid JSON-RPC.
	ErrMalformedResponse = errors.New("camera: malformed response")

	// ErrEmptyResult is returned when a call succeeded without the
	// expected result values.
	ErrEmptyResult = errors.New("camera: empty result")
)

// Error codes reported by the camera service.
const (
	CodeAny                       = 1
	CodeTimeout                   = 2
	CodeIllegalArgument           = 3
	CodeIllegalRequest            = 5
	CodeIllegalState              = 7
	CodeNoSuchMethod              = 12
	CodeUnsupportedVersion        = 14
	CodeUnsupportedOperation      = 15
	CodeForbidden                 = 403
	CodeNotAcceptable             = 406
	CodeServiceUnavailable        = 503
	CodeShootingFail              = 40400
	CodeCameraNotReady            = 40401
	CodeDuplicatePolling          = 40402
	CodeStillCapturingNotFinished = 40403
)

// Error is a failure reported by the camera for one call.
type Error struct {
	Method  string
	Code    int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("camera: %s failed with code %d", e.Method, e.Code)
	}
	return fmt.Sprintf("camera: %s failed with code %d: %s", e.Method, e.Code, e.Message)
}

// Code returns the camera error code in err's chain, or 0.
func Code(err error) int {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return 0
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	httpClient  *http.Client
	timeout     time.Duration
	pollTimeout time.Duration
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithTimeout bounds each call. Zero disables the bound.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		if d >= 0 {
			o.timeout = d
		}
	}
}

// WithPollTimeout bounds a long-polling getEvent call. Zero disables the
// bound.
func WithPollTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		if d >= 0 {
			o.pollTimeout = d
		}
	}
}

// Client calls the camera service at one endpoint. It is safe for
// concurrent use.
type Client struct {
	endpoint string
	opts     clientOptions
	nextID   atomic.Uint64
}

// NewClient creates a client for the camera service at endpoint, for
// example "http://192.168.122.1:8080/sony/camera".
func NewClient(endpoint string, opts ...ClientOption) *Client {
	o := clientOptions{
		httpClient:  http.DefaultClient,
		timeout:     DefaultTimeout,
		pollTimeout: DefaultPollTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{endpoint: endpoint, opts: o}
}

// Endpoint returns the service URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type rpcRequest struct {
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      uint64 `json:"id"`
	Version string `json:"version"`
}

type rpcResponse struct {
	Result  []json.RawMessage `json:"result"`
	Results []json.RawMessage `json:"results"`
	Error   []json.RawMessage `json:"error"`
	ID      uint64            `json:"id"`
}

// call performs one JSON-RPC request and returns the result array.
func (c *Client) call(ctx context.Context, timeout time.Duration, method string, params ...any) ([]json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}
	id := c.nextID.Add(1)
	body, err := json.Marshal(rpcRequest{Method: method, Params: params, ID: id, Version: APIVersion})
	if err != nil {
		return nil, fmt.Errorf("camera: encode %s: %w", method, err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("camera: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.opts.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("camera: %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: %s", ErrBadStatus, method, resp.Status)
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedResponse, method, err)
	}
	if out.ID != id {
		return nil, fmt.Errorf("%w: %s: id %d, want %d", ErrMalformedResponse, method, out.ID, id)
	}
	logx.Logger().Debug("camera: call", "method", method, "id", id, "failed", out.Error != nil)
	if out.Error != nil {
		return nil, decodeError(method, out.Error)
	}
	if out.Results != nil {
		return out.Results, nil
	}
	return out.Result, nil
}

func decodeError(method string, raw []json.RawMessage) error {
	e := &Error{Method: method, Code: CodeAny}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw[0], &e.Code); err != nil {
			return fmt.Errorf("%w: %s error code: %w", ErrMalformedResponse, method, err)
		}
	}
	if len(raw) > 1 {
		_ = json.Unmarshal(raw[1], &e.Message)
	}
	return e
}

// decodeResult unmarshals result[i] into v.
func decodeResult(method string, result []json.RawMessage, i int, v any) error {
	if len(result) <= i {
		return fmt.Errorf("%w: %s returned %d values", ErrEmptyResult, method, len(result))
	}
	if err := json.Unmarshal(result[i], v); err != nil {
		return fmt.Errorf("%w: %s result %d: %w", ErrMalformedResponse, method, i, err)
	}
	return nil
}

// simple runs a call whose result carries no data.
func (c *Client) simple(ctx context.Context, method string, params ...any) error {
	_, err := c.call(ctx, c.opts.timeout, method, params...)
	return err
}

// DownloadPostview fetches the image at url, typically one returned by
// TakePicture.
func (c *Client) DownloadPostview(ctx context.Context, url string) ([]byte, error) {
	if c.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("camera: build postview request: %w", err)
	}
	resp, err := c.opts.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("camera: postview: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: postview %s: %s", ErrBadStatus, url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPostviewBytes))
	if err != nil {
		return nil, fmt.Errorf("camera: postview: %w", err)
	}
	return data, nil
}

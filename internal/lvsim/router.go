// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lvsim

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gogpu/drawsurface/internal/logx"
	"github.com/gogpu/drawsurface/liveview"
)

// StreamPath is where cameras serve the liveview stream.
const StreamPath = "/liveview/liveviewstream"

// Response is the JSON envelope of the status endpoints.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Status is reported by GET /status.
type Status struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	FPS           int    `json:"fps"`
	ActiveStreams int64  `json:"active_streams"`
	FramesSent    uint64 `json:"frames_sent"`
	RecMode       bool   `json:"rec_mode"`
	Liveview      bool   `json:"liveview"`
	Zoom          int    `json:"zoom"`
	Pictures      int    `json:"pictures"`
}

type server struct {
	gen     *Generator
	cam     *cameraState
	streams atomic.Int64
	sent    atomic.Uint64
}

// RouterOption configures NewRouter.
type RouterOption func(*routerOptions)

type routerOptions struct {
	pollHold time.Duration
}

// WithPollHold sets how long a long-polling getEvent waits for a change.
func WithPollHold(d time.Duration) RouterOption {
	return func(o *routerOptions) {
		if d > 0 {
			o.pollHold = d
		}
	}
}

// NewRouter returns the camera's HTTP handler:
//
//	POST /sony/camera             JSON-RPC camera service
//	GET  /liveview/liveviewstream endless liveview packet stream
//	GET  /liveview/snapshot.jpg   a single JPEG frame
//	GET  /postview/pictNNNN.jpg   captured stills
//	GET  /status                  JSON status
func NewRouter(gen *Generator, opts ...RouterOption) *gin.Engine {
	o := routerOptions{pollHold: DefaultPollHold}
	for _, opt := range opts {
		opt(&o)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &server{gen: gen, cam: newCameraState(o.pollHold)}
	r.POST(CameraPath, s.rpc)
	r.GET(StreamPath, s.stream)
	r.GET("/liveview/snapshot.jpg", s.snapshot)
	r.GET(postviewPath, s.postview)
	r.GET("/status", s.status)
	return r
}

func (s *server) stream(c *gin.Context) {
	opts := s.gen.Options()
	log := logx.Logger().With("remote", c.ClientIP())

	s.streams.Add(1)
	defer s.streams.Add(-1)

	c.Header("Content-Type", "application/octet-stream")
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	start := time.Now()
	w := liveview.NewWriter(c.Writer)
	w.Timestamp = func() uint32 { return uint32(time.Since(start).Milliseconds()) }

	ticker := time.NewTicker(time.Second / time.Duration(opts.FPS))
	defer ticker.Stop()

	log.Info("lvsim: stream started")
	ctx := c.Request.Context()
	for n := 0; opts.MaxFrames == 0 || n < opts.MaxFrames; n++ {
		if n > 0 {
			select {
			case <-ctx.Done():
				log.Info("lvsim: client gone", "frames", n)
				return
			case <-ticker.C:
			}
		}
		frame, err := s.gen.Frame(n)
		if err != nil {
			log.Warn("lvsim: frame failed", "frame", n, "err", err)
			return
		}
		if err := w.WriteFrame(frame); err != nil {
			log.Info("lvsim: write failed", "frame", n, "err", err)
			return
		}
		c.Writer.Flush()
		s.sent.Add(1)
	}
	log.Info("lvsim: stream finished", "frames", opts.MaxFrames)
}

func (s *server) snapshot(c *gin.Context) {
	frame, err := s.gen.Frame(0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Code: 500, Message: err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", frame)
}

func (s *server) status(c *gin.Context) {
	opts := s.gen.Options()
	st := Status{
		Width:         opts.Width,
		Height:        opts.Height,
		FPS:           opts.FPS,
		ActiveStreams: s.streams.Load(),
		FramesSent:    s.sent.Load(),
	}
	s.cam.mu.Lock()
	st.RecMode = s.cam.recMode
	st.Liveview = s.cam.liveview
	st.Zoom = s.cam.zoom
	st.Pictures = s.cam.pictures
	s.cam.mu.Unlock()
	c.JSON(http.StatusOK, Response{Data: st})
}

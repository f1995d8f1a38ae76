// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lvsim

import (
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"

	"github.com/gogpu/drawsurface/camera"
	"github.com/gogpu/drawsurface/internal/logx"
)

// CameraPath is the JSON-RPC endpoint of the camera service.
const CameraPath = "/sony/camera"

// postviewPath serves captured stills by picture number.
const postviewPath = "/postview/:name"

// DefaultPollHold is how long a long-polling getEvent waits for a change.
const DefaultPollHold = 5 * time.Second

var postviewSizes = []string{"2M", "Original"}

// Methods offered in and out of shooting mode.
var (
	idleMethods = []string{"getMethodTypes", "getEvent", "startRecMode"}
	recMethods  = []string{
		"getMethodTypes", "getEvent", "stopRecMode",
		"startLiveview", "stopLiveview",
		"actTakePicture", "awaitTakePicture",
		"getPostviewImageSize", "getAvailablePostviewImageSize", "setPostviewImageSize",
		"actZoom",
	}
)

// cameraState is the simulated camera behind the JSON-RPC service.
type cameraState struct {
	hold time.Duration

	mu       sync.Mutex
	recMode  bool
	liveview bool
	zoom     int
	postview string
	pictures int
	polling  bool
	version  uint64
	seen     uint64
	changed  chan struct{} // closed and replaced on every change
}

func newCameraState(hold time.Duration) *cameraState {
	return &cameraState{hold: hold, postview: postviewSizes[0], changed: make(chan struct{})}
}

// touchLocked records a change and wakes long polls.
func (s *cameraState) touchLocked() {
	s.version++
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *cameraState) methodsLocked() []string {
	if s.recMode {
		return recMethods
	}
	return idleMethods
}

// rpcError is a camera failure sent as {"error": [code, message]}.
type rpcError struct {
	code    int
	message string
}

func (e *rpcError) Error() string { return e.message }

func errIllegalState(method string) *rpcError {
	return &rpcError{camera.CodeIllegalState, method + " is not available now"}
}

type rpcRequest struct {
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      uint64            `json:"id"`
	Version string            `json:"version"`
}

type rpcHandler func(c *gin.Context, req *rpcRequest) ([]any, error)

func (s *server) rpc(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusOK, gin.H{"error": []any{camera.CodeIllegalRequest, err.Error()}, "id": 0})
		return
	}

	handlers := map[string]rpcHandler{
		"getMethodTypes":                s.getMethodTypes,
		"getEvent":                      s.getEvent,
		"startRecMode":                  s.setRecMode(true),
		"stopRecMode":                   s.setRecMode(false),
		"startLiveview":                 s.startLiveview,
		"stopLiveview":                  s.stopLiveview,
		"actTakePicture":                s.takePicture,
		"awaitTakePicture":              s.takePicture,
		"getPostviewImageSize":          s.getPostviewImageSize,
		"getAvailablePostviewImageSize": s.getAvailablePostviewImageSize,
		"setPostviewImageSize":          s.setPostviewImageSize,
		"actZoom":                       s.actZoom,
	}
	h, ok := handlers[req.Method]
	if !ok {
		c.JSON(http.StatusOK, gin.H{"error": []any{camera.CodeNoSuchMethod, req.Method}, "id": req.ID})
		return
	}
	s.cam.mu.Lock()
	allowed := slices.Contains(s.cam.methodsLocked(), req.Method)
	s.cam.mu.Unlock()

	var result []any
	if allowed {
		result, err = h(c, &req)
	} else {
		err = errIllegalState(req.Method)
	}
	if err != nil {
		code := camera.CodeAny
		if re, ok := err.(*rpcError); ok {
			code = re.code
		}
		logx.Logger().Debug("lvsim: rpc failed", "method", req.Method, "code", code, "err", err)
		c.JSON(http.StatusOK, gin.H{"error": []any{code, err.Error()}, "id": req.ID})
		return
	}
	if req.Method == "getMethodTypes" {
		c.JSON(http.StatusOK, gin.H{"results": result, "id": req.ID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "id": req.ID})
}

func (s *server) getMethodTypes(c *gin.Context, req *rpcRequest) ([]any, error) {
	s.cam.mu.Lock()
	names := s.cam.methodsLocked()
	s.cam.mu.Unlock()
	out := make([]any, 0, len(names))
	for _, name := range names {
		out = append(out, []any{name, []string{}, []string{}, camera.APIVersion})
	}
	return out, nil
}

func (s *server) setRecMode(on bool) rpcHandler {
	return func(c *gin.Context, req *rpcRequest) ([]any, error) {
		s.cam.mu.Lock()
		defer s.cam.mu.Unlock()
		if s.cam.recMode != on {
			s.cam.recMode = on
			if !on {
				s.cam.liveview = false
			}
			s.cam.touchLocked()
		}
		return []any{0}, nil
	}
}

func (s *server) startLiveview(c *gin.Context, req *rpcRequest) ([]any, error) {
	s.cam.mu.Lock()
	defer s.cam.mu.Unlock()
	if !s.cam.liveview {
		s.cam.liveview = true
		s.cam.touchLocked()
	}
	return []any{"http://" + c.Request.Host + StreamPath}, nil
}

func (s *server) stopLiveview(c *gin.Context, req *rpcRequest) ([]any, error) {
	s.cam.mu.Lock()
	defer s.cam.mu.Unlock()
	if s.cam.liveview {
		s.cam.liveview = false
		s.cam.touchLocked()
	}
	return []any{0}, nil
}

func (s *server) takePicture(c *gin.Context, req *rpcRequest) ([]any, error) {
	s.cam.mu.Lock()
	defer s.cam.mu.Unlock()
	s.cam.pictures++
	s.cam.touchLocked()
	url := fmt.Sprintf("http://%s/postview/pict%04d.jpg", c.Request.Host, s.cam.pictures)
	return []any{[]string{url}}, nil
}

func (s *server) getPostviewImageSize(c *gin.Context, req *rpcRequest) ([]any, error) {
	s.cam.mu.Lock()
	defer s.cam.mu.Unlock()
	return []any{s.cam.postview}, nil
}

func (s *server) getAvailablePostviewImageSize(c *gin.Context, req *rpcRequest) ([]any, error) {
	s.cam.mu.Lock()
	defer s.cam.mu.Unlock()
	return []any{s.cam.postview, postviewSizes}, nil
}

func (s *server) setPostviewImageSize(c *gin.Context, req *rpcRequest) ([]any, error) {
	var size string
	if len(req.Params) != 1 || json.Unmarshal(req.Params[0], &size) != nil || !slices.Contains(postviewSizes, size) {
		return nil, &rpcError{camera.CodeIllegalArgument, "unsupported postview size"}
	}
	s.cam.mu.Lock()
	defer s.cam.mu.Unlock()
	if s.cam.postview != size {
		s.cam.postview = size
		s.cam.touchLocked()
	}
	return []any{0}, nil
}

func (s *server) actZoom(c *gin.Context, req *rpcRequest) ([]any, error) {
	var dir, mv string
	if len(req.Params) != 2 || json.Unmarshal(req.Params[0], &dir) != nil || json.Unmarshal(req.Params[1], &mv) != nil {
		return nil, &rpcError{camera.CodeIllegalArgument, "actZoom takes direction and movement"}
	}
	var sign int
	switch camera.ZoomDirection(dir) {
	case camera.ZoomIn:
		sign = 1
	case camera.ZoomOut:
		sign = -1
	default:
		return nil, &rpcError{camera.CodeIllegalArgument, "bad zoom direction " + dir}
	}
	var step int
	switch camera.ZoomMovement(mv) {
	case camera.ZoomOneShot:
		step = 10
	case camera.ZoomStart:
		step = 100
	case camera.ZoomStop:
		step = 0
	default:
		return nil, &rpcError{camera.CodeIllegalArgument, "bad zoom movement " + mv}
	}

	s.cam.mu.Lock()
	defer s.cam.mu.Unlock()
	zoom := min(max(s.cam.zoom+sign*step, 0), 100)
	if zoom != s.cam.zoom {
		s.cam.zoom = zoom
		s.cam.touchLocked()
	}
	return []any{0}, nil
}

// getEvent returns the whole state. A long poll first waits until the
// state changed since the last answered poll or the hold time passes.
func (s *server) getEvent(c *gin.Context, req *rpcRequest) ([]any, error) {
	var long bool
	if len(req.Params) > 0 && json.Unmarshal(req.Params[0], &long) != nil {
		return nil, &rpcError{camera.CodeIllegalArgument, "getEvent takes a boolean"}
	}

	cam := s.cam
	cam.mu.Lock()
	if long {
		if cam.polling {
			cam.mu.Unlock()
			return nil, &rpcError{camera.CodeDuplicatePolling, "already polling"}
		}
		if cam.version == cam.seen {
			cam.polling = true
			changed := cam.changed
			cam.mu.Unlock()
			timer := time.NewTimer(cam.hold)
			select {
			case <-changed:
			case <-timer.C:
			case <-c.Request.Context().Done():
			}
			timer.Stop()
			cam.mu.Lock()
			cam.polling = false
		}
	}
	cam.seen = cam.version
	out := []any{
		gin.H{"type": "availableApi", "names": cam.methodsLocked()},
		gin.H{"type": "cameraStatus", "cameraStatus": cam.statusLocked()},
		gin.H{
			"type":                   "zoomInformation",
			"zoomPosition":           cam.zoom,
			"zoomNumberBox":          1,
			"zoomIndexCurrentBox":    0,
			"zoomPositionCurrentBox": cam.zoom,
		},
		gin.H{"type": "liveviewStatus", "liveviewStatus": cam.liveview},
		gin.H{
			"type":                        "postviewImageSize",
			"currentPostviewImageSize":    cam.postview,
			"postviewImageSizeCandidates": postviewSizes,
		},
		nil,
	}
	cam.mu.Unlock()
	return out, nil
}

func (s *cameraState) statusLocked() string {
	if s.recMode {
		return "IDLE"
	}
	return "NotReady"
}

// postview serves a captured still.
func (s *server) postview(c *gin.Context) {
	var n int
	if _, err := fmt.Sscanf(c.Param("name"), "pict%04d.jpg", &n); err != nil {
		c.JSON(http.StatusNotFound, Response{Code: http.StatusNotFound, Message: "no such picture"})
		return
	}
	s.cam.mu.Lock()
	taken := s.cam.pictures
	s.cam.mu.Unlock()
	if n < 1 || n > taken {
		c.JSON(http.StatusNotFound, Response{Code: http.StatusNotFound, Message: "no such picture"})
		return
	}
	frame, err := s.gen.Frame(n * s.gen.Options().FPS)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Code: http.StatusInternalServerError, Message: err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", frame)
}

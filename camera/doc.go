// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package camera controls a network camera through its JSON-RPC camera
// service.
//
// A Client issues single calls: recording mode, liveview start and stop,
// still capture with postview download, zoom and postview size. An
// Observer polls getEvent in the background and reports which parts of the
// camera Status changed.
//
// # Quick Start
//
//	cam := camera.NewClient("http://192.168.122.1:8080/sony/camera")
//	url, err := cam.PrepareLiveview(ctx)
//	if err != nil {
//	    return err
//	}
//	// stream url with liveview.Client
//
// # Errors
//
// Failures reported by the camera are returned as *Error. Code extracts the
// numeric code from any error chain:
//
//	if camera.Code(err) == camera.CodeStillCapturingNotFinished { ... }
package camera

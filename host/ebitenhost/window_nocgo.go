// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !cgo && !windows && !darwin

package ebitenhost

import (
	"errors"

	"github.com/gogpu/drawsurface"
)

// ErrWindowUnavailable is returned by Run in builds without window support.
var ErrWindowUnavailable = errors.New("ebitenhost: window mode requires cgo (build with CGO_ENABLED=1)")

// Run reports ErrWindowUnavailable.
func Run(_ *drawsurface.Bridge, _ ...Option) error {
	return ErrWindowUnavailable
}

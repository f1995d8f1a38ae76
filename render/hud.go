// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	hudSourceOnce sync.Once
	hudSource     *text.FontSource
	errHUDSource  error
)

// hudFontSource parses the embedded Go Regular font once per process.
func hudFontSource() (*text.FontSource, error) {
	hudSourceOnce.Do(func() {
		hudSource, errHUDSource = text.NewFontSource(goregular.TTF)
		if errHUDSource != nil {
			errHUDSource = fmt.Errorf("render: load HUD font: %w", errHUDSource)
		}
	})
	return hudSource, errHUDSource
}

// fpsMeter smooths frame rate with an exponential moving average.
type fpsMeter struct {
	fps float64
}

const fpsSmoothing = 0.1

func (m *fpsMeter) add(delta float64) {
	if delta <= 0 {
		return
	}
	cur := 1 / delta
	if m.fps == 0 {
		m.fps = cur
		return
	}
	m.fps += (cur - m.fps) * fpsSmoothing
}

func (m *fpsMeter) value() float64 {
	return m.fps
}

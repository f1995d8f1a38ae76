// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ebitenhost

// Option configures the window.
type Option func(*options)

type options struct {
	title  string
	width  int
	height int
	tps    int
}

func defaultOptions() options {
	return options{
		title:  "drawsurface",
		width:  800,
		height: 600,
		tps:    60,
	}
}

// WithTitle sets the window title.
func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

// WithWindowSize sets the initial window size in logical points.
func WithWindowSize(width, height int) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.width, o.height = width, height
		}
	}
}

// WithTPS sets the update rate in ticks per second.
func WithTPS(tps int) Option {
	return func(o *options) {
		if tps > 0 {
			o.tps = tps
		}
	}
}

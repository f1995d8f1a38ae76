// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package drawsurface

import (
	"log/slog"

	"github.com/gogpu/gg"

	"github.com/gogpu/drawsurface/internal/logx"
)

// SetLogger configures the logger for drawsurface and all its sub-packages.
// By default, drawsurface produces no log output. Call SetLogger to enable
// logging. The logger is also handed to gg, so drawing diagnostics end up in
// the same place.
//
// SetLogger is safe for concurrent use. Pass nil to restore silence.
//
// Log levels used by drawsurface:
//   - [slog.LevelDebug]: per-frame diagnostics (texture uploads, size mismatches)
//   - [slog.LevelInfo]: lifecycle events (connect, disconnect, stream open)
//   - [slog.LevelWarn]: non-fatal issues (renderer close errors, HUD font missing)
//
// Example:
//
//	drawsurface.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logx.Set(l)
	gg.SetLogger(l)
}

// Logger returns the current logger. Never nil.
func Logger() *slog.Logger {
	return logx.Logger()
}

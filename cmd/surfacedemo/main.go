// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command surfacedemo renders frames through a drawing surface bridge on the
// headless compositor and saves the last frame as PNG.
//
// Usage:
//
//	surfacedemo -renderer cube -frames 90 -output cube.png
//	surfacedemo -renderer liveview -camera http://localhost:8080/sony/camera
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gogpu/drawsurface"
	"github.com/gogpu/drawsurface/host/headless"
	"github.com/gogpu/drawsurface/internal/cli"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		renderer = flag.String("renderer", "cube", "renderer name (cube, liveview)")
		width    = flag.Int("width", 800, "surface width in points")
		height   = flag.Int("height", 600, "surface height in points")
		scale    = flag.Float64("scale", 1, "device scale factor")
		frames   = flag.Int("frames", 60, "number of frames to compose")
		fps      = flag.Int("fps", 60, "simulated frame rate")
		output   = flag.String("output", "surface.png", "output file")
		endpoint = flag.String("camera", "", "camera JSON-RPC endpoint feeding the liveview renderer")
		verbose  = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	cli.SetupLogging(*verbose)
	if *fps <= 0 || *frames <= 0 {
		return errors.New("-fps and -frames must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	renderers := cli.NewRenderers()
	defer renderers.Close()

	factory, err := renderers.Factory(*renderer)
	if err != nil {
		return err
	}
	if *endpoint != "" {
		if err := renderers.StartLiveview(ctx, *endpoint); err != nil {
			return err
		}
		if err := renderers.WaitFirstFrame(ctx, 10*time.Second); err != nil {
			return fmt.Errorf("liveview: %w", err)
		}
	}

	comp := headless.NewCompositor(
		headless.WithScaleFactor(*scale),
		headless.WithFrameInterval(time.Second/time.Duration(*fps)),
	)
	bridge := drawsurface.New(
		drawsurface.WithRenderer(factory),
		drawsurface.WithClock(comp.Clock()),
		drawsurface.WithWindowBounds(drawsurface.Size{Width: float32(*width), Height: float32(*height)}),
	)

	last, err := comp.Run(ctx, bridge.CreateContentProvider(), *frames)
	if err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}
	if err := last.SavePNG(*output); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}

	log.Printf("Frame saved to %s (%dx%d, %d redraw requests, %.3fs simulated)\n",
		*output, last.Width(), last.Height(), comp.Redraws(), bridge.Timer().Total())
	return nil
}

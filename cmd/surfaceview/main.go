// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command surfaceview opens a window hosting a drawing surface bridge.
// Drag with the mouse or a finger to rotate the cube.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/gogpu/drawsurface"
	"github.com/gogpu/drawsurface/host/ebitenhost"
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
		width    = flag.Int("width", 800, "window width")
		height   = flag.Int("height", 600, "window height")
		endpoint = flag.String("camera", "", "camera JSON-RPC endpoint feeding the liveview renderer")
		verbose  = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	cli.SetupLogging(*verbose)

	renderers := cli.NewRenderers()
	defer renderers.Close()

	factory, err := renderers.Factory(*renderer)
	if err != nil {
		return err
	}
	if *endpoint != "" {
		if err := renderers.StartLiveview(context.Background(), *endpoint); err != nil {
			return err
		}
	}

	bridge := drawsurface.New(drawsurface.WithRenderer(factory))
	return ebitenhost.Run(bridge,
		ebitenhost.WithTitle("drawsurface - "+*renderer),
		ebitenhost.WithWindowSize(*width, *height),
	)
}

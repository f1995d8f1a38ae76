// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command lvsim serves a simulated camera: its JSON-RPC control service and
// liveview stream.
//
//	lvsim -addr :8080 -fps 30
//	surfacedemo -renderer liveview -camera http://localhost:8080/sony/camera
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gogpu/drawsurface/internal/cli"
	"github.com/gogpu/drawsurface/internal/lvsim"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	def := lvsim.DefaultOptions()
	var (
		addr    = flag.String("addr", ":8080", "listen address")
		width   = flag.Int("width", def.Width, "frame width")
		height  = flag.Int("height", def.Height, "frame height")
		fps     = flag.Int("fps", def.FPS, "frames per second")
		quality = flag.Int("quality", def.Quality, "JPEG quality (1-100)")
		maxN    = flag.Int("max-frames", 0, "end each stream after this many frames (0 = endless)")
		hold    = flag.Duration("poll-hold", lvsim.DefaultPollHold, "how long a long-polling getEvent waits")
		verbose = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	cli.SetupLogging(*verbose)

	gen, err := lvsim.NewGenerator(lvsim.Options{
		Width:     *width,
		Height:    *height,
		FPS:       *fps,
		Quality:   *quality,
		MaxFrames: *maxN,
	})
	if err != nil {
		return err
	}
	defer gen.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Streams run until the client leaves; tie them to ctx so Ctrl-C ends them.
	srv := &http.Server{
		Addr:              *addr,
		Handler:           lvsim.NewRouter(gen, lvsim.WithPollHold(*hold)),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("camera at http://localhost%s%s, liveview at %s\n", *addr, lvsim.CameraPath, lvsim.StreamPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

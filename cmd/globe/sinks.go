package main

import (
	"context"
	"errors"
	"time"

	"github.com/globe-viz/globe/internal/config"
	"github.com/globe-viz/globe/internal/demo"
	"github.com/globe-viz/globe/internal/export"
	"github.com/globe-viz/globe/internal/geo"
	"github.com/globe-viz/globe/internal/render"
	"github.com/globe-viz/globe/internal/scene"
	"github.com/globe-viz/globe/internal/stream"
	"github.com/globe-viz/globe/pkg/core"
	"github.com/globe-viz/globe/pkg/streaming"
)

// runServe runs the frame loop headless and streams frames to WebSocket
// clients until ctx is done.
func runServe(ctx context.Context, sc *scene.Context, demoName string, hubs []streaming.HubInfo, opts render.HeadlessOptions, sinks []render.Sink) error {
	cfg := config.GetStreamConfig()
	var interval time.Duration
	if cfg.Rate > 0 {
		interval = time.Duration(float64(time.Second) / cfg.Rate)
	}

	hub := stream.NewHub(interval, Logger)
	if err := hub.SetHello(streaming.HelloPayload{
		Demo:  demoName,
		Demos: demo.Names(),
		Rate:  cfg.Rate,
		Hubs:  hubs,
	}); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- stream.Serve(ctx, cfg.Address, hub)
	}()

	sinks = append(sinks, func(f *scene.Frame, _ time.Duration) error {
		return hub.Publish(f)
	})
	loopErr := render.RunHeadless(ctx, sc, opts, sinks...)
	cancel()
	return errors.Join(loopErr, <-errCh)
}

// hubInfo describes the origin followed by every target for the hello
// message.
func hubInfo(origin core.Hub, targets []core.Hub) []streaming.HubInfo {
	out := make([]streaming.HubInfo, 0, 1+len(targets))
	for _, h := range append([]core.Hub{origin}, targets...) {
		x, y := geo.MercatorFromLonLat(h.Location.LonDeg, h.Location.LatDeg)
		out = append(out, streaming.HubInfo{
			Name:       h.Name,
			Lat:        h.Location.LatDeg,
			Lon:        h.Location.LonDeg,
			MercatorX:  x,
			MercatorY:  y,
			DistanceKm: geo.Haversine(origin.Location, h.Location) / 1000,
		})
	}
	return out
}

// runExport runs the frame loop headless, recording frames, and writes the
// recording when the loop ends.
func runExport(ctx context.Context, sc *scene.Context, demoName string, opts render.HeadlessOptions, sinks []render.Sink) error {
	cfg := config.GetExportConfig()
	rec := export.NewRecorder(demoName, export.Config{
		OutputDir: cfg.OutputDir,
		Compress:  cfg.Compress,
		Every:     cfg.Every,
		MaxFrames: cfg.MaxFrames,
	})
	if opts.Ticks <= 0 && cfg.MaxFrames > 0 {
		opts.Ticks = cfg.MaxFrames * max(cfg.Every, 1)
	}

	sinks = append(sinks, func(f *scene.Frame, _ time.Duration) error {
		return rec.Record(f)
	})
	loopErr := render.RunHeadless(ctx, sc, opts, sinks...)

	path, err := rec.Write()
	if err != nil {
		return errors.Join(loopErr, err)
	}
	Logger.Info("Exported frames", "path", path, "frames", rec.Len())
	return loopErr
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/globe-viz/globe/internal/config"
	"github.com/globe-viz/globe/internal/demo"
	"github.com/globe-viz/globe/internal/logging"
	intOtel "github.com/globe-viz/globe/internal/otel"
	"github.com/globe-viz/globe/internal/render"
	"github.com/globe-viz/globe/internal/scene"
	"github.com/globe-viz/globe/internal/storage"
)

// build info, set via ldflags
var (
	CurrentVersion = "0.1.0"
	BuildDate      = "unknown"
)

const AppName = "globe"

// run modes
const (
	ModeWindow   = "window"
	ModeHeadless = "headless"
	ModeServe    = "serve"
	ModeExport   = "export"
)

var (
	SessionStartTime = time.Now()

	SlogManager  *logging.SlogManager
	Logger       *slog.Logger
	OTelProvider *intOtel.Provider
	LogFile      *os.File
	Cache        *storage.DatasetCache

	// current is read by the log context provider from any goroutine
	current atomic.Pointer[scene.Context]
)

func main() {
	configDir := flag.String("config", ".", "directory containing "+config.FileName)
	mode := flag.String("mode", ModeWindow, "run mode: window, headless, serve or export")
	demoName := flag.String("demo", "", "demo to run: "+strings.Join(demo.Names(), ", "))
	ticks := flag.Int("ticks", -1, "headless frame limit, overrides render.ticks")
	flag.Parse()

	if err := run(*configDir, *mode, *demoName, *ticks); err != nil {
		fmt.Fprintln(os.Stderr, AppName+":", err)
		os.Exit(1)
	}
}

func run(configDir, mode, demoName string, ticks int) error {
	switch mode {
	case ModeWindow, ModeHeadless, ModeServe, ModeExport:
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	configErr := config.Load(configDir)
	if configErr != nil {
		config.LoadDefaults()
	}

	setupLogging()
	defer shutdown()

	if configErr != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", configErr)
	} else {
		Logger.Info("Loaded config", "dir", configDir)
	}
	Logger.Info("Starting up", "version", CurrentVersion, "build", BuildDate, "mode", mode)

	if demoName == "" {
		demoName = config.GetString("demo")
	}
	renderCfg := config.GetRenderConfig()
	if ticks >= 0 {
		renderCfg.Ticks = ticks
	}

	setupCache()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := scene.NewContext(demoName, Logger)
	if err != nil {
		return err
	}
	current.Store(sc)
	defer sc.Close()

	opts := demo.Options{
		Width:   renderCfg.Width,
		Height:  renderCfg.Height,
		Seed:    uint64(SessionStartTime.UnixNano()),
		Borders: bordersLoader(),
	}
	if err := applyTraffic(&opts, config.GetTrafficConfig()); err != nil {
		return err
	}
	if err := demo.Build(ctx, demoName, sc, opts); err != nil {
		return err
	}
	sc.Camera.SetAspect(renderCfg.Width, renderCfg.Height)

	hz := renderCfg.Hz
	if hz <= 0 {
		hz = 60
	}
	dt := time.Duration(float64(time.Second) / hz)

	var sinks []render.Sink
	if s, closeInflux := influxSink(ctx, dt); s != nil {
		sinks = append(sinks, s)
		defer closeInflux()
	}
	if stopMonitor := startMonitor(sc); stopMonitor != nil {
		defer stopMonitor()
	}

	headless := render.HeadlessOptions{Hz: hz, Ticks: renderCfg.Ticks}

	switch mode {
	case ModeWindow:
		return render.RunWindow(sc, render.WindowOptions{
			Title:  fmt.Sprintf("%s (%s)", AppName, demoName),
			Width:  renderCfg.Width,
			Height: renderCfg.Height,
			TPS:    int(hz),
		}, sinks...)

	case ModeHeadless:
		return render.RunHeadless(ctx, sc, headless, sinks...)

	case ModeServe:
		origin, targets := routeHubs(opts)
		return runServe(ctx, sc, demoName, hubInfo(origin, targets), headless, sinks)

	case ModeExport:
		return runExport(ctx, sc, demoName, headless, sinks)
	}
	return nil
}

// shutdown flushes telemetry and closes shared resources.
func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if Cache != nil {
		if err := Cache.Close(); err != nil {
			Logger.Error("Failed to close cache", "error", err)
		}
	}
	if err := SlogManager.Flush(ctx); err != nil {
		Logger.Error("Failed to flush logs", "error", err)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Error("Failed to shut down OTel", "error", err)
		}
	}
	Logger.Info("Shut down", "uptime", time.Since(SessionStartTime).Round(time.Millisecond))
	if LogFile != nil {
		LogFile.Close()
	}
}

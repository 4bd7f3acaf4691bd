package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/globe-viz/globe/internal/anim"
	"github.com/globe-viz/globe/internal/borders"
	"github.com/globe-viz/globe/internal/config"
	"github.com/globe-viz/globe/internal/demo"
	"github.com/globe-viz/globe/internal/geo"
	"github.com/globe-viz/globe/internal/influx"
	"github.com/globe-viz/globe/internal/logging"
	"github.com/globe-viz/globe/internal/monitor"
	intOtel "github.com/globe-viz/globe/internal/otel"
	"github.com/globe-viz/globe/internal/pulse"
	"github.com/globe-viz/globe/internal/render"
	"github.com/globe-viz/globe/internal/scene"
	"github.com/globe-viz/globe/internal/storage"
	"github.com/globe-viz/globe/pkg/core"
)

// setupLogging opens the session log file and configures slog, OTel and
// Graylog outputs.
func setupLogging() {
	level := config.GetString("logLevel")
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(logging.Options{Level: level})
	Logger = SlogManager.Logger()

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		Logger.Error("Failed to create logs directory", "error", err, "path", logsDir)
	}
	logPath := logging.LogFilePath(logsDir, AppName, SessionStartTime)
	file, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", logPath)
	} else {
		LogFile = file
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		cfg := intOtel.Config{
			Enabled:        true,
			ServiceName:    otelCfg.ServiceName,
			BatchTimeout:   otelCfg.BatchTimeout,
			LogWriter:      logWriter(),
			Endpoint:       otelCfg.Endpoint,
			Insecure:       otelCfg.Insecure,
			MetricInterval: otelCfg.MetricInterval,
		}
		if otelCfg.Metrics {
			cfg.MetricWriter = logWriter()
		}
		OTelProvider, err = intOtel.New(cfg)
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
			OTelProvider = nil
		} else {
			Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint, "metrics", otelCfg.Metrics)
		}
	}

	opts := logging.Options{
		Level:   level,
		Service: AppName,
		Frames: func() (logging.FrameInfo, bool) {
			sc := current.Load()
			if sc == nil {
				return logging.FrameInfo{}, false
			}
			return logging.FrameInfo{Demo: sc.Name, Frame: sc.Frames(), Elapsed: sc.Elapsed()}, true
		},
	}
	if LogFile != nil {
		opts.File = LogFile
	}
	if OTelProvider != nil {
		opts.Provider = OTelProvider.LoggerProvider()
	}

	graylogCfg := config.GetGraylogConfig()
	if graylogCfg.Enabled {
		w, err := logging.NewGraylogWriter(graylogCfg.Address)
		if err != nil {
			Logger.Error("Failed to set up Graylog", "error", err)
		} else {
			opts.Graylog = w
		}
	}

	SlogManager.Setup(opts)
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", logPath)
}

// logWriter returns the session log file, or stdout when it could not be
// opened.
func logWriter() io.Writer {
	if LogFile != nil {
		return LogFile
	}
	return os.Stdout
}

// setupCache opens the dataset cache. Failures are logged and leave the
// cache disabled.
func setupCache() {
	cacheCfg := config.GetCacheConfig()
	db := config.GetDBConfig()
	log := logging.NewZerolog(logWriter(), config.GetString("logLevel"), "cache")

	c, err := storage.Open(storage.Config{
		Type:       cacheCfg.Type,
		SqlitePath: cacheCfg.SqlitePath,
		TTL:        cacheCfg.TTL,
		Postgres: storage.PostgresConfig{
			Host:     db.Host,
			Port:     db.Port,
			Username: db.Username,
			Password: db.Password,
			Database: db.Database,
		},
	}, log)
	if err != nil {
		Logger.Error("Failed to open dataset cache, continuing without it", "error", err)
		return
	}
	Cache = c
	if c != nil {
		Logger.Info("Dataset cache ready", "type", cacheCfg.Type, "ttl", cacheCfg.TTL)
	}
}

// applyTraffic fills the route and pulse overrides of opts from cfg.
func applyTraffic(opts *demo.Options, cfg config.TrafficConfig) error {
	if cfg.Origin != "" {
		h, err := geo.ParseHub(cfg.Origin)
		if err != nil {
			return fmt.Errorf("globe.origin: %w", err)
		}
		opts.Origin = &h
	}
	for _, t := range cfg.Targets {
		h, err := geo.ParseHub(t)
		if err != nil {
			return fmt.Errorf("globe.targets: %w", err)
		}
		opts.Targets = append(opts.Targets, h)
	}

	if err := pulse.ValidateMaxLen(cfg.PulseMaxLen); err != nil {
		return fmt.Errorf("pulse.maxLen: %w", err)
	}
	opts.Pulse.MaxLen = cfg.PulseMaxLen

	ease, ok := anim.EaseByName(cfg.PulseEase)
	if !ok {
		return fmt.Errorf("pulse.ease: unknown ease %q", cfg.PulseEase)
	}
	opts.PulseEase = ease
	return nil
}

// routeHubs returns the hubs the globe routes run between.
func routeHubs(opts demo.Options) (core.Hub, []core.Hub) {
	origin := core.DefaultOrigin
	if opts.Origin != nil {
		origin = *opts.Origin
	}
	if len(opts.Targets) > 0 {
		return origin, opts.Targets
	}
	return origin, core.DefaultTargets
}

// bordersLoader returns the border overlay loader, or nil when disabled.
func bordersLoader() *borders.Loader {
	cfg := config.GetBordersConfig()
	if !cfg.Enabled {
		return nil
	}
	l := &borders.Loader{
		Client: borders.NewClient(cfg.URL),
		Logger: Logger,
		Object: cfg.Object,
		Radius: demo.EarthRadius,
	}
	if Cache != nil {
		l.Cache = Cache
	}
	return l
}

// influxSink returns a sink writing frame telemetry, or nil when InfluxDB
// is disabled. The returned func flushes and closes the manager.
func influxSink(ctx context.Context, dt time.Duration) (render.Sink, func()) {
	cfg := config.GetInfluxConfig()
	if !cfg.Enabled {
		return nil, nil
	}
	log := logging.NewZerolog(logWriter(), config.GetString("logLevel"), "influx")
	m := influx.NewManager(influx.Config{
		Enabled:  cfg.Enabled,
		Protocol: cfg.Protocol,
		Host:     cfg.Host,
		Port:     cfg.Port,
		Token:    cfg.Token,
		Org:      cfg.Org,
	}, log, cfg.BackupPath)
	if err := m.Connect(ctx); err != nil {
		if !errors.Is(err, influx.ErrDisabled) {
			Logger.Error("Failed to connect to InfluxDB", "error", err)
		}
		return nil, nil
	}

	sampled := logging.Sampled(log)
	sink := func(f *scene.Frame, step time.Duration) error {
		sc := current.Load()
		stats := influx.FrameStats{
			Frame:     f.Number,
			DT:        dt,
			Step:      step,
			Drawables: len(f.Drawables),
			Tubes:     sc.Tubes.Live(),
			Vertices:  sc.Tubes.LiveVertices(),
			Tweens:    sc.Scheduler.Len(),
		}
		if err := m.WriteFrame(f.Demo, stats, time.Now()); err != nil {
			sampled.Error().Err(err).Uint64("frame", f.Number).Msg("Failed to write frame telemetry")
		}
		return nil
	}
	closeFn := func() {
		if err := m.Close(); err != nil {
			Logger.Error("Failed to close InfluxDB manager", "error", err)
		}
	}
	return sink, closeFn
}

// startMonitor starts the status monitor when enabled and returns its stop
// func.
func startMonitor(sc *scene.Context) func() {
	cfg := config.GetMonitorConfig()
	if !cfg.Enabled {
		return nil
	}
	deps := monitor.Dependencies{
		Context:   sc,
		Logger:    Logger,
		StatusDir: cfg.StatusDir,
		Interval:  cfg.Interval,
	}
	if Cache != nil {
		deps.DB = Cache.DB()
	}
	svc := monitor.NewService(deps)
	if err := svc.Start(); err != nil {
		Logger.Error("Failed to start status monitor", "error", err)
		return nil
	}
	return svc.Stop
}

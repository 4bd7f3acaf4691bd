// Package demo builds the scenes the engine can run.
package demo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/globe-viz/globe/internal/anim"
	"github.com/globe-viz/globe/internal/borders"
	"github.com/globe-viz/globe/internal/pulse"
	"github.com/globe-viz/globe/internal/scene"
	"github.com/globe-viz/globe/internal/tube"
	"github.com/globe-viz/globe/pkg/core"
)

// ErrUnknownDemo is returned for a name with no registered builder.
var ErrUnknownDemo = errors.New("unknown demo")

// Options tune a build. Zero values select the stock look.
type Options struct {
	Width, Height int
	Seed          uint64 // star field seed

	Origin  *core.Hub
	Targets []core.Hub

	// Pulse overrides the stock pulse; zero fields keep their defaults.
	Pulse     pulse.Config
	PulseEase anim.Ease // Linear when nil

	// Borders, when set, is started in the background by demos that show
	// country outlines.
	Borders *borders.Loader
}

// pulseConfig merges the pulse override onto the defaults.
func (o Options) pulseConfig() pulse.Config {
	cfg := pulse.DefaultConfig()
	if o.Pulse.MaxLen != 0 {
		cfg.MaxLen = o.Pulse.MaxLen
	}
	if o.Pulse.Divisions != 0 {
		cfg.Divisions = o.Pulse.Divisions
	}
	if o.Pulse.Tube != (tube.Options{}) {
		cfg.Tube = o.Pulse.Tube
	}
	return cfg
}

func (o Options) pulseEase() anim.Ease {
	if o.PulseEase == nil {
		return anim.Linear
	}
	return o.PulseEase
}

func (o Options) aspect() float64 {
	if o.Width <= 0 || o.Height <= 0 {
		return 16.0 / 9.0
	}
	return float64(o.Width) / float64(o.Height)
}

// Builder populates sc. Long-running background work must stop when ctx is
// cancelled.
type Builder func(ctx context.Context, sc *scene.Context, opts Options) error

var registry = map[string]Builder{
	"globe":     Globe,
	"globe-dot": GlobeDot,
	"transform": Transform,
	"earth":     Earth,
}

// Names lists the registered demos in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build runs the builder registered as name on sc.
func Build(ctx context.Context, name string, sc *scene.Context, opts Options) error {
	b, ok := registry[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDemo, name)
	}
	if err := b(ctx, sc, opts); err != nil {
		return fmt.Errorf("building %s: %w", name, err)
	}
	sc.Logger.Info("demo built", "demo", name, "nodes", sc.Scene.Root.Count(), "tweens", sc.Scheduler.Len())
	return nil
}

package demo

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/globe-viz/globe/internal/anim"
	"github.com/globe-viz/globe/internal/curve"
	"github.com/globe-viz/globe/internal/geo"
	"github.com/globe-viz/globe/internal/pulse"
	"github.com/globe-viz/globe/internal/scene"
	"github.com/globe-viz/globe/internal/sphere"
	"github.com/globe-viz/globe/internal/tube"
	"github.com/globe-viz/globe/pkg/core"
	"gonum.org/v1/gonum/spatial/r3"
)

// Globe scene constants.
const (
	EarthRadius = 1.4
	DotCount    = 12000
	StarCount   = 1200
	StarRadius  = 40

	background core.Color = 0x00040a
	surfaceLift           = 1.001
)

// Base arcs are drawn as thin static tubes. Until its pulse starts, each
// route shows the whole arc as a neon tube.
var (
	baseTube = tube.Options{TubularSegments: 160, Radius: 0.01, RadialSegments: 8}
	idleNeon = tube.Options{TubularSegments: 32, Radius: 0.02, RadialSegments: 16}
)

// Pulse timing.
const (
	pulseDuration = 5 * time.Second
	pulseDelay    = 500 * time.Millisecond
	pulseStagger  = 300 * time.Millisecond
)

// globeBase adds everything the two globe demos share: fog, camera, lights,
// stars, the rotating earth group and its dotted surface.
func globeBase(sc *scene.Context, opts Options, dotOpacity float64) (*scene.Node, error) {
	sc.Scene.Background = background
	sc.Scene.Fog = &scene.Fog{Color: background, Density: 0.15}

	cam := scene.NewCamera(60, opts.aspect(), 0.1, 200, r3.Vec{Y: 1.6, Z: 4.2})
	cam.Damping = 0.05
	*sc.Camera = *cam

	rim := scene.NewLight("rim", scene.Light{Kind: scene.Directional, Color: 0x88aaff, Intensity: 0.4})
	rim.Transform.Position = r3.Vec{X: -2, Y: 1, Z: 2}
	sc.Scene.Add(
		scene.NewLight("ambient", scene.Light{Kind: scene.Ambient, Color: 0x334455, Intensity: 0.2}),
		rim,
		scene.NewPoints("stars", sphere.StarShell(StarCount, StarRadius, opts.Seed), scene.Material{
			Color: 0xffffff, Opacity: 0.85, Size: 0.06, Additive: true,
		}),
	)

	earth := scene.NewGroup("earth")
	sc.Scene.Add(earth)
	earth.Add(scene.NewPoints("dots", sphere.Fibonacci(DotCount, EarthRadius), scene.Material{
		Color: 0x6fd2ff, Opacity: dotOpacity, Size: 0.015, Additive: true,
	}))

	// one turn every 80 seconds
	_, err := sc.Scheduler.Add(anim.Tween{
		Target:   anim.Rotation(&earth.Transform.Rotation, nil),
		To:       r3.Vec{Y: 2 * math.Pi},
		Duration: 80 * time.Second,
		Repeat:   anim.Forever,
		Ease:     anim.Linear,
	})
	if err != nil {
		return nil, err
	}
	return earth, nil
}

func signalDot(name string, size float64, color core.Color, pos r3.Vec) *scene.Node {
	n := scene.NewSphere(name, scene.Sphere{Radius: size, WidthSegments: 16, HeightSegments: 16}, scene.Material{
		Color: color, Opacity: 1, Additive: true,
	})
	n.Transform.Position = pos
	return n
}

// pulseDot makes a dot breathe between its size and 1.8 times it.
func pulseDot(sc *scene.Context, n *scene.Node) error {
	_, err := sc.Scheduler.Add(anim.Tween{
		Target:      anim.Vector(&n.Transform.Scale, nil),
		FromCurrent: true,
		To:          r3.Vec{X: 1.8, Y: 1.8, Z: 1.8},
		Duration:    1200 * time.Millisecond,
		Repeat:      anim.Forever,
		Yoyo:        true,
		Ease:        anim.Power1Out,
	})
	return err
}

func staticTube(sc *scene.Context, c curve.Curve, name string, opacity float64) *scene.Node {
	g := sc.Tubes.Track(tube.New(c, baseTube))
	sc.OnClose(func() { sc.Tubes.Release(g) })
	return scene.NewTube(name, g, scene.Material{Color: 0x00ffff, Opacity: opacity, Additive: true})
}

func hubs(opts Options, fallback core.Hub) (core.Hub, []core.Hub) {
	origin := fallback
	if opts.Origin != nil {
		origin = *opts.Origin
	}
	targets := opts.Targets
	if len(targets) == 0 {
		targets = core.DefaultTargets
	}
	return origin, targets
}

// Globe is the dotted earth with neon pulses travelling from the origin hub
// to every target along bulging arcs, plus country borders.
func Globe(ctx context.Context, sc *scene.Context, opts Options) error {
	earth, err := globeBase(sc, opts, 0.5)
	if err != nil {
		return err
	}

	cfg := opts.pulseConfig()
	ease := opts.pulseEase()

	origin, targets := hubs(opts, core.DefaultOrigin)
	start := geo.ToVec3(origin.Location, EarthRadius*surfaceLift)

	home := signalDot("hub/"+origin.Name, 0.015, 0xff6666, start)
	earth.Add(home)
	if err := pulseDot(sc, home); err != nil {
		return err
	}

	for _, route := range core.Routes(origin, targets, pulseDelay, pulseStagger) {
		end := geo.ToVec3(route.To.Location, EarthRadius*surfaceLift)
		earth.Add(signalDot("hub/"+route.To.Name, 0.015, 0xffff66, end))

		arc := curve.BuildArc(start, end, EarthRadius)
		earth.Add(staticTube(sc, arc, "arc/"+route.To.Name, 0.1))

		animator, err := pulse.NewAnimator(arc, cfg, sc.Tubes)
		if err != nil {
			return fmt.Errorf("route to %s: %w", route.To.Name, err)
		}
		sc.OnClose(animator.Close)

		idle := sc.Tubes.Track(tube.New(arc, idleNeon))
		neon := scene.NewTube("pulse/"+route.To.Name, idle, scene.Material{
			Color: 0xff00ff, Opacity: 0.9, Additive: true, DoubleSide: true,
		})
		earth.Add(neon)
		sc.OnClose(func() { sc.Tubes.Release(idle) })

		var progress float64
		tw := anim.ScalarTween(&progress, 0, pulse.CycleLength(cfg.MaxLen), pulseDuration, func(p float64) {
			if idle != nil {
				sc.Tubes.Release(idle)
				idle = nil
			}
			neon.Tube = animator.Update(p)
		})
		tw.Delay = route.Delay
		tw.Repeat = anim.Forever
		tw.Ease = ease
		if _, err := sc.Scheduler.Add(tw); err != nil {
			return err
		}
	}

	if opts.Borders != nil {
		l := *opts.Borders
		l.Parent = "earth"
		if l.Radius == 0 {
			l.Radius = EarthRadius
		}
		l.Start(ctx, sc)
	}
	return nil
}

// GlobeDot is the earlier globe variant: solid dots run along the arcs
// instead of neon segments and there are no borders.
func GlobeDot(_ context.Context, sc *scene.Context, opts Options) error {
	earth, err := globeBase(sc, opts, 0.95)
	if err != nil {
		return err
	}

	india := core.Hub{Name: "India", Location: core.GeoPoint{LatDeg: 20.5937, LonDeg: 78.9629}}
	origin, targets := hubs(opts, india)
	start := geo.ToVec3(origin.Location, EarthRadius*surfaceLift)

	home := signalDot("hub/"+origin.Name, 0.05, 0x00e5ff, start)
	earth.Add(home)
	if err := pulseDot(sc, home); err != nil {
		return err
	}

	for _, route := range core.Routes(origin, targets, 0, 500*time.Millisecond) {
		end := geo.ToVec3(route.To.Location, EarthRadius*surfaceLift)
		earth.Add(signalDot("hub/"+route.To.Name, 0.035, 0xffff66, end))

		arc := curve.BuildArc(start, end, EarthRadius)
		earth.Add(staticTube(sc, arc, "arc/"+route.To.Name, 0.3))

		dot := signalDot("signal/"+route.To.Name, 0.06, 0xff66ff, start)
		earth.Add(dot)

		var t float64
		tw := anim.ScalarTween(&t, 0, 1, 3*time.Second, func(p float64) {
			dot.Transform.Position = arc.PointAt(core.Clamp01(p))
		})
		tw.Delay = route.Delay
		tw.Repeat = anim.Forever
		if _, err := sc.Scheduler.Add(tw); err != nil {
			return err
		}
	}
	return nil
}

package demo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/globe-viz/globe/internal/anim"
	"github.com/globe-viz/globe/internal/borders"
	"github.com/globe-viz/globe/internal/pulse"
	"github.com/globe-viz/globe/internal/scene"
	"github.com/globe-viz/globe/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func newContext(t *testing.T, name string) *scene.Context {
	t.Helper()
	sc, err := scene.NewContext(name, nil)
	require.NoError(t, err)
	return sc
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"earth", "globe", "globe-dot", "transform"}, Names())
}

func TestBuild_Unknown(t *testing.T) {
	err := Build(context.Background(), "solar-system", newContext(t, "x"), Options{})
	assert.ErrorIs(t, err, ErrUnknownDemo)
}

func TestGlobe_Structure(t *testing.T) {
	sc := newContext(t, "globe")
	require.NoError(t, Build(context.Background(), "globe", sc, Options{Width: 800, Height: 600}))

	root := sc.Scene.Root
	earth := root.Find("earth")
	require.NotNil(t, earth)
	assert.Len(t, root.Find("dots").Points, DotCount)
	assert.Len(t, root.Find("stars").Points, StarCount)
	for _, name := range []string{"San Francisco", "London", "Tokyo", "Sydney"} {
		assert.NotNil(t, earth.Find("arc/"+name), name)
		assert.NotNil(t, earth.Find("pulse/"+name), name)
	}
	assert.InDelta(t, 4.0/3.0, sc.Camera.Aspect, 1e-12)
	require.NotNil(t, sc.Scene.Fog)
	assert.Equal(t, 0.15, sc.Scene.Fog.Density)

	// earth spin, origin breathing and one pulse per route
	assert.Equal(t, 6, sc.Scheduler.Len())
	assert.Equal(t, 8, sc.Tubes.Live(), "static arcs plus one idle neon arc per route")
}

func TestGlobe_PulsesStayBounded(t *testing.T) {
	sc := newContext(t, "globe")
	require.NoError(t, Build(context.Background(), "globe", sc, Options{}))

	// before the first delay every route shows its whole arc in neon
	f := sc.Frame(100 * time.Millisecond)
	assert.Equal(t, 8, sc.Tubes.Live())
	assert.Equal(t, 4, countPrefix(f, "arc/"))
	require.Equal(t, 4, countPrefix(f, "pulse/"))
	for _, d := range f.Drawables {
		if strings.HasPrefix(d.Node, "pulse/") {
			assert.Len(t, d.Tube.Path, 33, "idle neon spans the arc")
		}
	}

	for range 200 {
		f = sc.Frame(50 * time.Millisecond)
		assert.LessOrEqual(t, sc.Tubes.Live(), 8)
	}
	assert.Positive(t, countPrefix(f, "pulse/"))

	sc.Close()
	assert.Equal(t, 0, sc.Tubes.Live())
}

func TestGlobe_IdleNeonReleasedWhenPulseStarts(t *testing.T) {
	sc := newContext(t, "globe")
	opts := Options{Targets: []core.Hub{core.DefaultTargets[1]}}
	require.NoError(t, Build(context.Background(), "globe", sc, opts))

	neon := sc.Scene.Root.Find("pulse/London")
	require.NotNil(t, neon)
	idle := neon.Tube
	require.False(t, idle.Empty())
	assert.Equal(t, 2, sc.Tubes.Live())

	// first delay is 0.5s; one second in the pulse is travelling
	sc.Frame(time.Second)
	assert.True(t, idle.Empty(), "idle neon is released")
	assert.NotSame(t, idle, neon.Tube)
	assert.Equal(t, 2, sc.Tubes.Live(), "static arc plus the pulse segment")

	sc.Close()
	assert.Equal(t, 0, sc.Tubes.Live())
}

func TestGlobe_PulseOverrides(t *testing.T) {
	sc := newContext(t, "globe")
	origin := core.Hub{Name: "Berlin", Location: core.GeoPoint{LatDeg: 52.52, LonDeg: 13.405}}
	opts := Options{
		Origin:    &origin,
		Targets:   []core.Hub{core.DefaultTargets[0]},
		Pulse:     pulse.Config{MaxLen: 0.5},
		PulseEase: anim.Power1Out,
	}
	require.NoError(t, Build(context.Background(), "globe", sc, opts))
	assert.NotNil(t, sc.Scene.Root.Find("hub/Berlin"))
	assert.NotNil(t, sc.Scene.Root.Find("pulse/San Francisco"))

	assert.Equal(t, 0.5, opts.pulseConfig().MaxLen)
	assert.Equal(t, pulse.DefaultDivisions, opts.pulseConfig().Divisions)
	assert.Equal(t, pulse.DefaultTube, opts.pulseConfig().Tube)
	assert.InDelta(t, 0.75, opts.pulseEase()(0.5), 1e-12)
	assert.Equal(t, 0.5, Options{}.pulseEase()(0.5), "linear by default")
}

func TestGlobe_RejectsBadPulseLength(t *testing.T) {
	sc := newContext(t, "globe")
	err := Build(context.Background(), "globe", sc, Options{Pulse: pulse.Config{MaxLen: 1.5}})
	assert.ErrorIs(t, err, pulse.ErrInvalidPulseLength)
}

func TestGlobe_EarthRotates(t *testing.T) {
	sc := newContext(t, "globe")
	require.NoError(t, Build(context.Background(), "globe", sc, Options{}))

	for range 20 {
		sc.Frame(time.Second)
	}
	earth := sc.Scene.Root.Find("earth")
	assert.InDelta(t, 20.0/80.0*2*3.141592653589793, earth.Transform.Rotation.Y, 1e-9)
}

const atlas = `{"type":"Topology","objects":{"countries":{"type":"GeometryCollection","geometries":[
  {"type":"Polygon","properties":{"name":"Box"},"arcs":[[0]]}]}},
  "arcs":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]}`

func TestGlobe_LoadsBorders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(atlas))
	}))
	defer server.Close()

	sc := newContext(t, "globe")
	opts := Options{Borders: &borders.Loader{Client: borders.NewClient(server.URL)}}
	require.NoError(t, Build(context.Background(), "globe", sc, opts))

	require.Eventually(t, func() bool { return sc.Pending() == 1 }, 5*time.Second, 10*time.Millisecond)
	sc.Frame(time.Millisecond)

	loop := sc.Scene.Root.Find("earth").Find("border/Box/0")
	require.NotNil(t, loop)
	assert.InDelta(t, EarthRadius*borders.Lift, r3.Norm(loop.Points[0]), 1e-9)
}

func TestGlobeDot_SignalsFollowArcs(t *testing.T) {
	sc := newContext(t, "globe-dot")
	require.NoError(t, Build(context.Background(), "globe-dot", sc, Options{}))

	sig := sc.Scene.Root.Find("signal/London")
	require.NotNil(t, sig)
	start := sig.Transform.Position

	for range 20 {
		sc.Frame(100 * time.Millisecond)
	}
	assert.NotEqual(t, start, sig.Transform.Position)
	// signals ride above the surface between the hubs
	assert.Greater(t, r3.Norm(sig.Transform.Position), EarthRadius)
}

func TestTransform_Boxes(t *testing.T) {
	sc := newContext(t, "transform")
	require.NoError(t, Build(context.Background(), "transform", sc, Options{}))

	f := sc.Frame(time.Millisecond)
	var boxes []scene.Drawable
	for _, d := range f.Drawables {
		if d.Box != nil {
			boxes = append(boxes, d)
		}
	}
	require.Len(t, boxes, 3)

	// the middle box sits at the group origin; the outer ones are one unit away
	// after the group's half scale
	assert.InDelta(t, 0, r3.Norm(boxes[1].Transform(r3.Vec{})), 1e-12)
	assert.InDelta(t, 1, r3.Norm(boxes[0].Transform(r3.Vec{})), 1e-12)
	assert.InDelta(t, 1, r3.Norm(boxes[2].Transform(r3.Vec{})), 1e-12)
	assert.Equal(t, 3, f.Count(scene.KindLineLoop), "axes")
	assert.Equal(t, 75.0, f.Camera.FOV)
}

func TestEarth_SpinsPerFrame(t *testing.T) {
	sc := newContext(t, "earth")
	require.NoError(t, Build(context.Background(), "earth", sc, Options{}))

	for range 10 {
		sc.Frame(time.Hour)
	}
	earth := sc.Scene.Root.Find("earth")
	assert.InDelta(t, 10*earthSpin, earth.Transform.Rotation.Y, 1e-12)
	assert.Equal(t, "./earth2.jpg", earth.Material.Texture)
}

func countPrefix(f *scene.Frame, prefix string) int {
	n := 0
	for _, d := range f.Drawables {
		if strings.HasPrefix(d.Node, prefix) {
			n++
		}
	}
	return n
}

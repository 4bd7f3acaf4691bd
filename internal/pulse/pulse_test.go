package pulse

import (
	"errors"
	"math"
	"testing"

	"github.com/globe-viz/globe/internal/curve"
	"github.com/globe-viz/globe/internal/geo"
	"github.com/globe-viz/globe/internal/tube"
	"github.com/globe-viz/globe/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestAdvance_Phases(t *testing.T) {
	const maxLen = 0.3
	tests := []struct {
		name       string
		t          float64
		tail, head float64
	}{
		{"start", 0, 0, 0},
		{"growing", maxLen / 2, 0, maxLen / 2},
		{"travel begins", maxLen, 0, maxLen},
		{"travel", 0.5, 0.2, 0.5},
		{"travel ends", 1, 0.7, 1},
		{"shrinking", 1.2, 0.9, 1},
		{"collapsed", 1 + maxLen, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Advance(tt.t, maxLen)
			assert.InDelta(t, tt.tail, w.Tail, 1e-12)
			assert.InDelta(t, tt.head, w.Head, 1e-12)
		})
	}
}

func TestAdvance_FullyCollapsedIsExact(t *testing.T) {
	w := Advance(1+DefaultMaxLen, DefaultMaxLen)
	assert.Equal(t, 1.0, w.Tail)
	assert.Equal(t, 1.0, w.Head)
	assert.True(t, w.Collapsed())
}

func TestAdvance_Invariants(t *testing.T) {
	for _, maxLen := range []float64{0.05, 0.3, 0.75, 1} {
		for p := 0.0; p <= CycleLength(maxLen)+0.2; p += 0.01 {
			w := Advance(p, maxLen)
			require.LessOrEqual(t, w.Tail, w.Head, "maxLen=%v t=%v", maxLen, p)
			require.GreaterOrEqual(t, w.Tail, 0.0)
			require.LessOrEqual(t, w.Head, 1.0)
			require.LessOrEqual(t, w.Len(), maxLen+1e-12)
		}
	}
}

func TestValidateMaxLen(t *testing.T) {
	assert.NoError(t, ValidateMaxLen(0.3))
	assert.NoError(t, ValidateMaxLen(1))
	for _, bad := range []float64{0, -0.1, 1.01, math.NaN()} {
		assert.True(t, errors.Is(ValidateMaxLen(bad), ErrInvalidPulseLength), "maxLen=%v", bad)
	}
}

func testArc() *curve.Arc {
	const radius = 1.4
	start := geo.ToVec3(core.DefaultOrigin.Location, radius*1.001)
	end := geo.ToVec3(core.DefaultTargets[1].Location, radius*1.001)
	return curve.BuildArc(start, end, radius)
}

func TestResample_Window(t *testing.T) {
	arc := testArc()
	pts := Resample(arc, core.PulseWindow{Tail: 0.2, Head: 0.5}, 50)

	require.Len(t, pts, 51)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(arc.PointAt(0.2), pts[0])), 1e-12)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(arc.PointAt(0.5), pts[50])), 1e-12)
}

func TestNewAnimator_RejectsBadLength(t *testing.T) {
	tr, err := tube.NewTracker()
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.MaxLen = 1.5
	_, err = NewAnimator(testArc(), cfg, tr)
	assert.ErrorIs(t, err, ErrInvalidPulseLength)
}

func TestAnimator_ReleasesPreviousTube(t *testing.T) {
	tr, err := tube.NewTracker()
	require.NoError(t, err)

	a, err := NewAnimator(testArc(), DefaultConfig(), tr)
	require.NoError(t, err)

	var prev *tube.Geometry
	for frame := 1; frame < 300; frame++ {
		p := math.Mod(float64(frame)*0.01, CycleLength(a.MaxLen()))
		g := a.Update(p)
		require.LessOrEqual(t, tr.Live(), 1, "frame %d", frame)
		if prev != nil && prev != g {
			assert.True(t, prev.Empty(), "previous tube must be released")
		}
		prev = g
	}

	a.Close()
	assert.Equal(t, 0, tr.Live())
}

func TestAnimator_CollapsedWindowHasNoTube(t *testing.T) {
	tr, err := tube.NewTracker()
	require.NoError(t, err)

	a, err := NewAnimator(testArc(), DefaultConfig(), tr)
	require.NoError(t, err)

	require.NotNil(t, a.Update(0.5))
	assert.Equal(t, 1, tr.Live())

	assert.Nil(t, a.Update(0))
	assert.Nil(t, a.Geometry())
	assert.Equal(t, 0, tr.Live())
	assert.True(t, a.Window().Collapsed())
}

func TestAnimator_TubeFollowsWindow(t *testing.T) {
	tr, err := tube.NewTracker()
	require.NoError(t, err)

	arc := testArc()
	a, err := NewAnimator(arc, DefaultConfig(), tr)
	require.NoError(t, err)

	g := a.Update(0.5)
	require.NotNil(t, g)
	require.Len(t, g.Path, DefaultTube.TubularSegments+1)

	assert.InDelta(t, 0, r3.Norm(r3.Sub(arc.PointAt(0.2), g.Path[0])), 1e-6)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(arc.PointAt(0.5), g.Path[len(g.Path)-1])), 1e-6)
}

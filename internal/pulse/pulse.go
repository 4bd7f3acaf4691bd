// Package pulse animates a short glowing segment travelling along an arc.
package pulse

import (
	"errors"
	"fmt"
	"math"

	"github.com/globe-viz/globe/internal/curve"
	"github.com/globe-viz/globe/internal/tube"
	"github.com/globe-viz/globe/pkg/core"
)

// ErrInvalidPulseLength is returned for a maximum pulse length outside (0, 1].
var ErrInvalidPulseLength = errors.New("pulse length must be in (0, 1]")

// Stock pulse shape.
const (
	DefaultMaxLen    = 0.3
	DefaultDivisions = 50
)

// DefaultTube is the tessellation of the moving segment.
var DefaultTube = tube.Options{TubularSegments: 64, Radius: 0.02, RadialSegments: 16}

// Advance returns the visible window for progress t with a maximum visible
// length of maxLen, where t runs from 0 to 1+maxLen over one cycle:
//
//	t < maxLen        grow:   head = t, tail = 0
//	maxLen <= t <= 1  travel: head = t, tail = t - maxLen
//	t > 1             shrink: head = 1, tail = t - maxLen
//
// Both ends are clamped to [0, 1] afterwards, so at t = 1+maxLen the window
// has collapsed to (1, 1). Advance does not validate maxLen; see NewAnimator.
func Advance(t, maxLen float64) core.PulseWindow {
	var head, tail float64
	switch {
	case t < maxLen:
		head, tail = t, 0
	case t <= 1:
		head, tail = t, t-maxLen
	default:
		head, tail = 1, t-maxLen
	}

	w := core.PulseWindow{Tail: core.Clamp01(tail), Head: core.Clamp01(head)}
	if w.Tail > w.Head {
		w.Tail = w.Head
	}
	return w
}

// CycleLength is the progress range of one full pulse cycle.
func CycleLength(maxLen float64) float64 {
	return 1 + maxLen
}

// ValidateMaxLen reports whether maxLen gives the three documented phases.
func ValidateMaxLen(maxLen float64) error {
	if math.IsNaN(maxLen) || maxLen <= 0 || maxLen > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidPulseLength, maxLen)
	}
	return nil
}

// Resample returns divisions+1 points evenly spread between the window's
// tail and head on c. Parameters are capped at 1.
func Resample(c curve.Curve, w core.PulseWindow, divisions int) []core.Vec3 {
	if divisions < 1 {
		divisions = 1
	}
	pts := make([]core.Vec3, divisions+1)
	for i := range pts {
		v := w.Tail + (w.Head-w.Tail)*(float64(i)/float64(divisions))
		pts[i] = c.PointAt(math.Min(1, v))
	}
	return pts
}

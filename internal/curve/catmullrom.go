// Package curve evaluates smooth 3D paths through control points.
package curve

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/globe-viz/globe/pkg/core"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrTooFewPoints is returned when a curve is built from fewer than two points.
var ErrTooFewPoints = errors.New("curve needs at least two control points")

// ArcLengthDivisions is the resolution of the arc-length lookup table.
const ArcLengthDivisions = 200

const tangentDelta = 1e-4

// Curve is a path parameterized over [0, 1] by normalized arc length.
type Curve interface {
	PointAt(u float64) core.Vec3
	TangentAt(u float64) core.Vec3
	Length() float64
}

// CatmullRom is an open centripetal Catmull-Rom spline with tension 0.5.
// It is immutable once built and safe for concurrent reads.
type CatmullRom struct {
	points  []r3.Vec
	lengths []float64
}

// NewCatmullRom builds a spline through points.
func NewCatmullRom(points []core.Vec3) (*CatmullRom, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(points))
	}
	c := &CatmullRom{points: append([]r3.Vec(nil), points...)}
	c.lengths = c.arcLengths(ArcLengthDivisions)
	return c, nil
}

// Points returns a copy of the control points.
func (c *CatmullRom) Points() []core.Vec3 {
	return append([]core.Vec3(nil), c.points...)
}

// Point evaluates the spline at raw parameter t in [0, 1]. Equal steps in t
// are not equal steps in distance; use PointAt for that.
func (c *CatmullRom) Point(t float64) core.Vec3 {
	pts := c.points
	l := len(pts)

	p := float64(l-1) * t
	seg := int(math.Floor(p))
	weight := p - float64(seg)
	if seg >= l-1 {
		seg, weight = l-2, 1
	} else if seg < 0 {
		seg, weight = 0, 0
	}

	var p0, p3 r3.Vec
	if seg > 0 {
		p0 = pts[seg-1]
	} else {
		// mirror the first span to get a phantom leading point
		p0 = r3.Add(r3.Sub(pts[0], pts[1]), pts[0])
	}
	p1, p2 := pts[seg], pts[seg+1]
	if seg+2 < l {
		p3 = pts[seg+2]
	} else {
		p3 = r3.Add(r3.Sub(pts[l-1], pts[l-2]), pts[l-1])
	}

	dt0 := math.Pow(r3.Norm2(r3.Sub(p1, p0)), 0.25)
	dt1 := math.Pow(r3.Norm2(r3.Sub(p2, p1)), 0.25)
	dt2 := math.Pow(r3.Norm2(r3.Sub(p3, p2)), 0.25)
	if dt1 < 1e-4 {
		dt1 = 1
	}
	if dt0 < 1e-4 {
		dt0 = dt1
	}
	if dt2 < 1e-4 {
		dt2 = dt1
	}

	return r3.Vec{
		X: nonUniform(p0.X, p1.X, p2.X, p3.X, dt0, dt1, dt2, weight),
		Y: nonUniform(p0.Y, p1.Y, p2.Y, p3.Y, dt0, dt1, dt2, weight),
		Z: nonUniform(p0.Z, p1.Z, p2.Z, p3.Z, dt0, dt1, dt2, weight),
	}
}

// nonUniform evaluates one coordinate of a Catmull-Rom span between x1 and x2
// with knot spacings dt0, dt1, dt2, as a cubic Hermite polynomial at w.
func nonUniform(x0, x1, x2, x3, dt0, dt1, dt2, w float64) float64 {
	t1 := (x1-x0)/dt0 - (x2-x0)/(dt0+dt1) + (x2-x1)/dt1
	t2 := (x2-x1)/dt1 - (x3-x1)/(dt1+dt2) + (x3-x2)/dt2
	t1 *= dt1
	t2 *= dt1

	c0 := x1
	c1 := t1
	c2 := -3*x1 + 3*x2 - 2*t1 - t2
	c3 := 2*x1 - 2*x2 + t1 + t2
	return c0 + w*(c1+w*(c2+w*c3))
}

// Tangent returns the unit tangent at raw parameter t.
func (c *CatmullRom) Tangent(t float64) core.Vec3 {
	t1 := math.Max(0, t-tangentDelta)
	t2 := math.Min(1, t+tangentDelta)
	d := r3.Sub(c.Point(t2), c.Point(t1))
	if r3.Norm(d) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(d)
}

// PointAt evaluates the spline at normalized arc length u in [0, 1].
func (c *CatmullRom) PointAt(u float64) core.Vec3 {
	return c.Point(c.uToT(u))
}

// TangentAt returns the unit tangent at normalized arc length u.
func (c *CatmullRom) TangentAt(u float64) core.Vec3 {
	return c.Tangent(c.uToT(u))
}

// Length returns the approximate length of the curve.
func (c *CatmullRom) Length() float64 {
	return c.lengths[len(c.lengths)-1]
}

// Sample returns divisions+1 points evenly spaced by arc length.
func (c *CatmullRom) Sample(divisions int) []core.Vec3 {
	if divisions < 1 {
		divisions = 1
	}
	out := make([]core.Vec3, divisions+1)
	for i := range out {
		out[i] = c.PointAt(float64(i) / float64(divisions))
	}
	return out
}

func (c *CatmullRom) arcLengths(divisions int) []float64 {
	lengths := make([]float64, divisions+1)
	last := c.Point(0)
	for i := 1; i <= divisions; i++ {
		cur := c.Point(float64(i) / float64(divisions))
		lengths[i] = lengths[i-1] + r3.Norm(r3.Sub(cur, last))
		last = cur
	}
	return lengths
}

// uToT maps normalized arc length to the raw spline parameter by
// interpolating in the arc-length table.
func (c *CatmullRom) uToT(u float64) float64 {
	lengths := c.lengths
	n := len(lengths)
	total := lengths[n-1]
	if total == 0 {
		return core.Clamp01(u)
	}

	target := core.Clamp01(u) * total
	i := sort.SearchFloat64s(lengths, target)
	if i >= n {
		return 1
	}
	if lengths[i] == target {
		return float64(i) / float64(n-1)
	}

	before, after := lengths[i-1], lengths[i]
	frac := (target - before) / (after - before)
	return (float64(i-1) + frac) / float64(n-1)
}

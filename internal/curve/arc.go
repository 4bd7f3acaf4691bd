package curve

import (
	"math"

	"github.com/globe-viz/globe/pkg/core"
	"gonum.org/v1/gonum/spatial/r3"
)

// ArcLift is how far above the sphere an arc's midpoint sits, as a multiple of
// the sphere radius.
const ArcLift = 1.4

// Arc is a curve hopping from one surface point to another over the sphere.
type Arc struct {
	*CatmullRom
	Start core.Vec3
	Mid   core.Vec3
	End   core.Vec3
}

// BuildArc returns the arc from start to end whose midpoint is pushed out to
// radius*ArcLift along the direction of the chord midpoint.
func BuildArc(start, end core.Vec3, radius float64) *Arc {
	dir := r3.Scale(0.5, r3.Add(start, end))
	if r3.Norm(dir) < 1e-12 {
		// antipodal endpoints: any direction perpendicular to the chord works
		dir = perpendicular(r3.Sub(end, start))
	}
	mid := r3.Scale(radius*ArcLift, r3.Unit(dir))

	// three distinct points can never fail NewCatmullRom
	c, _ := NewCatmullRom([]core.Vec3{start, mid, end})
	return &Arc{CatmullRom: c, Start: start, Mid: mid, End: end}
}

func perpendicular(v r3.Vec) r3.Vec {
	axis := r3.Vec{X: 1}
	if math.Abs(v.X) > math.Abs(v.Y) {
		axis = r3.Vec{Y: 1}
	}
	p := r3.Cross(v, axis)
	if r3.Norm(p) < 1e-12 {
		return r3.Vec{Y: 1}
	}
	return p
}

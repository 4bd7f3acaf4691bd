// Package sphere distributes points over and around a sphere.
package sphere

import (
	"math"
	"math/rand/v2"

	"github.com/globe-viz/globe/pkg/core"
	"gonum.org/v1/gonum/spatial/r3"
)

// goldenAngle is pi * (3 - sqrt(5)), the azimuth step between successive points.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// Fibonacci places count points near-uniformly on a sphere of the given
// radius using golden-angle spacing. The same arguments always produce the
// same cloud. A count <= 0 yields an empty cloud.
func Fibonacci(count int, radius float64) core.PointCloud {
	if count <= 0 {
		return core.PointCloud{}
	}

	pts := make(core.PointCloud, count)
	offset := 2 / float64(count)
	for i := range count {
		y := float64(i)*offset - 1 + offset/2
		r := math.Sqrt(math.Max(0, 1-y*y))
		phi := float64(i) * goldenAngle
		pts[i] = r3.Scale(radius, r3.Vec{
			X: math.Cos(phi) * r,
			Y: y,
			Z: math.Sin(phi) * r,
		})
	}
	return pts
}

// StarShell scatters count points with uniformly random directions at a
// distance between 0.6 and 1.0 times radius. The seed makes the field
// reproducible between runs.
func StarShell(count int, radius float64, seed uint64) core.PointCloud {
	if count <= 0 {
		return core.PointCloud{}
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	pts := make(core.PointCloud, count)
	for i := range pts {
		r := radius * (0.6 + rng.Float64()*0.4)
		theta := rng.Float64() * 2 * math.Pi
		phi := math.Acos(2*rng.Float64() - 1)
		pts[i] = r3.Vec{
			X: r * math.Sin(phi) * math.Cos(theta),
			Y: r * math.Cos(phi),
			Z: r * math.Sin(phi) * math.Sin(theta),
		}
	}
	return pts
}

// pkg/core/geometry.go
package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a point or direction in scene space.
type Vec3 = r3.Vec

// GeoPoint is a geographic coordinate in degrees.
type GeoPoint struct {
	LatDeg float64 `json:"lat"`
	LonDeg float64 `json:"lon"`
}

// Valid reports whether the point lies in the conventional lat/lon ranges.
// The coordinate mapper does not require it.
func (p GeoPoint) Valid() bool {
	return p.LatDeg >= -90 && p.LatDeg <= 90 && p.LonDeg >= -180 && p.LonDeg <= 180
}

// PointCloud is a fixed-size sequence of surface points.
type PointCloud []Vec3

// Flatten returns the cloud as interleaved x,y,z values.
func (c PointCloud) Flatten() []float32 {
	out := make([]float32, 0, len(c)*3)
	for _, p := range c {
		out = append(out, float32(p.X), float32(p.Y), float32(p.Z))
	}
	return out
}

// PulseWindow is the visible part of an arc, in curve parameter space.
// Tail <= Head and both lie in [0, 1].
type PulseWindow struct {
	Tail float64 `json:"tail"`
	Head float64 `json:"head"`
}

// Len returns the visible fraction of the curve.
func (w PulseWindow) Len() float64 {
	return w.Head - w.Tail
}

// Collapsed reports whether nothing of the arc is visible.
func (w PulseWindow) Collapsed() bool {
	return w.Head-w.Tail <= 1e-12
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Color is a 24-bit RGB color written as 0xRRGGBB.
type Color uint32

// RGB splits the color into its channels.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// RGBA returns the color with the given opacity in [0, 1], premultiplied.
func (c Color) RGBA(opacity float64) (r, g, b, a uint8) {
	cr, cg, cb := c.RGB()
	o := Clamp01(opacity)
	return uint8(float64(cr) * o), uint8(float64(cg) * o), uint8(float64(cb) * o), uint8(255 * o)
}

// Package render drives the frame loop and turns frames into 2D primitives
// for the window sink.
package render

import (
	"image/color"
	"math"

	"github.com/globe-viz/globe/internal/scene"
	"github.com/globe-viz/globe/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

// Shape is the kind of a projected primitive.
type Shape uint8

const (
	ShapeDot Shape = iota
	ShapeLine
)

// Primitive is one screen-space dot or line segment.
type Primitive struct {
	Shape          Shape
	X0, Y0, X1, Y1 float32
	Radius         float32 // dots only
	Width          float32 // lines only
	Color          color.RGBA
}

// boxEdges lists corner index pairs of a box.
var boxEdges = [12][2]int{
	{0, 1}, {1, 3}, {3, 2}, {2, 0},
	{4, 5}, {5, 7}, {7, 6}, {6, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// sphereSegments is the outline resolution of projected spheres.
const sphereSegments = 32

type projector struct {
	f        *scene.Frame
	viewProj mgl64.Mat4
	w, h     int
	focal    float64 // pixels per unit at depth 1
	out      []Primitive
}

// Project converts the drawables of f into primitives for a width x height
// viewport, back to front in drawable order. Geometry behind the camera is
// dropped and fog fades colors with depth.
func Project(f *scene.Frame, width, height int, buf []Primitive) []Primitive {
	cam := f.Camera
	p := projector{
		f:        f,
		viewProj: cam.Projection().Mul4(cam.View()),
		w:        width,
		h:        height,
		focal:    float64(height) / 2 / math.Tan(mgl64.DegToRad(cam.FOV)/2),
		out:      buf[:0],
	}

	for i := range f.Drawables {
		d := &f.Drawables[i]
		switch d.Kind {
		case scene.KindPoints:
			p.points(d)
		case scene.KindLineLoop:
			p.lineLoop(d)
		case scene.KindMesh:
			switch {
			case d.Box != nil:
				p.box(d)
			case d.Sphere != nil:
				p.sphere(d)
			case d.Tube != nil:
				p.tube(d)
			}
		}
	}
	return p.out
}

func (p *projector) project(v r3.Vec) (float32, float32, float64, bool) {
	x, y, depth, ok := p.f.Camera.Project(p.viewProj, v, p.w, p.h)
	return float32(x), float32(y), depth, ok
}

func (p *projector) color(m scene.Material, depth float64) color.RGBA {
	opacity := m.Opacity
	if p.f.Fog != nil {
		opacity *= 1 - p.f.Fog.Factor(depth)
	}
	r, g, b, a := m.Color.RGBA(opacity)
	return color.RGBA{R: r, G: g, B: b, A: a}
}

func (p *projector) points(d *scene.Drawable) {
	size := d.Material.Size
	if size <= 0 {
		size = 0.01
	}
	for i := 0; i+2 < len(d.Points); i += 3 {
		local := r3.Vec{X: float64(d.Points[i]), Y: float64(d.Points[i+1]), Z: float64(d.Points[i+2])}
		x, y, depth, ok := p.project(d.Transform(local))
		if !ok {
			continue
		}
		// sizeAttenuation: world size shrinks with distance
		r := float32(math.Max(0.5, size*p.focal/depth/2))
		p.out = append(p.out, Primitive{Shape: ShapeDot, X0: x, Y0: y, Radius: r, Color: p.color(d.Material, depth)})
	}
}

func (p *projector) line(a, b r3.Vec, m scene.Material, width float32) {
	x0, y0, d0, ok0 := p.project(a)
	x1, y1, d1, ok1 := p.project(b)
	if !ok0 || !ok1 {
		return
	}
	p.out = append(p.out, Primitive{
		Shape: ShapeLine,
		X0:    x0, Y0: y0, X1: x1, Y1: y1,
		Width: width,
		Color: p.color(m, (d0+d1)/2),
	})
}

func (p *projector) polyline(pts []r3.Vec, closed bool, m scene.Material, width float32) {
	for i := 0; i+1 < len(pts); i++ {
		p.line(pts[i], pts[i+1], m, width)
	}
	if closed && len(pts) > 2 {
		p.line(pts[len(pts)-1], pts[0], m, width)
	}
}

func (p *projector) lineLoop(d *scene.Drawable) {
	n := len(d.Points) / 3
	pts := make([]r3.Vec, n)
	for i := range pts {
		pts[i] = d.Transform(r3.Vec{X: float64(d.Points[i*3]), Y: float64(d.Points[i*3+1]), Z: float64(d.Points[i*3+2])})
	}
	p.polyline(pts, true, d.Material, 1)
}

func (p *projector) box(d *scene.Drawable) {
	hx, hy, hz := d.Box.Width/2, d.Box.Height/2, d.Box.Depth/2
	var corners [8]r3.Vec
	for i := range corners {
		c := r3.Vec{X: -hx, Y: -hy, Z: -hz}
		if i&1 != 0 {
			c.X = hx
		}
		if i&2 != 0 {
			c.Y = hy
		}
		if i&4 != 0 {
			c.Z = hz
		}
		corners[i] = d.Transform(c)
	}
	for _, e := range boxEdges {
		p.line(corners[e[0]], corners[e[1]], d.Material, 2)
	}
}

func (p *projector) sphere(d *scene.Drawable) {
	center := d.Transform(r3.Vec{})
	x, y, depth, ok := p.project(center)
	if !ok {
		return
	}
	// scale from the world matrix, X column
	m := d.WorldMatrix()
	scale := math.Sqrt(m[0]*m[0] + m[1]*m[1] + m[2]*m[2])
	r := float32(d.Sphere.Radius * scale * p.focal / depth)

	col := p.color(d.Material, depth)
	p.out = append(p.out, Primitive{Shape: ShapeDot, X0: x, Y0: y, Radius: r, Color: col})
}

func (p *projector) tube(d *scene.Drawable) {
	if d.Tube.Empty() || len(d.Tube.Path) < 2 {
		return
	}
	pts := make([]r3.Vec, len(d.Tube.Path))
	for i, v := range d.Tube.Path {
		pts[i] = d.Transform(v)
	}
	// approximate the tube radius in pixels at the first point
	width := float32(2)
	if _, _, depth, ok := p.project(pts[0]); ok {
		width = float32(math.Max(1, tubeRadius(d)*2*p.focal/depth))
	}
	p.polyline(pts, false, d.Material, width)
}

// tubeRadius measures the distance from the first ring vertex to the first
// path point.
func tubeRadius(d *scene.Drawable) float64 {
	g := d.Tube
	if len(g.Positions) < 3 {
		return 0
	}
	v := core.Vec3{X: float64(g.Positions[0]), Y: float64(g.Positions[1]), Z: float64(g.Positions[2])}
	return r3.Norm(r3.Sub(v, g.Path[0]))
}

// Background returns the frame's clear color.
func Background(f *scene.Frame) color.RGBA {
	r, g, b := f.Background.RGB()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

package scene

import (
	"github.com/globe-viz/globe/internal/tube"
	"github.com/globe-viz/globe/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

// Drawable is one visible node flattened with its world matrix. Point and
// line vertices stay in local space; apply World to place them.
type Drawable struct {
	Node     string         `json:"node"`
	Kind     Kind           `json:"kind"`
	World    [16]float64    `json:"world"` // column-major
	Material Material       `json:"material"`
	Points   []float32      `json:"points,omitempty"`
	Box      *Box           `json:"box,omitempty"`
	Sphere   *Sphere        `json:"sphere,omitempty"`
	Tube     *tube.Geometry `json:"tube,omitempty"`
	Light    *Light         `json:"light,omitempty"`
}

// WorldMatrix returns World as a matrix.
func (d *Drawable) WorldMatrix() mgl64.Mat4 {
	return mgl64.Mat4(d.World)
}

// Frame is an immutable view of the scene after one step.
type Frame struct {
	Demo       string     `json:"demo"`
	Number     uint64     `json:"number"`
	Time       float64    `json:"time"` // seconds
	Background core.Color `json:"background"`
	Fog        *Fog       `json:"fog,omitempty"`
	Camera     Camera     `json:"camera"`
	Drawables  []Drawable `json:"drawables"`
}

// Snapshot flattens the current scene into a frame numbered n. Tube buffers
// are shared with the scene and are released by a later frame, so sinks must
// finish with a frame before the next one is produced.
func (c *Context) Snapshot(n uint64) *Frame {
	f := &Frame{
		Demo:       c.Name,
		Number:     n,
		Time:       c.Elapsed().Seconds(),
		Background: c.Scene.Background,
		Fog:        c.Scene.Fog,
		Camera:     *c.Camera,
	}

	c.Scene.Root.Walk(mgl64.Ident4(), func(node *Node, world mgl64.Mat4) {
		if node.Kind == KindGroup {
			return
		}
		if node.Kind == KindMesh && node.Box == nil && node.Sphere == nil && node.Tube.Empty() {
			return
		}
		d := Drawable{
			Node:     node.Name,
			Kind:     node.Kind,
			World:    [16]float64(world),
			Material: node.Material,
			Box:      node.Box,
			Sphere:   node.Sphere,
			Tube:     node.Tube,
			Light:    node.Light,
		}
		if len(node.Points) > 0 {
			d.Points = core.PointCloud(node.Points).Flatten()
		}
		f.Drawables = append(f.Drawables, d)
	})
	return f
}

// Transform applies the drawable's world matrix to a local point.
func (d *Drawable) Transform(p r3.Vec) r3.Vec {
	v := d.WorldMatrix().Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	return r3.Vec{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// Count returns the number of drawables of kind k.
func (f *Frame) Count(k Kind) int {
	n := 0
	for _, d := range f.Drawables {
		if d.Kind == k {
			n++
		}
	}
	return n
}

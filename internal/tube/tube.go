// Package tube sweeps circular cross-sections along curves into triangle meshes.
package tube

import (
	"math"

	"github.com/globe-viz/globe/internal/curve"
	"github.com/globe-viz/globe/pkg/core"
	"gonum.org/v1/gonum/spatial/r3"
)

// Options controls the tessellation of a tube.
type Options struct {
	TubularSegments int     `json:"tubularSegments"`
	Radius          float64 `json:"radius"`
	RadialSegments  int     `json:"radialSegments"`
}

// Geometry is an indexed triangle mesh. Positions and normals hold x,y,z
// triples, UVs hold u,v pairs.
type Geometry struct {
	ID        uint64    `json:"id"`
	Positions []float32 `json:"positions"`
	Normals   []float32 `json:"normals"`
	UVs       []float32 `json:"uvs"`
	Indices   []uint32  `json:"indices"`

	// Path holds the sampled centerline, one point per tubular ring.
	Path []core.Vec3 `json:"-"`
}

// VertexCount returns the number of vertices in the mesh.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// Empty reports whether the mesh has no triangles.
func (g *Geometry) Empty() bool {
	return g == nil || len(g.Indices) == 0
}

// Frames holds the rotation-minimizing frame at each sample of a path.
type Frames struct {
	Tangents  []r3.Vec
	Normals   []r3.Vec
	Binormals []r3.Vec
}

// ComputeFrames samples segments+1 tangents along c and transports an initial
// normal along them with minimal twist.
func ComputeFrames(c curve.Curve, segments int) Frames {
	n := segments + 1
	f := Frames{
		Tangents:  make([]r3.Vec, n),
		Normals:   make([]r3.Vec, n),
		Binormals: make([]r3.Vec, n),
	}
	for i := range n {
		f.Tangents[i] = c.TangentAt(float64(i) / float64(segments))
	}

	// start from the axis least aligned with the first tangent
	t0 := f.Tangents[0]
	normal := r3.Vec{X: 1}
	minComponent := math.Abs(t0.X)
	if math.Abs(t0.Y) <= minComponent {
		minComponent = math.Abs(t0.Y)
		normal = r3.Vec{Y: 1}
	}
	if math.Abs(t0.Z) <= minComponent {
		normal = r3.Vec{Z: 1}
	}
	v := unitOrZero(r3.Cross(t0, normal))
	f.Normals[0] = r3.Cross(t0, v)
	f.Binormals[0] = r3.Cross(t0, f.Normals[0])

	for i := 1; i < n; i++ {
		f.Normals[i] = f.Normals[i-1]
		axis := r3.Cross(f.Tangents[i-1], f.Tangents[i])
		if r3.Norm(axis) > 1e-12 {
			theta := math.Acos(math.Max(-1, math.Min(1, r3.Dot(f.Tangents[i-1], f.Tangents[i]))))
			f.Normals[i] = r3.NewRotation(theta, r3.Unit(axis)).Rotate(f.Normals[i])
		}
		f.Binormals[i] = r3.Cross(f.Tangents[i], f.Normals[i])
	}
	return f
}

// New sweeps a tube of the given options along c. The mesh is open at both
// ends. Non-positive segment counts fall back to 1 tubular and 3 radial.
func New(c curve.Curve, opts Options) *Geometry {
	tubular := max(opts.TubularSegments, 1)
	radial := max(opts.RadialSegments, 3)

	frames := ComputeFrames(c, tubular)
	ring := radial + 1
	g := &Geometry{
		Positions: make([]float32, 0, (tubular+1)*ring*3),
		Normals:   make([]float32, 0, (tubular+1)*ring*3),
		UVs:       make([]float32, 0, (tubular+1)*ring*2),
		Indices:   make([]uint32, 0, tubular*radial*6),
		Path:      make([]core.Vec3, 0, tubular+1),
	}

	for i := 0; i <= tubular; i++ {
		p := c.PointAt(float64(i) / float64(tubular))
		g.Path = append(g.Path, p)
		n, b := frames.Normals[i], frames.Binormals[i]
		for j := 0; j <= radial; j++ {
			v := float64(j) / float64(radial) * 2 * math.Pi
			sin, cos := math.Sin(v), -math.Cos(v)
			normal := unitOrZero(r3.Add(r3.Scale(cos, n), r3.Scale(sin, b)))
			vertex := r3.Add(p, r3.Scale(opts.Radius, normal))

			g.Normals = append(g.Normals, float32(normal.X), float32(normal.Y), float32(normal.Z))
			g.Positions = append(g.Positions, float32(vertex.X), float32(vertex.Y), float32(vertex.Z))
			g.UVs = append(g.UVs, float32(i)/float32(tubular), float32(j)/float32(radial))
		}
	}

	for j := 1; j <= tubular; j++ {
		for i := 1; i <= radial; i++ {
			a := uint32(ring*(j-1) + (i - 1))
			b := uint32(ring*j + (i - 1))
			cc := uint32(ring*j + i)
			d := uint32(ring*(j-1) + i)
			g.Indices = append(g.Indices, a, b, d, b, cc, d)
		}
	}
	return g
}

func unitOrZero(v r3.Vec) r3.Vec {
	if r3.Norm(v) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(v)
}

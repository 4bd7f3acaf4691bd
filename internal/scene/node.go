// Package scene is a small retained-mode scene graph. Nodes carry transforms
// and drawable payloads; a Context owns a scene and advances it frame by frame.
package scene

import (
	"math"

	"github.com/globe-viz/globe/internal/tube"
	"github.com/globe-viz/globe/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

// Kind says what a node draws.
type Kind string

const (
	KindGroup    Kind = "group"
	KindMesh     Kind = "mesh"
	KindPoints   Kind = "points"
	KindLineLoop Kind = "lineLoop"
	KindLight    Kind = "light"
)

// Material is the flat appearance of a drawable.
type Material struct {
	Color      core.Color `json:"color"`
	Opacity    float64    `json:"opacity"`
	Additive   bool       `json:"additive,omitempty"`
	DoubleSide bool       `json:"doubleSide,omitempty"`
	Size       float64    `json:"size,omitempty"`    // point size
	Texture    string     `json:"texture,omitempty"` // path, never decoded here
}

// Box is an axis-aligned box centred on the node origin.
type Box struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// Sphere is a UV sphere centred on the node origin.
type Sphere struct {
	Radius         float64 `json:"radius"`
	WidthSegments  int     `json:"widthSegments"`
	HeightSegments int     `json:"heightSegments"`
}

// LightKind distinguishes light sources.
type LightKind string

const (
	Ambient     LightKind = "ambient"
	Directional LightKind = "directional"
)

// Light is a light source. Directional lights shine from the node position
// towards the origin.
type Light struct {
	Kind      LightKind  `json:"kind"`
	Color     core.Color `json:"color"`
	Intensity float64    `json:"intensity"`
}

// Transform holds position, Euler rotation (radians, XYZ order) and scale.
type Transform struct {
	Position r3.Vec
	Rotation r3.Vec
	Scale    r3.Vec
}

// Identity returns a transform that changes nothing.
func Identity() Transform {
	return Transform{Scale: r3.Vec{X: 1, Y: 1, Z: 1}}
}

// Matrix composes translation, rotation and scale into a local matrix.
func (t Transform) Matrix() mgl64.Mat4 {
	rot := mgl64.HomogRotate3DX(t.Rotation.X).
		Mul4(mgl64.HomogRotate3DY(t.Rotation.Y)).
		Mul4(mgl64.HomogRotate3DZ(t.Rotation.Z))
	return mgl64.Translate3D(t.Position.X, t.Position.Y, t.Position.Z).
		Mul4(rot).
		Mul4(mgl64.Scale3D(t.Scale.X, t.Scale.Y, t.Scale.Z))
}

// Node is one element of the scene graph. Exactly one payload field matching
// Kind is set; groups and lights without payload only carry children.
type Node struct {
	Name      string
	Kind      Kind
	Transform Transform
	Hidden    bool
	Material  Material

	Points PointsData
	Box    *Box
	Sphere *Sphere
	Tube   *tube.Geometry
	Light  *Light

	children []*Node
	parent   *Node
}

// PointsData holds local-space vertices for points and line loops.
type PointsData []core.Vec3

// NewGroup returns an empty group.
func NewGroup(name string) *Node {
	return &Node{Name: name, Kind: KindGroup, Transform: Identity()}
}

// NewPoints returns a point cloud node.
func NewPoints(name string, pts []core.Vec3, m Material) *Node {
	return &Node{Name: name, Kind: KindPoints, Transform: Identity(), Points: pts, Material: m}
}

// NewLineLoop returns a closed polyline node.
func NewLineLoop(name string, pts []core.Vec3, m Material) *Node {
	return &Node{Name: name, Kind: KindLineLoop, Transform: Identity(), Points: pts, Material: m}
}

// NewBox returns a box mesh.
func NewBox(name string, b Box, m Material) *Node {
	return &Node{Name: name, Kind: KindMesh, Transform: Identity(), Box: &b, Material: m}
}

// NewSphere returns a sphere mesh.
func NewSphere(name string, s Sphere, m Material) *Node {
	return &Node{Name: name, Kind: KindMesh, Transform: Identity(), Sphere: &s, Material: m}
}

// NewTube returns a mesh backed by tube geometry. g may be nil and set later.
func NewTube(name string, g *tube.Geometry, m Material) *Node {
	return &Node{Name: name, Kind: KindMesh, Transform: Identity(), Tube: g, Material: m}
}

// NewLight returns a light node.
func NewLight(name string, l Light) *Node {
	return &Node{Name: name, Kind: KindLight, Transform: Identity(), Light: &l}
}

// Add attaches children to n, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

// Remove detaches child from n. It reports whether child was found.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.parent = nil
			return true
		}
	}
	return false
}

// Children returns the direct children of n.
func (n *Node) Children() []*Node {
	return n.children
}

// Parent returns the node n is attached to, or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// Find returns the first node named name in depth-first order.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits n and its visible descendants with their world matrices.
func (n *Node) Walk(parent mgl64.Mat4, fn func(*Node, mgl64.Mat4)) {
	if n.Hidden {
		return
	}
	world := parent.Mul4(n.Transform.Matrix())
	fn(n, world)
	for _, c := range n.children {
		c.Walk(world, fn)
	}
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	total := 1
	for _, c := range n.children {
		total += c.Count()
	}
	return total
}

// Fog darkens distant fragments with exponential squared falloff.
type Fog struct {
	Color   core.Color `json:"color"`
	Density float64    `json:"density"`
}

// Factor returns the fog blend factor in [0,1] at distance d.
func (f Fog) Factor(d float64) float64 {
	x := f.Density * d
	return 1 - math.Exp(-x*x)
}

// Scene is the root of a scene graph plus global settings.
type Scene struct {
	Root       *Node
	Background core.Color
	Fog        *Fog
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{Root: NewGroup("scene")}
}

// Add attaches nodes to the scene root.
func (s *Scene) Add(nodes ...*Node) {
	s.Root.Add(nodes...)
}

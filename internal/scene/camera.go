package scene

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is a perspective camera looking at Target. AutoRotate orbits it
// around the up axis at the given rate in radians per second.
type Camera struct {
	FOV        float64 `json:"fov"` // vertical, degrees
	Aspect     float64 `json:"aspect"`
	Near       float64 `json:"near"`
	Far        float64 `json:"far"`
	Position   r3.Vec  `json:"position"`
	Target     r3.Vec  `json:"target"`
	AutoRotate float64 `json:"autoRotate,omitempty"`
	Damping    float64 `json:"damping,omitempty"`

	velocity float64
}

// NewCamera returns a camera at pos looking at the origin.
func NewCamera(fov, aspect, near, far float64, pos r3.Vec) *Camera {
	return &Camera{FOV: fov, Aspect: aspect, Near: near, Far: far, Position: pos}
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(
		mgl64.Vec3{c.Position.X, c.Position.Y, c.Position.Z},
		mgl64.Vec3{c.Target.X, c.Target.Y, c.Target.Z},
		mgl64.Vec3{0, 1, 0},
	)
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// SetAspect updates the aspect ratio after a resize. Non-positive sizes are
// ignored.
func (c *Camera) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float64(width) / float64(height)
}

// Distance returns how far the camera is from its target.
func (c *Camera) Distance() float64 {
	return r3.Norm(r3.Sub(c.Position, c.Target))
}

// Update orbits the camera around its target. With damping the angular speed
// eases towards AutoRotate instead of jumping to it.
func (c *Camera) Update(dt time.Duration) {
	want := c.AutoRotate
	if c.Damping > 0 && c.Damping < 1 {
		c.velocity += (want - c.velocity) * c.Damping
	} else {
		c.velocity = want
	}
	if c.velocity == 0 {
		return
	}

	angle := c.velocity * dt.Seconds()
	off := r3.Sub(c.Position, c.Target)
	sin, cos := math.Sincos(angle)
	off = r3.Vec{X: off.X*cos + off.Z*sin, Y: off.Y, Z: -off.X*sin + off.Z*cos}
	c.Position = r3.Add(c.Target, off)
}

// Project maps a world point to pixel coordinates in a width x height
// viewport. depth is the distance along the view axis. ok is false for
// points behind the camera or outside the clip volume in depth.
func (c *Camera) Project(viewProj mgl64.Mat4, p r3.Vec, width, height int) (x, y, depth float64, ok bool) {
	clip := viewProj.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	if clip.W() <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	if ndc.Z() < -1 || ndc.Z() > 1 {
		return 0, 0, 0, false
	}
	x = (ndc.X() + 1) / 2 * float64(width)
	y = (1 - ndc.Y()) / 2 * float64(height)
	return x, y, clip.W(), true
}

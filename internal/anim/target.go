package anim

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kind tags the variant held by a Target.
type Kind int

const (
	KindScalar Kind = iota + 1
	KindVector
	KindRotation
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindVector:
		return "vector"
	case KindRotation:
		return "rotation"
	}
	return "unknown"
}

// ErrNoTarget is returned when a tween has nothing to animate.
var ErrNoTarget = errors.New("tween has no target")

// Target is the value a tween writes each frame. Exactly one pointer is set,
// matching Kind, and the callback of that variant runs after every write.
type Target struct {
	Kind Kind

	scalar   *float64
	onScalar func(float64)

	vector   *r3.Vec
	onVector func(r3.Vec)

	rotation   *r3.Vec
	onRotation func(r3.Vec)
}

// Scalar targets a single float. onUpdate may be nil.
func Scalar(p *float64, onUpdate func(float64)) Target {
	return Target{Kind: KindScalar, scalar: p, onScalar: onUpdate}
}

// Vector targets a position or scale. onUpdate may be nil.
func Vector(p *r3.Vec, onUpdate func(r3.Vec)) Target {
	return Target{Kind: KindVector, vector: p, onVector: onUpdate}
}

// Rotation targets Euler angles in radians. onUpdate may be nil.
func Rotation(p *r3.Vec, onUpdate func(r3.Vec)) Target {
	return Target{Kind: KindRotation, rotation: p, onRotation: onUpdate}
}

func (t Target) valid() bool {
	switch t.Kind {
	case KindScalar:
		return t.scalar != nil
	case KindVector:
		return t.vector != nil
	case KindRotation:
		return t.rotation != nil
	}
	return false
}

// set writes v into the target and runs its callback. Scalars take v.X.
func (t Target) set(v r3.Vec) {
	switch t.Kind {
	case KindScalar:
		*t.scalar = v.X
		if t.onScalar != nil {
			t.onScalar(v.X)
		}
	case KindVector:
		*t.vector = v
		if t.onVector != nil {
			t.onVector(v)
		}
	case KindRotation:
		*t.rotation = v
		if t.onRotation != nil {
			t.onRotation(v)
		}
	}
}

func (t Target) get() r3.Vec {
	switch t.Kind {
	case KindScalar:
		return r3.Vec{X: *t.scalar}
	case KindVector:
		return *t.vector
	case KindRotation:
		return *t.rotation
	}
	return r3.Vec{}
}

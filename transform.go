package nestable

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a position, orientation and non-uniform scale.
// The zero value is not a valid transform; use Identity.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// Identity returns the transform that leaves everything in place.
func Identity() Transform {
	return Transform{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// NewTransform creates a transform from its parts.
func NewTransform(position mgl64.Vec3, rotation mgl64.Quat, scale mgl64.Vec3) Transform {
	return Transform{Position: position, Rotation: rotation, Scale: scale}
}

// WithPosition returns a copy of t with the position replaced.
func (t Transform) WithPosition(p mgl64.Vec3) Transform {
	t.Position = p
	return t
}

// WithRotation returns a copy of t with the rotation replaced.
func (t Transform) WithRotation(q mgl64.Quat) Transform {
	t.Rotation = q
	return t
}

// WithScale returns a copy of t with the scale replaced.
func (t Transform) WithScale(s mgl64.Vec3) Transform {
	t.Scale = s
	return t
}

// Mul composes t (a parent frame) with local, returning local expressed in
// the frame t is expressed in. The local position is scaled by t's scale
// before it is rotated and translated.
func (t Transform) Mul(local Transform) Transform {
	return Transform{
		Position: t.Apply(local.Position),
		Rotation: t.Rotation.Mul(local.Rotation).Normalize(),
		Scale:    mulElem(t.Scale, local.Scale),
	}
}

// Apply maps a point from t's local space into the space t is expressed in.
func (t Transform) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(t.Rotation.Rotate(mulElem(t.Scale, p)))
}

// Unapply is the inverse of Apply. Axes where t has zero scale cannot be
// recovered and take their value from fallback.
func (t Transform) Unapply(p, fallback mgl64.Vec3) mgl64.Vec3 {
	rel := t.Rotation.Inverse().Rotate(p.Sub(t.Position))
	return divElem(rel, t.Scale, fallback)
}

// UnapplyRotation returns the rotation that, composed under t, yields q.
func (t Transform) UnapplyRotation(q mgl64.Quat) mgl64.Quat {
	return t.Rotation.Inverse().Mul(q).Normalize()
}

// UnapplyScale returns the scale that, composed under t, yields s.
// Axes where t has zero scale take their value from fallback.
func (t Transform) UnapplyScale(s, fallback mgl64.Vec3) mgl64.Vec3 {
	return divElem(s, t.Scale, fallback)
}

// WorldToLocal returns the local transform that, composed under t, yields
// world. Components that cannot be recovered because t has a zero scale axis
// are taken from fallback.
func (t Transform) WorldToLocal(world, fallback Transform) Transform {
	return Transform{
		Position: t.Unapply(world.Position, fallback.Position),
		Rotation: t.UnapplyRotation(world.Rotation),
		Scale:    t.UnapplyScale(world.Scale, fallback.Scale),
	}
}

// Mat4 returns the homogeneous matrix translate * rotate * scale.
func (t Transform) Mat4() mgl64.Mat4 {
	return mgl64.Translate3D(t.Position[0], t.Position[1], t.Position[2]).
		Mul4(t.Rotation.Normalize().Mat4()).
		Mul4(mgl64.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// ApproxEqual reports whether t and o are equal within the absolute tolerance
// epsilon. Rotations
// are compared as orientations, so q and -q are equal.
func (t Transform) ApproxEqual(o Transform, epsilon float64) bool {
	return vecNear(t.Position, o.Position, epsilon) &&
		vecNear(t.Scale, o.Scale, epsilon) &&
		t.Rotation.OrientationEqualThreshold(o.Rotation, epsilon)
}

// vecNear compares componentwise with an absolute tolerance, so values that
// should be zero but carry rounding noise still compare equal.
func vecNear(a, b mgl64.Vec3, epsilon float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}
	return true
}

// String returns a string representation of the transform for debugging.
func (t Transform) String() string {
	return fmt.Sprintf("Transform{Position: %v, Rotation: %v %v, Scale: %v}",
		t.Position, t.Rotation.W, t.Rotation.V, t.Scale)
}

func mulElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func divElem(a, b, fallback mgl64.Vec3) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := range out {
		if b[i] == 0 {
			out[i] = fallback[i]
			continue
		}
		out[i] = a[i] / b[i]
	}
	return out
}

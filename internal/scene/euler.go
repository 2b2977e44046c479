package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// EulerToQuat converts XYZ Euler angles in degrees to a quaternion. The
// result rotates about X first in the rotating frame, i.e. R = Rx·Ry·Rz.
func EulerToQuat(deg mgl64.Vec3) mgl64.Quat {
	return mgl64.AnglesToQuat(
		mgl64.DegToRad(deg[0]),
		mgl64.DegToRad(deg[1]),
		mgl64.DegToRad(deg[2]),
		mgl64.XYZ,
	).Normalize()
}

// QuatToEuler is the inverse of EulerToQuat. The Y angle is kept within
// [-90, 90]; at the poles the Z angle is folded into X.
func QuatToEuler(q mgl64.Quat) mgl64.Vec3 {
	q = q.Normalize()
	w, x, y, z := q.W, q.V[0], q.V[1], q.V[2]

	m02 := mgl64.Clamp(2*(x*z+w*y), -1, 1)
	ry := math.Asin(m02)

	var rx, rz float64
	if math.Abs(m02) < 1-1e-9 {
		rx = math.Atan2(-2*(y*z-w*x), 1-2*(x*x+y*y))
		rz = math.Atan2(-2*(x*y-w*z), 1-2*(y*y+z*z))
	} else {
		rx = math.Atan2(2*(y*z+w*x), 1-2*(x*x+z*z))
	}

	return mgl64.Vec3{
		cleanZero(mgl64.RadToDeg(rx)),
		cleanZero(mgl64.RadToDeg(ry)),
		cleanZero(mgl64.RadToDeg(rz)),
	}
}

// cleanZero maps -0 to 0 so printed angles stay tidy.
func cleanZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}

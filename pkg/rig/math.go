package rig

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// EulerToQuat converts intrinsic XYZ Euler angles (radians) to a unit
// quaternion. XYZ is the rotation order web renderers default to, so
// frames round-trip without re-ordering.
func EulerToQuat(e mgl64.Vec3) mgl64.Quat {
	cx, sx := math.Cos(e.X()/2), math.Sin(e.X()/2)
	cy, sy := math.Cos(e.Y()/2), math.Sin(e.Y()/2)
	cz, sz := math.Cos(e.Z()/2), math.Sin(e.Z()/2)

	return mgl64.Quat{
		W: cx*cy*cz - sx*sy*sz,
		V: mgl64.Vec3{
			sx*cy*cz + cx*sy*sz,
			cx*sy*cz - sx*cy*sz,
			cx*cy*sz + sx*sy*cz,
		},
	}
}

// QuatToEuler converts a quaternion to intrinsic XYZ Euler angles.
// The quaternion does not need to be normalized.
func QuatToEuler(q mgl64.Quat) mgl64.Vec3 {
	q = q.Normalize()
	x, y, z, w := q.V.X(), q.V.Y(), q.V.Z(), q.W

	// Rotation matrix terms needed for the XYZ decomposition.
	m11 := 1 - 2*(y*y+z*z)
	m12 := 2 * (x*y - w*z)
	m13 := 2 * (x*z + w*y)
	m22 := 1 - 2*(x*x+z*z)
	m23 := 2 * (y*z - w*x)
	m32 := 2 * (y*z + w*x)
	m33 := 1 - 2*(x*x+y*y)

	ey := math.Asin(clamp(m13, -1, 1))

	var ex, ez float64
	if math.Abs(m13) < 0.9999999 {
		ex = math.Atan2(-m23, m33)
		ez = math.Atan2(-m12, m11)
	} else {
		// Gimbal lock: pitch at ±90°, fold roll into yaw.
		ex = math.Atan2(m32, m22)
		ez = 0
	}

	return mgl64.Vec3{ex, ey, ez}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

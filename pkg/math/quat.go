package math

import "github.com/chewxy/math32"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	s := math32.Sin(angle / 2)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: math32.Cos(angle / 2),
	}
}

// QuatFromEuler builds a rotation from pitch (X), yaw (Y) and roll (Z) in radians.
func QuatFromEuler(pitch, yaw, roll float32) Quat {
	cx, sx := math32.Cos(pitch*0.5), math32.Sin(pitch*0.5)
	cy, sy := math32.Cos(yaw*0.5), math32.Sin(yaw*0.5)
	cz, sz := math32.Cos(roll*0.5), math32.Sin(roll*0.5)

	return Quat{
		X: sx*cy*cz - cx*sy*sz,
		Y: cx*sy*cz + sx*cy*sz,
		Z: cx*cy*sz - sx*sy*cz,
		W: cx*cy*cz + sx*sy*sz,
	}
}

// QuatLookRotation returns the rotation whose front (-Z) points along direction.
// direction must be non-zero and not parallel to up.
func QuatLookRotation(direction, up Vec3) Quat {
	back := direction.Normalize().Scale(-1)
	right := up.Cross(back)
	lenSq := right.LengthSqr()
	if lenSq < 0.00001 {
		lenSq = 0.00001
	}
	right = right.Scale(1 / math32.Sqrt(lenSq))
	newUp := back.Cross(right)
	return quatFromBasis(right, newUp, back)
}

// quatFromBasis converts an orthonormal basis (matrix columns) to a quaternion.
func quatFromBasis(c0, c1, c2 Vec3) Quat {
	m00, m11, m22 := c0.X, c1.Y, c2.Z
	trace := m00 + m11 + m22

	switch {
	case trace > 0:
		s := 0.5 / math32.Sqrt(trace+1)
		return Quat{
			X: (c1.Z - c2.Y) * s,
			Y: (c2.X - c0.Z) * s,
			Z: (c0.Y - c1.X) * s,
			W: 0.25 / s,
		}
	case m00 > m11 && m00 > m22:
		s := 2 * math32.Sqrt(1+m00-m11-m22)
		return Quat{
			X: 0.25 * s,
			Y: (c1.X + c0.Y) / s,
			Z: (c2.X + c0.Z) / s,
			W: (c1.Z - c2.Y) / s,
		}
	case m11 > m22:
		s := 2 * math32.Sqrt(1+m11-m00-m22)
		return Quat{
			X: (c1.X + c0.Y) / s,
			Y: 0.25 * s,
			Z: (c2.Y + c1.Z) / s,
			W: (c2.X - c0.Z) / s,
		}
	default:
		s := 2 * math32.Sqrt(1+m22-m00-m11)
		return Quat{
			X: (c2.X + c0.Z) / s,
			Y: (c2.Y + c1.Z) / s,
			Z: 0.25 * s,
			W: (c0.Y - c1.X) / s,
		}
	}
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// ToMat4 converts the quaternion to a 4x4 rotation matrix.
func (q Quat) ToMat4() Mat4 {
	q = q.Normalize()

	xx := q.X * q.X
	xy := q.X * q.Y
	xz := q.X * q.Z
	xw := q.X * q.W
	yy := q.Y * q.Y
	yz := q.Y * q.Z
	yw := q.Y * q.W
	zz := q.Z * q.Z
	zw := q.Z * q.W

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + zw), 2 * (xz - yw), 0,
		2 * (xy - zw), 1 - 2*(xx+zz), 2 * (yz + xw), 0,
		2 * (xz + yw), 2 * (yz - xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// Mul multiplies two quaternions (combines rotations).
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * math32.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float32) float32 {
	return rad * 180 / math32.Pi
}

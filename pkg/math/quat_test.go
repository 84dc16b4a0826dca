package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	n := Quat{X: 1, Y: 2, Z: 3, W: 4}.Normalize()

	length := math32.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)
	if abs(length-1.0) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatRotateMatchesMatrix(t *testing.T) {
	q := QuatFromAxisAngle(Vec3Up, math32.Pi/2)
	v := Vec3{1, 0, 0}

	byQuat := q.Rotate(v)
	byMat := q.ToMat4().TransformPoint(v)
	if byQuat.Sub(byMat).Length() > 1e-5 {
		t.Errorf("Rotate = %v, ToMat4 = %v", byQuat, byMat)
	}
	if byQuat.Sub(Vec3{0, 0, -1}).Length() > 1e-5 {
		t.Errorf("90 degree yaw of +X = %v, want (0,0,-1)", byQuat)
	}
}

func TestQuatFromEulerYaw(t *testing.T) {
	a := QuatFromEuler(0, 0.7, 0)
	b := QuatFromAxisAngle(Vec3Up, 0.7)
	if abs(a.X-b.X) > 1e-6 || abs(a.Y-b.Y) > 1e-6 || abs(a.Z-b.Z) > 1e-6 || abs(a.W-b.W) > 1e-6 {
		t.Errorf("QuatFromEuler(0, 0.7, 0) = %v, want %v", a, b)
	}
}

func TestQuatLookRotation(t *testing.T) {
	tests := []struct {
		name string
		dir  Vec3
	}{
		{"forward", Vec3{0, 0, -1}},
		{"right", Vec3{1, 0, 0}},
		{"back", Vec3{0, 0, 1}},
		{"diagonal", Vec3{1, 0.5, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QuatLookRotation(tt.dir, Vec3Up)
			front := q.Rotate(Vec3Forward)
			if front.Sub(tt.dir.Normalize()).Length() > 1e-4 {
				t.Errorf("front = %v, want %v", front, tt.dir.Normalize())
			}
		})
	}
}

func TestRadiansDegrees(t *testing.T) {
	if got := Radians(180); abs(got-math32.Pi) > 1e-6 {
		t.Errorf("Radians(180) = %v", got)
	}
	if got := Degrees(math32.Pi / 2); abs(got-90) > 1e-4 {
		t.Errorf("Degrees(pi/2) = %v", got)
	}
}

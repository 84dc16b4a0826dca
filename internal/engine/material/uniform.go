package material

import "github.com/Faultbox/kiln/pkg/math"

// UniformValue is a value a material can push to a shader uniform.
// It is closed: only Float, Vec3 and Mat4 implement it.
type UniformValue interface {
	uniformValue()
}

// Float is a scalar uniform.
type Float float32

// Vec3 is a three component uniform.
type Vec3 math.Vec3

// Mat4 is a 4x4 matrix uniform.
type Mat4 math.Mat4

func (Float) uniformValue() {}
func (Vec3) uniformValue()  {}
func (Mat4) uniformValue()  {}

package scene

import (
	"github.com/Faultbox/kiln/internal/engine/input"
	"github.com/Faultbox/kiln/pkg/math"
)

// Transform places an object in the world. The model matrix is cached and
// rebuilt when it is read or updated after a change.
type Transform struct {
	position math.Vec3
	rotation math.Quat
	scale    math.Vec3

	matrix math.Mat4
	dirty  bool
}

// NewTransform returns an identity transform.
func NewTransform() *Transform {
	return &Transform{
		rotation: math.QuatIdentity(),
		scale:    math.Vec3{X: 1, Y: 1, Z: 1},
		matrix:   math.Identity(),
	}
}

func (t *Transform) Kind() Kind        { return KindTransform }
func (t *Transform) Start(*GameObject) {}

// Update refreshes the cached matrix if anything changed since it was built.
func (t *Transform) Update(*GameObject, float32, *input.Snapshot) {
	if t.dirty {
		t.rebuild()
	}
}

func (t *Transform) Position() math.Vec3 { return t.position }
func (t *Transform) Rotation() math.Quat { return t.rotation }
func (t *Transform) Scale() math.Vec3    { return t.scale }

func (t *Transform) SetPosition(p math.Vec3) {
	t.position = p
	t.dirty = true
}

func (t *Transform) SetRotation(q math.Quat) {
	t.rotation = q.Normalize()
	t.dirty = true
}

func (t *Transform) SetScale(s math.Vec3) {
	t.scale = s
	t.dirty = true
}

// Translate moves the transform by d in world space.
func (t *Transform) Translate(d math.Vec3) {
	t.SetPosition(t.position.Add(d))
}

// Dirty reports whether the cached matrix is stale.
func (t *Transform) Dirty() bool { return t.dirty }

// Matrix returns translation * rotation * scale.
func (t *Transform) Matrix() math.Mat4 {
	if t.dirty {
		t.rebuild()
	}
	return t.matrix
}

func (t *Transform) rebuild() {
	t.matrix = math.Translate(t.position).
		Mul(t.rotation.ToMat4()).
		Mul(math.Scale(t.scale))
	t.dirty = false
}

// Front is the local -Z axis in world space.
func (t *Transform) Front() math.Vec3 { return t.rotation.Rotate(math.Vec3Forward) }

func (t *Transform) Up() math.Vec3 { return t.rotation.Rotate(math.Vec3Up) }

func (t *Transform) Right() math.Vec3 { return t.rotation.Rotate(math.Vec3Right) }

// Package picking casts rays from the screen into the scene.
package picking

import (
	gomath "math"

	"github.com/chewxy/math32"

	"github.com/Faultbox/kiln/internal/engine/scene"
	"github.com/Faultbox/kiln/pkg/formats"
	"github.com/Faultbox/kiln/pkg/math"
)

// Ray is a half-line with a normalized direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point t units along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// ScreenToRay converts pixel coordinates (origin top-left) inside a
// viewportW x viewportH viewport into a world-space ray.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, view, projection math.Mat4) Ray {
	inv := projection.Mul(view).Inverse()

	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH

	near := unproject(inv, math.Vec4{X: ndcX, Y: ndcY, Z: -1, W: 1})
	far := unproject(inv, math.Vec4{X: ndcX, Y: ndcY, Z: 1, W: 1})

	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

func unproject(inv math.Mat4, p math.Vec4) math.Vec3 {
	w := inv.MulVec4(p)
	if w.W != 0 {
		return math.Vec3{X: w.X / w.W, Y: w.Y / w.W, Z: w.Z / w.W}
	}
	return w.XYZ()
}

// IntersectPlaneY intersects the ray with the horizontal plane y = planeY.
func (r Ray) IntersectPlaneY(planeY float32) (x, z float32, ok bool) {
	if math32.Abs(r.Direction.Y) < 0.001 {
		return 0, 0, false
	}
	t := (planeY - r.Origin.Y) / r.Direction.Y
	if t < 0 {
		return 0, 0, false
	}
	p := r.At(t)
	return p.X, p.Z, true
}

// IntersectAABB is the slab test. It returns the entry distance, or the
// exit distance when the ray starts inside the box.
func (r Ray) IntersectAABB(box formats.AABB) (t float32, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	o := [3]float32{r.Origin.X, r.Origin.Y, r.Origin.Z}
	d := [3]float32{r.Direction.X, r.Direction.Y, r.Direction.Z}
	lo := [3]float32{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float32{box.Max.X, box.Max.Y, box.Max.Z}

	for i := 0; i < 3; i++ {
		if d[i] == 0 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// TransformAABB returns the world-space box enclosing box after model.
func TransformAABB(box formats.AABB, model math.Mat4) formats.AABB {
	var out formats.AABB
	for i := 0; i < 8; i++ {
		corner := math.Vec3{X: box.Min.X, Y: box.Min.Y, Z: box.Min.Z}
		if i&1 != 0 {
			corner.X = box.Max.X
		}
		if i&2 != 0 {
			corner.Y = box.Max.Y
		}
		if i&4 != 0 {
			corner.Z = box.Max.Z
		}
		p := model.TransformPoint(corner)
		if i == 0 {
			out.Min, out.Max = p, p
			continue
		}
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// Hit is the result of a successful Pick.
type Hit struct {
	Object   *scene.GameObject
	Distance float32
	Point    math.Vec3
}

// Pick returns the nearest object whose transformed mesh bounds the ray
// crosses.
func Pick(s *scene.Scene, r Ray) (Hit, bool) {
	var best Hit
	found := false
	for _, obj := range s.Objects() {
		rm := obj.RenderMesh()
		if rm == nil || rm.Mesh() == nil {
			continue
		}
		box := TransformAABB(rm.Mesh().Bounds(), obj.Transform().Matrix())
		t, ok := r.IntersectAABB(box)
		if !ok || (found && t >= best.Distance) {
			continue
		}
		best = Hit{Object: obj, Distance: t, Point: r.At(t)}
		found = true
	}
	return best, found
}

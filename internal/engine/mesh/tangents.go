package mesh

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/kiln/pkg/math"
)

// degenerateUV is the smallest |det| of the UV edge matrix treated as solvable.
const degenerateUV = 1e-8

// tangentAccumulator sums per-face tangent frames into shared vertices.
type tangentAccumulator struct {
	tangents   []math.Vec3
	bitangents []math.Vec3
}

func newTangentAccumulator(capacity int) *tangentAccumulator {
	return &tangentAccumulator{
		tangents:   make([]math.Vec3, 0, capacity),
		bitangents: make([]math.Vec3, 0, capacity),
	}
}

func (a *tangentAccumulator) grow(n int) {
	for len(a.tangents) < n {
		a.tangents = append(a.tangents, math.Vec3{})
		a.bitangents = append(a.bitangents, math.Vec3{})
	}
}

// addFace solves the UV gradient of one triangle and adds the resulting
// tangent and bitangent to its three vertices. Faces whose UVs are collinear
// contribute nothing.
func (a *tangentAccumulator) addFace(tri [3]uint32, verts []Vertex) {
	a.grow(len(verts))

	v0, v1, v2 := verts[tri[0]], verts[tri[1]], verts[tri[2]]
	e1 := v1.Position.Sub(v0.Position)
	e2 := v2.Position.Sub(v0.Position)
	duv1 := v1.UV0.Sub(v0.UV0)
	duv2 := v2.UV0.Sub(v0.UV0)

	det := duv1.Cross(duv2)
	if math32.Abs(det) < degenerateUV {
		return
	}
	r := 1 / det

	t := e1.Scale(duv2.Y).Sub(e2.Scale(duv1.Y)).Scale(r)
	b := e2.Scale(duv1.X).Sub(e1.Scale(duv2.X)).Scale(r)

	for _, i := range tri {
		a.tangents[i] = a.tangents[i].Add(t)
		a.bitangents[i] = a.bitangents[i].Add(b)
	}
}

// resolve orthogonalises every accumulated tangent against its normal and
// writes it with handedness into verts. Vertices with no usable tangent keep
// a zero tangent.
func (a *tangentAccumulator) resolve(verts []Vertex) {
	a.grow(len(verts))

	for i := range verts {
		n := verts[i].Normal
		t := a.tangents[i]
		b := a.bitangents[i]

		t = t.Sub(n.Scale(n.Dot(t))).Normalize()
		if !t.IsFinite() || t.LengthSqr() == 0 {
			verts[i].Tangent = math.Vec4{}
			continue
		}

		w := float32(1)
		if n.Cross(t).Dot(b) < 0 {
			w = -1
		}
		verts[i].Tangent = math.Vec4{X: t.X, Y: t.Y, Z: t.Z, W: w}
	}
}

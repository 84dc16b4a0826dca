package mesh

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/kiln/internal/engine/gpu/gputest"
	"github.com/Faultbox/kiln/pkg/formats"
	"github.com/Faultbox/kiln/pkg/math"
)

func parseOBJ(t *testing.T, src string) *formats.Geometry {
	t.Helper()
	g, err := formats.ParseOBJ(strings.NewReader(src), "test.obj", formats.ImportOptions{})
	require.NoError(t, err)
	return g
}

// Two triangles that share no corner triplet.
const separateTris = `v 0 0 0
v 1 0 0
v 0 1 0
v 5 0 0
v 6 0 0
v 5 1 0
f 1 2 3
f 4 5 6
`

// Unit quad in the XY plane, normal +Z, UVs following XY.
const quad = `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1
f 1/1/1 3/3/1 4/4/1
`

func TestSetGeometry_UniqueCorners(t *testing.T) {
	m := FromGeometry(gputest.New(), "tris", parseOBJ(t, separateTris), false)

	assert.Equal(t, 6, m.VertexCount())
	assert.Equal(t, 6, m.IndexCount())
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, m.Indices())
	require.Equal(t, 1, m.SubmeshCount())
	assert.Equal(t, Submesh{Offset: 0, Count: 6}, m.Submesh(0))
}

func TestSetGeometry_SharedCorners(t *testing.T) {
	m := FromGeometry(gputest.New(), "quad", parseOBJ(t, quad), false)

	assert.Equal(t, 4, m.VertexCount(), "shared (v, vt, vn) triplets reuse one vertex")
	assert.Equal(t, 6, m.IndexCount())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.Indices())
}

func TestSetGeometry_SamePositionDifferentUV(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 0.5 0.5
f 1/1 2/1 3/1
f 1/2 2/1 3/1
`
	m := FromGeometry(gputest.New(), "seam", parseOBJ(t, src), false)
	assert.Equal(t, 4, m.VertexCount(), "a UV seam splits the vertex")
}

func TestSetGeometry_MissingAttributesAreZero(t *testing.T) {
	m := FromGeometry(gputest.New(), "tris", parseOBJ(t, separateTris), true)

	for i, v := range m.Vertices() {
		assert.Equal(t, math.Vec3{}, v.Normal, "vertex %d normal", i)
		assert.Equal(t, math.Vec2{}, v.UV0, "vertex %d uv", i)
		assert.Equal(t, math.Vec4{}, v.Tangent, "vertex %d has no uv so no tangent", i)
	}
}

func TestSetGeometry_Groups(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
o a
f 1 2 3
o b
f 1 2 3
f 1 2 3
`
	m := FromGeometry(gputest.New(), "groups", parseOBJ(t, src), false)

	require.Equal(t, 2, m.SubmeshCount())
	assert.Equal(t, Submesh{Offset: 0, Count: 3}, m.Submesh(0))
	assert.Equal(t, Submesh{Offset: 3, Count: 6}, m.Submesh(1))
}

func TestTangents_Quad(t *testing.T) {
	m := FromGeometry(gputest.New(), "quad", parseOBJ(t, quad), true)

	for i, v := range m.Vertices() {
		assert.InDelta(t, 1, v.Tangent.X, 1e-5, "vertex %d tangent follows +U", i)
		assert.InDelta(t, 0, v.Tangent.Y, 1e-5)
		assert.InDelta(t, 0, v.Tangent.Z, 1e-5)
		assert.Equal(t, float32(1), v.Tangent.W, "right-handed frame")
	}
}

func TestTangents_MirroredUVsFlipHandedness(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vt 1 0
vt 0 0
vt 1 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1
`
	m := FromGeometry(gputest.New(), "mirror", parseOBJ(t, src), true)

	for _, v := range m.Vertices() {
		assert.InDelta(t, -1, v.Tangent.X, 1e-5)
		assert.Equal(t, float32(-1), v.Tangent.W)
	}
}

func TestTangents_CollinearUVs(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 0.5 0.5
vt 1 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1
`
	m := FromGeometry(gputest.New(), "degenerate", parseOBJ(t, src), true)

	require.Equal(t, 3, m.VertexCount())
	for i, v := range m.Vertices() {
		tan := v.Tangent.XYZ()
		assert.True(t, tan.IsFinite(), "vertex %d tangent must be finite", i)
		assert.Equal(t, math.Vec3{}, tan, "degenerate face contributes nothing")
	}
}

func TestUpload_Idempotent(t *testing.T) {
	dev := gputest.New()
	m := FromGeometry(dev, "quad", parseOBJ(t, quad), false)

	assert.Equal(t, 0, dev.Count("CreateBuffer"), "construction allocates nothing")

	m.Upload()
	m.Upload()

	assert.Equal(t, 1, dev.Count("CreateVertexArray"))
	assert.Equal(t, 2, dev.Count("CreateBuffer"))
	assert.Equal(t, 1, dev.Count("VertexData"))
	assert.True(t, m.Uploaded())
}

func TestUpload_NewDataReusesBuffers(t *testing.T) {
	dev := gputest.New()
	m := FromGeometry(dev, "quad", parseOBJ(t, quad), false)
	m.Upload()

	m.SetGeometry(parseOBJ(t, separateTris), false)
	assert.False(t, m.Uploaded())

	m.Upload()
	assert.Equal(t, 1, dev.Count("CreateVertexArray"))
	assert.Equal(t, 2, dev.Count("VertexData"))
}

func TestBindAndDraw(t *testing.T) {
	dev := gputest.New()
	m := FromGeometry(dev, "quad", parseOBJ(t, quad), false)

	assert.False(t, m.Bind(), "not uploaded")
	assert.False(t, m.DrawSubmesh(0), "not uploaded")

	m.Upload()
	assert.True(t, m.Bind())
	assert.True(t, m.DrawSubmesh(0))
	assert.False(t, m.DrawSubmesh(1))
	assert.False(t, m.DrawSubmesh(-1))
	assert.Equal(t, 1, dev.Count("DrawElements"))
}

func TestAddSubmesh(t *testing.T) {
	m := New(gputest.New(), "manual")
	m.SetIndices([]uint32{0, 1, 2, 2, 1, 3})

	assert.True(t, m.AddSubmesh(0, 3))
	assert.True(t, m.AddSubmesh(3, 3))
	assert.False(t, m.AddSubmesh(3, 4))
	assert.False(t, m.AddSubmesh(-1, 2))
	assert.Equal(t, 2, m.SubmeshCount())
}

func TestDestroy(t *testing.T) {
	dev := gputest.New()
	m := FromGeometry(dev, "quad", parseOBJ(t, quad), false)
	m.Upload()

	m.Destroy()
	m.Destroy()

	assert.Equal(t, 0, dev.Live("vao"))
	assert.Equal(t, 0, dev.Live("buffer"))
	assert.Equal(t, 1, dev.Count("DeleteVertexArray"))
	assert.False(t, m.Bind())
}

func TestBoundsFromImporter(t *testing.T) {
	m := FromGeometry(gputest.New(), "tris", parseOBJ(t, separateTris), false)
	b := m.Bounds()
	assert.Equal(t, math.Vec3{X: 0, Y: 0, Z: 0}, b.Min)
	assert.Equal(t, math.Vec3{X: 6, Y: 1, Z: 0}, b.Max)
}

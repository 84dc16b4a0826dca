// Package mesh turns imported geometry into an interleaved, indexed vertex
// buffer split into submeshes, and owns its GPU buffers.
package mesh

import (
	"go.uber.org/zap"

	"github.com/Faultbox/kiln/internal/engine/gpu"
	"github.com/Faultbox/kiln/internal/logger"
	"github.com/Faultbox/kiln/pkg/formats"
	"github.com/Faultbox/kiln/pkg/math"
)

// Vertex is the GPU vertex format. Tangent.W holds the bitangent handedness.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	Tangent  math.Vec4
	UV0      math.Vec2
	UV1      math.Vec2
}

// Attribute locations shared with the shaders.
const (
	LocPosition = 0
	LocNormal   = 1
	LocTangent  = 2
	LocUV0      = 3
	LocUV1      = 4
)

// floatsPerVertex is the interleaved Vertex size in floats.
const floatsPerVertex = 3 + 3 + 4 + 2 + 2

// Layout is the attribute layout of Vertex inside the vertex buffer.
var Layout = []gpu.Attrib{
	{Location: LocPosition, Components: 3, Offset: 0},
	{Location: LocNormal, Components: 3, Offset: 12},
	{Location: LocTangent, Components: 4, Offset: 24},
	{Location: LocUV0, Components: 2, Offset: 40},
	{Location: LocUV1, Components: 2, Offset: 48},
}

// Submesh is a contiguous index range drawn with one material.
type Submesh struct {
	Offset int
	Count  int
}

// Mesh holds CPU-side vertex data and, once uploaded, the GPU buffers.
// Constructing a Mesh allocates nothing on the device.
type Mesh struct {
	Name string

	dev       gpu.Device
	vertices  []Vertex
	indices   []uint32
	submeshes []Submesh
	bounds    formats.AABB

	vao, vbo, ebo uint32
	uploaded      bool
}

// New creates an empty mesh bound to dev.
func New(dev gpu.Device, name string) *Mesh {
	return &Mesh{Name: name, dev: dev}
}

// FromGeometry builds a mesh from imported geometry.
func FromGeometry(dev gpu.Device, name string, geom *formats.Geometry, generateTangents bool) *Mesh {
	m := New(dev, name)
	m.SetGeometry(geom, generateTangents)
	return m
}

type cornerKey struct {
	pos, uv, normal int
}

// SetGeometry replaces the mesh contents with geom. Corners sharing the same
// (position, uv, normal) triplet share one vertex. Each geometry group
// becomes a submesh; without groups one submesh covers every index.
func (m *Mesh) SetGeometry(geom *formats.Geometry, generateTangents bool) {
	m.vertices = make([]Vertex, 0, len(geom.Faces)*3)
	m.indices = make([]uint32, 0, len(geom.Faces)*3)
	m.submeshes = nil
	m.bounds = geom.Bounds
	m.uploaded = false

	seen := make(map[cornerKey]uint32, len(geom.Faces)*3)
	var acc *tangentAccumulator
	if generateTangents {
		acc = newTangentAccumulator(len(geom.Faces) * 3)
	}

	for _, face := range geom.Faces {
		var tri [3]uint32
		for k, c := range face {
			key := cornerKey{c.Position, c.TexCoord, c.Normal}
			idx, ok := seen[key]
			if !ok {
				idx = uint32(len(m.vertices))
				m.vertices = append(m.vertices, newVertex(geom, c))
				seen[key] = idx
			}
			tri[k] = idx
			m.indices = append(m.indices, idx)
		}

		if acc != nil && hasUVs(face) {
			acc.addFace(tri, m.vertices)
		}
	}

	if acc != nil {
		acc.resolve(m.vertices)
	}

	if len(geom.Groups) == 0 {
		if len(m.indices) > 0 {
			m.submeshes = append(m.submeshes, Submesh{Offset: 0, Count: len(m.indices)})
		}
		return
	}
	for _, g := range geom.Groups {
		m.submeshes = append(m.submeshes, Submesh{Offset: g.FaceStart * 3, Count: g.FaceCount * 3})
	}
}

// newVertex builds a vertex from one face corner; missing attributes are zero.
func newVertex(geom *formats.Geometry, c formats.Corner) Vertex {
	v := Vertex{Position: geom.Positions[c.Position]}
	if c.Normal != formats.NoIndex {
		v.Normal = geom.Normals[c.Normal]
	}
	if c.TexCoord != formats.NoIndex {
		v.UV0 = geom.TexCoords[c.TexCoord]
	}
	return v
}

func hasUVs(f formats.Face) bool {
	return f[0].TexCoord != formats.NoIndex &&
		f[1].TexCoord != formats.NoIndex &&
		f[2].TexCoord != formats.NoIndex
}

// SetVertices replaces the vertex data.
func (m *Mesh) SetVertices(v []Vertex) {
	m.vertices = v
	m.uploaded = false
}

// SetIndices replaces the index data and drops submeshes that no longer fit.
func (m *Mesh) SetIndices(idx []uint32) {
	m.indices = idx
	m.uploaded = false

	kept := m.submeshes[:0]
	for _, s := range m.submeshes {
		if s.Offset+s.Count <= len(idx) {
			kept = append(kept, s)
		}
	}
	m.submeshes = kept
}

// SetBounds overrides the bounding box.
func (m *Mesh) SetBounds(b formats.AABB) {
	m.bounds = b
}

// AddSubmesh appends an index range. It fails when the range runs past the
// index buffer.
func (m *Mesh) AddSubmesh(offset, count int) bool {
	if offset < 0 || count < 0 || offset+count > len(m.indices) {
		logger.Warn("submesh out of range",
			zap.String("mesh", m.Name),
			zap.Int("offset", offset),
			zap.Int("count", count),
			zap.Int("indices", len(m.indices)),
		)
		return false
	}
	m.submeshes = append(m.submeshes, Submesh{Offset: offset, Count: count})
	return true
}

// Upload pushes the data to the GPU. Buffers are created on the first call
// and reused afterwards; calling Upload again without new data does nothing.
func (m *Mesh) Upload() {
	if m.uploaded {
		return
	}

	if m.vao == 0 {
		m.vao = m.dev.CreateVertexArray()
		m.vbo = m.dev.CreateBuffer()
		m.ebo = m.dev.CreateBuffer()
	}

	m.dev.BindVertexArray(m.vao)
	m.dev.VertexData(m.vbo, m.flatten())
	m.dev.VertexLayout(floatsPerVertex*4, Layout)
	m.dev.IndexData(m.ebo, m.indices)
	m.dev.BindVertexArray(0)

	m.uploaded = true
	logger.Debug("mesh uploaded",
		zap.String("mesh", m.Name),
		zap.Int("vertices", len(m.vertices)),
		zap.Int("indices", len(m.indices)),
		zap.Int("submeshes", len(m.submeshes)),
	)
}

func (m *Mesh) flatten() []float32 {
	out := make([]float32, 0, len(m.vertices)*floatsPerVertex)
	for _, v := range m.vertices {
		out = append(out,
			v.Position.X, v.Position.Y, v.Position.Z,
			v.Normal.X, v.Normal.Y, v.Normal.Z,
			v.Tangent.X, v.Tangent.Y, v.Tangent.Z, v.Tangent.W,
			v.UV0.X, v.UV0.Y,
			v.UV1.X, v.UV1.Y,
		)
	}
	return out
}

// Bind makes the mesh's vertex array current.
func (m *Mesh) Bind() bool {
	if !m.uploaded {
		logger.Warn("bind of mesh that is not uploaded", zap.String("mesh", m.Name))
		return false
	}
	m.dev.BindVertexArray(m.vao)
	return true
}

// DrawSubmesh issues the indexed draw for submesh i. The mesh must be bound.
func (m *Mesh) DrawSubmesh(i int) bool {
	if !m.uploaded {
		logger.Warn("draw of mesh that is not uploaded", zap.String("mesh", m.Name))
		return false
	}
	if i < 0 || i >= len(m.submeshes) {
		logger.Warn("submesh index out of range",
			zap.String("mesh", m.Name),
			zap.Int("submesh", i),
			zap.Int("count", len(m.submeshes)),
		)
		return false
	}
	s := m.submeshes[i]
	m.dev.DrawElements(gpu.Triangles, s.Count, s.Offset)
	return true
}

// Destroy frees the GPU buffers. It is safe to call more than once.
func (m *Mesh) Destroy() {
	if m.vao == 0 {
		return
	}
	m.dev.DeleteBuffer(m.ebo)
	m.dev.DeleteBuffer(m.vbo)
	m.dev.DeleteVertexArray(m.vao)
	m.vao, m.vbo, m.ebo = 0, 0, 0
	m.uploaded = false
}

func (m *Mesh) Uploaded() bool        { return m.uploaded }
func (m *Mesh) Bounds() formats.AABB  { return m.bounds }
func (m *Mesh) SubmeshCount() int     { return len(m.submeshes) }
func (m *Mesh) Submesh(i int) Submesh { return m.submeshes[i] }
func (m *Mesh) VertexCount() int      { return len(m.vertices) }
func (m *Mesh) IndexCount() int       { return len(m.indices) }
func (m *Mesh) Vertices() []Vertex    { return m.vertices }
func (m *Mesh) Indices() []uint32     { return m.indices }

// Package debug provides debug visualization utilities.
package debug

import (
	"fmt"

	"github.com/Faultbox/kiln/internal/engine/gpu"
	"github.com/Faultbox/kiln/internal/engine/mesh"
	"github.com/Faultbox/kiln/internal/engine/shader"
	"github.com/Faultbox/kiln/pkg/formats"
	"github.com/Faultbox/kiln/pkg/math"
)

// BoxLineVertexCount is the number of vertices BoxLines produces (12 edges x 2).
const BoxLineVertexCount = 24

// NormalLines returns one line segment per vertex of m, from the vertex
// along its normal for length units. Layout is [x, y, z] per endpoint.
func NormalLines(m *mesh.Mesh, length float32) []float32 {
	verts := m.Vertices()
	out := make([]float32, 0, len(verts)*6)
	for _, v := range verts {
		tip := v.Position.Add(v.Normal.Scale(length))
		out = append(out,
			v.Position.X, v.Position.Y, v.Position.Z,
			tip.X, tip.Y, tip.Z,
		)
	}
	return out
}

// BoxLines returns the 12 edges of b grown by padding on every side.
func BoxLines(b formats.AABB, padding float32) []float32 {
	p := math.Vec3{X: padding, Y: padding, Z: padding}
	lo, hi := b.Min.Sub(p), b.Max.Add(p)
	minX, minY, minZ := lo.X, lo.Y, lo.Z
	maxX, maxY, maxZ := hi.X, hi.Y, hi.Z

	return []float32{
		// Bottom face
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}

// Lines is a GPU batch of line segments drawn in one flat colour with the
// simple shader.
type Lines struct {
	dev    gpu.Device
	shader *shader.Shader
	vao    uint32
	vbo    uint32
	count  int

	transformLoc, viewLoc, projLoc, colorLoc int32
}

// NewLines prepares an empty batch. sh must declare transform, view,
// projection and baseColor.
func NewLines(dev gpu.Device, sh *shader.Shader) (*Lines, error) {
	l := &Lines{
		dev:          dev,
		shader:       sh,
		transformLoc: sh.UniformLocation("transform"),
		viewLoc:      sh.UniformLocation("view"),
		projLoc:      sh.UniformLocation("projection"),
		colorLoc:     sh.UniformLocation("baseColor"),
	}
	if l.transformLoc < 0 || l.viewLoc < 0 || l.projLoc < 0 || l.colorLoc < 0 {
		return nil, fmt.Errorf("debug lines: shader %s lacks transform, view, projection or baseColor", sh.Name)
	}
	l.vao = dev.CreateVertexArray()
	l.vbo = dev.CreateBuffer()
	return l, nil
}

// SetVertices replaces the batch. Two vertices make one segment.
func (l *Lines) SetVertices(xyz []float32) {
	l.dev.BindVertexArray(l.vao)
	l.dev.VertexData(l.vbo, xyz)
	l.dev.VertexLayout(3*4, []gpu.Attrib{{Location: mesh.LocPosition, Components: 3}})
	l.dev.BindVertexArray(0)
	l.count = len(xyz) / 3
}

// Len returns the number of vertices in the batch.
func (l *Lines) Len() int { return l.count }

// Draw renders the batch. Depth testing stays on so lines hide behind
// geometry.
func (l *Lines) Draw(model, view, projection math.Mat4, color math.Vec3) {
	if l.count == 0 {
		return
	}
	dev := l.dev
	dev.SetBlend(gpu.BlendOpaque)
	dev.SetDepthTest(true)
	l.shader.Use()
	dev.UniformMatrix4(l.transformLoc, model)
	dev.UniformMatrix4(l.viewLoc, view)
	dev.UniformMatrix4(l.projLoc, projection)
	dev.Uniform3f(l.colorLoc, color)
	dev.BindVertexArray(l.vao)
	dev.DrawArrays(gpu.Lines, 0, l.count)
	dev.BindVertexArray(0)
}

func (l *Lines) Destroy() {
	if l.vao == 0 {
		return
	}
	l.dev.DeleteBuffer(l.vbo)
	l.dev.DeleteVertexArray(l.vao)
	l.vao, l.vbo, l.count = 0, 0, 0
}

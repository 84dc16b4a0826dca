// Package gpu defines the graphics device the engine draws through.
//
// Every type that owns GPU objects (meshes, shaders, textures, skyboxes) takes
// a Device instead of calling OpenGL directly, which keeps them testable
// without a window. GL implements the device on a live OpenGL 4.1 context.
package gpu

import "github.com/Faultbox/kiln/pkg/math"

// BlendMode selects the colour blending equation.
type BlendMode int

const (
	BlendOpaque BlendMode = iota
	BlendAlpha
	BlendAdditive
)

func (m BlendMode) String() string {
	switch m {
	case BlendOpaque:
		return "opaque"
	case BlendAlpha:
		return "alpha"
	case BlendAdditive:
		return "additive"
	default:
		return "unknown"
	}
}

// CullMode selects which faces are discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

func (m CullMode) String() string {
	switch m {
	case CullNone:
		return "none"
	case CullBack:
		return "back"
	case CullFront:
		return "front"
	default:
		return "unknown"
	}
}

// DepthFunc is the depth comparison.
type DepthFunc int

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
)

// Primitive is the topology of a draw call.
type Primitive int

const (
	Triangles Primitive = iota
	Lines
)

// TextureKind distinguishes 2D textures from cube maps.
type TextureKind int

const (
	Texture2D TextureKind = iota
	TextureCube
)

// Attrib describes one float vertex attribute inside an interleaved buffer.
type Attrib struct {
	Location   uint32
	Components int32
	Offset     int // bytes from the start of the vertex
}

// UniformInfo is one active uniform reported by program reflection.
type UniformInfo struct {
	Name string
	Type string // GLSL type name, e.g. "vec3", "sampler2D"
	Size int32
}

// Device is the subset of the graphics API the engine uses.
type Device interface {
	// Geometry.
	CreateVertexArray() uint32
	DeleteVertexArray(vao uint32)
	BindVertexArray(vao uint32)
	CreateBuffer() uint32
	DeleteBuffer(buf uint32)
	VertexData(buf uint32, data []float32)
	IndexData(buf uint32, data []uint32)
	VertexLayout(stride int32, attribs []Attrib)
	DrawElements(mode Primitive, count, offset int)
	DrawArrays(mode Primitive, first, count int)

	// Programs.
	CompileProgram(vertexSrc, fragmentSrc string) (uint32, error)
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	UniformLocation(program uint32, name string) int32
	ActiveUniforms(program uint32) []UniformInfo
	Uniform1f(loc int32, v float32)
	Uniform1i(loc int32, v int32)
	Uniform3f(loc int32, v math.Vec3)
	Uniform4f(loc int32, v math.Vec4)
	UniformMatrix4(loc int32, m math.Mat4)

	// Textures. face is the cube face index (0..5) and ignored for 2D.
	CreateTexture(kind TextureKind) uint32
	TextureImage(kind TextureKind, tex uint32, face, width, height int, rgba []byte)
	FinishTexture(kind TextureKind, tex uint32)
	DeleteTexture(tex uint32)
	BindTexture(kind TextureKind, unit int, tex uint32)

	// Render state.
	SetBlend(mode BlendMode)
	SetDepthTest(enabled bool)
	SetDepthWrite(enabled bool)
	SetDepthFunc(fn DepthFunc)
	SetCull(mode CullMode)
	SetWireframe(enabled bool)
	Viewport(x, y, width, height int32)
	ClearColor(c math.Vec4)
	Clear(color, depth bool)
	ReadPixels(width, height int) []byte
}

package gpu

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/kiln/internal/logger"
	"github.com/Faultbox/kiln/pkg/math"
)

// GL implements Device on the current OpenGL context.
type GL struct{}

// NewGL loads the OpenGL function pointers and sets the default state.
// Must be called after the GL context is created and made current.
func NewGL() (*GL, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)
	return &GL{}, nil
}

var _ Device = (*GL)(nil)

func (*GL) CreateVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (*GL) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

func (*GL) BindVertexArray(vao uint32) { gl.BindVertexArray(vao) }

func (*GL) CreateBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func (*GL) DeleteBuffer(buf uint32) { gl.DeleteBuffers(1, &buf) }

func (*GL) VertexData(buf uint32, data []float32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, buf)
	if len(data) == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

// IndexData uploads to an element buffer. The element binding is VAO state,
// so the owning VAO must be bound.
func (*GL) IndexData(buf uint32, data []uint32) {
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buf)
	if len(data) == 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (*GL) VertexLayout(stride int32, attribs []Attrib) {
	for _, a := range attribs {
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointerWithOffset(a.Location, a.Components, gl.FLOAT, false, stride, uintptr(a.Offset))
	}
}

func (*GL) DrawElements(mode Primitive, count, offset int) {
	gl.DrawElementsWithOffset(glPrimitive(mode), int32(count), gl.UNSIGNED_INT, uintptr(offset*4))
}

func (*GL) DrawArrays(mode Primitive, first, count int) {
	gl.DrawArrays(glPrimitive(mode), int32(first), int32(count))
}

func glPrimitive(mode Primitive) uint32 {
	if mode == Lines {
		return gl.LINES
	}
	return gl.TRIANGLES
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
// The returned error carries the driver's info log.
func (*GL) CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := infoLog(logLen, func(buf *uint8) {
			gl.GetProgramInfoLog(program, logLen, nil, buf)
		})
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", log)
	}

	return program, nil
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := infoLog(logLen, func(buf *uint8) {
			gl.GetShaderInfoLog(shader, logLen, nil, buf)
		})
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, log)
	}

	return shader, nil
}

func infoLog(n int32, read func(*uint8)) string {
	if n <= 0 {
		return "(no info log)"
	}
	buf := make([]byte, n)
	read(&buf[0])
	return strings.TrimRight(string(buf), "\x00\n")
}

func (*GL) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (*GL) UseProgram(program uint32) { gl.UseProgram(program) }

func (*GL) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (*GL) ActiveUniforms(program uint32) []UniformInfo {
	var count, maxLen int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)
	if count == 0 || maxLen == 0 {
		return nil
	}

	out := make([]UniformInfo, 0, count)
	buf := make([]uint8, maxLen)
	for i := uint32(0); i < uint32(count); i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveUniform(program, i, maxLen, &length, &size, &xtype, &buf[0])
		// Arrays report "name[0]".
		name := strings.TrimSuffix(string(buf[:length]), "[0]")
		out = append(out, UniformInfo{Name: name, Type: glTypeName(xtype), Size: size})
	}
	return out
}

func glTypeName(t uint32) string {
	switch t {
	case gl.FLOAT:
		return "float"
	case gl.FLOAT_VEC2:
		return "vec2"
	case gl.FLOAT_VEC3:
		return "vec3"
	case gl.FLOAT_VEC4:
		return "vec4"
	case gl.FLOAT_MAT3:
		return "mat3"
	case gl.FLOAT_MAT4:
		return "mat4"
	case gl.INT:
		return "int"
	case gl.BOOL:
		return "bool"
	case gl.SAMPLER_2D:
		return "sampler2D"
	case gl.SAMPLER_CUBE:
		return "samplerCube"
	default:
		return fmt.Sprintf("0x%04x", t)
	}
}

func (*GL) Uniform1f(loc int32, v float32) { gl.Uniform1f(loc, v) }

func (*GL) Uniform1i(loc int32, v int32) { gl.Uniform1i(loc, v) }

func (*GL) Uniform3f(loc int32, v math.Vec3) { gl.Uniform3f(loc, v.X, v.Y, v.Z) }

func (*GL) Uniform4f(loc int32, v math.Vec4) { gl.Uniform4f(loc, v.X, v.Y, v.Z, v.W) }

func (*GL) UniformMatrix4(loc int32, m math.Mat4) {
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}

func glTextureTarget(kind TextureKind) uint32 {
	if kind == TextureCube {
		return gl.TEXTURE_CUBE_MAP
	}
	return gl.TEXTURE_2D
}

func (*GL) CreateTexture(kind TextureKind) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(glTextureTarget(kind), tex)
	return tex
}

func (*GL) TextureImage(kind TextureKind, tex uint32, face, width, height int, rgba []byte) {
	target := uint32(gl.TEXTURE_2D)
	if kind == TextureCube {
		target = gl.TEXTURE_CUBE_MAP_POSITIVE_X + uint32(face)
	}
	gl.BindTexture(glTextureTarget(kind), tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(target, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba))
}

// FinishTexture sets sampling parameters once all images are uploaded.
// 2D textures repeat and are mipmapped; cube maps clamp to edge.
func (*GL) FinishTexture(kind TextureKind, tex uint32) {
	target := glTextureTarget(kind)
	gl.BindTexture(target, tex)
	if kind == TextureCube {
		gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(target, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(target, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(target, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
		return
	}
	gl.TexParameteri(target, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(target, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.GenerateMipmap(target)
}

func (*GL) DeleteTexture(tex uint32) { gl.DeleteTextures(1, &tex) }

func (*GL) BindTexture(kind TextureKind, unit int, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(glTextureTarget(kind), tex)
}

func (*GL) SetBlend(mode BlendMode) {
	switch mode {
	case BlendAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	case BlendAdditive:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	default:
		gl.Disable(gl.BLEND)
	}
}

func (*GL) SetDepthTest(enabled bool) {
	if enabled {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
}

func (*GL) SetDepthWrite(enabled bool) { gl.DepthMask(enabled) }

func (*GL) SetDepthFunc(fn DepthFunc) {
	if fn == DepthLessEqual {
		gl.DepthFunc(gl.LEQUAL)
	} else {
		gl.DepthFunc(gl.LESS)
	}
}

func (*GL) SetCull(mode CullMode) {
	switch mode {
	case CullBack:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	case CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	default:
		gl.Disable(gl.CULL_FACE)
	}
}

func (*GL) SetWireframe(enabled bool) {
	if enabled {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

func (*GL) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (*GL) ClearColor(c math.Vec4) { gl.ClearColor(c.X, c.Y, c.Z, c.W) }

func (*GL) Clear(color, depth bool) {
	var mask uint32
	if color {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

// ReadPixels reads the default framebuffer as RGBA, bottom row first.
func (*GL) ReadPixels(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	if len(pixels) == 0 {
		return pixels
	}
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

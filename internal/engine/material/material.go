// Package material binds a shader to uniform values, textures and render
// state, and applies them before a draw.
package material

import (
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/kiln/internal/engine/gpu"
	"github.com/Faultbox/kiln/internal/engine/shader"
	"github.com/Faultbox/kiln/internal/engine/texture"
	"github.com/Faultbox/kiln/internal/logger"
	"github.com/Faultbox/kiln/pkg/math"
)

// BlendMode re-exports the device blend modes.
type BlendMode = gpu.BlendMode

const (
	Opaque     = gpu.BlendOpaque
	AlphaBlend = gpu.BlendAlpha
	Additive   = gpu.BlendAdditive
)

// CullMode re-exports the device cull modes.
type CullMode = gpu.CullMode

const (
	CullNone  = gpu.CullNone
	CullBack  = gpu.CullBack
	CullFront = gpu.CullFront
)

type uniform struct {
	location int32
	value    UniformValue
}

type textureBinding struct {
	location int32
	unit     int
	tex      *texture.Texture
}

// Material is a shader plus the values to bind before drawing with it.
// Uniforms are keyed by name and remember their location in the current
// program, so they are dropped whenever the shader changes.
type Material struct {
	Name string

	shader   *shader.Shader
	program  uint32 // program the cached locations belong to
	uniforms map[string]uniform
	order    []string // uniform names in first-set order
	textures map[string]textureBinding
	texOrder []string
	nextUnit int

	blend      BlendMode
	cull       CullMode
	depthTest  bool
	depthWrite bool
}

// New creates a material with opaque blending, back-face culling and depth
// test and write enabled.
func New(name string) *Material {
	return &Material{
		Name:       name,
		uniforms:   make(map[string]uniform),
		textures:   make(map[string]textureBinding),
		cull:       CullBack,
		depthTest:  true,
		depthWrite: true,
	}
}

// SetShader binds s and forgets every uniform and texture set against the
// previous shader.
func (m *Material) SetShader(s *shader.Shader) {
	m.shader = s
	m.program = 0
	if s != nil {
		m.program = s.Program()
	}
	m.uniforms = make(map[string]uniform)
	m.order = nil
	m.textures = make(map[string]textureBinding)
	m.texOrder = nil
	m.nextUnit = 0
}

// Shader returns the bound shader, or nil.
func (m *Material) Shader() *shader.Shader {
	return m.shader
}

// refresh re-resolves cached locations after the shader was reloaded into
// a new program. Entries the new program no longer declares are dropped.
func (m *Material) refresh() {
	if m.shader == nil || m.shader.Program() == m.program {
		return
	}
	m.program = m.shader.Program()
	m.order = slices.DeleteFunc(m.order, func(name string) bool {
		u := m.uniforms[name]
		u.location = m.shader.UniformLocation(name)
		if u.location < 0 {
			m.dropped(name)
			delete(m.uniforms, name)
			return true
		}
		m.uniforms[name] = u
		return false
	})
	m.texOrder = slices.DeleteFunc(m.texOrder, func(name string) bool {
		b := m.textures[name]
		b.location = m.shader.UniformLocation(name)
		if b.location < 0 {
			m.dropped(name)
			delete(m.textures, name)
			return true
		}
		m.textures[name] = b
		return false
	})
}

func (m *Material) dropped(name string) {
	logger.Warn("uniform gone after shader reload",
		zap.String("material", m.Name),
		zap.String("shader", m.shader.Name),
		zap.String("uniform", name),
	)
}

func (m *Material) locate(name string, quiet bool) (int32, bool) {
	if m.shader == nil {
		if quiet {
			return -1, false
		}
		logger.Warn("material has no shader",
			zap.String("material", m.Name),
			zap.String("uniform", name),
		)
		return -1, false
	}
	m.refresh()
	loc := m.shader.UniformLocation(name)
	if loc < 0 {
		if quiet {
			return -1, false
		}
		logger.Warn("uniform not found in shader",
			zap.String("material", m.Name),
			zap.String("shader", m.shader.Name),
			zap.String("uniform", name),
		)
		return -1, false
	}
	return loc, true
}

// SetUniform stores value for name. It returns false and stores nothing if
// the shader has no active uniform called name.
func (m *Material) SetUniform(name string, value UniformValue) bool {
	return m.set(name, value, false)
}

// TrySetUniform is SetUniform without the warning for unknown names. The
// renderer uses it for per-frame values that not every shader declares.
func (m *Material) TrySetUniform(name string, value UniformValue) bool {
	return m.set(name, value, true)
}

func (m *Material) set(name string, value UniformValue, quiet bool) bool {
	if value == nil {
		return false
	}
	loc, ok := m.locate(name, quiet)
	if !ok {
		return false
	}
	if _, exists := m.uniforms[name]; !exists {
		m.order = append(m.order, name)
	}
	m.uniforms[name] = uniform{location: loc, value: value}
	return true
}

func (m *Material) SetFloat(name string, v float32) bool {
	return m.SetUniform(name, Float(v))
}

func (m *Material) SetVec3(name string, v math.Vec3) bool {
	return m.SetUniform(name, Vec3(v))
}

func (m *Material) SetMat4(name string, v math.Mat4) bool {
	return m.SetUniform(name, Mat4(v))
}

// SetTexture binds tex to the sampler uniform name. A new name takes the
// next free texture unit; setting a name again keeps its unit.
func (m *Material) SetTexture(name string, tex *texture.Texture) bool {
	if tex == nil {
		return false
	}
	loc, ok := m.locate(name, false)
	if !ok {
		return false
	}
	if b, exists := m.textures[name]; exists {
		b.location = loc
		b.tex = tex
		m.textures[name] = b
		return true
	}
	m.textures[name] = textureBinding{location: loc, unit: m.nextUnit, tex: tex}
	m.texOrder = append(m.texOrder, name)
	m.nextUnit++
	return true
}

// Uniform returns the value stored for name.
func (m *Material) Uniform(name string) (UniformValue, bool) {
	u, ok := m.uniforms[name]
	return u.value, ok
}

// Uniforms returns a copy of the stored values.
func (m *Material) Uniforms() map[string]UniformValue {
	out := make(map[string]UniformValue, len(m.uniforms))
	for name, u := range m.uniforms {
		out[name] = u.value
	}
	return out
}

// TextureUnit returns the unit assigned to the sampler name.
func (m *Material) TextureUnit(name string) (int, bool) {
	b, ok := m.textures[name]
	return b.unit, ok
}

// Texture returns the texture bound to the sampler name.
func (m *Material) Texture(name string) *texture.Texture {
	return m.textures[name].tex
}

func (m *Material) SetBlendMode(b BlendMode) { m.blend = b }
func (m *Material) SetCullMode(c CullMode)   { m.cull = c }
func (m *Material) SetDepthTest(on bool)     { m.depthTest = on }
func (m *Material) SetDepthWrite(on bool)    { m.depthWrite = on }

func (m *Material) BlendMode() BlendMode { return m.blend }
func (m *Material) CullMode() CullMode   { return m.cull }
func (m *Material) DepthTest() bool      { return m.depthTest }
func (m *Material) DepthWrite() bool     { return m.depthWrite }

// Apply sets render state, activates the shader, then pushes every value
// uniform followed by every texture binding.
func (m *Material) Apply() bool {
	if m.shader == nil {
		logger.Warn("apply of material without shader", zap.String("material", m.Name))
		return false
	}
	m.refresh()
	dev := m.shader.Device()

	dev.SetBlend(m.blend)
	dev.SetDepthTest(m.depthTest)
	dev.SetDepthWrite(m.depthWrite)
	dev.SetCull(m.cull)

	m.shader.Use()

	for _, name := range m.order {
		u := m.uniforms[name]
		switch v := u.value.(type) {
		case Float:
			dev.Uniform1f(u.location, float32(v))
		case Vec3:
			dev.Uniform3f(u.location, math.Vec3(v))
		case Mat4:
			dev.UniformMatrix4(u.location, math.Mat4(v))
		}
	}

	for _, name := range m.texOrder {
		b := m.textures[name]
		b.tex.Bind(b.unit)
		dev.Uniform1i(b.location, int32(b.unit))
	}
	return true
}

// CheckUniforms returns the active uniforms of the shader that the material
// sets in neither its value nor its texture table.
func (m *Material) CheckUniforms() []string {
	if m.shader == nil {
		return nil
	}
	var missing []string
	for _, u := range m.shader.ActiveUniforms() {
		if _, ok := m.uniforms[u.Name]; ok {
			continue
		}
		if _, ok := m.textures[u.Name]; ok {
			continue
		}
		missing = append(missing, u.Name)
	}
	slices.Sort(missing)
	if len(missing) > 0 {
		logger.Info("material leaves uniforms unset",
			zap.String("material", m.Name),
			zap.String("shader", m.shader.Name),
			zap.Strings("uniforms", missing),
		)
	}
	return missing
}

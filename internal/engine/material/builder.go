package material

import (
	"errors"
	"fmt"

	"github.com/Faultbox/kiln/internal/engine/shader"
	"github.com/Faultbox/kiln/internal/engine/texture"
	"github.com/Faultbox/kiln/pkg/math"
)

// Uniform names understood by the built-in lit and simple shaders.
const (
	UniformBaseColor    = "baseColor"
	UniformBaseMap      = "baseMap"
	UniformUseBaseMap   = "useBaseMap"
	UniformNormalMap    = "normalMap"
	UniformUseNormalMap = "useNormalMap"
	UniformSmoothness   = "smoothness"

	// Not read by the built-in shaders; shaders that declare them get them.
	UniformMetallicMap  = "metallicMap"
	UniformOcclusionMap = "occlusionMap"
)

type pendingUniform struct {
	name  string
	value UniformValue
}

type pendingTexture struct {
	name string
	tex  *texture.Texture
}

// Builder assembles a Material. Problems are collected and reported by Build.
type Builder struct {
	name     string
	shader   *shader.Shader
	uniforms []pendingUniform
	textures []pendingTexture

	blend      BlendMode
	cull       CullMode
	depthTest  bool
	depthWrite bool
}

// NewBuilder starts a material with the same defaults as New.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, cull: CullBack, depthTest: true, depthWrite: true}
}

// PresetSimple is an unlit material with a flat colour.
func PresetSimple(s *shader.Shader, color math.Vec3) *Builder {
	return NewBuilder("simple").
		WithShader(s).
		WithUniform(UniformBaseColor, Vec3(color))
}

// PresetLit is a Blinn-Phong material. baseMap may be nil.
func PresetLit(s *shader.Shader, baseMap *texture.Texture, color math.Vec3, smoothness float32) *Builder {
	b := NewBuilder("lit").
		WithShader(s).
		WithUniform(UniformBaseColor, Vec3(color)).
		WithUniform(UniformSmoothness, Float(smoothness)).
		WithUniform(UniformUseNormalMap, Float(0))
	if baseMap != nil {
		return b.WithUniform(UniformUseBaseMap, Float(1)).WithTexture(UniformBaseMap, baseMap)
	}
	return b.WithUniform(UniformUseBaseMap, Float(0))
}

func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

func (b *Builder) WithShader(s *shader.Shader) *Builder {
	b.shader = s
	return b
}

func (b *Builder) WithUniform(name string, v UniformValue) *Builder {
	b.uniforms = append(b.uniforms, pendingUniform{name, v})
	return b
}

func (b *Builder) WithTexture(name string, tex *texture.Texture) *Builder {
	b.textures = append(b.textures, pendingTexture{name, tex})
	return b
}

func (b *Builder) WithBlendMode(mode BlendMode) *Builder {
	b.blend = mode
	return b
}

func (b *Builder) WithCullMode(mode CullMode) *Builder {
	b.cull = mode
	return b
}

func (b *Builder) WithDepth(test, write bool) *Builder {
	b.depthTest, b.depthWrite = test, write
	return b
}

// Build creates the material. It fails when no shader was given or when
// any uniform or texture names something the shader does not declare.
func (b *Builder) Build() (*Material, error) {
	if b.shader == nil {
		return nil, fmt.Errorf("material %s: no shader", b.name)
	}

	m := New(b.name)
	m.SetShader(b.shader)
	m.blend = b.blend
	m.cull = b.cull
	m.depthTest = b.depthTest
	m.depthWrite = b.depthWrite

	var errs []error
	for _, u := range b.uniforms {
		if !m.SetUniform(u.name, u.value) {
			errs = append(errs, fmt.Errorf("uniform %q not in shader %s", u.name, b.shader.Name))
		}
	}
	for _, t := range b.textures {
		if t.tex == nil {
			errs = append(errs, fmt.Errorf("texture %q is nil", t.name))
			continue
		}
		if !m.SetTexture(t.name, t.tex) {
			errs = append(errs, fmt.Errorf("sampler %q not in shader %s", t.name, b.shader.Name))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("material %s: %w", b.name, errors.Join(errs...))
	}
	return m, nil
}

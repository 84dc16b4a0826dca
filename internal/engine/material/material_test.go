package material

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/kiln/internal/engine/gpu"
	"github.com/Faultbox/kiln/internal/engine/gpu/gputest"
	"github.com/Faultbox/kiln/internal/engine/shader"
	"github.com/Faultbox/kiln/internal/engine/texture"
	"github.com/Faultbox/kiln/pkg/math"
)

func newShader(t *testing.T, dev *gputest.Device, uniforms ...string) *shader.Shader {
	t.Helper()
	dev.SetUniforms(uniforms...)
	s, err := shader.FromSource(dev, "test", "", "")
	require.NoError(t, err)
	return s
}

func newTexture(dev gpu.Device, name string) *texture.Texture {
	return texture.FromImage(dev, name, image.NewRGBA(image.Rect(0, 0, 1, 1)))
}

func TestSetUniform_UnknownName(t *testing.T) {
	dev := gputest.New()
	m := New("m")
	m.SetShader(newShader(t, dev, "baseColor:vec3"))

	assert.False(t, m.SetFloat("nonexistent", 1))
	assert.Empty(t, m.Uniforms())

	require.True(t, m.Apply())
	assert.NotContains(t, dev.PushedNames(), "nonexistent")
}

func TestSetUniform_NoShader(t *testing.T) {
	m := New("m")
	assert.False(t, m.SetFloat("x", 1))
	assert.False(t, m.Apply())
	assert.Nil(t, m.CheckUniforms())
}

func TestSetUniform_Overwrites(t *testing.T) {
	dev := gputest.New()
	m := New("m")
	m.SetShader(newShader(t, dev, "smoothness:float"))

	require.True(t, m.SetFloat("smoothness", 0.2))
	require.True(t, m.SetFloat("smoothness", 0.8))

	v, ok := m.Uniform("smoothness")
	require.True(t, ok)
	assert.Equal(t, Float(0.8), v)
	assert.Len(t, m.Uniforms(), 1)
}

func TestApply_Order(t *testing.T) {
	dev := gputest.New()
	m := New("m")
	m.SetShader(newShader(t, dev, "transform:mat4", "baseColor:vec3", "baseMap:sampler2D"))
	m.SetBlendMode(AlphaBlend)

	require.True(t, m.SetMat4("transform", math.Identity()))
	require.True(t, m.SetVec3("baseColor", math.Vec3{X: 1}))
	require.True(t, m.SetTexture("baseMap", newTexture(dev, "a")))
	dev.Reset()

	require.True(t, m.Apply())

	assert.Equal(t, []string{
		"SetBlend", "SetDepthTest", "SetDepthWrite", "SetCull",
		"UseProgram",
		"UniformMatrix4", "Uniform3f",
		"BindTexture", "Uniform1i",
	}, dev.Ops())
	assert.Equal(t, gpu.BlendAlpha, dev.Blend)

	v, ok := dev.LastPush("baseColor")
	require.True(t, ok)
	assert.Equal(t, math.Vec3{X: 1}, v)
}

func TestSetTexture_Units(t *testing.T) {
	dev := gputest.New()
	m := New("m")
	m.SetShader(newShader(t, dev, "baseMap:sampler2D", "normalMap:sampler2D"))

	a, b, c := newTexture(dev, "a"), newTexture(dev, "b"), newTexture(dev, "c")

	require.True(t, m.SetTexture("baseMap", a))
	require.True(t, m.SetTexture("normalMap", b))
	unit, _ := m.TextureUnit("baseMap")
	assert.Equal(t, 0, unit)
	unit, _ = m.TextureUnit("normalMap")
	assert.Equal(t, 1, unit)

	t.Run("re-set keeps unit", func(t *testing.T) {
		require.True(t, m.SetTexture("baseMap", c))
		unit, _ := m.TextureUnit("baseMap")
		assert.Equal(t, 0, unit)
		assert.Same(t, c, m.Texture("baseMap"))
	})

	t.Run("unknown sampler", func(t *testing.T) {
		assert.False(t, m.SetTexture("detailMap", a))
		_, ok := m.TextureUnit("detailMap")
		assert.False(t, ok)
	})

	t.Run("apply binds units", func(t *testing.T) {
		require.True(t, m.Apply())
		assert.Equal(t, c.ID(), dev.Bound[0])
		assert.Equal(t, b.ID(), dev.Bound[1])
	})
}

func TestSetShader_ResetsState(t *testing.T) {
	dev := gputest.New()
	m := New("m")
	m.SetShader(newShader(t, dev, "baseColor:vec3", "baseMap:sampler2D"))
	require.True(t, m.SetVec3("baseColor", math.Vec3{X: 1}))
	require.True(t, m.SetTexture("baseMap", newTexture(dev, "a")))

	m.SetShader(newShader(t, dev, "baseMap:sampler2D", "detailMap:sampler2D"))
	assert.Empty(t, m.Uniforms())
	_, ok := m.TextureUnit("baseMap")
	assert.False(t, ok)

	require.True(t, m.SetTexture("detailMap", newTexture(dev, "b")))
	unit, _ := m.TextureUnit("detailMap")
	assert.Equal(t, 0, unit, "unit counter restarts")
}

func TestCheckUniforms(t *testing.T) {
	dev := gputest.New()
	m := New("m")
	m.SetShader(newShader(t, dev, "view:mat4", "baseColor:vec3", "baseMap:sampler2D", "smoothness:float"))
	require.True(t, m.SetVec3("baseColor", math.Vec3{}))
	require.True(t, m.SetTexture("baseMap", newTexture(dev, "a")))

	assert.Equal(t, []string{"smoothness", "view"}, m.CheckUniforms())
}

func TestTrySetUniform(t *testing.T) {
	dev := gputest.New()
	m := New("m")
	m.SetShader(newShader(t, dev, "view:mat4"))

	assert.True(t, m.TrySetUniform("view", Mat4(math.Identity())))
	assert.False(t, m.TrySetUniform("light.direction", Vec3{}))
	assert.Len(t, m.Uniforms(), 1)
}

func TestReloadedShaderRelocates(t *testing.T) {
	dev := gputest.New()
	s := newShader(t, dev, "a:float", "b:float")
	m := New("m")
	m.SetShader(s)
	require.True(t, m.SetFloat("b", 2))

	// A shader compiled with a different table stands in for a reload
	// that moved uniform locations.
	dev.SetUniforms("b:float")
	moved, err := shader.FromSource(dev, "moved", "", "")
	require.NoError(t, err)
	*s = *moved

	dev.Reset()
	require.True(t, m.Apply())
	require.Len(t, dev.Pushes, 1)
	assert.Equal(t, int32(0), dev.Pushes[0].Location)
	assert.Equal(t, "b", dev.Pushes[0].Name)
}

func TestReloadDropsUndeclaredUniforms(t *testing.T) {
	dev := gputest.New()
	s := newShader(t, dev, "a:float", "b:float", "baseMap:sampler2D")
	m := New("m")
	m.SetShader(s)
	require.True(t, m.SetFloat("a", 1))
	require.True(t, m.SetFloat("b", 2))
	require.True(t, m.SetTexture("baseMap", newTexture(dev, "tex")))

	dev.SetUniforms("b:float")
	trimmed, err := shader.FromSource(dev, "trimmed", "", "")
	require.NoError(t, err)
	*s = *trimmed

	dev.Reset()
	require.True(t, m.Apply())
	for _, p := range dev.Pushes {
		assert.GreaterOrEqual(t, p.Location, int32(0), "pushed %s", p.Name)
	}
	require.Len(t, dev.Pushes, 1)
	assert.Equal(t, "b", dev.Pushes[0].Name)

	assert.Equal(t, map[string]UniformValue{"b": Float(2)}, m.Uniforms())
	_, ok := m.TextureUnit("baseMap")
	assert.False(t, ok)
	assert.Zero(t, dev.Count("BindTexture"))
}

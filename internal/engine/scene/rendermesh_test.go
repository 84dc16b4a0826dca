package scene

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/kiln/internal/engine/material"
	"github.com/Faultbox/kiln/internal/engine/mesh"
	"github.com/Faultbox/kiln/internal/engine/texture"
	"github.com/Faultbox/kiln/pkg/math"
)

func TestRenderMeshSlots(t *testing.T) {
	dev := newDevice()
	rm := NewRenderMesh(newMesh(t, dev))
	require.Len(t, rm.Materials(), 2)
	assert.Nil(t, rm.Material(0))

	m := newMaterial(t, dev, "stone")
	assert.True(t, rm.SetMaterial(1, m))
	assert.False(t, rm.SetMaterial(2, m))
	assert.False(t, rm.SetMaterial(-1, m))
	assert.Same(t, m, rm.Material(1))
	assert.Nil(t, rm.Material(5))
}

func TestRenderMeshSetMeshKeepsSlots(t *testing.T) {
	dev := newDevice()
	rm := NewRenderMesh(newMesh(t, dev))
	m := newMaterial(t, dev, "stone")
	rm.SetMaterial(0, m)

	single := mesh.New(dev, "single")
	single.SetVertices(make([]mesh.Vertex, 3))
	single.SetIndices([]uint32{0, 1, 2})
	require.True(t, single.AddSubmesh(0, 3))

	rm.SetMesh(single)
	require.Len(t, rm.Materials(), 1)
	assert.Same(t, m, rm.Material(0))

	rm.SetMesh(nil)
	assert.Empty(t, rm.Materials())
}

func TestMaterialComponentApplyTo(t *testing.T) {
	dev := newDevice()
	m := newMaterial(t, dev, "surface")
	base := texture.FromImage(dev, "base", image.NewRGBA(image.Rect(0, 0, 1, 1)))

	mc := NewMaterialComponent(MaterialProperties{
		BaseColor:   math.Vec3{X: 1, Y: 0.5, Z: 0.25},
		BaseMap:     base,
		MetallicMap: base, // not declared by the lit shader
		Smoothness:  0.8,
	})
	require.True(t, mc.ApplyTo(m))

	v, ok := m.Uniform(material.UniformBaseColor)
	require.True(t, ok)
	assert.Equal(t, material.Vec3{X: 1, Y: 0.5, Z: 0.25}, v)

	v, _ = m.Uniform(material.UniformSmoothness)
	assert.Equal(t, material.Float(0.8), v)

	v, _ = m.Uniform(material.UniformUseBaseMap)
	assert.Equal(t, material.Float(1), v)
	v, _ = m.Uniform(material.UniformUseNormalMap)
	assert.Equal(t, material.Float(0), v)

	assert.Same(t, base, m.Texture(material.UniformBaseMap))
	assert.Nil(t, m.Texture(material.UniformMetallicMap))
}

func TestMaterialComponentWithoutShader(t *testing.T) {
	mc := NewMaterialComponent(DefaultMaterialProperties())
	assert.False(t, mc.ApplyTo(material.New("bare")))
}

func TestMaterialComponentStartAppliesToSlots(t *testing.T) {
	dev := newDevice()
	a := newMaterial(t, dev, "a")
	b := newMaterial(t, dev, "b")

	obj := NewGameObject("crate")
	rm := NewRenderMesh(newMesh(t, dev))
	rm.SetMaterial(0, a)
	rm.SetMaterial(1, b)
	obj.AddComponent(rm)
	obj.AddComponent(NewMaterialComponent(MaterialProperties{BaseColor: math.Vec3{Y: 1}}))

	obj.Start()
	for _, m := range []*material.Material{a, b} {
		v, ok := m.Uniform(material.UniformBaseColor)
		require.True(t, ok, m.Name)
		assert.Equal(t, material.Vec3{Y: 1}, v)
	}
}

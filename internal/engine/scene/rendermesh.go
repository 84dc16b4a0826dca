package scene

import (
	"github.com/Faultbox/kiln/internal/engine/material"
	"github.com/Faultbox/kiln/internal/engine/mesh"
	"github.com/Faultbox/kiln/internal/engine/texture"
	"github.com/Faultbox/kiln/pkg/math"
)

// RenderMesh draws a shared mesh with one material slot per submesh.
// Slots left empty are skipped by the renderer.
type RenderMesh struct {
	passive

	mesh      *mesh.Mesh
	materials []*material.Material
}

func NewRenderMesh(m *mesh.Mesh) *RenderMesh {
	r := &RenderMesh{}
	r.SetMesh(m)
	return r
}

func (r *RenderMesh) Kind() Kind { return KindRenderMesh }

// SetMesh swaps the mesh and resizes the slots to its submesh count.
// Materials in slots that still exist are kept.
func (r *RenderMesh) SetMesh(m *mesh.Mesh) {
	r.mesh = m
	n := 0
	if m != nil {
		n = m.SubmeshCount()
	}
	slots := make([]*material.Material, n)
	copy(slots, r.materials)
	r.materials = slots
}

func (r *RenderMesh) Mesh() *mesh.Mesh { return r.mesh }

// SetMaterial assigns m to slot i. It returns false when i is not a slot.
func (r *RenderMesh) SetMaterial(i int, m *material.Material) bool {
	if i < 0 || i >= len(r.materials) {
		return false
	}
	r.materials[i] = m
	return true
}

// Material returns slot i, or nil if i is out of range or unassigned.
func (r *RenderMesh) Material(i int) *material.Material {
	if i < 0 || i >= len(r.materials) {
		return nil
	}
	return r.materials[i]
}

// Materials returns the slots. The slice is owned by the component.
func (r *RenderMesh) Materials() []*material.Material {
	return r.materials
}

// MaterialProperties is the surface description shared by an object's
// materials. Nil maps are simply absent.
type MaterialProperties struct {
	BaseColor    math.Vec3
	BaseMap      *texture.Texture
	MetallicMap  *texture.Texture
	Smoothness   float32
	NormalMap    *texture.Texture
	OcclusionMap *texture.Texture
}

// DefaultMaterialProperties is a plain white half-gloss surface.
func DefaultMaterialProperties() MaterialProperties {
	return MaterialProperties{BaseColor: math.Vec3{X: 1, Y: 1, Z: 1}, Smoothness: 0.5}
}

// MaterialComponent pushes its properties into every material of the
// object's RenderMesh when the object starts.
type MaterialComponent struct {
	passive
	Properties MaterialProperties
}

func NewMaterialComponent(p MaterialProperties) *MaterialComponent {
	return &MaterialComponent{Properties: p}
}

func (c *MaterialComponent) Kind() Kind { return KindMaterial }

func (c *MaterialComponent) Start(obj *GameObject) {
	rm := obj.RenderMesh()
	if rm == nil {
		return
	}
	for _, m := range rm.Materials() {
		if m != nil {
			c.ApplyTo(m)
		}
	}
}

// ApplyTo copies the properties into m's uniforms. Properties the shader
// does not declare are left out. It returns false when m has no shader.
func (c *MaterialComponent) ApplyTo(m *material.Material) bool {
	sh := m.Shader()
	if sh == nil {
		return false
	}
	p := c.Properties
	has := func(name string) bool { return sh.UniformLocation(name) >= 0 }

	m.TrySetUniform(material.UniformBaseColor, material.Vec3(p.BaseColor))
	m.TrySetUniform(material.UniformSmoothness, material.Float(p.Smoothness))

	maps := []struct {
		sampler, toggle string
		tex             *texture.Texture
	}{
		{material.UniformBaseMap, material.UniformUseBaseMap, p.BaseMap},
		{material.UniformNormalMap, material.UniformUseNormalMap, p.NormalMap},
		{material.UniformMetallicMap, "", p.MetallicMap},
		{material.UniformOcclusionMap, "", p.OcclusionMap},
	}
	for _, mp := range maps {
		on := mp.tex != nil && has(mp.sampler)
		if on {
			m.SetTexture(mp.sampler, mp.tex)
		}
		if mp.toggle != "" {
			v := float32(0)
			if on {
				v = 1
			}
			m.TrySetUniform(mp.toggle, material.Float(v))
		}
	}
	return true
}

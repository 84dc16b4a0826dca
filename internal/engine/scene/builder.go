package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/kiln/internal/engine/material"
	"github.com/Faultbox/kiln/internal/engine/mesh"
	"github.com/Faultbox/kiln/internal/engine/skybox"
	"github.com/Faultbox/kiln/pkg/math"
)

var (
	ErrNoCamera     = errors.New("no camera")
	ErrNoRenderMesh = errors.New("no render mesh")
)

type submeshMaterial struct {
	index int
	mat   *material.Material
}

// Builder collects the configuration of one GameObject. Mistakes made along
// the chain are reported together by Build.
type Builder struct {
	name string

	transform *Transform
	render    *RenderMesh
	fill      *material.Material
	submeshes []submeshMaterial
	props     *MaterialProperties
	camera    *Camera
	scripts   []Component
	main      bool

	errs []error
}

func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

func (b *Builder) fail(format string, args ...any) *Builder {
	b.errs = append(b.errs, fmt.Errorf(format, args...))
	return b
}

func (b *Builder) WithTransform(position math.Vec3, rotation math.Quat, scale math.Vec3) *Builder {
	t := NewTransform()
	t.SetPosition(position)
	t.SetRotation(rotation)
	t.SetScale(scale)
	b.transform = t
	return b
}

func (b *Builder) WithRenderMesh(m *mesh.Mesh) *Builder {
	if m == nil {
		return b.fail("render mesh: %w", errors.New("nil mesh"))
	}
	b.render = NewRenderMesh(m)
	return b
}

// WithMaterial fills every slot not given a submesh material.
func (b *Builder) WithMaterial(m *material.Material) *Builder {
	if m == nil {
		return b.fail("material: nil")
	}
	b.fill = m
	return b
}

func (b *Builder) WithSubmeshMaterial(i int, m *material.Material) *Builder {
	if m == nil {
		return b.fail("submesh %d material: nil", i)
	}
	b.submeshes = append(b.submeshes, submeshMaterial{i, m})
	return b
}

func (b *Builder) WithMaterialProperties(p MaterialProperties) *Builder {
	b.props = &p
	return b
}

// WithCamera attaches cam, or a default camera when cam is nil.
func (b *Builder) WithCamera(cam *Camera) *Builder {
	if cam == nil {
		cam = NewCamera()
	}
	b.camera = cam
	return b
}

// AsMainCamera makes Build register the camera as the scene's main one.
func (b *Builder) AsMainCamera() *Builder {
	b.main = true
	return b
}

// WithBackground clears the camera with a solid colour.
func (b *Builder) WithBackground(rgba math.Vec4) *Builder {
	if b.camera == nil {
		return b.fail("background: %w", ErrNoCamera)
	}
	b.camera.Background = rgba
	b.camera.ClearFlags = ClearSolidColor
	return b
}

// WithSkybox clears the camera with sky.
func (b *Builder) WithSkybox(sky *skybox.Skybox) *Builder {
	if b.camera == nil {
		return b.fail("skybox: %w", ErrNoCamera)
	}
	b.camera.Skybox = sky
	b.camera.ClearFlags = ClearSkybox
	return b
}

func (b *Builder) WithScript(s Component) *Builder {
	if s == nil {
		return b.fail("script: nil")
	}
	if s.Kind() != KindScript {
		return b.fail("script: component is a %s", s.Kind())
	}
	b.scripts = append(b.scripts, s)
	return b
}

// Build assembles the object and adds it to s. Nothing is added when any
// step failed.
func (b *Builder) Build(s *Scene) (*GameObject, Handle, error) {
	errs := b.errs

	if b.render == nil && (b.fill != nil || len(b.submeshes) > 0 || b.props != nil) {
		errs = append(errs, fmt.Errorf("material: %w", ErrNoRenderMesh))
	}
	if b.main && b.camera == nil {
		errs = append(errs, fmt.Errorf("main camera: %w", ErrNoCamera))
	}
	if b.render != nil {
		for _, sm := range b.submeshes {
			if !b.render.SetMaterial(sm.index, sm.mat) {
				errs = append(errs, fmt.Errorf("submesh %d: mesh has %d submeshes", sm.index, len(b.render.Materials())))
			}
		}
		if b.fill != nil {
			for i, m := range b.render.Materials() {
				if m == nil {
					b.render.SetMaterial(i, b.fill)
				}
			}
		}
	}
	if len(errs) > 0 {
		return nil, Handle{}, fmt.Errorf("object %s: %w", b.name, errors.Join(errs...))
	}

	obj := NewGameObject(b.name)
	if b.transform != nil {
		obj.components[0] = b.transform
		obj.byKind[KindTransform][0] = b.transform
	}
	if b.camera != nil {
		obj.AddComponent(b.camera)
	}
	if b.render != nil {
		obj.AddComponent(b.render)
	}
	if b.props != nil {
		obj.AddComponent(NewMaterialComponent(*b.props))
	}
	for _, sc := range b.scripts {
		obj.AddComponent(sc)
	}

	h, _ := s.Add(obj)
	if b.main {
		s.SetMainCamera(h)
	}
	return obj, h, nil
}

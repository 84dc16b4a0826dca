package scene

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/kiln/internal/engine/lighting"
	"github.com/Faultbox/kiln/internal/engine/material"
	"github.com/Faultbox/kiln/internal/engine/mesh"
	"github.com/Faultbox/kiln/internal/engine/shader"
	"github.com/Faultbox/kiln/internal/engine/skybox"
	"github.com/Faultbox/kiln/internal/engine/texture"
	"github.com/Faultbox/kiln/internal/logger"
	"github.com/Faultbox/kiln/pkg/math"
)

// Loader supplies the GPU resources a scene file refers to. Paths are
// interpreted by the loader.
type Loader interface {
	Mesh(path string, generateTangents bool) (*mesh.Mesh, error)
	Texture(path string) (*texture.Texture, error)
	NamedShader(name string) (*shader.Shader, error)
	Skybox(dir string) (*skybox.Skybox, error)
}

type sceneFile struct {
	Name    string       `yaml:"name"`
	Light   *lightFile   `yaml:"light"`
	Objects []objectFile `yaml:"objects"`
}

type lightFile struct {
	Direction []float32 `yaml:"direction"`
	Sun       *struct {
		Azimuth   float32 `yaml:"azimuth"`
		Elevation float32 `yaml:"elevation"`
	} `yaml:"sun"`
	Ambient  []float32 `yaml:"ambient"`
	Diffuse  []float32 `yaml:"diffuse"`
	Specular []float32 `yaml:"specular"`
}

type objectFile struct {
	Name     string    `yaml:"name"`
	Position []float32 `yaml:"position"`
	Rotation []float32 `yaml:"rotation"` // euler degrees: pitch, yaw, roll
	Scale    []float32 `yaml:"scale"`

	Camera *cameraFile `yaml:"camera"`

	Mesh      string         `yaml:"mesh"`
	Tangents  bool           `yaml:"tangents"`
	Material  *materialFile  `yaml:"material"`
	Submeshes []materialFile `yaml:"submeshes"`
	Surface   *surfaceFile   `yaml:"surface"`
}

type cameraFile struct {
	Main       bool      `yaml:"main"`
	Projection string    `yaml:"projection"`
	FOV        *float32  `yaml:"fov"`
	FOVAxis    string    `yaml:"fov_axis"`
	Near       *float32  `yaml:"near"`
	Far        *float32  `yaml:"far"`
	Clear      string    `yaml:"clear"`
	Background []float32 `yaml:"background"`
	Skybox     string    `yaml:"skybox"`
	Viewport   []float32 `yaml:"viewport"`
}

type materialFile struct {
	Index  int    `yaml:"index"`
	Shader string `yaml:"shader"`
	Blend  string `yaml:"blend"`
	Cull   string `yaml:"cull"`
}

type surfaceFile struct {
	BaseColor    []float32 `yaml:"base_color"`
	BaseMap      string    `yaml:"base_map"`
	MetallicMap  string    `yaml:"metallic_map"`
	NormalMap    string    `yaml:"normal_map"`
	OcclusionMap string    `yaml:"occlusion_map"`
	Smoothness   *float32  `yaml:"smoothness"`
}

// LoadFile reads a YAML scene description and builds it through loader.
func LoadFile(path string, loader Loader) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}
	s, err := Parse(data, loader)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return s, nil
}

// Parse builds a scene from YAML. Every object is attempted; the errors of
// all failing objects are returned together.
func Parse(data []byte, loader Loader) (*Scene, error) {
	var f sceneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}

	s := New(f.Name)
	var errs []error
	if f.Light != nil {
		if err := f.Light.apply(s); err != nil {
			errs = append(errs, err)
		}
	}
	for i := range f.Objects {
		if err := f.Objects[i].build(s, loader); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	logger.Info("scene loaded", zap.String("scene", s.Name), zap.Int("objects", s.Len()))
	return s, nil
}

func vec3(field string, v []float32, def math.Vec3) (math.Vec3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
	default:
		return def, fmt.Errorf("%s: want 3 numbers, got %d", field, len(v))
	}
}

func vec4(field string, v []float32, def math.Vec4) (math.Vec4, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return math.Vec4{X: v[0], Y: v[1], Z: v[2], W: 1}, nil
	case 4:
		return math.Vec4{X: v[0], Y: v[1], Z: v[2], W: v[3]}, nil
	default:
		return def, fmt.Errorf("%s: want 3 or 4 numbers, got %d", field, len(v))
	}
}

func (l *lightFile) apply(s *Scene) error {
	light := s.Light
	var errs [4]error
	light.Direction, errs[0] = vec3("light.direction", l.Direction, light.Direction)
	light.Ambient, errs[1] = vec3("light.ambient", l.Ambient, light.Ambient)
	light.Diffuse, errs[2] = vec3("light.diffuse", l.Diffuse, light.Diffuse)
	light.Specular, errs[3] = vec3("light.specular", l.Specular, light.Specular)
	if err := errors.Join(errs[:]...); err != nil {
		return err
	}
	if l.Sun != nil {
		light.Direction = lighting.SunDirection(l.Sun.Azimuth, l.Sun.Elevation)
	}
	s.Light = light
	return nil
}

func (o *objectFile) build(s *Scene, loader Loader) error {
	b := NewBuilder(o.Name)
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	pos, err := vec3("position", o.Position, math.Vec3Zero)
	add(err)
	euler, err := vec3("rotation", o.Rotation, math.Vec3Zero)
	add(err)
	scale, err := vec3("scale", o.Scale, math.Vec3{X: 1, Y: 1, Z: 1})
	add(err)
	rot := math.QuatFromEuler(math.Radians(euler.X), math.Radians(euler.Y), math.Radians(euler.Z))
	b.WithTransform(pos, rot, scale)

	if o.Camera != nil {
		add(o.Camera.apply(b, loader))
	}

	if o.Mesh != "" {
		m, err := loader.Mesh(o.Mesh, o.Tangents)
		if err != nil {
			add(err)
		} else {
			b.WithRenderMesh(m)
		}
		if o.Material != nil {
			mat, err := o.Material.build(o.Name, loader)
			add(err)
			if mat != nil {
				b.WithMaterial(mat)
			}
		}
		for i := range o.Submeshes {
			mat, err := o.Submeshes[i].build(fmt.Sprintf("%s/%d", o.Name, o.Submeshes[i].Index), loader)
			add(err)
			if mat != nil {
				b.WithSubmeshMaterial(o.Submeshes[i].Index, mat)
			}
		}
	} else if o.Material != nil || len(o.Submeshes) > 0 {
		add(fmt.Errorf("material: %w", ErrNoRenderMesh))
	}

	if o.Surface != nil {
		props, err := o.Surface.properties(loader)
		add(err)
		b.WithMaterialProperties(props)
	}

	if len(errs) > 0 {
		return fmt.Errorf("object %s: %w", o.Name, errors.Join(errs...))
	}
	_, _, err = b.Build(s)
	return err
}

func (c *cameraFile) apply(b *Builder, loader Loader) error {
	cam := NewCamera()
	var errs []error

	switch c.Projection {
	case "", "perspective":
	case "orthographic":
		cam.Projection = Orthographic
	default:
		errs = append(errs, fmt.Errorf("camera.projection: unknown %q", c.Projection))
	}
	switch c.FOVAxis {
	case "", "vertical":
	case "horizontal":
		cam.FOVAxis = FOVHorizontal
	default:
		errs = append(errs, fmt.Errorf("camera.fov_axis: unknown %q", c.FOVAxis))
	}
	if c.FOV != nil {
		cam.FieldOfView = *c.FOV
	}
	if c.Near != nil {
		cam.Near = *c.Near
	}
	if c.Far != nil {
		cam.Far = *c.Far
	}
	if len(c.Viewport) > 0 {
		if len(c.Viewport) != 4 {
			errs = append(errs, fmt.Errorf("camera.viewport: want 4 numbers, got %d", len(c.Viewport)))
		} else {
			cam.Viewport = Rect{X: c.Viewport[0], Y: c.Viewport[1], W: c.Viewport[2], H: c.Viewport[3]}
		}
	}
	bg, err := vec4("camera.background", c.Background, cam.Background)
	if err != nil {
		errs = append(errs, err)
	}
	cam.Background = bg

	b.WithCamera(cam)
	if c.Main {
		b.AsMainCamera()
	}

	switch c.Clear {
	case "", "skybox":
		if c.Skybox == "" {
			cam.ClearFlags = ClearSolidColor
			if c.Clear == "skybox" {
				errs = append(errs, errors.New("camera.clear: skybox without camera.skybox"))
			}
			break
		}
		sky, err := loader.Skybox(c.Skybox)
		if err != nil {
			// The camera falls back to its background at render time.
			logger.Warn("skybox failed to load", zap.String("dir", c.Skybox), zap.Error(err))
		}
		b.WithSkybox(sky)
	case "solid":
		cam.ClearFlags = ClearSolidColor
	case "depth":
		cam.ClearFlags = ClearDepthOnly
	case "nothing":
		cam.ClearFlags = ClearNothing
	default:
		errs = append(errs, fmt.Errorf("camera.clear: unknown %q", c.Clear))
	}
	return errors.Join(errs...)
}

func (m *materialFile) build(name string, loader Loader) (*material.Material, error) {
	shaderName := m.Shader
	if shaderName == "" {
		shaderName = shader.Lit
	}
	sh, err := loader.NamedShader(shaderName)
	if err != nil {
		return nil, err
	}

	mb := material.NewBuilder(name).WithShader(sh)
	switch m.Blend {
	case "", "opaque":
	case "alpha":
		mb.WithBlendMode(material.AlphaBlend)
	case "additive":
		mb.WithBlendMode(material.Additive)
	default:
		return nil, fmt.Errorf("material.blend: unknown %q", m.Blend)
	}
	switch m.Cull {
	case "", "back":
	case "front":
		mb.WithCullMode(material.CullFront)
	case "none":
		mb.WithCullMode(material.CullNone)
	default:
		return nil, fmt.Errorf("material.cull: unknown %q", m.Cull)
	}
	return mb.Build()
}

func (sf *surfaceFile) properties(loader Loader) (MaterialProperties, error) {
	p := DefaultMaterialProperties()
	var errs []error

	color, err := vec3("surface.base_color", sf.BaseColor, p.BaseColor)
	if err != nil {
		errs = append(errs, err)
	}
	p.BaseColor = color
	if sf.Smoothness != nil {
		p.Smoothness = *sf.Smoothness
	}

	maps := []struct {
		path string
		dst  **texture.Texture
	}{
		{sf.BaseMap, &p.BaseMap},
		{sf.MetallicMap, &p.MetallicMap},
		{sf.NormalMap, &p.NormalMap},
		{sf.OcclusionMap, &p.OcclusionMap},
	}
	for _, mp := range maps {
		if mp.path == "" {
			continue
		}
		tex, err := loader.Texture(mp.path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*mp.dst = tex
	}
	return p, errors.Join(errs...)
}

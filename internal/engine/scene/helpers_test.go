package scene

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Faultbox/kiln/internal/engine/gpu/gputest"
	"github.com/Faultbox/kiln/internal/engine/input"
	"github.com/Faultbox/kiln/internal/engine/material"
	"github.com/Faultbox/kiln/internal/engine/mesh"
	"github.com/Faultbox/kiln/internal/engine/shader"
	"github.com/Faultbox/kiln/pkg/formats"
)

var litUniforms = []string{
	"transform:mat4", "view:mat4", "projection:mat4",
	"light.direction:vec3", "light.ambient:vec3", "light.diffuse:vec3", "light.specular:vec3",
	"viewPos:vec3", "baseColor:vec3",
	"baseMap:sampler2D", "useBaseMap:float",
	"normalMap:sampler2D", "useNormalMap:float",
	"smoothness:float",
	"skybox:samplerCube",
}

// twoQuads has two groups, so meshes built from it carry two submeshes.
const twoQuads = `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
g front
f 1/1/1 2/2/1 3/3/1 4/4/1
g back
f 4/4/1 3/3/1 2/2/1 1/1/1
`

func newDevice() *gputest.Device {
	dev := gputest.New()
	dev.SetUniforms(litUniforms...)
	return dev
}

func newMesh(t *testing.T, dev *gputest.Device) *mesh.Mesh {
	t.Helper()
	geom, err := formats.ParseOBJ(strings.NewReader(twoQuads), "quads.obj", formats.DefaultImportOptions())
	require.NoError(t, err)
	m := mesh.FromGeometry(dev, "quads", geom, true)
	require.Equal(t, 2, m.SubmeshCount())
	return m
}

func newMaterial(t *testing.T, dev *gputest.Device, name string) *material.Material {
	t.Helper()
	sh, err := shader.Builtin(dev, shader.Lit)
	require.NoError(t, err)
	m, err := material.NewBuilder(name).WithShader(sh).Build()
	require.NoError(t, err)
	return m
}

// recorder is a script that logs its lifecycle calls into a shared list.
type recorder struct {
	BaseScript
	name string
	log  *[]string
}

func (r *recorder) Start(*GameObject) { *r.log = append(*r.log, r.name+".start") }

func (r *recorder) Update(_ *GameObject, _ float32, _ *input.Snapshot) {
	*r.log = append(*r.log, r.name+".update")
}

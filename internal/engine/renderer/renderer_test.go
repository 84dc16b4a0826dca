package renderer

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/kiln/internal/engine/gpu"
	"github.com/Faultbox/kiln/internal/engine/gpu/gputest"
	"github.com/Faultbox/kiln/internal/engine/material"
	"github.com/Faultbox/kiln/internal/engine/mesh"
	"github.com/Faultbox/kiln/internal/engine/scene"
	"github.com/Faultbox/kiln/internal/engine/shader"
	"github.com/Faultbox/kiln/internal/logger"
	"github.com/Faultbox/kiln/pkg/formats"
	"github.com/Faultbox/kiln/pkg/math"
)

const twoTriangles = `
v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
g a
f 1 2 3
g b
f 2 4 3
`

func setup(t *testing.T, uniforms ...string) (*gputest.Device, *scene.Scene, *mesh.Mesh) {
	t.Helper()
	dev := gputest.New()
	dev.SetUniforms(uniforms...)

	s := scene.New("test")
	_, _, err := scene.NewBuilder("camera").
		WithTransform(math.Vec3{Z: 5}, math.QuatIdentity(), math.Vec3{X: 1, Y: 1, Z: 1}).
		WithCamera(nil).
		WithBackground(math.Vec4{W: 1}).
		AsMainCamera().
		Build(s)
	require.NoError(t, err)

	geom, err := formats.ParseOBJ(strings.NewReader(twoTriangles), "tri.obj", formats.DefaultImportOptions())
	require.NoError(t, err)
	return dev, s, mesh.FromGeometry(dev, "tri", geom, false)
}

func litMaterial(t *testing.T, dev *gputest.Device) *material.Material {
	t.Helper()
	sh, err := shader.Builtin(dev, shader.Lit)
	require.NoError(t, err)
	m, err := material.NewBuilder("lit").WithShader(sh).Build()
	require.NoError(t, err)
	return m
}

var allUniforms = []string{
	"transform:mat4", "view:mat4", "projection:mat4", "viewPos:vec3",
	"light.direction:vec3", "light.ambient:vec3", "light.diffuse:vec3", "light.specular:vec3",
}

func TestRenderWithoutCamera(t *testing.T) {
	dev := gputest.New()
	r := New(dev)

	stats, ok := r.Render(scene.New("empty"), 640, 480)
	assert.False(t, ok)
	assert.Equal(t, Stats{}, stats)
	assert.Empty(t, dev.Ops())
}

func TestRenderWarnsOnEachCameraLoss(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	dev, withCamera, _ := setup(t)
	empty := scene.New("empty")
	r := New(dev)

	r.Render(empty, 100, 100)
	r.Render(empty, 100, 100)
	assert.Equal(t, 1, logs.FilterMessageSnippet("no main camera").Len(), "one warning per loss")

	_, ok := r.Render(withCamera, 100, 100)
	require.True(t, ok)
	r.Render(empty, 100, 100)
	assert.Equal(t, 2, logs.FilterMessageSnippet("no main camera").Len())
}

func TestRenderDrawsAssignedSubmeshes(t *testing.T) {
	dev, s, m := setup(t, allUniforms...)
	mat := litMaterial(t, dev)

	_, _, err := scene.NewBuilder("tri").
		WithRenderMesh(m).
		WithSubmeshMaterial(0, mat).
		Build(s)
	require.NoError(t, err)

	r := New(dev)
	stats, ok := r.Render(s, 800, 600)
	require.True(t, ok)
	assert.Equal(t, Stats{Objects: 1, DrawCalls: 1, Skipped: 1}, stats)
	assert.Equal(t, stats, r.LastStats())
	assert.Equal(t, [4]int32{0, 0, 800, 600}, dev.View)

	pushed := dev.PushedNames()
	for _, name := range []string{"transform", "view", "projection", "viewPos", "light.direction", "light.specular"} {
		assert.Contains(t, pushed, name)
	}

	v, ok := dev.LastPush("viewPos")
	require.True(t, ok)
	assert.Equal(t, math.Vec3{Z: 5}, v)

	view, proj := r.Matrices()
	pv, _ := dev.LastPush("view")
	assert.Equal(t, view, pv)
	pp, _ := dev.LastPush("projection")
	assert.Equal(t, proj, pp)
}

func TestRenderOrder(t *testing.T) {
	dev, s, m := setup(t, allUniforms...)
	mat := litMaterial(t, dev)
	_, _, err := scene.NewBuilder("tri").WithRenderMesh(m).WithMaterial(mat).Build(s)
	require.NoError(t, err)

	_, ok := New(dev).Render(s, 100, 100)
	require.True(t, ok)

	ops := dev.Ops()
	clear := slices.Index(ops, "Clear")
	upload := slices.Index(ops, "VertexData")
	use := slices.Index(ops, "UseProgram")
	draw := slices.Index(ops, "DrawElements")
	require.True(t, clear >= 0 && upload >= 0 && use >= 0 && draw >= 0, "ops: %v", ops)
	assert.Less(t, clear, upload)
	assert.Less(t, upload, use)
	assert.Less(t, use, draw)
	assert.Equal(t, 2, dev.Count("DrawElements"))
}

func TestRenderUploadsOnce(t *testing.T) {
	dev, s, m := setup(t, allUniforms...)
	_, _, err := scene.NewBuilder("tri").WithRenderMesh(m).WithMaterial(litMaterial(t, dev)).Build(s)
	require.NoError(t, err)

	r := New(dev)
	for range 3 {
		_, ok := r.Render(s, 100, 100)
		require.True(t, ok)
	}
	assert.Equal(t, 1, dev.Count("CreateVertexArray"))
	assert.Equal(t, 1, dev.Count("VertexData"))
	assert.Equal(t, 6, dev.Count("DrawElements"))
}

func TestRenderToleratesMissingUniforms(t *testing.T) {
	// A shader that only knows its transform.
	dev, s, m := setup(t, "transform:mat4")
	_, _, err := scene.NewBuilder("tri").WithRenderMesh(m).WithMaterial(litMaterial(t, dev)).Build(s)
	require.NoError(t, err)

	stats, ok := New(dev).Render(s, 100, 100)
	require.True(t, ok)
	assert.Equal(t, 2, stats.DrawCalls)
	for _, p := range dev.Pushes {
		assert.Equal(t, "transform", p.Name)
	}
}

func TestRenderWireframe(t *testing.T) {
	dev, s, m := setup(t, allUniforms...)
	_, _, err := scene.NewBuilder("tri").WithRenderMesh(m).WithMaterial(litMaterial(t, dev)).Build(s)
	require.NoError(t, err)

	r := New(dev)
	r.ToggleWireframe()
	assert.True(t, r.Wireframe())
	_, ok := r.Render(s, 100, 100)
	require.True(t, ok)

	var modes []bool
	for _, c := range dev.Calls {
		if c.Op == "SetWireframe" {
			modes = append(modes, c.Args[0].(bool))
		}
	}
	assert.Equal(t, []bool{true, false}, modes, "line mode for geometry, fill restored after")
	assert.False(t, dev.Wireframe)
}

func TestRenderSkipsObjectsWithoutMesh(t *testing.T) {
	dev, s, _ := setup(t, allUniforms...)
	s.Create("empty")
	s.Add(scene.NewGameObject("also empty"))
	rm := scene.NewRenderMesh(nil)
	obj := scene.NewGameObject("nil mesh")
	obj.AddComponent(rm)
	s.Add(obj)

	stats, ok := New(dev).Render(s, 100, 100)
	require.True(t, ok)
	assert.Equal(t, Stats{}, stats)
	assert.Zero(t, dev.Count("DrawElements"))
}

func TestRenderRestoresDepthWriteBeforeClear(t *testing.T) {
	dev, s, m := setup(t, allUniforms...)
	sh, err := shader.Builtin(dev, shader.Lit)
	require.NoError(t, err)
	glass, err := material.NewBuilder("glass").
		WithShader(sh).
		WithBlendMode(material.AlphaBlend).
		WithDepth(true, false).
		Build()
	require.NoError(t, err)
	_, _, err = scene.NewBuilder("tri").WithRenderMesh(m).WithMaterial(glass).Build(s)
	require.NoError(t, err)

	r := New(dev)
	_, ok := r.Render(s, 100, 100)
	require.True(t, ok)
	require.False(t, dev.DepthWrite, "material leaves depth write off after the frame")

	dev.Reset()
	_, ok = r.Render(s, 100, 100)
	require.True(t, ok)

	depthWrite, blend := false, material.AlphaBlend
	for _, c := range dev.Calls {
		switch c.Op {
		case "SetDepthWrite":
			depthWrite = c.Args[0].(bool)
		case "SetBlend":
			blend = c.Args[0].(gpu.BlendMode)
		}
		if c.Op == "Clear" {
			assert.True(t, depthWrite, "depth mask on when the frame clears")
			assert.Equal(t, material.Opaque, blend)
			return
		}
	}
	t.Fatal("second frame never cleared")
}

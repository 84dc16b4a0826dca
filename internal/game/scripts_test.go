package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/kiln/internal/engine/input"
	"github.com/Faultbox/kiln/internal/engine/scene"
	"github.com/Faultbox/kiln/pkg/math"
)

func cameraObject(t *testing.T, script scene.Component) *scene.GameObject {
	t.Helper()
	obj := scene.NewGameObject("cam")
	require.True(t, obj.AddComponent(scene.NewCamera()))
	require.True(t, obj.AddComponent(script))
	obj.Start()
	return obj
}

func TestFlyCamMoves(t *testing.T) {
	fly := NewFlyCam()
	obj := cameraObject(t, fly)
	assert.InDelta(t, -90, fly.Controller.Yaw, 1e-3)
	assert.InDelta(t, 0, fly.Controller.Pitch, 1e-3)

	var in input.Snapshot
	in.SetKey(input.KeyW, true)
	obj.Update(0.5, &in)

	p := obj.Transform().Position()
	assert.InDelta(t, 0, p.X, 1e-4)
	assert.InDelta(t, -5, p.Z, 1e-4)

	in.SetKey(input.KeyW, false)
	in.SetKey(input.KeySpace, true)
	obj.Update(0.1, &in)
	assert.InDelta(t, 1, obj.Transform().Position().Y, 1e-4)
}

func TestFlyCamLooksOnlyWithRightButton(t *testing.T) {
	fly := NewFlyCam()
	obj := cameraObject(t, fly)

	var in input.Snapshot
	in.MoveMouse(0, 0, 900, 0)
	obj.Update(0.01, &in)
	assert.InDelta(t, -90, fly.Controller.Yaw, 1e-3)

	in.SetButton(input.MouseRight, true)
	obj.Update(0.01, &in)
	assert.InDelta(t, 0, fly.Controller.Yaw, 1e-3)

	front := obj.Transform().Front()
	assert.InDelta(t, 1, front.X, 1e-4)
}

func TestFlyCamStartKeepsOrientation(t *testing.T) {
	obj := scene.NewGameObject("cam")
	dir := math.Vec3{X: 1, Y: -1, Z: -1}.Normalize()
	obj.Transform().SetRotation(math.QuatLookRotation(dir, math.Vec3Up))
	fly := NewFlyCam()
	require.True(t, obj.AddComponent(fly))
	obj.Start()

	front := obj.Transform().Front()
	assert.InDelta(t, dir.X, front.X, 1e-4)
	assert.InDelta(t, dir.Y, front.Y, 1e-4)
	assert.InDelta(t, dir.Z, front.Z, 1e-4)
}

func TestLensControls(t *testing.T) {
	obj := cameraObject(t, NewFlyCam())
	cam := obj.Camera()

	var in input.Snapshot
	in.SetKey(input.KeyUp, true)
	obj.Update(1, &in)
	assert.InDelta(t, 75, cam.FieldOfView, 1e-4)

	obj.Update(10, &in)
	assert.Equal(t, float32(maxFOV), cam.FieldOfView)
	in.SetKey(input.KeyUp, false)

	tests := []struct {
		key  input.Key
		want scene.ClearFlags
	}{
		{input.Key2, scene.ClearSolidColor},
		{input.Key3, scene.ClearDepthOnly},
		{input.Key4, scene.ClearNothing},
		{input.Key1, scene.ClearSkybox},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			in.SetKey(tt.key, true)
			obj.Update(0.01, &in)
			assert.Equal(t, tt.want, cam.ClearFlags)
			in.SetKey(tt.key, false)
			in.Advance()
		})
	}
}

func TestOrbitCamPlacesObject(t *testing.T) {
	orbit := NewOrbitCam()
	orbit.Controller.Center = math.Vec3{X: 2}
	obj := cameraObject(t, orbit)

	assert.Equal(t, orbit.Controller.Position(), obj.Transform().Position())

	var in input.Snapshot
	in.Scroll(1)
	before := orbit.Controller.Distance
	obj.Update(0.01, &in)
	assert.Less(t, orbit.Controller.Distance, before)

	front := obj.Transform().Front()
	toCenter := orbit.Controller.Center.Sub(obj.Transform().Position()).Normalize()
	assert.InDelta(t, 0, front.Sub(toCenter).Length(), 1e-4)
}

func TestSmoothnessControlWithoutMaterial(t *testing.T) {
	obj := scene.NewGameObject("bare")
	require.True(t, obj.AddComponent(&SmoothnessControl{}))
	obj.Start()

	var in input.Snapshot
	in.SetKey(input.KeyPeriod, true)
	assert.NotPanics(t, func() { obj.Update(0.01, &in) })
}

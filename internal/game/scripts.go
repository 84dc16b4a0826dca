package game

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/kiln/internal/engine/camera"
	"github.com/Faultbox/kiln/internal/engine/input"
	"github.com/Faultbox/kiln/internal/engine/scene"
	"github.com/Faultbox/kiln/pkg/math"
)

// FOV limits applied by the camera scripts, in degrees.
const (
	minFOV = 10
	maxFOV = 120
)

// FlyCam moves its object like a free camera: WASD on the ground plane,
// Space and LShift up and down, right mouse button to look around. On a
// camera object Up/Down change the field of view and keys 1-4 pick the
// clear mode.
type FlyCam struct {
	scene.BaseScript

	Controller *camera.Fly
	FOVSpeed   float32 // degrees per second
}

// NewFlyCam returns a fly camera with default speeds.
func NewFlyCam() *FlyCam {
	return &FlyCam{Controller: camera.NewFly(), FOVSpeed: 30}
}

// Start aligns the controller with the object's current orientation.
func (f *FlyCam) Start(obj *scene.GameObject) {
	front := obj.Transform().Front()
	f.Controller.Yaw = math.Degrees(math32.Atan2(front.Z, front.X))
	f.Controller.Pitch = math.Degrees(math32.Asin(min(max(front.Y, -1), 1)))
	f.Controller.Look(0, 0) // clamps pitch
	obj.Transform().SetRotation(f.Controller.Rotation())
}

func (f *FlyCam) Update(obj *scene.GameObject, dt float32, in *input.Snapshot) {
	t := obj.Transform()

	if in.ButtonPressed(input.MouseRight) {
		d := in.MouseDelta()
		f.Controller.Look(d.X, d.Y)
	}
	move := f.Controller.Move(
		axis(in, input.KeyW, input.KeyS),
		axis(in, input.KeyD, input.KeyA),
		axis(in, input.KeySpace, input.KeyLShift),
		dt,
	)
	if move != (math.Vec3{}) {
		t.Translate(move)
	}
	t.SetRotation(f.Controller.Rotation())

	if cam := obj.Camera(); cam != nil {
		lensControls(cam, in, f.FOVSpeed*dt)
	}
}

// OrbitCam circles a point: left drag rotates, the wheel zooms.
type OrbitCam struct {
	scene.BaseScript

	Controller *camera.Orbit
}

// NewOrbitCam returns an orbit camera around the origin.
func NewOrbitCam() *OrbitCam {
	return &OrbitCam{Controller: camera.NewOrbit()}
}

func (o *OrbitCam) Start(obj *scene.GameObject) {
	o.place(obj)
}

func (o *OrbitCam) Update(obj *scene.GameObject, dt float32, in *input.Snapshot) {
	if in.ButtonPressed(input.MouseLeft) {
		d := in.MouseDelta()
		o.Controller.HandleDrag(d.X, d.Y)
	}
	if w := in.Wheel(); w != 0 {
		o.Controller.HandleZoom(w)
	}
	o.place(obj)

	if cam := obj.Camera(); cam != nil {
		lensControls(cam, in, 30*dt)
	}
}

func (o *OrbitCam) place(obj *scene.GameObject) {
	t := obj.Transform()
	t.SetPosition(o.Controller.Position())
	t.SetRotation(o.Controller.Rotation())
}

// lensControls applies the shared camera keys.
func lensControls(cam *scene.Camera, in *input.Snapshot, fovDelta float32) {
	if d := axis(in, input.KeyUp, input.KeyDown); d != 0 {
		cam.FieldOfView = min(max(cam.FieldOfView+d*fovDelta, minFOV), maxFOV)
	}

	switch {
	case in.JustPressed(input.Key1):
		cam.ClearFlags = scene.ClearSkybox
	case in.JustPressed(input.Key2):
		cam.ClearFlags = scene.ClearSolidColor
	case in.JustPressed(input.Key3):
		cam.ClearFlags = scene.ClearDepthOnly
	case in.JustPressed(input.Key4):
		cam.ClearFlags = scene.ClearNothing
	}
}

// SmoothnessControl nudges the object's surface smoothness with period
// and comma, re-applying it to every submesh material.
type SmoothnessControl struct {
	scene.BaseScript

	Step float32
}

func (s *SmoothnessControl) Update(obj *scene.GameObject, _ float32, in *input.Snapshot) {
	mc := obj.Material()
	rm := obj.RenderMesh()
	if mc == nil || rm == nil {
		return
	}

	step := s.Step
	if step == 0 {
		step = 0.1
	}
	var d float32
	if in.JustPressed(input.KeyPeriod) {
		d += step
	}
	if in.JustPressed(input.KeyComma) {
		d -= step
	}
	if d == 0 {
		return
	}

	mc.Properties.Smoothness = min(max(mc.Properties.Smoothness+d, 0), 1)
	for _, m := range rm.Materials() {
		if m != nil {
			mc.ApplyTo(m)
		}
	}
}

// axis maps a pair of keys to -1, 0 or 1.
func axis(in *input.Snapshot, pos, neg input.Key) float32 {
	var v float32
	if in.Pressed(pos) {
		v++
	}
	if in.Pressed(neg) {
		v--
	}
	return v
}

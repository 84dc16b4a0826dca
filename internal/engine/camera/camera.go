// Package camera provides controllers that steer a camera transform from
// user input.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/kiln/pkg/formats"
	"github.com/Faultbox/kiln/pkg/math"
)

// Fly is a free-look controller. Angles are in degrees; a yaw of -90 looks
// down -Z.
type Fly struct {
	Yaw   float32
	Pitch float32

	Speed       float32 // units per second
	Sensitivity float32 // degrees per pixel of mouse motion
	MaxPitch    float32
}

// NewFly returns a controller looking down -Z.
func NewFly() *Fly {
	return &Fly{
		Yaw:         -90,
		Speed:       10,
		Sensitivity: 0.1,
		MaxPitch:    89,
	}
}

// Look turns the view by a mouse delta in pixels. Moving the mouse up
// (negative dy) looks up.
func (f *Fly) Look(dx, dy float32) {
	f.Yaw += dx * f.Sensitivity
	f.Pitch -= dy * f.Sensitivity
	if f.Pitch > f.MaxPitch {
		f.Pitch = f.MaxPitch
	}
	if f.Pitch < -f.MaxPitch {
		f.Pitch = -f.MaxPitch
	}
}

// Front returns the normalized view direction.
func (f *Fly) Front() math.Vec3 {
	yaw, pitch := math.Radians(f.Yaw), math.Radians(f.Pitch)
	return math.Vec3{
		X: math32.Cos(yaw) * math32.Cos(pitch),
		Y: math32.Sin(pitch),
		Z: math32.Sin(yaw) * math32.Cos(pitch),
	}.Normalize()
}

// Rotation returns the orientation whose front is Front.
func (f *Fly) Rotation() math.Quat {
	return math.QuatLookRotation(f.Front(), math.Vec3Up)
}

// Move returns the displacement for one step. forward and right move on
// the ground plane so looking down does not slow walking; up is vertical.
// Each argument is typically -1, 0 or 1.
func (f *Fly) Move(forward, right, up, dt float32) math.Vec3 {
	front := f.Front()
	ground := math.Vec3{X: front.X, Z: front.Z}.Normalize()
	side := ground.Cross(math.Vec3Up).Normalize()

	dir := ground.Scale(forward).Add(side.Scale(right)).Add(math.Vec3Up.Scale(up))
	return dir.Scale(f.Speed * dt)
}

// Orbit circles a center point. Angles are in radians.
type Orbit struct {
	Center   math.Vec3
	Distance float32
	Pitch    float32 // elevation above the center
	Yaw      float32 // rotation around Y, 0 looks down -Z

	MinDistance, MaxDistance float32
	MinPitch, MaxPitch       float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbit returns an orbit a few units out, slightly above the center.
func NewOrbit() *Orbit {
	return &Orbit{
		Distance:        5,
		Pitch:           0.4,
		MinDistance:     0.5,
		MaxDistance:     500,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the eye position in world space.
func (o *Orbit) Position() math.Vec3 {
	cp := math32.Cos(o.Pitch)
	offset := math.Vec3{
		X: o.Distance * cp * math32.Sin(o.Yaw),
		Y: o.Distance * math32.Sin(o.Pitch),
		Z: o.Distance * cp * math32.Cos(o.Yaw),
	}
	return o.Center.Add(offset)
}

// Rotation returns the orientation looking from Position at Center.
func (o *Orbit) Rotation() math.Quat {
	return math.QuatLookRotation(o.Center.Sub(o.Position()), math.Vec3Up)
}

// HandleDrag rotates by a mouse drag delta in pixels.
func (o *Orbit) HandleDrag(dx, dy float32) {
	o.Yaw -= dx * o.DragSensitivity
	o.Pitch += dy * o.DragSensitivity
	o.Pitch = min(max(o.Pitch, o.MinPitch), o.MaxPitch)
}

// HandleZoom scales the distance by a wheel delta.
func (o *Orbit) HandleZoom(delta float32) {
	o.Distance -= delta * o.Distance * o.ZoomSensitivity
	o.Distance = min(max(o.Distance, o.MinDistance), o.MaxDistance)
}

// FitToBounds centres the orbit on b and backs off far enough to see it.
func (o *Orbit) FitToBounds(b formats.AABB) {
	o.Center = b.Center()
	size := b.Size()
	o.Distance = max(size.X, size.Y, size.Z) * 1.5
	o.Distance = min(max(o.Distance, o.MinDistance), o.MaxDistance)
}

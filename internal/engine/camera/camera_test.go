package camera

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/kiln/pkg/formats"
	"github.com/Faultbox/kiln/pkg/math"
)

func near(a, b math.Vec3) bool {
	const eps = 1e-4
	return math32.Abs(a.X-b.X) < eps && math32.Abs(a.Y-b.Y) < eps && math32.Abs(a.Z-b.Z) < eps
}

func TestFlyDefaults(t *testing.T) {
	f := NewFly()
	if got := f.Front(); !near(got, math.Vec3{Z: -1}) {
		t.Errorf("Front() = %v, want -Z", got)
	}
	front := f.Rotation().Rotate(math.Vec3Forward)
	if !near(front, f.Front()) {
		t.Errorf("Rotation front = %v, want %v", front, f.Front())
	}
}

func TestFlyPitchClamp(t *testing.T) {
	f := NewFly()
	f.Look(0, -10000)
	if f.Pitch != 89 {
		t.Errorf("Pitch = %v, want 89", f.Pitch)
	}
	f.Look(0, 20000)
	if f.Pitch != -89 {
		t.Errorf("Pitch = %v, want -89", f.Pitch)
	}
}

func TestFlyLookYaw(t *testing.T) {
	f := NewFly()
	f.Look(900, 0) // 90 degrees to the right
	if got := f.Front(); !near(got, math.Vec3{X: 1}) {
		t.Errorf("Front() = %v, want +X", got)
	}
}

func TestFlyMoveStaysOnGround(t *testing.T) {
	f := NewFly()
	f.Pitch = -60 // looking down

	d := f.Move(1, 0, 0, 0.5)
	if !near(d, math.Vec3{Z: -5}) {
		t.Errorf("forward = %v, want (0, 0, -5)", d)
	}
	d = f.Move(0, 1, 0, 0.1)
	if !near(d, math.Vec3{X: 1}) {
		t.Errorf("right = %v, want (1, 0, 0)", d)
	}
	d = f.Move(0, 0, -1, 0.1)
	if !near(d, math.Vec3{Y: -1}) {
		t.Errorf("down = %v, want (0, -1, 0)", d)
	}
}

func TestOrbitPosition(t *testing.T) {
	o := NewOrbit()
	o.Pitch = 0
	o.Center = math.Vec3{X: 1}
	if got := o.Position(); !near(got, math.Vec3{X: 1, Z: 5}) {
		t.Errorf("Position() = %v", got)
	}
	front := o.Rotation().Rotate(math.Vec3Forward)
	if !near(front, math.Vec3{Z: -1}) {
		t.Errorf("orbit looks along %v, want -Z", front)
	}
}

func TestOrbitClamps(t *testing.T) {
	o := NewOrbit()
	o.HandleDrag(0, 1e6)
	if o.Pitch != o.MaxPitch {
		t.Errorf("Pitch = %v, want %v", o.Pitch, o.MaxPitch)
	}
	o.HandleZoom(1000)
	if o.Distance != o.MinDistance {
		t.Errorf("Distance = %v, want %v", o.Distance, o.MinDistance)
	}
}

func TestOrbitFitToBounds(t *testing.T) {
	o := NewOrbit()
	o.FitToBounds(formats.AABB{Min: math.Vec3{X: -2, Y: 0, Z: -1}, Max: math.Vec3{X: 2, Y: 2, Z: 1}})
	if !near(o.Center, math.Vec3{Y: 1}) {
		t.Errorf("Center = %v", o.Center)
	}
	if o.Distance != 6 {
		t.Errorf("Distance = %v, want 6", o.Distance)
	}
}

// Package input holds the per-step input snapshot handed to scene updates.
//
// Nothing here talks to SDL; the window package fills a Snapshot from the
// event queue. Keeping it pure lets scripts be tested with synthetic input.
package input

import "github.com/Faultbox/kiln/pkg/math"

// Key is a physical key. Values match SDL scancodes.
type Key uint16

// Keys used by the engine and its default scripts.
const (
	KeyA      Key = 4
	KeyD      Key = 7
	KeyE      Key = 8
	KeyQ      Key = 20
	KeyS      Key = 22
	KeyW      Key = 26
	Key1      Key = 30
	Key2      Key = 31
	Key3      Key = 32
	Key4      Key = 33
	KeyEscape Key = 41
	KeySpace  Key = 44
	KeyComma  Key = 54
	KeyPeriod Key = 55
	KeyF1     Key = 58
	KeyF2     Key = 59
	KeyF3     Key = 60
	KeyF4     Key = 61
	KeyF12    Key = 69
	KeyRight  Key = 79
	KeyLeft   Key = 80
	KeyDown   Key = 81
	KeyUp     Key = 82
	KeyLCtrl  Key = 224
	KeyLShift Key = 225

	numKeys = 512
)

// MouseButton numbers follow SDL: 1 left, 2 middle, 3 right.
type MouseButton uint8

const (
	MouseLeft   MouseButton = 1
	MouseMiddle MouseButton = 2
	MouseRight  MouseButton = 3
)

// Snapshot is the keyboard and mouse state for one fixed update step,
// together with the state of the previous step for edge detection.
type Snapshot struct {
	keys     [numKeys]bool
	prevKeys [numKeys]bool

	buttons     uint32
	prevButtons uint32

	mouse math.Vec2
	delta math.Vec2
	wheel float32
}

// SetKey records a key transition. Out of range keys are ignored.
func (s *Snapshot) SetKey(k Key, down bool) {
	if int(k) < numKeys {
		s.keys[k] = down
	}
}

// SetButton records a mouse button transition.
func (s *Snapshot) SetButton(b MouseButton, down bool) {
	if b == 0 || b > 31 {
		return
	}
	if down {
		s.buttons |= 1 << b
	} else {
		s.buttons &^= 1 << b
	}
}

// MoveMouse records the absolute cursor position and accumulates relative
// motion until the next Advance.
func (s *Snapshot) MoveMouse(x, y, dx, dy float32) {
	s.mouse = math.Vec2{X: x, Y: y}
	s.delta = s.delta.Add(math.Vec2{X: dx, Y: dy})
}

// Scroll accumulates vertical wheel motion until the next Advance.
func (s *Snapshot) Scroll(dy float32) {
	s.wheel += dy
}

// Pressed reports whether k is held.
func (s *Snapshot) Pressed(k Key) bool {
	return int(k) < numKeys && s.keys[k]
}

// JustPressed reports whether k went down since the previous step.
func (s *Snapshot) JustPressed(k Key) bool {
	return int(k) < numKeys && s.keys[k] && !s.prevKeys[k]
}

// JustReleased reports whether k went up since the previous step.
func (s *Snapshot) JustReleased(k Key) bool {
	return int(k) < numKeys && !s.keys[k] && s.prevKeys[k]
}

func (s *Snapshot) ButtonPressed(b MouseButton) bool {
	return b > 0 && b <= 31 && s.buttons&(1<<b) != 0
}

func (s *Snapshot) ButtonJustPressed(b MouseButton) bool {
	return s.ButtonPressed(b) && s.prevButtons&(1<<b) == 0
}

// MousePosition is the cursor position in window pixels.
func (s *Snapshot) MousePosition() math.Vec2 {
	return s.mouse
}

// MouseDelta is the relative motion accumulated since the previous step.
func (s *Snapshot) MouseDelta() math.Vec2 {
	return s.delta
}

func (s *Snapshot) Wheel() float32 {
	return s.wheel
}

// Advance ends a step: the current state becomes the previous state and the
// accumulated mouse motion is cleared. Called once per fixed update.
func (s *Snapshot) Advance() {
	s.prevKeys = s.keys
	s.prevButtons = s.buttons
	s.delta = math.Vec2{}
	s.wheel = 0
}

package window

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/kiln/internal/engine/input"
)

// Events summarises what one Poll saw besides input.
type Events struct {
	Quit    bool
	Resized bool
	Width   int // drawable size after the last resize
	Height  int
}

// Poller drains the SDL event queue into an input snapshot.
type Poller struct {
	win  *Window
	snap *input.Snapshot
}

func NewPoller(win *Window, snap *input.Snapshot) *Poller {
	return &Poller{win: win, snap: snap}
}

// Poll handles every pending event. Key repeats are ignored so that
// JustPressed fires once per physical press.
func (p *Poller) Poll() Events {
	var ev Events
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			ev.Quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				ev.Resized = true
				if p.win != nil {
					ev.Width, ev.Height = p.win.DrawableSize()
				} else {
					ev.Width, ev.Height = int(e.Data1), int(e.Data2)
				}
			}

		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}
			p.snap.SetKey(input.Key(e.Keysym.Scancode), e.State == sdl.PRESSED)

		case *sdl.MouseMotionEvent:
			p.snap.MoveMouse(float32(e.X), float32(e.Y), float32(e.XRel), float32(e.YRel))

		case *sdl.MouseWheelEvent:
			p.snap.Scroll(float32(e.Y))
		case *sdl.MouseButtonEvent:
			p.snap.SetButton(input.MouseButton(e.Button), e.State == sdl.PRESSED)
		}
	}
	return ev
}

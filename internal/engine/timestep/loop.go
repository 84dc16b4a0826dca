package timestep

import "time"

// Stepper is advanced by one fixed step.
type Stepper interface {
	Step(dt float32)
}

// StepFunc adapts a function to Stepper.
type StepFunc func(dt float32)

func (f StepFunc) Step(dt float32) { f(dt) }

// Loop runs fixed updates for each frame and then one render.
type Loop struct {
	Clock  *Accumulator
	Update Stepper
	Render func(alpha float32)
}

// Frame runs every step due for wallDelta, then renders once. It returns the
// number of steps run.
func (l *Loop) Frame(wallDelta time.Duration) int {
	n := l.Clock.Advance(wallDelta)
	dt := l.Clock.StepSeconds()
	for i := 0; i < n; i++ {
		l.Update.Step(dt)
	}
	if l.Render != nil {
		l.Render(l.Clock.Alpha())
	}
	return n
}

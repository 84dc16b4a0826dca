// Package timestep converts variable wall-clock frame times into a whole
// number of fixed simulation steps.
package timestep

import "time"

// Accumulator banks wall time and pays it out in Step-sized slices.
// Arithmetic is in integer nanoseconds, so the step count for a sequence of
// deltas does not depend on how the sequence is chunked.
type Accumulator struct {
	// Step is the fixed update interval.
	Step time.Duration
	// MaxSteps caps the steps returned by one Advance; 0 means no cap.
	// Time beyond the cap is discarded rather than carried over.
	MaxSteps int

	acc time.Duration
}

// FromRate returns an accumulator stepping rate times per second.
func FromRate(rate, maxSteps int) *Accumulator {
	return &Accumulator{Step: time.Second / time.Duration(rate), MaxSteps: maxSteps}
}

// Advance adds wallDelta and returns how many fixed steps are now due.
// The remainder stays banked for the next call. Negative deltas are ignored.
func (a *Accumulator) Advance(wallDelta time.Duration) int {
	if a.Step <= 0 {
		return 0
	}
	if wallDelta > 0 {
		a.acc += wallDelta
	}

	n := int(a.acc / a.Step)
	if a.MaxSteps > 0 && n > a.MaxSteps {
		n = a.MaxSteps
		a.acc = 0
		return n
	}
	a.acc -= time.Duration(n) * a.Step
	return n
}

// Alpha is the fraction of a step left in the bank, in [0, 1). Renderers
// can use it to interpolate between the last two simulated states.
func (a *Accumulator) Alpha() float32 {
	if a.Step <= 0 {
		return 0
	}
	return float32(float64(a.acc) / float64(a.Step))
}

// StepSeconds is Step as float seconds, the dt handed to updates.
func (a *Accumulator) StepSeconds() float32 {
	return float32(a.Step.Seconds())
}

// Reset drops any banked time.
func (a *Accumulator) Reset() {
	a.acc = 0
}

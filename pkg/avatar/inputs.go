package avatar

import (
	"sync"

	"github.com/mirrorstage/go-avatar/pkg/pose"
)

// InputState is the consistent snapshot the frame loop samples at the
// start of every step.
type InputState struct {
	PointerX    float64
	PointerY    float64
	Visible     bool
	MotionScale float64
	// NewPose is non-nil when a pose swap was queued since the last
	// sample. It is delivered exactly once.
	NewPose *pose.Snapshot
}

// Inputs is the mailbox event producers write into between frames.
// Writers never touch joint state; the avatar reads one snapshot per
// frame and last write wins.
type Inputs struct {
	mu          sync.Mutex
	pointerX    float64
	pointerY    float64
	visible     bool
	motionScale float64
	pending     *pose.Snapshot
}

// NewInputs creates a mailbox with the body assumed visible and motion
// at full scale.
func NewInputs() *Inputs {
	return &Inputs{
		visible:     true,
		motionScale: 1,
	}
}

// SetPointer records a normalized pointer position. Values are clamped
// to [-1,1].
func (in *Inputs) SetPointer(x, y float64) {
	in.mu.Lock()
	in.pointerX = clampUnit(x)
	in.pointerY = clampUnit(y)
	in.mu.Unlock()
}

// SetVisible records a visibility change.
func (in *Inputs) SetVisible(v bool) {
	in.mu.Lock()
	in.visible = v
	in.mu.Unlock()
}

// SetMotionScale records a runtime motion intensity multiplier.
// Negative values clamp to zero.
func (in *Inputs) SetMotionScale(f float64) {
	if f < 0 {
		f = 0
	}
	in.mu.Lock()
	in.motionScale = f
	in.mu.Unlock()
}

// MotionScale returns the current motion intensity multiplier.
func (in *Inputs) MotionScale() float64 {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.motionScale
}

// QueuePose schedules a pose swap for the next frame. A second queue
// before the frame samples replaces the first.
func (in *Inputs) QueuePose(s *pose.Snapshot) {
	in.mu.Lock()
	in.pending = s
	in.mu.Unlock()
}

// Sample returns the current input state and consumes any queued pose.
func (in *Inputs) Sample() InputState {
	in.mu.Lock()
	defer in.mu.Unlock()

	state := InputState{
		PointerX:    in.pointerX,
		PointerY:    in.pointerY,
		Visible:     in.visible,
		MotionScale: in.motionScale,
		NewPose:     in.pending,
	}
	in.pending = nil
	return state
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
